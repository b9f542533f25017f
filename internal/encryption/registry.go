package encryption

import (
	"sort"
	"sync"

	apperrors "github.com/tokencrypt-go/internal/errors"
)

// CompressorFactory creates a new compressor instance
type CompressorFactory func() (Compressor, error)

// registry holds registered compressor factories
var (
	registryMu sync.RWMutex
	registry   = make(map[string]CompressorFactory)
)

func init() {
	// Register built-in compression suites
	RegisterCompressor(CompressionGzip, func() (Compressor, error) {
		return NewGzipCompressor(), nil
	})
	RegisterCompressor(CompressionZstd, func() (Compressor, error) {
		return NewZstdCompressor()
	})
	RegisterCompressor(CompressionLzma, func() (Compressor, error) {
		return NewLzmaCompressor(), nil
	})
}

// RegisterCompressor adds a compressor factory to the registry
func RegisterCompressor(name string, factory CompressorFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// NewCompressor creates a compressor using the registry.
// An empty name selects gzip.
func NewCompressor(name string) (Compressor, error) {
	if name == "" {
		name = CompressionGzip
	}

	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, apperrors.NewBadRequest("unsupported compression: " + name)
	}
	return factory()
}

// ListCompressors returns all registered compressor names, sorted
func ListCompressors() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsCompressorRegistered checks if a compressor name is registered
func IsCompressorRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
