package encryption

import (
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	apperrors "github.com/tokencrypt-go/internal/errors"
)

// Pipeline turns plaintext into a base-62 token and back:
// compress, encrypt, encode on the way in; decode, decrypt, decompress on the
// way out. A Pipeline holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	compressor    Compressor
	cipherFactory CipherFactory
	deriveKey     KeyDeriver
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithCompressor replaces the compression stage
func WithCompressor(c Compressor) PipelineOption {
	return func(p *Pipeline) {
		p.compressor = c
	}
}

// WithCipherFactory replaces the cipher stage
func WithCipherFactory(f CipherFactory) PipelineOption {
	return func(p *Pipeline) {
		p.cipherFactory = f
	}
}

// WithKeyDeriver replaces the key/IV derivation
func WithKeyDeriver(d KeyDeriver) PipelineOption {
	return func(p *Pipeline) {
		p.deriveKey = d
	}
}

// NewPipeline creates a pipeline; unset stages default to gzip, AES-256-CBC
// and DeriveKeyAndIV
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.compressor == nil {
		p.compressor = NewGzipCompressor()
	}
	if p.cipherFactory == nil {
		p.cipherFactory = NewAESCBCCipher
	}
	if p.deriveKey == nil {
		p.deriveKey = DeriveKeyAndIV
	}
	return p
}

// NewPipelineForSuite creates a default pipeline with a named compressor
func NewPipelineForSuite(compression string) (*Pipeline, error) {
	c, err := NewCompressor(compression)
	if err != nil {
		return nil, err
	}
	return NewPipeline(WithCompressor(c)), nil
}

// Compression returns the name of the compression stage
func (p *Pipeline) Compression() string {
	return p.compressor.Name()
}

// EncryptBytes turns raw bytes into a token
func (p *Pipeline) EncryptBytes(plaintext []byte, password string) (string, error) {
	compressed, err := p.compressor.Compress(plaintext)
	if err != nil {
		return "", apperrors.NewEncryptionErrorWithCause("compression failed", err)
	}

	c, err := p.cipherFactory(p.deriveKey(password))
	if err != nil {
		return "", apperrors.NewEncryptionErrorWithCause("cipher setup failed", err)
	}
	ciphertext, err := c.Encrypt(compressed)
	if err != nil {
		return "", apperrors.NewEncryptionErrorWithCause("encryption failed", err)
	}

	token := Base62Encode(ciphertext)
	log.Debug().
		Str("compression", p.compressor.Name()).
		Str("cipher", c.Algorithm()).
		Int("plain_size", len(plaintext)).
		Int("compressed_size", len(compressed)).
		Int("token_length", len(token)).
		Msg("Encrypted payload")
	return token, nil
}

// DecryptBytes turns a token back into raw bytes
func (p *Pipeline) DecryptBytes(token, password string) ([]byte, error) {
	if token == "" {
		return nil, apperrors.NewDecryptionFailed("empty token")
	}

	ciphertext, err := Base62Decode(token)
	if err != nil {
		return nil, err
	}

	c, err := p.cipherFactory(p.deriveKey(password))
	if err != nil {
		return nil, apperrors.NewEncryptionErrorWithCause("cipher setup failed", err)
	}
	compressed, err := c.Decrypt(alignToBlock(ciphertext, c.BlockSize()))
	if err != nil {
		return nil, err
	}
	if len(compressed) == 0 {
		return nil, apperrors.NewEmptyResult("decrypted payload is empty, the password is probably wrong")
	}

	plaintext, err := p.compressor.Decompress(compressed)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("compression", p.compressor.Name()).
		Int("token_length", len(token)).
		Int("plain_size", len(plaintext)).
		Msg("Decrypted payload")
	return plaintext, nil
}

// EncryptText turns a string into a token
func (p *Pipeline) EncryptText(plaintext, password string) (string, error) {
	return p.EncryptBytes([]byte(plaintext), password)
}

// DecryptText turns a token back into a string; the payload must be valid UTF-8
func (p *Pipeline) DecryptText(token, password string) (string, error) {
	plaintext, err := p.DecryptBytes(token, password)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plaintext) {
		return "", apperrors.NewDecodingFailed("decrypted payload is not valid UTF-8 text")
	}
	return string(plaintext), nil
}

// defaultPipeline is the interoperable gzip / AES-256-CBC suite
var defaultPipeline = NewPipeline()

// DefaultPipeline returns the shared interoperable pipeline
func DefaultPipeline() *Pipeline {
	return defaultPipeline
}

// EncryptText encrypts text with the default pipeline
func EncryptText(plaintext, password string) (string, error) {
	return defaultPipeline.EncryptText(plaintext, password)
}

// DecryptText decrypts a token with the default pipeline
func DecryptText(token, password string) (string, error) {
	return defaultPipeline.DecryptText(token, password)
}

// EncryptBytes encrypts raw bytes with the default pipeline
func EncryptBytes(plaintext []byte, password string) (string, error) {
	return defaultPipeline.EncryptBytes(plaintext, password)
}

// DecryptBytes decrypts a token to raw bytes with the default pipeline
func DecryptBytes(token, password string) ([]byte, error) {
	return defaultPipeline.DecryptBytes(token, password)
}
