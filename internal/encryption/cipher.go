package encryption

// CipherInfo provides metadata about a cipher
type CipherInfo interface {
	// Algorithm returns the cipher algorithm name
	Algorithm() string
	// BlockSize returns the cipher block size
	BlockSize() int
}

// BlockCipher encrypts whole messages with padding
type BlockCipher interface {
	CipherInfo
	// Encrypt pads and encrypts plaintext, returning a new slice
	Encrypt(plaintext []byte) ([]byte, error)
	// Decrypt decrypts and unpads ciphertext, returning a new slice
	Decrypt(ciphertext []byte) ([]byte, error)
}

// CipherFactory creates a cipher bound to derived key material
type CipherFactory func(k KeyIV) (BlockCipher, error)

// Compressor is a lossless compression stage
type Compressor interface {
	// Name returns the registry name of the compressor
	Name() string
	// Compress returns a self-delimiting compressed container
	Compress(data []byte) ([]byte, error)
	// Decompress validates and expands a container produced by Compress
	Decompress(data []byte) ([]byte, error)
}
