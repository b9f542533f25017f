package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	apperrors "github.com/tokencrypt-go/internal/errors"
)

// AESCBC implements AES-256-CBC with PKCS#7 padding
type AESCBC struct {
	block cipher.Block
	iv    [IVSize]byte
}

// NewAESCBC creates a new AES-CBC cipher from derived key material
func NewAESCBC(k KeyIV) (*AESCBC, error) {
	block, err := aes.NewCipher(k.Key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	return &AESCBC{block: block, iv: k.IV}, nil
}

// NewAESCBCCipher adapts NewAESCBC to CipherFactory
func NewAESCBCCipher(k KeyIV) (BlockCipher, error) {
	return NewAESCBC(k)
}

// Algorithm returns the cipher algorithm name
func (a *AESCBC) Algorithm() string {
	return "AES-256-CBC"
}

// BlockSize returns the cipher block size
func (a *AESCBC) BlockSize() int {
	return aes.BlockSize
}

// Encrypt pads plaintext to a whole number of blocks and encrypts it
func (a *AESCBC) Encrypt(plaintext []byte) ([]byte, error) {
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(a.block, a.iv[:]).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt decrypts ciphertext and strips its padding. A padding mismatch
// almost always means the key is wrong or the token was truncated.
func (a *AESCBC) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, apperrors.NewDecryptionFailed(
			fmt.Sprintf("ciphertext length %d is not a positive multiple of %d", len(ciphertext), aes.BlockSize))
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(a.block, a.iv[:]).CryptBlocks(out, ciphertext)

	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return nil, apperrors.NewDecryptionFailedWithCause("invalid padding", err)
	}
	return plain, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+padding)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data is empty")
	}

	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, fmt.Errorf("pad byte %d out of range", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("inconsistent pad bytes")
		}
	}
	return data[:len(data)-padding], nil
}

// alignToBlock left-pads data with zero bytes to a whole number of blocks.
// Valid ciphertext is always block aligned, so this restores leading zero
// bytes that the integer encoding of a token drops.
func alignToBlock(data []byte, blockSize int) []byte {
	rem := len(data) % blockSize
	if rem == 0 {
		return data
	}
	out := make([]byte, len(data)+blockSize-rem)
	copy(out[blockSize-rem:], data)
	return out
}
