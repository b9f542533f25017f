package encryption

import (
	"crypto/md5"
	"crypto/sha256"
)

const (
	// KeySize is the AES-256 key length
	KeySize = sha256.Size
	// IVSize is the CBC initialization vector length
	IVSize = md5.Size
)

// KeyIV holds the key material derived from a password
type KeyIV struct {
	Key [KeySize]byte
	IV  [IVSize]byte
}

// KeyDeriver turns a password into key material
type KeyDeriver func(password string) KeyIV

// DeriveKeyAndIV derives the key as SHA-256(password) and the IV as MD5(password).
// There is no salt and no iteration: the same password always yields the same
// key and IV, which is what makes tokens reproducible and short.
func DeriveKeyAndIV(password string) KeyIV {
	return KeyIV{
		Key: sha256.Sum256([]byte(password)),
		IV:  md5.Sum([]byte(password)),
	}
}
