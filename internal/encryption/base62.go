package encryption

import (
	"math/big"

	apperrors "github.com/tokencrypt-go/internal/errors"
)

// Base62Alphabet is the digit order of the token format: value 0 is '0', value 61 is 'Z'
const Base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Base62 converts between byte strings, read as big-endian unsigned integers,
// and their positional base-62 rendering.
type Base62 struct {
	decodeMap [256]int8
}

// StdBase62 is the codec used for tokens
var StdBase62 = newBase62(Base62Alphabet)

func newBase62(alphabet string) *Base62 {
	b := &Base62{}
	for i := range b.decodeMap {
		b.decodeMap[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		b.decodeMap[alphabet[i]] = int8(i)
	}
	return b
}

// Encode renders data as a base-62 number with no leading zero padding.
// Empty and all-zero inputs both encode to "0".
func (b *Base62) Encode(data []byte) string {
	n := new(big.Int).SetBytes(data)
	if n.Sign() == 0 {
		return "0"
	}
	// math/big uses the same digit order for bases above 36
	return n.Text(62)
}

// Decode parses a base-62 string back into the minimal big-endian byte
// representation of its value. Zero (including the empty string) decodes to a
// single 0x00 byte. Leading zero bytes of the original input are not recoverable.
func (b *Base62) Decode(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if b.decodeMap[s[i]] < 0 {
			return nil, apperrors.NewInvalidCharacter(runeAt(s, i), i)
		}
	}
	if s == "" {
		return []byte{0}, nil
	}

	n, ok := new(big.Int).SetString(s, 62)
	if !ok {
		return nil, apperrors.NewInvalidCharacter(runeAt(s, 0), 0)
	}
	out := n.Bytes()
	if len(out) == 0 {
		return []byte{0}, nil
	}
	return out, nil
}

// runeAt returns the (possibly multi-byte) character starting at byte offset i
func runeAt(s string, i int) rune {
	for _, r := range s[i:] {
		return r
	}
	return rune(s[i])
}

// Base62Encode encodes data with the token alphabet
func Base62Encode(data []byte) string {
	return StdBase62.Encode(data)
}

// Base62Decode decodes a token-alphabet string
func Base62Decode(s string) ([]byte, error) {
	return StdBase62.Decode(s)
}
