package encryption

import (
	"crypto/rand"
	"testing"
)

var benchSizes = []struct {
	name string
	size int
}{
	{"64B", 64},
	{"1KB", 1024},
	{"64KB", 64 * 1024},
	{"1MB", 1024 * 1024},
}

// BenchmarkPipelineEncrypt benchmarks token generation for each suite
func BenchmarkPipelineEncrypt(b *testing.B) {
	for _, suite := range ListCompressors() {
		p, err := NewPipelineForSuite(suite)
		if err != nil {
			b.Fatal(err)
		}
		for _, size := range benchSizes {
			b.Run(suite+"/"+size.name, func(b *testing.B) {
				data := make([]byte, size.size)
				rand.Read(data)

				b.SetBytes(int64(size.size))
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					p.EncryptBytes(data, "benchmarkpassword")
				}
			})
		}
	}
}

// BenchmarkPipelineDecrypt benchmarks token decoding with the default suite
func BenchmarkPipelineDecrypt(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(size.name, func(b *testing.B) {
			data := make([]byte, size.size)
			rand.Read(data)
			token, err := EncryptBytes(data, "benchmarkpassword")
			if err != nil {
				b.Fatal(err)
			}

			b.SetBytes(int64(size.size))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				DecryptBytes(token, "benchmarkpassword")
			}
		})
	}
}

// BenchmarkBase62 benchmarks the big-integer codec on its own
func BenchmarkBase62(b *testing.B) {
	for _, size := range benchSizes[:3] {
		data := make([]byte, size.size)
		rand.Read(data)
		encoded := Base62Encode(data)

		b.Run("encode/"+size.name, func(b *testing.B) {
			b.SetBytes(int64(size.size))
			for i := 0; i < b.N; i++ {
				Base62Encode(data)
			}
		})
		b.Run("decode/"+size.name, func(b *testing.B) {
			b.SetBytes(int64(size.size))
			for i := 0; i < b.N; i++ {
				Base62Decode(encoded)
			}
		})
	}
}

// BenchmarkDeriveKeyAndIV benchmarks the hash-based key derivation
func BenchmarkDeriveKeyAndIV(b *testing.B) {
	for i := 0; i < b.N; i++ {
		DeriveKeyAndIV("benchmarkpassword")
	}
}
