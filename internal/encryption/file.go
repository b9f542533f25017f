package encryption

import (
	"bytes"
	"io"
	"strings"

	"github.com/absfs/absfs"
	"github.com/rs/zerolog/log"

	apperrors "github.com/tokencrypt-go/internal/errors"
)

// FileCodec runs the pipeline over files. Encrypted files hold the token as
// plain text; decrypted files hold the original raw bytes.
type FileCodec struct {
	fs       absfs.FileSystem
	pipeline *Pipeline
	// Verify decrypts every new token in memory and compares it with the
	// source before the destination is written
	Verify bool
}

// NewFileCodec creates a file codec; a nil pipeline selects the default one
func NewFileCodec(fs absfs.FileSystem, pipeline *Pipeline) *FileCodec {
	if pipeline == nil {
		pipeline = defaultPipeline
	}
	return &FileCodec{
		fs:       fs,
		pipeline: pipeline,
		Verify:   true,
	}
}

// EncryptFile encrypts src into a token file at dst and returns the number
// of bytes written
func (c *FileCodec) EncryptFile(src, dst, password string) (int64, error) {
	data, err := c.readFile(src)
	if err != nil {
		return 0, err
	}

	token, err := c.pipeline.EncryptBytes(data, password)
	if err != nil {
		return 0, err
	}

	if c.Verify {
		back, err := c.pipeline.DecryptBytes(token, password)
		if err != nil {
			return 0, err
		}
		if !bytes.Equal(back, data) {
			return 0, apperrors.NewEncryptionErrorWithCause("self-check failed: token does not reproduce "+src, nil)
		}
	}

	n, err := c.writeFile(dst, []byte(token))
	if err != nil {
		return n, err
	}
	log.Debug().Str("src", src).Str("dst", dst).Int64("bytes", n).Msg("Encrypted file")
	return n, nil
}

// DecryptFile decrypts the token file src into dst and returns the number of
// bytes written. Surrounding whitespace and newlines in the token file are ignored.
func (c *FileCodec) DecryptFile(src, dst, password string) (int64, error) {
	data, err := c.readFile(src)
	if err != nil {
		return 0, err
	}

	plaintext, err := c.pipeline.DecryptBytes(strings.TrimSpace(string(data)), password)
	if err != nil {
		return 0, err
	}

	n, err := c.writeFile(dst, plaintext)
	if err != nil {
		return n, err
	}
	log.Debug().Str("src", src).Str("dst", dst).Int64("bytes", n).Msg("Decrypted file")
	return n, nil
}

func (c *FileCodec) readFile(path string) ([]byte, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError("open", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewIOError("read", path, err)
	}
	return data, nil
}

func (c *FileCodec) writeFile(path string, data []byte) (int64, error) {
	f, err := c.fs.Create(path)
	if err != nil {
		return 0, apperrors.NewIOError("create", path, err)
	}

	n, err := f.Write(data)
	if err != nil {
		f.Close()
		return int64(n), apperrors.NewIOError("write", path, err)
	}
	if err := f.Close(); err != nil {
		return int64(n), apperrors.NewIOError("close", path, err)
	}
	return int64(n), nil
}
