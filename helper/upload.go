package helper

import (
	"fmt"
	"io"
	"mime/multipart"
)

// MaxImageSize bounds the size of an uploaded image.
const MaxImageSize = 10 << 20

// ReadUpload reads an uploaded file into memory.
func ReadUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > MaxImageSize {
		return nil, fmt.Errorf("image too large (%d bytes, max %d)", fh.Size, MaxImageSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("image too large (max %d bytes)", MaxImageSize)
	}
	return data, nil
}
