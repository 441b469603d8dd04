package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

var ErrInvalidFile = errors.New("invalid file")

type FileValidator struct {
	allowedExt  map[string]bool
	allowedMime map[string]bool
	maxSize     int64
}

func NewFileValidator(exts, mimes []string, maxSizeMB int) *FileValidator {
	v := &FileValidator{
		allowedExt:  make(map[string]bool, len(exts)),
		allowedMime: make(map[string]bool, len(mimes)),
	}
	for _, e := range exts {
		if e = strings.TrimSpace(strings.ToLower(e)); e != "" {
			v.allowedExt[e] = true
		}
	}
	for _, m := range mimes {
		if m = strings.TrimSpace(strings.ToLower(m)); m != "" {
			v.allowedMime[m] = true
		}
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	v.maxSize = int64(maxSizeMB) << 20
	return v
}

// Validate checks size, extension and sniffed content type, and returns the
// sniffed type. The body is rewound before returning.
func (v *FileValidator) Validate(f File) (string, error) {
	if f.Body == nil {
		return "", fmt.Errorf("%w: empty body", ErrInvalidFile)
	}
	if f.Size > v.maxSize {
		return "", fmt.Errorf("%w: %s too large (max %d MB)", ErrInvalidFile, f.Name, v.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	if !v.allowedExt[ext] {
		return "", fmt.Errorf("%w: extension %q not allowed", ErrInvalidFile, ext)
	}

	buf := make([]byte, 512)
	n, err := f.Body.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: read header: %v", ErrInvalidFile, err)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrInvalidFile, f.Name)
	}
	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: rewind: %v", ErrInvalidFile, err)
	}

	detected := strings.ToLower(http.DetectContentType(buf[:n]))
	if !v.allowedMime[detected] {
		return "", fmt.Errorf("%w: content type %q not allowed", ErrInvalidFile, detected)
	}
	return detected, nil
}
