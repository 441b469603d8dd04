package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("storage: no upload backend configured")

type File struct {
	Name string
	Size int64
	Body io.ReadSeeker
}

// Object is a stored file: ID is the object key, URL its public address.
type Object struct {
	ID  string `json:"publicId"`
	URL string `json:"url"`
}

type Uploader interface {
	Upload(ctx context.Context, f File, contentType string) (Object, error)
	Delete(ctx context.Context, id string) error
	URL(id string) string
}

// ObjectName builds "prefix/2006/01/<unix>-<uuid><ext>".
func ObjectName(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	prefix = strings.Trim(prefix, "/")
	name := fmt.Sprintf("%s/%d-%s%s", now.UTC().Format("2006/01"), now.Unix(), uuid.NewString(), ext)
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func contentTypeFor(filename, sniffed string) string {
	if sniffed != "" {
		return sniffed
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Upload(context.Context, File, string) (Object, error) { return Object{}, ErrNotConfigured }
func (Disabled) Delete(context.Context, string) error { return ErrNotConfigured }
func (Disabled) URL(string) string { return "" }
