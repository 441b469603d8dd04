package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSUploader struct {
	client *gcs.Client
	bucket string
	prefix string
	now    func() time.Time
}

func NewGCSUploader(ctx context.Context, bucket, credentialsFile, prefix string) (*GCSUploader, error) {
	if bucket == "" {
		return nil, errors.New("gcs: empty bucket")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSUploader{client: client, bucket: bucket, prefix: prefix, now: time.Now}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, f File, contentType string) (Object, error) {
	name := ObjectName(u.prefix, f.Name, u.now())

	o := u.client.Bucket(u.bucket).Object(name).If(gcs.Conditions{DoesNotExist: true})
	w := o.NewWriter(ctx)
	w.ContentType = contentTypeFor(f.Name, contentType)
	if _, err := io.Copy(w, f.Body); err != nil {
		_ = w.Close()
		return Object{}, fmt.Errorf("gcs upload %s: %w", f.Name, err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("gcs close %s: %w", f.Name, err)
	}
	return Object{ID: name, URL: u.URL(name)}, nil
}

func (u *GCSUploader) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	err := u.client.Bucket(u.bucket).Object(id).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", id, err)
	}
	return nil
}

func (u *GCSUploader) URL(id string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, id)
}

func (u *GCSUploader) Close() error {
	return u.client.Close()
}
