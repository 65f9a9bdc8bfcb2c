// Package storage keeps profile images in a gocloud.dev blob bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// ErrNoFile is returned when an upload is attempted without a file.
var ErrNoFile = errors.New("no file to upload")

// File is an uploaded image held in memory.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IsEmpty reports whether the file carries no bytes.
func (f *File) IsEmpty() bool {
	return f == nil || len(f.Data) == 0
}

// FileStorage is the gateway the service layer uploads images through.
type FileStorage interface {
	UploadImage(ctx context.Context, file *File, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL, folder string) error
}

// BlobStorage stores objects in a bucket and exposes them under publicBaseURL.
type BlobStorage struct {
	bucket        *blob.Bucket
	publicBaseURL string
}

var _ FileStorage = (*BlobStorage)(nil)

// New wraps an opened bucket.
func New(bucket *blob.Bucket, publicBaseURL string) *BlobStorage {
	return &BlobStorage{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Open opens the bucket named by a gocloud.dev URL (s3://, file://, mem://).
// The matching driver package must be linked in by the caller.
func Open(ctx context.Context, bucketURL, publicBaseURL string) (*BlobStorage, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	return New(bucket, publicBaseURL), nil
}

// PublicURL is the address an object key is served from.
func (s *BlobStorage) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

// UploadImage writes file under folder with a random name and returns its public URL.
func (s *BlobStorage) UploadImage(ctx context.Context, file *File, folder string) (string, error) {
	if file == nil {
		return "", ErrNoFile
	}

	key := path.Join(folder, uuid.New().String()+path.Ext(file.Filename))
	opts := &blob.WriterOptions{ContentType: file.ContentType}
	if err := s.bucket.WriteAll(ctx, key, file.Data, opts); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

// DeleteFile removes the object named by fileURL from folder. An already
// missing object is not an error.
func (s *BlobStorage) DeleteFile(ctx context.Context, fileURL, folder string) error {
	key, err := objectKey(fileURL, folder)
	if err != nil {
		return err
	}
	if err := s.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close releases the bucket.
func (s *BlobStorage) Close() error {
	return s.bucket.Close()
}

func objectKey(fileURL, folder string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url %q: %w", fileURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("file url %q has no object name", fileURL)
	}
	return path.Join(folder, name), nil
}
