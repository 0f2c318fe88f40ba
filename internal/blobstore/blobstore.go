// Package blobstore stores loan and lender attachments (scanned
// agreements, receipts, avatars) under opaque keys. Two backends exist:
// a local directory next to the data file and an S3-compatible bucket.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Store is the attachment storage contract. Keys are generated with
// RandomKey and recorded on the owning document.
type Store interface {
	Put(ctx context.Context, key string, data io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// ShareURL returns a URL under which the blob can be fetched for a
	// limited time without further authentication.
	ShareURL(ctx context.Context, key string) (string, error)
}

// RandomKey returns a fresh storage key, partitioned by date so bucket
// listings stay navigable.
func RandomKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
