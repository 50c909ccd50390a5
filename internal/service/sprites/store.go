// Package sprites implements the drawing moderation workflow: children
// upload drawings into a pending bucket, an administrator reviews them and
// publishes the final sprite into an approved bucket. The buckets are the
// source of truth; no review state is held in memory.
package sprites

import (
	"context"
	"time"
)

// ObjectStore is the storage capability the workflow needs. Keys are
// "userID/filename" paths inside a bucket.
type ObjectStore interface {
	// Put uploads an object, overwriting any existing one.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	// Get downloads an object. Missing objects yield a not_found error.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// List returns the full keys under the given prefix.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	// Remove deletes an object. Removing a missing object is not an error.
	Remove(ctx context.Context, bucket, key string) error
	// SignedURL returns a pre-signed download URL valid for expiry.
	SignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}
