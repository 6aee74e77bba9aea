// Package kv provides the small asynchronous key-value storage the client
// persists local state into
package kv

import "context"

// Store is a string key-value store. Get reports found=false for a missing key
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
