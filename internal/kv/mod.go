// Package kv defines the key/value database the vote plans are persisted in,
// and its default implementation on top of bbolt
// (https://github.com/etcd-io/bbolt).
//
// Only aggregates are stored: encrypted tallies, decryption shares and
// results. Individual ballots never reach the database.
package kv

import "golang.org/x/xerrors"

// ErrBucketNotFound is returned when a read-only transaction targets a bucket
// that has never been written.
var ErrBucketNotFound = xerrors.New("bucket not found")

// Bucket is a general interface to operate on a database bucket.
type Bucket interface {
	// Get reads the key from the bucket and returns the value, or nil if the
	// key does not exist. The value is only valid during the transaction.
	Get(key []byte) []byte

	// Set assigns the value to the provided key.
	Set(key, value []byte) error

	// Delete deletes the key from the bucket.
	Delete(key []byte) error

	// ForEach iterates over all the items in the bucket in the key order. The
	// iteration stops when the callback returns an error.
	ForEach(fn func(k, v []byte) error) error

	// Scan iterates over every key that matches the prefix in the key order.
	// The iteration stops when the callback returns an error.
	Scan(prefix []byte, fn func(k, v []byte) error) error
}

// DB is a general interface to operate over a key/value database.
type DB interface {
	// View executes the read-only function on the bucket. It fails with
	// ErrBucketNotFound if the bucket does not exist.
	View(bucket []byte, fn func(Bucket) error) error

	// Update executes the writable function on the bucket which is created
	// if necessary. The changes are discarded if the function fails.
	Update(bucket []byte, fn func(Bucket) error) error

	// Close closes the database and free the resources.
	Close() error
}
