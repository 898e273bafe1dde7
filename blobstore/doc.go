// Package blobstore stores small named documents, such as published schemas,
// in local or remote object storage.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, used by tests and single-process graphs
//   - LocalStore: a directory on the local file system
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3
//
// CachingStore wraps any of them with a bounded read cache.
//
// Stores that can write a blob only when it does not exist yet implement
// ConditionalStore. The schema catalog uses it to make publishing race free.
package blobstore
