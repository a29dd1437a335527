// Package storage provides an abstraction layer for object storage services.
//
// It narrows the MinIO Go client to the operations the publisher needs, which
// keeps publishing testable against core/storage/mocks. Both AWS S3 and
// self-hosted MinIO instances are supported.
//
// # Operations
//
//   - BucketExists / MakeBucket: used by EnsureBucket before a publish.
//   - FPutObject / PutObject: upload a built file or the manifest.
//   - ListObjects: list what is already published under a prefix.
//   - RemoveObjects: batch delete objects that no longer have a resource.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage); err != nil {
//	    return err
//	}
package storage
