// Package s3 provides an Amazon S3 implementation of blobstore.ConditionalStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "graphs/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cat := catalog.New(store)
//
// New loads the default AWS configuration chain (environment, shared
// config, instance role). Use NewStore to supply a preconfigured client.
package s3
