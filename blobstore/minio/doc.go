// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible servers (Ceph, Garage,
// SeaweedFS) and needs no AWS dependencies.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "graphs/")
//	cat := catalog.New(store)
package minio
