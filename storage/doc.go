// Package storage exports retrieved files to destinations outside the process.
//
// A destination is named by a URI of the form
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//
//   - file:///var/lib/vcfiles/exports/
//   - s3://[ACCESS_KEY:SECRET_KEY@]bucket/prefix/?region=us-west-2&endpoint=http://minio:9000
//   - ipfs://127.0.0.1:5001/?timeout=30s
//
// File and S3 destinations write each payload under <cid>/<filename>, where the
// filename is the one the file manager reported in Content-Disposition. IPFS
// destinations add and pin the payload and report the resulting IPFS path.
//
// Several destinations can be combined with Factory.CreateMultiStore, which
// writes to every available destination and succeeds if at least one write did.
//
//	factory := storage.NewFactory(logger)
//	store, err := factory.CreateMultiStore([]string{
//	    "file:///tmp/exports",
//	    "s3://bucket/exports/?region=eu-west-1",
//	})
//	location, err := store.Put(ctx, file)
package storage
