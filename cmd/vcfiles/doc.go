// Package main (cmd/vcfiles) is the command-line client for VC-gated file storage.
//
// Each subcommand runs one flow:
//
//   - upload: send a file under a private or public access policy
//   - view: fetch a file as its issuer
//   - create-vc: mint a credential granting a viewer access to a file
//   - view-vc: exchange a credential for an authorization token and fetch the file,
//     or fetch anonymously when no credential is given
//
// Retrieved files are summarized on stdout, or exported with --output to
// file://, s3:// or ipfs:// destinations.
//
// Example usage:
//
//	vcfiles --auth-api-key=$KEY view-vc --cid=bafkrei... --vc=eyJhbGciOi... \
//	    --viewer-did=did:nda:testnet:0xd012ef45a753535bf3774cef3a4884115c69b9bf \
//	    --output=file://./downloads
package main
