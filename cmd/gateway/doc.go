// Package main (cmd/gateway) serves the four VC file flows over a small JSON API
// for a browser front end.
//
// The gateway owns one flow controller. It keeps the presentation service API key
// server-side, serves retrieved payloads under /blobs/{handle} with an attachment
// Content-Disposition, and exposes that header to cross-origin callers.
//
// Example usage against the dev services:
//
//	vcfiles-gateway --listen-addr=127.0.0.1:8080 \
//	    --file-manager-url=http://127.0.0.1:9000 \
//	    --auth-service-url=http://127.0.0.1:9001 \
//	    --auth-api-key=dev-api-key
package main
