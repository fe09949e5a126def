/*
Package httpserver implements the local gateway of the storage client.

The gateway stands in for a browser form layer. It owns a
single flow.Controller, keeps the presentation service API key server-side and
serves retrieved payloads under handle URLs, so a thin front end only renders
state and links.

# UI API

  - GET  /ui/state          state of the selected tab
  - POST /ui/tabs/{tab}     select upload, view, createvc or viewvc
  - POST /ui/upload         multipart: data, issuer_did, owner_did, access_level
  - POST /ui/view           JSON: cid, issuer_did
  - POST /ui/createvc       JSON: cid, owner_did, viewer_did, issuer_did
  - POST /ui/viewvc         JSON: cid, jwt_token, holder_did
  - POST /ui/export         JSON: destinations (file://, s3://, ipfs:// URIs)
  - GET  /blobs/{handle}    bytes of a retrieved file

Every /ui response is a JSON StateView. A failed run carries the single
user-facing error line in its error field.

Responses to allowed origins expose Content-Disposition so that browsers can
read the filename of a downloaded payload.

# Operations

  - GET /livez, /readyz   liveness and readiness
  - GET /drain, /undrain  toggle readiness ahead of shutdown
  - /debug/pprof          when enabled
*/
package httpserver
