// Package devservices is an in-memory stand-in for the remote file manager and
// presentation services, used for local demos and end-to-end tests.
//
// It implements the same HTTP surface as the real services:
//
//   - POST /api/v1/issuer/files/upload     upload under an access policy (x-issuer-did)
//   - GET  /api/v1/issuer/files/{cid}      issuer or owner fetch (x-issuer-did)
//   - POST /api/v1/files/accessible-vc     mint a VC for {cid, holder} (x-issuer-did)
//   - GET  /api/v1/viewer/files/{cid}      public files, or private files with an Authorization token
//   - POST /api/v2/presentations           presentation -> authorization token (x-api-key)
//
// Content ids are CIDv1 (raw codec, sha2-256). Credentials and authorization
// tokens are HS256 JWTs: the file manager signs credentials that the presentation
// service verifies, and the presentation service signs authorization tokens that
// the file manager verifies. An authorization token is bound to the holder and
// CID of the credential it was issued for.
//
// Unlike the client, these services verify every token they receive because
// they stand in for the trusted remote side.
package devservices
