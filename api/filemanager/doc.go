// Package filemanager is the client of the file manager service: multipart
// upload under an access policy, issuer- and viewer-scoped file fetches, and
// minting of VCs that grant a holder access to one CID.
package filemanager
