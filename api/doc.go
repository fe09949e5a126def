/*
Package api provides the wire-level pieces shared by the remote service clients.

This package is organized into two client subpackages:

1. filemanager - file upload, issuer and viewer file fetch, VC minting
2. authservice - VC to authorization token exchange (presentations)

The package itself holds the header names, request and response bodies, and the
request helpers both clients use to classify failures.

# Remote Services

The file manager serves content-addressed files under an access policy and mints
VCs granting a holder access to one CID. The auth service exchanges a presentation
carrying one VC for a short-lived authorization value.

# Failure Classification

- transport failures (DNS, connection refused) match interfaces.ErrNetworkUnreachable
- 401 on a file fetch matches interfaces.ErrPermissionDenied
- any other non-2xx is an *interfaces.RequestError carrying status, status text and body

# Trust Boundary

The presentation service is authenticated by a static API key. The clients never
derive it from user input; the commands load it from a flag, the environment or Vault,
and the gateway keeps it server-side so that browsers never see it.
*/
package api
