// Package jwt reads the claims of a bearer token restored from storage so the
// session Store can drop tokens that expired while the client was closed.
//
// An [Inspector] with no keys parses without verifying the signature; the
// client only needs the expiry and the server remains the authority. With
// keys configured the signature is verified first.
package jwt
