// Package authclient is the HTTP implementation of goSession.AuthClient for
// the back-office auth API.
//
// Login posts {"email","password"} as JSON and expects {"admin"|"user", "token"}
// back. Logout posts with the bearer token and returns the server's
// "message". Non-2xx answers become *goSession.AuthError carrying the status
// and the server's message; transport failures become *goSession.AuthError
// with Timeout or NetworkError set, so the Store can classify them.
//
// Every request carries X-Request-ID, taken from goSession.WithRequestID or
// generated.
package authclient
