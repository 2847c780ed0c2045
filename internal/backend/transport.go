// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import "net/http"

// bearerTransport adds the crawler's bearer token to every request.
type bearerTransport struct {
	token string
	// Transport is the underlying RoundTripper. If nil,
	// http.DefaultTransport is used.
	Transport http.RoundTripper
}

// RoundTrip implements http.RoundTripper. The caller's request is not modified.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return transport.RoundTrip(r)
}

// maskToken returns a loggable prefix of a secret.
func maskToken(token string) string {
	if len(token) <= 10 {
		return "***"
	}
	return token[:10] + "..."
}
