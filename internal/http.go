package internal

import "net/http"

// HeaderTransport is a RoundTripper that sets fixed headers on every request
// before handing it to Base.
type HeaderTransport struct {
	Base    http.RoundTripper
	Headers http.Header
}

var _ http.RoundTripper = (*HeaderTransport)(nil)

func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	for key, values := range t.Headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
