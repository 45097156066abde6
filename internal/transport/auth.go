package transport

import "net/http"

// Authenticator applies credentials to an outgoing extract request.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth sends requests unauthenticated.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {}

// BearerAuth sends a bearer token.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) {
	if a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// HeaderAuth sends a token in a custom header.
type HeaderAuth struct {
	Header string
	Token  string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request) {
	if a.Token == "" || a.Header == "" {
		return
	}
	req.Header.Set(a.Header, a.Token)
}

// QueryAuth sends a token as a query parameter.
type QueryAuth struct {
	Param string
	Token string
}

// Apply implements the Authenticator interface for QueryAuth.
func (a *QueryAuth) Apply(req *http.Request) {
	if req.URL == nil || a.Token == "" {
		return
	}
	query := req.URL.Query()
	query.Set(a.Param, a.Token)
	req.URL.RawQuery = query.Encode()
}

// FromToken picks bearer auth for a non-empty token and no auth otherwise.
func FromToken(token string) Authenticator {
	if token == "" {
		return &NoAuth{}
	}
	return &BearerAuth{Token: token}
}
