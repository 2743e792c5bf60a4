package sentrynative

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// EnvelopeMIME is the content type for envelope bodies.
	EnvelopeMIME = "application/x-sentry-envelope"
	// APIVersion is the version of the ingestion API envelopes target.
	APIVersion = 7
	// sdkUserAgent identifies this client in auth headers.
	sdkUserAgent = "sentrynative.go/1.0"
)

// DSN holds the pieces a custom transport needs to address envelopes to
// the upstream service: the full envelope endpoint URL and the value of
// the x-sentry-auth header.
type DSN struct {
	// Auth is the x-sentry-auth header value.
	Auth string
	// URL is the envelope ingestion endpoint.
	URL string
}

// ParseDSN parses a DSN of the form scheme://publickey@host/projectid into
// the request parts a transport needs. The scheme must be http or https.
func ParseDSN(dsn string) (*DSN, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, &ConfigError{Field: "dsn", Reason: "not a valid URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &ConfigError{Field: "dsn", Reason: "scheme must be http or https"}
	}
	if u.User == nil || u.User.Username() == "" {
		return nil, &ConfigError{Field: "dsn", Reason: "missing public key"}
	}
	if u.Host == "" {
		return nil, &ConfigError{Field: "dsn", Reason: "missing host"}
	}
	project := strings.Trim(u.Path, "/")
	if project == "" {
		return nil, &ConfigError{Field: "dsn", Reason: "missing project id"}
	}

	return &DSN{
		Auth: fmt.Sprintf("Sentry sentry_key=%s, sentry_version=%d, sentry_client=%s",
			u.User.Username(), APIVersion, sdkUserAgent),
		URL: fmt.Sprintf("%s://%s/api/%s/envelope/", u.Scheme, u.Host, project),
	}, nil
}
