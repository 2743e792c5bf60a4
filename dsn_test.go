package sentrynative

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDSNHosted(t *testing.T) {
	dsn, err := ParseDSN("https://a0b1c2d3e4f5678910abcdeffedcba12@o209016.ingest.example.io/0123456")
	require.NoError(t, err)

	assert.Equal(t, "https://o209016.ingest.example.io/api/0123456/envelope/", dsn.URL)
	assert.Equal(t,
		fmt.Sprintf("Sentry sentry_key=a0b1c2d3e4f5678910abcdeffedcba12, sentry_version=%d, sentry_client=%s",
			APIVersion, sdkUserAgent),
		dsn.Auth)
}

func TestParseDSNPrivateHost(t *testing.T) {
	dsn, err := ParseDSN("http://a0b1c2d3e4f5678910abcdeffedcba12@192.168.1.1/0123456")
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.1/api/0123456/envelope/", dsn.URL)
}

func TestParseDSNRejectsMalformed(t *testing.T) {
	var cfgErr *ConfigError
	for _, dsn := range []string{
		"",
		"ftp://key@example.com/1",
		"https://example.com/1",
		"https://key@/1",
		"https://key@example.com",
		"https://key@example.com/",
	} {
		_, err := ParseDSN(dsn)
		require.Error(t, err, "dsn %q", dsn)
		assert.ErrorAs(t, err, &cfgErr, "dsn %q", dsn)
	}
}
