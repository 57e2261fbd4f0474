package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := NewNetworkError("current request", cause)

	assert.Equal(t, "current request: connection reset by peer", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindNetwork, ErrorKind(err))

	wrapped := fmt.Errorf("poll bern: %w", err)
	assert.Equal(t, KindNetwork, ErrorKind(wrapped))
	assert.Equal(t, FetchErrorKind(0), ErrorKind(cause))
}

func TestNewHTTPStatusError(t *testing.T) {
	err := NewHTTPStatusError(503, "Service Unavailable")
	assert.Equal(t, KindHTTPStatus, err.Kind)
	assert.Equal(t, 503, err.StatusCode)
	assert.Equal(t, "api error: status 503: Service Unavailable", err.Error())

	assert.Equal(t, "api error: status 404", NewHTTPStatusError(404, "").Error())
}

func TestFetchErrorKind_String(t *testing.T) {
	assert.Equal(t, "network_error", KindNetwork.String())
	assert.Equal(t, "http_error", KindHTTPStatus.String())
	assert.Equal(t, "parse_error", KindParse.String())
	assert.Equal(t, "config_error", KindConfig.String())
	assert.Equal(t, "unknown_error", FetchErrorKind(0).String())
}
