package fmp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(apiKey, zerolog.Nop())
	c.baseURL = srv.URL
	return c
}

func TestGetProfileReturnsFirstRow(t *testing.T) {
	c := testClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profile/DE0001102580", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`[{"symbol":"DE0001102580","price":98.75,"currency":"EUR"}]`))
	})

	row, err := c.GetProfile("DE0001102580")
	require.NoError(t, err)
	assert.Equal(t, 98.75, row["price"])
	assert.Equal(t, "EUR", row["currency"])
}

func TestGetQuoteEmptyResponse(t *testing.T) {
	c := testClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	row, err := c.GetQuote("XS0000000000")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestMissingAPIKey(t *testing.T) {
	c := NewClient("", zerolog.Nop())

	_, err := c.GetQuote("DE0001102580")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestHTTPErrorStatus(t *testing.T) {
	c := testClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"Error Message":"Invalid API KEY"}`))
	})

	_, err := c.GetQuote("DE0001102580")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
