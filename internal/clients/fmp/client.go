// Package fmp provides a Financial Modeling Prep client used for bond
// reference prices looked up by ISIN.
//
// FMP has no dedicated bond endpoint; bonds resolve through the generic
// profile and quote endpoints, each of which may or may not carry a usable
// price field. The bond pricing service scans both payloads for candidate
// fields, so this client returns the first result row loosely typed.
package fmp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://financialmodelingprep.com/api/v3"

// ErrMissingAPIKey is returned when a request is attempted without a
// configured API key. The key is required for every FMP endpoint.
var ErrMissingAPIKey = errors.New("FMP API key is not configured")

// Client is the Financial Modeling Prep API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new FMP client. apiKey may be empty; requests then fail
// with ErrMissingAPIKey at call time.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.With().Str("client", "fmp").Logger(),
	}
}

// GetProfile fetches the instrument profile for an ISIN and returns the first
// result row.
func (c *Client) GetProfile(isin string) (map[string]interface{}, error) {
	return c.getFirstRow("/profile/" + url.PathEscape(isin))
}

// GetQuote fetches the instrument quote for an ISIN and returns the first
// result row.
func (c *Client) GetQuote(isin string) (map[string]interface{}, error) {
	return c.getFirstRow("/quote/" + url.PathEscape(isin))
}

// getFirstRow performs a GET request and returns the first element of the
// JSON array response, or nil when the provider has no data.
func (c *Client) getFirstRow(path string) (map[string]interface{}, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqURL := c.baseURL + path + "?apikey=" + url.QueryEscape(c.apiKey)

	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("FMP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FMP API returned status %d: %s", resp.StatusCode, string(body))
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse FMP response: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
