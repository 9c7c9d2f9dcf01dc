// Package yahoo provides a Yahoo Finance API client for real-time quotes,
// one-day charts and company profiles.
package yahoo

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

const defaultBaseURL = "https://query1.finance.yahoo.com"

// ErrNoData is returned when the provider answers successfully but carries no
// result payload for the requested symbol.
var ErrNoData = errors.New("no data returned for symbol")

// Client is a Yahoo Finance API client
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// GetQuote fetches the real-time quote for a symbol.
func (c *Client) GetQuote(symbol string) (*Quote, error) {
	params := url.Values{}
	params.Add("symbols", symbol)

	body, err := c.doGet("/v7/finance/quote", params)
	if err != nil {
		return nil, err
	}

	var result quoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}

	if result.QuoteResponse.Error != nil {
		return nil, result.QuoteResponse.Error
	}
	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	return &result.QuoteResponse.Result[0], nil
}

// GetChart fetches the one-day chart for a symbol. The meta block is the
// primary source of price and exchange fields.
func (c *Client) GetChart(symbol string) (*Chart, error) {
	params := url.Values{}
	params.Add("interval", "1m")
	params.Add("range", "1d")

	body, err := c.doGet("/v8/finance/chart/"+url.PathEscape(symbol), params)
	if err != nil {
		return nil, err
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, result.Chart.Error
	}
	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	return &result.Chart.Result[0], nil
}

// GetProfile fetches sector, industry and long name for a symbol.
func (c *Client) GetProfile(symbol string) (*CompanyProfile, error) {
	params := url.Values{}
	params.Add("modules", "assetProfile,quoteType")

	body, err := c.doGet("/v10/finance/quoteSummary/"+url.PathEscape(symbol), params)
	if err != nil {
		return nil, err
	}

	var result quoteSummaryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse quote summary response: %w", err)
	}

	if result.QuoteSummary.Error != nil {
		return nil, result.QuoteSummary.Error
	}
	if len(result.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	r := result.QuoteSummary.Result[0]
	return &CompanyProfile{
		Sector:   r.AssetProfile.Sector,
		Industry: r.AssetProfile.Industry,
		LongName: r.QuoteType.LongName,
	}, nil
}

// doGet performs a GET request against the API and returns the raw body.
func (c *Client) doGet(path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
