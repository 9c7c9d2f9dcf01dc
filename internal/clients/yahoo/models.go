package yahoo

import "fmt"

// Quote holds the fields consumed from the real-time quote endpoint. Numeric
// fields are pointers so that absent values can be told apart from zero when
// quote data overrides chart data.
type Quote struct {
	Symbol                     string   `json:"symbol"`
	Currency                   string   `json:"currency"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	FullExchangeName           string   `json:"fullExchangeName"`
	MarketState                string   `json:"marketState"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	RegularMarketChange        *float64 `json:"regularMarketChange"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	RegularMarketOpen          *float64 `json:"regularMarketOpen"`
	RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow        *float64 `json:"regularMarketDayLow"`
	RegularMarketVolume        *int64   `json:"regularMarketVolume"`
}

// ChartMeta is the metadata block of a one-day chart response. It is the
// primary source for price fields; quote data overrides it where present.
type ChartMeta struct {
	Symbol               string   `json:"symbol"`
	Currency             string   `json:"currency"`
	ExchangeName         string   `json:"exchangeName"`
	FullExchangeName     string   `json:"fullExchangeName"`
	ShortName            string   `json:"shortName"`
	LongName             string   `json:"longName"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	PreviousClose        *float64 `json:"previousClose"`
	RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  *int64   `json:"regularMarketVolume"`
}

// Chart is the result payload of the one-day chart endpoint.
type Chart struct {
	Meta ChartMeta `json:"meta"`
}

// CompanyProfile holds the slow-moving descriptive fields fetched from the
// quote-summary endpoint. Empty strings mean the provider had no value.
type CompanyProfile struct {
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	LongName string `json:"longName"`
}

// APIError is an explicit error payload returned by the provider alongside an
// HTTP 200, e.g. for an unknown symbol.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error %s: %s", e.Code, e.Description)
}

// quoteResponse is the envelope of the v7 quote endpoint.
type quoteResponse struct {
	QuoteResponse struct {
		Result []Quote   `json:"result"`
		Error  *APIError `json:"error"`
	} `json:"quoteResponse"`
}

// chartResponse is the envelope of the v8 chart endpoint.
type chartResponse struct {
	Chart struct {
		Result []Chart   `json:"result"`
		Error  *APIError `json:"error"`
	} `json:"chart"`
}

// quoteSummaryResponse is the envelope of the v10 quote-summary endpoint.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			QuoteType struct {
				LongName string `json:"longName"`
			} `json:"quoteType"`
		} `json:"result"`
		Error *APIError `json:"error"`
	} `json:"quoteSummary"`
}
