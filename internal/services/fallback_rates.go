package services

// fallbackUSDRates is the embedded static rate table used when the live
// provider is unreachable. Each entry is the approximate value of one unit of
// the currency in US dollars (USD-per-unit).
//
// For a non-USD base the cross rate is derived exactly via the USD pivot:
// rate(base->X) = fallbackUSDRates[base] / fallbackUSDRates[X]. For base USD
// the table is returned verbatim.
var fallbackUSDRates = map[string]float64{
	"USD": 1.0,
	"EUR": 1.09,
	"GBP": 1.27,
	"CHF": 1.13,
	"JPY": 0.0067,
	"CAD": 0.73,
	"AUD": 0.66,
	"NZD": 0.61,
	"HKD": 0.128,
	"SGD": 0.74,
	"SEK": 0.095,
	"NOK": 0.094,
	"DKK": 0.146,
	"PLN": 0.25,
	"CZK": 0.043,
	"HUF": 0.0028,
	"CNY": 0.138,
	"INR": 0.012,
	"KRW": 0.00075,
	"MXN": 0.054,
	"BRL": 0.18,
	"ZAR": 0.055,
}
