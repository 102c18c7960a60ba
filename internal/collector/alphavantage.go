package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"TrendSentry/internal/model"
)

// DefaultBaseURL is the public Alpha Vantage endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// AlphaVantageFetcher implements Fetcher against the Alpha Vantage
// TIME_SERIES_INTRADAY API.
type AlphaVantageFetcher struct {
	BaseURL  string
	APIKey   string
	Interval string
	Client   *http.Client
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
// Interval is the bar interval, e.g. "5min".
func NewAlphaVantageFetcher(baseURL, apiKey, interval, proxyURL string) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if interval == "" {
		interval = "5min"
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &AlphaVantageFetcher{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Interval: interval,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// FetchIntraday fetches the intraday series for symbol and returns it as a
// raw batch keyed by timestamp string, the shape the store ingests.
func (f *AlphaVantageFetcher) FetchIntraday(symbol string) (model.RawBatch, error) {
	endpoint := fmt.Sprintf("%s?function=TIME_SERIES_INTRADAY&symbol=%s&interval=%s&apikey=%s",
		f.BaseURL, url.QueryEscape(symbol), f.Interval, f.APIKey)
	resp, err := f.Client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch intraday: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch intraday: status %d, body: %s", resp.StatusCode, string(body))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return parseIntradayPayload(body)
}

// avQuote matches Alpha Vantage's numbered string fields.
type avQuote struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// parseIntradayPayload converts the API response into a raw batch. The API
// reports failures as 200s with an "Error Message" or rate-limit "Note"
// field, so both are checked before looking for the series object.
func parseIntradayPayload(body []byte) (model.RawBatch, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	if raw, ok := envelope["Error Message"]; ok {
		var msg string
		_ = json.Unmarshal(raw, &msg)
		return nil, fmt.Errorf("API error: %s", msg)
	}
	if raw, ok := envelope["Note"]; ok {
		var note string
		_ = json.Unmarshal(raw, &note)
		return nil, fmt.Errorf("API rate limited: %s", note)
	}

	var seriesRaw json.RawMessage
	for key, raw := range envelope {
		if strings.HasPrefix(key, "Time Series") {
			seriesRaw = raw
			break
		}
	}
	if seriesRaw == nil {
		return nil, fmt.Errorf("no time series object in payload")
	}

	var series map[string]avQuote
	if err := json.Unmarshal(seriesRaw, &series); err != nil {
		return nil, fmt.Errorf("decode time series: %w", err)
	}

	batch := make(model.RawBatch, len(series))
	for ts, q := range series {
		quote, err := q.toRawQuote()
		if err != nil {
			return nil, fmt.Errorf("quote at %s: %w", ts, err)
		}
		batch[ts] = quote
	}
	return batch, nil
}

func (q avQuote) toRawQuote() (model.RawQuote, error) {
	fields := [5]struct {
		name  string
		value string
	}{
		{"open", q.Open}, {"high", q.High}, {"low", q.Low}, {"close", q.Close}, {"volume", q.Volume},
	}
	var out [5]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f.value, 64)
		if err != nil {
			return model.RawQuote{}, fmt.Errorf("parse %s %q: %w", f.name, f.value, err)
		}
		out[i] = v
	}
	return model.RawQuote{Open: out[0], High: out[1], Low: out[2], Close: out[3], Volume: out[4]}, nil
}
