// Copyright (c) Microsoft. All rights reserved.

// Package booking provides hotel and flight search tools backed by SerpAPI.
//
// Search failures are never returned as errors. A failed hotel search yields
// nil and a failed flight leg is left out of the result; both print a
// diagnostic so the model can still answer with whatever was found.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

const (
	// DefaultBaseURL is the SerpAPI search endpoint.
	DefaultBaseURL = "https://serpapi.com/search.json"

	// DefaultTimeout bounds each search request.
	DefaultTimeout = 30 * time.Second
)

// Tool names as exposed to the model.
const (
	HotelToolName  = "booking_hotel"
	FlightToolName = "booking_flight"
)

// HotelQuery is a hotel search. Values are passed to the search API as-is.
type HotelQuery struct {
	Query        string `json:"query" jsonschema:"The name of the city"`
	CheckInDate  string `json:"check_in_date" jsonschema:"Hotel Check-in Time"`
	CheckOutDate string `json:"check_out_date" jsonschema:"Hotel Check-out Time"`
}

// FlightQuery is a round-trip flight search. Airports are IATA codes.
type FlightQuery struct {
	Origin       string `json:"origin" jsonschema:"The airport code of Departure"`
	Destination  string `json:"destination" jsonschema:"The airport code of Destination"`
	OutboundDate string `json:"outbound_date" jsonschema:"The date of outbound"`
	ReturnDate   string `json:"return_date" jsonschema:"The date of Return_date"`
}

// Client calls the SerpAPI search endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	diag       io.Writer
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL overrides the search endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient provides the http.Client used for searches. Its Timeout is
// left as configured.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithDiagnostics sets where search diagnostics are printed. Defaults to
// os.Stdout.
func WithDiagnostics(w io.Writer) Option {
	return func(c *Client) { c.diag = w }
}

// New creates a Client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		diag:       os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchHotels looks up hotels for q and returns the "properties" field of
// the response exactly as the API sent it. It returns nil when the request
// fails, the status is not 200, or the field is absent.
func (c *Client) SearchHotels(ctx context.Context, q HotelQuery) json.RawMessage {
	params := url.Values{
		"engine":         {"google_hotels"},
		"q":              {q.Query},
		"check_in_date":  {q.CheckInDate},
		"check_out_date": {q.CheckOutDate},
		"adults":         {"1"},
		"currency":       {"GBP"},
		"gl":             {"uk"},
		"hl":             {"en"},
		"api_key":        {c.apiKey},
	}

	body, err := c.get(ctx, params)
	if err != nil {
		slog.WarnContext(ctx, "hotel search failed", "query", q.Query, "error", err)
		return nil
	}

	props := gjson.GetBytes(body, "properties")
	if !props.Exists() {
		slog.WarnContext(ctx, "hotel search returned no properties", "query", q.Query)
		return nil
	}
	return json.RawMessage(props.Raw)
}

// SearchFlights runs two sequential one-way searches, outbound then return,
// and concatenates the successful ones. A leg that fails prints a diagnostic
// and is skipped. The outbound parameters and the combined result are also
// printed to the diagnostics writer.
func (c *Client) SearchFlights(ctx context.Context, q FlightQuery) string {
	var result strings.Builder

	outbound := flightParams(q.Origin, q.Destination, q.OutboundDate, c.apiKey)
	fmt.Fprintln(c.diag, redacted(outbound))
	if body, err := c.get(ctx, outbound); err != nil {
		c.legFailed(ctx, "outbound", err)
	} else {
		result.WriteString("# outbound \n ")
		result.Write(body)
	}

	back := flightParams(q.Destination, q.Origin, q.ReturnDate, c.apiKey)
	if body, err := c.get(ctx, back); err != nil {
		c.legFailed(ctx, "return", err)
	} else {
		result.WriteString("\n # return \n")
		result.Write(body)
	}

	fmt.Fprintln(c.diag, result.String())
	return result.String()
}

func flightParams(from, to, date, apiKey string) url.Values {
	return url.Values{
		"engine":        {"google_flights"},
		"type":          {"2"}, // one-way
		"departure_id":  {from},
		"arrival_id":    {to},
		"outbound_date": {date},
		"currency":      {"GBP"},
		"hl":            {"en"},
		"api_key":       {apiKey},
	}
}

// redacted encodes params for display without the API key.
func redacted(params url.Values) string {
	shown := make(url.Values, len(params))
	for k, v := range params {
		if k != "api_key" {
			shown[k] = v
		}
	}
	return shown.Encode()
}

func (c *Client) legFailed(ctx context.Context, leg string, err error) {
	fmt.Fprintln(c.diag, "error!!!")
	slog.WarnContext(ctx, "flight search failed", "leg", leg, "error", err)
}

// get issues one search request and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	slog.DebugContext(ctx, "search request", "engine", params.Get("engine"))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return bytes.TrimSpace(body), nil
}

// Tools returns the flight and hotel search tools.
func (c *Client) Tools() []af.Tool {
	return []af.Tool{
		af.NewTypedTool(FlightToolName, "Function to book a flight.",
			func(ctx context.Context, q FlightQuery) (any, error) {
				return c.SearchFlights(ctx, q), nil
			},
		),
		af.NewTypedTool(HotelToolName, "Function to book a hotel.",
			func(ctx context.Context, q HotelQuery) (any, error) {
				return c.SearchHotels(ctx, q), nil
			},
		),
	}
}
