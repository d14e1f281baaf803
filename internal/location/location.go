// Package location resolves the user's country for region-aware advice.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/pestid/internal/location"

const (
	// DefaultEndpoint is the public IP geolocation service. A specific
	// address is looked up at <base>/<ip>/json/.
	DefaultEndpoint = "https://ipapi.co/json/"

	// Unknown fills any field the lookup could not resolve.
	Unknown = "Unknown"

	defaultTimeout = 5 * time.Second

	// maxResponseSize bounds the geolocation response body.
	maxResponseSize = 64 << 10
)

// ErrUnknownCountry is returned by Select for countries outside Countries().
var ErrUnknownCountry = errors.New("unknown country")

// Info is a coarse location.
type Info struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
}

// Known reports whether the country was resolved.
func (i Info) Known() bool {
	return i.Country != "" && i.Country != Unknown
}

// unknownInfo is returned on any lookup failure.
func unknownInfo() Info {
	return Info{Country: Unknown, Region: Unknown, City: Unknown}
}

// ipapiResponse is the subset of the ipapi.co payload we read.
type ipapiResponse struct {
	CountryName string `json:"country_name"`
	Region      string `json:"region"`
	City        string `json:"city"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// Config configures a Client.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client looks up the caller's location by IP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewClient creates a geolocation client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		tracer:     otel.Tracer(instrumentationName),
	}
}

// Lookup resolves clientIP, the address of the user being served. Loopback,
// private and unparsable addresses fall back to the endpoint's own view,
// which is the caller's address when pestid runs on the user's machine.
// Lookup never fails: any error yields Unknown for each missing field.
func (c *Client) Lookup(ctx context.Context, clientIP string) Info {
	ctx, span := c.tracer.Start(ctx, "location.lookup")
	defer span.End()

	target := c.endpoint
	if ip, ok := publicAddr(clientIP); ok {
		target = c.endpointFor(ip)
	}
	span.SetAttributes(attribute.Bool("location.by_ip", target != c.endpoint))

	start := time.Now()
	info, err := c.fetch(ctx, target)
	LookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		LookupsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		c.logger.Warn("location lookup failed", zap.Error(err))
		return unknownInfo()
	}

	if info.Country == "" {
		info.Country = Unknown
	}
	if info.Region == "" {
		info.Region = Unknown
	}
	if info.City == "" {
		info.City = Unknown
	}

	LookupsTotal.WithLabelValues("success").Inc()
	span.SetAttributes(attribute.String("location.country", info.Country))
	return info
}

// endpointFor turns ".../json/" into ".../<ip>/json/".
func (c *Client) endpointFor(ip netip.Addr) string {
	base := strings.TrimSuffix(strings.TrimSuffix(c.endpoint, "/"), "/json")
	return base + "/" + ip.String() + "/json/"
}

// publicAddr parses s and reports whether it is a globally routable unicast
// address worth geolocating.
func publicAddr(s string) (netip.Addr, bool) {
	ip, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, false
	}
	ip = ip.Unmap()
	if !ip.IsGlobalUnicast() || ip.IsPrivate() {
		return netip.Addr{}, false
	}
	return ip, true
}

func (c *Client) fetch(ctx context.Context, target string) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Info{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Info{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Info{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var r ipapiResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Info{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if r.Error {
		return Info{}, fmt.Errorf("lookup rejected: %s", r.Reason)
	}

	return Info{
		Country: strings.TrimSpace(r.CountryName),
		Region:  strings.TrimSpace(r.Region),
		City:    strings.TrimSpace(r.City),
	}, nil
}
