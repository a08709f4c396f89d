// Package spotify implements the audio-feature lookup against the Spotify
// Web API: a metadata search followed by an audio-features fetch, with the
// client-credentials token flow and rate-limit aware retries.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"songprep/internal/core/ports"
	"songprep/internal/logging"
)

const (
	defaultMaxRetries  = 3
	defaultBackoff     = 500 * time.Millisecond
	defaultMinFields   = 12
	defaultHTTPTimeout = 15 * time.Second
)

// Config carries the client settings. ClientID/ClientSecret are exchanged
// for a short-lived bearer token on first use; the oauth2 transport refreshes
// it transparently when it expires.
type Config struct {
	ClientID         string
	ClientSecret     string
	BaseURL          string
	TokenURL         string
	MaxRetries       int
	RetryBackoff     time.Duration
	MinFeatureFields int
}

// Client is the HTTP client for the Spotify adapter. One Client is shared by
// the whole run; it holds the only authenticated connection to the catalog.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	maxRetries       int
	baseBackoff      time.Duration
	minFeatureFields int
	log              *logging.Logger
}

// compile-time interface assertion
var _ ports.FeatureProvider = (*Client)(nil)

// NewClient constructs a client whose requests carry a client-credentials
// bearer token. ctx bounds the token exchanges for the client's lifetime.
func NewClient(ctx context.Context, cfg Config, log *logging.Logger) *Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	httpClient := cc.Client(ctx)
	httpClient.Timeout = defaultHTTPTimeout

	return newClient(httpClient, cfg, log)
}

// NewClientWithHTTP bypasses the token flow and uses the given http.Client
// directly. Intended for tests against httptest servers.
func NewClientWithHTTP(httpClient *http.Client, cfg Config, log *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return newClient(httpClient, cfg, log)
}

func newClient(httpClient *http.Client, cfg Config, log *logging.Logger) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultBackoff
	}
	if cfg.MinFeatureFields <= 0 {
		cfg.MinFeatureFields = defaultMinFields
	}
	if log == nil {
		log = logging.NewNop()
	}

	return &Client{
		httpClient:       httpClient,
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		maxRetries:       cfg.MaxRetries,
		baseBackoff:      cfg.RetryBackoff,
		minFeatureFields: cfg.MinFeatureFields,
		log:              log.WithComponent("spotify"),
	}
}
