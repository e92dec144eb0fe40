package automate

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

const (
	// DefaultOfflineCondition selects agents the server reports as offline.
	DefaultOfflineCondition = "Status='Offline'"

	defaultTimeout = 30 * time.Second
)

// DefaultOnlineStatuses holds the Status values counted as online.
var DefaultOnlineStatuses = []string{"Online"}

// Config contains the connection settings for a ConnectWise Automate server.
//
// Example configuration (HCL, see internal/config):
//
//	automate {
//	  server_url = "https://automate.example.com"
//	  username   = "api-user"
//	  password   = env("CWA_PASSWORD")
//	  client_id  = "00000000-0000-0000-0000-000000000000"
//	}
type Config struct {
	// ServerURL is the base URL of the Automate server. A trailing slash is
	// stripped.
	// Example: "https://automate.example.com"
	ServerURL string `json:"serverUrl"`

	Username string `json:"username"`
	Password string `json:"-"`

	// ClientID is the integrator client identifier sent with every request.
	ClientID string `json:"clientId"`

	// TwoFactorCode is sent with the login exchange when set.
	TwoFactorCode string `json:"-"`

	// TLSVerify controls TLS certificate verification.
	// Set to false only for servers with self-signed certificates.
	TLSVerify *bool `json:"tlsVerify,omitempty"`

	// Timeout for a single HTTP exchange.
	// Default: 30 seconds
	Timeout time.Duration `json:"timeout,omitempty"`

	// OnlineStatuses are the Status values counted as online. Comparison is
	// an exact match against the string form of the field, so servers that
	// report numeric codes can be configured with e.g. []string{"1"}.
	// Default: ["Online"]
	OnlineStatuses []string `json:"onlineStatuses,omitempty"`

	// OfflineCondition is the server-side condition used by offline and stale
	// detection.
	// Default: Status='Offline'
	OfflineCondition string `json:"offlineCondition,omitempty"`

	// HTTPClient overrides the client built by NewHTTPClient.
	HTTPClient *http.Client `json:"-"`

	// Logger (optional)
	Logger hclog.Logger `json:"-"`

	// Metrics (optional)
	Metrics *Metrics `json:"-"`

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time `json:"-"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		TLSVerify:        &tlsVerify,
		Timeout:          defaultTimeout,
		OnlineStatuses:   append([]string(nil), DefaultOnlineStatuses...),
		OfflineCondition: DefaultOfflineCondition,
	}
}

// applyDefaults fills every unset optional field.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if len(c.OnlineStatuses) == 0 {
		c.OnlineStatuses = defaults.OnlineStatuses
	}
	if c.OfflineCondition == "" {
		c.OfflineCondition = defaults.OfflineCondition
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
}

// Validate checks if the configuration is valid. Every problem found is
// reported, not just the first.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.ServerURL == "" {
		result = multierror.Append(result, fmt.Errorf("server URL is required"))
	} else {
		parsedURL, err := url.Parse(c.ServerURL)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid server URL: %w", err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			result = multierror.Append(result,
				fmt.Errorf("server URL must use http or https scheme, got: %q", parsedURL.Scheme))
		}
	}

	if c.Username == "" {
		result = multierror.Append(result, fmt.Errorf("username is required"))
	}
	if c.Password == "" {
		result = multierror.Append(result, fmt.Errorf("password is required"))
	}
	if c.ClientID == "" {
		result = multierror.Append(result, fmt.Errorf("client ID is required"))
	}

	if c.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("timeout must be positive, got: %v", c.Timeout))
	}

	if err := result.ErrorOrNil(); err != nil {
		return &Error{Op: "Validate", Err: ErrConfiguration, Cause: err}
	}
	return nil
}

// NewHTTPClient creates a configured HTTP client for this connection.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	// Configure TLS verification
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
