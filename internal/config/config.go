package config

import (
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/cwa-tools/cwa-inventory/pkg/automate"
)

// Environment variables that override the configuration file.
const (
	EnvServerURL     = "CWA_SERVER_URL"
	EnvUsername      = "CWA_USERNAME"
	EnvPassword      = "CWA_PASSWORD"
	EnvClientID      = "CWA_CLIENT_ID"
	EnvTwoFactorCode = "CWA_2FA_CODE"
)

// Config is the application configuration.
type Config struct {
	// LogLevel is the default log level of the CLI.
	LogLevel string `hcl:"log_level,optional"`

	// Automate configures the connection to the Automate server.
	Automate *Automate `hcl:"automate,block"`
}

// Automate is the automate block of the configuration file.
type Automate struct {
	ServerURL     string `hcl:"server_url,optional"`
	Username      string `hcl:"username,optional"`
	Password      string `hcl:"password,optional"`
	ClientID      string `hcl:"client_id,optional"`
	TwoFactorCode string `hcl:"two_factor_code,optional"`

	// TLSVerify disables certificate verification when false.
	TLSVerify *bool `hcl:"tls_verify,optional"`

	// Timeout is a duration string, e.g. "45s".
	Timeout string `hcl:"timeout,optional"`

	// OnlineStatuses are the Status values that count as online.
	OnlineStatuses []string `hcl:"online_statuses,optional"`

	// OfflineCondition selects offline computers on the server.
	OfflineCondition string `hcl:"offline_condition,optional"`
}

// Loader reads configuration files.
type Loader struct {
	Fs        afero.Fs
	LookupEnv func(string) (string, bool)
}

// NewLoader returns a loader that reads from the OS filesystem and
// environment.
func NewLoader() *Loader {
	return &Loader{
		Fs:        afero.NewOsFs(),
		LookupEnv: os.LookupEnv,
	}
}

// Load parses the HCL file at path and overlays the CWA_* environment
// variables. An empty path loads the environment only.
//
// Values in the file may reference the environment with env("NAME").
func (l *Loader) Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		src, err := afero.ReadFile(l.Fs, path)
		if err != nil {
			return nil, configError("error reading config file", err)
		}
		if err := hclsimple.Decode(path, src, l.evalContext(), cfg); err != nil {
			return nil, configError("error parsing config file", err)
		}
	}

	if cfg.Automate == nil {
		cfg.Automate = &Automate{}
	}
	l.overlayEnv(cfg.Automate)

	return cfg, nil
}

func configError(msg string, err error) error {
	return &automate.Error{Op: "LoadConfig", Err: automate.ErrConfiguration, Cause: err, Msg: msg}
}

func (l *Loader) evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc(l.lookupEnv),
		},
	}
}

func (l *Loader) lookupEnv(name string) (string, bool) {
	if l.LookupEnv == nil {
		return "", false
	}
	return l.LookupEnv(name)
}

func (l *Loader) overlayEnv(a *Automate) {
	for name, dst := range map[string]*string{
		EnvServerURL:     &a.ServerURL,
		EnvUsername:      &a.Username,
		EnvPassword:      &a.Password,
		EnvClientID:      &a.ClientID,
		EnvTwoFactorCode: &a.TwoFactorCode,
	} {
		if val, ok := l.lookupEnv(name); ok && val != "" {
			*dst = val
		}
	}
}

// envFunc returns the value of an environment variable, or an empty string
// when it is not set.
func envFunc(lookup func(string) (string, bool)) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			val, _ := lookup(args[0].AsString())
			return cty.StringVal(val), nil
		},
	})
}

// AutomateConfig converts the automate block into a client configuration.
// Required settings are checked when the client is created.
func (c *Config) AutomateConfig(logger hclog.Logger) (*automate.Config, error) {
	a := c.Automate
	if a == nil {
		a = &Automate{}
	}

	cfg := automate.DefaultConfig()
	cfg.ServerURL = a.ServerURL
	cfg.Username = a.Username
	cfg.Password = a.Password
	cfg.ClientID = a.ClientID
	cfg.TwoFactorCode = a.TwoFactorCode
	cfg.Logger = logger

	if a.TLSVerify != nil {
		verify := *a.TLSVerify
		cfg.TLSVerify = &verify
	}
	if a.Timeout != "" {
		timeout, err := time.ParseDuration(a.Timeout)
		if err != nil {
			return nil, configError("error parsing automate timeout", err)
		}
		cfg.Timeout = timeout
	}
	if len(a.OnlineStatuses) > 0 {
		cfg.OnlineStatuses = a.OnlineStatuses
	}
	if a.OfflineCondition != "" {
		cfg.OfflineCondition = a.OfflineCondition
	}

	return cfg, nil
}
