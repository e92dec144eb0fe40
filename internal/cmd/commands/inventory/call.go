package inventory

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/cwa-tools/cwa-inventory/internal/cmd/base"
	"github.com/cwa-tools/cwa-inventory/internal/config"
	"github.com/cwa-tools/cwa-inventory/internal/tools"
	"github.com/cwa-tools/cwa-inventory/pkg/automate"
)

type CallCommand struct {
	*base.Command

	// Loader reads the configuration file. Defaults to config.NewLoader().
	Loader *config.Loader

	flagConfig      string
	flagFormat      string
	flagLogLevel    string
	flagTimeout     time.Duration
	flagMetricsFile string
}

func (c *CallCommand) Synopsis() string {
	return "Run an inventory tool against the Automate server"
}

func (c *CallCommand) Help() string {
	return `Usage: cwa-inventory call [options] <tool> [key=value ...]

  This command runs one inventory tool and prints its result. Parameters
  are given as key=value pairs; repeat a key or separate values with commas
  to pass a list.

  Connection settings are read from the configuration file and the
  CWA_SERVER_URL, CWA_USERNAME, CWA_PASSWORD, CWA_CLIENT_ID and CWA_2FA_CODE
  environment variables.

  Examples:
    cwa-inventory call -config=cwa.hcl get_inventory_summary
    cwa-inventory call find_offline_computers days_offline=7 limit=20
    cwa-inventory call check_computers_exist computerNames=WS-01,WS-02` +
		c.Flags().Help()
}

func (c *CallCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("call", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		"Path to the HCL configuration file.",
	)
	f.StringVar(
		&c.flagFormat, "format", "json",
		"Output format: json or yaml.",
	)
	f.StringVar(
		&c.flagLogLevel, "log-level", "",
		"Log level (trace, debug, info, warn, error). Overrides log_level in the config file.",
	)
	f.DurationVar(
		&c.flagTimeout, "timeout", 5*time.Minute,
		"Deadline for the whole call.",
	)
	f.StringVar(
		&c.flagMetricsFile, "metrics-file", "",
		"Write client metrics in Prometheus text format to this file after the call.",
	)

	return f
}

func (c *CallCommand) Run(args []string) int {
	logger, ui := c.Log, c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if c.flagFormat != "json" && c.flagFormat != "yaml" {
		ui.Error(fmt.Sprintf("unsupported format %q", c.flagFormat))
		return 1
	}

	rest := flags.Args()
	if len(rest) == 0 {
		ui.Error("a tool name is required; run \"cwa-inventory tools\" to list them")
		return 1
	}
	toolName := rest[0]

	params, err := ParseParams(rest[1:])
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	loader := c.Loader
	if loader == nil {
		loader = config.NewLoader()
	}
	cfg, err := loader.Load(c.flagConfig)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	logLevel := c.flagLogLevel
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	if logLevel != "" {
		level := hclog.LevelFromString(logLevel)
		if level == hclog.NoLevel {
			ui.Error(fmt.Sprintf("invalid log level %q", logLevel))
			return 1
		}
		logger.SetLevel(level)
	}

	clientCfg, err := cfg.AutomateConfig(logger)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	reg := prometheus.NewRegistry()
	clientCfg.Metrics = automate.NewMetrics(reg)

	client, err := automate.NewClient(clientCfg)
	if err != nil {
		ui.Error(fmt.Sprintf("error creating Automate client: %v", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, c.flagTimeout)
	defer cancel()

	registry := tools.NewRegistry(client, logger)
	result, err := registry.Call(ctx, toolName, params)

	if c.flagMetricsFile != "" {
		if werr := prometheus.WriteToTextfile(c.flagMetricsFile, reg); werr != nil {
			logger.Warn("error writing metrics file", "path", c.flagMetricsFile, "error", werr)
		}
	}

	if err != nil {
		ui.Error(fmt.Sprintf("error running %s: %v", toolName, err))
		return 1
	}

	out, err := render(result, c.flagFormat)
	if err != nil {
		ui.Error(fmt.Sprintf("error rendering result: %v", err))
		return 1
	}
	ui.Output(out)

	return 0
}

// ParseParams turns key=value arguments into tool parameters. A key given
// more than once becomes a list, and each of its values is split on commas.
// A single value is passed through as is; list parameters split it later.
func ParseParams(args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", arg)
		}

		switch prev := params[key].(type) {
		case nil:
			params[key] = value
		case string:
			params[key] = append(splitList(prev), splitList(value)...)
		case []string:
			params[key] = append(prev, splitList(value)...)
		}
	}
	return params, nil
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// render encodes v as indented JSON or as YAML. YAML output goes through
// JSON first so both formats use the same field names.
func render(v any, format string) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	if format == "json" {
		return string(b), nil
	}

	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return "", err
	}
	y, err := yaml.Marshal(generic)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(y), "\n"), nil
}
