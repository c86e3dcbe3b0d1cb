package gridctl

import (
	"context"
	"io"
	"log/slog"
	"strings"

	cfg "github.com/gridops/gridctl/internal/config"
	"github.com/gridops/gridctl/internal/controller"
	"github.com/gridops/gridctl/internal/history"
	"github.com/gridops/gridctl/internal/history/factory"
	"github.com/gridops/gridctl/internal/scanner"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Settings = cfg.Settings

type HistoryConfig = cfg.HistoryConfig

type HistorySink = history.Sink

type Status = controller.Status

type StartOptions = controller.StartOptions

type StopOptions = controller.StopOptions

// Controller is a thin facade over internal/controller.Controller.
// It provides a stable public API for embedding.

type Controller struct{ inner *controller.Controller }

// Defaults returns the built-in controller settings.
func Defaults() Settings { return cfg.Defaults() }

// LoadSettings reads a TOML settings file; an empty path yields Defaults.
func LoadSettings(path string) (Settings, error) { return cfg.Load(path) }

// NewController builds a controller from settings. A nil logger falls
// back to slog.Default().
func NewController(s Settings, lg *slog.Logger) *Controller {
	return &Controller{inner: controller.New(s, lg)}
}

// NewHistorySink builds the audit sink selected by the history config,
// or nil when history is disabled. The type field supplies the DSN
// scheme when the DSN itself carries none.
func NewHistorySink(hc HistoryConfig) (HistorySink, error) {
	if !hc.Enabled {
		return nil, nil
	}
	dsn := hc.DSN
	if !strings.Contains(dsn, "://") {
		switch hc.Type {
		case "postgres", "clickhouse":
			dsn = hc.Type + "://" + dsn
		}
	}
	return factory.NewSinkFromDSN(dsn)
}

func (c *Controller) SetSink(s HistorySink) { c.inner.SetSink(s) }
func (c *Controller) SetOutput(w io.Writer) { c.inner.SetOutput(w) }
func (c *Controller) SetInput(r io.Reader)  { c.inner.SetInput(r) }

func (c *Controller) Start(ctx context.Context, configPath string, opts StartOptions) (Status, error) {
	return c.inner.Start(ctx, configPath, opts)
}

func (c *Controller) Stop(ctx context.Context, configPath string, opts StopOptions) (Status, error) {
	return c.inner.Stop(ctx, configPath, opts)
}

func (c *Controller) Status(configPath string) (Status, error) {
	return c.inner.Status(configPath)
}

// RunScanner executes the one-shot volatility scanner in the foreground
// and returns its exit code.
func RunScanner(ctx context.Context, s Settings, args []string, stdout, stderr io.Writer, stdin io.Reader) (int, error) {
	r := scanner.Runner{Entrypoint: s.ScannerEntrypoint, Stdout: stdout, Stderr: stderr, Stdin: stdin}
	return r.Run(ctx, args)
}
