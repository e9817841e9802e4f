// Command restdemo logs in against a user API and fetches the current user,
// through either the fetch or the resty adapter.
//
//	restdemo -config ./config.yml -transport resty
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/restkit/app"
	"github.com/kbukum/restkit/config"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/rest"
	"github.com/kbukum/restkit/rest/fetch"
	"github.com/kbukum/restkit/rest/restyclient"
	"github.com/kbukum/restkit/version"
)

const (
	serviceName     = "restdemo"
	envPrefix       = "RESTDEMO"
	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		}
		stop()
		os.Exit(1)
	}
}

type flags struct {
	configFile  string
	envFile     string
	transport   string
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configFile, "config", "", "path to config.yml (searched for when empty)")
	fs.StringVar(&f.envFile, "env", "", "path to a .env file (searched for when empty)")
	fs.StringVar(&f.transport, "transport", "", "adapter to use: fetch or resty (overrides config)")
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")
	return f, fs.Parse(args)
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	f, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if f.showVersion {
		return printVersion(stdout)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	logger.Init(&cfg.Logging)
	log := logger.WithComponent(serviceName)

	if cfg.Tracing.Enabled {
		shutdown, err := initTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	client, closeClient, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	a := app.New(client, app.WithLogger(log))
	log.Info("starting", logger.Fields(
		logger.FieldTransport, a.Transport(),
		"base_url", cfg.Client.BaseURL,
		"version", version.Get().Short(),
	))

	if _, err := a.Login(ctx, cfg.Credentials.Username, cfg.Credentials.Password); err != nil {
		return err
	}
	me, err := a.Me(ctx)
	if err != nil {
		return err
	}
	log.Info("current user", logger.Fields("name", me.Name, "email", me.Email, "friends", len(me.Friends)))
	return nil
}

func printVersion(w io.Writer) error {
	info := version.Get()
	build := "development build"
	if info.IsRelease() {
		build = "release"
	}
	_, err := fmt.Fprintf(w, "%s %s [%s]\n", serviceName, info, build)
	return err
}

func loadConfig(f flags) (*config.DemoConfig, error) {
	opts := []config.Option{config.WithEnvPrefix(envPrefix)}
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}

	var cfg config.DemoConfig
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	if f.transport != "" {
		cfg.Transport = f.transport
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// newClient builds the adapter named by cfg.Transport.
func newClient(cfg *config.DemoConfig) (rest.Client, func(), error) {
	log := logger.WithComponent("rest")
	switch cfg.Transport {
	case config.TransportFetch:
		c, err := fetch.New(cfg.Client, fetch.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case config.TransportResty:
		c, err := restyclient.New(cfg.Client, restyclient.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// initTelemetry starts the OTLP trace and metric exporters and returns a
// function that flushes and stops them.
func initTelemetry(ctx context.Context, cfg *config.DemoConfig) (func(), error) {
	providers, err := observability.Init(ctx, cfg.TelemetryConfig())
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", logger.ErrorFields("telemetry shutdown", err))
		}
	}, nil
}
