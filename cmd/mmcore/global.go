package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/mmcore"
	"github.com/hupe1980/mmcore/blobstore"
	"github.com/hupe1980/mmcore/diag"
)

// GlobalOptions hold options shared by all commands.
type GlobalOptions struct {
	Store       string
	LogLevel    string
	LogJSON     bool
	Jobs        int
	IOLimit     int64
	MemoryLimit int64
	Format      string
	MetricsAddr string
}

var globalOptions GlobalOptions

func init() {
	f := cmdRoot.PersistentFlags()
	f.StringVar(&globalOptions.Store, "store", "", "source store: a directory, s3://bucket/prefix or minio://host/bucket/prefix (default: directory of DATABASE)")
	f.StringVar(&globalOptions.LogLevel, "log-level", "warn", "log level: debug, info, warn or error")
	f.BoolVar(&globalOptions.LogJSON, "log-json", false, "write logs as JSON")
	f.IntVarP(&globalOptions.Jobs, "jobs", "j", 1, "number of concurrent workers")
	f.Int64Var(&globalOptions.IOLimit, "io-limit", 0, "limit reads from remote stores to `bytes` per second (0: unlimited)")
	f.Int64Var(&globalOptions.MemoryLimit, "memory-limit", 0, "limit `bytes` held by copied sources (0: unlimited)")
	f.StringVar(&globalOptions.Format, "format", "compact", "diagnostic format: compact, positioned or json")
	f.StringVar(&globalOptions.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on `addr` (e.g. :2112)")
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

func newLogger(gopts GlobalOptions, minLevel slog.Level) (*mmcore.Logger, error) {
	level, err := parseLevel(gopts.LogLevel)
	if err != nil {
		return nil, err
	}
	level = min(level, minLevel)

	if gopts.LogJSON {
		return mmcore.NewJSONLogger(level), nil
	}
	return mmcore.NewTextLogger(level), nil
}

// environment is the session plus the services that live as long as one command.
type environment struct {
	session *mmcore.Session
	logger  *mmcore.Logger
	server  *http.Server
}

// newEnvironment opens a session over store configured from the global flags.
// minLevel lowers the configured log level when a command needs more output.
func newEnvironment(gopts GlobalOptions, store blobstore.Store, minLevel slog.Level, opts ...mmcore.Option) (*environment, error) {
	logger, err := newLogger(gopts, minLevel)
	if err != nil {
		return nil, err
	}

	format, err := diag.ParseFormat(gopts.Format)
	if err != nil {
		return nil, err
	}

	env := &environment{logger: logger}

	base := []mmcore.Option{
		mmcore.WithLogger(logger),
		mmcore.WithJobs(gopts.Jobs),
		mmcore.WithIOLimit(gopts.IOLimit),
		mmcore.WithMemoryLimit(gopts.MemoryLimit),
		mmcore.WithRenderFormat(format),
	}

	if gopts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		base = append(base, mmcore.WithObserver(NewPrometheusObserver(reg)))
		env.server = serveMetrics(gopts.MetricsAddr, reg, logger)
	}

	env.session = mmcore.Open(store, append(base, opts...)...)
	return env, nil
}

func (e *environment) Close() error {
	err := e.session.Close()
	if e.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, e.server.Shutdown(ctx))
	}
	return err
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *mmcore.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return srv
}

// parseTexts turns NAME=TEXT arguments into virtual sources.
func parseTexts(texts []string) ([]blobstore.Source, error) {
	out := make([]blobstore.Source, 0, len(texts))
	for _, t := range texts {
		name, text, ok := strings.Cut(t, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --text %q, expected NAME=TEXT", t)
		}
		out = append(out, blobstore.Source{Name: name, Text: []byte(text)})
	}
	return out, nil
}
