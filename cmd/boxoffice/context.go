package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmcdole/boxoffice/internal/adapter"
	"github.com/mmcdole/boxoffice/internal/adapter/source"
	"github.com/mmcdole/boxoffice/internal/boxoffice"
	"github.com/mmcdole/boxoffice/internal/metrics"
	"github.com/mmcdole/boxoffice/internal/store"
)

var registerMetrics sync.Once

type commandContext struct {
	configFlag  *string
	metricsFlag *string

	configOnce sync.Once
	config     *adapter.Config
	configErr  error

	modelOnce sync.Once
	box       *boxoffice.Model
	modelErr  error

	logger  *slog.Logger
	closers []io.Closer
	server  *http.Server
}

func newCommandContext(configFlag, metricsFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		metricsFlag: metricsFlag,
		logger:      adapter.NullLogger(),
	}
}

func (c *commandContext) ensureConfig() (*adapter.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := adapter.LoadConfig(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.metricsFlag != nil && *c.metricsFlag != "" {
			cfg.Metrics.Addr = *c.metricsFlag
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureModel wires the logger, store, collaborators and model. The first
// call does the work; later calls return the same model.
func (c *commandContext) ensureModel() (*boxoffice.Model, error) {
	c.modelOnce.Do(func() {
		c.box, c.modelErr = c.buildModel()
	})
	return c.box, c.modelErr
}

func (c *commandContext) buildModel() (*boxoffice.Model, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		c.closers = append(c.closers, closer)
	}
	slog.SetDefault(logger)
	c.logger = logger
	logger.Info("starting boxoffice", "version", boxoffice.Version())

	st, err := store.Open(cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	collab, err := source.NewFromConfig(cfg, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create clients: %w", err)
	}

	box, err := boxoffice.New(boxoffice.Options{
		Providers:        collab.Providers,
		Ratings:          collab.Ratings,
		Geocoder:         collab.Geocoder,
		Artwork:          collab.Artwork,
		Store:            st,
		Logger:           logger,
		SearchFreshness:  cfg.Cache.SearchFreshness,
		RetryAfter:       cfg.Cache.RetryAfter,
		SearchRetryAfter: cfg.Cache.SearchRetryAfter,
		FetchTimeout:     cfg.Cache.FetchTimeout,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	// Closers run in reverse: the model stops before the store closes
	c.closers = append(c.closers, st, closerFunc(func() error {
		box.Close()
		return nil
	}))

	if cfg.Metrics.Addr != "" {
		c.startMetrics(cfg.Metrics.Addr)
	}
	return box, nil
}

func (c *commandContext) startMetrics(addr string) {
	registerMetrics.Do(metrics.MustRegister)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	c.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	c.logger.Info("serving metrics", "addr", addr)
}

func (c *commandContext) close() {
	if c.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		c.server.Shutdown(ctx)
		cancel()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			c.logger.Warn("close failed", "error", err)
		}
	}
	c.closers = nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
