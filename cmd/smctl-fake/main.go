/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package main provides smctl-fake, an in-memory Service Management endpoint
// for local development and end-to-end tests.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/projectbeskar/smctl/internal/config"
	"github.com/projectbeskar/smctl/internal/obs/health"
	"github.com/projectbeskar/smctl/internal/obs/logging"
	"github.com/projectbeskar/smctl/internal/obs/metrics"
	"github.com/projectbeskar/smctl/internal/obs/tracing"
	"github.com/projectbeskar/smctl/internal/smapi/smfake"
	"github.com/projectbeskar/smctl/internal/version"
)

type options struct {
	configFile     string
	addr           string
	grpcHealthAddr string
	failureMode    string
	failureRate    float64
	latency        time.Duration
	operationDelay time.Duration
	token          string
	logLevel       string
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "smctl-fake",
		Short:         "In-memory Service Management endpoint",
		Version:       version.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.configFile, "config", os.Getenv("SMCTL_CONFIG"), "Path to a YAML configuration file, reloaded on change")
	flags.StringVar(&opts.addr, "addr", "", "Listen address (overrides fake.addr)")
	flags.StringVar(&opts.grpcHealthAddr, "grpc-health-addr", "", "Listen address of the gRPC health service; disabled when empty")
	flags.StringVar(&opts.failureMode, "failure-mode", "", "Failure injection mode (none|always|random)")
	flags.Float64Var(&opts.failureRate, "failure-rate", 0, "Failure probability in random mode")
	flags.DurationVar(&opts.latency, "latency", 0, "Latency added to every request")
	flags.DurationVar(&opts.operationDelay, "operation-delay", 200*time.Millisecond, "How long asynchronous operations stay InProgress")
	flags.StringVar(&opts.token, "token", "", "Bearer token clients must present (overrides endpoint.token)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// fakeConfig applies the command line on top of cfg
func (o *options) fakeConfig(cmd *cobra.Command, cfg *config.Config) smfake.Config {
	out := smfake.ConfigFrom(cfg.Fake)
	out.Token = cfg.Endpoint.Token
	out.OperationDelay = o.operationDelay

	flags := cmd.Flags()
	if flags.Changed("failure-mode") {
		out.FailureMode = o.failureMode
	}
	if flags.Changed("failure-rate") {
		out.FailureRate = o.failureRate
	}
	if flags.Changed("latency") {
		out.Latency = o.latency
	}
	if flags.Changed("token") {
		out.Token = o.token
	}
	return out
}

func run(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	cfg.Log.Level = opts.logLevel
	if opts.addr != "" {
		cfg.Fake.Addr = opts.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.Setup(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	log = log.WithName("smctl-fake")

	cfg.Tracing.ServiceName = tracing.ServiceFake
	cfg.Tracing.ServiceVersion = version.Version
	shutdownTracing, err := tracing.Setup(ctx, &cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer shutdownTracing()

	metrics.SetupMetrics(version.Version, version.GitSHA, metrics.ComponentFake)

	fake := smfake.NewServer(opts.fakeConfig(cmd, cfg), log)

	manager, err := config.NewManager(opts.configFile, log)
	if err != nil {
		return err
	}
	defer func() { _ = manager.Close() }()
	go watchConfig(ctx, log, manager.Watch(), func(c *config.Config) {
		fake.SetConfig(opts.fakeConfig(cmd, c))
	})

	checker := health.NewChecker(5 * time.Second)
	checker.Register("configuration", health.FunctionCheck(func() error {
		return manager.Get().Validate()
	}))
	checker.Register("store", health.FunctionCheck(func() error {
		if fake.ServiceCount() == 0 {
			return errors.New("no hosted services")
		}
		return nil
	}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.Handle("/health", checker.Handler())
	mux.Handle("/healthz", health.LivenessHandler())
	mux.Handle("/", tracing.Middleware(fake.Handler()))

	httpServer := &http.Server{
		Addr:              cfg.Fake.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcServer *grpc.Server
	var grpcListener net.Listener
	if opts.grpcHealthAddr != "" {
		grpcListener, err = net.Listen("tcp", opts.grpcHealthAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.grpcHealthAddr, err)
		}
		grpcServer = grpc.NewServer()
	}

	g, gctx := errgroup.WithContext(ctx)

	if grpcServer != nil {
		healthServer := grpchealth.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		g.Go(func() error {
			checker.Publish(gctx, healthServer, "", 10*time.Second)
			return nil
		})
		g.Go(func() error {
			log.Info("Starting gRPC health service", "addr", opts.grpcHealthAddr)
			if err := grpcServer.Serve(grpcListener); err != nil {
				return fmt.Errorf("failed to serve gRPC health: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info("Starting fake Service Management endpoint", "version", version.String(), "addr", cfg.Fake.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error(err, "Server failed")
		return err
	}
	return nil
}

// watchConfig applies every published configuration until ctx ends
func watchConfig(ctx context.Context, log logr.Logger, updates <-chan *config.Config, apply func(*config.Config)) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-updates:
			if !ok {
				return
			}
			apply(c)
			log.Info("Applied configuration", "failureMode", c.Fake.FailureMode, "latency", c.Fake.Latency)
		}
	}
}
