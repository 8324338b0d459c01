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

// Package cli implements the smctl command tree
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/projectbeskar/smctl/api/management"
	"github.com/projectbeskar/smctl/internal/config"
	"github.com/projectbeskar/smctl/internal/mapping"
	"github.com/projectbeskar/smctl/internal/obs/logging"
	"github.com/projectbeskar/smctl/internal/obs/metrics"
	"github.com/projectbeskar/smctl/internal/obs/tracing"
	"github.com/projectbeskar/smctl/internal/projection"
	"github.com/projectbeskar/smctl/internal/smapi"
	"github.com/projectbeskar/smctl/internal/version"
)

// Options configure a command tree
type Options struct {
	// Out receives command output; defaults to stdout
	Out io.Writer
	// Config, when set, is used instead of loading one
	Config *config.Config
	// Logger, when set, is used instead of building one from the config
	Logger *logr.Logger
}

// App holds the state shared by all commands of one invocation
type App struct {
	opts Options

	configFile   string
	endpoint     string
	subscription string
	output       string
	logLevel     string

	cfg      *config.Config
	client   *smapi.Client
	registry *mapping.Registry
	printer  *Printer
	log      logr.Logger
	shutdown func()
}

// NewRootCommand builds the smctl command tree
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	app := &App{opts: opts, log: logr.Discard(), shutdown: func() {}}

	rootCmd := &cobra.Command{
		Use:           "smctl",
		Short:         "Service Management command line",
		Long:          "Query and change classic Service Management resources of a subscription",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.String(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			app.shutdown()
		},
	}
	rootCmd.SetOut(opts.Out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", os.Getenv("SMCTL_CONFIG"), "Path to a YAML configuration file")
	flags.StringVar(&app.endpoint, "endpoint", "", "Service Management endpoint URL")
	flags.StringVar(&app.subscription, "subscription", "", "Subscription id")
	flags.StringVarP(&app.output, "output", "o", "", "Output format (table|json|yaml)")
	flags.StringVar(&app.logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(
		app.affinityGroupCommand(),
		app.locationCommand(),
		app.certificateCommand(),
		app.osCommand(),
		app.serviceCommand(),
		app.diskCommand(),
		app.imageCommand(),
		app.storageCommand(),
		app.deploymentCommand(),
		app.extensionCommand(),
		app.vmCommand(),
		app.mappingsCommand(),
		app.versionCommand(),
	)

	return rootCmd
}

// setup loads configuration and builds the logger, tracer, client and
// registry for the command about to run
func (a *App) setup(cmd *cobra.Command) error {
	cfg := a.opts.Config
	if cfg == nil {
		loaded, err := config.Load(a.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.endpoint != "" {
		cfg.Endpoint.URL = a.endpoint
	}
	if a.subscription != "" {
		cfg.Endpoint.SubscriptionID = a.subscription
	}
	if a.output != "" {
		cfg.Output.Format = a.output
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if a.opts.Logger != nil {
		a.log = *a.opts.Logger
	} else {
		log, err := logging.Setup(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		a.log = log
	}

	cfg.Tracing.ServiceVersion = version.Version
	shutdown, err := tracing.Setup(cmd.Context(), &cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	a.shutdown = shutdown

	metrics.SetupMetrics(version.Version, version.GitSHA, metrics.ComponentCLI)

	registry, err := mapping.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize mappings: %w", err)
	}
	a.registry = registry

	client, err := smapi.NewClient(smapi.ConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	a.client = client

	a.printer = NewPrinter(cmd.OutOrStdout(), cfg.Output.Format)
	return nil
}

// context returns the command context carrying the logger and correlation
// fields
func (a *App) context(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.IntoContext(ctx, a.log)
	ctx = logging.WithCommand(ctx, cmd.CommandPath())
	return logging.WithSubscription(ctx, a.cfg.Endpoint.SubscriptionID)
}

// status fetches the status of the operation that produced env. When the
// endpoint returned no request id there is nothing to look up, and env itself
// is returned so every projected context still carries the exchange's
// operation metadata.
func (a *App) status(ctx context.Context, env *management.OperationResponse) (any, error) {
	status, err := a.client.GetOperationStatus(ctx, env.RequestID)
	if errors.Is(err, smapi.ErrNoRequestID) {
		logging.FromContext(ctx).V(1).Info("Response carried no request id, using the response status")
		return env, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operation status: %w", err)
	}
	return status, nil
}

// project maps resp and status onto a new T for cmd
func project[T any, PT projection.Context[T]](a *App, cmd *cobra.Command, resp any, status any) (*T, error) {
	_, span := tracing.StartSpan(cmd.Context(), tracing.SpanProjection)
	defer span.End()

	out, err := projection.Project[T, PT](a.registry, resp, status, cmd.CommandPath())
	metrics.RecordProjection(cmd.CommandPath(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to project response: %w", err)
	}
	return out, nil
}

// projectEach maps every item and the shared status onto a new T for cmd
func projectEach[T any, PT projection.Context[T], S any](a *App, cmd *cobra.Command, items []S, status any) ([]*T, error) {
	_, span := tracing.StartSpan(cmd.Context(), tracing.SpanProjection)
	defer span.End()

	out, err := projection.ProjectEach[T, PT](a.registry, items, status, cmd.CommandPath())
	metrics.RecordProjection(cmd.CommandPath(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to project response: %w", err)
	}
	return out, nil
}
