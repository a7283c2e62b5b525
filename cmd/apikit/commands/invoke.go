package commands

import (
	"context"
	"maps"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/kbukum/apikit/catalog"
	"github.com/kbukum/apikit/config"
	"github.com/kbukum/apikit/engine"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// NewInvokeCommand calls one operation and prints its result.
func NewInvokeCommand() *cobra.Command {
	var (
		sets []string
		args []string
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "invoke OPERATION",
		Short: "Invoke an operation",
		Example: `  apikit invoke --catalog items.yml -e https://api.acme.test getItem --arg id=42
  apikit invoke --catalog items.yml listItems --all --set max-retries=0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			cfg, err := loadToolConfig()
			if err != nil {
				return err
			}
			overrides, err := parseProperties(sets)
			if err != nil {
				return err
			}
			callArgs, err := parseArgs(args)
			if err != nil {
				return err
			}
			c, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			log := logger.New(&cfg.Logging, cfg.Name)
			logger.SetGlobalLogger(log)

			props := make(map[string]string, len(cfg.Properties)+len(overrides))
			maps.Copy(props, cfg.Properties)
			maps.Copy(props, overrides)

			apiCtx, shutdown, err := buildContext(ctx, cfg, c, props, log)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := shutdown(context.Background()); cerr != nil {
					log.Warn("shutdown failed", logger.Fields(logger.FieldError, cerr.Error()))
				}
			}()

			var result any
			if all {
				pages, err := apiCtx.Pages(argv[0], callArgs)
				if err != nil {
					return err
				}
				if result, err = pages.All(ctx); err != nil {
					return err
				}
			} else if result, err = apiCtx.Invoke(ctx, argv[0], callArgs); err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), viper.GetString("output"), result)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "property override (key=value), repeatable")
	cmd.Flags().StringArrayVar(&args, "arg", nil, "operation argument (name=value), repeatable")
	cmd.Flags().BoolVar(&all, "all", false, "follow paging markers and print every item")
	return cmd
}

// buildContext creates the API context for the loaded catalog. The returned
// function closes the context and flushes telemetry.
func buildContext(ctx context.Context, cfg *config.ToolConfig, c catalog.Catalog, props map[string]string, log *logger.Logger) (*engine.Context, func(context.Context) error, error) {
	providerID := cfg.Provider
	if providerID == "" {
		providerID = c.API
	}
	api := engine.APIMetadata{
		ID:        c.API,
		Name:      c.API,
		Version:   c.Version,
		Anonymous: cfg.Identity == "",
		Catalog:   c,
	}
	if cfg.Credential != "" {
		api.CredentialName = "credential"
	}

	system, err := config.LoadProperties(providerID)
	if err != nil {
		return nil, nil, err
	}

	modules := []engine.Module{engine.LoggingModule(log)}
	var closers []func(context.Context) error
	if cfg.Telemetry.Enabled {
		tc := cfg.Telemetry.Tracer()
		tp, err := observability.InitTracer(ctx, &tc)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, tp.Shutdown)

		mc := cfg.Telemetry.Meter()
		mp, err := observability.InitMeter(ctx, &mc)
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, nil, err
		}
		closers = append(closers, mp.Shutdown)

		metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
		if err != nil {
			return nil, nil, multierr.Combine(err, mp.Shutdown(ctx), tp.Shutdown(ctx))
		}
		modules = append(modules, engine.ObservabilityModule(metrics))
	}

	b := engine.ForProvider(engine.ProviderMetadata{ID: providerID, Name: providerID, API: api, Endpoint: cfg.Endpoint}).
		System(system).
		Overrides(props).
		Modules(modules...)
	if cfg.Identity != "" {
		b.Credentials(cfg.Identity, cfg.Credential)
	}

	apiCtx, err := b.Build(ctx)
	if err != nil {
		var errs error
		for _, closeFn := range closers {
			errs = multierr.Append(errs, closeFn(ctx))
		}
		return nil, nil, multierr.Append(err, errs)
	}

	shutdown := func(ctx context.Context) error {
		errs := apiCtx.Close(ctx)
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i](ctx))
		}
		return errs
	}
	return apiCtx, shutdown, nil
}
