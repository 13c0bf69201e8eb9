package commands

import (
	"context"
	"net"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/de-tools/airport-atlas/pkg/report"
	"github.com/de-tools/airport-atlas/pkg/server"
	"github.com/de-tools/airport-atlas/pkg/services/runs"
)

type ServeCmd struct {
	env        *Env
	keys       map[string]string
	runOnStart bool
}

func NewServeCmd(env *Env) *cobra.Command {
	sc := &ServeCmd{env: env}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest outlier report over HTTP",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}

	sc.keys = addAnalysisFlags(cmd)
	cmd.Flags().String("host", "127.0.0.1", "Address to listen on")
	cmd.Flags().Int("port", 8080, "Port to listen on")
	cmd.Flags().String("schedule", "", "Cron spec for periodic runs, e.g. \"@every 1h\"")
	cmd.Flags().BoolVar(&sc.runOnStart, "run-on-start", true, "Run an analysis before accepting requests")
	sc.keys["host"] = "server.host"
	sc.keys["port"] = "server.port"
	sc.keys["schedule"] = "server.schedule"

	return cmd
}

func (sc *ServeCmd) run(cmd *cobra.Command, _ []string) error {
	s, err := sc.env.Setup(cmd, sc.keys)
	if err != nil {
		return err
	}
	ctx := s.Ctx
	cfg := s.Config

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	analyzer, closer, err := s.Analyzer(reg)
	if err != nil {
		return err
	}
	defer closer.Close()

	opts := []runs.Option{
		runs.WithSinks(func(context.Context) (report.Sink, error) {
			sink, err := s.KafkaSink()
			if err != nil || sink == nil {
				return report.Discard, err
			}
			return sink, nil
		}),
	}
	store, db, err := s.Results()
	if err != nil {
		return err
	}
	if store != nil {
		defer db.Close()
		opts = append(opts, runs.WithResults(store))
	}
	svc := runs.NewService(analyzer, opts...)

	if sc.runOnStart {
		rep, err := svc.Trigger(ctx)
		if rep != nil {
			s.Logger.Info().
				Str("run_id", rep.RunID).
				Str("status", string(rep.Status)).
				Int("flagged", rep.FlaggedCount()).
				Msg("initial analysis finished")
		}
		if err != nil {
			s.Logger.Error().Err(err).Msg("initial analysis failed")
		}
	}

	if err := svc.Start(ctx, cfg.Server.Schedule); err != nil {
		return err
	}
	defer svc.Stop()

	api := server.NewWebAPI(server.Config{
		Addr:            net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Runs:    svc,
			Logger:  s.Logger,
			Metrics: reg,
		},
	})
	return api.Start(ctx)
}
