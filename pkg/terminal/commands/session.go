package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/de-tools/airport-atlas/pkg/observability"
	"github.com/de-tools/airport-atlas/pkg/report"
	"github.com/de-tools/airport-atlas/pkg/report/kafka"
	"github.com/de-tools/airport-atlas/pkg/services/config"
	"github.com/de-tools/airport-atlas/pkg/services/outlier"
	"github.com/de-tools/airport-atlas/pkg/services/source"
	"github.com/de-tools/airport-atlas/pkg/store/airports"
	"github.com/de-tools/airport-atlas/pkg/store/centers"
	"github.com/de-tools/airport-atlas/pkg/store/duckdb"
	"github.com/de-tools/airport-atlas/pkg/store/duckdb/results"
	"github.com/de-tools/airport-atlas/pkg/store/objectstore"
)

// Env is shared by every command of one CLI.
type Env struct {
	Viper *viper.Viper
	Out   io.Writer
	Err   io.Writer
	// Factories builds the source types available to commands.
	Factories func(opener source.Opener) map[string]source.Factory

	cfgPath string
}

func NewEnv(out, errOut io.Writer) *Env {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Env{
		Viper:     config.NewViper(),
		Out:       out,
		Err:       errOut,
		Factories: source.DefaultFactories,
	}
}

// AddPersistentFlags registers the flags every command understands.
func (e *Env) AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&e.cfgPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
}

var persistentKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Session is the configured state of one command invocation.
type Session struct {
	Ctx     context.Context
	Config  *config.Config
	Objects *objectstore.Store
	Sources source.Registry
	Logger  zerolog.Logger
}

// Setup binds the given flags (flag name to config key), loads configuration
// and builds the root logger.
func (e *Env) Setup(cmd *cobra.Command, keys map[string]string) (*Session, error) {
	for _, bindings := range []map[string]string{persistentKeys, keys} {
		for name, key := range bindings {
			if flag := cmd.Flag(name); flag != nil {
				if err := e.Viper.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg, err := config.LoadWith(e.Viper, e.cfgPath)
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(e.Err, observability.LogSettings{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	objects := objectstore.New(cfg.AWS.Profile)
	return &Session{
		Ctx:     logger.WithContext(cmd.Context()),
		Config:  cfg,
		Objects: objects,
		Sources: source.NewRegistry(e.Factories(objects)),
		Logger:  logger,
	}, nil
}

// OpenSource creates the configured airport source. The closer is never nil.
func (s *Session) OpenSource() (airports.Source, io.Closer, error) {
	src, closer, err := s.Sources.Create(s.Ctx, s.Config.Source)
	if err != nil {
		return nil, nil, err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	return src, closer, nil
}

func (s *Session) Centers() (*centers.Table, error) {
	return source.LoadCenters(s.Ctx, s.Objects, s.Config.Centers.Path)
}

// Analyzer wires the configured source and centers into an analyzer. The
// closer releases the source.
func (s *Session) Analyzer(reg prometheus.Registerer) (*outlier.Analyzer, io.Closer, error) {
	src, closer, err := s.OpenSource()
	if err != nil {
		return nil, nil, err
	}
	table, err := s.Centers()
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}

	opts := []outlier.Option{}
	if reg != nil {
		opts = append(opts, outlier.WithMetrics(observability.NewMetrics(reg)))
	}
	analyzer, err := outlier.NewAnalyzer(src, table, s.Config.OutlierSettings(), opts...)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return analyzer, closer, nil
}

// KafkaSink returns nil when publishing is disabled.
func (s *Session) KafkaSink() (report.Sink, error) {
	k := s.Config.Kafka
	if !k.Enabled {
		return nil, nil
	}
	w, err := kafka.NewWriter(kafka.Settings{
		Brokers:     k.Brokers,
		Topic:       k.Topic,
		AllVerdicts: k.AllVerdicts,
		Summaries:   k.Summaries,
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info().Strs("brokers", k.Brokers).Str("topic", k.Topic).Msg("publishing verdicts to kafka")
	return w, nil
}

// Results opens the results database; both values are nil when persistence
// is disabled.
func (s *Session) Results() (results.Store, *sql.DB, error) {
	if s.Config.Results.DBPath == "" {
		return nil, nil, nil
	}
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: s.Config.Results.DBPath})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open results database: %w", err)
	}
	store, err := results.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
