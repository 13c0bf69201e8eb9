package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/store/duckdb"
	duckdbairports "github.com/de-tools/airport-atlas/pkg/store/duckdb/airports"
)

func NewAirportsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airports",
		Short: "Manage airport data",
	}
	cmd.AddCommand(newAirportsImportCmd(env))
	return cmd
}

func newAirportsImportCmd(env *Env) *cobra.Command {
	var (
		dbPath     string
		appendRows bool
		keys       map[string]string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load airports from the configured source into a DuckDB file",
		Long: "Copies every airport of the configured source into the airports table of a\n" +
			"DuckDB database, which `analyze --source-type sql --driver duckdb` can read.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := env.Setup(cmd, keys)
			if err != nil {
				return err
			}

			src, closer, err := s.OpenSource()
			if err != nil {
				return err
			}
			defer closer.Close()

			countries, err := src.ListCountries(s.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list countries: %w", err)
			}
			var records []domain.Airport
			for _, country := range countries {
				airports, err := src.ListAirports(s.Ctx, country)
				if err != nil {
					return fmt.Errorf("failed to read airports of %s: %w", country, err)
				}
				records = append(records, airports...)
			}

			db, err := duckdb.NewDB(duckdb.Settings{DbPath: dbPath})
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", dbPath, err)
			}
			defer db.Close()

			store, err := duckdbairports.NewStore(db)
			if err != nil {
				return err
			}
			if appendRows {
				err = store.Add(s.Ctx, records)
			} else {
				err = store.Replace(s.Ctx, records)
			}
			if err != nil {
				return fmt.Errorf("failed to import airports: %w", err)
			}

			total, err := store.Count(s.Ctx)
			if err != nil {
				return err
			}
			s.Logger.Info().
				Str("db", dbPath).
				Int("imported", len(records)).
				Int("countries", len(countries)).
				Int("total", total).
				Msg("airports imported")
			return nil
		},
	}

	keys = addSourceFlags(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB file to import into")
	cmd.Flags().BoolVar(&appendRows, "append", false, "Keep existing rows instead of replacing them")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
