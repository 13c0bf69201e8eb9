package source

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"

	dbsql "github.com/databricks/databricks-sql-go"
	"github.com/rs/zerolog"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/de-tools/airport-atlas/pkg/services/config"
	"github.com/de-tools/airport-atlas/pkg/store/airports"
	"github.com/de-tools/airport-atlas/pkg/store/centers"
	"github.com/de-tools/airport-atlas/pkg/store/duckdb"
	atlassql "github.com/de-tools/airport-atlas/pkg/store/sql"
)

// Opener reads local paths and remote objects alike.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// DefaultFactories wires the csv and sql source types.
func DefaultFactories(opener Opener) map[string]Factory {
	return map[string]Factory{
		"csv": FileFactory(opener),
		"sql": SQLFactory,
	}
}

// FileFactory loads a CSV or TSV airport file fully into memory.
func FileFactory(opener Opener) Factory {
	return func(ctx context.Context, cfg config.SourceConfig) (airports.Source, io.Closer, error) {
		if cfg.Path == "" {
			return nil, nil, fmt.Errorf("csv source needs a path")
		}
		r, err := opener.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		defer r.Close()

		src, err := airports.ReadDelimited(ctx, r, airports.DelimiterFor(cfg.Path))
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", cfg.Path, err)
		}
		zerolog.Ctx(ctx).Info().Str("path", cfg.Path).Int("airports", src.Len()).Msg("airport file loaded")
		return src, nil, nil
	}
}

// SQLFactory reads airports from a database table, described inline or by a
// named profile.
func SQLFactory(ctx context.Context, cfg config.SourceConfig) (airports.Source, io.Closer, error) {
	profile, err := resolveProfile(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	db, err := OpenDB(profile)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s source: %w", profile.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("connect to %s source: %w", profile.Driver, err)
	}

	src, err := atlassql.NewAirportSource(db, profile.Table)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	zerolog.Ctx(ctx).Info().Str("driver", profile.Driver).Str("table", profile.Table).Msg("sql airport source ready")
	return src, db, nil
}

func resolveProfile(ctx context.Context, cfg config.SourceConfig) (*config.Profile, error) {
	if cfg.Profile == "" {
		table := cfg.Table
		if table == "" {
			table = "airports"
		}
		return &config.Profile{Name: "inline", Driver: cfg.Driver, DSN: cfg.DSN, Table: table}, nil
	}
	if cfg.ProfilesFile == "" {
		return nil, fmt.Errorf("profile %q requested but no profiles file configured", cfg.Profile)
	}
	registry, err := config.NewProfileRegistry(cfg.ProfilesFile)
	if err != nil {
		return nil, err
	}
	return registry.GetProfile(ctx, cfg.Profile)
}

// OpenDB opens a connection pool for a profile. duckdb databases get the
// application schema booted; snowflake and databricks profiles may give
// connection keys instead of a dsn.
func OpenDB(p *config.Profile) (*sql.DB, error) {
	switch p.Driver {
	case "duckdb":
		return duckdb.NewDB(duckdb.Settings{DbPath: p.DSN})
	case "snowflake":
		dsn := p.DSN
		if dsn == "" {
			var err error
			if dsn, err = SnowflakeDSN(p.Params); err != nil {
				return nil, err
			}
		}
		return sql.Open("snowflake", dsn)
	case "databricks":
		if p.DSN != "" {
			return sql.Open("databricks", p.DSN)
		}
		connector, err := DatabricksConnector(p.Params)
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(connector), nil
	case "":
		return nil, fmt.Errorf("no sql driver configured")
	default:
		if p.DSN == "" {
			return nil, fmt.Errorf("driver %s needs a dsn", p.Driver)
		}
		return sql.Open(p.Driver, p.DSN)
	}
}

func SnowflakeDSN(params map[string]string) (string, error) {
	cfg := &sf.Config{
		Account:   params["account"],
		User:      params["user"],
		Password:  params["password"],
		Database:  params["database"],
		Schema:    params["schema"],
		Warehouse: params["warehouse"],
		Role:      params["role"],
	}
	dsn, err := sf.DSN(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to create snowflake DSN: %w", err)
	}
	return dsn, nil
}

const defaultDatabricksPort = 443

func DatabricksConnector(params map[string]string) (driver.Connector, error) {
	host, token, path := params["host"], params["token"], params["http_path"]
	if host == "" || token == "" || path == "" {
		return nil, fmt.Errorf("databricks profile needs host, token and http_path")
	}
	return dbsql.NewConnector(
		dbsql.WithServerHostname(host),
		dbsql.WithPort(defaultDatabricksPort),
		dbsql.WithHTTPPath(path),
		dbsql.WithAccessToken(token),
	)
}

// LoadCenters reads a center table from path, or returns the embedded table
// when path is empty.
func LoadCenters(ctx context.Context, opener Opener, path string) (*centers.Table, error) {
	if path == "" {
		return centers.Default()
	}
	r, err := opener.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	table, err := centers.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("load centers %s: %w", path, err)
	}
	zerolog.Ctx(ctx).Info().Str("path", path).Int("centers", table.Len()).Msg("center table loaded")
	return table, nil
}
