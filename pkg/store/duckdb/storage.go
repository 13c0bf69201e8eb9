package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const AirportsTableSchema = `
	CREATE TABLE IF NOT EXISTS airports (
		code VARCHAR NOT NULL,
		name VARCHAR,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		country VARCHAR NOT NULL
	);
`
const RunsTableSchema = `
	CREATE TABLE IF NOT EXISTS outlier_runs (
		run_id VARCHAR PRIMARY KEY,
		title VARCHAR,
		generated_at TIMESTAMP NOT NULL,
		significance_threshold DOUBLE NOT NULL,
		min_group_size INTEGER NOT NULL,
		status VARCHAR NOT NULL
	);
`
const GroupsTableSchema = `
	CREATE TABLE IF NOT EXISTS outlier_groups (
		run_id VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		country VARCHAR NOT NULL,
		airport_count INTEGER NOT NULL,
		mean_km DOUBLE,
		std_dev_km DOUBLE,
		status VARCHAR NOT NULL,
		reason VARCHAR,
		flagged INTEGER NOT NULL,
		PRIMARY KEY (run_id, country)
	);
`
const VerdictsTableSchema = `
	CREATE TABLE IF NOT EXISTS outlier_verdicts (
		run_id VARCHAR NOT NULL,
		country VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		airport_code VARCHAR NOT NULL,
		airport_name VARCHAR,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		distance_km DOUBLE NOT NULL,
		p_value DOUBLE NOT NULL,
		flagged BOOLEAN NOT NULL,
		geohash VARCHAR,
		nearest_country VARCHAR,
		nearest_distance_km DOUBLE,
		PRIMARY KEY (run_id, country, airport_code)
	);
`

var bootQueries = []string{
	AirportsTableSchema,
	RunsTableSchema,
	GroupsTableSchema,
	VerdictsTableSchema,
}

type Settings struct {
	DbPath  string
	Threads int
}

func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=%d", settings.DbPath, threads), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
