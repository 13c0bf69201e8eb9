package commands

import (
	"maps"

	"github.com/spf13/cobra"

	"github.com/de-tools/airport-atlas/pkg/services/outlier"
)

// addSourceFlags registers the airport source and center table flags.
func addSourceFlags(cmd *cobra.Command) map[string]string {
	cmd.Flags().String("source", "", "Airport file (local path or s3://bucket/key)")
	cmd.Flags().String("source-type", "csv", "Airport source type (csv, sql)")
	cmd.Flags().String("driver", "", "SQL driver (duckdb, snowflake, databricks)")
	cmd.Flags().String("dsn", "", "SQL data source name")
	cmd.Flags().String("table", "airports", "SQL table holding the airports")
	cmd.Flags().String("profile", "", "Named connection profile")
	cmd.Flags().String("profiles-file", "", "INI file with connection profiles")
	cmd.Flags().String("centers", "", "Country center table (TSV); the built-in table when empty")

	return map[string]string{
		"source":        "source.path",
		"source-type":   "source.type",
		"driver":        "source.driver",
		"dsn":           "source.dsn",
		"table":         "source.table",
		"profile":       "source.profile",
		"profiles-file": "source.profiles_file",
		"centers":       "centers.path",
	}
}

// addAnalysisFlags registers the decision rule and sink flags.
func addAnalysisFlags(cmd *cobra.Command) map[string]string {
	cmd.Flags().Float64("threshold", outlier.DefaultSignificanceThreshold, "Cumulative probability above which an airport is flagged")
	cmd.Flags().Int("min-group-size", outlier.DefaultMinGroupSize, "Countries need more airports than this to be evaluated")
	cmd.Flags().Int("concurrency", 1, "Countries analyzed in parallel")
	cmd.Flags().StringSlice("skip", outlier.DefaultSkipCountries, "Country names never analyzed")
	cmd.Flags().Bool("enrich", true, "Add geohash and nearest center to flagged airports")
	cmd.Flags().String("title", outlier.DefaultTitle, "Report title")
	cmd.Flags().Bool("kafka", false, "Publish verdicts to Kafka")
	cmd.Flags().StringSlice("kafka-brokers", nil, "Kafka broker addresses")
	cmd.Flags().String("kafka-topic", "airport-outliers", "Kafka topic")
	cmd.Flags().String("results-db", "", "DuckDB file the finished report is stored in")

	keys := map[string]string{
		"threshold":      "analysis.significance_threshold",
		"min-group-size": "analysis.min_group_size",
		"concurrency":    "analysis.concurrency",
		"skip":           "analysis.skip_countries",
		"enrich":         "analysis.enrich",
		"title":          "analysis.title",
		"kafka":          "kafka.enabled",
		"kafka-brokers":  "kafka.brokers",
		"kafka-topic":    "kafka.topic",
		"results-db":     "results.db_path",
	}
	maps.Copy(keys, addSourceFlags(cmd))
	return keys
}
