package commands

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/de-tools/airport-atlas/pkg/geo"
	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/store/centers"
)

func NewCentersCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "centers",
		Short: "Inspect and prepare the country center table",
	}

	cmd.AddCommand(newCentersListCmd(env))
	cmd.AddCommand(newCentersConvertCmd(env))
	cmd.AddCommand(newCentersNearestCmd(env))

	return cmd
}

var centersKeys = map[string]string{"centers": "centers.path"}

func newCentersListCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the active center table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := env.Setup(cmd, centersKeys)
			if err != nil {
				return err
			}
			table, err := s.Centers()
			if err != nil {
				return err
			}
			return table.Write(env.Out)
		},
	}
	cmd.Flags().String("centers", "", "Country center table (TSV); the built-in table when empty")
	return cmd
}

func newCentersConvertCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "convert INPUT [OUTPUT]",
		Short: "Convert the raw public countries table into a center table",
		Long: "Reads the whitespace separated `code latitude longitude name` table and writes\n" +
			"the tab separated center table to OUTPUT, or stdout when OUTPUT is omitted.\n" +
			"Both may be local paths or s3://bucket/key URIs.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.Setup(cmd, nil)
			if err != nil {
				return err
			}

			r, err := s.Objects.Open(s.Ctx, args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			result, err := centers.ConvertRaw(r)
			if err != nil {
				return err
			}
			for _, line := range result.Skipped {
				s.Logger.Warn().Str("line", line).Msg("skipping row without coordinates")
			}
			// Reject duplicates and bad coordinates before writing anything.
			if _, err := centers.NewTable(result.Centers); err != nil {
				return err
			}

			if len(args) == 1 {
				return centers.WriteCenters(env.Out, result.Centers)
			}
			var buf bytes.Buffer
			if err := centers.WriteCenters(&buf, result.Centers); err != nil {
				return err
			}
			if err := s.Objects.Write(s.Ctx, args[1], buf.Bytes(), "text/tab-separated-values"); err != nil {
				return err
			}
			s.Logger.Info().
				Str("output", args[1]).
				Int("centers", len(result.Centers)).
				Int("skipped", len(result.Skipped)).
				Msg("center table written")
			return nil
		},
	}
}

func newCentersNearestCmd(env *Env) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "nearest LATITUDE LONGITUDE",
		Short: "Print the centers closest to a coordinate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			point, err := parseCoordinate(args[0], args[1])
			if err != nil {
				return err
			}
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			s, err := env.Setup(cmd, centersKeys)
			if err != nil {
				return err
			}
			table, err := s.Centers()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "COUNTRY\tCODE\tDISTANCE KM")
			for _, m := range geo.NearestN(point, table.Centers(), count) {
				fmt.Fprintf(tw, "%s\t%s\t%.1f\n", m.Center.Name, m.Center.Code, m.Distance)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("centers", "", "Country center table (TSV); the built-in table when empty")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of centers to print")
	return cmd
}

func parseCoordinate(lat, lon string) (domain.Coordinate, error) {
	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("invalid latitude %q", lat)
	}
	longitude, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("invalid longitude %q", lon)
	}
	c := domain.Coordinate{Latitude: latitude, Longitude: longitude}
	return c, c.Validate()
}
