package commands

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/report"
	"github.com/de-tools/airport-atlas/pkg/runtime/terminal"
	"github.com/de-tools/airport-atlas/pkg/runtime/terminal/export"
)

type AnalyzeCmd struct {
	env  *Env
	keys map[string]string
}

func NewAnalyzeCmd(env *Env) *cobra.Command {
	ac := &AnalyzeCmd{env: env}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Flag airports unusually far from their country's center",
		Args:  cobra.NoArgs,
		RunE:  ac.run,
	}

	ac.keys = addAnalysisFlags(cmd)
	cmd.Flags().StringP("format", "f", "text", "Output format (text, table, json, yaml, jsonl)")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file or s3://bucket/key instead of stdout")
	cmd.Flags().BoolP("verbose", "v", false, "Show every country and, for jsonl, every verdict")
	ac.keys["format"] = "output.format"
	ac.keys["output"] = "output.path"
	ac.keys["verbose"] = "output.verbose"

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	s, err := ac.env.Setup(cmd, ac.keys)
	if err != nil {
		return err
	}
	ctx := s.Ctx
	out := s.Config.Output

	analyzer, closer, err := s.Analyzer(nil)
	if err != nil {
		return err
	}
	defer closer.Close()

	var w io.Writer = ac.env.Out
	var buf *bytes.Buffer
	if out.Path != "" {
		buf = &bytes.Buffer{}
		w = buf
	}

	var sinks []report.Sink
	if out.Format == "jsonl" {
		sinks = append(sinks, report.NewJSONLines(w, !out.Verbose))
	}
	kafkaSink, err := s.KafkaSink()
	if err != nil {
		return err
	}
	sinks = append(sinks, kafkaSink)
	sink := report.Multi(sinks...)

	rep, runErr := analyzer.Run(ctx, sink)
	if err := sink.Close(); err != nil {
		s.Logger.Error().Err(err).Msg("failed to close report sinks")
	}
	if rep == nil {
		return runErr
	}

	store, db, err := s.Results()
	if err != nil {
		return err
	}
	if store != nil {
		defer db.Close()
		if err := store.SaveReport(ctx, rep); err != nil {
			return fmt.Errorf("failed to store report: %w", err)
		}
		s.Logger.Info().Str("run_id", rep.RunID).Str("db", s.Config.Results.DBPath).Msg("report stored")
	}

	if handler := formatHandler(out.Format, w, out.Verbose); handler != nil {
		if err := handler.Handle(rep); err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
	}
	if buf != nil {
		if err := s.Objects.Write(ctx, out.Path, buf.Bytes(), contentType(out.Format)); err != nil {
			return err
		}
		s.Logger.Info().Str("path", out.Path).Msg("report written")
	}

	if runErr != nil {
		return runErr
	}
	if rep.Status == domain.RunCompletedWithErrors {
		counts := rep.CountByStatus()
		return fmt.Errorf("analysis completed with errors: %d invalid and %d unreadable countries",
			counts[domain.GroupInvalid], counts[domain.GroupSourceError])
	}
	return nil
}

// formatHandler returns nil for jsonl, which is streamed while the run goes.
func formatHandler(format string, w io.Writer, verbose bool) report.Handler {
	switch format {
	case "table":
		return export.NewReporter(w)
	case "json":
		return report.NewJSONWriter(w)
	case "yaml":
		return report.NewYAMLWriter(w)
	case "jsonl":
		return nil
	default:
		return terminal.NewReporter(w, verbose)
	}
}

func contentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "jsonl":
		return "application/x-ndjson"
	case "yaml":
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}
