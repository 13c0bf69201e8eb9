package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

// Reporter outputs reports to the console in a formatted text form
type Reporter struct {
	writer  io.Writer
	verbose bool
}

// NewReporter creates a new console reporter. In verbose mode every group is
// listed, otherwise only groups with flagged airports.
func NewReporter(writer io.Writer, verbose bool) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer, verbose: verbose}
}

const reportTemplate = `
{{.Title}}
Run: {{.RunID}} at {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
Thresholds: p > {{.Thresholds.SignificanceThreshold}}, more than {{.Thresholds.MinGroupSize}} airports
Status: {{.Status}}
Flagged airports: {{.FlaggedCount}}
{{range $status, $n := .CountByStatus}}  {{$status}}: {{$n}}
{{end}}
{{- range .Groups}}{{if or $.Verbose .Summary.Flagged}}
=== {{.Summary.Country}} ({{.Summary.Status}}{{if .Summary.Reason}}: {{.Summary.Reason}}{{end}}) ===
airports: {{.Summary.Count}}, mean {{printf "%.1f" .Summary.Statistics.Mean}} km, std dev {{printf "%.1f" .Summary.Statistics.StdDev}} km
{{range .Flagged}}- {{.Airport.ID}}{{if .Airport.Name}} {{.Airport.Name}}{{end}}: {{printf "%.1f" .Distance}} km, p={{printf "%.4f" .PValue}}{{if .NearestCountry}}, nearest {{.NearestCountry}} ({{printf "%.0f" .NearestDistance}} km){{end}}
{{end}}{{end}}{{end}}
{{- if .LookupMisses}}
Countries without a reference center:
{{range .LookupMisses}}- {{.}}
{{end}}{{end}}`

type reportView struct {
	*domain.Report
	Verbose bool
}

func (c *Reporter) Handle(report *domain.Report) error {
	t, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, reportView{Report: report, Verbose: c.verbose})
}
