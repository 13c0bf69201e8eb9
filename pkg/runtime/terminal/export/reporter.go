package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

type TableConfig struct {
	CountryWidth  int
	AirportWidth  int
	NameWidth     int
	DistanceWidth int
	PValueWidth   int
	NearestWidth  int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		CountryWidth:  28,
		AirportWidth:  8,
		NameWidth:     32,
		DistanceWidth: 12,
		PValueWidth:   8,
		NearestWidth:  28,
	}
}

// Reporter renders flagged airports as a fixed-width table.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "~"
}

func (c *Reporter) Handle(report *domain.Report) error {
	cfg := c.config
	funcMap := template.FuncMap{
		"formatRow": func(country, airport, name, distance, pValue, nearest string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %*s | %*s | %-*s |",
				cfg.CountryWidth, truncate(country, cfg.CountryWidth),
				cfg.AirportWidth, truncate(airport, cfg.AirportWidth),
				cfg.NameWidth, truncate(name, cfg.NameWidth),
				cfg.DistanceWidth, distance,
				cfg.PValueWidth, pValue,
				cfg.NearestWidth, truncate(nearest, cfg.NearestWidth))
		},
		"km": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
		"prob": func(v float64) string {
			return fmt.Sprintf("%.4f", v)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+%s+",
				strings.Repeat("-", cfg.CountryWidth+2),
				strings.Repeat("-", cfg.AirportWidth+2),
				strings.Repeat("-", cfg.NameWidth+2),
				strings.Repeat("-", cfg.DistanceWidth+2),
				strings.Repeat("-", cfg.PValueWidth+2),
				strings.Repeat("-", cfg.NearestWidth+2))
		},
	}

	tmpl := `
{{.Title}} ({{.RunID}})
Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
Status: {{.Status}}

{{separator}}
{{formatRow "Country" "Airport" "Name" "Distance km" "P-Value" "Nearest center"}}
{{separator}}
{{range .Groups}}{{$country := .Summary.Country}}{{range .Flagged}}{{formatRow $country .Airport.ID .Airport.Name (km .Distance) (prob .PValue) .NearestCountry}}
{{end}}{{end}}{{separator}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
