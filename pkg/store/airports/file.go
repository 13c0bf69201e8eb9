package airports

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

var columnAliases = map[string]string{
	"code":      "code",
	"id":        "code",
	"name":      "name",
	"latitude":  "latitude",
	"lat":       "latitude",
	"longitude": "longitude",
	"lon":       "longitude",
	"lng":       "longitude",
	"country":   "country",
}

// DelimiterFor picks the field separator from a file name: tab for .tsv, comma otherwise.
func DelimiterFor(name string) rune {
	if strings.EqualFold(path.Ext(name), ".tsv") {
		return '\t'
	}
	return ','
}

// ReadDelimited parses an airport file with a header row naming at least the
// Code, Latitude, Longitude and Country columns. Coordinates that do not parse
// are kept as NaN so that validation rejects only the affected country.
func ReadDelimited(ctx context.Context, r io.Reader, comma rune) (*Memory, error) {
	logger := zerolog.Ctx(ctx)

	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = true
	if comma == '\t' {
		reader.LazyQuotes = true
	}

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewMemory(nil), nil
		}
		return nil, fmt.Errorf("read airport header: %w", err)
	}

	index := map[string]int{}
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if canonical, ok := columnAliases[key]; ok {
			index[canonical] = i
		}
	}
	for _, required := range []string{"code", "latitude", "longitude", "country"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("airport file is missing the %q column", required)
		}
	}

	var records []domain.Airport
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read airport row: %w", err)
		}

		a := domain.Airport{
			ID:      strings.TrimSpace(row[index["code"]]),
			Country: strings.TrimSpace(row[index["country"]]),
			Coordinate: domain.Coordinate{
				Latitude:  parseDegrees(row[index["latitude"]]),
				Longitude: parseDegrees(row[index["longitude"]]),
			},
		}
		if i, ok := index["name"]; ok {
			a.Name = strings.TrimSpace(row[i])
		}
		records = append(records, a)
	}

	logger.Debug().Int("records", len(records)).Msg("loaded airport file")
	return NewMemory(records), nil
}

func parseDegrees(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
