// Package centers holds the country name to reference center lookup table.
package centers

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

//go:embed data/countries.tsv
var defaultTable string

// Lookup resolves a country name to its reference center.
// Names match exactly and case-sensitively.
type Lookup interface {
	CenterOf(country string) (domain.CountryCenter, bool)
}

// Table is an immutable Lookup built once at startup.
type Table struct {
	byName  map[string]domain.CountryCenter
	ordered []domain.CountryCenter
}

// NewTable validates centers and indexes them by name.
func NewTable(centers []domain.CountryCenter) (*Table, error) {
	t := &Table{
		byName:  make(map[string]domain.CountryCenter, len(centers)),
		ordered: make([]domain.CountryCenter, 0, len(centers)),
	}
	for _, c := range centers {
		if c.Name == "" {
			return nil, fmt.Errorf("center %q: country name must not be empty", c.Code)
		}
		if err := c.Coordinate.Validate(); err != nil {
			return nil, fmt.Errorf("center %q: %w", c.Name, err)
		}
		if _, exists := t.byName[c.Name]; exists {
			return nil, fmt.Errorf("center %q is defined more than once", c.Name)
		}
		t.byName[c.Name] = c
		t.ordered = append(t.ordered, c)
	}
	return t, nil
}

// Parse reads the serialized table: one `code<TAB>latitude<TAB>longitude<TAB>name`
// row per country. Blank lines and lines starting with '#' are ignored.
func Parse(r io.Reader) (*Table, error) {
	var centers []domain.CountryCenter

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 tab-separated fields, got %d", line, len(fields))
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}

		centers = append(centers, domain.CountryCenter{
			Code:       strings.TrimSpace(fields[0]),
			Name:       strings.TrimSpace(fields[3]),
			Coordinate: domain.Coordinate{Latitude: lat, Longitude: lon},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read center table: %w", err)
	}

	return NewTable(centers)
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(strings.NewReader(defaultTable))
})

// Default returns the table shipped with the binary.
func Default() (*Table, error) {
	return loadDefault()
}

// CenterOf implements Lookup.
func (t *Table) CenterOf(country string) (domain.CountryCenter, bool) {
	c, ok := t.byName[country]
	return c, ok
}

// Centers returns the rows in table order.
func (t *Table) Centers() []domain.CountryCenter {
	out := make([]domain.CountryCenter, len(t.ordered))
	copy(out, t.ordered)
	return out
}

// Names returns the country names sorted alphabetically.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Table) Len() int {
	return len(t.ordered)
}

// Write serializes the table in the format Parse reads.
func (t *Table) Write(w io.Writer) error {
	return WriteCenters(w, t.ordered)
}

// WriteCenters serializes centers in the table format.
func WriteCenters(w io.Writer, centers []domain.CountryCenter) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "# code\tlatitude\tlongitude\tname"); err != nil {
		return err
	}
	for _, c := range centers {
		code := c.Code
		if code == "" {
			code = "--"
		}
		_, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n",
			code,
			strconv.FormatFloat(c.Coordinate.Latitude, 'f', -1, 64),
			strconv.FormatFloat(c.Coordinate.Longitude, 'f', -1, 64),
			c.Name)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
