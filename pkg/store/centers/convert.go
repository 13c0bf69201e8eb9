package centers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

// ConvertResult describes a raw table conversion.
type ConvertResult struct {
	Centers []domain.CountryCenter
	// Skipped holds the raw lines that carried no usable coordinates.
	Skipped []string
}

// ConvertRaw reads the canonical public "countries" table
// (`code latitude longitude name...`, tab or space separated) and returns the
// centers it describes. Rows without coordinates, such as the header, are
// reported in Skipped rather than failing the conversion.
func ConvertRaw(r io.Reader) (*ConvertResult, error) {
	result := &ConvertResult{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		var code, latStr, lonStr, name string
		if strings.Contains(line, "\t") {
			fields := strings.SplitN(line, "\t", 4)
			if len(fields) < 4 {
				result.Skipped = append(result.Skipped, line)
				continue
			}
			code, latStr, lonStr, name = fields[0], fields[1], fields[2], fields[3]
		} else {
			fields := strings.Fields(line)
			if len(fields) < 4 {
				result.Skipped = append(result.Skipped, line)
				continue
			}
			code, latStr, lonStr, name = fields[0], fields[1], fields[2], strings.Join(fields[3:], " ")
		}

		lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if errLat != nil || errLon != nil {
			result.Skipped = append(result.Skipped, line)
			continue
		}

		result.Centers = append(result.Centers, domain.CountryCenter{
			Code:       strings.TrimSpace(code),
			Name:       strings.TrimSpace(name),
			Coordinate: domain.Coordinate{Latitude: lat, Longitude: lon},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read raw countries table: %w", err)
	}
	return result, nil
}
