package centers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

const syntheticTable = `# code	latitude	longitude	name
XA	0	0	Country X

YA	10.5	-20.25	Country Y
`

func TestParse(t *testing.T) {
	t.Run("reads rows and skips comments", func(t *testing.T) {
		table, err := Parse(strings.NewReader(syntheticTable))
		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())

		c, ok := table.CenterOf("Country Y")
		require.True(t, ok)
		assert.Equal(t, "YA", c.Code)
		assert.Equal(t, domain.Coordinate{Latitude: 10.5, Longitude: -20.25}, c.Coordinate)
	})

	t.Run("lookup is exact and case sensitive", func(t *testing.T) {
		table, err := Parse(strings.NewReader(syntheticTable))
		require.NoError(t, err)

		_, ok := table.CenterOf("country x")
		assert.False(t, ok)
		_, ok = table.CenterOf("Country Z")
		assert.False(t, ok)
	})

	t.Run("rejects malformed rows", func(t *testing.T) {
		_, err := Parse(strings.NewReader("XA\t0\t0\n"))
		assert.ErrorContains(t, err, "line 1")

		_, err = Parse(strings.NewReader("XA\tnorth\t0\tCountry X\n"))
		assert.ErrorContains(t, err, "latitude")
	})

	t.Run("rejects out of range centers", func(t *testing.T) {
		_, err := Parse(strings.NewReader("XA\t91\t0\tCountry X\n"))
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := Parse(strings.NewReader("XA\t0\t0\tCountry X\nXB\t1\t1\tCountry X\n"))
		assert.ErrorContains(t, err, "more than once")
	})
}

func TestTableRoundTrip(t *testing.T) {
	table, err := Parse(strings.NewReader(syntheticTable))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.Write(&buf))

	again, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Centers(), again.Centers())
}

func TestDefault(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	assert.Greater(t, table.Len(), 200)

	us, ok := table.CenterOf("United States")
	require.True(t, ok)
	assert.InDelta(t, 37.09024, us.Coordinate.Latitude, 1e-6)
	assert.InDelta(t, -95.712891, us.Coordinate.Longitude, 1e-6)

	names := table.Names()
	assert.IsIncreasing(t, names)
}

func TestConvertRaw(t *testing.T) {
	raw := "country\tlatitude\tlongitude\tname\n" +
		"AD\t42.546245\t1.601554\tAndorra\n" +
		"UM\t\t\tU.S. Minor Outlying Islands\n" +
		"GB 55.378051 -3.435973 United Kingdom\n"

	result, err := ConvertRaw(strings.NewReader(raw))
	require.NoError(t, err)

	require.Len(t, result.Centers, 2)
	assert.Equal(t, "Andorra", result.Centers[0].Name)
	assert.Equal(t, "United Kingdom", result.Centers[1].Name)
	assert.Equal(t, "GB", result.Centers[1].Code)
	assert.Len(t, result.Skipped, 2)
}
