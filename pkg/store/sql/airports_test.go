package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/airport-atlas/pkg/models/domain"
)

func TestNewAirportSource(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewAirportSource(nil, "airports")
	assert.Error(t, err)

	_, err = NewAirportSource(db, "airports; DROP TABLE airports")
	assert.ErrorContains(t, err, "invalid airport table name")

	src, err := NewAirportSource(db, "main.ref.airports")
	require.NoError(t, err)
	assert.NotNil(t, src)
}

func TestAirportSource_ListCountries(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`(?s)SELECT country.*FROM airports`).
			WillReturnRows(sqlmock.NewRows([]string{"country"}).
				AddRow("Country X").
				AddRow("Country Y"))

		src, err := NewAirportSource(db, "airports")
		require.NoError(t, err)

		countries, err := src.ListCountries(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Country X", "Country Y"}, countries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT country").WillReturnError(errors.New("warehouse offline"))

		src, err := NewAirportSource(db, "airports")
		require.NoError(t, err)

		_, err = src.ListCountries(ctx)
		assert.ErrorContains(t, err, "warehouse offline")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAirportSource_ListAirports(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT code, name, latitude, longitude").
			WithArgs("Country X").
			WillReturnRows(sqlmock.NewRows([]string{"code", "name", "latitude", "longitude"}).
				AddRow("X1", "First", 1.0, 2.0).
				AddRow("X2", nil, -3.5, 4.25))

		src, err := NewAirportSource(db, "airports")
		require.NoError(t, err)

		airports, err := src.ListAirports(ctx, "Country X")
		require.NoError(t, err)
		assert.Equal(t, []domain.Airport{
			{ID: "X1", Name: "First", Country: "Country X", Coordinate: domain.Coordinate{Latitude: 1, Longitude: 2}},
			{ID: "X2", Country: "Country X", Coordinate: domain.Coordinate{Latitude: -3.5, Longitude: 4.25}},
		}, airports)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT code, name, latitude, longitude").
			WithArgs("Country X").
			WillReturnRows(sqlmock.NewRows([]string{"code", "name", "latitude", "longitude"}).
				AddRow("X1", "First", 1.0, 2.0).
				RowError(0, errors.New("connection reset")))

		src, err := NewAirportSource(db, "airports")
		require.NoError(t, err)

		_, err = src.ListAirports(ctx, "Country X")
		assert.ErrorContains(t, err, "connection reset")
	})
}
