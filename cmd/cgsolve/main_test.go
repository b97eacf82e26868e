package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/services"
)

func TestParseRow(t *testing.T) {
	ref, err := parseRow("Gdansk/pu")
	require.NoError(t, err)
	assert.Equal(t, services.RowRef{Port: "Gdansk", Type: domain.Pickup}, ref)

	ref, err = parseRow("Port/Of/Spain/delivery")
	require.NoError(t, err)
	assert.Equal(t, "Port/Of/Spain", ref.Port)
	assert.Equal(t, domain.Delivery, ref.Type)

	for _, bad := range []string{"Gdansk", "/pu", "Gdansk/", "Gdansk/load"} {
		_, err := parseRow(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseArc(t *testing.T) {
	ex, err := parseArc("Riga/de > Tallinn/pu")
	require.NoError(t, err)
	assert.Equal(t, services.ArcExclusion{
		From: services.RowRef{Port: "Riga", Type: domain.Delivery},
		To:   services.RowRef{Port: "Tallinn", Type: domain.Pickup},
	}, ex)

	_, err = parseArc("Riga/de")
	assert.Error(t, err)
	_, err = parseArc("Riga/de>Tallinn")
	assert.Error(t, err)
}
