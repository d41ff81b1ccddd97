package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geocoding-microservice/internal/pkg/utils"
)

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, utils.ValidateCoordinates(39.2904, -76.6122))
	assert.True(t, utils.ValidateCoordinates(0, 0))
	assert.True(t, utils.ValidateCoordinates(-90, 180))

	assert.False(t, utils.ValidateCoordinates(90.0001, 0))
	assert.False(t, utils.ValidateCoordinates(0, -180.5))
	assert.False(t, utils.ValidateCoordinates(-200, 500))
}

func TestRoundCoordinate(t *testing.T) {
	assert.Equal(t, 39.2904, utils.RoundCoordinate(39.29038))
	assert.Equal(t, -76.6122, utils.RoundCoordinate(-76.61222))
	assert.Equal(t, 39.2904, utils.RoundCoordinate(39.2904))
	assert.Equal(t, 0.0001, utils.RoundCoordinate(0.00005))
}

func TestPointInPolygon(t *testing.T) {
	// Unit square around the origin.
	square := [][2]float64{
		{-1, -1},
		{-1, 1},
		{1, 1},
		{1, -1},
	}

	assert.True(t, utils.PointInPolygon(0, 0, square))
	assert.True(t, utils.PointInPolygon(0.9, -0.9, square))
	assert.False(t, utils.PointInPolygon(2, 0, square))
	assert.False(t, utils.PointInPolygon(0, -1.5, square))

	// Degenerate rings contain nothing.
	assert.False(t, utils.PointInPolygon(0, 0, nil))
	assert.False(t, utils.PointInPolygon(0, 0, square[:2]))
}
