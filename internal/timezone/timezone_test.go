package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocationFallsBack(t *testing.T) {
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("Mars/Olympus"))
	assert.NotNil(t, Location("Mars/Olympus"))
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	in := time.Date(2026, 3, 9, 23, 59, 1, 5, loc)

	got := StartOfDay(in)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, loc), got)
}
