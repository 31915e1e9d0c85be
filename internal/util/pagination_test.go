package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	from, limit := Calculate(1, 10)
	require.Equal(t, 0, from)
	require.Equal(t, 10, limit)

	from, limit = Calculate(3, 25)
	require.Equal(t, 50, from)
	require.Equal(t, 25, limit)

	// out-of-range inputs fall back to the defaults
	from, limit = Calculate(0, 0)
	require.Equal(t, 0, from)
	require.Equal(t, 10, limit)
}

func TestClamp(t *testing.T) {
	skip, limit := Clamp(-5, 0)
	require.Equal(t, 0, skip)
	require.Equal(t, 100, limit)

	skip, limit = Clamp(10, 5000)
	require.Equal(t, 10, skip)
	require.Equal(t, 100, limit)

	skip, limit = Clamp(20, 50)
	require.Equal(t, 20, skip)
	require.Equal(t, 50, limit)
}
