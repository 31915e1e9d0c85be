package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d := NewDate(1990, time.March, 5)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"1990-03-05"`, string(raw))

	var parsed Date
	require.NoError(t, json.Unmarshal(raw, &parsed))
	require.Equal(t, d.String(), parsed.String())
}

func TestDateJSONRejectsBadFormat(t *testing.T) {
	var d Date
	require.Error(t, json.Unmarshal([]byte(`"05.03.1990"`), &d))
	require.Error(t, json.Unmarshal([]byte(`12345`), &d))
}

func TestDateSQLValue(t *testing.T) {
	d := NewDate(1990, time.March, 5)

	v, err := d.Value()
	require.NoError(t, err)
	require.Equal(t, "1990-03-05", v)
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("1990-03-05"))
	require.Equal(t, "1990-03-05", d.String())

	require.NoError(t, d.Scan([]byte("2001-12-31")))
	require.Equal(t, "2001-12-31", d.String())

	require.NoError(t, d.Scan(time.Date(1985, time.July, 1, 10, 30, 0, 0, time.UTC)))
	require.Equal(t, "1985-07-01", d.String())

	require.Error(t, d.Scan(42))
}

func TestAddDays(t *testing.T) {
	d := NewDate(2024, time.February, 27)
	require.Equal(t, "2024-03-01", d.AddDays(3).String())
}
