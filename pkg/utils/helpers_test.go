package utils

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12.5", 12.5, true},
		{" 7 ", 7, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{"12,75", 12.75, true},
		{"1,234", 1.234, true},
		{"1.234", 1.234, true},
		{`"3"`, 3, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	v, ok := ParseInt("2019")
	assert.True(t, ok)
	assert.Equal(t, 2019, v)

	v, ok = ParseInt("2020.0")
	assert.True(t, ok)
	assert.Equal(t, 2020, v)

	_, ok = ParseInt("2020.5")
	assert.False(t, ok)
	_, ok = ParseInt("")
	assert.False(t, ok)
}

func TestNumeric(t *testing.T) {
	f := 4.5
	tests := []struct {
		name   string
		in     interface{}
		want   float64
		wantOK bool
	}{
		{"int", 3, 3, true},
		{"int64", int64(9), 9, true},
		{"float32", float32(1.5), 1.5, true},
		{"string", "2,5", 2.5, true},
		{"pointer", &f, 4.5, true},
		{"uint8", uint8(8), 8, true},
		{"nil", nil, 0, false},
		{"nan", math.NaN(), 0, false},
		{"text", "pino", 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Numeric(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDuration("", 5*time.Second))
	assert.Equal(t, 5*time.Second, ParseDuration("soon", 5*time.Second))
	assert.Equal(t, time.Minute, ParseDuration("1m", 5*time.Second))
}

func TestOutputManager(t *testing.T) {
	om := NewOutputManager(t.TempDir())

	path, err := om.GetOutputFilePath("abc", "../../etc/passwd.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(om.BaseOutputDir, "abc", "passwd.csv"), path)
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))

	resolved, err := om.ResolveFile("abc", "passwd.csv")
	require.NoError(t, err)
	assert.Equal(t, path, resolved)

	_, err = om.ResolveFile("..", "passwd.csv")
	assert.Error(t, err)
	_, err = om.ResolveFile("abc", "missing.csv")
	assert.Error(t, err)

	assert.Equal(t, "/api/v1/download/abc/passwd.csv", om.GetDownloadURL("abc", path))
	assert.Equal(t, "excel", om.GetFileType("report.XLSX"))
	assert.Equal(t, "image/svg+xml", om.ContentType("chart.svg"))
}
