package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level defaults to info", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				setupLogging(tt.level)
			})
		})
	}
}

func TestParseBookIDs(t *testing.T) {
	ids, err := parseBookIDs([]string{"1", "42", "1001"})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 42, 1001}, ids)
}

func TestParseBookIDsEmpty(t *testing.T) {
	ids, err := parseBookIDs(nil)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestParseBookIDsInvalid(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"not a number", "abc"},
		{"zero", "0"},
		{"negative", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBookIDs([]string{tt.arg})
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid book id")
		})
	}
}
