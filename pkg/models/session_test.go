package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownloadStatus_Constants(t *testing.T) {
	require.Equal(t, DownloadStatus("pending"), StatusPending)
	require.Equal(t, DownloadStatus("downloading"), StatusDownloading)
	require.Equal(t, DownloadStatus("paused"), StatusPaused)
	require.Equal(t, DownloadStatus("completed"), StatusCompleted)
	require.Equal(t, DownloadStatus("error"), StatusError)
	require.Equal(t, DownloadStatus("cancelled"), StatusCancelled)
}

func TestDownloadStatus_IsTerminal(t *testing.T) {
	require.False(t, StatusPending.IsTerminal())
	require.False(t, StatusDownloading.IsTerminal())
	require.False(t, StatusPaused.IsTerminal())
	require.True(t, StatusCompleted.IsTerminal())
	require.True(t, StatusError.IsTerminal())
	require.True(t, StatusCancelled.IsTerminal())
}

func TestDownloadSession_PercentComplete(t *testing.T) {
	session := &DownloadSession{TotalSizeBytes: 5_000_000, DownloadedBytes: 2_500_000}
	require.InDelta(t, 50.0, session.PercentComplete(), 0.0001)

	session.DownloadedBytes = 5_000_000
	require.InDelta(t, 100.0, session.PercentComplete(), 0.0001)

	// Unknown total size must not divide by zero
	session = &DownloadSession{TotalSizeBytes: 0, DownloadedBytes: 100}
	require.Equal(t, 0.0, session.PercentComplete())
}

func TestWarningLevel_Constants(t *testing.T) {
	require.Equal(t, WarningLevel("low"), WarningLow)
	require.Equal(t, WarningLevel("medium"), WarningMedium)
	require.Equal(t, WarningLevel("high"), WarningHigh)
	require.Equal(t, WarningLevel("extreme"), WarningExtreme)
}

func TestRegion_Constants(t *testing.T) {
	require.Equal(t, Region("developing"), RegionDeveloping)
	require.Equal(t, Region("emerging"), RegionEmerging)
	require.Equal(t, Region("developed"), RegionDeveloped)
}
