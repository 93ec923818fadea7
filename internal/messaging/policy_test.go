package messaging

import (
	"testing"

	"github.com/stretchr/testify/require"

	"library-downloader/pkg/models"
)

func downloadingSession(downloaded, total int64) models.DownloadSession {
	return models.DownloadSession{
		Status:          models.StatusDownloading,
		DownloadedBytes: downloaded,
		TotalSizeBytes:  total,
	}
}

func TestProgressMessage_QuartileBands(t *testing.T) {
	require.Equal(t, "Starting your download - hang in there!",
		ProgressMessage(downloadingSession(0, 100)))
	require.Equal(t, "Starting your download - hang in there!",
		ProgressMessage(downloadingSession(24, 100)))
	require.Equal(t, "Making good progress - keep going!",
		ProgressMessage(downloadingSession(25, 100)))
	require.Equal(t, "More than halfway there - almost done!",
		ProgressMessage(downloadingSession(50, 100)))
	require.Equal(t, "Almost finished - your book is nearly ready!",
		ProgressMessage(downloadingSession(75, 100)))
	require.Equal(t, "Almost finished - your book is nearly ready!",
		ProgressMessage(downloadingSession(99, 100)))
}

func TestProgressMessage_TerminalStates(t *testing.T) {
	require.Equal(t, "Download paused - tap resume when ready",
		ProgressMessage(models.DownloadSession{Status: models.StatusPaused}))
	require.Equal(t, "Download complete - enjoy your book!",
		ProgressMessage(models.DownloadSession{Status: models.StatusCompleted}))
	require.Equal(t, "Download failed - check your connection and try again",
		ProgressMessage(models.DownloadSession{Status: models.StatusError}))
	require.Equal(t, "Ready to download",
		ProgressMessage(models.DownloadSession{Status: models.StatusPending}))
	require.Equal(t, "Ready to download",
		ProgressMessage(models.DownloadSession{Status: models.StatusCancelled}))
}

func TestCostWarnings_ByLevel(t *testing.T) {
	low := CostWarnings(models.CostEstimate{WarningLevel: models.WarningLow, BudgetPercentage: 4.0}, 4.80)
	require.Len(t, low, 1)
	require.Contains(t, low[0], "Affordable")

	medium := CostWarnings(models.CostEstimate{WarningLevel: models.WarningMedium, BudgetPercentage: 15.0}, 4.25)
	require.Len(t, medium, 1)
	require.Contains(t, medium[0], "Moderate cost")

	high := CostWarnings(models.CostEstimate{WarningLevel: models.WarningHigh, BudgetPercentage: 40.0}, 3.00)
	require.Len(t, high, 2)
	require.Contains(t, high[0], "High cost")
	require.Contains(t, high[1], "WiFi")

	extreme := CostWarnings(models.CostEstimate{WarningLevel: models.WarningExtreme, BudgetPercentage: 95.0}, 0.25)
	require.Len(t, extreme, 4)
	require.Contains(t, extreme[0], "Very expensive")
	require.Contains(t, extreme[3], "$0.25")
}

func TestCostWarnings_LowRemainingBudget(t *testing.T) {
	warnings := CostWarnings(models.CostEstimate{WarningLevel: models.WarningLow, BudgetPercentage: 5.0}, 0.90)
	require.Len(t, warnings, 2)
	require.Contains(t, warnings[1], "$0.90")
}

func TestStudentGuidance_ExtremeRecommendsWiFi(t *testing.T) {
	guidance := StudentGuidance(models.CostEstimate{WarningLevel: models.WarningExtreme})
	require.Equal(t, "Only download on WiFi", guidance.Recommendation)
	require.NotEmpty(t, guidance.Explanation)
	require.NotEmpty(t, guidance.Tip)
}

func TestStudentGuidance_AllLevelsDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, level := range []models.WarningLevel{models.WarningLow, models.WarningMedium, models.WarningHigh, models.WarningExtreme} {
		guidance := StudentGuidance(models.CostEstimate{WarningLevel: level})
		require.False(t, seen[guidance.Recommendation])
		seen[guidance.Recommendation] = true
	}
}

func TestDownloadOptions_Recommendations(t *testing.T) {
	options := DownloadOptions(models.CostEstimate{WarningLevel: models.WarningLow, EstimatedCostUSD: 0.25})
	require.Len(t, options, 4)
	require.Equal(t, "download_now", options[0].ID)
	require.True(t, options[0].Recommended)
	require.Equal(t, "Download Now ($0.25)", options[0].Label)
	require.False(t, options[1].Recommended)
	require.False(t, options[3].Recommended)

	options = DownloadOptions(models.CostEstimate{WarningLevel: models.WarningExtreme, EstimatedCostUSD: 4.77})
	require.False(t, options[0].Recommended)
	require.True(t, options[1].Recommended)
	require.True(t, options[3].Recommended)
}
