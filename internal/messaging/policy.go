// Package messaging maps download and cost state to student-facing
// guidance text. Everything here is a pure function of its inputs.
package messaging

import (
	"fmt"

	"library-downloader/pkg/models"
)

// ProgressMessage returns the encouragement line shown next to a session's
// progress bar. Active downloads get a message banded by completion quartile.
func ProgressMessage(session models.DownloadSession) string {
	switch session.Status {
	case models.StatusDownloading:
		percent := session.PercentComplete()
		switch {
		case percent < 25:
			return "Starting your download - hang in there!"
		case percent < 50:
			return "Making good progress - keep going!"
		case percent < 75:
			return "More than halfway there - almost done!"
		default:
			return "Almost finished - your book is nearly ready!"
		}
	case models.StatusPaused:
		return "Download paused - tap resume when ready"
	case models.StatusCompleted:
		return "Download complete - enjoy your book!"
	case models.StatusError:
		return "Download failed - check your connection and try again"
	default:
		return "Ready to download"
	}
}

// CostWarnings returns the ordered warning lines for a cost estimate.
// remainingBudgetUSD is the student's budget left after this download.
func CostWarnings(estimate models.CostEstimate, remainingBudgetUSD float64) []string {
	var warnings []string

	switch estimate.WarningLevel {
	case models.WarningLow:
		warnings = append(warnings,
			fmt.Sprintf("Affordable: uses %.1f%% of monthly budget", estimate.BudgetPercentage))
	case models.WarningMedium:
		warnings = append(warnings,
			fmt.Sprintf("Moderate cost: uses %.1f%% of monthly budget", estimate.BudgetPercentage))
	case models.WarningHigh:
		warnings = append(warnings,
			fmt.Sprintf("High cost: uses %.1f%% of monthly budget", estimate.BudgetPercentage),
			"Consider waiting for WiFi to save money")
	default:
		warnings = append(warnings,
			fmt.Sprintf("Very expensive: uses %.1f%% of monthly budget", estimate.BudgetPercentage),
			"This could exceed your entire monthly data allowance",
			"Strongly recommend waiting for WiFi")
	}

	if remainingBudgetUSD < 1.0 {
		warnings = append(warnings,
			fmt.Sprintf("Would leave only $%.2f for the rest of the month", remainingBudgetUSD))
	}

	return warnings
}

// StudentGuidance returns the recommendation block for a cost estimate
func StudentGuidance(estimate models.CostEstimate) models.Guidance {
	switch estimate.WarningLevel {
	case models.WarningLow:
		return models.Guidance{
			Recommendation: "Good choice for mobile download",
			Explanation:    "This book is affordable and won't significantly impact your data budget.",
			Tip:            "You can download several books of this size within your monthly budget.",
		}
	case models.WarningMedium:
		return models.Guidance{
			Recommendation: "Consider your monthly budget",
			Explanation:    "This book will use a moderate portion of your data allowance.",
			Tip:            "Make sure you really need this book before downloading.",
		}
	case models.WarningHigh:
		return models.Guidance{
			Recommendation: "Wait for WiFi if possible",
			Explanation:    "This book is quite expensive for mobile data download.",
			Tip:            "You could download 3-4 smaller books for the same cost.",
		}
	default:
		return models.Guidance{
			Recommendation: "Only download on WiFi",
			Explanation:    "This book would consume most or all of your monthly data budget.",
			Tip:            "Save your mobile data for urgent downloads and smaller resources.",
		}
	}
}

// DownloadOptions returns the ways a student can obtain the book, with
// the recommended path derived from the warning level
func DownloadOptions(estimate models.CostEstimate) []models.DownloadOption {
	level := estimate.WarningLevel

	return []models.DownloadOption{
		{
			ID:          "download_now",
			Label:       fmt.Sprintf("Download Now ($%.2f)", estimate.EstimatedCostUSD),
			CostUSD:     estimate.EstimatedCostUSD,
			Immediate:   true,
			Recommended: level == models.WarningLow || level == models.WarningMedium,
		},
		{
			ID:          "download_wifi",
			Label:       "Wait for WiFi (Free)",
			Immediate:   false,
			Recommended: level == models.WarningHigh || level == models.WarningExtreme,
		},
		{
			ID:        "preview_only",
			Label:     "Read Description Only (Free)",
			Immediate: true,
		},
		{
			ID:          "add_to_wishlist",
			Label:       "Save for Later Download",
			Immediate:   false,
			Recommended: level == models.WarningExtreme,
		},
	}
}
