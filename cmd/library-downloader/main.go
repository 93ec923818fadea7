package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"library-downloader/internal/checkpoint"
	"library-downloader/internal/cleanup"
	"library-downloader/internal/config"
	"library-downloader/internal/cost"
	"library-downloader/internal/database"
	"library-downloader/internal/downloader"
	"library-downloader/internal/messaging"
	"library-downloader/internal/source"
	"library-downloader/pkg/fuzzy"
	"library-downloader/pkg/models"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	regionFlag := flag.String("region", "", "student region (developing, emerging, developed)")
	networkFlag := flag.String("network", "", "network condition (dialup, slow_2g, fast_2g, slow_3g, fast_3g, wifi)")
	force := flag.Bool("force", false, "download even when the cost warning is extreme")
	search := flag.String("search", "", "search the catalog instead of downloading")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(cfg.LogLevel)

	slog.Info("Starting Library Downloader", "version", "1.0.0")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	checkpoints, err := checkpoint.NewStore(cfg.ResumePath)
	if err != nil {
		return fmt.Errorf("failed to initialize checkpoint store: %w", err)
	}

	region := models.Region(cfg.DefaultRegion)
	if *regionFlag != "" {
		region = models.Region(*regionFlag)
	}
	network := downloader.DetectNetworkCondition()
	if *networkFlag != "" {
		network = models.NetworkCondition(*networkFlag)
	}

	estimator := cost.NewEstimator(db, cfg.MonthlyBudgetUSD, cfg.Rates(), region)
	bookSource := source.NewHTTPSource(cfg.SourceBaseURL, db)

	if *search != "" {
		return searchCatalog(db, estimator, region, *search)
	}

	bookIDs, err := parseBookIDs(flag.Args())
	if err != nil {
		return err
	}
	if len(bookIDs) == 0 {
		return printMonthlySummary(estimator)
	}

	terminal := make(chan models.DownloadSession, len(bookIDs))
	onProgress := func(s models.DownloadSession) {
		switch s.Status {
		case models.StatusDownloading:
			// Log every tenth chunk to keep output readable on slow links
			if s.CurrentChunk%10 == 0 {
				slog.Info("Download progress",
					"book_id", s.BookID,
					"percent", fmt.Sprintf("%.1f%%", s.PercentComplete()),
					"downloaded", humanize.IBytes(uint64(s.DownloadedBytes)),
					"speed", fmt.Sprintf("%s/s", humanize.IBytes(uint64(s.SpeedBPS))))
			}
		default:
			terminal <- s
		}
	}

	engine, err := downloader.NewEngine(downloader.NewRegistry(), checkpoints, bookSource, cfg.DownloadsPath, onProgress)
	if err != nil {
		return fmt.Errorf("failed to initialize transfer engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	janitor := cleanup.NewService(checkpoints, engine, engine.OutputPath,
		time.Duration(cfg.RetentionDays)*24*time.Hour)
	if stats, err := janitor.Sweep(); err != nil {
		slog.Warn("Cleanup sweep failed", "error", err)
	} else if stats.StalePartials > 0 || stats.OrphanedCheckpoints > 0 {
		slog.Info("Reclaimed abandoned downloads",
			"stale_partials", stats.StalePartials,
			"orphaned_checkpoints", stats.OrphanedCheckpoints,
			"reclaimed", humanize.IBytes(uint64(stats.ReclaimedBytes)))
	}

	spent, err := estimator.MonthlySpending()
	if err != nil {
		return fmt.Errorf("failed to read monthly spending: %w", err)
	}
	remainingBudget := cfg.MonthlyBudgetUSD - spent

	estimates := make(map[int64]*models.CostEstimate)
	started := 0
	for _, bookID := range bookIDs {
		estimate, err := estimator.Estimate(bookID, region)
		if err != nil {
			slog.Warn("Skipping book", "book_id", bookID, "error", err)
			continue
		}

		for _, warning := range messaging.CostWarnings(*estimate, remainingBudget-estimate.EstimatedCostUSD) {
			slog.Info(warning, "book_id", bookID)
		}

		if estimate.WarningLevel == models.WarningExtreme && !*force {
			guidance := messaging.StudentGuidance(*estimate)
			slog.Warn("Download not started",
				"book_id", bookID,
				"title", estimate.Title,
				"cost_usd", estimate.EstimatedCostUSD,
				"recommendation", guidance.Recommendation,
				"tip", guidance.Tip)
			continue
		}

		handle, err := bookSource.Resolve(ctx, bookID)
		if err != nil {
			slog.Error("Failed to resolve book", "book_id", bookID, "error", err)
			continue
		}

		if _, err := engine.StartTransfer(ctx, handle, network); err != nil {
			slog.Error("Failed to start download", "book_id", bookID, "error", err)
			continue
		}
		estimates[bookID] = estimate
		started++
	}

	for remaining := started; remaining > 0; remaining-- {
		var s models.DownloadSession
		select {
		case <-ctx.Done():
			slog.Info("Shutdown requested; partial downloads will resume on next run")
			engine.Wait()
			return nil
		case s = <-terminal:
		}

		switch s.Status {
		case models.StatusCompleted:
			if estimate := estimates[s.BookID]; estimate != nil {
				if err := estimator.RecordDownload(s.BookID, estimate.EstimatedCostUSD, "mobile"); err != nil {
					slog.Warn("Failed to record spending", "book_id", s.BookID, "error", err)
				}
			}
			slog.Info("Book downloaded",
				"book_id", s.BookID,
				"title", s.Title,
				"size", humanize.IBytes(uint64(s.TotalSizeBytes)),
				"path", engine.OutputPath(s.BookID))
		case models.StatusError:
			slog.Error("Download failed; run again to resume from checkpoint",
				"book_id", s.BookID,
				"error", s.ErrorMessage)
		case models.StatusPaused:
			slog.Info("Download parked", "book_id", s.BookID)
		}
	}

	engine.Wait()

	return printMonthlySummary(estimator)
}

// searchCatalog prints the best catalog matches for a query with the
// cost a download would incur, so students can decide before spending
func searchCatalog(db *database.DB, estimator *cost.Estimator, region models.Region, query string) error {
	books, err := db.ListBooks()
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}

	matches := fuzzy.NewMatcher().RankBooks(query, books, 10)
	if len(matches) == 0 {
		slog.Info("No books matched", "query", query)
		return nil
	}

	for _, book := range matches {
		estimate, err := estimator.EstimateForSize(book.ID, book.Title, book.FileSize, region)
		if err != nil {
			slog.Warn("Failed to estimate cost", "book_id", book.ID, "error", err)
			continue
		}
		slog.Info("Match",
			"book_id", book.ID,
			"title", book.Title,
			"author", book.Author,
			"size", humanize.IBytes(uint64(estimate.FileSizeMB*1024*1024)),
			"cost_usd", estimate.EstimatedCostUSD,
			"warning_level", estimate.WarningLevel)
	}

	return nil
}

func printMonthlySummary(estimator *cost.Estimator) error {
	summary, err := estimator.MonthlySummary()
	if err != nil {
		return err
	}

	slog.Info("Monthly spending summary",
		"month", summary.Month,
		"spent_usd", summary.TotalSpentUSD,
		"remaining_usd", summary.RemainingBudgetUSD,
		"budget_used", fmt.Sprintf("%.1f%%", summary.BudgetUsedPercentage),
		"downloads", summary.DownloadsCount,
		"status", summary.BudgetStatus)
	return nil
}

func parseBookIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid book id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
