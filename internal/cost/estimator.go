// Package cost computes data-cost estimates and budget impact for
// students downloading over metered mobile connections
package cost

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"library-downloader/internal/database"
	"library-downloader/pkg/models"
)

// Store defines the catalog and ledger operations the estimator uses
type Store interface {
	GetBook(id int64) (*models.Book, error)
	RecordDownload(record *models.DownloadRecord) error
	GetDownloadsForMonth(month string) ([]*models.DownloadRecord, error)
}

// A catalog entry with no recorded size is assumed to be a typical 5MB book
const defaultBookSizeBytes = 5_000_000

const bytesPerMB = 1024 * 1024

// Single-book warning thresholds in USD
const (
	singleMediumUSD  = 0.50
	singleHighUSD    = 1.50
	singleExtremeUSD = 3.00
)

// Batch thresholds sit higher since multi-book downloads are expected
// to cost more
const (
	batchMediumUSD  = 1.00
	batchHighUSD    = 2.50
	batchExtremeUSD = 4.00
)

// Estimator computes per-book and per-batch download costs against a
// configured rate table and monthly budget
type Estimator struct {
	store            Store
	monthlyBudgetUSD float64
	rates            map[models.Region]float64
	defaultRegion    models.Region
}

// NewEstimator creates a cost estimator.
// rates maps each region to its USD-per-MB mobile data price.
func NewEstimator(store Store, monthlyBudgetUSD float64, rates map[models.Region]float64, defaultRegion models.Region) *Estimator {
	return &Estimator{
		store:            store,
		monthlyBudgetUSD: monthlyBudgetUSD,
		rates:            rates,
		defaultRegion:    defaultRegion,
	}
}

// Estimate computes the projected cost of downloading one book.
// Returns database.ErrBookNotFound when the id has no catalog entry.
func (e *Estimator) Estimate(bookID int64, region models.Region) (*models.CostEstimate, error) {
	rate, err := e.rateFor(region)
	if err != nil {
		return nil, err
	}

	book, err := e.store.GetBook(bookID)
	if err != nil {
		return nil, err
	}

	return e.estimateForSize(book.ID, book.Title, book.FileSize, rate), nil
}

// EstimateForSize computes the projected cost of downloading fileSizeBytes,
// for callers that already resolved the book
func (e *Estimator) EstimateForSize(bookID int64, title string, fileSizeBytes int64, region models.Region) (*models.CostEstimate, error) {
	rate, err := e.rateFor(region)
	if err != nil {
		return nil, err
	}
	return e.estimateForSize(bookID, title, fileSizeBytes, rate), nil
}

func (e *Estimator) estimateForSize(bookID int64, title string, fileSizeBytes int64, ratePerMB float64) *models.CostEstimate {
	if fileSizeBytes <= 0 {
		fileSizeBytes = defaultBookSizeBytes
	}

	fileSizeMB := float64(fileSizeBytes) / bytesPerMB
	costUSD := fileSizeMB * ratePerMB

	return &models.CostEstimate{
		BookID:           bookID,
		Title:            title,
		FileSizeMB:       round1(fileSizeMB),
		EstimatedCostUSD: round2(costUSD),
		WarningLevel:     classifySingle(costUSD),
		BudgetPercentage: round1(costUSD / e.monthlyBudgetUSD * 100),
	}
}

// EstimateBatch aggregates costs across multiple books. Book ids without a
// catalog entry are skipped; input order is preserved for the rest.
func (e *Estimator) EstimateBatch(ctx context.Context, bookIDs []int64, region models.Region) (*models.BatchCostEstimate, error) {
	region = e.regionOr(region)
	if _, err := e.rateFor(region); err != nil {
		return nil, err
	}

	estimates := make([]*models.CostEstimate, len(bookIDs))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, bookID := range bookIDs {
		i, bookID := i, bookID
		g.Go(func() error {
			est, err := e.Estimate(bookID, region)
			if err != nil {
				if errors.Is(err, database.ErrBookNotFound) {
					return nil
				}
				return err
			}
			mu.Lock()
			estimates[i] = est
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &models.BatchCostEstimate{Region: region}
	var totalCost, totalSizeMB float64
	for _, est := range estimates {
		if est == nil {
			continue
		}
		batch.Books = append(batch.Books, *est)
		totalCost += est.EstimatedCostUSD
		totalSizeMB += est.FileSizeMB
	}

	spending, err := e.MonthlySpending()
	if err != nil {
		return nil, err
	}

	batch.TotalCostUSD = round2(totalCost)
	batch.TotalSizeMB = round1(totalSizeMB)
	batch.BudgetPercentage = round1(totalCost / e.monthlyBudgetUSD * 100)
	batch.WarningLevel = classifyBatch(totalCost)
	batch.RemainingBudgetUSD = round2(e.monthlyBudgetUSD - spending - totalCost)

	return batch, nil
}

// RecordDownload appends one download to the spending ledger
func (e *Estimator) RecordDownload(bookID int64, costUSD float64, method string) error {
	record := &models.DownloadRecord{
		BookID:    bookID,
		CostUSD:   costUSD,
		Method:    method,
		CreatedAt: time.Now(),
	}
	if err := e.store.RecordDownload(record); err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// MonthlySpending returns the total recorded cost for the current month
func (e *Estimator) MonthlySpending() (float64, error) {
	records, err := e.store.GetDownloadsForMonth(time.Now().Format("2006-01"))
	if err != nil {
		return 0, fmt.Errorf("failed to load spending history: %w", err)
	}

	var total float64
	for _, record := range records {
		total += record.CostUSD
	}
	return total, nil
}

// MonthlySummary reports the student's budget position for the current month
func (e *Estimator) MonthlySummary() (*models.SpendingSummary, error) {
	month := time.Now().Format("2006-01")
	records, err := e.store.GetDownloadsForMonth(month)
	if err != nil {
		return nil, fmt.Errorf("failed to load spending history: %w", err)
	}

	var total float64
	for _, record := range records {
		total += record.CostUSD
	}
	remaining := e.monthlyBudgetUSD - total

	status := "good"
	switch {
	case remaining <= 0.5:
		status = "critical"
	case remaining <= 2.0:
		status = "caution"
	}

	return &models.SpendingSummary{
		Month:                month,
		TotalSpentUSD:        round2(total),
		RemainingBudgetUSD:   round2(remaining),
		BudgetUsedPercentage: round1(total / e.monthlyBudgetUSD * 100),
		DownloadsCount:       len(records),
		BudgetStatus:         status,
	}, nil
}

func (e *Estimator) regionOr(region models.Region) models.Region {
	if region == "" {
		return e.defaultRegion
	}
	return region
}

func (e *Estimator) rateFor(region models.Region) (float64, error) {
	region = e.regionOr(region)
	rate, ok := e.rates[region]
	if !ok {
		return 0, fmt.Errorf("unknown region %q", region)
	}
	return rate, nil
}

func classifySingle(costUSD float64) models.WarningLevel {
	switch {
	case costUSD < singleMediumUSD:
		return models.WarningLow
	case costUSD < singleHighUSD:
		return models.WarningMedium
	case costUSD < singleExtremeUSD:
		return models.WarningHigh
	default:
		return models.WarningExtreme
	}
}

func classifyBatch(costUSD float64) models.WarningLevel {
	switch {
	case costUSD < batchMediumUSD:
		return models.WarningLow
	case costUSD < batchHighUSD:
		return models.WarningMedium
	case costUSD < batchExtremeUSD:
		return models.WarningHigh
	default:
		return models.WarningExtreme
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
