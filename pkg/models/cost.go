package models

// WarningLevel classifies the data-cost risk of a download for a student
// on metered mobile data
type WarningLevel string

const (
	WarningLow     WarningLevel = "low"
	WarningMedium  WarningLevel = "medium"
	WarningHigh    WarningLevel = "high"
	WarningExtreme WarningLevel = "extreme"
)

// Region groups students by typical mobile data pricing
type Region string

const (
	RegionDeveloping Region = "developing"
	RegionEmerging   Region = "emerging"
	RegionDeveloped  Region = "developed"
)

// CostEstimate is the projected data cost of downloading one book.
// It is computed on demand and never persisted.
type CostEstimate struct {
	BookID           int64        `json:"book_id"`
	Title            string       `json:"title"`
	FileSizeMB       float64      `json:"file_size_mb"`
	EstimatedCostUSD float64      `json:"estimated_cost_usd"`
	WarningLevel     WarningLevel `json:"warning_level"`
	BudgetPercentage float64      `json:"budget_percentage"`
}

// BatchCostEstimate aggregates cost across multiple books
type BatchCostEstimate struct {
	Books              []CostEstimate `json:"books"`
	TotalCostUSD       float64        `json:"total_cost_usd"`
	TotalSizeMB        float64        `json:"total_size_mb"`
	BudgetPercentage   float64        `json:"budget_percentage"`
	WarningLevel       WarningLevel   `json:"warning_level"`
	Region             Region         `json:"region"`
	RemainingBudgetUSD float64        `json:"remaining_budget"`
}

// DownloadOption is one user-selectable way of obtaining a book
type DownloadOption struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	CostUSD     float64 `json:"cost"`
	Immediate   bool    `json:"immediate"`
	Recommended bool    `json:"recommended"`
}

// Guidance is educational advice attached to a cost estimate
type Guidance struct {
	Recommendation string `json:"recommendation"`
	Explanation    string `json:"explanation"`
	Tip            string `json:"tip"`
}

// SpendingSummary describes a student's data spending for one month
type SpendingSummary struct {
	Month                string  `json:"month"`
	TotalSpentUSD        float64 `json:"total_spent"`
	RemainingBudgetUSD   float64 `json:"remaining_budget"`
	BudgetUsedPercentage float64 `json:"budget_used_percentage"`
	DownloadsCount       int     `json:"downloads_count"`
	BudgetStatus         string  `json:"budget_status"`
}
