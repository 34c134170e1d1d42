package models

import "time"

// RankedSpread is one surviving candidate with everything the caller needs
// to display or act on it.
type RankedSpread struct {
	Rank         int                `json:"rank"` // 1-based, assigned after sort
	Spread       SpreadCandidate    `json:"spread"`
	Fundamentals FundamentalsRecord `json:"fundamentals"`
	Sentiment    TickerSentiment    `json:"sentiment"`
	Prediction   Prediction         `json:"prediction"`
	RiskScore    RiskScore          `json:"risk_score"`
}

type ScanResult struct {
	ScanID                   string         `json:"scan_id"`
	ScanTime                 time.Time      `json:"scan_time"`
	FiltersUsed              ScanFilters    `json:"filters_used"`
	TotalCandidatesEvaluated int            `json:"total_candidates_evaluated"`
	Results                  []RankedSpread `json:"results"`
	ScanDuration             time.Duration  `json:"scan_duration"`
}
