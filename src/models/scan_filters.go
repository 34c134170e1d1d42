package models

import "fmt"

const MaxScanSymbols = 100

// ScanFilters is the complete parameter set constraining one scan. Validate
// must pass before the pipeline starts; no silent correction is applied.
type ScanFilters struct {
	Symbols    []string     `json:"symbols,omitempty" schema:"symbols"` // empty = default universe
	Strategies []SpreadType `json:"strategies" schema:"strategies"`

	MinDTE      int `json:"min_dte" schema:"min_dte"`
	MaxDTE      int `json:"max_dte" schema:"max_dte"`
	LeapsMinDTE int `json:"leaps_min_dte" schema:"leaps_min_dte"`
	LeapsMaxDTE int `json:"leaps_max_dte" schema:"leaps_max_dte"`

	MinIVRank float64 `json:"min_iv_rank" schema:"min_iv_rank"`
	MaxIVRank float64 `json:"max_iv_rank" schema:"max_iv_rank"`

	MinVolume          int     `json:"min_volume" schema:"min_volume"`
	MinOpenInterest    int     `json:"min_open_interest" schema:"min_open_interest"`
	MaxBidAskSpreadPct float64 `json:"max_bid_ask_spread_pct" schema:"max_bid_ask_spread_pct"`

	MinFundamentalScore    float64 `json:"min_fundamental_score" schema:"min_fundamental_score"`
	MinSentimentScore      float64 `json:"min_sentiment_score" schema:"min_sentiment_score"`
	MinProbabilityOfProfit float64 `json:"min_probability_of_profit" schema:"min_probability_of_profit"`
	MinModelQualityScore   float64 `json:"min_model_quality_score" schema:"min_model_quality_score"`

	MaxResults int `json:"max_results" schema:"max_results"`

	// Spread width / cost controls apply to two-leg spreads only; single-leg
	// LEAPS are exempt. An empty TargetSpreadWidths means no width constraint;
	// a non-empty set means the width must match one entry within tolerance.
	TargetSpreadWidths  []float64 `json:"target_spread_widths,omitempty" schema:"target_spread_widths"`
	MaxSpreadWidth      *float64  `json:"max_spread_width,omitempty" schema:"max_spread_width"`
	MaxDebitPctOfSpread float64   `json:"max_debit_pct_of_spread" schema:"max_debit_pct_of_spread"`
	MaxNetDebit         *float64  `json:"max_net_debit,omitempty" schema:"max_net_debit"`

	// Delta band applied to the absolute value of the long leg delta.
	MinLongDelta float64 `json:"min_long_delta" schema:"min_long_delta"`
	MaxLongDelta float64 `json:"max_long_delta" schema:"max_long_delta"`
}

func DefaultScanFilters() ScanFilters {
	return ScanFilters{
		Strategies:             []SpreadType{LeapCall, LeapsSpreadCall},
		MinDTE:                 30,
		MaxDTE:                 90,
		LeapsMinDTE:            365,
		LeapsMaxDTE:            730,
		MinIVRank:              10.0,
		MaxIVRank:              70.0,
		MinVolume:              100,
		MinOpenInterest:        500,
		MaxBidAskSpreadPct:     0.50,
		MinFundamentalScore:    40.0,
		MinSentimentScore:      35.0,
		MinProbabilityOfProfit: 0.45,
		MinModelQualityScore:   45.0,
		MaxResults:             50,
		MaxDebitPctOfSpread:    1.0,
		MinLongDelta:           0.0,
		MaxLongDelta:           1.0,
	}
}

func (f ScanFilters) Validate() error {
	if len(f.Symbols) > MaxScanSymbols {
		return fmt.Errorf("ScanFilters: Validate: too many symbols: %d > %d", len(f.Symbols), MaxScanSymbols)
	}

	if len(f.Strategies) == 0 {
		return fmt.Errorf("ScanFilters: Validate: at least one strategy is required")
	}

	for _, s := range f.Strategies {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("ScanFilters: Validate: %w", err)
		}
	}

	if f.MinDTE < 1 || f.MaxDTE > 1825 || f.MinDTE > f.MaxDTE {
		return fmt.Errorf("ScanFilters: Validate: invalid DTE band [%d, %d]", f.MinDTE, f.MaxDTE)
	}

	if f.LeapsMinDTE < 30 || f.LeapsMaxDTE > 1825 || f.LeapsMinDTE > f.LeapsMaxDTE {
		return fmt.Errorf("ScanFilters: Validate: invalid LEAPS DTE band [%d, %d]", f.LeapsMinDTE, f.LeapsMaxDTE)
	}

	if f.MinIVRank < 0 || f.MaxIVRank > 100 || f.MinIVRank > f.MaxIVRank {
		return fmt.Errorf("ScanFilters: Validate: invalid IV rank band [%.1f, %.1f]", f.MinIVRank, f.MaxIVRank)
	}

	if f.MinVolume < 0 || f.MinOpenInterest < 0 {
		return fmt.Errorf("ScanFilters: Validate: liquidity minimums must be non-negative")
	}

	if f.MaxBidAskSpreadPct < 0 || f.MaxBidAskSpreadPct > 1 {
		return fmt.Errorf("ScanFilters: Validate: max bid-ask spread pct must be in [0, 1]: %v", f.MaxBidAskSpreadPct)
	}

	if f.MinFundamentalScore < 0 || f.MinFundamentalScore > 100 {
		return fmt.Errorf("ScanFilters: Validate: min fundamental score must be in [0, 100]: %v", f.MinFundamentalScore)
	}

	if f.MinSentimentScore < 0 || f.MinSentimentScore > 100 {
		return fmt.Errorf("ScanFilters: Validate: min sentiment score must be in [0, 100]: %v", f.MinSentimentScore)
	}

	if f.MinProbabilityOfProfit < 0 || f.MinProbabilityOfProfit > 1 {
		return fmt.Errorf("ScanFilters: Validate: min probability of profit must be in [0, 1]: %v", f.MinProbabilityOfProfit)
	}

	if f.MinModelQualityScore < 0 || f.MinModelQualityScore > 100 {
		return fmt.Errorf("ScanFilters: Validate: min model quality score must be in [0, 100]: %v", f.MinModelQualityScore)
	}

	if f.MaxResults < 1 || f.MaxResults > 200 {
		return fmt.Errorf("ScanFilters: Validate: max results must be in [1, 200]: %d", f.MaxResults)
	}

	if len(f.TargetSpreadWidths) > 20 {
		return fmt.Errorf("ScanFilters: Validate: too many target spread widths: %d", len(f.TargetSpreadWidths))
	}

	for _, w := range f.TargetSpreadWidths {
		if w <= 0 {
			return fmt.Errorf("ScanFilters: Validate: target spread widths must be positive: %v", w)
		}
	}

	if f.MaxSpreadWidth != nil && *f.MaxSpreadWidth < 0 {
		return fmt.Errorf("ScanFilters: Validate: max spread width must be non-negative: %v", *f.MaxSpreadWidth)
	}

	if f.MaxDebitPctOfSpread < 0 || f.MaxDebitPctOfSpread > 1 {
		return fmt.Errorf("ScanFilters: Validate: max debit pct of spread must be in [0, 1]: %v", f.MaxDebitPctOfSpread)
	}

	if f.MaxNetDebit != nil && *f.MaxNetDebit < 0 {
		return fmt.Errorf("ScanFilters: Validate: max net debit must be non-negative: %v", *f.MaxNetDebit)
	}

	if f.MinLongDelta < 0 || f.MaxLongDelta > 1 || f.MinLongDelta > f.MaxLongDelta {
		return fmt.Errorf("ScanFilters: Validate: invalid long delta band [%v, %v]", f.MinLongDelta, f.MaxLongDelta)
	}

	return nil
}

// HasVerticalStrategies reports whether any selected strategy builds two-leg
// spreads in the standard DTE band.
func (f ScanFilters) HasVerticalStrategies() bool {
	for _, s := range f.Strategies {
		if s == BullCall || s == BearPut {
			return true
		}
	}

	return false
}

func (f ScanFilters) HasLeapsStrategies() bool {
	for _, s := range f.Strategies {
		if s.IsLeaps() {
			return true
		}
	}

	return false
}
