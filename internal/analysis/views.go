package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// LowContentWordThreshold flags reviews whose evaluation text is too short
// to carry much signal.
const LowContentWordThreshold = 120

// paperSortFields maps sortable field names to accessors. Numeric fields
// return (value, present); string fields are always present.
var paperSortFields = map[string]func(*PaperSummary) (float64, string, bool, bool){
	"submission": func(p *PaperSummary) (float64, string, bool, bool) { return 0, p.Submission, true, true },
	"title":      func(p *PaperSummary) (float64, string, bool, bool) { return 0, p.Title, true, true },
	"authors":    func(p *PaperSummary) (float64, string, bool, bool) { return 0, p.Authors, true, true },
	"reviewCount": func(p *PaperSummary) (float64, string, bool, bool) {
		return float64(p.ReviewCount), "", false, true
	},
	"avgWordCount": func(p *PaperSummary) (float64, string, bool, bool) {
		return p.AvgWordCount, "", false, true
	},
	"avgScore":                func(p *PaperSummary) (float64, string, bool, bool) { return optional(p.AvgScore) },
	"minScore":                func(p *PaperSummary) (float64, string, bool, bool) { return optional(p.MinScore) },
	"maxScore":                func(p *PaperSummary) (float64, string, bool, bool) { return optional(p.MaxScore) },
	"scoreDiscrepancy":        func(p *PaperSummary) (float64, string, bool, bool) { return optional(p.ScoreDiscrepancy) },
	"avgConfidence":           func(p *PaperSummary) (float64, string, bool, bool) { return optional(p.AvgConfidence) },
	"confidenceWeightedScore": func(p *PaperSummary) (float64, string, bool, bool) { return optional(p.ConfidenceWeightedScore) },
	"reviewerAdjustedScore":   func(p *PaperSummary) (float64, string, bool, bool) { return optional(p.ReviewerAdjustedScore) },
}

func optional(v *float64) (float64, string, bool, bool) {
	if v == nil {
		return 0, "", false, false
	}
	return *v, "", false, true
}

// IsPaperSortField reports whether field names a sortable PaperSummary
// column.
func IsPaperSortField(field string) bool {
	_, ok := paperSortFields[field]
	return ok
}

// SortPapers orders papers in place by the named field. Papers missing the
// field (nil metric) sort after every present value regardless of
// direction; ties break by ascending numeric submission id. Unknown
// fields leave only the tie-break ordering.
func SortPapers(papers []PaperSummary, field string, descending bool) {
	accessor, ok := paperSortFields[field]
	if !ok {
		accessor = func(*PaperSummary) (float64, string, bool, bool) { return 0, "", false, false }
	}

	sort.SliceStable(papers, func(i, j int) bool {
		numI, strI, isStrI, okI := accessor(&papers[i])
		numJ, strJ, _, okJ := accessor(&papers[j])

		// Absent values rank last on either direction.
		if okI != okJ {
			return okI
		}
		if okI && okJ {
			if isStrI {
				if strI != strJ {
					if descending {
						return strI > strJ
					}
					return strI < strJ
				}
			} else if numI != numJ {
				if descending {
					return numI > numJ
				}
				return numI < numJ
			}
		}
		return submissionLess(papers[i].Submission, papers[j].Submission)
	})
}

// submissionLess orders submission ids numerically when both parse,
// ranks numeric ids before non-numeric ones, and falls back to string
// comparison so the ordering stays total.
func submissionLess(a, b string) bool {
	na, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// RowFilter is an inclusive word-count and confidence window over review
// rows, with an optional short-only toggle.
type RowFilter struct {
	MinWords      int
	MaxWords      int
	MinConfidence float64
	MaxConfidence float64
	ShortOnly     bool
}

// DefaultRowFilter returns the effectively unbounded filter: any word
// count, the full 1-5 confidence scale, no short-only restriction.
func DefaultRowFilter() RowFilter {
	return RowFilter{
		MinWords:      0,
		MaxWords:      math.MaxInt32,
		MinConfidence: 1,
		MaxConfidence: 5,
	}
}

func (f RowFilter) matches(row ReviewRow) bool {
	if row.WordCount < f.MinWords || row.WordCount > f.MaxWords {
		return false
	}
	// Rows without a confidence carry no signal to exclude on.
	if row.ConfidenceScore != nil {
		c := *row.ConfidenceScore
		if c < f.MinConfidence || c > f.MaxConfidence {
			return false
		}
	}
	if f.ShortOnly && row.WordCount >= LowContentWordThreshold {
		return false
	}
	return true
}

// FilterReviewRows selects the rows inside the filter window and orders
// them for triage: short-flagged rows first, then ascending word count,
// then ascending numeric submission id, surfacing the shortest reviews.
func FilterReviewRows(rows []ReviewRow, f RowFilter) []ReviewRow {
	filtered := make([]ReviewRow, 0, len(rows))
	for _, row := range rows {
		if f.matches(row) {
			filtered = append(filtered, row)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		shortI := filtered[i].WordCount < LowContentWordThreshold
		shortJ := filtered[j].WordCount < LowContentWordThreshold
		if shortI != shortJ {
			return shortI
		}
		if filtered[i].WordCount != filtered[j].WordCount {
			return filtered[i].WordCount < filtered[j].WordCount
		}
		return submissionLess(filtered[i].Submission, filtered[j].Submission)
	})

	return filtered
}

// Default histogram shape used for normalized and raw score distributions.
const (
	DefaultHistogramBins = 12
	ScoreHistogramMin    = -3.0
	ScoreHistogramMax    = 3.0
)

// Histogram partitions [min, max] into bins equal-width buckets and counts
// values per bucket, clamping out-of-range values into the edge buckets.
// A non-positive span collapses every value into bucket 0.
func Histogram(values []float64, min, max float64, bins int) []int {
	if bins <= 0 {
		return []int{}
	}
	counts := make([]int, bins)
	span := max - min
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int(math.Floor((v - min) / span * float64(bins)))
			if idx < 0 {
				idx = 0
			}
			if idx > bins-1 {
				idx = bins - 1
			}
		}
		counts[idx]++
	}
	return counts
}

// BarHeights normalizes histogram counts into bar heights in [0, 1],
// dividing by the tallest bin (or 1 when all bins are empty).
func BarHeights(counts []int) []float64 {
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}
	heights := make([]float64, len(counts))
	for i, c := range counts {
		heights[i] = float64(c) / float64(maxCount)
	}
	return heights
}
