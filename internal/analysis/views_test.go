package analysis

import (
	"reflect"
	"testing"
)

func paper(submission string, avgScore *float64) PaperSummary {
	return PaperSummary{Submission: submission, AvgScore: avgScore}
}

func TestSortPapersNilAlwaysLast(t *testing.T) {
	build := func() []PaperSummary {
		return []PaperSummary{
			paper("1", nil),
			paper("2", score(3)),
			paper("3", score(7)),
			paper("4", score(5)),
		}
	}

	descending := build()
	SortPapers(descending, "avgScore", true)
	if got := order(descending); !reflect.DeepEqual(got, []string{"3", "4", "2", "1"}) {
		t.Errorf("descending order = %v", got)
	}

	ascending := build()
	SortPapers(ascending, "avgScore", false)
	if got := order(ascending); !reflect.DeepEqual(got, []string{"2", "4", "3", "1"}) {
		t.Errorf("ascending order = %v", got)
	}
}

func TestSortPapersTieBreaksBySubmissionID(t *testing.T) {
	papers := []PaperSummary{
		paper("10", score(5)),
		paper("2", score(5)),
		paper("1", score(5)),
	}
	SortPapers(papers, "avgScore", true)
	// Numeric comparison, not lexicographic: 1 < 2 < 10.
	if got := order(papers); !reflect.DeepEqual(got, []string{"1", "2", "10"}) {
		t.Errorf("tie-break order = %v", got)
	}
}

func TestSortPapersStringField(t *testing.T) {
	papers := []PaperSummary{
		{Submission: "1", Title: "Zeta"},
		{Submission: "2", Title: "Alpha"},
	}
	SortPapers(papers, "title", false)
	if papers[0].Title != "Alpha" {
		t.Errorf("title sort failed: %q first", papers[0].Title)
	}
}

func TestIsPaperSortField(t *testing.T) {
	for _, field := range []string{
		"submission", "title", "authors", "reviewCount", "avgScore",
		"minScore", "maxScore", "scoreDiscrepancy", "avgConfidence",
		"avgWordCount", "confidenceWeightedScore", "reviewerAdjustedScore",
	} {
		if !IsPaperSortField(field) {
			t.Errorf("expected %q to be sortable", field)
		}
	}
	if IsPaperSortField("nope") {
		t.Error("unexpected sortable field")
	}
}

func row(submission string, words int, confidence *float64) ReviewRow {
	return ReviewRow{Submission: submission, WordCount: words, ConfidenceScore: confidence}
}

func TestFilterReviewRowsWindow(t *testing.T) {
	rows := []ReviewRow{
		row("1", 10, score(3)),
		row("2", 500, score(3)),
		row("3", 50, score(1)),
		row("4", 50, nil),
	}

	f := DefaultRowFilter()
	f.MinWords = 20
	f.MinConfidence = 2

	got := FilterReviewRows(rows, f)
	// Row 1 fails minWords, row 3 fails minConfidence; the row with no
	// confidence passes the confidence window.
	if ids := rowOrder(got); !reflect.DeepEqual(ids, []string{"4", "2"}) {
		t.Errorf("filtered rows = %v, want [4 2]", ids)
	}
}

func TestFilterReviewRowsShortOnly(t *testing.T) {
	rows := []ReviewRow{
		row("1", LowContentWordThreshold, nil),
		row("2", LowContentWordThreshold-1, nil),
	}

	f := DefaultRowFilter()
	f.ShortOnly = true

	got := FilterReviewRows(rows, f)
	if ids := rowOrder(got); !reflect.DeepEqual(ids, []string{"2"}) {
		t.Errorf("shortOnly rows = %v, want [2]", ids)
	}
}

func TestFilterReviewRowsOrdering(t *testing.T) {
	rows := []ReviewRow{
		row("9", 300, nil),
		row("2", 40, nil),
		row("10", 40, nil),
		row("1", 200, nil),
		row("3", 5, nil),
	}

	got := FilterReviewRows(rows, DefaultRowFilter())
	// Short rows first, then ascending word count, ties by numeric id.
	if ids := rowOrder(got); !reflect.DeepEqual(ids, []string{"3", "2", "10", "1", "9"}) {
		t.Errorf("triage order = %v", ids)
	}
}

func TestHistogramBinning(t *testing.T) {
	counts := Histogram([]float64{-3, 0, 3}, ScoreHistogramMin, ScoreHistogramMax, DefaultHistogramBins)

	if len(counts) != 12 {
		t.Fatalf("len(counts) = %d, want 12", len(counts))
	}
	if counts[0] != 1 {
		t.Errorf("value -3 should land in bin 0, counts = %v", counts)
	}
	if counts[6] != 1 {
		t.Errorf("value 0 should land in bin 6, counts = %v", counts)
	}
	// max clamps into the last bin.
	if counts[11] != 1 {
		t.Errorf("value 3 should clamp into bin 11, counts = %v", counts)
	}
}

func TestHistogramDegenerateSpan(t *testing.T) {
	counts := Histogram([]float64{1, 2, 3}, 5, 5, 4)
	if !reflect.DeepEqual(counts, []int{3, 0, 0, 0}) {
		t.Errorf("zero span counts = %v, want all in bin 0", counts)
	}
}

func TestBarHeights(t *testing.T) {
	heights := BarHeights([]int{0, 2, 4})
	if !reflect.DeepEqual(heights, []float64{0, 0.5, 1}) {
		t.Errorf("heights = %v", heights)
	}

	empty := BarHeights([]int{0, 0})
	if !reflect.DeepEqual(empty, []float64{0, 0}) {
		t.Errorf("empty heights = %v, want zeros without dividing by zero", empty)
	}
}

func order(papers []PaperSummary) []string {
	ids := make([]string, len(papers))
	for i, p := range papers {
		ids[i] = p.Submission
	}
	return ids
}

func rowOrder(rows []ReviewRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Submission
	}
	return ids
}
