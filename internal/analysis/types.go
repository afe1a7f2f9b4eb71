package analysis

// ReviewerBaseline holds one reviewer's score statistics across every
// review they wrote in the input set. It is computed once per Summarize
// call and never mutated afterwards.
type ReviewerBaseline struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Range float64 `json:"range"`
}

// PaperReview is a member review inside a PaperSummary, carrying the
// resolved reviewer key alongside the record's display fields.
type PaperReview struct {
	FileName         string   `json:"fileName"`
	ReviewID         string   `json:"reviewId"`
	PCMember         string   `json:"pcMember"`
	OverallScore     *float64 `json:"overallScore"`
	ConfidenceScore  *float64 `json:"confidenceScore"`
	OverallText      string   `json:"overallText"`
	ConfidentialText string   `json:"confidentialText"`
	SubreviewerName  string   `json:"subreviewerName"`
	SubreviewerEmail string   `json:"subreviewerEmail"`
	WordCount        int      `json:"wordCount"`
	CharCount        int      `json:"charCount"`
	SentenceCount    int      `json:"sentenceCount"`
	UniqueWordRatio  float64  `json:"uniqueWordRatio"`
	ReviewerKey      string   `json:"reviewerKey"`
}

// PaperSummary aggregates every review of one submission. Score-derived
// fields are nil when no member review carries a present overall score.
type PaperSummary struct {
	Submission              string        `json:"submission"`
	Title                   string        `json:"title"`
	Authors                 string        `json:"authors"`
	ReviewCount             int           `json:"reviewCount"`
	AvgScore                *float64      `json:"avgScore"`
	MinScore                *float64      `json:"minScore"`
	MaxScore                *float64      `json:"maxScore"`
	ScoreDiscrepancy        *float64      `json:"scoreDiscrepancy"`
	AvgConfidence           *float64      `json:"avgConfidence"`
	AvgWordCount            float64       `json:"avgWordCount"`
	ConfidenceWeightedScore *float64      `json:"confidenceWeightedScore"`
	ReviewerAdjustedScore   *float64      `json:"reviewerAdjustedScore"`
	Reviews                 []PaperReview `json:"reviews"`
}

// ReviewRow is a flattened, display-oriented projection of one review.
type ReviewRow struct {
	Submission      string   `json:"submission"`
	Title           string   `json:"title"`
	FileName        string   `json:"fileName"`
	OverallScore    *float64 `json:"overallScore"`
	ConfidenceScore *float64 `json:"confidenceScore"`
	WordCount       int      `json:"wordCount"`
	CharCount       int      `json:"charCount"`
	SentenceCount   int      `json:"sentenceCount"`
	UniqueWordRatio float64  `json:"uniqueWordRatio"`
	PCMember        string   `json:"pcMember"`
	ReviewerKey     string   `json:"reviewerKey"`
	ReviewID        string   `json:"reviewId"`
	HasConfidential bool     `json:"hasConfidential"`
}

// Summary is the full output of one Summarize call.
type Summary struct {
	PaperCount    int            `json:"paperCount"`
	ReviewCount   int            `json:"reviewCount"`
	ReviewerCount int            `json:"reviewerCount"`
	Papers        []PaperSummary `json:"papers"`
	ReviewRows    []ReviewRow    `json:"reviewRows"`
}
