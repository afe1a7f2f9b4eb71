package types

// ReviewRecord represents one reviewer's evaluation of one submission,
// already normalized by the adapter: whitespace collapsed, numeric fields
// strictly parsed (unparsable scores become nil, never zero), and text
// metrics computed once from the overall evaluation text.
type ReviewRecord struct {
	Submission       string   `json:"submission"`
	Title            string   `json:"title"`
	Authors          string   `json:"authors"`
	FileName         string   `json:"fileName"`
	ReviewID         string   `json:"reviewId"`
	PCMember         string   `json:"pcMember"`
	OverallText      string   `json:"overallText"`
	OverallScore     *float64 `json:"overallScore"`
	ConfidenceScore  *float64 `json:"confidenceScore"`
	ConfidentialText string   `json:"confidentialText"`
	SubreviewerName  string   `json:"subreviewerName"`
	SubreviewerEmail string   `json:"subreviewerEmail"`
	WordCount        int      `json:"wordCount"`
	CharCount        int      `json:"charCount"`
	SentenceCount    int      `json:"sentenceCount"`
	UniqueWordRatio  float64  `json:"uniqueWordRatio"`
}
