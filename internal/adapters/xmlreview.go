// Package adapters turns external review sources into normalized records
// the analysis engine can consume. The only source today is a folder of
// EasyChair-style review XML exports.
package adapters

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pcdash/review-dashboard/internal/analysis"
	"github.com/pcdash/review-dashboard/internal/types"
)

// Field names as they appear in the review export schema.
const (
	fieldOverall      = "Overall evaluation"
	fieldConfidence   = "Reviewer's confidence"
	fieldConfidential = "Confidential remarks for the program committee"
)

type xmlField struct {
	Name  string `xml:"name,attr"`
	Text  string `xml:"text"`
	Score string `xml:"score"`
}

type xmlReviewer struct {
	FirstName string `xml:"first_name"`
	LastName  string `xml:"last_name"`
	Email     string `xml:"email"`
}

type xmlReview struct {
	XMLName    xml.Name     `xml:"review"`
	Submission string       `xml:"submission,attr"`
	Title      string       `xml:"title,attr"`
	Authors    string       `xml:"authors,attr"`
	ID         string       `xml:"id,attr"`
	PCMember   string       `xml:"pc_member,attr"`
	Fields     []xmlField   `xml:"field"`
	Reviewer   *xmlReviewer `xml:"reviewer"`
}

// Dataset is the result of loading one review folder: the normalized
// records plus the provenance metadata that travels alongside the
// engine's output.
type Dataset struct {
	SourceFolder string               `json:"sourceFolder"`
	XMLFiles     int                  `json:"xmlFiles"`
	ParsedFiles  int                  `json:"parsedFiles"`
	ParseErrors  []string             `json:"parseErrors"`
	Records      []types.ReviewRecord `json:"-"`
}

// parseScore strictly parses a numeric score. Empty or unparsable text
// yields nil, never zero.
func parseScore(raw string) *float64 {
	text := analysis.NormalizeWhitespace(raw)
	if text == "" {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseReviewFile parses a single review XML file into a normalized
// record with its derived text metrics.
func ParseReviewFile(path string) (types.ReviewRecord, error) {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return types.ReviewRecord{}, fmt.Errorf("cannot read %s: %w", name, err)
	}

	var review xmlReview
	if err := xml.Unmarshal(data, &review); err != nil {
		return types.ReviewRecord{}, fmt.Errorf("invalid XML in %s: %w", name, err)
	}

	rec := types.ReviewRecord{
		Submission: strings.TrimSpace(review.Submission),
		Title:      strings.TrimSpace(review.Title),
		Authors:    strings.TrimSpace(review.Authors),
		FileName:   name,
		ReviewID:   strings.TrimSpace(review.ID),
		PCMember:   strings.TrimSpace(review.PCMember),
	}

	for _, field := range review.Fields {
		switch strings.TrimSpace(field.Name) {
		case fieldOverall:
			rec.OverallText = analysis.NormalizeWhitespace(field.Text)
			rec.OverallScore = parseScore(field.Score)
		case fieldConfidence:
			rec.ConfidenceScore = parseScore(field.Score)
		case fieldConfidential:
			rec.ConfidentialText = analysis.NormalizeWhitespace(field.Text)
		}
	}

	if review.Reviewer != nil {
		first := analysis.NormalizeWhitespace(review.Reviewer.FirstName)
		last := analysis.NormalizeWhitespace(review.Reviewer.LastName)
		rec.SubreviewerName = analysis.NormalizeWhitespace(first + " " + last)
		rec.SubreviewerEmail = analysis.NormalizeWhitespace(review.Reviewer.Email)
	}

	rec.WordCount = analysis.WordCount(rec.OverallText)
	rec.CharCount = utf8.RuneCountInString(rec.OverallText)
	rec.SentenceCount = analysis.SentenceCount(rec.OverallText)
	rec.UniqueWordRatio = analysis.UniqueWordRatio(rec.OverallText)

	return rec, nil
}

// LoadFolder parses every *.xml file in dir (sorted by name) and returns
// the records together with provenance counts and per-file parse errors.
// Files that fail to parse are reported, not fatal; the load only fails
// when the folder is missing, holds no XML files, or yields no parsable
// records at all.
func LoadFolder(dir string) (*Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("folder not found: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list folder %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no XML files found in folder: %s", dir)
	}

	ds := &Dataset{
		SourceFolder: dir,
		XMLFiles:     len(files),
		ParseErrors:  []string{},
	}

	for _, name := range files {
		rec, err := ParseReviewFile(filepath.Join(dir, name))
		if err != nil {
			ds.ParseErrors = append(ds.ParseErrors, err.Error())
			continue
		}
		ds.Records = append(ds.Records, rec)
	}
	ds.ParsedFiles = len(ds.Records)

	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("no valid review XML files could be parsed in %s", dir)
	}

	return ds, nil
}
