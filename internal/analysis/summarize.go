package analysis

import (
	"fmt"

	"github.com/pcdash/review-dashboard/internal/types"
)

// ReviewerKeyFor resolves the identity key used to group reviews by
// reviewer. Priority: PC member, subreviewer email, subreviewer name,
// then a synthetic fallback derived from the source file so that every
// review lands in some reviewer group.
func ReviewerKeyFor(r types.ReviewRecord) string {
	if r.PCMember != "" {
		return r.PCMember
	}
	if r.SubreviewerEmail != "" {
		return r.SubreviewerEmail
	}
	if r.SubreviewerName != "" {
		return r.SubreviewerName
	}
	return fmt.Sprintf("unknown:%s", r.FileName)
}

// reviewerBaselines groups present overall scores by reviewer key and
// derives mean/min/max/range per reviewer. Reviewers with no scored
// reviews produce no baseline.
func reviewerBaselines(records []types.ReviewRecord) map[string]ReviewerBaseline {
	scores := make(map[string][]float64)
	for _, r := range records {
		if r.OverallScore == nil {
			continue
		}
		key := ReviewerKeyFor(r)
		scores[key] = append(scores[key], *r.OverallScore)
	}

	baselines := make(map[string]ReviewerBaseline, len(scores))
	for key, vals := range scores {
		sum := 0.0
		minScore := vals[0]
		maxScore := vals[0]
		for _, v := range vals {
			sum += v
			if v < minScore {
				minScore = v
			}
			if v > maxScore {
				maxScore = v
			}
		}
		baselines[key] = ReviewerBaseline{
			Mean:  sum / float64(len(vals)),
			Min:   minScore,
			Max:   maxScore,
			Range: maxScore - minScore,
		}
	}
	return baselines
}

// confidenceWeight maps a reviewer confidence to a score weight ranging
// linearly from 1.0 at confidence 1 to 1.5 at confidence 5. An absent
// confidence weighs 1.0 (but is still excluded from avgConfidence).
func confidenceWeight(confidence *float64) float64 {
	if confidence == nil {
		return 1.0
	}
	c := *confidence
	if c < 1 {
		c = 1
	}
	if c > 5 {
		c = 5
	}
	return 1.0 + 0.5*(c-1)/4
}

// Summarize aggregates normalized review records into per-paper summaries
// and flat review rows. It is a pure function of its input: no state is
// retained between calls and equal inputs produce identical output, with
// papers in first-seen submission order and rows in input order.
//
// Reviewer baselines are computed over the whole input set before any
// per-paper metric, so a paper's reviewerAdjustedScore reflects each
// reviewer's behavior across all papers they reviewed.
func Summarize(records []types.ReviewRecord) Summary {
	baselines := reviewerBaselines(records)

	paperIndex := make(map[string]int)
	papers := make([]PaperSummary, 0)
	rows := make([]ReviewRow, 0, len(records))

	for _, r := range records {
		key := ReviewerKeyFor(r)

		idx, ok := paperIndex[r.Submission]
		if !ok {
			idx = len(papers)
			paperIndex[r.Submission] = idx
			papers = append(papers, PaperSummary{
				Submission: r.Submission,
				Title:      r.Title,
				Authors:    r.Authors,
			})
		}

		papers[idx].Reviews = append(papers[idx].Reviews, PaperReview{
			FileName:         r.FileName,
			ReviewID:         r.ReviewID,
			PCMember:         r.PCMember,
			OverallScore:     r.OverallScore,
			ConfidenceScore:  r.ConfidenceScore,
			OverallText:      r.OverallText,
			ConfidentialText: r.ConfidentialText,
			SubreviewerName:  r.SubreviewerName,
			SubreviewerEmail: r.SubreviewerEmail,
			WordCount:        r.WordCount,
			CharCount:        r.CharCount,
			SentenceCount:    r.SentenceCount,
			UniqueWordRatio:  r.UniqueWordRatio,
			ReviewerKey:      key,
		})

		rows = append(rows, ReviewRow{
			Submission:      r.Submission,
			Title:           r.Title,
			FileName:        r.FileName,
			OverallScore:    r.OverallScore,
			ConfidenceScore: r.ConfidenceScore,
			WordCount:       r.WordCount,
			CharCount:       r.CharCount,
			SentenceCount:   r.SentenceCount,
			UniqueWordRatio: r.UniqueWordRatio,
			PCMember:        r.PCMember,
			ReviewerKey:     key,
			ReviewID:        r.ReviewID,
			HasConfidential: r.ConfidentialText != "",
		})
	}

	for i := range papers {
		summarizePaper(&papers[i], baselines)
	}

	return Summary{
		PaperCount:    len(papers),
		ReviewCount:   len(rows),
		ReviewerCount: len(baselines),
		Papers:        papers,
		ReviewRows:    rows,
	}
}

// summarizePaper derives the score statistics of one paper from its
// member reviews. Every score-derived field stays nil when no member
// review has a present overall score.
func summarizePaper(p *PaperSummary, baselines map[string]ReviewerBaseline) {
	p.ReviewCount = len(p.Reviews)

	var (
		scoreSum, confSum          float64
		scoreCount, confCount      int
		minScore, maxScore         float64
		wordSum                    int
		weightedTotal, weightedDen float64
		adjustedSum                float64
		adjustedCount              int
	)

	for _, rv := range p.Reviews {
		wordSum += rv.WordCount

		if rv.ConfidenceScore != nil {
			confSum += *rv.ConfidenceScore
			confCount++
		}

		if rv.OverallScore == nil {
			continue
		}
		score := *rv.OverallScore

		if scoreCount == 0 || score < minScore {
			minScore = score
		}
		if scoreCount == 0 || score > maxScore {
			maxScore = score
		}
		scoreSum += score
		scoreCount++

		weight := confidenceWeight(rv.ConfidenceScore)
		weightedTotal += score * weight
		weightedDen += weight

		if baseline, ok := baselines[rv.ReviewerKey]; ok {
			if baseline.Range > 0 {
				adjustedSum += (score - baseline.Mean) / baseline.Range
			}
			// Zero-range reviewers contribute exactly 0.
			adjustedCount++
		}
	}

	if p.ReviewCount > 0 {
		p.AvgWordCount = round1(float64(wordSum) / float64(p.ReviewCount))
	}
	if confCount > 0 {
		p.AvgConfidence = ptr(round3(confSum / float64(confCount)))
	}
	if scoreCount > 0 {
		p.AvgScore = ptr(round3(scoreSum / float64(scoreCount)))
		p.MinScore = ptr(minScore)
		p.MaxScore = ptr(maxScore)
		p.ScoreDiscrepancy = ptr(round3(maxScore - minScore))
	}
	if weightedDen > 0 {
		p.ConfidenceWeightedScore = ptr(round3(weightedTotal / weightedDen))
	}
	if adjustedCount > 0 {
		p.ReviewerAdjustedScore = ptr(round3(adjustedSum / float64(adjustedCount)))
	}
}

func ptr(v float64) *float64 { return &v }
