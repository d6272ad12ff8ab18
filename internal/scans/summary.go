package scans

import (
	"fmt"

	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
)

// Summary aggregates feedback across every scan. Unreviewed scans count
// toward the total but never the accuracy denominator.
type Summary struct {
	Total        int    `json:"total"`
	Likes        int    `json:"likes"`
	Dislikes     int    `json:"dislikes"`
	Unreviewed   int    `json:"unreviewed"`
	AccuracyRate string `json:"accuracyRate"`
}

// ComputeSummary tallies verdicts over the given scans. AccuracyRate is
// likes over reviewed scans as a percentage with one decimal, or "0%" when
// nothing has been reviewed.
func ComputeSummary(scans []models.Scan) Summary {
	summary := Summary{Total: len(scans)}
	for i := range scans {
		switch scans[i].FeedbackVerdict {
		case enums.VerdictCorrect:
			summary.Likes++
		case enums.VerdictIncorrect:
			summary.Dislikes++
		default:
			summary.Unreviewed++
		}
	}

	reviewed := summary.Likes + summary.Dislikes
	if reviewed == 0 {
		summary.AccuracyRate = "0%"
		return summary
	}
	rate := float64(summary.Likes) / float64(reviewed) * 100
	summary.AccuracyRate = fmt.Sprintf("%.1f%%", rate)
	return summary
}
