// Package insights computes the dashboard and analytics views of an
// account's analysis records. Every call rescans the records it is given.
package insights

import (
	"math"
	"sort"
	"time"

	"resxai/pkg/domain"
)

const (
	recentLimit      = 3
	excellentScore   = 85
	DefaultDays      = 7
	volumeDateLayout = "2006-01-02"
)

var buckets = []struct {
	label string
	upper int
}{
	{"0-40", 40},
	{"41-60", 60},
	{"61-80", 80},
	{"81-100", math.MaxInt},
}

// Dashboard summarizes all of an account's records.
func Dashboard(records []domain.AnalysisRecord) domain.DashboardView {
	total := len(records)
	return domain.DashboardView{
		Total:             total,
		Analyzed:          total,
		AvgScore:          average(records, scoreOf),
		AvgTime:           average(records, timeOf),
		TopSkills:         TopSkills(records),
		RecentResumes:     Recent(records, recentLimit),
		ScoreDistribution: ScoreDistribution(records),
	}
}

// maxDurationDays is the largest day count a time.Duration can hold.
const maxDurationDays = int(math.MaxInt64 / int64(24*time.Hour))

// WindowStart is the earliest creation time included in a days-long window.
// Windows too long for a time.Duration start at the zero time.
func WindowStart(now time.Time, days int) time.Time {
	if days > maxDurationDays {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// Analytics summarizes the records created within the last days days of now.
// Records outside the window are ignored, so callers may pass a superset.
func Analytics(records []domain.AnalysisRecord, now time.Time, days int) domain.AnalyticsView {
	start := WindowStart(now, days)
	window := make([]domain.AnalysisRecord, 0, len(records))
	for _, r := range records {
		if !r.CreatedAt.Before(start) {
			window = append(window, r)
		}
	}

	view := domain.AnalyticsView{
		TotalApplications: len(window),
		AvgScore:          average(window, scoreOf),
		AvgProcessingTime: average(window, timeOf),
		ScoreTrends:       make([]domain.ScorePoint, 0, len(window)),
		TopSkills:         TopSkills(window),
		ApplicationVolume: make(map[string]int),
	}
	for _, r := range window {
		if r.Score >= excellentScore {
			view.ExcellentCandidates++
		}
		view.ScoreTrends = append(view.ScoreTrends, domain.ScorePoint{Date: r.CreatedAt, Score: r.Score})
		view.ApplicationVolume[r.CreatedAt.UTC().Format(volumeDateLayout)]++
	}
	return view
}

// TopSkills maps each skill to the number of records listing it.
func TopSkills(records []domain.AnalysisRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		seen := make(map[string]struct{}, len(r.Skills))
		for _, skill := range r.Skills {
			// a skill repeated within one record counts once
			if _, dup := seen[skill]; dup {
				continue
			}
			seen[skill] = struct{}{}
			counts[skill]++
		}
	}
	return counts
}

// Recent returns up to limit records, newest first.
func Recent(records []domain.AnalysisRecord, limit int) []domain.AnalysisRecord {
	sorted := make([]domain.AnalysisRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// ScoreDistribution places every record in exactly one of four score buckets.
func ScoreDistribution(records []domain.AnalysisRecord) []domain.ScoreBucket {
	counts := make([]int, len(buckets))
	for _, r := range records {
		for i, b := range buckets {
			if r.Score <= b.upper {
				counts[i]++
				break
			}
		}
	}
	out := make([]domain.ScoreBucket, len(buckets))
	for i, b := range buckets {
		out[i] = domain.ScoreBucket{Label: b.label, Percent: percent(counts[i], len(records))}
	}
	return out
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(total)))
}

func scoreOf(r domain.AnalysisRecord) int { return r.Score }
func timeOf(r domain.AnalysisRecord) int  { return r.ProcessingTime }

func average(records []domain.AnalysisRecord, field func(domain.AnalysisRecord) int) int {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += field(r)
	}
	return int(math.Round(float64(sum) / float64(len(records))))
}
