package model

import "github.com/secmon-lab/quadrant/pkg/domain/types"

// DailyCompletion is the number of todos completed on one day
type DailyCompletion struct {
	Date  Date
	Count int
}

// CompletionReport summarizes completed todos over an inclusive date range
type CompletionReport struct {
	From           Date
	To             Date
	Days           []DailyCompletion
	TotalCompleted int
	ByCreatedVia   map[types.CreatedVia]int
}

// BuildCompletionReport aggregates todos completed between from and to. Every
// day in the range is present in Days, including days without completions.
func BuildCompletionReport(from, to Date, todos []*Todo) *CompletionReport {
	report := &CompletionReport{
		From:         from,
		To:           to,
		ByCreatedVia: make(map[types.CreatedVia]int),
	}

	index := make(map[Date]int)
	for d := from; !d.After(to); d = d.AddDays(1) {
		index[d] = len(report.Days)
		report.Days = append(report.Days, DailyCompletion{Date: d})
	}

	for _, t := range todos {
		if t.CompletedAt == nil || t.Status.Normalize() != types.TodoStatusDone {
			continue
		}
		i, ok := index[DateOf(*t.CompletedAt)]
		if !ok {
			continue
		}
		report.Days[i].Count++
		report.TotalCompleted++
		report.ByCreatedVia[t.CreatedVia]++
	}

	return report
}
