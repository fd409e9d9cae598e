// Package dashboard derives the summary statistics shown on the landing
// view from the backend's interview history.
package dashboard

import (
	"context"
	"math"

	"github.com/mockmate/webapp/internal/model/interview"
)

// HistorySource fetches past interview records. Satisfied by backend.Client.
type HistorySource interface {
	Dashboard(ctx context.Context) ([]interview.Record, error)
}

// Stats summarizes the interview history.
type Stats struct {
	Total    int                `json:"total"`
	AvgScore float64            `json:"avgScore"`
	Records  []interview.Record `json:"records"`
}

// Service computes dashboard statistics at render time.
type Service struct {
	source HistorySource
}

// New builds a dashboard service over the given history source.
func New(source HistorySource) *Service {
	return &Service{source: source}
}

// Stats fetches the history and derives the aggregates: total record count
// and the mean of positive parsed scores rounded to one decimal. Records
// whose score parses to zero or less do not qualify; when no record
// qualifies the average is 0.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.source.Dashboard(ctx)
	if err != nil {
		return Stats{}, err
	}

	sum, qualifying := 0, 0
	for _, record := range records {
		if score := record.Score.Int(); score > 0 {
			sum += score
			qualifying++
		}
	}

	stats := Stats{Total: len(records), Records: records}
	if qualifying > 0 {
		stats.AvgScore = math.Round(float64(sum)/float64(qualifying)*10) / 10
	}
	return stats, nil
}
