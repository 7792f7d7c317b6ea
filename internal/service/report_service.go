package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/persistence"
	"github.com/infocustec/ubs-helpdesk/internal/repository"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

const summaryCacheKey = "reports:summary"

// ReportSummary aggregates ticket volume and turnaround. Working-time
// means count open tickets against "now", so the summary drifts while
// tickets stay open.
type ReportSummary struct {
	TotalTickets     int              `json:"total_tickets"`
	OpenTickets      int              `json:"open_tickets"`
	ClosedTickets    int              `json:"closed_tickets"`
	ByUBS            map[string]int   `json:"by_ubs"`
	ByDefectType     map[string]int   `json:"by_defect_type"`
	ByMonth          map[string]int   `json:"by_month"`
	MeanWorkedTime   string           `json:"mean_worked_time"`
	MeanWorkedByUBS  map[string]string `json:"mean_worked_by_ubs"`
	GeneratedAt      string           `json:"generated_at"`
}

// ReportService is the read side: pure fan-out over tickets through the
// working-hours calculator, with a short-TTL Redis cache in front.
type ReportService struct {
	tickets repository.TicketRepository
	cache   *persistence.ReportCache
	clock   workhours.Clock
	logger  *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, cache *persistence.ReportCache, clock workhours.Clock, logger *zap.Logger) *ReportService {
	if clock == nil {
		clock = workhours.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{tickets: tickets, cache: cache, clock: clock, logger: logger}
}

// Summary computes (or serves from cache) the dashboard aggregation.
func (s *ReportService) Summary(ctx context.Context) (*ReportSummary, error) {
	var cached ReportSummary
	hit, err := s.cache.Get(ctx, summaryCacheKey, &cached)
	if err != nil {
		s.logger.Warn("report cache read failed", zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list tickets for report", nil, err)
	}

	summary := s.build(tickets)
	if err := s.cache.Set(ctx, summaryCacheKey, summary); err != nil {
		s.logger.Warn("report cache write failed", zap.Error(err))
	}
	return summary, nil
}

func (s *ReportService) build(tickets []domain.Ticket) *ReportSummary {
	now := s.clock.Now()
	summary := &ReportSummary{
		ByUBS:           make(map[string]int),
		ByDefectType:    make(map[string]int),
		ByMonth:         make(map[string]int),
		MeanWorkedByUBS: make(map[string]string),
		GeneratedAt:     workhours.FormatTimestamp(now),
	}

	var total time.Duration
	workedByUBS := make(map[string]time.Duration)

	for i := range tickets {
		t := &tickets[i]
		summary.TotalTickets++
		if t.IsOpen() {
			summary.OpenTickets++
		} else {
			summary.ClosedTickets++
		}
		summary.ByUBS[t.UBS]++
		summary.ByDefectType[t.DefectType]++
		summary.ByMonth[t.OpenedAt.Format("2006-01")]++

		end := now
		if t.ClosedAt != nil {
			end = *t.ClosedAt
		}
		worked := workhours.Elapsed(t.OpenedAt, end)
		total += worked
		workedByUBS[t.UBS] += worked
	}

	if summary.TotalTickets > 0 {
		summary.MeanWorkedTime = workhours.FormatDuration(total / time.Duration(summary.TotalTickets))
	} else {
		summary.MeanWorkedTime = workhours.FormatDuration(0)
	}
	for ubs, worked := range workedByUBS {
		summary.MeanWorkedByUBS[ubs] = workhours.FormatDuration(worked / time.Duration(summary.ByUBS[ubs]))
	}
	return summary
}

// MonthlyTrend returns ticket-opening counts bucketed by calendar month
// (YYYY-MM), sorted chronologically.
type MonthlyBucket struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthlyTrend aggregates opening timestamps per calendar month.
func (s *ReportService) MonthlyTrend(ctx context.Context) ([]MonthlyBucket, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list tickets for trend", nil, err)
	}

	counts := make(map[string]int)
	for i := range tickets {
		counts[tickets[i].OpenedAt.Format("2006-01")]++
	}

	buckets := make([]MonthlyBucket, 0, len(counts))
	for month, count := range counts {
		buckets = append(buckets, MonthlyBucket{Month: month, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })
	return buckets, nil
}
