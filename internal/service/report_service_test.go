package service

import (
	"context"
	"testing"
	"time"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
)

func seedTicket(t *testing.T, repo *fakeTicketRepo, protocol int64, ubs, defectType string, openedAt time.Time, closedAt *time.Time) {
	t.Helper()
	ticket := &domain.Ticket{
		Protocol:   protocol,
		Requester:  "maria",
		UBS:        ubs,
		Sector:     "Recepção",
		DefectType: defectType,
		Problem:    "problema de teste",
		OpenedAt:   openedAt,
		ClosedAt:   closedAt,
	}
	if err := repo.Create(context.Background(), ticket); err != nil {
		t.Fatalf("seed ticket %d: %v", protocol, err)
	}
}

func closedAt(ts time.Time) *time.Time { return &ts }

func TestSummaryCountsAndGrouping(t *testing.T) {
	repo := newFakeTicketRepo()
	clock := &fixedClock{now: deskTime(2025, time.March, 5, 10, 0, 0)}
	svc := NewReportService(repo, nil, clock, nil)

	// Two closed at UBS Central, one still open at UBS Norte.
	seedTicket(t, repo, 1, "UBS Central", "Não liga",
		deskTime(2025, time.March, 3, 9, 0, 0),
		closedAt(deskTime(2025, time.March, 3, 11, 0, 0)))
	seedTicket(t, repo, 2, "UBS Central", "Sem rede",
		deskTime(2025, time.March, 3, 9, 0, 0),
		closedAt(deskTime(2025, time.March, 3, 13, 0, 0)))
	seedTicket(t, repo, 3, "UBS Norte", "Não liga",
		deskTime(2025, time.February, 28, 9, 0, 0),
		closedAt(deskTime(2025, time.February, 28, 10, 0, 0)))

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.TotalTickets != 3 || summary.OpenTickets != 0 || summary.ClosedTickets != 3 {
		t.Fatalf("counts = %d/%d/%d", summary.TotalTickets, summary.OpenTickets, summary.ClosedTickets)
	}
	if summary.ByUBS["UBS Central"] != 2 || summary.ByUBS["UBS Norte"] != 1 {
		t.Fatalf("by ubs = %v", summary.ByUBS)
	}
	if summary.ByDefectType["Não liga"] != 2 {
		t.Fatalf("by defect = %v", summary.ByDefectType)
	}
	if summary.ByMonth["2025-03"] != 2 || summary.ByMonth["2025-02"] != 1 {
		t.Fatalf("by month = %v", summary.ByMonth)
	}

	// Worked: 2h + 3h + 1h over three tickets.
	if summary.MeanWorkedTime != "2h 0m" {
		t.Fatalf("mean worked = %q, want 2h 0m", summary.MeanWorkedTime)
	}
	if summary.MeanWorkedByUBS["UBS Norte"] != "1h 0m" {
		t.Fatalf("mean by ubs = %v", summary.MeanWorkedByUBS)
	}
}

func TestSummaryMeasuresOpenTicketsAgainstNow(t *testing.T) {
	repo := newFakeTicketRepo()
	clock := &fixedClock{now: deskTime(2025, time.March, 3, 11, 0, 0)}
	svc := NewReportService(repo, nil, clock, nil)

	seedTicket(t, repo, 1, "UBS Central", "Não liga",
		deskTime(2025, time.March, 3, 9, 0, 0), nil)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.OpenTickets != 1 {
		t.Fatalf("open = %d, want 1", summary.OpenTickets)
	}
	if summary.MeanWorkedTime != "2h 0m" {
		t.Fatalf("mean worked = %q, want 2h 0m", summary.MeanWorkedTime)
	}
}

func TestSummaryEmptyDatabase(t *testing.T) {
	svc := NewReportService(newFakeTicketRepo(), nil, &fixedClock{now: deskTime(2025, time.March, 3, 9, 0, 0)}, nil)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalTickets != 0 {
		t.Fatalf("total = %d", summary.TotalTickets)
	}
	if summary.MeanWorkedTime != "0m" {
		t.Fatalf("mean worked = %q, want 0m", summary.MeanWorkedTime)
	}
}

func TestMonthlyTrendSorted(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := NewReportService(repo, nil, &fixedClock{now: deskTime(2025, time.April, 1, 9, 0, 0)}, nil)

	seedTicket(t, repo, 1, "UBS Central", "Não liga", deskTime(2025, time.March, 3, 9, 0, 0), nil)
	seedTicket(t, repo, 2, "UBS Central", "Não liga", deskTime(2025, time.January, 6, 9, 0, 0), nil)
	seedTicket(t, repo, 3, "UBS Central", "Não liga", deskTime(2025, time.March, 10, 9, 0, 0), nil)

	buckets, err := svc.MonthlyTrend(context.Background())
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("buckets = %+v", buckets)
	}
	if buckets[0].Month != "2025-01" || buckets[0].Count != 1 {
		t.Fatalf("first bucket = %+v", buckets[0])
	}
	if buckets[1].Month != "2025-03" || buckets[1].Count != 2 {
		t.Fatalf("second bucket = %+v", buckets[1])
	}
}
