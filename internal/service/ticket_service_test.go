package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/events"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type fakeTicketRepo struct {
	mu         sync.Mutex
	tickets    map[int64]*domain.Ticket
	nextID     int64
	createErrs []error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range r.tickets {
		if existing.Protocol == ticket.Protocol {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	r.nextID++
	ticket.ID = r.nextID
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByProtocol(_ context.Context, protocol int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.Protocol == protocol {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) ListOpen(_ context.Context) ([]domain.Ticket, error) {
	all, _ := r.ListAll(context.Background())
	open := all[:0]
	for _, ticket := range all {
		if ticket.IsOpen() {
			open = append(open, ticket)
		}
	}
	return open, nil
}

func (r *fakeTicketRepo) ListByAssetTag(_ context.Context, assetTag string) ([]domain.Ticket, error) {
	all, _ := r.ListAll(context.Background())
	matched := all[:0]
	for _, ticket := range all {
		if ticket.AssetTag != nil && *ticket.AssetTag == assetTag {
			matched = append(matched, ticket)
		}
	}
	return matched, nil
}

func (r *fakeTicketRepo) MaxProtocol(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for _, ticket := range r.tickets {
		if ticket.Protocol > max {
			max = ticket.Protocol
		}
	}
	return max, nil
}

type fakeInventoryRepo struct {
	machines map[string]*domain.Machine
	created  []string
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{machines: make(map[string]*domain.Machine)}
}

func (r *fakeInventoryRepo) Create(_ context.Context, machine *domain.Machine) error {
	r.machines[machine.AssetTag] = machine
	r.created = append(r.created, machine.AssetTag)
	return nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, assetTag string, machine *domain.Machine) error {
	if _, ok := r.machines[assetTag]; !ok {
		return pgx.ErrNoRows
	}
	r.machines[assetTag] = machine
	return nil
}

func (r *fakeInventoryRepo) Delete(_ context.Context, assetTag string) error {
	if _, ok := r.machines[assetTag]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.machines, assetTag)
	return nil
}

func (r *fakeInventoryRepo) FindByAssetTag(_ context.Context, assetTag string) (*domain.Machine, error) {
	machine, ok := r.machines[assetTag]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return machine, nil
}

func (r *fakeInventoryRepo) ListAll(_ context.Context) ([]domain.Machine, error) {
	out := make([]domain.Machine, 0, len(r.machines))
	for _, machine := range r.machines {
		out = append(out, *machine)
	}
	return out, nil
}

type fakeStockRepo struct {
	quantities   map[string]int
	consumptions []domain.PartConsumption
	decrementErr error
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{quantities: make(map[string]int)}
}

func (r *fakeStockRepo) AddPart(_ context.Context, part *domain.Part) error {
	r.quantities[part.Name] = part.Quantity
	return nil
}

func (r *fakeStockRepo) UpdatePart(_ context.Context, _ int64, _ *domain.Part) error { return nil }
func (r *fakeStockRepo) DeletePart(_ context.Context, _ int64) error                 { return nil }

func (r *fakeStockRepo) GetPartByName(_ context.Context, name string) (*domain.Part, error) {
	qty, ok := r.quantities[name]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &domain.Part{Name: name, Quantity: qty}, nil
}

func (r *fakeStockRepo) ListParts(_ context.Context) ([]domain.Part, error) { return nil, nil }

func (r *fakeStockRepo) DecrementStock(_ context.Context, partName string, qty int) (int, error) {
	if r.decrementErr != nil {
		return 0, r.decrementErr
	}
	current, ok := r.quantities[partName]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	current -= qty
	if current < 0 {
		current = 0
	}
	r.quantities[partName] = current
	return current, nil
}

func (r *fakeStockRepo) RecordConsumption(_ context.Context, consumption *domain.PartConsumption) error {
	r.consumptions = append(r.consumptions, *consumption)
	return nil
}

func (r *fakeStockRepo) ListConsumptionByTickets(_ context.Context, _ []int64) ([]domain.PartConsumption, error) {
	return r.consumptions, nil
}

type fakeMaintenanceRepo struct {
	entries   []domain.MaintenanceEntry
	appendErr error
}

func (r *fakeMaintenanceRepo) Append(_ context.Context, entry *domain.MaintenanceEntry) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeMaintenanceRepo) Delete(_ context.Context, assetTag string, performedAt time.Time) error {
	want := workhours.FormatTimestamp(performedAt)
	for i, entry := range r.entries {
		if entry.AssetTag == assetTag && workhours.FormatTimestamp(entry.PerformedAt) == want {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeMaintenanceRepo) ListByAssetTag(_ context.Context, assetTag string) ([]domain.MaintenanceEntry, error) {
	var out []domain.MaintenanceEntry
	for _, entry := range r.entries {
		if entry.AssetTag == assetTag {
			out = append(out, entry)
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func (d *recordingDispatcher) byType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range d.published {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type ticketFixture struct {
	service     *TicketService
	tickets     *fakeTicketRepo
	inventory   *fakeInventoryRepo
	stock       *fakeStockRepo
	maintenance *fakeMaintenanceRepo
	dispatcher  *recordingDispatcher
	clock       *fixedClock
}

func newTicketFixture(now time.Time) *ticketFixture {
	f := &ticketFixture{
		tickets:     newFakeTicketRepo(),
		inventory:   newFakeInventoryRepo(),
		stock:       newFakeStockRepo(),
		maintenance: &fakeMaintenanceRepo{},
		dispatcher:  &recordingDispatcher{},
		clock:       &fixedClock{now: now},
	}
	f.service = NewTicketService(TicketDependencies{
		TicketRepo:      f.tickets,
		InventoryRepo:   f.inventory,
		StockRepo:       f.stock,
		MaintenanceRepo: f.maintenance,
		Dispatcher:      f.dispatcher,
		Clock:           f.clock,
	})
	return f
}

func deskTime(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, workhours.Location())
}

var session = domain.Session{Username: "maria", IsAdmin: false}

func openInput() OpenTicketInput {
	return OpenTicketInput{
		UBS:        "UBS Central",
		Sector:     "Recepção",
		DefectType: "Não liga",
		Problem:    "Computador não liga pela manhã",
	}
}

func TestOpenAssignsSequentialProtocols(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		protocol, err := f.service.Open(ctx, session, openInput())
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if protocol != want {
			t.Fatalf("protocol = %d, want %d", protocol, want)
		}
	}
}

func TestOpenRetriesOnceOnProtocolCollision(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	f.tickets.createErrs = []error{&pgconn.PgError{Code: "23505"}}
	protocol, err := f.service.Open(ctx, session, openInput())
	if err != nil {
		t.Fatalf("open after one collision: %v", err)
	}
	if protocol != 1 {
		t.Fatalf("protocol = %d, want 1", protocol)
	}
}

func TestOpenFailsAfterRepeatedCollisions(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	f.tickets.createErrs = []error{
		&pgconn.PgError{Code: "23505"},
		&pgconn.PgError{Code: "23505"},
	}
	_, err := f.service.Open(ctx, session, openInput())
	if !apperrors.IsCode(err, "ALLOCATION_FAILED") {
		t.Fatalf("err = %v, want ALLOCATION_FAILED", err)
	}
}

func TestOpenRejectsBlankProblem(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))

	input := openInput()
	input.Problem = "   "
	_, err := f.service.Open(context.Background(), session, input)
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestOpenPrefillsLocationFromInventory(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	tag := "PAT-0042"
	f.inventory.machines[tag] = &domain.Machine{
		AssetTag: tag,
		Type:     domain.EquipmentComputer,
		Status:   domain.MachineStatusActive,
		UBS:      "UBS Norte",
		Sector:   "Farmácia",
	}

	input := OpenTicketInput{
		DefectType: "Não liga",
		Problem:    "Sem vídeo",
		AssetTag:   &tag,
	}
	protocol, err := f.service.Open(ctx, session, input)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	ticket, err := f.service.GetByProtocol(ctx, protocol)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ticket.UBS != "UBS Norte" || ticket.Sector != "Farmácia" {
		t.Fatalf("location = %s/%s, want UBS Norte/Farmácia", ticket.UBS, ticket.Sector)
	}
}

func TestOpenRegistersPlaceholderForUnknownAsset(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	tag := "PAT-0099"
	input := openInput()
	input.AssetTag = &tag
	if _, err := f.service.Open(ctx, session, input); err != nil {
		t.Fatalf("open: %v", err)
	}

	machine, err := f.inventory.FindByAssetTag(ctx, tag)
	if err != nil {
		t.Fatalf("placeholder not registered: %v", err)
	}
	if machine.Type != domain.EquipmentOther {
		t.Fatalf("placeholder type = %s, want %s", machine.Type, domain.EquipmentOther)
	}
}

func TestCloseStampsTimeAndRecordsParts(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	tag := "PAT-0010"
	f.inventory.machines[tag] = &domain.Machine{AssetTag: tag, UBS: "UBS Central", Sector: "Recepção"}
	f.stock.quantities["Fonte ATX"] = 3
	f.stock.quantities["Cabo SATA"] = 5

	input := openInput()
	input.AssetTag = &tag
	protocol, err := f.service.Open(ctx, session, input)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ticket, _ := f.service.GetByProtocol(ctx, protocol)

	f.clock.now = deskTime(2025, time.March, 3, 15, 30, 0)
	err = f.service.Close(ctx, session, ticket.ID, "Troca da fonte", []string{"Fonte ATX", "Cabo SATA", "  "})
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	closed, _ := f.service.GetByProtocol(ctx, protocol)
	if closed.IsOpen() {
		t.Fatal("ticket still open after close")
	}
	if closed.Resolution == nil || *closed.Resolution != "Troca da fonte" {
		t.Fatalf("resolution = %v", closed.Resolution)
	}
	if got := workhours.FormatTimestamp(*closed.ClosedAt); got != "03/03/2025 15:30:00" {
		t.Fatalf("closed_at = %s", got)
	}

	if len(f.stock.consumptions) != 2 {
		t.Fatalf("consumptions = %d, want 2", len(f.stock.consumptions))
	}
	if f.stock.quantities["Fonte ATX"] != 2 || f.stock.quantities["Cabo SATA"] != 4 {
		t.Fatalf("stock = %v", f.stock.quantities)
	}

	entries, _ := f.maintenance.ListByAssetTag(ctx, tag)
	if len(entries) != 1 {
		t.Fatalf("maintenance entries = %d, want 1", len(entries))
	}
	want := "Manutenção: Troca da fonte. Peças utilizadas: Fonte ATX, Cabo SATA."
	if entries[0].Description != want {
		t.Fatalf("description = %q, want %q", entries[0].Description, want)
	}

	closedEvents := f.dispatcher.byType(events.EventTicketClosed)
	if len(closedEvents) != 1 {
		t.Fatalf("closed events = %d, want 1", len(closedEvents))
	}
	payload, ok := closedEvents[0].Payload.(events.TicketClosedPayload)
	if !ok {
		t.Fatalf("payload type %T", closedEvents[0].Payload)
	}
	// 09:00 to 12:00 plus 13:00 to 15:30.
	if payload.WorkedTime != "5h 30m" {
		t.Fatalf("worked time = %q, want 5h 30m", payload.WorkedTime)
	}
}

func TestCloseWithoutPartsNotesNone(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	tag := "PAT-0011"
	f.inventory.machines[tag] = &domain.Machine{AssetTag: tag, UBS: "UBS Central", Sector: "Recepção"}
	input := openInput()
	input.AssetTag = &tag
	protocol, _ := f.service.Open(ctx, session, input)
	ticket, _ := f.service.GetByProtocol(ctx, protocol)

	if err := f.service.Close(ctx, session, ticket.ID, "Limpeza interna", nil); err != nil {
		t.Fatalf("close: %v", err)
	}
	entries, _ := f.maintenance.ListByAssetTag(ctx, tag)
	if len(entries) != 1 || !strings.Contains(entries[0].Description, "Peças utilizadas: Nenhuma.") {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestCloseAlreadyClosedRejected(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	protocol, _ := f.service.Open(ctx, session, openInput())
	ticket, _ := f.service.GetByProtocol(ctx, protocol)
	if err := f.service.Close(ctx, session, ticket.ID, "Resolvido", nil); err != nil {
		t.Fatalf("first close: %v", err)
	}

	err := f.service.Close(ctx, session, ticket.ID, "De novo", nil)
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestCloseRequiresResolution(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	protocol, _ := f.service.Open(ctx, session, openInput())
	ticket, _ := f.service.GetByProtocol(ctx, protocol)

	err := f.service.Close(ctx, session, ticket.ID, "  ", nil)
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
	if reloaded, _ := f.service.GetByProtocol(ctx, protocol); !reloaded.IsOpen() {
		t.Fatal("ticket closed despite missing resolution")
	}
}

func TestCloseSurvivesStockFailure(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	f.stock.decrementErr = pgx.ErrNoRows

	protocol, _ := f.service.Open(ctx, session, openInput())
	ticket, _ := f.service.GetByProtocol(ctx, protocol)
	if err := f.service.Close(ctx, session, ticket.ID, "Troca de peça", []string{"Peça fantasma"}); err != nil {
		t.Fatalf("close should not fail on stock errors: %v", err)
	}
	if reloaded, _ := f.service.GetByProtocol(ctx, protocol); reloaded.IsOpen() {
		t.Fatal("ticket not closed")
	}
}

func TestCloseEmitsStockDepletedAtZero(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	f.stock.quantities["Memória DDR4"] = 1

	protocol, _ := f.service.Open(ctx, session, openInput())
	ticket, _ := f.service.GetByProtocol(ctx, protocol)
	if err := f.service.Close(ctx, session, ticket.ID, "Troca de memória", []string{"Memória DDR4"}); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := f.dispatcher.byType(events.EventStockDepleted); len(got) != 1 {
		t.Fatalf("stock depleted events = %d, want 1", len(got))
	}
}

func TestReopenClearsCloseAndRemovesMaintenance(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	tag := "PAT-0020"
	f.inventory.machines[tag] = &domain.Machine{AssetTag: tag, UBS: "UBS Central", Sector: "Recepção"}
	input := openInput()
	input.AssetTag = &tag
	protocol, _ := f.service.Open(ctx, session, input)
	ticket, _ := f.service.GetByProtocol(ctx, protocol)

	f.clock.now = deskTime(2025, time.March, 3, 16, 0, 0)
	if err := f.service.Close(ctx, session, ticket.ID, "Troca do HD", nil); err != nil {
		t.Fatalf("close: %v", err)
	}
	if entries, _ := f.maintenance.ListByAssetTag(ctx, tag); len(entries) != 1 {
		t.Fatalf("entries after close = %d", len(entries))
	}

	if err := f.service.Reopen(ctx, session, ticket.ID, true); err != nil {
		t.Fatalf("reopen: %v", err)
	}

	reopened, _ := f.service.GetByProtocol(ctx, protocol)
	if !reopened.IsOpen() {
		t.Fatal("ticket not open after reopen")
	}
	if reopened.ClosedAt != nil || reopened.Resolution != nil {
		t.Fatalf("close fields not cleared: %+v", reopened)
	}
	if entries, _ := f.maintenance.ListByAssetTag(ctx, tag); len(entries) != 0 {
		t.Fatalf("maintenance entry not removed: %+v", entries)
	}
}

func TestReopenKeepsMaintenanceWhenNotRequested(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	tag := "PAT-0021"
	f.inventory.machines[tag] = &domain.Machine{AssetTag: tag, UBS: "UBS Central", Sector: "Recepção"}
	input := openInput()
	input.AssetTag = &tag
	protocol, _ := f.service.Open(ctx, session, input)
	ticket, _ := f.service.GetByProtocol(ctx, protocol)

	if err := f.service.Close(ctx, session, ticket.ID, "Troca do HD", nil); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := f.service.Reopen(ctx, session, ticket.ID, false); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if entries, _ := f.maintenance.ListByAssetTag(ctx, tag); len(entries) != 1 {
		t.Fatalf("maintenance entries = %d, want 1", len(entries))
	}
}

func TestReopenOpenTicketIsNoOp(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))
	ctx := context.Background()

	protocol, _ := f.service.Open(ctx, session, openInput())
	ticket, _ := f.service.GetByProtocol(ctx, protocol)

	if err := f.service.Reopen(ctx, session, ticket.ID, true); err != nil {
		t.Fatalf("reopen of open ticket should be a no-op, got %v", err)
	}
	if got := f.dispatcher.byType(events.EventTicketReopened); len(got) != 0 {
		t.Fatalf("reopen events = %d, want 0", len(got))
	}
}

func TestReopenMissingTicket(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 9, 0, 0))

	err := f.service.Reopen(context.Background(), session, 999, false)
	if !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestComputeElapsedTracksClockForOpenTickets(t *testing.T) {
	f := newTicketFixture(deskTime(2025, time.March, 3, 10, 0, 0))
	ctx := context.Background()

	protocol, _ := f.service.Open(ctx, session, openInput())
	ticket, _ := f.service.GetByProtocol(ctx, protocol)

	// Monday 10:00 to Tuesday 10:00 spans a full working day.
	f.clock.now = deskTime(2025, time.March, 4, 10, 0, 0)
	if got := f.service.ComputeElapsed(ticket); got != 8*time.Hour {
		t.Fatalf("elapsed = %v, want 8h", got)
	}
}
