package tolls

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
)

type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[string]models.RentalTollNotice // keyed (noticeNumber, rentalID)
	failUp  error
	upserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]models.RentalTollNotice{}}
}

func storeKey(noticeNumber string, rentalID int64) string {
	return fmt.Sprintf("%s|%d", noticeNumber, rentalID)
}

func (f *fakeStore) ListByRental(_ context.Context, rentalID int64) ([]models.RentalTollNotice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.RentalTollNotice{}
	for _, r := range f.rows {
		if r.RentalID == rentalID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedDate.After(out[j].IssuedDate) })
	return out, nil
}

func (f *fakeStore) Upsert(_ context.Context, n models.RentalTollNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUp != nil {
		return f.failUp
	}
	f.upserts++
	key := storeKey(n.TollNoticeNumber, n.RentalID)
	if existing, ok := f.rows[key]; ok {
		n.ID = existing.ID
		n.CreatedAt = existing.CreatedAt
	} else {
		f.nextID++
		n.ID = f.nextID
		n.CreatedAt = n.SyncedAt
	}
	f.rows[key] = n
	return nil
}

func (f *fakeStore) MarkPaid(_ context.Context, noticeID int64, syncedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, r := range f.rows {
		if r.ID == noticeID {
			r.IsPaid = true
			r.TripStatus = "Paid"
			r.SyncedAt = syncedAt
			f.rows[key] = r
			return nil
		}
	}
	return domain.NotFoundError{Resource: "toll notice"}
}

type fakeSearch struct {
	mu      sync.Mutex
	result  SearchResult
	err     error
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (f *fakeSearch) Search(_ context.Context, _ SearchRequest) (SearchResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

func testRental() models.Rental {
	return models.Rental{
		ID:          7,
		PlateNumber: "ABC123",
		State:       "NSW",
		StartDate:   date(2024, time.June, 1),
		EndDate:     date(2024, time.June, 14),
	}
}

func providerNotice(number, issued string) models.ProviderTollNotice {
	return models.ProviderTollNotice{
		NoticeNumber: number,
		LicencePlate: "ABC123",
		State:        "NSW",
		Motorway:     "M2",
		IssuedDate:   issued,
		AdminFee:     1.10,
		TollAmount:   5.90,
		TotalAmount:  7.00,
		DueDate:      "2024-07-01",
	}
}

func TestRefreshEndToEndWindowFilter(t *testing.T) {
	store := newFakeStore()
	search := &fakeSearch{result: SearchResult{
		Success: true,
		Notices: []models.ProviderTollNotice{
			providerNotice("TN-1", "2024-06-05"), // in window
			providerNotice("TN-2", "2024-05-30"), // before window
			providerNotice("TN-3", "2024-06-12"), // in window
		},
	}}

	r := NewReconciler(store, search)
	res, err := r.Refresh(context.Background(), testRental())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if res.Skipped {
		t.Fatalf("refresh should not be skipped")
	}
	if res.Found != 3 || res.Persisted != 2 {
		t.Fatalf("found=%d persisted=%d, want 3/2", res.Found, res.Persisted)
	}
	if len(res.Notices) != 2 {
		t.Fatalf("persisted set has %d rows, want 2", len(res.Notices))
	}

	total := 0
	for _, s := range res.Summaries {
		total += s.TotalTolls
	}
	if total != 2 {
		t.Fatalf("summaries cover %d tolls, want 2", total)
	}
}

func TestRefreshWindowBoundsAreInclusive(t *testing.T) {
	store := newFakeStore()
	search := &fakeSearch{result: SearchResult{
		Success: true,
		Notices: []models.ProviderTollNotice{
			providerNotice("TN-EDGE", "2024-01-10 23:59:59"), // last second of window
			providerNotice("TN-LATE", "2024-01-11"),          // day after
		},
	}}

	rental := testRental()
	rental.StartDate = date(2024, time.January, 1)
	rental.EndDate = date(2024, time.January, 10)

	r := NewReconciler(store, search)
	res, err := r.Refresh(context.Background(), rental)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if res.Persisted != 1 {
		t.Fatalf("persisted=%d, want 1", res.Persisted)
	}
	if res.Notices[0].TollNoticeNumber != "TN-EDGE" {
		t.Fatalf("wrong notice kept: %s", res.Notices[0].TollNoticeNumber)
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	store := newFakeStore()
	search := &fakeSearch{result: SearchResult{
		Success: true,
		Notices: []models.ProviderTollNotice{
			providerNotice("TN-1", "2024-06-05"),
			providerNotice("TN-3", "2024-06-12"),
		},
	}}

	r := NewReconciler(store, search)
	first, err := r.Refresh(context.Background(), testRental())
	if err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	second, err := r.Refresh(context.Background(), testRental())
	if err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}

	if len(first.Notices) != len(second.Notices) {
		t.Fatalf("persisted set changed: %d vs %d", len(first.Notices), len(second.Notices))
	}
	a, _ := json.Marshal(stripTimestamps(first.Summaries))
	b, _ := json.Marshal(stripTimestamps(second.Summaries))
	if string(a) != string(b) {
		t.Fatalf("summaries changed between identical refreshes")
	}
	if len(store.rows) != 2 {
		t.Fatalf("store accumulated duplicates: %d rows", len(store.rows))
	}
}

// stripTimestamps zeroes sync stamps so idempotency compares content, not clocks.
func stripTimestamps(in []models.WeeklyTollSummary) []models.WeeklyTollSummary {
	out := make([]models.WeeklyTollSummary, len(in))
	copy(out, in)
	for i := range out {
		notices := make([]models.RentalTollNotice, len(out[i].Notices))
		copy(notices, out[i].Notices)
		for j := range notices {
			notices[j].SyncedAt = time.Time{}
			notices[j].CreatedAt = time.Time{}
		}
		out[i].Notices = notices
	}
	return out
}

func TestRefreshConcurrentGuard(t *testing.T) {
	store := newFakeStore()
	search := &fakeSearch{
		result:  SearchResult{Success: true},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}

	r := NewReconciler(store, search)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := r.Refresh(context.Background(), testRental()); err != nil {
			t.Errorf("first refresh failed: %v", err)
		}
	}()

	<-search.started // first refresh is now inside the provider call

	res, err := r.Refresh(context.Background(), testRental())
	if err != nil {
		t.Fatalf("duplicate refresh must not error: %v", err)
	}
	if !res.Skipped {
		t.Fatalf("duplicate refresh should be skipped")
	}

	close(search.release)
	wg.Wait()

	if got := atomic.LoadInt32(&search.calls); got != 1 {
		t.Fatalf("provider searched %d times, want 1", got)
	}
}

func TestRefreshSearchFailureLeavesStoreUntouched(t *testing.T) {
	store := newFakeStore()
	seed := models.RentalTollNotice{
		TollNotice: models.TollNotice{TollNoticeNumber: "TN-OLD", LicencePlate: "ABC123",
			IssuedDate: date(2024, time.June, 2)},
		RentalID: 7, WeekOfYear: 23, Year: 2024,
	}
	_ = store.Upsert(context.Background(), seed)

	search := &fakeSearch{result: SearchResult{Success: false, ErrorReason: "provider timeout"}}

	r := NewReconciler(store, search)
	_, err := r.Refresh(context.Background(), testRental())
	if !domain.IsExternal(err) {
		t.Fatalf("expected external error, got %v", err)
	}

	rows, _ := store.ListByRental(context.Background(), 7)
	if len(rows) != 1 || rows[0].TollNoticeNumber != "TN-OLD" {
		t.Fatalf("persisted rows were disturbed: %+v", rows)
	}
}

func TestRefreshZeroResultsIsSuccess(t *testing.T) {
	store := newFakeStore()
	search := &fakeSearch{result: SearchResult{Success: true}}

	r := NewReconciler(store, search)
	res, err := r.Refresh(context.Background(), testRental())
	if err != nil {
		t.Fatalf("zero results must not be an error: %v", err)
	}
	if res.Found != 0 || res.Persisted != 0 || len(res.Summaries) != 0 {
		t.Fatalf("unexpected result for empty search: %+v", res)
	}
}

func TestRefreshUpsertFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.failUp = errors.New("disk full")
	search := &fakeSearch{result: SearchResult{
		Success: true,
		Notices: []models.ProviderTollNotice{providerNotice("TN-1", "2024-06-05")},
	}}

	r := NewReconciler(store, search)
	if _, err := r.Refresh(context.Background(), testRental()); !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestRefreshMalformedProviderRowFailsHard(t *testing.T) {
	store := newFakeStore()
	bad := providerNotice("", "2024-06-05") // missing identifying field
	search := &fakeSearch{result: SearchResult{Success: true,
		Notices: []models.ProviderTollNotice{bad}}}

	r := NewReconciler(store, search)
	if _, err := r.Refresh(context.Background(), testRental()); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkPaid(t *testing.T) {
	store := newFakeStore()
	seed := models.RentalTollNotice{
		TollNotice: models.TollNotice{TollNoticeNumber: "TN-1", LicencePlate: "ABC123",
			IssuedDate: date(2024, time.June, 5)},
		RentalID: 7,
	}
	_ = store.Upsert(context.Background(), seed)

	r := NewReconciler(store, &fakeSearch{})
	if err := r.MarkPaid(context.Background(), 1); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	rows, _ := store.ListByRental(context.Background(), 7)
	if !rows[0].IsPaid || rows[0].TripStatus != "Paid" {
		t.Fatalf("notice not marked paid: %+v", rows[0])
	}
	if rows[0].SyncedAt.IsZero() {
		t.Fatalf("synced_at not stamped")
	}
}

func TestRefreshLogsCarryContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	store := newFakeStore()
	search := &fakeSearch{result: SearchResult{Success: true}}
	r := NewReconciler(store, search)

	ctx := domain.WithRequestID(context.Background(), "req-42")
	if _, err := r.Refresh(ctx, testRental()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Fatalf("refresh log should carry the context request id, got:\n%s", buf.String())
	}
}

func TestWithinWindow(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 10)

	if !WithinWindow(date(2024, time.January, 1), start, end) {
		t.Fatalf("start day should be inside")
	}
	if !WithinWindow(time.Date(2024, 1, 10, 23, 59, 59, 0, time.Local), start, end) {
		t.Fatalf("last second of end day should be inside")
	}
	if WithinWindow(date(2024, time.January, 11), start, end) {
		t.Fatalf("day after end should be outside")
	}
	if WithinWindow(date(2023, time.December, 31), start, end) {
		t.Fatalf("day before start should be outside")
	}
}
