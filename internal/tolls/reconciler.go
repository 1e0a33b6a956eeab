package tolls

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

// NoticeStore is the persisted-store collaborator. ListByRental returns rows
// newest-issued-first; an empty rental is an empty slice, not an error.
type NoticeStore interface {
	ListByRental(ctx context.Context, rentalID int64) ([]models.RentalTollNotice, error)
	Upsert(ctx context.Context, n models.RentalTollNotice) error
	MarkPaid(ctx context.Context, noticeID int64, syncedAt time.Time) error
}

// SearchRequest goes to the external toll-search provider.
type SearchRequest struct {
	LicencePlate string `json:"licencePlate"`
	State        string `json:"state"`
	NoticeNumber string `json:"noticeNumber,omitempty"`
	IsMotorcycle bool   `json:"isMotorcycle,omitempty"`
}

// SearchResult is the provider's answer. Success with zero notices is a
// normal outcome and must never be conflated with failure.
type SearchResult struct {
	Success     bool
	Notices     []models.ProviderTollNotice
	ErrorReason string
}

// SearchClient is the external toll-search collaborator.
type SearchClient interface {
	Search(ctx context.Context, req SearchRequest) (SearchResult, error)
}

// RefreshResult is what a completed (or skipped) reconciliation pass reports.
type RefreshResult struct {
	Skipped   bool                       `json:"skipped"`
	Found     int                        `json:"found"`
	Persisted int                        `json:"persisted"`
	Notices   []models.RentalTollNotice  `json:"notices"`
	Summaries []models.WeeklyTollSummary `json:"summaries"`
}

// Reconciler brings a rental's persisted notice set up to date against the
// external search. At most one refresh runs per instance at a time; the
// guard is per instance, not per rental. Log lines pick the request id up
// from ctx (domain.WithRequestID).
type Reconciler struct {
	Store  NoticeStore
	Search SearchClient

	searching atomic.Bool
	nowFn     func() time.Time
}

func NewReconciler(store NoticeStore, search SearchClient) *Reconciler {
	return &Reconciler{Store: store, Search: search, nowFn: time.Now}
}

func (r *Reconciler) now() time.Time {
	if r.nowFn != nil {
		return r.nowFn()
	}
	return time.Now()
}

// Refresh runs load -> search -> window filter -> upsert -> reload ->
// aggregate. A refresh already in flight makes this call a logged no-op
// (Skipped=true, nil error); callers that need guaranteed execution retry
// after the first pass completes.
func (r *Reconciler) Refresh(ctx context.Context, rental models.Rental) (*RefreshResult, error) {
	if !r.searching.CompareAndSwap(false, true) {
		utils.LogEvent(domain.RequestIDFrom(ctx), "tolls", "refresh",
			fmt.Sprintf("rental_id=%d search already in flight, skipping", rental.ID))
		return &RefreshResult{Skipped: true}, nil
	}
	defer r.searching.Store(false)

	if rental.ID <= 0 {
		return nil, domain.ValidationError{Field: "rentalId", Msg: "invalid rental id"}
	}

	if _, err := r.Store.ListByRental(ctx, rental.ID); err != nil {
		return nil, domain.InternalError{Msg: "load persisted toll notices", Err: err}
	}

	res, err := r.Search.Search(ctx, SearchRequest{
		LicencePlate: utils.NormalizePlate(rental.PlateNumber),
		State:        utils.NormalizeState(rental.State),
		IsMotorcycle: rental.VehicleType == "motorcycle",
	})
	if err != nil {
		return nil, domain.ExternalError{Service: "toll-search", Err: err}
	}
	if !res.Success {
		return nil, domain.ExternalError{Service: "toll-search", Msg: res.ErrorReason}
	}

	now := r.now()
	persisted := 0
	for _, raw := range res.Notices {
		notice, err := Normalize(raw, rental.ID, now)
		if err != nil {
			return nil, err
		}
		if !WithinWindow(notice.IssuedDate, rental.StartDate, rental.EndDate) {
			continue
		}
		if err := r.Store.Upsert(ctx, notice); err != nil {
			// no compensation: rows already written stay written
			return nil, domain.InternalError{Msg: "persist toll notice", Err: err}
		}
		persisted++
	}

	// Reload so the caller sees the authoritative post-write state.
	notices, err := r.Store.ListByRental(ctx, rental.ID)
	if err != nil {
		return nil, domain.InternalError{Msg: "reload toll notices", Err: err}
	}

	utils.LogEvent(domain.RequestIDFrom(ctx), "tolls", "refresh",
		fmt.Sprintf("rental_id=%d found=%d persisted=%d total=%d", rental.ID, len(res.Notices), persisted, len(notices)))

	return &RefreshResult{
		Found:     len(res.Notices),
		Persisted: persisted,
		Notices:   notices,
		Summaries: AggregateWeekly(notices),
	}, nil
}

// MarkPaid flips a notice to paid with a fixed status marker and a fresh
// sync timestamp. This and upsert are the only in-place mutations.
func (r *Reconciler) MarkPaid(ctx context.Context, noticeID int64) error {
	if noticeID <= 0 {
		return domain.ValidationError{Field: "noticeId", Msg: "invalid notice id"}
	}
	if err := r.Store.MarkPaid(ctx, noticeID, r.now()); err != nil {
		return err
	}
	utils.LogEvent(domain.RequestIDFrom(ctx), "tolls", "mark_paid", fmt.Sprintf("notice_id=%d", noticeID))
	return nil
}

// WithinWindow reports whether an issued timestamp falls inside the rental's
// inclusive [start, end] date window. The end date covers its whole calendar
// day: a notice at 23:59:59 on the last day belongs to the rental, one at
// 00:00 the next morning does not.
func WithinWindow(issued, start, end time.Time) bool {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, issued.Location())
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, issued.Location()).AddDate(0, 0, 1)
	return !issued.Before(s) && issued.Before(e)
}
