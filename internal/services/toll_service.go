package services

import (
	"context"
	"fmt"
	"io"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/cache"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/tolls"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

const tollCacheNS = "tolls"

// RentalLoader is the slice of the rental repository the toll flow needs.
type RentalLoader interface {
	GetByID(ctx context.Context, id int64) (models.Rental, error)
}

// TollService owns the reconciliation flow for rental toll notices. It keeps
// a single Reconciler instance per process, so the at-most-one-search guard
// is process-wide.
type TollService struct {
	Rentals    RentalLoader
	Store      tolls.NoticeStore
	Reconciler *tolls.Reconciler
	Cache      *cache.Cache
	RequestID  string
}

func NewTollService(rentals RentalLoader, store tolls.NoticeStore, search tolls.SearchClient, c *cache.Cache) *TollService {
	if c != nil {
		c.Configure(tollCacheNS, cache.Policy{TTL: cache.DefaultPolicy.TTL, MaxSize: 500})
	}
	return &TollService{
		Rentals:    rentals,
		Store:      store,
		Reconciler: tolls.NewReconciler(store, search),
		Cache:      c,
	}
}

// Refresh reconciles a rental against the external toll search and returns
// the authoritative post-write state plus weekly summaries.
func (s *TollService) Refresh(ctx context.Context, rentalID int64) (*tolls.RefreshResult, error) {
	rental, err := s.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.PlateNumber == "" {
		return nil, domain.ValidationError{Field: "vehicle", Msg: "rental has no vehicle plate to search"}
	}

	res, err := s.Reconciler.Refresh(ctx, rental)
	if err != nil {
		return nil, err
	}
	if !res.Skipped && s.Cache != nil {
		s.Cache.Delete(tollCacheNS, weeklyKey(rentalID))
	}
	return res, nil
}

// List returns the persisted notices for a rental, newest-issued-first.
func (s *TollService) List(ctx context.Context, rentalID int64) ([]models.RentalTollNotice, error) {
	if _, err := s.Rentals.GetByID(ctx, rentalID); err != nil {
		return nil, err
	}
	return s.Store.ListByRental(ctx, rentalID)
}

// Weekly returns the weekly summaries for a rental, served from cache when
// warm. A remote-tier hit decodes to generic JSON rather than the typed
// slice; in that case the summaries are recomputed from the store, which is
// cheap at this data scale.
func (s *TollService) Weekly(ctx context.Context, rentalID int64) ([]models.WeeklyTollSummary, error) {
	if _, err := s.Rentals.GetByID(ctx, rentalID); err != nil {
		return nil, err
	}

	compute := func(ctx context.Context) (any, error) {
		notices, err := s.Store.ListByRental(ctx, rentalID)
		if err != nil {
			return nil, err
		}
		return tolls.AggregateWeekly(notices), nil
	}

	if s.Cache == nil {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return v.([]models.WeeklyTollSummary), nil
	}

	v, err := s.Cache.GetOrSet(ctx, tollCacheNS, weeklyKey(rentalID), compute)
	if err != nil {
		return nil, err
	}
	if summaries, ok := v.([]models.WeeklyTollSummary); ok {
		return summaries, nil
	}

	notices, err := s.Store.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	return tolls.AggregateWeekly(notices), nil
}

// MarkPaid flips one notice to paid and drops the rental's cached summaries.
func (s *TollService) MarkPaid(ctx context.Context, rentalID, noticeID int64) error {
	if err := s.Reconciler.MarkPaid(ctx, noticeID); err != nil {
		return err
	}
	if s.Cache != nil {
		s.Cache.Delete(tollCacheNS, weeklyKey(rentalID))
	}
	return nil
}

// ExportCSV streams the rental's notices as CSV.
func (s *TollService) ExportCSV(ctx context.Context, rentalID int64, w io.Writer) error {
	rental, err := s.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		return err
	}
	notices, err := s.Store.ListByRental(ctx, rentalID)
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "tolls", "export_csv",
		fmt.Sprintf("rental_id=%d rows=%d", rentalID, len(notices)))
	return tolls.WriteCSV(w, rental.PlateNumber, notices)
}

func weeklyKey(rentalID int64) string {
	return fmt.Sprintf("weekly:%d", rentalID)
}
