package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
)

var tollNoticeRows = []string{
	"id", "rental_id", "user_id", "licence_plate", "state", "toll_notice_number",
	"motorway", "issued_date", "trip_status", "admin_fee", "toll_amount",
	"total_amount", "due_date", "is_paid", "vehicle_type", "source",
	"week_of_year", "year", "created_at", "synced_at",
}

func TestListByRentalOrdersNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	newer := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	older := time.Date(2024, 6, 5, 14, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(tollNoticeRows).
		AddRow(2, 7, 0, "ABC123", "NSW", "TN-2", "M2", newer, "", 1.1, 5.9, 7.0, nil, 0, "", "search", 24, 2024, newer, newer).
		AddRow(1, 7, 0, "ABC123", "NSW", "TN-1", "M5", older, "", 1.1, 5.9, 7.0, nil, 1, "", "search", 23, 2024, older, older)

	mock.ExpectQuery(`FROM rental_toll_notices\s+WHERE rental_id = \?\s+ORDER BY issued_date DESC`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	repo := TollNoticeRepository{DB: db}
	list, err := repo.ListByRental(context.Background(), 7)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(list))
	}
	if list[0].TollNoticeNumber != "TN-2" {
		t.Fatalf("newest notice should come first, got %s", list[0].TollNoticeNumber)
	}
	if list[0].IsPaid || !list[1].IsPaid {
		t.Fatalf("is_paid mapping wrong: %v %v", list[0].IsPaid, list[1].IsPaid)
	}
	if !list[0].DueDate.IsZero() {
		t.Fatalf("NULL due_date should scan to zero time")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByRentalEmptyIsNotAnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM rental_toll_notices`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(tollNoticeRows))

	repo := TollNoticeRepository{DB: db}
	list, err := repo.ListByRental(context.Background(), 99)
	if err != nil {
		t.Fatalf("empty rental must not error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty slice, got %#v", list)
	}
}

func TestUpsertUsesDuplicateKeyUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO rental_toll_notices[\s\S]+ON DUPLICATE KEY UPDATE`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := TollNoticeRepository{DB: db}
	n := models.RentalTollNotice{
		TollNotice: models.TollNotice{
			LicencePlate:     "ABC123",
			TollNoticeNumber: "TN-1",
			IssuedDate:       time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
			TotalAmount:      7,
		},
		RentalID:   7,
		WeekOfYear: 23,
		Year:       2024,
		SyncedAt:   time.Now(),
	}
	if err := repo.Upsert(context.Background(), n); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsertRejectsMissingKeyFields(t *testing.T) {
	repo := TollNoticeRepository{}

	err := repo.Upsert(context.Background(), models.RentalTollNotice{RentalID: 7})
	if !domain.IsValidation(err) {
		t.Fatalf("missing notice number should be a validation error, got %v", err)
	}

	err = repo.Upsert(context.Background(), models.RentalTollNotice{
		TollNotice: models.TollNotice{TollNoticeNumber: "TN-1"},
	})
	if !domain.IsValidation(err) {
		t.Fatalf("missing rental id should be a validation error, got %v", err)
	}
}

func TestMarkPaidStampsStatusAndSync(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	syncedAt := time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE rental_toll_notices\s+SET is_paid = 1, trip_status = 'Paid', synced_at = \?`).
		WithArgs(syncedAt, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := TollNoticeRepository{DB: db}
	if err := repo.MarkPaid(context.Background(), 5, syncedAt); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkPaidUnknownNotice(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE rental_toll_notices`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := TollNoticeRepository{DB: db}
	if err := repo.MarkPaid(context.Background(), 404, time.Now()); !domain.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestUnpaidTotals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\), COALESCE\(SUM\(admin_fee\), 0\)`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"tolls", "fees"}).AddRow(21.5, 3.3))

	repo := TollNoticeRepository{DB: db}
	tolls, fees, err := repo.UnpaidTotals(context.Background(), 7)
	if err != nil {
		t.Fatalf("unpaid totals failed: %v", err)
	}
	if tolls != 21.5 || fees != 3.3 {
		t.Fatalf("unexpected totals: %v %v", tolls, fees)
	}
}
