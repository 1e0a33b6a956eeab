package tollsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/tolls"
)

func TestSearchParsesMixedCaseFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/notices/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("api key header missing")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"notices": [
				{"noticeNumber":"TN-1","licencePlate":"ABC123","state":"NSW","issuedDate":"2024-06-05","tollAmount":7.43,"adminFee":1.1,"totalAmount":8.53},
				{"toll_notice_number":"TN-2","licence_plate":"ABC123","state":"NSW","issued_date":"2024-06-12","toll_amount":5,"total_amount":5,"is_paid":true}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	res, err := c.Search(context.Background(), tolls.SearchRequest{LicencePlate: "ABC123", State: "NSW"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !res.Success || len(res.Notices) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Notices[0].NoticeNumber != "TN-1" || res.Notices[0].TotalAmount != 8.53 {
		t.Fatalf("camelCase notice misparsed: %+v", res.Notices[0])
	}
	if res.Notices[1].NoticeNumber != "TN-2" || !res.Notices[1].IsPaid {
		t.Fatalf("snake_case notice misparsed: %+v", res.Notices[1])
	}
}

func TestSearchProviderFailureIsResultNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"plate lookup timed out"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	res, err := c.Search(context.Background(), tolls.SearchRequest{LicencePlate: "ABC123"})
	if err != nil {
		t.Fatalf("provider-level failure must not be a transport error: %v", err)
	}
	if res.Success {
		t.Fatalf("expected failed result")
	}
	if res.ErrorReason != "plate lookup timed out" {
		t.Fatalf("reason lost: %q", res.ErrorReason)
	}
}

func TestSearchZeroNoticesIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"notices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	res, err := c.Search(context.Background(), tolls.SearchRequest{LicencePlate: "ABC123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || len(res.Notices) != 0 {
		t.Fatalf("zero-result success misreported: %+v", res)
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"notices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	c.http.RetryWaitMin = 0
	c.http.RetryWaitMax = 0

	res, err := c.Search(context.Background(), tolls.SearchRequest{LicencePlate: "ABC123"})
	if err != nil {
		t.Fatalf("search should have succeeded after retries: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success")
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 attempts, saw %d", hits)
	}
}
