// Package tollsearch talks to the external toll-notice search provider.
// The provider is flaky and its JSON is loosely specified, so requests go
// through a retrying client and responses are read field-by-field instead of
// strict struct decoding.
package tollsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/tolls"
)

type Client struct {
	BaseURL string
	APIKey  string

	http *retryablehttp.Client
}

func NewClient(baseURL, apiKey string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil

	return &Client{BaseURL: baseURL, APIKey: apiKey, http: rc}
}

// Search queries the provider. Transport-level failures (timeouts included)
// come back as an ordinary error; a provider-level "success":false comes back
// as a failed SearchResult with the provider's reason. A successful search
// with zero notices is a success.
func (c *Client) Search(ctx context.Context, req tolls.SearchRequest) (tolls.SearchResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return tolls.SearchResult{}, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/notices/search", bytes.NewReader(payload))
	if err != nil {
		return tolls.SearchResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("X-Api-Key", c.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return tolls.SearchResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return tolls.SearchResult{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return tolls.SearchResult{}, fmt.Errorf("toll search returned HTTP %d", resp.StatusCode)
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.Get("success").Bool() {
		reason := firstString(parsed, "error", "message")
		if reason == "" {
			reason = "provider reported failure without a reason"
		}
		return tolls.SearchResult{Success: false, ErrorReason: reason}, nil
	}

	notices := []models.ProviderTollNotice{}
	parsed.Get("notices").ForEach(func(_, item gjson.Result) bool {
		notices = append(notices, decodeNotice(item))
		return true
	})

	return tolls.SearchResult{Success: true, Notices: notices}, nil
}

// decodeNotice tolerates both camelCase and snake_case field names; the
// provider has shipped both over time.
func decodeNotice(item gjson.Result) models.ProviderTollNotice {
	return models.ProviderTollNotice{
		NoticeNumber: firstString(item, "noticeNumber", "toll_notice_number", "notice_number"),
		LicencePlate: firstString(item, "licencePlate", "licence_plate", "plate"),
		State:        firstString(item, "state"),
		Motorway:     firstString(item, "motorway", "road"),
		IssuedDate:   firstString(item, "issuedDate", "issued_date"),
		TripStatus:   firstString(item, "tripStatus", "trip_status"),
		AdminFee:     firstFloat(item, "adminFee", "admin_fee"),
		TollAmount:   firstFloat(item, "tollAmount", "toll_amount"),
		TotalAmount:  firstFloat(item, "totalAmount", "total_amount"),
		DueDate:      firstString(item, "dueDate", "due_date"),
		IsPaid:       item.Get("isPaid").Bool() || item.Get("is_paid").Bool(),
		VehicleType:  firstString(item, "vehicleType", "vehicle_type"),
	}
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v.String()
		}
	}
	return ""
}

func firstFloat(r gjson.Result, paths ...string) float64 {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v.Float()
		}
	}
	return 0
}
