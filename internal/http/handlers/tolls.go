package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/http/middleware"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/services"
)

// tollServiceFor hands out a per-request shallow copy so the request id can
// be attached without touching the shared instance. The reconciler and cache
// pointers stay shared; the refresh guard spans all requests.
func tollServiceFor(c *gin.Context) *services.TollService {
	base := tollService()
	if base == nil {
		RespondError(c, http.StatusServiceUnavailable, "toll service not configured", nil)
		return nil
	}
	svc := *base
	svc.RequestID = middleware.GetRequestID(c)
	return &svc
}

// POST /api/rentals/:id/tolls/refresh
func RefreshRentalTolls(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	svc := tollServiceFor(c)
	if svc == nil {
		return
	}

	res, err := svc.Refresh(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if res.Skipped {
		c.JSON(http.StatusAccepted, gin.H{
			"message": "a toll search is already in flight, try again shortly",
			"skipped": true,
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/rentals/:id/tolls
func GetRentalTolls(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	svc := tollServiceFor(c)
	if svc == nil {
		return
	}

	notices, err := svc.List(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}

// GET /api/rentals/:id/tolls/weekly
func GetRentalTollsWeekly(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	svc := tollServiceFor(c)
	if svc == nil {
		return
	}

	summaries, err := svc.Weekly(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": summaries})
}

// PUT /api/rentals/:id/tolls/:noticeId/pay
func PayRentalToll(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	noticeID, ok := PathID(c, "noticeId")
	if !ok {
		return
	}
	svc := tollServiceFor(c)
	if svc == nil {
		return
	}

	if err := svc.MarkPaid(c.Request.Context(), id, noticeID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "toll notice marked paid", "noticeId": noticeID})
}

// GET /api/rentals/:id/tolls/export
func ExportRentalTollsCSV(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	svc := tollServiceFor(c)
	if svc == nil {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rental_%d_tolls.csv"`, id))
	if err := svc.ExportCSV(c.Request.Context(), id, c.Writer); err != nil {
		RespondDomainError(c, err)
		return
	}
}
