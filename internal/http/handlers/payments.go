package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/domain/models"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/http/middleware"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/repositories"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/services"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/utils"
)

func paymentService(c *gin.Context) services.PaymentService {
	return services.PaymentService{
		RentalRepo:  repositories.RentalRepository{},
		PaymentRepo: repositories.PaymentRepository{},
		NoticeRepo:  repositories.TollNoticeRepository{},
		RequestID:   middleware.GetRequestID(c),
	}
}

type recordPaymentRequest struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
	PaidAt    string  `json:"paidAt"`
	Notes     string  `json:"notes"`
}

// POST /api/rentals/:id/payments
func RecordRentalPayment(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var req recordPaymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	payment := models.RentalPayment{
		RentalID: id,
		Amount:   req.Amount,
		Method:   req.Method,
		Ref:      req.Reference,
		Notes:    req.Notes,
	}
	if req.PaidAt != "" {
		paidAt, err := utils.ParseDateFlexible(req.PaidAt)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid paidAt", err)
			return
		}
		payment.PaidAt = paidAt
	}

	saved, err := paymentService(c).Record(c.Request.Context(), payment)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// GET /api/rentals/:id/statement
func GetRentalStatement(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	st, err := paymentService(c).Statement(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /api/rentals/:id/invoice
func GetRentalInvoicePDF(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	svc := services.DocsService{
		RentalRepo:  repositories.RentalRepository{},
		PaymentRepo: repositories.PaymentRepository{},
		NoticeRepo:  repositories.TollNoticeRepository{},
		RequestID:   middleware.GetRequestID(c),
	}
	pdf, filename, err := svc.GenerateInvoice(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
