package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-recon-api/internal/dto"
	"github.com/noah-isme/academy-recon-api/internal/middleware"
	"github.com/noah-isme/academy-recon-api/internal/models"
	appErrors "github.com/noah-isme/academy-recon-api/pkg/errors"
	"github.com/noah-isme/academy-recon-api/pkg/response"
)

type paymentService interface {
	CurrentRecords(ctx context.Context) ([]models.PaymentRecord, bool, error)
	ApplyUpdate(ctx context.Context, studentID, courseKey string, req dto.UpdatePaymentRequest) (*models.PaymentRecord, error)
	PublishedAt() time.Time
	PublishedCount() int
	LastWarning() *appErrors.Error
}

type pollerStatusProvider interface {
	Status() models.PollSourceStatus
}

// PaymentHandler wires the reconciliation core to HTTP endpoints.
type PaymentHandler struct {
	service paymentService
	trigger func() bool
	pollers []pollerStatusProvider
}

// NewPaymentHandler constructs the handler. The trigger enqueues a manual
// reconciliation pass; pollers expose their loop status for operators.
func NewPaymentHandler(service paymentService, trigger func() bool, pollers ...pollerStatusProvider) *PaymentHandler {
	return &PaymentHandler{service: service, trigger: trigger, pollers: pollers}
}

// List godoc
// @Summary Published payment records
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	records, cacheHit, err := h.service.CurrentRecords(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetSnapshotMeta(c, len(records), h.service.PublishedAt())
	if warn := h.service.LastWarning(); warn != nil {
		middleware.SetWarning(c, warn.Message)
	}
	middleware.SetProcessingTime(c, start)
	response.JSON(c, http.StatusOK, records, middleware.ExtractMeta(c))
}

// Update godoc
// @Summary Apply a partial update to a payment record
// @Tags Payments
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param courseKey path string true "Resolved course key"
// @Param payload body dto.UpdatePaymentRequest true "Fields to patch"
// @Success 200 {object} response.Envelope
// @Router /payments/{studentId}/{courseKey} [patch]
func (h *PaymentHandler) Update(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	studentID := strings.TrimSpace(c.Param("studentId"))
	courseKey := strings.TrimSpace(c.Param("courseKey"))
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}

	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid update payload"))
		return
	}

	record, err := h.service.ApplyUpdate(c.Request.Context(), studentID, courseKey, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, middleware.ExtractMeta(c))
}

// Refresh godoc
// @Summary Trigger a reconciliation pass
// @Tags Payments
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /payments/refresh [post]
func (h *PaymentHandler) Refresh(c *gin.Context) {
	if h.trigger == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.Accepted(c, dto.RefreshResponse{Enqueued: h.trigger()})
}

// PollerStatus godoc
// @Summary Poll source loop status
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/poller [get]
func (h *PaymentHandler) PollerStatus(c *gin.Context) {
	statuses := make([]models.PollSourceStatus, 0, len(h.pollers))
	for _, p := range h.pollers {
		statuses = append(statuses, p.Status())
	}
	middleware.SetSnapshotMeta(c, h.recordCount(), time.Time{})
	response.JSON(c, http.StatusOK, dto.PollerStatusResponse{Sources: statuses}, middleware.ExtractMeta(c))
}

func (h *PaymentHandler) recordCount() int {
	if h.service == nil {
		return 0
	}
	return h.service.PublishedCount()
}
