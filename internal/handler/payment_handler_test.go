package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-recon-api/internal/dto"
	"github.com/noah-isme/academy-recon-api/internal/middleware"
	"github.com/noah-isme/academy-recon-api/internal/models"
	appErrors "github.com/noah-isme/academy-recon-api/pkg/errors"
)

type mockPaymentService struct {
	records     []models.PaymentRecord
	cacheHit    bool
	listErr     error
	updated     *models.PaymentRecord
	updateErr   error
	publishedAt time.Time
	warning     *appErrors.Error
}

func (m *mockPaymentService) CurrentRecords(ctx context.Context) ([]models.PaymentRecord, bool, error) {
	return m.records, m.cacheHit, m.listErr
}

func (m *mockPaymentService) ApplyUpdate(ctx context.Context, studentID, courseKey string, req dto.UpdatePaymentRequest) (*models.PaymentRecord, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.updated, nil
}

func (m *mockPaymentService) PublishedAt() time.Time        { return m.publishedAt }
func (m *mockPaymentService) PublishedCount() int           { return len(m.records) }
func (m *mockPaymentService) LastWarning() *appErrors.Error { return m.warning }

type mockPoller struct {
	status models.PollSourceStatus
}

func (m *mockPoller) Status() models.PollSourceStatus { return m.status }

func buildPaymentRouter(h *PaymentHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.GET("/payments", h.List)
	router.GET("/payments/poller", h.PollerStatus)
	router.PATCH("/payments/:studentId/:courseKey", h.Update)
	router.POST("/payments/refresh", h.Refresh)
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestPaymentHandlerList(t *testing.T) {
	service := &mockPaymentService{
		records: []models.PaymentRecord{
			{StudentID: "S1", CourseKey: "C1", FinalPayment: 1000, PaymentStatus: models.PaymentStatusPending},
		},
		publishedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	h := NewPaymentHandler(service, func() bool { return true })
	router := buildPaymentRouter(h)

	req, _ := http.NewRequest(http.MethodGet, "/payments", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"studentId":"S1"`)
	assert.Contains(t, resp.Body.String(), `"record_count":1`)
	assert.Contains(t, resp.Body.String(), `"published_at"`)
}

func TestPaymentHandlerListSurfacesDegradedWarning(t *testing.T) {
	service := &mockPaymentService{
		records: []models.PaymentRecord{{StudentID: "S1", CourseKey: "C1"}},
		warning: appErrors.Clone(appErrors.ErrDegradedBatch, "showing last good data"),
	}
	h := NewPaymentHandler(service, func() bool { return true })
	router := buildPaymentRouter(h)

	req, _ := http.NewRequest(http.MethodGet, "/payments", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"warning":"showing last good data"`)

	// No warning, no meta key.
	service.warning = nil
	resp = performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), `"warning"`)
}

func TestPaymentHandlerListError(t *testing.T) {
	service := &mockPaymentService{listErr: appErrors.ErrInternal}
	h := NewPaymentHandler(service, func() bool { return true })
	router := buildPaymentRouter(h)

	req, _ := http.NewRequest(http.MethodGet, "/payments", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestPaymentHandlerUpdate(t *testing.T) {
	updated := &models.PaymentRecord{
		StudentID: "S1", CourseKey: "C1",
		FinalPayment: 1000, TotalPaidAmount: 400, BalancePayment: 600,
		PaymentStatus: models.PaymentStatusPending,
	}
	service := &mockPaymentService{updated: updated}
	h := NewPaymentHandler(service, func() bool { return true })
	router := buildPaymentRouter(h)

	body := bytes.NewBufferString(`{"totalPaidAmount": 400}`)
	req, _ := http.NewRequest(http.MethodPatch, "/payments/S1/C1", body)
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"balancePayment":600`)
}

func TestPaymentHandlerUpdateNotFound(t *testing.T) {
	service := &mockPaymentService{updateErr: appErrors.ErrNotFound}
	h := NewPaymentHandler(service, func() bool { return true })
	router := buildPaymentRouter(h)

	body := bytes.NewBufferString(`{"reminder": true}`)
	req, _ := http.NewRequest(http.MethodPatch, "/payments/S9/C9", body)
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPaymentHandlerUpdateBadBody(t *testing.T) {
	service := &mockPaymentService{}
	h := NewPaymentHandler(service, func() bool { return true })
	router := buildPaymentRouter(h)

	body := bytes.NewBufferString(`{"totalPaidAmount": "not a number"}`)
	req, _ := http.NewRequest(http.MethodPatch, "/payments/S1/C1", body)
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPaymentHandlerRefresh(t *testing.T) {
	service := &mockPaymentService{}
	enqueued := false
	h := NewPaymentHandler(service, func() bool {
		enqueued = true
		return true
	})
	router := buildPaymentRouter(h)

	req, _ := http.NewRequest(http.MethodPost, "/payments/refresh", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusAccepted, resp.Code)
	assert.True(t, enqueued)
	assert.Contains(t, resp.Body.String(), `"enqueued":true`)
}

func TestPaymentHandlerRefreshQueueFull(t *testing.T) {
	service := &mockPaymentService{}
	h := NewPaymentHandler(service, func() bool { return false })
	router := buildPaymentRouter(h)

	req, _ := http.NewRequest(http.MethodPost, "/payments/refresh", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusAccepted, resp.Code)
	assert.Contains(t, resp.Body.String(), `"enqueued":false`)
}

func TestPaymentHandlerPollerStatus(t *testing.T) {
	service := &mockPaymentService{records: []models.PaymentRecord{{StudentID: "S1", CourseKey: "C1"}}}
	h := NewPaymentHandler(service, func() bool { return true },
		&mockPoller{status: models.PollSourceStatus{Source: models.PollSourceRoster, State: models.PollStateIdle, Cycles: 3}},
		&mockPoller{status: models.PollSourceStatus{Source: models.PollSourceLedger, State: models.PollStateFetching, Cycles: 1}},
	)
	router := buildPaymentRouter(h)

	req, _ := http.NewRequest(http.MethodGet, "/payments/poller", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data dto.PollerStatusResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Sources, 2)
	assert.Equal(t, models.PollSourceRoster, envelope.Data.Sources[0].Source)
	assert.EqualValues(t, 3, envelope.Data.Sources[0].Cycles)
}
