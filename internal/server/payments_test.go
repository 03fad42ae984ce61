package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/nutridesk/nutridesk/internal/payment/domain"
	reconciliationdomain "github.com/nutridesk/nutridesk/internal/reconciliation/domain"
	subscriptiondomain "github.com/nutridesk/nutridesk/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeReconcileService struct {
	calls int
	err   error
}

func (f *fakeReconcileService) Reconcile(ctx context.Context, req reconciliationdomain.ReconcileRequest) (reconciliationdomain.ReconcileResult, error) {
	f.calls++
	_ = ctx
	_ = req
	if f.err != nil {
		return reconciliationdomain.ReconcileResult{}, f.err
	}
	return reconciliationdomain.ReconcileResult{
		Payment:      paymentdomain.Payment{Status: paymentdomain.StatusCompleted, Amount: 29990},
		Subscription: subscriptiondomain.Subscription{Status: subscriptiondomain.StatusActive},
	}, nil
}

type fakePaymentService struct {
	stats     paymentdomain.RevenueStats
	created   []paymentdomain.CreatePaymentRequest
	createErr error
}

func (f *fakePaymentService) Create(ctx context.Context, req paymentdomain.CreatePaymentRequest) (paymentdomain.Payment, error) {
	_ = ctx
	if f.createErr != nil {
		return paymentdomain.Payment{}, f.createErr
	}
	f.created = append(f.created, req)
	return paymentdomain.Payment{Status: paymentdomain.StatusCompleted, Amount: req.Amount}, nil
}

func (f *fakePaymentService) List(ctx context.Context, req paymentdomain.ListPaymentsRequest) (paymentdomain.ListPaymentsResponse, error) {
	_ = ctx
	_ = req
	return paymentdomain.ListPaymentsResponse{}, nil
}

func (f *fakePaymentService) Recent(ctx context.Context, limit int) ([]paymentdomain.Payment, error) {
	_ = ctx
	_ = limit
	return nil, nil
}

func (f *fakePaymentService) GetByID(ctx context.Context, id string) (paymentdomain.Payment, error) {
	_ = ctx
	_ = id
	return paymentdomain.Payment{}, paymentdomain.ErrNotFound
}

func (f *fakePaymentService) Stats(ctx context.Context) (paymentdomain.RevenueStats, error) {
	_ = ctx
	return f.stats, nil
}

func newTestServer(reconcile *fakeReconcileService, payments *fakePaymentService) *Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	svc := &Server{
		engine:       r,
		paymentSvc:   payments,
		reconcileSvc: reconcile,
	}
	svc.registerAPIRoutes()
	return svc
}

func TestSimulatePayment_OK(t *testing.T) {
	reconcile := &fakeReconcileService{}
	srv := newTestServer(reconcile, &fakePaymentService{})

	body, _ := json.Marshal(map[string]any{
		"account_id": "123",
		"plan_id":    "456",
		"method":     "BANK_TRANSFER",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/simulate", bytes.NewReader(body))
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, reconcile.calls)

	var resp struct {
		Data reconciliationdomain.ReconcileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, paymentdomain.StatusCompleted, resp.Data.Payment.Status)
}

func TestSimulatePayment_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid method", reconciliationdomain.ErrInvalidMethod, http.StatusBadRequest},
		{"invalid amount", reconciliationdomain.ErrInvalidAmount, http.StatusBadRequest},
		{"account missing", reconciliationdomain.ErrAccountNotFound, http.StatusNotFound},
		{"plan missing", reconciliationdomain.ErrPlanNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&fakeReconcileService{err: tc.err}, &fakePaymentService{})

			body, _ := json.Marshal(map[string]any{
				"account_id": "123",
				"plan_id":    "456",
				"method":     "BANK_TRANSFER",
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/payments/simulate", bytes.NewReader(body))
			srv.Engine().ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestSimulatePayment_MalformedBody(t *testing.T) {
	reconcile := &fakeReconcileService{}
	srv := newTestServer(reconcile, &fakePaymentService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/simulate", bytes.NewReader([]byte("{")))
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, reconcile.calls)
}

func TestCreatePayment_Created(t *testing.T) {
	payments := &fakePaymentService{}
	srv := newTestServer(&fakeReconcileService{}, payments)

	body, _ := json.Marshal(map[string]any{
		"account_id":      "123",
		"plan_id":         "456",
		"amount":          29990,
		"method":          "WEBPAY",
		"transaction_id":  "webpay-txn-001",
		"idempotency_key": "reg-001",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments", bytes.NewReader(body))
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, payments.created, 1)
	assert.Equal(t, int64(29990), payments.created[0].Amount)
	require.NotNil(t, payments.created[0].IdempotencyKey)
	assert.Equal(t, "reg-001", *payments.created[0].IdempotencyKey)
}

func TestCreatePayment_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid amount", paymentdomain.ErrInvalidAmount, http.StatusBadRequest},
		{"duplicate key", gorm.ErrDuplicatedKey, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&fakeReconcileService{}, &fakePaymentService{createErr: tc.err})

			body, _ := json.Marshal(map[string]any{
				"account_id": "123",
				"plan_id":    "456",
				"amount":     29990,
				"method":     "WEBPAY",
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/payments", bytes.NewReader(body))
			srv.Engine().ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestGetPaymentStats(t *testing.T) {
	srv := newTestServer(&fakeReconcileService{}, &fakePaymentService{
		stats: paymentdomain.RevenueStats{TotalLifetime: 100000, MonthlyRecurring: 29990, Currency: "CLP"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/payments/stats", nil)
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data paymentdomain.RevenueStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(29990), resp.Data.MonthlyRecurring)
	assert.Equal(t, "CLP", resp.Data.Currency)
}

func TestGetPaymentByID_NotFound(t *testing.T) {
	srv := newTestServer(&fakeReconcileService{}, &fakePaymentService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/payments/999", nil)
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
