package webhook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flowkit/pkg/flow"
	"github.com/dmitrymomot/flowkit/pkg/webhook"
)

type mockResourceAPI struct {
	mock.Mock
}

func (m *mockResourceAPI) Get(ctx context.Context, token string) (*flow.Resource, error) {
	args := m.Called(ctx, token)
	if res := args.Get(0); res != nil {
		return res.(*flow.Resource), args.Error(1)
	}
	return nil, args.Error(1)
}

func testRouter(t *testing.T, payments, refunds *mockResourceAPI, bus webhook.EventBus) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return webhook.Router(webhook.Config{Secret: testSecret}, payments, refunds, bus, log)
}

func TestRouter_PaymentNotification(t *testing.T) {
	t.Parallel()

	payments := new(mockResourceAPI)
	refunds := new(mockResourceAPI)
	bus := webhook.NewMemoryBus(4)
	events := bus.Subscribe(context.Background())

	payments.On("Get", mock.Anything, testToken).Return(&flow.Resource{
		ID:     "pay_1",
		Status: "2",
		Exists: true,
	}, nil).Once()

	router := testRouter(t, payments, refunds, bus)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(http.MethodPost, "/payment?secret="+testSecret, url.Values{"token": {testToken}}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	event := <-events
	assert.Equal(t, webhook.EventPaymentResolved, event.Type)
	assert.Equal(t, "pay_1", event.Resource.ID)
	assert.NotZero(t, event.ID)
	assert.False(t, event.OccurredAt.IsZero())
	payments.AssertExpectations(t)
	refunds.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRouter_RefundNotification(t *testing.T) {
	t.Parallel()

	payments := new(mockResourceAPI)
	refunds := new(mockResourceAPI)
	bus := webhook.NewMemoryBus(4)
	events := bus.Subscribe(context.Background())

	refunds.On("Get", mock.Anything, testToken).Return(&flow.Resource{ID: "ref_1", Exists: true}, nil).Once()

	router := testRouter(t, payments, refunds, bus)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(http.MethodPost, "/refund?secret="+testSecret, url.Values{"token": {testToken}}))

	require.Equal(t, http.StatusOK, rec.Code)
	event := <-events
	assert.Equal(t, webhook.EventRefundResolved, event.Type)
	payments.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRouter_PlanNotificationUsesPaymentLookup(t *testing.T) {
	t.Parallel()

	payments := new(mockResourceAPI)
	refunds := new(mockResourceAPI)
	bus := webhook.NewMemoryBus(4)
	events := bus.Subscribe(context.Background())

	payments.On("Get", mock.Anything, testToken).Return(&flow.Resource{ID: "pay_2", Exists: true}, nil).Once()

	router := testRouter(t, payments, refunds, bus)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(http.MethodPost, "/plan?secret="+testSecret, url.Values{"token": {testToken}}))

	require.Equal(t, http.StatusOK, rec.Code)
	event := <-events
	assert.Equal(t, webhook.EventPlanPaid, event.Type)
	refunds.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRouter_LookupFailure(t *testing.T) {
	t.Parallel()

	payments := new(mockResourceAPI)
	bus := webhook.NewMemoryBus(4)
	events := bus.Subscribe(context.Background())

	payments.On("Get", mock.Anything, testToken).Return(nil, errors.New("provider down"))

	router := testRouter(t, payments, new(mockResourceAPI), bus)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(http.MethodPost, "/payment?secret="+testSecret, url.Values{"token": {testToken}}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	select {
	case event := <-events:
		t.Fatalf("unexpected event published: %v", event.Type)
	default:
	}
}

func TestRouter_PublishFailure(t *testing.T) {
	t.Parallel()

	payments := new(mockResourceAPI)
	bus := webhook.NewMemoryBus(4)
	require.NoError(t, bus.Close())

	payments.On("Get", mock.Anything, testToken).Return(&flow.Resource{ID: "pay_1", Exists: true}, nil)

	router := testRouter(t, payments, new(mockResourceAPI), bus)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(http.MethodPost, "/payment?secret="+testSecret, url.Values{"token": {testToken}}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_GateRejectionShortCircuits(t *testing.T) {
	t.Parallel()

	payments := new(mockResourceAPI)
	bus := webhook.NewMemoryBus(4)

	router := testRouter(t, payments, new(mockResourceAPI), bus)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(http.MethodPost, "/payment?secret=wrong", url.Values{"token": {testToken}}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	payments.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRouter_DisabledGateParsesTokenItself(t *testing.T) {
	t.Parallel()

	payments := new(mockResourceAPI)
	bus := webhook.NewMemoryBus(4)
	events := bus.Subscribe(context.Background())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	payments.On("Get", mock.Anything, testToken).Return(&flow.Resource{ID: "pay_1", Exists: true}, nil)

	router := webhook.Router(webhook.Config{}, payments, new(mockResourceAPI), bus, log)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest(http.MethodPost, "/payment", url.Values{"token": {testToken}}))

	require.Equal(t, http.StatusOK, rec.Code)
	event := <-events
	assert.Equal(t, webhook.EventPaymentResolved, event.Type)
}

func TestRouter_PanicsOnNilDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		webhook.Router(webhook.Config{}, nil, new(mockResourceAPI), webhook.NewMemoryBus(1), nil)
	})
	assert.Panics(t, func() {
		webhook.Router(webhook.Config{}, new(mockResourceAPI), new(mockResourceAPI), nil, nil)
	})
}
