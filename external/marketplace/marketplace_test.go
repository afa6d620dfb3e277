package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ThriftStoreAPI/internal/model"
)

func TestFetchSettings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/settings/", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"commission_rate":     "15.00",
			"cod_commission_rate": "0.00",
		})
	}))
	defer srv.Close()

	c := NewClientWithBase(srv.URL)
	s, err := c.FetchSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "15", s.CommissionRate.String())
	assert.True(t, s.CODCommissionRate.IsZero())
}

func TestCreateOrder(t *testing.T) {
	var got model.OrderDraft
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/create/", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"order_id":   "ORD-20260901-001",
			"item_price": "250.00",
		})
	}))
	defer srv.Close()

	c := NewClientWithBase(srv.URL)
	order, err := c.CreateOrder(context.Background(), model.OrderDraft{
		BuyerEmail:      "buyer@example.com",
		ItemID:          42,
		PaymentMethod:   model.PaymentOnline,
		BuyerName:       "Asha",
		BuyerPhone:      "9999999999",
		DeliveryAddress: "12 Lane, Pune - 411001",
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD-20260901-001", order.OrderID)
	assert.Equal(t, "250", order.ItemPrice.String())
	assert.Equal(t, model.PaymentPending, order.PaymentStatus)
	assert.Equal(t, "buyer@example.com", got.BuyerEmail)
	assert.Equal(t, int64(42), got.ItemID)
}

func TestCreateOrderBackendRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "delivery_address is required"})
	}))
	defer srv.Close()

	c := NewClientWithBase(srv.URL)
	_, err := c.CreateOrder(context.Background(), model.OrderDraft{})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Contains(t, err.Error(), "delivery_address")
}

func TestCreateOrderTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	c := NewClientWithBase(srv.URL)
	_, err := c.CreateOrder(context.Background(), model.OrderDraft{})
	require.Error(t, err)
	assert.True(t, model.IsNetwork(err))
}

func TestUpdatePaymentStatusForwardsExtras(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/update-payment/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := NewClientWithBase(srv.URL)
	err := c.UpdatePaymentStatus(context.Background(), "ORD-1", "PAY123", model.PaymentPaid, map[string]string{
		"gateway_order_id":  "mt-77",
		"gateway_signature": "sig",
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", got["order_id"])
	assert.Equal(t, "PAY123", got["payment_id"])
	assert.Equal(t, "paid", got["payment_status"])
	assert.Equal(t, "mt-77", got["gateway_order_id"])
	assert.Equal(t, "sig", got["gateway_signature"])
}

func TestUpdatePaymentStatusFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClientWithBase(srv.URL)
	err := c.UpdatePaymentStatus(context.Background(), "ORD-1", "PAY123", model.PaymentPaid, nil)
	require.Error(t, err)
	assert.True(t, model.IsNetwork(err))
}

func TestSavedAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "buyer@example.com", r.URL.Query().Get("email"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"address":   "12 Lane, Pune - 411001",
			"latitude":  18.52,
			"longitude": 73.85,
		})
	}))
	defer srv.Close()

	c := NewClientWithBase(srv.URL)
	addr, err := c.SavedAddress(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "12 Lane, Pune - 411001", addr.Address)
	require.NotNil(t, addr.Latitude)
	assert.InDelta(t, 18.52, *addr.Latitude, 0.001)
}

func TestMalformedBaseURLIsAnErrorNotAPanic(t *testing.T) {
	c := NewClientWithBase("http://bad host")

	_, err := c.CreateOrder(context.Background(), model.OrderDraft{
		BuyerEmail: "buyer@example.com", ItemID: 1, PaymentMethod: model.PaymentCOD,
	})
	require.Error(t, err)
	assert.True(t, model.IsNetwork(err))

	err = c.UpdatePaymentStatus(context.Background(), "ORD-1", "PAY123", model.PaymentPaid, nil)
	require.Error(t, err)
	assert.True(t, model.IsNetwork(err))
}
