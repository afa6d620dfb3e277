package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"ThriftStoreAPI/internal/model"
)

// Client talks to the marketplace backend's REST API. It is the only
// component permitted to create or mutate server-side order records.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient() (*Client, error) {
	base := os.Getenv("MARKETPLACE_API_URL")
	if base == "" {
		return nil, errors.New("MARKETPLACE_API_URL not set")
	}
	return NewClientWithBase(base), nil
}

func NewClientWithBase(base string) *Client {
	return &Client{
		baseURL: base,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type settingsResponse struct {
	CommissionRate    string `json:"commission_rate"`
	CODCommissionRate string `json:"cod_commission_rate"`
}

// FetchSettings returns the platform commission snapshot.
func (c *Client) FetchSettings(ctx context.Context) (*model.PlatformSettings, error) {
	var out settingsResponse
	if err := c.getJSON(ctx, "/api/settings/", nil, &out); err != nil {
		return nil, err
	}

	online, err := decimal.NewFromString(out.CommissionRate)
	if err != nil {
		return nil, fmt.Errorf("settings: bad commission_rate %q", out.CommissionRate)
	}
	cod, err := decimal.NewFromString(out.CODCommissionRate)
	if err != nil {
		return nil, fmt.Errorf("settings: bad cod_commission_rate %q", out.CODCommissionRate)
	}

	return &model.PlatformSettings{CommissionRate: online, CODCommissionRate: cod}, nil
}

type createOrderResponse struct {
	OrderID   string `json:"order_id"`
	ItemPrice string `json:"item_price"`
	Error     string `json:"error"`
}

// CreateOrder starts an order for a single item. The backend snapshots the
// item price at creation time; for online payment the order starts pending.
func (c *Client) CreateOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	body, _ := json.Marshal(draft)

	req, err := c.newRequest(ctx, http.MethodPost, "/api/orders/create/", bytes.NewBuffer(body))
	if err != nil {
		return nil, &model.NetworkError{Op: "order create", Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &model.NetworkError{Op: "order create", Err: err}
	}
	defer resp.Body.Close()

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &model.NetworkError{Op: "order create", Err: err}
	}

	if resp.StatusCode >= 300 {
		reason := out.Error
		if reason == "" {
			reason = resp.Status
		}
		if resp.StatusCode >= 500 {
			return nil, &model.NetworkError{Op: "order create", Err: errors.New(reason)}
		}
		// backend rejected a required field
		return nil, &model.ValidationError{Reason: reason}
	}

	price, err := decimal.NewFromString(out.ItemPrice)
	if err != nil {
		price = decimal.Zero
	}

	status := model.PaymentPending
	return &model.Order{
		OrderID:       out.OrderID,
		ItemID:        draft.ItemID,
		PaymentMethod: draft.PaymentMethod,
		PaymentStatus: status,
		ItemPrice:     price,
	}, nil
}

// UpdatePaymentStatus reconciles an order's payment status after the external
// gateway has already confirmed the outcome. Extra carries gateway-specific
// correlation fields; they are forwarded opaquely, never interpreted.
func (c *Client) UpdatePaymentStatus(ctx context.Context, orderID, paymentID string, status model.PaymentStatus, extra map[string]string) error {
	payload := map[string]string{
		"order_id":       orderID,
		"payment_id":     paymentID,
		"payment_status": string(status),
	}
	for k, v := range extra {
		payload[k] = v
	}
	body, _ := json.Marshal(payload)

	req, err := c.newRequest(ctx, http.MethodPost, "/api/orders/update-payment/", bytes.NewBuffer(body))
	if err != nil {
		return &model.NetworkError{Op: "payment update", Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &model.NetworkError{Op: "payment update", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var out struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		if out.Error == "" {
			out.Error = resp.Status
		}
		return &model.NetworkError{Op: "payment update", Err: errors.New(out.Error)}
	}
	return nil
}

// SavedAddress is the buyer's stored delivery address, if any.
type SavedAddress struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (c *Client) SavedAddress(ctx context.Context, email string) (*SavedAddress, error) {
	var out SavedAddress
	if err := c.getJSON(ctx, "/api/profile/address/", url.Values{"email": {email}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Conversations returns the buyer's chat threads as-is; the payload is opaque
// to this service and only proxied for polling.
func (c *Client) Conversations(ctx context.Context, email string) (json.RawMessage, error) {
	return c.getRaw(ctx, "/api/conversations/", url.Values{"email": {email}})
}

func (c *Client) ConversationMessages(ctx context.Context, conversationID int64) (json.RawMessage, error) {
	path := "/api/conversations/" + strconv.FormatInt(conversationID, 10) + "/messages/"
	return c.getRaw(ctx, path, nil)
}

func (c *Client) CheckNotifications(ctx context.Context, email string) (json.RawMessage, error) {
	return c.getRaw(ctx, "/api/notifications/check/", url.Values{"email": {email}})
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Buffer) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) getRaw(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &model.NetworkError{Op: "backend get " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.NetworkError{Op: "backend get " + path, Err: errors.New(resp.Status)}
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &model.NetworkError{Op: "backend get " + path, Err: err}
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	raw, err := c.getRaw(ctx, path, query)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
