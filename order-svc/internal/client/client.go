// Package client is a small HTTP client for the order service API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flash-delivery/order-svc/internal/domain"
)

const defaultTimeout = 10 * time.Second

// ErrNotFound is returned when the requested order does not exist.
var ErrNotFound = errors.New("order not found")

// APIError is a non-2xx response carrying the service's error code.
type APIError struct {
	StatusCode int
	Code       string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Code)
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

type LineItem struct {
	MenuID   int                      `json:"menu_id"`
	Quantity int                      `json:"quantity"`
	Options  []domain.OptionSelection `json:"options"`
}

type OrderRequest struct {
	Address       string     `json:"address"`
	Phone         string     `json:"phone"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	StoreID       int        `json:"store_id,omitempty"`
	Items         []LineItem `json:"items"`
}

type CreateResult struct {
	Created    bool   `json:"-"`
	Success    bool   `json:"success"`
	TrackingID string `json:"tracking_uuid"`
}

func (c *Client) Menus(ctx context.Context) ([]domain.MenuItem, error) {
	var menus []domain.MenuItem
	if _, err := c.do(ctx, http.MethodGet, "/menus", nil, nil, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// CreateOrder submits an order under idempotencyKey. A replayed key reports
// Created=false with the original tracking id.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (CreateResult, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	var result CreateResult
	status, err := c.do(ctx, http.MethodPost, "/orders", req, headers, &result)
	if err != nil {
		return CreateResult{}, err
	}
	result.Created = status == http.StatusCreated
	return result, nil
}

func (c *Client) Order(ctx context.Context, trackingID string) (*domain.Order, error) {
	var order *domain.Order
	_, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(trackingID), nil, nil, &order)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var body struct {
		Token string `json:"token"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/admin/login", map[string]string{"password": password}, nil, &body); err != nil {
		return "", err
	}
	return body.Token, nil
}

func (c *Client) AdminOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if _, err := c.do(ctx, http.MethodGet, "/admin/orders", nil, c.authHeader(), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateStatus(ctx context.Context, orderID int, status domain.Status, etaMinutes *int) error {
	body := map[string]interface{}{"status": status}
	if etaMinutes != nil {
		body["eta_minutes"] = *etaMinutes
	}
	_, err := c.do(ctx, http.MethodPatch, "/admin/orders/"+strconv.Itoa(orderID), body, c.authHeader(), nil)
	return err
}

func (c *Client) Stats(ctx context.Context, day string) (*domain.DailyStats, error) {
	path := "/admin/stats"
	if day != "" {
		path += "?date=" + url.QueryEscape(day)
	}
	var stats domain.DailyStats
	if _, err := c.do(ctx, http.MethodGet, path, nil, c.authHeader(), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) authHeader() map[string]string {
	if c.Token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.Token}
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, headers map[string]string, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Code: e.Error}
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}
