// Package client is a typed HTTP client for the deal and messaging API.
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
	"strings"
	"time"

	"rizq/internal/models"
	"rizq/internal/notifications"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
)

// Client calls the API as a single bearer-token user.
type Client struct {
	baseURL  *url.URL
	token    string
	http     *http.Client
	maxTries uint
	initial  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetry sets how often transient (503) responses are retried.
func WithRetry(maxTries uint, initial time.Duration) Option {
	return func(c *Client) {
		c.maxTries = maxTries
		c.initial = initial
	}
}

// New returns a client for baseURL, e.g. "http://localhost:8375".
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		baseURL:  u,
		token:    token,
		http:     &http.Client{Timeout: 10 * time.Second},
		maxTries: 3,
		initial:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// decodeError turns an error response into an AppError carrying the server code.
func decodeError(resp *http.Response) error {
	var body models.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Code == "" {
		code := models.CodeInternal
		if resp.StatusCode == http.StatusServiceUnavailable {
			code = models.CodeTransient
		}
		return &models.AppError{Code: code, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	appErr := &models.AppError{Code: body.Code, Message: body.Error}
	if body.Details != "" {
		appErr.Err = errors.New(body.Details)
	}
	return appErr
}

// do sends one request and decodes a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+"/api"+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, models.NewTransientError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, decodeError(resp)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

// call is do with transient retries. Only idempotent requests go through it;
// message sends are idempotent because they carry a client id. Deal creation
// and status changes never do.
func (c *Client) call(ctx context.Context, method, path string, in, out any) (int, error) {
	if c.maxTries <= 1 {
		return c.do(ctx, method, path, in, out)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial
	return backoff.Retry(ctx, func() (int, error) {
		status, err := c.do(ctx, method, path, in, out)
		if err != nil && !models.IsTransient(err) {
			return status, backoff.Permanent(err)
		}
		return status, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxTries))
}

// CreateDealRequest is the body of POST /deals.
type CreateDealRequest struct {
	RecipientID       uint            `json:"recipient_id"`
	InitiatorItemType models.ItemType `json:"initiator_item_type"`
	InitiatorItemID   uint            `json:"initiator_item_id"`
	RecipientItemType models.ItemType `json:"recipient_item_type"`
	RecipientItemID   uint            `json:"recipient_item_id"`
	Message           string          `json:"message"`
}

// CreateDeal proposes a deal. It is never retried.
func (c *Client) CreateDeal(ctx context.Context, req CreateDealRequest) (*models.Deal, error) {
	var deal models.Deal
	if _, err := c.do(ctx, http.MethodPost, "/deals", req, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// ListDeals returns the caller's deals.
func (c *Client) ListDeals(ctx context.Context) ([]models.DealView, error) {
	var views []models.DealView
	_, err := c.call(ctx, http.MethodGet, "/deals", nil, &views)
	return views, err
}

// GetDeal returns one deal the caller takes part in.
func (c *Client) GetDeal(ctx context.Context, dealID uint) (*models.DealView, error) {
	var view models.DealView
	if _, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/deals/%d", dealID), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateDealStatus moves a deal to status. The PATCH is sent once. When its
// outcome is unknown the deal is re-read, and a deal already in status is
// reported as success; otherwise the transient error is returned.
func (c *Client) UpdateDealStatus(ctx context.Context, dealID uint, status models.DealStatus) (*models.Deal, error) {
	var deal models.Deal
	body := map[string]models.DealStatus{"status": status}
	_, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/deals/%d/status", dealID), body, &deal)
	if err == nil {
		return &deal, nil
	}
	if !models.IsTransient(err) {
		return nil, err
	}
	current, getErr := c.GetDeal(ctx, dealID)
	if getErr != nil || current.Status != status {
		return nil, err
	}
	return &current.Deal, nil
}

// ListMyItems returns the caller's gigs and demands.
func (c *Client) ListMyItems(ctx context.Context) (*models.UserItems, error) {
	var items models.UserItems
	if _, err := c.call(ctx, http.MethodGet, "/items/mine", nil, &items); err != nil {
		return nil, err
	}
	return &items, nil
}

// SendMessage posts content to recipientID. A non-empty clientID makes the
// call safe to repeat; created is false when the server replayed a stored message.
func (c *Client) SendMessage(ctx context.Context, recipientID uint, content, clientID string) (msg *models.Message, created bool, err error) {
	body := map[string]string{"content": content}
	if clientID != "" {
		body["client_id"] = clientID
	}
	var out models.Message
	path := fmt.Sprintf("/conversations/%d/messages", recipientID)
	var status int
	if clientID != "" {
		status, err = c.call(ctx, http.MethodPost, path, body, &out)
	} else {
		status, err = c.do(ctx, http.MethodPost, path, body, &out)
	}
	if err != nil {
		return nil, false, err
	}
	return &out, status == http.StatusCreated, nil
}

// ListConversations returns the caller's conversation summaries.
func (c *Client) ListConversations(ctx context.Context) ([]models.ConversationSummary, error) {
	var convs []models.ConversationSummary
	_, err := c.call(ctx, http.MethodGet, "/conversations", nil, &convs)
	return convs, err
}

// FetchThread returns the messages exchanged with userID.
func (c *Client) FetchThread(ctx context.Context, userID uint) ([]models.Message, error) {
	var msgs []models.Message
	_, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/conversations/%d/messages", userID), nil, &msgs)
	return msgs, err
}

// UnreadCount returns the caller's unread message count.
func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	_, err := c.call(ctx, http.MethodGet, "/messages/unread-count", nil, &out)
	return out.Count, err
}

// WSTicket issues a single-use websocket ticket.
func (c *Client) WSTicket(ctx context.Context) (string, error) {
	var out struct {
		Ticket string `json:"ticket"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/ws/ticket", nil, &out); err != nil {
		return "", err
	}
	return out.Ticket, nil
}

// InboxStream reads inbox events from the websocket.
type InboxStream struct {
	conn *websocket.Conn
}

// DialInbox issues a ticket and opens /api/ws/inbox.
func (c *Client) DialInbox(ctx context.Context) (*InboxStream, error) {
	ticket, err := c.WSTicket(ctx)
	if err != nil {
		return nil, fmt.Errorf("ws ticket: %w", err)
	}
	u := *c.baseURL
	u.Scheme = "ws"
	if c.baseURL.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path += "/api/ws/inbox"
	u.RawQuery = url.Values{"ticket": {ticket}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial inbox: %w", err)
	}
	return &InboxStream{conn: conn}, nil
}

// Next blocks until the next event arrives or the connection closes.
func (s *InboxStream) Next() (notifications.UserEvent, error) {
	var ev notifications.UserEvent
	_, raw, err := s.conn.ReadMessage()
	if err != nil {
		return ev, err
	}
	err = json.Unmarshal(raw, &ev)
	return ev, err
}

// SetReadDeadline bounds the wait of subsequent Next calls.
func (s *InboxStream) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// Close sends a normal close frame and releases the connection.
func (s *InboxStream) Close() error {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return s.conn.Close()
}
