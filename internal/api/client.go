package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mushfiqur07/roadeside-sub002/internal/config"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

// TokenSource supplies the current bearer token, empty when
// unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is the typed binding to the backend API. Operations are
// grouped per resource; all of them attach the bearer token, decode
// the {success, data, message, pagination} envelope and surface typed
// errors.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
	log            *logger.Logger

	Auth     *AuthService
	Requests *RequestService
	Payments *PaymentService
	History  *HistoryService
	Chat     *ChatService
}

func NewClient(cfg *config.APIConfig, tokens TokenSource, log *logger.Logger) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		log:        log.WithField("component", "api"),
	}

	c.Auth = &AuthService{client: c}
	c.Requests = &RequestService{client: c}
	c.Payments = &PaymentService{client: c}
	c.History = &HistoryService{client: c}
	c.Chat = &ChatService{client: c}

	return c
}

// SetUnauthorizedHook registers the callback fired on any 401 response;
// the session layer uses it to invalidate itself.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// do executes a JSON round trip and decodes the envelope's data field
// into out when out is non-nil. The envelope is returned for callers
// that need pagination or the server message.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) (*models.Envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, query, reader, "application/json")
	if err != nil {
		return nil, netError(err)
	}

	return c.roundTrip(req, out)
}

// doMultipart uploads files under the given field name together with
// any extra form values.
func (c *Client) doMultipart(ctx context.Context, path, field string, files map[string]io.Reader, values map[string]string, out interface{}) (*models.Envelope, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, file := range files {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("copy upload %s: %w", name, err)
		}
	}
	for key, value := range values {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write form field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, netError(err)
	}

	return c.roundTrip(req, out)
}

// doBlob fetches a binary endpoint (invoice PDF, CSV export) and
// returns the raw bytes with the response content type.
func (c *Client) doBlob(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, "", netError(err)
	}
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", netError(err)
	}
	defer resp.Body.Close()

	c.log.LogAPIRequest(req.Method, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return nil, "", c.failure(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", netError(err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) roundTrip(req *http.Request, out interface{}) (*models.Envelope, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("endpoint", req.URL.Path).Warn("Transport failure")
		return nil, netError(err)
	}
	defer resp.Body.Close()

	c.log.LogAPIRequest(req.Method, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return nil, c.failure(resp)
	}

	var envelope models.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "malformed response envelope", cause: err}
	}

	if !envelope.Success {
		return nil, statusError(resp.StatusCode, envelope.Message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "malformed response data", cause: err}
		}
	}

	return &envelope, nil
}

// failure maps an error response to the typed taxonomy, preferring the
// server's envelope message and firing the 401 hook.
func (c *Client) failure(resp *http.Response) error {
	message := ""
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var envelope models.Envelope
		if json.Unmarshal(body, &envelope) == nil {
			message = envelope.Message
		}
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	return statusError(resp.StatusCode, message)
}

// Paged is a decoded list response together with its pagination meta.
type Paged[T any] struct {
	Items      []T
	Pagination models.Pagination
}

func pagedQuery(q models.PageQuery, filter *models.HistoryFilter) url.Values {
	q = q.Clamp()
	values := url.Values{}
	values.Set("page", fmt.Sprintf("%d", q.Page))
	values.Set("limit", fmt.Sprintf("%d", q.Limit))

	if filter == nil {
		return values
	}
	if filter.Status != "" {
		values.Set("status", string(filter.Status))
	}
	if filter.Method != "" {
		values.Set("method", string(filter.Method))
	}
	if filter.StartDate != "" {
		values.Set("startDate", filter.StartDate)
	}
	if filter.EndDate != "" {
		values.Set("endDate", filter.EndDate)
	}
	if filter.MinAmount != nil {
		values.Set("minAmount", fmt.Sprintf("%g", *filter.MinAmount))
	}
	if filter.MaxAmount != nil {
		values.Set("maxAmount", fmt.Sprintf("%g", *filter.MaxAmount))
	}

	return values
}

func pagedResult[T any](envelope *models.Envelope, items []T) Paged[T] {
	result := Paged[T]{Items: items}
	if envelope.Pagination != nil {
		result.Pagination = *envelope.Pagination
	}
	return result
}
