// Package client is a Go client for the collaboration API together with a
// polling chat view that keeps a request's transcript fresh.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/shreyasiddheshwar12/orangesample/services"
)

const defaultTimeout = 15 * time.Second

// HTTPError is a failed call whose status has no service error kind, such as
// a rate limit or a server fault.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("api returned %d %s: %s", e.Status, e.Code, e.Message)
}

var statusKinds = map[int]error{
	http.StatusBadRequest:   services.ErrValidation,
	http.StatusUnauthorized: services.ErrUnauthenticated,
	http.StatusForbidden:    services.ErrAuthorization,
	http.StatusNotFound:     services.ErrNotFound,
	http.StatusConflict:     services.ErrInvalidTransition,
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateRequestInput is the body of a new collaboration request
type CreateRequestInput struct {
	CreatorID    string          `json:"creatorId"`
	Title        string          `json:"title"`
	Brief        string          `json:"brief"`
	OfferAmount  decimal.Decimal `json:"offerAmount"`
	Deliverables string          `json:"deliverables,omitempty"`
	Timeline     string          `json:"timeline,omitempty"`
}

// APIClient calls the /api/v1 surface with a bearer token
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClient creates a client for the API rooted at baseURL, e.g.
// "https://api.example.com". httpClient may be nil.
func NewAPIClient(baseURL, token string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		token:      token,
		httpClient: httpClient,
	}
}

func (c *APIClient) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.Request, error) {
	var request models.Request
	if err := c.do(ctx, http.MethodPost, "/requests", input, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (c *APIClient) GetRequest(ctx context.Context, requestID string) (*models.Request, error) {
	var request models.Request
	if err := c.do(ctx, http.MethodGet, "/requests/"+url.PathEscape(requestID), nil, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (c *APIClient) ListSentRequests(ctx context.Context) ([]models.Request, error) {
	var requests []models.Request
	if err := c.do(ctx, http.MethodGet, "/requests/sent", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *APIClient) ListReceivedRequests(ctx context.Context) ([]models.Request, error) {
	var requests []models.Request
	if err := c.do(ctx, http.MethodGet, "/requests/received", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *APIClient) UpdateStatus(ctx context.Context, requestID string, status models.RequestStatus) (*models.Request, error) {
	path := "/requests/" + url.PathEscape(requestID) + "/status?status=" + url.QueryEscape(string(status))
	var request models.Request
	if err := c.do(ctx, http.MethodPatch, path, nil, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (c *APIClient) GetMessages(ctx context.Context, requestID string) ([]models.Message, error) {
	messages := []models.Message{}
	if err := c.do(ctx, http.MethodGet, "/messages/"+url.PathEscape(requestID), nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *APIClient) SendMessage(ctx context.Context, requestID, text string) (*models.Message, error) {
	var message models.Message
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/messages/"+url.PathEscape(requestID), body, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// do sends one call and decodes the envelope's data into out
func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= 300 {
		return responseError(resp.StatusCode, env)
	}
	if decodeErr != nil {
		return errors.Wrap(decodeErr, "decode response")
	}
	if !env.Success {
		return responseError(resp.StatusCode, env)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "decode response data")
		}
	}
	return nil
}

func responseError(status int, env envelope) error {
	code, message := "", http.StatusText(status)
	if env.Error != nil {
		code, message = env.Error.Code, env.Error.Message
	}
	if kind, ok := statusKinds[status]; ok {
		return &services.ServiceError{Kind: kind, Code: code, Message: message}
	}
	return &HTTPError{Status: status, Code: code, Message: message}
}
