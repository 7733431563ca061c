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

	"github.com/terra-clan/pathfinder/internal/filter"
	"github.com/terra-clan/pathfinder/internal/models"
)

// Client is a Go SDK for the pathfinder API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithToken starts the client with an existing session token
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new pathfinder client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Token returns the session token set by Login
func (c *Client) Token() string {
	return c.token
}

// APIError is an error reported in the response envelope
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s", e.Code, e.Message)
}

// IsCode reports whether err is an APIError with the given code
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Captcha is a challenge as the server shows it
type Captcha struct {
	ID        string    `json:"id"`
	Attempts  int       `json:"attempts"`
	Verified  bool      `json:"verified"`
	Error     string    `json:"error,omitempty"`
	ImageURL  string    `json:"image_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Me describes the current session and its user
type Me struct {
	Session *models.Session `json:"session"`
	User    *models.User    `json:"user"`
}

// Filters is a filter state with the catalog it selects
type Filters struct {
	Filters filter.State            `json:"filters"`
	Results models.LearningPathList `json:"results"`
}

// ListOptions narrows a learning path listing
type ListOptions struct {
	Query    string
	Level    []string
	Duration []string
	Category []string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	for _, l := range o.Level {
		v.Add("level", l)
	}
	for _, d := range o.Duration {
		v.Add("duration", d)
	}
	for _, c := range o.Category {
		v.Add("category", c)
	}
	return v
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil)
}

// ListLearningPaths retrieves the catalog, filtered by opts
func (c *Client) ListLearningPaths(ctx context.Context, opts ListOptions) (*models.LearningPathList, error) {
	path := "/api/v1/learning-paths"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}

	var list models.LearningPathList
	if err := c.call(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetLearningPath retrieves a learning path by ID
func (c *Client) GetLearningPath(ctx context.Context, id string) (*models.LearningPath, error) {
	var lp models.LearningPath
	if err := c.call(ctx, http.MethodGet, "/api/v1/learning-paths/"+url.PathEscape(id), nil, &lp); err != nil {
		return nil, err
	}
	return &lp, nil
}

// ListCareers retrieves the career matches
func (c *Client) ListCareers(ctx context.Context) ([]*models.Career, error) {
	var result struct {
		Careers []*models.Career `json:"careers"`
		Total   int              `json:"total"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/careers", nil, &result); err != nil {
		return nil, err
	}
	return result.Careers, nil
}

// CreateCaptcha starts a new captcha challenge
func (c *Client) CreateCaptcha(ctx context.Context) (*Captcha, error) {
	var cp Captcha
	if err := c.call(ctx, http.MethodPost, "/api/v1/captcha", nil, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// RefreshCaptcha replaces the challenge code
func (c *Client) RefreshCaptcha(ctx context.Context, id string) (*Captcha, error) {
	var cp Captcha
	if err := c.call(ctx, http.MethodPost, "/api/v1/captcha/"+url.PathEscape(id)+"/refresh", nil, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// VerifyCaptcha submits a guess and reports whether it matched
func (c *Client) VerifyCaptcha(ctx context.Context, id, input string) (bool, *Captcha, error) {
	var result struct {
		Verified bool    `json:"verified"`
		Captcha  Captcha `json:"captcha"`
	}
	body := map[string]string{"input": input}
	if err := c.call(ctx, http.MethodPost, "/api/v1/captcha/"+url.PathEscape(id)+"/verify", body, &result); err != nil {
		return false, nil, err
	}
	return result.Verified, &result.Captcha, nil
}

// Login signs in with a verified captcha and keeps the returned token
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/login", req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// Logout ends the session and forgets the token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Me retrieves the current session and user
func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.call(ctx, http.MethodGet, "/api/v1/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// UpdateProfile applies a partial profile update
func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, http.MethodPut, "/api/v1/me/profile", upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// AddProfileItem appends a value to skills or interests
func (c *Client) AddProfileItem(ctx context.Context, field, value string) (*models.User, error) {
	var u models.User
	body := models.ProfileItemRequest{Value: value}
	if err := c.call(ctx, http.MethodPost, "/api/v1/me/profile/"+url.PathEscape(field), body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RemoveProfileItem removes the value at index from skills or interests
func (c *Client) RemoveProfileItem(ctx context.Context, field string, index int) (*models.User, error) {
	var u models.User
	path := fmt.Sprintf("/api/v1/me/profile/%s/%d", url.PathEscape(field), index)
	if err := c.call(ctx, http.MethodDelete, path, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetFilters retrieves the session's filter state
func (c *Client) GetFilters(ctx context.Context) (*Filters, error) {
	return c.filters(ctx, http.MethodGet, "/api/v1/me/filters", nil)
}

// ToggleFilter flips one tag in the session's filter state
func (c *Client) ToggleFilter(ctx context.Context, category, value string) (*Filters, error) {
	body := map[string]string{"category": category, "value": value}
	return c.filters(ctx, http.MethodPost, "/api/v1/me/filters/toggle", body)
}

// SetFilterQuery replaces the free-text query
func (c *Client) SetFilterQuery(ctx context.Context, query string) (*Filters, error) {
	return c.filters(ctx, http.MethodPut, "/api/v1/me/filters/query", map[string]string{"query": query})
}

// ClearFilters resets the session's filter state
func (c *Client) ClearFilters(ctx context.Context) (*Filters, error) {
	return c.filters(ctx, http.MethodDelete, "/api/v1/me/filters", nil)
}

func (c *Client) filters(ctx context.Context, method, path string, body interface{}) (*Filters, error) {
	var f Filters
	if err := c.call(ctx, method, path, body, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ChatMessages retrieves the session's transcript
func (c *Client) ChatMessages(ctx context.Context) ([]*models.ChatMessage, error) {
	var result struct {
		Messages []*models.ChatMessage `json:"messages"`
		Total    int                   `json:"total"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/chat/messages", nil, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

// SendChatMessage posts a message; the assistant reply is appended later
func (c *Client) SendChatMessage(ctx context.Context, content string) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	body := models.SendMessageRequest{Content: content}
	if err := c.call(ctx, http.MethodPost, "/api/v1/chat/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ClearChat empties the transcript and cancels any pending reply
func (c *Client) ClearChat(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/chat/messages", nil, nil)
}

// call sends body as JSON and decodes the envelope's data into out
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	status, resp, err := c.doRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}

	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("HTTP %d: failed to unmarshal response: %w", status, err)
	}

	if !result.Success {
		if result.Error == nil {
			return &APIError{Status: status, Code: "unknown", Message: http.StatusText(status)}
		}
		result.Error.Status = status
		return result.Error
	}

	if out == nil || len(result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}
