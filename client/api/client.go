// Package api is a typed Go client for the LeaseLink REST API. It is the
// transport layer used by client/session; it holds no session state itself.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leaselink/leaselink/pkg/httpclient"
)

// HTTPDoer executes an HTTP request. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds configuration for the API client.
type Config struct {
	// BaseURL is the server root, e.g. "https://api.leaselink.example".
	BaseURL string

	// Timeout bounds each request end to end.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for the API client.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 15 * time.Second,
	}
}

// Client is a typed client for the LeaseLink REST API.
type Client struct {
	baseURL string
	http    HTTPDoer
	logger  *slog.Logger
}

// New creates an API client over the shared HTTP client with a circuit
// breaker. Requests are single-shot: retry policy belongs to the caller,
// not the transport.
func New(cfg Config, logger *slog.Logger) *Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.Timeout
	httpCfg.MaxRetries = 0

	base := httpclient.New(httpCfg)
	breaker := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("leaselink-api"), logger)

	return NewWithDoer(cfg, breaker, logger)
}

// NewWithDoer creates an API client over a caller-supplied transport.
func NewWithDoer(cfg Config, doer HTTPDoer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    doer,
		logger:  logger,
	}
}

// --- Wire types ---

// User is the account representation returned by the server.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthSession is the result of a successful login or signup.
type AuthSession struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// SignupInput holds the parameters for creating an account.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Property is a rental property owned by the authenticated owner.
type Property struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Type      string    `json:"type"`
	Rent      int64     `json:"rent"`
	DueDate   int       `json:"due_date"`
	Photos    []string  `json:"photos"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Amenity is a chargeable or included extra attached to a property.
type Amenity struct {
	ID            string `json:"id"`
	PropertyID    string `json:"property_id"`
	Name          string `json:"name"`
	Included      bool   `json:"included"`
	MonthlyCharge int64  `json:"monthly_charge"`
}

// AmenityInput holds the parameters for one amenity.
type AmenityInput struct {
	Name          string `json:"name"`
	Included      bool   `json:"included"`
	MonthlyCharge int64  `json:"monthly_charge,omitempty"`
}

// CreatePropertyInput holds the parameters for listing a new property.
type CreatePropertyInput struct {
	Name      string         `json:"name"`
	Location  string         `json:"location"`
	Type      string         `json:"type"`
	Rent      int64          `json:"rent"`
	DueDate   int            `json:"due_date"`
	Photos    []string       `json:"photos,omitempty"`
	Amenities []AmenityInput `json:"amenities,omitempty"`
}

// UpdatePropertyInput holds a partial property update. Nil fields are left unchanged.
type UpdatePropertyInput struct {
	Name     *string   `json:"name,omitempty"`
	Location *string   `json:"location,omitempty"`
	Type     *string   `json:"type,omitempty"`
	Rent     *int64    `json:"rent,omitempty"`
	DueDate  *int      `json:"due_date,omitempty"`
	Photos   *[]string `json:"photos,omitempty"`
}

// PropertyDetail pairs a property with its amenities.
type PropertyDetail struct {
	Property  *Property `json:"property"`
	Amenities []Amenity `json:"amenities"`
}

// PropertyPage is one page of the owner's properties.
type PropertyPage struct {
	Data       []Property `json:"data"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalPages int        `json:"total_pages"`
	HasNext    bool       `json:"has_next"`
	HasPrev    bool       `json:"has_prev"`
}

// Payment is a recorded rent payment.
type Payment struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"property_id"`
	OwnerID    string     `json:"owner_id"`
	TenantID   string     `json:"tenant_id"`
	Amount     int64      `json:"amount"`
	Currency   string     `json:"currency"`
	Status     string     `json:"status"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}

// RecordPaymentInput holds the parameters for recording a rent payment.
type RecordPaymentInput struct {
	PropertyID string `json:"property_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency,omitempty"`
}

// --- Auth ---

// Login authenticates with email and password. Role is optional; when set the
// server also requires the account to carry that role.
func (c *Client) Login(ctx context.Context, email, password, role string) (*AuthSession, error) {
	body := map[string]string{"email": email, "password": password}
	if role != "" {
		body["role"] = role
	}

	var session AuthSession
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", body, &session); err != nil {
		// A 401 on login means bad credentials, not a bad token.
		if errors.Is(err, ErrInvalidToken) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := checkSession(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Signup creates a new account and returns the signed-in session.
func (c *Client) Signup(ctx context.Context, input SignupInput) (*AuthSession, error) {
	var session AuthSession
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", "", input, &session); err != nil {
		return nil, err
	}
	if err := checkSession(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// checkSession rejects a success body that does not carry a complete
// session. The token and the account always travel together; anything else
// is a broken server response, not a usable sign-in.
func checkSession(s *AuthSession) error {
	if s.Token == "" || s.User == nil {
		return fmt.Errorf("%w: incomplete auth session in response", ErrUnavailable)
	}
	return nil
}

// ValidateToken checks a stored bearer token against the server and returns
// the account it belongs to.
func (c *Client) ValidateToken(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RequestPasswordReset asks the server to start a password reset. The server
// responds identically whether or not the email is known.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": email}, nil)
}

// ResetPassword completes a password reset with a token from the reset email.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/reset-password", "", body, nil)
}

// --- Properties ---

// ListProperties returns one page of the authenticated owner's properties.
func (c *Client) ListProperties(ctx context.Context, token string, page, perPage int) (*PropertyPage, error) {
	path := fmt.Sprintf("/api/v1/properties?page=%d&per_page=%d", page, perPage)
	var result PropertyPage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateProperty lists a new property with its amenities.
func (c *Client) CreateProperty(ctx context.Context, token string, input CreatePropertyInput) (*PropertyDetail, error) {
	var detail PropertyDetail
	if err := c.do(ctx, http.MethodPost, "/api/v1/properties", token, input, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetProperty returns one owned property with its amenities.
func (c *Client) GetProperty(ctx context.Context, token, propertyID string) (*PropertyDetail, error) {
	var detail PropertyDetail
	if err := c.do(ctx, http.MethodGet, "/api/v1/properties/"+propertyID, token, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateProperty applies a partial update to an owned property.
func (c *Client) UpdateProperty(ctx context.Context, token, propertyID string, input UpdatePropertyInput) (*Property, error) {
	var property Property
	if err := c.do(ctx, http.MethodPut, "/api/v1/properties/"+propertyID, token, input, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

// DeleteProperty removes an owned property and its amenities.
func (c *Client) DeleteProperty(ctx context.Context, token, propertyID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/properties/"+propertyID, token, nil, nil)
}

// ListAmenities returns the amenities of an owned property.
func (c *Client) ListAmenities(ctx context.Context, token, propertyID string) ([]Amenity, error) {
	var amenities []Amenity
	if err := c.do(ctx, http.MethodGet, "/api/v1/properties/"+propertyID+"/amenities", token, nil, &amenities); err != nil {
		return nil, err
	}
	return amenities, nil
}

// ReplaceAmenities replaces the full amenity set of an owned property.
func (c *Client) ReplaceAmenities(ctx context.Context, token, propertyID string, amenities []AmenityInput) ([]Amenity, error) {
	body := map[string][]AmenityInput{"amenities": amenities}
	var result []Amenity
	if err := c.do(ctx, http.MethodPut, "/api/v1/properties/"+propertyID+"/amenities", token, body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// --- Payments ---

// RecordPayment records a rent payment made by the authenticated tenant.
func (c *Client) RecordPayment(ctx context.Context, token string, input RecordPaymentInput) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments", token, input, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListPayments returns the payments visible to the authenticated user:
// payments received for owners, payments made for tenants.
func (c *Client) ListPayments(ctx context.Context, token string) ([]Payment, error) {
	var payments []Payment
	if err := c.do(ctx, http.MethodGet, "/api/v1/payments", token, nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// --- Transport ---

// dataEnvelope mirrors the data half of the server's response envelope.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// do executes one request and decodes the data envelope into out. A nil out
// discards the response body. Transport failures and open breakers map to
// ErrUnavailable; HTTP error statuses map via responseError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(ctx, "api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return responseError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope dataEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
