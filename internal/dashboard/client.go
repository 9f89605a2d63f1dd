package dashboard

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

	"github.com/shopspring/decimal"

	"github.com/bizzyglass/bizzyglass-backend/internal/auth"
	"github.com/bizzyglass/bizzyglass-backend/internal/leads"
	"github.com/bizzyglass/bizzyglass-backend/internal/quotes"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
	"github.com/bizzyglass/bizzyglass-backend/pkg/types"
)

const (
	defaultBaseURL         = "http://localhost:8080"
	defaultTimeout         = 10 * time.Second
	errorBodyReadLimit     = 4096
	authorizationHeader    = "Authorization"
	contentTypeHeader      = "Content-Type"
	jsonContentType        = "application/json"
	successBodyReadLimitMB = 8
)

// Client talks to the lead API on behalf of the dashboard owner.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures optional client behavior.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithToken presets the bearer token, e.g. one restored from a previous run.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}
	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// SetToken replaces the bearer token used for owner endpoints.
func (c *Client) SetToken(token string) {
	c.token = strings.TrimSpace(token)
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) Login(ctx context.Context, password string) (*auth.TokenResponse, error) {
	var out types.DataEnvelope[auth.TokenResponse]
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", auth.LoginRequest{Password: password}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) ListLeads(ctx context.Context) ([]leads.LeadDTO, error) {
	var out []leads.LeadDTO
	if err := c.do(ctx, http.MethodGet, "/api/leads", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLead(ctx context.Context, id string) (*leads.LeadDTO, error) {
	var out leads.LeadDTO
	if err := c.do(ctx, http.MethodGet, "/api/leads/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddMessage(ctx context.Context, id, message string) (*leads.LeadDTO, error) {
	var out leads.LeadDTO
	path := "/api/leads/" + url.PathEscape(id) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, leads.AddMessageRequest{Message: message}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateQuoteMessage(ctx context.Context, req quotes.GenerateQuoteRequest) (string, error) {
	var out quotes.GenerateQuoteResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate-quote-message", req, &out); err != nil {
		return "", err
	}
	return out.QuoteMessage, nil
}

func (c *Client) SendFinalQuote(ctx context.Context, leadID, content string) (*leads.LeadDTO, error) {
	var out leads.LeadDTO
	body := leads.SendFinalQuoteRequest{LeadID: leadID, MessageContent: content}
	if err := c.do(ctx, http.MethodPost, "/api/send-final-quote", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePaymentLink(ctx context.Context, amount decimal.Decimal, label string) (string, error) {
	var out quotes.PaymentLinkResponse
	body := quotes.PaymentLinkRequest{Amount: amount, Label: label}
	if err := c.do(ctx, http.MethodPost, "/create-stripe-link", body, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", jsonContentType)
	if body != nil {
		req.Header.Set(contentTypeHeader, jsonContentType)
	}
	if c.token != "" {
		req.Header.Set(authorizationHeader, "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	limited := io.LimitReader(resp.Body, successBodyReadLimitMB<<20)
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

// decodeError turns the API error envelope back into a typed error so callers
// can branch on the server's code.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		typed := pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
		if envelope.Error.Details != nil {
			typed = typed.WithDetails(envelope.Error.Details)
		}
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency,
		fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		"unexpected api response")
}
