// Package backend is a raw HTTP client for the hosted backend that owns the
// message, marketplace and ad tables plus image storage. It speaks the
// PostgREST dialect: tables under /rest/v1, objects under /storage/v1.
package backend

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

	"github.com/romeoalpha/admin/internal/model"
)

// ErrUnauthorized is wrapped by APIError for 401 and 403 responses.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	if e.Unauthorized() {
		return ErrUnauthorized
	}
	return nil
}

// Unauthorized reports whether the backend rejected the credentials.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// TokenSource supplies the operator's session token.
type TokenSource interface {
	Token() (string, bool)
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a Client. tokens may be nil, in which case requests
// are authorised with the api key alone.
func NewClient(baseURL, apiKey string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

const (
	tableMessages    = "messages"
	tableMarketplace = "marketplace_items"
	tableAds         = "ads"
)

// ListMessages returns the contact inbox, newest first.
func (c *Client) ListMessages(ctx context.Context) ([]model.Message, error) {
	var out []model.Message
	if err := c.list(ctx, tableMessages, &out); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

// ListMarketplaceItems returns every listing, newest first.
func (c *Client) ListMarketplaceItems(ctx context.Context) ([]model.MarketplaceItem, error) {
	var out []model.MarketplaceItem
	if err := c.list(ctx, tableMarketplace, &out); err != nil {
		return nil, fmt.Errorf("list marketplace items: %w", err)
	}
	return out, nil
}

// CreateMarketplaceItem inserts a listing and returns the stored row.
func (c *Client) CreateMarketplaceItem(ctx context.Context, fields model.MarketplaceItemFields) (model.MarketplaceItem, error) {
	var rows []model.MarketplaceItem
	if err := c.write(ctx, http.MethodPost, tableMarketplace, nil, fields, &rows); err != nil {
		return model.MarketplaceItem{}, fmt.Errorf("create marketplace item: %w", err)
	}
	if len(rows) == 0 {
		return model.MarketplaceItem{}, errors.New("create marketplace item: empty response")
	}
	return rows[0], nil
}

// UpdateMarketplaceItem replaces the writable fields of listing id.
func (c *Client) UpdateMarketplaceItem(ctx context.Context, id string, fields model.MarketplaceItemFields) (model.MarketplaceItem, error) {
	var rows []model.MarketplaceItem
	if err := c.write(ctx, http.MethodPatch, tableMarketplace, idFilter(id), fields, &rows); err != nil {
		return model.MarketplaceItem{}, fmt.Errorf("update marketplace item: %w", err)
	}
	if len(rows) == 0 {
		return model.MarketplaceItem{}, fmt.Errorf("update marketplace item: %s not found", id)
	}
	return rows[0], nil
}

// DeleteMarketplaceItem removes listing id.
func (c *Client) DeleteMarketplaceItem(ctx context.Context, id string) error {
	if err := c.write(ctx, http.MethodDelete, tableMarketplace, idFilter(id), nil, nil); err != nil {
		return fmt.Errorf("delete marketplace item: %w", err)
	}
	return nil
}

// ListAds returns every ad, newest first.
func (c *Client) ListAds(ctx context.Context) ([]model.Ad, error) {
	var out []model.Ad
	if err := c.list(ctx, tableAds, &out); err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	return out, nil
}

// CreateAd inserts an ad and returns the stored row.
func (c *Client) CreateAd(ctx context.Context, fields model.AdFields) (model.Ad, error) {
	var rows []model.Ad
	if err := c.write(ctx, http.MethodPost, tableAds, nil, fields, &rows); err != nil {
		return model.Ad{}, fmt.Errorf("create ad: %w", err)
	}
	if len(rows) == 0 {
		return model.Ad{}, errors.New("create ad: empty response")
	}
	return rows[0], nil
}

// DeleteAd removes ad id.
func (c *Client) DeleteAd(ctx context.Context, id string) error {
	if err := c.write(ctx, http.MethodDelete, tableAds, idFilter(id), nil, nil); err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}
	return nil
}

// Ping checks the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/rest/v1/", nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// PutObject uploads data to bucket/key and returns its public URL.
func (c *Client) PutObject(ctx context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, objectPath(bucket, key), nil, data)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")
	if err := c.do(req, nil); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return c.PublicURL(bucket, key), nil
}

// DeleteObject removes bucket/key.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, objectPath(bucket, key), nil, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL is the URL an object in a public bucket is served from.
func (c *Client) PublicURL(bucket, key string) string {
	return c.baseURL + "/storage/v1/object/public/" + bucket + "/" + key
}

func objectPath(bucket, key string) string {
	return "/storage/v1/object/" + bucket + "/" + key
}

func idFilter(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

func (c *Client) list(ctx context.Context, table string, out any) error {
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	req, err := c.newRequest(ctx, http.MethodGet, "/rest/v1/"+table, q, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) write(ctx context.Context, method, table string, q url.Values, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, "/rest/v1/"+table, q, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if out != nil {
		req.Header.Set("Prefer", "return=representation")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	bearer := c.apiKey
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			bearer = token
		}
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Code             any    `json:"code"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)

	msg := firstNonEmpty(body.Message, body.Msg, body.ErrorDescription, body.Error, http.StatusText(resp.StatusCode))
	code := ""
	if body.Code != nil {
		code = fmt.Sprint(body.Code)
	}
	return &APIError{Status: resp.StatusCode, Code: code, Message: msg}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
