package farm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// maxErrorBody caps how many bytes of a failed response end up in a
// GatewayError message.
const maxErrorBody = 500

// HTTPClient talks to the farm inventory API.
//
// Crops:   GET/POST /crops, PUT/DELETE /crops/{id}
// Orders:  GET/POST /orders, PUT/DELETE /orders/{id}
// Bulk:    POST /sample-data
// Health:  GET /health
//
// There is no auth, pagination or versioning in this API.
type HTTPClient struct {
	Server    string
	Timeout   time.Duration // zero means no timeout
	HTTP      *http.Client
	UserAgent string
	Logger    *slog.Logger
}

func NewHTTPClient(server string) *HTTPClient {
	return &HTTPClient{
		Server:    strings.TrimRight(server, "/"),
		UserAgent: "farmdash/0.1.0",
		Logger:    slog.Default(),
	}
}

func (c *HTTPClient) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: c.Timeout}
}

func (c *HTTPClient) ListCrops(ctx context.Context) ([]Crop, error) {
	var out []Crop
	if err := c.doJSON(ctx, http.MethodGet, "/crops", nil, &out); err != nil {
		return nil, err
	}
	// The API may answer null for an empty table.
	if out == nil {
		out = []Crop{}
	}
	return out, nil
}

func (c *HTTPClient) CreateCrop(ctx context.Context, in NewCrop) (Crop, error) {
	var out Crop
	if err := c.doJSON(ctx, http.MethodPost, "/crops", in, &out); err != nil {
		return Crop{}, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateCrop(ctx context.Context, id ID, patch CropPatch) (Crop, error) {
	var out Crop
	if err := c.doJSON(ctx, http.MethodPut, "/crops/"+url.PathEscape(id.String()), patch, &out); err != nil {
		return Crop{}, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteCrop(ctx context.Context, id ID) error {
	return c.doJSON(ctx, http.MethodDelete, "/crops/"+url.PathEscape(id.String()), nil, nil)
}

func (c *HTTPClient) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.doJSON(ctx, http.MethodGet, "/orders", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Order{}
	}
	return out, nil
}

func (c *HTTPClient) CreateOrder(ctx context.Context, in NewOrder) (Order, error) {
	var out Order
	if err := c.doJSON(ctx, http.MethodPost, "/orders", in, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateOrder(ctx context.Context, id ID, patch OrderPatch) (Order, error) {
	var out Order
	if err := c.doJSON(ctx, http.MethodPut, "/orders/"+url.PathEscape(id.String()), patch, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteOrder(ctx context.Context, id ID) error {
	return c.doJSON(ctx, http.MethodDelete, "/orders/"+url.PathEscape(id.String()), nil, nil)
}

func (c *HTTPClient) ImportSampleData(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/sample-data", nil, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in any, out any) error {
	fail := func(status int, msg string, err error) error {
		return &GatewayError{Method: method, Endpoint: path, Status: status, Message: msg, Err: err}
	}

	u, err := url.Parse(c.Server)
	if err != nil {
		return fail(0, "invalid server url", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fail(0, "encode request", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fail(0, err.Error(), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	res, err := c.client().Do(req)
	dur := time.Since(start)
	if err != nil {
		logger.Error("farm request failed",
			"method", method,
			"path", path,
			"url", u.String(),
			"duration_ms", dur.Milliseconds(),
			"err", err,
		)
		return fail(0, err.Error(), err)
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(res.Body)

	logger.Debug("farm request",
		"method", method,
		"path", path,
		"status", res.StatusCode,
		"duration_ms", dur.Milliseconds(),
	)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := truncateBody(strings.TrimSpace(string(b)), maxErrorBody)
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		logger.Warn("farm non-2xx response",
			"method", method,
			"path", path,
			"status", res.StatusCode,
			"response", msg,
		)
		return fail(res.StatusCode, msg, nil)
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fail(res.StatusCode, fmt.Sprintf("decode response: %v", err), err)
	}
	return nil
}

// truncateBody cuts s to at most n bytes without splitting a rune.
func truncateBody(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
