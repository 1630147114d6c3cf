// Package pocketbase is an HTTP client for the remote record store that holds
// events, groups and users.
package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	EventsCollection = "events"
	GroupsCollection = "groups"
	UsersCollection  = "users"

	userAgent = "eventplanner/1.0"

	// defaultMaxFileSize caps a single downloaded attachment.
	defaultMaxFileSize = 32 << 20
)

// TokenSource yields the auth token sent with every request. An empty token
// means the request is anonymous.
type TokenSource interface {
	AuthToken() string
}

// authTransport adds the auth token and identifying headers to each request.
type authTransport struct {
	Tokens    TokenSource
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.Tokens != nil {
		if token := t.Tokens.AuthToken(); token != "" {
			req.Header.Set("Authorization", token)
		}
	}
	req.Header.Set("User-Agent", userAgent)
	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}
	return t.Transport.RoundTrip(req)
}

// Client talks to the record store's REST API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	logger      *slog.Logger
	maxFileSize int64
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. "http://127.0.0.1:8090/api").
func NewClient(logger *slog.Logger, baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	transport := &authTransport{
		Tokens:    tokens,
		Transport: http.DefaultTransport,
	}
	return &Client{
		httpClient:  &http.Client{Transport: transport, Timeout: timeout},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		logger:      logger,
		maxFileSize: defaultMaxFileSize,
	}
}

// ListOptions narrows a list request.
type ListOptions struct {
	Page    int
	PerPage int
	Filter  string
	Sort    string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(o.PerPage))
	}
	if o.Filter != "" {
		q.Set("filter", o.Filter)
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	return q
}

// ListResult is one page of a record listing.
type ListResult[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

func recordsPath(collection string) string {
	return "/collections/" + url.PathEscape(collection) + "/records"
}

func recordPath(collection, id string) string {
	return recordsPath(collection) + "/" + url.PathEscape(id)
}

// FileURL builds the download URL of a record attachment.
func (c *Client) FileURL(collectionID, recordID, filename string) string {
	return c.baseURL + "/files/" + url.PathEscape(collectionID) + "/" + url.PathEscape(recordID) + "/" + url.PathEscape(filename)
}

// DownloadFile fetches a record attachment into memory. An attachment over
// the size cap fails with ErrFileTooLarge instead of being cut short.
func (c *Client) DownloadFile(ctx context.Context, collectionID, recordID, filename string) ([]byte, error) {
	fileURL := c.FileURL(collectionID, recordID, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build file request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", filename, err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if int64(len(data)) > c.maxFileSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, filename, c.maxFileSize)
	}
	return data, nil
}

func (c *Client) getRecord(ctx context.Context, collection, id string, out any) error {
	return c.doJSON(ctx, http.MethodGet, recordPath(collection, id), nil, out)
}

func (c *Client) listRecords(ctx context.Context, collection string, opts ListOptions, out any) error {
	path := recordsPath(collection)
	if q := opts.query(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) deleteRecord(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, recordPath(collection, id), nil, "", nil)
}

// doJSON sends body (if non-nil) as JSON and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, reader, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Calling record store", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		c.logger.Debug("Record store rejected request", "method", method, "path", path, "status", resp.StatusCode)
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
