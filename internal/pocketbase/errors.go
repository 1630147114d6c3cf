package pocketbase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrNotFound matches any 404 answer from the record store.
	ErrNotFound = errors.New("record not found")
	// ErrFileTooLarge is returned for attachments over the download cap.
	ErrFileTooLarge = errors.New("attachment too large")
)

// APIError is a non-success answer from the record store.
type APIError struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("record store returned status %d", e.Status)
	}
	return fmt.Sprintf("record store returned status %d: %s", e.Status, e.Message)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &APIError{}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(body) > 0 {
		_ = json.Unmarshal(body, apiErr)
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
