package pocketbase

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"

	"eventplanner/internal/models"
)

// encodeForm renders a record form as a multipart body, preserving part order.
func encodeForm(form *models.Form) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, part := range form.Parts() {
		if part.File == nil {
			if err := w.WriteField(part.Name, part.Value); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", part.Name, err)
			}
			continue
		}
		fw, err := w.CreateFormFile(part.Name, part.File.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %s: %w", part.File.Filename, err)
		}
		if _, err := fw.Write(part.File.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file part %s: %w", part.File.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

func (c *Client) sendForm(ctx context.Context, method, path string, form *models.Form, out any) error {
	body, contentType, err := encodeForm(form)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, body, contentType, out)
}
