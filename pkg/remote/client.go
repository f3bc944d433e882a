package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"tableflip.dev/tradelog/pkg/operation"
)

const (
	operationsPath = "/api/operations"
	maxBody        = 8 << 20
)

// Client implements Service over the journal server HTTP API.
type Client struct {
	BaseURL string
	Timeout time.Duration

	HTTP *http.Client
}

// ErrorResponse is the body the server sends with failing statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

var _ Service = (*Client)(nil)

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (c *Client) url(path string) (string, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return "", errors.New("base url is empty")
	}
	return strings.TrimRight(c.BaseURL, "/") + path, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url, err := c.url(path)
	if err != nil {
		return nil, err
	}
	return http.NewRequestWithContext(ctx, method, url, body)
}

// List fetches all operations grouped by expiration.
func (c *Client) List(ctx context.Context) (map[operation.GroupKey][]operation.Operation, error) {
	req, err := c.newRequest(ctx, http.MethodGet, operationsPath, nil)
	if err != nil {
		return nil, &TransportError{Op: "list", Err: err}
	}
	groups := map[operation.GroupKey][]operation.Operation{}
	if err := c.do("list", req, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Get fetches a single operation.
func (c *Client) Get(ctx context.Context, id int64) (operation.Operation, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("%s/%d", operationsPath, id), nil)
	if err != nil {
		return operation.Operation{}, &TransportError{Op: "get", Err: err}
	}
	var op operation.Operation
	if err := c.do("get", req, &op); err != nil {
		return operation.Operation{}, err
	}
	return op, nil
}

// Create posts the draft as multipart form data: the JSON draft in the "data"
// field and every image as an "images" file.
func (c *Client) Create(ctx context.Context, draft operation.Draft, images []operation.Blob) (operation.Operation, error) {
	body, contentType, err := encodeCreate(draft, images)
	if err != nil {
		return operation.Operation{}, &TransportError{Op: "create", Err: err}
	}
	req, err := c.newRequest(ctx, http.MethodPost, operationsPath, body)
	if err != nil {
		return operation.Operation{}, &TransportError{Op: "create", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	var created operation.Operation
	if err := c.do("create", req, &created); err != nil {
		return operation.Operation{}, err
	}
	return created, nil
}

// Delete removes the operation with the given id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", operationsPath, id), nil)
	if err != nil {
		return &TransportError{Op: "delete", Err: err}
	}
	return c.do("delete", req, nil)
}

func encodeCreate(draft operation.Draft, images []operation.Blob) (io.Reader, string, error) {
	data, err := json.Marshal(draft)
	if err != nil {
		return nil, "", err
	}
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.WriteField("data", string(data)); err != nil {
		return nil, "", err
	}
	for _, img := range images {
		name := filepath.Base(img.Name)
		if name == "." || name == string(filepath.Separator) {
			name = "image"
		}
		part, err := w.CreateFormFile("images", name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(b))
		var er ErrorResponse
		if err := json.Unmarshal(b, &er); err == nil && strings.TrimSpace(er.Error) != "" {
			msg = strings.TrimSpace(er.Error)
		}
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return &operation.ValidationError{Issues: []operation.Issue{{Message: msg}}}
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(msg)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
