package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/fittrack-cli/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 30 * time.Second
	imageFieldName        = "image"
	requestIDHeader       = "X-Request-Id"
	userAgent             = "ft/cli"
)

// Client executes requests against the fitness backend. It holds no per-call state, never
// retries and never caches.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// Request describes one backend call. Upload, when set, is sent as a multipart file field
// and Payload is ignored.
type Request struct {
	Method     string
	Path       string
	Credential string
	Payload    any
	Upload     *domain.ImageUpload
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Do performs req and decodes a successful JSON response into out (which may be nil). Any
// failure is returned as *domain.RequestError.
func (c Client) Do(ctx context.Context, req Request, out any) error {
	endpoint, err := buildURL(c.BaseURL, req.Path)
	if err != nil {
		return &domain.RequestError{Message: err.Error(), Err: err}
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return &domain.RequestError{Message: err.Error(), Err: err}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, method, endpoint, body)
	if err != nil {
		return &domain.RequestError{Message: fmt.Sprintf("create request: %v", err), Err: err}
	}
	if req.Credential != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Credential)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	requestID := uuid.NewString()
	httpReq.Header.Set(requestIDHeader, requestID)

	logger := c.logger().With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", req.Path),
	)
	started := time.Now()

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		logger.Debug("request failed", zap.Error(err))
		return &domain.RequestError{Message: fmt.Sprintf("perform request: %v", err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &domain.RequestError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err), Err: err}
	}

	logger.Debug("request finished",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &domain.RequestError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.RequestError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}

	return nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Upload != nil {
		return encodeUpload(*req.Upload)
	}
	if req.Payload == nil {
		return nil, "", nil
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, "", fmt.Errorf("encode request payload: %w", err)
	}
	return bytes.NewReader(payload), "application/json", nil
}

// encodeUpload buffers the image into a multipart form. The content type comes from the
// multipart writer so the boundary travels with it.
func encodeUpload(upload domain.ImageUpload) (io.Reader, string, error) {
	if upload.Content == nil {
		return nil, "", errors.New("image content is required")
	}

	fileName := upload.FileName
	if fileName == "" {
		fileName = "upload"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(imageFieldName, fileName)
	if err != nil {
		return nil, "", fmt.Errorf("create image form field: %w", err)
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return nil, "", fmt.Errorf("copy image content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finish image form: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

func errorMessage(raw []byte) string {
	var payload errorBody
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.DefaultRequestFailedMessage
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return domain.DefaultRequestFailedMessage
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

func buildURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	return strings.TrimRight(parsed.String(), "/") + "/" + strings.TrimLeft(path, "/"), nil
}
