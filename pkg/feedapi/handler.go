package feedapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-news-sender/internal/logger"
	"github.com/samvad-hq/samvad-news-sender/pkg/httpclient"
)

const (
	defaultTimeout  = 10 * time.Second
	contentTypeJSON = "application/json"
)

// Config holds the per-instance settings of a Handler.
type Config struct {
	BaseURL string
	Headers map[string]string
	Timeout time.Duration
}

// Result is the uniform outcome of a successful request, shared by all
// verbs: the HTTP status code plus the decoded value. Value is the
// validated response model when one was requested, the generically parsed
// JSON when the body declared a JSON content type, or the raw text
// otherwise.
type Result struct {
	Status int
	Value  any
}

// Handler performs one HTTP call per verb invocation and normalizes its
// outcome. Headers and timeout are mutable between calls; mutation is not
// synchronized against in-flight requests.
type Handler struct {
	baseURL  string
	headers  map[string]string
	client   *resty.Client
	validate *validator.Validate
	log      logger.Logger
}

// NewHandler builds a Handler for the given base URL, headers and timeout.
func NewHandler(cfg Config, log logger.Logger) *Handler {
	if log == nil {
		log = &logger.NopLogger{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Handler{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		headers:  headers,
		client:   httpclient.NewRestyHTTPClient(timeout),
		validate: validator.New(),
		log:      log,
	}
}

// SetHeaders merges the given mapping into the current headers: existing
// keys are overwritten, new keys added. There is no removal operation.
func (h *Handler) SetHeaders(headers map[string]string) {
	for k, v := range headers {
		h.headers[k] = v
	}
}

// SetTimeout replaces the per-request timeout outright.
func (h *Handler) SetTimeout(timeout time.Duration) {
	h.client.SetTimeout(timeout)
}

// request collects the optional pieces of a single request.
type request struct {
	pathParams  PathParams
	queryParams QueryParams
	body        any
	out         any
}

// RequestOption configures a single request.
type RequestOption func(*request)

// WithPathParams supplies the record that fills the endpoint placeholders.
func WithPathParams(p PathParams) RequestOption {
	return func(s *request) { s.pathParams = p }
}

// WithQueryParams attaches query parameters to the request URL.
func WithQueryParams(q QueryParams) RequestOption {
	return func(s *request) { s.queryParams = q }
}

// WithBody serializes the given record as the JSON request body. Fields are
// marshalled per their json tags; optional fields carry omitempty so unset
// values are dropped rather than sent as null.
func WithBody(body any) RequestOption {
	return func(s *request) { s.body = body }
}

// WithResponse requests that the response body be decoded into out and
// validated against its struct tags. out must be a pointer.
func WithResponse(out any) RequestOption {
	return func(s *request) { s.out = out }
}

// Get performs a GET request against the endpoint template.
func (h *Handler) Get(ctx context.Context, endpoint string, opts ...RequestOption) (Result, error) {
	return h.execute(ctx, http.MethodGet, endpoint, opts)
}

// Post performs a POST request with an optional JSON body.
func (h *Handler) Post(ctx context.Context, endpoint string, opts ...RequestOption) (Result, error) {
	return h.execute(ctx, http.MethodPost, endpoint, opts)
}

// Delete performs a DELETE request against the endpoint template.
func (h *Handler) Delete(ctx context.Context, endpoint string, opts ...RequestOption) (Result, error) {
	return h.execute(ctx, http.MethodDelete, endpoint, opts)
}

// execute resolves the URL, performs the call and normalizes the outcome.
func (h *Handler) execute(ctx context.Context, method, endpoint string, opts []RequestOption) (Result, error) {
	r := &request{}
	for _, opt := range opts {
		opt(r)
	}

	resolved, err := resolveEndpoint(endpoint, r.pathParams)
	if err != nil {
		return Result{}, h.fail(&Error{Kind: KindFormat, URL: endpoint, Err: err})
	}
	url := h.baseURL + "/" + resolved

	h.log.DebugObj(method+" request starting", "request", map[string]any{
		"endpoint": endpoint,
		"url":      url,
		"query":    queryValues(r.queryParams),
		"body":     r.body,
	})

	req := h.client.R().SetContext(ctx)
	if len(h.headers) > 0 {
		req.SetHeaders(h.headers)
	}
	if q := queryValues(r.queryParams); len(q) > 0 {
		req.SetQueryParams(q)
	}
	if r.body != nil {
		req.SetHeader("Content-Type", contentTypeJSON)
		req.SetBody(r.body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return Result{}, h.fail(&Error{Kind: KindTransport, URL: url, Err: err})
	}

	h.log.DebugObj("raw response", "response", map[string]any{
		"url":    url,
		"status": resp.StatusCode(),
		"body":   bodySnippet(resp.Body()),
	})

	if resp.IsError() {
		return Result{}, h.fail(&Error{
			Kind:   KindStatus,
			Status: resp.StatusCode(),
			URL:    url,
			Err:    fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), bodySnippet(resp.Body())),
		})
	}

	value, err := h.decode(resp, r.out, url)
	if err != nil {
		return Result{}, err
	}

	h.log.InfoObj(method+" succeeded", "request_result", map[string]any{
		"url":    url,
		"status": resp.StatusCode(),
	})
	return Result{Status: resp.StatusCode(), Value: value}, nil
}

// decode parses the response body according to its content type and, when a
// response model was requested, validates the decoded value against it.
func (h *Handler) decode(resp *resty.Response, out any, url string) (any, error) {
	body := resp.Body()
	contentType := resp.Header().Get("Content-Type")

	if !isJSONContentType(contentType) {
		// Opaque text passthrough. Requesting a model against a non-JSON
		// body fails as a validation error rather than crashing.
		if out != nil {
			return nil, h.fail(&Error{
				Kind:   KindValidation,
				Status: resp.StatusCode(),
				URL:    url,
				Err:    fmt.Errorf("response model requested but content type %q is not JSON", contentType),
			})
		}
		return string(body), nil
	}

	if out == nil {
		if len(body) == 0 {
			return nil, nil
		}
		var generic any
		if err := json.Unmarshal(body, &generic); err != nil {
			return nil, h.fail(&Error{Kind: KindDecode, Status: resp.StatusCode(), URL: url, Err: err})
		}
		return generic, nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return nil, h.fail(&Error{Kind: KindDecode, Status: resp.StatusCode(), URL: url, Err: err})
	}
	if err := h.validateModel(out); err != nil {
		return nil, h.fail(&Error{Kind: KindValidation, Status: resp.StatusCode(), URL: url, Err: err})
	}
	return out, nil
}

// validateModel runs struct validation when the model is a struct; other
// shapes (slices, maps) pass through decode-only.
func (h *Handler) validateModel(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return h.validate.Struct(out)
}

// fail logs the error with full detail and returns it unchanged.
func (h *Handler) fail(apiErr *Error) error {
	h.log.ErrorObj("request failed", "request_error", map[string]any{
		"kind":   string(apiErr.Kind),
		"status": apiErr.Status,
		"url":    apiErr.URL,
		"error":  apiErr.Err.Error(),
	})
	return apiErr
}

func queryValues(q QueryParams) map[string]string {
	if q == nil {
		return nil
	}
	return q.QueryValues()
}

func isJSONContentType(contentType string) bool {
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	return strings.EqualFold(mediaType, contentTypeJSON)
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
