package transport

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

	"github.com/goliatone/go-acquiring/core"
	goerrors "github.com/goliatone/go-errors"
)

const defaultClientTimeout = 30 * time.Second
const defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RESTInvoker executes downstream processor calls over HTTP. Endpoint names
// are resolved against BaseURL, so `usrv-card-kushki-charge-ci` becomes
// `<base>/usrv-card-kushki-charge-ci`.
type RESTInvoker struct {
	Client               HTTPDoer
	BaseURL              string
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
}

func NewRESTInvoker(baseURL string, client HTTPDoer) *RESTInvoker {
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}
	return &RESTInvoker{
		Client:               client,
		BaseURL:              strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: defaultResponseBodyLimit,
	}
}

func (i *RESTInvoker) Invoke(ctx context.Context, req core.InvokeRequest) (core.InvokeResponse, error) {
	if i == nil || i.Client == nil {
		return core.InvokeResponse{}, invokerError(
			"transport: rest invoker requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"endpoint": req.Endpoint},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		return core.InvokeResponse{}, invokerError(
			"transport: endpoint is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			nil,
		)
	}
	target, err := i.resolveURL(endpoint)
	if err != nil {
		return core.InvokeResponse{}, invokerWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid endpoint url",
			http.StatusBadRequest,
			map[string]any{"endpoint": endpoint},
		)
	}

	payload, err := json.Marshal(req.Body)
	if err != nil {
		return core.InvokeResponse{}, invokerWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: encode request body",
			http.StatusBadRequest,
			map[string]any{"endpoint": endpoint},
		)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return core.InvokeResponse{}, invokerWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			http.StatusBadRequest,
			map[string]any{"endpoint": endpoint, "url": target},
		)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range i.DefaultHeaders {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	httpRes, err := i.Client.Do(httpReq)
	if err != nil {
		// Context expiry surfaces untouched so the timeout guard can
		// classify it, everything else is an external fault.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return core.InvokeResponse{}, ctxErr
		}
		return core.InvokeResponse{}, invokerWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			http.StatusBadGateway,
			map[string]any{"endpoint": endpoint, "url": target},
		)
	}
	defer httpRes.Body.Close()

	limit := i.MaxResponseBodyBytes
	if limit <= 0 {
		limit = defaultResponseBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(httpRes.Body, limit+1))
	if err != nil {
		return core.InvokeResponse{}, invokerWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			http.StatusBadGateway,
			map[string]any{"endpoint": endpoint, "status_code": httpRes.StatusCode},
		)
	}
	if int64(len(body)) > limit {
		return core.InvokeResponse{}, invokerError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			map[string]any{"endpoint": endpoint, "status_code": httpRes.StatusCode},
		)
	}
	if httpRes.StatusCode >= http.StatusInternalServerError {
		return core.InvokeResponse{}, invokerError(
			"transport: downstream processor failure",
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			map[string]any{"endpoint": endpoint, "status_code": httpRes.StatusCode},
		)
	}

	return core.InvokeResponse{Body: body}, nil
}

func (i *RESTInvoker) resolveURL(endpoint string) (string, error) {
	raw := endpoint
	if !strings.Contains(endpoint, "://") {
		raw = i.BaseURL + "/" + strings.TrimLeft(endpoint, "/")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("transport: endpoint %q resolved to incomplete url %q", endpoint, raw)
	}
	return parsed.String(), nil
}

var _ core.Invoker = (*RESTInvoker)(nil)
