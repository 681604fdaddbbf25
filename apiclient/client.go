// Package apiclient performs calls against the Kogase backend. It attaches
// the stored bearer credential, recovers once from an expired credential by
// refreshing it, and reports every failure as an *APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/kogase-admin/credentials"
	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	tracerName   = "github.com/jrsteele09/kogase-admin/apiclient"
	refreshPath  = "auth/refresh-token"
	refreshGroup = "refresh"
)

// Client is the process-wide backend client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *credentials.Store
	log        zerolog.Logger
	tracer     trace.Tracer

	refreshes singleflight.Group

	subsMu  sync.Mutex
	subs    map[int]func(*APIError)
	nextSub int
}

type Option func(*Client)

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithHTTPClient replaces http.DefaultClient. Domain requests carry no
// client-side timeout unless the supplied client sets one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

func New(baseURL string, store *credentials.Store, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[apiclient.New] base URL is required")
	}
	if store == nil {
		return nil, errors.New("[apiclient.New] credential store is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		store:      store,
		log:        zerolog.Nop(),
		subs:       make(map[int]func(*APIError)),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c, nil
}

// BaseURL returns the backend API base without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the credential store the client reads from and refreshes.
func (c *Client) Store() *credentials.Store {
	return c.store
}

// Subscribe registers fn to be called whenever credential recovery fails and
// the operator must sign in again. The returned func removes the
// subscription.
func (c *Client) Subscribe(fn func(*APIError)) func() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Client) notify(apiErr *APIError) {
	c.subsMu.Lock()
	fns := make([]func(*APIError), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn(apiErr)
	}
}

// Do calls {baseURL}/{path}. body is JSON encoded for every method except
// GET; out, when non-nil, receives the decoded JSON response.
//
// A 401 on a call that carries the stored credential triggers one shared
// refresh and a single retry. The retried response is returned as if it were
// the first.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	ro := requestOptions{requiresAuth: true}
	for _, opt := range opts {
		opt(&ro)
	}

	path = strings.TrimPrefix(path, "/")
	ctx, span := c.tracer.Start(ctx, spanName(method, path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("kogase.path", path),
		),
	)
	defer span.End()

	err := c.do(ctx, method, path, body, out, ro)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// spanName names the span of a call by method and resource path. The query
// string is left out to keep names low-cardinality; it is recorded on the
// span as the kogase.path attribute.
func spanName(method, path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return method + " " + path
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, ro requestOptions) error {
	token := c.bearer(ro)

	resp, err := c.send(ctx, method, path, body, token, ro.headers)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && ro.requiresAuth && ro.refreshable() {
		if token == "" {
			// nothing was presented, so there is no credential to recover
			return authenticationError(interrors.ErrNotAuthenticated)
		}
		c.log.Debug().Str("path", path).Msg("token expired, attempting to refresh")

		newToken, err := c.refresh(ctx, token)
		if err != nil {
			return err
		}

		c.log.Debug().Str("path", path).Msg("token refreshed, retrying original request")
		resp, err = c.send(ctx, method, path, body, newToken, ro.headers)
		if err != nil {
			return err
		}
	}

	if resp.status < 200 || resp.status > 299 {
		return responseError(resp.status, resp.payload())
	}
	return resp.decode(out)
}

func (c *Client) bearer(ro requestOptions) string {
	if ro.bearer != "" {
		return ro.bearer
	}
	if !ro.requiresAuth {
		return ""
	}
	token, ok := c.store.AccessToken()
	if !ok {
		c.log.Debug().Msg("no auth token available for authenticated request")
	}
	return token
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (r *response) isJSON() bool {
	mt, _, err := mime.ParseMediaType(r.contentType)
	if err != nil {
		return strings.Contains(r.contentType, "json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// payload is the body as a generic value: decoded JSON when the response is
// JSON (an empty map if it does not parse), the text otherwise.
func (r *response) payload() any {
	if !r.isJSON() {
		return string(r.body)
	}
	var v any
	if err := json.Unmarshal(r.body, &v); err != nil {
		return map[string]any{}
	}
	return v
}

func (r *response) decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if !r.isJSON() {
		if s, ok := out.(*string); ok {
			*s = string(r.body)
		}
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return &APIError{
			Kind:    KindHTTP,
			Status:  r.status,
			Message: "unreadable response body",
			Payload: string(r.body),
			Err:     err,
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any, token string, headers map[string]string) (*response, error) {
	var reader io.Reader
	if body != nil && method != http.MethodGet {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, requestError(err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return nil, requestError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.log.Debug().Str("method", method).Str("url", req.URL.String()).Msg("request")
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("url", req.URL.String()).Msg("network or fetch error")
		return nil, transportError(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, transportError(err)
	}
	c.log.Debug().Int("status", res.StatusCode).Str("url", req.URL.String()).Msg("response")

	return &response{
		status:      res.StatusCode,
		contentType: res.Header.Get("Content-Type"),
		body:        raw,
	}, nil
}

// Health calls {baseURL}/health without credentials. Any non-success
// response or transport failure is an error.
func (c *Client) Health(ctx context.Context) error {
	return c.Do(ctx, http.MethodGet, "health", nil, nil, WithoutAuth())
}
