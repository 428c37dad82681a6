// Package upstream is the HTTP client for the Huluxia floor API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"floorview/internal/mapper"
	"floorview/internal/observability"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// Operation names used in errors, logs, spans and metrics.
const (
	OpCategories = "categories"
	OpPostList   = "post_list"
	OpPostDetail = "post_detail"
)

// Client talks to the floor API. It holds no per-request state.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.UpstreamMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *observability.UpstreamMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.ParseRequestURI(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Host == "" {
		return nil, errors.Errorf("upstream base url is invalid format. (%s)", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		logger:     observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PostListQuery selects one page of a category listing.
type PostListQuery struct {
	CategoryID int64
	TagID      int64
	Count      int
	SortBy     int
}

// PostDetailQuery selects a post and one page of its comments.
type PostDetailQuery struct {
	PostID   int64
	PageNo   int
	PageSize int
}

// PostList is the raw listing response.
type PostList struct {
	Posts []mapper.Raw
	More  bool
}

// PostDetail is the raw detail response. Found is false when the body had
// no post object.
type PostDetail struct {
	Post     mapper.Raw
	Found    bool
	Comments []mapper.Raw
}

// FetchCategories returns the raw category list in upstream order.
func (c *Client) FetchCategories(ctx context.Context) ([]mapper.Raw, error) {
	call := observability.UpstreamCall{Operation: OpCategories, Target: categoriesPath}
	body, err := c.get(ctx, call, nil, browserProfile)
	if err != nil {
		return nil, err
	}
	return mapper.List(body, "categories"), nil
}

// FetchPostList returns one page of posts for a category and optional tag.
func (c *Client) FetchPostList(ctx context.Context, q PostListQuery) (*PostList, error) {
	params := withParams(postListParams, map[string]string{
		"count":   strconv.Itoa(q.Count),
		"cat_id":  strconv.FormatInt(q.CategoryID, 10),
		"tag_id":  strconv.FormatInt(q.TagID, 10),
		"sort_by": strconv.Itoa(q.SortBy),
	})

	call := observability.UpstreamCall{Operation: OpPostList, Target: postListPath, CategoryID: q.CategoryID, TagID: q.TagID}
	body, err := c.get(ctx, call, params, appProfile)
	if err != nil {
		return nil, err
	}
	return &PostList{
		Posts: mapper.List(body, "posts"),
		More:  mapper.Flag(body, "more"),
	}, nil
}

// FetchPostDetail returns a post and one page of its comments.
func (c *Client) FetchPostDetail(ctx context.Context, q PostDetailQuery) (*PostDetail, error) {
	params := withParams(postDetailParams, map[string]string{
		"post_id":   strconv.FormatInt(q.PostID, 10),
		"page_no":   strconv.Itoa(q.PageNo),
		"page_size": strconv.Itoa(q.PageSize),
	})

	call := observability.UpstreamCall{Operation: OpPostDetail, Target: postDetailPath, PostID: q.PostID}
	body, err := c.get(ctx, call, params, appProfile)
	if err != nil {
		return nil, err
	}
	post, found := mapper.Object(body, "post")
	return &PostDetail{
		Post:     post,
		Found:    found,
		Comments: mapper.List(body, "comments"),
	}, nil
}

func withParams(fixed, extra map[string]string) map[string]string {
	out := make(map[string]string, len(fixed)+len(extra))
	for k, v := range fixed {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (c *Client) newRequest(ctx context.Context, requestPath string, queries map[string]string, profile headerProfile) (*http.Request, error) {
	requestURL := *c.baseURL
	requestURL.Path = path.Join(c.baseURL.Path, requestPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, value := range queries {
		q.Set(key, value)
	}
	req.URL.RawQuery = q.Encode()

	for k, v := range profile.headers {
		req.Header.Set(k, v)
	}
	req.Host = floorHost
	req.Close = profile.close

	return req, nil
}

// get performs one request and decodes the JSON object body.
func (c *Client) get(ctx context.Context, call observability.UpstreamCall, queries map[string]string, profile headerProfile) (body mapper.Raw, err error) {
	op := call.Operation
	ctx, span := observability.StartUpstreamSpan(ctx, call)

	done := c.metrics.Track(op)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(KindOf(err))
		}
		done(outcome)
		span.End(err)
	}()

	req, err := c.newRequest(ctx, call.Target, queries, profile)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: errors.Wrap(err, "cannot create request")}
	}

	c.logger.DebugContext(ctx, "upstream request", slog.String("operation", op), slog.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: classifyTransport(err)}
	}
	defer resp.Body.Close()

	span.StatusCode(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &Error{Op: op, Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	raw, err := readBody(resp)
	if err != nil {
		var ue *Error
		if errors.As(err, &ue) {
			ue.Op = op
			return nil, ue
		}
		return nil, &Error{Op: op, Kind: KindTransport, Err: errors.Wrap(err, "failed to read response")}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, Err: errors.Wrap(err, "failed to parse response")}
	}
	if body == nil {
		return nil, &Error{Op: op, Kind: KindDecode, Err: errors.New("response is not a JSON object")}
	}

	c.logger.DebugContext(ctx, "upstream response", slog.String("operation", op), slog.Int("bytes", len(raw)))
	return body, nil
}

// readBody reads the body, undoing any Content-Encoding we asked for.
// net/http only decompresses transparently when it set Accept-Encoding itself.
func readBody(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var r io.ReadCloser
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		r, err = gzip.NewReader(bytes.NewReader(data))
	case "deflate":
		r, err = zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			// some servers send raw deflate without the zlib header
			r, err = flate.NewReader(bytes.NewReader(data)), nil
		}
	default:
		return data, nil
	}
	if err != nil {
		return nil, &Error{Kind: KindDecode, Err: errors.Wrap(err, "invalid compressed body")}
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Err: errors.Wrap(err, "invalid compressed body")}
	}
	return out, nil
}

func classifyTransport(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return errors.Wrap(err, "request timed out")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, "request timed out")
	}
	return errors.Wrap(err, "request failed")
}
