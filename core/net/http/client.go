package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/heattrack/sessionkit/errors"
)

const (
	defaultBufferSize = 4096
	maxBufferSize     = 1024 * 1024 // 1MB
	maxErrorBody      = 64 * 1024
)

// Client 面向后端 API 的 JSON 客户端，请求体缓冲区复用
type Client struct {
	baseURL    string
	client     *http.Client
	bufferPool sync.Pool
}

// Option 客户端选项
type Option func(*Client)

// WithClient 替换底层 http.Client
func WithClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout 单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithTransport 设置 RoundTripper，例如 401 拦截器
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.client.Transport = rt
	}
}

// New 创建客户端，path 相对 baseURL 拼接
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{},
		bufferPool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL 后端地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOption 单次请求选项
type RequestOption struct {
	header   map[string]string
	response any
}

// WithHeader 追加请求头
func WithHeader(header map[string]string) func(*RequestOption) {
	return func(opt *RequestOption) {
		maps.Copy(opt.header, header)
	}
}

// WithBearer 设置 Authorization: Bearer
func WithBearer(token string) func(*RequestOption) {
	return func(opt *RequestOption) {
		if token != "" {
			opt.header["Authorization"] = "Bearer " + token
		}
	}
}

// WithResponse 2xx 响应体解码到 response
func WithResponse(response any) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.response = response
	}
}

// envelope 后端统一响应外壳
type envelope struct {
	Success   *bool  `json:"success"`
	Message   string `json:"message"`
	ErrorType string `json:"errorType"`
}

// Request 发送请求。
// 非 2xx 返回 *errors.Error，状态码即 Code，errorType 放入元数据；网络错误包装为 503。
func (c *Client) Request(ctx context.Context, method, path string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	opt := &RequestOption{
		header: map[string]string{"Accept": ContentTypeJSON},
	}
	for _, o := range opts {
		o(opt)
	}

	target, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, errors.Wrap(err, 400, "invalid request path %q", path)
	}

	var reader io.Reader
	if body != nil {
		buf := c.getBuffer()
		// 缓冲区在 Do 返回后才归还，重放请求时仍可读取
		defer c.putBuffer(buf)

		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, errors.Wrap(err, 400, "encode request body")
		}
		reader = bytes.NewReader(buf.Bytes())
		opt.header["Content-Type"] = ContentTypeJSON
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrap(err, 400, "build request")
	}
	for k, v := range opt.header {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, 503, "%s %s unreachable", method, path)
	}
	return c.processResponse(resp, opt.response)
}

func (c *Client) processResponse(resp *http.Response, dest any) (*http.Response, error) {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, statusError(resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return resp, errors.Wrap(err, 502, "decode response")
	}
	return resp, nil
}

// statusError 把非 2xx 响应转换为结构化错误
func statusError(resp *http.Response) *errors.Error {
	var env envelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &env)

	err := errors.FromStatus(resp.StatusCode, env.Message)
	if env.ErrorType != "" {
		err = err.WithMetadata(map[string]string{errors.MetadataErrorType: env.ErrorType})
	}
	return err
}

func (c *Client) getBuffer() *bytes.Buffer {
	buf := c.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer 过大的缓冲区不回收
func (c *Client) putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxBufferSize {
		c.bufferPool.Put(buf)
	}
}

// Get GET 请求
func (c *Client) Get(ctx context.Context, path string, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil, opts...)
}

// Post POST 请求，body 编码为 JSON
func (c *Client) Post(ctx context.Context, path string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return c.Request(ctx, http.MethodPost, path, body, opts...)
}
