package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"
)

const tenantTokenPath = "/auth/v3/tenant_access_token/internal"

type Options struct {
	BaseURL   string
	AppID     string
	AppSecret string
	BaseID    string
	TableID   string
	// OwnerField is the column holding the owner handle used for per-user
	// filtering and stamped on created records.
	OwnerField    string
	Timeout       time.Duration
	PageSize      int
	MaxPages      int
	RetryAttempts uint
	RetryDelay    time.Duration
	RefreshSkew   time.Duration
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = "https://open.feishu.cn/open-apis"
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.PageSize <= 0 {
		o.PageSize = 100
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 10
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 200 * time.Millisecond
	}
	return o
}

// Client talks to the Feishu open platform: tenant token issuance and the
// bitable records endpoints of one table.
type Client struct {
	http   *resty.Client
	opts   Options
	tokens *TokenCache
}

func NewClient(opts Options) *Client {
	opts = opts.withDefaults()
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetHeader("Content-Type", "application/json; charset=utf-8")
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(0)

	c := &Client{http: client, opts: opts}
	c.tokens = NewTokenCache(c.requestTenantToken, opts.RefreshSkew)
	return c
}

func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) Tokens() *TokenCache {
	return c.tokens
}

type tenantTokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type tenantTokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int64  `json:"expire"`
}

func (c *Client) requestTenantToken(ctx context.Context) (string, time.Duration, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(tenantTokenRequest{AppID: c.opts.AppID, AppSecret: c.opts.AppSecret}).
		Post(tenantTokenPath)
	if err != nil {
		return "", 0, fmt.Errorf("%w: request tenant token: %w", ErrAuth, err)
	}
	var out tenantTokenResponse
	if err := decodeReply(resp, &out); err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrAuth, err)
	}
	if out.Code != 0 {
		return "", 0, fmt.Errorf("%w: %w", ErrAuth, &APIError{Code: out.Code, Msg: out.Msg})
	}
	if out.TenantAccessToken == "" {
		return "", 0, fmt.Errorf("%w: empty tenant access token", ErrAuth)
	}
	return out.TenantAccessToken, time.Duration(out.Expire) * time.Second, nil
}

// statusError is a reply whose HTTP status is an error and whose body is
// not a platform envelope.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.status, e.body)
}

func (e *statusError) retryable() bool {
	return e.status >= http.StatusInternalServerError || e.status == http.StatusTooManyRequests
}

// decodeReply decodes the JSON envelope. The platform answers most
// failures with a JSON body and a code, sometimes under a 4xx status, so
// the body is tried before the status.
func decodeReply(resp *resty.Response, out interface{}) error {
	body := resp.String()
	if err := json.Unmarshal([]byte(body), out); err != nil {
		if resp.IsError() {
			return &statusError{status: resp.StatusCode(), body: strings.TrimSpace(body)}
		}
		return fmt.Errorf("decode reply: %w", err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError || resp.StatusCode() == http.StatusTooManyRequests {
		return &statusError{status: resp.StatusCode(), body: strings.TrimSpace(body)}
	}
	return nil
}
