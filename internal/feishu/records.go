package feishu

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/avast/retry-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vocabnote/internal/metrics"
)

// RawRecord is one bitable row as returned by the records endpoint.
type RawRecord struct {
	RecordID string                `json:"record_id"`
	Fields   map[string]FieldValue `json:"fields"`
}

type listRecordsResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Items     []RawRecord `json:"items"`
		HasMore   bool        `json:"has_more"`
		PageToken string      `json:"page_token"`
		Total     int         `json:"total"`
	} `json:"data"`
}

type createRecordRequest struct {
	Fields map[string]interface{} `json:"fields"`
}

type createRecordResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Record struct {
			RecordID string `json:"record_id"`
			ID       string `json:"id"`
		} `json:"record"`
	} `json:"data"`
}

var filterEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// OwnerFilter builds the bitable filter expression matching rows whose
// field equals value.
func OwnerFilter(field, value string) string {
	return fmt.Sprintf(`CurrentValue.[%s] = "%s"`, field, filterEscaper.Replace(value))
}

func (c *Client) recordsPath() string {
	return fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records", url.PathEscape(c.opts.BaseID), url.PathEscape(c.opts.TableID))
}

// FetchRecords returns the table rows, restricted to rows owned by
// filterUserID when it is non-empty. Every failure degrades to an empty
// result; causes are logged and counted.
func (c *Client) FetchRecords(ctx context.Context, filterUserID string) []RawRecord {
	logger := logutil.GetLogger(ctx).With(zap.String("filter_user_id", filterUserID))
	token, err := c.tokens.Token(ctx)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("auth").Inc()
		logger.Warn("no tenant access token, skip fetching records", zap.Error(err))
		return []RawRecord{}
	}
	filter := ""
	if filterUserID != "" {
		filter = OwnerFilter(c.opts.OwnerField, filterUserID)
	}
	records, err := c.listRecords(ctx, token, filter)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("list").Inc()
		logger.Error("fetch records failed", zap.Error(err))
		return []RawRecord{}
	}
	metrics.RecordsFetchedTotal.Add(float64(len(records)))
	logger.Debug("records fetched", zap.Int("count", len(records)))
	return records
}

func (c *Client) listRecords(ctx context.Context, token, filter string) ([]RawRecord, error) {
	records := make([]RawRecord, 0)
	pageToken := ""
	for page := 0; page < c.opts.MaxPages; page++ {
		out, err := c.fetchPage(ctx, token, filter, pageToken)
		if err != nil {
			return nil, err
		}
		records = append(records, out.Data.Items...)
		if !out.Data.HasMore || out.Data.PageToken == "" {
			return records, nil
		}
		pageToken = out.Data.PageToken
	}
	logutil.GetLogger(ctx).Warn("record pages truncated", zap.Int("max_pages", c.opts.MaxPages), zap.Int("count", len(records)))
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, token, filter, pageToken string) (*listRecordsResponse, error) {
	var out *listRecordsResponse
	var apiErr *APIError
	err := c.withRetry(ctx, func() error {
		req := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+token).
			SetQueryParam("page_size", strconv.Itoa(c.opts.PageSize))
		if filter != "" {
			req.SetQueryParam("filter", filter)
		}
		if pageToken != "" {
			req.SetQueryParam("page_token", pageToken)
		}
		resp, err := req.Get(c.recordsPath())
		if err != nil {
			return fmt.Errorf("list records: %w", err)
		}
		var reply listRecordsResponse
		if err := decodeReply(resp, &reply); err != nil {
			return classify(err)
		}
		if reply.Code != 0 {
			apiErr = &APIError{Code: reply.Code, Msg: reply.Msg}
			return retry.Unrecoverable(apiErr)
		}
		out = &reply
		return nil
	})
	if apiErr != nil {
		if apiErr.tokenInvalid() {
			c.tokens.Invalidate()
		}
		return nil, fmt.Errorf("%w: %w", ErrFetch, apiErr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return out, nil
}

// CreateRecord appends a row with the given label to value mapping and
// returns the new record id.
func (c *Client) CreateRecord(ctx context.Context, fields map[string]interface{}) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("auth").Inc()
		return "", err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetBody(createRecordRequest{Fields: fields}).
		Post(c.recordsPath())
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("create").Inc()
		return "", fmt.Errorf("%w: create record: %w", ErrFetch, err)
	}
	var out createRecordResponse
	if err := decodeReply(resp, &out); err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("create").Inc()
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if out.Code != 0 {
		metrics.UpstreamErrorsTotal.WithLabelValues("create").Inc()
		apiErr := &APIError{Code: out.Code, Msg: out.Msg}
		if apiErr.tokenInvalid() {
			c.tokens.Invalidate()
		}
		return "", fmt.Errorf("%w: %w", ErrFetch, apiErr)
	}
	if out.Data.Record.RecordID != "" {
		return out.Data.Record.RecordID, nil
	}
	return out.Data.Record.ID, nil
}

func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(c.opts.RetryAttempts+1),
		retry.Delay(c.opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logutil.GetLogger(ctx).Warn("retry feishu request", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

// classify marks decode failures and non-transient statuses unrecoverable.
func classify(err error) error {
	var se *statusError
	if errors.As(err, &se) && se.retryable() {
		return err
	}
	return retry.Unrecoverable(err)
}
