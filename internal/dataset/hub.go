package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bugdle/internal/logging"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the public Hugging Face datasets-server.
const DefaultBaseURL = "https://datasets-server.huggingface.co"

// maxPageSize is the largest length the /rows endpoint accepts.
const maxPageSize = 100

// ErrUnknownSplit is returned when the dataset has no such config/split.
var ErrUnknownSplit = errors.New("unknown dataset split")

// ErrTruncatedRow is returned when the datasets-server clips a cell even
// when the row is requested on its own.
var ErrTruncatedRow = errors.New("datasets-server truncated row")

// HubError is a non-2xx answer from the datasets-server.
type HubError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *HubError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("datasets-server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("datasets-server returned %d: %s", e.StatusCode, e.Message)
}

// HubOptions configures a HubClient. Zero values fall back to defaults.
type HubOptions struct {
	BaseURL     string
	Token       string // optional Hugging Face token for gated datasets
	PageSize    int
	Concurrency int

	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration

	Logger *zap.Logger
}

// HubClient reads dataset splits page by page from the datasets-server
// /rows endpoint.
type HubClient struct {
	client      *resty.Client
	pageSize    int
	concurrency int
	logger      *zap.Logger
}

// SplitInfo is one config/split pair of a dataset.
type SplitInfo struct {
	Dataset string `json:"dataset"`
	Config  string `json:"config"`
	Split   string `json:"split"`
}

type rowsResponse struct {
	Rows []struct {
		RowIdx         int      `json:"row_idx"`
		Row            Record   `json:"row"`
		TruncatedCells []string `json:"truncated_cells"`
	} `json:"rows"`
	NumRowsTotal int  `json:"num_rows_total"`
	Partial      bool `json:"partial"`
}

type splitsResponse struct {
	Splits []SplitInfo `json:"splits"`
}

type hubErrorBody struct {
	Error string `json:"error"`
}

// NewHubClient creates a datasets-server client.
func NewHubClient(opts HubOptions) *HubClient {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetLogger(logging.NewRestyAdapter(logger.Named(string(logging.CategoryAPI)))).
		SetRetryCount(opts.RetryCount).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Naming errors (4xx) are permanent; only retry transport failures and overload.
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.RetryWait > 0 {
		client.SetRetryWaitTime(opts.RetryWait)
	}
	if opts.RetryMaxWait > 0 {
		client.SetRetryMaxWaitTime(opts.RetryMaxWait)
	}
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}

	return &HubClient{
		client:      client,
		pageSize:    pageSize,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Fetch returns the records of req's split in row order. The first page
// reports the split size; the remaining pages are fetched concurrently.
func (c *HubClient) Fetch(ctx context.Context, req Request) ([]Record, error) {
	if req.Dataset == "" {
		return nil, fmt.Errorf("dataset name is required")
	}
	if req.Split == "" {
		return nil, fmt.Errorf("split name is required")
	}
	if req.Config == "" {
		req.Config = "default"
	}

	firstLen := c.pageSize
	if req.Limit > 0 && req.Limit < firstLen {
		firstLen = req.Limit
	}

	c.logger.Info("Downloading dataset",
		zap.String("dataset", req.Dataset),
		zap.String("config", req.Config),
		zap.String("split", req.Split))

	first, total, err := c.fetchRows(ctx, req, 0, firstLen)
	if err != nil {
		return nil, c.explain(ctx, req, err)
	}

	end := total
	if req.Limit > 0 && req.Limit < end {
		end = req.Limit
	}
	if end <= len(first) {
		return First(first, end), nil
	}

	var offsets []int
	for off := len(first); off < end; off += c.pageSize {
		offsets = append(offsets, off)
	}
	pages := make([][]Record, len(offsets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, off := range offsets {
		length := c.pageSize
		if off+length > end {
			length = end - off
		}
		g.Go(func() error {
			rows, _, err := c.fetchRows(gctx, req, off, length)
			if err != nil {
				return fmt.Errorf("rows %d-%d: %w", off, off+length-1, err)
			}
			pages[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]Record, 0, end)
	records = append(records, first...)
	for _, page := range pages {
		records = append(records, page...)
	}
	if len(records) != end {
		c.logger.Warn("Datasets-server returned fewer rows than announced",
			zap.Int("expected", end),
			zap.Int("received", len(records)))
	}

	c.logger.Debug("Dataset downloaded", zap.Int("records", len(records)), zap.Int("split_size", total))
	return records, nil
}

// Splits lists the config/split pairs available for dataset.
func (c *HubClient) Splits(ctx context.Context, dataset string) ([]SplitInfo, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("dataset", dataset).
		Get("/splits")
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	if resp.IsError() {
		return nil, hubError(resp)
	}

	var out splitsResponse
	if err := decodeJSON(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse splits: %w", err)
	}
	return out.Splits, nil
}

// fetchRows returns the complete rows in [offset, offset+length) and the
// split size. A page with truncated cells is fetched again in halves until
// every row arrives whole; a single row that is still clipped fails.
func (c *HubClient) fetchRows(ctx context.Context, req Request, offset, length int) ([]Record, int, error) {
	rows, total, truncated, err := c.fetchPage(ctx, req, offset, length)
	if err != nil {
		return nil, 0, err
	}
	if len(truncated) == 0 {
		return rows, total, nil
	}
	if length == 1 {
		return nil, 0, fmt.Errorf("%w %d (cells: %s)", ErrTruncatedRow, offset, strings.Join(truncated, ", "))
	}

	// Never ask past the rows the server actually holds.
	if len(rows) < length {
		length = len(rows)
	}
	half := (length + 1) / 2
	c.logger.Debug("Refetching truncated page in smaller pages",
		zap.Int("offset", offset),
		zap.Int("length", length),
		zap.Strings("cells", truncated))

	head, _, err := c.fetchRows(ctx, req, offset, half)
	if err != nil {
		return nil, 0, err
	}
	if length-half == 0 {
		return head, total, nil
	}
	tail, _, err := c.fetchRows(ctx, req, offset+half, length-half)
	if err != nil {
		return nil, 0, err
	}
	return append(head, tail...), total, nil
}

// fetchPage returns the rows in [offset, offset+length), the split size
// and the names of any cells the server truncated.
func (c *HubClient) fetchPage(ctx context.Context, req Request, offset, length int) ([]Record, int, []string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"dataset": req.Dataset,
			"config":  req.Config,
			"split":   req.Split,
			"offset":  strconv.Itoa(offset),
			"length":  strconv.Itoa(length),
		}).
		Get("/rows")
	if err != nil {
		return nil, 0, nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, 0, nil, hubError(resp)
	}

	var page rowsResponse
	if err := decodeJSON(resp.Body(), &page); err != nil {
		return nil, 0, nil, fmt.Errorf("failed to parse rows: %w", err)
	}

	var truncated []string
	records := make([]Record, 0, len(page.Rows))
	for _, row := range page.Rows {
		if len(row.TruncatedCells) > 0 {
			c.logger.Debug("Datasets-server truncated cells",
				zap.Int("row", row.RowIdx),
				zap.Strings("cells", row.TruncatedCells))
			truncated = append(truncated, row.TruncatedCells...)
		}
		records = append(records, row.Row)
	}
	return records, page.NumRowsTotal, truncated, nil
}

// explain turns a naming failure on the first page into ErrUnknownSplit
// listing what the dataset does offer.
func (c *HubClient) explain(ctx context.Context, req Request, err error) error {
	var he *HubError
	if !errors.As(err, &he) || he.StatusCode >= 500 {
		return fmt.Errorf("failed to fetch %s/%s: %w", req.Dataset, req.Split, err)
	}

	splits, listErr := c.Splits(ctx, req.Dataset)
	if listErr != nil || len(splits) == 0 {
		return fmt.Errorf("failed to fetch %s/%s: %w", req.Dataset, req.Split, err)
	}
	available := make([]string, 0, len(splits))
	for _, s := range splits {
		if s.Config == req.Config && s.Split == req.Split {
			// The split exists, so the failure was something else.
			return fmt.Errorf("failed to fetch %s/%s: %w", req.Dataset, req.Split, err)
		}
		available = append(available, s.Config+"/"+s.Split)
	}
	return fmt.Errorf("%w %s/%s for %s (available: %s)", ErrUnknownSplit,
		req.Config, req.Split, req.Dataset, strings.Join(available, ", "))
}

func hubError(resp *resty.Response) error {
	he := &HubError{StatusCode: resp.StatusCode()}
	var body hubErrorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		he.Message = body.Error
	} else {
		he.Message = strings.TrimSpace(resp.String())
	}
	return he
}

// decodeJSON keeps numbers as json.Number so rows re-encode byte-exact.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
