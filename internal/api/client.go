// Package api is the HTTP client of the transactions backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moneytracker/internal/core"
)

// DefaultBasePath is the path prefix of every backend endpoint.
const DefaultBasePath = "/api"

const maxErrorBody = 4 << 10

var (
	ErrUnexpectedShape = errors.New("unexpected response shape")
	ErrBaseURL         = errors.New("invalid base url")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client talks to the backend over HTTP. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// NewClient creates a client for the backend at baseURL (e.g.
// "http://localhost:8081/api"). A nil httpClient gets a default with timeout.
func NewClient(httpClient *http.Client, baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{httpClient: httpClient, baseURL: u}, nil
}

// ListTransactions fetches the transactions matching query. A nil query
// fetches everything. Both a bare array and a paginated {"results": [...]}
// envelope are accepted.
func (c *Client) ListTransactions(ctx context.Context, query url.Values) ([]core.Transaction, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/transactions/", query, nil, &raw); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs, err := decodeTransactionList(raw)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	for _, tx := range txs {
		if err := checkTransaction(tx); err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
	}
	return txs, nil
}

func (c *Client) CreateTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	var tx core.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions/", nil, draft, &tx); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	if err := checkTransaction(tx); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, draft core.TransactionDraft) (core.Transaction, error) {
	var tx core.Transaction
	if err := c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id)+"/", nil, draft, &tx); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	if err := checkTransaction(tx); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	return tx, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id)+"/", nil, nil, nil); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

// MonthlyStats returns the backend stats in the order the backend sent them.
func (c *Client) MonthlyStats(ctx context.Context) ([]core.MonthlyStat, error) {
	var stats []core.MonthlyStat
	if err := c.do(ctx, http.MethodGet, "/transactions/monthly_stats/", nil, nil, &stats); err != nil {
		return nil, fmt.Errorf("monthly stats: %w", err)
	}
	for _, st := range stats {
		if err := checkStat(st); err != nil {
			return nil, fmt.Errorf("monthly stats: %w", err)
		}
	}
	return stats, nil
}

func (c *Client) CurrentMonthSummary(ctx context.Context) (core.CurrentMonthSummary, error) {
	var summary core.CurrentMonthSummary
	if err := c.do(ctx, http.MethodGet, "/transactions/current_month_summary/", nil, nil, &summary); err != nil {
		return core.CurrentMonthSummary{}, fmt.Errorf("current month summary: %w", err)
	}
	if err := checkStat(summary); err != nil {
		return core.CurrentMonthSummary{}, fmt.Errorf("current month summary: %w", err)
	}
	return summary, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedShape, err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error  string            `json:"error"`
		Detail string            `json:"detail"`
		Fields map[string]string `json:"fields"`
	}
	if json.Unmarshal(data, &payload) == nil {
		se.Message = payload.Error
		if se.Message == "" {
			se.Message = payload.Detail
		}
		se.Fields = payload.Fields
	} else {
		se.Message = strings.TrimSpace(string(data))
	}
	return se
}

func decodeTransactionList(raw json.RawMessage) ([]core.Transaction, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []core.Transaction{}, nil
	}

	switch trimmed[0] {
	case '[':
		var txs []core.Transaction
		if err := json.Unmarshal(trimmed, &txs); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedShape, err)
		}
		return txs, nil
	case '{':
		var page struct {
			Results *[]core.Transaction `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedShape, err)
		}
		if page.Results == nil {
			return nil, fmt.Errorf("%w: object without results", ErrUnexpectedShape)
		}
		return *page.Results, nil
	default:
		return nil, fmt.Errorf("%w: %.20s", ErrUnexpectedShape, trimmed)
	}
}

// checkTransaction rejects records that decoded cleanly but break the
// amount or type rules every stored transaction satisfies.
func checkTransaction(tx core.Transaction) error {
	if err := core.ValidateAmount(tx.Amount); err != nil {
		return fmt.Errorf("%w: transaction %q amount %s: %w", ErrUnexpectedShape, tx.ID, tx.Amount, err)
	}
	if !tx.Type.IsValid() {
		return fmt.Errorf("%w: transaction %q type %q: %w", ErrUnexpectedShape, tx.ID, tx.Type, core.ErrInvalidType)
	}
	return nil
}

func checkStat(st core.MonthlyStat) error {
	if st.TotalIncome.IsNegative() || st.TotalExpenses.IsNegative() || st.TransactionCount < 0 {
		return fmt.Errorf("%w: negative totals for month %q", ErrUnexpectedShape, st.Month)
	}
	return nil
}
