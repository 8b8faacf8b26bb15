package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"moneytracker/internal/core"
)

const txJSON = `{"id":"a1","title":"Nómina","description":"","amount":"1500000.00","transaction_type":"income","category":"salary","date":"2024-01-05"}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.Client(), srv.URL+DefaultBasePath, time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(nil, "not a url", time.Second)
	require.ErrorIs(t, err, ErrBaseURL)
}

func TestListTransactionsBareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/transactions/", r.URL.Path)
		_, _ = io.WriteString(w, "["+txJSON+"]")
	})

	txs, err := c.ListTransactions(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "a1", txs[0].ID)
	require.True(t, txs[0].Amount.Equal(decimal.NewFromInt(1500000)))
	require.Equal(t, "2024-01", txs[0].MonthKey())
}

func TestListTransactionsPaginatedEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"count":1,"next":null,"previous":null,"results":[`+txJSON+`]}`)
	})

	txs, err := c.ListTransactions(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, txs, 1)
}

func TestListTransactionsSendsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "expense", r.URL.Query().Get("type"))
		require.Equal(t, "2", r.URL.Query().Get("month"))
		_, _ = io.WriteString(w, `[]`)
	})

	txs, err := c.ListTransactions(context.Background(), url.Values{"type": {"expense"}, "month": {"2"}})
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestListTransactionsRejectsBadShapes(t *testing.T) {
	for _, body := range []string{`"hello"`, `{"items":[]}`, `[{"amount":"abc"}]`, `not json`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		_, err := c.ListTransactions(context.Background(), nil)
		require.ErrorIs(t, err, ErrUnexpectedShape, body)
	}
}

func TestListTransactionsAcceptsNumericIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":5,"title":"Salary","description":"","amount":"1000.00","transaction_type":"income","category":"salary","date":"2024-01-05"}]`)
	})

	txs, err := c.ListTransactions(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "5", txs[0].ID)
	require.True(t, txs[0].Amount.Equal(decimal.NewFromInt(1000)))
}

func TestListTransactionsRejectsOutOfRangeRecords(t *testing.T) {
	rows := map[string]string{
		"negative amount": `{"id":1,"title":"x","amount":"-400.00","transaction_type":"expense","category":"food","date":"2024-01-10"}`,
		"zero amount":     `{"id":2,"title":"x","amount":"0","transaction_type":"expense","category":"food","date":"2024-01-10"}`,
		"unknown type":    `{"id":3,"title":"x","amount":"10.00","transaction_type":"transfer","category":"food","date":"2024-01-10"}`,
	}
	for name, row := range rows {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "["+txJSON+","+row+"]")
			})
			_, err := c.ListTransactions(context.Background(), nil)
			require.ErrorIs(t, err, ErrUnexpectedShape)
		})
	}
}

func TestCreateTransactionRejectsNegativeEcho(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"n1","title":"x","amount":"-1.00","transaction_type":"income","category":"salary","date":"2024-01-05"}`)
	})

	_, err := c.CreateTransaction(context.Background(), core.TransactionDraft{Title: "x"})
	require.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestStatsRejectNegativeTotals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/transactions/monthly_stats/":
			_, _ = io.WriteString(w, `[{"month":"2024-01","total_income":"-5","total_expenses":"0","transaction_count":1}]`)
		default:
			_, _ = io.WriteString(w, `{"month":"2024-01","total_income":"0","total_expenses":"-3","transaction_count":1}`)
		}
	})

	_, err := c.MonthlyStats(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedShape)
	_, err = c.CurrentMonthSummary(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestMonthlyStatsAcceptsStringsAndNumbers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/transactions/monthly_stats/", r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"month":"2024-02","total_income":"0","total_expenses":"500.00","net_balance":"-500.00","transaction_count":1},
			{"month":"2024-01","total_income":1000,"total_expenses":200,"net_balance":800,"transaction_count":2}
		]`)
	})

	stats, err := c.MonthlyStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	require.Equal(t, "2024-02", stats[0].Month, "backend order is kept")
	require.True(t, stats[1].NetBalance().Equal(decimal.NewFromInt(800)))
}

func TestCurrentMonthSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"month":"2024-01","total_income":"10","total_expenses":"4","net_balance":"6","transaction_count":2}`)
	})

	s, err := c.CurrentMonthSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, s.TransactionCount)
	require.True(t, s.NetBalance().Equal(decimal.NewFromInt(6)))
}

func TestCreateTransaction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Nómina", body["title"])
		require.Equal(t, "2024-01-05", body["date"])
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, txJSON)
	})

	tx, err := c.CreateTransaction(context.Background(), core.TransactionDraft{
		Title:    "Nómina",
		Amount:   decimal.NewFromInt(1500000),
		Type:     core.Income,
		Category: "salary",
		Date:     core.NewDate(2024, 1, 5),
	})
	require.NoError(t, err)
	require.Equal(t, "a1", tx.ID)
}

func TestCreateTransactionValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid transaction","fields":{"amount":"invalid amount"}}`)
	})

	_, err := c.CreateTransaction(context.Background(), core.TransactionDraft{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusBadRequest, se.StatusCode)
	require.Equal(t, "invalid amount", se.Fields["amount"])
	require.Contains(t, err.Error(), "invalid transaction")
}

func TestDeleteTransaction(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteTransaction(context.Background(), "a1"))
	require.Equal(t, "/api/transactions/a1/", gotPath)
}

func TestDeleteTransactionNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	})

	err := c.DeleteTransaction(context.Background(), "nope")
	require.True(t, IsNotFound(err))
}
