// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// list filters from the query string and transaction bodies, which are shared
// by create (missing fields stay zero) and update (missing fields are kept).

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
	"moneytracker/internal/ports"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// ParseListFilter reads type, category, year and month from query.
// Empty values and "all" match everything.
func ParseListFilter(query url.Values) (ports.ListFilter, error) {
	var f ports.ListFilter

	if v := strings.TrimSpace(query.Get("type")); v != "" && v != "all" {
		t := core.TransactionType(v)
		if !t.IsValid() {
			return ports.ListFilter{}, fmt.Errorf("invalid type %q", v)
		}
		f.Type = t
	}
	if v := sanitizeInput(query.Get("category")); v != "" && v != "all" {
		f.Category = v
	}

	year, err := parseIntParam(query, "year", 1, 9999)
	if err != nil {
		return ports.ListFilter{}, err
	}
	month, err := parseIntParam(query, "month", 1, 12)
	if err != nil {
		return ports.ListFilter{}, err
	}
	f.Year, f.Month = year, month
	return f, nil
}

func parseIntParam(query url.Values, name string, lo, hi int) (int, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

// transactionRequest is the JSON body of POST and PUT. Absent fields are nil.
type transactionRequest struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Amount      json.RawMessage       `json:"amount"`
	Type        *core.TransactionType `json:"transaction_type"`
	Category    *string               `json:"category"`
	Date        *string               `json:"date"`
}

func decodeTransactionRequest(w http.ResponseWriter, r *http.Request) (transactionRequest, error) {
	var req transactionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errEmptyBody
		}
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	return req, nil
}

// applyTo overlays the fields present in req onto base and validates the
// result. The returned map is keyed by JSON field name and empty when the
// draft is valid.
func (req transactionRequest) applyTo(base core.TransactionDraft) (core.TransactionDraft, map[string]string) {
	draft := base
	fields := make(map[string]string)

	if req.Title != nil {
		draft.Title = sanitizeInput(*req.Title)
	}
	if req.Description != nil {
		draft.Description = sanitizeInput(*req.Description)
	}
	if req.Type != nil {
		draft.Type = core.TransactionType(strings.TrimSpace(string(*req.Type)))
	}
	if req.Category != nil {
		draft.Category = sanitizeInput(*req.Category)
	}
	if present(req.Amount) {
		amount, err := parseAmountField(req.Amount)
		if err != nil {
			fields["amount"] = err.Error()
		} else {
			draft.Amount = amount
		}
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			fields["date"] = err.Error()
		} else {
			draft.Date = date
		}
	}

	// Parse failures win over the generic message for the same field.
	for k, v := range draft.ValidationErrors() {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return draft, fields
}

func present(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

// parseAmountField accepts the amount as a JSON string or number.
func parseAmountField(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, core.ErrInvalidAmount
		}
	}
	return core.ParseAmount(s)
}

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
