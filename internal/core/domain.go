package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the wire and storage layout of a transaction date.
const DateLayout = "2006-01-02"

// MonthLayout is the layout of a month key (YYYY-MM).
const MonthLayout = "2006-01"

const maxTitleLength = 200

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Transaction is a single income or expense event.
	Transaction struct {
		ID          string          `json:"id"`
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"transaction_type"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"created_at,omitzero"`
		UpdatedAt   time.Time       `json:"updated_at,omitzero"`
	}

	// TransactionDraft is a transaction that has not been persisted yet.
	TransactionDraft struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"transaction_type"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyTitle       = errors.New("empty title")
	ErrTitleTooLong     = fmt.Errorf("title too long (max %d characters)", maxTitleLength)
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrCategoryMismatch = errors.New("category does not belong to transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrNotFound         = errors.New("transaction not found")
	ErrInvalidID        = errors.New("invalid transaction id")
)

// Types lists the transaction types in display order.
func Types() []TransactionType {
	return []TransactionType{Income, Expense}
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

// Label returns the Spanish display name of the type.
func (t TransactionType) Label() string {
	switch t {
	case Income:
		return "Ingreso"
	case Expense:
		return "Egreso"
	default:
		return string(t)
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day, keeping t's own year, month and day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM key the date belongs to.
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalJSON accepts the id as a JSON string or a JSON number and keeps
// its text verbatim, so 5 and "5" name the same transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	var wire struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	id, err := parseID(wire.ID)
	if err != nil {
		return err
	}
	*t = Transaction(wire.plain)
	t.ID = id
	return nil
}

func parseID(raw json.RawMessage) (string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return "", nil
	}
	if strings.HasPrefix(s, `"`) {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidID, s)
		}
		return id, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidID, s)
	}
	return n.String(), nil
}

// MonthKey is the YYYY-MM month the transaction belongs to.
func (t Transaction) MonthKey() string {
	return t.Date.MonthKey()
}

// Draft strips the backend-owned fields from t.
func (t Transaction) Draft() TransactionDraft {
	return TransactionDraft{
		Title:       t.Title,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
		Date:        t.Date,
	}
}

func (t Transaction) Validate() error {
	return t.Draft().Validate()
}

func (d TransactionDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if len([]rune(d.Title)) > maxTitleLength {
		return ErrTitleTooLong
	}
	if err := ValidateAmount(d.Amount); err != nil {
		return err
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, d.Type)
	}
	if !IsCategoryOf(d.Type, d.Category) {
		return fmt.Errorf("%w: %q is not a %s category", ErrCategoryMismatch, d.Category, d.Type)
	}
	return d.Date.Validate()
}

// ValidationErrors maps each invalid draft field to its message.
func (d TransactionDraft) ValidationErrors() map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(d.Title) == "" {
		fields["title"] = ErrEmptyTitle.Error()
	} else if len([]rune(d.Title)) > maxTitleLength {
		fields["title"] = ErrTitleTooLong.Error()
	}
	if err := ValidateAmount(d.Amount); err != nil {
		fields["amount"] = err.Error()
	}
	if !d.Type.IsValid() {
		fields["transaction_type"] = ErrInvalidType.Error()
	} else if !IsCategoryOf(d.Type, d.Category) {
		fields["category"] = ErrCategoryMismatch.Error()
	}
	if d.Date.IsZero() {
		fields["date"] = ErrInvalidDate.Error()
	}
	return fields
}

// ParseMonthKey validates a YYYY-MM key and returns its year and month.
func ParseMonthKey(key string) (year, month int, err error) {
	t, err := time.Parse(MonthLayout, key)
	if err != nil || len(key) != len(MonthLayout) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonth, key)
	}
	return t.Year(), int(t.Month()), nil
}

// MonthKeyOf formats year and month as YYYY-MM.
func MonthKeyOf(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
