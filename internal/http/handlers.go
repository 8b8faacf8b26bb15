package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"moneytracker/internal/core"
	applog "moneytracker/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseListFilter(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	txs, err := s.service.List(ctx, filter)
	if err != nil {
		s.internalError(w, r, "List transactions failed", err, applog.OpList)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewJSONResponse().Body(txs).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tx, err := s.service.Get(ctx, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.notFound(w, r, err)
	case err != nil:
		s.internalError(w, r, "Get transaction failed", err, applog.OpRead)
	default:
		NewJSONResponse().Body(tx).Write(w)
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTransactionRequest(w, r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	draft, fields := req.applyTo(core.TransactionDraft{})
	if len(fields) > 0 {
		s.invalid(w, r, fields)
		return
	}

	tx, err := s.service.Create(r.Context(), draft)
	if err != nil {
		s.internalError(w, r, "Create transaction failed", err, applog.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(tx).Write(w)
}

// handleUpdateTransaction overwrites only the fields present in the body.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.service.Get(r.Context(), id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.notFound(w, r, err)
		return
	case err != nil:
		s.internalError(w, r, "Load transaction failed", err, applog.OpUpdate)
		return
	}

	req, err := decodeTransactionRequest(w, r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	draft, fields := req.applyTo(existing.Draft())
	if len(fields) > 0 {
		s.invalid(w, r, fields)
		return
	}

	tx, err := s.service.Update(r.Context(), id, draft)
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.notFound(w, r, err)
	case err != nil:
		s.internalError(w, r, "Update transaction failed", err, applog.OpUpdate)
	default:
		NewJSONResponse().Body(tx).Write(w)
	}
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := s.service.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.notFound(w, r, err)
	case err != nil:
		s.internalError(w, r, "Delete transaction failed", err, applog.OpDelete)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	stats, err := s.service.MonthlyStats(ctx)
	if err != nil {
		s.internalError(w, r, "Monthly stats failed", err, applog.OpRead)
		return
	}
	if stats == nil {
		stats = []core.MonthlyStat{}
	}
	NewJSONResponse().Body(stats).Write(w)
}

func (s *Server) handleCurrentMonthSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := s.service.CurrentMonthSummary(ctx)
	if err != nil {
		s.internalError(w, r, "Current month summary failed", err, applog.OpRead)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

// internalError logs err with the request's logger and hides it from the
// client.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error, op string) {
	errType := applog.ErrorTypeInternal
	if errors.Is(err, context.DeadlineExceeded) {
		errType = applog.ErrorTypeTimeout
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), msg,
		applog.FieldError, err.Error(),
		applog.FieldErrorType, errType,
		applog.FieldOperation, op)
	InternalServerError("internal server error").Write(w)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, err error) {
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Transaction not found",
		applog.FieldError, err.Error(),
		applog.FieldErrorType, applog.ErrorTypeNotFound)
	NotFoundError("transaction not found").Write(w)
}

func (s *Server) invalid(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Transaction rejected",
		applog.FieldErrorType, applog.ErrorTypeValidation,
		applog.FieldCount, len(fields))
	ValidationError(fields).Write(w)
}
