package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finflow/internal/core"
	"finflow/internal/ingest"
	"finflow/internal/store"
)

// transactionJSON is the wire form of a transaction. Dates travel as
// RFC 3339, amounts as decimal strings to keep cents exact.
type transactionJSON struct {
	ID          int64  `json:"id,omitempty"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Account     string `json:"account"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Amount      string `json:"amount"`
	Comment     string `json:"comment"`
}

func toJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		Date:        tx.Date.UTC().Format(time.RFC3339),
		Type:        string(tx.Type),
		Account:     tx.Account,
		Category:    tx.Category,
		Subcategory: tx.Subcategory,
		Amount:      core.FormatCents(tx.Amount.Cents),
		Comment:     tx.Comment,
	}
}

// fromJSON converts the wire form into a transaction, collecting
// per-field problems instead of stopping at the first one.
func fromJSON(in transactionJSON) (core.Transaction, map[string]string) {
	fields := make(map[string]string)
	var tx core.Transaction

	date, err := ingest.ParseDate(in.Date)
	if err != nil {
		fields["date"] = "invalid date"
	} else {
		tx.Date = date
	}

	typ, err := core.ParseType(in.Type)
	if err != nil {
		fields["type"] = "must be income or expense"
	} else {
		tx.Type = typ
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(in.Amount))
	if err != nil {
		fields["amount"] = "must be a positive decimal amount"
	} else {
		tx.Amount = core.Money{Cents: cents}
	}

	tx.Account = strings.TrimSpace(in.Account)
	tx.Category = strings.TrimSpace(in.Category)
	tx.Subcategory = strings.TrimSpace(in.Subcategory)
	tx.Comment = strings.TrimSpace(in.Comment)

	if len(fields) > 0 {
		return core.Transaction{}, fields
	}
	return tx, nil
}

// validationFields maps a domain validation error onto field names.
func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		fields["date"] = err.Error()
	case errors.Is(err, core.ErrInvalidType):
		fields["type"] = err.Error()
	case errors.Is(err, core.ErrInvalidAmount):
		fields["amount"] = err.Error()
	case errors.Is(err, core.ErrEmptyAccount):
		fields["account"] = err.Error()
	case errors.Is(err, core.ErrEmptyCategory):
		fields["category"] = err.Error()
	case errors.Is(err, core.ErrEmptySubcategory):
		fields["subcategory"] = err.Error()
	default:
		fields["record"] = err.Error()
	}
	return fields
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	case http.MethodDelete:
		s.deleteTransactions(w, r)
	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	out := make([]transactionJSON, 0, len(records))
	for _, tx := range records {
		out = append(out, toJSON(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tx, fields := fromJSON(in)
	if fields != nil {
		writeValidationError(w, fields)
		return
	}

	saved, err := s.importer.Add(r.Context(), tx)
	if err != nil {
		if f := validationFields(err); len(f) > 0 && f["record"] == "" {
			writeValidationError(w, f)
			return
		}
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}
	writeJSON(w, http.StatusCreated, toJSON(saved))
}

func (s *Server) deleteTransactions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "no IDs provided")
		return
	}
	if err := s.store.BulkDelete(r.Context(), body.IDs); err != nil {
		slog.ErrorContext(r.Context(), "Delete transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": len(body.IDs)})
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, "PUT")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/transactions/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	var in transactionJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tx, fields := fromJSON(in)
	if fields != nil {
		writeValidationError(w, fields)
		return
	}
	tx.ID = id
	if err := tx.Validate(); err != nil {
		writeValidationError(w, validationFields(err))
		return
	}

	if err := s.store.Update(r.Context(), tx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("transaction %d not found", id))
			return
		}
		slog.ErrorContext(r.Context(), "Update transaction failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}
	writeJSON(w, http.StatusOK, toJSON(tx))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	reader := r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file upload")
			return
		}
		defer file.Close()
		reader = file
	}

	summary, rowErrs, err := s.importer.Import(r.Context(), reader)
	if err != nil {
		var fileErr *ingest.FileError
		if errors.As(err, &fileErr) {
			writeError(w, http.StatusBadRequest, fileErr.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	type rowErrorJSON struct {
		Line   int    `json:"line"`
		Reason string `json:"reason"`
	}
	resp := struct {
		Accepted   int            `json:"accepted"`
		Rejected   int            `json:"rejected"`
		Duplicates int            `json:"duplicates"`
		Errors     []rowErrorJSON `json:"errors,omitempty"`
	}{
		Accepted:   summary.Accepted,
		Rejected:   summary.Rejected,
		Duplicates: summary.Duplicates,
	}
	for _, re := range rowErrs {
		resp.Errors = append(resp.Errors, rowErrorJSON{Line: re.Line, Reason: re.Reason})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if _, err := s.importer.Export(r.Context(), w); err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	if err := s.store.Clear(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Clear failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
