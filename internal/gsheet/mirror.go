package gsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"finflow/internal/core"
	"finflow/internal/ingest"
)

// Mirror appends transactions to a Google Sheet. It is a one-way,
// best-effort copy for people who want their data visible in a
// spreadsheet; the local store stays the source of truth.
type Mirror struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

type Options struct {
	SpreadsheetID string
	SheetName     string
	// CredentialsJSON wins over CredentialsFile when both are set.
	CredentialsJSON string
	CredentialsFile string
}

func NewMirror(ctx context.Context, opts Options) (*Mirror, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Mirror{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when the options carry nothing.
func newSheetsService(ctx context.Context, opts Options) (*sheets.Service, error) {
	credentialsJSON := strings.TrimSpace(opts.CredentialsJSON)
	credentialsFile := strings.TrimSpace(opts.CredentialsFile)
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var creds []byte
	var err error
	switch {
	case credentialsJSON != "":
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		creds, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := sheets.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Append mirrors the given transactions as new rows, one per record,
// in the same column order the CSV export uses.
func (m *Mirror) Append(ctx context.Context, records []core.Transaction) error {
	if m.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(records) == 0 {
		return nil
	}

	values := make([][]any, 0, len(records))
	for _, tx := range records {
		values = append(values, []any{
			tx.Date.Format(ingest.DateLayout),
			string(tx.Type),
			tx.Account,
			tx.Category,
			tx.Subcategory,
			tx.Amount.Units(),
			tx.Comment,
		})
	}

	rng := fmt.Sprintf("%s!A:G", m.sheetName)
	vr := &sheets.ValueRange{Values: values}
	_, err := m.svc.Spreadsheets.Values.Append(m.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", m.sheetName, err)
	}

	slog.InfoContext(ctx, "Mirrored transactions to Google Sheets",
		"count", len(records),
		"sheet", m.sheetName)
	return nil
}
