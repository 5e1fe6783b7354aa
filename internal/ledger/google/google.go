// Package google mirrors billing rows to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"minder/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Columns A:F hold session id, date, child, parent, type, total.
const rowWidth = "A%d:F%d"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var (
	_ ledger.Writer  = (*Client)(nil)
	_ ledger.Remover = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Sessions").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Sessions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using service account
// credentials from the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Append upserts the billing row for e.SessionID. Column A keys the sheet
// by session id, so re-syncing a session overwrites its existing row
// instead of duplicating it.
func (c *Client) Append(ctx context.Context, e ledger.Entry) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(e.SessionID) == "" {
		return "", errors.New("entry has no session id")
	}

	row, found, err := c.findRow(ctx, e.SessionID)
	if err != nil {
		return "", err
	}
	if !found {
		// Next empty row after the existing ones.
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A:A")).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", c.sheetName, err)
		}
		row = len(resp.Values) + 1
	}

	euros := float64(e.Total.Cents) / 100.0
	dataRange := c.rng(fmt.Sprintf(rowWidth, row, row))
	vr := &gsheet.ValueRange{Values: [][]any{{
		e.SessionID,
		e.Date.Format("2006-01-02"),
		e.ChildName,
		e.ParentName,
		string(e.Type),
		euros,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write %s: %w", dataRange, err)
	}

	slog.InfoContext(ctx, "ledger row written", "session_id", e.SessionID, "range", dataRange)
	return dataRange, nil
}

// Remove clears the billing row for the given session id. A missing row
// is not an error.
func (c *Client) Remove(ctx context.Context, sessionID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, found, err := c.findRow(ctx, sessionID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	dataRange := c.rng(fmt.Sprintf(rowWidth, row, row))
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, dataRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", dataRange, err)
	}

	slog.InfoContext(ctx, "ledger row cleared", "session_id", sessionID, "range", dataRange)
	return nil
}

// findRow scans column A for the session id and returns its 1-based row.
func (c *Client) findRow(ctx context.Context, sessionID string) (int, bool, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == sessionID {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

func (c *Client) rng(cells string) string {
	return fmt.Sprintf("%s!%s", c.sheetName, cells)
}
