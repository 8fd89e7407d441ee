package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"nbbang/internal/config"
	"nbbang/internal/report"
)

// Client appends settlement reports to a Google spreadsheet, one row per
// participant. Rows are append-only; re-saving a meeting adds a newer block
// rather than rewriting history.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ report.SettlementWriter = (*Client)(nil)

// New creates a Sheets client from service account credentials. Inline JSON
// takes precedence over a credentials file.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.GoogleSpreadsheetID) == "" {
		return nil, errors.New("missing Google spreadsheet ID")
	}

	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets report client created",
		"sheet", cfg.GoogleReportSheet)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleReportSheet,
	}, nil
}

func loadCredentials(cfg *config.Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		data, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (c *Client) AppendSettlement(ctx context.Context, r report.Settlement) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	savedAt := r.SavedAt.UTC().Format(time.RFC3339)
	values := make([][]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		values = append(values, []any{
			r.EntryCode, r.Title, savedAt, r.TotalUse,
			row.UserName, row.UpFront, row.Share, row.Net,
		})
	}
	if len(values) == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append settlement to sheet %s: %w", c.sheetName, err)
	}
	return nil
}
