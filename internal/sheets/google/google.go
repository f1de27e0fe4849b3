package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"nutritrack/internal/core"
	ports "nutritrack/internal/sheets"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client appends diary rows to a Google Spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	diarySheet    string
}

// Ensure interface conformance
var _ ports.DiaryWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Auth: GOOGLE_OAUTH_CLIENT_JSON/GOOGLE_OAUTH_CLIENT_FILE plus
// GOOGLE_OAUTH_TOKEN_JSON/GOOGLE_OAUTH_TOKEN_FILE (see cmd/oauth-init).
// Optional: GOOGLE_DIARY_SHEET_NAME (default "Diary").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	diarySheet := strings.TrimSpace(os.Getenv("GOOGLE_DIARY_SHEET_NAME"))
	if diarySheet == "" {
		diarySheet = "Diary"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		diarySheet:    diarySheet,
	}, nil
}

// newSheetsService builds a Sheets service from the OAuth client/token pair
// produced by cmd/oauth-init.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := readEnvJSON("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	tokenJSON, err := readEnvJSON("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}

	cfg, err := googleoauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithTokenSource(cfg.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets diary client initialized")
	return svc, nil
}

func readEnvJSON(jsonKey, fileKey string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonKey)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileKey)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fileKey, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("set %s or %s", jsonKey, fileKey)
}

// AppendEntry implements sheets.DiaryWriter.
func (c *Client) AppendEntry(ctx context.Context, e core.FoodLogEntry) (string, error) {
	row := diaryRow(e)
	rangeRef := c.diarySheet + "!A:I"

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rangeRef, &gsheet.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append diary row: %w", err)
	}

	rowRef := rangeRef
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		rowRef = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Diary row appended",
		"sheets_ref", rowRef,
		"product_name", e.Name,
		"meal_timing", string(e.Meal))

	return rowRef, nil
}

// diaryRow renders an entry as a spreadsheet row:
// date, time, meal, product, quantity (g), calories, protein, carbs, fat.
func diaryRow(e core.FoodLogEntry) []any {
	return []any{
		e.LoggedAt.UTC().Format("2006-01-02"),
		e.LoggedAt.UTC().Format("15:04"),
		string(e.Meal),
		e.Name,
		formatQuantity(e.QuantityG),
		formatQuantity(e.Calories),
		formatQuantity(e.Protein),
		formatQuantity(e.Carbs),
		formatQuantity(e.Fat),
	}
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
