package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "planeja/internal/log"
	"planeja/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	listsTab      string
	productsTab   string
}

// Ensure interface conformance
var _ sheets.Mirror = (*Client)(nil)

// New creates a Sheets client writing to the two tabs of spreadsheetID.
// Without options, credentials come from the environment:
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, listsTab, productsTab string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	if len(opts) == 0 {
		creds, err := credentialsFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully",
		applog.FieldComponent, applog.ComponentSheets, "lists_tab", listsTab, "products_tab", productsTab)
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		listsTab:      listsTab,
		productsTab:   productsTab,
	}, nil
}

func credentialsFromEnv(ctx context.Context) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials", applog.FieldComponent, applog.ComponentSheets)
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read credentials file",
			applog.FieldComponent, applog.ComponentSheets, "path", serviceAccountFile, "size", len(data))
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// Write clears both tabs and writes the snapshot in a single batch, so the
// sheet never shows rows from deleted lists.
func (c *Client) Write(ctx context.Context, snap sheets.Snapshot) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	listsRange := tabRange(c.listsTab)
	productsRange := tabRange(c.productsTab)

	_, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, &gsheet.BatchClearValuesRequest{
		Ranges: []string{listsRange, productsRange},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear tabs %s, %s: %w", c.listsTab, c.productsTab, err)
	}

	_, err = c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data: []*gsheet.ValueRange{
			{Range: listsRange, Values: snap.Lists},
			{Range: productsRange, Values: snap.Products},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update tabs %s, %s: %w", c.listsTab, c.productsTab, err)
	}
	return nil
}

// tabRange quotes the tab name so names with spaces or accents stay valid
// A1 notation.
func tabRange(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!A1:Z"
}
