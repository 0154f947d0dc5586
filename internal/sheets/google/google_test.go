package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"

	"planeja/internal/sheets"
)

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ", "Listas", "Produtos", goption.WithoutAuthentication())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), "sheet-id", "Listas", "Produtos")
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTabRange(t *testing.T) {
	tests := []struct {
		tab  string
		want string
	}{
		{"Listas", "'Listas'!A1:Z"},
		{"Minhas listas", "'Minhas listas'!A1:Z"},
		{"Lista d'água", "'Lista d''água'!A1:Z"},
	}
	for _, tt := range tests {
		if got := tabRange(tt.tab); got != tt.want {
			t.Errorf("tabRange(%q) = %q, want %q", tt.tab, got, tt.want)
		}
	}
}

type recorded struct {
	path string
	body map[string]any
}

func TestWriteClearsThenUpdates(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		calls = append(calls, recorded{path: r.URL.Path, body: body})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), "sheet-id", "Listas", "Produtos",
		goption.WithEndpoint(srv.URL+"/"), goption.WithoutAuthentication(), goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	snap := sheets.Snapshot{
		Lists:    [][]any{sheets.ListHeader, {"l1", "Casa"}},
		Products: [][]any{sheets.ProductHeader},
	}
	if err := c.Write(context.Background(), snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if !strings.HasSuffix(calls[0].path, "/spreadsheets/sheet-id/values:batchClear") {
		t.Errorf("first call = %s, want batchClear", calls[0].path)
	}
	if !strings.HasSuffix(calls[1].path, "/spreadsheets/sheet-id/values:batchUpdate") {
		t.Errorf("second call = %s, want batchUpdate", calls[1].path)
	}

	update := calls[1].body
	if update["valueInputOption"] != "RAW" {
		t.Errorf("valueInputOption = %v", update["valueInputOption"])
	}
	data, _ := update["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("data ranges = %d, want 2", len(data))
	}
	first, _ := data[0].(map[string]any)
	if first["range"] != "'Listas'!A1:Z" {
		t.Errorf("first range = %v", first["range"])
	}
	if values, _ := first["values"].([]any); len(values) != 2 {
		t.Errorf("list rows = %d, want 2", len(values))
	}
}

func TestWriteReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"caller does not have permission"}}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), "sheet-id", "Listas", "Produtos",
		goption.WithEndpoint(srv.URL+"/"), goption.WithoutAuthentication(), goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = c.Write(context.Background(), sheets.Snapshot{})
	if err == nil || !strings.Contains(err.Error(), "clear tabs") {
		t.Fatalf("expected clear error, got %v", err)
	}
}
