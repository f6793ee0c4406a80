package events

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		in     string
		prefix int
		suffix int
		want   string
	}{
		{"0x1234567890abcdef", 6, 4, "0x1234...cdef"},
		{"short", 6, 4, "short"},
		{"exactlyten", 6, 4, "exactl...yten"}, // boundary: len == prefix+suffix
		{"", 6, 4, ""},
	}
	for _, tt := range tests {
		if got := Abbreviate(tt.in, tt.prefix, tt.suffix); got != tt.want {
			t.Errorf("Abbreviate(%q, %d, %d) = %q, want %q", tt.in, tt.prefix, tt.suffix, got, tt.want)
		}
	}
}

func TestParseAdminRowsDropsNonObjectEntriesInOrder(t *testing.T) {
	raw := json.RawMessage(`[
		{"address":"0xaaa","status":"active"},
		"garbage",
		42,
		{"address":"0xbbb","status":"removed"}
	]`)

	rows, err := ParseAdminRows(raw, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Address != "0xaaa" || rows[1].Address != "0xbbb" {
		t.Errorf("row order broken: %+v", rows)
	}
	if rows[0].Status != "Active" || rows[1].Status != "Removed" {
		t.Errorf("statuses: %q, %q", rows[0].Status, rows[1].Status)
	}
}

func TestParseAdminRowsPlaceholders(t *testing.T) {
	raw := json.RawMessage(`[{"status":"frozen","timestamp":"not-a-date","txHash":""}]`)

	rows, err := ParseAdminRows(raw, "https://sepolia.etherscan.io/tx/%s")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	row := rows[0]
	if row.Address != Placeholder {
		t.Errorf("address = %q, want placeholder", row.Address)
	}
	if row.Status != "Unknown" {
		t.Errorf("status = %q, want Unknown", row.Status)
	}
	if row.Timestamp != Placeholder {
		t.Errorf("timestamp = %q, want placeholder", row.Timestamp)
	}
	if row.TxHashShort != Placeholder || row.TxURL != "" {
		t.Errorf("missing hash must have no link: %+v", row)
	}
}

func TestParseAdminRowsBuildsExplorerLink(t *testing.T) {
	raw := json.RawMessage(`[{"address":"0xaaa","status":"active","txHash":"0xdeadbeef","timestamp":"2024-05-01T10:30:00Z"}]`)

	rows, err := ParseAdminRows(raw, "https://sepolia.etherscan.io/tx/%s")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	row := rows[0]
	if row.TxURL != "https://sepolia.etherscan.io/tx/0xdeadbeef" {
		t.Errorf("txURL = %q", row.TxURL)
	}
	if !strings.Contains(row.TxHashShort, "...") {
		t.Errorf("hash not abbreviated: %q", row.TxHashShort)
	}
	if row.Timestamp != "2024-05-01 10:30:00" {
		t.Errorf("timestamp = %q", row.Timestamp)
	}
}

func TestParseAdminRowsRejectsNonArray(t *testing.T) {
	for _, raw := range []string{`"nope"`, `{"a":1}`, `42`, ``} {
		_, err := ParseAdminRows(json.RawMessage(raw), "")
		if !errors.Is(err, ErrAdminEventsShape) {
			t.Errorf("raw %q: err = %v, want ErrAdminEventsShape", raw, err)
		}
	}
}

func TestParseCertificateRows(t *testing.T) {
	raw := json.RawMessage(`[
		{"id":"C1","recipient":"Alice","course":"Math","event":"CertificateIssued","revoked":false},
		{"id":"C2","revoked":true},
		"junk",
		{"revoked":"maybe"}
	]`)

	rows := ParseCertificateRows(raw)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Status != "Valid" || rows[1].Status != "Revoked" {
		t.Errorf("statuses: %+v", rows)
	}
	if rows[1].Recipient != Placeholder || rows[1].Course != Placeholder {
		t.Errorf("missing fields should be placeholders: %+v", rows[1])
	}
	// Unparseable revoked flag degrades to Valid, not an error.
	if rows[2].Status != "Valid" || rows[2].ID != Placeholder {
		t.Errorf("malformed row degraded wrong: %+v", rows[2])
	}
}

func TestParseCertificateRowsToleratesNonArray(t *testing.T) {
	if rows := ParseCertificateRows(json.RawMessage(`{"oops":true}`)); len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
	if rows := ParseCertificateRows(nil); len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
