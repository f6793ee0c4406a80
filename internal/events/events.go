// Package events shapes the raw event collections returned by the backend
// into rows the console can render. The backend aggregates blockchain events
// into loosely structured documents, so every field is treated as optional:
// a malformed entry degrades to placeholders or is dropped, it never fails
// the page.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Placeholder is rendered for any cell whose value is missing or unusable.
const Placeholder = "N/A"

const (
	abbrevPrefix = 6
	abbrevSuffix = 4
)

var ErrAdminEventsShape = fmt.Errorf("admin_events is not an array")

type CertificateRow struct {
	ID        string
	Recipient string
	Course    string
	Event     string
	Status    string
}

type AdminRow struct {
	Address      string
	AddressShort string
	Status       string
	Event        string
	Timestamp    string
	TxHash       string
	TxHashShort  string
	// TxURL is the block-explorer link, empty when there is no hash to
	// link to.
	TxURL string
}

// Abbreviate shortens long hex strings for display. Strings shorter than
// prefix+suffix are returned unmodified.
func Abbreviate(s string, prefix, suffix int) string {
	if len(s) < prefix+suffix {
		return s
	}
	return s[:prefix] + "..." + s[len(s)-suffix:]
}

// ParseCertificateRows shapes the certificate_events collection. A
// non-array collection yields no rows; non-object entries are dropped and
// logged; missing fields render as placeholders.
func ParseCertificateRows(raw json.RawMessage) []CertificateRow {
	entries, err := arrayEntries(raw)
	if err != nil {
		log.WithError(err).Warn("certificate events are not an array, rendering none")
		return nil
	}

	rows := make([]CertificateRow, 0, len(entries))
	for i, entry := range entries {
		obj, err := objectFields(entry)
		if err != nil {
			log.WithError(err).WithField("row", i).Warn("dropping malformed certificate event")
			continue
		}
		rows = append(rows, CertificateRow{
			ID:        stringOr(obj, "id", Placeholder),
			Recipient: stringOr(obj, "recipient", Placeholder),
			Course:    stringOr(obj, "course", Placeholder),
			Event:     stringOr(obj, "event", Placeholder),
			Status:    revokedStatus(obj),
		})
	}
	return rows
}

// ParseAdminRows shapes the admin_events collection. The collection itself
// must be an array; anything else is a structural error the caller surfaces
// to the user. Rows are as tolerant as certificate rows.
func ParseAdminRows(raw json.RawMessage, txURLTemplate string) ([]AdminRow, error) {
	entries, err := arrayEntries(raw)
	if err != nil {
		return nil, ErrAdminEventsShape
	}

	rows := make([]AdminRow, 0, len(entries))
	for i, entry := range entries {
		obj, err := objectFields(entry)
		if err != nil {
			log.WithError(err).WithField("row", i).Warn("dropping malformed admin event")
			continue
		}

		row := AdminRow{
			Address:   stringOr(obj, "address", Placeholder),
			Status:    adminStatus(obj),
			Event:     stringOr(obj, "event", Placeholder),
			Timestamp: timestampOr(obj, "timestamp", Placeholder),
		}
		row.AddressShort = Abbreviate(row.Address, abbrevPrefix, abbrevSuffix)

		if hash, ok := stringField(obj, "txHash"); ok && hash != "" {
			row.TxHash = hash
			row.TxHashShort = Abbreviate(hash, abbrevPrefix, abbrevSuffix)
			if txURLTemplate != "" {
				row.TxURL = fmt.Sprintf(txURLTemplate, hash)
			}
		} else {
			row.TxHashShort = Placeholder
		}

		rows = append(rows, row)
	}
	return rows, nil
}

func arrayEntries(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("collection is absent")
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func objectFields(entry json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(entry, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func stringOr(obj map[string]json.RawMessage, key, fallback string) string {
	if s, ok := stringField(obj, key); ok && s != "" {
		return s
	}
	return fallback
}

func timestampOr(obj map[string]json.RawMessage, key, fallback string) string {
	s, ok := stringField(obj, key)
	if !ok {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fallback
	}
	return t.Format("2006-01-02 15:04:05")
}

func adminStatus(obj map[string]json.RawMessage) string {
	switch s, _ := stringField(obj, "status"); s {
	case "active":
		return "Active"
	case "removed":
		return "Removed"
	default:
		return "Unknown"
	}
}

func revokedStatus(obj map[string]json.RawMessage) string {
	raw, ok := obj["revoked"]
	if !ok {
		return "Valid"
	}
	var revoked bool
	if err := json.Unmarshal(raw, &revoked); err != nil {
		return "Valid"
	}
	if revoked {
		return "Revoked"
	}
	return "Valid"
}
