package sqlite

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/rentals/internal/atomicfile"
)

// JSONL file names in the data directory.
const (
	apartmentsJSONL = "apartments.jsonl"
	contractsJSONL  = "contracts.jsonl"
	usersJSONL      = "users.jsonl"
	tokensJSONL     = "tokens.jsonl"
)

// jsonlTable ties a table to the JSONL file that persists it and the
// columns read back on load.
type jsonlTable struct {
	file    string
	table   string
	columns []string
}

// jsonlTables lists every persisted table. Tables with foreign keys load
// after the tables they reference.
var jsonlTables = []jsonlTable{
	{apartmentsJSONL, "apartments", []string{"apartment_id", "number", "level", "status", "created_at", "updated_at"}},
	{contractsJSONL, "contracts", []string{"contract_id", "apartment_id", "start_date", "end_date", "active", "created_at", "updated_at"}},
	{usersJSONL, "users", []string{"user_id", "full_name", "email", "password_hash", "created_at"}},
	{tokensJSONL, "tokens", []string{"token", "user_id", "expires_at", "created_at"}},
}

// lookupTable returns the JSONL mapping of table.
func lookupTable(table string) (jsonlTable, error) {
	for _, t := range jsonlTables {
		if t.table == table {
			return t, nil
		}
	}
	return jsonlTable{}, fmt.Errorf("no JSONL file for table %q", table)
}

func (t jsonlTable) path(dataDir string) string {
	return filepath.Join(dataDir, t.file)
}

// readRecords returns the table's records from dataDir. Blank and malformed
// lines are dropped; a missing file has no records.
func (t jsonlTable) readRecords(dataDir string) ([]json.RawMessage, error) {
	f, err := os.Open(t.path(dataDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", t.file, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Bytes(); json.Valid(line) {
			records = append(records, json.RawMessage(append([]byte(nil), line...)))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", t.file, err)
	}
	return records, nil
}

// writeRecords replaces the table's file in dataDir with records, one per
// line.
func (t jsonlTable) writeRecords(dataDir string, records []json.RawMessage) error {
	return atomicfile.WriteFunc(t.path(dataDir), 0o644, func(w io.Writer) error {
		for _, rec := range records {
			if _, err := w.Write(rec); err != nil {
				return fmt.Errorf("writing %s record: %w", t.table, err)
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("writing %s record: %w", t.table, err)
			}
		}
		return nil
	})
}
