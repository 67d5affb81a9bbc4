// Package file implements JSON-file-backed storage for identities and the
// attendance ledger. The on-disk layout mirrors what the browser version of
// the tool kept in localStorage: a name-to-descriptor object and a flat
// array of attendance records, so existing exports import cleanly.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	identitiesFile = "identities.json"
	ledgerFile     = "attendance.json"
)

// readJSON unmarshals a JSON file into target. A missing file leaves target
// untouched; an unreadable or unparsable file is reported via corruptErr.
func readJSON(dir, name string, target any, corruptErr error) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", corruptErr, name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", corruptErr, name, err)
	}
	return nil
}

// writeJSON marshals target and atomically replaces the named file, so a
// concurrent load never observes a partial write.
func writeJSON(dir, name string, target any) error {
	data, err := json.MarshalIndent(target, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// ensureDir creates the data directory if needed.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}
