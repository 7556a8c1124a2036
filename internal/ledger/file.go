package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLedger stores records as a single JSON array rewritten wholesale on each
// append. Call volume is human-interaction-rate, so simplicity wins over
// throughput. A failure to read the existing file (missing, corrupt) is
// treated as an empty log so that one bad byte on disk cannot wedge every
// future transfer; a failure to write propagates to the caller.
type FileLedger struct {
	mu   sync.Mutex
	path string
}

// NewFileLedger creates a file-backed ledger at the given path. The file is
// created on first append.
func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path}
}

// Append adds the record to the end of the stored array.
func (l *FileLedger) Append(ctx context.Context, rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.readAll()
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	// Write to a temp file in the same directory and rename so a crash
	// mid-write never truncates the existing log.
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("creating ledger temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing ledger temp file: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing ledger file: %w", err)
	}
	return nil
}

// All returns the stored records in append order.
func (l *FileLedger) All(ctx context.Context) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readAll(), nil
}

// readAll loads the current log, treating any read or parse failure as an
// empty log. Must be called with l.mu held.
func (l *FileLedger) readAll() []Record {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}
