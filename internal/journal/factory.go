package journal

import (
	"fmt"
	"path/filepath"

	"github.com/tuncaytekle/docsync/internal/config"
	"github.com/tuncaytekle/docsync/internal/docsync"
)

// NewJournalFromConfig creates a Journal implementation based on the journal
// config type.
func NewJournalFromConfig(cfg config.JournalConfig, hostID string, clock docsync.Clock) (docsync.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite journal")
		}
		return NewSQLiteJournal(filepath.Join(cfg.DataDir, hostID+".db"), clock)
	case "memory":
		return NewMemoryJournal(clock), nil
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
