package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/tuncaytekle/docsync/internal/config"
	"github.com/tuncaytekle/docsync/internal/docsync"
	"github.com/tuncaytekle/docsync/internal/encryption"
	"github.com/tuncaytekle/docsync/internal/journal"
	"github.com/tuncaytekle/docsync/internal/mapstore"
	"github.com/tuncaytekle/docsync/internal/pagecount"
	"github.com/tuncaytekle/docsync/internal/remote"
	"github.com/tuncaytekle/docsync/internal/store"
	"github.com/tuncaytekle/docsync/internal/syncer"
)

// App is the application layer between the CLI and the engine packages. It
// constructs all dependencies from config, exposes high-level operations that
// accept document names, and manages resource lifecycles on Close.
type App struct {
	cfg       *config.Config
	store     *store.Store
	remote    docsync.RemoteStore
	monitor   *remote.Monitor
	encryptor docsync.Encryptor
	journal   docsync.Journal
	coord     *syncer.Coordinator
	sweeper   *pagecount.Sweeper
	logger    docsync.Logger
	logFile   *os.File

	// pageCounts caches background sweep results for the process lifetime;
	// a zero count in a returned record means not yet counted.
	countMu    sync.Mutex
	pageCounts map[string]int
}

// DocumentStatus pairs a local record with its sync status for display.
type DocumentStatus struct {
	Record docsync.LocalRecord
	Status docsync.SyncStatus
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run, for log correlation. The caller must
// call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	runID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	slogger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	clock := docsync.RealClock{}
	idgen := docsync.UUIDGenerator{}

	dataDir := filepath.Join(cfg.BaseDir, "data")
	ids := mapstore.NewIdentityMap(filepath.Join(dataDir, "identity.json"), idgen)
	folderMap := mapstore.NewFolderMap(filepath.Join(dataDir, "folders.json"), logger)
	folderList := mapstore.NewFolderList(filepath.Join(dataDir, "folderlist.json"))

	localStore, err := store.NewStore(cfg.DocumentsDir, ids, folderMap, folderList, idgen, clock, logger)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating document store: %w", err)
	}

	remoteStore, err := remote.NewStoreFromConfig(ctx, cfg.Remote)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating remote store: %w", err)
	}
	monitor := remote.NewMonitor(remoteStore, clock, time.Duration(cfg.Sync.AvailabilityTTLSeconds)*time.Second)

	encryptor, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	jrnl, err := journal.NewJournalFromConfig(cfg.Journal, cfg.HostID, clock)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating journal: %w", err)
	}

	coord := syncer.NewCoordinator(localStore, remoteStore, monitor, encryptor, jrnl, logger, clock)
	sweeper := pagecount.NewSweeper(pagecount.PDFCounter{}, cfg.PageCount.Concurrency, logger)

	return &App{
		cfg:        cfg,
		store:      localStore,
		remote:     remoteStore,
		monitor:    monitor,
		encryptor:  encryptor,
		journal:    jrnl,
		coord:      coord,
		sweeper:    sweeper,
		logger:     logger,
		logFile:    logFile,
		pageCounts: make(map[string]int),
	}, nil
}

// List returns all local documents sorted by name, filling in any page
// counts already known and scheduling a background sweep for the rest.
func (a *App) List(ctx context.Context) ([]docsync.LocalRecord, error) {
	records, err := a.store.Enumerate()
	if err != nil {
		return nil, err
	}

	a.countMu.Lock()
	for i := range records {
		if pages, ok := a.pageCounts[records[i].StableID]; ok {
			records[i].PageCount = pages
		}
	}
	a.countMu.Unlock()

	a.sweeper.Sweep(ctx, records, a.applyPageCount)

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func (a *App) applyPageCount(stableID string, pages int) {
	a.countMu.Lock()
	a.pageCounts[stableID] = pages
	a.countMu.Unlock()
}

// Import copies external documents into the store and pushes each in the
// background.
func (a *App) Import(ctx context.Context, paths []string) ([]docsync.LocalRecord, error) {
	records, err := a.store.ImportExternal(paths)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		a.coord.PushAsync(ctx, rec)
	}
	return records, nil
}

// Rename renames a document identified by its current name and pushes the
// updated record. The stable id, and with it the remote key, is unchanged.
func (a *App) Rename(ctx context.Context, name, newName string) (docsync.LocalRecord, error) {
	rec, err := a.findByName(name)
	if err != nil {
		return docsync.LocalRecord{}, err
	}
	renamed, err := a.store.Rename(rec, newName)
	if err != nil {
		return docsync.LocalRecord{}, err
	}
	a.coord.PushAsync(ctx, renamed)
	return renamed, nil
}

// Delete removes a document locally and fans the delete out to the remote
// store in the background.
func (a *App) Delete(ctx context.Context, name string) error {
	rec, err := a.findByName(name)
	if err != nil {
		return err
	}
	if err := a.store.Delete(rec); err != nil {
		return err
	}
	a.coord.Forget(rec.StableID)
	if rec.StableID != "" {
		a.coord.DeleteRemoteAsync(ctx, rec.StableID, rec.Name)
	}
	return nil
}

// CreateFolder creates a folder and mirrors its record to the remote store
// in the background.
func (a *App) CreateFolder(ctx context.Context, name string) (docsync.FolderRecord, error) {
	folder, err := a.store.CreateFolder(name)
	if err != nil {
		return docsync.FolderRecord{}, err
	}
	go func() {
		if err := a.remote.PushFolder(ctx, folder); err != nil {
			a.logger.Warn("mirroring folder to remote failed", "name", folder.Name, "error", err)
		}
	}()
	return folder, nil
}

// Folders returns all folder records.
func (a *App) Folders() ([]docsync.FolderRecord, error) {
	return a.store.Folders()
}

// RenameFolder renames a folder and mirrors the updated record to the remote
// store in the background. The folder id is unchanged.
func (a *App) RenameFolder(ctx context.Context, folderID, newName string) (docsync.FolderRecord, error) {
	if err := a.store.RenameFolder(folderID, newName); err != nil {
		return docsync.FolderRecord{}, err
	}
	folders, err := a.store.Folders()
	if err != nil {
		return docsync.FolderRecord{}, err
	}
	for _, folder := range folders {
		if folder.ID != folderID {
			continue
		}
		f := folder
		go func() {
			if err := a.remote.PushFolder(ctx, f); err != nil {
				a.logger.Warn("mirroring folder to remote failed", "name", f.Name, "error", err)
			}
		}()
		return folder, nil
	}
	return docsync.FolderRecord{}, fmt.Errorf("folder %s: %w", folderID, docsync.ErrNotFound)
}

// DeleteFolder deletes a folder and its member documents locally, then fans
// the deletes out to the remote store. Returns the deleted documents.
func (a *App) DeleteFolder(ctx context.Context, folderID string) ([]docsync.LocalRecord, error) {
	return a.coord.DeleteFolder(ctx, folderID)
}

// AssignFolder assigns a document to a folder (or clears the assignment when
// folderID is empty) and pushes the updated record.
func (a *App) AssignFolder(ctx context.Context, name, folderID string) (docsync.LocalRecord, error) {
	rec, err := a.findByName(name)
	if err != nil {
		return docsync.LocalRecord{}, err
	}
	moved, err := a.store.MoveToFolder(rec, folderID)
	if err != nil {
		return docsync.LocalRecord{}, err
	}
	a.coord.PushAsync(ctx, moved)
	return moved, nil
}

// SyncAll pushes every local document, returning the number synced.
func (a *App) SyncAll(ctx context.Context) (int, error) {
	a.monitor.Invalidate()
	return a.coord.SyncAll(ctx)
}

// Pull reconciles against the remote store, restoring objects that are
// missing locally. passphrase unlocks the decryption key for encrypted
// objects; pass "" to skip them.
func (a *App) Pull(ctx context.Context, passphrase string) (int, error) {
	a.monitor.Invalidate()

	var dec docsync.DecryptionContext
	if passphrase != "" && a.encryptor != nil && a.encryptor.IsConfigured() {
		var err error
		dec, err = a.encryptor.Unlock(passphrase)
		if err != nil {
			return 0, fmt.Errorf("unlocking decryption key: %w", err)
		}
	}
	return a.coord.ReconcileOnLaunch(ctx, dec)
}

// SetupEncryption generates the at-rest encryption key pair.
func (a *App) SetupEncryption(passphrase string) error {
	if a.encryptor == nil {
		return fmt.Errorf("encryption is not enabled in config")
	}
	return a.encryptor.Setup(passphrase)
}

// Status returns per-document sync statuses plus the remote availability
// state ("unknown", "available" or "unavailable").
func (a *App) Status(ctx context.Context) ([]DocumentStatus, string, error) {
	records, err := a.store.Enumerate()
	if err != nil {
		return nil, "", err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	statuses := make([]DocumentStatus, len(records))
	for i, rec := range records {
		statuses[i] = DocumentStatus{Record: rec, Status: a.coord.Status(rec.StableID)}
	}

	a.monitor.Availability(ctx)
	return statuses, a.monitor.State(), nil
}

// History returns the most recent journal entries, newest first.
func (a *App) History(limit int) ([]docsync.JournalEntry, error) {
	return a.journal.Recent(limit)
}

// findByName locates a document by file name or display name.
func (a *App) findByName(name string) (docsync.LocalRecord, error) {
	records, err := a.store.Enumerate()
	if err != nil {
		return docsync.LocalRecord{}, err
	}
	for _, rec := range records {
		if rec.Name == name || rec.DisplayName == name {
			return rec, nil
		}
	}
	return docsync.LocalRecord{}, fmt.Errorf("document %q: %w", name, docsync.ErrNotFound)
}

// Close drains background work and releases resources.
func (a *App) Close() error {
	a.sweeper.Stop()
	a.coord.Wait()

	var firstErr error
	if err := a.journal.Close(); err != nil {
		firstErr = fmt.Errorf("closing journal: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
