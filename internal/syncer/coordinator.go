package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// Coordinator drives synchronization between the local document store and
// the remote object store. Pushes are per-document upserts keyed by stable
// id; reconciliation restores remote-only objects after a local reinstall.
//
// The remote store is treated as best-effort: an unreachable remote marks
// documents unavailable and never surfaces as an operation error. Every
// outcome is recorded on the status board and appended to the journal.
type Coordinator struct {
	local     docsync.LocalStore
	remote    docsync.RemoteStore
	checker   docsync.AvailabilityChecker
	encryptor docsync.Encryptor
	journal   docsync.Journal
	statuses  *StatusBoard
	logger    docsync.Logger
	clock     docsync.Clock

	reconcileMu sync.Mutex
	reconciled  bool

	wg sync.WaitGroup
}

// NewCoordinator creates a Coordinator. encryptor may be nil when at-rest
// encryption is not configured.
func NewCoordinator(
	local docsync.LocalStore,
	remote docsync.RemoteStore,
	checker docsync.AvailabilityChecker,
	encryptor docsync.Encryptor,
	journal docsync.Journal,
	logger docsync.Logger,
	clock docsync.Clock,
) *Coordinator {
	if logger == nil {
		logger = docsync.NewNopLogger()
	}
	return &Coordinator{
		local:     local,
		remote:    remote,
		checker:   checker,
		encryptor: encryptor,
		journal:   journal,
		statuses:  NewStatusBoard(clock),
		logger:    logger,
		clock:     clock,
	}
}

// Status returns the sync status for one stable id.
func (c *Coordinator) Status(stableID string) docsync.SyncStatus {
	return c.statuses.Get(stableID)
}

// Statuses returns a snapshot of all tracked statuses keyed by stable id.
func (c *Coordinator) Statuses() map[string]docsync.SyncStatus {
	return c.statuses.Snapshot()
}

// Forget drops the tracked status for a deleted document.
func (c *Coordinator) Forget(stableID string) {
	c.statuses.Forget(stableID)
}

// Wait blocks until all in-flight background operations finish.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// PushOne uploads one document to the remote store, keyed by its stable id.
// An unreachable remote marks the document unavailable and returns nil; the
// push is retried by the next mutation or explicit sync. A push that executes
// against an available remote and fails marks the document failed and returns
// the error.
func (c *Coordinator) PushOne(ctx context.Context, record docsync.LocalRecord) error {
	c.statuses.Set(record.StableID, docsync.StateSyncing, "")

	if err := c.checker.Availability(ctx); err != nil {
		c.statuses.Set(record.StableID, docsync.StateUnavailable, err.Error())
		c.record(docsync.JournalEntry{
			Op: docsync.OpPush, Key: record.StableID, Name: record.Name,
			Outcome: docsync.OutcomeUnavailable, Detail: err.Error(),
		})
		c.logger.Info("push deferred, remote unavailable", "name", record.Name)
		return nil
	}

	data, err := c.local.ReadDocument(record)
	if err != nil {
		err = fmt.Errorf("reading %s: %w", record.Name, err)
		c.statuses.Set(record.StableID, docsync.StateFailed, err.Error())
		c.record(docsync.JournalEntry{
			Op: docsync.OpPush, Key: record.StableID, Name: record.Name,
			Outcome: docsync.OutcomeFailed, Detail: err.Error(),
		})
		return err
	}

	payload, encrypted, err := c.encryptPayload(data)
	if err != nil {
		c.statuses.Set(record.StableID, docsync.StateFailed, err.Error())
		c.record(docsync.JournalEntry{
			Op: docsync.OpPush, Key: record.StableID, Name: record.Name,
			Outcome: docsync.OutcomeFailed, Detail: err.Error(),
		})
		return err
	}

	obj := &docsync.RemoteObject{
		Key:        record.StableID,
		Name:       record.Name,
		FolderID:   record.FolderID,
		ModifiedAt: record.ModifiedAt,
		SizeBytes:  int64(len(payload)),
		Encrypted:  encrypted,
		Bytes:      payload,
	}

	if err := c.remote.Push(ctx, obj); err != nil {
		if errors.Is(err, docsync.ErrRemoteUnavailable) {
			c.statuses.Set(record.StableID, docsync.StateUnavailable, err.Error())
			c.record(docsync.JournalEntry{
				Op: docsync.OpPush, Key: record.StableID, Name: record.Name,
				Outcome: docsync.OutcomeUnavailable, Detail: err.Error(),
			})
			return nil
		}
		err = fmt.Errorf("pushing %s: %w", record.Name, err)
		c.statuses.Set(record.StableID, docsync.StateFailed, err.Error())
		c.record(docsync.JournalEntry{
			Op: docsync.OpPush, Key: record.StableID, Name: record.Name,
			Outcome: docsync.OutcomeFailed, Detail: err.Error(),
		})
		return err
	}

	c.statuses.Set(record.StableID, docsync.StateSynced, "")
	c.record(docsync.JournalEntry{
		Op: docsync.OpPush, Key: record.StableID, Name: record.Name,
		Outcome: docsync.OutcomeOK,
	})
	c.logger.Debug("pushed document", "name", record.Name, "id", record.StableID)
	return nil
}

// PushAsync fires a push in the background. Errors land on the status board
// and in the journal.
func (c *Coordinator) PushAsync(ctx context.Context, record docsync.LocalRecord) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.PushOne(ctx, record); err != nil {
			c.logger.Warn("background push failed", "name", record.Name, "error", err)
		}
	}()
}

// SyncAll pushes every local document. Per-document failures do not stop the
// run; they are visible on the status board and in the journal. Returns the
// number of successful pushes.
func (c *Coordinator) SyncAll(ctx context.Context) (int, error) {
	records, err := c.local.Enumerate()
	if err != nil {
		return 0, fmt.Errorf("enumerating documents: %w", err)
	}

	synced := 0
	for _, record := range records {
		if err := c.PushOne(ctx, record); err != nil {
			continue
		}
		if c.statuses.Get(record.StableID).State == docsync.StateSynced {
			synced++
		}
	}
	return synced, nil
}

// DeleteRemote removes the remote object for a locally deleted document.
// Best-effort: an unreachable remote or a failed delete is journaled and the
// local delete stands, leaving the remote object orphaned until the next
// reconciliation or manual cleanup.
func (c *Coordinator) DeleteRemote(ctx context.Context, stableID, name string) error {
	if err := c.checker.Availability(ctx); err != nil {
		c.record(docsync.JournalEntry{
			Op: docsync.OpRemoteDelete, Key: stableID, Name: name,
			Outcome: docsync.OutcomeUnavailable, Detail: err.Error(),
		})
		c.logger.Info("remote delete deferred, remote unavailable", "name", name)
		return nil
	}

	if err := c.remote.Delete(ctx, stableID); err != nil {
		err = fmt.Errorf("deleting remote object %s: %w", stableID, err)
		c.record(docsync.JournalEntry{
			Op: docsync.OpRemoteDelete, Key: stableID, Name: name,
			Outcome: docsync.OutcomeFailed, Detail: err.Error(),
		})
		return err
	}

	c.record(docsync.JournalEntry{
		Op: docsync.OpRemoteDelete, Key: stableID, Name: name,
		Outcome: docsync.OutcomeOK,
	})
	return nil
}

// DeleteRemoteAsync fires a remote delete in the background.
func (c *Coordinator) DeleteRemoteAsync(ctx context.Context, stableID, name string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.DeleteRemote(ctx, stableID, name); err != nil {
			c.logger.Warn("background remote delete failed", "name", name, "error", err)
		}
	}()
}

// DeleteFolder deletes a folder locally, cascading to its member documents,
// then fans the deletes out to the remote store in the background. The
// remote fan-out has no rollback and no retry queue: failures are journaled
// and the local delete stands.
func (c *Coordinator) DeleteFolder(ctx context.Context, folderID string) ([]docsync.LocalRecord, error) {
	deleted, err := c.local.DeleteFolder(folderID)
	if err != nil {
		return nil, err
	}

	for _, record := range deleted {
		c.statuses.Forget(record.StableID)
		if record.StableID == "" {
			continue
		}
		c.DeleteRemoteAsync(ctx, record.StableID, record.Name)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.remote.DeleteFolder(ctx, folderID); err != nil {
			c.logger.Warn("remote folder delete failed", "folder", folderID, "error", err)
		}
	}()

	return deleted, nil
}

// ReconcileOnLaunch restores remote objects that have no local counterpart,
// recreating their folders first. It runs at most once per process: the
// guard latches only when an attempt completes against an available remote,
// so a launch that finds the remote unreachable leaves reconciliation armed
// for a later explicit pull.
//
// dec may be nil; encrypted objects are then skipped and journaled, never
// failing the run.
func (c *Coordinator) ReconcileOnLaunch(ctx context.Context, dec docsync.DecryptionContext) (int, error) {
	c.reconcileMu.Lock()
	defer c.reconcileMu.Unlock()

	if c.reconciled {
		c.logger.Debug("reconciliation already ran this process")
		return 0, nil
	}

	if err := c.checker.Availability(ctx); err != nil {
		c.record(docsync.JournalEntry{
			Op: docsync.OpReconcile, Outcome: docsync.OutcomeUnavailable, Detail: err.Error(),
		})
		c.logger.Info("reconciliation skipped, remote unavailable")
		return 0, nil
	}

	locals, err := c.local.Enumerate()
	if err != nil {
		return 0, fmt.Errorf("enumerating documents: %w", err)
	}
	known := make(map[string]bool, len(locals))
	for _, record := range locals {
		known[record.StableID] = true
	}

	localFolders, err := c.restoreFolders(ctx)
	if err != nil {
		return 0, err
	}

	keys, err := c.remote.ListKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing remote objects: %w", err)
	}

	restored := 0
	for _, key := range keys {
		if known[key] {
			continue
		}
		if err := c.restoreOne(ctx, key, localFolders, dec); err != nil {
			c.logger.Warn("restore failed", "id", key, "error", err)
			continue
		}
		restored++
	}

	c.reconciled = true
	c.record(docsync.JournalEntry{
		Op: docsync.OpReconcile, Outcome: docsync.OutcomeOK,
		Detail: fmt.Sprintf("restored %d", restored),
	})
	c.logger.Info("reconciliation complete", "restored", restored)
	return restored, nil
}

// restoreFolders recreates remote folders missing locally and returns the
// resulting set of local folder ids.
func (c *Coordinator) restoreFolders(ctx context.Context) (map[string]bool, error) {
	localFolders, err := c.local.Folders()
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	present := make(map[string]bool, len(localFolders))
	for _, folder := range localFolders {
		present[folder.ID] = true
	}

	remoteFolders, err := c.remote.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing remote folders: %w", err)
	}
	for _, folder := range remoteFolders {
		if present[folder.ID] {
			continue
		}
		if err := c.local.AddFolder(folder); err != nil {
			c.logger.Warn("restoring folder failed", "folder", folder.Name, "error", err)
			continue
		}
		present[folder.ID] = true
	}
	return present, nil
}

func (c *Coordinator) restoreOne(ctx context.Context, key string, localFolders map[string]bool, dec docsync.DecryptionContext) error {
	obj, err := c.remote.Fetch(ctx, key)
	if err != nil {
		c.record(docsync.JournalEntry{
			Op: docsync.OpRestore, Key: key,
			Outcome: docsync.OutcomeFailed, Detail: err.Error(),
		})
		return fmt.Errorf("fetching %s: %w", key, err)
	}
	if obj == nil {
		return nil
	}

	data := obj.Bytes
	if obj.Encrypted {
		if dec == nil {
			c.record(docsync.JournalEntry{
				Op: docsync.OpRestore, Key: key, Name: obj.Name,
				Outcome: docsync.OutcomeSkipped, Detail: "encrypted, no decryption key unlocked",
			})
			c.logger.Info("skipping encrypted object, no key unlocked", "name", obj.Name)
			return nil
		}
		var buf bytes.Buffer
		if err := dec.Decrypt(bytes.NewReader(obj.Bytes), &buf); err != nil {
			c.record(docsync.JournalEntry{
				Op: docsync.OpRestore, Key: key, Name: obj.Name,
				Outcome: docsync.OutcomeFailed, Detail: err.Error(),
			})
			return fmt.Errorf("decrypting %s: %w", obj.Name, err)
		}
		data = buf.Bytes()
	}

	record, err := c.local.StoreRestored(data, obj.Name, key)
	if err != nil {
		c.record(docsync.JournalEntry{
			Op: docsync.OpRestore, Key: key, Name: obj.Name,
			Outcome: docsync.OutcomeFailed, Detail: err.Error(),
		})
		return fmt.Errorf("storing %s: %w", obj.Name, err)
	}

	if obj.FolderID != "" && localFolders[obj.FolderID] {
		if _, err := c.local.MoveToFolder(record, obj.FolderID); err != nil {
			c.logger.Warn("restoring folder assignment failed", "name", obj.Name, "error", err)
		}
	}

	c.statuses.Set(key, docsync.StateSynced, "")
	c.record(docsync.JournalEntry{
		Op: docsync.OpRestore, Key: key, Name: obj.Name, Outcome: docsync.OutcomeOK,
	})
	c.logger.Info("restored document", "name", record.Name, "id", key)
	return nil
}

func (c *Coordinator) encryptPayload(data []byte) ([]byte, bool, error) {
	if c.encryptor == nil || !c.encryptor.IsConfigured() {
		return data, false, nil
	}
	var buf bytes.Buffer
	if err := c.encryptor.Encrypt(bytes.NewReader(data), &buf); err != nil {
		return nil, false, fmt.Errorf("encrypting document: %w", err)
	}
	return buf.Bytes(), true, nil
}

// record appends a journal entry, logging rather than failing the operation
// when the journal itself errors.
func (c *Coordinator) record(entry docsync.JournalEntry) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(entry); err != nil {
		c.logger.Warn("journal write failed", "op", entry.Op, "error", err)
	}
}
