package docsync

import "errors"

// ErrNotFound indicates a referenced local file or remote object does not
// exist. It is a hard error on reads and benign on deletes (already-gone is
// treated as success by callers).
var ErrNotFound = errors.New("not found")

// ErrRemoteUnavailable indicates the remote store's preconditions are not met
// (no account, no session, no network). It is a soft condition: background
// pushes reflect it in per-object status and never surface it as an error to
// the user.
var ErrRemoteUnavailable = errors.New("remote store unavailable")
