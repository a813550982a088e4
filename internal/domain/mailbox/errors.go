package mailbox

import "errors"

// ErrCapacityExceeded is returned by Create when the configured
// maximum-open-mailboxes cap has been reached.
var ErrCapacityExceeded = errors.New("mailbox: capacity exceeded")

// ErrNotFound is returned by Find, Attach, and related operations when the
// named mailbox does not exist (never existed, or has already been
// destroyed — including the race where it vanished between Find and
// Attach).
var ErrNotFound = errors.New("mailbox: not found")

// ErrBusy is returned by Find and Attach when the mailbox exists but has no
// free slot (two peers already attached) or has started closing.
var ErrBusy = errors.New("mailbox: busy")
