package model

import (
	"strconv"

	"github.com/google/uuid"
)

// ID identifies a task or project. It is either Persisted, carrying the
// integer key assigned by the store, or Pending, carrying a client-side id
// for a record whose write has not completed yet. The two kinds never
// compare equal, so a pending record cannot collide with a stored one.
type ID struct {
	stored  int64
	pending string
}

// Persisted returns the ID of a record the store has assigned key n.
func Persisted(n int64) ID {
	return ID{stored: n}
}

// Pending returns the ID of a not-yet-stored record.
func Pending(clientID string) ID {
	return ID{pending: clientID}
}

// NewPendingID returns a Pending ID with a fresh random client id.
func NewPendingID() ID {
	return Pending(uuid.NewString())
}

// IsPending reports whether the record is still waiting for its store key.
func (id ID) IsPending() bool { return id.pending != "" }

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id.pending == "" && id.stored == 0 }

// StoreID returns the store key. ok is false for pending or zero IDs.
func (id ID) StoreID() (n int64, ok bool) {
	if id.pending != "" || id.stored == 0 {
		return 0, false
	}
	return id.stored, true
}

// ClientID returns the client id of a pending ID, or "".
func (id ID) ClientID() string { return id.pending }

func (id ID) String() string {
	if id.pending != "" {
		return "pending:" + id.pending
	}
	return strconv.FormatInt(id.stored, 10)
}
