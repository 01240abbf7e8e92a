// Package idx mints the identifiers of users, contacts, tokens and
// requests. They are ULIDs: 26 Crockford base32 characters whose lexical
// order is creation order, so an id doubles as a keyset pagination cursor.
package idx

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

var ErrInvalid = errors.New("idx: invalid ulid")

// entropy is monotonic within a millisecond and guarded by mu, because
// ulid.MonotonicEntropy is not safe for concurrent use.
var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns an ID stamped with the current time.
func New() ID { return NewAt(time.Now()) }

// NewAt returns an ID stamped with t. IDs minted for the same millisecond
// still sort in call order.
func NewAt(t time.Time) ID {
	mu.Lock()
	u := ulid.MustNew(ulid.Timestamp(t), entropy)
	mu.Unlock()
	return ID(u.String())
}

// Parse accepts only canonical, upper case ULIDs as minted by New. Cursors
// and path ids arrive from clients and go through here.
func Parse(s string) (ID, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil || u.String() != s {
		return "", ErrInvalid
	}
	return ID(s), nil
}

func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func (id ID) String() string { return string(id) }

// Time is the millisecond the ID was minted at, or the zero time if id is
// not a ULID.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}

// Before reports whether id was minted before other.
func (id ID) Before(other ID) bool { return id < other }
