package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// CreateULID returns a time-sortable ULID encoded as a 26-character string.
// IDs issued by one process are strictly increasing, which keeps change logs
// and trace correlation sortable by ID alone.
func CreateULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}

// NewChangeID returns the identifier stamped on a single property write.
func NewChangeID() string { return CreateULID() }

// NewBindingID returns the identifier assigned to a binding record.
func NewBindingID() string { return CreateULID() }
