// Package id mints time-sortable run identifiers for journal records.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	once    sync.Once
	mu      sync.Mutex
	entropy io.Reader
)

// source lazily builds a monotonic entropy reader seeded from crypto/rand.
// Monotonic entropy keeps IDs minted within the same millisecond in
// creation order, so run listings sort correctly by ID alone.
func source() io.Reader {
	once.Do(func() {
		var seed int64
		if err := binary.Read(cryptorand.Reader, binary.LittleEndian, &seed); err != nil || seed == 0 {
			seed = time.Now().UnixNano()
		}
		entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
	})
	return entropy
}

// New returns a fresh ULID string. Safe for concurrent use.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), source()).String()
}
