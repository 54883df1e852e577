// Package id generates identifiers for continuations, spawned objects and
// recording sessions.
package id

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator produces unique identifiers.
type IDGenerator interface {
	Generate() string
}

// NewIDGenerator returns a sequential generator whose first ID is "1".
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewPrefixedIDGenerator returns a sequential generator whose IDs look like
// "<prefix>-1", "<prefix>-2", ...
func NewPrefixedIDGenerator(prefix string) IDGenerator {
	return &sequentialIDGenerator{prefix: prefix + "-"}
}

// NewXIDGenerator returns a generator of globally unique, sortable IDs. It is
// used where IDs must not collide across runs, such as recording sessions.
func NewXIDGenerator() IDGenerator {
	return xidGenerator{}
}

type sequentialIDGenerator struct {
	prefix string
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return g.prefix + strconv.FormatUint(idNumber, 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}

var (
	defaultGenerator     IDGenerator
	defaultGeneratorOnce sync.Once
)

// Generate returns an ID from the process-wide sequential generator.
func Generate() string {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = NewIDGenerator()
	})

	return defaultGenerator.Generate()
}
