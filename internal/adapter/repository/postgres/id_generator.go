package postgres

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates activity row ids. The ids sort by the time they
// were generated for, so activities sharing a timestamp keep a stable order.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID stamped with the current time.
func (g *ULIDGenerator) Generate() string {
	return g.GenerateAt(time.Now())
}

// GenerateAt returns a new ULID stamped with t.
func (g *ULIDGenerator) GenerateAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}
