package idgen

import (
	"strings"

	"halawa/internal/models"

	"github.com/google/uuid"
)

// Generator issues booking references from random UUIDs, so two submits in the
// same millisecond still get distinct references.
type Generator struct {
	prefix string
}

func New(prefix string) *Generator {
	if prefix == "" {
		prefix = models.BookingReferencePrefix
	}
	return &Generator{prefix: prefix}
}

// NewID returns a reference like HAL-3F2A9C0D7B1E4A65.
func (g *Generator) NewID() string {
	u := uuid.New()
	hex := strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))
	return g.prefix + "-" + hex[:16]
}
