// Package queryplan generates and validates the 16-byte query identity
// carried on every emitted PlanFragment's Handle (spec 3, 6).
package queryplan

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/distquery/parallelizer/internal/planmodel"
)

// NewQueryID generates a fresh random query identity.
func NewQueryID() [16]byte {
	id := uuid.New()
	var out [16]byte
	copy(out[:], id[:])
	return out
}

// ParseQueryID validates and decodes a string-form query id (e.g. one
// supplied by a caller that already minted it) into the 16-byte form
// PlanFragment.Handle carries.
func ParseQueryID(s string) ([16]byte, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return [16]byte{}, fmt.Errorf("queryplan: invalid query id %q: %w", s, err)
	}
	var out [16]byte
	copy(out[:], id[:])
	return out, nil
}

// String renders a 16-byte query id as a standard UUID string.
func String(id [16]byte) string {
	u, err := uuid.FromBytes(id[:])
	if err != nil {
		return ""
	}
	return u.String()
}

// HandleString renders a PlanFragment handle for logging.
func HandleString(h planmodel.Handle) string {
	return fmt.Sprintf("%s/%d/%d", String(h.QueryID), h.MajorID, h.MinorID)
}
