// Package random provides seed generation for runs that were not given an
// explicit seed.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed generates a non-reproducible seed using crypto/rand. Callers
// should log the returned value so the run can be repeated.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	// Keep seeds non-negative so they round-trip through -random-seed.
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1), nil
}
