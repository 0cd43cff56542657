package conv

import (
	"fmt"
	"math"

	"github.com/hupe1980/deltadb/model"
)

// SlotKey converts a block slot to its key in a 32-bit slot bitmap.
func SlotKey(slot int) (uint32, error) {
	if slot < 0 || uint64(slot) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: slot %d does not fit a slot bitmap", model.ErrOutOfRange, slot)
	}
	return uint32(slot), nil
}

// Slot converts a slot bitmap key back to a block slot.
func Slot(key uint32) (int, error) {
	if uint64(key) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: slot key %d exceeds int", model.ErrOutOfRange, key)
	}
	return int(key), nil
}

// Cardinality converts a bitmap cardinality to an int count.
func Cardinality(n uint64) (int, error) {
	if n > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: cardinality %d exceeds int", model.ErrOutOfRange, n)
	}
	return int(n), nil
}
