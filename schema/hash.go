package schema

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"math"
	"reflect"
)

var seed = maphash.MakeSeed()

// HashKey hashes an index key. Integer keys hash by value regardless of
// their width, so int(7) and int64(7) share a hash; floats likewise.
// Hashes are stable for the lifetime of the process only.
func HashKey(key any) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)

	var buf [9]byte
	switch k := normalize(key).(type) {
	case nil:
		_ = h.WriteByte('n')
	case string:
		_ = h.WriteByte('s')
		_, _ = h.WriteString(k)
	case int64:
		buf[0] = 'i'
		binary.LittleEndian.PutUint64(buf[1:], uint64(k))
		_, _ = h.Write(buf[:])
	case uint64:
		buf[0] = 'u'
		binary.LittleEndian.PutUint64(buf[1:], k)
		_, _ = h.Write(buf[:])
	case float64:
		buf[0] = 'f'
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(k))
		_, _ = h.Write(buf[:])
	case bool:
		if k {
			_ = h.WriteByte('T')
		} else {
			_ = h.WriteByte('F')
		}
	case fmt.Stringer:
		_ = h.WriteByte('S')
		_, _ = h.WriteString(k.String())
	default:
		_ = h.WriteByte('v')
		_, _ = fmt.Fprintf(&h, "%T:%v", k, k)
	}
	return h.Sum64()
}

// KeyEqual reports whether two index keys are equal under the same
// normalization HashKey applies.
func KeyEqual(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(key any) any {
	switch k := key.(type) {
	case int:
		return int64(k)
	case int8:
		return int64(k)
	case int16:
		return int64(k)
	case int32:
		return int64(k)
	case uint:
		return unsigned(uint64(k))
	case uint8:
		return int64(k)
	case uint16:
		return int64(k)
	case uint32:
		return int64(k)
	case uint64:
		return unsigned(k)
	case float32:
		return float64(k)
	case []byte:
		return string(k)
	default:
		return key
	}
}

func unsigned(v uint64) any {
	if v <= math.MaxInt64 {
		return int64(v)
	}
	return v
}
