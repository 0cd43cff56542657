package model

import "fmt"

// RecordID is the globally unique identifier of a stored record.
// Ids start at 1; 0 is never assigned.
type RecordID uint64

// TxnID identifies a transaction while it is active.
type TxnID uint64

// String returns a string representation of the TxnID.
func (id TxnID) String() string {
	return fmt.Sprintf("txn-%d", uint64(id))
}

// Layout selects the storage block variant used for a table.
type Layout uint8

const (
	// LayoutDocument stores opaque serialized payloads with hash indexes.
	// Suited to structurally variable payloads and point lookups.
	LayoutDocument Layout = iota
	// LayoutColumnar stores typed primitive columns next to the payloads.
	// Suited to scan-heavy, filter-dominant workloads.
	LayoutColumnar
)

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutDocument:
		return "document"
	case LayoutColumnar:
		return "columnar"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

// ParseLayout parses a layout name as produced by Layout.String.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "document":
		return LayoutDocument, nil
	case "columnar":
		return LayoutColumnar, nil
	default:
		return 0, fmt.Errorf("unknown layout %q", s)
	}
}

// Kind is the element type of a columnar column.
type Kind uint8

const (
	// KindInvalid is the zero Kind.
	KindInvalid Kind = iota
	// KindInt32 stores int32 values.
	KindInt32
	// KindInt64 stores int64 values.
	KindInt64
	// KindFloat32 stores float32 values.
	KindFloat32
	// KindFloat64 stores float64 values.
	KindFloat64
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	default:
		return "invalid"
	}
}

// ParseKind parses a kind name as produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int32":
		return KindInt32, nil
	case "int64":
		return KindInt64, nil
	case "float32":
		return KindFloat32, nil
	case "float64":
		return KindFloat64, nil
	default:
		return KindInvalid, fmt.Errorf("unknown column kind %q", s)
	}
}

// Compression selects the payload compression of document blocks.
type Compression uint8

const (
	// CompressionNone stores payloads as encoded by the codec.
	CompressionNone Compression = iota
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4
	// CompressionZSTD uses ZSTD compression (better ratio).
	CompressionZSTD
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name as produced by
// Compression.String.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

// Condition is a single comparison pushed down to storage blocks.
//
// Hashed conditions compare index hashes (uint64) and are answered by
// document blocks; plain conditions compare typed column values and are
// answered by columnar blocks.
type Condition struct {
	Property string
	Op       Operator
	Value    any
	Hashed   bool
}
