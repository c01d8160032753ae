// Package tensor provides the shape and element types shared by the contraction
// analysis packages.
package tensor

import "fmt"

// DataType represents the element type of the tensors in a contraction.
// It only matters for byte-access estimates.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
	Float16
	BFloat16
)

// Valid reports whether dt is one of the supported data types.
func (dt DataType) Valid() bool { return dt >= Float32 && dt <= BFloat16 }

// Size returns the byte size of the data type. It panics for an unknown
// type; check Valid first when dt comes from outside.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Float16, BFloat16:
		return 2
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	default:
		return "unknown"
	}
}

// ParseDataType converts a name produced by DataType.String back to a DataType.
func ParseDataType(name string) (DataType, error) {
	for dt := Float32; dt <= BFloat16; dt++ {
		if dt.String() == name {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", name)
}
