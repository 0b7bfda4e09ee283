package parser

import "modernc.org/mathutil"

// Sizes follow the LP64 data model used by Linux and macOS on 64-bit
// targets.

// Incomplete is returned by Size and Align for types without a known layout.
const Incomplete int64 = -2

const pointerSize = 8

// Size returns the size of t in bytes, or Incomplete.
func (t *Type) Size() int64 {
	switch t.Kind {
	case Typedef:
		if t.Underlying == nil {
			return Incomplete
		}
		return t.Underlying.Size()
	case Bool, CharS, SChar, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt, Float, Enum:
		return 4
	case Long, ULong, LongLong, ULongLong, Double, Pointer:
		return 8
	case LongDouble:
		return 16
	case ConstantArray:
		elem := t.Pointee.Size()
		if elem < 0 {
			return Incomplete
		}
		return elem * t.Len
	case Record:
		return recordLayout(t.Record)
	default:
		// void, function types and unsized arrays
		return Incomplete
	}
}

// Align returns the alignment of t in bytes, or Incomplete.
func (t *Type) Align() int64 {
	switch t.Kind {
	case Typedef:
		if t.Underlying == nil {
			return Incomplete
		}
		return t.Underlying.Align()
	case ConstantArray, IncompleteArray:
		return t.Pointee.Align()
	case Record:
		if t.Record == nil || !t.Record.Complete {
			return Incomplete
		}
		var align int64 = 1
		for _, f := range t.Record.Fields {
			align = mathutil.MaxInt64(align, f.Type.Align())
		}
		return align
	default:
		return t.Size()
	}
}

func recordLayout(r *RecordDecl) int64 {
	if r == nil || !r.Complete {
		return Incomplete
	}

	var size, align int64 = 0, 1
	var bitOffset int64
	for _, f := range r.Fields {
		fa := f.Type.Align()
		if fa < 0 {
			return Incomplete
		}
		align = mathutil.MaxInt64(align, fa)

		fs := f.Type.Size()
		if f.Type.Canonical().Kind == IncompleteArray {
			// Flexible array member.
			fs = 0
		} else if fs < 0 {
			return Incomplete
		}

		if r.Union {
			size = mathutil.MaxInt64(size, fs)
			continue
		}

		if f.Bits > 0 {
			// Bit-fields are packed into units of their declared type.
			unit := fs * 8
			if bitOffset == 0 || bitOffset+int64(f.Bits) > unit {
				size = alignTo(size, fa)
				size += fs
				bitOffset = 0
			}
			bitOffset += int64(f.Bits)
			continue
		}
		bitOffset = 0

		size = alignTo(size, fa) + fs
	}

	return alignTo(size, align)
}

func alignTo(n, align int64) int64 {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
