package fbx

import "encoding/base64"

// PropertyKind identifies which of the 13 FBX property variants a [Property]
// or [OwnedProperty] holds.
type PropertyKind uint8

const (
	KindBool PropertyKind = iota
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindVecBool
	KindVecI32
	KindVecI64
	KindVecF32
	KindVecF64
	KindString
	KindBinary
)

func (k PropertyKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindVecBool:
		return "vec_bool"
	case KindVecI32:
		return "vec_i32"
	case KindVecI64:
		return "vec_i64"
	case KindVecF32:
		return "vec_f32"
	case KindVecF64:
		return "vec_f64"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Property is a borrowed view over a single FBX property value.
//
// It is what [Reader.Next] hands back as part of a StartNode [Event]. Unlike
// a Rust Cow-backed borrow, Property does not alias a reused internal
// buffer: its slice/string fields are ordinary Go values kept alive by the
// garbage collector for as long as the caller holds them. The distinction
// from [OwnedProperty] is one of API shape and construction path, not of
// memory lifetime — see DESIGN.md for the rationale.
//
// The zero Property is a Bool with value false.
type Property struct {
	kind PropertyKind

	b    bool
	i16  int16
	i32  int32
	i64  int64
	f32  float32
	f64  float64

	vecBool []bool
	vecI32  []int32
	vecI64  []int64
	vecF32  []float32
	vecF64  []float64

	str string
	bin []byte
}

// Kind reports which variant p holds.
func (p Property) Kind() PropertyKind { return p.kind }

// ToOwned copies p into a freestanding [OwnedProperty].
func (p Property) ToOwned() OwnedProperty {
	return OwnedProperty{p: p}
}

// Bool returns p's value if p is a Bool.
func (p Property) Bool() (bool, bool) {
	if p.kind != KindBool {
		return false, false
	}

	return p.b, true
}

// I16 returns p's value as an int16, converting from Bool per the
// safe-conversion table (bool -> i16).
func (p Property) I16() (int16, bool) {
	switch p.kind {
	case KindI16:
		return p.i16, true
	case KindBool:
		return int16(boolToInt32(p.b)), true
	default:
		return 0, false
	}
}

// I32 returns p's value as an int32, converting from Bool or I16 per the
// safe-conversion table (bool -> i32, i16 -> i32).
func (p Property) I32() (int32, bool) {
	switch p.kind {
	case KindI32:
		return p.i32, true
	case KindI16:
		return int32(p.i16), true
	case KindBool:
		return boolToInt32(p.b), true
	default:
		return 0, false
	}
}

// I64 returns p's value as an int64, converting from Bool, I16, or I32 per
// the safe-conversion table.
func (p Property) I64() (int64, bool) {
	switch p.kind {
	case KindI64:
		return p.i64, true
	case KindI32:
		return int64(p.i32), true
	case KindI16:
		return int64(p.i16), true
	case KindBool:
		return int64(boolToInt32(p.b)), true
	default:
		return 0, false
	}
}

// F32 returns p's value as a float32. Converting from F64 is a narrowing
// conversion and may lose precision.
func (p Property) F32() (float32, bool) {
	switch p.kind {
	case KindF32:
		return p.f32, true
	case KindF64:
		return float32(p.f64), true
	default:
		return 0, false
	}
}

// F64 returns p's value as a float64, widening from F32 if needed.
func (p Property) F64() (float64, bool) {
	switch p.kind {
	case KindF64:
		return p.f64, true
	case KindF32:
		return float64(p.f32), true
	default:
		return 0, false
	}
}

// VecBool returns p's value if p is a VecBool.
func (p Property) VecBool() ([]bool, bool) {
	if p.kind != KindVecBool {
		return nil, false
	}

	return p.vecBool, true
}

// VecI32 returns p's value as []int32, converting from VecBool per the
// safe-conversion table.
func (p Property) VecI32() ([]int32, bool) {
	switch p.kind {
	case KindVecI32:
		return p.vecI32, true
	case KindVecBool:
		out := make([]int32, len(p.vecBool))
		for i, v := range p.vecBool {
			out[i] = boolToInt32(v)
		}

		return out, true
	default:
		return nil, false
	}
}

// VecI64 returns p's value as []int64, converting from VecI32 or VecBool per
// the safe-conversion table.
func (p Property) VecI64() ([]int64, bool) {
	switch p.kind {
	case KindVecI64:
		return p.vecI64, true
	case KindVecI32:
		out := make([]int64, len(p.vecI32))
		for i, v := range p.vecI32 {
			out[i] = int64(v)
		}

		return out, true
	case KindVecBool:
		out := make([]int64, len(p.vecBool))
		for i, v := range p.vecBool {
			out[i] = int64(boolToInt32(v))
		}

		return out, true
	default:
		return nil, false
	}
}

// VecF32 returns p's value as []float32. Converting from VecF64 is a
// narrowing conversion and may lose precision.
func (p Property) VecF32() ([]float32, bool) {
	switch p.kind {
	case KindVecF32:
		return p.vecF32, true
	case KindVecF64:
		out := make([]float32, len(p.vecF64))
		for i, v := range p.vecF64 {
			out[i] = float32(v)
		}

		return out, true
	default:
		return nil, false
	}
}

// VecF64 returns p's value as []float64, widening from VecF32 if needed.
func (p Property) VecF64() ([]float64, bool) {
	switch p.kind {
	case KindVecF64:
		return p.vecF64, true
	case KindVecF32:
		out := make([]float64, len(p.vecF32))
		for i, v := range p.vecF32 {
			out[i] = float64(v)
		}

		return out, true
	default:
		return nil, false
	}
}

// String returns p's value if p is a String.
func (p Property) String() (string, bool) {
	if p.kind != KindString {
		return "", false
	}

	return p.str, true
}

// Binary returns p's value as []byte. If p is a String, fromString must be
// true and the string is treated as base64 and decoded; this is the only
// String -> Binary conversion the format allows.
func (p Property) Binary(fromString bool) ([]byte, bool) {
	switch p.kind {
	case KindBinary:
		return p.bin, true
	case KindString:
		if !fromString {
			return nil, false
		}

		decoded, err := base64.StdEncoding.DecodeString(p.str)
		if err != nil {
			return nil, false
		}

		return decoded, true
	default:
		return nil, false
	}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}

	return 0
}

// OwnedProperty is a freestanding FBX property value, safe to hold onto
// past the lifetime of the [Reader] call that produced it.
//
// Construct one with the New* functions below; project it to a [Property]
// with [OwnedProperty.Borrow] at no additional allocation cost.
type OwnedProperty struct {
	p Property
}

// Borrow projects o to a [Property] sharing o's underlying slices/string —
// no copy is made.
func (o OwnedProperty) Borrow() Property { return o.p }

// Kind reports which variant o holds.
func (o OwnedProperty) Kind() PropertyKind { return o.p.kind }

func NewBool(v bool) OwnedProperty { return OwnedProperty{Property{kind: KindBool, b: v}} }
func NewI16(v int16) OwnedProperty { return OwnedProperty{Property{kind: KindI16, i16: v}} }
func NewI32(v int32) OwnedProperty { return OwnedProperty{Property{kind: KindI32, i32: v}} }
func NewI64(v int64) OwnedProperty { return OwnedProperty{Property{kind: KindI64, i64: v}} }
func NewF32(v float32) OwnedProperty { return OwnedProperty{Property{kind: KindF32, f32: v}} }
func NewF64(v float64) OwnedProperty { return OwnedProperty{Property{kind: KindF64, f64: v}} }

func NewVecBool(v []bool) OwnedProperty {
	return OwnedProperty{Property{kind: KindVecBool, vecBool: v}}
}

func NewVecI32(v []int32) OwnedProperty {
	return OwnedProperty{Property{kind: KindVecI32, vecI32: v}}
}

func NewVecI64(v []int64) OwnedProperty {
	return OwnedProperty{Property{kind: KindVecI64, vecI64: v}}
}

func NewVecF32(v []float32) OwnedProperty {
	return OwnedProperty{Property{kind: KindVecF32, vecF32: v}}
}

func NewVecF64(v []float64) OwnedProperty {
	return OwnedProperty{Property{kind: KindVecF64, vecF64: v}}
}

func NewString(v string) OwnedProperty { return OwnedProperty{Property{kind: KindString, str: v}} }

func NewBinary(v []byte) OwnedProperty { return OwnedProperty{Property{kind: KindBinary, bin: v}} }
