package fbx_test

import (
	"bytes"
	"testing"

	"github.com/calvinalkan/fbxcodec/pkg/fbx"
)

// FuzzPropertyConvert exercises every typed accessor against arbitrary
// constructed property kinds, asserting only that no accessor and no
// ToOwned call panics.
func FuzzPropertyConvert(f *testing.F) {
	f.Add(int64(42), 1.5, "seed", true)

	f.Fuzz(func(t *testing.T, i int64, fl float64, s string, b bool) {
		candidates := []fbx.OwnedProperty{
			fbx.NewBool(b),
			fbx.NewI16(int16(i)),
			fbx.NewI32(int32(i)),
			fbx.NewI64(i),
			fbx.NewF32(float32(fl)),
			fbx.NewF64(fl),
			fbx.NewString(s),
			fbx.NewBinary([]byte(s)),
			fbx.NewVecBool([]bool{b, !b}),
			fbx.NewVecI32([]int32{int32(i), int32(-i)}),
			fbx.NewVecI64([]int64{i, -i}),
			fbx.NewVecF32([]float32{float32(fl)}),
			fbx.NewVecF64([]float64{fl}),
		}

		for _, owned := range candidates {
			p := owned.Borrow()

			_, _ = p.Bool()
			_, _ = p.I16()
			_, _ = p.I32()
			_, _ = p.I64()
			_, _ = p.F32()
			_, _ = p.F64()
			_, _ = p.String()
			_, _ = p.Binary(true)
			_, _ = p.VecBool()
			_, _ = p.VecI32()
			_, _ = p.VecI64()
			_, _ = p.VecF32()
			_, _ = p.VecF64()

			_ = p.ToOwned()
		}
	})
}

// FuzzBinaryRoundTrip feeds arbitrary bytes through the Reader in binary
// mode (by prefixing the real magic so the binary path is actually
// exercised) and asserts only that the reader never panics. It pulls events
// until the first error (io.EOF included) or 10,000 events, whichever comes
// first.
func FuzzBinaryRoundTrip(f *testing.F) {
	f.Add([]byte{0xE8, 0x1C, 0, 0})
	f.Add(make([]byte, 64))

	f.Fuzz(func(t *testing.T, tail []byte) {
		data := append([]byte("Kaydara FBX Binary  "), 0x1A, 0x00)
		data = append(data, tail...)

		r := fbx.NewReader(bytes.NewReader(data), fbx.ReaderConfig{})

		for i := 0; i < 10_000; i++ {
			_, err := r.Next()
			if err != nil {
				return
			}
		}
	})
}
