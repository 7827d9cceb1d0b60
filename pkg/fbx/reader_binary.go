package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// binaryNodeFrame is one entry of the binary reader's open-node stack: the
// end_offset a child node record declared, checked when that node's null
// record (or lack thereof) closes it.
type binaryNodeFrame struct {
	endOffset uint64
}

type binaryReaderState struct {
	stack []binaryNodeFrame
}

// nextBinary reads one node record (or null record) at the reader's current
// nesting depth and returns the corresponding event.
func (r *Reader) nextBinary() (Event, error) {
	if n := len(r.bin.stack); n > 0 && r.bin.stack[n-1].endOffset == uint64(r.pos) {
		r.bin.stack = r.bin.stack[:n-1]

		return NewEndNode(), nil
	}

	wide := r.format.Widens64()

	end, numProps, propListLen, nameLen, isNull, err := r.readRecordHeader(wide)
	if err != nil {
		return Event{}, err
	}

	if isNull {
		return r.closeBinaryLevel()
	}

	name := make([]byte, nameLen)
	if err := r.readFull(name); err != nil {
		return Event{}, err
	}

	if !utf8.Valid(name) {
		return Event{}, wrapUtf8(r.pos, nil)
	}

	body := make([]byte, propListLen)
	if err := r.readFull(body); err != nil {
		return Event{}, err
	}

	props, err := decodeProperties(r.pos-int64(len(body)), body, numProps)
	if err != nil {
		return Event{}, err
	}

	r.bin.stack = append(r.bin.stack, binaryNodeFrame{endOffset: end})

	return NewStartNode(string(name), props), nil
}

// readRecordHeader reads one node-record header (32-bit or 64-bit fields
// depending on wide) and reports whether it is a null record (all-zero
// sentinel marking the end of a node's children, or of the top-level node
// list).
func (r *Reader) readRecordHeader(wide bool) (end, numProps, propListLen uint64, nameLen uint8, isNull bool, err error) {
	if wide {
		buf := make([]byte, wideRecordHeaderSize)
		if err := r.readFull(buf); err != nil {
			return 0, 0, 0, 0, false, err
		}

		end = binary.LittleEndian.Uint64(buf[0:8])
		numProps = binary.LittleEndian.Uint64(buf[8:16])
		propListLen = binary.LittleEndian.Uint64(buf[16:24])
		nameLen = buf[24]
	} else {
		buf := make([]byte, narrowRecordHeaderSize)
		if err := r.readFull(buf); err != nil {
			return 0, 0, 0, 0, false, err
		}

		end = uint64(binary.LittleEndian.Uint32(buf[0:4]))
		numProps = uint64(binary.LittleEndian.Uint32(buf[4:8]))
		propListLen = uint64(binary.LittleEndian.Uint32(buf[8:12]))
		nameLen = buf[12]
	}

	isNull = end == 0 && numProps == 0 && propListLen == 0 && nameLen == 0

	return end, numProps, propListLen, nameLen, isNull, nil
}

// closeBinaryLevel handles a null record: either it closes the currently
// open node (EndNode) or, at top-level nesting, it terminates the document
// (footer + EndFbx).
func (r *Reader) closeBinaryLevel() (Event, error) {
	if len(r.bin.stack) == 0 {
		if err := r.readFooter(); err != nil {
			return Event{}, err
		}

		r.stage = stageFinished

		return NewEndFbx(), nil
	}

	top := r.bin.stack[len(r.bin.stack)-1]
	r.bin.stack = r.bin.stack[:len(r.bin.stack)-1]

	if uint64(r.pos) != top.endOffset {
		return Event{}, newError(r.pos, ErrKindDataError, "Node does not end at expected position")
	}

	return NewEndNode(), nil
}

// readFooter consumes the fixed binary footer. A missing or mismatched
// footer is tolerated as a warning rather than an error: see DESIGN.md for
// the open-question decision on footer magic strictness.
func (r *Reader) readFooter() error {
	magic1 := make([]byte, 16)
	if _, err := io.ReadFull(r.src, magic1); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			r.warn("document ended before footer")

			return nil
		}

		return wrapIOError(r.pos, err)
	}

	r.pos += 16

	if toArray16(magic1) != footerMagic1 {
		r.warn("footer magic did not match expected value")
	}

	pad := int((16 - (r.pos % 16)) % 16)
	rest := make([]byte, pad+4+footerZeroPad+16)

	if err := r.readFull(rest); err != nil {
		r.warn("document ended mid-footer")

		return nil
	}

	trailing := rest[len(rest)-16:]
	if toArray16(trailing) != footerMagic2 {
		r.warn("trailing footer magic did not match expected value")
	}

	return nil
}

func toArray16(b []byte) [16]byte {
	var a [16]byte
	copy(a[:], b)

	return a
}

// decodeProperties decodes exactly count properties from body, which must
// be fully consumed.
func decodeProperties(startPos int64, body []byte, count uint64) ([]Property, error) {
	cur := byteCursor{buf: body, pos: startPos}

	props := make([]Property, 0, count)

	for i := uint64(0); i < count; i++ {
		p, err := decodeProperty(&cur)
		if err != nil {
			return nil, err
		}

		props = append(props, p)
	}

	if cur.off != len(cur.buf) {
		return nil, newError(cur.pos, ErrKindDataError, "property list length did not match decoded properties")
	}

	return props, nil
}

// byteCursor is a bounds-checked reader over an in-memory buffer, used to
// decode a node's already-fully-buffered property list.
type byteCursor struct {
	buf []byte
	off int
	pos int64 // absolute source position of buf[0], for error reporting
}

func (c *byteCursor) errPos() int64 { return c.pos + int64(c.off) }

func (c *byteCursor) take(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.buf) {
		return nil, newError(c.errPos(), ErrKindUnexpectedEOF, "property data truncated")
	}

	b := c.buf[c.off : c.off+n]
	c.off += n

	return b, nil
}

func (c *byteCursor) u8() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (c *byteCursor) u32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

func (c *byteCursor) i16() (int16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}

	return int16(binary.LittleEndian.Uint16(b)), nil
}

func (c *byteCursor) i32() (int32, error) {
	v, err := c.u32()
	if err != nil {
		return 0, err
	}

	return int32(v), nil
}

func (c *byteCursor) i64() (int64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}

	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (c *byteCursor) f32() (float32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (c *byteCursor) f64() (float64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// decodeProperty decodes a single type-tagged property at the cursor.
func decodeProperty(c *byteCursor) (Property, error) {
	code, err := c.u8()
	if err != nil {
		return Property{}, err
	}

	switch propertyTypeCode(code) {
	case typeCodeBool:
		v, err := c.u8()
		if err != nil {
			return Property{}, err
		}

		return NewBool(v != 0).Borrow(), nil

	case typeCodeI16:
		v, err := c.i16()
		if err != nil {
			return Property{}, err
		}

		return NewI16(v).Borrow(), nil

	case typeCodeI32:
		v, err := c.i32()
		if err != nil {
			return Property{}, err
		}

		return NewI32(v).Borrow(), nil

	case typeCodeI64:
		v, err := c.i64()
		if err != nil {
			return Property{}, err
		}

		return NewI64(v).Borrow(), nil

	case typeCodeF32:
		v, err := c.f32()
		if err != nil {
			return Property{}, err
		}

		return NewF32(v).Borrow(), nil

	case typeCodeF64:
		v, err := c.f64()
		if err != nil {
			return Property{}, err
		}

		return NewF64(v).Borrow(), nil

	case typeCodeString:
		n, err := c.u32()
		if err != nil {
			return Property{}, err
		}

		b, err := c.take(int(n))
		if err != nil {
			return Property{}, err
		}

		if !utf8.Valid(b) {
			return Property{}, wrapUtf8(c.errPos(), nil)
		}

		return NewString(string(b)).Borrow(), nil

	case typeCodeBinary:
		n, err := c.u32()
		if err != nil {
			return Property{}, err
		}

		b, err := c.take(int(n))
		if err != nil {
			return Property{}, err
		}

		out := make([]byte, len(b))
		copy(out, b)

		return NewBinary(out).Borrow(), nil

	case typeCodeVecBool:
		raw, err := decodeArrayPayload(c, 1)
		if err != nil {
			return Property{}, err
		}

		out := make([]bool, len(raw))
		for i, v := range raw {
			out[i] = v != 0
		}

		return NewVecBool(out).Borrow(), nil

	case typeCodeVecI32:
		raw, err := decodeArrayPayload(c, 4)
		if err != nil {
			return Property{}, err
		}

		out := make([]int32, len(raw)/4)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}

		return NewVecI32(out).Borrow(), nil

	case typeCodeVecI64:
		raw, err := decodeArrayPayload(c, 8)
		if err != nil {
			return Property{}, err
		}

		out := make([]int64, len(raw)/8)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}

		return NewVecI64(out).Borrow(), nil

	case typeCodeVecF32:
		raw, err := decodeArrayPayload(c, 4)
		if err != nil {
			return Property{}, err
		}

		out := make([]float32, len(raw)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}

		return NewVecF32(out).Borrow(), nil

	case typeCodeVecF64:
		raw, err := decodeArrayPayload(c, 8)
		if err != nil {
			return Property{}, err
		}

		out := make([]float64, len(raw)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}

		return NewVecF64(out).Borrow(), nil

	default:
		return Property{}, newError(c.errPos()-1, ErrKindDataError, "unknown property type code")
	}
}

// decodeArrayPayload reads an array property's 3-field header (length,
// encoding, compressed length) and returns elemSize*length raw bytes,
// inflating a zlib-compressed payload if needed.
func decodeArrayPayload(c *byteCursor, elemSize int) ([]byte, error) {
	length, err := c.u32()
	if err != nil {
		return nil, err
	}

	encoding, err := c.u32()
	if err != nil {
		return nil, err
	}

	compressedLen, err := c.u32()
	if err != nil {
		return nil, err
	}

	payload, err := c.take(int(compressedLen))
	if err != nil {
		return nil, err
	}

	want := int(length) * elemSize

	switch arrayEncoding(encoding) {
	case arrayEncodingRaw:
		if len(payload) != want {
			return nil, newError(c.errPos(), ErrKindDataError, "raw array payload length mismatch")
		}

		out := make([]byte, len(payload))
		copy(out, payload)

		return out, nil

	case arrayEncodingZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, newError(c.errPos(), ErrKindDataError, "invalid zlib array payload: "+err.Error())
		}
		defer zr.Close()

		out := make([]byte, want)
		if _, err := io.ReadFull(zr, out); err != nil {
			return nil, newError(c.errPos(), ErrKindDataError, "zlib array payload shorter than declared length")
		}

		return out, nil

	default:
		return nil, newError(c.errPos(), ErrKindDataError, "unknown array encoding")
	}
}
