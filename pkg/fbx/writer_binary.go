package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
)

// binaryNodeWriteFrame is one entry of the binary writer's open-node stack.
//
// endOffsetPos is the byte offset of the placeholder end_offset field that
// must be seeked back to and patched once the node closes; it is -1 for the
// synthetic root frame pushed at StartFbx, which has no header to patch but
// still needs to know whether a top-level null record is owed at EndFbx.
//
// hasChild tracks whether the node needs a null record of its own: seeded to
// true when the node was opened with zero properties (an empty node still
// needs a null record body), and forced true the moment a child node opens
// under it, regardless of how it was seeded.
type binaryNodeWriteFrame struct {
	endOffsetPos int64
	hasChild     bool
}

type binaryWriterState struct {
	stack []binaryNodeWriteFrame
}

func (w *Writer) writeBinaryHeader(version uint32) error {
	if err := w.writeBytes([]byte(binaryMagic)); err != nil {
		return err
	}

	if err := w.writeBytes([]byte{magicTrailerByte0, magicTrailerByte1}); err != nil {
		return err
	}

	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], version)

	return w.writeBytes(v[:])
}

func (w *Writer) writeBinaryEvent(ev Event) error {
	switch ev.Kind {
	case EventStartNode:
		return w.writeBinaryStartNode(ev)
	case EventEndNode:
		return w.writeBinaryEndNode()
	case EventEndFbx:
		return w.writeBinaryEndFbx()
	case EventComment:
		return w.writeBinaryComment()
	default:
		return newWriteError(w.pos, WriteErrKindUnwritableEvent, "unknown event kind")
	}
}

func (w *Writer) writeBinaryComment() error {
	if w.cfg.IgnoreMinorErrors {
		w.warn("dropped Comment event: binary streams cannot represent comments")

		return nil
	}

	return newWriteError(w.pos, WriteErrKindUnwritableEvent, "comments cannot be written to a binary stream")
}

func (w *Writer) writeBinaryStartNode(ev Event) error {
	if len(ev.Name) > 255 {
		return newWriteError(w.pos, WriteErrKindDataTooLarge, "node name exceeds 255 bytes")
	}

	propBuf := &bytes.Buffer{}

	for _, p := range ev.Properties {
		if err := encodeBinaryProperty(propBuf, p, w.pos); err != nil {
			return err
		}
	}

	propBytes := propBuf.Bytes()

	parent := &w.bin.stack[len(w.bin.stack)-1]
	parent.hasChild = true

	wide := w.format.Widens64()
	headerPos := w.pos

	if wide {
		if err := w.writeU64(0); err != nil {
			return err
		}

		if err := w.writeU64(uint64(len(ev.Properties))); err != nil {
			return err
		}

		if err := w.writeU64(uint64(len(propBytes))); err != nil {
			return err
		}
	} else {
		if len(ev.Properties) > math.MaxUint32 || len(propBytes) > math.MaxUint32 {
			return newWriteError(w.pos, WriteErrKindDataTooLarge, "property data exceeds 32-bit width at this fbx version")
		}

		if err := w.writeU32(0); err != nil {
			return err
		}

		if err := w.writeU32(uint32(len(ev.Properties))); err != nil {
			return err
		}

		if err := w.writeU32(uint32(len(propBytes))); err != nil {
			return err
		}
	}

	if err := w.writeBytes([]byte{byte(len(ev.Name))}); err != nil {
		return err
	}

	if err := w.writeBytes([]byte(ev.Name)); err != nil {
		return err
	}

	if err := w.writeBytes(propBytes); err != nil {
		return err
	}

	w.bin.stack = append(w.bin.stack, binaryNodeWriteFrame{
		endOffsetPos: headerPos,
		hasChild:     len(ev.Properties) == 0,
	})

	return nil
}

func (w *Writer) writeBinaryEndNode() error {
	if len(w.bin.stack) <= 1 {
		return newWriteError(w.pos, WriteErrKindExtraEndNode, "end node with no matching open node")
	}

	top := w.bin.stack[len(w.bin.stack)-1]
	w.bin.stack = w.bin.stack[:len(w.bin.stack)-1]

	if top.hasChild {
		if err := w.writeNullRecord(); err != nil {
			return err
		}
	}

	return w.patchEndOffset(top.endOffsetPos)
}

func (w *Writer) writeBinaryEndFbx() error {
	if len(w.bin.stack) != 1 {
		return newWriteError(w.pos, WriteErrKindExtraEndNode, "end fbx with unclosed nodes")
	}

	w.bin.stack = nil

	// The top-level node list always ends with a null record, even when the
	// document has zero top-level nodes — unlike a regular node, whose null
	// record is conditional on having a child or having no properties.
	if err := w.writeNullRecord(); err != nil {
		return err
	}

	if err := w.writeFooter(); err != nil {
		return err
	}

	w.stage = wstageFinished

	return nil
}

// patchEndOffset seeks back to a node's placeholder end_offset field, writes
// the now-known value (the writer's current position), and seeks forward
// again so subsequent writes continue appending.
func (w *Writer) patchEndOffset(placeholderPos int64) error {
	endOffset := w.pos

	if err := w.seekTo(placeholderPos); err != nil {
		return err
	}

	wide := w.format.Widens64()

	if wide {
		if err := w.writeU64(uint64(endOffset)); err != nil {
			return err
		}
	} else {
		if endOffset > math.MaxUint32 {
			return newWriteError(w.pos, WriteErrKindDataTooLarge, "end offset exceeds 32-bit width at this fbx version")
		}

		if err := w.writeU32(uint32(endOffset)); err != nil {
			return err
		}
	}

	return w.seekTo(endOffset)
}

func (w *Writer) writeNullRecord() error {
	return w.writeBytes(make([]byte, recordHeaderSize(w.format.Version)))
}

func (w *Writer) writeFooter() error {
	if err := w.writeBytes(footerMagic1[:]); err != nil {
		return err
	}

	pad := int((16 - (w.pos % 16)) % 16)
	if err := w.writeBytes(make([]byte, pad)); err != nil {
		return err
	}

	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], w.format.Version)

	if err := w.writeBytes(v[:]); err != nil {
		return err
	}

	if err := w.writeBytes(make([]byte, footerZeroPad)); err != nil {
		return err
	}

	return w.writeBytes(footerMagic2[:])
}

func (w *Writer) writeU32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)

	return w.writeBytes(b[:])
}

func (w *Writer) writeU64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)

	return w.writeBytes(b[:])
}

// encodeBinaryProperty appends the wire encoding of p to buf. pos is used
// only for error reporting and is the writer's logical position at the
// start of the node record.
func encodeBinaryProperty(buf *bytes.Buffer, p Property, pos int64) error {
	switch p.Kind() {
	case KindBool:
		v, _ := p.Bool()
		buf.WriteByte(byte(typeCodeBool))

		if v {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}

	case KindI16:
		v, _ := p.I16()
		buf.WriteByte(byte(typeCodeI16))

		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		buf.Write(b[:])

	case KindI32:
		v, _ := p.I32()
		buf.WriteByte(byte(typeCodeI32))

		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		buf.Write(b[:])

	case KindI64:
		v, _ := p.I64()
		buf.WriteByte(byte(typeCodeI64))

		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		buf.Write(b[:])

	case KindF32:
		v, _ := p.F32()
		buf.WriteByte(byte(typeCodeF32))

		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
		buf.Write(b[:])

	case KindF64:
		v, _ := p.F64()
		buf.WriteByte(byte(typeCodeF64))

		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf.Write(b[:])

	case KindString:
		v, _ := p.String()
		if len(v) > math.MaxUint32 {
			return newWriteError(pos, WriteErrKindDataTooLarge, "string property too large")
		}

		buf.WriteByte(byte(typeCodeString))

		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], uint32(len(v)))
		buf.Write(n[:])
		buf.WriteString(v)

	case KindBinary:
		v, _ := p.Binary(false)
		if len(v) > math.MaxUint32 {
			return newWriteError(pos, WriteErrKindDataTooLarge, "binary property too large")
		}

		buf.WriteByte(byte(typeCodeBinary))

		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], uint32(len(v)))
		buf.Write(n[:])
		buf.Write(v)

	case KindVecBool:
		v, _ := p.VecBool()
		raw := make([]byte, len(v))

		for i, b := range v {
			if b {
				raw[i] = 1
			}
		}

		return encodeBinaryArray(buf, typeCodeVecBool, raw, len(v), pos)

	case KindVecI32:
		v, _ := p.VecI32()
		raw := make([]byte, len(v)*4)

		for i, x := range v {
			binary.LittleEndian.PutUint32(raw[i*4:], uint32(x))
		}

		return encodeBinaryArray(buf, typeCodeVecI32, raw, len(v), pos)

	case KindVecI64:
		v, _ := p.VecI64()
		raw := make([]byte, len(v)*8)

		for i, x := range v {
			binary.LittleEndian.PutUint64(raw[i*8:], uint64(x))
		}

		return encodeBinaryArray(buf, typeCodeVecI64, raw, len(v), pos)

	case KindVecF32:
		v, _ := p.VecF32()
		raw := make([]byte, len(v)*4)

		for i, x := range v {
			binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(x))
		}

		return encodeBinaryArray(buf, typeCodeVecF32, raw, len(v), pos)

	case KindVecF64:
		v, _ := p.VecF64()
		raw := make([]byte, len(v)*8)

		for i, x := range v {
			binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(x))
		}

		return encodeBinaryArray(buf, typeCodeVecF64, raw, len(v), pos)

	default:
		return newWriteError(pos, WriteErrKindUnwritableEvent, "unknown property kind")
	}

	return nil
}

// encodeBinaryArray writes an array property's 3-field header followed by
// its payload, zlib-compressing at the package default level and falling
// back to raw storage if compression does not actually shrink the payload.
// There is no user-facing compression-level knob; this is the one default
// the format supports.
func encodeBinaryArray(buf *bytes.Buffer, code propertyTypeCode, raw []byte, length int, pos int64) error {
	if length > math.MaxUint32 {
		return newWriteError(pos, WriteErrKindDataTooLarge, "array property too large")
	}

	compressed := &bytes.Buffer{}
	zw := zlib.NewWriter(compressed)
	_, _ = zw.Write(raw)
	_ = zw.Close()

	encoding := arrayEncodingZlib
	payload := compressed.Bytes()

	if len(payload) >= len(raw) {
		encoding = arrayEncodingRaw
		payload = raw
	}

	buf.WriteByte(byte(code))

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(length))
	buf.Write(lenBuf[:])

	var encBuf [4]byte
	binary.LittleEndian.PutUint32(encBuf[:], uint32(encoding))
	buf.Write(encBuf[:])

	var clBuf [4]byte
	binary.LittleEndian.PutUint32(clBuf[:], uint32(len(payload)))
	buf.Write(clBuf[:])

	buf.Write(payload)

	return nil
}
