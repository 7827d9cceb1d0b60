package fbx

import "encoding/binary"

// detectFormat peeks the source's leading bytes to decide between binary
// and ASCII FBX, consumes whatever preamble that format owns, and returns
// the StartFbx event.
//
// Binary files start with the 20-byte magic string, a 2-byte trailer
// (0x1A, 0x00), and a 4-byte little-endian version — all of which is
// consumed here. ASCII files have no fixed preamble; detection is "the
// leading bytes are not the binary magic", and nothing is consumed.
func (r *Reader) detectFormat() (Event, error) {
	peeked, err := r.src.Peek(len(binaryMagic))
	if err != nil {
		// Fewer bytes than the binary magic: can only be a (very short, or
		// empty) ASCII document.
		r.stage = stageAscii
		r.format = Ascii

		return NewStartFbx(r.format), nil
	}

	if string(peeked) != binaryMagic {
		r.stage = stageAscii
		r.format = Ascii

		return NewStartFbx(r.format), nil
	}

	header := make([]byte, headerSize)
	if err := r.readFull(header); err != nil {
		return Event{}, err
	}

	if header[len(binaryMagic)] != magicTrailerByte0 || header[len(binaryMagic)+1] != magicTrailerByte1 {
		return Event{}, newError(r.pos, ErrKindInvalidMagic, "malformed binary magic trailer")
	}

	version := binary.LittleEndian.Uint32(header[len(binaryMagic)+2:])

	r.format = Binary(version)
	r.stage = stageBinary
	r.bin.stack = nil

	return NewStartFbx(r.format), nil
}
