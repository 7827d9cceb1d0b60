package fbx

import "strconv"

// Binary wire format constants.
//
// Layout mirrors pkg/slotcache's header-offset style: named constants for
// byte widths instead of magic numbers scattered through the codec.
const (
	// binaryMagic is the 20-byte identifier at the start of every binary
	// FBX file, followed by a 2-byte trailer (0x1A, 0x00) and a 4-byte
	// little-endian format version.
	binaryMagic = "Kaydara FBX Binary  "

	magicTrailerByte0 = 0x1A
	magicTrailerByte1 = 0x00

	// headerSize is the total byte length of the magic + trailer + version
	// preamble that precedes the first node record.
	headerSize = len(binaryMagic) + 2 + 4

	// versionWidenThreshold is the format version at and above which node
	// record header fields widen from 32-bit to 64-bit.
	versionWidenThreshold uint32 = 7500

	// minFbxVersion and maxFbxVersion bound the versions StartFbx accepts
	// for binary output, per the writer's validation step.
	minFbxVersion uint32 = 7000
	maxFbxVersion uint32 = 8000

	// narrowRecordHeaderSize is the byte width of a node record's fixed
	// fields (end_offset, num_properties, property_list_len, name_len)
	// before the name, at versions below versionWidenThreshold.
	narrowRecordHeaderSize = 4 + 4 + 4 + 1

	// wideRecordHeaderSize is the same, at versions >= versionWidenThreshold.
	wideRecordHeaderSize = 8 + 8 + 8 + 1

	footerZeroPad = 120
)

// footerMagic1 and footerMagic2 bracket the binary footer: footerMagic1
// immediately after the final top-level null record, footerMagic2 as the
// file's last 16 bytes; see DESIGN.md for the lenient-footer decision.
var (
	footerMagic1 = [16]byte{
		0xFA, 0xBC, 0xAF, 0x0F, 0xDF, 0xCF, 0xDF, 0x6F,
		0xBF, 0x7F, 0xFF, 0x8F, 0x1F, 0xFF, 0x2F, 0x7F,
	}
	footerMagic2 = [16]byte{
		0xF8, 0x5A, 0x8C, 0x6A, 0xDE, 0xF5, 0xD9, 0x7E,
		0xEC, 0xE9, 0x0C, 0xE3, 0x75, 0x8F, 0x29, 0x0B,
	}
)

// propertyTypeCode identifies the wire representation of a single binary
// property record.
type propertyTypeCode byte

const (
	typeCodeBool    propertyTypeCode = 'C'
	typeCodeI16     propertyTypeCode = 'Y'
	typeCodeI32     propertyTypeCode = 'I'
	typeCodeI64     propertyTypeCode = 'L'
	typeCodeF32     propertyTypeCode = 'F'
	typeCodeF64     propertyTypeCode = 'D'
	typeCodeString  propertyTypeCode = 'S'
	typeCodeBinary  propertyTypeCode = 'R'
	typeCodeVecF32  propertyTypeCode = 'f'
	typeCodeVecF64  propertyTypeCode = 'd'
	typeCodeVecI64  propertyTypeCode = 'l'
	typeCodeVecI32  propertyTypeCode = 'i'
	typeCodeVecBool propertyTypeCode = 'b'
)

// arrayEncoding is the compression scheme used by array-typed property
// payloads (f, d, l, i, b).
type arrayEncoding uint32

const (
	arrayEncodingRaw  arrayEncoding = 0
	arrayEncodingZlib arrayEncoding = 1
)

// recordHeaderSize returns the fixed-field width of a node record header for
// the given FBX version.
func recordHeaderSize(version uint32) int {
	if version >= versionWidenThreshold {
		return wideRecordHeaderSize
	}

	return narrowRecordHeaderSize
}

// FbxFormatType identifies the serialization a stream uses. The zero value
// is the ASCII format; use [Binary] to construct a binary variant.
type FbxFormatType struct {
	IsBinary bool

	// Version is meaningful only when IsBinary is true. It is the binary
	// format version found in (or written to) the file header, e.g. 7400.
	Version uint32
}

// Binary returns the binary FbxFormatType for the given format version.
func Binary(version uint32) FbxFormatType {
	return FbxFormatType{IsBinary: true, Version: version}
}

// Ascii is the ASCII FbxFormatType.
var Ascii = FbxFormatType{}

// String implements fmt.Stringer.
func (f FbxFormatType) String() string {
	if !f.IsBinary {
		return "ascii"
	}

	return "binary(" + strconv.FormatUint(uint64(f.Version), 10) + ")"
}

// Widens64 reports whether node record headers at this format's version use
// the 64-bit field widths (version >= 7500). Always false for ASCII.
func (f FbxFormatType) Widens64() bool {
	return f.IsBinary && f.Version >= versionWidenThreshold
}
