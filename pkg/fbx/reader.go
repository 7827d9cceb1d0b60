package fbx

import (
	"bufio"
	"io"
)

// ReaderConfig configures a [Reader].
//
// The zero value is a valid, maximally strict configuration.
type ReaderConfig struct {
	// IgnoreComments drops Comment events instead of yielding them. Has no
	// effect on binary streams, which never contain comments.
	IgnoreComments bool
}

type readerStage uint8

const (
	stageMagic readerStage = iota
	stageBinary
	stageAscii
	stageFinished
)

// Reader pulls [Event] values out of a byte source containing an FBX
// document, binary or ASCII, detected automatically from the source's
// leading bytes.
//
// A Reader is not safe for concurrent use. Call [Reader.Next] until it
// returns [io.EOF]; any other error is terminal and leaves the Reader in a
// latched failed state (Next continues to return an error on all further
// calls).
type Reader struct {
	src *bufio.Reader
	cfg ReaderConfig

	pos   int64
	stage readerStage

	format FbxFormatType
	failed bool

	warnings []string

	bin binaryReaderState
	asc asciiReaderState
}

// NewReader returns a Reader that reads an FBX document from src.
func NewReader(src io.Reader, cfg ReaderConfig) *Reader {
	return &Reader{
		src:   bufio.NewReaderSize(src, 32*1024),
		cfg:   cfg,
		stage: stageMagic,
	}
}

// Warnings returns the non-fatal notices accumulated so far (e.g. a
// tolerated footer mismatch). The slice is owned by the Reader; callers
// should copy it before mutating.
func (r *Reader) Warnings() []string { return r.warnings }

// Format returns the document's format, valid only after the first
// successful call to [Reader.Next].
func (r *Reader) Format() FbxFormatType { return r.format }

// Pos returns the number of bytes consumed from the source so far.
func (r *Reader) Pos() int64 { return r.pos }

func (r *Reader) warn(msg string) {
	r.warnings = append(r.warnings, msg)
}

// Next returns the next event in the document. It returns io.EOF once the
// matching EndFbx event has already been returned; any other non-nil error
// is an [*Error] and is terminal.
func (r *Reader) Next() (Event, error) {
	if r.failed {
		return Event{}, newError(r.pos, ErrKindDataError, "reader already failed")
	}

	switch r.stage {
	case stageMagic:
		ev, err := r.detectFormat()
		if err != nil {
			r.failed = true
		}

		return ev, err
	case stageBinary:
		ev, err := r.nextBinary()
		if err != nil {
			r.failed = true
		}

		return ev, err
	case stageAscii:
		ev, err := r.nextAscii()
		if err != nil {
			r.failed = true
		}

		return ev, err
	case stageFinished:
		return Event{}, io.EOF
	default:
		return Event{}, newError(r.pos, ErrKindDataError, "unreachable reader stage")
	}
}

// readFull reads exactly len(buf) bytes, advancing pos, translating io.EOF
// into the appropriate terminal error kind depending on whether any bytes
// had already been read (ErrKindUnexpectedEOF) or none at all
// (ErrKindUnexpectedEOF as well — a short read anywhere but the very first
// byte of the document is always unexpected).
func (r *Reader) readFull(buf []byte) error {
	n, err := io.ReadFull(r.src, buf)
	r.pos += int64(n)

	if err == nil {
		return nil
	}

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return newError(r.pos, ErrKindUnexpectedEOF, "unexpected end of input")
	}

	return wrapIOError(r.pos, err)
}
