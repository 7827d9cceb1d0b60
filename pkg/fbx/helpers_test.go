package fbx_test

import "io"

// seekBuf is a minimal in-memory io.WriteSeeker for exercising the binary
// writer's forward-offset fixups without a real file.
type seekBuf struct {
	buf []byte
	pos int64
}

func (s *seekBuf) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))

	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}

	n := copy(s.buf[s.pos:end], p)
	s.pos += int64(n)

	return n, nil
}

func (s *seekBuf) Seek(offset int64, whence int) (int64, error) {
	var abs int64

	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = int64(len(s.buf)) + offset
	}

	if abs < 0 {
		return 0, io.ErrUnexpectedEOF
	}

	s.pos = abs

	return abs, nil
}

func (s *seekBuf) Bytes() []byte { return s.buf }
