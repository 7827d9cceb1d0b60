package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/fbxcodec/pkg/fbx"
)

// runConvert implements "fbxdump convert <in> <out>": it reads an FBX
// document in whichever format it is stored (binary or ascii, detected
// from content, never from the file extension) and writes it back out in
// the opposite format, or the same format if --to forces it.
func runConvert(args []string) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fbxdump convert [flags] <in> <out>")
		fs.PrintDefaults()
	}

	format := fs.String("to", "", `output format: "binary" or "ascii" (default: the opposite of the input's format)`)
	version := fs.Uint32("version", 0, "FBX version to write (default: the input's own version if the input is binary, else from config)")
	ignoreMinor := fs.Bool("ignore-minor-errors", false, "drop unwritable comments into binary output instead of failing")
	configPath := fs.String("config", "", "path to a .fbxdumprc JSONC config file")

	if err := fs.Parse(args); err != nil {
		return exitOnFlagError(fs, err)
	}

	if fs.NArg() != 2 {
		fs.Usage()

		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	in, out := fs.Arg(0), fs.Arg(1)

	src, err := os.ReadFile(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: reading %s: %v\n", in, err)

		return 1
	}

	r := fbx.NewReader(bytes.NewReader(src), fbx.ReaderConfig{})

	firstEvent, err := r.Next()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %s: %v\n", in, err)

		return 1
	}

	targetBinary, targetVersion, err := resolveTarget(*format, *version, firstEvent.Format, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	buf := &seekableBuffer{}

	w := fbx.NewWriter(buf, fbx.WriterConfig{
		IgnoreMinorErrors: *ignoreMinor,
		FBXVersion:        &targetVersion,
	})

	outFormat := fbx.Ascii
	if targetBinary {
		outFormat = fbx.Binary(targetVersion)
	}

	if err := w.Write(fbx.NewStartFbx(outFormat)); err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	if err := copyEvents(firstEvent, r, w); err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	for _, msg := range w.Warnings() {
		fmt.Fprintf(os.Stderr, "fbxdump: warning: %s\n", msg)
	}

	if err := atomic.WriteFile(out, bytes.NewReader(buf.Bytes())); err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: writing %s: %v\n", out, err)

		return 1
	}

	return 0
}

// copyEvents drains r (whose first event, already consumed, is passed in
// explicitly) and replays every event onto w except StartFbx, which the
// caller has already written with the target format.
func copyEvents(first fbx.Event, r *fbx.Reader, w *fbx.Writer) error {
	ev := first

	for {
		if ev.Kind != fbx.EventStartFbx {
			if err := w.Write(ev); err != nil {
				return err
			}
		}

		if ev.Kind == fbx.EventEndFbx {
			return nil
		}

		next, err := r.Next()
		if err == io.EOF {
			return w.Write(fbx.NewEndFbx())
		}

		if err != nil {
			return err
		}

		ev = next
	}
}

// resolveTarget decides the output format and version from the --to/
// --version flags, the source document's own format, and config defaults.
func resolveTarget(format string, version uint32, src fbx.FbxFormatType, cfg config) (binary bool, fbxVersion uint32, err error) {
	switch strings.ToLower(format) {
	case "binary":
		binary = true
	case "ascii":
		binary = false
	case "":
		binary = !src.IsBinary
	default:
		return false, 0, fmt.Errorf("invalid --to %q: want \"binary\" or \"ascii\"", format)
	}

	switch {
	case version != 0:
		fbxVersion = version
	case src.IsBinary:
		fbxVersion = src.Version
	default:
		fbxVersion = cfg.DefaultVersion
	}

	return binary, fbxVersion, nil
}

// seekableBuffer is an in-memory io.WriteSeeker, sized for the whole
// converted document before it is atomically swapped onto disk.
type seekableBuffer struct {
	buf []byte
	pos int64
}

func (s *seekableBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}

	copy(s.buf[s.pos:end], p)
	s.pos = end

	return len(p), nil
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64

	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("seekableBuffer: invalid whence %d", whence)
	}

	if newPos < 0 {
		return 0, fmt.Errorf("seekableBuffer: negative position %d", newPos)
	}

	s.pos = newPos

	return newPos, nil
}

func (s *seekableBuffer) Bytes() []byte { return s.buf }
