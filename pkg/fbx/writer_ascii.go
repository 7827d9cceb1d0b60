package fbx

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// asciiNodeWriteFrame tracks, for one open node, whether its header line has
// been turned into a container ("Name: props {\n") by the arrival of a
// child or comment, or is still open as a candidate one-line leaf.
type asciiNodeWriteFrame struct {
	opened bool
}

type asciiWriterState struct {
	stack []asciiNodeWriteFrame
}

func (w *Writer) writeAsciiHeader() error {
	major := w.cfg.asciiVersion() / 1000
	minor := (w.cfg.asciiVersion() / 100) % 10

	header := "; FBX " + strconv.FormatUint(uint64(major), 10) + "." +
		strconv.FormatUint(uint64(minor), 10) +
		".0 project file\n; " + strings.Repeat("-", 52) + "\n\n"

	return w.writeBytes([]byte(header))
}

// commitPendingParent turns the current deepest open frame's header line
// into a container, if it hasn't been already. Called before writing
// anything that proves the enclosing node has content: a child StartNode or
// a Comment nested inside it.
func (w *Writer) commitPendingParent() error {
	if len(w.asc.stack) == 0 {
		return nil
	}

	top := &w.asc.stack[len(w.asc.stack)-1]
	if top.opened {
		return nil
	}

	top.opened = true

	return w.writeBytes([]byte(" {\n"))
}

func (w *Writer) writeAsciiEvent(ev Event) error {
	switch ev.Kind {
	case EventStartNode:
		return w.writeAsciiStartNode(ev)
	case EventEndNode:
		return w.writeAsciiEndNode()
	case EventEndFbx:
		return w.writeAsciiEndFbx()
	case EventComment:
		return w.writeAsciiComment(ev.Text)
	default:
		return newWriteError(w.pos, WriteErrKindUnwritableEvent, "unknown event kind")
	}
}

func (w *Writer) writeAsciiStartNode(ev Event) error {
	if err := w.commitPendingParent(); err != nil {
		return err
	}

	propsText, err := formatAsciiProperties(ev.Properties, w.pos)
	if err != nil {
		return err
	}

	var line strings.Builder
	line.WriteString(strings.Repeat("\t", len(w.asc.stack)))
	line.WriteString(ev.Name)
	line.WriteString(":")

	if propsText != "" {
		line.WriteString(" ")
		line.WriteString(propsText)
	}

	if err := w.writeBytes([]byte(line.String())); err != nil {
		return err
	}

	w.asc.stack = append(w.asc.stack, asciiNodeWriteFrame{})

	return nil
}

func (w *Writer) writeAsciiEndNode() error {
	if len(w.asc.stack) == 0 {
		return newWriteError(w.pos, WriteErrKindExtraEndNode, "end node with no matching open node")
	}

	top := w.asc.stack[len(w.asc.stack)-1]
	w.asc.stack = w.asc.stack[:len(w.asc.stack)-1]

	if top.opened {
		return w.writeBytes([]byte(strings.Repeat("\t", len(w.asc.stack)) + "}\n"))
	}

	return w.writeBytes([]byte("\n"))
}

func (w *Writer) writeAsciiEndFbx() error {
	if len(w.asc.stack) != 0 {
		return newWriteError(w.pos, WriteErrKindExtraEndNode, "end fbx with unclosed nodes")
	}

	w.stage = wstageFinished

	return nil
}

func (w *Writer) writeAsciiComment(text string) error {
	if err := w.commitPendingParent(); err != nil {
		return err
	}

	indent := strings.Repeat("\t", len(w.asc.stack))

	return w.writeBytes([]byte(indent + "; " + text + "\n"))
}

// formatAsciiProperties renders a StartNode's properties as the
// comma-separated value list following the colon. Vector-typed properties
// are left unimplemented on the ASCII side, symmetric with the ASCII
// reader's treatment of array node bodies; see DESIGN.md.
func formatAsciiProperties(props []Property, pos int64) (string, error) {
	if len(props) == 0 {
		return "", nil
	}

	parts := make([]string, len(props))

	for i, p := range props {
		s, err := formatAsciiProperty(p, pos)
		if err != nil {
			return "", err
		}

		parts[i] = s
	}

	return strings.Join(parts, ","), nil
}

func formatAsciiProperty(p Property, pos int64) (string, error) {
	switch p.Kind() {
	case KindBool:
		v, _ := p.Bool()
		if v {
			return "1", nil
		}

		return "0", nil
	case KindI16:
		v, _ := p.I16()
		return strconv.FormatInt(int64(v), 10), nil
	case KindI32:
		v, _ := p.I32()
		return strconv.FormatInt(int64(v), 10), nil
	case KindI64:
		v, _ := p.I64()
		return strconv.FormatInt(v, 10), nil
	case KindF32:
		v, _ := p.F32()
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case KindF64:
		v, _ := p.F64()
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case KindString:
		v, _ := p.String()
		return "\"" + escapeAsciiString(v) + "\"", nil
	case KindBinary:
		v, _ := p.Binary(false)
		return "\"" + base64.StdEncoding.EncodeToString(v) + "\"", nil
	default:
		return "", newWriteError(pos, WriteErrKindUnwritableEvent, "vector properties are not supported in ascii output")
	}
}

var asciiEntityEscapes = []struct {
	from string
	to   string
}{
	{"&", "&amp;"},
	{"\"", "&quot;"},
	{"\n", "&lf;"},
	{"\r", "&cr;"},
}

func escapeAsciiString(s string) string {
	for _, e := range asciiEntityEscapes {
		s = strings.ReplaceAll(s, e.from, e.to)
	}

	return s
}
