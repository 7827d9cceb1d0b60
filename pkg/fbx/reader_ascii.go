package fbx

import (
	"io"
	"strconv"
	"strings"
)

// asciiReaderState tracks the ASCII reader's brace nesting and the
// single-line "leaf node" lookahead (a node written as one line with no
// braces implicitly closes immediately after its StartNode event).
//
// This mirrors the line/token lookahead shape of the frontmatter parser's
// lineSource (one-token pushback), adapted to node nesting instead of a
// flat key/value block.
type asciiReaderState struct {
	depth          int
	pendingEndNode bool
}

// readAsciiLine reads one line (without its terminator) from the source,
// advancing r.pos. Returns io.EOF only when zero bytes remain.
func (r *Reader) readAsciiLine() (string, error) {
	line, err := r.src.ReadString('\n')
	r.pos += int64(len(line))

	if err != nil {
		if err != io.EOF {
			return "", wrapIOError(r.pos, err)
		}

		if line == "" {
			return "", io.EOF
		}

		return strings.TrimRight(line, "\r\n"), nil
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// nextAscii returns the next event from the ASCII stage: a pending EndNode
// from a single-line leaf node, the terminal EndFbx, or the result of
// scanning forward past blank lines to the next meaningful line.
func (r *Reader) nextAscii() (Event, error) {
	if r.asc.pendingEndNode {
		r.asc.pendingEndNode = false

		return NewEndNode(), nil
	}

	for {
		line, err := r.readAsciiLine()
		if err == io.EOF {
			if r.asc.depth != 0 {
				return Event{}, newError(r.pos, ErrKindUnexpectedEOF, "document ended with open nodes")
			}

			r.stage = stageFinished

			return NewEndFbx(), nil
		}

		if err != nil {
			return Event{}, err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ";") {
			if r.cfg.IgnoreComments {
				continue
			}

			return NewComment(strings.TrimSpace(strings.TrimPrefix(trimmed, ";"))), nil
		}

		if trimmed == "}" {
			if r.asc.depth == 0 {
				return Event{}, newError(r.pos, ErrKindUnexpectedValue, "unmatched closing brace")
			}

			r.asc.depth--

			return NewEndNode(), nil
		}

		return r.parseAsciiNodeLine(trimmed)
	}
}

// parseAsciiNodeLine parses a "Name: v1, v2 {" / "Name: v1, v2" / "Name {"
// node header line.
func (r *Reader) parseAsciiNodeLine(line string) (Event, error) {
	hasBrace := strings.HasSuffix(line, "{")
	content := line

	if hasBrace {
		content = strings.TrimSpace(strings.TrimSuffix(content, "{"))
	}

	name := content
	rest := ""

	if idx := strings.IndexByte(content, ':'); idx >= 0 {
		name = content[:idx]
		rest = content[idx+1:]
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return Event{}, newError(r.pos, ErrKindUnexpectedValue, "node with empty name")
	}

	props, err := parseAsciiPropertyList(rest, r.pos)
	if err != nil {
		return Event{}, err
	}

	if hasBrace {
		r.asc.depth++
	} else {
		r.asc.pendingEndNode = true
	}

	return NewStartNode(name, props), nil
}

// parseAsciiPropertyList parses a comma-separated property value list.
//
// An array body marker ("*N", introducing a following "a: v,v,v..." child
// line per the real FBX array grammar) is recognized but not expanded: per
// spec, multi-line array node bodies are a case the ASCII reader is allowed
// to leave unimplemented.
func parseAsciiPropertyList(s string, pos int64) ([]Property, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if s[0] == '*' {
		return nil, newError(pos, ErrKindUnimplemented, "ascii array node body not parsed: "+s)
	}

	tokens := splitAsciiTokens(s)
	props := make([]Property, 0, len(tokens))

	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		p, err := parseAsciiToken(tok, pos)
		if err != nil {
			return nil, err
		}

		props = append(props, p)
	}

	return props, nil
}

// splitAsciiTokens splits s on top-level commas, treating double-quoted
// substrings as opaque.
func splitAsciiTokens(s string) []string {
	var tokens []string

	inQuotes := false
	start := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				tokens = append(tokens, s[start:i])
				start = i + 1
			}
		}
	}

	tokens = append(tokens, s[start:])

	return tokens
}

func parseAsciiToken(tok string, pos int64) (Property, error) {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return NewString(unescapeAsciiString(tok[1 : len(tok)-1])).Borrow(), nil
	}

	if strings.ContainsAny(tok, ".eE") {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Property{}, newError(pos, ErrKindDataError, "invalid float token: "+tok)
		}

		return NewF64(f).Borrow(), nil
	}

	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return Property{}, newError(pos, ErrKindDataError, "invalid integer token: "+tok)
	}

	if n >= minInt32 && n <= maxInt32 {
		return NewI32(int32(n)).Borrow(), nil
	}

	return NewI64(n).Borrow(), nil
}

const (
	minInt32 = -1 << 31
	maxInt32 = 1<<31 - 1
)

var asciiEntityUnescapes = []struct {
	from string
	to   string
}{
	{"&quot;", "\""},
	{"&lf;", "\n"},
	{"&cr;", "\r"},
	{"&amp;", "&"},
}

func unescapeAsciiString(s string) string {
	for _, e := range asciiEntityUnescapes {
		s = strings.ReplaceAll(s, e.from, e.to)
	}

	return s
}
