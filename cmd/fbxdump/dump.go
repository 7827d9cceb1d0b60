package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/fbxcodec/pkg/fbx"
)

// dumpNode is a JSON/YAML-friendly projection of one FBX node, built by
// draining a [fbx.Reader]'s event stream into a tree.
type dumpNode struct {
	Name       string      `json:"name" yaml:"name"`
	Properties []any       `json:"properties,omitempty" yaml:"properties,omitempty"`
	Children   []*dumpNode `json:"children,omitempty" yaml:"children,omitempty"`
}

type dumpDocument struct {
	Format   string      `json:"format" yaml:"format"`
	Comments []string    `json:"comments,omitempty" yaml:"comments,omitempty"`
	Nodes    []*dumpNode `json:"nodes" yaml:"nodes"`
}

// runDump implements "fbxdump dump <in>": it prints the document's node
// tree as JSON or YAML.
func runDump(args []string) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fbxdump dump [flags] <in>")
		fs.PrintDefaults()
	}

	format := fs.String("format", "", `output format: "json" or "yaml" (default: from config, else "json")`)
	ignoreComments := fs.Bool("ignore-comments", false, "omit Comment events from the dump")
	configPath := fs.String("config", "", "path to a .fbxdumprc JSONC config file")

	if err := fs.Parse(args); err != nil {
		return exitOnFlagError(fs, err)
	}

	if fs.NArg() != 1 {
		fs.Usage()

		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	outFormat := strings.ToLower(*format)
	if outFormat == "" {
		outFormat = cfg.DumpFormat
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}
	defer f.Close()

	r := fbx.NewReader(f, fbx.ReaderConfig{IgnoreComments: *ignoreComments})

	doc, err := buildDumpDocument(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	for _, msg := range r.Warnings() {
		fmt.Fprintf(os.Stderr, "fbxdump: warning: %s\n", msg)
	}

	switch outFormat {
	case "json":
		return writeJSON(os.Stdout, doc)
	case "yaml":
		return writeYAML(os.Stdout, doc)
	default:
		fmt.Fprintf(os.Stderr, "fbxdump: invalid --format %q: want \"json\" or \"yaml\"\n", outFormat)

		return 1
	}
}

// buildDumpDocument drains r fully into a dumpDocument tree.
func buildDumpDocument(r *fbx.Reader) (*dumpDocument, error) {
	doc := &dumpDocument{}

	var stack []*dumpNode

	for {
		ev, err := r.Next()
		if err == io.EOF {
			return doc, nil
		}

		if err != nil {
			return nil, err
		}

		switch ev.Kind {
		case fbx.EventStartFbx:
			doc.Format = ev.Format.String()
		case fbx.EventEndFbx:
			return doc, nil
		case fbx.EventComment:
			doc.Comments = append(doc.Comments, ev.Text)
		case fbx.EventStartNode:
			node := &dumpNode{Name: ev.Name, Properties: propertiesToAny(ev.Properties)}

			if len(stack) == 0 {
				doc.Nodes = append(doc.Nodes, node)
			} else {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, node)
			}

			stack = append(stack, node)
		case fbx.EventEndNode:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// propertiesToAny projects each Property to a JSON/YAML-representable
// value, preferring the narrowest native representation of its kind.
func propertiesToAny(props []fbx.Property) []any {
	out := make([]any, len(props))

	for i, p := range props {
		out[i] = propertyToAny(p)
	}

	return out
}

func propertyToAny(p fbx.Property) any {
	switch p.Kind() {
	case fbx.KindBool:
		v, _ := p.Bool()
		return v
	case fbx.KindI16:
		v, _ := p.I16()
		return v
	case fbx.KindI32:
		v, _ := p.I32()
		return v
	case fbx.KindI64:
		v, _ := p.I64()
		return v
	case fbx.KindF32:
		v, _ := p.F32()
		return v
	case fbx.KindF64:
		v, _ := p.F64()
		return v
	case fbx.KindVecBool:
		v, _ := p.VecBool()
		return v
	case fbx.KindVecI32:
		v, _ := p.VecI32()
		return v
	case fbx.KindVecI64:
		v, _ := p.VecI64()
		return v
	case fbx.KindVecF32:
		v, _ := p.VecF32()
		return v
	case fbx.KindVecF64:
		v, _ := p.VecF64()
		return v
	case fbx.KindString:
		v, _ := p.String()
		return v
	case fbx.KindBinary:
		v, _ := p.Binary(false)
		return v
	default:
		return nil
	}
}

func writeJSON(w io.Writer, doc *dumpDocument) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(doc); err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	return 0
}

func writeYAML(w io.Writer, doc *dumpDocument) int {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	defer enc.Close()

	if err := enc.Encode(doc); err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	return 0
}
