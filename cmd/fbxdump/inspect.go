package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/fbxcodec/pkg/fbx"
)

// runInspect implements "fbxdump inspect <in>": it parses the document
// fully into a tree, then opens an interactive REPL for walking it.
func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fbxdump inspect <in>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitOnFlagError(fs, err)
	}

	if fs.NArg() != 1 {
		fs.Usage()

		return 1
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	r := fbx.NewReader(f, fbx.ReaderConfig{})

	doc, err := buildDumpDocument(r)

	f.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	repl := &inspectREPL{
		root: &dumpNode{Name: "/", Children: doc.Nodes},
		path: nil,
	}

	if err := repl.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

		return 1
	}

	return 0
}

// inspectREPL is the interactive command loop over a parsed node tree.
type inspectREPL struct {
	root  *dumpNode
	path  []*dumpNode
	liner *liner.State
}

func inspectHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".fbxdump_inspect_history")
}

// Run starts the REPL loop.
func (r *inspectREPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(inspectHistoryFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Println("fbxdump inspect - interactive node browser")
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt(r.prompt())
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		cmdArgs := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")

			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "ls", "list":
			r.cmdList()

		case "cd":
			r.cmdCd(cmdArgs)

		case "props", "properties":
			r.cmdProps()

		case "pwd":
			fmt.Println(r.pathString())

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *inspectREPL) saveHistory() {
	if path := inspectHistoryFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *inspectREPL) completer(line string) []string {
	candidates := []string{"ls", "cd", "props", "pwd", "help", "exit"}

	var out []string

	for _, c := range candidates {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}

	return out
}

func (r *inspectREPL) current() *dumpNode {
	if len(r.path) == 0 {
		return r.root
	}

	return r.path[len(r.path)-1]
}

func (r *inspectREPL) pathString() string {
	if len(r.path) == 0 {
		return "/"
	}

	parts := make([]string, len(r.path))
	for i, n := range r.path {
		parts[i] = n.Name
	}

	return "/" + strings.Join(parts, "/")
}

func (r *inspectREPL) prompt() string {
	return fmt.Sprintf("fbxdump:%s> ", r.pathString())
}

func (r *inspectREPL) cmdList() {
	cur := r.current()
	if len(cur.Children) == 0 {
		fmt.Println("(no children)")

		return
	}

	for i, child := range cur.Children {
		fmt.Printf("%3d  %s  (%d properties, %d children)\n", i, child.Name, len(child.Properties), len(child.Children))
	}
}

func (r *inspectREPL) cmdCd(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: cd <name|index|..>")

		return
	}

	target := args[0]

	if target == ".." {
		if len(r.path) > 0 {
			r.path = r.path[:len(r.path)-1]
		}

		return
	}

	if target == "/" {
		r.path = nil

		return
	}

	cur := r.current()

	if idx, err := strconv.Atoi(target); err == nil {
		if idx < 0 || idx >= len(cur.Children) {
			fmt.Printf("no child at index %d\n", idx)

			return
		}

		r.path = append(r.path, cur.Children[idx])

		return
	}

	for _, child := range cur.Children {
		if child.Name == target {
			r.path = append(r.path, child)

			return
		}
	}

	fmt.Printf("no child named %q\n", target)
}

func (r *inspectREPL) cmdProps() {
	cur := r.current()
	if len(cur.Properties) == 0 {
		fmt.Println("(no properties)")

		return
	}

	for i, p := range cur.Properties {
		fmt.Printf("%3d  %v\n", i, p)
	}
}

func (r *inspectREPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  ls, list        list the current node's children")
	fmt.Println("  cd <name|idx>   descend into a child; 'cd ..' to go up, 'cd /' for root")
	fmt.Println("  props           print the current node's properties")
	fmt.Println("  pwd             print the current node path")
	fmt.Println("  help, ?         show this help")
	fmt.Println("  exit, quit, q   leave the REPL")
}
