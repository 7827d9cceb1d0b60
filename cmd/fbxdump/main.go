// fbxdump is a small CLI built on top of pkg/fbx: it converts FBX documents
// between binary and ASCII, dumps a document's node tree as JSON or YAML,
// and offers an interactive REPL for stepping through a parsed tree.
//
// Usage:
//
//	fbxdump convert <in> <out>   Convert binary<->ascii (input format detected from content)
//	fbxdump dump <in>            Print the node tree as JSON or YAML
//	fbxdump inspect <in>         Open an interactive REPL over the node tree
//
// Run "fbxdump <command> --help" for command-specific flags.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()

		return 1
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "convert":
		return runConvert(rest)
	case "dump":
		return runDump(rest)
	case "inspect":
		return runInspect(rest)
	case "-h", "--help", "help":
		printUsage()

		return 0
	default:
		fmt.Fprintf(os.Stderr, "fbxdump: unknown command %q\n\n", cmd)
		printUsage()

		return 1
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  fbxdump convert [flags] <in> <out>   Convert between binary and ascii")
	fmt.Fprintln(os.Stderr, "  fbxdump dump [flags] <in>            Print the node tree as JSON or YAML")
	fmt.Fprintln(os.Stderr, "  fbxdump inspect <in>                 Open an interactive REPL over the node tree")
	fmt.Fprintln(os.Stderr, "\nRun 'fbxdump <command> --help' for command-specific flags.")
}

func exitOnFlagError(fs *flag.FlagSet, err error) int {
	if err == flag.ErrHelp {
		return 0
	}

	fmt.Fprintf(os.Stderr, "fbxdump: %v\n", err)

	return 1
}
