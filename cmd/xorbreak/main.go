package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	pkgversion "github.com/sara-star-quant/xorbreak/pkg/version"
)

// Build-time variables (set via -ldflags)
var (
	version   = ""        // Set via -ldflags "-X main.version=x.y.z"
	buildTime = "unknown" // Set via -ldflags "-X main.buildTime=..."
	gitCommit = "unknown" // Set via -ldflags "-X main.gitCommit=..."
)

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.String()
}

// env carries the process streams so commands can be driven from tests.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	summary string
	run     func(e *env, args []string) error
}

var commands = []command{
	{"hex2b64", "Convert hex to base64", hex2b64Command},
	{"b64", "Encode or decode base64", b64Command},
	{"xor", "XOR two equal-length hex buffers", xorCommand},
	{"repeat", "Repeating-key XOR encrypt", repeatCommand},
	{"score", "Break single-byte XOR by letter score", scoreCommand},
	{"words", "Break single-byte XOR by dictionary word hits", wordsCommand},
	{"detect", "Find the single-byte XOR line in a file", detectCommand},
	{"break", "Break repeating-key XOR in a base64 file", breakCommand},
	{"selftest", "Run known-answer self-tests", selftestCommand},
	{"version", "Print version information", versionCommand},
}

func main() {
	os.Exit(run(&env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}, os.Args[1:]))
}

func run(e *env, args []string) int {
	if len(args) < 1 {
		printUsage(e.stderr)
		return 1
	}

	name := args[0]
	switch name {
	case "help", "--help", "-h":
		printUsage(e.stdout)
		return 0
	}

	for _, c := range commands {
		if c.name != name {
			continue
		}
		err := c.run(e, args[1:])
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		default:
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return 1
		}
	}

	fmt.Fprintf(e.stderr, "Unknown command: %s\n\n", name)
	printUsage(e.stderr)
	return 1
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `xorbreak - XOR cipher codecs and cryptanalysis

USAGE:
    xorbreak <command> [options]

COMMANDS:`)
	for _, c := range commands {
		fmt.Fprintf(w, "    %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, `    help      Show this help message

Run 'xorbreak <command> -h' for more information on a command.

EXAMPLES:
    # Convert hex to base64
    xorbreak hex2b64 -in 49276d206b696c6c696e67

    # Recover a single-byte key
    xorbreak words -in 1b37373331363f78151b7f2b783431333d78397828372d363c78373e783a393b3736

    # Scan a file of hex lines with 16 workers and print Prometheus metrics
    xorbreak detect -file lines.txt -workers 16 -metrics

    # Break repeating-key XOR with debug logs and in-memory tracing
    xorbreak break -file ciphertext.b64 -log-level debug -tracing simple`)
}

func versionCommand(e *env, args []string) error {
	fs := newFlagSet(e, "version", "Print version information.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "xorbreak version %s\n", getVersion())
	if buildTime != "unknown" {
		fmt.Fprintf(e.stdout, "Built: %s\n", buildTime)
	}
	if gitCommit != "unknown" {
		fmt.Fprintf(e.stdout, "Commit: %s\n", gitCommit)
	}
	return nil
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(e *env, name, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "USAGE: xorbreak %s [options]\n\n%s\n\nOPTIONS:\n", name, description)
		fs.PrintDefaults()
	}
	return fs
}
