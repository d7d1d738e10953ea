// Command ronfmt reads a RON document and re-emits it in a canonical
// pretty-printed form, the parse-then-reserialize round trip used to
// sanity-check formatting changes against a corpus of .ron files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ronlang/ron"
)

func main() {
	var (
		indent          = flag.String("indent", "    ", "indentation string")
		newline         = flag.String("newline", "\n", "line terminator")
		structNames     = flag.Bool("struct-names", false, "always emit struct/variant names")
		enumerateArrays = flag.Bool("enumerate-arrays", false, "emit /*[i]*/ index comments before array elements")
		compact         = flag.Bool("compact", false, "render on a single line with no indentation")
		escapeStrings   = flag.Bool("escape-strings", true, "escape non-ASCII characters in strings")
		depthLimit      = flag.Int("depth-limit", ron.DefaultDepthLimit, "maximum nesting depth")
	)
	flag.Parse()

	data, err := readInput(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "ronfmt:", err)
		os.Exit(1)
	}

	val, err := ron.ParseValue(data, ron.WithDepthLimit(*depthLimit))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ronfmt:", err)
		os.Exit(1)
	}

	cfg := ron.DefaultPrettyConfig()
	if *compact {
		cfg = ron.CompactConfig()
	} else {
		cfg.Indentor = *indent
		cfg.NewLine = *newline
	}
	cfg.StructNames = *structNames
	cfg.EnumerateArrays = *enumerateArrays
	cfg.EscapeStrings = *escapeStrings
	cfg.DepthLimit = *depthLimit

	out, err := ron.MarshalValue(val, ron.WithPrettyConfig(cfg))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ronfmt:", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		fmt.Println()
	}
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}
