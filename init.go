package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phobologic/unbrowserify/internal/filter"
)

const (
	sentinelStart = "# unbrowserify:start"
	sentinelEnd   = "# unbrowserify:end"
)

// runInit implements the `unbrowserify init` subcommand, which writes (or
// updates) a block of default patterns in an ignore file.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("unbrowserify init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: unbrowserify init [flags] [path]

Write the default module ignore patterns to an ignore file. The patterns are
wrapped in sentinel comments so they can be updated in place on subsequent
runs without touching your own patterns. Creates the file if it does not
exist.

path defaults to ./%s.

Flags:
`, filter.DefaultFile)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && fs.NArg() == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := filter.DefaultFile
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote default ignore patterns to %s\n", path)
	return nil
}

// defaultPatterns match the runtime shims browserify inlines into every
// bundle that touches the corresponding Node.js API.
var defaultPatterns = []string{
	"node_modules/browserify",
	"node_modules/process",
	"node_modules/buffer",
	"node_modules/base64-js",
	"node_modules/ieee754",
	"node_modules/isarray",
	"node_modules/inherits",
	"node_modules/events",
	"node_modules/util",
}

// generateSection returns the sentinel-wrapped block of default patterns.
func generateSection() string {
	body := `# Module names matching these gitignore-style patterns are not written.
# Edit outside this block; it is rewritten by "unbrowserify init".
` + strings.Join(defaultPatterns, "\n")

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
