// unbrowserify splits a browserify bundle back into the modules it was
// built from.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phobologic/unbrowserify/internal/config"
	"github.com/phobologic/unbrowserify/internal/decompile"
	"github.com/phobologic/unbrowserify/internal/filter"
	"github.com/phobologic/unbrowserify/internal/js"
	"github.com/phobologic/unbrowserify/internal/manifest"
	"github.com/phobologic/unbrowserify/internal/output"
	"github.com/phobologic/unbrowserify/internal/registry"
	"github.com/phobologic/unbrowserify/internal/resolve"
	"github.com/phobologic/unbrowserify/internal/toon"
	"github.com/phobologic/unbrowserify/internal/unbundle"
)

var version = "dev"

var errUsage = errors.New("usage: unbrowserify [flags] <bundle.js> <output-dir>")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout, stderr)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("unbrowserify", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		list         bool
		noDecompile  bool
		rules        string
		keepExternal bool
		ignorePath   string
		excludes     stringList
		noPackage    bool
		packageDir   string
		name         string
		registryURL  string
		jobs         int
		timeout      time.Duration
		asciiOnly    bool
		verbose      bool
		showVersion  bool
	)

	fs.BoolVar(&list, "list", false, "print the module map in TOON format and exit")
	fs.BoolVar(&noDecompile, "no-decompile", false, "write modules without normalizing minified idioms")
	fs.StringVar(&rules, "rules", "all", "comma-separated rewrites to apply ("+strings.Join(decompile.RuleNames(), ", ")+"; prefix with - to disable)")
	fs.BoolVar(&keepExternal, "keep-external", false, "also extract Node.js builtins and published packages")
	fs.StringVar(&ignorePath, "ignore", filter.DefaultFile, "file of gitignore-style module name patterns to skip")
	fs.Var(&excludes, "exclude", "module name pattern to skip (repeatable)")
	fs.BoolVar(&noPackage, "no-package", false, "do not write package.json")
	fs.StringVar(&packageDir, "package-dir", ".", "directory package.json is written to")
	fs.StringVar(&name, "name", "", "package name (default: output directory name)")
	fs.StringVar(&registryURL, "registry", cfg.Registry, "npm registry used to look up dependency versions")
	fs.IntVar(&jobs, "j", cfg.Concurrency, "maximum concurrent file writes and registry lookups")
	fs.DurationVar(&timeout, "timeout", cfg.Timeout, "registry lookup timeout")
	fs.BoolVar(&asciiOnly, "ascii", cfg.ASCIIOnly, "escape non-ASCII characters in string literals")
	fs.BoolVar(&verbose, "v", cfg.Debug, "log progress to stderr")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "unbrowserify %s\n", version)
		return nil
	}

	if fs.NArg() < 1 || (!list && fs.NArg() < 2) {
		return errUsage
	}
	bundlePath := fs.Arg(0)
	outDir := fs.Arg(1)

	ruleSet := decompile.Rules{}
	if !noDecompile {
		if ruleSet, err = decompile.ParseRules(rules); err != nil {
			return fmt.Errorf("-rules: %w", err)
		}
	}

	log := newLogger(stderr, verbose)
	defer func() { _ = log.Sync() }()

	ignore, err := filter.Load(ignorePath, excludes...)
	if err != nil {
		return err
	}
	if ignore.Len() > 0 {
		log.Debug("loaded ignore patterns", zap.String("file", ignorePath), zap.Int("patterns", ignore.Len()))
	}

	source, err := os.ReadFile(bundlePath)
	if err != nil {
		return fmt.Errorf("reading bundle: %w", err)
	}

	ctx := context.Background()
	opts := unbundle.Options{
		Label:        bundlePath,
		Rules:        ruleSet,
		KeepExternal: keepExternal,
		Logger:       log,
	}
	if ignore.Len() > 0 {
		opts.Ignore = ignore
	}
	res, err := unbundle.Unbundle(ctx, source, opts)
	if err != nil {
		return err
	}

	if list {
		_, _ = fmt.Fprintln(stdout, toon.Encode(res.BundleMap()))
		return nil
	}

	// Look dependencies up before writing anything so a registry failure
	// leaves the output directory untouched.
	var versions map[string]string
	if !noPackage && len(res.Packages()) > 0 {
		versions, err = lookupVersions(ctx, registryURL, res.Packages(), jobs, timeout, log)
		if err != nil {
			return err
		}
	}

	written, err := output.WriteModules(ctx, outDir, res.Modules.Modules, output.Options{
		Print:  js.PrintOptions{Beautify: true, ASCIIOnly: asciiOnly, Braces: true},
		Limit:  jobs,
		Logger: log,
	})
	if err != nil {
		return err
	}

	if !noPackage {
		pkg, err := packageDescriptor(name, outDir, packageDir, versions)
		if err != nil {
			return err
		}
		path, err := manifest.Write(packageDir, pkg)
		if err != nil {
			return err
		}
		log.Debug("wrote package descriptor", zap.String("path", path), zap.Int("dependencies", len(pkg.Dependencies)))
	}

	_, _ = fmt.Fprintf(stderr, "wrote %d modules to %s (%d packages, %d warnings)\n",
		len(written), outDir, len(res.Packages()), len(res.Warnings))
	return nil
}

func lookupVersions(ctx context.Context, base string, pkgs []string, jobs int, timeout time.Duration, log *zap.Logger) (map[string]string, error) {
	client, err := registry.New(base, registry.Options{Logger: log})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	versions, err := client.Versions(ctx, pkgs, jobs)
	if err != nil {
		return nil, fmt.Errorf("looking up dependency versions: %w", err)
	}
	log.Debug("looked up dependency versions", zap.Int("packages", len(pkgs)), zap.Duration("elapsed", time.Since(start)))
	return versions, nil
}

// packageDescriptor builds package.json for the written modules. Entry paths
// are relative to the directory the descriptor is written to.
func packageDescriptor(name, outDir, packageDir string, versions map[string]string) (*manifest.Package, error) {
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory: %w", err)
	}
	absPkg, err := filepath.Abs(packageDir)
	if err != nil {
		return nil, fmt.Errorf("resolving package directory: %w", err)
	}
	if name == "" {
		name = filepath.Base(absOut)
	}

	entry := func(module string) (string, error) {
		rel, err := filepath.Rel(absPkg, filepath.Join(absOut, module+".js"))
		if err != nil {
			return "", fmt.Errorf("locating %s: %w", module, err)
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasPrefix(rel, "../") {
			rel = "./" + rel
		}
		return rel, nil
	}
	mainPath, err := entry(resolve.MainName)
	if err != nil {
		return nil, err
	}
	browserPath, err := entry(resolve.BrowserName)
	if err != nil {
		return nil, err
	}
	return manifest.New(name, mainPath, browserPath, versions), nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-rules": true, "--rules": true,
	"-ignore": true, "--ignore": true,
	"-exclude": true, "--exclude": true,
	"-package-dir": true, "--package-dir": true,
	"-name": true, "--name": true,
	"-registry": true, "--registry": true,
	"-j": true, "--j": true,
	"-timeout": true, "--timeout": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
