// Package output writes assembled modules to disk.
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/unbrowserify/internal/assemble"
	"github.com/phobologic/unbrowserify/internal/js"
)

// Options configures WriteModules.
type Options struct {
	Print js.PrintOptions
	// Limit caps concurrent writes; zero or less means no limit.
	Limit  int
	Logger *zap.Logger
}

// Path returns the file a module named name is written to, rejecting names
// that would land outside dir.
func Path(dir, name string) (string, error) {
	file := filepath.FromSlash(name + ".js")
	if name == "" || !filepath.IsLocal(file) {
		return "", fmt.Errorf("module name %q escapes the output directory", name)
	}
	return filepath.Join(dir, file), nil
}

// WriteModules prints every module and writes it to dir/<name>.js. All
// paths are validated and all directories created before any file is
// written. It returns the written paths in module order.
func WriteModules(ctx context.Context, dir string, modules []*assemble.Module, opts Options) ([]string, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	paths := make([]string, len(modules))
	dirs := make(map[string]struct{})
	for i, m := range modules {
		p, err := Path(dir, m.Name)
		if err != nil {
			return nil, err
		}
		paths[i] = p
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Limit > 0 {
		g.SetLimit(opts.Limit)
	}
	for i, m := range modules {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src := js.Print(m.Program, opts.Print)
			if err := os.WriteFile(paths[i], []byte(src), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", paths[i], err)
			}
			log.Debug("wrote module", zap.String("name", m.Name), zap.String("path", paths[i]), zap.Int("bytes", len(src)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
