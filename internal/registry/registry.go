// Package registry looks up the latest published version of npm packages.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrLookup is wrapped by every failed version lookup.
var ErrLookup = errors.New("version lookup failed")

// Client queries an npm-compatible registry. Successful lookups are cached
// for the lifetime of the client.
type Client struct {
	base   string
	http   *http.Client
	cache  *lru.Cache[string, string]
	logger *zap.Logger
}

// Options configures a Client.
type Options struct {
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// CacheSize bounds the number of cached versions. Defaults to 256.
	CacheSize int
	Logger    *zap.Logger
}

// New returns a client for the registry at base.
func New(base string, opts Options) (*Client, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("registry url: %w", err)
	}
	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   opts.HTTPClient,
		cache:  cache,
		logger: opts.Logger,
	}, nil
}

type latestDoc struct {
	Version string `json:"version"`
}

// Latest returns the version tagged latest for pkg.
func (c *Client) Latest(ctx context.Context, pkg string) (string, error) {
	if v, ok := c.cache.Get(pkg); ok {
		return v, nil
	}

	endpoint := c.base + "/" + url.PathEscape(pkg) + "/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrLookup, pkg, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("querying registry", zap.String("package", pkg), zap.String("url", endpoint))
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrLookup, pkg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: %s: registry returned %s", ErrLookup, pkg, resp.Status)
	}

	var doc latestDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("%w: %s: decoding response: %w", ErrLookup, pkg, err)
	}
	if strings.TrimSpace(doc.Version) == "" {
		return "", fmt.Errorf("%w: %s: response has no version", ErrLookup, pkg)
	}

	c.cache.Add(pkg, doc.Version)
	return doc.Version, nil
}

// Versions resolves the latest version of every package, running at most
// limit lookups at once. The first failure cancels the rest and is returned.
func (c *Client) Versions(ctx context.Context, pkgs []string, limit int) (map[string]string, error) {
	versions := make([]string, len(pkgs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, pkg := range pkgs {
		i, pkg := i, pkg
		g.Go(func() error {
			v, err := c.Latest(ctx, pkg)
			if err != nil {
				return err
			}
			versions[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(pkgs))
	for i, pkg := range pkgs {
		out[pkg] = versions[i]
	}
	return out, nil
}
