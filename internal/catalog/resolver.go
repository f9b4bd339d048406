package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// indexResource is the shared index file probed to pick a data root.
const indexResource = "stations.json"

// ErrNoDataRoot is returned when neither the local nor the remote data
// root can serve the station index.
var ErrNoDataRoot = errors.New("no data root available")

// Resolver maps relative asset paths to fetchable locations. Which root is
// active is decided once by Probe and read by every later Resolve or Fetch;
// construct the Resolver at startup and share it.
type Resolver struct {
	localRoot string
	remoteURL string
	remote    bool
	client    *http.Client
}

// NewResolver creates a resolver over a local data directory and a remote
// fallback base URL. Either may be empty, but Probe fails if both are.
func NewResolver(localRoot, remoteURL string) *Resolver {
	return &Resolver{
		localRoot: localRoot,
		remoteURL: remoteURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Probe reads the station index from the local root first and falls back
// to the remote root on failure. The root that answered stays active for
// the lifetime of the resolver.
func (r *Resolver) Probe(ctx context.Context) (*Index, error) {
	var localErr error
	if r.localRoot != "" {
		body, err := os.ReadFile(filepath.Join(r.localRoot, indexResource))
		if err == nil {
			idx, perr := parseIndex(body)
			if perr == nil {
				r.remote = false
				return idx, nil
			}
			err = perr
		}
		localErr = err
	} else {
		localErr = errors.New("local root not configured")
	}

	if r.remoteURL == "" {
		return nil, fmt.Errorf("%w: %v", ErrNoDataRoot, localErr)
	}

	body, err := r.get(ctx, indexResource)
	if err != nil {
		return nil, fmt.Errorf("%w: local: %v; remote: %v", ErrNoDataRoot, localErr, err)
	}
	idx, err := parseIndex(body)
	if err != nil {
		return nil, fmt.Errorf("%w: local: %v; remote: %v", ErrNoDataRoot, localErr, err)
	}

	r.remote = true
	return idx, nil
}

// Remote reports whether the remote root won the probe.
func (r *Resolver) Remote() bool {
	return r.remote
}

// Resolve maps a relative asset path to an absolute location under the
// active data root.
func (r *Resolver) Resolve(rel string) string {
	if r.remote {
		return joinURL(r.remoteURL, rel)
	}
	return filepath.Join(r.localRoot, filepath.FromSlash(rel))
}

// Fetch reads a relative resource from the active data root.
func (r *Resolver) Fetch(ctx context.Context, rel string) ([]byte, error) {
	if r.remote {
		return r.get(ctx, rel)
	}
	return os.ReadFile(r.Resolve(rel))
}

func (r *Resolver) get(ctx context.Context, rel string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(r.remoteURL, rel), nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", rel, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func parseIndex(body []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(body, &idx); err != nil {
		return nil, fmt.Errorf("parse station index: %w", err)
	}
	return &idx, nil
}

func joinURL(base, rel string) string {
	u, err := url.JoinPath(base, rel)
	if err != nil {
		return base + "/" + rel
	}
	return u
}
