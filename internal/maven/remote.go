package maven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when no repository has the requested file
var ErrNotFound = errors.New("artifact not found")

// Remote downloads files from remote Maven repositories into the local one
type Remote struct {
	baseURLs []string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewRemote creates a remote fetcher. rps limits requests per second across
// all repositories; zero or less disables the limit.
func NewRemote(baseURLs []string, rps float64, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	urls := make([]string, 0, len(baseURLs))
	for _, u := range baseURLs {
		if u == "" {
			continue
		}
		urls = append(urls, strings.TrimSuffix(u, "/")+"/")
	}
	return &Remote{baseURLs: urls, client: client, limiter: limiter}
}

// Fetch downloads the repository relative path into dest. Each base URL is
// tried in order.
func (r *Remote) Fetch(ctx context.Context, relPath, dest string) error {
	relPath = filepath.ToSlash(relPath)
	var lastErr error = ErrNotFound
	for _, base := range r.baseURLs {
		err := r.fetchOne(ctx, base+relPath, dest)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}
	return lastErr
}

func (r *Remote) fetchOne(ctx context.Context, url, dest string) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "qmaid")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("failed to fetch %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
