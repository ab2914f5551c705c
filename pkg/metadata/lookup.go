package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// maxResponseBytes bounds how much of a lookup response is read
const maxResponseBytes = 4 << 20

// Lookup fetches a display name for an id from somewhere other than disk
type Lookup interface {
	Lookup(ctx context.Context, id string) (string, error)
}

// HTTPLookup queries a store endpoint returning {"<id>": {"success": bool,
// "data": {"name": ...}}}. The endpoint is a URL template where {id} is
// replaced by the item id.
type HTTPLookup struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
	Client    *http.Client
}

// NewHTTPLookup returns a lookup with its own client
func NewHTTPLookup(endpoint, userAgent string, timeout time.Duration) *HTTPLookup {
	return &HTTPLookup{
		Endpoint:  endpoint,
		UserAgent: userAgent,
		Timeout:   timeout,
		Client:    &http.Client{Timeout: timeout},
	}
}

// Lookup performs one GET. Every failure, including transport errors, is
// reported as ErrNotResolvable so callers can fall back to a placeholder.
func (h *HTTPLookup) Lookup(ctx context.Context, id string) (string, error) {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	url := strings.ReplaceAll(h.Endpoint, "{id}", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotResolvable, "invalid lookup endpoint %q", h.Endpoint)
	}
	req.Header.Set("Accept", "application/json")
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotResolvable, "name lookup for %s failed", id)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Newf(errors.ErrNotResolvable, "name lookup for %s returned %s", id, resp.Status).
			WithDetail("status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotResolvable, "failed to read lookup response for %s", id)
	}
	return ExtractName(string(body), id)
}

// ExtractName pulls the display name for id out of a lookup response.
// A top-level null, "success": false, or a missing name all mean the id is
// unknown to the endpoint.
func ExtractName(body, id string) (string, error) {
	doc, err := oj.ParseString(body)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotResolvable, "malformed lookup response for %s", id)
	}
	if doc == nil {
		return "", errors.Newf(errors.ErrNotResolvable, "no record for %s", id)
	}

	keyed := fmt.Sprintf("$['%s']", id)
	if success, ok := first(keyed+".success", doc).(bool); ok && !success {
		return "", errors.Newf(errors.ErrNotResolvable, "no record for %s", id)
	}

	for _, path := range []string{keyed + ".data.name", "$.data.name"} {
		if name, ok := first(path, doc).(string); ok && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name), nil
		}
	}
	return "", errors.Newf(errors.ErrNotResolvable, "lookup response for %s has no name", id)
}

func first(path string, doc any) any {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil
	}
	return x.First(doc)
}
