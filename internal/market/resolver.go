// Package market resolves the rotating up/down market for an asset.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Pei01/updown-collector/internal/polymarket/gamma"
	"github.com/Pei01/updown-collector/internal/window"
)

// ErrNotFound means the catalog has no usable two-outcome market for the
// requested window. Callers treat it as "retry later", never as fatal.
var ErrNotFound = errors.New("market not found")

const resolveTimeout = 5 * time.Second

// Info identifies one resolved market instance.
type Info struct {
	Slug      string
	Title     string
	UpToken   string
	DownToken string
}

type Resolver struct {
	gamma *gamma.Client
	log   *slog.Logger
}

func NewResolver(g *gamma.Client, log *slog.Logger) *Resolver {
	return &Resolver{
		gamma: g,
		log:   log.With("component", "resolver"),
	}
}

// Resolve looks up the market for (asset, windowStart) and returns its title
// and up/down outcome tokens. Every failure mode collapses to ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, asset string, windowStart int64) (*Info, error) {
	slug := window.Slug(asset, windowStart)

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	m, err := r.gamma.GetMarketBySlug(ctx, slug)
	if err != nil {
		r.log.Warn("couldn't fetch market", "slug", slug, "error", err)
		return nil, ErrNotFound
	}
	if m == nil {
		r.log.Warn("empty market data", "slug", slug)
		return nil, ErrNotFound
	}

	var outcomes []string
	if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err != nil {
		r.log.Warn("couldn't parse outcomes", "slug", slug, "error", err)
		return nil, ErrNotFound
	}

	// A two-outcome market is a hard structural requirement.
	if len(outcomes) != 2 || len(m.ClobTokenIDs) != 2 {
		r.log.Warn("outcome and token counts don't match",
			"slug", slug, "outcomes", len(outcomes), "tokens", len(m.ClobTokenIDs))
		return nil, ErrNotFound
	}

	info := &Info{Slug: slug, Title: m.Question}
	for i, outcome := range outcomes {
		switch strings.ToLower(outcome) {
		case "up":
			info.UpToken = m.ClobTokenIDs[i]
		case "down":
			info.DownToken = m.ClobTokenIDs[i]
		}
	}
	if info.UpToken == "" || info.DownToken == "" {
		r.log.Warn("missing up or down outcome", "slug", slug, "outcomes", outcomes)
		return nil, ErrNotFound
	}

	r.log.Info("resolved market", "slug", slug, "title", info.Title)
	return info, nil
}
