// Package collector runs the market rotation state machine and the tick
// ingestion pipeline: it polls the window boundary, swaps feed subscriptions
// when the window rolls over, folds book events into per-market best-bid
// snapshots and batches the resulting ticks into the store.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Pei01/updown-collector/internal/market"
	"github.com/Pei01/updown-collector/internal/metrics"
	"github.com/Pei01/updown-collector/internal/polymarket/websocket"
	"github.com/Pei01/updown-collector/internal/price"
	"github.com/Pei01/updown-collector/internal/store"
	"github.com/Pei01/updown-collector/internal/window"
)

const (
	DefaultQueueSize = 10000
	DefaultBatchSize = 50

	pollInterval   = 500 * time.Millisecond
	settleInterval = 100 * time.Millisecond
	retryDelay     = 5 * time.Second
	flushInterval  = time.Second
	flushTimeout   = 5 * time.Second
)

// Resolver looks up the market for an asset and window start.
type Resolver interface {
	Resolve(ctx context.Context, asset string, windowStart int64) (*market.Info, error)
}

// Feed is the subscription side of the push feed.
type Feed interface {
	Subscribe(ids []string) error
	Unsubscribe(ids []string) error
}

// TickStore is the durable side of the pipeline.
type TickStore interface {
	GetOrCreateMarket(ctx context.Context, slug, title string) (int64, error)
	InsertTicks(ctx context.Context, ticks []store.Tick) error
}

type Side int

const (
	SideUp Side = iota
	SideDown
)

func (s Side) String() string {
	if s == SideUp {
		return "UP"
	}
	return "DOWN"
}

type tokenInfo struct {
	marketID int64
	side     Side
}

type quote struct {
	price price.Price
	size  price.Size
}

// snapshot holds the latest best bid per side; a side is nil until first
// observed.
type snapshot struct {
	up   *quote
	down *quote
}

type Config struct {
	Asset      string
	QueueSize  int
	BatchSize  int
	PollEvery  time.Duration // window poll cadence, default 500ms
	RetryAfter time.Duration // delay after a failed switch, default 5s
}

type Collector struct {
	cfg      Config
	resolver Resolver
	feed     Feed
	store    TickStore
	log      *slog.Logger

	queue chan store.Tick

	// mu guards tokens, snapshots and activeTokens. Book handlers run on
	// their own goroutines, so every read-modify-write of a snapshot must
	// hold it.
	mu           sync.Mutex
	tokens       map[string]tokenInfo
	snapshots    map[int64]*snapshot
	activeTokens []string

	currentWindow int64 // last successfully tracked window start, 0 = none

	running    atomic.Bool
	writerDone chan struct{}
}

func New(cfg Config, resolver Resolver, feed Feed, ts TickStore, log *slog.Logger) *Collector {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = pollInterval
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = retryDelay
	}

	return &Collector{
		cfg:        cfg,
		resolver:   resolver,
		feed:       feed,
		store:      ts,
		log:        log.With("component", "collector"),
		queue:      make(chan store.Tick, cfg.QueueSize),
		tokens:     make(map[string]tokenInfo),
		snapshots:  make(map[int64]*snapshot),
		writerDone: make(chan struct{}),
	}
}

// Run drives the rotation loop until ctx is cancelled, then drains the
// writer before returning.
func (c *Collector) Run(ctx context.Context) error {
	c.log.Info("collector started", "asset", c.cfg.Asset)
	c.running.Store(true)
	go c.writerLoop()

	for ctx.Err() == nil {
		target := window.At(time.Now()).Start
		if target == c.currentWindow {
			sleep(ctx, c.cfg.PollEvery)
			continue
		}

		c.log.Info("window rolled over", "window_start", target)
		if err := c.switchToNewMarket(ctx, target); err != nil {
			c.log.Warn("couldn't switch market, retrying", "window_start", target, "error", err)
			sleep(ctx, c.cfg.RetryAfter)
			continue
		}

		c.currentWindow = target
		sleep(ctx, settleInterval)
	}

	c.log.Info("collector stopping, draining writer")
	c.running.Store(false)
	<-c.writerDone
	return ctx.Err()
}

// switchToNewMarket resolves the market for the new window and atomically
// swaps the live subscription over to it. The tracked window only advances
// when the whole switch succeeds, so the caller retries the same window on
// failure.
func (c *Collector) switchToNewMarket(ctx context.Context, windowStart int64) error {
	info, err := c.resolver.Resolve(ctx, c.cfg.Asset, windowStart)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	marketID, err := c.store.GetOrCreateMarket(ctx, info.Slug, info.Title)
	if err != nil {
		return fmt.Errorf("get or create market: %w", err)
	}

	// Retire the previous market before touching the routing table for the
	// new one; old and new tokens must never be live at the same time.
	c.retireActiveTokens()

	newTokens := []string{info.UpToken, info.DownToken}

	c.mu.Lock()
	c.tokens[info.UpToken] = tokenInfo{marketID: marketID, side: SideUp}
	c.tokens[info.DownToken] = tokenInfo{marketID: marketID, side: SideDown}
	if _, ok := c.snapshots[marketID]; !ok {
		c.snapshots[marketID] = &snapshot{}
	}
	c.mu.Unlock()

	if err := c.feed.Subscribe(newTokens); err != nil {
		// The feed keeps the requested set and replays it on reconnect.
		c.log.Warn("couldn't send subscribe, reconnect will reconcile", "error", err)
	}

	c.mu.Lock()
	c.activeTokens = newTokens
	c.mu.Unlock()

	metrics.MarketSwitches.Inc()
	c.log.Info("switched market", "slug", info.Slug, "market_id", marketID, "title", info.Title)
	return nil
}

func (c *Collector) retireActiveTokens() {
	c.mu.Lock()
	old := c.activeTokens
	c.activeTokens = nil
	c.mu.Unlock()

	if len(old) == 0 {
		return
	}

	c.log.Info("unsubscribing retired market tokens", "count", len(old))
	if err := c.feed.Unsubscribe(old); err != nil {
		c.log.Warn("couldn't send unsubscribe", "error", err)
	}

	c.mu.Lock()
	for _, t := range old {
		delete(c.tokens, t)
	}
	c.mu.Unlock()
}

// OnMessage is the feed callback. Non-book frames, untracked tokens and
// empty bid lists are all normal on this stream and dropped silently; late
// messages for retired tokens arrive because unsubscribe is asynchronous.
func (c *Collector) OnMessage(raw []byte) {
	book, ok := websocket.ParseBook(raw)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	info, tracked := c.tokens[book.AssetID]
	if !tracked {
		return
	}
	if len(book.Bids) == 0 {
		return
	}

	best := book.Bids[0]
	for _, bid := range book.Bids[1:] {
		if bid.Price > best.Price {
			best = bid
		}
	}

	snap := c.snapshots[info.marketID]
	if snap == nil {
		return
	}

	q := &quote{price: best.Price, size: best.Size}
	if info.side == SideUp {
		snap.up = q
	} else {
		snap.down = q
	}

	tick := store.Tick{TS: int64(book.Timestamp), MarketID: info.marketID}
	if snap.up != nil {
		tick.BuyUpPrice = int8val(int64(snap.up.price))
		tick.BuyUpSize = int8val(int64(snap.up.size))
	}
	if snap.down != nil {
		tick.BuyDownPrice = int8val(int64(snap.down.price))
		tick.BuyDownSize = int8val(int64(snap.down.size))
	}

	select {
	case c.queue <- tick:
	default:
		metrics.TicksDropped.Inc()
		c.log.Warn("queue full, dropping tick", "market_id", tick.MarketID)
	}
}

// writerLoop drains the queue into batches and flushes on size or on an
// idle timeout. After Run flips the running flag it keeps draining until
// the queue is empty, so enqueued ticks survive shutdown.
func (c *Collector) writerLoop() {
	defer close(c.writerDone)
	c.log.Info("writer started")

	buf := make([]store.Tick, 0, c.cfg.BatchSize)

	for {
		select {
		case t := <-c.queue:
			buf = append(buf, t)
			if len(buf) >= c.cfg.BatchSize {
				c.flush(&buf)
			}
		case <-time.After(flushInterval):
			if len(buf) > 0 {
				c.flush(&buf)
			}
			if !c.running.Load() && len(c.queue) == 0 {
				c.log.Info("writer drained")
				return
			}
		}
	}
}

func (c *Collector) flush(buf *[]store.Tick) {
	batch := *buf
	*buf = (*buf)[:0]

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := c.store.InsertTicks(ctx, batch); err != nil {
		metrics.FlushFailures.Inc()
		c.log.Error("couldn't flush ticks, dropping batch", "count", len(batch), "error", err)
		return
	}

	metrics.TicksWritten.Add(float64(len(batch)))
	c.log.Debug("flushed ticks", "count", len(batch))
}

func int8val(v int64) pgtype.Int8 {
	return pgtype.Int8{Int64: v, Valid: true}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
