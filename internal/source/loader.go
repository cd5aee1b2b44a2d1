// Package source loads leads page by page into an ordered collection and
// de-duplicates the repeated "need more data" signals of the list.
package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"leadlist-tui/internal/events"
	"leadlist-tui/internal/state"
	"leadlist-tui/internal/window"
	"leadlist-tui/pkg/types"
)

// ErrClosed is returned for fetches abandoned by Close
var ErrClosed = errors.New("source: loader closed")

// Fetcher retrieves one page of leads
type Fetcher interface {
	FetchPage(ctx context.Context, req types.PageRequest) (types.Page, error)
}

// LoaderConfig configures paging
type LoaderConfig struct {
	PageSize int           `json:"page_size"`
	Timeout  time.Duration `json:"timeout"`
	Sort     types.SortKey `json:"sort"`
}

// DefaultLoaderConfig returns the stock paging settings
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		PageSize: 100,
		Timeout:  10 * time.Second,
		Sort:     types.SortByName,
	}
}

// PageLoadedMsg carries a fetched page back to the UI thread
type PageLoadedMsg struct {
	Generation uint64
	Request    types.PageRequest
	Page       types.Page
	Shared     bool
	Elapsed    time.Duration
}

// PageFailedMsg reports a failed fetch
type PageFailedMsg struct {
	Generation uint64
	Request    types.PageRequest
	Err        error
}

// LoaderStats counts loader activity
type LoaderStats struct {
	Signals  int64 `json:"signals"`
	Requests int64 `json:"requests"`
	Ignored  int64 `json:"ignored"`
	Shared   int64 `json:"shared"`
	Pages    int64 `json:"pages"`
	Failures int64 `json:"failures"`
	Stale    int64 `json:"stale"`

	// AvgLatency averages the most recent page fetches
	AvgLatency time.Duration `json:"avg_latency"`
}

// latencyWindow is the number of fetch durations kept for AvgLatency
const latencyWindow = 16

// Loader is the data source of the leads list. NeedMoreData queues a fetch
// command; results are applied to the collection in Update, on the UI thread.
type Loader struct {
	fetcher Fetcher
	items   *state.Collection[string, types.Lead]
	config  LoaderConfig
	group   singleflight.Group

	// Paging state
	sort       types.SortKey
	generation uint64
	fetching   bool
	loaded     bool
	lastErr    error
	pending    []tea.Cmd

	ctx    context.Context
	cancel context.CancelFunc

	stats     LoaderStats
	latencies *events.CircularBuffer[time.Duration]
	mutex     sync.Mutex
}

// NewLoader creates a loader over fetcher
func NewLoader(fetcher Fetcher, config LoaderConfig) *Loader {
	defaults := DefaultLoaderConfig()
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Loader{
		fetcher: fetcher,
		items:   state.NewCollection(func(l types.Lead) string { return l.ID }),
		config:  config,
		sort:    config.Sort,
		ctx:     ctx,
		cancel:  cancel,

		latencies: events.NewCircularBuffer[time.Duration](latencyWindow),
	}
}

// Items returns the collection the loader fills
func (l *Loader) Items() *state.Collection[string, types.Lead] {
	return l.items
}

// Len returns the number of loaded leads
func (l *Loader) Len() int {
	return l.items.Len()
}

// KnownTotal returns the total reported by the fetcher
func (l *Loader) KnownTotal() window.Total {
	return l.items.KnownTotal()
}

// NeedMoreData requests the next page unless one is in flight or every lead
// is loaded. Redundant calls are counted and dropped.
func (l *Loader) NeedMoreData() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.stats.Signals++
	if l.fetching || l.items.AtEnd() || l.ctx.Err() != nil {
		l.stats.Ignored++
		return
	}
	l.queueFetch()
}

// queueFetch must be called with the mutex held
func (l *Loader) queueFetch() {
	req := types.PageRequest{
		Offset: l.items.Len(),
		Limit:  l.config.PageSize,
		Sort:   l.sort,
	}
	l.fetching = true
	l.stats.Requests++
	l.pending = append(l.pending, l.fetchCmd(l.ctx, l.generation, req))
	log.Debug("fetching page", "offset", req.Offset, "limit", req.Limit, "sort", req.Sort)
}

func (l *Loader) fetchCmd(ctx context.Context, gen uint64, req types.PageRequest) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ch := l.group.DoChan(req.Key(), func() (interface{}, error) {
			fctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
			defer cancel()
			return l.fetcher.FetchPage(fctx, req)
		})

		select {
		case res := <-ch:
			if res.Err != nil {
				return PageFailedMsg{Generation: gen, Request: req, Err: res.Err}
			}
			return PageLoadedMsg{
				Generation: gen,
				Request:    req,
				Page:       res.Val.(types.Page),
				Shared:     res.Shared,
				Elapsed:    time.Since(start),
			}
		case <-ctx.Done():
			return PageFailedMsg{Generation: gen, Request: req, Err: ErrClosed}
		}
	}
}

// Cmd drains the queued fetch commands
func (l *Loader) Cmd() tea.Cmd {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if len(l.pending) == 0 {
		return nil
	}
	cmds := l.pending
	l.pending = nil
	return tea.Batch(cmds...)
}

// Update applies fetch results. It reports whether the collection changed.
func (l *Loader) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case PageLoadedMsg:
		return l.applyPage(msg)
	case PageFailedMsg:
		l.mutex.Lock()
		defer l.mutex.Unlock()
		if msg.Generation != l.generation {
			l.stats.Stale++
			return false
		}
		l.fetching = false
		l.lastErr = msg.Err
		l.stats.Failures++
		log.Error("page fetch failed", "offset", msg.Request.Offset, "err", msg.Err)
		return false
	}
	return false
}

func (l *Loader) applyPage(msg PageLoadedMsg) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if msg.Generation != l.generation {
		l.stats.Stale++
		return false
	}
	l.fetching = false
	if msg.Shared {
		l.stats.Shared++
	}
	if msg.Page.Offset != l.items.Len() {
		l.stats.Stale++
		log.Warn("dropping out of order page", "offset", msg.Page.Offset, "loaded", l.items.Len())
		return false
	}

	l.items.Append(msg.Page.Items...)
	l.items.SetTotal(window.TotalFromPtr(msg.Page.Total))
	l.loaded = true
	l.lastErr = nil
	l.stats.Pages++
	l.latencies.Add(msg.Elapsed)
	log.Debug("page loaded", "offset", msg.Page.Offset, "items", len(msg.Page.Items),
		"total", l.items.KnownTotal(), "elapsed", msg.Elapsed)
	return true
}

// Reload drops every loaded lead and starts over in the given order
func (l *Loader) Reload(sort types.SortKey) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.generation++
	l.sort = sort
	l.items.Reset()
	l.fetching = false
	l.loaded = false
	l.lastErr = nil
	if l.ctx.Err() == nil {
		l.queueFetch()
	}
	log.Info("reloading leads", "sort", sort)
}

// Sort returns the current order
func (l *Loader) Sort() types.SortKey {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.sort
}

// Loaded reports whether the first page has arrived
func (l *Loader) Loaded() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.loaded
}

// Fetching reports whether a page is in flight
func (l *Loader) Fetching() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.fetching
}

// Err returns the last fetch error, cleared by the next successful page
func (l *Loader) Err() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.lastErr
}

// Stats returns loader counters
func (l *Loader) Stats() LoaderStats {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	stats := l.stats
	if recent := l.latencies.GetAll(); len(recent) > 0 {
		var sum time.Duration
		for _, d := range recent {
			sum += d
		}
		stats.AvgLatency = sum / time.Duration(len(recent))
	}
	return stats
}

// Status summarises paging for the status line
func (l *Loader) Status() string {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	switch {
	case l.lastErr != nil:
		return fmt.Sprintf("error: %v", l.lastErr)
	case l.fetching:
		return "loading"
	case l.items.AtEnd():
		return "complete"
	default:
		return "idle"
	}
}

// Close cancels in-flight fetches and stops further requests
func (l *Loader) Close() {
	l.cancel()
}
