package viewer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"astrobook/models"
)

// DefaultDebounce is how long observations must stop before the current page settles
const DefaultDebounce = 150 * time.Millisecond

// State of the current-page tracker
type State int

const (
	// Stable means the current page is settled
	Stable State = iota
	// Settling means a new candidate page was observed and the debounce window is open
	Settling
)

func (s State) String() string {
	if s == Settling {
		return "settling"
	}
	return "stable"
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Rect is the vertical extent of one mounted page relative to the viewport top
type Rect struct {
	Page   int     `json:"page"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Snapshot is a consistent view of the navigator
type Snapshot struct {
	Current  int    `json:"current"`
	Position int    `json:"position"` // 1-based index in the page set
	Total    int    `json:"total"`
	State    State  `json:"state"`
	Fragment string `json:"fragment"`
}

// Navigator tracks the current page of a scrollable document.
// Observations move it to Settling; it becomes Stable on the observed page only
// once no new observation arrives within the debounce window, so transient
// pages passed while scrolling are never reported. Safe for concurrent use.
type Navigator struct {
	mu sync.Mutex

	pages     models.AvailablePageSet
	current   int
	candidate int
	state     State
	observed  time.Time

	debounce time.Duration
	now      func() time.Time
}

// Option configures a Navigator
type Option func(*Navigator)

// WithDebounce sets the settle window
func WithDebounce(d time.Duration) Option {
	return func(n *Navigator) {
		if d >= 0 {
			n.debounce = d
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(n *Navigator) {
		if now != nil {
			n.now = now
		}
	}
}

// NewNavigator creates a navigator positioned on the first page of the set
func NewNavigator(pages models.AvailablePageSet, opts ...Option) (*Navigator, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("navigator needs at least one page")
	}
	n := &Navigator{
		pages:    append(models.AvailablePageSet(nil), pages...),
		current:  pages[0],
		state:    Stable,
		debounce: DefaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.candidate = n.current
	return n, nil
}

// Pages returns the page set the navigator moves through
func (n *Navigator) Pages() models.AvailablePageSet {
	return append(models.AvailablePageSet(nil), n.pages...)
}

// Observe records a viewport measurement and returns the page nearest the
// viewport's vertical center. ok is false when no rect belongs to the set.
func (n *Navigator) Observe(viewportHeight float64, rects []Rect) (page int, ok bool) {
	page, ok = n.nearestToCenter(viewportHeight, rects)
	if !ok {
		return 0, false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.candidate = page
	n.observed = n.now()
	if page == n.current {
		n.state = Stable
	} else {
		n.state = Settling
	}
	return page, true
}

// nearestToCenter picks the page whose center is closest to the viewport center.
// Ties go to the page earlier in the set.
func (n *Navigator) nearestToCenter(viewportHeight float64, rects []Rect) (int, bool) {
	center := viewportHeight / 2
	best, bestIdx := 0, -1
	bestDist := math.Inf(1)
	for _, r := range rects {
		idx := n.pages.IndexOf(r.Page)
		if idx < 0 || r.Height <= 0 {
			continue
		}
		dist := math.Abs(r.Top + r.Height/2 - center)
		if dist < bestDist || (dist == bestDist && idx < bestIdx) {
			best, bestIdx, bestDist = r.Page, idx, dist
		}
	}
	return best, bestIdx >= 0
}

// Settle promotes the candidate page once the debounce window has passed.
// It returns the current page and whether it changed.
func (n *Navigator) Settle() (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.settleLocked()
}

func (n *Navigator) settleLocked() (int, bool) {
	if n.state != Settling || n.now().Sub(n.observed) < n.debounce {
		return n.current, false
	}
	changed := n.current != n.candidate
	n.current = n.candidate
	n.state = Stable
	return n.current, changed
}

// Current returns the settled current page
func (n *Navigator) Current() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settleLocked()
	return n.current
}

// State returns whether the tracker is settling or stable
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settleLocked()
	return n.state
}

// Jump makes page current immediately. Pages outside the set are ignored
// and leave the current page unchanged.
func (n *Navigator) Jump(page int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.pages.Contains(page) {
		return false
	}
	n.current = page
	n.candidate = page
	n.state = Stable
	return true
}

// Next moves one step forward in set order and returns the new current page
func (n *Navigator) Next() int {
	return n.step(1)
}

// Prev moves one step backward in set order and returns the new current page
func (n *Navigator) Prev() int {
	return n.step(-1)
}

func (n *Navigator) step(delta int) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.settleLocked()
	idx := n.pages.IndexOf(n.current) + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(n.pages) {
		idx = len(n.pages) - 1
	}
	n.current = n.pages[idx]
	n.candidate = n.current
	n.state = Stable
	return n.current
}

// Fragment returns the deep-link fragment of the current page
func (n *Navigator) Fragment() string {
	return PageFragment(n.Current())
}

// Snapshot returns the navigator's state in one read
func (n *Navigator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settleLocked()
	return Snapshot{
		Current:  n.current,
		Position: n.pages.IndexOf(n.current) + 1,
		Total:    len(n.pages),
		State:    n.state,
		Fragment: PageFragment(n.current),
	}
}

// PageFragment returns the URL fragment that deep-links to a page
func PageFragment(page int) string {
	return "#page-" + strconv.Itoa(page)
}

// ParseFragment extracts the page number from "#page-N" (the leading # is optional)
func ParseFragment(fragment string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.TrimPrefix(fragment, "#"), "page-")
	if !ok {
		return 0, false
	}
	page, err := strconv.Atoi(rest)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}
