package viewer

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrobook/models"
)

// fakeClock is advanced by hand
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func previewSet() models.AvailablePageSet {
	return models.AvailablePageSet{1, 2, 3, 4, 5, 41}
}

func TestNewNavigator(t *testing.T) {
	_, err := NewNavigator(nil)
	assert.Error(t, err)

	nav, err := NewNavigator(previewSet())
	require.NoError(t, err)
	assert.Equal(t, 1, nav.Current())
	assert.Equal(t, Stable, nav.State())
	assert.Equal(t, previewSet(), nav.Pages())
}

func TestNavigator_Jump(t *testing.T) {
	nav, err := NewNavigator(previewSet())
	require.NoError(t, err)

	assert.True(t, nav.Jump(41))
	assert.Equal(t, 41, nav.Current())
	assert.Equal(t, "#page-41", nav.Fragment())

	assert.False(t, nav.Jump(12))
	assert.Equal(t, 41, nav.Current())
	assert.Equal(t, Stable, nav.State())
}

func TestNavigator_NextPrevFollowSetOrder(t *testing.T) {
	nav, err := NewNavigator(models.AvailablePageSet{1, 5, 41})
	require.NoError(t, err)

	assert.Equal(t, 1, nav.Prev())
	assert.Equal(t, 5, nav.Next())
	assert.Equal(t, 41, nav.Next())
	assert.Equal(t, 41, nav.Next())
	assert.Equal(t, 5, nav.Prev())
}

func TestNavigator_ObserveSettlesAfterDebounce(t *testing.T) {
	clock := newFakeClock()
	nav, err := NewNavigator(previewSet(), WithDebounce(100*time.Millisecond), WithClock(clock.Now))
	require.NoError(t, err)

	// scrolling fast past page 2 towards page 3
	page, ok := nav.Observe(1000, []Rect{{Page: 2, Top: 0, Height: 1000}})
	require.True(t, ok)
	assert.Equal(t, 2, page)
	assert.Equal(t, Settling, nav.State())
	assert.Equal(t, 1, nav.Current())

	clock.Advance(50 * time.Millisecond)
	nav.Observe(1000, []Rect{{Page: 3, Top: 0, Height: 1000}})
	clock.Advance(60 * time.Millisecond)
	assert.Equal(t, 1, nav.Current(), "page 2 was only passed through")

	clock.Advance(50 * time.Millisecond)
	current, changed := nav.Settle()
	assert.Equal(t, 3, current)
	assert.True(t, changed)
	assert.Equal(t, Stable, nav.State())

	current, changed = nav.Settle()
	assert.Equal(t, 3, current)
	assert.False(t, changed)
}

func TestNavigator_ObserveCurrentPageIsStable(t *testing.T) {
	clock := newFakeClock()
	nav, err := NewNavigator(previewSet(), WithClock(clock.Now))
	require.NoError(t, err)

	nav.Observe(1000, []Rect{{Page: 2, Top: 0, Height: 1000}})
	require.Equal(t, Settling, nav.State())

	nav.Observe(1000, []Rect{{Page: 1, Top: 0, Height: 1000}})
	assert.Equal(t, Stable, nav.State())
	clock.Advance(time.Second)
	assert.Equal(t, 1, nav.Current())
}

func TestNavigator_NearestToCenter(t *testing.T) {
	nav, err := NewNavigator(previewSet())
	require.NoError(t, err)

	tests := []struct {
		name   string
		rects  []Rect
		want   int
		wantOK bool
	}{
		{
			name:   "page covering center",
			rects:  []Rect{{Page: 3, Top: -900, Height: 1000}, {Page: 4, Top: 100, Height: 1000}},
			want:   4,
			wantOK: true,
		},
		{
			name:   "tie goes to earlier page",
			rects:  []Rect{{Page: 5, Top: 500, Height: 200}, {Page: 4, Top: 300, Height: 200}},
			want:   4,
			wantOK: true,
		},
		{
			name:   "pages outside the set ignored",
			rects:  []Rect{{Page: 12, Top: 0, Height: 1000}, {Page: 41, Top: 800, Height: 1000}},
			want:   41,
			wantOK: true,
		},
		{
			name:   "nothing usable",
			rects:  []Rect{{Page: 12, Top: 0, Height: 1000}, {Page: 2, Top: 0, Height: 0}},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, ok := nav.nearestToCenter(1000, tt.rects)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, page)
		})
	}
}

func TestNavigator_JumpCancelsSettling(t *testing.T) {
	clock := newFakeClock()
	nav, err := NewNavigator(previewSet(), WithClock(clock.Now))
	require.NoError(t, err)

	nav.Observe(1000, []Rect{{Page: 3, Top: 0, Height: 1000}})
	assert.True(t, nav.Jump(5))
	clock.Advance(time.Second)

	assert.Equal(t, 5, nav.Current())
	assert.Equal(t, Stable, nav.State())
}

func TestNavigator_Snapshot(t *testing.T) {
	nav, err := NewNavigator(previewSet())
	require.NoError(t, err)
	nav.Jump(41)

	snap := nav.Snapshot()
	assert.Equal(t, Snapshot{Current: 41, Position: 6, Total: 6, State: Stable, Fragment: "#page-41"}, snap)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"current":41,"position":6,"total":6,"state":"stable","fragment":"#page-41"}`, string(data))
}

func TestParseFragment(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"#page-41", 41, true},
		{"page-5", 5, true},
		{"#page-0", 0, false},
		{"#page-x", 0, false},
		{"#chapter-2", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		page, ok := ParseFragment(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, page, tt.in)
	}
	assert.Equal(t, "#page-7", PageFragment(7))
}
