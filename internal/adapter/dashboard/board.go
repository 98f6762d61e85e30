package dashboard

import (
	"strconv"
	"sync"

	"github.com/wibaek/soma-hands-on-2/internal/pipeline"
)

// PlacedMarker is a marker on the board.
type PlacedMarker struct {
	ID string `json:"id"`
	pipeline.Marker
}

type boardEntry struct {
	placed  PlacedMarker
	onClick func()
}

// Board is an in-memory map surface. It keeps markers in draw order and at
// most one open info window. Marker ids are never reused, so a click on a
// marker from an earlier refresh is rejected instead of hitting a new one.
type Board struct {
	mu       sync.Mutex
	entries  []boardEntry
	nextID   int
	openInfo string
}

// NewBoard creates an empty Board.
func NewBoard() *Board {
	return &Board{}
}

func (b *Board) AddMarker(m pipeline.Marker, onClick func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.entries = append(b.entries, boardEntry{
		placed:  PlacedMarker{ID: strconv.Itoa(b.nextID), Marker: m},
		onClick: onClick,
	})
}

func (b *Board) ClearMarkers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
	b.openInfo = ""
}

func (b *Board) CloseInfoWindows() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openInfo = ""
}

// Redraw runs draw against a staging surface and swaps the result in under
// one lock. Concurrent readers keep seeing the previous markers until then.
func (b *Board) Redraw(draw func(pipeline.Surface)) {
	st := &stagedBoard{}
	draw(st)

	b.mu.Lock()
	defer b.mu.Unlock()

	if st.cleared {
		b.entries = nil
		b.openInfo = ""
	} else if st.closed {
		b.openInfo = ""
	}
	for _, e := range st.entries {
		b.nextID++
		e.placed.ID = strconv.Itoa(b.nextID)
		b.entries = append(b.entries, e)
	}
}

// stagedBoard buffers draw commands for Redraw.
type stagedBoard struct {
	entries []boardEntry
	cleared bool
	closed  bool
}

func (s *stagedBoard) AddMarker(m pipeline.Marker, onClick func()) {
	s.entries = append(s.entries, boardEntry{placed: PlacedMarker{Marker: m}, onClick: onClick})
}

func (s *stagedBoard) ClearMarkers() {
	s.entries = nil
	s.cleared = true
}

func (s *stagedBoard) CloseInfoWindows() {
	s.closed = true
}

// Markers returns the markers in draw order.
func (b *Board) Markers() []PlacedMarker {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]PlacedMarker, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.placed
	}
	return out
}

// OpenInfoWindow returns the marker whose info window is open.
func (b *Board) OpenInfoWindow() (PlacedMarker, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.entries {
		if e.placed.ID == b.openInfo {
			return e.placed, true
		}
	}
	return PlacedMarker{}, false
}

// Click opens the marker's info window, closing any other, and runs its
// click callback. It returns false for an unknown id.
func (b *Board) Click(id string) (PlacedMarker, bool) {
	b.mu.Lock()
	var hit *boardEntry
	for i := range b.entries {
		if b.entries[i].placed.ID == id {
			hit = &b.entries[i]
			break
		}
	}
	if hit == nil {
		b.mu.Unlock()
		return PlacedMarker{}, false
	}
	b.openInfo = id
	placed, onClick := hit.placed, hit.onClick
	b.mu.Unlock()

	if onClick != nil {
		onClick()
	}
	return placed, true
}
