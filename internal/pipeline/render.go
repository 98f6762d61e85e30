package pipeline

import (
	"context"
	"log/slog"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
)

// Marker is a draw command for one station.
type Marker struct {
	StationName string             `json:"station_name"`
	Region      string             `json:"region"`
	Position    domain.Coordinates `json:"position"`
	Label       string             `json:"label"`
	Color       string             `json:"color"`
	Tier        domain.GradeTier   `json:"tier"`
}

// Surface is the map the readings are drawn on.
type Surface interface {
	AddMarker(m Marker, onClick func())
	ClearMarkers()
	CloseInfoWindows()
}

// Redrawer is a Surface that can apply a whole redraw at once. Readers of
// the surface see either the previous markers or the new ones, never a
// partial set.
type Redrawer interface {
	Surface
	Redraw(draw func(Surface))
}

// Renderer is a BatchLoader that redraws the surface with each reading set.
// Readings without coordinates stay in the snapshot but get no marker.
type Renderer struct {
	surface   Surface
	selection *Selection
	logger    *slog.Logger
}

// NewRenderer creates a Renderer. Marker clicks are reported to selection.
func NewRenderer(surface Surface, selection *Selection, logger *slog.Logger) *Renderer {
	return &Renderer{surface: surface, selection: selection, logger: logger}
}

// MarkerFor builds the draw command of a reading. It returns false when the
// reading cannot be placed.
func MarkerFor(r domain.StationReading) (Marker, bool) {
	if r.Coordinates == nil {
		return Marker{}, false
	}
	return Marker{
		StationName: r.StationName,
		Region:      r.Region,
		Position:    *r.Coordinates,
		Label:       r.Label,
		Color:       r.Color,
		Tier:        r.Overall.Tier,
	}, true
}

func (r *Renderer) LoadBatch(_ context.Context, readings []domain.StationReading) error {
	if rd, ok := r.surface.(Redrawer); ok {
		rd.Redraw(func(s Surface) { r.draw(s, readings) })
		return nil
	}
	r.draw(r.surface, readings)
	return nil
}

func (r *Renderer) draw(s Surface, readings []domain.StationReading) {
	s.CloseInfoWindows()
	s.ClearMarkers()

	for _, reading := range readings {
		m, ok := MarkerFor(reading)
		if !ok {
			r.logger.Warn("station has no coordinates, not drawn",
				"station", reading.StationName,
				"region", reading.Region,
			)
			continue
		}
		s.AddMarker(m, func() { r.selection.Notify(reading) })
	}
}
