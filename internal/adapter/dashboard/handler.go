package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/pipeline"
)

// Service is the reconciliation side the dashboard reads from and drives.
type Service interface {
	Current() *pipeline.Snapshot
	Refresh(ctx context.Context, regions []string) (pipeline.Result, error)
	SelectStation(stationName string) (domain.StationReading, bool)
	Selected() (domain.StationReading, bool)
	Thresholds() domain.ThresholdTable
}

// LiveLookup fetches the latest raw reading of one station.
type LiveLookup interface {
	FetchStation(ctx context.Context, stationName string) (domain.RawStationRecord, error)
}

// Handler serves the dashboard API.
type Handler struct {
	service    Service
	board      *Board
	regions    []string
	live       LiveLookup
	normalizer *domain.Normalizer
}

// NewHandler creates a dashboard handler. Manual refreshes cover regions.
// A nil live disables the live station lookup.
func NewHandler(svc Service, board *Board, regions []string, live LiveLookup, normalizer *domain.Normalizer) *Handler {
	return &Handler{service: svc, board: board, regions: regions, live: live, normalizer: normalizer}
}

type stationsResponse struct {
	CycleID     string                  `json:"cycle_id,omitempty"`
	RefreshedAt *time.Time              `json:"refreshed_at"`
	Stations    []domain.StationReading `json:"stations"`
}

type stationResponse struct {
	Reading domain.StationReading `json:"reading"`
	Advice  domain.HealthAdvice   `json:"advice"`
}

type markersResponse struct {
	Markers        []PlacedMarker `json:"markers"`
	OpenInfoWindow *PlacedMarker  `json:"open_info_window"`
}

type refreshResponse struct {
	CycleID       string   `json:"cycle_id"`
	Outcome       string   `json:"outcome"`
	Stations      int      `json:"stations"`
	FailedRegions []string `json:"failed_regions"`
	EmptyRegions  []string `json:"empty_regions"`
	DurationMS    int64    `json:"duration_ms"`
}

type legendResponse struct {
	Thresholds domain.ThresholdTable                    `json:"thresholds"`
	Advice     map[domain.GradeTier]domain.HealthAdvice `json:"advice"`
}

// Stations handles GET /api/stations.
func (h *Handler) Stations(c *gin.Context) {
	resp := stationsResponse{Stations: []domain.StationReading{}}
	if snap := h.service.Current(); snap != nil {
		refreshedAt := snap.RefreshedAt
		resp.CycleID = snap.CycleID
		resp.RefreshedAt = &refreshedAt
		if snap.Readings != nil {
			resp.Stations = snap.Readings
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Station handles GET /api/stations/:name.
func (h *Handler) Station(c *gin.Context) {
	snap := h.service.Current()
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no air-quality data loaded yet"})
		return
	}
	reading, ok := snap.Find(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
		return
	}
	c.JSON(http.StatusOK, stationResponse{Reading: reading, Advice: reading.Overall.Tier.Advice()})
}

// SelectStation handles POST /api/stations/:name/select.
func (h *Handler) SelectStation(c *gin.Context) {
	reading, ok := h.service.SelectStation(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
		return
	}
	c.JSON(http.StatusOK, stationResponse{Reading: reading, Advice: reading.Overall.Tier.Advice()})
}

// LiveStation handles GET /api/live/:name, bypassing the snapshot.
func (h *Handler) LiveStation(c *gin.Context) {
	if h.live == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "live lookup disabled"})
		return
	}
	raw, err := h.live.FetchStation(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	reading := h.normalizer.Normalize(raw)
	c.JSON(http.StatusOK, stationResponse{Reading: reading, Advice: reading.Overall.Tier.Advice()})
}

// Markers handles GET /api/markers.
func (h *Handler) Markers(c *gin.Context) {
	resp := markersResponse{Markers: h.board.Markers()}
	if open, ok := h.board.OpenInfoWindow(); ok {
		resp.OpenInfoWindow = &open
	}
	c.JSON(http.StatusOK, resp)
}

// ClickMarker handles POST /api/markers/:id/click.
func (h *Handler) ClickMarker(c *gin.Context) {
	if _, ok := h.board.Click(c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "marker not found"})
		return
	}
	selected, ok := h.service.Selected()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, stationResponse{Reading: selected, Advice: selected.Overall.Tier.Advice()})
}

// Selection handles GET /api/selection.
func (h *Handler) Selection(c *gin.Context) {
	selected, ok := h.service.Selected()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, stationResponse{Reading: selected, Advice: selected.Overall.Tier.Advice()})
}

// Refresh handles POST /api/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	res, err := h.service.Refresh(c.Request.Context(), h.regions)
	switch {
	case errors.Is(err, pipeline.ErrRefreshInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, pipeline.ErrTotalFetchFailure):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":          err.Error(),
			"failed_regions": failedRegions(res.Failures),
		})
		return
	case errors.Is(err, pipeline.ErrRefreshCancelled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, refreshResponse{
		CycleID:       res.CycleID,
		Outcome:       string(res.Outcome),
		Stations:      len(res.Readings),
		FailedRegions: failedRegions(res.Failures),
		EmptyRegions:  nonNil(res.Empty),
		DurationMS:    res.Duration.Milliseconds(),
	})
}

// Legend handles GET /api/legend.
func (h *Handler) Legend(c *gin.Context) {
	advice := make(map[domain.GradeTier]domain.HealthAdvice, len(domain.Tiers))
	for _, tier := range domain.Tiers {
		advice[tier] = tier.Advice()
	}
	c.JSON(http.StatusOK, legendResponse{Thresholds: h.service.Thresholds(), Advice: advice})
}

func failedRegions(failures []*pipeline.RegionFetchError) []string {
	regions := make([]string, 0, len(failures))
	for _, f := range failures {
		regions = append(regions, f.Region)
	}
	return regions
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
