package eventform

import (
	"log/slog"

	"eventplanner/internal/models"
)

// DefaultCenter is the initial camera position and the default event location.
var DefaultCenter = models.Coordinate{Lat: 50.6594, Lon: 14.0416}

// DefaultZoom is the initial map zoom level.
const DefaultZoom = 13

// MapSurface is whatever the host draws the map with. It must call
// onPointerClick for every click on the map itself.
type MapSurface interface {
	RenderMap(center models.Coordinate, zoom int, onPointerClick func(models.Coordinate))
}

// Marker is the single pin shown on the map. It cannot be dragged; it moves
// only when the map itself is clicked.
type Marker struct {
	Position models.Coordinate
}

// LocationPicker turns map clicks into draft location updates.
type LocationPicker struct {
	store  *DraftStore
	logger *slog.Logger
}

// NewLocationPicker creates a picker writing into store.
func NewLocationPicker(logger *slog.Logger, store *DraftStore) *LocationPicker {
	return &LocationPicker{store: store, logger: logger}
}

// Attach renders the map on surface and starts listening for clicks.
func (p *LocationPicker) Attach(surface MapSurface) {
	surface.RenderMap(DefaultCenter, DefaultZoom, p.handleClick)
}

func (p *LocationPicker) handleClick(at models.Coordinate) {
	if !at.Valid() {
		p.logger.Warn("Ignoring map click outside coordinate bounds", "lat", at.Lat, "lon", at.Lon)
		return
	}
	p.store.SetLocation(at.Lat, at.Lon)
}

// Marker returns the pin, always at the draft's current location.
func (p *LocationPicker) Marker() Marker {
	return Marker{Position: p.store.Location()}
}
