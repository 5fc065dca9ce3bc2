// internal/app/system/calendar/zoom.go
package calendar

import (
	"fmt"
	"math"
	"time"
)

// Zoom bounds and step factors.
const (
	MinZoom     = 0.3
	MaxZoom     = 5.0
	DefaultZoom = 1.0

	wheelInFactor  = 1.25
	wheelOutFactor = 0.8
	buttonFactor   = 1.4
)

// ZoomAction is a user gesture that changes the zoom level.
type ZoomAction string

const (
	ZoomIn       ZoomAction = "in"
	ZoomOut      ZoomAction = "out"
	ZoomWheelIn  ZoomAction = "wheel_in"
	ZoomWheelOut ZoomAction = "wheel_out"
)

// Zoom is the calendar's magnification. It is always within
// [MinZoom, MaxZoom] and only changes multiplicatively.
type Zoom float64

// NewZoom clamps z into range.
func NewZoom(z float64) Zoom {
	return Zoom(clampZoom(z))
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return DefaultZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// Apply returns the zoom after a gesture, clamped to range.
func (z Zoom) Apply(a ZoomAction) (Zoom, bool) {
	f := float64(z)
	switch a {
	case ZoomIn:
		f *= buttonFactor
	case ZoomOut:
		f /= buttonFactor
	case ZoomWheelIn:
		f *= wheelInFactor
	case ZoomWheelOut:
		f *= wheelOutFactor
	default:
		return z, false
	}
	return Zoom(clampZoom(f)), true
}

// WheelAction maps a ctrl+wheel delta to a gesture: scrolling down zooms out.
func WheelAction(deltaY float64) ZoomAction {
	if deltaY > 0 {
		return ZoomWheelOut
	}
	return ZoomWheelIn
}

// SlotDuration is the time-axis granularity for this zoom level.
func (z Zoom) SlotDuration() time.Duration {
	switch {
	case z >= 3:
		return 5 * time.Minute
	case z >= 2:
		return 15 * time.Minute
	case z >= 1.5:
		return 30 * time.Minute
	case z >= 0.7:
		return time.Hour
	default:
		return 2 * time.Hour
	}
}

// FontSize is the event text size in pixels: 12*sqrt(z), at least 9.
func (z Zoom) FontSize() float64 {
	return math.Max(9, 12*math.Sqrt(float64(z)))
}

// Label describes the zoom level for the toolbar indicator.
func (z Zoom) Label() string {
	switch {
	case z >= 3:
		return "Ultra Detailed (5min slots)"
	case z >= 2:
		return "Detailed (15min slots)"
	case z >= 1.5:
		return "Normal (30min slots)"
	case z >= 0.7:
		return "Overview (1hr slots)"
	default:
		return "High Level (2hr slots)"
	}
}

// FormatSlot renders a slot duration as HH:MM:SS for the calendar widget.
func FormatSlot(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
