package timelinemodule

import "math"

// View helpers shared by the API layer and the UI shell. Zoom is expressed
// as pixels per second throughout.

// TimeToPixel converts a timeline instant to a horizontal pixel position.
func TimeToPixel(t float64, timeline Timeline) float64 {
	return t * timeline.Zoom
}

// PixelToTime converts a horizontal pixel position to a timeline instant.
func PixelToTime(px float64, timeline Timeline) float64 {
	return px / timeline.Zoom
}

// ClipRect returns the left edge and width of a clip in pixels.
func ClipRect(clip Clip, timeline Timeline) (left, width float64) {
	return clip.Start * timeline.Zoom, clip.Duration * timeline.Zoom
}

// FitZoom returns the zoom that fits all content in availableWidth pixels.
func FitZoom(contentDuration, availableWidth float64) float64 {
	if contentDuration <= 0 {
		return DefaultZoom
	}
	return clampZoom(availableWidth / contentDuration)
}

// ZoomPercentToPixelsPerSecond maps a 1-100 zoom slider position to pixels
// per second on an exponential scale, so fine control is available at both
// extremes.
func ZoomPercentToPixelsPerSecond(percent float64) float64 {
	clamped := math.Max(1, math.Min(100, percent))
	return MinZoom * math.Pow(MaxZoom/MinZoom, clamped/100)
}

// PixelsPerSecondToZoomPercent is the inverse slider mapping.
func PixelsPerSecondToZoomPercent(pps float64) float64 {
	clamped := clampZoom(pps)
	return 100 * math.Log(clamped/MinZoom) / math.Log(MaxZoom/MinZoom)
}

// SnapToGrid pulls t to the nearest multiple of interval when snapping is
// enabled and the distance is within the snap window at the current zoom.
func SnapToGrid(t float64, timeline Timeline, interval float64) float64 {
	if !timeline.Snap || interval <= 0 {
		return t
	}
	snapped := math.Round(t/interval) * interval
	if math.Abs(t-snapped) <= timeline.SnapThreshold/timeline.Zoom {
		return snapped
	}
	return t
}
