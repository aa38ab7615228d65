package gpu

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// clampViewport returns the camera viewport clipped to a target of the given size. An empty
// viewport covers the whole target.
func clampViewport(c camera.Camera, width, height uint32) xr.Viewport {
	vp := c.Viewport()
	if vp.Width == 0 && vp.Height == 0 {
		return xr.Viewport{Width: width, Height: height}
	}
	if vp.X >= width || vp.Y >= height {
		return xr.Viewport{}
	}
	if vp.X+vp.Width > width {
		vp.Width = width - vp.X
	}
	if vp.Y+vp.Height > height {
		vp.Height = height - vp.Y
	}
	return vp
}
