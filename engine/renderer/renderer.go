package renderer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend RendererBackend
	views   TextureViews
	logger  *logrus.Logger

	missingTargets map[camera.RenderTarget]bool
}

// Renderer renders the active XR cameras into their registered texture views.
//
// Cameras that share a target are rendered within one pass over that target, each into its own
// viewport, in ascending camera order. Inactive cameras and cameras whose target has no
// registered view are skipped.
type Renderer interface {
	// TextureViews returns the registry cameras resolve their targets in.
	//
	// Returns:
	//   - TextureViews: the registry
	TextureViews() TextureViews

	// RenderCameras renders one frame for the given cameras.
	//
	// Parameters:
	//   - cameras: the cameras to consider
	//
	// Returns:
	//   - int: the number of cameras rendered
	//   - error: error if the backend failed to begin or submit the frame
	RenderCameras(cameras []camera.Camera) (int, error)
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer that draws through backend.
//
// Parameters:
//   - backend: the graphics backend
//   - options: functional options for the renderer
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(backend RendererBackend, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:             &sync.Mutex{},
		backend:        backend,
		logger:         logrus.StandardLogger(),
		missingTargets: make(map[camera.RenderTarget]bool),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.views == nil {
		r.views = NewTextureViews()
	}
	return r
}

func (r *renderer) TextureViews() TextureViews {
	return r.views
}

func (r *renderer) RenderCameras(cameras []camera.Camera) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := make([]camera.Camera, 0, len(cameras))
	for _, c := range cameras {
		if c != nil && c.Active() {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return 0, nil
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Order() < active[j].Order() })

	// Group by target, keeping the order of each target's first camera.
	var targets []camera.RenderTarget
	byTarget := make(map[camera.RenderTarget][]camera.Camera)
	for _, c := range active {
		t := c.Target()
		if _, ok := byTarget[t]; !ok {
			targets = append(targets, t)
		}
		byTarget[t] = append(byTarget[t], c)
	}

	if err := r.backend.BeginFrame(); err != nil {
		return 0, fmt.Errorf("failed to begin frame: %w", err)
	}

	rendered := 0
	for _, t := range targets {
		view, ok := r.views.Get(t)
		if !ok {
			if !r.missingTargets[t] {
				r.logger.WithField("target", t).Warn("camera target has no registered texture view")
				r.missingTargets[t] = true
			}
			continue
		}
		delete(r.missingTargets, t)

		if err := r.backend.BeginTarget(view); err != nil {
			r.logger.WithError(err).WithField("target", t).Error("failed to begin target pass")
			continue
		}
		for _, c := range byTarget[t] {
			r.backend.DrawCamera(c)
			rendered++
		}
		r.backend.EndTarget()
	}

	if err := r.backend.EndFrame(); err != nil {
		return rendered, fmt.Errorf("failed to submit frame: %w", err)
	}
	return rendered, nil
}
