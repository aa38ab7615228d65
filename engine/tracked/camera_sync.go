package tracked

import (
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/ecs"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// cameraRoles are the roles a camera entity can be filed under.
var cameraRoles = []xr.Role{
	xr.EyeRole(xr.EyeLeft),
	xr.EyeRole(xr.EyeRight),
	xr.WindowRole(),
}

type cameraSync struct {
	factory renderer.FramebufferViewFactory
	views   renderer.TextureViews
	logger  *logrus.Logger

	degraded *degradation
}

// CameraSync keeps one camera entity per platform view.
//
// Every update it wraps the compositor framebuffer in a fresh render target registered under
// renderer.FramebufferHandle, then matches the frame's views to camera entities by eye role and
// discovery order within that role.
type CameraSync interface {
	// Run synchronizes the camera entities with ctx.Frame.
	//
	// Parameters:
	//   - ctx: the update context
	Run(ctx *engine.UpdateContext)
}

var _ CameraSync = &cameraSync{}

// NewCameraSync creates a CameraSync.
//
// Parameters:
//   - factory: builds a render target from the compositor framebuffer
//   - views: the registry the render target is registered in
//   - options: functional options for the synchronizer
//
// Returns:
//   - CameraSync: the synchronizer
func NewCameraSync(factory renderer.FramebufferViewFactory, views renderer.TextureViews, options ...CameraSyncBuilderOption) CameraSync {
	s := &cameraSync{
		factory: factory,
		views:   views,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.degraded = &degradation{logger: s.logger, name: "camera"}
	return s
}

func (s *cameraSync) Run(ctx *engine.UpdateContext) {
	store := ctx.Store

	// A second view of a singleton eye role would break the one-entity-per-eye rule, so
	// duplicates collapse before matching.
	collapseAll(store, cameraRoles, s.logger)

	origin, ok := activeOrigin(store)
	if !ok {
		s.deactivateAll(store, "no active origin")
		return
	}
	if ctx.Frame == nil || ctx.Frame.Frame == nil {
		s.deactivateAll(store, "no frame")
		return
	}
	frame := ctx.Frame.Frame

	viewer, ok := frame.ViewerPose(ctx.Frame.ReferenceSpace)
	if !ok {
		s.deactivateAll(store, "viewer pose unresolved")
		return
	}
	if len(viewer.Views) == 0 {
		s.deactivateAll(store, "no views")
		return
	}
	layer := frame.Session().RenderState().BaseLayer
	if layer == nil {
		s.deactivateAll(store, "no base layer")
		return
	}

	width, height := layer.FramebufferWidth(), layer.FramebufferHeight()
	target, err := s.factory.CreateFramebufferView(layer.Framebuffer(), width, height)
	if err != nil {
		s.logger.WithError(err).Debug("failed to wrap compositor framebuffer")
		s.deactivateAll(store, "framebuffer view unavailable")
		return
	}
	s.views.Insert(renderer.FramebufferHandle, target)
	s.degraded.clear()

	originPose, _ := store.WorldPose(origin)

	consumed := make(map[xr.Role]int, len(cameraRoles))
	for i, view := range viewer.Views {
		role := xr.EyeRole(view.Eye)
		existing := store.Query(role)
		n := consumed[role]
		if role.Singleton() && n > 0 {
			continue
		}
		consumed[role] = n + 1

		pose := view.Transform.Pose()
		viewport, ok := layer.Viewport(view)
		if !ok {
			viewport = xr.Viewport{Width: width, Height: height}
		}

		if n < len(existing) {
			e := existing[n]
			place(store, e, pose)
			cam, ok := store.Camera(e)
			if !ok {
				cam = camera.NewCamera(camera.WithEye(view.Eye))
				store.AttachCamera(e, cam)
			}
			s.updateCamera(cam, i, viewport, originPose.Mul(pose), view.ProjectionMatrix)
			cam.SetActive(true)
			continue
		}

		e := spawnUnder(store, role, origin)
		store.SetTransform(e, ecs.TransformFromPose(pose))
		cam := camera.NewCamera(camera.WithEye(view.Eye))
		s.updateCamera(cam, i, viewport, originPose.Mul(pose), view.ProjectionMatrix)
		store.AttachCamera(e, cam)
		store.SetActive(e, true)

		s.logger.WithFields(logrus.Fields{
			"role":   role.String(),
			"entity": e,
			"view":   i,
		}).Debug("spawned xr camera")
	}

	// Entities of a role the frame had fewer views for stay in the store, inactive.
	for _, role := range cameraRoles {
		existing := store.Query(role)
		if n := consumed[role]; n < len(existing) {
			deactivate(store, existing[n:])
		}
	}
}

func (s *cameraSync) updateCamera(cam camera.Camera, order int, viewport xr.Viewport, pose xr.Pose, matrix []float32) {
	cam.SetOrder(order)
	cam.SetViewport(viewport)
	cam.SetTarget(renderer.FramebufferHandle)
	cam.SetPose(pose)

	proj := cam.Projection()
	if err := proj.Update(matrix); err != nil {
		s.logger.WithError(err).Debug("kept previous projection")
		return
	}
	cam.SetProjection(proj)
}

func (s *cameraSync) deactivateAll(store ecs.Store, reason string) {
	for _, role := range cameraRoles {
		deactivate(store, store.Query(role))
	}
	s.degraded.set(reason)
}
