package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// RenderTarget identifies the texture view a camera renders into.
type RenderTarget uint32

type cameraImpl struct {
	mu *sync.Mutex

	eye    xr.Eye
	order  int
	active bool

	viewport xr.Viewport
	target   RenderTarget

	pose       xr.Pose
	projection xr.Projection

	viewMatrix              mgl32.Mat4
	viewProjectionMatrix    mgl32.Mat4
	inverseProjectionMatrix mgl32.Mat4
}

// Camera is the camera of one XR view. Unlike a desktop camera it does not derive its projection
// from a field of view: the platform supplies the projection matrix every frame, and the view
// matrix follows the eye pose.
type Camera interface {
	// Eye returns the eye the camera renders for. EyeNone is the inline window.
	//
	// Returns:
	//   - xr.Eye: the eye
	Eye() xr.Eye

	// Order returns the render order of the camera. Cameras render in ascending order.
	//
	// Returns:
	//   - int: the order, equal to the platform view index
	Order() int

	// Active reports whether the camera renders this frame.
	//
	// Returns:
	//   - bool: true if the camera is active
	Active() bool

	// Viewport returns the sub-rectangle of the target the camera renders into.
	//
	// Returns:
	//   - xr.Viewport: the viewport in pixels
	Viewport() xr.Viewport

	// Target returns the handle of the texture view the camera renders into.
	//
	// Returns:
	//   - RenderTarget: the registered view handle
	Target() RenderTarget

	// Pose returns the eye pose the view matrix was built from.
	//
	// Returns:
	//   - xr.Pose: the eye pose in the reference space
	Pose() xr.Pose

	// Projection returns the current platform projection.
	//
	// Returns:
	//   - xr.Projection: the projection, already flipped for engine clip space
	Projection() xr.Projection

	// Far returns the far plane distance used for sorting and culling.
	//
	// Returns:
	//   - float32: the far plane distance
	Far() float32

	// ViewMatrix returns the inverse of the eye pose.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// InverseProjectionMatrix returns the inverse projection.
	//
	// Returns:
	//   - mgl32.Mat4: the inverse projection
	InverseProjectionMatrix() mgl32.Mat4

	// Frustum returns the view frustum planes in reference space.
	//
	// Returns:
	//   - common.Frustum: the frustum
	Frustum() common.Frustum

	// SetOrder sets the render order.
	//
	// Parameters:
	//   - order: the new order
	SetOrder(order int)

	// SetActive enables or disables the camera.
	//
	// Parameters:
	//   - active: true to render the camera
	SetActive(active bool)

	// SetViewport sets the viewport rectangle.
	//
	// Parameters:
	//   - v: the viewport in pixels
	SetViewport(v xr.Viewport)

	// SetTarget sets the texture view the camera renders into.
	//
	// Parameters:
	//   - t: the registered view handle
	SetTarget(t RenderTarget)

	// SetPose moves the camera to an eye pose and recomputes the view matrices.
	//
	// Parameters:
	//   - p: the eye pose in the reference space
	SetPose(p xr.Pose)

	// SetProjection replaces the projection and recomputes the derived matrices.
	//
	// Parameters:
	//   - p: the new projection
	SetProjection(p xr.Projection)
}

var _ Camera = &cameraImpl{}

// NewCamera creates an active camera at the identity pose with the default projection.
//
// Parameters:
//   - options: functional options applied in order
//
// Returns:
//   - Camera: the camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		active:     true,
		pose:       xr.IdentityPose(),
		projection: xr.DefaultProjection(),
	}
	for _, opt := range options {
		opt(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Eye() xr.Eye {
	return c.eye
}

func (c *cameraImpl) Order() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order
}

func (c *cameraImpl) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *cameraImpl) Viewport() xr.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

func (c *cameraImpl) Target() RenderTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Pose() xr.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

func (c *cameraImpl) Projection() xr.Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection.Far()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection.Matrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) InverseProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ExtractFrustum(c.viewProjectionMatrix)
}

func (c *cameraImpl) SetOrder(order int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = order
}

func (c *cameraImpl) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = active
}

func (c *cameraImpl) SetViewport(v xr.Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = v
}

func (c *cameraImpl) SetTarget(t RenderTarget) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
}

func (c *cameraImpl) SetPose(p xr.Pose) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pose = p
	c.updateMatrices()
}

func (c *cameraImpl) SetProjection(p xr.Projection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = p
	c.updateMatrices()
}

// updateMatrices recomputes the view and derived matrices. Callers hold mu, except NewCamera
// where the camera is not yet shared.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = c.pose.Inverse().Mat4()
	c.viewProjectionMatrix = c.projection.Matrix.Mul4(c.viewMatrix)
	c.inverseProjectionMatrix = c.projection.Inverse()
}
