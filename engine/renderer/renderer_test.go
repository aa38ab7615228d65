package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

type fakeView struct{ released int }

func (f *fakeView) Release() { f.released++ }

type recordingBackend struct {
	calls    []string
	beginErr error
	endErr   error
}

func (b *recordingBackend) BeginFrame() error {
	b.calls = append(b.calls, "begin-frame")
	return b.beginErr
}

func (b *recordingBackend) BeginTarget(view ManualTextureView) error {
	b.calls = append(b.calls, "begin-target")
	return nil
}

func (b *recordingBackend) DrawCamera(c camera.Camera) {
	b.calls = append(b.calls, "draw-"+c.Eye().String())
}

func (b *recordingBackend) EndTarget() {
	b.calls = append(b.calls, "end-target")
}

func (b *recordingBackend) EndFrame() error {
	b.calls = append(b.calls, "end-frame")
	return b.endErr
}

func TestTextureViewsInsertReleasesReplaced(t *testing.T) {
	views := NewTextureViews()
	first := &fakeView{}
	second := &fakeView{}

	views.Insert(FramebufferHandle, ManualTextureView{View: first, Width: 2048, Height: 1024})
	views.Insert(FramebufferHandle, ManualTextureView{View: second, Width: 2048, Height: 1024})
	assert.Equal(t, 1, first.released)
	assert.Equal(t, 0, second.released)
	assert.Equal(t, 1, views.Len())

	got, ok := views.Get(FramebufferHandle)
	require.True(t, ok)
	assert.Same(t, second, got.View)

	views.Remove(FramebufferHandle)
	assert.Equal(t, 1, second.released)
	assert.Equal(t, 0, views.Len())

	// Releasing an empty view is a no-op.
	ManualTextureView{}.Release()
}

func TestRenderCamerasOrdersAndGroupsByTarget(t *testing.T) {
	backend := &recordingBackend{}
	r := NewRenderer(backend)
	r.TextureViews().Insert(FramebufferHandle, ManualTextureView{View: &fakeView{}, Width: 2048, Height: 1024})

	right := camera.NewCamera(camera.WithEye(xr.EyeRight), camera.WithOrder(1), camera.WithTarget(FramebufferHandle))
	left := camera.NewCamera(camera.WithEye(xr.EyeLeft), camera.WithOrder(0), camera.WithTarget(FramebufferHandle))
	idle := camera.NewCamera(camera.WithActive(false), camera.WithTarget(FramebufferHandle))

	n, err := r.RenderCameras([]camera.Camera{right, idle, left})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{
		"begin-frame",
		"begin-target",
		"draw-left",
		"draw-right",
		"end-target",
		"end-frame",
	}, backend.calls)
}

func TestRenderCamerasSkipsUnregisteredTargets(t *testing.T) {
	backend := &recordingBackend{}
	r := NewRenderer(backend)

	c := camera.NewCamera(camera.WithEye(xr.EyeLeft), camera.WithTarget(FramebufferHandle))
	n, err := r.RenderCameras([]camera.Camera{c})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, []string{"begin-frame", "end-frame"}, backend.calls)
}

func TestRenderCamerasNoActiveCameras(t *testing.T) {
	backend := &recordingBackend{}
	r := NewRenderer(backend)

	n, err := r.RenderCameras(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, backend.calls)
}

func TestRenderCamerasBackendErrors(t *testing.T) {
	boom := errors.New("device lost")
	c := camera.NewCamera(camera.WithTarget(FramebufferHandle))

	r := NewRenderer(&recordingBackend{beginErr: boom})
	_, err := r.RenderCameras([]camera.Camera{c})
	assert.ErrorIs(t, err, boom)

	views := NewTextureViews()
	views.Insert(FramebufferHandle, ManualTextureView{View: &fakeView{}})
	r = NewRenderer(&recordingBackend{endErr: boom}, WithTextureViews(views))
	n, err := r.RenderCameras([]camera.Camera{c})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n)
}
