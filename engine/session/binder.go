package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// contextKind is the drawing context the compositor base layer is built from.
const contextKind = "webgl2"

// binder implements the Binder interface.
type binder struct {
	document     platform.Document
	createCanvas bool
	depthNear    float64
	logger       *logrus.Logger
}

// Binder attaches a session to a page canvas so the compositor has a base layer to read.
type Binder interface {
	// Bind looks up the canvas, makes its drawing context XR compatible and installs a base layer
	// built from it into the session's render state. It must complete before the session's frame
	// loop starts.
	//
	// Parameters:
	//   - ctx: cancels the wait for the compatibility negotiation
	//   - s: the session to bind
	//   - selector: the canvas selector
	//
	// Returns:
	//   - error: a classified xr error describing the step that failed
	Bind(ctx context.Context, s platform.Session, selector string) error
}

var _ Binder = &binder{}

// NewBinder creates a Binder that looks canvases up in document.
//
// Parameters:
//   - document: the page document, nil if the host has none
//   - options: functional options for the binder
//
// Returns:
//   - Binder: the binder
func NewBinder(document platform.Document, options ...BinderBuilderOption) Binder {
	b := &binder{
		document:  document,
		depthNear: xr.DefaultSettings().DepthNear,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *binder) Bind(ctx context.Context, s platform.Session, selector string) error {
	if b.document == nil {
		return xr.ErrNoDocument
	}

	canvas, err := b.canvas(selector)
	if err != nil {
		return err
	}

	drawing, err := canvas.Context(contextKind)
	if err != nil {
		return xr.Reject("getContext", err)
	}
	if drawing == nil {
		return fmt.Errorf("canvas %q has no %s context: %w", selector, contextKind, xr.ErrContextNotFound)
	}

	if err := drawing.MakeXRCompatible(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("failed to make context xr compatible: %w", err)
		}
		return xr.Reject("makeXRCompatible", err)
	}

	layer, err := drawing.NewBaseLayer(s)
	if err != nil {
		return xr.Reject("XRWebGLLayer", err)
	}

	if err := s.UpdateRenderState(platform.RenderState{BaseLayer: layer, DepthNear: b.depthNear}); err != nil {
		return xr.Reject("updateRenderState", err)
	}

	b.logger.WithFields(logrus.Fields{
		"canvas": selector,
		"width":  layer.FramebufferWidth(),
		"height": layer.FramebufferHeight(),
	}).Info("xr render context bound")
	return nil
}

// canvas resolves selector to a canvas element, creating one when allowed.
func (b *binder) canvas(selector string) (platform.Canvas, error) {
	el, err := b.document.QuerySelector(selector)
	if err != nil {
		return nil, xr.Reject("querySelector", err)
	}

	if el == nil {
		if !b.createCanvas {
			return nil, fmt.Errorf("no element matches %q: %w", selector, xr.ErrCanvasNotFound)
		}
		el, err = b.appendCanvas(selector)
		if err != nil {
			return nil, err
		}
	}

	c, ok := el.(platform.Canvas)
	if !ok {
		return nil, fmt.Errorf("element %q is a %s, not a canvas: %w", selector, el.TagName(), xr.ErrElementWrongType)
	}
	return c, nil
}

// appendCanvas creates a canvas the selector will match and appends it to the body.
func (b *binder) appendCanvas(selector string) (platform.Element, error) {
	body := b.document.Body()
	if body == nil {
		return nil, xr.ErrNoBody
	}
	el, err := b.document.CreateElement("canvas")
	if err != nil {
		return nil, xr.Reject("createElement", err)
	}
	for name, value := range selectorAttributes(selector) {
		if err := el.SetAttribute(name, value); err != nil {
			return nil, xr.Reject("setAttribute", err)
		}
	}
	if err := body.AppendChild(el); err != nil {
		return nil, xr.Reject("appendChild", err)
	}
	b.logger.WithField("canvas", selector).Info("created xr canvas")
	return el, nil
}

// selectorAttributes returns the attributes an element needs to match a "#id", "tag[attr]" or
// "tag[attr=value]" selector.
func selectorAttributes(selector string) map[string]string {
	selector = strings.TrimSpace(selector)
	attrs := map[string]string{}
	if id, ok := strings.CutPrefix(selector, "#"); ok {
		attrs["id"] = id
		return attrs
	}
	open := strings.IndexByte(selector, '[')
	if open < 0 || !strings.HasSuffix(selector, "]") {
		return attrs
	}
	name, value, _ := strings.Cut(selector[open+1:len(selector)-1], "=")
	if name != "" {
		attrs[name] = strings.Trim(value, `"'`)
	}
	return attrs
}
