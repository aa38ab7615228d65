//go:build js

package webxr

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// document wraps the page document.
type document struct {
	v js.Value
}

var _ platform.Document = &document{}

func (d *document) QuerySelector(selector string) (platform.Element, error) {
	var el js.Value
	if err := catch("querySelector", func() {
		el = d.v.Call("querySelector", selector)
	}); err != nil {
		return nil, err
	}
	return wrapElement(el), nil
}

func (d *document) ElementByID(id string) platform.Element {
	return wrapElement(d.v.Call("getElementById", id))
}

func (d *document) CreateElement(tag string) (platform.Element, error) {
	var el js.Value
	if err := catch("createElement", func() {
		el = d.v.Call("createElement", tag)
	}); err != nil {
		return nil, err
	}
	return wrapElement(el), nil
}

func (d *document) Body() platform.Element {
	return wrapElement(d.v.Get("body"))
}

// wrapElement returns the richest wrapper for a DOM element, nil for null.
func wrapElement(v js.Value) platform.Element {
	if !truthy(v) {
		return nil
	}
	base := element{v: v}
	switch strings.ToLower(v.Get("tagName").String()) {
	case "button":
		return &button{element: base}
	case "canvas":
		return &canvas{element: base}
	default:
		return &base
	}
}

// valuer is implemented by every wrapper in this package.
type valuer interface {
	jsValue() js.Value
}

type element struct {
	v js.Value
}

func (e *element) jsValue() js.Value {
	return e.v
}

func (e *element) TagName() string {
	return strings.ToLower(e.v.Get("tagName").String())
}

func (e *element) SetAttribute(name, value string) error {
	return catch("setAttribute", func() {
		e.v.Call("setAttribute", name, value)
	})
}

func (e *element) AppendChild(child platform.Element) error {
	c, ok := child.(valuer)
	if !ok {
		return fmt.Errorf("element %T was not created by the browser", child)
	}
	return catch("appendChild", func() {
		e.v.Call("appendChild", c.jsValue())
	})
}

type button struct {
	element
}

var _ platform.Button = &button{}

func (b *button) SetText(text string) {
	b.v.Set("innerText", text)
}

// OnClick keeps the listener for the lifetime of the page.
func (b *button) OnClick(fn func()) {
	b.v.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) any {
		go fn()
		return nil
	}))
}

type canvas struct {
	element
}

var _ platform.Canvas = &canvas{}

func (c *canvas) Context(kind string) (platform.DrawingContext, error) {
	var ctx js.Value
	if err := catch("getContext", func() {
		ctx = c.v.Call("getContext", kind)
	}); err != nil {
		return nil, err
	}
	if !truthy(ctx) {
		return nil, nil
	}
	return &drawingContext{v: ctx}, nil
}

// drawingContext wraps a WebGL2RenderingContext.
type drawingContext struct {
	v js.Value
}

var _ platform.DrawingContext = &drawingContext{}

func (d *drawingContext) MakeXRCompatible(ctx context.Context) error {
	var promise js.Value
	if err := catch("makeXRCompatible", func() {
		promise = d.v.Call("makeXRCompatible")
	}); err != nil {
		return err
	}
	_, err := await(ctx, "makeXRCompatible", promise)
	return err
}

func (d *drawingContext) NewBaseLayer(s platform.Session) (platform.BaseLayer, error) {
	xs, ok := s.(*session)
	if !ok {
		return nil, fmt.Errorf("session %T was not created by the browser", s)
	}
	ctor := js.Global().Get("XRWebGLLayer")
	if !truthy(ctor) {
		return nil, xr.ErrNotSupported
	}
	var layer js.Value
	if err := catch("XRWebGLLayer", func() {
		layer = ctor.New(xs.v, d.v)
	}); err != nil {
		return nil, err
	}
	return &baseLayer{v: layer}, nil
}
