package sim

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
)

// Document is a simulated page. Elements are matched by "#id", "tag" and "tag[attr]" selectors.
type Document struct {
	mu       *sync.Mutex
	body     *Element
	elements []platform.Element
}

var _ platform.Document = &Document{}

// NewDocument creates a document with an empty body.
func NewDocument() *Document {
	d := &Document{mu: &sync.Mutex{}}
	d.body = &Element{tag: "body", attrs: map[string]string{}, doc: d}
	return d
}

// NewBodylessDocument creates a document without a body element.
func NewBodylessDocument() *Document {
	return &Document{mu: &sync.Mutex{}}
}

func (d *Document) QuerySelector(selector string) (platform.Element, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, fmt.Errorf("empty selector")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if strings.HasPrefix(selector, "#") {
		return d.byID(selector[1:]), nil
	}

	tag, attr := selector, ""
	if i := strings.IndexByte(selector, '['); i >= 0 {
		if !strings.HasSuffix(selector, "]") {
			return nil, fmt.Errorf("invalid selector %q", selector)
		}
		tag, attr = selector[:i], selector[i+1:len(selector)-1]
	}
	for _, el := range d.elements {
		base := baseOf(el)
		if tag != "" && base.tag != tag {
			continue
		}
		if attr != "" {
			if _, ok := base.attrs[attr]; !ok {
				continue
			}
		}
		return el, nil
	}
	return nil, nil
}

func (d *Document) ElementByID(id string) platform.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.byID(id)
}

func (d *Document) byID(id string) platform.Element {
	for _, el := range d.elements {
		if baseOf(el).attrs["id"] == id {
			return el
		}
	}
	return nil
}

func (d *Document) CreateElement(tag string) (platform.Element, error) {
	base := Element{tag: strings.ToLower(tag), attrs: map[string]string{}, doc: d}
	switch base.tag {
	case "button":
		return &ButtonElement{Element: base}, nil
	case "canvas":
		return &CanvasElement{Element: base, drawing: &DrawingContext{}}, nil
	case "":
		return nil, fmt.Errorf("empty tag name")
	default:
		return &base, nil
	}
}

func (d *Document) Body() platform.Element {
	if d.body == nil {
		return nil
	}
	return d.body
}

// AddButton attaches a button with the given id and returns it.
func (d *Document) AddButton(id string) *ButtonElement {
	el, _ := d.CreateElement("button")
	b := el.(*ButtonElement)
	b.attrs["id"] = id
	d.attach(b)
	return b
}

// AddCanvas attaches a canvas with the given id and attributes and returns it.
func (d *Document) AddCanvas(id string, attrs map[string]string) *CanvasElement {
	el, _ := d.CreateElement("canvas")
	c := el.(*CanvasElement)
	if id != "" {
		c.attrs["id"] = id
	}
	for k, v := range attrs {
		c.attrs[k] = v
	}
	d.attach(c)
	return c
}

// AddElement attaches a generic element with the given tag and id.
func (d *Document) AddElement(tag, id string) *Element {
	el, _ := d.CreateElement(tag)
	base := baseOf(el)
	base.attrs["id"] = id
	d.attach(el)
	return base
}

func (d *Document) attach(el platform.Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	baseOf(el).doc = d
	d.elements = append(d.elements, el)
}

// Click clicks the button with the given id.
//
// Returns:
//   - bool: false if no button has the id
func (d *Document) Click(id string) bool {
	b, ok := d.ElementByID(id).(*ButtonElement)
	if !ok {
		return false
	}
	b.Click()
	return true
}

// Element is a simulated element without behavior.
type Element struct {
	tag      string
	attrs    map[string]string
	children []platform.Element
	doc      *Document
}

var _ platform.Element = &Element{}

func baseOf(el platform.Element) *Element {
	switch e := el.(type) {
	case *Element:
		return e
	case *ButtonElement:
		return &e.Element
	case *CanvasElement:
		return &e.Element
	}
	return &Element{attrs: map[string]string{}}
}

func (e *Element) TagName() string {
	return e.tag
}

func (e *Element) SetAttribute(name, value string) error {
	e.attrs[name] = value
	return nil
}

// Attribute returns the value of an attribute.
func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// AppendChild appends child. Appending to the body attaches the child to the document so
// selectors find it.
func (e *Element) AppendChild(child platform.Element) error {
	if child == nil {
		return fmt.Errorf("nil child")
	}
	e.children = append(e.children, child)
	if e.tag == "body" && e.doc != nil {
		e.doc.attach(child)
	}
	return nil
}

// Children returns the appended children.
func (e *Element) Children() []platform.Element {
	return e.children
}

// ButtonElement is a simulated button.
type ButtonElement struct {
	Element
	text    string
	onClick []func()
}

var _ platform.Button = &ButtonElement{}

func (b *ButtonElement) SetText(text string) {
	b.text = text
}

// Text returns the button's text.
func (b *ButtonElement) Text() string {
	return b.text
}

func (b *ButtonElement) OnClick(fn func()) {
	b.onClick = append(b.onClick, fn)
}

// Click runs every click handler.
func (b *ButtonElement) Click() {
	for _, fn := range b.onClick {
		fn()
	}
}

// CanvasElement is a simulated canvas whose only context kind is "webgl2".
type CanvasElement struct {
	Element
	drawing *DrawingContext
}

var _ platform.Canvas = &CanvasElement{}

func (c *CanvasElement) Context(kind string) (platform.DrawingContext, error) {
	if kind != "webgl2" || c.drawing == nil {
		return nil, nil
	}
	return c.drawing, nil
}

// Drawing returns the canvas's drawing context for scripting.
func (c *CanvasElement) Drawing() *DrawingContext {
	return c.drawing
}

// DisableContext makes the canvas refuse to produce a drawing context.
func (c *CanvasElement) DisableContext() {
	c.drawing = nil
}

// DrawingContext is a simulated webgl2 context.
type DrawingContext struct {
	mu           sync.Mutex
	compatible   bool
	compatErr    error
	layerErr     error
	layersIssued int
}

var _ platform.DrawingContext = &DrawingContext{}

// FailCompatibility makes MakeXRCompatible reject with err.
func (c *DrawingContext) FailCompatibility(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compatErr = err
}

// FailBaseLayer makes NewBaseLayer reject with err.
func (c *DrawingContext) FailBaseLayer(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layerErr = err
}

// Compatible reports whether MakeXRCompatible succeeded.
func (c *DrawingContext) Compatible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compatible
}

func (c *DrawingContext) MakeXRCompatible(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.compatErr != nil {
		return c.compatErr
	}
	c.compatible = true
	return nil
}

func (c *DrawingContext) NewBaseLayer(session platform.Session) (platform.BaseLayer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.layerErr != nil {
		return nil, c.layerErr
	}
	if !c.compatible {
		return nil, fmt.Errorf("InvalidStateError: context is not xr compatible")
	}
	s, ok := session.(*Session)
	if !ok {
		return nil, fmt.Errorf("session was not created by this runtime")
	}
	c.layersIssued++
	return &BaseLayer{session: s}, nil
}
