package platform

import "context"

// Document is the page the XR layer attaches its activation buttons and canvas to.
type Document interface {
	// QuerySelector returns the first element matching selector.
	//
	// Returns:
	//   - Element: the element, nil if nothing matched
	//   - error: error if the selector is invalid
	QuerySelector(selector string) (Element, error)

	// ElementByID returns the element with the given id, nil if none exists.
	ElementByID(id string) Element

	// CreateElement creates a detached element with the given tag name.
	CreateElement(tag string) (Element, error)

	// Body returns the document body, nil if the document has none.
	Body() Element
}

// Element is a node of the page.
type Element interface {
	// TagName returns the lower-case tag name.
	TagName() string

	// SetAttribute sets an attribute.
	SetAttribute(name, value string) error

	// AppendChild appends child to this element.
	AppendChild(child Element) error
}

// Button is a clickable element.
type Button interface {
	Element

	// SetText replaces the button's text content.
	SetText(text string)

	// OnClick registers fn to run on every click.
	OnClick(fn func())
}

// Canvas is an element that produces drawing contexts.
type Canvas interface {
	Element

	// Context returns the drawing context of the given kind, e.g. "webgl2".
	//
	// Returns:
	//   - DrawingContext: the context, nil if the canvas cannot produce one
	//   - error: error if the platform rejected the request
	Context(kind string) (DrawingContext, error)
}

// DrawingContext is the graphics context the compositor base layer is built from.
type DrawingContext interface {
	// MakeXRCompatible negotiates compatibility with the XR compositor.
	MakeXRCompatible(ctx context.Context) error

	// NewBaseLayer builds a compositor swap target for session from this context.
	NewBaseLayer(session Session) (BaseLayer, error)
}
