package schemas

import (
	"context"
)

// -- Browser Session Interface --

// Element is a handle to a node found in the current page. Only the selector
// it was resolved from and the CDP node identity are kept; steps that need to
// act on it hand it back to the Session.
type Element struct {
	Selector string `json:"selector"`
	NodeID   int64  `json:"node_id"`
	TagName  string `json:"tag_name"`
}

// Session is the browser automation boundary. One Session is a single live tab
// in a single browser instance and is passed explicitly to every step and
// component that touches the page.
//
// All methods block until the browser has responded or ctx is done.
type Session interface {
	// ID returns the unique identifier of the session.
	ID() string
	// Navigate loads url in the tab and waits for the document body to be ready.
	Navigate(ctx context.Context, url string) error
	// Evaluate runs script in the page context. If res is non-nil the result
	// is unmarshaled into it.
	Evaluate(ctx context.Context, script string, res interface{}) error
	// FindElement resolves a CSS selector. It fails with *ElementNotFoundError
	// when nothing matches.
	FindElement(ctx context.Context, selector string) (*Element, error)
	// FindOptional resolves a CSS selector without waiting. found is false when
	// nothing matches; err is reserved for browser failures.
	FindOptional(ctx context.Context, selector string) (el *Element, found bool, err error)
	// ScrollIntoView scrolls the page until el is in the viewport.
	ScrollIntoView(ctx context.Context, el *Element) error
	// CaptureViewport returns the current viewport as decoded PNG bytes.
	CaptureViewport(ctx context.Context) ([]byte, error)
	// Title returns the document title.
	Title(ctx context.Context) (string, error)
	// CurrentURL returns the location of the current document.
	CurrentURL(ctx context.Context) (string, error)
}
