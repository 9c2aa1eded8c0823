// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/api/schemas"
)

// ErrSessionClosed is returned by every Session method once Stop has run.
var ErrSessionClosed = errors.New("browser session is closed")

// Session is a single chromedp tab and implements schemas.Session.
type Session struct {
	id     string
	ctx    context.Context // chromedp tab context, carries the CDP target
	cancel context.CancelFunc
	// allocCancel tears down the browser process.
	allocCancel context.CancelFunc
	logger      *zap.Logger

	mu     sync.Mutex
	closed bool
}

var _ schemas.Session = (*Session)(nil)

func newSession(ctx context.Context, cancel, allocCancel context.CancelFunc, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:          id,
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      logger.With(zap.String("session_id", id)),
	}
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// runActions executes chromedp actions against the tab, bounded by both the
// session lifetime and the caller's ctx.
func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		// Report the caller's deadline rather than chromedp's wrapped cancellation.
		return ctx.Err()
	}
	return err
}

// Navigate loads url and waits for the body element.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	if err := s.runActions(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Evaluate runs a script in the page. A nil res discards the result, which
// is required for statements like window.scrollBy that return undefined.
func (s *Session) Evaluate(ctx context.Context, script string, res interface{}) error {
	return s.runActions(ctx, chromedp.Evaluate(script, res))
}

// FindElement resolves selector without waiting for it to appear.
func (s *Session) FindElement(ctx context.Context, selector string) (*schemas.Element, error) {
	var nodes []*cdp.Node
	if err := s.runActions(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	if len(nodes) == 0 || nodes[0] == nil {
		return nil, &schemas.ElementNotFoundError{Selector: selector}
	}
	n := nodes[0]
	return &schemas.Element{
		Selector: selector,
		NodeID:   int64(n.NodeID),
		TagName:  strings.ToLower(n.NodeName),
	}, nil
}

// FindOptional is FindElement with absence reported as found == false.
func (s *Session) FindOptional(ctx context.Context, selector string) (*schemas.Element, bool, error) {
	el, err := s.FindElement(ctx, selector)
	var notFound *schemas.ElementNotFoundError
	switch {
	case errors.As(err, &notFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return el, true, nil
}

// ScrollIntoView scrolls el into the viewport, preferring its node identity
// over re-running the selector.
func (s *Session) ScrollIntoView(ctx context.Context, el *schemas.Element) error {
	if el == nil {
		return errors.New("cannot scroll to a nil element")
	}
	var action chromedp.Action
	if el.NodeID != 0 {
		action = chromedp.ScrollIntoView([]cdp.NodeID{cdp.NodeID(el.NodeID)}, chromedp.ByNodeID)
	} else {
		action = chromedp.ScrollIntoView(el.Selector, chromedp.ByQuery)
	}
	return s.runActions(ctx, action)
}

// CaptureViewport takes a PNG of the visible viewport. cdproto decodes the
// base64 payload, so the returned bytes are the raw image.
func (s *Session) CaptureViewport(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.runActions(ctx, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithFromSurface(true).
			Do(c)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Title returns the current document title.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.runActions(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// CurrentURL returns the current document location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := s.runActions(ctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}
