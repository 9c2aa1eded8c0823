// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/stepshot/api/schemas"
)

// -- Session Mock --

// MockSession implements schemas.Session for testing.
type MockSession struct {
	mock.Mock
}

var _ schemas.Session = (*MockSession)(nil)

// NewMockSession returns a session whose ID is fixed to "mock-session".
func NewMockSession() *MockSession {
	m := new(MockSession)
	m.On("ID").Return("mock-session").Maybe()
	return m
}

func (m *MockSession) ID() string { return m.Called().String(0) }

func (m *MockSession) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockSession) Evaluate(ctx context.Context, script string, res interface{}) error {
	return m.Called(ctx, script, res).Error(0)
}

func (m *MockSession) FindElement(ctx context.Context, selector string) (*schemas.Element, error) {
	args := m.Called(ctx, selector)
	var el *schemas.Element
	if v := args.Get(0); v != nil {
		el = v.(*schemas.Element)
	}
	return el, args.Error(1)
}

func (m *MockSession) FindOptional(ctx context.Context, selector string) (*schemas.Element, bool, error) {
	args := m.Called(ctx, selector)
	var el *schemas.Element
	if v := args.Get(0); v != nil {
		el = v.(*schemas.Element)
	}
	return el, args.Bool(1), args.Error(2)
}

func (m *MockSession) ScrollIntoView(ctx context.Context, el *schemas.Element) error {
	return m.Called(ctx, el).Error(0)
}

func (m *MockSession) CaptureViewport(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	var buf []byte
	if v := args.Get(0); v != nil {
		buf = v.([]byte)
	}
	return buf, args.Error(1)
}

func (m *MockSession) Title(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSession) CurrentURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// -- Capturer Mock --

// MockCapturer mocks the runner.Capturer interface.
type MockCapturer struct {
	mock.Mock
}

func (m *MockCapturer) Capture(ctx context.Context, s schemas.Session, stepName string) (*schemas.Artifact, error) {
	args := m.Called(ctx, s, stepName)
	var a *schemas.Artifact
	if v := args.Get(0); v != nil {
		a = v.(*schemas.Artifact)
	}
	return a, args.Error(1)
}
