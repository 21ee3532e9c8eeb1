// Package testutil provides a scripted page for exercising the harness
// without a browser.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gotrs-io/ui-smoke/internal/browser"
)

// FakeScreenshot is the payload returned by FakePage.Screenshot.
var FakeScreenshot = []byte("\x89PNG\r\n\x1a\nfake")

type route struct {
	status int
	err    error
	setup  func(*FakePage)
}

// FakePage is an in-memory browser.Page. Nodes are keyed by the locator's
// String form; each node carries a visibility flag. Hooks registered with
// OnGoto and OnClick mutate the page to script application behaviour.
type FakePage struct {
	mu     sync.Mutex
	url    string
	nodes  map[string][]bool
	routes map[string]route
	clicks map[string]func(*FakePage)
	fills  map[string]string
	calls  []string

	CountErr      error
	ClickErr      error
	ScreenshotErr error
}

var _ browser.Page = (*FakePage)(nil)

func NewFakePage() *FakePage {
	return &FakePage{
		nodes:  make(map[string][]bool),
		routes: make(map[string]route),
		clicks: make(map[string]func(*FakePage)),
		fills:  make(map[string]string),
	}
}

// Set replaces the nodes matched by loc with one node per visibility flag.
// Calling it without flags removes them.
func (p *FakePage) Set(loc browser.LocatorSpec, visible ...bool) *FakePage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(visible) == 0 {
		delete(p.nodes, loc.String())
		return p
	}
	p.nodes[loc.String()] = append([]bool(nil), visible...)
	return p
}

func (p *FakePage) Show(loc browser.LocatorSpec) *FakePage   { return p.Set(loc, true) }
func (p *FakePage) Remove(loc browser.LocatorSpec) *FakePage { return p.Set(loc) }

// SetAfter applies fn to the page once d has elapsed.
func (p *FakePage) SetAfter(d time.Duration, fn func(*FakePage)) {
	time.AfterFunc(d, func() { fn(p) })
}

// OnGoto scripts the response for url. setup runs after the page has
// "loaded" and may populate nodes.
func (p *FakePage) OnGoto(url string, status int, setup func(*FakePage)) *FakePage {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[url] = route{status: status, setup: setup}
	return p
}

// FailGoto makes navigation to url return err.
func (p *FakePage) FailGoto(url string, err error) *FakePage {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[url] = route{err: err}
	return p
}

// OnClick runs fn whenever loc is clicked.
func (p *FakePage) OnClick(loc browser.LocatorSpec, fn func(*FakePage)) *FakePage {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks[loc.String()] = fn
	return p
}

// Filled returns the last value filled into loc.
func (p *FakePage) Filled(loc browser.LocatorSpec) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fills[loc.String()]
}

// Calls returns the recorded operations in order.
func (p *FakePage) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *FakePage) record(format string, args ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *FakePage) Goto(url string, _ time.Duration) (int, error) {
	p.mu.Lock()
	p.record("goto %s", url)
	r, ok := p.routes[url]
	if !ok {
		p.mu.Unlock()
		return 0, fmt.Errorf("net::ERR_CONNECTION_REFUSED at %s", url)
	}
	if r.err != nil {
		p.mu.Unlock()
		return 0, r.err
	}
	p.url = url
	p.mu.Unlock()
	if r.setup != nil {
		r.setup(p)
	}
	return r.status, nil
}

func (p *FakePage) Count(loc browser.LocatorSpec) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CountErr != nil {
		return 0, p.CountErr
	}
	return len(p.nodes[loc.String()]), nil
}

func (p *FakePage) VisibleCount(loc browser.LocatorSpec) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CountErr != nil {
		return 0, p.CountErr
	}
	n := 0
	for _, v := range p.nodes[loc.String()] {
		if v {
			n++
		}
	}
	return n, nil
}

func (p *FakePage) Click(loc browser.LocatorSpec, _ time.Duration) error {
	p.mu.Lock()
	key := loc.String()
	p.record("click %s", key)
	if p.ClickErr != nil {
		p.mu.Unlock()
		return p.ClickErr
	}
	if len(p.nodes[key]) == 0 {
		p.mu.Unlock()
		return fmt.Errorf("timeout waiting for %s", key)
	}
	fn := p.clicks[key]
	p.mu.Unlock()
	if fn != nil {
		fn(p)
	}
	return nil
}

func (p *FakePage) Fill(loc browser.LocatorSpec, value string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := loc.String()
	p.record("fill %s=%s", key, value)
	if len(p.nodes[key]) == 0 {
		return fmt.Errorf("timeout waiting for %s", key)
	}
	p.fills[key] = value
	return nil
}

func (p *FakePage) Screenshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("screenshot")
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return FakeScreenshot, nil
}

func (p *FakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// FakeSession wraps a FakePage as a browser.Session.
type FakeSession struct {
	FakePage   *FakePage
	Resets     int
	Releases   int
	ReleaseErr error
	NewPage    func() *FakePage
}

func (s *FakeSession) Page() browser.Page { return s.FakePage }

func (s *FakeSession) Reset() error {
	s.Resets++
	if s.NewPage != nil {
		s.FakePage = s.NewPage()
	}
	return nil
}

func (s *FakeSession) Release() error {
	s.Releases++
	return s.ReleaseErr
}

// FakeLauncher hands out Session, or fails with Err.
type FakeLauncher struct {
	Session  *FakeSession
	Err      error
	Acquired int
}

func (l *FakeLauncher) Acquire(ctx context.Context) (browser.Session, error) {
	l.Acquired++
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Session, nil
}
