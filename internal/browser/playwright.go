package browser

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Options configures the Playwright launcher.
type Options struct {
	Engine         string // chromium, firefox or webkit
	Headless       bool
	SlowMo         time.Duration
	Width          int
	Height         int
	Install        bool
	VideoDir       string
	FullPage       bool
	DefaultTimeout time.Duration
}

// PlaywrightLauncher starts a Playwright driver and one browser per session.
type PlaywrightLauncher struct {
	opts   Options
	logger *log.Logger
}

// NewPlaywrightLauncher creates a launcher. A nil logger discards output.
func NewPlaywrightLauncher(opts Options, logger *log.Logger) *PlaywrightLauncher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	return &PlaywrightLauncher{opts: opts, logger: logger}
}

// Install downloads the driver and the configured browser engine.
func Install(engine string) error {
	if engine == "" {
		engine = "chromium"
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{engine}}); err != nil {
		return fmt.Errorf("could not install playwright browsers: %w", err)
	}
	return nil
}

// Acquire launches the engine and opens a page. Every failure is an
// EnvironmentError; whatever was started before the failure is stopped.
func (l *PlaywrightLauncher) Acquire(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, &EnvironmentError{Op: "acquire", Err: err}
	}
	if l.opts.Install && os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1" {
		if err := Install(l.opts.Engine); err != nil {
			return nil, &EnvironmentError{Op: "install", Err: err}
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, &EnvironmentError{Op: "start driver", Err: err}
	}
	s := &playwrightSession{opts: l.opts, pw: pw, logger: l.logger}

	browserType, err := s.browserType()
	if err != nil {
		_ = s.Release()
		return nil, &EnvironmentError{Op: "select engine", Err: err}
	}
	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
		SlowMo:   playwright.Float(float64(l.opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = s.Release()
		return nil, &EnvironmentError{Op: "launch " + l.opts.Engine, Err: err}
	}
	s.browser = b

	if err := s.openPage(); err != nil {
		_ = s.Release()
		return nil, &EnvironmentError{Op: "open page", Err: err}
	}
	l.logger.Printf("Launched %s (headless=%t, viewport=%dx%d)", l.opts.Engine, l.opts.Headless, l.opts.Width, l.opts.Height)
	return s, nil
}

type playwrightSession struct {
	opts    Options
	logger  *log.Logger
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    *playwrightPage
}

func (s *playwrightSession) browserType() (playwright.BrowserType, error) {
	switch s.opts.Engine {
	case "", "chromium":
		return s.pw.Chromium, nil
	case "firefox":
		return s.pw.Firefox, nil
	case "webkit":
		return s.pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unsupported engine %q", s.opts.Engine)
	}
}

func (s *playwrightSession) openPage() error {
	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  s.opts.Width,
			Height: s.opts.Height,
		},
	}
	if s.opts.VideoDir != "" {
		ctxOpts.RecordVideo = &playwright.RecordVideo{Dir: s.opts.VideoDir}
	}
	bctx, err := s.browser.NewContext(ctxOpts)
	if err != nil {
		return fmt.Errorf("could not create context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return fmt.Errorf("could not create page: %w", err)
	}
	if s.opts.DefaultTimeout > 0 {
		page.SetDefaultTimeout(float64(s.opts.DefaultTimeout.Milliseconds()))
	}
	s.context = bctx
	s.page = &playwrightPage{page: page, fullPage: s.opts.FullPage}
	return nil
}

func (s *playwrightSession) Page() Page { return s.page }

func (s *playwrightSession) Reset() error {
	s.closePage()
	if err := s.openPage(); err != nil {
		return fmt.Errorf("failed to reset page: %w", err)
	}
	return nil
}

func (s *playwrightSession) closePage() {
	if s.page != nil {
		if err := s.page.page.Close(); err != nil {
			s.logger.Printf("Failed to close page: %v", err)
		}
		s.page = nil
	}
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			s.logger.Printf("Failed to close context: %v", err)
		}
		s.context = nil
	}
}

func (s *playwrightSession) Release() error {
	s.closePage()
	var firstErr error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			firstErr = fmt.Errorf("could not close browser: %w", err)
		}
		s.browser = nil
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("could not stop playwright: %w", err)
		}
		s.pw = nil
	}
	s.logger.Println("Browser session released")
	return firstErr
}

// playwrightPage adapts playwright.Page to Page.
type playwrightPage struct {
	page     playwright.Page
	fullPage bool
}

func (p *playwrightPage) locator(loc LocatorSpec) playwright.Locator {
	return queryFor(loc).resolve(p.page)
}

// locatorQuery is the Playwright lookup a LocatorSpec maps to.
type locatorQuery struct {
	kind  LocatorKind
	role  playwright.AriaRole
	arg   string
	exact *bool
}

func queryFor(loc LocatorSpec) locatorQuery {
	switch loc.Kind {
	case ByRole:
		q := locatorQuery{kind: ByRole, role: playwright.AriaRole(loc.Role), arg: loc.Name}
		if loc.Name != "" {
			q.exact = playwright.Bool(loc.Exact)
		}
		return q
	case ByLabel, ByText:
		return locatorQuery{kind: loc.Kind, arg: loc.Name, exact: playwright.Bool(loc.Exact)}
	case ByTestID:
		return locatorQuery{kind: ByTestID, arg: loc.Name}
	default:
		return locatorQuery{kind: ByCSS, arg: loc.Selector}
	}
}

func (q locatorQuery) resolve(page playwright.Page) playwright.Locator {
	switch q.kind {
	case ByRole:
		opts := playwright.PageGetByRoleOptions{Exact: q.exact}
		if q.arg != "" {
			opts.Name = q.arg
		}
		return page.GetByRole(q.role, opts)
	case ByLabel:
		return page.GetByLabel(q.arg, playwright.PageGetByLabelOptions{Exact: q.exact})
	case ByTestID:
		return page.GetByTestId(q.arg)
	case ByText:
		return page.GetByText(q.arg, playwright.PageGetByTextOptions{Exact: q.exact})
	default:
		return page.Locator(q.arg)
	}
}

func (p *playwrightPage) Goto(url string, timeout time.Duration) (int, error) {
	resp, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return 0, err
	}
	if resp == nil {
		return 0, nil
	}
	return resp.Status(), nil
}

func (p *playwrightPage) Count(loc LocatorSpec) (int, error) {
	return p.locator(loc).Count()
}

func (p *playwrightPage) VisibleCount(loc LocatorSpec) (int, error) {
	l := p.locator(loc)
	n, err := l.Count()
	if err != nil {
		return 0, err
	}
	visible := 0
	for i := 0; i < n; i++ {
		ok, err := l.Nth(i).IsVisible()
		if err != nil {
			return 0, err
		}
		if ok {
			visible++
		}
	}
	return visible, nil
}

func (p *playwrightPage) Click(loc LocatorSpec, timeout time.Duration) error {
	return p.locator(loc).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) Fill(loc LocatorSpec, value string, timeout time.Duration) error {
	return p.locator(loc).Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) Screenshot() ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(p.fullPage),
	})
}

func (p *playwrightPage) URL() string { return p.page.URL() }
