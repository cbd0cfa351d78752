package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Config configures the Chrome session.
type Config struct {
	// Headless moves the window off-screen instead of using Chrome's
	// headless mode, which the target page fingerprints.
	Headless bool

	// BaseURL is the landing page used for warm-up and recovery reloads.
	BaseURL string

	UserAgent string

	// PageLoadTimeout bounds each navigation. Default 20s.
	PageLoadTimeout time.Duration
}

// SessionInitError reports that the automation session failed to start.
// It is fatal to the whole run.
type SessionInitError struct {
	Err error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("browser session init: %v", e.Err)
}

func (e *SessionInitError) Unwrap() error {
	return e.Err
}

// Session is one live handle to a remotely-controlled Chrome. It is owned
// exclusively by the navigator: never persisted, never shared, replaced
// wholesale on restart.
type Session struct {
	cfg Config
	log *zap.Logger

	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
}

// NewSession creates an unstarted session.
func NewSession(cfg Config, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.PageLoadTimeout <= 0 {
		cfg.PageLoadTimeout = 20 * time.Second
	}
	return &Session{cfg: cfg, log: log}
}

// Start launches Chrome with a forced English locale and a reduced
// automation fingerprint, then performs a best-effort warm-up navigation to
// the landing page. Warm-up failure is logged, not fatal; launch failure is.
func (s *Session) Start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "en-US"),
	)
	if s.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.cfg.UserAgent))
	}
	if s.cfg.Headless {
		// Headless mode crashes or gets blocked on current Chrome builds;
		// an off-screen window behaves like a visible one.
		opts = append(opts, chromedp.Flag("window-position", "-2400,-2400"))
	} else {
		opts = append(opts, chromedp.Flag("start-maximized", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Force the browser to actually launch.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return &SessionInitError{Err: err}
	}

	s.tabCtx = tabCtx
	s.tabCancel = tabCancel
	s.allocCancel = allocCancel
	s.log.Info("chrome session started")

	if s.cfg.BaseURL != "" {
		if err := s.Navigate(ctx, s.cfg.BaseURL); err != nil {
			s.log.Warn("initial landing page preload failed; will retry per query", zap.Error(err))
		} else {
			s.log.Info("initial landing page loaded")
		}
	}

	return nil
}

// Restart force-closes the current session, ignoring teardown errors, and
// starts a fresh one. The old handle is discarded, never reused.
func (s *Session) Restart(ctx context.Context) error {
	s.Stop()
	s.log.Info("restarting chrome session")
	return s.Start(ctx)
}

// Stop tears the session down. Safe to call on an unstarted session.
func (s *Session) Stop() {
	if s.tabCancel != nil {
		s.tabCancel()
		s.tabCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	s.tabCtx = nil
}

// Navigate implements Driver.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.tabCtx, s.cfg.PageLoadTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return eris.Wrapf(err, "browser: navigate %s", url)
	}
	return nil
}

// WaitAny implements Driver: polls until any selector matches or the
// timeout elapses.
func (s *Session) WaitAny(ctx context.Context, selectors []string, timeout time.Duration) bool {
	if err := s.ready(ctx); err != nil {
		return false
	}

	js := "false"
	for i, sel := range selectors {
		if i == 0 {
			js = selectorProbe(sel)
		} else {
			js += " || " + selectorProbe(sel)
		}
	}

	runCtx, cancel := context.WithTimeout(s.tabCtx, timeout+time.Second)
	defer cancel()

	var found bool
	err := chromedp.Run(runCtx,
		chromedp.Poll(js, &found, chromedp.WithPollingTimeout(timeout)),
	)
	return err == nil && found
}

// Eval implements Driver.
func (s *Session) Eval(ctx context.Context, js string, out any) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.tabCtx, 10*time.Second)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Evaluate(js, out)); err != nil {
		return eris.Wrap(err, "browser: evaluate")
	}
	return nil
}

// Click implements Driver.
func (s *Session) Click(ctx context.Context, selector string, mode ClickMode) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.tabCtx, 10*time.Second)
	defer cancel()

	switch mode {
	case ClickNative:
		err := chromedp.Run(runCtx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
		return eris.Wrapf(err, "browser: native click %s", selector)

	case ClickScript:
		js := fmt.Sprintf(`(() => {
	const el = document.querySelector(%q);
	if (!el) throw new Error('no element for scripted click');
	el.click();
	return true;
})()`, selector)
		var ok bool
		err := chromedp.Run(runCtx, chromedp.Evaluate(js, &ok))
		return eris.Wrapf(err, "browser: scripted click %s", selector)

	case ClickPointer:
		js := fmt.Sprintf(`(() => {
	const el = document.querySelector(%q);
	if (!el) throw new Error('no element for pointer click');
	const r = el.getBoundingClientRect();
	return [r.left + r.width / 2, r.top + r.height / 2];
})()`, selector)
		var center []float64
		if err := chromedp.Run(runCtx, chromedp.Evaluate(js, &center)); err != nil {
			return eris.Wrapf(err, "browser: locate %s for pointer click", selector)
		}
		if len(center) != 2 {
			return eris.Errorf("browser: bad element center for %s", selector)
		}
		err := chromedp.Run(runCtx, chromedp.MouseClickXY(center[0], center[1]))
		return eris.Wrapf(err, "browser: pointer click %s", selector)

	default:
		return eris.Errorf("browser: unknown click mode %q", mode)
	}
}

// ScrollIntoView implements Driver.
func (s *Session) ScrollIntoView(ctx context.Context, selector string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.tabCtx, 10*time.Second)
	defer cancel()

	err := chromedp.Run(runCtx, chromedp.ScrollIntoView(selector, chromedp.ByQuery))
	return eris.Wrapf(err, "browser: scroll into view %s", selector)
}

func (s *Session) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tabCtx == nil {
		return eris.New("browser: session not started")
	}
	return nil
}

func selectorProbe(sel string) string {
	return fmt.Sprintf("!!document.querySelector(%q)", sel)
}
