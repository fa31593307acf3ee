package service

import (
	"context"
	"fmt"
	"os"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// A4 in inches (1mm = 0.03937 inches)
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// waitForAssetsScript resolves once fonts are ready and every image has loaded or failed
const waitForAssetsScript = `
	(function() {
		return Promise.all([
			document.fonts.ready,
			Promise.all(Array.from(document.querySelectorAll('img')).map(img => {
				return new Promise((resolve) => {
					if (img.complete && img.naturalWidth > 0 && img.naturalHeight > 0) {
						resolve();
						return;
					}
					const timeout = setTimeout(() => resolve(), 5000);
					img.onload = () => { clearTimeout(timeout); resolve(); };
					img.onerror = () => { clearTimeout(timeout); resolve(); };
				});
			}))
		]).then(() => true);
	})();
`

// detectChromePath detects the path to Chrome/Chromium executable.
// Checks the configured path first, then common installation paths.
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ChromeBrowser launches one headless Chrome process per session
type ChromeBrowser struct {
	chromePath string
	log        *zap.Logger
}

// Ensure ChromeBrowser implements Browser
var _ Browser = (*ChromeBrowser)(nil)

// NewChromeBrowser creates a browser launcher. An empty or missing chromePath
// falls back to auto-detection.
func NewChromeBrowser(chromePath string, log *zap.Logger) *ChromeBrowser {
	return &ChromeBrowser{
		chromePath: chromePath,
		log:        log,
	}
}

// Open starts a dedicated browser process
func (b *ChromeBrowser) Open(ctx context.Context) (BrowserSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
		chromedp.Flag("enable-print-preview", true),
	)
	if chromePath := detectChromePath(b.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	} else {
		b.log.Warn("⚠️  Chrome not found in known paths, letting chromedp auto-detect")
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &chromeSession{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}

	// Running with no actions launches the browser
	if err := chromedp.Run(browserCtx); err != nil {
		s.cancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	b.log.Debug("🌐 Browser started")
	return s, nil
}

type chromeSession struct {
	ctx    context.Context
	cancel func()
}

// run executes actions in the browser, bounded by the caller's context too
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()
	return chromedp.Run(s.ctx, actions...)
}

func (s *chromeSession) Load(ctx context.Context, html string) error {
	return s.run(ctx,
		chromedp.EmulateViewport(794, 1123), // A4 at 96 DPI
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to get frame tree: %w", err)
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(waitForAssetsScript, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
}

func (s *chromeSession) CountPages(ctx context.Context, selector string) (int, error) {
	var count int
	err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(`document.querySelectorAll(%q).length`, selector), &count))
	return count, err
}

func (s *chromeSession) Print(ctx context.Context) ([]byte, error) {
	var pdf []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdf, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(a4WidthInches).
			WithPaperHeight(a4HeightInches).
			WithMarginTop(0). // No margins, padding is in CSS
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			WithPreferCSSPageSize(true).
			Do(ctx)
		return err
	}))
	return pdf, err
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}
