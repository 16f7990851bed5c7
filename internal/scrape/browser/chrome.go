// Package browser loads pages that build their content with JavaScript.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"jobwatch-engine/internal/scrape/util"
)

const (
	DefaultWait   = 20 * time.Second
	DefaultSettle = 3 * time.Second
)

// ErrWaitTimeout means the page loaded but the awaited element never showed up.
var ErrWaitTimeout = errors.New("timed out waiting for element")

// Chrome renders a page in a fresh headless Chrome per call. The caller's
// context bounds the whole render, browser start included.
type Chrome struct {
	// ExecPath is the Chrome binary; empty means look it up on PATH.
	ExecPath string
	// Wait bounds how long the awaited selector may take to appear.
	Wait time.Duration
	// Settle is a pause after the selector appears for late rows to render.
	Settle time.Duration
}

func NewChrome(execPath string) *Chrome {
	return &Chrome{ExecPath: execPath, Wait: DefaultWait, Settle: DefaultSettle}
}

// Render navigates to rawURL, waits until waitFor matches an element and
// returns the resulting document HTML.
func (c *Chrome) Render(ctx context.Context, rawURL, waitFor string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.UserAgent(util.BrowserUserAgent),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelTab := chromedp.NewContext(actx)
	defer cancelTab()

	if err := chromedp.Run(bctx, chromedp.Navigate(rawURL)); err != nil {
		return "", fmt.Errorf("navigate %s: %w", rawURL, err)
	}

	wait := c.Wait
	if wait <= 0 {
		wait = DefaultWait
	}
	wctx, cancelWait := context.WithTimeout(bctx, wait)
	err := chromedp.Run(wctx, chromedp.WaitReady(waitFor, chromedp.ByQuery))
	cancelWait()
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %q on %s", ErrWaitTimeout, waitFor, rawURL)
		}
		return "", fmt.Errorf("wait for %q: %w", waitFor, err)
	}

	var html string
	if err := chromedp.Run(bctx,
		chromedp.Sleep(c.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("read rendered page: %w", err)
	}
	return html, nil
}
