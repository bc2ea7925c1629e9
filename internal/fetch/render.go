package fetch

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// settleDelay gives client-side frameworks a moment to hydrate after load.
const settleDelay = 2 * time.Second

// renderHeadless loads the page in headless Chrome and returns the
// post-JavaScript DOM.
func (f *Fetcher) renderHeadless(ctx context.Context, target string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(f.cfg.UserAgent),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, f.cfg.RenderTimeout())
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(target),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}
