package tumbledry

import (
	"context"

	"github.com/chromedp/chromedp"
)

type BrowserOptions struct {
	// run with a visible window, useful when debugging the login flow
	Headful   bool
	UserAgent string
}

// Browser owns a chromium process and the single tab the scraper
// drives. Close must run on every exit path, otherwise the OS process
// leaks past the harvest run.
type Browser struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

func NewBrowser(ctx context.Context, opts BrowserOptions) (*Browser, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !opts.Headful),
		chromedp.UserAgent(opts.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// an empty run forces chromium to actually start so launch
	// failures surface here instead of mid-login
	err := chromedp.Run(tabCtx)
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, err
	}

	return &Browser{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

func (b *Browser) Close() {
	b.cancelTab()
	b.cancelAlloc()
}
