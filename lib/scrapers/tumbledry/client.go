package tumbledry

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/tumbledry")

const (
	loginPath        = "/mis/"
	storeSummaryPath = "/mis/store_summary"
	storeDetailPath  = "/mis/store_summary_yearly"

	usernameSelector = `input[name="username"]`
	passwordSelector = `input[name="password"]`
	submitSelector   = `button[type="submit"]`

	// present on every page behind the login wall, never on the login
	// form itself. the server returns 200 for both outcomes so this
	// content probe is the only reliable login verdict.
	authMarkerSelector = `a[href*="logout"]`
)

type ClientOptions struct {
	BaseUrl string
	// how long to wait for elements to become interactable,
	// defaults to 20s
	LoadTimeout time.Duration
	// inter-keystroke delay bounds for credential entry. pasting the
	// whole value at once is what the portal's bot heuristics key on.
	KeystrokeDelayMin time.Duration
	KeystrokeDelayMax time.Duration
}

// Client drives an authenticated browsing session against the portal.
// One client means one tab and one in-flight page at a time.
type Client struct {
	browser   *Browser
	baseUrl   *url.URL
	opts      ClientOptions
	activated bool
}

func NewClient(browser *Browser, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.LoadTimeout == 0 {
		opts.LoadTimeout = 20 * time.Second
	}
	if opts.KeystrokeDelayMin == 0 {
		opts.KeystrokeDelayMin = 60 * time.Millisecond
	}
	if opts.KeystrokeDelayMax == 0 {
		opts.KeystrokeDelayMax = 160 * time.Millisecond
	}

	return &Client{
		browser: browser,
		baseUrl: baseUrl,
		opts:    opts,
	}, nil
}

func (c *Client) pageUrl(path string, query url.Values) string {
	link := *c.baseUrl
	link.Path = path
	if query != nil {
		link.RawQuery = query.Encode()
	}
	return link.String()
}

// Login walks the portal's login state machine: load the form, enter
// credentials with human-paced keystrokes, submit, verify via content
// probe, then activate the session. Both failure modes here are fatal
// for the run; there is no automatic credential retry.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	err := chromedp.Run(c.browser.ctx, chromedp.Navigate(c.pageUrl(loginPath, nil)))
	if err != nil {
		span.SetStatus(codes.Error, "failed to open login page")
		return classifyNavError(err)
	}

	waitCtx, cancel := context.WithTimeout(c.browser.ctx, c.opts.LoadTimeout)
	err = chromedp.Run(waitCtx, chromedp.WaitVisible(usernameSelector, chromedp.ByQuery))
	cancel()
	if err != nil {
		span.SetStatus(codes.Error, "login form never became interactable")
		return fmt.Errorf("%w: login form: %s", ErrPageLoad, err)
	}

	err = c.typeInto(usernameSelector, username)
	if err != nil {
		return err
	}
	err = c.typeInto(passwordSelector, password)
	if err != nil {
		return err
	}
	err = chromedp.Run(c.browser.ctx, chromedp.Click(submitSelector, chromedp.ByQuery))
	if err != nil {
		return classifyNavError(err)
	}

	waitCtx, cancel = context.WithTimeout(c.browser.ctx, c.opts.LoadTimeout)
	err = chromedp.Run(waitCtx, chromedp.WaitVisible(authMarkerSelector, chromedp.ByQuery))
	cancel()
	if err != nil {
		span.SetStatus(codes.Error, ErrAuthentication.Error())
		return ErrAuthentication
	}

	slog.InfoContext(ctx, "logged into portal", "username", username)
	return c.activateSession(ctx)
}

// the store summary backend only honors the session cookie after its
// section has been opened once. runs exactly once per session.
func (c *Client) activateSession(ctx context.Context) error {
	if c.activated {
		return nil
	}
	ctx, span := tracer.Start(ctx, "client:activateSession")
	defer span.End()

	err := chromedp.Run(c.browser.ctx, chromedp.Navigate(c.pageUrl(storeSummaryPath, nil)))
	if err != nil {
		span.SetStatus(codes.Error, "failed to open store summary section")
		return classifyNavError(err)
	}

	waitCtx, cancel := context.WithTimeout(c.browser.ctx, c.opts.LoadTimeout)
	err = chromedp.Run(waitCtx, chromedp.WaitReady("body", chromedp.ByQuery))
	cancel()
	if err != nil {
		span.SetStatus(codes.Error, "store summary section never finished loading")
		return fmt.Errorf("%w: session activation: %s", ErrPageLoad, err)
	}

	c.activated = true
	slog.DebugContext(ctx, "session activated")
	return nil
}

func (c *Client) typeInto(selector, value string) error {
	err := chromedp.Run(c.browser.ctx, chromedp.Click(selector, chromedp.ByQuery))
	if err != nil {
		return classifyNavError(err)
	}
	for _, r := range value {
		err := chromedp.Run(
			c.browser.ctx,
			chromedp.SendKeys(selector, string(r), chromedp.ByQuery),
			chromedp.Sleep(c.keystrokeDelay()),
		)
		if err != nil {
			return classifyNavError(err)
		}
	}
	return nil
}

func (c *Client) keystrokeDelay() time.Duration {
	min := int(c.opts.KeystrokeDelayMin / time.Millisecond)
	max := int(c.opts.KeystrokeDelayMax / time.Millisecond)
	ms, err := random.IntRange(min, max)
	if err != nil {
		ms = (min + max) / 2
	}
	return time.Duration(ms) * time.Millisecond
}

// Page is a rendered portal page as the browser saw it.
type Page struct {
	Title string
	Html  string
}

// FetchStorePage navigates the session's tab to the yearly summary
// page for a store code and returns the rendered markup. The table
// wait is bounded and falls through to "take the page as-is": a slow
// render degrades to fewer extracted rows, not a failed item.
func (c *Client) FetchStorePage(ctx context.Context, code string) (Page, error) {
	ctx, span := tracer.Start(ctx, "client:FetchStorePage")
	defer span.End()

	link := c.pageUrl(storeDetailPath, url.Values{"store_code": {code}})
	err := chromedp.Run(c.browser.ctx, chromedp.Navigate(link))
	if err != nil {
		span.SetStatus(codes.Error, "navigation failed")
		return Page{}, classifyNavError(err)
	}

	waitCtx, cancel := context.WithTimeout(c.browser.ctx, c.opts.LoadTimeout)
	err = chromedp.Run(waitCtx, chromedp.WaitVisible("table", chromedp.ByQuery))
	cancel()
	if err != nil {
		slog.DebugContext(ctx, "no table became visible, extracting page as-is", "store_code", code)
	}

	var page Page
	err = chromedp.Run(
		c.browser.ctx,
		chromedp.Title(&page.Title),
		chromedp.OuterHTML("html", &page.Html, chromedp.ByQuery),
	)
	if err != nil {
		span.SetStatus(codes.Error, "failed to read page content")
		return Page{}, classifyNavError(err)
	}
	return page, nil
}
