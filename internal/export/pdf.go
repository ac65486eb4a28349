// Package export renders a published portfolio page in a headless browser
// and produces a single-page PDF whose page height matches the full page.
// The page is rasterized first so the PDF mirrors the on-screen layout
// instead of browser print styles.
package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	// RenderWidth is the fixed viewport width used for every export,
	// detached from whatever window the user is looking at.
	RenderWidth = 1440

	// DefaultSettleDelay is how long to wait after load for web fonts and
	// late layout shifts before capturing.
	DefaultSettleDelay = 2500 * time.Millisecond

	// DefaultTimeout bounds the whole export, capture included.
	DefaultTimeout = 60 * time.Second

	// cssPixelsPerInch is the CSS reference pixel density used to convert
	// raster dimensions to PDF paper size.
	cssPixelsPerInch = 96.0
)

// Options configures one export run.
type Options struct {
	// URL of the page to capture, typically the public page with the
	// export flag set so interactive chrome is suppressed.
	URL string

	// SettleDelay overrides DefaultSettleDelay when positive.
	SettleDelay time.Duration

	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration

	Verbose bool
}

// PDF captures the page at opts.URL and returns a one-page PDF sized to the
// page's full height. Browser resources are released on every return path.
func PDF(ctx context.Context, opts Options) ([]byte, error) {
	if opts.URL == "" {
		return nil, &Error{Stage: StagePrepare, Message: "export URL is required"}
	}
	settle := opts.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	if opts.Verbose {
		log.Printf("[EXPORT] Capturing %s at width %d", opts.URL, RenderWidth)
	}

	var shot []byte
	var pageHeight float64
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(RenderWidth, 900),
		chromedp.Navigate(opts.URL),
		chromedp.WaitReady("body"),
		// Fixed settle delay for fonts and late layout shifts.
		chromedp.Sleep(settle),
		chromedp.Evaluate(`document.documentElement.scrollHeight`, &pageHeight),
		chromedp.FullScreenshot(&shot, 100),
	)
	if err != nil {
		return nil, &Error{Stage: StageCapture, Message: "page capture failed", Cause: err}
	}
	if len(shot) == 0 || pageHeight <= 0 {
		return nil, &Error{Stage: StageCapture, Message: "captured an empty page"}
	}

	if opts.Verbose {
		log.Printf("[EXPORT] Raster captured: %d bytes, page height %.0fpx", len(shot), pageHeight)
	}

	pdf, err := wrapRaster(browserCtx, shot, pageHeight)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		log.Printf("[EXPORT] PDF generated: %d bytes", len(pdf))
	}
	return pdf, nil
}

// wrapRaster loads the raster into a blank page and prints it to a PDF whose
// paper size matches the image, producing exactly one page.
func wrapRaster(ctx context.Context, shot []byte, pageHeight float64) ([]byte, error) {
	widthIn, heightIn := PaperSizeInches(RenderWidth, pageHeight)

	html := fmt.Sprintf(
		`<html><body style="margin:0"><img style="display:block;width:100%%" src="data:image/png;base64,%s"></body></html>`,
		base64.StdEncoding.EncodeToString(shot),
	)

	var pdf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitVisible("img", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(widthIn).
				WithPaperHeight(heightIn).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(false).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &Error{Stage: StagePrint, Message: "pdf generation failed", Cause: err}
	}
	if len(pdf) == 0 {
		return nil, &Error{Stage: StagePrint, Message: "pdf output was empty"}
	}
	return pdf, nil
}

// PaperSizeInches converts a raster size in CSS pixels to PDF paper
// dimensions in inches, rounded up so content never spills to a second page.
func PaperSizeInches(widthPx int, heightPx float64) (width, height float64) {
	width = float64(widthPx) / cssPixelsPerInch
	height = math.Ceil(heightPx) / cssPixelsPerInch
	return width, height
}
