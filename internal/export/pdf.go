// Package export prints formatted résumé markup to A4 PDF with headless Chrome.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 paper size in inches
const (
	a4Width  = 8.27
	a4Height = 11.69
)

// DefaultTimeout bounds one render attempt
const DefaultTimeout = 60 * time.Second

// ErrRendererUnavailable is returned when no Chrome executable can be found
var ErrRendererUnavailable = errors.New("pdf renderer unavailable: chrome not found")

// chromeNames are the executables looked up on PATH when no path is configured
var chromeNames = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell", "chrome"}

// RenderError represents a failed PDF render
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Renderer turns markup into PDF bytes
type Renderer interface {
	RenderPDF(ctx context.Context, markup string) ([]byte, error)
}

// Options configure a ChromeRenderer
type Options struct {
	// ChromePath overrides executable discovery; CHROME_PATH is used when empty
	ChromePath string
	Timeout    time.Duration
	Retries    uint
	Logger     *slog.Logger
}

// ChromeRenderer prints markup with a fresh headless Chrome per call
type ChromeRenderer struct {
	chromePath string
	timeout    time.Duration
	retries    uint
	logger     *slog.Logger
}

// NewChromeRenderer creates a ChromeRenderer
func NewChromeRenderer(opts Options) *ChromeRenderer {
	if opts.ChromePath == "" {
		opts.ChromePath = os.Getenv("CHROME_PATH")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ChromeRenderer{
		chromePath: opts.ChromePath,
		timeout:    opts.Timeout,
		retries:    opts.Retries,
		logger:     opts.Logger,
	}
}

// Available reports whether a Chrome executable can be found
func (r *ChromeRenderer) Available() bool {
	_, err := r.execPath()
	return err == nil
}

func (r *ChromeRenderer) execPath() (string, error) {
	if r.chromePath != "" {
		if _, err := os.Stat(r.chromePath); err != nil {
			return "", fmt.Errorf("%w: %s", ErrRendererUnavailable, r.chromePath)
		}
		return r.chromePath, nil
	}
	for _, name := range chromeNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrRendererUnavailable
}

// RenderPDF prints markup to an A4 PDF, honouring any CSS @page size.
// Failed attempts are retried; a missing Chrome is not.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, markup string) ([]byte, error) {
	path, err := r.execPath()
	if err != nil {
		return nil, err
	}

	var pdf []byte
	attempt := 0
	err = retry.Do(
		func() error {
			attempt++
			out, err := r.render(ctx, path, markup)
			if err != nil {
				r.logger.Debug("pdf render attempt failed", "attempt", attempt, "error", err)
				return err
			}
			pdf = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.retries+1),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, &RenderError{Message: "failed to render pdf", Cause: err}
	}

	r.logger.Debug("rendered pdf", "bytes", len(pdf), "attempts", attempt)
	return pdf, nil
}

func (r *ChromeRenderer) render(ctx context.Context, execPath, markup string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
