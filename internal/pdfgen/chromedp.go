package pdfgen

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/agencyops/internal/config"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const defaultRenderTimeout = 30 * time.Second

// ChromedpRenderer prints HTML with a headless Chrome. Every call launches
// its own browser and tears it down before returning, so renders never share
// state.
type ChromedpRenderer struct {
	timeout    time.Duration
	chromePath string
	noSandbox  bool
	logger     *logger.Logger
}

// NewChromedpRenderer creates a new chromedp backed renderer
func NewChromedpRenderer(cfg *config.Configuration, log *logger.Logger) HTMLRenderer {
	timeout := cfg.PDF.RenderTimeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	return &ChromedpRenderer{
		timeout:    timeout,
		chromePath: cfg.PDF.ChromePath,
		noSandbox:  cfg.PDF.NoSandbox,
		logger:     log,
	}
}

func (r *ChromedpRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.noSandbox {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	return opts
}

// RenderHTML loads the document into a blank page, waits for it to settle and
// prints it with backgrounds
func (r *ChromedpRenderer) RenderHTML(ctx context.Context, html string, opts PrintOptions) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ierr.NewError("html content is empty").
			WithHint("Nothing to render").
			Mark(ierr.ErrValidation)
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(r.logger.Debugf),
	)
	defer browserCancel()

	params := buildPrintParams(opts)

	var pdfData []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetEmulatedMedia().WithMedia(params.media).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(params.marginTop).
				WithMarginRight(params.marginRight).
				WithMarginBottom(params.marginBottom).
				WithMarginLeft(params.marginLeft).
				WithLandscape(params.landscape).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ierr.WithError(err).
				WithHintf("PDF rendering timed out after %s", r.timeout).
				Mark(ierr.ErrSystem)
		}
		r.logger.Errorw("chromedp rendering failed", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Failed to render PDF").
			Mark(ierr.ErrSystem)
	}

	if len(pdfData) == 0 {
		return nil, ierr.NewError("generated PDF is empty").
			WithHint("Failed to render PDF").
			Mark(ierr.ErrSystem)
	}

	r.logger.Debugw("pdf rendered",
		"bytes", len(pdfData),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pdfData, nil
}

// printParams holds page geometry in inches, the unit Chrome expects
type printParams struct {
	paperWidth   float64
	paperHeight  float64
	marginTop    float64
	marginRight  float64
	marginBottom float64
	marginLeft   float64
	landscape    bool
	media        string
}

func buildPrintParams(opts PrintOptions) printParams {
	width, height := opts.PaperWidthMM, opts.PaperHeightMM
	if width <= 0 || height <= 0 {
		width, height = a4WidthMM, a4HeightMM
	}
	media := opts.MediaType
	if media == "" {
		media = "screen"
	}
	return printParams{
		paperWidth:   mmToInches(width),
		paperHeight:  mmToInches(height),
		marginTop:    mmToInches(opts.MarginTopMM),
		marginRight:  mmToInches(opts.MarginRightMM),
		marginBottom: mmToInches(opts.MarginBottomMM),
		marginLeft:   mmToInches(opts.MarginLeftMM),
		landscape:    opts.Landscape,
		media:        media,
	}
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ HTMLRenderer = (*ChromedpRenderer)(nil)
