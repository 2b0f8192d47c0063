package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"expensetracker/internal/log"
	"expensetracker/internal/store"
)

// Result summarizes an import run.
type Result struct {
	Added   int
	Failed  int
	Skipped int
}

// Importer adds statement transactions to a store.
type Importer struct {
	store    *store.Store
	logger   *log.Logger
	progress io.Writer
}

// New returns an importer. progress receives a progress bar and may be nil.
func New(st *store.Store, logger *log.Logger, progress io.Writer) *Importer {
	return &Importer{
		store:    st,
		logger:   log.OrDefault(logger).WithComponent(log.ComponentImport),
		progress: progress,
	}
}

// ImportOFX parses r and adds every debit as an expense. Parse failures
// abort the import; individual records that fail validation are counted and
// skipped.
func (im *Importer) ImportOFX(ctx context.Context, r io.Reader) (Result, error) {
	txs, skipped, err := ParseOFX(r)
	if err != nil {
		return Result{}, err
	}
	res := im.Add(ctx, txs)
	res.Skipped = skipped
	im.logger.InfoContext(ctx, "OFX import finished",
		"added", res.Added, "failed", res.Failed, "skipped", res.Skipped)
	return res, nil
}

// Add stores txs in order, stopping early when ctx is done.
func (im *Importer) Add(ctx context.Context, txs []Transaction) Result {
	var res Result
	bar := im.newBar(len(txs))
	for _, tx := range txs {
		if ctx.Err() != nil {
			break
		}
		d, err := tx.Draft()
		if err == nil {
			_, err = im.store.Add(ctx, d)
		}
		if err != nil {
			res.Failed++
			im.logger.WarnContext(ctx, "Skipping transaction",
				log.FieldTitle, tx.Title, "fitid", tx.FITID, log.FieldError, err)
		} else {
			res.Added++
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return res
}

func (im *Importer) newBar(n int) *progressbar.ProgressBar {
	if im.progress == nil || n == 0 {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(im.progress),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing expenses"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(im.progress)
		}),
	)
}
