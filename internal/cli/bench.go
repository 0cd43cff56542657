package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/deltadb"
	"github.com/hupe1980/deltadb/model"
	"github.com/hupe1980/deltadb/predicate"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	Workers     int
	Txns        int
	Batch       int
	Layout      string
	Compression string
}

// BenchResult is the outcome of a bench run.
type BenchResult struct {
	Workers     int     `json:"workers"`
	Commits     uint64  `json:"commits"`
	Retries     uint64  `json:"cas_retries"`
	Records     int     `json:"records"`
	ChainLength int     `json:"chain_length"`
	Elapsed     string  `json:"elapsed"`
	TxnsPerSec  float64 `json:"txns_per_sec"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Stress concurrent commits",
		Long: `Run concurrent writers that each commit a series of transactions.

Every transaction appends a batch of items. Commits race on the database
state; the report shows how often a compare-and-swap had to be retried.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runBench(cmd.Context(), rootOpts, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return rootOpts.write(cmd.OutOrStdout(), res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "workers=%d commits=%d retries=%d records=%d chain=%d elapsed=%s (%.0f txn/s)\n",
					res.Workers, res.Commits, res.Retries, res.Records, res.ChainLength, res.Elapsed, res.TxnsPerSec)
				return err
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 4, "concurrent writers")
	cmd.Flags().IntVar(&opts.Txns, "txns", 100, "transactions per writer")
	cmd.Flags().IntVar(&opts.Batch, "batch", 10, "items appended per transaction")
	cmd.Flags().StringVar(&opts.Layout, "layout", "document", "table layout (document|columnar)")
	cmd.Flags().StringVar(&opts.Compression, "compression", "none", "payload compression (none|lz4|zstd)")

	return cmd
}

func runBench(ctx context.Context, rootOpts *RootOptions, opts *BenchOptions, logs io.Writer) (*BenchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Workers <= 0 || opts.Txns <= 0 || opts.Batch <= 0 {
		return nil, fmt.Errorf("workers, txns and batch must be positive")
	}
	layout, err := model.ParseLayout(opts.Layout)
	if err != nil {
		return nil, err
	}
	compression, err := model.ParseCompression(opts.Compression)
	if err != nil {
		return nil, err
	}

	db, err := deltadb.Open([]deltadb.Definition{deltadb.Define(itemsSchema(layout))},
		deltadb.WithCompression(compression),
		deltadb.WithLogger(rootOpts.logger(logs)),
	)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	items, err := deltadb.GetTable[Item](db, "items")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := range opts.Workers {
		g.Go(func() error {
			for i := range opts.Txns {
				base := (w*opts.Txns + i) * opts.Batch
				err := db.Update(gctx, func(tx *deltadb.Tx) error {
					for j := range opts.Batch {
						if err := items.Append(gctx, newItem(base+j, 16), tx); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return fmt.Errorf("writer %d: %w", w, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	s := db.Stats()
	records, err := items.Count(ctx, predicate.All(), nil)
	if err != nil {
		return nil, err
	}
	txns := opts.Workers * opts.Txns
	return &BenchResult{
		Workers:     opts.Workers,
		Commits:     s.Commits,
		Retries:     s.CASRetries,
		Records:     records,
		ChainLength: s.ChainLength,
		Elapsed:     elapsed.Round(time.Microsecond).String(),
		TxnsPerSec:  float64(txns) / elapsed.Seconds(),
	}, nil
}
