package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/deltadb"
	"github.com/hupe1980/deltadb/codec"
	"github.com/hupe1980/deltadb/model"
	"github.com/hupe1980/deltadb/predicate"
)

// DemoReport is the outcome of a demo run.
type DemoReport struct {
	Layout      string        `json:"layout"`
	Loaded      int           `json:"loaded"`
	Deleted     int           `json:"deleted"`
	ChainLength int           `json:"chain_length"`
	MemoryUsage int64         `json:"memory_usage"`
	Queries     []QueryReport `json:"queries"`
}

// QueryReport is the outcome of one configured query.
type QueryReport struct {
	Name      string `json:"name"`
	Predicate string `json:"predicate"`
	Matches   int    `json:"matches"`
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo <config.yaml>",
		Short: "Load items and run configured queries",
		Long: `Load a table as described by a YAML config and run its queries.

Example config:

  layout: columnar
  records: 1000
  groups: 8
  delete: g3
  queries:
    - name: group one
      group: g1
    - name: high scores in g2
      group: g2
      op: ">="
      score: 9.5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadDemoConfig(args[0])
			if err != nil {
				return err
			}
			report, err := runDemo(cmd.Context(), rootOpts, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return rootOpts.write(cmd.OutOrStdout(), report, report.writeText)
		},
	}

	return cmd
}

func runDemo(ctx context.Context, rootOpts *RootOptions, cfg *DemoConfig, logs io.Writer) (*DemoReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	layout, err := model.ParseLayout(cfg.Layout)
	if err != nil {
		return nil, err
	}
	compression, err := model.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}
	c := codec.Default
	if cfg.Codec != "" {
		c, _ = codec.ByName(cfg.Codec)
	}

	db, err := deltadb.Open([]deltadb.Definition{deltadb.Define(itemsSchema(layout))},
		deltadb.WithCodec(c),
		deltadb.WithCompression(compression),
		deltadb.WithMemoryLimit(cfg.MemoryLimit),
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

	err = db.Update(ctx, func(tx *deltadb.Tx) error {
		for i := range cfg.Records {
			if err := items.Append(ctx, newItem(i, cfg.Groups), tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	report := &DemoReport{Layout: layout.String(), Loaded: cfg.Records}
	group, _ := items.Index("group")
	if cfg.Delete != "" {
		report.Deleted, err = items.Delete(ctx, predicate.Eq(group, cfg.Delete), nil)
		if err != nil {
			return nil, fmt.Errorf("delete group %q: %w", cfg.Delete, err)
		}
	}

	err = db.View(ctx, func(tx *deltadb.Tx) error {
		for _, q := range cfg.Queries {
			p, err := q.predicate(items)
			if err != nil {
				return err
			}
			n, err := items.Count(ctx, p, tx)
			if err != nil {
				return fmt.Errorf("query %q: %w", q.Name, err)
			}
			report.Queries = append(report.Queries, QueryReport{Name: q.Name, Predicate: p.String(), Matches: n})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s := db.Stats()
	report.ChainLength = s.ChainLength
	report.MemoryUsage = s.MemoryUsage
	return report, nil
}

func (q QueryConfig) predicate(items *deltadb.Table[Item]) (predicate.Predicate, error) {
	var parts []predicate.Predicate
	if q.Group != "" {
		group, _ := items.Index("group")
		parts = append(parts, predicate.Eq(group, q.Group))
	}
	if q.Op != "" {
		op, err := model.ParseOperator(q.Op)
		if err != nil {
			return nil, err
		}
		parts = append(parts, predicate.Field("score", itemScore, op, *q.Score))
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return predicate.NewAnd(parts...), nil
}

func (r *DemoReport) writeText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "layout=%s loaded=%d deleted=%d chain=%d memory=%dB\n",
		r.Layout, r.Loaded, r.Deleted, r.ChainLength, r.MemoryUsage); err != nil {
		return err
	}
	for _, q := range r.Queries {
		if _, err := fmt.Fprintf(w, "%-24s %6d  %s\n", q.Name, q.Matches, q.Predicate); err != nil {
			return err
		}
	}
	return nil
}
