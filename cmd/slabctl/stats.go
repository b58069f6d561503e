package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/internal/workload"
	"github.com/joshuapare/slabkit/pool/alloc"
	"github.com/joshuapare/slabkit/pool/list"
	"github.com/joshuapare/slabkit/pool/printer"
)

var (
	statsSizes []int
	statsSeed  uint64
	statsOps   int
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().IntSliceVar(&statsSizes, "sizes", []int{1, 5, 16, 64, 256}, "Block sizes to compare")
	cmd.Flags().Uint64Var(&statsSeed, "seed", 1, "Workload seed")
	cmd.Flags().IntVarP(&statsOps, "ops", "n", 10000, "Number of operations per run")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Compare allocator statistics across block sizes",
		Long: `The stats command runs the same seeded list workload once per block
size and prints one row of node allocator statistics for each, so the
trade-off between blocks minted, reuse and reserved bytes is visible.
The --block-size flag is ignored; use --sizes.

Example:
  slabctl stats
  slabctl stats --sizes 1,8,128 --ops 100000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}

func runStats() error {
	if len(statsSizes) == 0 {
		return fmt.Errorf("--sizes must name at least one block size")
	}
	cfg, err := allocConfig()
	if err != nil {
		return err
	}
	ops := workload.Generate(statsSeed, statsOps)

	entries := make([]printer.Entry, 0, len(statsSizes))
	for _, size := range statsSizes {
		cfg.BlockSize = size
		s, err := measure(cfg, ops)
		if err != nil {
			return fmt.Errorf("block size %d: %w", size, err)
		}
		printVerbose("block size %d: %d blocks minted\n", size, s.BlocksMinted)
		entries = append(entries, printer.Entry{Name: fmt.Sprintf("block=%d", size), Stats: s})
	}

	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	} else if quiet {
		return nil
	}
	return printer.New(os.Stdout, opts).PrintTable(entries)
}

// measure runs ops on a fresh list and returns its node allocator stats
// before the list is torn down.
func measure(cfg alloc.Config, ops []workload.Op) (alloc.Stats, error) {
	elems, err := alloc.New[int](&cfg)
	if err != nil {
		return alloc.Stats{}, err
	}
	l, err := list.New(elems)
	if err != nil {
		return alloc.Stats{}, err
	}
	defer l.Close()

	if _, err := workload.Run(l, ops); err != nil {
		return alloc.Stats{}, err
	}
	return l.Allocator().Stats(), nil
}
