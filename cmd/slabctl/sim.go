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
	simSeed uint64
	simOps  int
)

func init() {
	cmd := newSimCmd()
	cmd.Flags().Uint64Var(&simSeed, "seed", 1, "Workload seed")
	cmd.Flags().IntVarP(&simOps, "ops", "n", 10000, "Number of operations")
	rootCmd.AddCommand(cmd)
}

func newSimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sim",
		Short: "Run a random list workload and report allocator statistics",
		Long: `The sim command replays a seeded stream of list operations against a
pooled list and a plain slice, failing on the first disagreement, then prints
the node allocator's statistics.

Example:
  slabctl sim --seed 42 --ops 50000
  slabctl sim --block-size 64 --backing mapped --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim()
		},
	}
}

type simResult struct {
	Seed     uint64 `json:"seed"`
	Ops      int    `json:"ops"`
	Rejected int    `json:"rejected"`
	MaxLen   int    `json:"max_len"`
	FinalLen int    `json:"final_len"`
}

type simReport struct {
	Result simResult         `json:"result"`
	Nodes  printer.StatsJSON `json:"nodes"`
}

func runSim() error {
	if simOps < 0 {
		return fmt.Errorf("--ops must be non-negative, got %d", simOps)
	}
	cfg, err := allocConfig()
	if err != nil {
		return err
	}
	elems, err := alloc.New[int](&cfg)
	if err != nil {
		return err
	}
	defer elems.Close()
	l, err := list.New(elems)
	if err != nil {
		return err
	}
	defer l.Close()

	printVerbose("Running %d operations (seed %d, block size %d, %s backing)\n",
		simOps, simSeed, cfg.BlockSize, cfg.Backing)

	rep, err := workload.Run(l, workload.Generate(simSeed, simOps))
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	nodes := l.Allocator().Stats()

	if jsonOut {
		opts := printer.DefaultOptions()
		opts.Format = printer.FormatJSON
		return printJSON(simReport{
			Result: simResult{simSeed, rep.Ops, rep.Rejected, rep.MaxLen, rep.FinalLen},
			Nodes:  printer.New(os.Stdout, opts).JSON("list nodes", nodes),
		})
	}

	printInfo("Simulation: %d ops, %d rejected, max length %d, final length %d\n\n",
		rep.Ops, rep.Rejected, rep.MaxLen, rep.FinalLen)
	if quiet {
		return nil
	}
	return printer.New(os.Stdout, printer.DefaultOptions()).PrintStats("list nodes", nodes)
}
