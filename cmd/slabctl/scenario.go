package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/pool/alloc"
	"github.com/joshuapare/slabkit/pool/list"
)

func init() {
	rootCmd.AddCommand(newScenarioCmd())
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [A-E|all]...",
		Short: "Replay the reference allocator and list scenarios",
		Long: `The scenario command replays the reference behaviours and reports
pass or fail for each:

  A  ten single-slot allocations with block size 5 mint two blocks
  B  erasing positions 2, 3 and 4 of 0..9 leaves 0 1 5 6 7 8 9
  C  inserting 99 at position 0 of a three-element list
  D  erasing past the end fails and leaves the list unchanged
  E  a bulk allocation of 3 slots bypasses the pool

Example:
  slabctl scenario
  slabctl scenario A C --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(args)
		},
	}
}

type scenario struct {
	ID   string
	Desc string
	Run  func(cfg alloc.Config) error
}

var scenarios = []scenario{
	{"A", "ten allocations with block size 5", scenarioA},
	{"B", "erase positions 2, 3, 4 of 0..9", scenarioB},
	{"C", "insert 99 at the front", scenarioC},
	{"D", "erase past the end", scenarioD},
	{"E", "bulk allocation bypasses the pool", scenarioE},
}

type scenarioResult struct {
	ID    string `json:"id"`
	Desc  string `json:"description"`
	Pass  bool   `json:"pass"`
	Error string `json:"error,omitempty"`
}

var errScenarioFailed = errors.New("scenario failed")

func runScenarios(args []string) error {
	selected, err := selectScenarios(args)
	if err != nil {
		return err
	}
	cfg, err := allocConfig()
	if err != nil {
		return err
	}

	results := make([]scenarioResult, 0, len(selected))
	failed := 0
	for _, sc := range selected {
		res := scenarioResult{ID: sc.ID, Desc: sc.Desc, Pass: true}
		if err := sc.Run(cfg); err != nil {
			res.Pass = false
			res.Error = err.Error()
			failed++
		}
		results = append(results, res)
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			status := styled(passStyle, "PASS")
			if !res.Pass {
				status = styled(failStyle, "FAIL")
			}
			printInfo("%s  %s  %s\n", status, res.ID, res.Desc)
			if !res.Pass {
				printInfo("      %s\n", res.Error)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errScenarioFailed, failed, len(results))
	}
	return nil
}

func selectScenarios(args []string) ([]scenario, error) {
	if len(args) == 0 || slices.ContainsFunc(args, func(a string) bool { return strings.EqualFold(a, "all") }) {
		return scenarios, nil
	}
	var out []scenario
	for _, a := range args {
		i := slices.IndexFunc(scenarios, func(sc scenario) bool { return strings.EqualFold(sc.ID, a) })
		if i < 0 {
			return nil, fmt.Errorf("unknown scenario %q (want A-E or all)", a)
		}
		out = append(out, scenarios[i])
	}
	return out, nil
}

func scenarioA(cfg alloc.Config) error {
	cfg.BlockSize = 5
	a, err := alloc.New[int64](&cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	for range 10 {
		if _, err := a.Allocate(1); err != nil {
			return err
		}
	}
	s := a.Stats()
	if s.BlocksMinted != 2 {
		return fmt.Errorf("minted %d blocks, want 2", s.BlocksMinted)
	}
	if want := int64(10 * a.ElemSize()); a.Allocated() != want {
		return fmt.Errorf("allocated %d bytes, want %d", a.Allocated(), want)
	}
	return nil
}

func newList(cfg alloc.Config, vals ...int) (*list.List[int], error) {
	elems, err := alloc.New[int](&cfg)
	if err != nil {
		return nil, err
	}
	l, err := list.New(elems)
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		if err := l.PushBack(v); err != nil {
			_ = l.Close()
			return nil, err
		}
	}
	return l, nil
}

func expectValues(l *list.List[int], want ...int) error {
	got := slices.Collect(l.Values())
	if !slices.Equal(got, want) || l.Len() != len(want) {
		return fmt.Errorf("got %v (len %d), want %v", got, l.Len(), want)
	}
	return nil
}

func scenarioB(cfg alloc.Config) error {
	l, err := newList(cfg, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	if err != nil {
		return err
	}
	defer l.Close()

	// Positions name the elements as they stood before the first erase.
	for i, pos := range []int{2, 3, 4} {
		if err := l.Erase(pos - i); err != nil {
			return err
		}
	}
	return expectValues(l, 0, 1, 5, 6, 7, 8, 9)
}

func scenarioC(cfg alloc.Config) error {
	l, err := newList(cfg, 10, 20, 30)
	if err != nil {
		return err
	}
	defer l.Close()

	if err := l.Insert(0, 99); err != nil {
		return err
	}
	return expectValues(l, 99, 10, 20, 30)
}

func scenarioD(cfg alloc.Config) error {
	l, err := newList(cfg, 1, 2, 3)
	if err != nil {
		return err
	}
	defer l.Close()

	err = l.Erase(l.Len())
	if !errors.Is(err, list.ErrIndexOutOfRange) {
		return fmt.Errorf("erase at %d returned %v, want %v", l.Len(), err, list.ErrIndexOutOfRange)
	}
	return expectValues(l, 1, 2, 3)
}

func scenarioE(cfg alloc.Config) error {
	a, err := alloc.New[int64](&cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	before := a.Stats()
	ref, err := a.Allocate(3)
	if err != nil {
		return err
	}
	if err := a.Deallocate(ref, 3); err != nil {
		return err
	}
	after := a.Stats()

	if after.Blocks != before.Blocks || after.FreeSlots != before.FreeSlots || after.BumpRemaining != before.BumpRemaining {
		return fmt.Errorf("pool state changed: blocks %d->%d, free %d->%d",
			before.Blocks, after.Blocks, before.FreeSlots, after.FreeSlots)
	}
	if after.Spans != 0 {
		return fmt.Errorf("%d spans still live", after.Spans)
	}
	if want := int64(3 * a.ElemSize()); a.Allocated() != want {
		return fmt.Errorf("allocated %d bytes, want %d (bulk frees are not subtracted)", a.Allocated(), want)
	}
	return nil
}
