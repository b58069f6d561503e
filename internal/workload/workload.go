// Package workload generates reproducible operation streams for linked lists
// and replays them against a list and a plain slice model side by side.
package workload

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/pool/list"
)

// ErrDiverged indicates the list and the model disagree.
var ErrDiverged = errors.New("workload: list diverged from model")

// Kind names a list operation.
type Kind uint8

const (
	PushBack  Kind = iota // append Value
	PushFront             // prepend Value
	Insert                // insert Value before Pos
	Erase                 // remove the element at Pos
	PopFront              // remove the first element
	PopBack               // remove the last element
	Set                   // overwrite the element at Pos with Value
	Clear                 // remove every element
)

var kindNames = [...]string{"push-back", "push-front", "insert", "erase", "pop-front", "pop-back", "set", "clear"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Op is one step of a workload. Pos is only meaningful for Insert, Erase and
// Set and may be out of range on purpose.
type Op struct {
	Kind  Kind
	Pos   int
	Value int
}

func (o Op) String() string {
	switch o.Kind {
	case Insert, Set:
		return fmt.Sprintf("%s(%d, %d)", o.Kind, o.Pos, o.Value)
	case Erase:
		return fmt.Sprintf("%s(%d)", o.Kind, o.Pos)
	case PushBack, PushFront:
		return fmt.Sprintf("%s(%d)", o.Kind, o.Value)
	}
	return o.Kind.String()
}

// weights per Kind, out of 100. Growth outweighs shrinkage so lists get long.
var weights = [...]int{30, 10, 20, 15, 8, 7, 9, 1}

// MaxPos bounds generated positions; positions in [-1, MaxPos) are drawn.
const MaxPos = 64

// Generate returns n operations drawn from a PCG source seeded with seed.
// The same seed always yields the same stream.
func Generate(seed uint64, n int) []Op {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ops := make([]Op, n)
	for i := range ops {
		r := rng.IntN(100)
		k := Kind(0)
		for r >= weights[k] {
			r -= weights[k]
			k++
		}
		ops[i] = Op{Kind: k, Pos: rng.IntN(MaxPos+1) - 1, Value: rng.IntN(1000)}
	}
	return ops
}

// Model is the reference behaviour: a plain slice with the list's error
// semantics.
type Model []int

// Apply performs op on the model.
func (m *Model) Apply(op Op) error {
	s := *m
	switch op.Kind {
	case PushBack:
		s = append(s, op.Value)
	case PushFront:
		s = slices.Insert(s, 0, op.Value)
	case Insert:
		if op.Pos < 0 || op.Pos > len(s) {
			return list.ErrIndexOutOfRange
		}
		s = slices.Insert(s, op.Pos, op.Value)
	case Erase:
		if op.Pos < 0 || op.Pos >= len(s) {
			return list.ErrIndexOutOfRange
		}
		s = slices.Delete(s, op.Pos, op.Pos+1)
	case PopFront:
		if len(s) == 0 {
			return list.ErrEmpty
		}
		s = slices.Delete(s, 0, 1)
	case PopBack:
		if len(s) == 0 {
			return list.ErrEmpty
		}
		s = s[:len(s)-1]
	case Set:
		if op.Pos < 0 || op.Pos >= len(s) {
			return list.ErrIndexOutOfRange
		}
		s[op.Pos] = op.Value
	case Clear:
		s = s[:0]
	default:
		return fmt.Errorf("workload: unknown op %s", op.Kind)
	}
	*m = s
	return nil
}

// apply performs op on l.
func apply(l *list.List[int], op Op) error {
	switch op.Kind {
	case PushBack:
		return l.PushBack(op.Value)
	case PushFront:
		return l.PushFront(op.Value)
	case Insert:
		return l.Insert(op.Pos, op.Value)
	case Erase:
		return l.Erase(op.Pos)
	case PopFront:
		_, err := l.PopFront()
		return err
	case PopBack:
		_, err := l.PopBack()
		return err
	case Set:
		return l.Set(op.Pos, op.Value)
	case Clear:
		return l.Clear()
	}
	return fmt.Errorf("workload: unknown op %s", op.Kind)
}

// Report summarises a run.
type Report struct {
	Ops      int // operations applied
	Rejected int // operations both sides refused (out of range, empty)
	MaxLen   int // longest the list got
	FinalLen int
}

// Run replays ops against l and a fresh model, checking after every step that
// both agree on the outcome and the contents. l should start empty.
func Run(l *list.List[int], ops []Op) (Report, error) {
	var (
		m   Model
		rep Report
	)
	for i, op := range ops {
		want := m.Apply(op)
		got := apply(l, op)
		switch {
		case want == nil && got != nil:
			return rep, fmt.Errorf("%w: step %d %s: unexpected error: %w", ErrDiverged, i, op, got)
		case want != nil && !errors.Is(got, want):
			return rep, fmt.Errorf("%w: step %d %s: got %v, want %v", ErrDiverged, i, op, got, want)
		case want != nil:
			rep.Rejected++
		}
		if err := Check(l, m); err != nil {
			return rep, fmt.Errorf("step %d %s: %w", i, op, err)
		}
		rep.Ops++
		rep.MaxLen = max(rep.MaxLen, l.Len())
	}
	rep.FinalLen = l.Len()

	logger.L.Debug("workload: run complete",
		"ops", rep.Ops, "rejected", rep.Rejected, "max_len", rep.MaxLen, "final_len", rep.FinalLen)
	return rep, nil
}

// Check compares l with m: the length, forward traversal and backward
// traversal must all agree.
func Check(l *list.List[int], m Model) error {
	if l.Len() != len(m) {
		return fmt.Errorf("%w: Len() = %d, model has %d", ErrDiverged, l.Len(), len(m))
	}
	n := 0
	for i, v := range l.All() {
		if i >= len(m) || v != m[i] {
			return fmt.Errorf("%w: forward element %d = %d, model %v", ErrDiverged, i, v, []int(m))
		}
		n++
	}
	if n != len(m) {
		return fmt.Errorf("%w: forward walk saw %d of %d elements", ErrDiverged, n, len(m))
	}
	for i, v := range l.Backward() {
		if i < 0 || v != m[i] {
			return fmt.Errorf("%w: backward element %d = %d, model %v", ErrDiverged, i, v, []int(m))
		}
	}
	return nil
}
