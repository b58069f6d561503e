package alloc

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/joshuapare/slabkit/internal/buf"
	"github.com/joshuapare/slabkit/internal/sysmem"
)

// storage reserves typed slot arrays for blocks and spans.
type storage[T any] interface {
	reserve(n int) ([]T, error)
	release(slots []T) error
	name() string
}

// heapStorage hands out ordinary Go slices. Sizes are checked before make so
// an oversized request returns an error rather than panicking.
type heapStorage[T any] struct {
	elemSize int
}

func (s heapStorage[T]) reserve(n int) ([]T, error) {
	if _, err := buf.SpanBytes(n, s.elemSize); err != nil {
		return nil, err
	}
	return make([]T, n), nil
}

func (heapStorage[T]) release([]T) error { return nil }
func (heapStorage[T]) name() string      { return "heap" }

// rawStorage views raw memory from a sysmem.Source as []T. T must not hold
// Go pointers: the collector never scans this memory.
type rawStorage[T any] struct {
	src      sysmem.Source
	elemSize int
}

func (s rawStorage[T]) reserve(n int) ([]T, error) {
	size, err := buf.SpanBytes(n, s.elemSize)
	if err != nil {
		return nil, err
	}
	mem, err := s.src.Reserve(size)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(mem))), n), nil
}

func (s rawStorage[T]) release(slots []T) error {
	if len(slots) == 0 {
		return nil
	}
	mem := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(slots))), len(slots)*s.elemSize)
	return s.src.Release(mem)
}

func (s rawStorage[T]) name() string { return s.src.Name() }

func newStorage[T any](backing Backing, elemSize int) (storage[T], error) {
	switch backing {
	case BackingHeap:
		return heapStorage[T]{elemSize: elemSize}, nil
	case BackingMapped:
		typ := reflect.TypeFor[T]()
		if hasPointers(typ) {
			return nil, fmt.Errorf("%w: %s", ErrPointerElem, typ)
		}
		// Zero-sized elements need no memory at all.
		if elemSize == 0 {
			return heapStorage[T]{elemSize: 0}, nil
		}
		return rawStorage[T]{src: sysmem.NewMapped(), elemSize: elemSize}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, backing)
}

// hasPointers reports whether values of t contain anything the garbage
// collector must trace.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.String, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
