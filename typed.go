package redcoll

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/unkn0wn-root/redcoll/conn"
	"github.com/unkn0wn-root/redcoll/container"
	"github.com/unkn0wn-root/redcoll/model"
)

// Options configure a TypedList. Key and Type are required.
type Options[T any] struct {
	Key  string
	Type ElementType[T]

	// Executor precedence: Pipeline, then Client, then conn.Default().
	Pipeline conn.Executor
	Client   conn.Executor

	Registry *model.Registry // resolves Named types; nil => model.DefaultRegistry()
	Logger   Logger          // nil => NopLogger
	Hooks    Hooks           // nil => NopHooks
}

// TypedList is a list whose elements are converted to and from T.
// It holds no elements itself; every call goes to the store.
type TypedList[T any] struct {
	list  *container.List
	et    ElementType[T]
	log   Logger
	hooks Hooks
}

// NewTypedList resolves the element type and executor once. An element
// type that cannot be resolved fails here with *UnknownTypeError, before
// any element is touched.
func NewTypedList[T any](opts Options[T]) (*TypedList[T], error) {
	if opts.Key == "" {
		return nil, ErrEmptyKey
	}
	reg := opts.Registry
	if reg == nil {
		reg = model.DefaultRegistry()
	}
	et, err := opts.Type.resolve(reg)
	if err != nil {
		return nil, err
	}
	exec, err := conn.Pick(opts.Pipeline, opts.Client)
	if err != nil {
		return nil, fmt.Errorf("redcoll: list %q: %w", opts.Key, err)
	}
	return &TypedList[T]{
		list:  container.NewList(opts.Key, exec),
		et:    et,
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
	}, nil
}

// With returns the same typed list bound to exec, e.g. a pipeline.
func (t *TypedList[T]) With(exec conn.Executor) *TypedList[T] {
	cp := *t
	cp.list = t.list.With(exec)
	return &cp
}

func (t *TypedList[T]) Key() string { return t.list.Key() }

func (t *TypedList[T]) Kind() Kind { return t.et.kind }

// Raw returns the untyped list underneath.
func (t *TypedList[T]) Raw() *container.List { return t.list }

// Len returns the number of stored elements, resolvable or not.
func (t *TypedList[T]) Len(ctx context.Context) (int64, error) {
	return t.list.Len(ctx)
}

// All returns every element in order. Entity ids that no longer resolve
// are dropped.
func (t *TypedList[T]) All(ctx context.Context) ([]T, error) {
	raws, err := t.list.All(ctx)
	if err != nil {
		return nil, err
	}
	return t.castAll(ctx, raws, 0)
}

// Slice returns the elements in the half-open range [start, stop) with
// the same dropping rule as All.
func (t *TypedList[T]) Slice(ctx context.Context, start, stop int64) ([]T, error) {
	n, err := t.list.Len(ctx)
	if err != nil {
		return nil, err
	}
	start, stop, ok := container.Normalize(start, stop, n)
	if !ok {
		return []T{}, nil
	}
	raws, err := t.list.Range(ctx, start, stop-1)
	if err != nil {
		return nil, err
	}
	return t.castAll(ctx, raws, start)
}

// At returns the element at i. In entity mode an id that does not resolve
// gives ok=false and no error; an index outside the list gives *IndexError.
func (t *TypedList[T]) At(ctx context.Context, i int64) (T, bool, error) {
	v, _, ok, err := t.at(ctx, i)
	return v, ok, err
}

func (t *TypedList[T]) at(ctx context.Context, i int64) (v T, raw string, ok bool, err error) {
	raw, err = t.list.Index(ctx, i)
	if err != nil {
		return v, "", false, err
	}
	if t.et.kind == KindPlain {
		v, err = t.cast(raw, i)
		return v, raw, err == nil, err
	}
	v, ok, err = t.et.ops.get(ctx, raw)
	return v, raw, ok, err
}

// SetAt replaces the element at i.
func (t *TypedList[T]) SetAt(ctx context.Context, i int64, v T) error {
	raw, err := t.store(v)
	if err != nil {
		return err
	}
	return t.list.SetAt(ctx, i, raw)
}

func (t *TypedList[T]) Append(ctx context.Context, v T) error {
	raw, err := t.store(v)
	if err != nil {
		return err
	}
	return t.list.Append(ctx, raw)
}

// Extend appends vs in order with a single command. Nothing is written if
// any element fails to convert.
func (t *TypedList[T]) Extend(ctx context.Context, vs []T) error {
	raws := make([]any, len(vs))
	for i, v := range vs {
		raw, err := t.store(v)
		if err != nil {
			return err
		}
		raws[i] = raw
	}
	return t.list.Extend(ctx, raws)
}

// Iter yields the same sequence as All, fetching one position at a time.
// The length is read once up front; stopping early issues no further
// commands. Iteration ends after the first error is yielded.
func (t *TypedList[T]) Iter(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		n, err := t.list.Len(ctx)
		if err != nil {
			yield(zero, err)
			return
		}
		for i := int64(0); i < n; i++ {
			v, raw, ok, err := t.at(ctx, i)
			switch {
			case errors.Is(err, ErrIndexOutOfRange):
				// list shrank since the length was read
				return
			case err != nil:
				yield(zero, err)
				return
			case !ok:
				t.stale(raw)
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Clear deletes the list.
func (t *TypedList[T]) Clear(ctx context.Context) error {
	return t.list.Clear(ctx)
}

// Repr renders the materialized elements, e.g. <TypedList "k" int64 [1 2 3]>.
func (t *TypedList[T]) Repr(ctx context.Context) (string, error) {
	vs, err := t.All(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<TypedList %q %s [", t.Key(), t.et.name)
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v", v)
	}
	b.WriteString("]>")
	return b.String(), nil
}

// String implements fmt.Stringer without touching the store.
func (t *TypedList[T]) String() string {
	return fmt.Sprintf("TypedList[%s](%q, %s)", t.et.name, t.Key(), t.et.kind)
}

func (t *TypedList[T]) cast(raw string, i int64) (T, error) {
	v, err := t.et.codec.Decode([]byte(raw))
	if err != nil {
		t.hooks.CastFailed(t.Key(), i, err)
		return v, &TypeCastError{Key: t.Key(), Index: i, Raw: raw, Err: err}
	}
	return v, nil
}

func (t *TypedList[T]) castAll(ctx context.Context, raws []string, offset int64) ([]T, error) {
	out := make([]T, 0, len(raws))
	if t.et.kind == KindPlain {
		for i, raw := range raws {
			v, err := t.cast(raw, offset+int64(i))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	if t.et.ops.many != nil && len(raws) > 0 {
		found, err := t.et.ops.many(ctx, uniq(raws))
		if err != nil {
			return nil, err
		}
		for _, id := range raws {
			if v, ok := found[id]; ok {
				out = append(out, v)
			} else {
				t.stale(id)
			}
		}
		return out, nil
	}

	for _, id := range raws {
		v, ok, err := t.et.ops.get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			t.stale(id)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *TypedList[T]) store(v T) (string, error) {
	if t.et.kind == KindEntity {
		id := t.et.ops.id(v)
		if id == "" {
			return "", fmt.Errorf("redcoll: list %q: %w", t.Key(), ErrEmptyID)
		}
		return id, nil
	}
	b, err := t.et.codec.Encode(v)
	if err != nil {
		return "", fmt.Errorf("redcoll: list %q: encode: %w", t.Key(), err)
	}
	return string(b), nil
}

func (t *TypedList[T]) stale(id string) {
	t.hooks.StaleReference(t.Key(), id)
	t.log.Debug("dropped unresolved reference", Fields{"key": t.Key(), "id": id})
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
