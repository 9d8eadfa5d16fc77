package redcoll

import (
	"context"
	"reflect"

	"github.com/unkn0wn-root/redcoll/codec"
	"github.com/unkn0wn-root/redcoll/model"
)

// Kind tells how a typed list converts its elements.
type Kind uint8

const (
	// KindPlain elements are stored in their encoded form.
	KindPlain Kind = iota + 1
	// KindEntity elements are stored as entity ids and resolved on read.
	KindEntity
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindEntity:
		return "entity"
	default:
		return "unknown"
	}
}

// entityOps is the part of a repository a typed list needs, with the
// model.Entity constraint already discharged.
type entityOps[T any] struct {
	get  func(ctx context.Context, id string) (T, bool, error)
	many func(ctx context.Context, ids []string) (map[string]T, error) // nil when unsupported
	id   func(T) string
}

func opsOf[T model.Entity](repo model.Repository[T]) *entityOps[T] {
	ops := &entityOps[T]{
		get: repo.GetByID,
		id:  func(v T) string { return v.EntityID() },
	}
	if b, ok := repo.(model.BatchRepository[T]); ok {
		ops.many = b.GetManyByID
	}
	return ops
}

// ElementType describes what a typed list holds. Build one with Plain,
// Entity or Named.
type ElementType[T any] struct {
	kind  Kind
	name  string
	codec codec.Codec[T]
	ops   *entityOps[T]
	bind  func(reg *model.Registry) (*entityOps[T], error)
}

// Plain describes values converted by c. Codec settings play the part of
// extra conversion arguments, e.g. codec.Int{Base: 16}.
func Plain[T any](c codec.Codec[T]) ElementType[T] {
	return ElementType[T]{kind: KindPlain, name: typeName[T](), codec: c}
}

// Entity describes entities resolved through repo.
func Entity[T model.Entity](repo model.Repository[T]) ElementType[T] {
	et := ElementType[T]{kind: KindEntity, name: typeName[T]()}
	if repo != nil {
		et.ops = opsOf(repo)
	}
	return et
}

// Named describes entities whose repository is registered under name.
// The name is resolved once, when the list is built.
func Named[T model.Entity](name string) ElementType[T] {
	return ElementType[T]{
		kind: KindEntity,
		name: name,
		bind: func(reg *model.Registry) (*entityOps[T], error) {
			if _, ok := reg.Lookup(name); !ok {
				return nil, &UnknownTypeError{Name: name, Reason: "no repository registered"}
			}
			repo, ok := model.Resolve[T](reg, name)
			if !ok {
				return nil, &UnknownTypeError{
					Name:   name,
					Reason: "registered repository does not serve " + typeName[T](),
				}
			}
			return opsOf(repo), nil
		},
	}
}

// Kind reports the element kind, or 0 for the zero ElementType.
func (et ElementType[T]) Kind() Kind { return et.kind }

// Name returns the type name used in errors and logs.
func (et ElementType[T]) Name() string { return et.name }

// resolve validates et and binds deferred names against reg.
func (et ElementType[T]) resolve(reg *model.Registry) (ElementType[T], error) {
	switch et.kind {
	case KindPlain:
		if et.codec == nil {
			return et, &UnknownTypeError{Name: et.name, Reason: "nil codec"}
		}
	case KindEntity:
		if et.ops != nil {
			break
		}
		if et.bind == nil {
			return et, &UnknownTypeError{Name: et.name, Reason: "nil repository"}
		}
		ops, err := et.bind(reg)
		if err != nil {
			return et, err
		}
		et.ops, et.bind = ops, nil
	default:
		return et, &UnknownTypeError{Name: typeName[T](), Reason: "no element type given"}
	}
	return et, nil
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
