package core

// Opt is a value that may be absent. The zero Opt is absent.
type Opt[T any] struct {
	val T
	ok  bool
}

func Some[T any](v T) Opt[T] { return Opt[T]{val: v, ok: true} }

func None[T any]() Opt[T] { return Opt[T]{} }

// OptFromPtr is absent for a nil pointer.
func OptFromPtr[T any](p *T) Opt[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (o Opt[T]) Get() (T, bool) { return o.val, o.ok }

func (o Opt[T]) OK() bool { return o.ok }

// Or returns the value, or def when absent.
func (o Opt[T]) Or(def T) T {
	if !o.ok {
		return def
	}
	return o.val
}

// Ptr returns nil when absent.
func (o Opt[T]) Ptr() *T {
	if !o.ok {
		return nil
	}
	v := o.val
	return &v
}
