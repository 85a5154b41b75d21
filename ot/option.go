package ot

// Option represents an optional value.
type Option[T any] struct {
	value T
	ok    bool
}

// Some constructs an Option with a value.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None constructs an empty Option.
func None[T any]() Option[T] {
	var zero T
	return Option[T]{value: zero, ok: false}
}

// IsSome reports whether the option contains a value.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// Unwrap returns the value and a boolean indicating presence.
func (o Option[T]) Unwrap() (T, bool) {
	return o.value, o.ok
}

// Or returns the contained value or a default.
func (o Option[T]) Or(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// Lazy holds a value which is computed on first access and reused afterwards.
// A failed computation is memoized as well; decoding is deterministic, so
// retrying would fail again.
//
// Lazy is not safe for concurrent use. A Font and everything memoized in it
// belongs to a single thread of control.
type Lazy[T any] struct {
	val Option[T]
	err error
}

// Get returns the memoized value, computing it with f on first access.
func (l *Lazy[T]) Get(f func() (T, error)) (T, error) {
	if v, ok := l.val.Unwrap(); ok || l.err != nil {
		return v, l.err
	}
	v, err := f()
	if err != nil {
		l.err = err
		var zero T
		return zero, err
	}
	l.val = Some(v)
	return v, nil
}

// Reset forgets a memoized value.
func (l *Lazy[T]) Reset() {
	l.val = None[T]()
	l.err = nil
}
