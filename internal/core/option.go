package core

// Optional distinguishes "not supplied" from a supplied value, including a
// supplied zero value.
type Optional[T any] struct {
	value T
	set   bool
}

// Some wraps a supplied value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an unset option.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value was supplied.
func (o Optional[T]) IsSet() bool {
	return o.set
}
