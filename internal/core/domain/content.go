package domain

// Content is the state a VersionRecord carries: either Present(value) or
// Removed. The zero value is Removed.
type Content[C any] struct {
	value   C
	present bool
}

func Present[C any](value C) Content[C] {
	return Content[C]{value: value, present: true}
}

func Removed[C any]() Content[C] {
	return Content[C]{}
}

// Get returns the value and whether it is present.
func (c Content[C]) Get() (C, bool) {
	return c.value, c.present
}

func (c Content[C]) IsPresent() bool {
	return c.present
}

// Value returns the content, or the zero value of C when removed.
func (c Content[C]) Value() C {
	return c.value
}
