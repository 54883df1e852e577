// Package fieldaccess reads and writes private fields of host values by name.
// Field layouts differ between host versions, so an accessor carries every
// known path of a field and reports ErrUnsupported when none matches.
package fieldaccess

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unsafe"
)

// ErrUnsupported is returned when a field does not exist on the host value.
var ErrUnsupported = errors.New("field not supported on this host version")

// Accessor locates one logical field of a host value.
type Accessor struct {
	name  string
	paths []string

	mu       sync.Mutex
	resolved map[reflect.Type]string
}

// New creates an accessor. Each path is a dot separated list of field names
// and slice indices, tried in order.
func New(name string, paths ...string) *Accessor {
	return &Accessor{
		name:     name,
		paths:    paths,
		resolved: make(map[reflect.Type]string),
	}
}

// Name returns the logical name of the field.
func (a *Accessor) Name() string {
	return a.name
}

// Float reads the field as a float.
func (a *Accessor) Float(target any) (float64, error) {
	v, err := a.field(target)
	if err != nil {
		return 0, err
	}

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	default:
		return 0, fmt.Errorf("%s is %s, not a float: %w",
			a.name, v.Kind(), ErrUnsupported)
	}
}

// SetFloat writes the field.
func (a *Accessor) SetFloat(target any, value float64) error {
	v, err := a.field(target)
	if err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		v.SetFloat(value)
		return nil
	default:
		return fmt.Errorf("%s is %s, not a float: %w",
			a.name, v.Kind(), ErrUnsupported)
	}
}

// Scale multiplies the field by factor and returns the old and new values.
func (a *Accessor) Scale(target any, factor float64) (before, after float64, err error) {
	before, err = a.Float(target)
	if err != nil {
		return 0, 0, err
	}

	after = before * factor
	if err := a.SetFloat(target, after); err != nil {
		return 0, 0, err
	}

	return before, after, nil
}

func (a *Accessor) field(target any) (reflect.Value, error) {
	root := reflect.ValueOf(target)
	if root.Kind() != reflect.Ptr || root.IsNil() {
		return reflect.Value{}, fmt.Errorf(
			"%s: target must be a non-nil pointer: %w", a.name, ErrUnsupported)
	}

	a.mu.Lock()
	path, known := a.resolved[root.Type()]
	a.mu.Unlock()

	if known {
		return walk(root, path)
	}

	for _, p := range a.paths {
		v, err := walk(root, p)
		if err != nil {
			continue
		}

		a.mu.Lock()
		a.resolved[root.Type()] = p
		a.mu.Unlock()

		return v, nil
	}

	return reflect.Value{}, fmt.Errorf("%s on %s: %w",
		a.name, root.Type(), ErrUnsupported)
}

func walk(elem reflect.Value, path string) (reflect.Value, error) {
	names := strings.Split(path, ".")

	for len(names) > 0 {
		switch elem.Kind() {
		case reflect.Ptr, reflect.Interface:
			if elem.IsNil() {
				return elem, fmt.Errorf("nil before %s: %w", names[0], ErrUnsupported)
			}

			elem = elem.Elem()
		case reflect.Struct:
			f := elem.FieldByName(names[0])
			if !f.IsValid() {
				return f, fmt.Errorf("no field %s: %w", names[0], ErrUnsupported)
			}

			elem = exported(f)
			names = names[1:]
		case reflect.Slice:
			index, err := strconv.Atoi(names[0])
			if err != nil || index < 0 || index >= elem.Len() {
				return elem, fmt.Errorf("bad index %s: %w", names[0], ErrUnsupported)
			}

			elem = elem.Index(index)
			names = names[1:]
		default:
			return elem, fmt.Errorf("cannot descend into %s: %w",
				elem.Kind(), ErrUnsupported)
		}
	}

	for elem.Kind() == reflect.Ptr && !elem.IsNil() {
		elem = elem.Elem()
	}

	if !elem.CanSet() {
		return elem, fmt.Errorf("field is not addressable: %w", ErrUnsupported)
	}

	return elem, nil
}

// exported makes an unexported but addressable field settable.
func exported(f reflect.Value) reflect.Value {
	if f.CanSet() || !f.CanAddr() {
		return f
	}

	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}
