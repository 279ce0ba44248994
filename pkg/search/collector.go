package search

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"time"
)

// Searchable is implemented by entities and composite values that declare
// their searchable children explicitly. CollectText calls walk once per child.
type Searchable interface {
	CollectText(walk func(any))
}

// Texter is implemented by field types with an optional canonical text form.
// ok is false when the field has nothing to contribute.
type Texter interface {
	Text() (text string, ok bool)
}

// Layouts used for time values found in the graph.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	bytesType    = reflect.TypeFor[[]byte]()
	stringerType = reflect.TypeFor[fmt.Stringer]()
)

type identity struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// Collector walks a value graph and accumulates text. A Collector visits each
// pointer, map and slice at most once, so cyclic graphs terminate. A node whose
// text conversion panics is skipped and counted. The zero value is not usable;
// call NewCollector.
type Collector struct {
	seen    map[identity]struct{}
	out     []string
	skipped int
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[identity]struct{})}
}

// Collect returns every textual representation reachable from root, in
// traversal order. It never panics.
func Collect(root any) []string {
	c := NewCollector()
	c.Visit(root)
	return c.Strings()
}

// Strings returns the text gathered so far.
func (c *Collector) Strings() []string { return c.out }

// Skipped returns the number of nodes dropped because they panicked.
func (c *Collector) Skipped() int { return c.skipped }

// Visit adds the text reachable from v.
func (c *Collector) Visit(v any) {
	defer func() {
		if r := recover(); r != nil {
			c.skipped++
		}
	}()

	if v == nil {
		return
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return
		}
	}
	if !c.mark(rv) {
		return
	}

	if s, ok := v.(Searchable); ok {
		s.CollectText(c.Visit)
		return
	}
	if t, ok := v.(Texter); ok {
		if text, ok := t.Text(); ok {
			c.add(text)
		}
		return
	}
	if text, ok := scalarText(v, rv); ok {
		c.add(text)
		return
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type() == bytesType {
			return
		}
		for i := range rv.Len() {
			c.visitValue(rv.Index(i))
		}
		return
	case reflect.Map:
		c.visitMap(rv)
		return
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return
	}

	c.visitAccessor(rv)
	c.visitFields(rv)
}

// mark records reference identity and reports whether rv is new.
func (c *Collector) mark(rv reflect.Value) bool {
	var id identity
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		id = identity{ptr: rv.Pointer(), typ: rv.Type()}
	case reflect.Slice:
		id = identity{ptr: rv.Pointer(), typ: rv.Type(), len: rv.Len()}
	default:
		return true
	}
	if _, ok := c.seen[id]; ok {
		return false
	}
	c.seen[id] = struct{}{}
	return true
}

func (c *Collector) add(s string) { c.out = append(c.out, s) }

func (c *Collector) visitValue(rv reflect.Value) {
	if !rv.IsValid() || !rv.CanInterface() {
		return
	}
	c.Visit(rv.Interface())
}

func (c *Collector) visitMap(rv reflect.Value) {
	keys := rv.MapKeys()
	slices.SortStableFunc(keys, func(a, b reflect.Value) int {
		ka, kb := fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface())
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	for _, k := range keys {
		c.visitValue(k)
		c.visitValue(rv.MapIndex(k))
	}
}

// visitAccessor contributes the result of a zero-argument Value method, the
// convention used by wrapper types that do not implement Texter.
func (c *Collector) visitAccessor(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Struct:
	case reflect.Pointer:
		// A value receiver is reached again through the dereferenced element.
		if _, ok := rv.Type().Elem().MethodByName("Value"); ok {
			return
		}
	default:
		return
	}
	m := rv.MethodByName("Value")
	if !m.IsValid() {
		return
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() != 1 || mt.Out(0) == bytesType {
		return
	}
	c.visitValue(m.Call(nil)[0])
}

// visitFields is the fallback for values without an explicit capability:
// exported struct fields are walked, then the Stringer form is added. A
// pointer contributes its own String when only the pointer type has one.
func (c *Collector) visitFields(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Interface:
		c.visitValue(rv.Elem())
	case reflect.Pointer:
		c.visitValue(rv.Elem())
		if rv.Type().Elem().Implements(stringerType) {
			return
		}
		if s, ok := rv.Interface().(fmt.Stringer); ok {
			c.add(s.String())
		}
	case reflect.Struct:
		t := rv.Type()
		for i := range t.NumField() {
			if !t.Field(i).IsExported() {
				continue
			}
			c.visitValue(rv.Field(i))
		}
		if s, ok := rv.Interface().(fmt.Stringer); ok {
			c.add(s.String())
		}
	}
}

// scalarText converts primitives, times and non-composite Stringers.
func scalarText(v any, rv reflect.Value) (string, bool) {
	if rv.Type() == timeType {
		return formatTime(v.(time.Time)), true
	}
	switch rv.Kind() {
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map, reflect.Pointer,
		reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return "", false
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), true
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), true
	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(v), true
	}
	return "", false
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format(TimestampLayout)
}
