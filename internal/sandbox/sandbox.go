// Package sandbox builds the restricted global name table exposed to
// submitted code: the C2 Sandbox Environment. The table is the *only*
// thing user code sees as its global scope; anything not added here is
// absent, and a reference to an absent name fails at evaluation time
// inside the Child Worker.
//
// Starlark's own language already omits file I/O, networking, dynamic
// import, and reflection, so adopting its native builtins for the
// whitelist categories that overlap is itself part of the sandbox rather
// than a gap in it. The handful of whitelist members Starlark has no
// native equivalent for (complex numbers, a mutable byte buffer, classic
// Python-style exception names, and a few free functions) are implemented
// here as small custom starlark.Value types, grounded on the whitelist
// enumerated by the original Python implementation's SAFE_BUILTINS table.
package sandbox

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predeclared returns a fresh sandbox name table. Called once per Child
// Worker invocation so no state leaks between runs.
func Predeclared() starlark.StringDict {
	d := starlark.StringDict{}

	d["True"] = starlark.True
	d["False"] = starlark.False
	d["None"] = starlark.None

	for _, name := range []string{
		"abs", "any", "all", "bool", "bytes", "chr", "dict", "enumerate",
		"float", "getattr", "hasattr", "hash", "int", "len", "list", "max",
		"min", "ord", "print", "range", "repr", "reversed", "sorted", "str",
		"tuple", "type", "zip",
	} {
		if v, ok := starlark.Universe[name]; ok {
			d[name] = v
		}
	}

	d["complex"] = starlark.NewBuiltin("complex", builtinComplex)
	d["set"] = starlark.NewBuiltin("set", builtinSet)
	d["frozenset"] = starlark.NewBuiltin("frozenset", builtinFrozenset)
	d["bytearray"] = starlark.NewBuiltin("bytearray", builtinByteArray)
	d["object"] = starlark.NewBuiltin("object", builtinObject)
	d["slice"] = starlark.NewBuiltin("slice", builtinSlice)
	d["map"] = starlark.NewBuiltin("map", builtinMap)
	d["filter"] = starlark.NewBuiltin("filter", builtinFilter)
	d["divmod"] = starlark.NewBuiltin("divmod", builtinDivmod)
	d["pow"] = starlark.NewBuiltin("pow", builtinPow)
	d["sum"] = starlark.NewBuiltin("sum", builtinSum)
	d["round"] = starlark.NewBuiltin("round", builtinRound)
	d["isinstance"] = starlark.NewBuiltin("isinstance", builtinIsinstance)
	d["issubclass"] = starlark.NewBuiltin("issubclass", builtinIssubclass)
	d["callable"] = starlark.NewBuiltin("callable", builtinCallable)
	d["iter"] = starlark.NewBuiltin("iter", builtinIter)
	d["next"] = starlark.NewBuiltin("next", builtinNext)
	d["id"] = starlark.NewBuiltin("id", builtinID)
	d["format"] = starlark.NewBuiltin("format", builtinFormat)
	d["hex"] = starlark.NewBuiltin("hex", builtinHex)
	d["bin"] = starlark.NewBuiltin("bin", builtinBin)
	d["oct"] = starlark.NewBuiltin("oct", builtinOct)

	// Exception class names stay inert: Starlark has no raise/except
	// grammar, so these are constructible values only, never part of
	// control flow.
	for _, name := range []string{
		"Exception", "ValueError", "TypeError", "KeyError", "IndexError",
		"AttributeError", "ZeroDivisionError", "StopIteration", "RuntimeError",
	} {
		d[name] = newExceptionClass(name)
	}

	return d
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func toFloat(v starlark.Value) (float64, error) {
	switch t := v.(type) {
	case starlark.Float:
		return float64(t), nil
	case starlark.Int:
		return float64(t.Float()), nil
	default:
		return 0, fmt.Errorf("want number, got %s", v.Type())
	}
}

// --- exception class names (inert, constructible) ---

type exceptionClass struct{ name string }

func newExceptionClass(name string) *exceptionClass { return &exceptionClass{name: name} }

func (e *exceptionClass) String() string        { return e.name }
func (e *exceptionClass) Type() string           { return "type" }
func (e *exceptionClass) Freeze()                {}
func (e *exceptionClass) Truth() starlark.Bool   { return starlark.True }
func (e *exceptionClass) Hash() (uint32, error)  { return hashString(e.name), nil }
func (e *exceptionClass) Name() string           { return e.name }

func (e *exceptionClass) CallInternal(_ *starlark.Thread, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	msg := ""
	if len(args) > 0 {
		if s, ok := args[0].(starlark.String); ok {
			msg = string(s)
		} else {
			msg = args[0].String()
		}
	}
	return &exceptionInstance{class: e.name, message: msg}, nil
}

type exceptionInstance struct {
	class   string
	message string
}

func (e *exceptionInstance) String() string       { return fmt.Sprintf("%s(%s)", e.class, e.message) }
func (e *exceptionInstance) Type() string          { return e.class }
func (e *exceptionInstance) Freeze()               {}
func (e *exceptionInstance) Truth() starlark.Bool  { return starlark.True }
func (e *exceptionInstance) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", e.class)
}

// --- complex ---

type complexValue struct{ re, im float64 }

func (c *complexValue) String() string {
	if c.im >= 0 {
		return fmt.Sprintf("(%g+%gj)", c.re, c.im)
	}
	return fmt.Sprintf("(%g%gj)", c.re, c.im)
}
func (c *complexValue) Type() string          { return "complex" }
func (c *complexValue) Freeze()                {}
func (c *complexValue) Truth() starlark.Bool  { return starlark.Bool(c.re != 0 || c.im != 0) }
func (c *complexValue) Hash() (uint32, error) { return hashString(c.String()), nil }

func builtinComplex(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	var re, im float64
	var err error
	if len(args) > 0 {
		if re, err = toFloat(args[0]); err != nil {
			return nil, fmt.Errorf("complex: %w", err)
		}
	}
	if len(args) > 1 {
		if im, err = toFloat(args[1]); err != nil {
			return nil, fmt.Errorf("complex: %w", err)
		}
	}
	return &complexValue{re: re, im: im}, nil
}

// --- set / frozenset ---

func collectInto(s *starlark.Set, args starlark.Tuple) error {
	if len(args) == 0 {
		return nil
	}
	iterable, ok := args[0].(starlark.Iterable)
	if !ok {
		return fmt.Errorf("want iterable, got %s", args[0].Type())
	}
	iter := iterable.Iterate()
	defer iter.Done()
	var x starlark.Value
	for iter.Next(&x) {
		if err := s.Insert(x); err != nil {
			return err
		}
	}
	return nil
}

func builtinSet(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	s := starlark.NewSet(8)
	if err := collectInto(s, args); err != nil {
		return nil, fmt.Errorf("set: %w", err)
	}
	return s, nil
}

func builtinFrozenset(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	s := starlark.NewSet(8)
	if err := collectInto(s, args); err != nil {
		return nil, fmt.Errorf("frozenset: %w", err)
	}
	s.Freeze()
	return s, nil
}

// --- bytearray ---

type byteArrayValue struct{ data []byte }

func (b *byteArrayValue) String() string      { return fmt.Sprintf("bytearray(%q)", string(b.data)) }
func (b *byteArrayValue) Type() string         { return "bytearray" }
func (b *byteArrayValue) Freeze()              {}
func (b *byteArrayValue) Truth() starlark.Bool { return starlark.Bool(len(b.data) > 0) }
func (b *byteArrayValue) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: bytearray")
}

func builtinByteArray(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) == 0 {
		return &byteArrayValue{}, nil
	}
	switch v := args[0].(type) {
	case starlark.String:
		return &byteArrayValue{data: []byte(string(v))}, nil
	case starlark.Bytes:
		return &byteArrayValue{data: []byte(string(v))}, nil
	case starlark.Int:
		n, ok := v.Int64()
		if !ok || n < 0 {
			return nil, fmt.Errorf("bytearray: invalid size")
		}
		return &byteArrayValue{data: make([]byte, n)}, nil
	default:
		return nil, fmt.Errorf("bytearray: unsupported argument type %s", args[0].Type())
	}
}

// --- object ---

type objectValue struct{}

func (*objectValue) String() string       { return "<object object>" }
func (*objectValue) Type() string          { return "object" }
func (*objectValue) Freeze()               {}
func (*objectValue) Truth() starlark.Bool  { return starlark.True }
func (*objectValue) Hash() (uint32, error) { return 0, nil }

func builtinObject(_ *starlark.Thread, _ *starlark.Builtin, _ starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	return &objectValue{}, nil
}

// --- slice ---

type sliceValue struct{ start, stop, step starlark.Value }

func strOrNone(v starlark.Value) string {
	if v == nil {
		return "None"
	}
	return v.String()
}

func (s *sliceValue) String() string {
	return fmt.Sprintf("slice(%s, %s, %s)", strOrNone(s.start), strOrNone(s.stop), strOrNone(s.step))
}
func (s *sliceValue) Type() string          { return "slice" }
func (s *sliceValue) Freeze()                {}
func (s *sliceValue) Truth() starlark.Bool  { return starlark.True }
func (s *sliceValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: slice") }

func builtinSlice(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	switch len(args) {
	case 1:
		return &sliceValue{start: starlark.None, stop: args[0], step: starlark.None}, nil
	case 2:
		return &sliceValue{start: args[0], stop: args[1], step: starlark.None}, nil
	case 3:
		return &sliceValue{start: args[0], stop: args[1], step: args[2]}, nil
	default:
		return nil, fmt.Errorf("slice: expected 1 to 3 arguments, got %d", len(args))
	}
}

// --- map / filter ---

func builtinMap(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("map: expected 2 arguments, got %d", len(args))
	}
	fn, ok := args[0].(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("map: want callable, got %s", args[0].Type())
	}
	iterable, ok := args[1].(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("map: want iterable, got %s", args[1].Type())
	}

	iter := iterable.Iterate()
	defer iter.Done()
	var results []starlark.Value
	var x starlark.Value
	for iter.Next(&x) {
		r, err := starlark.Call(thread, fn, starlark.Tuple{x}, nil)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return starlark.NewList(results), nil
}

func builtinFilter(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("filter: expected 2 arguments, got %d", len(args))
	}
	iterable, ok := args[1].(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("filter: want iterable, got %s", args[1].Type())
	}

	var fn starlark.Callable
	if args[0] != starlark.None {
		fn, ok = args[0].(starlark.Callable)
		if !ok {
			return nil, fmt.Errorf("filter: want callable or None, got %s", args[0].Type())
		}
	}

	iter := iterable.Iterate()
	defer iter.Done()
	var results []starlark.Value
	var x starlark.Value
	for iter.Next(&x) {
		keep := x.Truth()
		if fn != nil {
			r, err := starlark.Call(thread, fn, starlark.Tuple{x}, nil)
			if err != nil {
				return nil, err
			}
			keep = r.Truth()
		}
		if keep {
			results = append(results, x)
		}
	}
	return starlark.NewList(results), nil
}

// --- divmod / pow / sum / round ---

func builtinDivmod(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("divmod: expected 2 arguments, got %d", len(args))
	}
	q, err := starlark.Binary(syntax.SLASHSLASH, args[0], args[1])
	if err != nil {
		return nil, err
	}
	r, err := starlark.Binary(syntax.PERCENT, args[0], args[1])
	if err != nil {
		return nil, err
	}
	return starlark.Tuple{q, r}, nil
}

func builtinPow(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, fmt.Errorf("pow: expected 2 or 3 arguments, got %d", len(args))
	}
	result, err := starlark.Binary(syntax.STARSTAR, args[0], args[1])
	if err != nil {
		return nil, err
	}
	if len(args) == 3 {
		result, err = starlark.Binary(syntax.PERCENT, result, args[2])
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func builtinSum(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("sum: missing iterable argument")
	}
	iterable, ok := args[0].(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("sum: want iterable, got %s", args[0].Type())
	}
	var acc starlark.Value = starlark.MakeInt(0)
	if len(args) > 1 {
		acc = args[1]
	}
	iter := iterable.Iterate()
	defer iter.Done()
	var x starlark.Value
	for iter.Next(&x) {
		r, err := starlark.Binary(syntax.PLUS, acc, x)
		if err != nil {
			return nil, err
		}
		acc = r
	}
	return acc, nil
}

func builtinRound(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("round: missing number argument")
	}
	f, err := toFloat(args[0])
	if err != nil {
		return nil, fmt.Errorf("round: %w", err)
	}
	if len(args) == 1 {
		return starlark.MakeInt(int(math.Round(f))), nil
	}
	n, ok := args[1].(starlark.Int)
	if !ok {
		return nil, fmt.Errorf("round: ndigits must be int")
	}
	ndigits, _ := n.Int64()
	mult := math.Pow(10, float64(ndigits))
	return starlark.Float(math.Round(f*mult) / mult), nil
}

// --- isinstance / issubclass / callable ---

func typeNameOf(v starlark.Value) string {
	switch t := v.(type) {
	case *starlark.Builtin:
		return t.Name()
	case *exceptionClass:
		return t.name
	default:
		return v.Type()
	}
}

func matchesType(obj, classinfo starlark.Value) bool {
	if tup, ok := classinfo.(starlark.Tuple); ok {
		for _, c := range tup {
			if matchesType(obj, c) {
				return true
			}
		}
		return false
	}
	return obj.Type() == typeNameOf(classinfo)
}

func builtinIsinstance(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("isinstance: expected 2 arguments, got %d", len(args))
	}
	return starlark.Bool(matchesType(args[0], args[1])), nil
}

func builtinIssubclass(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("issubclass: expected 2 arguments, got %d", len(args))
	}
	return starlark.Bool(typeNameOf(args[0]) == typeNameOf(args[1])), nil
}

func builtinCallable(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("callable: expected 1 argument, got %d", len(args))
	}
	_, ok := args[0].(starlark.Callable)
	return starlark.Bool(ok), nil
}

// --- iter / next ---

type iteratorValue struct{ it starlark.Iterator }

func (*iteratorValue) String() string       { return "<iterator>" }
func (*iteratorValue) Type() string          { return "iterator" }
func (*iteratorValue) Freeze()               {}
func (*iteratorValue) Truth() starlark.Bool  { return starlark.True }
func (*iteratorValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: iterator") }

func builtinIter(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("iter: expected 1 argument, got %d", len(args))
	}
	iterable, ok := args[0].(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("iter: want iterable, got %s", args[0].Type())
	}
	return &iteratorValue{it: iterable.Iterate()}, nil
}

func builtinNext(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("next: missing iterator argument")
	}
	itv, ok := args[0].(*iteratorValue)
	if !ok {
		return nil, fmt.Errorf("next: want iterator, got %s", args[0].Type())
	}
	var x starlark.Value
	if itv.it.Next(&x) {
		return x, nil
	}
	if len(args) > 1 {
		return args[1], nil
	}
	return nil, fmt.Errorf("StopIteration")
}

// --- id / format / hex / bin / oct ---

func builtinID(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("id: expected 1 argument, got %d", len(args))
	}
	return starlark.MakeInt64(int64(hashString(fmt.Sprintf("%s:%s", args[0].Type(), args[0].String())))), nil
}

func builtinFormat(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("format: missing value argument")
	}
	v := args[0]
	spec := ""
	if len(args) > 1 {
		s, ok := args[1].(starlark.String)
		if !ok {
			return nil, fmt.Errorf("format: spec must be string")
		}
		spec = string(s)
	}
	if spec == "" {
		if s, ok := v.(starlark.String); ok {
			return s, nil
		}
		return starlark.String(v.String()), nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, fmt.Errorf("format: unsupported spec %q for type %s", spec, v.Type())
	}
	return starlark.String(fmt.Sprintf("%"+spec, f)), nil
}

func intArg(name string, args starlark.Tuple) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("%s: missing argument", name)
	}
	i, ok := args[0].(starlark.Int)
	if !ok {
		return 0, fmt.Errorf("%s: want int, got %s", name, args[0].Type())
	}
	n, ok := i.Int64()
	if !ok {
		return 0, fmt.Errorf("%s: argument out of range", name)
	}
	return n, nil
}

func builtinHex(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	n, err := intArg("hex", args)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return starlark.String("-0x" + strconv.FormatInt(-n, 16)), nil
	}
	return starlark.String("0x" + strconv.FormatInt(n, 16)), nil
}

func builtinBin(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	n, err := intArg("bin", args)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return starlark.String("-0b" + strconv.FormatInt(-n, 2)), nil
	}
	return starlark.String("0b" + strconv.FormatInt(n, 2)), nil
}

func builtinOct(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	n, err := intArg("oct", args)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return starlark.String("-0o" + strconv.FormatInt(-n, 8)), nil
	}
	return starlark.String("0o" + strconv.FormatInt(n, 8)), nil
}
