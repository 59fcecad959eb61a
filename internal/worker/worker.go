// Package worker implements C3, the Child Worker: the code that runs
// inside the isolated subprocess. It installs the sandbox, evaluates the
// submitted source, locates the entry point, invokes it with the test
// input as keyword arguments, and produces a wire-ready outcome. It never
// consults the expected value; comparison happens outside, in
// internal/comparator.
package worker

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/practiceraptor/execcore/internal/sandbox"
	"github.com/practiceraptor/execcore/pkg/fault"
	"github.com/practiceraptor/execcore/pkg/value"
)

// Request is what the Supervisor sends the Child Worker: one test case's
// worth of work.
type Request struct {
	Source     string       `json:"source"`
	Input      value.Inputs `json:"input"`
	EntryPoint string       `json:"entry_point"`
}

// Response is what the Child Worker sends back. Actual is only
// meaningful when Success is true.
type Response struct {
	Success   bool         `json:"success"`
	Actual    value.Value  `json:"actual,omitempty"`
	ElapsedMs int          `json:"elapsed_ms"`
	Fault     *fault.Fault `json:"fault,omitempty"`
}

// Run executes one Request start to finish inside the current process.
// The Supervisor is responsible for making sure "current process" means
// an isolated child; Run itself has no opinion about isolation.
func Run(req Request) Response {
	predeclared := sandbox.Predeclared()
	thread := &starlark.Thread{Name: "submission"}

	globals, err := starlark.ExecFile(thread, "submission.star", req.Source, predeclared)
	if err != nil {
		return Response{Success: false, Fault: classifyExecError(err)}
	}

	entry, ok := globals[req.EntryPoint]
	if !ok {
		return Response{Success: false, Fault: fault.MissingEntry(req.EntryPoint)}
	}

	callable, ok := entry.(starlark.Callable)
	if !ok {
		return Response{
			Success: false,
			Fault:   fault.Runtime("TypeError", fmt.Sprintf("'%s' is not callable", req.EntryPoint)),
		}
	}

	kwargs, err := toKwargs(req.Input)
	if err != nil {
		return Response{Success: false, Fault: fault.Runtime("TypeError", err.Error())}
	}

	start := time.Now()
	result, err := starlark.Call(thread, callable, nil, kwargs)
	elapsedMs := elapsedMillis(time.Since(start))
	if err != nil {
		class, msg := classifyRuntimeError(err)
		return Response{Success: false, ElapsedMs: elapsedMs, Fault: fault.Runtime(class, msg)}
	}

	actual, err := toDynamicValue(result)
	if err != nil {
		return Response{
			Success:   false,
			ElapsedMs: elapsedMs,
			Fault:     fault.Runtime("RuntimeError", "unsupported return type: "+err.Error()),
		}
	}

	return Response{Success: true, Actual: actual, ElapsedMs: elapsedMs}
}

func elapsedMillis(d time.Duration) int {
	ms := int(math.Round(float64(d.Microseconds()) / 1000.0))
	if ms < 0 {
		return 0
	}
	return ms
}

func toKwargs(input value.Inputs) ([]starlark.Tuple, error) {
	kwargs := make([]starlark.Tuple, 0, len(input))
	for name, v := range input {
		sv, err := toStarlark(v)
		if err != nil {
			return nil, err
		}
		kwargs = append(kwargs, starlark.Tuple{starlark.String(name), sv})
	}
	return kwargs, nil
}

func toStarlark(v value.Value) (starlark.Value, error) {
	switch v.Kind {
	case value.KindNone:
		return starlark.None, nil
	case value.KindBool:
		return starlark.Bool(v.B), nil
	case value.KindInt:
		return starlark.MakeInt64(v.I), nil
	case value.KindFloat:
		return starlark.Float(v.F), nil
	case value.KindString:
		return starlark.String(v.S), nil
	case value.KindList:
		elems := make([]starlark.Value, len(v.List))
		for i, e := range v.List {
			sv, err := toStarlark(e)
			if err != nil {
				return nil, err
			}
			elems[i] = sv
		}
		return starlark.NewList(elems), nil
	case value.KindMap:
		d := starlark.NewDict(len(v.Map))
		for k, e := range v.Map {
			sv, err := toStarlark(e)
			if err != nil {
				return nil, err
			}
			if err := d.SetKey(starlark.String(k), sv); err != nil {
				return nil, err
			}
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported DynamicValue kind %q", v.Kind)
	}
}

func toDynamicValue(v starlark.Value) (value.Value, error) {
	switch t := v.(type) {
	case starlark.NoneType:
		return value.None(), nil
	case starlark.Bool:
		return value.Bool(bool(t)), nil
	case starlark.Int:
		n, ok := t.Int64()
		if !ok {
			return value.Value{}, fmt.Errorf("integer out of range")
		}
		return value.Int(n), nil
	case starlark.Float:
		return value.Float(float64(t)), nil
	case starlark.String:
		return value.String(string(t)), nil
	case starlark.Tuple:
		items := make([]value.Value, len(t))
		for i, e := range t {
			dv, err := toDynamicValue(e)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = dv
		}
		return value.List(items...), nil
	case *starlark.List:
		items := make([]value.Value, 0, t.Len())
		iter := t.Iterate()
		defer iter.Done()
		var x starlark.Value
		for iter.Next(&x) {
			dv, err := toDynamicValue(x)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, dv)
		}
		return value.List(items...), nil
	case *starlark.Dict:
		m := make(map[string]value.Value, t.Len())
		for _, item := range t.Items() {
			k, ok := item[0].(starlark.String)
			if !ok {
				return value.Value{}, fmt.Errorf("dict keys must be strings")
			}
			dv, err := toDynamicValue(item[1])
			if err != nil {
				return value.Value{}, err
			}
			m[string(k)] = dv
		}
		return value.Map(m), nil
	default:
		return value.Value{}, fmt.Errorf("type %s", v.Type())
	}
}

// classifyExecError handles failures from ExecFile: either a parse
// failure (only reachable here if the Child Worker is invoked without a
// prior C1 pass) or a resolve/evaluation failure. A reference to a name
// outside the sandbox table is reported by the resolver as "undefined: ..."
// and classified as a Runtime NameError; other resolve errors are Syntax
// faults.
func classifyExecError(err error) *fault.Fault {
	switch e := err.(type) {
	case syntax.Error:
		return fault.Syntax(int(e.Pos.Line), e.Msg)
	case resolve.ErrorList:
		if len(e) > 0 {
			if strings.HasPrefix(e[0].Msg, "undefined: ") {
				return fault.Runtime("NameError", e[0].Msg)
			}
			return fault.Syntax(int(e[0].Pos.Line), e[0].Msg)
		}
		return fault.Syntax(0, err.Error())
	default:
		class, msg := classifyRuntimeError(err)
		return fault.Runtime(class, msg)
	}
}

// classifyRuntimeError maps a Starlark evaluation error onto a
// Python-style "ClassName: message" pair, the way the original
// implementation's except-clauses record type(e).__name__.
func classifyRuntimeError(err error) (string, string) {
	msg := err.Error()
	if ee, ok := err.(*starlark.EvalError); ok && ee.Msg != "" {
		msg = ee.Msg
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "division by zero"):
		return "ZeroDivisionError", msg
	case strings.Contains(lower, "index out of range"), strings.Contains(lower, "out of bound"):
		return "IndexError", msg
	case strings.Contains(lower, "key not found") || strings.Contains(lower, "key error"):
		return "KeyError", msg
	case strings.Contains(lower, "no attribute") || strings.Contains(lower, "has no .field") || strings.Contains(lower, "has no field"):
		return "AttributeError", msg
	case strings.Contains(lower, "missing argument") || strings.Contains(lower, "unexpected keyword") ||
		strings.Contains(lower, "got value of type") || strings.Contains(lower, "unsupported"):
		return "TypeError", msg
	case strings.Contains(lower, "stopiteration"):
		return "StopIteration", msg
	default:
		return "RuntimeError", msg
	}
}
