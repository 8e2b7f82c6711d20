package transform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Name identifies a post-transform.
type Name string

const (
	None      Name = "NONE"
	SubString Name = "SUB_STRING"
)

// Func applies a transform to string data with its raw parameter string.
type Func func(data, params string) Result

// registry is closed: adding a transform means adding a Name and its Func here.
var registry = map[Name]Func{
	None:      identity,
	SubString: substring,
}

// Names lists the transforms in display order.
func Names() []Name {
	return []Name{None, SubString}
}

// ParseName validates a transform name. An empty name is None.
func ParseName(s string) (Name, error) {
	n := Name(strings.TrimSpace(s))
	if n == "" {
		return None, nil
	}
	if _, ok := registry[n]; !ok {
		return "", fmt.Errorf("unknown transform %q", s)
	}
	return n, nil
}

// Result is the outcome of a transform. Exactly one of Value or Err is meaningful.
type Result struct {
	Value any
	Err   error
}

// OK reports whether the transform succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Compat folds a failed parameter validation into the value, returning the
// validation message as if it were the transformed output. Other errors
// leave the value untouched.
func (r Result) Compat() any {
	var pe *ParamsError
	if errors.As(r.Err, &pe) {
		return pe.Error()
	}
	return r.Value
}

// ParamsError reports transform parameters that do not fit the required format.
type ParamsError struct {
	Transform Name
	Params    string
}

func (e *ParamsError) Error() string {
	return "input function params must follow:\n" +
		"format: startIndex,endIndex\n" +
		"condition: startIndex < endIndex"
}

// Evaluate applies the named transform to data. None returns data unchanged
// whatever its type, and non-string data is never transformed.
func Evaluate(data any, name Name, params string) Result {
	if name == None {
		return Result{Value: data}
	}

	s, ok := data.(string)
	if !ok {
		return Result{Value: data}
	}

	fn, ok := registry[name]
	if !ok {
		return Result{Value: data, Err: fmt.Errorf("unknown transform %q", name)}
	}
	return fn(s, params)
}

// Apply is Evaluate with parameter failures reported through the value.
func Apply(data any, name Name, params string) any {
	return Evaluate(data, name, params).Compat()
}

func identity(data, _ string) Result {
	return Result{Value: data}
}

// substring returns data[start:end) counted in UTF-16 code units, clamped to
// the string bounds. Empty params leave data unchanged.
func substring(data, params string) Result {
	if params == "" {
		return Result{Value: data}
	}

	start, end, ok := parseBounds(params)
	if !ok || start >= end {
		return Result{Err: &ParamsError{Transform: SubString, Params: params}}
	}

	units := utf16.Encode([]rune(data))
	start = clamp(start, 0, len(units))
	end = clamp(end, 0, len(units))
	return Result{Value: string(utf16.Decode(units[start:end]))}
}

// parseBounds splits params on the first comma and reads the leading integer
// of each half, ignoring anything after it: "1.5,3px" is 1 and 3.
func parseBounds(params string) (int, int, bool) {
	before, after, found := strings.Cut(strings.TrimSpace(params), ",")
	if !found {
		return 0, 0, false
	}
	start, ok := leadingInt(before)
	if !ok {
		return 0, 0, false
	}
	end, ok := leadingInt(after)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

// leadingInt parses an optional sign followed by decimal digits, or hex digits
// after 0x, at the start of the trimmed s. Values too large for int saturate.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)

	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}

	base, isDigit := 10, isDecimal
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit, s = 16, isHex, s[2:]
	}

	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	if n == 0 {
		return 0, false
	}

	v, err := strconv.ParseInt(sign+s[:n], base, 0)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return int(v), true
}

func isDecimal(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHex(c byte) bool {
	return isDecimal(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
