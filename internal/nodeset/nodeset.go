// Package nodeset expands compact Slurm-style node range expressions.
//
// The grammar accepted here is deliberately narrower than Slurm's own
// hostlist syntax:
//
//	range-expr ::= prefix "[" part ("," part)* "]"
//	part       ::= number | number "-" number
//	number     ::= <nonempty string of 0..9, decimal>
//
// Numbers above MaxNumber are rejected.
//
// Expanded names are prefix + the number zero-padded to two digits. Numbers
// wider than two digits keep their natural width. Parts are emitted in the
// order they are declared; a part whose start exceeds its end contributes
// nothing.
package nodeset

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxNumber is the largest node number a range may name.
const MaxNumber = 999999

// Part is one comma-separated component inside the brackets. A singleton
// has Start == End.
type Part struct {
	Start int
	End   int
}

// Len returns the number of node names the part expands to.
func (p Part) Len() int {
	if p.Start > p.End {
		return 0
	}
	return p.End - p.Start + 1
}

// Spec is a parsed range expression. It is immutable once parsed.
type Spec struct {
	Expr   string
	Prefix string
	Parts  []Part
}

// MalformedRangeError reports a range expression that cannot be parsed.
type MalformedRangeError struct {
	Expr   string
	Reason string
}

func (e *MalformedRangeError) Error() string {
	return fmt.Sprintf("malformed node range %q: %s", e.Expr, e.Reason)
}

// Parse parses a single range expression such as "hpc3-gpu-16-[00,02-07]".
func Parse(expr string) (Spec, error) {
	open := strings.IndexByte(expr, '[')
	if open < 0 {
		return Spec{}, &MalformedRangeError{Expr: expr, Reason: "missing '['"}
	}
	rb := strings.IndexByte(expr[open:], ']')
	if rb < 0 {
		return Spec{}, &MalformedRangeError{Expr: expr, Reason: "missing ']'"}
	}
	rb += open
	if rb != len(expr)-1 {
		return Spec{}, &MalformedRangeError{Expr: expr, Reason: "unexpected text after ']'"}
	}
	prefix := expr[:open]
	if strings.ContainsAny(prefix, "[]") {
		return Spec{}, &MalformedRangeError{Expr: expr, Reason: "nested brackets"}
	}

	body := expr[open+1 : rb]
	if strings.TrimSpace(body) == "" {
		return Spec{}, &MalformedRangeError{Expr: expr, Reason: "empty brackets"}
	}

	var parts []Part
	for _, raw := range strings.Split(body, ",") {
		p, err := parsePart(strings.TrimSpace(raw))
		if err != nil {
			return Spec{}, &MalformedRangeError{Expr: expr, Reason: err.Error()}
		}
		parts = append(parts, p)
	}
	return Spec{Expr: expr, Prefix: prefix, Parts: parts}, nil
}

func parsePart(s string) (Part, error) {
	if s == "" {
		return Part{}, fmt.Errorf("empty part")
	}
	lo, hi, isRange := strings.Cut(s, "-")
	start, err := readNumber(lo)
	if err != nil {
		return Part{}, fmt.Errorf("part %q: %w", s, err)
	}
	if !isRange {
		return Part{Start: start, End: start}, nil
	}
	end, err := readNumber(hi)
	if err != nil {
		return Part{}, fmt.Errorf("part %q: %w", s, err)
	}
	return Part{Start: start, End: end}, nil
}

// readNumber accepts only a nonempty run of decimal digits, so signs and
// embedded dashes are rejected rather than handed to strconv.
func readNumber(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("expected number")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%q is not a number", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > MaxNumber {
		return 0, fmt.Errorf("%q is out of range (max %d)", s, MaxNumber)
	}
	return n, nil
}

// Len returns the total number of node names the spec expands to.
func (s Spec) Len() int {
	n := 0
	for _, p := range s.Parts {
		n += p.Len()
	}
	return n
}

// Expand returns the concrete node names in declaration order.
func (s Spec) Expand() []string {
	names := make([]string, 0, s.Len())
	for _, p := range s.Parts {
		for i := p.Start; i <= p.End; i++ {
			names = append(names, fmt.Sprintf("%s%02d", s.Prefix, i))
		}
	}
	return names
}

// Expand parses expr and returns its node names.
func Expand(expr string) ([]string, error) {
	s, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return s.Expand(), nil
}

// ParseAll parses every expression up front so a broken configuration is
// reported before any node is queried.
func ParseAll(exprs []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(exprs))
	for _, e := range exprs {
		s, err := Parse(e)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}
