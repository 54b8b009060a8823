// Package affine implements symbolic linear expressions over named integer
// variables, as used throughout the Stripe intermediate representation to
// describe index spaces and tensor accesses.
package affine

import (
	"fmt"
	"sort"
	"strings"
)

// Affine is a polynomial of total degree <= 1 over string-named integer
// variables, plus an integer constant term. The zero value is the constant
// polynomial 0. The empty string key denotes the constant term; all other
// keys are variable names with a nonzero coefficient.
type Affine struct {
	terms map[string]int64
}

// New constructs an Affine equal to coeff times a single named variable.
// Passing an empty name yields the constant coeff.
func New(name string, coeff int64) Affine {
	a := Affine{terms: map[string]int64{}}
	if name == "" {
		if coeff != 0 {
			a.terms[""] = coeff
		}
		return a
	}
	if coeff != 0 {
		a.terms[name] = coeff
	}
	return a
}

// Const constructs a constant Affine.
func Const(value int64) Affine {
	return New("", value)
}

// Zero is the constant polynomial 0.
func Zero() Affine {
	return Affine{}
}

func (a Affine) clone() map[string]int64 {
	m := make(map[string]int64, len(a.terms))
	for k, v := range a.terms {
		m[k] = v
	}
	return m
}

// Add returns a + b.
func (a Affine) Add(b Affine) Affine {
	m := a.clone()
	for k, v := range b.terms {
		nv := m[k] + v
		if nv == 0 {
			delete(m, k)
		} else {
			m[k] = nv
		}
	}
	return Affine{terms: m}
}

// Sub returns a - b.
func (a Affine) Sub(b Affine) Affine {
	return a.Add(b.Scale(-1))
}

// Scale returns a scaled by an integer factor.
func (a Affine) Scale(factor int64) Affine {
	if factor == 0 {
		return Affine{}
	}
	m := make(map[string]int64, len(a.terms))
	for k, v := range a.terms {
		m[k] = v * factor
	}
	return Affine{terms: m}
}

// Substitute replaces every occurrence of the variable name with the given
// Affine, returning the resulting polynomial. Substituting the constant term
// ("") is a no-op since it is not a variable.
func (a Affine) Substitute(name string, with Affine) Affine {
	if name == "" {
		return a
	}
	coeff, ok := a.terms[name]
	if !ok {
		return a
	}
	rest := a.clone()
	delete(rest, name)
	return Affine{terms: rest}.Add(with.Scale(coeff))
}

// Eval evaluates the polynomial given an assignment of variable names to
// integer values. Variables not present in env are treated as zero.
func (a Affine) Eval(env map[string]int64) int64 {
	var sum int64
	for k, v := range a.terms {
		if k == "" {
			sum += v
			continue
		}
		sum += v * env[k]
	}
	return sum
}

// Constant returns the constant term of the polynomial.
func (a Affine) Constant() int64 {
	return a.terms[""]
}

// IsConstant reports whether the polynomial has no variable terms.
func (a Affine) IsConstant() bool {
	for k := range a.terms {
		if k != "" {
			return false
		}
	}
	return true
}

// Terms enumerates the (name, coefficient) pairs of the polynomial in a
// stable, sorted-by-name order. The constant term, if nonzero, is reported
// with an empty name.
func (a Affine) Terms() []Term {
	out := make([]Term, 0, len(a.terms))
	for k, v := range a.terms {
		out = append(out, Term{Name: k, Coeff: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Term is a single (variable name, coefficient) pair of an Affine.
type Term struct {
	Name  string
	Coeff int64
}

// Equal reports whether a and b are structurally identical polynomials.
func (a Affine) Equal(b Affine) bool {
	if len(a.terms) != len(b.terms) {
		return false
	}
	for k, v := range a.terms {
		if bv, ok := b.terms[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// Uniquify renames every variable v to prefix+v, leaving the constant term
// untouched. It is used when lifting a block-local access expression into an
// outer coordinate system without name capture between nesting depths.
func (a Affine) Uniquify(prefix string) Affine {
	m := make(map[string]int64, len(a.terms))
	for k, v := range a.terms {
		if k == "" {
			m[k] = v
			continue
		}
		m[prefix+k] = v
	}
	return Affine{terms: m}
}

// String renders the polynomial as a sum of terms, e.g. "2*i + j - 3".
func (a Affine) String() string {
	terms := a.Terms()
	if len(terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range terms {
		neg := t.Coeff < 0
		mag := t.Coeff
		if neg {
			mag = -mag
		}
		switch {
		case i == 0 && neg:
			b.WriteString("-")
		case i > 0 && neg:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		if t.Name == "" {
			fmt.Fprintf(&b, "%d", mag)
		} else if mag == 1 {
			b.WriteString(t.Name)
		} else {
			fmt.Fprintf(&b, "%d*%s", mag, t.Name)
		}
	}
	return b.String()
}
