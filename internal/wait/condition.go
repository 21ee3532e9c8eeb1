package wait

import (
	"context"
	"fmt"

	"github.com/gotrs-io/ui-smoke/internal/browser"
)

// Condition is a DOM predicate evaluated on every poll. ctx carries the
// wait's deadline.
type Condition interface {
	Check(ctx context.Context, page browser.Page) (bool, error)
	String() string
}

// Kind names the condition families.
type Kind string

const (
	KindVisible Kind = "visible"
	KindHidden  Kind = "hidden"
	KindCount   Kind = "count"
)

// CountPredicate constrains a match count.
type CountPredicate struct {
	Op string // ">=", "==" or "<="
	N  int
}

func AtLeast(n int) CountPredicate { return CountPredicate{Op: ">=", N: n} }
func Exactly(n int) CountPredicate { return CountPredicate{Op: "==", N: n} }
func AtMost(n int) CountPredicate  { return CountPredicate{Op: "<=", N: n} }

func (p CountPredicate) Holds(n int) bool {
	switch p.Op {
	case "==":
		return n == p.N
	case "<=":
		return n <= p.N
	default:
		return n >= p.N
	}
}

func (p CountPredicate) String() string {
	op := p.Op
	if op == "" {
		op = ">="
	}
	return fmt.Sprintf("%s %d", op, p.N)
}

// Spec is the declarative form of a condition, as carried by Wait steps
// and scenario files.
type Spec struct {
	Kind    Kind
	Locator browser.LocatorSpec
	Count   CountPredicate
}

// Condition builds the predicate described by the spec.
func (s Spec) Condition() Condition {
	switch s.Kind {
	case KindHidden:
		return ElementHidden(s.Locator)
	case KindCount:
		return ElementCount(s.Locator, s.Count)
	default:
		return ElementVisible(s.Locator)
	}
}

// Validate checks the spec before it is run.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindVisible, KindHidden, KindCount:
	default:
		return fmt.Errorf("unknown wait condition %q", s.Kind)
	}
	if s.Kind == KindCount && s.Count.N < 0 {
		return fmt.Errorf("count predicate must not be negative")
	}
	return s.Locator.Validate()
}

func (s Spec) String() string { return s.Condition().String() }

type visible struct{ loc browser.LocatorSpec }

// ElementVisible holds when the visible matches satisfy the locator's
// cardinality (exactly one unless the locator asks for at least N).
func ElementVisible(loc browser.LocatorSpec) Condition { return visible{loc: loc} }

func (c visible) Check(ctx context.Context, page browser.Page) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n, err := page.VisibleCount(c.loc)
	if err != nil {
		return false, err
	}
	return c.loc.Matches(n), nil
}

func (c visible) String() string { return "visible(" + c.loc.String() + ")" }

type hidden struct{ loc browser.LocatorSpec }

// ElementHidden holds when no match is visible, including when nothing matches.
func ElementHidden(loc browser.LocatorSpec) Condition { return hidden{loc: loc} }

func (c hidden) Check(ctx context.Context, page browser.Page) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n, err := page.VisibleCount(c.loc)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (c hidden) String() string { return "hidden(" + c.loc.String() + ")" }

type count struct {
	loc  browser.LocatorSpec
	pred CountPredicate
}

// ElementCount holds when the number of matches (visible or not) satisfies pred.
func ElementCount(loc browser.LocatorSpec, pred CountPredicate) Condition {
	return count{loc: loc, pred: pred}
}

func (c count) Check(ctx context.Context, page browser.Page) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n, err := page.Count(c.loc)
	if err != nil {
		return false, err
	}
	return c.pred.Holds(n), nil
}

func (c count) String() string {
	return fmt.Sprintf("count(%s) %s", c.loc.String(), c.pred.String())
}
