package browser

import (
	"fmt"
	"strings"
)

// LocatorKind selects the strategy used to find elements on the page.
type LocatorKind string

const (
	ByRole   LocatorKind = "role"
	ByLabel  LocatorKind = "label"
	ByCSS    LocatorKind = "css"
	ByTestID LocatorKind = "testid"
	ByText   LocatorKind = "text"
)

// LocatorSpec is a declarative description of how to find elements.
// It resolves to zero, one or many DOM nodes. AtLeast > 0 relaxes the
// default "exactly one" cardinality to "count >= AtLeast".
type LocatorSpec struct {
	Kind     LocatorKind
	Role     string
	Name     string
	Selector string
	Exact    bool
	AtLeast  int
}

// Role locates elements by ARIA role and, optionally, accessible name.
func Role(role, name string) LocatorSpec {
	return LocatorSpec{Kind: ByRole, Role: role, Name: name}
}

// Label locates form controls by their associated label text.
func Label(text string) LocatorSpec {
	return LocatorSpec{Kind: ByLabel, Name: text}
}

// CSS locates elements by CSS selector.
func CSS(selector string) LocatorSpec {
	return LocatorSpec{Kind: ByCSS, Selector: selector}
}

// TestID locates elements by their data-testid attribute.
func TestID(id string) LocatorSpec {
	return LocatorSpec{Kind: ByTestID, Name: id}
}

// Text locates elements by their visible text.
func Text(text string) LocatorSpec {
	return LocatorSpec{Kind: ByText, Name: text}
}

// WithAtLeast returns a copy that accepts any match count >= n.
func (l LocatorSpec) WithAtLeast(n int) LocatorSpec {
	l.AtLeast = n
	return l
}

// Matches reports whether n matched nodes satisfy the cardinality.
func (l LocatorSpec) Matches(n int) bool {
	if l.AtLeast > 0 {
		return n >= l.AtLeast
	}
	return n == 1
}

// Validate checks the fields required by the locator kind.
func (l LocatorSpec) Validate() error {
	switch l.Kind {
	case ByRole:
		if l.Role == "" {
			return fmt.Errorf("role locator requires a role")
		}
	case ByLabel, ByTestID, ByText:
		if l.Name == "" {
			return fmt.Errorf("%s locator requires a value", l.Kind)
		}
	case ByCSS:
		if l.Selector == "" {
			return fmt.Errorf("css locator requires a selector")
		}
	default:
		return fmt.Errorf("unknown locator kind %q", l.Kind)
	}
	if l.AtLeast < 0 {
		return fmt.Errorf("at_least must not be negative")
	}
	return nil
}

// String renders the locator in the form used by reports and fake pages.
func (l LocatorSpec) String() string {
	var b strings.Builder
	switch l.Kind {
	case ByRole:
		b.WriteString("role=" + l.Role)
		if l.Name != "" {
			fmt.Fprintf(&b, "[name=%q]", l.Name)
		}
	case ByCSS:
		b.WriteString("css=" + l.Selector)
	default:
		fmt.Fprintf(&b, "%s=%q", l.Kind, l.Name)
	}
	return b.String()
}
