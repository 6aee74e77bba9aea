package filter

import (
	"fmt"
	"sort"
	"strings"
)

// Filter names one toggle of a Predicates pair
type Filter int

const (
	WithAttachments Filter = iota
	WithoutAttachments
	WithComments
	WithoutComments
	Viewed
	Unviewed
)

var filterNames = map[Filter]string{
	WithAttachments:    "with-attachments",
	WithoutAttachments: "without-attachments",
	WithComments:       "with-comments",
	WithoutComments:    "without-comments",
	Viewed:             "viewed",
	Unviewed:           "unviewed",
}

func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// counterpart returns the other member of f's pair
func (f Filter) counterpart() Filter {
	return f ^ 1
}

// ParseFilter maps a CLI name such as "with-attachments" to its Filter
func ParseFilter(name string) (Filter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range filterNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q (want one of %s)", name, strings.Join(FilterNames(), ", "))
}

// FilterNames lists every accepted filter name
func FilterNames() []string {
	names := make([]string, 0, len(filterNames))
	for _, n := range filterNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Predicates is the set of toggles narrowing the post list. Within each pair
// at most one member is on. The zero value imposes no constraint
type Predicates struct {
	on [6]bool
}

// Enabled reports whether f is on
func (p Predicates) Enabled(f Filter) bool {
	if f < 0 || int(f) >= len(p.on) {
		return false
	}
	return p.on[f]
}

// Set turns f on or off. Turning f on turns its counterpart off
func (p Predicates) Set(f Filter, on bool) Predicates {
	if f < 0 || int(f) >= len(p.on) {
		return p
	}
	p.on[f] = on
	if on {
		p.on[f.counterpart()] = false
	}
	return p
}

// Toggle flips f
func (p Predicates) Toggle(f Filter) Predicates {
	return p.Set(f, !p.Enabled(f))
}

// Active returns the toggles that are on, in evaluation order
func (p Predicates) Active() []Filter {
	var out []Filter
	for i, on := range p.on {
		if on {
			out = append(out, Filter(i))
		}
	}
	return out
}
