package metadata

import "fmt"

// MaxConditions is the maximum number of conditions per filter.
const MaxConditions = 32

// Filter is a conjunction of exact-equality constraints on metadata fields.
// A record matches when every listed field is present and equal; a record
// missing any listed field does not match.
type Filter struct {
	conds map[string]Value
}

// NewFilter validates and creates a Filter. Keys must be non-empty and
// values must hold a supported variant.
func NewFilter(conds map[string]Value) (Filter, error) {
	if len(conds) > MaxConditions {
		return Filter{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	for k, v := range conds {
		if k == "" {
			return Filter{}, fmt.Errorf("filter key is required")
		}
		if !v.IsValid() {
			return Filter{}, fmt.Errorf("unsupported filter value for key %q", k)
		}
	}
	c := make(map[string]Value, len(conds))
	for k, v := range conds {
		c[k] = v
	}
	return Filter{conds: c}, nil
}

// IsEmpty reports whether the filter has no conditions. An empty filter
// matches every record.
func (f Filter) IsEmpty() bool { return len(f.conds) == 0 }

// Len returns the number of conditions.
func (f Filter) Len() int { return len(f.conds) }

// Matches reports whether the metadata satisfies every condition.
func (f Filter) Matches(m Metadata) bool {
	for k, want := range f.conds {
		got, ok := m[k]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}
