package mapper

import (
	"fmt"
	"strings"
)

type filterMode int

const (
	defaultMode filterMode = iota
	allMode
	explicitMode
)

// Filter selects the data columns produced by a mapper.
// Index columns are always produced.
type Filter struct {
	mode  filterMode
	names []string
}

var (
	// DefaultAttributes produces every column registered without NotDefault.
	DefaultAttributes = Filter{mode: defaultMode}

	// AllAttributes produces every registered column.
	AllAttributes = Filter{mode: allMode}
)

// Attributes produces exactly the named columns, in registration order.
// Naming an unknown column is a schema error.
func Attributes(names ...string) Filter {
	return Filter{mode: explicitMode, names: append([]string(nil), names...)}
}

// String returns a human readable form used in logs and errors.
func (f Filter) String() string {
	switch f.mode {
	case allMode:
		return "all"
	case explicitMode:
		return fmt.Sprintf("attributes(%s)", strings.Join(f.names, ","))
	default:
		return "default"
	}
}
