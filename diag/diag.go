package diag

import (
	"fmt"
	"strings"

	"github.com/hupe1980/mmcore/bitset"
)

// Level is the severity of a notation.
type Level int

const (
	// Note is informational.
	Note Level = iota
	// Warning flags a suspicious construct that does not invalidate the database.
	Warning
	// Error flags an invalid construct.
	Error
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case Note:
		return "Note"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel returns the level with the given name.
func ParseLevel(name string) (Level, error) {
	for _, l := range []Level{Note, Warning, Error} {
		if strings.EqualFold(l.String(), name) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("diag: unknown level %q", name)
}

// Class identifies the processing pass that produced a notation.
type Class int

const (
	Parse Class = iota
	Scope
	Verify
	Grammar
	StmtParse
)

var classNames = [...]string{
	Parse:     "parse",
	Scope:     "scope",
	Verify:    "verify",
	Grammar:   "grammar",
	StmtParse: "stmt-parse",
}

// String returns the class name.
func (c Class) String() string {
	if c >= 0 && int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ParseClass returns the class with the given name.
func ParseClass(name string) (Class, error) {
	for i, n := range classNames {
		if strings.EqualFold(n, name) {
			return Class(i), nil
		}
	}
	return 0, fmt.Errorf("diag: unknown class %q", name)
}

// Classes returns the set of the given classes. Negative classes match no
// notation and are left out.
func Classes(classes ...Class) bitset.Bitset {
	var set bitset.Bitset
	for _, c := range classes {
		if c < 0 {
			continue
		}
		set.Set(int(c))
	}
	return set
}

// Span is a half-open byte range.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes in the span.
func (s Span) Len() int { return s.End - s.Start }

// Source names a piece of database text and where it sits in the buffer.
type Source struct {
	Name string
	Span Span
}

// Arg is a named value attached to a notation.
type Arg struct {
	ID    string
	Value string
}

// Notation is a single diagnostic.
type Notation struct {
	Source  Source
	Span    Span // relative to Source.Span.Start
	Level   Level
	Class   Class
	Message string
	Args    []Arg
}

// Absolute returns the span of n within the full buffer.
func (n Notation) Absolute() Span {
	return Span{
		Start: n.Span.Start + n.Source.Span.Start,
		End:   n.Span.End + n.Source.Span.Start,
	}
}
