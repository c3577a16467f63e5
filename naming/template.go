package naming

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultFormat joins a base name and a serial number with one space.
	DefaultFormat = "{name} {number}"
	// DefaultPattern splits a numbered name back into base and number.
	DefaultPattern = `^(?P<name>.*?)\s+(?P<number>\d+)$`
)

// Self-check values used to prove a format and pattern agree.
const (
	checkName   = "testing"
	checkNumber = 12
)

// ErrTemplateMismatch reports a format and pattern that are not inverses.
var ErrTemplateMismatch = errors.New("template and pattern do not match")

// ConfigError describes a template that cannot be used.
type ConfigError struct {
	Format  string
	Pattern string
	Reason  string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("naming: invalid template %q / %q: %s", e.Format, e.Pattern, e.Reason)
	if e.Err != nil && !errors.Is(e.Err, ErrTemplateMismatch) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type segmentKind uint8

const (
	segLiteral segmentKind = iota
	segName
	segNumber
)

type segment struct {
	kind segmentKind
	text string
}

// Template pairs a format string with the regular expression that inverts it.
// A Template is immutable and safe for concurrent use.
type Template struct {
	format   string
	segments []segment
	re       *regexp.Regexp
	nameIdx  int
	numIdx   int
}

// NewTemplate compiles format and pattern and verifies that matching a
// formatted name recovers the same base and number.
func NewTemplate(format, pattern string) (*Template, error) {
	cfgErr := func(reason string, err error) error {
		return &ConfigError{Format: format, Pattern: pattern, Reason: reason, Err: err}
	}

	segments, err := parseFormat(format)
	if err != nil {
		return nil, cfgErr("bad format", err)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, cfgErr("bad pattern", err)
	}
	nameIdx := re.SubexpIndex("name")
	numIdx := re.SubexpIndex("number")
	if nameIdx < 0 || numIdx < 0 {
		return nil, cfgErr("pattern needs named groups \"name\" and \"number\"", ErrTemplateMismatch)
	}

	t := &Template{
		format:   format,
		segments: segments,
		re:       re,
		nameIdx:  nameIdx,
		numIdx:   numIdx,
	}

	sample := t.Format(checkName, checkNumber)
	base, num, ok := t.Parse(sample)
	switch {
	case !ok:
		return nil, cfgErr(fmt.Sprintf("pattern does not match %q", sample), ErrTemplateMismatch)
	case base != checkName || num != checkNumber:
		return nil, cfgErr(fmt.Sprintf("%q parsed as (%q, %d)", sample, base, num), ErrTemplateMismatch)
	}
	return t, nil
}

// MustTemplate is like NewTemplate but panics on error.
func MustTemplate(format, pattern string) *Template {
	t, err := NewTemplate(format, pattern)
	if err != nil {
		panic(err)
	}
	return t
}

// Format renders base and number through the format string.
func (t *Template) Format(base string, number int) string {
	var b strings.Builder
	for _, s := range t.segments {
		switch s.kind {
		case segLiteral:
			b.WriteString(s.text)
		case segName:
			b.WriteString(base)
		case segNumber:
			b.WriteString(strconv.Itoa(number))
		}
	}
	return b.String()
}

// Parse splits a numbered name into its base and number. ok is false for
// bare names and for numbers that cannot be incremented within an int.
func (t *Template) Parse(name string) (base string, number int, ok bool) {
	m := t.re.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[t.numIdx])
	if err != nil || n < 0 || n == math.MaxInt {
		return "", 0, false
	}
	return m[t.nameIdx], n, true
}

// FormatString returns the format the template was built from.
func (t *Template) FormatString() string { return t.format }

// Pattern returns the source of the matching expression.
func (t *Template) Pattern() string { return t.re.String() }

// parseFormat splits a format into literal text and {name}/{number}
// placeholders. Doubled braces are literal.
func parseFormat(format string) ([]segment, error) {
	var (
		segs    []segment
		lit     strings.Builder
		hasName bool
		hasNum  bool
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{kind: segLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		switch c {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(format[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated placeholder at offset %d", i)
			}
			field := format[i+1 : i+1+end]
			flush()
			switch field {
			case "name":
				segs = append(segs, segment{kind: segName})
				hasName = true
			case "number":
				segs = append(segs, segment{kind: segNumber})
				hasNum = true
			default:
				return nil, fmt.Errorf("unknown placeholder {%s}", field)
			}
			i += end + 1
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("single '}' at offset %d", i)
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	if !hasName || !hasNum {
		return nil, errors.New("format needs both {name} and {number}")
	}
	return segs, nil
}
