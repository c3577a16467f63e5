// Package naming makes names unique by appending or bumping a serial number.
package naming

import "math"

// Set is a read-only collection of names already in use.
type Set interface {
	Contains(name string) bool
}

// Names is a Set backed by a map.
type Names map[string]struct{}

// NewNames returns a Names holding the given names.
func NewNames(names ...string) Names {
	s := make(Names, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s Names) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Add records name as taken.
func (s Names) Add(name string) {
	s[name] = struct{}{}
}

// SetFunc adapts a membership function to a Set.
type SetFunc func(name string) bool

func (f SetFunc) Contains(name string) bool { return f(name) }

type options struct {
	start        int
	alwaysNumber string
	force        bool
}

// Option tunes a single MakeUnique call.
type Option func(*options)

// WithStart sets the first serial number tried for a bare name. Negative
// values are treated as 0. The default is 1.
func WithStart(n int) Option {
	return func(o *options) {
		o.start = n
	}
}

// AlwaysNumber forces a serial number when the candidate equals name, even
// if it is not taken. Typically name is the default for a kind of object, so
// the first one becomes "Layer 1" rather than "Layer".
func AlwaysNumber(name string) Option {
	return func(o *options) {
		o.alwaysNumber = name
		o.force = true
	}
}

// Namer makes names unique using one Template.
type Namer struct {
	tmpl *Template
}

// New returns a Namer for t. A nil t selects the default template.
func New(t *Template) *Namer {
	if t == nil {
		t = Default()
	}
	return &Namer{tmpl: t}
}

// Template returns the template in use.
func (n *Namer) Template() *Template { return n.tmpl }

// MakeUnique returns name if it is not in existing, otherwise the first
// numbered variant of it that is not. A name that already carries a number
// continues counting from that number. A nil existing is empty.
func (n *Namer) MakeUnique(name string, existing Set, opts ...Option) string {
	o := options{start: 1}
	for _, fn := range opts {
		fn(&o)
	}
	if existing == nil {
		existing = Names(nil)
	}

	base, num, ok := n.tmpl.Parse(name)
	if !ok {
		base = name
		num = max(0, o.start)
	}

	force := o.force && name == o.alwaysNumber
	for force || existing.Contains(name) {
		name = n.tmpl.Format(base, num)
		if num == math.MaxInt {
			// Parse reads this name as bare, so number it the same way.
			base, num = name, max(0, o.start)
		} else {
			num++
		}
		force = false
	}
	return name
}

var defaultTemplate = MustTemplate(DefaultFormat, DefaultPattern)

// Default returns the built-in "{name} {number}" template.
func Default() *Template { return defaultTemplate }

var defaultNamer = New(defaultTemplate)

// MakeUnique makes name unique against existing with the default template.
func MakeUnique(name string, existing Set, opts ...Option) string {
	return defaultNamer.MakeUnique(name, existing, opts...)
}
