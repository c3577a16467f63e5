package naming

import (
	"math"
	"strconv"
	"testing"

	"gotest.tools/v3/assert"
)

func TestMakeUnique(t *testing.T) {
	existing := NewNames("abc 1", "abc 2", "abc")

	t.Run("bare name takes next free number", func(t *testing.T) {
		assert.Equal(t, MakeUnique("abc", existing), "abc 3")
	})

	t.Run("numbered name continues from its base", func(t *testing.T) {
		assert.Equal(t, MakeUnique("abc 1", existing), "abc 3")
	})

	t.Run("free name is returned unchanged", func(t *testing.T) {
		assert.Equal(t, MakeUnique("def", existing), "def")
		assert.Equal(t, MakeUnique("abc 7", existing), "abc 7")
	})

	t.Run("nil set is empty", func(t *testing.T) {
		assert.Equal(t, MakeUnique("abc", nil), "abc")
	})
}

func TestMakeUniqueAlwaysNumber(t *testing.T) {
	t.Run("start 1", func(t *testing.T) {
		got := MakeUnique("xyz", NewNames(), WithStart(1), AlwaysNumber("xyz"))
		assert.Equal(t, got, "xyz 1")
	})

	t.Run("start 2", func(t *testing.T) {
		got := MakeUnique("xyz", NewNames(), WithStart(2), AlwaysNumber("xyz"))
		assert.Equal(t, got, "xyz 2")
	})

	t.Run("forced number still avoids collisions", func(t *testing.T) {
		got := MakeUnique("Layer", NewNames("Layer 1", "Layer 2"), AlwaysNumber("Layer"))
		assert.Equal(t, got, "Layer 3")
	})

	t.Run("other names are not forced", func(t *testing.T) {
		got := MakeUnique("Background", NewNames(), AlwaysNumber("Layer"))
		assert.Equal(t, got, "Background")
	})

	t.Run("numbered default keeps its number", func(t *testing.T) {
		got := MakeUnique("Layer 4", NewNames(), AlwaysNumber("Layer 4"))
		assert.Equal(t, got, "Layer 4")
	})
}

func TestMakeUniqueStart(t *testing.T) {
	existing := NewNames("brush")

	assert.Equal(t, MakeUnique("brush", existing), "brush 1")
	assert.Equal(t, MakeUnique("brush", existing, WithStart(5)), "brush 5")
	assert.Equal(t, MakeUnique("brush", existing, WithStart(0)), "brush 0")
	assert.Equal(t, MakeUnique("brush", existing, WithStart(-3)), "brush 0")
}

func TestMakeUniqueRepeated(t *testing.T) {
	existing := NewNames()
	seen := map[string]bool{}
	for range 50 {
		name := MakeUnique("Layer", existing, AlwaysNumber("Layer"))
		assert.Assert(t, !seen[name], "MakeUnique returned duplicate %q", name)
		assert.Assert(t, !existing.Contains(name))
		seen[name] = true
		existing.Add(name)
	}
	assert.Assert(t, existing.Contains("Layer 1"))
	assert.Assert(t, existing.Contains("Layer 50"))
	assert.Assert(t, !existing.Contains("Layer"))
}

func TestMakeUniqueNeverTaken(t *testing.T) {
	cases := []struct {
		name     string
		existing []string
	}{
		{"a", []string{"a", "a 1", "a 2", "a 3"}},
		{"a 2", []string{"a 2", "a 3", "a 5"}},
		{"a  9", []string{"a  9", "a 10"}},
		{" 1", []string{" 1"}},
		{"", []string{""}},
		{"99", []string{"99", "99 1"}},
	}
	for _, tc := range cases {
		existing := NewNames(tc.existing...)
		got := MakeUnique(tc.name, existing)
		assert.Assert(t, !existing.Contains(got), "%q -> %q is taken", tc.name, got)
	}
}

func TestMakeUniqueLargestNumber(t *testing.T) {
	top := "x " + strconv.Itoa(math.MaxInt)

	t.Run("largest int suffix is kept as part of the base", func(t *testing.T) {
		existing := NewNames(top)
		got := MakeUnique(top, existing)
		assert.Equal(t, got, top+" 1")
		assert.Assert(t, !existing.Contains(got))
	})

	t.Run("counting past the largest int numbers the top name", func(t *testing.T) {
		below := "x " + strconv.Itoa(math.MaxInt-1)
		assert.Equal(t, MakeUnique(below, NewNames(below)), top)

		existing := NewNames(below, top, top+" 1")
		got := MakeUnique(below, existing)
		assert.Equal(t, got, top+" 2")
	})

	t.Run("start at the largest int", func(t *testing.T) {
		existing := NewNames("y", "y "+strconv.Itoa(math.MaxInt))
		got := MakeUnique("y", existing, WithStart(math.MaxInt))
		assert.Equal(t, got, "y "+strconv.Itoa(math.MaxInt)+" "+strconv.Itoa(math.MaxInt))
	})
}

func TestMakeUniqueSetFunc(t *testing.T) {
	var calls []string
	taken := SetFunc(func(name string) bool {
		calls = append(calls, name)
		return name == "pen" || name == "pen 1"
	})

	assert.Equal(t, MakeUnique("pen", taken), "pen 2")
	assert.DeepEqual(t, calls, []string{"pen", "pen 1", "pen 2"})
}

func TestMakeUniqueContainsPanicPropagates(t *testing.T) {
	defer func() {
		assert.Equal(t, recover(), "broken set")
	}()
	MakeUnique("x", SetFunc(func(string) bool { panic("broken set") }))
	t.Fatal("expected panic")
}

func TestNamerCustomTemplate(t *testing.T) {
	tmpl := MustTemplate("#{number} {name}", `^#(?P<number>\d+) (?P<name>.*)$`)
	n := New(tmpl)
	existing := NewNames("Brush", "#1 Brush")

	assert.Equal(t, n.MakeUnique("Brush", existing), "#2 Brush")
	assert.Equal(t, n.MakeUnique("#1 Brush", existing), "#2 Brush")
	assert.Equal(t, n.MakeUnique("Brush 1", existing), "Brush 1")
	assert.Equal(t, n.Template(), tmpl)
}

func TestNewNilTemplate(t *testing.T) {
	assert.Equal(t, New(nil).Template(), Default())
}
