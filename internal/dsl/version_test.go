package dsl

import "testing"

func TestCompareNormativeExamples(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"3.2", "3.2-rc1", 1},
		{"pre-alpha", "prealpha", 0},
		{"1.0-A", "1.0a", 0},
		{"1.0.1", "1.0.1dev", 1},
		{"1.0", "1.0.1", -1},
		{"1.0.1", "1.0", 1},
		{"1.0", "1.0", 0},
	}

	for _, c := range cases {
		if got := Compare(c.a, c.b); got != c.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCompareUnparseable(t *testing.T) {
	if Compare("---", "...") != 0 {
		t.Error("two unparseable versions should compare equal")
	}
	if Compare("---", "1.0") >= 0 {
		t.Error("an unparseable version should be less than any parseable one")
	}
	if Compare("1.0", "---") <= 0 {
		t.Error("a parseable version should be greater than any unparseable one")
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	versions := []string{"1.0", "1.0.1", "2.0-rc1", "2.0", "2.0.1dev", "10.0", "2.10", "pre-alpha", "prealpha"}
	for _, a := range versions {
		for _, b := range versions {
			if Compare(a, b) != -Compare(b, a) {
				// Compare returns -1/0/1, so strict negation holds except
				// where both sides are 0.
				if !(Compare(a, b) == 0 && Compare(b, a) == 0) {
					t.Errorf("Compare(%q,%q)=%d but Compare(%q,%q)=%d, not antisymmetric", a, b, Compare(a, b), b, a, Compare(b, a))
				}
			}
		}
	}
}

func TestCompareTransitive(t *testing.T) {
	// 10.0 should sort after 2.10 numerically, not lexicographically.
	if Compare("10.0", "2.10") <= 0 {
		t.Error("numeric runs must compare numerically, not lexicographically")
	}

	versions := []string{"1.0", "1.0.1", "2.0-rc1", "2.0", "2.0.1dev", "10.0", "2.10", "pre-alpha", "prealpha", "---"}
	for _, a := range versions {
		for _, b := range versions {
			for _, c := range versions {
				if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
					t.Errorf("Compare(%q,%q)<=0 and Compare(%q,%q)<=0 but Compare(%q,%q)>0, not transitive", a, b, b, c, a, c)
				}
			}
		}
	}
}
