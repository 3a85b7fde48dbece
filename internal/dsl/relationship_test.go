package dsl

import "testing"

func TestParseRelationship(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want Relationship
	}{
		{"", false, Relationship{}},
		{"bar", true, Relationship{Name: "bar"}},
		{"bar:amd64", true, Relationship{Name: "bar", Arch: "amd64"}},
		{"bar:amd64 >= 1.0", true, Relationship{Name: "bar", Arch: "amd64", Op: OpGtEq, Version: "1.0"}},
		{"bar>=1.0", true, Relationship{Name: "bar", Op: OpGtEq, Version: "1.0"}},
		{"bar = 1.0", true, Relationship{Name: "bar", Op: OpEq, Version: "1.0"}},
		{"bar 1.0", true, Relationship{Name: "bar", Op: OpEq, Version: "1.0"}},
		{"bar < 1.0", true, Relationship{Name: "bar", Op: OpLess, Version: "1.0"}},
		{"bar <= 1.0", true, Relationship{Name: "bar", Op: OpLessEq, Version: "1.0"}},
		{"bar > 1.0", true, Relationship{Name: "bar", Op: OpGt, Version: "1.0"}},
		{"BAR", false, Relationship{}},
		{"bar_baz", false, Relationship{}},
		{"bar@1.0", false, Relationship{}},
	}

	for _, c := range cases {
		got, ok := ParseRelationship(c.in)
		if ok != c.ok {
			t.Errorf("ParseRelationship(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if !ok {
			continue
		}
		if got != c.want {
			t.Errorf("ParseRelationship(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestRelationshipSatisfies(t *testing.T) {
	r, ok := ParseRelationship("bar >= 1.0")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if !r.Satisfies("1.5") {
		t.Error("1.5 should satisfy >= 1.0")
	}
	if r.Satisfies("0.9") {
		t.Error("0.9 should not satisfy >= 1.0")
	}

	bare, ok := ParseRelationship("bar")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if !bare.Satisfies("anything") {
		t.Error("a version-less relationship should be satisfied by anything")
	}
}

func TestRelationshipString(t *testing.T) {
	r, _ := ParseRelationship("bar:amd64 >= 1.0")
	if got, want := r.String(), "bar:amd64 >= 1.0"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
