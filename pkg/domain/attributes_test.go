package domain

import (
	"reflect"
	"testing"
)

func TestAttributesKeepInsertionOrder(t *testing.T) {
	var a Attributes
	a.Set("b", "1")
	a.Set("a", "2")
	a.Set("c", "3")
	a.Set("b", "4")
	if got := a.Keys(); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("keys %v", got)
	}
	if v, ok := a.Get("b"); !ok || v != "4" {
		t.Fatalf("get b = %q %v", v, ok)
	}
	a.Delete("a")
	a.Delete("missing")
	if got := a.Keys(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("keys after delete %v", got)
	}
	if a.Len() != 2 {
		t.Fatalf("len %d", a.Len())
	}
}

func TestAttributesCloneDoesNotAlias(t *testing.T) {
	var a Attributes
	a.Set("x", "1")
	a.Set("y", "2")
	c := a.Clone()
	c.Delete("x")
	c.Set("z", "3")
	if got := a.Keys(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("original mutated: %v", got)
	}
	if _, ok := a.Get("z"); ok {
		t.Fatalf("original gained key")
	}
}
