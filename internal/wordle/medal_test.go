package wordle

import (
	"reflect"
	"testing"
)

type scored struct {
	name  string
	value float64
	ok    bool
}

func scoredValue(s scored) (float64, bool) {
	return s.value, s.ok
}

func names(p Podium[scored]) []string {
	out := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		out = append(out, e.name)
	}
	return out
}

func TestAssignMedalsLowerWins(t *testing.T) {
	t.Parallel()

	entries := []scored{
		{"a", 3, true}, {"b", 4, true}, {"c", 3, true}, {"d", 5, true}, {"e", 6, true}, {"f", 1, false},
	}

	podiums := AssignMedals(entries, scoredValue, true)
	if len(podiums) != 3 {
		t.Fatalf("expected 3 podiums got %d", len(podiums))
	}

	expected := []struct {
		medal Medal
		value float64
		names []string
	}{
		{Gold, 3, []string{"a", "c"}},
		{Silver, 4, []string{"b"}},
		{Bronze, 5, []string{"d"}},
	}
	for i, e := range expected {
		p := podiums[i]
		if p.Medal != e.medal || p.Value != e.value || !reflect.DeepEqual(names(p), e.names) {
			t.Errorf("podium %d: expected %v %v %v got %v %v %v", i, e.medal, e.value, e.names, p.Medal, p.Value, names(p))
		}
	}
}

func TestAssignMedalsHigherWins(t *testing.T) {
	t.Parallel()

	entries := []scored{{"a", 2, true}, {"b", 2, true}, {"c", 1, true}}

	podiums := AssignMedals(entries, scoredValue, false)
	if len(podiums) != 2 {
		t.Fatalf("expected 2 podiums got %d", len(podiums))
	}
	if !reflect.DeepEqual(names(podiums[0]), []string{"a", "b"}) || podiums[0].Medal != Gold {
		t.Errorf("unexpected gold podium %#v", podiums[0])
	}
	if !reflect.DeepEqual(names(podiums[1]), []string{"c"}) || podiums[1].Medal != Silver {
		t.Errorf("unexpected silver podium %#v", podiums[1])
	}
}

func TestAssignMedalsEmpty(t *testing.T) {
	t.Parallel()

	if podiums := AssignMedals([]scored{{"a", 1, false}}, scoredValue, true); len(podiums) != 0 {
		t.Errorf("expected no podiums got %#v", podiums)
	}
}
