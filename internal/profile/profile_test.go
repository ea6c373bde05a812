package profile

import (
	"strings"
	"testing"
)

func TestBudgetCeiling(t *testing.T) {
	tests := []struct {
		name string
		prof Profile
		want string
		ok   bool
	}{
		{"range", Profile{"budget_range": "20000-50000"}, "50000", true},
		{"single value", Profile{"budget_range": "30000"}, "30000", true},
		{"spaced range", Profile{"budget_range": "20000 - 50000"}, "50000", true},
		{"missing", Profile{}, "", false},
		{"empty", Profile{"budget_range": ""}, "", false},
		{"dangling dash", Profile{"budget_range": "20000-"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.prof.BudgetCeiling()
			if got != tt.want || ok != tt.ok {
				t.Errorf("BudgetCeiling() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestForQueryDropsLowerBound(t *testing.T) {
	prof := Profile{
		"budget_range":    "20000-50000",
		"prior_education": "BSc Computer Science",
	}
	q := prof.ForQuery()

	if _, ok := q["budget_range"]; ok {
		t.Error("budget_range must not appear in query profiles")
	}
	if q["max_budget"] != "50000" {
		t.Errorf("max_budget = %q, want the upper bound only", q["max_budget"])
	}
	if q["prior_education"] != "BSc Computer Science" {
		t.Error("other attributes must pass through")
	}
	if prof["budget_range"] != "20000-50000" {
		t.Error("ForQuery must not mutate the source profile")
	}
}

func TestSerializeIsStable(t *testing.T) {
	prof := Profile{"b": "2", "a": "1", "c": "3"}
	want := "a: 1\nb: 2\nc: 3\n"
	for i := 0; i < 10; i++ {
		if got := prof.Serialize(); got != want {
			t.Fatalf("Serialize() = %q, want %q", got, want)
		}
	}
	if got := Profile(nil).Serialize(); got != "" {
		t.Errorf("nil profile serialized to %q", got)
	}
	if !strings.HasSuffix(prof.Serialize(), "\n") {
		t.Error("serialized profile should end with a newline")
	}
}
