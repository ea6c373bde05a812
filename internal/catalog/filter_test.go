package catalog

import (
	"strings"
	"testing"
)

func matchDoc(t *testing.T, filterSrc string, doc Document) bool {
	t.Helper()
	f, err := ParseFilter(filterSrc)
	if err != nil {
		t.Fatalf("ParseFilter(%q): %v", filterSrc, err)
	}
	m, err := f.Compile()
	if err != nil {
		t.Fatalf("Compile(%q): %v", filterSrc, err)
	}
	ok, err := m.Matches(doc)
	if err != nil {
		t.Fatalf("Matches(%q): %v", filterSrc, err)
	}
	return ok
}

func TestFilterMatching(t *testing.T) {
	doc := Document{
		"program_name":     "MS in Computer Science",
		"university_name":  "Example University",
		"location":         "Boston, United States",
		"glovera_pricing":  float64(42000),
		"min_gpa":          2.8,
		"public_private":   "private",
		"type_of_program":  "STEM",
		"ranking":          float64(12),
		"savings_percent":  22.5,
		"key_job_roles":    "software engineer, data scientist",
		"original_pricing": float64(54000),
	}

	tests := []struct {
		name   string
		filter string
		want   bool
	}{
		{
			name:   "case insensitive regex",
			filter: `{"program_name": {"$regex": "computer", "$options": "i"}}`,
			want:   true,
		},
		{
			name:   "regex alternation",
			filter: `{"location": {"$regex": "united states|usa|us", "$options": "i"}}`,
			want:   true,
		},
		{
			name:   "case sensitive regex misses",
			filter: `{"program_name": {"$regex": "computer"}}`,
			want:   false,
		},
		{
			name:   "budget upper bound holds",
			filter: `{"glovera_pricing": {"$lte": 50000}}`,
			want:   true,
		},
		{
			name:   "budget upper bound excludes",
			filter: `{"glovera_pricing": {"$lte": 40000}}`,
			want:   false,
		},
		{
			name:   "range on missing field never matches",
			filter: `{"tuition": {"$lte": 100000}}`,
			want:   false,
		},
		{
			name:   "and of conditions",
			filter: `{"$and": [{"location": {"$regex": "boston", "$options": "i"}}, {"min_gpa": {"$lte": 3.0}}]}`,
			want:   true,
		},
		{
			name:   "or takes either branch",
			filter: `{"$or": [{"location": {"$regex": "london", "$options": "i"}}, {"public_private": "private"}]}`,
			want:   true,
		},
		{
			name:   "implicit conjunction across fields",
			filter: `{"public_private": "private", "type_of_program": "STEM"}`,
			want:   true,
		},
		{
			name:   "implicit conjunction fails on one field",
			filter: `{"public_private": "private", "type_of_program": "arts"}`,
			want:   false,
		},
		{
			name:   "not equal",
			filter: `{"public_private": {"$ne": "public"}}`,
			want:   true,
		},
		{
			name:   "range pair on one field",
			filter: `{"ranking": {"$gte": 10, "$lte": 20}}`,
			want:   true,
		},
		{
			name:   "empty filter matches everything",
			filter: `{}`,
			want:   true,
		},
		{
			name:   "equality against missing field",
			filter: `{"scholarship": "full"}`,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchDoc(t, tt.filter, doc); got != tt.want {
				t.Errorf("match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFilterRejectsUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name   string
		filter string
	}{
		{"not json", `find all programs`},
		{"json array", `["a", "b"]`},
		{"unknown top operator", `{"$nor": [{"a": 1}]}`},
		{"unknown field operator", `{"price": {"$near": 3}}`},
		{"and expects array", `{"$and": {"a": 1}}`},
		{"regex expects string", `{"name": {"$regex": 7}}`},
		{"empty condition", `{"name": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFilter(tt.filter); err == nil {
				t.Errorf("ParseFilter(%q) succeeded, want error", tt.filter)
			}
		})
	}
}

func TestFilterStringKeepsSource(t *testing.T) {
	src := `{"location": {"$regex": "usa", "$options": "i"}}`
	f, err := ParseFilter(src)
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	if f.String() != src {
		t.Errorf("String() = %q, want original source", f.String())
	}
}

func TestCompileSourceNeverEmbedsValues(t *testing.T) {
	// Filter values travel as parameters; a hostile pattern must not
	// reach the expression compiler as code.
	src := `{"location": {"$regex": "\") or true or (\""}}`
	f, err := ParseFilter(src)
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	m, err := f.Compile()
	if err != nil {
		// A rejected pattern is fine; silently matching is not.
		return
	}
	ok, err := m.Matches(Document{"location": "Boston"})
	if err == nil && ok {
		t.Error("hostile pattern matched as if it were code")
	}
}

func TestFilterSourceDeterminism(t *testing.T) {
	f, err := ParseFilter(`{"b": 1, "a": 2, "c": {"$gte": 1, "$lte": 3}}`)
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	params := &paramSet{values: make(map[string]interface{})}
	first := f.root.exprSource(params)
	for i := 0; i < 5; i++ {
		again, err := ParseFilter(`{"b": 1, "a": 2, "c": {"$gte": 1, "$lte": 3}}`)
		if err != nil {
			t.Fatalf("ParseFilter: %v", err)
		}
		p := &paramSet{values: make(map[string]interface{})}
		if got := again.root.exprSource(p); got != first {
			t.Fatalf("source differs across parses:\n%s\n%s", got, first)
		}
	}
	if !strings.Contains(first, "doc[") {
		t.Errorf("unexpected source: %s", first)
	}
}
