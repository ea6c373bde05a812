package catalog

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// The filter is compiled once into an expr program evaluated per
// document. The expression source is generated from the validated
// filter AST; filter values are passed as environment parameters, so
// no model-produced text ever reaches the compiler as code.

type paramSet struct {
	values map[string]interface{}
}

func (p *paramSet) add(v interface{}) string {
	name := fmt.Sprintf("p%d", len(p.values))
	p.values[name] = v
	return name
}

// Compile builds the document-match program for the filter.
func (f *Filter) Compile() (*Matcher, error) {
	params := &paramSet{values: make(map[string]interface{})}
	source := f.root.exprSource(params)

	program, err := expr.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile filter %s: %w", f.src, err)
	}

	return &Matcher{program: program, params: params.values}, nil
}

// Matcher evaluates a compiled filter against documents.
type Matcher struct {
	program *vm.Program
	params  map[string]interface{}
}

// Matches reports whether the document satisfies the filter.
func (m *Matcher) Matches(doc Document) (bool, error) {
	env := make(map[string]interface{}, len(m.params)+1)
	for k, v := range m.params {
		env[k] = v
	}
	env["doc"] = map[string]interface{}(doc)

	out, err := vm.Run(m.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter did not evaluate to a boolean")
	}
	return matched, nil
}

func (g groupNode) exprSource(p *paramSet) string {
	if len(g.children) == 0 {
		return "true"
	}
	parts := make([]string, len(g.children))
	for i, child := range g.children {
		parts[i] = "(" + child.exprSource(p) + ")"
	}
	op := " and "
	if g.op == "or" {
		op = " or "
	}
	return strings.Join(parts, op)
}

func (c condNode) exprSource(p *paramSet) string {
	param := p.add(c.value)
	field := fmt.Sprintf("doc[%q]", c.field)
	switch c.op {
	case "regex":
		return fmt.Sprintf("string(%s ?? \"\") matches %s", field, param)
	case "eq":
		return fmt.Sprintf("%s == %s", field, param)
	case "ne":
		return fmt.Sprintf("%s != %s", field, param)
	case "lt", "lte", "gt", "gte":
		op := map[string]string{"lt": "<", "lte": "<=", "gt": ">", "gte": ">="}[c.op]
		// Missing fields never satisfy a range condition.
		return fmt.Sprintf("%s != nil and %s %s %s", field, field, op, param)
	default:
		return "false"
	}
}
