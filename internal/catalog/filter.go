package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Filter is a structured predicate over catalog documents, parsed from
// the MongoDB-style JSON object the query translator produces.
//
// Supported shape:
//
//	{"$and": [ ... ]}                                  conjunction
//	{"$or": [ ... ]}                                   disjunction
//	{"field": {"$regex": "pat", "$options": "i"}}      regex match
//	{"field": {"$lte": 50000}}                         comparison ($lt, $lte, $gt, $gte, $ne)
//	{"field": "value"}                                 equality
//
// Multiple fields in one object are an implicit conjunction, as in
// MongoDB.
type Filter struct {
	root node
	src  string
}

type node interface {
	exprSource(p *paramSet) string
}

type groupNode struct {
	op       string // "and" | "or"
	children []node
}

type condNode struct {
	field string
	op    string // "eq", "ne", "lt", "lte", "gt", "gte", "regex"
	value interface{}
}

// ParseFilter parses a JSON filter object into a validated Filter.
// An empty object is valid and matches every document.
func ParseFilter(text string) (*Filter, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("filter is not a JSON object: %w", err)
	}
	root, err := parseObject(raw)
	if err != nil {
		return nil, err
	}
	return &Filter{root: root, src: text}, nil
}

// String returns the original JSON source of the filter.
func (f *Filter) String() string { return f.src }

func parseObject(obj map[string]interface{}) (node, error) {
	// Deterministic traversal keeps compiled sources stable.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var children []node
	for _, key := range keys {
		value := obj[key]
		switch key {
		case "$and", "$or":
			items, ok := value.([]interface{})
			if !ok {
				return nil, fmt.Errorf("%s expects an array", key)
			}
			group := groupNode{op: strings.TrimPrefix(key, "$")}
			for _, item := range items {
				sub, ok := item.(map[string]interface{})
				if !ok {
					return nil, fmt.Errorf("%s elements must be objects", key)
				}
				child, err := parseObject(sub)
				if err != nil {
					return nil, err
				}
				group.children = append(group.children, child)
			}
			children = append(children, group)
		default:
			if strings.HasPrefix(key, "$") {
				return nil, fmt.Errorf("unsupported operator %q", key)
			}
			cond, err := parseCondition(key, value)
			if err != nil {
				return nil, err
			}
			children = append(children, cond)
		}
	}

	switch len(children) {
	case 0:
		return groupNode{op: "and"}, nil
	case 1:
		return children[0], nil
	default:
		return groupNode{op: "and", children: children}, nil
	}
}

func parseCondition(field string, value interface{}) (node, error) {
	ops, ok := value.(map[string]interface{})
	if !ok {
		// Bare value is an equality match.
		return condNode{field: field, op: "eq", value: value}, nil
	}

	if pat, ok := ops["$regex"]; ok {
		pattern, ok := pat.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: $regex expects a string", field)
		}
		if opts, ok := ops["$options"].(string); ok && strings.Contains(opts, "i") {
			pattern = "(?i)" + pattern
		}
		return condNode{field: field, op: "regex", value: pattern}, nil
	}

	var children []node
	opKeys := make([]string, 0, len(ops))
	for k := range ops {
		opKeys = append(opKeys, k)
	}
	sort.Strings(opKeys)
	for _, op := range opKeys {
		if op == "$options" {
			continue
		}
		name, ok := map[string]string{
			"$eq": "eq", "$ne": "ne",
			"$lt": "lt", "$lte": "lte",
			"$gt": "gt", "$gte": "gte",
		}[op]
		if !ok {
			return nil, fmt.Errorf("field %q: unsupported operator %q", field, op)
		}
		children = append(children, condNode{field: field, op: name, value: ops[op]})
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("field %q: empty condition", field)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return groupNode{op: "and", children: children}, nil
}
