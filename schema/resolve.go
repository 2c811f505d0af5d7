package schema

import (
	"sort"
	"strings"
)

// ============================================================================
// RESOLVER — Header list → ColumnRoleMap
// ============================================================================
// Headers are scanned once, in order. For each role:
//   - the first header matching any of its rules claims the role
//   - a later header takes it over only by matching a strictly better
//     (lower-numbered) priority; equal priority keeps the earlier header
// ============================================================================

// Resolver resolves headers with a fixed rule set.
type Resolver struct {
	rules map[Role][]Rule
	roles []Role
}

// NewResolver groups rules by role, best priority first.
func NewResolver(rules []Rule) *Resolver {
	r := &Resolver{rules: make(map[Role][]Rule)}
	for _, rule := range rules {
		if _, seen := r.rules[rule.Role]; !seen {
			r.roles = append(r.roles, rule.Role)
		}
		r.rules[rule.Role] = append(r.rules[rule.Role], rule)
	}
	for _, role := range r.roles {
		sort.SliceStable(r.rules[role], func(i, j int) bool {
			return r.rules[role][i].Priority < r.rules[role][j].Priority
		})
	}
	return r
}

// ResolveColumns resolves headers with DefaultRules.
func ResolveColumns(headers []string) ColumnRoleMap {
	return NewResolver(DefaultRules()).Resolve(headers)
}

// Resolve maps each role to at most one header index. It never fails;
// roles nothing matched are simply absent.
func (r *Resolver) Resolve(headers []string) ColumnRoleMap {
	matches := make(map[Role]Match)

	for i, raw := range headers {
		h := Fold(raw)
		if h == "" {
			continue
		}

		for _, role := range r.roles {
			rule, ok := r.bestRule(role, h)
			if !ok {
				continue
			}
			if current, claimed := matches[role]; claimed && current.Priority <= rule.Priority {
				continue
			}
			matches[role] = Match{
				Role:     role,
				Index:    i,
				Header:   strings.TrimSpace(raw),
				Priority: rule.Priority,
				Rule:     rule.Description,
			}
		}
	}

	return ColumnRoleMap{matches: matches}
}

// bestRule returns the highest-priority rule of role that accepts h.
func (r *Resolver) bestRule(role Role, h string) (Rule, bool) {
	for _, rule := range r.rules[role] {
		if rule.Match != nil && rule.Match(h) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Fold case-folds a header for matching.
func Fold(header string) string {
	return strings.ToUpper(strings.TrimSpace(header))
}
