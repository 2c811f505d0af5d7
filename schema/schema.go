package schema

import (
	"encoding/json"
)

// ============================================================================
// SCHEMA — Which raw column plays which role in a recap export
// ============================================================================
// Recap exports are maintained by hand, so header names drift between files
// ("HARGA (NEW)", "HARGA", "PRICE", "MARKERTING"...). The resolver maps each
// semantic role to at most one header index; everything downstream reads
// columns through the resulting ColumnRoleMap.
// ============================================================================

// Role is the semantic meaning of a raw column.
type Role string

const (
	RoleAmount          Role = "amount"
	RoleSecondaryAmount Role = "secondaryAmount"
	RoleCustomer        Role = "customer"
	RoleSalesperson     Role = "salesperson"
	RoleStatus          Role = "status"
	RoleDate            Role = "date"
	RoleRFQID           Role = "rfqId"
	RoleRemark          Role = "remark"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{
	RoleRFQID,
	RoleDate,
	RoleCustomer,
	RoleSalesperson,
	RoleAmount,
	RoleSecondaryAmount,
	RoleStatus,
	RoleRemark,
}

// Match records how a role was resolved.
type Match struct {
	Role     Role   `json:"role"`
	Index    int    `json:"index"`
	Header   string `json:"header"`
	Priority int    `json:"priority"`
	Rule     string `json:"rule,omitempty"`
}

// ColumnRoleMap maps roles to header indices. It is built once per load and
// never modified afterwards; the zero value resolves nothing.
type ColumnRoleMap struct {
	matches map[Role]Match
}

// NewColumnRoleMap builds a map from explicit matches. Later matches for the
// same role replace earlier ones.
func NewColumnRoleMap(matches ...Match) ColumnRoleMap {
	m := ColumnRoleMap{matches: make(map[Role]Match, len(matches))}
	for _, match := range matches {
		m.matches[match.Role] = match
	}
	return m
}

// Index returns the header index for role.
func (m ColumnRoleMap) Index(role Role) (int, bool) {
	match, ok := m.matches[role]
	if !ok {
		return -1, false
	}
	return match.Index, true
}

// Has reports whether role was resolved.
func (m ColumnRoleMap) Has(role Role) bool {
	_, ok := m.matches[role]
	return ok
}

// Header returns the header text resolved for role, or "".
func (m ColumnRoleMap) Header(role Role) string {
	return m.matches[role].Header
}

// Match returns the resolution details for role.
func (m ColumnRoleMap) Match(role Role) (Match, bool) {
	match, ok := m.matches[role]
	return match, ok
}

// Matches returns resolved roles in AllRoles order.
func (m ColumnRoleMap) Matches() []Match {
	out := make([]Match, 0, len(m.matches))
	for _, role := range AllRoles {
		if match, ok := m.matches[role]; ok {
			out = append(out, match)
		}
	}
	return out
}

// Unresolved returns the roles no header matched.
func (m ColumnRoleMap) Unresolved() []Role {
	var out []Role
	for _, role := range AllRoles {
		if !m.Has(role) {
			out = append(out, role)
		}
	}
	return out
}

// MarshalJSON renders the map as {"resolved": [...], "unresolved": [...]}.
func (m ColumnRoleMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Resolved   []Match `json:"resolved"`
		Unresolved []Role  `json:"unresolved"`
	}{
		Resolved:   m.Matches(),
		Unresolved: m.Unresolved(),
	})
}
