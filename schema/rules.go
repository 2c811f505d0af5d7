package schema

import (
	"strings"
)

// ============================================================================
// RULES — Keyword matchers per role, as data
// ============================================================================
// Headers are case-folded (trimmed, upper-cased) before matching, so every
// keyword below is upper case. Priority 1 beats priority 2.
// ============================================================================

// Matcher tests a case-folded header.
type Matcher func(header string) bool

// Rule assigns Role to headers accepted by Match.
type Rule struct {
	Role        Role
	Priority    int
	Description string
	Match       Matcher
}

// ContainsAll matches headers containing every word.
func ContainsAll(words ...string) Matcher {
	return func(h string) bool {
		for _, w := range words {
			if !strings.Contains(h, w) {
				return false
			}
		}
		return true
	}
}

// ContainsAny matches headers containing at least one word.
func ContainsAny(words ...string) Matcher {
	return func(h string) bool {
		for _, w := range words {
			if strings.Contains(h, w) {
				return true
			}
		}
		return false
	}
}

// Equals matches one exact header.
func Equals(word string) Matcher {
	return func(h string) bool { return h == word }
}

// HasPrefix matches headers starting with prefix.
func HasPrefix(prefix string) Matcher {
	return func(h string) bool { return strings.HasPrefix(h, prefix) }
}

// AnyOf matches when any matcher does.
func AnyOf(matchers ...Matcher) Matcher {
	return func(h string) bool {
		for _, m := range matchers {
			if m(h) {
				return true
			}
		}
		return false
	}
}

// Without narrows m to headers containing none of words.
func (m Matcher) Without(words ...string) Matcher {
	exclude := ContainsAny(words...)
	return func(h string) bool {
		return m(h) && !exclude(h)
	}
}

// notIdentifier excludes headers such as "HARGA PENAWARAN" or
// "TANGGAL RFQ" that mention the quotation but hold a value or date.
var notIdentifier = []string{"HARGA", "PRICE", "VALUE", "NILAI", "TOTAL", "TANGGAL", "DATE", "TGL", "STATUS"}

// DefaultRules returns the rule set for Indonesian RFQ recap exports.
// "MARKERTING" is the misspelling the recap template actually uses.
func DefaultRules() []Rule {
	return []Rule{
		{RoleAmount, 1, "HARGA + NEW", ContainsAll("HARGA", "NEW")},
		{RoleAmount, 2, "HARGA | PRICE | VALUE", ContainsAny("HARGA", "PRICE", "VALUE")},

		{RoleCustomer, 1, "CUSTOMER + NAME", ContainsAll("CUSTOMER", "NAME")},
		{RoleCustomer, 2, "CUSTOMER | CLIENT", ContainsAny("CUSTOMER", "CLIENT")},

		{RoleSalesperson, 1, "MARKERTING | MARKETING", ContainsAny("MARKERTING", "MARKETING")},
		{RoleSalesperson, 2, "SALES | PERSON", ContainsAny("SALES", "PERSON")},

		{RoleStatus, 1, "KETERANGAN", ContainsAny("KETERANGAN")},
		{RoleStatus, 2, "STATUS | PROGRESS - QUANTITY", AnyOf(
			ContainsAny("STATUS"),
			ContainsAny("PROGRESS").Without("QUANTITY"),
		)},

		{RoleSecondaryAmount, 1, "TOTAL - QUANTITY", ContainsAny("TOTAL").Without("QUANTITY")},
		{RoleSecondaryAmount, 2, "QUANTITY - SATUAN", ContainsAny("QUANTITY").Without("SATUAN")},

		{RoleDate, 1, "= DATE | TANGGAL", AnyOf(Equals("DATE"), ContainsAny("TANGGAL"))},
		{RoleDate, 2, "DATE | TGL", ContainsAny("DATE", "TGL")},

		{RoleRemark, 1, "REMARK + KAROSERI", ContainsAll("REMARK", "KAROSERI")},
		{RoleRemark, 2, "REMARK | REMARKS", ContainsAny("REMARK")},

		{RoleRFQID, 1, "PENAWARAN | RFQ - amounts/dates", ContainsAny("PENAWARAN", "RFQ").Without(notIdentifier...)},
		{RoleRFQID, 2, "QUOTATION | QUOTE | NO", AnyOf(
			ContainsAny("QUOTATION", "QUOTE").Without(notIdentifier...),
			Equals("NO"), HasPrefix("NO."), HasPrefix("NO "),
		)},
	}
}
