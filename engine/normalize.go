package engine

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spektr-org/rekap/schema"
	"github.com/spektr-org/rekap/tabular"
)

// ============================================================================
// NORMALIZER — RawTable + ColumnRoleMap → []Record
// ============================================================================
// Best effort and never fails:
//   - unparseable amounts become 0
//   - unparseable dates become nil
//   - unresolved roles read as empty cells
//
// Rows with neither customer nor salesperson are dropped; they are separator
// or subtotal lines in the recap sheets.
// ============================================================================

// Normalize converts every data row of table into a Record.
func Normalize(table *tabular.RawTable, roles schema.ColumnRoleMap, opts ...Option) []Record {
	cfg := applyOptions(opts)
	if table == nil {
		return []Record{}
	}

	n := &normalizer{roles: roles, cfg: cfg}
	records := make([]Record, 0, len(table.Rows))
	dropped, undated := 0, 0

	for _, row := range table.Rows {
		rec, ok := n.record(row)
		if !ok {
			dropped++
			continue
		}
		if rec.Date == nil {
			undated++
		}
		records = append(records, rec)
	}

	cfg.Logger.Info("normalized records",
		"rows", len(table.Rows),
		"records", len(records),
		"dropped", dropped,
		"undated", undated,
		"unresolved_roles", roles.Unresolved(),
	)
	return records
}

type normalizer struct {
	roles schema.ColumnRoleMap
	cfg   *config
}

func (n *normalizer) cell(row tabular.Row, role schema.Role) tabular.Cell {
	idx, ok := n.roles.Index(role)
	if !ok {
		return tabular.Cell{}
	}
	return row.Cell(idx)
}

func (n *normalizer) record(row tabular.Row) (Record, bool) {
	customer := strings.TrimSpace(n.cell(row, schema.RoleCustomer).Text)
	salesperson := strings.TrimSpace(n.cell(row, schema.RoleSalesperson).Text)
	if customer == "" && salesperson == "" {
		return Record{}, false
	}

	primary := AmountFromCell(n.cell(row, schema.RoleAmount))
	secondary := AmountFromCell(n.cell(row, schema.RoleSecondaryAmount))
	status := normalizeStatus(n.cell(row, schema.RoleStatus).Text)

	return Record{
		RFQID:           strings.TrimSpace(n.cell(row, schema.RoleRFQID).Text),
		Date:            ParseDate(n.cell(row, schema.RoleDate), n.cfg.Location),
		Customer:        customer,
		Salesperson:     salesperson,
		PrimaryAmount:   primary,
		SecondaryAmount: secondary,
		EffectiveAmount: EffectiveAmount(primary, secondary),
		StatusRaw:       status,
		IsConverted:     isConverted(status, n.cfg.NotConvertedMarker),
		Remark:          strings.TrimSpace(n.cell(row, schema.RoleRemark).Text),
		OriginalRow:     row,
	}, true
}

// ============================================================================
// STATUS
// ============================================================================

// IsConvertedStatus applies the conversion policy with the default marker:
// converted unless the status is empty or exactly "TIDAK JADI OC".
// Variants such as "TIDAK JADI OC (HARGA)" count as converted.
func IsConvertedStatus(status string) bool {
	return isConverted(normalizeStatus(status), DefaultNotConvertedMarker)
}

func isConverted(status, marker string) bool {
	return status != "" && status != marker
}

// ============================================================================
// AMOUNTS
// ============================================================================

// EffectiveAmount prefers the secondary (total) amount when it is positive.
func EffectiveAmount(primary, secondary float64) float64 {
	if secondary > 0 {
		return secondary
	}
	return primary
}

var (
	nonAmountChars = regexp.MustCompile(`[^\d,.]`)
	leadingDecimal = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)`)
)

// ParseAmount reads a currency-ish string.
// Everything except digits, commas and dots is removed, commas are treated as
// thousands separators and dropped, and the longest leading decimal is parsed.
// Anything unparseable is 0.
//
// Known limitations kept for compatibility with the recap sheets:
// dot-grouped "1.250.000" reads as 1.25 and signs are discarded.
func ParseAmount(s string) float64 {
	cleaned := strings.ReplaceAll(nonAmountChars.ReplaceAllString(s, ""), ",", "")
	match := leadingDecimal.FindString(cleaned)
	if match == "" {
		return 0
	}

	d, err := decimal.NewFromString(match)
	if err != nil {
		return 0
	}
	v, _ := d.Float64()
	return v
}

// AmountFromCell parses a cell with ParseAmount. Numeric workbook cells are
// read from their raw value rather than the formatted text.
func AmountFromCell(c tabular.Cell) float64 {
	if c.Numeric {
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return 0
		}
		return ParseAmount(strconv.FormatFloat(c.Number, 'f', -1, 64))
	}
	return ParseAmount(c.Text)
}

// ============================================================================
// DATES
// ============================================================================

// Calendar layouts tried on date text, in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"Mon, 02 Jan 2006",
}

var shortDate = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3,4})-(\d{2})$`)

// Month abbreviations, English plus the Indonesian ones seen in recap sheets.
var monthAbbreviations = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "mei": time.May,
	"jun": time.June, "jul": time.July, "aug": time.August,
	"agu": time.August, "agt": time.August, "agus": time.August,
	"sep": time.September, "sept": time.September, "oct": time.October,
	"okt": time.October, "nov": time.November, "dec": time.December,
	"des": time.December,
}

// ParseDate reads a date cell. First success wins:
//  1. numeric cell: spreadsheet serial, days since 1899-12-30
//  2. calendar text in one of dateLayouts
//  3. DD-MMM-YY, year 2000+YY
//
// A numeric cell whose serial is not a date falls through to its text.
// Returns nil when nothing matches.
func ParseDate(c tabular.Cell, loc *time.Location) *time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if c.Numeric {
		if t := FromSerial(c.Number, loc); t != nil {
			return t
		}
	}

	text := strings.TrimSpace(c.Text)
	if text == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return &t
		}
	}
	return parseShortDate(text, loc)
}

// FromSerial converts a spreadsheet date serial. The 1899-12-30 epoch absorbs
// the spreadsheet 1900 leap-year bug for every date after February 1900.
// The fractional part is the time of day. Serials ≤ 0 are not dates.
func FromSerial(serial float64, loc *time.Location) *time.Time {
	if serial <= 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	days := math.Floor(serial)
	seconds := math.Round((serial - days) * 86400)
	t := time.Date(1899, time.December, 30+int(days), 0, 0, int(seconds), 0, loc)
	return &t
}

func parseShortDate(text string, loc *time.Location) *time.Time {
	m := shortDate.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	day, _ := strconv.Atoi(m[1])
	month, ok := monthAbbreviations[strings.ToLower(m[2])]
	if !ok {
		return nil
	}
	yy, _ := strconv.Atoi(m[3])

	t := time.Date(2000+yy, month, day, 0, 0, 0, 0, loc)
	if t.Day() != day || t.Month() != month {
		return nil // 31-Feb-23 and friends
	}
	return &t
}
