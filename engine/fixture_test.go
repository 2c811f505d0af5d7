package engine

import (
	"time"
)

// ============================================================================
// SHARED FIXTURE
// ============================================================================

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func rec(customer, sales, status string, amount float64, date *time.Time) Record {
	status = normalizeStatus(status)
	return Record{
		Date:            date,
		Customer:        customer,
		Salesperson:     sales,
		PrimaryAmount:   amount,
		EffectiveAmount: amount,
		StatusRaw:       status,
		IsConverted:     IsConvertedStatus(status),
	}
}

// recapRecords:
//
//	A         Bob  JADI OC        100  Jan 10
//	A         Bob  TIDAK JADI OC  200  Jan 20
//	A         Cy   JADI OC        300  Feb 5
//	Beta Corp Cy   (empty)         50  undated
//	Gamma     Bob  TIDAK JADI OC    0  Mar 1
//	Beta Corp Dee  JADI OC        400  Feb 28 15:30
func recapRecords() []Record {
	lateFeb := time.Date(2024, time.February, 28, 15, 30, 0, 0, time.UTC)
	return []Record{
		rec("A", "Bob", "JADI OC", 100, day(2024, time.January, 10)),
		rec("A", "Bob", "TIDAK JADI OC", 200, day(2024, time.January, 20)),
		rec("A", "Cy", "JADI OC", 300, day(2024, time.February, 5)),
		rec("Beta Corp", "Cy", "", 50, nil),
		rec("Gamma", "Bob", "TIDAK JADI OC", 0, day(2024, time.March, 1)),
		rec("Beta Corp", "Dee", "JADI OC", 400, &lateFeb),
	}
}

func customers(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Customer
	}
	return out
}
