package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEXT PARSER TESTS
// ============================================================================

const recapCSV = `NO,TANGGAL,CUSTOMER NAME,MARKERTING,HARGA (NEW),TOTAL,KETERANGAN
1,15-Mar-23,"Acme, Inc.",Bob,"1,250,000",0,JADI OC

2,16-Mar-23,Acme,Bob,500000,750000,TIDAK JADI OC
,,,,,,
3,17-Mar-23,Beta,Sari,,,
`

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"quoted comma", `"Acme, Inc.",100`, []string{"Acme, Inc.", "100"}},
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"trims fields", "  a , b  ", []string{"a", "b"}},
		{"empty fields", ",,", []string{"", "", ""}},
		{"quotes stripped mid-field", `ab"c,d"e`, []string{"abc,de"}},
		{"doubled quote is not an escape", `"say ""hi""",x`, []string{"say hi", "x"}},
		{"unterminated quote swallows rest", `"a,b,c`, []string{"a,b,c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLine(tt.line))
		})
	}
}

func TestParseText(t *testing.T) {
	table := ParseText(recapCSV)

	require.True(t, table.HasHeaders())
	assert.Equal(t, []string{"NO", "TANGGAL", "CUSTOMER NAME", "MARKERTING", "HARGA (NEW)", "TOTAL", "KETERANGAN"}, table.Headers)
	require.Equal(t, 3, table.Len(), "blank and all-comma lines are dropped")

	assert.Equal(t, "Acme, Inc.", table.Rows[0].Text(2))
	assert.Equal(t, "1,250,000", table.Rows[0].Text(4))
	assert.Equal(t, "TIDAK JADI OC", table.Rows[1].Text(6))
	assert.Equal(t, "", table.Rows[2].Text(6))
	assert.False(t, table.Rows[0].Cell(0).Numeric, "text input never marks cells numeric")
}

func TestParseTextBlankRowsIdempotent(t *testing.T) {
	withBlanks := "A,B\n\n1,2\n   \n,\n3,4\n\n"
	without := "A,B\n1,2\n3,4"

	assert.Equal(t, ParseText(without), ParseText(withBlanks))
}

func TestParseTextEdgeCases(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		table := ParseText("")
		assert.False(t, table.HasHeaders())
		assert.Equal(t, 0, table.Len())
	})

	t.Run("header only", func(t *testing.T) {
		table := ParseText("A,B,C\n")
		assert.Equal(t, []string{"A", "B", "C"}, table.Headers)
		assert.Equal(t, 0, table.Len())
	})

	t.Run("windows line endings", func(t *testing.T) {
		table := ParseText("A,B\r\n1,2\r\n")
		assert.Equal(t, []string{"A", "B"}, table.Headers)
		assert.Equal(t, "2", table.Rows[0].Text(1))
	})

	t.Run("byte order mark", func(t *testing.T) {
		table := ParseText("\ufeffNO,NAME\n1,x")
		assert.Equal(t, "NO", table.Headers[0])
	})

	t.Run("ragged rows", func(t *testing.T) {
		table := ParseText("A,B,C\n1\n1,2,3,4")
		require.Equal(t, 2, table.Len())
		assert.Equal(t, "", table.Rows[0].Text(2))
		assert.Equal(t, "4", table.Rows[1].Text(3))
		assert.Equal(t, "", table.Rows[1].Text(-1))
	})
}

func TestFromValues(t *testing.T) {
	table := FromValues([][]any{
		{nil, "", nil},
		{"DATE", "CUSTOMER", "TOTAL"},
		{45000, " Acme ", 1500000.5},
		{nil, nil, ""},
		{"15-Mar-23", "Beta", true},
	})

	assert.Equal(t, []string{"DATE", "CUSTOMER", "TOTAL"}, table.Headers)
	require.Equal(t, 2, table.Len())

	serial := table.Rows[0].Cell(0)
	assert.True(t, serial.Numeric)
	assert.Equal(t, 45000.0, serial.Number)
	assert.Equal(t, "45000", serial.Text)

	assert.Equal(t, "Acme", table.Rows[0].Text(1))
	assert.Equal(t, "1500000.5", table.Rows[0].Text(2))
	assert.Equal(t, "TRUE", table.Rows[1].Text(2))
}
