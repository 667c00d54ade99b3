package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/yashrajoria/catalog-import-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, buf string) ([]models.RawRow, error) {
	t.Helper()
	var rows []models.RawRow
	for row, err := range ParseCSV([]byte(buf)) {
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func TestParseCSV_TrimsAndZipsWithHeader(t *testing.T) {
	rows, err := collectRows(t, " name , price ,stock,category\n Widget , 9.99 , 5 ,Tools\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 2, row.Line)
	assert.Equal(t, []string{"name", "price", "stock", "category"}, row.Keys())
	v, ok := row.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Widget", v)
	v, _ = row.Get("price")
	assert.Equal(t, "9.99", v)
}

func TestParseCSV_EmptyAndHeaderOnly(t *testing.T) {
	for _, buf := range []string{"", "name,price,stock,category\n", "name,price,stock,category"} {
		rows, err := collectRows(t, buf)
		assert.NoError(t, err, "buffer %q", buf)
		assert.Empty(t, rows, "buffer %q", buf)
	}
}

func TestParseCSV_SkipsBlankLines(t *testing.T) {
	buf := "name,price\n\nA,1\n  ,  \n\r\n,\nB,2\n"
	rows, err := collectRows(t, buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].Line)
	assert.Equal(t, 7, rows[1].Line)
}

func TestParseCSV_ColumnCountMismatch(t *testing.T) {
	rows, err := collectRows(t, "name,price,stock\nA,1,2,extra\nB,1\n")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Len(t, rows[0].Keys(), 3)

	_, ok := rows[1].Get("stock")
	assert.False(t, ok, "missing trailing column must be absent")
	assert.Len(t, rows[1].Keys(), 2)
}

func TestParseCSV_QuotedFields(t *testing.T) {
	rows, err := collectRows(t, "name,description\n\"Bolt, large\",\"says \"\"hi\"\"\"\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	v, _ := rows[0].Get("name")
	assert.Equal(t, "Bolt, large", v)
	v, _ = rows[0].Get("description")
	assert.Equal(t, `says "hi"`, v)
}

func TestParseCSV_SpaceBeforeQuotedField(t *testing.T) {
	rows, err := collectRows(t, "name,price,stock,category\nWidget, \"9.99\",5,Tools\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	v, _ := rows[0].Get("price")
	assert.Equal(t, "9.99", v)
	v, _ = rows[0].Get("category")
	assert.Equal(t, "Tools", v)
}

func TestParseCSV_SpaceAfterQuotedField(t *testing.T) {
	buf := "name,description,price\n\t\"Bolt, large\" ,  \"says \"\"hi\"\" \"\t,\"1.50\"  \r\nNut,\"x\" ,2\n"
	rows, err := collectRows(t, buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	v, _ := rows[0].Get("name")
	assert.Equal(t, "Bolt, large", v)
	v, _ = rows[0].Get("description")
	assert.Equal(t, `says "hi"`, v)
	v, _ = rows[0].Get("price")
	assert.Equal(t, "1.50", v)
	v, _ = rows[1].Get("description")
	assert.Equal(t, "x", v)
	assert.Equal(t, 3, rows[1].Line)
}

func TestParseCSV_TextAfterClosingQuote(t *testing.T) {
	_, err := collectRows(t, "name,price\n\"A\" B,1\n")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
}

func TestParseCSV_StripsBOM(t *testing.T) {
	rows, err := collectRows(t, "\xEF\xBB\xBFname,price\nA,1\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, ok := rows[0].Get("name")
	assert.True(t, ok)
}

func TestParseCSV_UnterminatedQuote(t *testing.T) {
	rows, err := collectRows(t, "name,price\nA,1\nB,\"2.00\n")
	require.Error(t, err)
	assert.Len(t, rows, 1, "rows before the bad record are still yielded")

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
	assert.Contains(t, pe.Context, "B,")
}

func TestParseCSV_BareQuote(t *testing.T) {
	_, err := collectRows(t, "name,price\nA \"x\" B,1\n")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
}

func TestParseCSV_HeaderProblems(t *testing.T) {
	_, err := collectRows(t, "name,price,name\nA,1,B\n")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Line)
	assert.ErrorIs(t, err, errDuplicateColumn)

	rows, err := collectRows(t, "name,,price\nA,ignored,1\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"name", "price"}, rows[0].Keys())
}

func TestParseCSV_ContextIsTruncated(t *testing.T) {
	long := strings.Repeat("x", 200)
	_, err := collectRows(t, "name\n\""+long+"\n")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.LessOrEqual(t, len(pe.Context), maxContextLen+3)
}

func TestParseCSV_SingleUse(t *testing.T) {
	seq := ParseCSV([]byte("name\nA\nB\n"))
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, 2, first)
	assert.Zero(t, second)
}

func TestParseCSV_StopsWhenConsumerBreaks(t *testing.T) {
	n := 0
	for range ParseCSV([]byte("name\nA\nB\nC\n")) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}
