package csvio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverapp/quiver-server/internal/csvio"
	"github.com/quiverapp/quiver-server/internal/errors"
)

func TestParse_CommaDelimited(t *testing.T) {
	input := "name,length_cm\nAtris,184.2\nCamox, 178.1 \n"

	records, err := csvio.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, "Atris", records[0].Values["name"])
	assert.Equal(t, "184.2", records[0].Values["length_cm"])

	// Values are trimmed.
	assert.Equal(t, 3, records[1].Line)
	assert.Equal(t, "178.1", records[1].Values["length_cm"])
}

func TestParse_SemicolonDelimited(t *testing.T) {
	input := "name;length_cm;weight_g\nAtris;184.2;1890\n"

	records, err := csvio.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Atris", records[0].Values["name"])
	assert.Equal(t, "1890", records[0].Values["weight_g"])
}

func TestParse_StripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFname,length_cm\nAtris,184.2\n"

	records, err := csvio.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Atris", records[0].Values["name"])
}

func TestParse_QuotedFields(t *testing.T) {
	input := "name,description\n\"Atris, 184\",\"a \"\"fat\"\" ski\nwith a line break\"\n"

	records, err := csvio.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Atris, 184", records[0].Values["name"])
	assert.Equal(t, "a \"fat\" ski\nwith a line break", records[0].Values["description"])
}

func TestParse_LineNumbersAfterMultilineField(t *testing.T) {
	input := "name,description\n\"A\",\"two\nlines\"\nB,plain\n"

	records, err := csvio.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Line)
	// The second record starts on line 4: the first spans lines 2-3.
	assert.Equal(t, 4, records[1].Line)
}

func TestParse_EmptyInput(t *testing.T) {
	records, err := csvio.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = csvio.Parse(strings.NewReader("   \n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParse_HeaderOnly(t *testing.T) {
	records, err := csvio.Parse(strings.NewReader("name,length_cm\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParse_ShortRowYieldsEmptyCells(t *testing.T) {
	input := "name,length_cm,weight_g\nAtris,184.2\n"

	records, err := csvio.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Values["weight_g"])
}

func TestParse_MalformedQuoting(t *testing.T) {
	input := "name,description\nAtris,\"unterminated\n"

	_, err := csvio.Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Contains(t, err.Error(), "Failed to parse CSV file")
}

func TestGenerate_QuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	err := csvio.Generate(&buf, []string{"name", "description"}, []map[string]string{
		{"name": "Atris", "description": ""},
	})
	require.NoError(t, err)

	want := "\xEF\xBB\xBF\"name\",\"description\"\r\n\"Atris\",\"\"\r\n"
	assert.Equal(t, want, buf.String())
}

func TestGenerate_EscapesQuotes(t *testing.T) {
	var buf bytes.Buffer
	err := csvio.Generate(&buf, []string{"description"}, []map[string]string{
		{"description": `a "fat" ski`},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"a ""fat"" ski"`)
}

func TestGenerate_RespectsColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	err := csvio.Generate(&buf, []string{"b", "a"}, []map[string]string{
		{"a": "1", "b": "2"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimPrefix(buf.String(), "\xEF\xBB\xBF"), "\r\n")
	assert.Equal(t, `"b","a"`, lines[0])
	assert.Equal(t, `"2","1"`, lines[1])
}

func TestRoundTrip(t *testing.T) {
	columns := []string{"name", "description", "length_cm"}
	rows := []map[string]string{
		{"name": "Atris", "description": "comma, quote \" and\nnewline", "length_cm": "184.2"},
		{"name": "Camox; semicolons", "description": "", "length_cm": "178.1"},
	}

	var buf bytes.Buffer
	require.NoError(t, csvio.Generate(&buf, columns, rows))

	records, err := csvio.Parse(&buf)
	require.NoError(t, err)
	require.Len(t, records, len(rows))

	for i, row := range rows {
		for _, col := range columns {
			assert.Equal(t, row[col], records[i].Values[col], "row %d column %s", i, col)
		}
	}
}

func TestValidateHeaders(t *testing.T) {
	required := []string{"name", "length_cm", "weight_g"}

	t.Run("all present", func(t *testing.T) {
		err := csvio.ValidateHeaders([]string{"name", "length_cm", "weight_g"}, required)
		assert.NoError(t, err)
	})

	t.Run("extra headers ignored", func(t *testing.T) {
		err := csvio.ValidateHeaders([]string{"name", "length_cm", "weight_g", "color", "price"}, required)
		assert.NoError(t, err)
	})

	t.Run("missing headers listed", func(t *testing.T) {
		err := csvio.ValidateHeaders([]string{"name"}, required)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrValidation)
		assert.Contains(t, err.Error(), "length_cm")
		assert.Contains(t, err.Error(), "weight_g")
	})

	t.Run("match is case-sensitive", func(t *testing.T) {
		err := csvio.ValidateHeaders([]string{"Name", "length_cm", "weight_g"}, required)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})
}
