package csvfeed

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader(t *testing.T) {
	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("\xEF\xBB\xBFname,price\nSteam,50"))
		require.NoError(t, err)
		require.NoError(t, r.ParseHeader())

		assert.Equal(t, "name", r.Headers()[0])
		assert.Equal(t, EncodingUTF8, r.Encoding())
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := NewReader(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)

		_, err = NewReader(strings.NewReader("\xEF\xBB\xBF"))
		assert.ErrorIs(t, err, ErrEmptyFile, "a lone BOM is still empty")
	})

	t.Run("Windows-1252 is transcoded", func(t *testing.T) {
		r, err := FromBytes([]byte("nome,descri\xe7\xe3o\nCart\xe3o,Cr\xe9dito"))
		require.NoError(t, err)
		assert.Equal(t, EncodingWindows1252, r.Encoding())

		require.NoError(t, r.ParseHeader())
		assert.Equal(t, []string{"nome", "descrição"}, r.Headers())

		row, err := r.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "Cartão", row.Get("nome"))
		assert.Equal(t, "Crédito", row.Get("descrição"))
	})

	t.Run("strict mode rejects non UTF-8", func(t *testing.T) {
		_, err := FromBytes([]byte("nome\nCart\xe3o"), WithStrictUTF8())
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("multi-byte rune cut by the sniff window stays UTF-8", func(t *testing.T) {
		body := "name\n" + strings.Repeat("a", sniffSize-len("name\n")-1) + "é\n"
		r, err := NewReader(strings.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, EncodingUTF8, r.Encoding())
	})

	t.Run("custom delimiter", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("nome;preco\nSteam;50"), WithDelimiter(';'))
		require.NoError(t, err)
		require.NoError(t, r.ParseHeader())
		assert.Equal(t, []string{"nome", "preco"}, r.Headers())
	})
}

func TestReader_ParseHeader(t *testing.T) {
	t.Run("trims and normalizes", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("  ID , Name ,PRICE\n1,x,2"),
			WithHeaderNormalizer(strings.ToLower))
		require.NoError(t, err)
		require.NoError(t, r.ParseHeader())

		assert.Equal(t, []string{"id", "name", "price"}, r.Headers())
		idx, ok := r.ColumnIndex("price")
		assert.True(t, ok)
		assert.Equal(t, 2, idx)
		assert.Equal(t, []string{"stock"}, r.MissingHeaders("name", "stock"))
	})

	t.Run("first duplicate wins", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("Name,name\nfirst,second"),
			WithHeaderNormalizer(strings.ToLower))
		require.NoError(t, err)
		require.NoError(t, r.ParseHeader())

		row, err := r.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "first", row.Get("name"))
	})

	t.Run("blank header row", func(t *testing.T) {
		r, err := NewReader(strings.NewReader(" , \n1,2"))
		require.NoError(t, err)
		assert.ErrorIs(t, r.ParseHeader(), ErrMissingHeader)
	})
}

func TestReader_ReadRow(t *testing.T) {
	r, err := NewReader(strings.NewReader("id,name,stock\n1, Steam ,\n2,Xbox\n"))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, 2, row.LineNumber)
	assert.Equal(t, "Steam", row.Get("name"))
	assert.Equal(t, "n/a", row.GetOrDefault("stock", "n/a"))

	row, err = r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, 3, row.LineNumber)
	assert.Equal(t, "", row.Get("stock"), "short rows pad missing columns")
	assert.Len(t, row.RawFields, 2)

	_, err = r.ReadRow()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, r.TotalRows())
	assert.Equal(t, 3, r.CurrentRow())
}

func TestReader_ReadAllRows(t *testing.T) {
	r, err := NewReader(strings.NewReader("id,name\n1,Steam\n,\n3,Xbox\n"))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	rows, err := r.ReadAllRows()
	require.NoError(t, err)
	require.Len(t, rows, 2, "empty rows are skipped")
	assert.Equal(t, 4, rows[1].LineNumber)
}

func TestReader_MalformedRow(t *testing.T) {
	r, err := NewReader(strings.NewReader("id,name\n1,\"Steam\n"), WithLazyQuotes(false))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())

	_, err = r.ReadRow()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
