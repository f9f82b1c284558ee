package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shelby/internal/store"
)

var invoices = store.NewTable(store.TableSpec{
	Name: "invoices",
	Columns: []store.Column{
		store.Text("customer"),
		store.Date("issued"),
		store.Money("total"),
		store.Text("note").Null(),
	},
})

type invoice struct{}

func (invoice) Table() *store.Table { return invoices }

var links = store.NewTable(store.TableSpec{
	Name:       "links",
	Columns:    []store.Column{store.Integer("a"), store.Integer("b")},
	PrimaryKey: []string{"a", "b"},
})

type link struct{}

func (link) Table() *store.Table { return links }

func TestNew_RejectsUnknownColumn(t *testing.T) {
	for _, column := range []string{"customer", "note", "missing", "id; DROP TABLE invoices", ""} {
		_, err := New[invoice](column, 0, 10, Ascending)
		assert.ErrorIs(t, err, ErrInvalidColumn, column)
	}
}

func TestNew_AcceptsWhitelistedColumns(t *testing.T) {
	for _, column := range []string{"id", "issued", "total"} {
		p, err := New[invoice](column, 0, 10, Ascending)
		require.NoError(t, err)
		assert.Equal(t, column, p.Column())
	}
}

func TestSQL(t *testing.T) {
	p, err := New[invoice]("issued", 20, 10, Ascending)
	require.NoError(t, err)
	assert.Equal(t, `ORDER BY "issued" ASC LIMIT 10 OFFSET 20`, p.SQL())
	assert.Equal(t, p.SQL(), p.String())

	p, err = New[invoice]("total", 0, 5, Descending)
	require.NoError(t, err)
	assert.Equal(t, `ORDER BY "total" DESC LIMIT 5 OFFSET 0`, p.SQL())
}

func TestDefault(t *testing.T) {
	p := Default[invoice]()

	assert.Equal(t, "id", p.Column())
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, DefaultLimit, p.Limit())
	assert.Equal(t, Descending, p.Order())
	assert.Equal(t, `ORDER BY "id" DESC LIMIT 10 OFFSET 0`, p.SQL())
}

func TestDefault_NothingSortable(t *testing.T) {
	p := Default[link]()

	assert.Equal(t, "", p.Column())
	assert.Equal(t, "LIMIT 10 OFFSET 0", p.SQL())
}

func TestLimitFrom(t *testing.T) {
	assert.Equal(t, 0, LimitFrom(-5))
	assert.Equal(t, 0, LimitFrom(0))
	assert.Equal(t, 42, LimitFrom(42))
	assert.Equal(t, MaximumLimit, LimitFrom(100))
	assert.Equal(t, MaximumLimit, LimitFrom(1000))

	p, err := New[invoice]("id", 0, 1000, Ascending)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Limit())
}

func TestNew_ClampsNegativeOffset(t *testing.T) {
	p, err := New[invoice]("id", -3, 10, Ascending)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Offset())
}

func TestParseOrder(t *testing.T) {
	for _, s := range []string{"asc", "ASC", "Asc"} {
		o, err := ParseOrder(s)
		require.NoError(t, err)
		assert.Equal(t, Ascending, o)
	}
	for _, s := range []string{"desc", "DESC", "dEsC"} {
		o, err := ParseOrder(s)
		require.NoError(t, err)
		assert.Equal(t, Descending, o)
	}

	_, err := ParseOrder("up")
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestNextAndPrevious(t *testing.T) {
	p, err := New[invoice]("id", 0, 10, Ascending)
	require.NoError(t, err)

	_, ok := p.Previous()
	assert.False(t, ok, "no page before offset 0")

	_, ok = p.Next(9)
	assert.False(t, ok, "a short page is the last one")

	next, ok := p.Next(10)
	require.True(t, ok)
	assert.Equal(t, 10, next.Offset())
	assert.Equal(t, 20, next.EndOffset())

	prev, ok := next.Previous()
	require.True(t, ok)
	assert.Equal(t, 0, prev.Offset())
}

func TestPrevious_FlooredAtZero(t *testing.T) {
	p, err := New[invoice]("id", 4, 10, Ascending)
	require.NoError(t, err)

	prev, ok := p.Previous()
	require.True(t, ok)
	assert.Equal(t, 0, prev.Offset())
}

func TestNext_ZeroLimit(t *testing.T) {
	p, err := New[invoice]("id", 0, 0, Ascending)
	require.NoError(t, err)

	_, ok := p.Next(0)
	assert.False(t, ok)
}

func TestValuesRoundTrip(t *testing.T) {
	p, err := New[invoice]("total", 30, 15, Ascending)
	require.NoError(t, err)

	assert.Equal(t, "column=total&limit=15&offset=30&order=asc", p.QueryString())

	parsed, err := FromValues[invoice](p.Values())
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestFromValues_Defaults(t *testing.T) {
	p, err := FromValues[invoice](url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Default[invoice](), p)
}

func TestFromValues_Errors(t *testing.T) {
	tests := []struct {
		query   string
		wantErr error
	}{
		{query: "column=customer", wantErr: ErrInvalidColumn},
		{query: "order=sideways", wantErr: ErrInvalidOrder},
		{query: "offset=x", wantErr: ErrInvalidOffset},
		{query: "limit=ten", wantErr: ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			_, err = FromValues[invoice](v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
