package recipients

import (
	"errors"
	"strings"
	"testing"

	"pooled-multisender/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func near(t *testing.T, s string) domain.Amount {
	t.Helper()
	a, err := domain.ParseAmount(s + "000000000000000000000000")
	require.NoError(t, err)
	return a
}

func TestParse_Separators(t *testing.T) {
	input := strings.Join([]string{
		"alice.near 1",
		"bob.near\t2",
		"carol.near,3",
		"dave.near|4",
		"erin.near=5",
		"frank.near , 6",
	}, "\n")

	list, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, list.Entries, 6)
	for i, want := range []string{"alice.near", "bob.near", "carol.near", "dave.near", "erin.near", "frank.near"} {
		assert.Equal(t, want, list.Entries[i].AccountID)
		assert.Equal(t, i+1, list.Entries[i].Line)
	}
	assert.Equal(t, near(t, "6"), list.Entries[5].Amount)
}

func TestParse_DecimalAmounts(t *testing.T) {
	list, err := Parse(strings.NewReader("alice.near 1.5\nbob.near 0.000000000000000000000001"))
	require.NoError(t, err)

	assert.Equal(t, "1500000000000000000000000", list.Entries[0].Amount.String())
	assert.Equal(t, uint128.From64(1), list.Entries[1].Amount)
}

func TestParse_MergesDuplicatesAndSkipsZero(t *testing.T) {
	input := "alice.near 1\n\n# comment\nbob.near 0\nalice.near 2\ncarol.near 0.0\n"

	list, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, list.Entries, 1)
	assert.Equal(t, "alice.near", list.Entries[0].AccountID)
	assert.Equal(t, near(t, "3"), list.Entries[0].Amount)
	assert.Equal(t, 1, list.Entries[0].Line)
	assert.Equal(t, 2, list.Skipped)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"missing amount", "alice.near", 1},
		{"extra field", "alice.near 1 2", 1},
		{"negative", "ok.near 1\nalice.near -1", 2},
		{"not a number", "alice.near abc", 1},
		{"too precise", "alice.near 0.0000000000000000000000001", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)

			var lineErr *LineError
			require.True(t, errors.As(err, &lineErr))
			assert.Equal(t, tt.line, lineErr.Line)
		})
	}
}

func TestList_InvalidAndFiltered(t *testing.T) {
	list, err := Parse(strings.NewReader("alice.near 1\nBAD!acct 2\nx 3\nbob.near 4"))
	require.NoError(t, err)

	invalid := list.Invalid()
	require.Len(t, invalid, 2)
	assert.Equal(t, "BAD!acct", invalid[0].AccountID)
	assert.Equal(t, "x", invalid[1].AccountID)

	valid := list.WithoutInvalid()
	require.Len(t, valid.Entries, 2)
	assert.Len(t, list.Entries, 4, "original list untouched")

	total, err := valid.Total()
	require.NoError(t, err)
	assert.Equal(t, near(t, "5"), total)
}

func TestList_Operations(t *testing.T) {
	list := &List{Entries: []Entry{{AccountID: "alice.near", Amount: uint128.From64(7)}}}

	ops := list.Operations()
	assert.Equal(t, []domain.Operation{{Recipient: "alice.near", Amount: uint128.From64(7)}}, ops)
}

func TestChunk(t *testing.T) {
	ops := make([]domain.Operation, 301)

	chunks := Chunk(ops, DefaultChunkSize)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 150)
	assert.Len(t, chunks[1], 150)
	assert.Len(t, chunks[2], 1)

	assert.Empty(t, Chunk(nil, 10))
	assert.Len(t, Chunk(ops[:5], 0), 1, "non-positive size falls back to the default")
}

func TestShortfall(t *testing.T) {
	assert.Equal(t, uint128.From64(3), Shortfall(uint128.From64(10), uint128.From64(7)))
	assert.Equal(t, uint128.Zero, Shortfall(uint128.From64(10), uint128.From64(10)))
	assert.Equal(t, uint128.Zero, Shortfall(uint128.From64(10), uint128.From64(12)))
}
