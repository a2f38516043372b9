package products

import (
	"testing"

	"github.com/mauv0809/sales-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(sku, name, qty, total string) models.TransactionLine {
	return models.TransactionLine{SKU: sku, Name: name, Quantity: dec(qty), LineTotal: dec(total)}
}

func TestRank_Empty(t *testing.T) {
	for _, topN := range []int{-1, 0, 1, 20} {
		got, err := Rank(nil, topN)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestRank_NonPositiveTopN(t *testing.T) {
	_, err := Rank([]models.TransactionLine{line("A", "a", "1", "10")}, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Rank([]models.TransactionLine{line("A", "a", "1", "10")}, -3)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRank_SingleProductFromExtraction(t *testing.T) {
	ex := Extract([]models.Order{
		order("A", `[{"sku":"X1","name":"Widget","price":10,"quantity":2}]`),
		order("B", "{not valid"),
	})

	got, err := Rank(ex.Lines, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "X1", got[0].SKU)
	assert.Equal(t, "Widget", got[0].Name)
	assert.True(t, got[0].Units.Equal(dec("2")))
	assert.True(t, got[0].Revenue.Equal(dec("20")))
	assert.True(t, got[0].Percentage.Equal(dec("100")))
}

func TestRank_TopNTruncatesButSharesUseAllRevenue(t *testing.T) {
	lines := []models.TransactionLine{
		line("C", "Gamma", "1", "20"),
		line("A", "Alpha", "2", "30"),
		line("B", "Beta", "1", "50"),
	}

	got, err := Rank(lines, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "B", got[0].SKU)
	assert.Equal(t, 1, got[0].Rank)
	assert.True(t, got[0].Percentage.Equal(dec("50")))

	assert.Equal(t, "A", got[1].SKU)
	assert.Equal(t, 2, got[1].Rank)
	assert.True(t, got[1].Percentage.Equal(dec("30")))
}

func TestRank_GroupsBySKUAndName(t *testing.T) {
	lines := []models.TransactionLine{
		line("A", "Alpha", "1", "10"),
		line("A", "Alpha", "2", "20"),
		line("A", "Alpha v2", "1", "5"),
	}

	got, err := Rank(lines, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.True(t, got[0].Units.Equal(dec("3")))
	assert.True(t, got[0].Revenue.Equal(dec("30")))
	assert.Equal(t, "Alpha v2", got[1].Name)
}

func TestRank_ZeroTotalRevenue(t *testing.T) {
	lines := []models.TransactionLine{
		line("A", "Alpha", "1", "0"),
		line("B", "Beta", "3", "0"),
	}

	got, err := Rank(lines, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, g := range got {
		assert.True(t, g.Percentage.IsZero())
	}
	assert.Equal(t, []int{1, 2}, []int{got[0].Rank, got[1].Rank})
}

func TestRank_TiesOrderedBySKUThenName(t *testing.T) {
	lines := []models.TransactionLine{
		line("B", "Beta", "1", "10"),
		line("A", "Zeta", "1", "10"),
		line("A", "Alpha", "1", "10"),
	}

	got, err := Rank(lines, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Zeta", got[1].Name)
	assert.Equal(t, "B", got[2].SKU)
}

func TestRank_RevenueIsNotRounded(t *testing.T) {
	got, err := Rank([]models.TransactionLine{
		line("A", "a", "1", "10.005"),
		line("B", "b", "1", "20.0049"),
	}, 2)
	require.NoError(t, err)
	assert.True(t, got[0].Revenue.Equal(dec("20.0049")))
	assert.True(t, got[1].Revenue.Equal(dec("10.005")))
}

func TestPercentage(t *testing.T) {
	pct, err := Percentage(dec("1"), dec("3"))
	require.NoError(t, err)
	assert.True(t, pct.Equal(dec("33.33")))

	_, err = Percentage(dec("1"), dec("0"))
	assert.ErrorIs(t, err, ErrDegenerateAggregate)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]models.TransactionLine{
		line("A", "Alpha", "2", "20"),
		line("A", "Alpha v2", "1", "5"),
		line("B", "Beta", "4", "8.5"),
	})

	assert.True(t, s.Units.Equal(dec("7")))
	assert.True(t, s.Revenue.Equal(dec("33.5")))
	assert.Equal(t, 2, s.UniqueSKUs)
}
