package dice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xldeveloper/theinterneti-tta-solo/dice"
)

func TestParseNotation_Simple(t *testing.T) {
	pool, err := dice.ParseNotation("3d6+2")
	require.NoError(t, err)
	require.Len(t, pool.Terms, 2)
	assert.Equal(t, 3, pool.Terms[0].Count)
	assert.Equal(t, 6, pool.Terms[0].Sides)
	assert.Equal(t, 2, pool.Terms[1].Flat)
}

func TestParseNotation_KeepHighest(t *testing.T) {
	pool, err := dice.ParseNotation("2d20kh1")
	require.NoError(t, err)
	require.Len(t, pool.Terms, 1)
	assert.Equal(t, "h", pool.Terms[0].Keep)
	assert.Equal(t, 1, pool.Terms[0].KeepN)
}

func TestParseNotation_OutOfRange(t *testing.T) {
	_, err := dice.ParseNotation("2000d6")
	require.Error(t, err)
}

func TestPoolRoll_Advantage(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{5, 18}})
	result, err := dice.Roll(context.Background(), "2d20kh1", roller)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 18}, result.Rolls)
	assert.Equal(t, []int{18}, result.Kept)
	assert.Equal(t, 18, result.Total)
}

func TestPoolRoll_NestedModifiers(t *testing.T) {
	roller := dice.NewFixedRoller([][]int{{4, 6}, {3}})
	result, err := dice.Roll(context.Background(), "2d6+1d4-1", roller)
	require.NoError(t, err)
	assert.Equal(t, -1, result.Modifier)
	assert.Equal(t, 4+6+3-1, result.Total)
}

func TestSeededRoller_Deterministic(t *testing.T) {
	a := dice.NewSeededRoller(42)
	b := dice.NewSeededRoller(42)
	ctx := context.Background()
	ra, err := a.Roll(ctx, 5, 20)
	require.NoError(t, err)
	rb, err := b.Roll(ctx, 5, 20)
	require.NoError(t, err)
	assert.Equal(t, ra, rb)
}
