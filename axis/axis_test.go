package axis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveWidthOrRange(t *testing.T) {
	_, err := New(0, 10)
	require.ErrorIs(t, err, ErrInvalidBinWidth)

	_, err = New(1, 0)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestNewRoundsBinCountUp(t *testing.T) {
	a, err := New(0.5, 10)
	require.NoError(t, err)
	require.Equal(t, 20, a.Bins)

	a, err = New(0.5, 9.1)
	require.NoError(t, err)
	require.Equal(t, 19, a.Bins)
}

func TestNewExplicitRejectsInvalidInputs(t *testing.T) {
	_, err := NewExplicit(0, 0, 5)
	require.ErrorIs(t, err, ErrInvalidBinWidth)

	_, err = NewExplicit(0, 1, 0)
	require.ErrorIs(t, err, ErrInvalidBinCount)
}

func TestMaxIsExclusiveUpperBound(t *testing.T) {
	a, err := NewExplicit(1.0, 2.0, 3)
	require.NoError(t, err)
	require.Equal(t, 7.0, a.Max())
}

func TestBinRoundedOutOfRange(t *testing.T) {
	a, err := New(1.0, 5)
	require.NoError(t, err)

	_, ok := a.BinRounded(-0.1)
	require.False(t, ok)

	_, ok = a.BinRounded(5.0)
	require.False(t, ok, "Max() itself is exclusive")

	idx, ok := a.BinRounded(2.4)
	require.True(t, ok)
	require.Equal(t, 2, idx)
}

func TestBinWeightedSplitsFractionBetweenNeighboringBins(t *testing.T) {
	a, err := New(1.0, 5)
	require.NoError(t, err)

	bin, frac, ok := a.BinWeighted(2.25)
	require.True(t, ok)
	require.Equal(t, 2, bin)
	require.InDelta(t, 0.75, frac, 1e-12)

	_, _, ok = a.BinWeighted(-1)
	require.False(t, ok)
}

func TestCenterReturnsBinMidpoint(t *testing.T) {
	a, err := NewExplicit(0, 2.0, 3)
	require.NoError(t, err)
	require.Equal(t, 0.0, a.Center(0))
	require.Equal(t, 2.0, a.Center(1))
	require.Equal(t, 4.0, a.Center(2))
}

func TestResizeKeepsMinAndWidth(t *testing.T) {
	a, err := NewExplicit(1.5, 0.5, 10)
	require.NoError(t, err)

	resized, err := a.Resize(4)
	require.NoError(t, err)
	require.Equal(t, 1.5, resized.Min)
	require.Equal(t, 0.5, resized.Width)
	require.Equal(t, 4, resized.Bins)

	_, err = a.Resize(0)
	require.True(t, errors.Is(err, ErrInvalidBinCount))
}

func TestStringIncludesBoundsAndBinCount(t *testing.T) {
	a, err := New(1.0, 3)
	require.NoError(t, err)
	require.Contains(t, a.String(), "bins=3")
}

func TestNewQAxisRejectsInvalidInputs(t *testing.T) {
	_, err := NewQAxis(0, 1, 0)
	require.ErrorIs(t, err, ErrInvalidBinCount)

	_, err = NewQAxis(0.5, 0.1, 10)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestQAxisValuesAreEvenlySpaced(t *testing.T) {
	q, err := NewQAxis(0, 1, 5)
	require.NoError(t, err)
	values := q.Values()
	require.Len(t, values, 5)
	require.Equal(t, 0.0, values[0])
	require.Equal(t, 1.0, values[4])
	require.InDelta(t, 0.25, values[1], 1e-12)
}

func TestQAxisValuesSingleBinReturnsQMin(t *testing.T) {
	q, err := NewQAxis(0.1, 0.5, 1)
	require.NoError(t, err)
	require.Equal(t, []float64{0.1}, q.Values())
}
