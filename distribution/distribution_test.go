package distribution

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var allowUnexported = cmp.AllowUnexported(Distribution1D{}, Distribution2D{}, Distribution3D{})

func TestDistribution1DCloneIsStructurallyEquivalent(t *testing.T) {
	d := NewDistribution1D(4, true)
	d.AddWeighted(0, 2.0, 1.5)
	d.AddWeighted(2, 3.0, 4.0)

	clone := d.Clone()

	if diff := cmp.Diff(d, clone, allowUnexported); diff != "" {
		t.Fatalf("clone diverged from original (-want +got):\n%s", diff)
	}

	clone.Add(1, 1.0)
	require.NotEqual(t, "", cmp.Diff(d, clone, allowUnexported), "mutating the clone must not be reflected back via cmp.Diff")
}

func TestDistribution1DAddFromThenSubFromRoundTrips(t *testing.T) {
	d := NewDistribution1D(3, true)
	d.AddWeighted(0, 1.0, 2.0)
	before := d.Clone()

	delta := NewDistribution1D(3, true)
	delta.AddWeighted(1, 5.0, 7.0)

	d.AddFrom(delta)
	d.SubFrom(delta)

	if diff := cmp.Diff(before, d, allowUnexported); diff != "" {
		t.Fatalf("AddFrom followed by SubFrom must be a no-op (-want +got):\n%s", diff)
	}
}

func TestDistribution2DRow1DMatchesManualExtraction(t *testing.T) {
	d := NewDistribution2D(2, 3, false)
	d.Add(0, 0, 1.0)
	d.Add(0, 1, 2.0)
	d.Add(1, 1, 9.0)

	want := NewDistribution1D(3, false)
	want.Set(0, 1.0)
	want.Set(1, 2.0)

	got := d.Row1D(0)
	if diff := cmp.Diff(want, got, allowUnexported); diff != "" {
		t.Fatalf("Row1D(0) mismatch (-want +got):\n%s", diff)
	}
}

func TestDistribution2DCloneIsStructurallyEquivalent(t *testing.T) {
	d := NewDistribution2D(2, 2, true)
	d.AddWeighted(1, 0, 4.0, 3.0)

	clone := d.Clone()
	if diff := cmp.Diff(d, clone, allowUnexported); diff != "" {
		t.Fatalf("clone diverged from original (-want +got):\n%s", diff)
	}
}

func TestDistribution3DSum1DCollapsesBothSpeciesAxes(t *testing.T) {
	d := NewDistribution3D(2, 2, false)
	d.Add(0, 0, 0, 1.0)
	d.Add(0, 1, 0, 2.0)
	d.Add(1, 0, 0, 3.0)
	d.Add(1, 1, 1, 4.0)

	want := NewDistribution1D(2, false)
	want.Set(0, 6.0)
	want.Set(1, 4.0)

	got := d.Sum1D()
	if diff := cmp.Diff(want, got, allowUnexported); diff != "" {
		t.Fatalf("Sum1D mismatch (-want +got):\n%s", diff)
	}
}

func TestDistribution3DCloneIsStructurallyEquivalent(t *testing.T) {
	d := NewDistribution3D(2, 2, true)
	d.AddWeighted(0, 1, 1, 6.0, 5.0)

	clone := d.Clone()
	if diff := cmp.Diff(d, clone, allowUnexported); diff != "" {
		t.Fatalf("clone diverged from original (-want +got):\n%s", diff)
	}

	clone.Add(0, 0, 0, 1.0)
	require.NotEqual(t, "", cmp.Diff(d, clone, allowUnexported))
}

func TestDistribution1DResizeTruncatesAndZeroExtends(t *testing.T) {
	d := NewDistribution1D(4, false)
	d.Set(0, 1.0)
	d.Set(3, 4.0)

	d.Resize(2)
	require.Equal(t, 2, d.Len())
	require.Equal(t, 1.0, d.At(0))

	d.Resize(5)
	require.Equal(t, 5, d.Len())
	require.Equal(t, 0.0, d.At(4))
}

func TestDistribution1DLastNonZero(t *testing.T) {
	d := NewDistribution1D(5, false)
	require.Equal(t, -1, d.LastNonZero())
	d.Set(2, 3.0)
	require.Equal(t, 2, d.LastNonZero())
}
