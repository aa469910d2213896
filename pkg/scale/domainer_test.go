package scale

import (
	"math"
	"testing"
	"time"
)

func TestComputeDomainDefaults(t *testing.T) {
	d := NewDomainer()
	min, max := d.ComputeDomain(nil, linearTransform{})
	if min != 0 || max != 1 {
		t.Errorf("ComputeDomain(nil) = [%v, %v], want [0, 1]", min, max)
	}

	min, max = d.ComputeDomain([][2]float64{{1, 4}, {-2, 3}, {0, 10}}, linearTransform{})
	if min != -2 || max != 10 {
		t.Errorf("ComputeDomain() = [%v, %v], want [-2, 10]", min, max)
	}
}

func TestComputeDomainIsPure(t *testing.T) {
	d := NewDomainer().Pad().Nice()
	d.AddPaddingException("zero", 0)
	extents := [][2]float64{{0, 37}, {12, 81}}

	a0, a1 := d.ComputeDomain(extents, linearTransform{})
	b0, b1 := d.ComputeDomain(extents, linearTransform{})
	if a0 != b0 || a1 != b1 {
		t.Errorf("ComputeDomain() not idempotent: [%v, %v] then [%v, %v]", a0, a1, b0, b1)
	}
	if extents[0] != [2]float64{0, 37} || extents[1] != [2]float64{12, 81} {
		t.Errorf("ComputeDomain() modified its input: %v", extents)
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		name       string
		padding    float64
		exceptions []any
		extent     [2]float64
		want       [2]float64
	}{
		{"symmetric", 0.1, nil, [2]float64{0, 100}, [2]float64{-5, 105}},
		{"default on degenerate", DefaultPadding, nil, [2]float64{5, 5}, [2]float64{4, 6}},
		{"exception at min", 0.1, []any{0, 200}, [2]float64{0, 100}, [2]float64{0, 105}},
		{"exception at both ends", 0.1, []any{0, 100}, [2]float64{0, 100}, [2]float64{0, 100}},
		{"no padding", 0, nil, [2]float64{3, 7}, [2]float64{3, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDomainer()
			if err := d.SetPadding(tt.padding); err != nil {
				t.Fatalf("SetPadding() error = %v", err)
			}
			for _, e := range tt.exceptions {
				d.AddPaddingExceptionValue(e)
			}
			min, max := d.ComputeDomain([][2]float64{tt.extent}, linearTransform{})
			if min != tt.want[0] || max != tt.want[1] {
				t.Errorf("ComputeDomain() = [%v, %v], want %v", min, max, tt.want)
			}
		})
	}
}

func TestPadLastCallWins(t *testing.T) {
	d := NewDomainer()
	if err := d.SetPadding(1); err != nil {
		t.Fatal(err)
	}
	d.Pad()
	if d.Padding() != DefaultPadding {
		t.Errorf("Padding() = %v, want %v", d.Padding(), DefaultPadding)
	}
	if err := d.SetPadding(-0.1); err == nil {
		t.Error("SetPadding(-0.1) = nil, want error")
	}
	if d.Padding() != DefaultPadding {
		t.Errorf("Padding() after rejected call = %v, want %v", d.Padding(), DefaultPadding)
	}
}

func TestKeyedPaddingExceptions(t *testing.T) {
	d := NewDomainer()
	_ = d.SetPadding(0.1)
	d.AddPaddingException("baseline", 0)
	d.AddPaddingException("baseline", 100)

	min, max := d.ComputeDomain([][2]float64{{0, 100}}, linearTransform{})
	if min != -5 || max != 100 {
		t.Errorf("keyed replace: ComputeDomain() = [%v, %v], want [-5, 100]", min, max)
	}

	d.RemovePaddingException("baseline")
	min, max = d.ComputeDomain([][2]float64{{0, 100}}, linearTransform{})
	if min != -5 || max != 105 {
		t.Errorf("after remove: ComputeDomain() = [%v, %v], want [-5, 105]", min, max)
	}
}

func TestIncludedValues(t *testing.T) {
	d := NewDomainer()
	d.AddIncludedValueValue(5)
	min, max := d.ComputeDomain([][2]float64{{100, 200}}, linearTransform{})
	if min != 5 || max != 200 {
		t.Errorf("ComputeDomain() = [%v, %v], want [5, 200]", min, max)
	}

	d.AddIncludedValue("top", 300)
	min, max = d.ComputeDomain([][2]float64{{100, 200}}, linearTransform{})
	if min != 5 || max != 300 {
		t.Errorf("ComputeDomain() = [%v, %v], want [5, 300]", min, max)
	}

	d.RemoveIncludedValueValue(5)
	d.RemoveIncludedValue("top")
	min, max = d.ComputeDomain([][2]float64{{100, 200}}, linearTransform{})
	if min != 100 || max != 200 {
		t.Errorf("after removal: ComputeDomain() = [%v, %v], want [100, 200]", min, max)
	}

	d.AddIncludedValueValue(7)
	min, max = d.ComputeDomain(nil, linearTransform{})
	if min != 7 || max != 7 {
		t.Errorf("included only: ComputeDomain() = [%v, %v], want [7, 7]", min, max)
	}
}

func TestLogPaddingUsesLogSpace(t *testing.T) {
	d := NewDomainer()
	_ = d.SetPadding(2)
	min, max := d.ComputeDomain([][2]float64{{10, 100}}, logTransform{base: 10})
	if math.Abs(min-1) > 1e-9 || math.Abs(max-1000) > 1e-9 {
		t.Errorf("ComputeDomain() = [%v, %v], want [1, 1000]", min, max)
	}
}

func TestTimePadding(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ms, _ := toMillis(day)

	d := NewDomainer().Pad()
	min, max := d.ComputeDomain([][2]float64{{ms, ms}}, timeTransform{})
	if got := fromMillis(min); !got.Equal(day.AddDate(0, 0, -1)) {
		t.Errorf("degenerate min = %v, want %v", got, day.AddDate(0, 0, -1))
	}
	if got := fromMillis(max); !got.Equal(day.AddDate(0, 0, 1)) {
		t.Errorf("degenerate max = %v, want %v", got, day.AddDate(0, 0, 1))
	}

	end := day.AddDate(0, 0, 10)
	endMs, _ := toMillis(end)
	_ = d.SetPadding(0.2)
	d.AddPaddingException("start", day)
	min, max = d.ComputeDomain([][2]float64{{ms, endMs}}, timeTransform{})
	if !fromMillis(min).Equal(day) {
		t.Errorf("exception by timestamp: min = %v, want %v", fromMillis(min), day)
	}
	if want := end.AddDate(0, 0, 1); !fromMillis(max).Equal(want) {
		t.Errorf("max = %v, want %v", fromMillis(max), want)
	}
}

func TestNiceContainsDomain(t *testing.T) {
	d := NewDomainer().Nice()
	min, max := d.ComputeDomain([][2]float64{{0.13, 9.7}}, linearTransform{})
	if min > 0.13 || max < 9.7 {
		t.Errorf("nice domain [%v, %v] does not contain [0.13, 9.7]", min, max)
	}
}

func TestCustomEquality(t *testing.T) {
	d := NewDomainer()
	_ = d.SetPadding(0.1)
	d.AddPaddingExceptionValue(0.0001)
	d.SetEqual(func(a, b float64) bool { return math.Abs(a-b) < 0.001 })

	min, _ := d.ComputeDomain([][2]float64{{0, 100}}, linearTransform{})
	if min != 0 {
		t.Errorf("min = %v, want 0 with tolerant equality", min)
	}
}

func TestCombiner(t *testing.T) {
	d := NewDomainer()
	d.SetCombiner(func(extents [][2]float64) [2]float64 {
		return [2]float64{0, float64(len(extents))}
	})
	min, max := d.ComputeDomain([][2]float64{{5, 6}, {7, 8}}, linearTransform{})
	if min != 0 || max != 2 {
		t.Errorf("ComputeDomain() = [%v, %v], want [0, 2]", min, max)
	}
}
