package core

import (
	"reflect"
	"testing"
)

func TestPriceBucket(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  int
	}{
		{"below first edge", 5, 0},
		{"at first edge", 10, 1},
		{"mid range", 250, 3},
		{"at last edge", 5000, 6},
		{"above last edge", 99999, 6},
		{"zero price", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriceBucket(tt.price, nil); got != tt.want {
				t.Errorf("PriceBucket(%v) = %d, want %d", tt.price, got, tt.want)
			}
		})
	}
}

func TestPriceBucketsInRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		want     []int
	}{
		{"single bucket", 20, 40, []int{1}},
		{"spanning buckets", 20, 200, []int{1, 2, 3}},
		{"whole range", 0, 99999, []int{0, 1, 2, 3, 4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceBucketsInRange(tt.min, tt.max, nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PriceBucketsInRange(%v, %v) = %v, want %v", tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestProductDims(t *testing.T) {
	p := &Product{
		ID:        "p1",
		Category:  "Electronics",
		Brand:     "Acme",
		Price:     75,
		StyleTags: []string{"minimal", "outdoor"},
		Available: true,
	}

	dims := ProductDims(p, nil)

	want := map[string]float64{
		"category:Electronics": 1.0,
		"brand:Acme":           1.0,
		"style:minimal":        1.0,
		"style:outdoor":        1.0,
		"price:b2":             1.0,
	}
	if !reflect.DeepEqual(dims, want) {
		t.Errorf("ProductDims() = %v, want %v", dims, want)
	}
}

func TestActiveDims(t *testing.T) {
	prof := &PreferenceProfile{
		Dims: map[string]float64{
			"category:Electronics": 1.2,
			"category:Books":       0.5,
			"category:Gadgets":     -0.3, // dismiss 压制，不算感兴趣
			"brand:Acme":           0.8,
		},
	}

	got := prof.ActiveDims(DimPrefixCategory)
	want := []string{"Books", "Electronics"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ActiveDims(category) = %v, want %v", got, want)
	}

	if got := prof.ActiveDims(DimPrefixStyle); got != nil && len(got) != 0 {
		t.Errorf("ActiveDims(style) = %v, want empty", got)
	}
}
