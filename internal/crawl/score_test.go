package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func TestPopularity(t *testing.T) {
	tests := []struct {
		name    string
		rating  *float64
		reviews *int
		want    float64
	}{
		{"missing rating", nil, iptr(100), 0},
		{"missing reviews", fptr(4.5), nil, 0},
		{"both missing", nil, nil, 0},
		{"typical clinic", fptr(4.5), iptr(100), 0.09},
		{"perfect with capped reviews", fptr(5), iptr(1000), 1},
		{"reviews above cap do not exceed one", fptr(5), iptr(50000), 1},
		{"minimum rating scores zero", fptr(1), iptr(500), 0},
		{"high rating low evidence", fptr(5), iptr(10), 0.01},
		{"low rating high evidence", fptr(1.4), iptr(1000), 0.1},
		{"zero reviews", fptr(4.8), iptr(0), 0},
		{"negative reviews treated as missing data", fptr(4.8), iptr(-1), 0},
		{"rating below scale treated as missing data", fptr(0.5), iptr(100), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Popularity(tt.rating, tt.reviews), 0.0001)
		})
	}
}

func TestPopularity_Bounds(t *testing.T) {
	// Exhaustive-ish sweep: the score stays in [0, 1] over the whole domain.
	for rating := 1.0; rating <= 5.0; rating += 0.5 {
		for _, reviews := range []int{0, 1, 10, 100, 999, 1000, 1001, 1000000} {
			got := Popularity(fptr(rating), iptr(reviews))
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	}
}
