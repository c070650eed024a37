package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_DiscountedPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		price    float64
		discount int
		want     float64
	}{
		{name: "20 percent off", price: 100, discount: 20, want: 80},
		{name: "no discount", price: 100, discount: 0, want: 100},
		{name: "full discount", price: 100, discount: 100, want: 0},
		{name: "fractional price", price: 250_000, discount: 15, want: 212_500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: tt.price, DiscountPercent: tt.discount}
			assert.InDelta(t, tt.want, p.DiscountedPrice(), 1e-9)
		})
	}
}
