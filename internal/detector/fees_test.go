package detector

import "testing"

func TestTakerFeeCents(t *testing.T) {
	tests := []struct {
		name  string
		count int64
		price int64
		want  int64
	}{
		{"two-at-5", 2, 5, 1},    // 7*2*5*95 = 6_650 -> 1
		{"two-at-10", 2, 10, 2},  // 7*2*10*90 = 12_600 -> 2
		{"two-at-50", 2, 50, 4},  // 7*2*50*50 = 35_000 -> 4
		{"five-at-5", 5, 5, 2},   // 7*5*5*95 = 16_625 -> 2
		{"five-at-10", 5, 10, 4}, // 7*5*10*90 = 31_500 -> 4
		{"five-at-20", 5, 20, 6}, // 7*5*20*80 = 56_000 -> 6
		{"five-at-25", 5, 25, 7}, // 7*5*25*75 = 65_625 -> 7
		{"five-at-33", 5, 33, 8}, // 7*5*33*67 = 77_385 -> 8
		{"five-at-40", 5, 40, 9}, // 7*5*40*60 = 84_000 -> 9
		{"five-at-50", 5, 50, 9}, // 7*5*50*50 = 87_500 -> 9
		{"five-at-60", 5, 60, 9}, // mirror of five-at-40
		{"price-floor", 5, 0, 0},
		{"price-ceiling", 5, 100, 0},
		{"zero-contracts", 0, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TakerFeeCents(tt.count, tt.price); got != tt.want {
				t.Errorf("TakerFeeCents(%d, %d) = %d, want %d", tt.count, tt.price, got, tt.want)
			}
		})
	}
}

func TestTakerFeeCents_Properties(t *testing.T) {
	t.Run("at-least-one-cent-inside-bounds", func(t *testing.T) {
		for price := int64(1); price <= 99; price++ {
			if fee := TakerFeeCents(1, price); fee < 1 {
				t.Errorf("TakerFeeCents(1, %d) = %d, want >= 1", price, fee)
			}
		}
	})

	t.Run("monotone-in-count", func(t *testing.T) {
		for _, price := range []int64{1, 10, 33, 50, 77, 99} {
			prev := int64(0)
			for count := int64(1); count <= 20; count++ {
				fee := TakerFeeCents(count, price)
				if fee < prev {
					t.Errorf("TakerFeeCents(%d, %d) = %d dropped below TakerFeeCents(%d, %d) = %d",
						count, price, fee, count-1, price, prev)
				}
				prev = fee
			}
		}
	})

	t.Run("symmetric-around-fifty", func(t *testing.T) {
		for price := int64(1); price <= 99; price++ {
			lo := TakerFeeCents(5, price)
			hi := TakerFeeCents(5, 100-price)
			if lo != hi {
				t.Errorf("TakerFeeCents(5, %d) = %d, TakerFeeCents(5, %d) = %d, want equal",
					price, lo, 100-price, hi)
			}
		}
	})
}
