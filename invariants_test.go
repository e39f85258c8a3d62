package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// Benefit Invariants Test Suite
//
// Property checks over the resolver, the comparison builder and the
// wizard that must hold for any combination of products, riders and sums.

// allSlotCombinations returns one slot per product and single rider, each with a sum
func allSlotCombinations() []ProductSlot {
	var slots []ProductSlot
	for _, p := range defaultCatalog.Products() {
		slots = append(slots, slotWith(p.ID, nil))
		for _, r := range p.Riders {
			s := slotWith(p.ID, map[RiderID]int64{r: 100000}, r)
			s.LifeSA = 250000
			s.CISA = 40000
			slots = append(slots, s)
		}
	}
	return slots
}

// =============================================================================
// Resolver Invariants
// =============================================================================

func TestInvariant_ResolverIsPure(t *testing.T) {
	for _, slot := range allSlotCombinations() {
		before := slot.Clone()
		a := ResolveSlot(slot)
		b := ResolveSlot(slot)

		if !a.SeverePayout.Equal(b.SeverePayout) || a.CITotalSA != b.CITotalSA || a.PADeathSA != b.PADeathSA {
			t.Errorf("%s/%v: resolving twice gave different results", slot.Product, slot.Riders)
		}
		if slot.LifeSA != before.LifeSA || len(slot.Riders) != len(before.Riders) || len(slot.RiderSAs) != len(before.RiderSAs) {
			t.Errorf("%s/%v: resolving modified the slot", slot.Product, slot.Riders)
		}
	}
}

func TestInvariant_PayoutFractionsWithinTotal(t *testing.T) {
	for _, slot := range allSlotCombinations() {
		b := ResolveSlot(slot)
		total := decimal.NewFromInt(b.CITotalSA)

		for name, payout := range map[string]decimal.Decimal{
			"severe":       b.SeverePayout,
			"intermediate": b.IntermediatePayout,
			"early":        b.EarlyPayout,
		} {
			if payout.IsNegative() || payout.GreaterThan(total) {
				t.Errorf("%s/%v: %s payout %s outside 0..%s", slot.Product, slot.Riders, name, payout, total)
			}
		}
	}
}

func TestInvariant_RecoveryBonusesOnlyWithPrimeCarePlus(t *testing.T) {
	for _, slot := range allSlotCombinations() {
		b := ResolveSlot(slot)
		hasBonus := b.DiabetesBonus > 0 || b.CancerBonus > 0 || b.CrisisRecovery.IsPositive()
		if hasBonus && !slot.HasRider(RiderPrimeCarePlus) {
			t.Errorf("%s/%v: recovery bonus without PrimeCare+", slot.Product, slot.Riders)
		}
	}
}

func TestInvariant_LoyaltyBonusIs18PercentOfLifeSA(t *testing.T) {
	for _, lifeSA := range []int64{0, 1, 50000, 200000, 1234567} {
		slot := slotWith(ProductEverlinkPlus, nil)
		slot.LifeSA = lifeSA

		want := decimal.NewFromInt(lifeSA).Mul(decimal.RequireFromString("0.18"))
		if got := ResolveSlot(slot).LoyaltyBonus; !got.Equal(want) {
			t.Errorf("life SA %d: loyalty bonus %s, want %s", lifeSA, got, want)
		}
	}
}

// =============================================================================
// Comparison Invariants
// =============================================================================

func TestInvariant_EveryRowHasOneValuePerColumn(t *testing.T) {
	slots := allSlotCombinations()
	for start := 0; start < len(slots); start += MaxSlots {
		end := min(start+MaxSlots, len(slots))
		for _, lang := range []Lang{LangCN, LangEN} {
			cmp := BuildComparison(comparisonState(slots[start:end]...), ComparisonOptions{Lang: lang, Columns: MaxSlots})

			if len(cmp.Headers) != MaxSlots || len(cmp.Products) != MaxSlots {
				t.Fatalf("expected %d columns, got %d headers and %d products", MaxSlots, len(cmp.Headers), len(cmp.Products))
			}
			for _, section := range append(cmp.Sections, cmp.RiderDetails) {
				for _, row := range section.Rows {
					if len(row.Values) != MaxSlots {
						t.Errorf("%s/%s: %d values", section.Key, row.Key, len(row.Values))
					}
					for i, v := range row.Values {
						if v == "" {
							t.Errorf("%s/%s: empty cell in column %d", section.Key, row.Key, i)
						}
					}
				}
			}
		}
	}
}

func TestInvariant_RiderDetailsCoverEverySelectedRider(t *testing.T) {
	slots := []ProductSlot{
		slotWith(ProductUltimateLink, nil, RiderHealthInsured, RiderPrimeCarePlus),
		slotWith(ProductAssuredLink, nil, RiderPreciousCover, RiderBabyCover, RiderPayorCover),
		slotWith(ProductEverlinkSignature, nil, RiderAssuredLove, RiderPayorCover),
	}
	cmp := BuildComparison(comparisonState(slots...), DefaultComparisonOptions())

	listed := make(map[string]bool)
	for _, row := range cmp.RiderDetails.Rows {
		if listed[row.Label] {
			t.Errorf("rider %s listed twice", row.Label)
		}
		listed[row.Label] = true
	}
	for _, s := range slots {
		for _, r := range s.Riders {
			if !listed[string(r)] {
				t.Errorf("rider %s missing from details", r)
			}
		}
	}
}

// permutations returns every ordering of 0..n-1
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var result [][]int
	for _, p := range permutations(n - 1) {
		for pos := 0; pos <= len(p); pos++ {
			perm := append(append(append([]int{}, p[:pos]...), n-1), p[pos:]...)
			result = append(result, perm)
		}
	}
	return result
}

func TestInvariant_SlotOrderDoesNotChangeRows(t *testing.T) {
	pool := []ProductSlot{
		slotWith(ProductUltimateLink, map[RiderID]int64{RiderPrimeCarePlus: 100000, RiderPersonalAccident: 50000},
			RiderPrimeCarePlus, RiderHealthInsured, RiderPersonalAccident),
		slotWith(ProductAssuredLink, map[RiderID]int64{RiderHealthCoverPlus: 80000},
			RiderHealthCoverPlus, RiderPreciousCover, RiderBabyCover, RiderSecureCover),
		slotWith(ProductEverlinkSignature, map[RiderID]int64{RiderAssuredLove: 20000},
			RiderPayorCover, RiderAssuredLove),
		slotWith(ProductEverlinkPlus, nil),
	}
	for i := range pool {
		pool[i].Name = string(pool[i].Product)
		pool[i].LifeSA = int64(100000 * (i + 1))
		pool[i].Premium70 = int64(1000 * (i + 1))
	}
	pool[1].JaundiceAmount = 1000
	pool[2].Age1 = 60

	for n := 2; n <= MaxSlots; n++ {
		base := BuildComparison(comparisonState(pool[:n]...), DefaultComparisonOptions())

		for _, perm := range permutations(n) {
			slots := make([]ProductSlot, n)
			for i, from := range perm {
				slots[i] = pool[from]
			}
			cmp := BuildComparison(comparisonState(slots...), DefaultComparisonOptions())

			if cmp.RowCount() != base.RowCount() {
				t.Errorf("n=%d perm=%v: %d rows, want %d", n, perm, cmp.RowCount(), base.RowCount())
			}
			if len(cmp.RiderDetails.Rows) != len(base.RiderDetails.Rows) {
				t.Errorf("n=%d perm=%v: %d rider rows, want %d", n, perm, len(cmp.RiderDetails.Rows), len(base.RiderDetails.Rows))
			}
			for i, from := range perm {
				if cmp.Products[i] != base.Products[from] {
					t.Errorf("n=%d perm=%v: column %d product %q, want %q", n, perm, i, cmp.Products[i], base.Products[from])
				}
			}

			for _, section := range append(cmp.Sections, cmp.RiderDetails) {
				want := base.Section(section.Key)
				if want == nil {
					t.Errorf("n=%d perm=%v: unexpected section %s", n, perm, section.Key)
					continue
				}
				for _, row := range section.Rows {
					wantRow := want.Row(row.Key)
					if wantRow == nil {
						t.Errorf("n=%d perm=%v: unexpected row %s/%s", n, perm, section.Key, row.Key)
						continue
					}
					for i, from := range perm {
						if row.Values[i] != wantRow.Values[from] {
							t.Errorf("n=%d perm=%v: %s/%s column %d = %q, want %q",
								n, perm, section.Key, row.Key, i, row.Values[i], wantRow.Values[from])
						}
					}
				}
			}
		}
	}
}

// =============================================================================
// Wizard Invariants
// =============================================================================

func TestInvariant_SlotCountStaysWithinBounds(t *testing.T) {
	w := NewWizard(nil, WithClock(func() time.Time { return testToday }))

	ops := []func(){
		func() { w.AddSlot() },
		func() { w.RemoveSlot(0) },
		func() { w.AddSlot() },
		func() { w.AddSlot() },
		func() { w.AddSlot() },
		func() { w.AddSlot() },
		func() { w.RemoveSlot(len(w.Slots()) - 1) },
		func() { w.RemoveSlot(0) },
		func() { w.RemoveSlot(0) },
		func() { w.RemoveSlot(0) },
		func() { w.RemoveSlot(0) },
	}
	for i, op := range ops {
		op()
		if n := len(w.Slots()); n < 1 || n > MaxSlots {
			t.Fatalf("after op %d: %d slots", i, n)
		}
	}
}

func TestInvariant_RidersAlwaysAllowedByProduct(t *testing.T) {
	w := NewWizard(nil, WithClock(func() time.Time { return testToday }))

	for _, p := range defaultCatalog.Products() {
		if err := w.SetProduct(0, p.ID); err != nil {
			t.Fatal(err)
		}
		for _, r := range defaultCatalog.Riders() {
			w.ToggleRider(0, r.ID)
		}
		s, _ := w.Slot(0)
		for _, r := range s.Riders {
			if !defaultCatalog.Allows(p.ID, r) {
				t.Errorf("%s carries %s", p.ID, r)
			}
		}
		if len(s.Riders) != len(p.Riders) {
			t.Errorf("%s: %d riders selected, %d allowed", p.ID, len(s.Riders), len(p.Riders))
		}
	}
}

func TestInvariant_AgeNeverNegative(t *testing.T) {
	today := testToday
	for year := 1900; year <= today.Year()+5; year += 7 {
		for month := 1; month <= 12; month++ {
			dob := DateOfBirth{Day: DaysInMonth(year, month), Month: month, Year: year}
			if age := CalculateAge(dob, today); age < 0 {
				t.Errorf("%s: negative age %d", dob, age)
			}
		}
	}
}
