package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comparisonState(slots ...ProductSlot) AppState {
	return AppState{
		Customer: CustomerInfo{Name: "Tan Ah Kow", Age: 33},
		Slots:    slots,
		Medical:  FixedMedicalCard,
		Advisor:  AdvisorInfo{Name: "Lim", Contact: "012-3456789"},
		Date:     date(2024, time.January, 1),
	}
}

func sectionKeys(cmp Comparison) []string {
	keys := make([]string, len(cmp.Sections))
	for i, s := range cmp.Sections {
		keys[i] = s.Key
	}
	return keys
}

func TestBuildComparison_SectionOrder(t *testing.T) {
	cmp := BuildComparison(comparisonState(slotWith(ProductEverlinkPlus, nil)), DefaultComparisonOptions())

	assert.Equal(t, []string{SectionLife, SectionMedical, SectionCI, SectionPA, SectionWaiver, SectionValue, SectionPremium}, sectionKeys(cmp))
	assert.Equal(t, "保障整理表", cmp.Title)
	assert.Equal(t, "01 JAN 2024", cmp.Date)
	assert.Equal(t, "Tan Ah Kow", cmp.CustomerName)
	assert.Equal(t, 33, cmp.CustomerAge)
	assert.Equal(t, FixedMedicalCard.ComplianceNote, cmp.Compliance)
}

func TestBuildComparison_ColumnsPerSlot(t *testing.T) {
	a := slotWith(ProductEverlinkSignature, nil)
	a.LifeSA = 200000
	b := slotWith(ProductUltimateLink, nil)
	b.Name = "Budget"

	cmp := BuildComparison(comparisonState(a, b), DefaultComparisonOptions())

	assert.Equal(t, []string{"方案 A", "Budget"}, cmp.Headers)
	assert.Equal(t, []string{"Everlink Signature", "Ultimate Link"}, cmp.Products)
	for _, section := range cmp.Sections {
		for _, row := range section.Rows {
			assert.Len(t, row.Values, 2, row.Key)
		}
	}

	death := cmp.Section(SectionLife).Row("death_sum")
	require.NotNil(t, death)
	assert.Equal(t, []string{"RM 200,000", "-"}, death.Values)
}

func TestBuildComparison_PlaceholderColumns(t *testing.T) {
	opts := DefaultComparisonOptions()
	opts.Columns = 4

	cmp := BuildComparison(comparisonState(slotWith(ProductEverlinkPlus, nil)), opts)

	assert.Equal(t, []string{"方案 A", "方案 B", "方案 C", "方案 D"}, cmp.Headers)
	assert.Equal(t, []string{"Everlink Plus", "-", "-", "-"}, cmp.Products)
	for _, section := range cmp.Sections {
		for _, row := range section.Rows {
			require.Len(t, row.Values, 4)
			assert.Equal(t, []string{"-", "-", "-"}, row.Values[1:], row.Key)
		}
	}
}

func TestBuildComparison_EnglishLabels(t *testing.T) {
	opts := ComparisonOptions{Lang: LangEN}
	cmp := BuildComparison(comparisonState(slotWith(ProductEverlinkPlus, nil)), opts)

	assert.Equal(t, "PROTECTION SUMMARY", cmp.Title)
	assert.Equal(t, []string{"Plan A"}, cmp.Headers)
	assert.Equal(t, "CRITICAL ILLNESS", cmp.Section(SectionCI).Title)
	assert.Equal(t, "Severe Stage", cmp.Section(SectionCI).Row("severe").Label)
}

func TestBuildComparison_ZeroValuesShowDash(t *testing.T) {
	cmp := BuildComparison(comparisonState(slotWith(ProductEverlinkPlus, nil)), DefaultComparisonOptions())

	for _, key := range []string{"death_sum", "tpd_sum"} {
		assert.Equal(t, []string{"-"}, cmp.Section(SectionLife).Row(key).Values)
	}
	for _, key := range []string{"acc_death", "outpatient", "weekly"} {
		assert.Equal(t, []string{"-"}, cmp.Section(SectionPA).Row(key).Values)
	}
	assert.Equal(t, []string{"-"}, cmp.Section(SectionMedical).Row("annual_limit").Values)
	assert.Equal(t, []string{"-"}, cmp.Section(SectionWaiver).Row("waiver_ci").Values)
	assert.Equal(t, []string{"-"}, cmp.Section(SectionPremium).Row("premium_age1").Values)
}

func TestBuildComparison_ConditionalCIRows(t *testing.T) {
	plain := slotWith(ProductUltimateLink, map[RiderID]int64{RiderHealthCover: 100000}, RiderHealthCover)

	cmp := BuildComparison(comparisonState(plain), DefaultComparisonOptions())
	ci := cmp.Section(SectionCI)
	for _, key := range []string{"diabetes_recovery", "cancer_recovery", "crisis_recovery", "maternity", "jaundice", "baby_congenital"} {
		assert.Nil(t, ci.Row(key), key)
	}
	assert.Equal(t, []string{"RM 100,000 (36种严重疾病)"}, ci.Row("total_ci").Values)

	prime := slotWith(ProductUltimateLink, map[RiderID]int64{RiderPrimeCarePlus: 100000}, RiderPrimeCarePlus)
	cmp = BuildComparison(comparisonState(plain, prime), DefaultComparisonOptions())
	ci = cmp.Section(SectionCI)
	require.NotNil(t, ci.Row("diabetes_recovery"))
	assert.Equal(t, []string{"-", "RM 30,000"}, ci.Row("diabetes_recovery").Values)
	assert.Equal(t, []string{"-", "RM 20,000"}, ci.Row("cancer_recovery").Values)
	assert.Equal(t, []string{"-", "RM 20,000"}, ci.Row("crisis_recovery").Values)
	assert.Equal(t, []string{"-", "RM 50,000"}, ci.Row("early").Values)
}

func TestBuildComparison_MaternityRows(t *testing.T) {
	mother := slotWith(ProductAssuredLink,
		map[RiderID]int64{RiderPreciousCover: 50000},
		RiderPreciousCover)
	mother.JaundiceAmount = 500
	other := slotWith(ProductUltimateLink, nil)

	cmp := BuildComparison(comparisonState(mother, other), DefaultComparisonOptions())
	ci := cmp.Section(SectionCI)
	require.NotNil(t, ci.Row("maternity"))
	assert.Equal(t, []string{"RM 50,000", "-"}, ci.Row("maternity").Values)
	assert.Equal(t, []string{"RM 500", "-"}, ci.Row("jaundice").Values)
	assert.Nil(t, ci.Row("baby_congenital"))
}

func TestBuildComparison_JaundiceShownWheneverSet(t *testing.T) {
	plain := slotWith(ProductUltimateLink, nil)
	plain.JaundiceAmount = 2000
	other := slotWith(ProductAssuredLink, nil)

	cmp := BuildComparison(comparisonState(plain, other), DefaultComparisonOptions())
	ci := cmp.Section(SectionCI)
	assert.Nil(t, ci.Row("maternity"))
	require.NotNil(t, ci.Row("jaundice"))
	assert.Equal(t, []string{"RM 2,000", "-"}, ci.Row("jaundice").Values)
}

func TestBuildComparison_WaiverAndValueRows(t *testing.T) {
	slot := slotWith(ProductEverlinkSignature,
		map[RiderID]int64{RiderAssuredLove: 20000},
		RiderPayorCover, RiderSecureCover, RiderAssuredLove)
	slot.LifeSA = 200000
	slot.SecureCoverParent = ParentFather

	cmp := BuildComparison(comparisonState(slot), DefaultComparisonOptions())

	assert.Equal(t, []string{"受保人 豁免 / 父亲 豁免"}, cmp.Section(SectionWaiver).Row("waiver_ci").Values)
	assert.Equal(t, []string{"18% 保额奖励 (RM 36,000)"}, cmp.Section(SectionValue).Row("maturity").Values)
	assert.Equal(t, []string{"5年 / RM 20,000"}, cmp.Section(SectionValue).Row("assured_love").Values)
}

func TestBuildComparison_PremiumLabelsFollowFirstSlot(t *testing.T) {
	slot := slotWith(ProductEverlinkPlus, nil)
	slot.Age1, slot.Age2 = 60, 100
	slot.Premium70 = 350
	slot.Premium80 = 420

	cmp := BuildComparison(comparisonState(slot), ComparisonOptions{Lang: LangEN})
	premium := cmp.Section(SectionPremium)
	require.Len(t, premium.Rows, 2)
	assert.Equal(t, "Option A: Age 60", premium.Rows[0].Label)
	assert.Equal(t, "Option B: Age 100", premium.Rows[1].Label)
	assert.Equal(t, []string{"RM 350"}, premium.Rows[0].Values)
	assert.Equal(t, []string{"RM 420"}, premium.Rows[1].Values)
}

func TestBuildComparison_RiderDetails(t *testing.T) {
	a := slotWith(ProductUltimateLink, map[RiderID]int64{RiderPrimeCarePlus: 100000}, RiderPrimeCarePlus, RiderPayorCover)
	b := slotWith(ProductUltimateLink, nil, RiderPayorCover, RiderHealthInsured)

	cmp := BuildComparison(comparisonState(a, b), DefaultComparisonOptions())

	details := cmp.RiderDetails
	require.Len(t, details.Rows, 3)
	assert.Equal(t, "PrimeCare+", details.Rows[0].Label)
	assert.Equal(t, []string{"RM 100,000", "-"}, details.Rows[0].Values)
	assert.Equal(t, []string{"✅ 已包含", "✅ 已包含"}, details.Rows[1].Values)
	assert.Equal(t, []string{"-", "✅ 已包含"}, details.Rows[2].Values)
	assert.Same(t, &cmp.RiderDetails, cmp.Section(SectionRiderList))
}

func TestBuildComparison_ReflectsEditsImmediately(t *testing.T) {
	slot := slotWith(ProductEverlinkSignature, nil)
	slot.LifeSA = 100000
	state := comparisonState(slot)

	first := BuildComparison(state, DefaultComparisonOptions())
	state.Slots[0].LifeSA = 200000
	second := BuildComparison(state, DefaultComparisonOptions())

	assert.Equal(t, []string{"RM 100,000"}, first.Section(SectionLife).Row("death_sum").Values)
	assert.Equal(t, []string{"RM 200,000"}, second.Section(SectionLife).Row("death_sum").Values)
	assert.Equal(t, []string{"18% 保额奖励 (RM 36,000)"}, second.Section(SectionValue).Row("maturity").Values)
}

func TestRiderUnion(t *testing.T) {
	slots := []ProductSlot{
		slotWith(ProductUltimateLink, nil, RiderPayorCover, RiderHealthCover),
		slotWith(ProductUltimateLink, nil, RiderHealthCover, RiderSecureCover),
		slotWith(ProductEverlinkPlus, nil),
	}
	assert.Equal(t, []RiderID{RiderPayorCover, RiderHealthCover, RiderSecureCover}, RiderUnion(slots))
	assert.Empty(t, RiderUnion(nil))
}
