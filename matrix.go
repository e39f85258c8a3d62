package main

import (
	"fmt"
	"strings"
	"time"
)

// Section keys in display order
const (
	SectionLife      = "life"
	SectionMedical   = "med"
	SectionCI        = "ci"
	SectionPA        = "pa"
	SectionWaiver    = "waiver"
	SectionValue     = "value"
	SectionPremium   = "premium"
	SectionRiderList = "riders"
)

// sectionOrder is the fixed grouping order of the comparison
var sectionOrder = []string{
	SectionLife, SectionMedical, SectionCI, SectionPA, SectionWaiver, SectionValue, SectionPremium,
}

// ComparisonOptions controls labels and layout of a comparison
type ComparisonOptions struct {
	Lang     Lang
	Currency string
	Columns  int // Pad to this many columns with placeholders; 0 = one column per slot
}

// DefaultComparisonOptions returns Chinese labels in ringgit with one column per slot
func DefaultComparisonOptions() ComparisonOptions {
	return ComparisonOptions{Lang: LangCN, Currency: DefaultCurrency}
}

// ComparisonRow is one benefit attribute across all slots
type ComparisonRow struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// ComparisonSection groups related rows
type ComparisonSection struct {
	Key   string          `json:"key"`
	Title string          `json:"title"`
	Rows  []ComparisonRow `json:"rows"`
}

// Comparison is the fully formatted view model of the comparison report
type Comparison struct {
	Lang         Lang                `json:"lang"`
	Title        string              `json:"title"`
	Subtitle     string              `json:"subtitle"`
	CustomerName string              `json:"customer_name"`
	CustomerAge  int                 `json:"customer_age"`
	Date         string              `json:"date"`
	Headers      []string            `json:"headers"`
	Products     []string            `json:"products"`
	Sections     []ComparisonSection `json:"sections"`
	RiderDetails ComparisonSection   `json:"rider_details"`
	Advisor      AdvisorInfo         `json:"advisor"`
	Footer       string              `json:"footer"`
	Compliance   string              `json:"compliance"`
}

// RowCount returns the number of rows across the main sections
func (c *Comparison) RowCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Rows)
	}
	return n
}

// Section returns the section with the given key, or nil
func (c *Comparison) Section(key string) *ComparisonSection {
	for i := range c.Sections {
		if c.Sections[i].Key == key {
			return &c.Sections[i]
		}
	}
	if key == SectionRiderList {
		return &c.RiderDetails
	}
	return nil
}

// Row returns the row with the given key, or nil
func (s *ComparisonSection) Row(key string) *ComparisonRow {
	for i := range s.Rows {
		if s.Rows[i].Key == key {
			return &s.Rows[i]
		}
	}
	return nil
}

// RiderUnion returns every rider selected in any slot, deduplicated in first-seen order
func RiderUnion(slots []ProductSlot) []RiderID {
	seen := make(map[RiderID]bool)
	var union []RiderID
	for _, s := range slots {
		for _, r := range s.Riders {
			if !seen[r] {
				seen[r] = true
				union = append(union, r)
			}
		}
	}
	return union
}

// FormatReportDate formats a date as "02 JAN 2006"
func FormatReportDate(t time.Time) string {
	return strings.ToUpper(t.Format("02 Jan 2006"))
}

// BuildComparison assembles the comparison view model. Nothing is cached: the
// slots are resolved again on every call.
func BuildComparison(state AppState, opts ComparisonOptions) Comparison {
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	lang := opts.Lang
	if lang == "" {
		lang = LangCN
	}

	benefits := ResolveAll(state.Slots)
	cols := len(benefits)
	if opts.Columns > cols {
		cols = opts.Columns
	}
	b := &matrixBuilder{
		lang:     lang,
		currency: opts.Currency,
		benefits: benefits,
		cols:     cols,
	}

	cmp := Comparison{
		Lang:         lang,
		Title:        L(lang, "title"),
		Subtitle:     L(lang, "subtitle"),
		CustomerName: state.Customer.Name,
		CustomerAge:  state.Customer.Age,
		Advisor:      state.Advisor,
		Footer:       L(lang, "footer"),
		Compliance:   state.Medical.ComplianceNote,
	}
	if !state.Date.IsZero() {
		cmp.Date = FormatReportDate(state.Date)
	}

	for i := 0; i < cols; i++ {
		if i < len(benefits) {
			cmp.Headers = append(cmp.Headers, slotHeader(lang, benefits[i].Name, i))
			cmp.Products = append(cmp.Products, string(benefits[i].Product))
		} else {
			cmp.Headers = append(cmp.Headers, slotHeader(lang, "", i))
			cmp.Products = append(cmp.Products, Dash)
		}
	}

	for _, key := range sectionOrder {
		section := ComparisonSection{Key: key, Title: L(lang, key)}
		switch key {
		case SectionLife:
			section.Rows = b.lifeRows()
		case SectionMedical:
			section.Rows = b.medicalRows()
		case SectionCI:
			section.Rows = b.ciRows()
		case SectionPA:
			section.Rows = b.paRows()
		case SectionWaiver:
			section.Rows = b.waiverRows()
		case SectionValue:
			section.Rows = b.valueRows()
		case SectionPremium:
			section.Rows = b.premiumRows()
		}
		cmp.Sections = append(cmp.Sections, section)
	}

	cmp.RiderDetails = b.riderDetails(state.Slots)
	return cmp
}

type matrixBuilder struct {
	lang     Lang
	currency string
	benefits []SlotBenefits
	cols     int
}

// row builds one row, calling value for each real slot and padding placeholders with a dash
func (m *matrixBuilder) row(key string, value func(b *SlotBenefits) string) ComparisonRow {
	r := ComparisonRow{Key: key, Label: L(m.lang, key), Values: make([]string, m.cols)}
	for i := 0; i < m.cols; i++ {
		if i < len(m.benefits) {
			r.Values[i] = value(&m.benefits[i])
		} else {
			r.Values[i] = Dash
		}
	}
	return r
}

func (m *matrixBuilder) any(pred func(b *SlotBenefits) bool) bool {
	for i := range m.benefits {
		if pred(&m.benefits[i]) {
			return true
		}
	}
	return false
}

func (m *matrixBuilder) money(amount int64) string {
	return FormatCurrency(m.currency, amount)
}

func (m *matrixBuilder) lifeRows() []ComparisonRow {
	life := func(b *SlotBenefits) string { return m.money(b.LifeSA) }
	return []ComparisonRow{
		m.row("death_sum", life),
		m.row("tpd_sum", life),
	}
}

func (m *matrixBuilder) medicalRows() []ComparisonRow {
	medical := func(f func(p *MedicalPreset) string) func(b *SlotBenefits) string {
		return func(b *SlotBenefits) string {
			if b.Medical == nil {
				return Dash
			}
			return f(b.Medical)
		}
	}
	return []ComparisonRow{
		m.row("annual_limit", medical(func(p *MedicalPreset) string { return m.money(p.AnnualLimit) })),
		m.row("lifetime_limit", medical(func(p *MedicalPreset) string { return L(m.lang, "unlimited") })),
		m.row("room_board", medical(func(p *MedicalPreset) string { return m.money(p.RoomAndBoard) })),
		m.row("medical_costs", medical(func(p *MedicalPreset) string {
			if p.CoPayPercent > 0 {
				return fmt.Sprintf("%d%% / Max %s%s", p.CoPayPercent, m.currency, FormatThousands(p.CoPayCap))
			}
			return m.money(p.Deductible)
		})),
		m.row("icu", medical(func(p *MedicalPreset) string { return daysLabel(m.lang, p.ICUDays) })),
		m.row("cancer_dialysis", medical(func(p *MedicalPreset) string { return L(m.lang, "covered") })),
		m.row("pre_post", medical(func(p *MedicalPreset) string {
			return prePostLabel(m.lang, p.PreAdmitDays, p.PostDischargeDays)
		})),
	}
}

func (m *matrixBuilder) ciRows() []ComparisonRow {
	rows := []ComparisonRow{
		m.row("total_ci", func(b *SlotBenefits) string {
			if b.CITotalSA <= 0 {
				return Dash
			}
			text := m.money(b.CITotalSA)
			if spec := defaultCatalog.Rider(b.CIRider); spec != nil {
				text += " (" + spec.Description(m.lang) + ")"
			}
			return text
		}),
		m.row("severe", func(b *SlotBenefits) string { return FormatDecimal(m.currency, b.SeverePayout) }),
		m.row("intermediate", func(b *SlotBenefits) string { return FormatDecimal(m.currency, b.IntermediatePayout) }),
		m.row("early", func(b *SlotBenefits) string { return FormatDecimal(m.currency, b.EarlyPayout) }),
	}

	// Rider-specific rows only when at least one slot qualifies
	if m.any(func(b *SlotBenefits) bool { return b.DiabetesBonus > 0 || b.CancerBonus > 0 }) {
		rows = append(rows,
			m.row("diabetes_recovery", func(b *SlotBenefits) string { return m.money(b.DiabetesBonus) }),
			m.row("cancer_recovery", func(b *SlotBenefits) string { return m.money(b.CancerBonus) }),
		)
	}
	if m.any(func(b *SlotBenefits) bool { return b.CrisisRecovery.IsPositive() }) {
		rows = append(rows, m.row("crisis_recovery", func(b *SlotBenefits) string {
			return FormatDecimal(m.currency, b.CrisisRecovery)
		}))
	}
	if m.any(func(b *SlotBenefits) bool { return b.ChildCover }) {
		rows = append(rows, m.row("baby_congenital", func(b *SlotBenefits) string {
			if !b.ChildCover {
				return Dash
			}
			return m.money(b.ChildSA)
		}))
	}
	if m.any(func(b *SlotBenefits) bool { return b.Maternity }) {
		rows = append(rows, m.row("maternity", func(b *SlotBenefits) string {
			if !b.Maternity {
				return Dash
			}
			return m.money(b.MaternitySA)
		}))
	}
	if m.any(func(b *SlotBenefits) bool { return b.JaundiceAmount > 0 }) {
		rows = append(rows, m.row("jaundice", func(b *SlotBenefits) string { return m.money(b.JaundiceAmount) }))
	}
	return rows
}

func (m *matrixBuilder) paRows() []ComparisonRow {
	return []ComparisonRow{
		m.row("acc_death", func(b *SlotBenefits) string { return m.money(b.PADeathSA) }),
		m.row("outpatient", func(b *SlotBenefits) string { return m.money(b.PAMinorLimit) }),
		m.row("weekly", func(b *SlotBenefits) string {
			if b.PAWeeklyIndemnity <= 0 {
				return Dash
			}
			return weeklyLabel(m.lang, m.currency, b.PAWeeklyIndemnity)
		}),
	}
}

func (m *matrixBuilder) waiverRows() []ComparisonRow {
	return []ComparisonRow{
		m.row("waiver_ci", func(b *SlotBenefits) string {
			var parts []string
			if b.SelfWaiver {
				parts = append(parts, L(m.lang, "self_waiver"))
			}
			if b.ParentWaiver {
				parts = append(parts, b.WaiverParent.Label(m.lang)+" "+L(m.lang, "waiver_suffix"))
			}
			if len(parts) == 0 {
				return Dash
			}
			return strings.Join(parts, " / ")
		}),
	}
}

func (m *matrixBuilder) valueRows() []ComparisonRow {
	rows := []ComparisonRow{
		m.row("cash_value", func(b *SlotBenefits) string { return L(m.lang, "yes") }),
		m.row("maturity", func(b *SlotBenefits) string {
			if !b.ShowLoyalty || !b.LoyaltyBonus.IsPositive() {
				return Dash
			}
			return L(m.lang, "loyalty") + " (" + FormatDecimal(m.currency, b.LoyaltyBonus) + ")"
		}),
	}
	if m.any(func(b *SlotBenefits) bool { return b.AssuredLove }) {
		rows = append(rows, m.row("assured_love", func(b *SlotBenefits) string {
			if !b.AssuredLove {
				return Dash
			}
			text := yearsLabel(m.lang, b.AssuredLoveYears)
			if b.AssuredLoveSA > 0 {
				text += " / " + m.money(b.AssuredLoveSA)
			}
			return text
		}))
	}
	return rows
}

func (m *matrixBuilder) premiumRows() []ComparisonRow {
	// Age labels follow the first slot, matching the single header of the printed table
	age1, age2 := 70, 80
	if len(m.benefits) > 0 {
		if m.benefits[0].Age1 > 0 {
			age1 = m.benefits[0].Age1
		}
		if m.benefits[0].Age2 > 0 {
			age2 = m.benefits[0].Age2
		}
	}
	first := m.row("premium_age1", func(b *SlotBenefits) string { return m.money(b.Premium1) })
	first.Label = premiumAgeLabel(m.lang, "A", age1)
	second := m.row("premium_age2", func(b *SlotBenefits) string { return m.money(b.Premium2) })
	second.Label = premiumAgeLabel(m.lang, "B", age2)
	return []ComparisonRow{first, second}
}

// riderDetails lists the union of riders with each slot's sum assured
func (m *matrixBuilder) riderDetails(slots []ProductSlot) ComparisonSection {
	section := ComparisonSection{Key: SectionRiderList, Title: L(m.lang, SectionRiderList)}
	for _, id := range RiderUnion(slots) {
		rider := id
		row := m.row(string(rider), func(b *SlotBenefits) string {
			for _, d := range b.Riders {
				if d.ID != rider {
					continue
				}
				if d.SA > 0 {
					return m.money(d.SA)
				}
				return L(m.lang, "included")
			}
			return Dash
		})
		row.Label = string(rider)
		section.Rows = append(section.Rows, row)
	}
	return section
}
