package main

import "github.com/shopspring/decimal"

// loyaltyBonusRate is the share of life sum assured paid as a maturity loyalty bonus
var loyaltyBonusRate = decimal.RequireFromString("0.18")

// crisisRecoveryRate is the PrimeCare+ crisis recovery benefit as a share of the CI sum assured
var crisisRecoveryRate = decimal.RequireFromString("0.2")

// minorAccidentLimit is the outpatient limit for minor accident treatment
const minorAccidentLimit int64 = 2000

// RiderDetail is one selected rider with its sum assured, if it takes one
type RiderDetail struct {
	ID       RiderID
	Kind     RiderKind
	SA       int64
	TakesSum bool
}

// SlotBenefits is the derived benefit record of one slot
type SlotBenefits struct {
	Name    string
	Product ProductID

	// Life protection
	LifeSA       int64
	LoyaltyBonus decimal.Decimal // Always computed
	ShowLoyalty  bool            // Only products with a maturity bonus display it

	// Critical illness
	CIRider            RiderID // Richest CI rider selected, empty if none
	CITier             CITier
	CITotalSA          int64
	SeverePayout       decimal.Decimal
	IntermediatePayout decimal.Decimal
	EarlyPayout        decimal.Decimal
	DiabetesBonus      int64
	CancerBonus        int64
	CrisisRecovery     decimal.Decimal // Zero unless the top-tier rider is selected

	// Medical card
	MedicalRider RiderID
	Medical      *MedicalPreset

	// Personal accident
	PADeathSA         int64
	PAWeeklyIndemnity int64
	PAMinorAccident   bool
	PAMinorLimit      int64

	// Premium waiver
	SelfWaiver   bool
	ParentWaiver bool
	WaiverParent Parent

	// Maternity and child cover
	Maternity      bool
	MaternitySA    int64
	JaundiceAmount int64 // Carried whenever set, maternity rider or not
	ChildCover     bool
	ChildSA        int64

	// Savings
	AssuredLove      bool
	AssuredLoveYears int
	AssuredLoveSA    int64

	// Premium summary
	Age1     int
	Premium1 int64
	Age2     int
	Premium2 int64

	Riders []RiderDetail
}

// ResolveSlot derives the benefit record of a slot using the default catalog
func ResolveSlot(slot ProductSlot) SlotBenefits {
	return defaultCatalog.ResolveSlot(slot)
}

// ResolveSlot derives the benefit record of a slot. It is pure and is called on
// every render so derived values always match their inputs.
func (c *Catalog) ResolveSlot(slot ProductSlot) SlotBenefits {
	b := SlotBenefits{
		Name:              slot.Name,
		Product:           slot.Product,
		LifeSA:            slot.LifeSA,
		LoyaltyBonus:      decimal.NewFromInt(slot.LifeSA).Mul(loyaltyBonusRate),
		PAWeeklyIndemnity: slot.PAWeeklyIndemnity,
		PAMinorAccident:   slot.PAMinorAccident,
		JaundiceAmount:    slot.JaundiceAmount,
		Age1:              slot.Age1,
		Premium1:          slot.Premium70,
		Age2:              slot.Age2,
		Premium2:          slot.Premium80,
	}
	if p := c.Product(slot.Product); p != nil {
		b.ShowLoyalty = p.LoyaltyBonus
	}
	if b.PAMinorAccident {
		b.PAMinorLimit = minorAccidentLimit
	}

	var ciRiders []*RiderSpec
	for _, id := range slot.Riders {
		spec := c.Rider(id)
		if spec == nil {
			continue
		}
		b.Riders = append(b.Riders, RiderDetail{
			ID:       id,
			Kind:     spec.Kind,
			SA:       slot.RiderSA(id),
			TakesSum: spec.TakesSum,
		})

		switch spec.Kind {
		case RiderKindCI:
			ciRiders = append(ciRiders, spec)
		case RiderKindMedical:
			// Health Assured outranks Health Insured if both are somehow present
			if b.Medical == nil || spec.Medical.AnnualLimit > b.Medical.AnnualLimit {
				b.MedicalRider = id
				b.Medical = spec.Medical
			}
		case RiderKindSelfWaiver:
			b.SelfWaiver = true
		case RiderKindParentWaiver:
			b.ParentWaiver = true
			b.WaiverParent = slot.SecureCoverParent
			if b.WaiverParent == "" {
				b.WaiverParent = ParentMother
			}
		case RiderKindMaternity:
			b.Maternity = true
		case RiderKindChild:
			b.ChildCover = true
		case RiderKindSavings:
			b.AssuredLove = true
			b.AssuredLoveYears = slot.AssuredLoveOption.Years()
			b.AssuredLoveSA = slot.RiderSA(id)
		}
	}

	c.resolveCI(&b, slot, ciRiders)
	b.PADeathSA = firstNonZero(slot.PASA, slot.RiderSA(RiderPersonalAccident), slot.RiderSA(RiderPAPlus))

	if b.Maternity {
		b.MaternitySA = firstNonZero(slot.RiderSA(RiderPreciousCover), b.CITotalSA)
	}
	if b.ChildCover {
		b.ChildSA = firstNonZero(slot.RiderSA(RiderBabyCover), b.CITotalSA)
	}

	return b
}

// resolveCI picks the richest CI rider and applies its tier's rule
func (c *Catalog) resolveCI(b *SlotBenefits, slot ProductSlot, ciRiders []*RiderSpec) {
	var top *RiderSpec
	for _, spec := range ciRiders {
		if top == nil || spec.Tier.Rank() > top.Tier.Rank() {
			top = spec
		}
	}

	if top == nil {
		b.CITier = slot.CITier
		if b.CITier == TierNone {
			b.CITier = Tier36
		}
		b.CITotalSA = slot.CISA
	} else {
		b.CIRider = top.ID
		b.CITier = top.Tier
		b.CITotalSA = slot.RiderSA(top.ID)
		// Other CI riders' sums, richest first, then the slot default
		for tier := top.Tier.Rank() - 1; b.CITotalSA == 0 && tier > 0; tier-- {
			for _, spec := range ciRiders {
				if spec.Tier.Rank() == tier && slot.RiderSA(spec.ID) > 0 {
					b.CITotalSA = slot.RiderSA(spec.ID)
					break
				}
			}
		}
		if b.CITotalSA == 0 {
			b.CITotalSA = slot.CISA
		}
	}

	rule := CIRuleFor(b.CITier)
	sa := decimal.NewFromInt(b.CITotalSA)
	b.SeverePayout = sa.Mul(rule.Severe)
	b.IntermediatePayout = sa.Mul(rule.Intermediate)
	b.EarlyPayout = sa.Mul(rule.Early)

	// Recovery bonuses belong to the named top-tier rider, not to the tier itself
	if b.CIRider == RiderPrimeCarePlus {
		b.DiabetesBonus = rule.DiabetesRecovery
		b.CancerBonus = rule.CancerRecovery
		b.CrisisRecovery = sa.Mul(crisisRecoveryRate)
	}
}

// HasCI reports whether the slot carries any critical illness cover
func (b *SlotBenefits) HasCI() bool {
	return b.CIRider != "" || b.CITotalSA > 0
}

// HasPA reports whether the slot carries personal accident cover
func (b *SlotBenefits) HasPA() bool {
	return b.PADeathSA > 0 || b.PAWeeklyIndemnity > 0 || b.PAMinorAccident
}

// ResolveAll resolves every slot of a snapshot in order
func ResolveAll(slots []ProductSlot) []SlotBenefits {
	result := make([]SlotBenefits, len(slots))
	for i, s := range slots {
		result[i] = ResolveSlot(s)
	}
	return result
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
