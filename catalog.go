package main

import "fmt"

// ProductID names a base insurance plan
type ProductID string

const (
	ProductEverlinkSignature ProductID = "Everlink Signature"
	ProductEverlinkPlus      ProductID = "Everlink Plus"
	ProductUltimateLink      ProductID = "Ultimate Link"
	ProductAssuredLink       ProductID = "Assured Link"
)

// RiderID names an add-on benefit
type RiderID string

const (
	RiderPayorCover       RiderID = "Payor Cover"
	RiderSecureCover      RiderID = "Secure Cover"
	RiderHealthCover      RiderID = "HealthCover"
	RiderHealthCoverPlus  RiderID = "HealthCover Plus"
	RiderPrimeCarePlus    RiderID = "PrimeCare+"
	RiderPAPlus           RiderID = "PA Plus"
	RiderPersonalAccident RiderID = "Personal Accident"
	RiderAssuredLove      RiderID = "AssuredLove"
	RiderHealthAssured    RiderID = "Health Assured"
	RiderHealthInsured    RiderID = "Health Insured"
	RiderPreciousCover    RiderID = "PreciousCover"
	RiderBabyCover        RiderID = "BabyCover"
)

// Product describes a base plan and the riders that may be attached to it
type Product struct {
	ID            ProductID
	Riders        []RiderID // Display order
	LoyaltyBonus  bool      // Shows the 18% sum assured maturity bonus
	DescriptionCN string
	DescriptionEN string
	allowedRiders map[RiderID]bool
}

// Allows reports whether the rider can be attached to this product
func (p *Product) Allows(id RiderID) bool {
	return p.allowedRiders[id]
}

// RiderSpec carries everything the resolver needs to know about a rider
type RiderSpec struct {
	ID       RiderID
	Kind     RiderKind
	TakesSum bool           // Whether a sum assured is entered for it
	Tier     CITier         // For RiderKindCI
	Medical  *MedicalPreset // For RiderKindMedical
	NameCN   string
	NameEN   string
}

// MedicalPreset holds the fixed figures of a medical card rider
type MedicalPreset struct {
	AnnualLimit       int64
	RoomAndBoard      int64
	CoPayPercent      int   // Zero when a flat deductible applies instead
	CoPayCap          int64 // Yearly cap on the co-payment
	Deductible        int64
	ICUDays           int
	PreAdmitDays      int
	PostDischargeDays int
}

var healthAssuredPreset = MedicalPreset{
	AnnualLimit:       5000000,
	RoomAndBoard:      200,
	CoPayPercent:      15,
	CoPayCap:          2500,
	ICUDays:           365,
	PreAdmitDays:      90,
	PostDischargeDays: 180,
}

var healthInsuredPreset = MedicalPreset{
	AnnualLimit:       2000000,
	RoomAndBoard:      200,
	Deductible:        5000,
	ICUDays:           150,
	PreAdmitDays:      90,
	PostDischargeDays: 180,
}

// Catalog holds the products and riders on offer
type Catalog struct {
	products     map[ProductID]*Product
	productOrder []ProductID
	riders       map[RiderID]*RiderSpec
	riderOrder   []RiderID
}

// NewCatalog creates a catalog with all standard products and riders
func NewCatalog() *Catalog {
	c := &Catalog{
		products: make(map[ProductID]*Product),
		riders:   make(map[RiderID]*RiderSpec),
	}

	// Riders first so products can be checked against them
	c.RegisterRider(&RiderSpec{ID: RiderHealthCover, Kind: RiderKindCI, TakesSum: true, Tier: Tier36, NameCN: "36种严重疾病", NameEN: "36 severe illnesses"})
	c.RegisterRider(&RiderSpec{ID: RiderHealthCoverPlus, Kind: RiderKindCI, TakesSum: true, Tier: Tier77, NameCN: "包括中期疾病", NameEN: "incl. intermediate stage"})
	c.RegisterRider(&RiderSpec{ID: RiderPrimeCarePlus, Kind: RiderKindCI, TakesSum: true, Tier: Tier157, NameCN: "包括初期疾病", NameEN: "incl. early stage"})
	c.RegisterRider(&RiderSpec{ID: RiderHealthAssured, Kind: RiderKindMedical, Medical: &healthAssuredPreset, NameCN: "医药卡", NameEN: "Medical card"})
	c.RegisterRider(&RiderSpec{ID: RiderHealthInsured, Kind: RiderKindMedical, Medical: &healthInsuredPreset, NameCN: "医药卡", NameEN: "Medical card"})
	c.RegisterRider(&RiderSpec{ID: RiderPayorCover, Kind: RiderKindSelfWaiver, NameCN: "受保人豁免", NameEN: "Insured waiver"})
	c.RegisterRider(&RiderSpec{ID: RiderSecureCover, Kind: RiderKindParentWaiver, NameCN: "父母豁免", NameEN: "Parent waiver"})
	c.RegisterRider(&RiderSpec{ID: RiderPersonalAccident, Kind: RiderKindAccident, TakesSum: true, NameCN: "意外保障", NameEN: "Personal accident"})
	c.RegisterRider(&RiderSpec{ID: RiderPAPlus, Kind: RiderKindAccident, TakesSum: true, NameCN: "意外保障", NameEN: "Personal accident"})
	c.RegisterRider(&RiderSpec{ID: RiderPreciousCover, Kind: RiderKindMaternity, TakesSum: true, NameCN: "母婴保障", NameEN: "Maternity"})
	c.RegisterRider(&RiderSpec{ID: RiderBabyCover, Kind: RiderKindChild, TakesSum: true, NameCN: "小孩先天性疾病", NameEN: "Child congenital"})
	c.RegisterRider(&RiderSpec{ID: RiderAssuredLove, Kind: RiderKindSavings, TakesSum: true, NameCN: "储蓄计划", NameEN: "Savings plan"})

	everlinkRiders := []RiderID{RiderPayorCover, RiderSecureCover, RiderHealthCover, RiderPAPlus, RiderAssuredLove}
	c.mustRegisterProduct(&Product{
		ID:            ProductEverlinkSignature,
		Riders:        everlinkRiders,
		LoyaltyBonus:  true,
		DescriptionCN: "投资型人寿保险，满期享18%保额奖励",
		DescriptionEN: "Investment-linked life plan with an 18% sum assured loyalty bonus",
	})
	c.mustRegisterProduct(&Product{
		ID:            ProductEverlinkPlus,
		Riders:        everlinkRiders,
		DescriptionCN: "投资型人寿保险",
		DescriptionEN: "Investment-linked life plan",
	})
	c.mustRegisterProduct(&Product{
		ID: ProductUltimateLink,
		Riders: []RiderID{
			RiderHealthInsured, RiderHealthCover, RiderHealthCoverPlus, RiderPrimeCarePlus,
			RiderPersonalAccident, RiderPayorCover, RiderSecureCover,
		},
		DescriptionCN: "全面保障投资型保险",
		DescriptionEN: "Comprehensive investment-linked plan",
	})
	c.mustRegisterProduct(&Product{
		ID: ProductAssuredLink,
		Riders: []RiderID{
			RiderHealthAssured, RiderHealthCoverPlus, RiderPreciousCover, RiderBabyCover,
			RiderPersonalAccident, RiderPayorCover, RiderSecureCover,
		},
		DescriptionCN: "医药与母婴保障投资型保险",
		DescriptionEN: "Investment-linked plan with medical and maternity cover",
	})

	return c
}

// RegisterRider adds a rider to the catalog
func (c *Catalog) RegisterRider(r *RiderSpec) {
	if _, exists := c.riders[r.ID]; !exists {
		c.riderOrder = append(c.riderOrder, r.ID)
	}
	c.riders[r.ID] = r
}

// RegisterProduct adds a product; all of its riders must already be registered
func (c *Catalog) RegisterProduct(p *Product) error {
	p.allowedRiders = make(map[RiderID]bool, len(p.Riders))
	for _, id := range p.Riders {
		if _, ok := c.riders[id]; !ok {
			return fmt.Errorf("product %s: unknown rider %q", p.ID, id)
		}
		p.allowedRiders[id] = true
	}
	if _, exists := c.products[p.ID]; !exists {
		c.productOrder = append(c.productOrder, p.ID)
	}
	c.products[p.ID] = p
	return nil
}

func (c *Catalog) mustRegisterProduct(p *Product) {
	if err := c.RegisterProduct(p); err != nil {
		panic(err)
	}
}

// Product returns a product by ID, or nil if unknown
func (c *Catalog) Product(id ProductID) *Product {
	return c.products[id]
}

// Rider returns a rider by ID, or nil if unknown
func (c *Catalog) Rider(id RiderID) *RiderSpec {
	return c.riders[id]
}

// Products returns all products in display order
func (c *Catalog) Products() []*Product {
	result := make([]*Product, 0, len(c.productOrder))
	for _, id := range c.productOrder {
		result = append(result, c.products[id])
	}
	return result
}

// RidersFor returns the riders selectable for a product (empty for an unknown product)
func (c *Catalog) RidersFor(id ProductID) []RiderID {
	p := c.products[id]
	if p == nil {
		return nil
	}
	return append([]RiderID(nil), p.Riders...)
}

// Allows reports whether a rider can be attached to a product
func (c *Catalog) Allows(product ProductID, rider RiderID) bool {
	p := c.products[product]
	return p != nil && p.Allows(rider)
}

// defaultCatalog is the process-wide catalog used by the wizard and reports
var defaultCatalog = NewCatalog()

// Riders returns all riders in registration order
func (c *Catalog) Riders() []*RiderSpec {
	result := make([]*RiderSpec, 0, len(c.riderOrder))
	for _, id := range c.riderOrder {
		result = append(result, c.riders[id])
	}
	return result
}

// Description returns the localised rider description
func (r *RiderSpec) Description(lang Lang) string {
	if lang == LangEN {
		return r.NameEN
	}
	return r.NameCN
}
