package main

import (
	"fmt"
	"strings"
)

// WizardStep is one screen of the quote wizard
type WizardStep int

const (
	StepCustomer   WizardStep = iota // Customer name and date of birth
	StepProducts                     // Base product and rider selection per slot
	StepBenefits                     // Sums assured, premiums and rider options
	StepComparison                   // Comparison table and export
)

// LastStep is the terminal wizard step
const LastStep = StepComparison

func (s WizardStep) String() string {
	switch s {
	case StepCustomer:
		return "客户资料"
	case StepProducts:
		return "方案配置"
	case StepBenefits:
		return "保额详情"
	case StepComparison:
		return "保障对比"
	default:
		return "Unknown"
	}
}

// EnglishName returns the English step title
func (s WizardStep) EnglishName() string {
	switch s {
	case StepCustomer:
		return "Customer Profile"
	case StepProducts:
		return "Product Selection"
	case StepBenefits:
		return "Benefit Details"
	case StepComparison:
		return "Comparison"
	default:
		return "Unknown"
	}
}

// CITier is the breadth of critical-illness cover, named after the number of illnesses covered
type CITier int

const (
	TierNone CITier = 0
	Tier36   CITier = 36  // Severe stage only
	Tier77   CITier = 77  // Severe and intermediate
	Tier157  CITier = 157 // Severe, intermediate and early
)

func (t CITier) String() string {
	switch t {
	case Tier36:
		return "36"
	case Tier77:
		return "77"
	case Tier157:
		return "157"
	default:
		return ""
	}
}

// Rank orders tiers by coverage breadth
func (t CITier) Rank() int {
	switch t {
	case Tier36:
		return 1
	case Tier77:
		return 2
	case Tier157:
		return 3
	default:
		return 0
	}
}

// ParseCITier converts "36", "77" or "157" to a tier; anything else is TierNone
func ParseCITier(s string) CITier {
	switch strings.TrimSpace(s) {
	case "36":
		return Tier36
	case "77":
		return Tier77
	case "157":
		return Tier157
	default:
		return TierNone
	}
}

// RiderKind classifies how a rider contributes to the benefit record
type RiderKind int

const (
	RiderKindCI           RiderKind = iota // Critical illness cover with a tier
	RiderKindMedical                       // Fixed medical card preset
	RiderKindSelfWaiver                    // Premium waiver on the insured
	RiderKindParentWaiver                  // Premium waiver on a parent payor
	RiderKindAccident                      // Personal accident cover
	RiderKindMaternity                     // Maternity and jaundice benefits
	RiderKindChild                         // Congenital cover for a child
	RiderKindSavings                       // AssuredLove savings plan
)

func (k RiderKind) String() string {
	switch k {
	case RiderKindCI:
		return "Critical Illness"
	case RiderKindMedical:
		return "Medical Card"
	case RiderKindSelfWaiver:
		return "Self Waiver"
	case RiderKindParentWaiver:
		return "Parent Waiver"
	case RiderKindAccident:
		return "Personal Accident"
	case RiderKindMaternity:
		return "Maternity"
	case RiderKindChild:
		return "Child"
	case RiderKindSavings:
		return "Savings"
	default:
		return "Unknown"
	}
}

// Lang selects report labels
type Lang string

const (
	LangCN Lang = "CN"
	LangEN Lang = "EN"
)

// ParseLang accepts "cn"/"en" in any case and defaults to Chinese
func ParseLang(s string) Lang {
	if strings.EqualFold(strings.TrimSpace(s), "en") {
		return LangEN
	}
	return LangCN
}

// Parent is the payor covered by a Secure Cover waiver
type Parent string

const (
	ParentFather Parent = "Father"
	ParentMother Parent = "Mother"
)

// Label returns the localised parent name
func (p Parent) Label(lang Lang) string {
	if lang == LangEN {
		if p == ParentFather {
			return "Father"
		}
		return "Mother"
	}
	if p == ParentFather {
		return "父亲"
	}
	return "母亲"
}

// AssuredLoveOption is the premium payment term of the AssuredLove rider
type AssuredLoveOption string

const (
	AssuredLove5Years  AssuredLoveOption = "5years"
	AssuredLove10Years AssuredLoveOption = "10years"
)

// Years returns the payment term in years
func (o AssuredLoveOption) Years() int {
	if o == AssuredLove10Years {
		return 10
	}
	return 5
}

// Valid jaundice allowances for PreciousCover
var JaundiceOptions = []int64{500, 1000, 2000}

// Selectable coverage end ages for the two premium options
var CoverageAgeOptions = []int{60, 70, 80, 90, 100}

// MaxSlots is the number of quotes that can be compared side by side
const MaxSlots = 4

// slotLetter returns the letter used in default slot names ("A" for position 0)
func slotLetter(index int) string {
	return fmt.Sprintf("%c", 'A'+rune(index))
}
