package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default-session.yaml
var defaultSessionYAML string

// DateOfBirth is a calendar date entered as separate day, month and year fields
type DateOfBirth struct {
	Day   int `yaml:"day" json:"day"`
	Month int `yaml:"month" json:"month"`
	Year  int `yaml:"year" json:"year"`
}

// String formats the date as DD/MM/YYYY
func (d DateOfBirth) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}

// CustomerInfo is the person the quotes are prepared for
type CustomerInfo struct {
	Name string      `yaml:"name" json:"name"`
	DOB  DateOfBirth `yaml:"dob" json:"dob"`
	Age  int         `yaml:"age" json:"age"` // Derived from DOB; recalculated on load
}

// ProductSlot is one quote option in the comparison
type ProductSlot struct {
	Name     string            `yaml:"name" json:"name"`
	Product  ProductID         `yaml:"product" json:"product"` // Empty = not configured
	Riders   []RiderID         `yaml:"riders" json:"riders"`   // Unique, in selection order
	RiderSAs map[RiderID]int64 `yaml:"rider_sas,omitempty" json:"rider_sas"`

	LifeSA int64  `yaml:"life_sa" json:"life_sa"`
	CISA   int64  `yaml:"ci_sa" json:"ci_sa"`     // Used when no CI rider carries a sum
	CITier CITier `yaml:"ci_tier" json:"ci_tier"` // Used when no CI rider is selected
	PASA   int64  `yaml:"pa_sa" json:"pa_sa"`

	// Premiums for the two coverage end ages
	Premium70 int64 `yaml:"premium_70" json:"premium_70"`
	Premium80 int64 `yaml:"premium_80" json:"premium_80"`
	Age1      int   `yaml:"age1" json:"age1"`
	Age2      int   `yaml:"age2" json:"age2"`

	// Rider options
	AssuredLoveOption AssuredLoveOption `yaml:"assured_love_option,omitempty" json:"assured_love_option,omitempty"`
	PAMinorAccident   bool              `yaml:"pa_minor_accident,omitempty" json:"pa_minor_accident"`
	JaundiceAmount    int64             `yaml:"jaundice_amount,omitempty" json:"jaundice_amount"`
	PAWeeklyIndemnity int64             `yaml:"pa_weekly_indemnity,omitempty" json:"pa_weekly_indemnity"`
	SecureCoverParent Parent            `yaml:"secure_cover_parent,omitempty" json:"secure_cover_parent,omitempty"`
}

// IsConfigured reports whether a base product has been chosen
func (s *ProductSlot) IsConfigured() bool {
	return strings.TrimSpace(string(s.Product)) != ""
}

// HasRider reports whether the rider is selected
func (s *ProductSlot) HasRider(id RiderID) bool {
	for _, r := range s.Riders {
		if r == id {
			return true
		}
	}
	return false
}

// RiderSA returns the sum assured recorded for a rider (zero if none)
func (s *ProductSlot) RiderSA(id RiderID) int64 {
	if s.RiderSAs == nil {
		return 0
	}
	return s.RiderSAs[id]
}

// Clone returns a deep copy so snapshots are not affected by later edits
func (s ProductSlot) Clone() ProductSlot {
	c := s
	c.Riders = append([]RiderID(nil), s.Riders...)
	c.RiderSAs = make(map[RiderID]int64, len(s.RiderSAs))
	for k, v := range s.RiderSAs {
		c.RiderSAs[k] = v
	}
	return c
}

// AdvisorInfo identifies the advisor on exported reports
type AdvisorInfo struct {
	Name    string `yaml:"name" json:"name"`
	Contact string `yaml:"contact" json:"contact"`
	Photo   string `yaml:"photo,omitempty" json:"photo,omitempty"` // data: URL
}

// MedicalCard is the fixed reference description of the default medical card
type MedicalCard struct {
	Name           string   `yaml:"name" json:"name"`
	Plan           string   `yaml:"plan" json:"plan"`
	CoPayment      string   `yaml:"copayment" json:"copayment"`
	AnnualLimit    int64    `yaml:"annual_limit" json:"annual_limit"`
	LifetimeLimit  string   `yaml:"lifetime_limit" json:"lifetime_limit"`
	ICU            string   `yaml:"icu" json:"icu"`
	Remarks        string   `yaml:"remarks" json:"remarks"`
	Benefits       []string `yaml:"benefits" json:"benefits"`
	Conditions     []string `yaml:"conditions" json:"conditions"`
	ComplianceNote string   `yaml:"compliance_note" json:"compliance_note"`
}

// FixedMedicalCard is attached to every snapshot as reference data
var FixedMedicalCard = MedicalCard{
	Name:          "Health Assured",
	Plan:          "Basic (15% Co-Pay)",
	CoPayment:     "15% / 每年封顶最高 RM 2,500",
	AnnualLimit:   5000000,
	LifetimeLimit: "无限 (Unlimited)",
	ICU:           "无限天数 (Unlimited)",
	Remarks:       "每年自付15%，其余由保险公司承担。理赔需符合医疗必要性。",
	Benefits: []string{
		"住院与手术费用",
		"住院前后指定医疗费用",
		"日间手术",
		"重症监护 (ICU)",
		"指定癌症治疗",
		"指定洗肾治疗",
		"紧急意外治疗",
	},
	Conditions: []string{
		"一般需使用保险公司指定 Panel Hospital",
		"非紧急情况需事先获得保险公司批准",
		"理赔需符合医疗必要性原则",
	},
	ComplianceNote: "本资料仅为保障结构整理摘要，并非保险合同。所有保障、定义、限制与赔付条件，以保险公司正式 Policy Wording 为最终依据。",
}

// AppState is the snapshot handed to the comparison builder and exporters
type AppState struct {
	Customer CustomerInfo  `json:"customer"`
	Slots    []ProductSlot `json:"slots"` // Configured slots only
	Medical  MedicalCard   `json:"medical"`
	Advisor  AdvisorInfo   `json:"advisor"`
	Date     time.Time     `json:"date"`
}

// Session is the editable state saved to and loaded from YAML
type Session struct {
	Customer CustomerInfo  `yaml:"customer" json:"customer"`
	Slots    []ProductSlot `yaml:"slots" json:"slots"`
	Advisor  AdvisorInfo   `yaml:"advisor" json:"advisor"`
}

// LoadSession loads a session from a YAML file
func LoadSession(filename string) (*Session, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var session Session
	err = yaml.Unmarshal(data, &session)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	session.normalize()
	if err := session.validate(defaultCatalog, time.Now()); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &session, nil
}

// SaveSession saves a session to a YAML file
func SaveSession(session *Session, filename string) error {
	data, err := yaml.Marshal(session)
	if err != nil {
		return err
	}

	// Add a header comment with instructions
	header := []byte(`# Insurance Quote Comparison Session
# Saved by goInsurePro - feel free to edit manually
#
# ═══════════════════════════════════════════════════════════════════════════════
# VALUE FORMATS
# ═══════════════════════════════════════════════════════════════════════════════
#   Money: whole ringgit, no decimals (e.g., 200000 = RM 200,000)
#   ci_tier: 36, 77 or 157 (overridden by the richest CI rider selected)
#   age1/age2: coverage end ages for premium_70/premium_80 (60, 70, 80, 90, 100)
#   secure_cover_parent: Father or Mother
#   assured_love_option: 5years or 10years
#   Up to 4 slots; slots without a product are left out of reports.
#
# ═══════════════════════════════════════════════════════════════════════════════
# RUN COMMANDS
# ═══════════════════════════════════════════════════════════════════════════════
#   ./goInsurePro                         Desktop window
#   ./goInsurePro -console                Console wizard
#   ./goInsurePro -web                    Web UI in the external browser
#   ./goInsurePro -pdf -xlsx -html        Export this session without prompting
#   ./goInsurePro -help                   Show all options

`)
	content := append(header, data...)
	return os.WriteFile(filename, content, 0644)
}

// LoadDefaultSession loads the session embedded in the binary
func LoadDefaultSession() (*Session, error) {
	var session Session
	err := yaml.Unmarshal([]byte(defaultSessionYAML), &session)
	if err != nil {
		return nil, err
	}

	session.normalize()
	return &session, nil
}

// normalize fills in defaults for fields left out of a hand-edited file
func (s *Session) normalize() {
	if s.Customer.DOB.Year == 0 {
		s.Customer.DOB = DateOfBirth{Day: 1, Month: 1, Year: 1995}
	}
	if s.Customer.DOB.Month == 0 {
		s.Customer.DOB.Month = 1
	}
	s.Customer.DOB = ClampDay(s.Customer.DOB)

	if len(s.Slots) > MaxSlots {
		s.Slots = s.Slots[:MaxSlots]
	}
	if len(s.Slots) == 0 {
		s.Slots = []ProductSlot{NewSlot(0)}
	}
	for i := range s.Slots {
		slot := &s.Slots[i]
		if slot.Name == "" {
			slot.Name = defaultSlotName(i)
		}
		if slot.RiderSAs == nil {
			slot.RiderSAs = make(map[RiderID]int64)
		}
		if slot.CITier == TierNone {
			slot.CITier = Tier36
		}
		if slot.Age1 == 0 {
			slot.Age1 = 70
		}
		if slot.Age2 == 0 {
			slot.Age2 = 80
		}
		slot.Riders = dedupeRiders(slot.Riders)
		for id := range slot.RiderSAs {
			if !slot.HasRider(id) {
				delete(slot.RiderSAs, id)
			}
		}
	}
}

// validate checks a normalized session against the catalog: every product is
// known, every rider is offered by its slot's product and the date of birth is real
func (s *Session) validate(catalog *Catalog, today time.Time) error {
	dob := s.Customer.DOB
	if err := validateDOB(dob.Day, dob.Month, dob.Year, today.Year()); err != nil {
		return err
	}
	for i, slot := range s.Slots {
		if slot.Product != "" && catalog.Product(slot.Product) == nil {
			return ValidationError{
				Field:   fmt.Sprintf("slots[%d].product", i),
				Message: fmt.Sprintf("Unknown product %q", slot.Product),
				Err:     ErrUnknownProduct,
			}
		}
		for _, rider := range slot.Riders {
			if !catalog.Allows(slot.Product, rider) {
				return ValidationError{
					Field:   fmt.Sprintf("slots[%d].riders", i),
					Message: fmt.Sprintf("%s is not available on %q", rider, slot.Product),
					Err:     ErrRiderNotAllowed,
				}
			}
		}
	}
	return nil
}

func dedupeRiders(riders []RiderID) []RiderID {
	seen := make(map[RiderID]bool, len(riders))
	result := make([]RiderID, 0, len(riders))
	for _, r := range riders {
		if seen[r] {
			continue
		}
		seen[r] = true
		result = append(result, r)
	}
	return result
}
