package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Wizard errors
var (
	ErrNoConfiguredSlot = errors.New("请至少配置一个方案再继续。")
	ErrSlotLimit        = fmt.Errorf("at most %d plans can be compared", MaxSlots)
	ErrSlotNotFound     = errors.New("plan not found")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrRiderNotAllowed  = errors.New("rider not available for this product")
)

// Wizard owns the session being edited and the current step.
// It is not safe for concurrent use; callers serialise access.
type Wizard struct {
	step     WizardStep
	customer CustomerInfo
	slots    []ProductSlot
	advisor  AdvisorInfo

	catalog      *Catalog
	now          func() time.Time
	onTransition func(from, to WizardStep)
}

// WizardOption configures a Wizard
type WizardOption func(*Wizard)

// WithClock sets the source of "today" used for age calculation
func WithClock(now func() time.Time) WizardOption {
	return func(w *Wizard) { w.now = now }
}

// WithCatalog replaces the default product catalog
func WithCatalog(c *Catalog) WizardOption {
	return func(w *Wizard) { w.catalog = c }
}

// WithTransitionHook registers a callback run after every successful step change
func WithTransitionHook(fn func(from, to WizardStep)) WizardOption {
	return func(w *Wizard) { w.onTransition = fn }
}

// NewSlot returns an empty slot named for its position
func NewSlot(index int) ProductSlot {
	return ProductSlot{
		Name:     defaultSlotName(index),
		Riders:   []RiderID{},
		RiderSAs: make(map[RiderID]int64),
		CITier:   Tier36,
		Age1:     70,
		Age2:     80,
	}
}

// NewWizard starts a wizard at the first step. A nil session starts from defaults.
func NewWizard(session *Session, opts ...WizardOption) *Wizard {
	w := &Wizard{
		catalog: defaultCatalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}

	if session == nil {
		session = &Session{}
		session.normalize()
	}
	w.customer = session.Customer
	w.advisor = session.Advisor
	for _, s := range session.Slots {
		w.slots = append(w.slots, s.Clone())
	}
	if len(w.slots) == 0 {
		w.slots = []ProductSlot{NewSlot(0)}
	}
	w.customer.RefreshAge(w.now())
	return w
}

// Step returns the current step
func (w *Wizard) Step() WizardStep {
	return w.step
}

// Next advances one step. Leaving product selection requires a configured slot.
// At the last step it does nothing.
func (w *Wizard) Next() error {
	if w.step >= LastStep {
		return nil
	}
	if w.step == StepProducts && !w.hasConfiguredSlot() {
		recordTransition("next", "rejected")
		return ValidationError{Field: "slots", Message: ErrNoConfiguredSlot.Error(), Err: ErrNoConfiguredSlot}
	}
	w.moveTo(w.step + 1)
	recordTransition("next", "ok")
	return nil
}

// Back returns to the previous step; at the first step it does nothing
func (w *Wizard) Back() {
	if w.step <= StepCustomer {
		return
	}
	w.moveTo(w.step - 1)
	recordTransition("back", "ok")
}

func (w *Wizard) moveTo(step WizardStep) {
	from := w.step
	w.step = step
	if w.onTransition != nil {
		w.onTransition(from, step)
	}
}

func (w *Wizard) hasConfiguredSlot() bool {
	for i := range w.slots {
		if w.slots[i].IsConfigured() {
			return true
		}
	}
	return false
}

// Customer returns the customer being quoted
func (w *Wizard) Customer() CustomerInfo {
	return w.customer
}

// SetCustomerName sets the customer's name
func (w *Wizard) SetCustomerName(name string) {
	w.customer.Name = strings.TrimSpace(name)
}

// UpdateDOB edits the date of birth and recalculates the age
func (w *Wizard) UpdateDOB(patch DOBPatch) error {
	return w.customer.UpdateDOB(patch, w.now())
}

// Advisor returns the advisor shown on reports
func (w *Wizard) Advisor() AdvisorInfo {
	return w.advisor
}

// SetAdvisor replaces the advisor details
func (w *Wizard) SetAdvisor(info AdvisorInfo) {
	w.advisor = info
}

// Slots returns a copy of all slots, configured or not
func (w *Wizard) Slots() []ProductSlot {
	result := make([]ProductSlot, len(w.slots))
	for i, s := range w.slots {
		result[i] = s.Clone()
	}
	return result
}

// Slot returns a copy of one slot
func (w *Wizard) Slot(index int) (ProductSlot, error) {
	s, err := w.slotAt(index)
	if err != nil {
		return ProductSlot{}, err
	}
	return s.Clone(), nil
}

func (w *Wizard) slotAt(index int) (*ProductSlot, error) {
	if index < 0 || index >= len(w.slots) {
		return nil, fmt.Errorf("%w: %d", ErrSlotNotFound, index)
	}
	return &w.slots[index], nil
}

// AddSlot appends an empty slot named after its position
func (w *Wizard) AddSlot() (int, error) {
	if len(w.slots) >= MaxSlots {
		return -1, ErrSlotLimit
	}
	w.slots = append(w.slots, NewSlot(len(w.slots)))
	return len(w.slots) - 1, nil
}

// RemoveSlot deletes a slot. Removing the last remaining slot resets it to the default.
func (w *Wizard) RemoveSlot(index int) error {
	if _, err := w.slotAt(index); err != nil {
		return err
	}
	if len(w.slots) == 1 {
		w.slots = []ProductSlot{NewSlot(0)}
		return nil
	}
	w.slots = append(w.slots[:index], w.slots[index+1:]...)
	return nil
}

// RenameSlot changes a slot's display name; an empty name restores the default
func (w *Wizard) RenameSlot(index int, name string) error {
	s, err := w.slotAt(index)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultSlotName(index)
	}
	s.Name = name
	return nil
}

// SetProduct chooses the base product and clears all riders and rider sums.
// An empty product unconfigures the slot.
func (w *Wizard) SetProduct(index int, product ProductID) error {
	s, err := w.slotAt(index)
	if err != nil {
		return err
	}
	if product != "" && w.catalog.Product(product) == nil {
		return fmt.Errorf("%w: %q", ErrUnknownProduct, product)
	}
	s.Product = product
	s.Riders = []RiderID{}
	s.RiderSAs = make(map[RiderID]int64)
	return nil
}

// ToggleRider adds a rider with a zero sum, or removes it together with its sum
func (w *Wizard) ToggleRider(index int, rider RiderID) error {
	s, err := w.slotAt(index)
	if err != nil {
		return err
	}
	if s.HasRider(rider) {
		riders := s.Riders[:0]
		for _, r := range s.Riders {
			if r != rider {
				riders = append(riders, r)
			}
		}
		s.Riders = riders
		delete(s.RiderSAs, rider)
		return nil
	}
	if !w.catalog.Allows(s.Product, rider) {
		return fmt.Errorf("%w: %s on %q", ErrRiderNotAllowed, rider, s.Product)
	}
	s.Riders = append(s.Riders, rider)
	if s.RiderSAs == nil {
		s.RiderSAs = make(map[RiderID]int64)
	}
	s.RiderSAs[rider] = 0
	return nil
}

// SetRiderSA records a selected rider's sum assured. Riders without a sum input are rejected.
func (w *Wizard) SetRiderSA(index int, rider RiderID, amount int64) error {
	s, err := w.slotAt(index)
	if err != nil {
		return err
	}
	if !s.HasRider(rider) {
		return ValidationError{Field: "rider_sas", Message: fmt.Sprintf("%s is not selected", rider)}
	}
	if spec := w.catalog.Rider(rider); spec == nil || !spec.TakesSum {
		return ValidationError{Field: "rider_sas", Message: fmt.Sprintf("%s has no sum assured", rider)}
	}
	if amount < 0 {
		amount = 0
	}
	s.RiderSAs[rider] = amount
	return nil
}

// SlotPatch is a partial edit of a slot's amounts and rider options; nil fields are unchanged
type SlotPatch struct {
	LifeSA            *int64             `json:"life_sa,omitempty"`
	CISA              *int64             `json:"ci_sa,omitempty"`
	CITier            *CITier            `json:"ci_tier,omitempty"`
	PASA              *int64             `json:"pa_sa,omitempty"`
	Premium70         *int64             `json:"premium_70,omitempty"`
	Premium80         *int64             `json:"premium_80,omitempty"`
	Age1              *int               `json:"age1,omitempty"`
	Age2              *int               `json:"age2,omitempty"`
	AssuredLoveOption *AssuredLoveOption `json:"assured_love_option,omitempty"`
	PAMinorAccident   *bool              `json:"pa_minor_accident,omitempty"`
	JaundiceAmount    *int64             `json:"jaundice_amount,omitempty"`
	PAWeeklyIndemnity *int64             `json:"pa_weekly_indemnity,omitempty"`
	SecureCoverParent *Parent            `json:"secure_cover_parent,omitempty"`
}

// UpdateSlot applies a patch. Option fields are checked against their allowed values
// before anything is changed.
func (w *Wizard) UpdateSlot(index int, patch SlotPatch) error {
	s, err := w.slotAt(index)
	if err != nil {
		return err
	}
	if err := patch.validate(); err != nil {
		return err
	}

	setMoney := func(dst *int64, v *int64) {
		if v != nil {
			*dst = max(*v, 0)
		}
	}
	setMoney(&s.LifeSA, patch.LifeSA)
	setMoney(&s.CISA, patch.CISA)
	setMoney(&s.PASA, patch.PASA)
	setMoney(&s.Premium70, patch.Premium70)
	setMoney(&s.Premium80, patch.Premium80)
	setMoney(&s.JaundiceAmount, patch.JaundiceAmount)
	setMoney(&s.PAWeeklyIndemnity, patch.PAWeeklyIndemnity)
	if patch.CITier != nil {
		s.CITier = *patch.CITier
	}
	if patch.Age1 != nil {
		s.Age1 = *patch.Age1
	}
	if patch.Age2 != nil {
		s.Age2 = *patch.Age2
	}
	if patch.AssuredLoveOption != nil {
		s.AssuredLoveOption = *patch.AssuredLoveOption
	}
	if patch.PAMinorAccident != nil {
		s.PAMinorAccident = *patch.PAMinorAccident
	}
	if patch.SecureCoverParent != nil {
		s.SecureCoverParent = *patch.SecureCoverParent
	}
	return nil
}

func (p SlotPatch) validate() error {
	if p.CITier != nil && p.CITier.Rank() == 0 {
		return ValidationError{Field: "ci_tier", Message: fmt.Sprintf("CI tier must be 36, 77 or 157 (got %d)", int(*p.CITier))}
	}
	for field, age := range map[string]*int{"age1": p.Age1, "age2": p.Age2} {
		if age != nil && !slices.Contains(CoverageAgeOptions, *age) {
			return ValidationError{Field: field, Message: fmt.Sprintf("Coverage age must be one of %v (got %d)", CoverageAgeOptions, *age)}
		}
	}
	if p.JaundiceAmount != nil && *p.JaundiceAmount != 0 && !slices.Contains(JaundiceOptions, *p.JaundiceAmount) {
		return ValidationError{Field: "jaundice_amount", Message: fmt.Sprintf("Jaundice allowance must be one of %v", JaundiceOptions)}
	}
	if p.AssuredLoveOption != nil && *p.AssuredLoveOption != AssuredLove5Years && *p.AssuredLoveOption != AssuredLove10Years {
		return ValidationError{Field: "assured_love_option", Message: "AssuredLove option must be 5years or 10years"}
	}
	if p.SecureCoverParent != nil && *p.SecureCoverParent != ParentFather && *p.SecureCoverParent != ParentMother {
		return ValidationError{Field: "secure_cover_parent", Message: "Secure Cover parent must be Father or Mother"}
	}
	return nil
}

// SlotEdit combines several slot edits. They are applied in order: name,
// product, rider toggles, rider sums, then the amount and option patch.
type SlotEdit struct {
	Name         *string
	Product      *ProductID
	ToggleRiders []RiderID
	RiderSAs     map[RiderID]int64
	Patch        SlotPatch
}

// EditSlot applies a combined edit. If any step fails the slot is left as it was.
func (w *Wizard) EditSlot(index int, edit SlotEdit) error {
	s, err := w.slotAt(index)
	if err != nil {
		return err
	}
	if err := edit.Patch.validate(); err != nil {
		return err
	}

	saved := s.Clone()
	if err := w.applySlotEdit(index, edit); err != nil {
		w.slots[index] = saved
		return err
	}
	return nil
}

func (w *Wizard) applySlotEdit(index int, edit SlotEdit) error {
	if edit.Name != nil {
		if err := w.RenameSlot(index, *edit.Name); err != nil {
			return err
		}
	}
	if edit.Product != nil {
		if err := w.SetProduct(index, *edit.Product); err != nil {
			return err
		}
	}
	for _, rider := range edit.ToggleRiders {
		if err := w.ToggleRider(index, rider); err != nil {
			return err
		}
	}
	for rider, amount := range edit.RiderSAs {
		if err := w.SetRiderSA(index, rider, amount); err != nil {
			return err
		}
	}
	return w.UpdateSlot(index, edit.Patch)
}

// Snapshot assembles the state handed to the comparison and exporters.
// Slots without a product are left out.
func (w *Wizard) Snapshot() AppState {
	today := w.now()
	customer := w.customer
	customer.RefreshAge(today)

	var configured []ProductSlot
	for _, s := range w.slots {
		if s.IsConfigured() {
			configured = append(configured, s.Clone())
		}
	}
	return AppState{
		Customer: customer,
		Slots:    configured,
		Medical:  FixedMedicalCard,
		Advisor:  w.advisor,
		Date:     today,
	}
}

// Restore replaces the customer, slots and advisor with a loaded session.
// A session that fails validation is rejected and the wizard keeps its state.
// If no slot remains configured the wizard falls back to product selection.
func (w *Wizard) Restore(session *Session) error {
	session.normalize()
	if err := session.validate(w.catalog, w.now()); err != nil {
		return err
	}
	w.customer = session.Customer
	w.advisor = session.Advisor
	w.slots = w.slots[:0]
	for _, s := range session.Slots {
		w.slots = append(w.slots, s.Clone())
	}
	w.customer.RefreshAge(w.now())
	if w.step > StepProducts && !w.hasConfiguredSlot() {
		w.moveTo(StepProducts)
	}
	return nil
}

// Session returns the editable state for saving
func (w *Wizard) Session() *Session {
	return &Session{
		Customer: w.customer,
		Slots:    w.Slots(),
		Advisor:  w.advisor,
	}
}
