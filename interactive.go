package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Validation errors
type ValidationError struct {
	Field   string
	Message string
	Err     error // Sentinel the failure matches, if any
}

func (e ValidationError) Error() string {
	return e.Message
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// errQuit ends the console wizard without an error
var errQuit = errors.New("quit")

// ConsoleWizard drives a Wizard from a terminal
type ConsoleWizard struct {
	reader      *bufio.Reader
	out         io.Writer
	wizard      *Wizard
	exporter    *Exporter
	profiles    *ProfileLibrary
	exportDir   string
	sessionFile string
	logger      *zap.Logger
}

// NewConsoleWizard creates a console front-end reading answers from in
func NewConsoleWizard(in io.Reader, out io.Writer, wizard *Wizard, exporter *Exporter, profiles *ProfileLibrary) *ConsoleWizard {
	return &ConsoleWizard{
		reader:    bufio.NewReader(in),
		out:       out,
		wizard:    wizard,
		exporter:  exporter,
		profiles:  profiles,
		exportDir: ".",
		logger:    zap.NewNop(),
	}
}

// Run walks through the steps until the user quits or input ends
func (c *ConsoleWizard) Run(ctx context.Context) error {
	PrintHeader(c.out)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch c.wizard.Step() {
		case StepCustomer:
			err = c.customerStep()
		case StepProducts:
			err = c.productsStep()
		case StepBenefits:
			err = c.benefitsStep(ctx)
		case StepComparison:
			err = c.comparisonStep()
		}
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *ConsoleWizard) stepTitle() {
	step := c.wizard.Step()
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "━━━ %d/%d  %s (%s) ━━━\n", int(step)+1, int(LastStep)+1, step, step.EnglishName())
}

// readLine returns the trimmed next line; io.EOF once input is exhausted
func (c *ConsoleWizard) readLine() (string, error) {
	input, err := c.reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if err != nil && input == "" {
		return "", err
	}
	return input, nil
}

// promptString asks for a string with a default value
func (c *ConsoleWizard) promptString(prompt, defaultVal string) (string, error) {
	if defaultVal != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", prompt, defaultVal)
	} else {
		fmt.Fprintf(c.out, "%s: ", prompt)
	}
	input, err := c.readLine()
	if err != nil {
		return "", err
	}
	if input == "" {
		return defaultVal, nil
	}
	return input, nil
}

// promptInt asks for an integer with a default value
func (c *ConsoleWizard) promptInt(prompt string, defaultVal int) (int, error) {
	for {
		fmt.Fprintf(c.out, "%s [%d]: ", prompt, defaultVal)
		input, err := c.readLine()
		if err != nil {
			return 0, err
		}
		if input == "" {
			return defaultVal, nil
		}
		val, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(c.out, "  ✗ Invalid number\n")
			continue
		}
		return val, nil
	}
}

// promptMoney asks for an amount (accepts "100k", "RM 100,000" or "100000")
func (c *ConsoleWizard) promptMoney(prompt string, defaultVal int64) (int64, error) {
	fmt.Fprintf(c.out, "%s [%s]: ", prompt, FormatCurrency(DefaultCurrency, defaultVal))
	input, err := c.readLine()
	if err != nil {
		return 0, err
	}
	if input == "" {
		return defaultVal, nil
	}
	return ParseAmount(input), nil
}

// promptChoice asks for one of the listed options by number; 0 keeps the default
func (c *ConsoleWizard) promptChoice(prompt string, options []string, defaultIdx int) (int, error) {
	for i, o := range options {
		marker := " "
		if i == defaultIdx {
			marker = "*"
		}
		fmt.Fprintf(c.out, "  %s%d) %s\n", marker, i+1, o)
	}
	for {
		n, err := c.promptInt(prompt, defaultIdx+1)
		if err != nil {
			return 0, err
		}
		if n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(c.out, "  ✗ Choose 1-%d\n", len(options))
	}
}

func (c *ConsoleWizard) customerStep() error {
	c.stepTitle()
	customer := c.wizard.Customer()

	name, err := c.promptString("顾客姓名 Customer name", customer.Name)
	if err != nil {
		return err
	}
	c.wizard.SetCustomerName(name)

	currentYear := c.wizard.now().Year()
	for {
		day, err := c.promptInt("出生日 Day of birth", customer.DOB.Day)
		if err != nil {
			return err
		}
		month, err := c.promptInt("出生月 Month of birth", customer.DOB.Month)
		if err != nil {
			return err
		}
		year, err := c.promptInt("出生年 Year of birth", customer.DOB.Year)
		if err != nil {
			return err
		}
		if err := validateDOB(day, month, year, currentYear); err != nil {
			fmt.Fprintf(c.out, "  ✗ %s\n", err.Error())
			continue
		}
		if err := c.wizard.UpdateDOB(DOBPatch{Day: &day, Month: &month, Year: &year}); err != nil {
			fmt.Fprintf(c.out, "  ✗ %s\n", err.Error())
			continue
		}
		break
	}

	customer = c.wizard.Customer()
	fmt.Fprintf(c.out, "  ✓ %s, %s, 年龄 Age %d\n", orDash(customer.Name), customer.DOB, customer.Age)
	return c.wizard.Next()
}

func (c *ConsoleWizard) productsStep() error {
	for {
		c.stepTitle()
		PrintSlotSummary(c.out, c.wizard.Slots())
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "  [e N] edit plan N   [a] add plan   [r N] remove plan N")
		fmt.Fprintln(c.out, "  [n] next   [b] back   [q] quit")

		cmd, err := c.promptString("选择 Choice", "n")
		if err != nil {
			return err
		}
		fields := strings.Fields(strings.ToLower(cmd))
		if len(fields) == 0 {
			continue
		}
		index := 0
		if len(fields) > 1 {
			index = ParseInt(fields[1]) - 1
		}

		switch fields[0] {
		case "e":
			if _, err := c.wizard.Slot(index); err != nil {
				fmt.Fprintf(c.out, "  ✗ %s\n", err)
				continue
			}
			if err := c.editSlot(index); err != nil {
				return err
			}
		case "a":
			i, err := c.wizard.AddSlot()
			if err != nil {
				fmt.Fprintf(c.out, "  ✗ %s\n", err)
				continue
			}
			if err := c.editSlot(i); err != nil {
				return err
			}
		case "r":
			if err := c.wizard.RemoveSlot(index); err != nil {
				fmt.Fprintf(c.out, "  ✗ %s\n", err)
			}
		case "n":
			if err := c.wizard.Next(); err != nil {
				fmt.Fprintf(c.out, "  ✗ %s\n", err)
				continue
			}
			return nil
		case "b":
			c.wizard.Back()
			return nil
		case "q":
			return errQuit
		}
	}
}

// editSlot walks through every field of one slot
func (c *ConsoleWizard) editSlot(index int) error {
	slot, _ := c.wizard.Slot(index)

	name, err := c.promptString("方案名称 Plan name", slot.Name)
	if err != nil {
		return err
	}
	c.wizard.RenameSlot(index, name)

	products := c.wizard.catalog.Products()
	options := make([]string, len(products))
	current := 0
	for i, p := range products {
		options[i] = fmt.Sprintf("%s  %s", p.ID, p.DescriptionCN)
		if p.ID == slot.Product {
			current = i
		}
	}
	fmt.Fprintln(c.out, "产品 Product:")
	choice, err := c.promptChoice("产品 Product", options, current)
	if err != nil {
		return err
	}
	if products[choice].ID != slot.Product {
		if err := c.wizard.SetProduct(index, products[choice].ID); err != nil {
			return err
		}
	}

	if err := c.editRiders(index); err != nil {
		return err
	}
	return c.editAmounts(index)
}

func (c *ConsoleWizard) editRiders(index int) error {
	for {
		slot, _ := c.wizard.Slot(index)
		riders := c.wizard.catalog.RidersFor(slot.Product)
		fmt.Fprintln(c.out, "附加保障 Riders (number toggles, blank to continue):")
		for i, r := range riders {
			mark := "[ ]"
			if slot.HasRider(r) {
				mark = "[x]"
			}
			fmt.Fprintf(c.out, "  %2d) %s %s\n", i+1, mark, r)
		}
		input, err := c.promptString("切换 Toggle", "")
		if err != nil {
			return err
		}
		if input == "" {
			break
		}
		n := ParseInt(input)
		if n < 1 || n > len(riders) {
			fmt.Fprintf(c.out, "  ✗ Choose 1-%d\n", len(riders))
			continue
		}
		if err := c.wizard.ToggleRider(index, riders[n-1]); err != nil {
			fmt.Fprintf(c.out, "  ✗ %s\n", err)
		}
	}

	slot, _ := c.wizard.Slot(index)
	for _, r := range slot.Riders {
		spec := c.wizard.catalog.Rider(r)
		if spec == nil || !spec.TakesSum {
			continue
		}
		amount, err := c.promptMoney(fmt.Sprintf("  %s 保额 SA", r), slot.RiderSA(r))
		if err != nil {
			return err
		}
		if err := c.wizard.SetRiderSA(index, r, amount); err != nil {
			fmt.Fprintf(c.out, "  ✗ %s\n", err)
		}
	}
	return nil
}

func (c *ConsoleWizard) editAmounts(index int) error {
	slot, _ := c.wizard.Slot(index)
	var patch SlotPatch
	var err error

	money := func(prompt string, current int64) *int64 {
		if err != nil {
			return nil
		}
		var v int64
		v, err = c.promptMoney(prompt, current)
		return &v
	}
	patch.LifeSA = money("人寿保额 Life SA", slot.LifeSA)
	patch.CISA = money("疾病保额 CI SA", slot.CISA)
	patch.PASA = money("意外保额 PA SA", slot.PASA)
	patch.Premium70 = money(fmt.Sprintf("保费至 %d 岁 Premium to age %d", slot.Age1, slot.Age1), slot.Premium70)
	patch.Premium80 = money(fmt.Sprintf("保费至 %d 岁 Premium to age %d", slot.Age2, slot.Age2), slot.Premium80)
	if err != nil {
		return err
	}

	ageOptions := make([]string, len(CoverageAgeOptions))
	for i, a := range CoverageAgeOptions {
		ageOptions[i] = strconv.Itoa(a)
	}
	for _, target := range []struct {
		label   string
		current int
		dst     **int
	}{
		{"保障年龄 A Coverage age A", slot.Age1, &patch.Age1},
		{"保障年龄 B Coverage age B", slot.Age2, &patch.Age2},
	} {
		fmt.Fprintln(c.out, target.label+":")
		i, err := c.promptChoice(target.label, ageOptions, max(slices.Index(CoverageAgeOptions, target.current), 0))
		if err != nil {
			return err
		}
		age := CoverageAgeOptions[i]
		*target.dst = &age
	}

	if slot.HasRider(RiderAssuredLove) {
		fmt.Fprintln(c.out, "AssuredLove:")
		current := 0
		if slot.AssuredLoveOption == AssuredLove10Years {
			current = 1
		}
		i, err := c.promptChoice("AssuredLove", []string{"5 年 years", "10 年 years"}, current)
		if err != nil {
			return err
		}
		opt := []AssuredLoveOption{AssuredLove5Years, AssuredLove10Years}[i]
		patch.AssuredLoveOption = &opt
	}
	if slot.HasRider(RiderPreciousCover) {
		fmt.Fprintln(c.out, "黄疸津贴 Jaundice allowance:")
		labels := make([]string, len(JaundiceOptions))
		for i, j := range JaundiceOptions {
			labels[i] = FormatCurrency(DefaultCurrency, j)
		}
		i, err := c.promptChoice("黄疸津贴 Jaundice", labels, max(slices.Index(JaundiceOptions, slot.JaundiceAmount), 0))
		if err != nil {
			return err
		}
		amount := JaundiceOptions[i]
		patch.JaundiceAmount = &amount
	}
	if slot.HasRider(RiderPAPlus) || slot.HasRider(RiderPersonalAccident) {
		weekly, err := c.promptMoney("意外每周津贴 Weekly indemnity", slot.PAWeeklyIndemnity)
		if err != nil {
			return err
		}
		patch.PAWeeklyIndemnity = &weekly
		answer, err := c.promptString("意外门诊 Minor accident cover (y/n)", yesNo(slot.PAMinorAccident))
		if err != nil {
			return err
		}
		minor := strings.HasPrefix(strings.ToLower(answer), "y")
		patch.PAMinorAccident = &minor
	}
	if slot.HasRider(RiderSecureCover) {
		fmt.Fprintln(c.out, "Secure Cover:")
		current := 1
		if slot.SecureCoverParent == ParentFather {
			current = 0
		}
		i, err := c.promptChoice("Secure Cover", []string{"父亲 Father", "母亲 Mother"}, current)
		if err != nil {
			return err
		}
		parent := []Parent{ParentFather, ParentMother}[i]
		patch.SecureCoverParent = &parent
	}

	if err := c.wizard.UpdateSlot(index, patch); err != nil {
		fmt.Fprintf(c.out, "  ✗ %s\n", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func (c *ConsoleWizard) benefitsStep(ctx context.Context) error {
	for {
		c.stepTitle()
		for _, b := range ResolveAll(c.wizard.Snapshot().Slots) {
			fmt.Fprintf(c.out, "  %s (%s)\n", b.Name, b.Product)
			fmt.Fprintf(c.out, "      人寿 Life %s   疾病 CI %s   意外 PA %s\n",
				FormatCurrency(DefaultCurrency, b.LifeSA),
				FormatCurrency(DefaultCurrency, b.CITotalSA),
				FormatCurrency(DefaultCurrency, b.PADeathSA))
			for _, r := range b.Riders {
				fmt.Fprintf(c.out, "      - %s %s\n", r.ID, FormatCurrency(DefaultCurrency, r.SA))
			}
		}
		advisor := c.wizard.Advisor()
		fmt.Fprintf(c.out, "\n  理财顾问 Advisor: %s %s\n", orDash(advisor.Name), advisor.Contact)
		fmt.Fprintln(c.out, "  [v] edit advisor   [p] pick saved advisor   [s] save advisor")
		fmt.Fprintln(c.out, "  [n] next   [b] back   [q] quit")

		cmd, err := c.promptString("选择 Choice", "n")
		if err != nil {
			return err
		}
		switch strings.ToLower(cmd) {
		case "v":
			name, err := c.promptString("顾问姓名 Advisor name", advisor.Name)
			if err != nil {
				return err
			}
			contact, err := c.promptString("联络 Contact", advisor.Contact)
			if err != nil {
				return err
			}
			c.wizard.SetAdvisor(AdvisorInfo{Name: name, Contact: contact, Photo: advisor.Photo})
		case "p":
			if err := c.pickProfile(ctx); err != nil {
				fmt.Fprintf(c.out, "  ✗ %s\n", err)
			}
		case "s":
			if c.profiles == nil {
				continue
			}
			if _, err := c.profiles.Save(ctx, advisor); err != nil {
				fmt.Fprintf(c.out, "  ✗ %s\n", err)
				continue
			}
			fmt.Fprintln(c.out, "  ✓ 已保存 Saved")
		case "n":
			return c.wizard.Next()
		case "b":
			c.wizard.Back()
			return nil
		case "q":
			return errQuit
		}
	}
}

func (c *ConsoleWizard) pickProfile(ctx context.Context) error {
	if c.profiles == nil {
		return nil
	}
	saved, err := c.profiles.List(ctx)
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		fmt.Fprintln(c.out, "  (没有已保存的顾问 no saved advisors)")
		return nil
	}
	options := make([]string, len(saved))
	for i, p := range saved {
		options[i] = fmt.Sprintf("%s  %s", p.Name, p.Contact)
	}
	i, err := c.promptChoice("顾问 Advisor", options, 0)
	if err != nil {
		return err
	}
	info, err := c.profiles.Select(ctx, saved[i].ID)
	if err != nil {
		return err
	}
	c.wizard.SetAdvisor(info)
	return nil
}

func (c *ConsoleWizard) comparisonStep() error {
	for {
		c.stepTitle()
		state := c.wizard.Snapshot()
		PrintComparison(c.out, BuildComparison(state, c.exporter.Options))

		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "  [pdf] [xlsx] [html] export   [save] save session")
		fmt.Fprintln(c.out, "  [b] back   [q] quit")
		cmd, err := c.promptString("选择 Choice", "q")
		if err != nil {
			return err
		}
		cmd = strings.ToLower(cmd)

		switch cmd {
		case "b":
			c.wizard.Back()
			return nil
		case "q":
			return errQuit
		case "save":
			file, err := c.promptString("文件 File", c.sessionFile)
			if err != nil {
				return err
			}
			if file == "" {
				continue
			}
			if err := SaveSession(c.wizard.Session(), file); err != nil {
				fmt.Fprintf(c.out, "  ✗ %s\n", err)
				continue
			}
			c.sessionFile = file
			c.logger.Info("session saved", zap.String("file", file))
			fmt.Fprintf(c.out, "  ✓ %s\n", file)
		default:
			format, err := ParseExportFormat(cmd)
			if err != nil {
				fmt.Fprintf(c.out, "  ✗ %s\n", err)
				continue
			}
			path, err := c.exporter.ExportToDir(format, state, c.exportDir)
			if err != nil {
				fmt.Fprintf(c.out, "  ✗ %s\n", err)
				continue
			}
			fmt.Fprintf(c.out, "  ✓ %s\n", path)
		}
	}
}
