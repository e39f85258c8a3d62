package main

import (
	"fmt"
	"strings"
)

type labelPair struct {
	CN string
	EN string
}

// reportLabels holds the bilingual text of the comparison report
var reportLabels = map[string]labelPair{
	"title":    {"保障整理表", "PROTECTION SUMMARY"},
	"subtitle": {"Protection Summary", "Comprehensive Analysis"},
	"cname":    {"顾客姓名", "Client Name"},
	"cage":     {"年龄", "Age"},
	"cdate":    {"规划日期", "Date"},
	"footer":   {"此建议书仅供参考，最终以保单合约为准。", "FOR ILLUSTRATION ONLY. SUBJECT TO POLICY TERMS."},
	"adv":      {"理财顾问", "ADVISOR"},
	"item":     {"保障项目", "Benefit"},

	// Section titles
	"life":    {"人寿保障", "LIFE PROTECTION"},
	"med":     {"医药卡", "MEDICAL CARD"},
	"ci":      {"疾病保障", "CRITICAL ILLNESS"},
	"pa":      {"意外保障", "ACCIDENT"},
	"waiver":  {"免付保费利益", "PREMIUM WAIVER"},
	"value":   {"户口价值", "ACCOUNT VALUE"},
	"premium": {"预估保费 (月缴)", "ESTIMATED PREMIUM"},
	"riders":  {"附加保障明细", "RIDER DETAILS"},

	// Rows
	"death_sum":         {"死亡赔付", "Death Sum"},
	"tpd_sum":           {"永久残废", "TPD Sum"},
	"annual_limit":      {"年度总限额", "Annual Limit"},
	"lifetime_limit":    {"终身总限额", "Lifetime Limit"},
	"room_board":        {"病房价位", "Room & Board"},
	"medical_costs":     {"需承担的医疗费", "Medical Costs"},
	"icu":               {"加护病房住宿", "ICU Stay"},
	"cancer_dialysis":   {"癌症 / 洗肾门诊", "Cancer/Dialysis"},
	"pre_post":          {"入院前/后会诊", "Pre/Post Consult"},
	"total_ci":          {"疾病保障数额", "Total CI SA"},
	"severe":            {"严重阶段", "Severe Stage"},
	"intermediate":      {"中期阶段", "Intermediate Stage"},
	"early":             {"初期阶段", "Early Stage"},
	"diabetes_recovery": {"糖尿病康复利益", "Diabetes Recovery"},
	"cancer_recovery":   {"癌症康复利益", "Cancer Recovery"},
	"crisis_recovery":   {"危机严重康复利益", "Crisis Recovery"},
	"baby_congenital":   {"小孩先天性疾病保障", "Baby Congenital"},
	"maternity":         {"母婴利益保障", "Maternity Benefit"},
	"jaundice":          {"黄疸津贴", "Jaundice Benefit"},
	"acc_death":         {"意外身故 / 伤残", "Acc. Death/TPD"},
	"outpatient":        {"意外门诊", "Outpatient"},
	"weekly":            {"意外每周津贴", "Weekly Indemnity"},
	"waiver_ci":         {"严重疾病时豁免保费", "Waiver of Premium on CI"},
	"cash_value":        {"现金价值", "Cash Value"},
	"maturity":          {"满期利益", "Maturity"},
	"assured_love":      {"AssuredLove 储蓄", "AssuredLove Savings"},

	// Cell values
	"unlimited":     {"无限 Unlimited", "Unlimited"},
	"covered":       {"包含 Covered", "Covered"},
	"yes":           {"有 Yes", "Yes"},
	"included":      {"✅ 已包含", "Included"},
	"self_waiver":   {"受保人 豁免", "Insured Waiver"},
	"waiver_suffix": {"豁免", "Waiver"},
	"loyalty":       {"18% 保额奖励", "18% SA Bonus"},
}

// L returns the label for key in the given language, or the key itself if unknown
func L(lang Lang, key string) string {
	pair, ok := reportLabels[key]
	if !ok {
		return key
	}
	if lang == LangEN {
		return pair.EN
	}
	return pair.CN
}

func daysLabel(lang Lang, days int) string {
	if lang == LangEN {
		return fmt.Sprintf("%d days", days)
	}
	return fmt.Sprintf("%d天", days)
}

func prePostLabel(lang Lang, pre, post int) string {
	if lang == LangEN {
		return fmt.Sprintf("%d / %d days", pre, post)
	}
	return fmt.Sprintf("%d / %d 天", pre, post)
}

func premiumAgeLabel(lang Lang, option string, age int) string {
	if lang == LangEN {
		return fmt.Sprintf("Option %s: Age %d", option, age)
	}
	return fmt.Sprintf("保障至 %d 岁", age)
}

func weeklyLabel(lang Lang, symbol string, amount int64) string {
	if lang == LangEN {
		return fmt.Sprintf("%s %s/week", symbol, FormatThousands(amount))
	}
	return fmt.Sprintf("%s %s/周", symbol, FormatThousands(amount))
}

func yearsLabel(lang Lang, years int) string {
	if lang == LangEN {
		return fmt.Sprintf("%d years", years)
	}
	return fmt.Sprintf("%d年", years)
}

// defaultSlotName is the name given to a new slot at a position
func defaultSlotName(index int) string {
	return "方案 " + slotLetter(index)
}

// slotHeader localises default slot names and keeps custom ones
func slotHeader(lang Lang, name string, index int) string {
	if name == "" {
		name = defaultSlotName(index)
	}
	if lang == LangEN && strings.HasPrefix(name, "方案 ") {
		return "Plan " + strings.TrimPrefix(name, "方案 ")
	}
	return name
}
