package main

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is the symbol printed before amounts
const DefaultCurrency = "RM"

// Dash is shown for missing or zero values
const Dash = "-"

var groupingPrinter = message.NewPrinter(language.English)

// FormatCurrency renders a whole-unit amount as "RM 1,234"; zero renders as a dash
func FormatCurrency(symbol string, amount int64) string {
	if amount == 0 {
		return Dash
	}
	return symbol + " " + FormatThousands(amount)
}

// FormatDecimal rounds to whole currency units before formatting
func FormatDecimal(symbol string, amount decimal.Decimal) string {
	return FormatCurrency(symbol, amount.Round(0).IntPart())
}

// FormatThousands groups digits in threes ("1234567" -> "1,234,567")
func FormatThousands(amount int64) string {
	return groupingPrinter.Sprintf("%d", amount)
}

// ParseAmount reads a money field. Currency symbols, spaces and separators are
// ignored, "k"/"m" suffixes scale the value, and anything malformed becomes zero.
func ParseAmount(input string) int64 {
	input = strings.TrimSpace(strings.ToLower(input))
	input = strings.TrimPrefix(input, "rm")
	input = strings.ReplaceAll(input, ",", "")
	input = strings.ReplaceAll(input, " ", "")

	multiplier := int64(1)
	if strings.HasSuffix(input, "k") {
		multiplier = 1000
		input = strings.TrimSuffix(input, "k")
	} else if strings.HasSuffix(input, "m") {
		multiplier = 1000000
		input = strings.TrimSuffix(input, "m")
	}
	if input == "" {
		return 0
	}

	d, err := decimal.NewFromString(input)
	if err != nil {
		return 0
	}
	return d.Mul(decimal.NewFromInt(multiplier)).Round(0).IntPart()
}

// ParseInt reads a plain integer field; malformed input becomes zero
func ParseInt(input string) int {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0
	}
	return v
}
