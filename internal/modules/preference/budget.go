// README: Budget extraction with currency markers and Indian magnitude words.
package preference

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"tripmate/internal/types"
)

// amountExpr accepts both Western (1,500) and Indian (1,00,000) digit grouping.
const amountExpr = `(\d[\d,]*(?:\.\d+)?)`

var (
	lakh  = decimal.NewFromInt(100_000)
	crore = decimal.NewFromInt(10_000_000)
	unit  = decimal.NewFromInt(1)
)

// maxAmountDigits bounds the integer part of a capture; longer runs of digits
// are treated as malformed rather than as a budget.
const maxAmountDigits = 15

var errAmountRange = errors.New("amount out of range")

type budgetRule struct {
	re         *regexp.Regexp
	multiplier decimal.Decimal
	currency   types.Currency
}

var budgetRules = newBudgetRules(
	`\$`+amountExpr,
	`₹`+amountExpr,
	amountExpr+` dollars?`,
	amountExpr+` rupees?`,
	amountExpr+` inr`,
	amountExpr+` rs`,
	amountExpr+` lakh`,
	amountExpr+` lakhs`,
	amountExpr+` crore`,
	amountExpr+` crores`,
	`budget of `+amountExpr,
	`around `+amountExpr,
)

func newBudgetRules(exprs ...string) []budgetRule {
	rules := make([]budgetRule, 0, len(exprs))
	for _, expr := range exprs {
		rules = append(rules, budgetRule{
			re:         regexp.MustCompile(expr),
			multiplier: magnitudeForPattern(expr),
			currency:   currencyForPattern(expr),
		})
	}
	return rules
}

func magnitudeForPattern(expr string) decimal.Decimal {
	switch {
	case strings.Contains(expr, "lakh"):
		return lakh
	case strings.Contains(expr, "crore"):
		return crore
	default:
		return unit
	}
}

// currencyForPattern classifies a rule by the text of its pattern, not by the
// matched utterance. Unmarked rules ("budget of", "around") resolve to USD, and
// the "dollars?" rule resolves to INR because its pattern contains "rs".
func currencyForPattern(expr string) types.Currency {
	for _, marker := range []string{"₹", "rupees", "inr", "rs", "lakh", "crore"} {
		if strings.Contains(expr, marker) {
			return types.CurrencyINR
		}
	}
	return types.CurrencyUSD
}

// ExtractBudget returns the amount and currency from the first budget rule
// whose capture parses. text must already be normalized.
func ExtractBudget(text string) (types.Money, bool) {
	m, ok, _ := extractBudget(text)
	return m, ok
}

func extractBudget(text string) (types.Money, bool, []*ParseError) {
	var fails []*ParseError
	for _, rule := range budgetRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, err := parseAmount(m[1])
		if err != nil {
			fails = append(fails, &ParseError{Field: FieldBudget, Rule: rule.re.String(), Capture: m[1], Err: err})
			continue
		}
		return types.Money{Amount: amount.Mul(rule.multiplier), Currency: rule.currency}, true, fails
	}
	return types.Money{}, false, fails
}

func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	whole, _, _ := strings.Cut(cleaned, ".")
	if len(whole) > maxAmountDigits {
		return decimal.Zero, errAmountRange
	}
	return decimal.NewFromString(cleaned)
}
