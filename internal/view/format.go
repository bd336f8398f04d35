package view

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	currencyUnit = "درهم"
	distanceUnit = "كلم"
)

var printer = message.NewPrinter(language.MustParse("fr-MA"))

// FormatPrice renders a whole-dirham price grouped the fr-MA way,
// e.g. 150.000 درهم.
func FormatPrice(price float64) string {
	return groupDigits(math.Round(price)) + " " + currencyUnit
}

// FormatMileage renders a distance grouped the fr-MA way, e.g. 85.000 كلم.
func FormatMileage(km int) string {
	return groupDigits(float64(km)) + " " + distanceUnit
}

// groupDigits formats v without decimals, keeping the locale's grouping
// symbol.
func groupDigits(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}
