// Package units parses recipe quantities, canonicalizes unit spellings and
// converts imperial measures to metric for display.
package units

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Canonical unit tokens.
const (
	Cup        = "cup"
	Tablespoon = "tbsp"
	Teaspoon   = "tsp"
	FluidOunce = "fl oz"
	Ounce      = "oz"
	Pound      = "lb"
	Fahrenheit = "f"
	Gram       = "g"
	Kilogram   = "kg"
	Milliliter = "ml"
	Liter      = "l"
	Celsius    = "c"
)

// Metric display units produced by Convert.
const (
	DisplayMilliliter = "ml"
	DisplayGram       = "g"
	DisplayCelsius    = "°C"
)

var aliases = map[string]string{
	"cup": Cup, "cups": Cup, "c.": Cup,
	"tablespoon": Tablespoon, "tablespoons": Tablespoon, "tbsp": Tablespoon, "tbsps": Tablespoon,
	"tbs": Tablespoon, "tbl": Tablespoon, "tbsp.": Tablespoon, "T": Tablespoon,
	"teaspoon": Teaspoon, "teaspoons": Teaspoon, "tsp": Teaspoon, "tsps": Teaspoon, "tsp.": Teaspoon, "t": Teaspoon,
	"fl oz": FluidOunce, "fl. oz.": FluidOunce, "fl. oz": FluidOunce, "fluid ounce": FluidOunce, "fluid ounces": FluidOunce,
	"ounce": Ounce, "ounces": Ounce, "oz": Ounce, "oz.": Ounce,
	"pound": Pound, "pounds": Pound, "lb": Pound, "lbs": Pound, "lb.": Pound, "lbs.": Pound,
	"f": Fahrenheit, "°f": Fahrenheit, "ºf": Fahrenheit, "fahrenheit": Fahrenheit, "degrees f": Fahrenheit,
	"g": Gram, "gram": Gram, "grams": Gram, "gr": Gram,
	"kg": Kilogram, "kilogram": Kilogram, "kilograms": Kilogram,
	"ml": Milliliter, "milliliter": Milliliter, "milliliters": Milliliter, "millilitre": Milliliter, "millilitres": Milliliter,
	"l": Liter, "liter": Liter, "liters": Liter, "litre": Liter, "litres": Liter,
	"°c": Celsius, "ºc": Celsius, "celsius": Celsius, "degrees c": Celsius,
}

type rule struct {
	factor float64
	offset float64
	to     string
}

// Imperial to metric only.
var conversions = map[string]rule{
	Cup:        {factor: 236.588, to: DisplayMilliliter},
	Tablespoon: {factor: 14.7868, to: DisplayMilliliter},
	Teaspoon:   {factor: 4.92892, to: DisplayMilliliter},
	FluidOunce: {factor: 29.5735, to: DisplayMilliliter},
	Ounce:      {factor: 28.3495, to: DisplayGram},
	Pound:      {factor: 453.592, to: DisplayGram},
	Fahrenheit: {factor: 5.0 / 9.0, offset: -32, to: DisplayCelsius},
}

var vulgar = map[rune]float64{
	'½': 1.0 / 2, '⅓': 1.0 / 3, '⅔': 2.0 / 3, '¼': 1.0 / 4, '¾': 3.0 / 4,
	'⅕': 1.0 / 5, '⅖': 2.0 / 5, '⅗': 3.0 / 5, '⅘': 4.0 / 5, '⅙': 1.0 / 6,
	'⅚': 5.0 / 6, '⅛': 1.0 / 8, '⅜': 3.0 / 8, '⅝': 5.0 / 8, '⅞': 7.0 / 8,
}

// IsVulgarFraction reports whether r is a single-rune fraction such as '½'.
func IsVulgarFraction(r rune) bool {
	_, ok := vulgar[r]
	return ok
}

// ParseQuantity parses an integer, decimal, fraction ("3/4"), mixed number
// ("1 1/2") or unicode fraction ("1½") into a number. The second result is
// false when s is not a quantity.
func ParseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, "⁄", "/")

	// Split a trailing unicode fraction off its whole part: "1½" -> "1", "½".
	var tail float64
	if r := []rune(s); len(r) > 0 {
		if v, ok := vulgar[r[len(r)-1]]; ok {
			tail = v
			s = strings.TrimSpace(string(r[:len(r)-1]))
			if s == "" {
				return tail, true
			}
		}
	}

	fields := strings.Fields(s)
	var total float64
	switch len(fields) {
	case 1:
		v, ok := parseSimple(fields[0])
		if !ok {
			return 0, false
		}
		total = v
	case 2:
		whole, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil || !strings.Contains(fields[1], "/") || tail != 0 {
			return 0, false
		}
		frac, ok := parseFraction(fields[1])
		if !ok {
			return 0, false
		}
		total = float64(whole) + frac
	default:
		return 0, false
	}

	if tail != 0 && total != math.Trunc(total) {
		return 0, false
	}
	total += tail
	if math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		return 0, false
	}
	return total, true
}

func parseSimple(s string) (float64, bool) {
	if strings.Contains(s, "/") {
		return parseFraction(s)
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFraction(s string) (float64, bool) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(num, 10, 32)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseUint(den, 10, 32)
	if err != nil || d == 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}

// Canonical maps a unit spelling to its canonical token.
func Canonical(unit string) (string, bool) {
	u := strings.TrimSpace(unit)
	if u == "" {
		return "", false
	}
	// "T" and "t" are the only case-sensitive spellings.
	if c, ok := aliases[u]; ok && (u == "T" || u == "t") {
		return c, true
	}
	c, ok := aliases[strings.ToLower(u)]
	return c, ok
}

// Convertible reports whether unit has an imperial-to-metric rule.
func Convertible(unit string) bool {
	c, ok := Canonical(unit)
	if !ok {
		return false
	}
	_, ok = conversions[c]
	return ok
}

// Convert returns amount expressed in the metric counterpart of unit. When no
// rule exists the amount and unit come back unchanged and converted is false.
func Convert(amount float64, unit string) (value float64, to string, converted bool) {
	c, ok := Canonical(unit)
	if !ok {
		return amount, unit, false
	}
	r, ok := conversions[c]
	if !ok {
		return amount, unit, false
	}
	return (amount + r.offset) * r.factor, r.to, true
}

var denominators = []int{2, 3, 4, 8}

// Format renders an amount for display. Integers render as integers. In
// metric mode other values round to one decimal, or to the nearest integer
// above 10. In imperial mode they round to three decimals and render as the
// nearest vulgar fraction ("1 1/2").
func Format(amount float64, metric bool) string {
	if isInteger(amount) {
		return strconv.FormatFloat(math.Round(amount), 'f', -1, 64)
	}
	if metric {
		if amount > 10 {
			return strconv.FormatFloat(math.Round(amount), 'f', -1, 64)
		}
		return strconv.FormatFloat(math.Round(amount*10)/10, 'f', -1, 64)
	}
	return fraction(math.Round(amount*1000) / 1000)
}

func isInteger(v float64) bool {
	return math.Abs(v-math.Round(v)) < 1e-9
}

func fraction(v float64) string {
	whole := math.Floor(v)
	rem := v - whole

	bestNum, bestDen, bestErr := 0, 1, rem
	if 1-rem < bestErr {
		bestNum, bestDen, bestErr = 1, 1, 1-rem
	}
	for _, d := range denominators {
		n := int(math.Round(rem * float64(d)))
		if n <= 0 || n >= d {
			continue
		}
		if e := math.Abs(rem - float64(n)/float64(d)); e < bestErr-1e-12 {
			bestNum, bestDen, bestErr = n, d, e
		}
	}

	w := int64(whole)
	switch {
	case bestNum == 0 && w == 0:
		// Too small for any fraction; keep the rounded decimal.
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bestNum == 0:
		return strconv.FormatInt(w, 10)
	case bestDen == 1:
		return strconv.FormatInt(w+1, 10)
	case w == 0:
		return strconv.Itoa(bestNum) + "/" + strconv.Itoa(bestDen)
	default:
		return strconv.FormatInt(w, 10) + " " + strconv.Itoa(bestNum) + "/" + strconv.Itoa(bestDen)
	}
}
