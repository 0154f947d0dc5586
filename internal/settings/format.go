package settings

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"planeja/internal/core"
)

// MaskedValue replaces every amount when hideValues is on.
const MaskedValue = "••••••"

const nbsp = "\u00a0"

type currencyLocale struct {
	tag         language.Tag
	symbol      string
	symbolAfter bool
	spaced      bool
}

// locales maps each supported currency to the locale whose conventions it
// is displayed with.
var locales = map[string]currencyLocale{
	"BRL": {tag: language.BrazilianPortuguese, symbol: "R$", spaced: true},
	"USD": {tag: language.AmericanEnglish, symbol: "$"},
	"EUR": {tag: language.German, symbol: "€", symbolAfter: true, spaced: true},
}

// FormatMoney renders m in the given currency with zero to two fraction
// digits, e.g. "R$ 1.234,5", "$1,234.5" or "1.234,5 €".
func FormatMoney(m core.Money, code string) string {
	loc, ok := locales[code]
	if !ok {
		loc = locales["BRL"]
	}

	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	p := message.NewPrinter(loc.tag)
	digits := p.Sprint(number.Decimal(float64(cents)/100,
		number.MinFractionDigits(0), number.MaxFractionDigits(2)))

	sep := ""
	if loc.spaced {
		sep = nbsp
	}
	if loc.symbolAfter {
		return sign + digits + sep + loc.symbol
	}
	return sign + loc.symbol + sep + digits
}

// Formatter returns a func the view layer can hold without knowing about
// the settings store.
func (s *Store) Formatter() func(core.Money) string {
	return s.FormatCurrency
}

// FormatCurrency formats m using the current currency, or masks it.
func (s *Store) FormatCurrency(m core.Money) string {
	cur := s.Get()
	if cur.Appearance.HideValues {
		return MaskedValue
	}
	return FormatMoney(m, cur.Financial.Currency)
}

// NextCloseDate returns the next billing close date on or after now's day.
// A closeDay past the end of a month closes on that month's last day.
func NextCloseDate(now time.Time, closeDay int) time.Time {
	y, mo, d := now.Date()
	loc := now.Location()

	closeIn := func(y int, mo time.Month) time.Time {
		last := time.Date(y, mo+1, 0, 0, 0, 0, 0, loc).Day()
		day := closeDay
		if day > last {
			day = last
		}
		return time.Date(y, mo, day, 0, 0, 0, 0, loc)
	}

	this := closeIn(y, mo)
	if d <= this.Day() {
		return this
	}
	return closeIn(y, mo+1)
}

// NextCloseDate applies the configured close day.
func (s *Store) NextCloseDate(now time.Time) time.Time {
	return NextCloseDate(now, s.Get().Financial.CloseDay)
}
