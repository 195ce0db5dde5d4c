package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MoneyFormatter renders an amount for user-facing messages
type MoneyFormatter interface {
	Format(amount decimal.Decimal) string
}

type LocaleFormatter struct {
	printer  *message.Printer
	currency string
}

// NewLocaleFormatter builds a formatter for a BCP 47 tag such as "fa-IR".
// Unknown tags fall back to English grouping.
func NewLocaleFormatter(tag, currency string) *LocaleFormatter {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.English
	}
	return &LocaleFormatter{printer: message.NewPrinter(lang), currency: currency}
}

func (f *LocaleFormatter) Format(amount decimal.Decimal) string {
	out := f.printer.Sprint(number.Decimal(amount.InexactFloat64(), number.MaxFractionDigits(2)))
	if f.currency == "" {
		return out
	}
	return strings.TrimSpace(out + " " + f.currency)
}
