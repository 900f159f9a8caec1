package document

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var arPrinter = message.NewPrinter(language.MustParse("es-AR"))

// FormatMoney renders an amount the way es-AR prints currency: $ 1.234,56.
func FormatMoney(d decimal.Decimal) string {
	v := d.Round(2).InexactFloat64()
	return "$ " + arPrinter.Sprint(number.Decimal(v, number.Scale(2)))
}
