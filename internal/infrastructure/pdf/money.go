package pdf

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money formatea montos con separadores en español (1.234,50).
type Money struct {
	printer *message.Printer
	symbol  string
}

// NewMoney formateador para la moneda local indicada por su código ISO.
func NewMoney(currency string) *Money {
	return &Money{printer: message.NewPrinter(language.Spanish), symbol: symbolFor(currency)}
}

func symbolFor(currency string) string {
	switch currency {
	case "", "VES":
		return "Bs."
	case "USD":
		return "$"
	case "COP":
		return "COL$"
	}
	return currency
}

// Number monto con dos decimales y separador de miles, sin símbolo.
func (m *Money) Number(d decimal.Decimal) string {
	return m.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// Format monto con símbolo de moneda: "Bs. 1.234,50".
func (m *Money) Format(d decimal.Decimal) string {
	return m.symbol + " " + m.Number(d)
}
