package nfce

import "github.com/shopspring/decimal"

// paymentMethods maps tPag codes to their printed labels.
var paymentMethods = map[string]string{
	"01": "Dinheiro",
	"02": "Cheque",
	"03": "Cartão de Crédito",
	"04": "Cartão de Débito",
	"05": "Crédito Loja",
	"10": "Vale Alimentação",
	"11": "Vale Refeição",
	"12": "Vale Presente",
	"13": "Vale Combustível",
	"15": "Boleto Bancário",
	"16": "Depósito Bancário",
	"17": "PIX",
	"18": "Transf. bancária / Carteira digital",
	"19": "Fidelidade/Cashback/Crédito Virtual",
	"90": "Outros",
}

// PaymentMethodLabel returns the label for a tPag code, or "Código {code}"
// for codes outside the table.
func PaymentMethodLabel(code string) string {
	if label, ok := paymentMethods[code]; ok {
		return label
	}
	return "Código " + code
}

// Payment is one detPag entry.
type Payment struct {
	// Code is the tPag payment method code.
	Code string

	// Text is the optional free-text description (xPag).
	Text string

	Amount decimal.Decimal
}

// Label returns the method label with the free text appended in parentheses.
func (p Payment) Label() string {
	label := PaymentMethodLabel(p.Code)
	if p.Text != "" {
		label += " (" + p.Text + ")"
	}
	return label
}
