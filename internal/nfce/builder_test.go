package nfce

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/nfexml"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKey = "35240612345678000190650010000004561000004563"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buildString(t *testing.T, xml string) *Document {
	t.Helper()
	root, err := nfexml.ParseBytes([]byte(xml))
	require.NoError(t, err)
	return Build(root)
}

func TestLoadSampleDocument(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "nfce_proc.xml"))
	require.NoError(t, err)

	assert.Equal(t, sampleKey, doc.AccessKey)
	assert.Equal(t, "15/06/2024 15:33:21", doc.IssuedAt)
	assert.Equal(t, "456", doc.Number)
	assert.Equal(t, "1", doc.Series)

	assert.Equal(t, "Mercado Exemplo", doc.Issuer.DisplayName())
	assert.Equal(t, "12345678000190", doc.Issuer.CNPJ)
	assert.Equal(t, "111222333444", doc.Issuer.IE)
	assert.Equal(t, []string{"Rua das Flores, 100", "Centro - Sao Paulo/SP", "CEP 01001000"}, doc.Issuer.Address.Lines())

	assert.Equal(t, "Maria da Silva (12345678909)", doc.Recipient.Label())

	require.Len(t, doc.Items, 2)
	assert.Equal(t, "7891000100103", doc.Items[0].Code)
	assert.True(t, doc.Items[0].UnitPrice.Equal(dec("25.00")), doc.Items[0].UnitPrice.String())
	assert.True(t, doc.Items[1].Quantity.Equal(dec("1.2345")))
	assert.True(t, doc.Items[1].Total.Equal(dec("8.02")))

	assert.True(t, doc.Totals.Products.Equal(dec("58.01")))
	assert.True(t, doc.Totals.Discount.Equal(dec("1.01")))
	assert.True(t, doc.Totals.Other.IsZero())
	assert.True(t, doc.Totals.NetPayable.Equal(dec("57")))

	require.Len(t, doc.Payments, 3)
	assert.Equal(t, "PIX", doc.Payments[0].Label())
	assert.Equal(t, "Dinheiro (Dinheiro à vista)", doc.Payments[1].Label())
	assert.Equal(t, "Código 77", doc.Payments[2].Label())
	assert.True(t, doc.Change.Equal(dec("13")))

	assert.Contains(t, doc.QRCodeURL, "qrcode?p=")
}

func TestPaymentMethodLabel(t *testing.T) {
	tests := []struct {
		payment Payment
		want    string
	}{
		{Payment{Code: "17"}, "PIX"},
		{Payment{Code: "77"}, "Código 77"},
		{Payment{Code: "01", Text: "Dinheiro à vista"}, "Dinheiro (Dinheiro à vista)"},
		{Payment{Code: "03"}, "Cartão de Crédito"},
		{Payment{Code: "99", Text: "Vale"}, "Código 99 (Vale)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.payment.Label())
	}
}

func TestBuildBareNFeRoot(t *testing.T) {
	doc := buildString(t, `<NFe xmlns="http://www.portalfiscal.inf.br/nfe">
  <infNFe Id="NFe`+sampleKey+`">
    <ide><dhEmi>2025-07-15T15:33:21-03:00</dhEmi></ide>
    <emit><xNome>Loja Sem Fantasia</xNome></emit>
    <det><prod><cProd>1</cProd><xProd>Item</xProd><qCom>1</qCom><vUnCom>2</vUnCom><vProd>2</vProd></prod></det>
  </infNFe>
</NFe>`)

	assert.Equal(t, sampleKey, doc.AccessKey)
	assert.Equal(t, "15/07/2025 15:33:21", doc.IssuedAt)
	assert.Equal(t, "Loja Sem Fantasia", doc.Issuer.DisplayName())
	assert.Equal(t, "Não informado", doc.Recipient.Label())
	assert.Len(t, doc.Items, 1)
	assert.Empty(t, doc.Payments)
	assert.True(t, doc.Change.IsZero())
	assert.Equal(t, "", doc.QRCodeURL)
}

func TestBuildDegradesToDefaults(t *testing.T) {
	doc := buildString(t, `<something><else/></something>`)

	assert.Equal(t, "", doc.AccessKey)
	assert.Equal(t, "", doc.IssuedAt)
	assert.Equal(t, "Emitente", doc.Issuer.DisplayName())
	assert.Empty(t, doc.Issuer.Address.Lines())
	assert.Empty(t, doc.Items)
	assert.True(t, doc.Totals.Products.IsZero())
	assert.True(t, doc.Totals.NetPayable.IsZero())
	assert.Empty(t, doc.ExportRows())

	assert.NotPanics(t, func() { Build(nil) })
}

func TestIssuedAtFallbacks(t *testing.T) {
	tests := []struct {
		ide  string
		want string
	}{
		{`<dhEmi>2024-01-02T03:04:05-03:00</dhEmi>`, "02/01/2024 03:04:05"},
		{`<dhEmi>2024-01-02T03:04:05</dhEmi>`, "02/01/2024 03:04:05"},
		{`<dhEmi>2024-01-02T03:04:05.123Z</dhEmi>`, "02/01/2024 03:04:05"},
		{`<dEmi>2009-12-31</dEmi>`, "31/12/2009 00:00:00"},
		{`<dhEmi>ontem à tarde</dhEmi>`, "ontem à tarde"},
		{``, ""},
	}

	for _, tt := range tests {
		doc := buildString(t, `<NFe><infNFe><ide>`+tt.ide+`</ide></infNFe></NFe>`)
		assert.Equal(t, tt.want, doc.IssuedAt, tt.ide)
	}
}

func TestLegacyPaymentGroups(t *testing.T) {
	doc := buildString(t, `<NFe><infNFe>
  <pag><tPag>04</tPag><vPag>10.00</vPag></pag>
  <pag><tPag>01</tPag><vPag>5.555</vPag><vTroco>0.555</vTroco></pag>
</infNFe></NFe>`)

	require.Len(t, doc.Payments, 2)
	assert.Equal(t, "Cartão de Débito", doc.Payments[0].Label())
	assert.True(t, doc.Payments[1].Amount.Equal(dec("5.56")))
	assert.True(t, doc.Change.Equal(dec("0.56")))
}

func TestRecipientCNPJFallback(t *testing.T) {
	doc := buildString(t, `<NFe><infNFe><dest><CNPJ>11222333000181</CNPJ></dest></infNFe></NFe>`)
	assert.Equal(t, "Não informado (11222333000181)", doc.Recipient.Label())
}

func TestExportRows(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "nfce_proc.xml"))
	require.NoError(t, err)

	rows := doc.ExportRows()
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, sampleKey, row.AccessKey)
		assert.Equal(t, "15/06/2024 15:33:21", row.IssuedAt)
	}
	assert.Equal(t, "BANANA PRATA", rows[1].Description)
	assert.Equal(t, "1.2345", rows[1].Quantity.String())
	assert.Equal(t, "KG", rows[1].Unit)
	assert.Equal(t, "6.50", rows[1].UnitPrice.StringFixed(2))
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xml")
	require.NoError(t, os.WriteFile(path, []byte("<NFe><infNFe></NFe>"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, nfexml.ErrMalformedSource))
}
