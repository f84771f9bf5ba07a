// =============================================================================
// NFC-e to PDF Converter - Invoice Model Builder
// =============================================================================
//
// Build assembles a Document from a parsed XML tree.
//
// ACCEPTED SHAPES:
//   - <nfeProc><NFe><infNFe>...</infNFe><infNFeSupl/></NFe><protNFe/></nfeProc>
//   - <NFe><infNFe>...</infNFe><infNFeSupl/></NFe>
//
// Every field degrades to its empty value when missing. Build itself never
// fails; the only document-level error is an unparseable file, reported by
// Load (nfexml.ErrMalformedSource).
//
// =============================================================================

package nfce

import (
	"time"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/nfexml"
	"github.com/shopspring/decimal"
)

// IssuedAtLayout is the presentation layout of the issue timestamp.
const IssuedAtLayout = "02/01/2006 15:04:05"

// issueLayouts are tried in order against ide/dhEmi (or the older ide/dEmi).
var issueLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Load parses the file at path and builds its Document.
func Load(path string) (*Document, error) {
	root, err := nfexml.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Build(root), nil
}

// Build produces the Document for a parsed tree. A nil root yields an empty
// document.
func Build(root *nfexml.Node) *Document {
	nfe := nfexml.NFe(root)
	info := nfe.Find("infNFe")
	ide := info.Find("ide")

	doc := &Document{
		AccessKey: nfexml.AccessKey(root),
		IssuedAt:  issuedAt(ide),
		Number:    ide.Text("nNF"),
		Series:    ide.Text("serie"),
		Issuer:    buildIssuer(info.Find("emit")),
		Recipient: buildRecipient(info.Find("dest")),
		Items:     buildItems(info),
		Totals:    buildTotals(info.Find("total/ICMSTot")),
		QRCodeURL: nfe.Text("infNFeSupl/qrCode"),
	}

	doc.Payments, doc.Change = buildPayments(info.FindAll("pag"))

	return doc
}

// =============================================================================
// SECTIONS
// =============================================================================

// issuedAt formats the issue timestamp, keeping the raw text when no known
// layout matches.
func issuedAt(ide *nfexml.Node) string {
	raw := ide.Text("dhEmi")
	if raw == "" {
		raw = ide.Text("dEmi")
	}
	if raw == "" {
		return ""
	}

	for _, layout := range issueLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(IssuedAtLayout)
		}
	}
	return raw
}

func buildIssuer(emit *nfexml.Node) Issuer {
	addr := emit.Find("enderEmit")
	return Issuer{
		Name:      emit.Text("xNome"),
		TradeName: emit.Text("xFant"),
		CNPJ:      emit.Text("CNPJ"),
		IE:        emit.Text("IE"),
		Address: Address{
			Street:   addr.Text("xLgr"),
			Number:   addr.Text("nro"),
			District: addr.Text("xBairro"),
			City:     addr.Text("xMun"),
			State:    addr.Text("UF"),
			ZIP:      addr.Text("CEP"),
		},
	}
}

func buildRecipient(dest *nfexml.Node) Recipient {
	taxID := dest.Text("CPF")
	if taxID == "" {
		taxID = dest.Text("CNPJ")
	}
	return Recipient{
		Name:  dest.Text("xNome"),
		TaxID: taxID,
	}
}

// buildItems reads every det/prod. A det without prod is skipped.
func buildItems(info *nfexml.Node) []LineItem {
	var items []LineItem
	for _, det := range info.FindAll("det") {
		prod := det.Find("prod")
		if prod == nil {
			continue
		}
		items = append(items, LineItem{
			Code:        prod.Text("cProd"),
			Description: prod.Text("xProd"),
			Quantity:    prod.RawDecimal("qCom"),
			Unit:        prod.Text("uCom"),
			UnitPrice:   prod.Decimal("vUnCom"),
			Total:       prod.Decimal("vProd"),
		})
	}
	return items
}

func buildTotals(icms *nfexml.Node) Totals {
	return Totals{
		Products:   icms.Decimal("vProd"),
		Discount:   icms.Decimal("vDesc"),
		Other:      icms.Decimal("vOutro"),
		NetPayable: icms.Decimal("vNF"),
	}
}

// buildPayments reads the detPag entries of every pag group and sums the
// change due. Pre-4.00 layouts carry tPag/vPag directly under pag; such a
// group is read as a single payment.
func buildPayments(groups []*nfexml.Node) ([]Payment, decimal.Decimal) {
	var payments []Payment
	change := decimal.Zero

	for _, pag := range groups {
		details := pag.FindAll("detPag")
		if len(details) == 0 && pag.Find("tPag") != nil {
			details = []*nfexml.Node{pag}
		}
		for _, dp := range details {
			payments = append(payments, Payment{
				Code:   dp.Text("tPag"),
				Text:   dp.Text("xPag"),
				Amount: dp.Decimal("vPag"),
			})
		}
		change = change.Add(pag.Decimal("vTroco"))
	}

	return payments, change
}
