// =============================================================================
// NFC-e to PDF Converter - Field Extractor
// =============================================================================
//
// This package wraps a parsed NFC-e XML tree behind a small, nil-safe accessor
// type. Every lookup tolerates absent nodes and empty values:
//
//   - Text    returns the trimmed text, or "" when the node or text is missing
//   - Decimal returns a 2-place half-up amount, or zero when empty/unparseable
//
// Paths use the etree path syntax ("ide/dhEmi", ".//protNFe/infProt/chNFe").
// Tags are written without a prefix and match elements in any namespace, so
// files using the default portalfiscal namespace and files using an explicit
// "nfe:" prefix resolve the same way.
//
// The only failure this package reports is a document that cannot be parsed
// at all (ErrMalformedSource).
//
// =============================================================================

package nfexml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/numfmt"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html/charset"
)

// Namespace is the XML namespace of NF-e and NFC-e documents.
const Namespace = "http://www.portalfiscal.inf.br/nfe"

// AccessKeyLength is the number of digits of a complete access key.
const AccessKeyLength = 44

// ErrMalformedSource is returned when a document cannot be parsed as XML.
var ErrMalformedSource = errors.New("malformed source document")

// =============================================================================
// PARSING
// =============================================================================

// Parse reads an XML document and returns its root node.
//
// Documents declaring a legacy encoding (ISO-8859-1, windows-1252) in their
// prolog are decoded to UTF-8 before parsing.
//
// RETURNS:
//   - The root node of the document.
//   - ErrMalformedSource (wrapped) if the markup is invalid or there is no
//     root element.
func Parse(r io.Reader) (*Node, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel

	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedSource)
	}

	return &Node{el: root}, nil
}

// ParseBytes parses an in-memory document.
func ParseBytes(data []byte) (*Node, error) {
	return Parse(bytes.NewReader(data))
}

// ParseFile opens and parses the document at path. Errors opening the file are
// returned as is; parse errors wrap ErrMalformedSource.
func ParseFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source document: %w", err)
	}
	defer f.Close()

	node, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}

// =============================================================================
// NODE ACCESSOR
// =============================================================================

// Node is a read-only view of one element. A nil *Node is valid and behaves
// as an absent element: every lookup on it yields the empty value.
type Node struct {
	el *etree.Element
}

// Tag returns the local element name.
func (n *Node) Tag() string {
	if n == nil {
		return ""
	}
	return n.el.Tag
}

// Namespace returns the namespace URI the element belongs to.
func (n *Node) Namespace() string {
	if n == nil {
		return ""
	}
	return n.el.NamespaceURI()
}

// Find returns the first element matching path, or nil.
func (n *Node) Find(path string) *Node {
	if n == nil {
		return nil
	}
	el := n.el.FindElement(path)
	if el == nil {
		return nil
	}
	return &Node{el: el}
}

// FindAll returns every element matching path in document order.
func (n *Node) FindAll(path string) []*Node {
	if n == nil {
		return nil
	}
	var nodes []*Node
	for _, el := range n.el.FindElements(path) {
		nodes = append(nodes, &Node{el: el})
	}
	return nodes
}

// Attr returns the value of an attribute, or "".
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.el.SelectAttrValue(name, ""))
}

// Text returns the trimmed text of the element at path. An empty path reads
// the node itself.
func (n *Node) Text(path string) string {
	target := n
	if path != "" {
		target = n.Find(path)
	}
	if target == nil {
		return ""
	}
	return strings.TrimSpace(target.el.Text())
}

// Decimal returns the amount at path rounded half-up to two places. Missing or
// non-numeric text yields zero.
func (n *Node) Decimal(path string) decimal.Decimal {
	return numfmt.Round2(n.RawDecimal(path))
}

// RawDecimal returns the number at path without rounding, or zero.
func (n *Node) RawDecimal(path string) decimal.Decimal {
	text := n.Text(path)
	if text == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// DOCUMENT SHAPE
// =============================================================================

// NFe returns the NFe element of a document. The root may be the NFe element
// itself or a container (nfeProc) holding it as a direct child.
func NFe(root *Node) *Node {
	if root == nil {
		return nil
	}
	if nfe := root.Find("NFe"); nfe != nil {
		return nfe
	}
	if strings.HasSuffix(root.Tag(), "NFe") {
		return root
	}
	return nil
}

// AccessKey extracts the 44-digit access key of a document.
//
// PRECEDENCE:
//  1. The Id attribute of NFe/infNFe, without its "NFe" prefix.
//  2. Otherwise the protocol receipt key, protNFe/infProt/chNFe, anywhere in
//     the tree.
//
// Non-digit characters are removed from whichever value was found and the
// result is truncated to 44 digits. It is "" when neither source has digits.
func AccessKey(root *Node) string {
	key := ""
	if info := NFe(root).Find("infNFe"); info != nil {
		key = strings.ReplaceAll(info.Attr("Id"), "NFe", "")
	}
	if key == "" {
		key = root.Text(".//protNFe/infProt/chNFe")
	}
	return digitsOnly(key, AccessKeyLength)
}

// digitsOnly keeps the first max ASCII digits of s.
func digitsOnly(s string, max int) string {
	var b strings.Builder
	for i := 0; i < len(s) && b.Len() < max; i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
