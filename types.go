package moreremesas

import (
	"encoding/xml"
)

const (
	soapNS   = "http://schemas.xmlsoap.org/soap/envelope/"
	soap12NS = "http://www.w3.org/2003/05/soap-envelope"
	mmtNS    = "MMT"
	wsseNS   = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	wsuNS    = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd"
	dsigNS   = "http://www.w3.org/2000/09/xmldsig#"
	c14nAlg  = "http://www.w3.org/2001/10/xml-exc-c14n#"

	xmlProlog = `<?xml version="1.0" encoding="utf-8"?>`
)

type envelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	Soap    string   `xml:"xmlns:soap,attr"`
	MMT     string   `xml:"xmlns:mmt,attr"`
	Wsu     string   `xml:"xmlns:wsu,attr,omitempty"`
	Header  header   `xml:"soap:Header"`
	Body    body     `xml:"soap:Body"`
}

type header struct {
	Security *headerSecurity `xml:"wsse:Security"`
	Auth     *authHeader     `xml:"mmt:AuthHeader"`
}

type authHeader struct {
	AccessToken string `xml:"mmt:AccessToken"`
}

type body struct {
	ID   string `xml:"wsu:ID,attr,omitempty"`
	Call call
}

type headerSecurity struct {
	Wsse      string           `xml:"xmlns:wsse,attr"`
	Signature *headerSignature `xml:"Signature"`
}

type headerSignature struct {
	ID             string     `xml:"Id,attr"`
	Xmlns          string     `xml:"xmlns,attr"`
	SignedInfo     signedInfo `xml:"SignedInfo"`
	SignatureValue string     `xml:"SignatureValue"`
	KeyInfo        keyInfo    `xml:"KeyInfo"`
}

type signedInfo struct {
	CanonicalizationMethod algorithm `xml:"CanonicalizationMethod"`
	SignatureMethod        algorithm `xml:"SignatureMethod"`
	Reference              reference `xml:"Reference"`
}

type algorithm struct {
	Algorithm string `xml:"Algorithm,attr"`
}

type reference struct {
	URI        string `xml:"URI,attr"`
	Transforms struct {
		Transform algorithm `xml:"Transform"`
	} `xml:"Transforms"`
	DigestMethod algorithm `xml:"DigestMethod"`
	DigestValue  string    `xml:"DigestValue"`
}

type keyInfo struct {
	ID                     string `xml:"Id,attr"`
	SecurityTokenReference struct {
		X509Data x509Data `xml:"X509Data"`
	} `xml:"wsse:SecurityTokenReference"`
}

type x509Data struct {
	X509IssuerSerial struct {
		X509IssuerName   string `xml:"X509IssuerName"`
		X509SerialNumber string `xml:"X509SerialNumber"`
	} `xml:"X509IssuerSerial"`
	X509Certificate string `xml:"X509Certificate"`
}

// param is one request field. A param with children is rendered as a nested
// element and its value is ignored.
type param struct {
	name     string
	value    string
	children params
}

// params keeps request fields in wire order.
type params []param

// add appends a text field, omitting it when value is empty.
func (p *params) add(name, value string) {
	if value == "" {
		return
	}
	*p = append(*p, param{name: name, value: value})
}

// group appends a nested field, omitting it when it has no children.
func (p *params) group(name string, children params) {
	if len(children) == 0 {
		return
	}
	*p = append(*p, param{name: name, children: children})
}

func (p params) tokens() []xml.Token {
	tokens := []xml.Token{}

	for _, f := range p {
		t := xml.StartElement{Name: xml.Name{Local: "mmt:" + f.name}}

		tokens = append(tokens, t)
		if len(f.children) > 0 {
			tokens = append(tokens, f.children.tokens()...)
		} else {
			tokens = append(tokens, xml.CharData(f.value))
		}
		tokens = append(tokens, xml.EndElement{Name: t.Name})
	}

	return tokens
}

// call is the body payload: <mmt:Operation><mmt:Wrapper>fields</mmt:Wrapper></mmt:Operation>.
type call struct {
	operation string
	wrapper   string
	params    params
}

// MarshalXML writes the call as a token stream, keeping field order and escaping text.
func (c call) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	op := xml.StartElement{Name: xml.Name{Local: "mmt:" + c.operation}}
	wrapper := xml.StartElement{Name: xml.Name{Local: "mmt:" + c.wrapper}}

	tokens := []xml.Token{op, wrapper}
	tokens = append(tokens, c.params.tokens()...)
	tokens = append(tokens, wrapper.End(), op.End())

	for _, t := range tokens {
		err := e.EncodeToken(t)
		if err != nil {
			return err
		}
	}

	return e.Flush()
}
