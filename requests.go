package moreremesas

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Address is the postal address of a person.
type Address struct {
	State           string `yaml:"State"`
	City            string `yaml:"City"`
	StreetAndNumber string `yaml:"StreetAndNumber"`
	ZipCode         string `yaml:"ZipCode"`
}

func (a *Address) params() params {
	var p params
	if a == nil {
		return p
	}
	p.add("State", a.State)
	p.add("City", a.City)
	p.add("StreetAndNumber", a.StreetAndNumber)
	p.add("ZipCode", a.ZipCode)
	return p
}

// IdentityDocument is the identity document of a person. Type is a provider
// document type code, e.g. "99" for a foreign identity document.
type IdentityDocument struct {
	Type           string    `yaml:"Type"`
	Number         string    `yaml:"Number"`
	IssueCountry   string    `yaml:"IssueCountry"`
	ExpirationDate time.Time `yaml:"ExpirationDate"`
}

func (d *IdentityDocument) params() params {
	var p params
	if d == nil {
		return p
	}
	p.add("Type", d.Type)
	p.add("Number", d.Number)
	p.add("IssueCountry", d.IssueCountry)
	p.add("ExpirationDate", formatDate(d.ExpirationDate))
	return p
}

// Person is the provider's PersonType2, used for customers and beneficiaries.
type Person struct {
	FirstName     string            `yaml:"FirstName"`
	LastName      string            `yaml:"LastName"`
	MiddleName    string            `yaml:"MiddleName"`
	MaidenName    string            `yaml:"MaidenName"`
	Phone         string            `yaml:"Phone"`
	DateOfBirth   time.Time         `yaml:"DateOfBirth"`
	Activity      string            `yaml:"Activity"`
	Profession    string            `yaml:"Profession"`
	Position      string            `yaml:"Position"`
	MaritalStatus string            `yaml:"MaritalStatus"`
	Gender        string            `yaml:"Gender"`
	Nationality   string            `yaml:"Nationality"`
	Email         string            `yaml:"Email"`
	Address       *Address          `yaml:"Address"`
	Document      *IdentityDocument `yaml:"Document"`
	PartnerID     string            `yaml:"PartnerId"`
	Relationship  string            `yaml:"Relationship"`
	PurposeCode   string            `yaml:"PourposeCode"`
}

func (p *Person) check(c *checker, prefix string) {
	if p == nil {
		c.missing = append(c.missing, prefix)
		return
	}
	c.require(prefix+".FirstName", p.FirstName)
	c.require(prefix+".LastName", p.LastName)
	c.expect(prefix+".Gender", p.Gender == "" || p.Gender == "M" || p.Gender == "F")
	c.expect(prefix+".Nationality", p.Nationality == "" || len(p.Nationality) == 2)
}

func (p *Person) params() params {
	var out params
	if p == nil {
		return out
	}
	out.add("FirstName", p.FirstName)
	out.add("LastName", p.LastName)
	out.add("MiddleName", p.MiddleName)
	out.add("MaidenName", p.MaidenName)
	out.add("Phone", p.Phone)
	out.add("DateOfBirth", formatDate(p.DateOfBirth))
	out.add("Activity", p.Activity)
	out.add("Profession", p.Profession)
	out.add("Position", p.Position)
	out.add("MaritalStatus", p.MaritalStatus)
	out.add("Gender", p.Gender)
	out.add("Nationality", p.Nationality)
	out.add("Email", p.Email)
	out.group("Address", p.Address.params())
	out.group("Document", p.Document.params())
	out.add("PartnerId", p.PartnerID)
	out.add("Relationship", p.Relationship)
	out.add("PourposeCode", p.PurposeCode)
	return out
}

// BankInfo carries the destination account of a bank payout.
type BankInfo struct {
	BankName     string          `yaml:"BankName"`
	BankBranch   string          `yaml:"BankBranch"`
	BankAccType  BankAccountType `yaml:"BankAccType"`
	BankAccount  string          `yaml:"BankAccount"`
	BankDocument string          `yaml:"BankDocument"`
	BankCity     string          `yaml:"BankCity"`
}

func (b *BankInfo) check(c *checker, prefix string) {
	if b == nil {
		return
	}
	c.require(prefix+".BankAccount", b.BankAccount)
	c.expect(prefix+".BankAccType", b.BankAccType == "" || b.BankAccType.valid())
}

func (b *BankInfo) params() params {
	var p params
	if b == nil {
		return p
	}
	p.add("BankName", b.BankName)
	p.add("BankBranch", b.BankBranch)
	p.add("BankAccType", string(b.BankAccType))
	p.add("BankAccount", b.BankAccount)
	p.add("BankDocument", b.BankDocument)
	p.add("BankCity", b.BankCity)
	return p
}

// Wallet carries the destination of a mobile wallet payout.
type Wallet struct {
	Phone string `yaml:"Phone"`
}

// OrderInfo is the provider's OrderInfoType2.
type OrderInfo struct {
	OrderID        string          `yaml:"OrderId"`
	OrderPartnerID string          `yaml:"OrderPartnerID"`
	OrderDate      time.Time       `yaml:"OrderDate"`
	SourceCountry  string          `yaml:"SourceCountry"`
	SourceBranchID string          `yaml:"SourceBranchID"`
	OrderCurrency  string          `yaml:"OrderCurrency"`
	OrderAmount    decimal.Decimal `yaml:"OrderAmount"`
	OrderRateID    string          `yaml:"OrderRateID"`
	PayoutCountry  string          `yaml:"PayoutCountry"`
	PayoutBranchID string          `yaml:"PayoutBranchID"`
	PayoutCurrency string          `yaml:"PayoutCurrency"`
	PayoutAmount   decimal.Decimal `yaml:"PayoutAmount"`
	PayerID        string          `yaml:"PayerID"`
	PayoutMethod   BranchType      `yaml:"PayoutMethod"`
	BeneMessage    string          `yaml:"BeneMessage"`
	Relationship   string          `yaml:"Relationship"`
	PurposeCode    string          `yaml:"PourposeCode"`
	Customer       *Person         `yaml:"Customer"`
	Beneficiary    *Person         `yaml:"Beneficiary"`
	BankInfo       *BankInfo       `yaml:"BankInfo"`
	Wallet         *Wallet         `yaml:"Wallet"`
}

func (o *OrderInfo) check(c *checker, prefix string) {
	if o == nil {
		name := strings.TrimSuffix(prefix, ".")
		if name == "" {
			name = "OrderInfo"
		}
		c.missing = append(c.missing, name)
		return
	}
	c.expect(prefix+"OrderDate", !o.OrderDate.IsZero())
	c.require(prefix+"SourceCountry", o.SourceCountry)
	c.require(prefix+"SourceBranchID", o.SourceBranchID)
	c.require(prefix+"OrderCurrency", o.OrderCurrency)
	c.expect(prefix+"OrderAmount", o.OrderAmount.IsPositive())
	c.require(prefix+"PayoutBranchID", o.PayoutBranchID)
	c.expect(prefix+"PayoutAmount", !o.PayoutAmount.IsNegative())
	c.expect(prefix+"PayoutMethod", o.PayoutMethod == "" || o.PayoutMethod.valid())
	o.Customer.check(c, prefix+"Customer")
	o.Beneficiary.check(c, prefix+"Beneficiary")
	o.BankInfo.check(c, prefix+"BankInfo")
	if o.Wallet != nil {
		c.require(prefix+"Wallet.Phone", o.Wallet.Phone)
	}
}

func (o *OrderInfo) params() params {
	var p params
	if o == nil {
		return p
	}
	p.add("OrderId", o.OrderID)
	p.add("OrderPartnerID", o.OrderPartnerID)
	p.add("OrderDate", formatDate(o.OrderDate))
	p.add("SourceCountry", o.SourceCountry)
	p.add("SourceBranchID", o.SourceBranchID)
	p.add("OrderCurrency", o.OrderCurrency)
	p.add("OrderAmount", formatAmount(o.OrderAmount))
	p.add("OrderRateID", o.OrderRateID)
	p.add("PayoutCountry", o.PayoutCountry)
	p.add("PayoutBranchID", o.PayoutBranchID)
	p.add("PayoutCurrency", o.PayoutCurrency)
	p.add("PayoutAmount", formatAmount(o.PayoutAmount))
	p.add("PayerID", o.PayerID)
	p.add("PayoutMethod", string(o.PayoutMethod))
	p.add("BeneMessage", o.BeneMessage)
	p.add("Relationship", o.Relationship)
	p.add("PourposeCode", o.PurposeCode)
	p.group("Customer", o.Customer.params())
	p.group("Beneficiary", o.Beneficiary.params())
	p.group("BankInfo", o.BankInfo.params())
	if o.Wallet != nil {
		var w params
		w.add("Phone", o.Wallet.Phone)
		p.group("Wallet", w)
	}
	return p
}

// RatesRequest queries exchange rates.
type RatesRequest struct {
	PayerID             string
	BranchID            string
	Currency            string
	BaseCurrency        string
	IncludeDynamicRates bool
}

func (r RatesRequest) check(c *checker) {
	c.require("Currency", r.Currency)
}

func (r RatesRequest) params() params {
	var p params
	p.add("PayerId", r.PayerID)
	p.add("BranchID", r.BranchID)
	p.add("Currency", r.Currency)
	p.add("BaseCurrency", r.BaseCurrency)
	if r.IncludeDynamicRates {
		p.add("IncludeDynamicRates", "1")
	}
	return p
}

// BranchesRequest lists payout branches of a country, one page at a time.
// NextID is the cursor returned by the previous page.
type BranchesRequest struct {
	Country    string
	Type       BranchType
	MaxResults int
	NextID     string
}

func (r BranchesRequest) check(c *checker) {
	c.require("Country", r.Country)
	c.expect("Type", r.Type.valid())
	c.expect("MaxResults", r.MaxResults >= 0)
}

func (r BranchesRequest) params() params {
	var p params
	p.add("Country", r.Country)
	p.add("Type", string(r.Type))
	if r.MaxResults > 0 {
		p.add("MaxResults", strconv.Itoa(r.MaxResults))
	}
	p.add("NextID", r.NextID)
	return p
}

// OrdersStatusRequest looks an order up by partner id, system id, or both.
type OrdersStatusRequest struct {
	OrderPartnerID string
	OrderID        string
}

func (r OrdersStatusRequest) check(c *checker) {
	c.oneOf([]string{"OrderPartnerID", "OrderId"}, r.OrderPartnerID, r.OrderID)
}

func (r OrdersStatusRequest) params() params {
	var p params
	p.add("OrderPartnerID", r.OrderPartnerID)
	p.add("OrderId", r.OrderID)
	return p
}

// OrderCalcRequest quotes a transfer. Amount is sent as typed once validated
// as a decimal; a comma decimal separator is accepted.
type OrderCalcRequest struct {
	CountryTo       string
	PaymentCurrency string
	CalcType        CalcType
	Amount          string
}

func (r OrderCalcRequest) amount() string {
	return strings.ReplaceAll(strings.TrimSpace(r.Amount), ",", ".")
}

func (r OrderCalcRequest) check(c *checker) {
	c.require("CountryTo", r.CountryTo)
	c.require("PaymentCurrency", r.PaymentCurrency)
	c.expect("CalcType", r.CalcType.valid())
	d, err := decimal.NewFromString(r.amount())
	c.expect("Amount", err == nil && d.IsPositive())
}

func (r OrderCalcRequest) params() params {
	var p params
	p.add("CountryTo", r.CountryTo)
	p.add("PaymentCurrency", r.PaymentCurrency)
	p.add("CalcType", string(r.CalcType))
	p.add("Amount", r.amount())
	return p
}

// ReserveKeyRequest asks the provider for a reservation key for an order.
type ReserveKeyRequest struct {
	OrderInfo *OrderInfo
}

func (r ReserveKeyRequest) check(c *checker) {
	r.OrderInfo.check(c, "OrderInfo.")
}

func (r ReserveKeyRequest) params() params {
	var p params
	p.group("OrderInfo", r.OrderInfo.params())
	return p
}

// OrderImportRequest submits an order. ReserveKey is required by destinations
// that need a prior reservation.
type OrderImportRequest struct {
	ReserveKey string
	OrderInfo  *OrderInfo
}

func (r OrderImportRequest) check(c *checker) {
	r.OrderInfo.check(c, "")
}

func (r OrderImportRequest) params() params {
	var p params
	p.add("ReserveKey", r.ReserveKey)
	return append(p, r.OrderInfo.params()...)
}

// OrderUpdateRequest amends an existing order.
type OrderUpdateRequest struct {
	OrderID        string
	OrderPartnerID string
	BeneMessage    string
	PayoutBranchID string
	Beneficiary    *Person
	BankInfo       *BankInfo
}

func (r OrderUpdateRequest) check(c *checker) {
	c.oneOf([]string{"OrderId", "OrderPartnerID"}, r.OrderID, r.OrderPartnerID)
	if r.Beneficiary != nil {
		r.Beneficiary.check(c, "Beneficiary")
	}
	r.BankInfo.check(c, "BankInfo")
	c.expect("update", r.BeneMessage != "" || r.PayoutBranchID != "" || r.Beneficiary != nil || r.BankInfo != nil)
}

func (r OrderUpdateRequest) params() params {
	var p params
	p.add("OrderId", r.OrderID)
	p.add("OrderPartnerID", r.OrderPartnerID)
	p.add("BeneMessage", r.BeneMessage)
	p.add("PayoutBranchID", r.PayoutBranchID)
	p.group("Beneficiary", r.Beneficiary.params())
	p.group("BankInfo", r.BankInfo.params())
	return p
}

// OrderCancelRequest cancels an order.
type OrderCancelRequest struct {
	OrderID string
	Reason  string
}

func (r OrderCancelRequest) check(c *checker) {
	c.require("OrderId", r.OrderID)
}

func (r OrderCancelRequest) params() params {
	var p params
	p.add("OrderId", r.OrderID)
	p.add("Reason", r.Reason)
	return p
}

type checker struct {
	missing []string
}

func (c *checker) require(name, value string) {
	if strings.TrimSpace(value) == "" {
		c.missing = append(c.missing, name)
	}
}

func (c *checker) expect(name string, ok bool) {
	if !ok {
		c.missing = append(c.missing, name)
	}
}

func (c *checker) oneOf(names []string, values ...string) {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return
		}
	}
	c.missing = append(c.missing, strings.Join(names, "|"))
}

func (c *checker) err(op string) error {
	if len(c.missing) == 0 {
		return nil
	}
	return validationError(op, c.missing...)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}
