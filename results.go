package moreremesas

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MessageCreditLimitExceeded is the message code the provider attaches to an
// import refused because the agent credit limit was reached.
const MessageCreditLimitExceeded = "22"

// AuthResult is the response of an explicit authentication.
type AuthResult struct {
	*Node
	// Expires is the token DueDate, zero when the provider sent none.
	Expires time.Time
}

// RatesResult is the response of Rates.
type RatesResult struct {
	*Node
}

// Rates returns every Rates/Rate entry.
func (r *RatesResult) Rates() []*Node {
	return r.List("Rates", "Rate")
}

// RateID returns the first usable rate id, or "".
func (r *RatesResult) RateID() string {
	for _, rate := range r.Rates() {
		if id := rate.First("ID", "RateID"); id != "" && id != "0" {
			return id
		}
	}
	return ""
}

// Branch is a payout branch with the provider's field aliases resolved.
type Branch struct {
	ID         string
	PayerID    string
	Name       string
	CityState  string
	Currencies []string
	BankID     string
	BankName   string
}

// BranchesResult is one page of Branches.
type BranchesResult struct {
	*Node
}

// Branches returns the branches of the page that carry an id.
func (r *BranchesResult) Branches() []Branch {
	items := r.List("Branches", "Branch")
	if len(items) == 0 {
		items = r.List("Branches", "BranchItem")
	}

	branches := make([]Branch, 0, len(items))
	for _, it := range items {
		b := Branch{
			ID:        it.First("BranchId", "BranchID", "ID", "Id"),
			PayerID:   it.First("PayerId", "PayerID"),
			Name:      it.First("Name", "BranchName"),
			CityState: it.First("CityState", "City", "CityName"),
			BankID:    it.StringAt("BankID"),
			BankName:  it.StringAt("BankName"),
		}
		if b.ID == "" {
			continue
		}
		if b.PayerID == "" {
			b.PayerID = "0"
		}
		for _, c := range it.List("Currencies", "Currency") {
			code := c.Text
			if !c.IsLeaf() {
				code = c.First("Currency", "Code")
			}
			if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
				b.Currencies = append(b.Currencies, code)
			}
		}
		branches = append(branches, b)
	}
	return branches
}

// NextID returns the cursor of the next page, or "" on the last page.
func (r *BranchesResult) NextID() string {
	next := r.StringAt("NextID")
	if next == "0" {
		return ""
	}
	return next
}

// Tax is one fee line of a calc option.
type Tax struct {
	Amount   decimal.Decimal
	Currency string
}

// CalcOption is one payout option quoted by OrderCalc.
type CalcOption struct {
	Node            *Node
	Description     string
	BranchID        string
	PayerID         string
	RateID          string
	SendCurrency    string
	SendAmount      decimal.Decimal
	PaymentCurrency string
	PaymentAmount   decimal.Decimal
	ExchangeRate    decimal.Decimal
	Taxes           []Tax
}

// Fees sums the taxes charged in the send currency.
func (o CalcOption) Fees() decimal.Decimal {
	total := decimal.Zero
	for _, t := range o.Taxes {
		if t.Currency == "" || strings.EqualFold(t.Currency, o.SendCurrency) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Total is the amount charged to the customer.
func (o CalcOption) Total() decimal.Decimal {
	return o.SendAmount.Add(o.Fees())
}

// Rate returns the quoted exchange rate, derived from the amounts when the
// provider did not send one.
func (o CalcOption) Rate() decimal.Decimal {
	if !o.ExchangeRate.IsZero() {
		return o.ExchangeRate
	}
	if o.SendAmount.IsZero() {
		return decimal.Zero
	}
	return o.PaymentAmount.DivRound(o.SendAmount, 4)
}

// ApplyTo copies the quote into an order: currencies, amounts, payout
// branch, payer and rate.
func (o CalcOption) ApplyTo(info *OrderInfo) {
	if o.SendCurrency != "" {
		info.OrderCurrency = o.SendCurrency
	}
	if !o.SendAmount.IsZero() {
		info.OrderAmount = o.SendAmount
	}
	if o.PaymentCurrency != "" {
		info.PayoutCurrency = o.PaymentCurrency
	}
	if !o.PaymentAmount.IsZero() {
		info.PayoutAmount = o.PaymentAmount
	}
	if o.BranchID != "" {
		info.PayoutBranchID = o.BranchID
	}
	if o.PayerID != "" {
		info.PayerID = o.PayerID
	}
	if o.RateID != "" && o.RateID != "0" {
		info.OrderRateID = o.RateID
	}
}

// CalcResult is the response of OrderCalc.
type CalcResult struct {
	*Node
}

// Options returns the quoted payout options; empty when the provider has none.
func (r *CalcResult) Options() []CalcOption {
	items := r.List("Options", "Option")
	options := make([]CalcOption, 0, len(items))
	for _, it := range items {
		opt := CalcOption{
			Node:            it,
			Description:     it.First("Description", "Network", "PayerName"),
			BranchID:        it.First("BranchID", "BranchId"),
			PayerID:         it.First("PayerID", "PayerId"),
			RateID:          it.First("RateID", "OptionID"),
			SendCurrency:    strings.ToUpper(it.StringAt("SendCurrency")),
			SendAmount:      parseAmount(it.StringAt("SendAmount")),
			PaymentCurrency: strings.ToUpper(it.StringAt("PaymentCurrency")),
			PaymentAmount:   parseAmount(it.StringAt("PaymentAmount")),
			ExchangeRate:    parseAmount(it.First("ExchangeRate", "Rate", "RateValue", "FxRate")),
		}
		for _, t := range it.List("Taxes", "Tax") {
			opt.Taxes = append(opt.Taxes, Tax{
				Amount:   parseAmount(t.First("Amount", "TaxAmount")),
				Currency: strings.ToUpper(t.First("Currency", "TaxCurrency")),
			})
		}
		options = append(options, opt)
	}
	return options
}

// ReserveResult is the response of ReserveKey.
type ReserveResult struct {
	*Node
}

// Key returns the reservation key, or "" when the provider issued none.
func (r *ReserveResult) Key() string {
	if k := r.First("ReservationKey", "ReserveKey", "PaymentKey", "OrderPayoutKey"); k != "" {
		return k
	}
	if attrs := r.Get("Attributes"); attrs != nil {
		return attrs.First("ReserveKey", "ReservationKey")
	}
	return ""
}

// ImportResult is the response of OrderImport.
type ImportResult struct {
	*Node
}

// SystemReference returns the provider's reference for the imported order.
func (r *ImportResult) SystemReference() string {
	if ref := r.First("SystemReference", "OrderId", "OrderID", "OrderNumber"); ref != "" {
		return ref
	}
	if order := r.Get("Order"); order != nil {
		return order.First("SystemReference", "OrderId", "OrderID", "OrderNumber")
	}
	return ""
}

// CreditLimitExceeded reports whether the provider flagged the agent credit limit.
func (r *ImportResult) CreditLimitExceeded() bool {
	return slices.Contains(r.MessageCodes(), MessageCreditLimitExceeded)
}

// IsCreditLimitExceeded reports whether err is a provider fault whose
// messages carry the credit limit code.
func IsCreditLimitExceeded(err error) bool {
	var e *Error
	if !errors.As(err, &e) || e.Response == nil {
		return false
	}
	return slices.Contains(e.Response.MessageCodes(), MessageCreditLimitExceeded)
}

// StatusResult is the response of OrdersStatus.
type StatusResult struct {
	*Node
}

// Orders returns every Orders/Order entry.
func (r *StatusResult) Orders() []*Node {
	return r.List("Orders", "Order")
}

// Status returns the status of the order, or "" when none was reported.
func (r *StatusResult) Status() OrderStatus {
	if s := r.First("OrderStatus", "Status", "StatusCode"); s != "" {
		return OrderStatus(s)
	}
	for _, o := range r.Orders() {
		if s := o.First("OrderStatus", "Status", "StatusCode"); s != "" {
			return OrderStatus(s)
		}
	}
	return ""
}

// OrderResult is the response of OrderUpdate and OrderCancel.
type OrderResult struct {
	*Node
}

// parseAmount reads provider amounts written with either decimal separator.
// Unparsable text yields zero.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
