package moreremesas

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *OrderInfo {
	return &OrderInfo{
		OrderPartnerID: "ORD-20240501103000-ABC123",
		OrderDate:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		SourceCountry:  "CL",
		SourceBranchID: "CL001",
		OrderCurrency:  "USD",
		OrderAmount:    decimal.NewFromInt(500),
		PayoutCountry:  "HT",
		PayoutBranchID: "HT-0042",
		PayoutCurrency: "USD",
		PayoutAmount:   decimal.RequireFromString("495.5"),
		PayoutMethod:   BranchCash,
		Customer: &Person{
			FirstName:   "Ana",
			LastName:    "Perez",
			Gender:      "F",
			Nationality: "CL",
			DateOfBirth: time.Date(1990, 2, 3, 0, 0, 0, 0, time.UTC),
			Address:     &Address{City: "Santiago", StreetAndNumber: "Av. Matta 123"},
			Document:    &IdentityDocument{Type: "99", Number: "12345678-9", IssueCountry: "CL"},
		},
		Beneficiary: &Person{FirstName: "Jean", LastName: "Baptiste"},
	}
}

func TestRequestValidationNeverReachesNetwork(t *testing.T) {
	fp := newFakeProvider(t)
	c := newTestClient(t, fp)
	ctx := context.Background()

	incomplete := testOrder()
	incomplete.Customer = nil
	incomplete.OrderAmount = decimal.Zero

	tests := []struct {
		name   string
		call   func() error
		fields []string
	}{
		{
			name:   "rates without currency",
			call:   func() error { _, err := c.Rates(ctx, RatesRequest{}); return err },
			fields: []string{"Currency"},
		},
		{
			name:   "branches without country and type",
			call:   func() error { _, err := c.Branches(ctx, BranchesRequest{}); return err },
			fields: []string{"Country", "Type"},
		},
		{
			name:   "status without reference",
			call:   func() error { _, err := c.OrdersStatus(ctx, OrdersStatusRequest{}); return err },
			fields: []string{"OrderPartnerID|OrderId"},
		},
		{
			name: "calc with bad amount",
			call: func() error {
				_, err := c.OrderCalc(ctx, OrderCalcRequest{CountryTo: "HT", PaymentCurrency: "USD", CalcType: CalcPayAtDestination, Amount: "abc"})
				return err
			},
			fields: []string{"Amount"},
		},
		{
			name:   "calc empty",
			call:   func() error { _, err := c.OrderCalc(ctx, OrderCalcRequest{}); return err },
			fields: []string{"CountryTo", "PaymentCurrency", "CalcType", "Amount"},
		},
		{
			name:   "reserve without order",
			call:   func() error { _, err := c.ReserveKey(ctx, ReserveKeyRequest{}); return err },
			fields: []string{"OrderInfo"},
		},
		{
			name:   "reserve with incomplete order",
			call:   func() error { _, err := c.ReserveKey(ctx, ReserveKeyRequest{OrderInfo: incomplete}); return err },
			fields: []string{"OrderInfo.OrderAmount", "OrderInfo.Customer"},
		},
		{
			name:   "import without order",
			call:   func() error { _, err := c.OrderImport(ctx, OrderImportRequest{ReserveKey: "K"}); return err },
			fields: []string{"OrderInfo"},
		},
		{
			name:   "update without changes",
			call:   func() error { _, err := c.OrderUpdate(ctx, OrderUpdateRequest{OrderID: "1"}); return err },
			fields: []string{"update"},
		},
		{
			name:   "update without reference",
			call:   func() error { _, err := c.OrderUpdate(ctx, OrderUpdateRequest{BeneMessage: "hi"}); return err },
			fields: []string{"OrderId|OrderPartnerID"},
		},
		{
			name:   "cancel without order id",
			call:   func() error { _, err := c.OrderCancel(ctx, OrderCancelRequest{Reason: "duplicate"}); return err },
			fields: []string{"OrderId"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.fields, e.Fields)
		})
	}

	assert.Zero(t, fp.callCount(opAuth), "validation must not authenticate")
}

func TestOrderParams(t *testing.T) {
	p := testOrder().params()

	var names []string
	for _, f := range p {
		names = append(names, f.name)
	}
	assert.Equal(t, []string{
		"OrderPartnerID", "OrderDate", "SourceCountry", "SourceBranchID", "OrderCurrency",
		"OrderAmount", "PayoutCountry", "PayoutBranchID", "PayoutCurrency", "PayoutAmount",
		"PayoutMethod", "Customer", "Beneficiary",
	}, names)

	values := map[string]string{}
	for _, f := range p {
		values[f.name] = f.value
	}
	assert.Equal(t, "2024-05-01", values["OrderDate"])
	assert.Equal(t, "500.00", values["OrderAmount"])
	assert.Equal(t, "495.50", values["PayoutAmount"])
	assert.Equal(t, "2", values["PayoutMethod"])
}

func TestPersonParamsNestGroups(t *testing.T) {
	p := testOrder().Customer.params()

	var names []string
	for _, f := range p {
		names = append(names, f.name)
	}
	assert.Equal(t, []string{"FirstName", "LastName", "DateOfBirth", "Gender", "Nationality", "Address", "Document"}, names)
	assert.Equal(t, "1990-02-03", p[2].value)
	assert.Len(t, p[5].children, 2)
	assert.Equal(t, "StreetAndNumber", p[5].children[1].name)
}

func TestOrderImportPutsReserveKeyFirst(t *testing.T) {
	p := OrderImportRequest{ReserveKey: "RK-1", OrderInfo: testOrder()}.params()

	require.NotEmpty(t, p)
	assert.Equal(t, "ReserveKey", p[0].name)
	assert.Equal(t, "RK-1", p[0].value)
	assert.Equal(t, "OrderPartnerID", p[1].name)
}

func TestOrderCalcAmountAcceptsComma(t *testing.T) {
	req := OrderCalcRequest{CountryTo: "HT", PaymentCurrency: "USD", CalcType: CalcPayAtDestination, Amount: " 500,5 "}

	var chk checker
	req.check(&chk)
	require.NoError(t, chk.err("order_calc"))

	p := req.params()
	assert.Equal(t, "Amount", p[3].name)
	assert.Equal(t, "500.5", p[3].value)
}

func TestRatesParams(t *testing.T) {
	p := RatesRequest{Currency: "USD", PayerID: "7", IncludeDynamicRates: true}.params()

	assert.Equal(t, params{
		{name: "PayerId", value: "7"},
		{name: "Currency", value: "USD"},
		{name: "IncludeDynamicRates", value: "1"},
	}, p)
}

func TestBranchesParams(t *testing.T) {
	p := BranchesRequest{Country: "HT", Type: BranchCash, MaxResults: 50, NextID: "120"}.params()

	assert.Equal(t, params{
		{name: "Country", value: "HT"},
		{name: "Type", value: "2"},
		{name: "MaxResults", value: "50"},
		{name: "NextID", value: "120"},
	}, p)
}

func TestBankInfoValidation(t *testing.T) {
	order := testOrder()
	order.BankInfo = &BankInfo{BankAccType: "XYZ"}

	var chk checker
	ReserveKeyRequest{OrderInfo: order}.check(&chk)

	err := chk.err("reserve_key")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"OrderInfo.BankInfo.BankAccount", "OrderInfo.BankInfo.BankAccType"}, e.Fields)
}
