package moreremesas

import (
	"context"
)

// operation describes one remote capability.
type operation struct {
	name     string
	path     string
	action   string
	wrapper  string
	mutating bool
	schema   schema
}

func (o operation) soapAction() string {
	return "MMTaction/" + o.action
}

var (
	opAuth = operation{
		name:    "auth",
		path:    "/aWs_Api_Auth2.aspx",
		action:  "AWS_API_AUTH2.Execute",
		wrapper: "Logintype",
	}
	opRates = operation{
		name:    "rates",
		path:    "/aWs_Api_Rates2.aspx",
		action:  "AWS_API_RATES2.Execute",
		wrapper: "Rates2Request",
		schema:  schema{"Rates/Rate"},
	}
	opBranches = operation{
		name:    "branches",
		path:    "/aWs_Api_BranchesList2.aspx",
		action:  "AWS_API_BRANCHESLIST2.Execute",
		wrapper: "BranchList2Request",
		schema: schema{
			"Branches/Branch",
			"Branches/Branch/Currencies/Currency",
			"Branches/BranchItem",
			"Branches/BranchItem/Currencies/Currency",
		},
	}
	opOrdersStatus = operation{
		name:    "orders_status",
		path:    "/aWs_Api_OrdersStatus2.aspx",
		action:  "AWS_API_ORDERSSTATUS2.Execute",
		wrapper: "OrderStatus2Request",
		schema:  schema{"Orders/Order"},
	}
	opOrderCalc = operation{
		name:    "order_calc",
		path:    "/aWs_Api_OrderCalc2.aspx",
		action:  "AWS_API_ORDERCALC2.Execute",
		wrapper: "OrderCalc2Request",
		schema:  schema{"Options/Option", "Options/Option/Taxes/Tax"},
	}
	opReserveKey = operation{
		name:     "reserve_key",
		path:     "/aWs_Api_ReserveKey2.aspx",
		action:   "AWS_API_RESERVEKEY2.Execute",
		wrapper:  "ReserveKey2Request",
		mutating: true,
	}
	opOrderImport = operation{
		name:     "order_import",
		path:     "/aWs_Api_OrderImport2.aspx",
		action:   "AWS_API_ORDERIMPORT2.Execute",
		wrapper:  "OrderImport2Request",
		mutating: true,
	}
	opOrderUpdate = operation{
		name:     "order_update",
		path:     "/aWs_Api_OrderUpdate2.aspx",
		action:   "AWS_API_ORDERUPDATE2.Execute",
		wrapper:  "OrderUpdate2Request",
		mutating: true,
	}
	opOrderCancel = operation{
		name:     "order_cancel",
		path:     "/aWs_Api_OrderCancel2.aspx",
		action:   "AWS_API_ORDERCANCEL2.Execute",
		wrapper:  "OrderCancel2Request",
		mutating: true,
	}
)

var operations = []operation{
	opAuth, opRates, opBranches, opOrdersStatus, opOrderCalc,
	opReserveKey, opOrderImport, opOrderUpdate, opOrderCancel,
}

// Operations returns the facade operation names.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for _, op := range operations {
		names = append(names, op.name)
	}
	return names
}

func lookupOperation(name string) (operation, bool) {
	for _, op := range operations {
		if op.name == name {
			return op, true
		}
	}
	return operation{}, false
}

type request interface {
	check(c *checker)
	params() params
}

// invoke validates req locally, then runs the operation.
func (c *Client) invoke(ctx context.Context, op operation, req request) (*Node, error) {
	var chk checker
	req.check(&chk)
	if err := chk.err(op.name); err != nil {
		c.metrics.recordRequest(op.name, err)
		return nil, err
	}
	return c.call(ctx, op, req.params())
}

// Auth authenticates now, replacing any held token, and returns the auth response.
func (c *Client) Auth(ctx context.Context) (*AuthResult, error) {
	s, err := c.tokens.refresh(ctx, true)
	c.metrics.recordRequest(opAuth.name, err)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Node: s.doc, Expires: s.due}, nil
}

// Rates queries exchange rates.
func (c *Client) Rates(ctx context.Context, req RatesRequest) (*RatesResult, error) {
	node, err := c.invoke(ctx, opRates, req)
	if err != nil {
		return nil, err
	}
	return &RatesResult{Node: node}, nil
}

// Branches returns one page of payout branches.
func (c *Client) Branches(ctx context.Context, req BranchesRequest) (*BranchesResult, error) {
	node, err := c.invoke(ctx, opBranches, req)
	if err != nil {
		return nil, err
	}
	return &BranchesResult{Node: node}, nil
}

// AllBranches follows the NextID cursor until the provider reports the last page.
func (c *Client) AllBranches(ctx context.Context, req BranchesRequest) ([]Branch, error) {
	var all []Branch
	seen := map[string]bool{}
	for {
		page, err := c.Branches(ctx, req)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Branches()...)

		next := page.NextID()
		if next == "" || seen[next] {
			return all, nil
		}
		seen[next] = true
		req.NextID = next
	}
}

// OrdersStatus looks an order up.
func (c *Client) OrdersStatus(ctx context.Context, req OrdersStatusRequest) (*StatusResult, error) {
	node, err := c.invoke(ctx, opOrdersStatus, req)
	if err != nil {
		return nil, err
	}
	return &StatusResult{Node: node}, nil
}

// OrderCalc quotes a transfer and returns the payout options.
func (c *Client) OrderCalc(ctx context.Context, req OrderCalcRequest) (*CalcResult, error) {
	node, err := c.invoke(ctx, opOrderCalc, req)
	if err != nil {
		return nil, err
	}
	return &CalcResult{Node: node}, nil
}

// ReserveKey reserves an order and returns the reservation key.
func (c *Client) ReserveKey(ctx context.Context, req ReserveKeyRequest) (*ReserveResult, error) {
	node, err := c.invoke(ctx, opReserveKey, req)
	if err != nil {
		return nil, err
	}
	return &ReserveResult{Node: node}, nil
}

// OrderImport submits an order.
func (c *Client) OrderImport(ctx context.Context, req OrderImportRequest) (*ImportResult, error) {
	node, err := c.invoke(ctx, opOrderImport, req)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Node: node}, nil
}

// OrderUpdate amends an order.
func (c *Client) OrderUpdate(ctx context.Context, req OrderUpdateRequest) (*OrderResult, error) {
	node, err := c.invoke(ctx, opOrderUpdate, req)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Node: node}, nil
}

// OrderCancel cancels an order.
func (c *Client) OrderCancel(ctx context.Context, req OrderCancelRequest) (*OrderResult, error) {
	node, err := c.invoke(ctx, opOrderCancel, req)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Node: node}, nil
}
