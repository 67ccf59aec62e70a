package moreremesas

import "context"

// ClientIface defines the interface for a remittance Client. It makes mocking the client easier in your tests
type ClientIface interface {
	Auth(ctx context.Context) (*AuthResult, error)
	Rates(ctx context.Context, req RatesRequest) (*RatesResult, error)
	Branches(ctx context.Context, req BranchesRequest) (*BranchesResult, error)
	AllBranches(ctx context.Context, req BranchesRequest) ([]Branch, error)
	OrdersStatus(ctx context.Context, req OrdersStatusRequest) (*StatusResult, error)
	OrderCalc(ctx context.Context, req OrderCalcRequest) (*CalcResult, error)
	ReserveKey(ctx context.Context, req ReserveKeyRequest) (*ReserveResult, error)
	OrderImport(ctx context.Context, req OrderImportRequest) (*ImportResult, error)
	OrderUpdate(ctx context.Context, req OrderUpdateRequest) (*OrderResult, error)
	OrderCancel(ctx context.Context, req OrderCancelRequest) (*OrderResult, error)
	ListOperations(ctx context.Context, name string) ([]string, error)
}
