package moreremesas

// ResponseCodeOK is the ResponseCode the provider returns on success.
const ResponseCodeOK = "1000"

// OrderStatus is the provider's order status code.
type OrderStatus string

const (
	StatusPending           OrderStatus = "P"
	StatusPaid              OrderStatus = "F"
	StatusWithheld          OrderStatus = "R"
	StatusCanceled          OrderStatus = "A"
	StatusIncidence         OrderStatus = "I"
	StatusPendingActivation OrderStatus = "N"
	StatusInTransit         OrderStatus = "T"
)

var orderStatusDescriptions = map[OrderStatus]string{
	StatusPending:           "Pending",
	StatusPaid:              "Paid",
	StatusWithheld:          "Withheld",
	StatusCanceled:          "Canceled",
	StatusIncidence:         "Incidence",
	StatusPendingActivation: "Pending Activation",
	StatusInTransit:         "In transit",
}

// Valid reports whether s belongs to the closed set of provider status codes.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusDescriptions[s]
	return ok
}

func (s OrderStatus) String() string {
	if d, ok := orderStatusDescriptions[s]; ok {
		return d
	}
	return string(s)
}

// CalcType selects how OrderCalc interprets the amount.
type CalcType string

const (
	CalcPayAtDestination   CalcType = "1"
	CalcEquivalentBase     CalcType = "2"
	CalcCommissionIncluded CalcType = "3"
)

func (t CalcType) valid() bool {
	switch t {
	case CalcPayAtDestination, CalcEquivalentBase, CalcCommissionIncluded:
		return true
	}
	return false
}

// BranchType is the payout method of a branch.
type BranchType string

const (
	BranchBank   BranchType = "1"
	BranchCash   BranchType = "2"
	BranchWallet BranchType = "3"
)

func (t BranchType) valid() bool {
	switch t {
	case BranchBank, BranchCash, BranchWallet:
		return true
	}
	return false
}

// BankAccountType is the BankAccType of a BankInfo block.
type BankAccountType string

const (
	BankAccountSavings  BankAccountType = "AHO"
	BankAccountChecking BankAccountType = "CTE"
)

func (t BankAccountType) valid() bool {
	return t == BankAccountSavings || t == BankAccountChecking
}
