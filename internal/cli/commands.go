package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dcu/moreremesas"
)

func newAuthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate and show the token expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			res, err := ctx.Client.Auth(cmd.Context())
			if err != nil {
				return err
			}

			out := struct {
				Expires  *time.Time        `json:"expires,omitempty"`
				Response *moreremesas.Node `json:"response"`
			}{Response: res.Node}
			if !res.Expires.IsZero() {
				out.Expires = &res.Expires
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newRatesCommand() *cobra.Command {
	var req moreremesas.RatesRequest

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Query exchange rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := getCliContext(cmd).Client.Rates(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Node)
		},
	}

	cmd.Flags().StringVar(&req.Currency, "currency", "", "Payout currency (required)")
	cmd.Flags().StringVar(&req.BaseCurrency, "base", "", "Base currency")
	cmd.Flags().StringVar(&req.PayerID, "payer", "", "Payer id")
	cmd.Flags().StringVar(&req.BranchID, "branch", "", "Branch id")
	cmd.Flags().BoolVar(&req.IncludeDynamicRates, "dynamic", false, "Include dynamic rates")

	return cmd
}

func newBranchesCommand() *cobra.Command {
	var (
		req        moreremesas.BranchesRequest
		branchType string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List payout branches of a country",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getCliContext(cmd).Client
			req.Type = moreremesas.BranchType(branchType)

			if all {
				branches, err := client.AllBranches(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), branches)
			}

			res, err := client.Branches(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Node)
		},
	}

	cmd.Flags().StringVar(&req.Country, "country", "", "ISO country code (required)")
	cmd.Flags().StringVar(&branchType, "type", string(moreremesas.BranchCash), "Branch type: 1 bank, 2 cash, 3 wallet")
	cmd.Flags().IntVar(&req.MaxResults, "max", 0, "Page size")
	cmd.Flags().StringVar(&req.NextID, "next", "", "Cursor returned by the previous page")
	cmd.Flags().BoolVar(&all, "all", false, "Follow the cursor and print every branch")

	return cmd
}

func newStatusCommand() *cobra.Command {
	var req moreremesas.OrdersStatusRequest

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := getCliContext(cmd).Client.OrdersStatus(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := struct {
				Status      moreremesas.OrderStatus `json:"status"`
				Description string                  `json:"description"`
				Response    *moreremesas.Node       `json:"response"`
			}{Status: res.Status(), Description: res.Status().String(), Response: res.Node}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&req.OrderPartnerID, "partner-id", "", "Partner order reference")
	cmd.Flags().StringVar(&req.OrderID, "order-id", "", "Provider order id")

	return cmd
}

type calcOptionView struct {
	Description     string          `json:"description"`
	BranchID        string          `json:"branchId"`
	PayerID         string          `json:"payerId"`
	SendCurrency    string          `json:"sendCurrency"`
	SendAmount      decimal.Decimal `json:"sendAmount"`
	PaymentCurrency string          `json:"paymentCurrency"`
	PaymentAmount   decimal.Decimal `json:"paymentAmount"`
	Fees            decimal.Decimal `json:"fees"`
	Total           decimal.Decimal `json:"total"`
	Rate            decimal.Decimal `json:"rate"`
}

func newCalcCommand() *cobra.Command {
	var (
		req      moreremesas.OrderCalcRequest
		calcType string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Quote a transfer",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.CalcType = moreremesas.CalcType(calcType)

			res, err := getCliContext(cmd).Client.OrderCalc(cmd.Context(), req)
			if err != nil {
				return err
			}

			options := make([]calcOptionView, 0)
			for _, o := range res.Options() {
				options = append(options, calcOptionView{
					Description:     o.Description,
					BranchID:        o.BranchID,
					PayerID:         o.PayerID,
					SendCurrency:    o.SendCurrency,
					SendAmount:      o.SendAmount,
					PaymentCurrency: o.PaymentCurrency,
					PaymentAmount:   o.PaymentAmount,
					Fees:            o.Fees(),
					Total:           o.Total(),
					Rate:            o.Rate(),
				})
			}
			return printJSON(cmd.OutOrStdout(), options)
		},
	}

	cmd.Flags().StringVar(&req.CountryTo, "country", "", "Destination country (required)")
	cmd.Flags().StringVar(&req.PaymentCurrency, "currency", "", "Payout currency (required)")
	cmd.Flags().StringVar(&calcType, "type", string(moreremesas.CalcPayAtDestination), "Calc type: 1 pay at destination, 2 equivalent base, 3 commission included")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount (required)")

	return cmd
}

func newReserveCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Reserve an order described in a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := loadOrder(file)
			if err != nil {
				return err
			}

			res, err := getCliContext(cmd).Client.ReserveKey(cmd.Context(), moreremesas.ReserveKeyRequest{OrderInfo: order})
			if err != nil {
				return err
			}

			out := struct {
				ReserveKey string            `json:"reserveKey"`
				Response   *moreremesas.Node `json:"response"`
			}{ReserveKey: res.Key(), Response: res.Node}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Order YAML file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newImportCommand() *cobra.Command {
	var (
		file       string
		reserveKey string
		partnerID  string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Submit an order described in a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			order, err := loadOrder(file)
			if err != nil {
				return err
			}
			if order.OrderPartnerID == "" && partnerID != "" {
				order.OrderPartnerID = moreremesas.NewPartnerID(partnerID)
				ctx.Logger.Info("generated partner id", "order_partner_id", order.OrderPartnerID)
			}

			res, err := ctx.Client.OrderImport(cmd.Context(), moreremesas.OrderImportRequest{
				ReserveKey: reserveKey,
				OrderInfo:  order,
			})
			if err != nil {
				return err
			}

			out := struct {
				OrderPartnerID      string            `json:"orderPartnerId"`
				SystemReference     string            `json:"systemReference"`
				CreditLimitExceeded bool              `json:"creditLimitExceeded"`
				Response            *moreremesas.Node `json:"response"`
			}{
				OrderPartnerID:      order.OrderPartnerID,
				SystemReference:     res.SystemReference(),
				CreditLimitExceeded: res.CreditLimitExceeded(),
				Response:            res.Node,
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Order YAML file (required)")
	cmd.Flags().StringVar(&reserveKey, "reserve-key", "", "Reservation key from a previous reserve")
	cmd.Flags().StringVar(&partnerID, "generate-partner-id", "", "Generate OrderPartnerID with this prefix when the file has none")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newUpdateCommand() *cobra.Command {
	var req moreremesas.OrderUpdateRequest

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Amend an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := getCliContext(cmd).Client.OrderUpdate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Node)
		},
	}

	cmd.Flags().StringVar(&req.OrderID, "order-id", "", "Provider order id")
	cmd.Flags().StringVar(&req.OrderPartnerID, "partner-id", "", "Partner order reference")
	cmd.Flags().StringVar(&req.BeneMessage, "message", "", "New message for the beneficiary")
	cmd.Flags().StringVar(&req.PayoutBranchID, "branch", "", "New payout branch")

	return cmd
}

func newCancelCommand() *cobra.Command {
	var req moreremesas.OrderCancelRequest

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := getCliContext(cmd).Client.OrderCancel(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Node)
		},
	}

	cmd.Flags().StringVar(&req.OrderID, "order-id", "", "Provider order id (required)")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "Cancellation reason")

	return cmd
}

func newOperationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "operations OPERATION",
		Short:     "List the operations published in an endpoint WSDL",
		Args:      cobra.ExactArgs(1),
		ValidArgs: moreremesas.Operations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := getCliContext(cmd).Client.ListOperations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, op := range ops {
				fmt.Fprintln(cmd.OutOrStdout(), op)
			}
			return nil
		},
	}
}

func newPartnerIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "partner-id [PREFIX]",
		Short:       "Print a new order partner reference",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			fmt.Fprintln(cmd.OutOrStdout(), moreremesas.NewPartnerID(prefix))
			return nil
		},
	}
}
