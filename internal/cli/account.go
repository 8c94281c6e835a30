package cli

import (
	"fmt"
	"math/big"
	"os"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/recipients"
	"pooled-multisender/pkg/units"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func NewBalanceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account]",
		Short: "Show the stored balance of an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := opts.account()
			if len(args) == 1 {
				account = args[0]
			}
			if account == "" {
				return fmt.Errorf("an account is required")
			}

			client, err := opts.client(false)
			if err != nil {
				return err
			}
			balance, err := client.Balance(cmd.Context(), account)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "@%s: %s yNEAR (%s NEAR)\n", account, balance, units.FormatNear(balance.Big()))
			return err
		},
	}
}

type depositFlags struct {
	Amount       string
	ShortfallFor string
}

type DepositCommandRunner struct {
	opts  *rootOptions
	flags *depositFlags
}

func NewDepositCmd(opts *rootOptions) *cobra.Command {
	flags := &depositFlags{}

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit into the caller's pooled balance",
		Long: `Deposit an amount in NEAR into the caller's pooled balance.
With --shortfall-for, deposit exactly what the recipient list still needs
on top of the current balance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &DepositCommandRunner{opts: opts, flags: flags}
			return runner.Run(cmd)
		},
	}

	cmd.Flags().StringVar(&flags.Amount, "amount", "", "amount in NEAR, e.g. 1.5")
	cmd.Flags().StringVar(&flags.ShortfallFor, "shortfall-for", "", "recipient list whose total the balance should cover")
	cmd.MarkFlagsMutuallyExclusive("amount", "shortfall-for")
	cmd.MarkFlagsOneRequired("amount", "shortfall-for")

	return cmd
}

func (r *DepositCommandRunner) Run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	client, err := r.opts.client(true)
	if err != nil {
		return err
	}

	var amount *big.Int
	if r.flags.ShortfallFor != "" {
		list, err := readList(r.flags.ShortfallFor)
		if err != nil {
			return err
		}
		total, err := list.Total()
		if err != nil {
			return err
		}
		balance, err := client.Balance(ctx, r.opts.account())
		if err != nil {
			return err
		}
		shortfall := recipients.Shortfall(total, balance)
		if shortfall.IsZero() {
			pterm.Info.Printfln("Balance %s NEAR already covers %s NEAR, nothing to deposit", units.FormatNear(balance.Big()), units.FormatNear(total.Big()))
			return nil
		}
		amount = shortfall.Big()
	} else {
		if amount, err = units.ToYocto(r.flags.Amount); err != nil {
			return err
		}
	}

	yocto, err := domain.AmountFromBig(amount)
	if err != nil {
		return err
	}
	if yocto.IsZero() {
		return fmt.Errorf("deposit amount must be positive")
	}

	balance, err := client.Deposit(ctx, yocto, uuid.NewString())
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Deposited %s NEAR, balance is now %s NEAR", units.FormatNear(yocto.Big()), units.FormatNear(balance.Big()))
	return nil
}

func NewWithdrawCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw the caller's whole balance",
		Long: `Zero the caller's balance and transfer it back to the caller.
A withdrawal that fails on the transfer host is not credited back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(true)
			if err != nil {
				return err
			}
			handle, err := client.Withdraw(cmd.Context())
			if err != nil {
				return err
			}
			amount, err := domain.ParseAmount(handle.Amount)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Withdrawing %s NEAR (transfer %s)", units.FormatNear(amount.Big()), handle.ID)
			return nil
		},
	}
}

func readList(path string) (*recipients.List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recipient list: %w", err)
	}
	defer f.Close()
	return recipients.Parse(f)
}
