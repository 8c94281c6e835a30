package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewTokenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for --account",
		Long: `Mint a bearer token for --account from the configured jwt.secret.
The token identifies the caller of deposit, withdraw and multisend requests.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.v.GetString("jwt.secret") == "" {
				return fmt.Errorf("jwt.secret is required to mint tokens")
			}
			tok, err := opts.token()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
}
