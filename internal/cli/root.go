// Package cli implements multisendctl, the operator client of the ledger
// HTTP API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"pooled-multisender/internal/service"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootOptions are resolved once per invocation and shared by subcommands.
type rootOptions struct {
	v       *viper.Viper
	cfgFile string
}

func (o *rootOptions) account() string {
	return o.v.GetString("cli.account")
}

// token returns the configured bearer token, minting one from jwt.secret
// when none is set.
func (o *rootOptions) token() (string, error) {
	if tok := o.v.GetString("cli.token"); tok != "" {
		return tok, nil
	}
	secret := o.v.GetString("jwt.secret")
	if secret == "" {
		return "", errors.New("no credentials: pass --token or set jwt.secret")
	}
	account := o.account()
	if account == "" {
		return "", errors.New("--account is required to mint a token")
	}
	tokens := service.NewJWTTokenService(secret, o.v.GetDuration("jwt.expiry"), o.v.GetString("jwt.issuer"))
	tok, _, err := tokens.Generate(account)
	if err != nil {
		return "", fmt.Errorf("minting token: %w", err)
	}
	return tok, nil
}

func (o *rootOptions) client(authenticated bool) (*Client, error) {
	token := ""
	if authenticated {
		var err error
		if token, err = o.token(); err != nil {
			return nil, err
		}
	}
	return NewClient(o.v.GetString("cli.server"), token, nil), nil
}

func (o *rootOptions) load() error {
	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// NewRootCmd builds the multisendctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}
	opts.v.SetDefault("cli.server", "http://localhost:8080")
	opts.v.SetDefault("jwt.expiry", time.Hour)
	opts.v.SetDefault("jwt.issuer", "pooled-multisender")
	opts.v.SetEnvPrefix("MSL")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	opts.v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "multisendctl",
		Short:         "multisendctl drives a pooled multisender ledger",
		Long:          `multisendctl deposits, withdraws and sends batches of transfers through a pooled multisender ledger.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "set the config file path")
	flags.String("server", "", "ledger base URL (default http://localhost:8080)")
	flags.StringP("account", "a", "", "account acting as caller")
	flags.String("token", "", "bearer token; minted from jwt.secret when empty")
	_ = opts.v.BindPFlag("cli.server", flags.Lookup("server"))
	_ = opts.v.BindPFlag("cli.account", flags.Lookup("account"))
	_ = opts.v.BindPFlag("cli.token", flags.Lookup("token"))

	rootCmd.AddCommand(NewTokenCmd(opts))
	rootCmd.AddCommand(NewBalanceCmd(opts))
	rootCmd.AddCommand(NewDepositCmd(opts))
	rootCmd.AddCommand(NewWithdrawCmd(opts))
	rootCmd.AddCommand(NewSendCmd(opts))
	rootCmd.AddCommand(NewCheckCmd(opts))

	return rootCmd
}

// Execute runs multisendctl and exits non-zero on failure.
func Execute() {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		pterm.Error.Println(capitalize(err.Error()))
		os.Exit(1)
	}
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
