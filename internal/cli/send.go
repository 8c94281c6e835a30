package cli

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/recipients"
	"pooled-multisender/pkg/units"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type sendFlags struct {
	Mode        string
	File        string
	ChunkSize   int
	SkipInvalid bool
}

type SendCommandRunner struct {
	opts  *rootOptions
	flags *sendFlags
}

func NewSendCmd(opts *rootOptions) *cobra.Command {
	flags := &sendFlags{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send to every recipient of a list",
		Long: `Send to every recipient of a list, in chunks.

Modes:
  attached  each chunk carries its own payment; failed transfers are
            credited to the caller's balance
  balance   chunks are paid from the caller's balance; failed transfers
            are credited back
  unsafe    chunks are paid from the caller's balance up front; failed
            transfers are NOT credited back

Resubmitting the same file reuses the chunks' idempotency keys, so chunks
the ledger already accepted are not sent twice.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &SendCommandRunner{opts: opts, flags: flags}
			return runner.Run(cmd)
		},
	}

	cmd.Flags().StringVarP(&flags.Mode, "mode", "m", string(ModeBalance), "funding mode: attached, balance, unsafe")
	cmd.Flags().StringVarP(&flags.File, "file", "f", "", "recipient list, one \"account amount\" per line")
	cmd.Flags().IntVar(&flags.ChunkSize, "chunk-size", recipients.DefaultChunkSize, "operations per multisend call")
	cmd.Flags().BoolVar(&flags.SkipInvalid, "skip-invalid", false, "drop malformed account ids instead of failing")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (r *SendCommandRunner) Run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	mode := Mode(r.flags.Mode)
	if _, err := mode.path(); err != nil {
		return err
	}

	raw, err := os.ReadFile(r.flags.File)
	if err != nil {
		return fmt.Errorf("reading recipient list: %w", err)
	}
	list, err := recipients.Parse(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	if invalid := list.Invalid(); len(invalid) > 0 {
		if !r.flags.SkipInvalid {
			return fmt.Errorf("%d invalid account ids, first @%s on line %d (use --skip-invalid to drop them)",
				len(invalid), invalid[0].AccountID, invalid[0].Line)
		}
		pterm.Warning.Printfln("Dropping %d invalid account ids", len(invalid))
		list = list.WithoutInvalid()
	}
	if len(list.Entries) == 0 {
		return fmt.Errorf("recipient list is empty")
	}

	total, err := list.Total()
	if err != nil {
		return err
	}

	client, err := r.opts.client(true)
	if err != nil {
		return err
	}

	if mode != ModeAttached {
		balance, err := client.Balance(ctx, r.opts.account())
		if err != nil {
			return err
		}
		if shortfall := recipients.Shortfall(total, balance); !shortfall.IsZero() {
			return fmt.Errorf("balance %s NEAR is %s NEAR short of %s NEAR (see deposit --shortfall-for)",
				units.FormatNear(balance.Big()), units.FormatNear(shortfall.Big()), units.FormatNear(total.Big()))
		}
	}

	chunks := recipients.Chunk(list.Operations(), r.flags.ChunkSize)
	keyPrefix := listKey(raw, mode)

	tableData := pterm.TableData{{"Chunk", "Recipients", "Total (NEAR)", "Transfers"}}
	for i, chunk := range chunks {
		chunkTotal := sum(chunk)
		resp, err := client.Multisend(ctx, mode, chunkTotal, chunk, keyPrefix+"-"+strconv.Itoa(i))
		if err != nil {
			pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
			return fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
		tableData = append(tableData, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(len(chunk)),
			units.FormatNear(chunkTotal.Big()),
			strconv.Itoa(len(resp.Transfers)),
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	pterm.Success.Printfln("Dispatched %d transfers totalling %s NEAR in %d chunks",
		len(list.Entries), units.FormatNear(total.Big()), len(chunks))
	return nil
}

func NewCheckCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Parse a recipient list and report malformed accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := readList(file)
			if err != nil {
				return err
			}

			tableData := pterm.TableData{{"Line", "Account", "Amount (NEAR)", "Valid"}}
			for _, e := range list.Entries {
				valid := pterm.Green("yes")
				if !domain.IsValidAccountID(e.AccountID) {
					valid = pterm.Red("no")
				}
				tableData = append(tableData, []string{
					strconv.Itoa(e.Line), e.AccountID, units.FormatNear(e.Amount.Big()), valid,
				})
			}
			pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()

			total, err := list.Total()
			if err != nil {
				return err
			}
			pterm.Info.Printfln("%d recipients, %s NEAR total, %d zero-amount lines skipped",
				len(list.Entries), units.FormatNear(total.Big()), list.Skipped)

			if invalid := list.Invalid(); len(invalid) > 0 {
				return fmt.Errorf("%d invalid account ids", len(invalid))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "recipient list to check")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// listKey derives stable idempotency keys from the list content.
func listKey(raw []byte, mode Mode) string {
	digest := sha256.Sum256(raw)
	return string(mode) + "-" + hex.EncodeToString(digest[:8])
}

func sum(ops []domain.Operation) domain.Amount {
	var total domain.Amount
	for _, op := range ops {
		total = total.Add(op.Amount)
	}
	return total
}
