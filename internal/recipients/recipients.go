// Package recipients turns an operator-supplied recipient list into batches
// of multisend operations.
//
// A list holds one "account amount" pair per line. The pair may be separated
// by spaces, tabs, ',', '|' or '='. Amounts are in whole NEAR and may carry
// up to 24 decimals. Blank lines and lines starting with '#' are ignored.
package recipients

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/pkg/units"

	"lukechampine.com/uint128"
)

// DefaultChunkSize is the number of operations submitted per balance-funded
// multisend call.
const DefaultChunkSize = 150

// Entry is one merged recipient of a list.
type Entry struct {
	AccountID string
	Amount    domain.Amount
	Line      int // first line the recipient appeared on
}

// List is a parsed recipient list in first-seen order.
type List struct {
	Entries []Entry
	Skipped int // lines whose amount was zero
}

// LineError reports a line that could not be parsed.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', ',', '|', '=':
		return true
	}
	return false
}

// Parse reads a recipient list. Repeated recipients are merged by adding
// their amounts. Zero amounts are dropped.
func Parse(r io.Reader) (*List, error) {
	list := &List{}
	index := make(map[string]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.FieldsFunc(text, isSeparator)
		if len(fields) != 2 {
			return nil, &LineError{Line: lineNo, Text: text, Err: fmt.Errorf("expected account and amount, got %d fields", len(fields))}
		}

		yocto, err := units.ToYocto(fields[1])
		if err != nil {
			return nil, &LineError{Line: lineNo, Text: text, Err: err}
		}
		amount, err := domain.AmountFromBig(yocto)
		if err != nil {
			return nil, &LineError{Line: lineNo, Text: text, Err: err}
		}
		if amount.IsZero() {
			list.Skipped++
			continue
		}

		account := fields[0]
		if i, ok := index[account]; ok {
			merged := list.Entries[i].Amount.AddWrap(amount)
			if merged.Cmp(amount) < 0 {
				return nil, &LineError{Line: lineNo, Text: text, Err: fmt.Errorf("total for @%s overflows 128 bits", account)}
			}
			list.Entries[i].Amount = merged
			continue
		}
		index[account] = len(list.Entries)
		list.Entries = append(list.Entries, Entry{AccountID: account, Amount: amount, Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading recipient list: %w", err)
	}

	return list, nil
}

// Invalid returns the entries whose account id is malformed.
func (l *List) Invalid() []Entry {
	var bad []Entry
	for _, e := range l.Entries {
		if !domain.IsValidAccountID(e.AccountID) {
			bad = append(bad, e)
		}
	}
	return bad
}

// WithoutInvalid returns a copy of l holding only well-formed recipients.
func (l *List) WithoutInvalid() *List {
	out := &List{Skipped: l.Skipped, Entries: make([]Entry, 0, len(l.Entries))}
	for _, e := range l.Entries {
		if domain.IsValidAccountID(e.AccountID) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// Total sums the list. It fails when the sum overflows 128 bits.
func (l *List) Total() (domain.Amount, error) {
	total := uint128.Zero
	for _, e := range l.Entries {
		next := total.AddWrap(e.Amount)
		if next.Cmp(total) < 0 {
			return uint128.Zero, fmt.Errorf("list total overflows 128 bits")
		}
		total = next
	}
	return total, nil
}

// Operations converts the list into multisend operations.
func (l *List) Operations() []domain.Operation {
	ops := make([]domain.Operation, len(l.Entries))
	for i, e := range l.Entries {
		ops[i] = domain.Operation{Recipient: e.AccountID, Amount: e.Amount}
	}
	return ops
}

// Chunk splits ops into consecutive batches of at most size operations.
func Chunk(ops []domain.Operation, size int) [][]domain.Operation {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]domain.Operation, 0, (len(ops)+size-1)/size)
	for start := 0; start < len(ops); start += size {
		end := min(start+size, len(ops))
		chunks = append(chunks, ops[start:end])
	}
	return chunks
}

// Shortfall is how much must be deposited on top of balance to cover total.
func Shortfall(total, balance domain.Amount) domain.Amount {
	if balance.Cmp(total) >= 0 {
		return uint128.Zero
	}
	return total.Sub(balance)
}
