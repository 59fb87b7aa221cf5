// Package ofx reads OFX/QFX bank and credit card statements into transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/checkbook/internal/model"
)

// Transaction types assigned from the OFX TRNTYPE when no type is given.
const (
	TypeInterest      = "Interest"
	TypeBankFees      = "Bank Fees"
	TypeCash          = "Cash & ATM"
	TypeCheck         = "Check"
	TypeUncategorized = "Uncategorized"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket at end of line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Options controls how statement lines become transactions.
type Options struct {
	// AccountName is stored on every transaction. When blank the account ID
	// from the statement is used.
	AccountName string
	// TransactionType is stored on every transaction. When blank it is
	// derived from each line's TRNTYPE.
	TransactionType string
}

// Entry is a parsed statement line together with the bank's identifier for it.
type Entry struct {
	model.Transaction
	// FITID is the financial institution's transaction ID, unique per
	// account. Some exports leave it blank.
	FITID string
}

// Key identifies the statement line across overlapping exports: the account
// and FITID, or the account, date, amounts and description when the bank
// supplied no FITID.
func (e Entry) Key() string {
	if e.FITID != "" {
		return e.AccountName + "\x00" + e.FITID
	}
	return strings.Join([]string{
		e.AccountName,
		model.FormatDate(e.Date),
		e.PaymentAmount.StringFixed(2),
		e.DepositAmount.StringFixed(2),
		e.Description,
	}, "\x00")
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes formatting issues some banks emit.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns its transactions in statement order.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, opts Options) ([]model.Transaction, error) {
	entries, err := p.ParseEntries(ctx, reader, opts)
	if err != nil {
		return nil, err
	}

	transactions := make([]model.Transaction, len(entries))
	for i, e := range entries {
		transactions[i] = e.Transaction
	}
	return transactions, nil
}

// ParseEntries is ParseFile keeping each line's FITID.
func (p *Parser) ParseEntries(ctx context.Context, reader io.Reader, opts Options) ([]Entry, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		converted, err := p.convertAll(ctx, stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID), opts)
		if err != nil {
			return nil, err
		}
		entries = append(entries, converted...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		converted, err := p.convertAll(ctx, stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID), opts)
		if err != nil {
			return nil, err
		}
		entries = append(entries, converted...)
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func (p *Parser) convertAll(ctx context.Context, lines []ofxgo.Transaction, accountID string, opts Options) ([]Entry, error) {
	account := strings.TrimSpace(opts.AccountName)
	if account == "" {
		account = strings.TrimSpace(accountID)
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tx, err := p.convertTransaction(line, account, opts.TransactionType)
		if err != nil {
			slog.Warn("Skipping unreadable OFX transaction",
				"account", accountID,
				"fitid", string(line.FiTID),
				"error", err)
			continue
		}
		entries = append(entries, Entry{Transaction: tx, FITID: strings.TrimSpace(string(line.FiTID))})
	}
	return entries, nil
}

// convertTransaction maps one statement line. OFX signs debits negative;
// they become payments and everything else a deposit.
func (p *Parser) convertTransaction(line ofxgo.Transaction, account, txType string) (model.Transaction, error) {
	amount, err := decimal.NewFromString(line.TrnAmt.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	if strings.TrimSpace(txType) == "" {
		txType = TypeFor(line.TrnType.String())
	}

	tx := model.Transaction{
		Date:            model.DateOnly(line.DtPosted.Time),
		AccountName:     account,
		TransactionType: strings.TrimSpace(txType),
		Description:     p.extractMerchantName(line),
	}
	if amount.IsNegative() {
		tx.PaymentAmount = amount.Neg()
	} else {
		tx.DepositAmount = amount
	}
	return tx, nil
}

// TypeFor maps an OFX TRNTYPE value to a transaction type name.
func TypeFor(trnType string) string {
	switch strings.ToUpper(trnType) {
	case "INT":
		return TypeInterest
	case "FEE", "SRVCHG":
		return TypeBankFees
	case "ATM", "CASH":
		return TypeCash
	case "CHECK":
		return TypeCheck
	default:
		return TypeUncategorized
	}
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " left behind by PURCHASE AUTHORIZED ON
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// GetAccounts returns the sorted, unique account IDs found in the file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
