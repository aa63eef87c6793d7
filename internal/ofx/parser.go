// Package ofx reads OFX/QFX bank and credit card statements into records
// that can be added to the ledger.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/money-tracker/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Record is one statement line. Amount is always positive; Type carries the
// direction.
type Record struct {
	Date      time.Time
	FITID     string
	AccountID string
	Note      string
	Type      model.TransactionType
	Amount    float64
}

// Transaction maps the record onto a ledger transaction in the given
// category.
func (r Record) Transaction(categoryID int64) model.Transaction {
	return model.Transaction{
		Amount:     r.Amount,
		Note:       r.Note,
		Date:       r.Date,
		CategoryID: categoryID,
		Type:       r.Type,
	}
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{logger: slog.Default()}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports leave an opening tag without its closing bracket.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file. Records repeating an earlier FITID for
// the same account are skipped, as are zero-amount lines.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Record, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var (
		records           []Record
		bankStmts, ccStmt int
	)
	seen := make(map[string]bool)

	collect := func(accountID string, list *ofxgo.TransactionList) error {
		if list == nil {
			return nil
		}
		for _, ofxTx := range list.Transactions {
			if err := ctx.Err(); err != nil {
				return err
			}

			record, ok := p.convertTransaction(ofxTx, accountID)
			if !ok {
				p.logger.Warn("Skipping zero-amount OFX transaction",
					"fitid", record.FITID,
					"account", accountID)
				continue
			}

			key := accountID + "/" + record.FITID
			if record.FITID != "" && seen[key] {
				p.logger.Debug("Skipping duplicate OFX transaction", "fitid", record.FITID)
				continue
			}
			seen[key] = true
			records = append(records, record)
		}
		return nil
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if err := collect(string(stmt.BankAcctFrom.AcctID), stmt.BankTranList); err != nil {
				return nil, err
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmt++
			if err := collect(string(stmt.CCAcctFrom.AcctID), stmt.BankTranList); err != nil {
				return nil, err
			}
		}
	}

	p.logger.Info("Parsed OFX file",
		"records", len(records),
		"bank_statements", bankStmts,
		"cc_statements", ccStmt)

	return records, nil
}

// convertTransaction maps an OFX transaction onto a Record. It reports false
// for zero amounts, which cannot be recorded.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (Record, bool) {
	amount, _ := ofxTx.TrnAmt.Float64()

	record := Record{
		FITID:     string(ofxTx.FiTID),
		AccountID: accountID,
		Date:      ofxTx.DtPosted.Time.UTC(),
		Note:      p.extractNote(ofxTx),
		Type:      model.TypeIncome,
		Amount:    amount,
	}
	if amount < 0 {
		record.Type = model.TypeExpense
		record.Amount = -amount
	}

	return record, record.Amount != 0
}

// extractNote builds a readable description from the payee, name and memo.
func (p *Parser) extractNote(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"ACH CREDIT ",
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

	// Leading "MM/DD " date
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return strings.Join(strings.Fields(name), " ")
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE", "DEPOSIT":
		return true
	}
	return false
}
