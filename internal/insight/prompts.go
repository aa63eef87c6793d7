package insight

import (
	"fmt"
	"strings"
)

func detailedPrompt(s Summary) string {
	top := s.TopExpenseCategory
	if top == "" {
		top = "None"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a witty personal finance assistant. Here is my spending for %s:\n", s.Month)
	fmt.Fprintf(&b, "- Income: %.0f\n", s.Income)
	fmt.Fprintf(&b, "- Expenses: %.0f\n", s.Expense)
	fmt.Fprintf(&b, "- Balance: %.0f\n", s.Balance())
	fmt.Fprintf(&b, "- Top expense category: %s\n", top)
	fmt.Fprintf(&b, "- Number of transactions: %d\n\n", s.TransactionCount)
	b.WriteString("Write exactly 3 short, funny, encouraging insights about these finances. ")
	b.WriteString("Put each insight on its own line. Do not number them and do not add any other text.")
	return b.String()
}

func simplePrompt(s Summary) string {
	return fmt.Sprintf(
		"Write 2-3 short fun sentences about these monthly finances. Income: %.0f, expenses: %.0f, balance: %.0f. One sentence per line.",
		s.Income, s.Expense, s.Balance())
}

func minimalPrompt(s Summary) string {
	if balance := s.Balance(); balance > 0 {
		return fmt.Sprintf("Write 1 fun sentence about having money left: %.0f", balance)
	}
	return "Write 1 encouraging fun sentence about running out of money"
}
