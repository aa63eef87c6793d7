package cli

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/money-tracker/internal/model"
)

// DateLayout is the date format used for input and display.
const DateLayout = "2006-01-02"

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousands separators and two decimals.
func FormatMoney(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// FormatSigned renders an amount with its sign and the income or expense
// color.
func FormatSigned(t model.TransactionType, amount float64) string {
	if t == model.TypeIncome {
		return IncomeStyle.Render("+" + FormatMoney(amount))
	}
	return ExpenseStyle.Render("-" + FormatMoney(amount))
}

// FormatBalance colors a balance by sign.
func FormatBalance(amount float64) string {
	if amount < 0 {
		return ExpenseStyle.Render(FormatMoney(amount))
	}
	return IncomeStyle.Render(FormatMoney(amount))
}

// FormatDate renders a date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads "today", "yesterday", YYYY-MM-DD or DD/MM/YYYY relative to
// now. The result is in UTC at the time of day of now for keywords and at
// noon for explicit dates, keeping it inside the same UTC day.
func ParseDate(input string, now time.Time) (time.Time, error) {
	now = now.UTC()
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	}

	for _, layout := range []string{DateLayout, "02/01/2006"} {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(input), time.UTC); err == nil {
			return t.Add(12 * time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD, DD/MM/YYYY, today or yesterday", input)
}
