package report

import "fmt"

// maxBasicInsights caps the rule-based list.
const maxBasicInsights = 3

// BasicInsights derives commentary from the summary without any remote call.
// It looks at the expense ratio, the period net and the top expense category.
func BasicInsights(s Summary) []string {
	var insights []string

	ratio := 0.0
	if s.Income > 0 {
		ratio = s.Expense / s.Income
	}
	switch {
	case ratio > 1:
		insights = append(insights, "Spending is above income - time to rebalance the budget!")
	case ratio > 0.8:
		insights = append(insights, "Spending is over 80% of income - tread carefully!")
	case ratio < 0.3:
		insights = append(insights, "Great saving - your finances are in excellent shape!")
	default:
		insights = append(insights, "Reasonable spending - your finances are well balanced!")
	}

	net := s.Net()
	switch {
	case net > s.Income*0.5:
		insights = append(insights, "A healthy surplus - consider investing some of it!")
	case net > 0:
		insights = append(insights, "Money left at the end of the month - well managed!")
	case net < 0:
		insights = append(insights, "Negative balance - review your spending!")
	}

	if s.TopExpenseCategory != "" {
		insights = append(insights,
			fmt.Sprintf("Most spent on '%s' - that is your main priority!", s.TopExpenseCategory))
	}

	if len(insights) > maxBasicInsights {
		insights = insights[:maxBasicInsights]
	}
	return insights
}
