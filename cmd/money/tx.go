package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/money-tracker/internal/cli"
	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/service"
)

// now is the command clock.
var now = time.Now

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Add, edit, delete and list transactions",
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(editTxCmd())
	cmd.AddCommand(deleteTxCmd())
	cmd.AddCommand(listTxCmd())

	return cmd
}

func addTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Long: `Record a transaction and update the balance. Missing values are asked for.

Examples:
  money tx add --type expense --amount 12.50 --category "Food & Drinks" --note lunch
  money tx add --type income --amount 3000 --category Salary --date 2024-03-01`,
		RunE: runAddTx,
	}

	cmd.Flags().StringP("type", "t", "", "transaction type (income or expense)")
	cmd.Flags().StringP("amount", "a", "", "amount, greater than zero")
	cmd.Flags().StringP("category", "c", "", "category name or id")
	cmd.Flags().StringP("date", "d", "today", "date (YYYY-MM-DD, DD/MM/YYYY, today, yesterday)")
	cmd.Flags().StringP("note", "n", "", "optional note")

	return cmd
}

func runAddTx(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	typeFlag, _ := flags.GetString("type")
	txnType, err := askType(ctx, cmd, typeFlag)
	if err != nil {
		return err
	}

	amountFlag, _ := flags.GetString("amount")
	if amountFlag == "" {
		if amountFlag, err = newPrompter(cmd).Ask(ctx, "Amount", ""); err != nil {
			return err
		}
	}
	amount, err := parseAmount(amountFlag)
	if err != nil {
		return err
	}

	categoryFlag, _ := flags.GetString("category")
	cat, err := resolveCategory(ctx, cmd, a.store, txnType, categoryFlag)
	if err != nil {
		return err
	}

	dateFlag, _ := flags.GetString("date")
	date, err := cli.ParseDate(dateFlag, now())
	if err != nil {
		return common.NewUserError(err.Error(), common.ErrInvalidInput)
	}

	note, _ := flags.GetString("note")

	txn, err := a.ledger.AddTransaction(ctx, model.Transaction{
		Amount:     amount,
		Note:       note,
		Date:       date,
		CategoryID: cat.ID,
		Type:       txnType,
	})
	if err != nil {
		return err
	}

	balance, _, err := a.ledger.Balance(ctx)
	if err != nil {
		return err
	}

	printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Added #%d: %s %s on %s",
		txn.ID, cli.FormatSigned(txn.Type, txn.Amount), cat.Name, cli.FormatDate(txn.Date))))
	printLine(cmd, cli.FormatInfo("Balance: "+cli.FormatBalance(balance.Amount)))
	return nil
}

// askType parses value, prompting when it is empty.
func askType(ctx context.Context, cmd *cobra.Command, value string) (model.TransactionType, error) {
	if value == "" {
		options := []string{string(model.TypeExpense), string(model.TypeIncome)}
		idx, err := newPrompter(cmd).Choose(ctx, "Type", options)
		if err != nil {
			return "", err
		}
		value = options[idx]
	}

	txnType, err := model.ParseTransactionType(value)
	if err != nil {
		return "", common.NewUserError(err.Error(), common.ErrInvalidInput)
	}
	return txnType, nil
}

func editTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a transaction",
		Long: `Change any field of a transaction. Only the flags given are changed and
the balance is adjusted by the difference.

Switching the type needs a category of the new type:
  money tx edit 42 --type income --category Salary`,
		Args: cobra.ExactArgs(1),
		RunE: runEditTx,
	}

	cmd.Flags().StringP("type", "t", "", "new type (income or expense)")
	cmd.Flags().StringP("amount", "a", "", "new amount")
	cmd.Flags().StringP("category", "c", "", "new category name or id")
	cmd.Flags().StringP("date", "d", "", "new date")
	cmd.Flags().StringP("note", "n", "", "new note")

	return cmd
}

func runEditTx(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	id, err := parseID(args[0], "transaction")
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	txn, err := a.store.GetTransactionByID(ctx, id)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("transaction %d not found", id), err)
	}
	updated := *txn

	if flags.Changed("type") {
		value, _ := flags.GetString("type")
		if updated.Type, err = askType(ctx, cmd, value); err != nil {
			return err
		}
	}
	if flags.Changed("amount") {
		value, _ := flags.GetString("amount")
		if updated.Amount, err = parseAmount(value); err != nil {
			return err
		}
	}
	if flags.Changed("category") || updated.Type != txn.Type {
		value, _ := flags.GetString("category")
		cat, err := resolveCategory(ctx, cmd, a.store, updated.Type, value)
		if err != nil {
			return err
		}
		updated.CategoryID = cat.ID
	}
	if flags.Changed("date") {
		value, _ := flags.GetString("date")
		if updated.Date, err = cli.ParseDate(value, now()); err != nil {
			return common.NewUserError(err.Error(), common.ErrInvalidInput)
		}
	}
	if flags.Changed("note") {
		updated.Note, _ = flags.GetString("note")
	}

	if updated == *txn {
		printLine(cmd, cli.FormatInfo("Nothing to change"))
		return nil
	}

	if _, err := a.ledger.UpdateTransaction(ctx, updated); err != nil {
		return err
	}

	balance, _, err := a.ledger.Balance(ctx)
	if err != nil {
		return err
	}

	printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Updated #%d", id)))
	printLine(cmd, cli.FormatInfo("Balance: "+cli.FormatBalance(balance.Amount)))
	return nil
}

func deleteTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and reverse its effect on the balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			yes, _ := cmd.Flags().GetBool("yes")

			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			txn, err := a.store.GetTransactionByID(ctx, id)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("transaction %d not found", id), err)
			}

			if !yes {
				ok, err := newPrompter(cmd).Confirm(ctx, fmt.Sprintf("Delete %s from %s?",
					cli.FormatSigned(txn.Type, txn.Amount), cli.FormatDate(txn.Date)))
				if err != nil {
					return err
				}
				if !ok {
					printLine(cmd, cli.FormatInfo("Kept"))
					return nil
				}
			}

			if err := a.ledger.DeleteTransaction(ctx, id); err != nil {
				return err
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted #%d", id)))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation")

	return cmd
}

func listTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE:  runListTx,
	}

	addPeriodFlags(cmd)
	cmd.Flags().StringP("type", "t", "", "only income or expense")
	cmd.Flags().StringP("category", "c", "", "only this category (name or id, needs --type for names)")
	cmd.Flags().IntP("limit", "l", 50, "maximum number of rows, 0 for all")

	return cmd
}

func runListTx(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	period, err := periodFromFlags(cmd, now())
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	start, end := period.Start, period.End
	filter := service.TransactionFilter{StartDate: &start, EndDate: &end}
	filter.Limit, _ = flags.GetInt("limit")

	if value, _ := flags.GetString("type"); value != "" {
		if filter.Type, err = model.ParseTransactionType(value); err != nil {
			return common.NewUserError(err.Error(), common.ErrInvalidInput)
		}
	}
	if value, _ := flags.GetString("category"); value != "" {
		id, err := categoryFilter(ctx, a.store, filter.Type, value)
		if err != nil {
			return err
		}
		filter.CategoryID = id
	}

	txns, err := a.store.GetTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}

	if len(txns) == 0 {
		printLine(cmd, cli.FormatInfo("No transactions in "+period.Label))
		return nil
	}

	categories, err := a.ledger.Categories(ctx, "")
	if err != nil {
		return err
	}
	byID := categoryNames(categories)

	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		rows = append(rows, []string{
			fmt.Sprintf("%d", txn.ID),
			cli.FormatDate(txn.Date),
			categoryLabel(byID, txn.CategoryID),
			cli.FormatSigned(txn.Type, txn.Amount),
			txn.Note,
		})
	}

	printLine(cmd, cli.FormatTitle("Transactions "+period.Label))
	printLine(cmd, cli.RenderTable([]string{"ID", "Date", "Category", "Amount", "Note"}, rows))
	return nil
}

// categoryFilter resolves --category for list filters without prompting.
func categoryFilter(ctx context.Context, store service.Storage, txnType model.TransactionType, value string) (int64, error) {
	if id, err := parseID(value, "category"); err == nil {
		return id, nil
	}
	if txnType == "" {
		return 0, common.NewUserError("filtering by category name needs --type", common.ErrInvalidInput)
	}

	cat, err := store.FindCategoryByName(ctx, value, txnType)
	if err != nil {
		return 0, fmt.Errorf("failed to find category: %w", err)
	}
	if cat == nil {
		return 0, common.NewUserError(fmt.Sprintf("no %s category named %q", txnType, value), common.ErrNotFound)
	}
	return cat.ID, nil
}
