package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/money-tracker/internal/cli"
	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/ledger"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/service"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
		Long: `List, add, edit and delete categories. Default categories are created on
first use and cannot be edited or deleted.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(editCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(seedCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var txnType model.TransactionType
			if value, _ := cmd.Flags().GetString("type"); value != "" {
				parsed, err := model.ParseTransactionType(value)
				if err != nil {
					return common.NewUserError(err.Error(), common.ErrInvalidInput)
				}
				txnType = parsed
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			categories, err := a.ledger.Categories(ctx, txnType)
			if err != nil {
				return err
			}

			if len(categories) == 0 {
				printLine(cmd, cli.FormatInfo("No categories found. Use 'money categories add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(categories))
			for _, cat := range categories {
				origin := "custom"
				if cat.IsDefault {
					origin = "default"
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", cat.ID),
					cat.Name,
					string(cat.Type),
					cat.Icon,
					origin,
				})
			}

			printLine(cmd, cli.RenderTable([]string{"ID", "Name", "Type", "Icon", "Origin"}, rows))
			return nil
		},
	}

	cmd.Flags().StringP("type", "t", "", "only income or expense categories")

	return cmd
}

func addCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			typeFlag, _ := cmd.Flags().GetString("type")
			icon, _ := cmd.Flags().GetString("icon")

			txnType, err := askType(ctx, cmd, typeFlag)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			cat, err := a.ledger.CreateCategory(ctx, model.Category{
				Name: args[0],
				Type: txnType,
				Icon: icon,
			})
			if err != nil {
				return err
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created %s category %q (id %d)", cat.Type, cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().StringP("type", "t", "", "category type (income or expense)")
	cmd.Flags().String("icon", "more_horiz", "icon name or URI")

	return cmd
}

func editCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename a category, change its icon or type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			existing, err := a.store.GetCategoryByID(ctx, id)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("category %d not found", id), err)
			}
			updated := *existing

			if flags.Changed("name") {
				updated.Name, _ = flags.GetString("name")
			}
			if flags.Changed("icon") {
				updated.Icon, _ = flags.GetString("icon")
			}
			if flags.Changed("type") {
				value, _ := flags.GetString("type")
				if updated.Type, err = model.ParseTransactionType(value); err != nil {
					return common.NewUserError(err.Error(), common.ErrInvalidInput)
				}
			}

			cat, err := a.ledger.UpdateCategory(ctx, updated)
			if err != nil {
				return err
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Updated category %d: %s (%s)", cat.ID, cat.Name, cat.Type)))
			return nil
		},
	}

	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("icon", "", "new icon")
	cmd.Flags().StringP("type", "t", "", "new type, only while the category is unused")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category and all of its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			yes, _ := cmd.Flags().GetBool("yes")

			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			cat, err := a.store.GetCategoryByID(ctx, id)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("category %d not found", id), err)
			}

			if !yes {
				used, err := a.store.GetTransactionCount(ctx, service.TransactionFilter{CategoryID: id})
				if err != nil {
					return fmt.Errorf("failed to count transactions: %w", err)
				}
				question := fmt.Sprintf("Delete category %q?", cat.Name)
				if used > 0 {
					question = fmt.Sprintf("Delete category %q and its %d transactions?", cat.Name, used)
				}
				ok, err := newPrompter(cmd).Confirm(ctx, question)
				if err != nil {
					return err
				}
				if !ok {
					printLine(cmd, cli.FormatInfo("Kept"))
					return nil
				}
			}

			if err := a.ledger.DeleteCategory(ctx, id); err != nil {
				return err
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted category %q", cat.Name)))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation")

	return cmd
}

func seedCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the default categories if no expense category exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			l := ledger.New(store)
			defer func() {
				l.Close()
				_ = store.Close()
			}()

			created, err := l.SeedDefaults(ctx)
			if err != nil {
				return err
			}

			if created == 0 {
				printLine(cmd, cli.FormatInfo("Categories already present, nothing seeded"))
				return nil
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Seeded %d default categories", created)))
			return nil
		},
	}
}
