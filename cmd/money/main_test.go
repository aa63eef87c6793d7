package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/money-tracker/internal/common"
)

var fixedNow = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

// harness runs commands against one temporary database.
type harness struct {
	t      *testing.T
	dbPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("GEMINI_API_KEY", "")

	previous := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		now = previous
		viper.Reset()
	})

	return &harness{t: t, dbPath: filepath.Join(dir, "money.db")}
}

// run executes args with stdin and returns stdout.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()

	viper.Reset()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--db", h.dbPath, "--log-level", "error"}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, "money %s", strings.Join(args, " "))
	return out
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	names := make(map[string]*cobra.Command)
	for _, sub := range root.Commands() {
		names[sub.Name()] = sub
	}

	for _, want := range []string{
		"tx", "categories", "balance", "report", "stats", "insights",
		"import-ofx", "export", "auth", "dashboard", "migrate", "version",
	} {
		assert.Contains(t, names, want)
	}

	var txSubs []string
	for _, sub := range names["tx"].Commands() {
		txSubs = append(txSubs, sub.Name())
	}
	assert.ElementsMatch(t, []string{"add", "edit", "delete", "list"}, txSubs)
}

func TestTransactionFlow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("tx", "add", "--type", "income", "--amount", "3,000", "--category", "Salary", "--date", "2024-03-01", "--note", "march pay")
	assert.Contains(t, out, "Added #1")
	assert.Contains(t, out, "3,000.00")

	out = h.mustRun("tx", "add", "-t", "expense", "-a", "120.50", "-c", "food & drinks", "-d", "2024-03-05", "-n", "groceries")
	assert.Contains(t, out, "Added #2")
	assert.Contains(t, out, "2,879.50")

	out = h.mustRun("tx", "list", "--month", "2024-03")
	assert.Contains(t, out, "march pay")
	assert.Contains(t, out, "groceries")
	assert.Contains(t, out, "Food & Drinks")
	assert.Less(t, strings.Index(out, "groceries"), strings.Index(out, "march pay"), "newest first")

	out = h.mustRun("tx", "edit", "2", "--amount", "200")
	assert.Contains(t, out, "Updated #2")
	assert.Contains(t, out, "2,800.00")

	out = h.mustRun("tx", "delete", "2", "--yes")
	assert.Contains(t, out, "Deleted #2")

	out = h.mustRun("balance")
	assert.Contains(t, out, "3,000.00")

	out = h.mustRun("tx", "list", "--month", "2024-04")
	assert.Contains(t, out, "No transactions in 04/2024")
}

func TestTransactionAdd_Prompts(t *testing.T) {
	h := newHarness(t)

	// Type 1 is expense, then the amount, then the first expense category.
	out, err := h.run("1\n42\n1\n", "tx", "add")
	require.NoError(t, err)
	assert.Contains(t, out, "Added #1")
	assert.Contains(t, out, "-42.00")
}

func TestTransactionAdd_Rejected(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		args    []string
	}{
		{
			name:    "zero amount",
			args:    []string{"--type", "expense", "--amount", "0", "--category", "Other"},
			wantErr: common.ErrInvalidAmount,
		},
		{
			name:    "not a number",
			args:    []string{"--type", "expense", "--amount", "lots", "--category", "Other"},
			wantErr: common.ErrInvalidAmount,
		},
		{
			name:    "unknown category",
			args:    []string{"--type", "expense", "--amount", "5", "--category", "Yachts"},
			wantErr: common.ErrNotFound,
		},
		{
			name:    "bad type",
			args:    []string{"--type", "transfer", "--amount", "5", "--category", "Other"},
			wantErr: common.ErrInvalidInput,
		},
		{
			name:    "bad date",
			args:    []string{"--type", "expense", "--amount", "5", "--category", "Other", "--date", "soon"},
			wantErr: common.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			_, err := h.run("", append([]string{"tx", "add"}, tt.args...)...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			out := h.mustRun("balance", "show")
			assert.Contains(t, out, "No balance yet")
		})
	}
}

func TestTransactionEdit_TypeNeedsMatchingCategory(t *testing.T) {
	h := newHarness(t)

	h.mustRun("tx", "add", "-t", "expense", "-a", "10", "-c", "Other")

	_, err := h.run("", "tx", "edit", "1", "--type", "income", "--category", "Shopping")
	assert.ErrorIs(t, err, common.ErrNotFound)

	out := h.mustRun("tx", "edit", "1", "--type", "income", "--category", "Bonus")
	assert.Contains(t, out, "10.00")
}

func TestCategoriesFlow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("categories", "add", "Pets", "--type", "expense", "--icon", "pets")
	assert.Contains(t, out, `Created expense category "Pets"`)

	_, err := h.run("", "categories", "add", "pets", "--type", "expense")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	out = h.mustRun("categories", "list", "--type", "expense")
	assert.Contains(t, out, "Pets")
	assert.Contains(t, out, "Food & Drinks")
	assert.NotContains(t, out, "Salary")

	out = h.mustRun("categories", "seed")
	assert.Contains(t, out, "nothing seeded")
}

func TestCategoriesDelete_ReversesBalance(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("categories", "add", "Side gig", "--type", "income")
	require.Contains(t, out, "Side gig")

	h.mustRun("tx", "add", "-t", "income", "-a", "500", "-c", "Side gig")
	h.mustRun("tx", "add", "-t", "expense", "-a", "100", "-c", "Other")

	out, err := h.run("n\n", "categories", "delete", categoryID(t, h, "Side gig"))
	require.NoError(t, err)
	assert.Contains(t, out, "Kept")

	out, err = h.run("y\n", "categories", "delete", categoryID(t, h, "Side gig"))
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted category "Side gig"`)

	out = h.mustRun("balance")
	assert.Contains(t, out, "-100.00")
}

func TestCategoriesEdit_DefaultIsProtected(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "categories", "edit", categoryID(t, h, "Salary"), "--name", "Wages")
	assert.ErrorIs(t, err, common.ErrDefaultCategory)
}

// categoryID finds a category's id in the list output.
func categoryID(t *testing.T, h *harness, name string) string {
	t.Helper()

	out := h.mustRun("categories", "list")
	for _, line := range strings.Split(out, "\n") {
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == '│' || r == '|' })
		if len(fields) < 2 || strings.TrimSpace(fields[1]) != name {
			continue
		}
		return strings.TrimSpace(fields[0])
	}
	t.Fatalf("category %q not listed:\n%s", name, out)
	return ""
}

func TestBalanceSetAndRecompute(t *testing.T) {
	h := newHarness(t)

	h.mustRun("tx", "add", "-t", "income", "-a", "50", "-c", "Salary")

	out := h.mustRun("balance", "set", "--", "-250")
	assert.Contains(t, out, "-250.00")

	out = h.mustRun("balance", "recompute")
	assert.Contains(t, out, "50.00")

	_, err := h.run("", "balance", "set", "abc")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestReportAndStats(t *testing.T) {
	h := newHarness(t)

	h.mustRun("tx", "add", "-t", "income", "-a", "4000", "-c", "Salary", "-d", "2024-03-01")
	h.mustRun("tx", "add", "-t", "expense", "-a", "1500", "-c", "Bills", "-d", "2024-03-02")
	h.mustRun("tx", "add", "-t", "expense", "-a", "500", "-c", "Food & Drinks", "-d", "2024-03-10")
	h.mustRun("tx", "add", "-t", "expense", "-a", "80", "-c", "Food & Drinks", "-d", "2024-02-10")

	out := h.mustRun("report")
	assert.Contains(t, out, "Report 03/2024")
	assert.Contains(t, out, "4,000.00")
	assert.Contains(t, out, "2,000.00")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "Most spent on 'Bills'")

	out = h.mustRun("report", "--from", "2024-02-01", "--to", "2024-02-29")
	assert.Contains(t, out, "01/02/2024 - 29/02/2024")
	assert.Contains(t, out, "80.00")

	out = h.mustRun("stats", "--months", "3")
	assert.Contains(t, out, "2024-02")
	assert.Contains(t, out, "2024-03")

	_, err := h.run("", "report", "--month", "2024-03", "--from", "2024-03-01")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestInsights_WithoutProviderFallsBack(t *testing.T) {
	h := newHarness(t)

	h.mustRun("tx", "add", "-t", "income", "-a", "1000", "-c", "Salary")

	out := h.mustRun("insights")
	assert.Contains(t, out, "Insights 03/2024")
	assert.Contains(t, out, "Great saving")
}

func TestPeriodFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		args    []string
		wantErr bool
	}{
		{name: "default is the current month", label: "03/2024"},
		{name: "month", args: []string{"--month", "2023-11"}, label: "11/2023"},
		{name: "from only runs to today", args: []string{"--from", "2024-03-15"}, label: "15/03/2024 - 20/03/2024"},
		{name: "to only starts at the month", args: []string{"--to", "2024-03-10"}, label: "01/03/2024 - 10/03/2024"},
		{name: "reversed range", args: []string{"--from", "2024-03-10", "--to", "2024-03-01"}, wantErr: true},
		{name: "bad month", args: []string{"--month", "March"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			addPeriodFlags(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			p, err := periodFromFlags(cmd, fixedNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.label, p.Label)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{input: "12.5", want: 12.5},
		{input: " 1,250.75 ", want: 1250.75},
		{input: "-3", want: -3},
		{input: "", wantErr: true},
		{input: "NaN", wantErr: true},
		{input: "1e400", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrateStatus(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("migrate", "--status")
	assert.Contains(t, out, "Current version: 0")

	h.mustRun("migrate")

	out = h.mustRun("migrate", "--status")
	assert.Contains(t, out, "Current version: 3")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("version"), "money version dev")
}

func TestExportSheets_RequiresConfiguration(t *testing.T) {
	h := newHarness(t)
	for _, key := range []string{"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"} {
		t.Setenv(key, "")
	}

	_, err := h.run("", "export", "sheets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "money auth sheets")
}

const statementOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240305120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024030501
<NAME>CORNER CAFE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240301120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024030101
<NAME>ACME PAYROLL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>2474.50
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestImportOFX(t *testing.T) {
	h := newHarness(t)

	dir := t.TempDir()
	first := filepath.Join(dir, "march.qfx")
	second := filepath.Join(dir, "march-again.qfx")
	require.NoError(t, os.WriteFile(first, []byte(statementOFX), 0o600))
	require.NoError(t, os.WriteFile(second, []byte(statementOFX), 0o600))

	out := h.mustRun("import-ofx", "--dry-run", first)
	assert.Contains(t, out, "CORNER CAFE")
	assert.Contains(t, out, "2 transactions would be imported")

	out = h.mustRun("balance")
	assert.Contains(t, out, "No balance yet", "dry run saves nothing")

	out = h.mustRun("import-ofx", "--expense-category", "Food & Drinks", "--income-category", "Salary", filepath.Join(dir, "*.qfx"))
	assert.Contains(t, out, "Imported 2 of 2 transactions", "the second file repeats the first")
	assert.Contains(t, out, "2,474.50")

	out = h.mustRun("tx", "list", "--month", "2024-03", "--type", "expense", "--category", "Food & Drinks")
	assert.Contains(t, out, "CORNER CAFE")
	assert.NotContains(t, out, "ACME PAYROLL")
}

func TestImportOFX_NoFiles(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "import-ofx", filepath.Join(t.TempDir(), "*.qfx"))
	assert.Error(t, err)
}
