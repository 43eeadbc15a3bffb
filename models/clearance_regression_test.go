package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/models/reports"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// End to end posting and clearance scenario: an invoice for 1000 posts debit
// receivable / credit revenue, a receipt for 400 is assigned against it, and
// the schedule reports 600 outstanding while the ledger stays balanced.
//
// Run (requires Docker): INTEGRATION_TESTS=1 go test ./models -run Clearance -v
func TestClearanceScenario(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers. Redis stays unset; the cache
	// helpers degrade to no-ops without it.
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "ledger_test")

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	entityId := uuid.NewString()
	ctx = utils.SetEntityIdInContext(ctx, entityId)

	currency, err := models.CreateCurrency(ctx, &models.NewCurrency{Symbol: "EUR", Name: "Euro"})
	if err != nil {
		t.Fatalf("CreateCurrency: %v", err)
	}
	_, err = models.CreateExchangeRate(ctx, &models.NewExchangeRate{
		CurrencyId: currency.ID,
		Rate:       decimal.NewFromInt(1),
		ValidFrom:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateExchangeRate: %v", err)
	}

	receivable := mustCreateAccount(t, ctx, "Trade Receivables", models.AccountTypeReceivable, currency.ID)
	revenue := mustCreateAccount(t, ctx, "Sales Revenue", models.AccountTypeOperatingRevenue, currency.ID)
	bank := mustCreateAccount(t, ctx, "Operating Bank", models.AccountTypeBank, currency.ID)

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	invoice, err := models.CreateTransaction(ctx, &models.NewTransaction{
		TransactionType: models.TransactionTypeClientInvoice,
		TransactionDate: date,
		AccountId:       receivable.ID,
		CurrencyId:      currency.ID,
		Narration:       "Consulting services",
		LineItems: []*models.NewLineItem{
			{AccountId: revenue.ID, Amount: decimal.NewFromInt(1000)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransaction invoice: %v", err)
	}
	if invoice.TransactionNo != "IN00001" {
		t.Fatalf("invoice number: expected IN00001, got %s", invoice.TransactionNo)
	}
	if err := models.PostTransaction(ctx, invoice.ID); err != nil {
		t.Fatalf("PostTransaction invoice: %v", err)
	}

	// Posting twice must fail.
	if err := models.PostTransaction(ctx, invoice.ID); err != models.ErrAlreadyPosted {
		t.Fatalf("second post: expected ErrAlreadyPosted, got %v", err)
	}

	// Concurrent posts of one draft race for the entity lock; exactly one
	// may write the double entry.
	racer, err := models.CreateTransaction(ctx, &models.NewTransaction{
		TransactionType: models.TransactionTypeClientInvoice,
		TransactionDate: date,
		AccountId:       receivable.ID,
		CurrencyId:      currency.ID,
		Narration:       "Racing post",
		LineItems: []*models.NewLineItem{
			{AccountId: revenue.ID, Amount: decimal.NewFromInt(250)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransaction racer: %v", err)
	}
	postErrs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			postErrs <- models.PostTransaction(ctx, racer.ID)
		}()
	}
	var postedCount, rejectedCount int
	for i := 0; i < 2; i++ {
		switch err := <-postErrs; {
		case err == nil:
			postedCount++
		case errors.Is(err, models.ErrAlreadyPosted):
			rejectedCount++
		default:
			t.Fatalf("concurrent post: %v", err)
		}
	}
	if postedCount != 1 || rejectedCount != 1 {
		t.Fatalf("concurrent post: %d posted, %d rejected", postedCount, rejectedCount)
	}
	racerLedgers, err := models.GetLedgers(ctx, racer.ID)
	if err != nil {
		t.Fatalf("GetLedgers racer: %v", err)
	}
	if len(racerLedgers) != 2 {
		t.Fatalf("expected 2 racer ledger rows, got %d", len(racerLedgers))
	}

	ledgers, err := models.GetLedgers(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetLedgers: %v", err)
	}
	if len(ledgers) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(ledgers))
	}
	assertRow := func(row *models.Ledger, accountId int, entryType models.EntryType, amount int64) {
		t.Helper()
		if row.AccountId != accountId || row.EntryType != entryType || !row.Amount.Equal(decimal.NewFromInt(amount)) {
			t.Fatalf("ledger row mismatch: account=%d type=%s amount=%s", row.AccountId, row.EntryType, row.Amount)
		}
	}
	assertRow(ledgers[0], revenue.ID, models.EntryTypeCredit, 1000)
	assertRow(ledgers[1], receivable.ID, models.EntryTypeDebit, 1000)

	receipt, err := models.CreateTransaction(ctx, &models.NewTransaction{
		TransactionType: models.TransactionTypeClientReceipt,
		TransactionDate: date.AddDate(0, 0, 10),
		AccountId:       receivable.ID,
		CurrencyId:      currency.ID,
		Narration:       "Part payment",
		LineItems: []*models.NewLineItem{
			{AccountId: bank.ID, Amount: decimal.NewFromInt(400)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransaction receipt: %v", err)
	}
	// Number series run per transaction type.
	if receipt.TransactionNo != "RC00001" {
		t.Fatalf("receipt number: expected RC00001, got %s", receipt.TransactionNo)
	}
	if err := models.PostTransaction(ctx, receipt.ID); err != nil {
		t.Fatalf("PostTransaction receipt: %v", err)
	}

	_, err = models.Assign(ctx, &models.NewAssignment{
		TransactionId: receipt.ID,
		ClearedId:     invoice.ID,
		Amount:        decimal.NewFromInt(400),
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	posted, err := models.GetTransaction(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	uncleared, err := posted.UnclearedAmount(ctx)
	if err != nil {
		t.Fatalf("UnclearedAmount: %v", err)
	}
	if !uncleared.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected 600 uncleared, got %s", uncleared)
	}

	// Over-clearance must be rejected.
	_, err = models.Assign(ctx, &models.NewAssignment{
		TransactionId: receipt.ID,
		ClearedId:     invoice.ID,
		Amount:        decimal.NewFromInt(700),
	})
	var overErr models.OverAssignmentError
	if err == nil {
		t.Fatalf("expected over-assignment rejection")
	} else if !errors.As(err, &overErr) {
		t.Fatalf("expected OverAssignmentError, got %v", err)
	}

	schedule, err := reports.GetAccountSchedule(ctx, receivable.ID, currency.ID, date.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("GetAccountSchedule: %v", err)
	}
	if len(schedule.Items) != 2 {
		t.Fatalf("expected 2 schedule items, got %d", len(schedule.Items))
	}
	if !schedule.TotalUnclearedAmount.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("schedule uncleared total: expected 850, got %s", schedule.TotalUnclearedAmount)
	}
	if !schedule.TotalOriginalAmount.Equal(decimal.NewFromInt(1250)) {
		t.Fatalf("schedule original total: expected 1250, got %s", schedule.TotalOriginalAmount)
	}

	debits, credits, err := models.LedgerTotals(ctx, entityId)
	if err != nil {
		t.Fatalf("LedgerTotals: %v", err)
	}
	if !debits.Equal(credits) {
		t.Fatalf("ledger out of balance: debits=%s credits=%s", debits, credits)
	}

	badId, err := models.VerifyLedgerHashes(ctx, entityId)
	if err != nil {
		t.Fatalf("VerifyLedgerHashes: %v", err)
	}
	if badId != 0 {
		t.Fatalf("hash chain broken at ledger id %d", badId)
	}

	trial, err := reports.GetTrialBalanceReport(ctx, date.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("GetTrialBalanceReport: %v", err)
	}
	if !trial.TotalDebits.Equal(trial.TotalCredits) {
		t.Fatalf("trial balance out of balance: %s vs %s", trial.TotalDebits, trial.TotalCredits)
	}

	// Opening balances clear only on receivable and payable accounts.
	bankBalance, err := models.CreateBalance(ctx, &models.NewBalance{
		AccountId:       bank.ID,
		CurrencyId:      currency.ID,
		Year:            date.Year(),
		TransactionNo:   "OB-BANK",
		TransactionDate: time.Date(date.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
		BalanceType:     models.EntryTypeDebit,
		Amount:          decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("CreateBalance: %v", err)
	}
	_, err = models.Assign(ctx, &models.NewAssignment{
		TransactionId: receipt.ID,
		ClearedId:     bankBalance.ID,
		ClearedType:   "Balance",
		Amount:        decimal.NewFromInt(100),
	})
	if !errors.Is(err, models.ErrUnclearableTransaction) {
		t.Fatalf("bank balance clearance: expected ErrUnclearableTransaction, got %v", err)
	}
}

func mustCreateAccount(t *testing.T, ctx context.Context, name string, accountType models.AccountType, currencyId int) *models.Account {
	t.Helper()
	account, err := models.CreateAccount(ctx, &models.NewAccount{
		Name:        name,
		AccountType: accountType,
		CurrencyId:  currencyId,
	})
	if err != nil {
		t.Fatalf("CreateAccount %s: %v", name, err)
	}
	return account
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("ledger-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=ledger_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
