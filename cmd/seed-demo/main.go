package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Seeds a demonstration entity: a currency, a small chart of accounts, one
// posted invoice and a receipt partially assigned against it.
func main() {
	entityID := flag.String("entity-id", "", "Entity id to seed (defaults to a fresh uuid)")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	logger := logrus.New()

	if err := models.MigrateTable(); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	id := *entityID
	if id == "" {
		id = uuid.NewString()
	}
	ctx := utils.SetEntityIdInContext(context.Background(), id)

	currency, err := models.CreateCurrency(ctx, &models.NewCurrency{Symbol: "USD", Name: "US Dollar"})
	if err != nil {
		logger.WithError(err).Fatal("create currency")
	}
	_, err = models.CreateExchangeRate(ctx, &models.NewExchangeRate{
		CurrencyId: currency.ID,
		Rate:       decimal.NewFromInt(1),
		ValidFrom:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		logger.WithError(err).Fatal("create exchange rate")
	}

	newAccount := func(name string, accountType models.AccountType) *models.Account {
		account, err := models.CreateAccount(ctx, &models.NewAccount{
			Name:        name,
			AccountType: accountType,
			CurrencyId:  currency.ID,
		})
		if err != nil {
			logger.WithError(err).WithField("name", name).Fatal("create account")
		}
		return account
	}

	receivable := newAccount("Trade Receivables", models.AccountTypeReceivable)
	revenue := newAccount("Sales Revenue", models.AccountTypeOperatingRevenue)
	bank := newAccount("Operating Bank", models.AccountTypeBank)

	today := time.Now().UTC().Truncate(24 * time.Hour)

	invoice, err := models.CreateTransaction(ctx, &models.NewTransaction{
		TransactionType: models.TransactionTypeClientInvoice,
		TransactionDate: today,
		AccountId:       receivable.ID,
		CurrencyId:      currency.ID,
		Narration:       "Demo invoice",
		LineItems: []*models.NewLineItem{
			{AccountId: revenue.ID, Amount: decimal.NewFromInt(1000)},
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("create invoice")
	}
	if err := models.PostTransaction(ctx, invoice.ID); err != nil {
		logger.WithError(err).Fatal("post invoice")
	}

	receipt, err := models.CreateTransaction(ctx, &models.NewTransaction{
		TransactionType: models.TransactionTypeClientReceipt,
		TransactionDate: today,
		AccountId:       receivable.ID,
		CurrencyId:      currency.ID,
		Narration:       "Demo receipt",
		LineItems: []*models.NewLineItem{
			{AccountId: bank.ID, Amount: decimal.NewFromInt(400)},
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("create receipt")
	}
	if err := models.PostTransaction(ctx, receipt.ID); err != nil {
		logger.WithError(err).Fatal("post receipt")
	}

	_, err = models.Assign(ctx, &models.NewAssignment{
		TransactionId: receipt.ID,
		ClearedId:     invoice.ID,
		Amount:        decimal.NewFromInt(400),
	})
	if err != nil {
		logger.WithError(err).Fatal("assign receipt")
	}

	fmt.Printf("seeded entity %s: invoice %s, receipt %s\n", id, invoice.TransactionNo, receipt.TransactionNo)
}
