package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	entityID := flag.String("entity-id", "", "Required: entity id (uuid)")
	flag.Parse()

	if strings.TrimSpace(*entityID) == "" {
		fmt.Fprintln(os.Stderr, "--entity-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	logger := logrus.New()

	ctx := utils.SetEntityIdInContext(context.Background(), *entityID)

	debits, credits, err := models.LedgerTotals(ctx, *entityID)
	if err != nil {
		logger.WithError(err).Fatal("ledger totals query failed")
	}
	if !debits.Equal(credits) {
		logger.WithFields(logrus.Fields{
			"debits":  debits.StringFixed(4),
			"credits": credits.StringFixed(4),
		}).Error("ledger out of balance")
		os.Exit(2)
	}
	fmt.Printf("debits=%s credits=%s balanced\n", debits.StringFixed(4), credits.StringFixed(4))

	badId, err := models.VerifyLedgerHashes(ctx, *entityID)
	if err != nil {
		logger.WithError(err).Fatal("hash verification failed")
	}
	if badId != 0 {
		logger.WithField("ledger_id", badId).Error("hash chain broken")
		os.Exit(2)
	}
	fmt.Println("hash chain intact")
}
