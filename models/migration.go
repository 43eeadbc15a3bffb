package models

import "bitbucket.org/mmdatafocus/ledger_backend/config"

func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Currency{},
		&ExchangeRate{},
		&ReportingPeriod{},
		&Account{},
		&Vat{},
		&Transaction{},
		&LineItem{},
		&Ledger{},
		&Balance{},
		&Assignment{},
	)
}
