package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportAccountScheduleExcel writes the aging schedule of an account as an
// xlsx workbook.
func ExportAccountScheduleExcel(ctx context.Context, accountId int, currencyId int, endDate time.Time, w io.Writer) error {

	schedule, err := GetAccountSchedule(ctx, accountId, currencyId, endDate)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	f.SetCellValue(sheet, "A1", "Account")
	f.SetCellValue(sheet, "B1", schedule.AccountName)
	f.SetCellValue(sheet, "A2", "As At")
	f.SetCellValue(sheet, "B2", schedule.EndDate.Format("2006-01-02"))

	headers := []string{"Transaction No", "Type", "Date", "Due Days", "Original", "Cleared", "Uncleared"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, header)
	}

	row := 5
	for _, item := range schedule.Items {
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), item.TransactionNo)
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), item.TypeLabel)
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), item.TransactionDate.Format("2006-01-02"))
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), item.DueDays)
		f.SetCellValue(sheet, "E"+fmt.Sprint(row), item.OriginalAmount.InexactFloat64())
		f.SetCellValue(sheet, "F"+fmt.Sprint(row), item.ClearedAmount.InexactFloat64())
		f.SetCellValue(sheet, "G"+fmt.Sprint(row), item.UnclearedAmount.InexactFloat64())
		row++
	}

	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Total")
	f.SetCellValue(sheet, "E"+fmt.Sprint(row), schedule.TotalOriginalAmount.InexactFloat64())
	f.SetCellValue(sheet, "F"+fmt.Sprint(row), schedule.TotalClearedAmount.InexactFloat64())
	f.SetCellValue(sheet, "G"+fmt.Sprint(row), schedule.TotalUnclearedAmount.InexactFloat64())

	return f.Write(w)
}

// ExportTrialBalanceExcel writes the trial balance as an xlsx workbook.
func ExportTrialBalanceExcel(ctx context.Context, endDate time.Time, w io.Writer) error {

	report, err := GetTrialBalanceReport(ctx, endDate)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	f.SetCellValue(sheet, "A1", "Trial Balance")
	f.SetCellValue(sheet, "B1", report.EndDate.Format("2006-01-02"))

	headers := []string{"Code", "Account", "Type", "Section", "Debit", "Credit"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheet, cell, header)
	}

	row := 4
	for _, line := range report.Rows {
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), line.AccountCode)
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), line.AccountName)
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), string(line.AccountType))
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), line.Section)
		f.SetCellValue(sheet, "E"+fmt.Sprint(row), line.Debit.InexactFloat64())
		f.SetCellValue(sheet, "F"+fmt.Sprint(row), line.Credit.InexactFloat64())
		row++
	}

	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Total")
	f.SetCellValue(sheet, "E"+fmt.Sprint(row), report.TotalDebits.InexactFloat64())
	f.SetCellValue(sheet, "F"+fmt.Sprint(row), report.TotalCredits.InexactFloat64())

	return f.Write(w)
}
