package report

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/health-cli/internal/health"
	"github.com/sells-group/health-cli/internal/model"
)

// AccountsSheet is the sheet name of an account export.
const AccountsSheet = "Accounts"

var accountColumns = []string{
	"ID", "Account", "Tier", "Seats", "MRR", "State", "Score", "Trend", "Renewal Date", "Days Until Renewal", "Pending Approval",
}

// AccountsWorkbook builds a workbook with one row per account.
func AccountsWorkbook(accounts []model.AccountSummary, now time.Time) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(AccountsSheet)
	if err != nil {
		return nil, eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range accountColumns {
		header.AddCell().SetString(col)
	}

	for _, a := range accounts {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(a.ID))
		row.AddCell().SetString(a.Name)
		row.AddCell().SetString(string(a.Tier))
		row.AddCell().SetInt(a.Seats)
		row.AddCell().SetFloat(a.MRR)
		row.AddCell().SetString(health.Label(a.State))
		row.AddCell().SetFloat(a.Composite)
		row.AddCell().SetFloat(a.TrendDelta)
		if a.RenewalDate != nil {
			row.AddCell().SetString(a.RenewalDate.String())
			row.AddCell().SetInt(health.DaysUntil(*a.RenewalDate, now))
		} else {
			row.AddCell().SetString("")
			row.AddCell().SetString("")
		}
		pending := "no"
		if a.HasPendingAnomaly {
			pending = "yes"
		}
		row.AddCell().SetString(pending)
	}
	return f, nil
}

// ExportAccounts writes the account workbook to path.
func ExportAccounts(path string, accounts []model.AccountSummary, now time.Time) error {
	f, err := AccountsWorkbook(accounts, now)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

// WriteAccountsXLSX streams the account workbook to w.
func WriteAccountsXLSX(w io.Writer, accounts []model.AccountSummary, now time.Time) error {
	f, err := AccountsWorkbook(accounts, now)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write workbook")
	}
	return nil
}
