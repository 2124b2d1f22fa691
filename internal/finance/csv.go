package finance

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

var ledgerHeader = []string{
	"index",
	"month",
	"customers",
	"revenue",
	"gross_margin",
	"operating_costs",
	"development_cost",
	"net_cash_flow",
	"cumulative_cash_flow",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeLedgerCSV(f, ledger)
}

// EncodeLedgerCSV writes the ledger with a header row to w.
func EncodeLedgerCSV(w io.Writer, ledger []LedgerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			r.Month,
			fmtFloat(r.Customers),
			fmtFloat(r.Revenue),
			fmtFloat(r.GrossMargin),
			fmtFloat(r.OperatingCosts),
			fmtFloat(r.DevelopmentCost),
			fmtFloat(r.NetCashFlow),
			fmtFloat(r.CumulativeCashFlow),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
