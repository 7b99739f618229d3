package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkearns/pay-the-piper/internal/common"
)

const sampleChaseCSV = `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
DEBIT,03/14/2025,STARBUCKS STORE 1234,-6.75,DEBIT_CARD,1500.25,
CREDIT,03/15/2025,PAYROLL ACME CORP,2500.00,ACH_CREDIT,4000.25,
DEBIT,03/16/2025,ONLINE TRANSFER TO SAV 6031,-500.00,ACCT_XFER,3500.25,
`

const sampleAmexCSV = `Date,Description,Amount
03/14/2025,NETFLIX.COM,15.49
03/18/2025,AMAZON REFUND,-42.00
`

func TestParseCSVChase(t *testing.T) {
	result, err := ParseCSV(strings.NewReader(sampleChaseCSV), ChaseChecking)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 3)
	assert.Empty(t, result.Rejected)

	txn := result.Transactions[0]
	assert.Equal(t, "STARBUCKS STORE 1234", txn.Description)
	assert.Equal(t, "chase-checking", txn.Bank)
	assert.InDelta(t, -6.75, txn.Amount, 0.001)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), txn.Date)
	assert.NotEmpty(t, txn.ID)
	assert.NotEmpty(t, txn.Hash)

	// Chase amounts keep their export sign.
	assert.InDelta(t, 2500.00, result.Transactions[1].Amount, 0.001)
}

func TestParseCSVAmexFlipsSign(t *testing.T) {
	result, err := ParseCSV(strings.NewReader(sampleAmexCSV), Amex)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)

	// AMEX exports charges as positive; stored amounts are signed spending.
	assert.InDelta(t, -15.49, result.Transactions[0].Amount, 0.001)
	assert.InDelta(t, 42.00, result.Transactions[1].Amount, 0.001)
	assert.Equal(t, "amex", result.Transactions[0].Bank)
}

func TestParseCSVMissingColumnIsFatal(t *testing.T) {
	csv := "Details,Description,Amount\nDEBIT,COFFEE,-5.00\n"

	_, err := ParseCSV(strings.NewReader(csv), ChaseChecking)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingColumn)
	assert.Contains(t, err.Error(), "Posting Date")
}

func TestParseCSVRejectsMalformedRows(t *testing.T) {
	csv := `Date,Description,Amount
03/14/2025,NETFLIX.COM,15.49
not-a-date,BAD DATE ROW,10.00
03/15/2025,BAD AMOUNT ROW,ten dollars
03/16/2025,,5.00
03/17/2025,GOOD ROW,20.00
`

	result, err := ParseCSV(strings.NewReader(csv), Amex)
	require.NoError(t, err)

	assert.Len(t, result.Transactions, 2)
	require.Len(t, result.Rejected, 3)

	// Line numbers point at the offending rows, header is line 1.
	assert.Equal(t, 3, result.Rejected[0].Line)
	assert.Equal(t, 4, result.Rejected[1].Line)
	assert.Equal(t, 5, result.Rejected[2].Line)
	for _, rej := range result.Rejected {
		assert.ErrorIs(t, rej.Err, common.ErrBadRow)
	}
}

func TestParseCSVAmountFormats(t *testing.T) {
	csv := `Date,Description,Amount
2025-03-14,COMMA AMOUNT,"1,234.56"
03/14/2025,DOLLAR SIGN,$99.00
`

	result, err := ParseCSV(strings.NewReader(csv), Amex)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.InDelta(t, -1234.56, result.Transactions[0].Amount, 0.001)
	assert.InDelta(t, -99.00, result.Transactions[1].Amount, 0.001)
}

func TestParseCSVDerivedIDsAreStable(t *testing.T) {
	first, err := ParseCSV(strings.NewReader(sampleAmexCSV), Amex)
	require.NoError(t, err)
	second, err := ParseCSV(strings.NewReader(sampleAmexCSV), Amex)
	require.NoError(t, err)

	for i := range first.Transactions {
		assert.Equal(t, first.Transactions[i].ID, second.Transactions[i].ID)
	}
}

func TestFormatByName(t *testing.T) {
	format, ok := FormatByName("amex")
	require.True(t, ok)
	assert.True(t, format.FlipSign)

	_, ok = FormatByName("unknown-bank")
	assert.False(t, ok)
}
