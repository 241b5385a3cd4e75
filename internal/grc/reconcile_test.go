package grc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckExactBalance(t *testing.T) {
	lines := []ReceiveLine{
		{SpareCode: "A1", IssueQty: 10, ReceiveQty: 8, DamagedQty: 1, ShortQty: 1},
		{SpareCode: "B2", IssueQty: 5, ReceiveQty: 3},
		{SpareCode: "C3", IssueQty: 4, ReceiveQty: 2, AltSpareQty: 3},
	}
	bad := CheckExactBalance(lines)
	require.Len(t, bad, 2)
	require.Equal(t, "B2", bad[0].SpareCode)
	require.Equal(t, "C3", bad[1].SpareCode)
}

func TestCheckAltSpareDetails(t *testing.T) {
	lines := []ReceiveLine{
		{SpareCode: "A1", IssueQty: 2, ReceiveQty: 1, AltSpareQty: 1, AltSpareCode: "A1X", DisputeRemark: "sent variant"},
		{SpareCode: "B2", IssueQty: 2, ReceiveQty: 1, AltSpareQty: 1, AltSpareCode: "B2X"},
		{SpareCode: "C3", IssueQty: 2, ReceiveQty: 2},
	}
	bad := CheckAltSpareDetails(lines)
	require.Len(t, bad, 1)
	require.Equal(t, "B2", bad[0].SpareCode)
}

func TestValidateReceiveEmpty(t *testing.T) {
	notice := ValidateReceive(nil)
	require.NotNil(t, notice)
	require.Equal(t, "No records to update.", notice.Message)
	require.Equal(t, "Please fetch GRC details first.", notice.Resolution)
	require.Equal(t, NoticeWarning, notice.Type)
}

func TestValidateReceiveReportsFirstMismatchOnly(t *testing.T) {
	notice := ValidateReceive([]ReceiveLine{
		{SpareCode: "OK1", IssueQty: 1, ReceiveQty: 1},
		{SpareCode: "BAD1", IssueQty: 3, ReceiveQty: 1},
		{SpareCode: "BAD2", IssueQty: 3, ReceiveQty: 0},
	})
	require.NotNil(t, notice)
	require.Equal(t, "Quantity mismatch for BAD1", notice.Message)
	require.Equal(t, "Review spare quantities.", notice.Resolution)
	require.Equal(t, NoticeError, notice.Type)
}

func TestValidateReceiveBalanceBeforeAltDetails(t *testing.T) {
	notice := ValidateReceive([]ReceiveLine{
		{SpareCode: "ALT", IssueQty: 2, ReceiveQty: 1, AltSpareQty: 1},
		{SpareCode: "OFF", IssueQty: 2, ReceiveQty: 1},
	})
	require.Equal(t, "Quantity mismatch for OFF", notice.Message)

	notice = ValidateReceive([]ReceiveLine{
		{SpareCode: "ALT", IssueQty: 2, ReceiveQty: 1, AltSpareQty: 1, DisputeRemark: "variant"},
	})
	require.Equal(t, "Details missing for : ALT", notice.Message)
	require.Equal(t, "Enter Alt. Spare Code and Dispute Remark.", notice.Resolution)
}

func TestValidateReceivePasses(t *testing.T) {
	require.Nil(t, ValidateReceive([]ReceiveLine{
		{SpareCode: "A", IssueQty: 4, ReceiveQty: 2, DamagedQty: 1, AltSpareQty: 1, AltSpareCode: "AX", DisputeRemark: "substitute"},
	}))
}

func TestCheckUpperBound(t *testing.T) {
	res := CheckUpperBound([]ReturnLine{
		{SpareCode: "A", GoodQty: 2, DefectiveQty: 1, ActualPendingQty: 3},
		{SpareCode: "B", GoodQty: 2, DefectiveQty: 2, ActualPendingQty: 3},
		{SpareCode: "C", GoodQty: 0, DefectiveQty: 0, ActualPendingQty: 0},
		{SpareCode: "D", GoodQty: 1, ActualPendingQty: 0},
	})
	require.False(t, res.Valid)
	require.Equal(t, "Quantity mismatch.", res.Message)
	require.Equal(t, []int{1, 3}, res.FailingIndices)
}

func TestCheckUpperBoundValidHasEmptyIndices(t *testing.T) {
	res := CheckUpperBound([]ReturnLine{{GoodQty: 1, ActualPendingQty: 1}})
	require.True(t, res.Valid)
	require.Empty(t, res.Message)
	require.NotNil(t, res.FailingIndices)
	require.Empty(t, res.FailingIndices)

	res = CheckUpperBound(nil)
	require.True(t, res.Valid)
	require.NotNil(t, res.FailingIndices)
}

func TestBalancedLineCanStillExceedUpperBound(t *testing.T) {
	// the two policies are independent
	recv := []ReceiveLine{{SpareCode: "A", IssueQty: 5, ReceiveQty: 5}}
	require.Nil(t, ValidateReceive(recv))

	ret := CheckUpperBound([]ReturnLine{{SpareCode: "A", GoodQty: 4, DefectiveQty: 2, ActualPendingQty: 5}})
	require.False(t, ret.Valid)
}
