package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsIndependent(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data := SeedData(now)
	data.Transactions = []Transaction{{
		ID:    "TRX-1",
		Type:  TxSale,
		Items: TransactionItems{{ProductID: "PRD-0001", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
	}}
	data.Meetings = []Meeting{{ID: "MTG-1", Attendance: MeetingAttendances{{Name: "Rakha", Status: AttendancePresent}}}}

	clone := data.Clone()
	clone.Products[0].Name = "changed"
	clone.Transactions[0].Items[0].ProductID = "PRD-X"
	clone.Meetings[0].Attendance[0].Status = AttendanceAbsent
	clone.Settings.CashOpeningBalance = decimal.NewFromInt(99)

	assert.Equal(t, "Wall Decor Kayu Minimalis", data.Products[0].Name)
	assert.Equal(t, "PRD-0001", data.Transactions[0].Items[0].ProductID)
	assert.Equal(t, AttendancePresent, data.Meetings[0].Attendance[0].Status)
	assert.True(t, data.Settings.CashOpeningBalance.IsZero())
}

func TestNormalizeFillsDefaults(t *testing.T) {
	var data AppData
	require.NoError(t, json.Unmarshal([]byte(`{"products":[{"id":"PRD-1","name":"Lama","category":"Kayu"}]}`), &data))
	data.Normalize()

	assert.Equal(t, KindFinished, data.Products[0].Kind)
	assert.NotNil(t, data.Employees)
	assert.NotNil(t, data.StockMovements)
	assert.NotNil(t, data.Transactions)
	assert.NotNil(t, data.Productions)
	assert.NotNil(t, data.Meetings)
	assert.Equal(t, SettingsID, data.Settings.ID)
}

func TestAmountsMarshalAsNumbers(t *testing.T) {
	raw, err := json.Marshal(TransactionItem{ProductID: "PRD-1", Quantity: decimal.RequireFromString("1.5"), UnitPrice: decimal.NewFromInt(2000)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"productId":"PRD-1","quantity":1.5,"unitPrice":2000}`, string(raw))
}

func TestMovementJSONOmitsManualSource(t *testing.T) {
	raw, err := json.Marshal(StockMovement{ID: "STK-1", ProductID: "PRD-1", Type: MovementIn, Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sourceType")
	assert.NotContains(t, string(raw), "sourceId")
}

func TestTransactionItemsColumn(t *testing.T) {
	var none TransactionItems
	v, err := none.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	items := TransactionItems{{ProductID: "PRD-1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5)}}
	v, err = items.Value()
	require.NoError(t, err)

	var back TransactionItems
	require.NoError(t, back.Scan(v))
	require.Len(t, back, 1)
	assert.True(t, back[0].Subtotal().Equal(decimal.NewFromInt(10)))

	require.NoError(t, back.Scan([]byte(`[]`)))
	assert.Empty(t, back)

	assert.Error(t, back.Scan(42))
}

func TestAttendanceColumn(t *testing.T) {
	a := MeetingAttendances{{Name: "Bagus", Status: AttendanceExcused}}
	v, err := a.Value()
	require.NoError(t, err)

	var back MeetingAttendances
	require.NoError(t, back.Scan(v))
	assert.Equal(t, a, back)

	var empty MeetingAttendances
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
}

func TestMovementDelta(t *testing.T) {
	in := StockMovement{Type: MovementIn, Quantity: decimal.NewFromInt(4)}
	out := StockMovement{Type: MovementOut, Quantity: decimal.NewFromInt(4), SourceType: SourceProduction}

	assert.Equal(t, "4", in.Delta().String())
	assert.Equal(t, "-4", out.Delta().String())
	assert.False(t, in.Generated())
	assert.True(t, out.Generated())
	assert.Equal(t, MovementOut, TxSale.MovementType())
	assert.Equal(t, MovementIn, TxPurchase.MovementType())
}

func TestRoles(t *testing.T) {
	assert.True(t, RolePending.Valid())
	assert.False(t, RolePending.IsStaff())
	assert.True(t, RoleCMO.IsStaff())
	assert.False(t, EmployeeRole("OWNER").Valid())
	assert.True(t, KindRawMaterial.Valid())
	assert.False(t, ProductKind("PAPER").Valid())
}

func TestCredentialPassword(t *testing.T) {
	var c Credential
	require.NoError(t, c.SetPassword("admin123"))
	assert.NotEqual(t, "admin123", c.Password)
	assert.True(t, c.CheckPassword("admin123"))
	assert.False(t, c.CheckPassword("admin124"))

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
}

func TestSoftReferenceLabels(t *testing.T) {
	data := SeedData(time.Now())
	assert.Equal(t, "Rakha", EmployeeName(data.Employees, "EMP-0001"))
	assert.Equal(t, "EMP-GONE", EmployeeName(data.Employees, "EMP-GONE"))
	assert.Equal(t, "Wall Decor Macrame", ProductLabel(data.Products, "PRD-0002"))
	assert.Equal(t, "PRD-GONE", ProductLabel(data.Products, "PRD-GONE"))
}
