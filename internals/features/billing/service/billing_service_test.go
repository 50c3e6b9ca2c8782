package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/databases/dbtest"
	"okrku_backend/internals/features/billing/dto"
	"okrku_backend/internals/features/billing/model"
	helper "okrku_backend/internals/helpers"
)

type fakeGateway struct {
	reqs   []*snap.Request
	err    error
	before func()
}

func (f *fakeGateway) CreateTransaction(req *snap.Request) (string, string, error) {
	f.reqs = append(f.reqs, req)
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return "", "", f.err
	}
	return "tok-" + req.TransactionDetails.OrderID, "https://app.sandbox.midtrans.com/snap/v2/vtweb/x", nil
}

const serverKey = "SB-Mid-server-test"

var now = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func seedPlans(t *testing.T, db *gorm.DB) (free, pro model.SubscriptionPlanModel) {
	t.Helper()
	free = model.SubscriptionPlanModel{SubscriptionPlanCode: "free", SubscriptionPlanName: "Free", SubscriptionPlanBillingPeriodMonths: 1, SubscriptionPlanIsActive: true}
	pro = model.SubscriptionPlanModel{SubscriptionPlanCode: "pro", SubscriptionPlanName: "Pro", SubscriptionPlanPriceIDR: 150000, SubscriptionPlanBillingPeriodMonths: 1, SubscriptionPlanIsActive: true, SubscriptionPlanSortOrder: 1}
	require.NoError(t, db.Create(&free).Error)
	require.NoError(t, db.Create(&pro).Error)
	return free, pro
}

func notif(orderID, status, fraud string) dto.MidtransNotification {
	n := dto.MidtransNotification{
		OrderID:           orderID,
		StatusCode:        "200",
		GrossAmount:       "150000.00",
		TransactionStatus: status,
		FraudStatus:       fraud,
		PaymentType:       "bank_transfer",
	}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return n
}

func TestMapMidtransStatus(t *testing.T) {
	tests := []struct {
		tx, fraud, want string
	}{
		{"capture", "accept", model.InvoiceStatusPaid},
		{"capture", "", model.InvoiceStatusPaid},
		{"capture", "challenge", ""},
		{"capture", "deny", model.InvoiceStatusCanceled},
		{"settlement", "", model.InvoiceStatusPaid},
		{"pending", "", model.InvoiceStatusPending},
		{"deny", "", model.InvoiceStatusCanceled},
		{"cancel", "", model.InvoiceStatusCanceled},
		{"failure", "", model.InvoiceStatusCanceled},
		{"expire", "", model.InvoiceStatusExpired},
		{"refund", "", ""},
		{"SETTLEMENT", "", model.InvoiceStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.tx+"/"+tt.fraud, func(t *testing.T) {
			assert.Equal(t, tt.want, MapMidtransStatus(tt.tx, tt.fraud))
		})
	}
}

func TestVerifySignature(t *testing.T) {
	n := notif("OKR-1", "settlement", "")
	assert.True(t, VerifySignature(n, serverKey))
	assert.False(t, VerifySignature(n, "other-key"))
	assert.False(t, VerifySignature(n, ""))

	n.GrossAmount = "1.00"
	assert.False(t, VerifySignature(n, serverKey), "tampered amount")
}

func TestCheckout(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	seedPlans(t, db)
	ctx := context.Background()
	gw := &fakeGateway{}

	_, err := Checkout(ctx, db, gw, org.ID, org.OwnerID, dto.CheckoutRequest{PlanCode: "free"}, Customer{}, now)
	assert.ErrorIs(t, err, ErrFreePlan)
	_, err = Checkout(ctx, db, gw, org.ID, org.OwnerID, dto.CheckoutRequest{PlanCode: "gold"}, Customer{}, now)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	_, err = Checkout(ctx, db, nil, org.ID, org.OwnerID, dto.CheckoutRequest{PlanCode: "pro"}, Customer{}, now)
	assert.ErrorIs(t, err, ErrGatewayNotConfig)

	res, err := Checkout(ctx, db, gw, org.ID, org.OwnerID, dto.CheckoutRequest{PlanCode: " PRO ", Quantity: 3},
		Customer{FirstName: "Ani", Email: "ani@example.com"}, now)
	require.NoError(t, err)
	assert.EqualValues(t, 450000, res.Invoice.InvoiceAmountIDR)
	assert.Equal(t, 3, res.Invoice.InvoicePeriodMonths)
	assert.Equal(t, "tok-"+res.Invoice.InvoiceOrderID, res.SnapToken)
	require.Len(t, gw.reqs, 1)
	assert.EqualValues(t, 450000, gw.reqs[0].TransactionDetails.GrossAmt)
	assert.Equal(t, "ani@example.com", gw.reqs[0].CustomerDetail.Email)

	var stored model.InvoiceModel
	require.NoError(t, db.Where("invoice_id = ?", res.Invoice.InvoiceID).First(&stored).Error)
	assert.Equal(t, model.InvoiceStatusPending, stored.InvoiceStatus)
	require.NotNil(t, stored.InvoiceSnapToken)
	assert.Equal(t, res.SnapToken, *stored.InvoiceSnapToken)

	// gateway gagal → invoice dibatalkan
	gw.err = errors.New("timeout")
	_, err = Checkout(ctx, db, gw, org.ID, org.OwnerID, dto.CheckoutRequest{PlanCode: "pro"}, Customer{}, now)
	require.Error(t, err)
	rows, total, err := ListInvoices(ctx, db, org.ID, model.InvoiceStatusCanceled, helper.Paging{Page: 1, PerPage: 10, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, rows, 1)
}

func TestCheckout_CancelFailureIsLogged(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	seedPlans(t, db)

	core, logs := observer.New(zapcore.WarnLevel)
	prev := configs.L()
	configs.SetLogger(zap.New(core).Sugar())
	t.Cleanup(func() { configs.SetLogger(prev) })

	gw := &fakeGateway{
		err:    errors.New("timeout"),
		before: func() { require.NoError(t, db.Migrator().DropTable("invoices")) },
	}
	_, err := Checkout(context.Background(), db, gw, org.ID, org.OwnerID, dto.CheckoutRequest{PlanCode: "pro"}, Customer{}, now)
	require.Error(t, err)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe, "error gateway yang dikembalikan, bukan error update")
	assert.Equal(t, fiber.StatusBadGateway, fe.Code)
	require.Len(t, gw.reqs, 1)
	assert.Equal(t, 1, logs.FilterMessageSnippet("gagal dibatalkan").Len())
}

func TestHandleNotification_ActivatesAndExtends(t *testing.T) {
	db := dbtest.Open(t)
	org := dbtest.SeedOrg(t, db, "acme")
	free, pro := seedPlans(t, db)
	ctx := context.Background()

	// trial berjalan di paket free
	require.NoError(t, db.Create(&model.OrganizationSubscriptionModel{
		OrgSubscriptionOrganizationID:     org.ID,
		OrgSubscriptionPlanID:             free.SubscriptionPlanID,
		OrgSubscriptionStatus:             model.SubscriptionStatusTrial,
		OrgSubscriptionCurrentPeriodStart: now.AddDate(0, 0, -3),
		OrgSubscriptionCurrentPeriodEnd:   now.AddDate(0, 0, 11),
	}).Error)

	gw := &fakeGateway{}
	first, err := Checkout(ctx, db, gw, org.ID, org.OwnerID, dto.CheckoutRequest{PlanCode: "pro"}, Customer{}, now)
	require.NoError(t, err)

	res, err := HandleNotification(ctx, db, notif(first.Invoice.InvoiceOrderID, "pending", ""), []byte(`{"transaction_status":"pending"}`), now)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPending, res.InvoiceStatus)
	assert.False(t, res.Activated)

	res, err = HandleNotification(ctx, db, notif(first.Invoice.InvoiceOrderID, "settlement", ""), []byte(`{"transaction_status":"settlement"}`), now)
	require.NoError(t, err)
	assert.True(t, res.Activated)

	sub, err := GetSubscription(ctx, db, org.ID, now)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "pro", sub.Plan.Code)
	assert.True(t, now.Equal(sub.CurrentPeriodStart), "plan change starts a fresh period")
	assert.True(t, now.AddDate(0, 1, 0).Equal(sub.CurrentPeriodEnd))

	// notifikasi ulang tidak memperpanjang dua kali
	res, err = HandleNotification(ctx, db, notif(first.Invoice.InvoiceOrderID, "settlement", ""), []byte(`{}`), now)
	require.NoError(t, err)
	assert.False(t, res.Activated)
	assert.NotEmpty(t, res.Ignored)

	// pembayaran kedua paket yang sama → diperpanjang dari akhir periode
	later := now.AddDate(0, 0, 10)
	second, err := Checkout(ctx, db, gw, org.ID, org.OwnerID, dto.CheckoutRequest{PlanCode: "pro"}, Customer{}, later)
	require.NoError(t, err)
	_, err = HandleNotification(ctx, db, notif(second.Invoice.InvoiceOrderID, "capture", "accept"), []byte(`{}`), later)
	require.NoError(t, err)

	sub, err = GetSubscription(ctx, db, org.ID, later)
	require.NoError(t, err)
	assert.True(t, now.AddDate(0, 2, 0).Equal(sub.CurrentPeriodEnd))
	assert.Equal(t, pro.SubscriptionPlanID, sub.Plan.ID)

	var events int64
	require.NoError(t, db.Model(&model.PaymentGatewayEventModel{}).Count(&events).Error)
	assert.EqualValues(t, 4, events)
}

func TestHandleNotification_UnknownOrder(t *testing.T) {
	db := dbtest.Open(t)
	res, err := HandleNotification(context.Background(), db, notif("OKR-missing", "settlement", ""), []byte(`{}`), now)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, res.InvoiceID)
	assert.Equal(t, "invoice not found", res.Ignored)

	var ev model.PaymentGatewayEventModel
	require.NoError(t, db.First(&ev).Error)
	assert.Nil(t, ev.GatewayEventInvoiceID)
	require.NotNil(t, ev.GatewayEventError)
}

func TestExpireSubscriptions(t *testing.T) {
	db := dbtest.Open(t)
	a := dbtest.SeedOrg(t, db, "alpha")
	b := dbtest.SeedOrg(t, db, "beta")
	_, pro := seedPlans(t, db)
	ctx := context.Background()

	require.NoError(t, db.Create(&[]model.OrganizationSubscriptionModel{
		{OrgSubscriptionOrganizationID: a.ID, OrgSubscriptionPlanID: pro.SubscriptionPlanID, OrgSubscriptionStatus: model.SubscriptionStatusActive,
			OrgSubscriptionCurrentPeriodStart: now.AddDate(0, -1, 0), OrgSubscriptionCurrentPeriodEnd: now.Add(-time.Hour)},
		{OrgSubscriptionOrganizationID: b.ID, OrgSubscriptionPlanID: pro.SubscriptionPlanID, OrgSubscriptionStatus: model.SubscriptionStatusActive,
			OrgSubscriptionCurrentPeriodStart: now, OrgSubscriptionCurrentPeriodEnd: now.AddDate(0, 1, 0)},
	}).Error)
	gw := &fakeGateway{}
	_, err := Checkout(ctx, db, gw, a.ID, a.OwnerID, dto.CheckoutRequest{PlanCode: "pro"}, Customer{}, now.Add(-48*time.Hour))
	require.NoError(t, err)

	subs, invoices, err := ExpireSubscriptions(ctx, db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, subs)
	assert.EqualValues(t, 1, invoices)

	sa, err := GetSubscription(ctx, db, a.ID, now)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusExpired, sa.Status)
	assert.False(t, sa.IsUsable)

	sb, err := GetSubscription(ctx, db, b.ID, now)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusActive, sb.Status)
}
