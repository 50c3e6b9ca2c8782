package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/billing/dto"
	"okrku_backend/internals/features/billing/model"
)

var ErrInvalidSignature = fiber.NewError(fiber.StatusUnauthorized, "invalid signature")

// Signature Midtrans: SHA512(order_id + status_code + gross_amount + server_key).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

func VerifySignature(n dto.MidtransNotification, serverKey string) bool {
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if want == "" || serverKey == "" {
		return false
	}
	got := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// MapMidtransStatus memetakan transaction_status (+fraud_status) ke status invoice.
// "" = tidak mengubah status (mis. capture challenge).
func MapMidtransStatus(txStatus, fraud string) string {
	switch strings.ToLower(txStatus) {
	case "capture":
		switch strings.ToLower(fraud) {
		case "", "accept":
			return model.InvoiceStatusPaid
		case "challenge":
			return ""
		default:
			return model.InvoiceStatusCanceled
		}
	case "settlement":
		return model.InvoiceStatusPaid
	case "pending":
		return model.InvoiceStatusPending
	case "deny", "cancel", "failure":
		return model.InvoiceStatusCanceled
	case "expire":
		return model.InvoiceStatusExpired
	default:
		return ""
	}
}

type NotificationResult struct {
	InvoiceID      uuid.UUID
	OrganizationID uuid.UUID
	InvoiceStatus  string
	Activated      bool
	Ignored        string
}

// HandleNotification memproses notifikasi yang signature-nya sudah valid.
// Invoice dikunci (SELECT ... FOR UPDATE) supaya notifikasi ganda tidak memperpanjang dua kali.
func HandleNotification(ctx context.Context, db *gorm.DB, n dto.MidtransNotification, raw []byte, now time.Time) (*NotificationResult, error) {
	res := &NotificationResult{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv model.InvoiceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("invoice_order_id = ?", n.OrderID).
			First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			res.Ignored = "invoice not found"
			return nil
		}
		if err != nil {
			return err
		}
		res.InvoiceID = inv.InvoiceID
		res.OrganizationID = inv.InvoiceOrganizationID

		next := MapMidtransStatus(n.TransactionStatus, n.FraudStatus)
		res.InvoiceStatus = inv.InvoiceStatus
		if next == "" || next == inv.InvoiceStatus {
			res.Ignored = "no status change"
			return nil
		}
		if inv.InvoiceStatus == model.InvoiceStatusPaid {
			// paid bersifat final (refund di luar cakupan)
			res.Ignored = "invoice already paid"
			return nil
		}

		updates := map[string]any{"invoice_status": next}
		if n.PaymentType != "" {
			updates["invoice_payment_method"] = n.PaymentType
		}
		if next == model.InvoiceStatusPaid {
			updates["invoice_paid_at"] = now.UTC()
		}
		if err := tx.Model(&model.InvoiceModel{}).Where("invoice_id = ?", inv.InvoiceID).Updates(updates).Error; err != nil {
			return err
		}
		res.InvoiceStatus = next

		if next == model.InvoiceStatusPaid {
			if err := activate(tx, &inv, now); err != nil {
				return err
			}
			res.Activated = true
		}
		return nil
	})
	// event dicatat di luar transaksi: payload tetap tersimpan walau proses gagal
	var invID *uuid.UUID
	if res.InvoiceID != uuid.Nil {
		invID = &res.InvoiceID
	}
	switch {
	case err != nil:
		logEvent(db.WithContext(ctx), invID, n, raw, err.Error())
		return nil, err
	case res.Ignored == "invoice not found":
		logEvent(db.WithContext(ctx), nil, n, raw, "invoice tidak ditemukan")
	default:
		logEvent(db.WithContext(ctx), invID, n, raw, "")
	}
	if res.Activated {
		configs.L().Infof("[INFO] Invoice %s lunas, langganan organisasi %s aktif", n.OrderID, res.OrganizationID)
	}
	return res, nil
}

// activate: paket sama & masih berjalan → diperpanjang dari akhir periode; selain itu mulai dari sekarang.
func activate(tx *gorm.DB, inv *model.InvoiceModel, now time.Time) error {
	now = now.UTC()
	months := inv.InvoicePeriodMonths
	if months <= 0 {
		months = 1
	}

	var sub model.OrganizationSubscriptionModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("org_subscription_organization_id = ?", inv.InvoiceOrganizationID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&model.OrganizationSubscriptionModel{
			OrgSubscriptionOrganizationID:     inv.InvoiceOrganizationID,
			OrgSubscriptionPlanID:             inv.InvoicePlanID,
			OrgSubscriptionStatus:             model.SubscriptionStatusActive,
			OrgSubscriptionCurrentPeriodStart: now,
			OrgSubscriptionCurrentPeriodEnd:   now.AddDate(0, months, 0),
		}).Error
	}
	if err != nil {
		return err
	}

	start, end := now, now.AddDate(0, months, 0)
	extend := sub.OrgSubscriptionPlanID == inv.InvoicePlanID &&
		sub.OrgSubscriptionStatus == model.SubscriptionStatusActive &&
		sub.OrgSubscriptionCurrentPeriodEnd.After(now)
	if extend {
		start = sub.OrgSubscriptionCurrentPeriodStart
		end = sub.OrgSubscriptionCurrentPeriodEnd.AddDate(0, months, 0)
	}
	return tx.Model(&model.OrganizationSubscriptionModel{}).
		Where("org_subscription_id = ?", sub.OrgSubscriptionID).
		Updates(map[string]any{
			"org_subscription_plan_id":              inv.InvoicePlanID,
			"org_subscription_status":               model.SubscriptionStatusActive,
			"org_subscription_current_period_start": start,
			"org_subscription_current_period_end":   end,
			"org_subscription_cancelled_at":         nil,
		}).Error
}

func logEvent(db *gorm.DB, invoiceID *uuid.UUID, n dto.MidtransNotification, raw []byte, errMsg string) {
	ev := model.PaymentGatewayEventModel{
		GatewayEventInvoiceID: invoiceID,
		GatewayEventProvider:  model.GatewayMidtrans,
		GatewayEventOrderID:   strPtr(n.OrderID),
		GatewayEventStatus:    strPtr(n.TransactionStatus),
		GatewayEventPayload:   datatypes.JSON(raw),
		GatewayEventError:     strPtr(errMsg),
	}
	if err := db.Create(&ev).Error; err != nil {
		configs.L().Warnf("[WARN] Gagal simpan gateway event %s: %v", n.OrderID, err)
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
