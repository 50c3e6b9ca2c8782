package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/billing/dto"
	"okrku_backend/internals/features/billing/model"
	helper "okrku_backend/internals/helpers"
)

var (
	ErrPlanNotFound     = fiber.NewError(fiber.StatusNotFound, "Paket tidak ditemukan")
	ErrFreePlan         = fiber.NewError(fiber.StatusUnprocessableEntity, "Paket gratis tidak memerlukan pembayaran")
	ErrNoSubscription   = fiber.NewError(fiber.StatusNotFound, "Organisasi belum berlangganan")
	ErrGatewayNotConfig = fiber.NewError(fiber.StatusServiceUnavailable, "Payment gateway belum dikonfigurasi")
)

// invoice pending dianggap kedaluwarsa setelah 24 jam (sama dengan default Snap)
const invoiceTTL = 24 * time.Hour

func ListPlans(ctx context.Context, db *gorm.DB) ([]model.SubscriptionPlanModel, error) {
	var rows []model.SubscriptionPlanModel
	err := db.WithContext(ctx).
		Where("subscription_plan_is_active = ?", true).
		Order("subscription_plan_sort_order ASC, subscription_plan_price_idr ASC").
		Find(&rows).Error
	return rows, err
}

func FindPlanByCode(ctx context.Context, db *gorm.DB, code string) (*model.SubscriptionPlanModel, error) {
	var p model.SubscriptionPlanModel
	err := db.WithContext(ctx).
		Where("subscription_plan_code = ? AND subscription_plan_is_active = ?", strings.ToLower(strings.TrimSpace(code)), true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func GetSubscription(ctx context.Context, db *gorm.DB, orgID uuid.UUID, now time.Time) (*dto.SubscriptionResponse, error) {
	var sub model.OrganizationSubscriptionModel
	err := db.WithContext(ctx).Where("org_subscription_organization_id = ?", orgID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSubscription
	}
	if err != nil {
		return nil, err
	}
	var plan model.SubscriptionPlanModel
	if err := db.WithContext(ctx).Where("subscription_plan_id = ?", sub.OrgSubscriptionPlanID).First(&plan).Error; err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	resp := dto.SubscriptionFromModel(&sub, &plan, now)
	return &resp, nil
}

func ListInvoices(ctx context.Context, db *gorm.DB, orgID uuid.UUID, status string, p helper.Paging) ([]model.InvoiceModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.InvoiceModel{}).Where("invoice_organization_id = ?", orgID)
	if status != "" {
		q = q.Where("invoice_status = ?", status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.InvoiceModel
	err := q.Order("invoice_created_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error
	return rows, total, err
}

// NewOrderID: "OKR-20260215-1a2b3c4d", unik per invoice.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("OKR-%s-%s", now.UTC().Format("20060102"), strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

/* ===============================
   Checkout
=================================*/

type CheckoutResult struct {
	Invoice     model.InvoiceModel
	SnapToken   string
	RedirectURL string
}

// Checkout membuat invoice pending lalu meminta Snap token. Kalau gateway gagal,
// invoice ditandai canceled supaya tidak menggantung.
func Checkout(ctx context.Context, db *gorm.DB, gw SnapGateway, orgID, actorID uuid.UUID, req dto.CheckoutRequest, cust Customer, now time.Time) (*CheckoutResult, error) {
	if gw == nil {
		return nil, ErrGatewayNotConfig
	}
	plan, err := FindPlanByCode(ctx, db, req.PlanCode)
	if err != nil {
		return nil, err
	}
	if plan.SubscriptionPlanPriceIDR <= 0 {
		return nil, ErrFreePlan
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	period := plan.SubscriptionPlanBillingPeriodMonths
	if period <= 0 {
		period = 1
	}

	var subID *uuid.UUID
	var sub model.OrganizationSubscriptionModel
	if err := db.WithContext(ctx).Where("org_subscription_organization_id = ?", orgID).Limit(1).Find(&sub).Error; err != nil {
		return nil, err
	}
	if sub.OrgSubscriptionID != uuid.Nil {
		subID = &sub.OrgSubscriptionID
	}

	exp := now.UTC().Add(invoiceTTL)
	inv := model.InvoiceModel{
		InvoiceOrganizationID: orgID,
		InvoiceSubscriptionID: subID,
		InvoicePlanID:         plan.SubscriptionPlanID,
		InvoiceCreatedBy:      &actorID,
		InvoiceOrderID:        NewOrderID(now),
		InvoiceAmountIDR:      plan.SubscriptionPlanPriceIDR * int64(qty),
		InvoicePeriodMonths:   period * qty,
		InvoiceStatus:         model.InvoiceStatusPending,
		InvoiceExpiredAt:      &exp,
	}
	if err := db.WithContext(ctx).Create(&inv).Error; err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s (%d bulan)", plan.SubscriptionPlanName, inv.InvoicePeriodMonths)
	token, redirect, err := gw.CreateTransaction(snapRequest(inv.InvoiceOrderID, inv.InvoiceAmountIDR, name, plan.SubscriptionPlanCode, cust))
	if err != nil {
		configs.L().Errorf("[ERROR] Snap token gagal untuk %s: %v", inv.InvoiceOrderID, err)
		if uerr := db.WithContext(ctx).Model(&model.InvoiceModel{}).
			Where("invoice_id = ?", inv.InvoiceID).
			Update("invoice_status", model.InvoiceStatusCanceled).Error; uerr != nil {
			// tetap pending; disapu ExpireSubscriptions setelah invoiceTTL
			configs.L().Warnf("[WARN] Invoice %s gagal dibatalkan: %v", inv.InvoiceOrderID, uerr)
		}
		return nil, fiber.NewError(fiber.StatusBadGateway, "Gagal membuat transaksi pembayaran")
	}

	if err := db.WithContext(ctx).Model(&model.InvoiceModel{}).
		Where("invoice_id = ?", inv.InvoiceID).
		Updates(map[string]any{"invoice_snap_token": token, "invoice_redirect_url": redirect}).Error; err != nil {
		return nil, err
	}
	inv.InvoiceSnapToken = &token
	inv.InvoiceRedirectURL = &redirect
	configs.L().Infof("[INFO] Invoice %s dibuat: %s Rp%d", inv.InvoiceOrderID, plan.SubscriptionPlanCode, inv.InvoiceAmountIDR)
	return &CheckoutResult{Invoice: inv, SnapToken: token, RedirectURL: redirect}, nil
}

/* ===============================
   Subscription sweep (scheduler)
=================================*/

// ExpireSubscriptions menandai langganan yang lewat periode sebagai expired,
// dan invoice pending yang lewat batas sebagai expired. Satu UPDATE per tabel.
func ExpireSubscriptions(ctx context.Context, db *gorm.DB, now time.Time) (subs int64, invoices int64, err error) {
	res := db.WithContext(ctx).Model(&model.OrganizationSubscriptionModel{}).
		Where("org_subscription_status IN ? AND org_subscription_current_period_end <= ?",
			[]string{model.SubscriptionStatusTrial, model.SubscriptionStatusActive, model.SubscriptionStatusPastDue}, now.UTC()).
		Update("org_subscription_status", model.SubscriptionStatusExpired)
	if res.Error != nil {
		return 0, 0, res.Error
	}
	subs = res.RowsAffected

	res = db.WithContext(ctx).Model(&model.InvoiceModel{}).
		Where("invoice_status = ? AND invoice_expired_at IS NOT NULL AND invoice_expired_at <= ?", model.InvoiceStatusPending, now.UTC()).
		Update("invoice_status", model.InvoiceStatusExpired)
	if res.Error != nil {
		return subs, 0, res.Error
	}
	return subs, res.RowsAffected, nil
}
