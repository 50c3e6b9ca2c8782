package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"okrku_backend/internals/features/billing/model"
)

type PlanResponse struct {
	ID                  uuid.UUID      `json:"subscription_plan_id"`
	Code                string         `json:"subscription_plan_code"`
	Name                string         `json:"subscription_plan_name"`
	Description         *string        `json:"subscription_plan_description,omitempty"`
	PriceIDR            int64          `json:"subscription_plan_price_idr"`
	BillingPeriodMonths int            `json:"subscription_plan_billing_period_months"`
	MaxUsers            *int           `json:"subscription_plan_max_users,omitempty"`
	MaxObjectives       *int           `json:"subscription_plan_max_objectives,omitempty"`
	Features            datatypes.JSON `json:"subscription_plan_features,omitempty"`
}

func PlanFromModel(m *model.SubscriptionPlanModel) PlanResponse {
	return PlanResponse{
		ID:                  m.SubscriptionPlanID,
		Code:                m.SubscriptionPlanCode,
		Name:                m.SubscriptionPlanName,
		Description:         m.SubscriptionPlanDescription,
		PriceIDR:            m.SubscriptionPlanPriceIDR,
		BillingPeriodMonths: m.SubscriptionPlanBillingPeriodMonths,
		MaxUsers:            m.SubscriptionPlanMaxUsers,
		MaxObjectives:       m.SubscriptionPlanMaxObjectives,
		Features:            m.SubscriptionPlanFeatures,
	}
}

type SubscriptionResponse struct {
	ID                 uuid.UUID    `json:"org_subscription_id"`
	Status             string       `json:"org_subscription_status"`
	CurrentPeriodStart time.Time    `json:"org_subscription_current_period_start"`
	CurrentPeriodEnd   time.Time    `json:"org_subscription_current_period_end"`
	CancelledAt        *time.Time   `json:"org_subscription_cancelled_at,omitempty"`
	IsUsable           bool         `json:"is_usable"`
	DaysLeft           int          `json:"days_left"`
	Plan               PlanResponse `json:"plan"`
}

func SubscriptionFromModel(s *model.OrganizationSubscriptionModel, p *model.SubscriptionPlanModel, now time.Time) SubscriptionResponse {
	days := 0
	if d := s.OrgSubscriptionCurrentPeriodEnd.Sub(now); d > 0 {
		days = int(d.Hours()/24 + 0.999)
	}
	return SubscriptionResponse{
		ID:                 s.OrgSubscriptionID,
		Status:             s.OrgSubscriptionStatus,
		CurrentPeriodStart: s.OrgSubscriptionCurrentPeriodStart,
		CurrentPeriodEnd:   s.OrgSubscriptionCurrentPeriodEnd,
		CancelledAt:        s.OrgSubscriptionCancelledAt,
		IsUsable:           s.IsUsable(now),
		DaysLeft:           days,
		Plan:               PlanFromModel(p),
	}
}

type InvoiceResponse struct {
	ID            uuid.UUID  `json:"invoice_id"`
	PlanID        uuid.UUID  `json:"invoice_plan_id"`
	OrderID       string     `json:"invoice_order_id"`
	AmountIDR     int64      `json:"invoice_amount_idr"`
	PeriodMonths  int        `json:"invoice_period_months"`
	Status        string     `json:"invoice_status"`
	SnapToken     *string    `json:"invoice_snap_token,omitempty"`
	RedirectURL   *string    `json:"invoice_redirect_url,omitempty"`
	PaymentMethod *string    `json:"invoice_payment_method,omitempty"`
	PaidAt        *time.Time `json:"invoice_paid_at,omitempty"`
	ExpiredAt     *time.Time `json:"invoice_expired_at,omitempty"`
	CreatedAt     time.Time  `json:"invoice_created_at"`
}

func InvoiceFromModel(m *model.InvoiceModel) InvoiceResponse {
	return InvoiceResponse{
		ID:            m.InvoiceID,
		PlanID:        m.InvoicePlanID,
		OrderID:       m.InvoiceOrderID,
		AmountIDR:     m.InvoiceAmountIDR,
		PeriodMonths:  m.InvoicePeriodMonths,
		Status:        m.InvoiceStatus,
		SnapToken:     m.InvoiceSnapToken,
		RedirectURL:   m.InvoiceRedirectURL,
		PaymentMethod: m.InvoicePaymentMethod,
		PaidAt:        m.InvoicePaidAt,
		ExpiredAt:     m.InvoiceExpiredAt,
		CreatedAt:     m.InvoiceCreatedAt,
	}
}

type CheckoutRequest struct {
	PlanCode string `json:"plan_code" validate:"required,max=40"`
	// kelipatan periode paket (mis. 12 bulan = 12 x paket bulanan)
	Quantity int `json:"quantity" validate:"omitempty,gte=1,lte=24"`
}

// MidtransNotification: payload HTTP notification Midtrans. Field lain diabaikan.
type MidtransNotification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	SettlementTime    string `json:"settlement_time"`
}
