package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SubscriptionStatusTrial     = "trial"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"

	InvoiceStatusPending  = "pending"
	InvoiceStatusPaid     = "paid"
	InvoiceStatusExpired  = "expired"
	InvoiceStatusCanceled = "canceled"

	GatewayMidtrans = "midtrans"
)

type SubscriptionPlanModel struct {
	SubscriptionPlanID                  uuid.UUID      `gorm:"type:uuid;primaryKey;column:subscription_plan_id" json:"subscription_plan_id"`
	SubscriptionPlanCode                string         `gorm:"type:varchar(40);not null;uniqueIndex;column:subscription_plan_code" json:"subscription_plan_code"`
	SubscriptionPlanName                string         `gorm:"type:varchar(100);not null;column:subscription_plan_name" json:"subscription_plan_name"`
	SubscriptionPlanDescription         *string        `gorm:"type:text;column:subscription_plan_description" json:"subscription_plan_description,omitempty"`
	SubscriptionPlanPriceIDR            int64          `gorm:"not null;default:0;column:subscription_plan_price_idr" json:"subscription_plan_price_idr"`
	SubscriptionPlanBillingPeriodMonths int            `gorm:"not null;default:1;column:subscription_plan_billing_period_months" json:"subscription_plan_billing_period_months"`
	SubscriptionPlanMaxUsers            *int           `gorm:"column:subscription_plan_max_users" json:"subscription_plan_max_users,omitempty"`
	SubscriptionPlanMaxObjectives       *int           `gorm:"column:subscription_plan_max_objectives" json:"subscription_plan_max_objectives,omitempty"`
	SubscriptionPlanFeatures            datatypes.JSON `gorm:"column:subscription_plan_features" json:"subscription_plan_features,omitempty"`
	SubscriptionPlanIsActive            bool           `gorm:"not null;default:true;column:subscription_plan_is_active" json:"subscription_plan_is_active"`
	SubscriptionPlanSortOrder           int            `gorm:"not null;default:0;column:subscription_plan_sort_order" json:"subscription_plan_sort_order"`

	SubscriptionPlanCreatedAt time.Time `gorm:"autoCreateTime;column:subscription_plan_created_at" json:"subscription_plan_created_at"`
	SubscriptionPlanUpdatedAt time.Time `gorm:"autoUpdateTime;column:subscription_plan_updated_at" json:"subscription_plan_updated_at"`
}

func (SubscriptionPlanModel) TableName() string { return "subscription_plans" }

func (m *SubscriptionPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubscriptionPlanID == uuid.Nil {
		m.SubscriptionPlanID = uuid.New()
	}
	return nil
}

type OrganizationSubscriptionModel struct {
	OrgSubscriptionID                 uuid.UUID  `gorm:"type:uuid;primaryKey;column:org_subscription_id" json:"org_subscription_id"`
	OrgSubscriptionOrganizationID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:org_subscription_organization_id" json:"org_subscription_organization_id"`
	OrgSubscriptionPlanID             uuid.UUID  `gorm:"type:uuid;not null;column:org_subscription_plan_id" json:"org_subscription_plan_id"`
	OrgSubscriptionStatus             string     `gorm:"type:varchar(20);not null;default:'trial';index;column:org_subscription_status" json:"org_subscription_status"`
	OrgSubscriptionCurrentPeriodStart time.Time  `gorm:"not null;column:org_subscription_current_period_start" json:"org_subscription_current_period_start"`
	OrgSubscriptionCurrentPeriodEnd   time.Time  `gorm:"not null;index;column:org_subscription_current_period_end" json:"org_subscription_current_period_end"`
	OrgSubscriptionCancelledAt        *time.Time `gorm:"column:org_subscription_cancelled_at" json:"org_subscription_cancelled_at,omitempty"`

	OrgSubscriptionCreatedAt time.Time `gorm:"autoCreateTime;column:org_subscription_created_at" json:"org_subscription_created_at"`
	OrgSubscriptionUpdatedAt time.Time `gorm:"autoUpdateTime;column:org_subscription_updated_at" json:"org_subscription_updated_at"`
}

func (OrganizationSubscriptionModel) TableName() string { return "organization_subscriptions" }

func (m *OrganizationSubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if m.OrgSubscriptionID == uuid.Nil {
		m.OrgSubscriptionID = uuid.New()
	}
	return nil
}

// IsUsable: status yang masih boleh memakai fitur berbayar.
func (m OrganizationSubscriptionModel) IsUsable(now time.Time) bool {
	switch m.OrgSubscriptionStatus {
	case SubscriptionStatusTrial, SubscriptionStatusActive, SubscriptionStatusPastDue:
		return now.Before(m.OrgSubscriptionCurrentPeriodEnd)
	default:
		return false
	}
}

type InvoiceModel struct {
	InvoiceID             uuid.UUID  `gorm:"type:uuid;primaryKey;column:invoice_id" json:"invoice_id"`
	InvoiceOrganizationID uuid.UUID  `gorm:"type:uuid;not null;index;column:invoice_organization_id" json:"invoice_organization_id"`
	InvoiceSubscriptionID *uuid.UUID `gorm:"type:uuid;column:invoice_subscription_id" json:"invoice_subscription_id,omitempty"`
	InvoicePlanID         uuid.UUID  `gorm:"type:uuid;not null;column:invoice_plan_id" json:"invoice_plan_id"`
	InvoiceCreatedBy      *uuid.UUID `gorm:"type:uuid;column:invoice_created_by" json:"invoice_created_by,omitempty"`

	// dipakai sebagai order_id Midtrans
	InvoiceOrderID       string     `gorm:"type:varchar(64);not null;uniqueIndex;column:invoice_order_id" json:"invoice_order_id"`
	InvoiceAmountIDR     int64      `gorm:"not null;column:invoice_amount_idr" json:"invoice_amount_idr"`
	InvoicePeriodMonths  int        `gorm:"not null;default:1;column:invoice_period_months" json:"invoice_period_months"`
	InvoiceStatus        string     `gorm:"type:varchar(20);not null;default:'pending';index;column:invoice_status" json:"invoice_status"`
	InvoiceSnapToken     *string    `gorm:"type:varchar(255);column:invoice_snap_token" json:"invoice_snap_token,omitempty"`
	InvoiceRedirectURL   *string    `gorm:"type:text;column:invoice_redirect_url" json:"invoice_redirect_url,omitempty"`
	InvoicePaymentMethod *string    `gorm:"type:varchar(50);column:invoice_payment_method" json:"invoice_payment_method,omitempty"`
	InvoicePaidAt        *time.Time `gorm:"column:invoice_paid_at" json:"invoice_paid_at,omitempty"`
	InvoiceExpiredAt     *time.Time `gorm:"column:invoice_expired_at" json:"invoice_expired_at,omitempty"`

	InvoiceGatewayPayload datatypes.JSON `gorm:"column:invoice_gateway_payload" json:"invoice_gateway_payload,omitempty"`

	InvoiceCreatedAt time.Time      `gorm:"autoCreateTime;column:invoice_created_at" json:"invoice_created_at"`
	InvoiceUpdatedAt time.Time      `gorm:"autoUpdateTime;column:invoice_updated_at" json:"invoice_updated_at"`
	InvoiceDeletedAt gorm.DeletedAt `gorm:"index;column:invoice_deleted_at" json:"invoice_deleted_at,omitempty"`
}

func (InvoiceModel) TableName() string { return "invoices" }

func (m *InvoiceModel) BeforeCreate(tx *gorm.DB) error {
	if m.InvoiceID == uuid.Nil {
		m.InvoiceID = uuid.New()
	}
	return nil
}

/*
payment_gateway_events = log webhook / callback payment gateway
(bisa banyak row per invoice)
*/
type PaymentGatewayEventModel struct {
	GatewayEventID        uuid.UUID      `gorm:"type:uuid;primaryKey;column:gateway_event_id" json:"gateway_event_id"`
	GatewayEventInvoiceID *uuid.UUID     `gorm:"type:uuid;index;column:gateway_event_invoice_id" json:"gateway_event_invoice_id,omitempty"`
	GatewayEventProvider  string         `gorm:"type:varchar(20);not null;default:'midtrans';column:gateway_event_provider" json:"gateway_event_provider"`
	GatewayEventOrderID   *string        `gorm:"type:varchar(64);column:gateway_event_order_id" json:"gateway_event_order_id,omitempty"`
	GatewayEventStatus    *string        `gorm:"type:varchar(40);column:gateway_event_status" json:"gateway_event_status,omitempty"`
	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload" json:"gateway_event_payload,omitempty"`
	GatewayEventError     *string        `gorm:"type:text;column:gateway_event_error" json:"gateway_event_error,omitempty"`
	GatewayEventCreatedAt time.Time      `gorm:"autoCreateTime;column:gateway_event_created_at" json:"gateway_event_created_at"`
}

func (PaymentGatewayEventModel) TableName() string { return "payment_gateway_events" }

func (m *PaymentGatewayEventModel) BeforeCreate(tx *gorm.DB) error {
	if m.GatewayEventID == uuid.Nil {
		m.GatewayEventID = uuid.New()
	}
	return nil
}
