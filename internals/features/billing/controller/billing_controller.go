package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/features/billing/dto"
	"okrku_backend/internals/features/billing/service"
	userModel "okrku_backend/internals/features/users/users/model"
	helper "okrku_backend/internals/helpers"
)

type BillingController struct {
	DB        *gorm.DB
	Gateway   service.SnapGateway
	ServerKey string
	Now       func() time.Time
}

// NewBillingController: tanpa server key gateway nil (checkout → 503).
func NewBillingController(db *gorm.DB, serverKey string, useProd bool) *BillingController {
	bc := &BillingController{DB: db, ServerKey: serverKey, Now: time.Now}
	if serverKey != "" {
		bc.Gateway = service.NewSnapGateway(serverKey, useProd)
	}
	return bc
}

// GET /api/public/billing/plans
func (bc *BillingController) Plans(c *fiber.Ctx) error {
	rows, err := service.ListPlans(c.UserContext(), bc.DB)
	if err != nil {
		return helper.ServiceError(c, err, "Paket tidak ditemukan", "Gagal mengambil paket")
	}
	out := make([]dto.PlanResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.PlanFromModel(&rows[i]))
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /api/u/billing/subscription
func (bc *BillingController) Subscription(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	resp, err := service.GetSubscription(c.UserContext(), bc.DB, orgID, bc.Now())
	if err != nil {
		return helper.ServiceError(c, err, "Langganan tidak ditemukan", "Gagal mengambil langganan")
	}
	return helper.JsonOK(c, "ok", resp)
}

// GET /api/a/billing/invoices?status=
func (bc *BillingController) Invoices(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := service.ListInvoices(c.UserContext(), bc.DB, orgID, strings.TrimSpace(c.Query("status")), p)
	if err != nil {
		return helper.ServiceError(c, err, "Invoice tidak ditemukan", "Gagal mengambil invoice")
	}
	out := make([]dto.InvoiceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.InvoiceFromModel(&rows[i]))
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", out, &pg)
}

// POST /api/a/billing/checkout
func (bc *BillingController) Checkout(c *fiber.Ctx) error {
	orgID, err := helper.GetOrganizationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CheckoutRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	var u userModel.UserModel
	if err := bc.DB.WithContext(c.UserContext()).Select("id", "user_name", "full_name", "email").
		Where("id = ?", userID).First(&u).Error; err != nil {
		return helper.ServiceError(c, err, "User tidak ditemukan", "Gagal memuat user")
	}
	first, last := splitName(u)

	res, err := service.Checkout(c.UserContext(), bc.DB, bc.Gateway, orgID, userID, req,
		service.Customer{FirstName: first, LastName: last, Email: u.Email}, bc.Now())
	if err != nil {
		return helper.ServiceError(c, err, "Paket tidak ditemukan", "Gagal membuat checkout")
	}
	return helper.JsonCreated(c, "Invoice dibuat", fiber.Map{
		"invoice":      dto.InvoiceFromModel(&res.Invoice),
		"snap_token":   res.SnapToken,
		"redirect_url": res.RedirectURL,
	})
}

func splitName(u userModel.UserModel) (string, string) {
	name := u.UserName
	if u.FullName != nil && strings.TrimSpace(*u.FullName) != "" {
		name = strings.TrimSpace(*u.FullName)
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// POST /api/public/billing/midtrans/notification
// Selalu balas 200 untuk payload valid agar Midtrans tidak retry tanpa henti.
func (bc *BillingController) MidtransNotification(c *fiber.Ctx) error {
	var n dto.MidtransNotification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if !service.VerifySignature(n, bc.ServerKey) {
		configs.L().Warnf("[WARN] Signature Midtrans tidak valid untuk order %s", n.OrderID)
		return helper.FromFiberError(c, service.ErrInvalidSignature)
	}

	res, err := service.HandleNotification(c.UserContext(), bc.DB, n, c.Body(), bc.Now())
	if err != nil {
		configs.L().Errorf("[ERROR] Gagal proses notifikasi %s: %v", n.OrderID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memproses notifikasi")
	}
	body := fiber.Map{
		"status":             "ok",
		"invoice_status":     res.InvoiceStatus,
		"transaction_status": n.TransactionStatus,
	}
	if res.Ignored != "" {
		body["status"] = "ignored"
		body["reason"] = res.Ignored
	}
	return c.JSON(body)
}
