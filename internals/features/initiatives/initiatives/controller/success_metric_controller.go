package controller

import (
	"github.com/gofiber/fiber/v2"

	"okrku_backend/internals/features/initiatives/initiatives/dto"
	"okrku_backend/internals/features/initiatives/initiatives/service"
	helper "okrku_backend/internals/helpers"
)

const msgMetricNotFound = "Success metric tidak ditemukan"

// GET /api/u/initiatives/:id/success-metrics
func (ic *InitiativeController) ListMetrics(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := service.ListMetrics(c.UserContext(), ic.DB, orgID, id)
	if err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal mengambil success metric")
	}
	out := make([]dto.SuccessMetricResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.MetricFromModel(&rows[i]))
	}
	return helper.JsonOK(c, "ok", out)
}

// POST /api/u/initiatives/:id/success-metrics
func (ic *InitiativeController) CreateMetric(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreateSuccessMetricRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, status, err := service.CreateMetric(c.UserContext(), ic.DB, orgID, id, req)
	if err != nil {
		return helper.ServiceError(c, err, msgNotFound, "Gagal membuat success metric")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":           true,
		"message":           "Success metric dibuat",
		"data":              dto.MetricFromModel(m),
		"initiative_status": status,
	})
}

// PATCH /api/u/initiatives/:id/success-metrics/:metric_id
func (ic *InitiativeController) UpdateMetric(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	metricID, err := helper.ParseUUIDParam(c, "metric_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateSuccessMetricRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}
	m, status, err := service.UpdateMetric(c.UserContext(), ic.DB, orgID, id, metricID, req)
	if err != nil {
		return helper.ServiceError(c, err, msgMetricNotFound, "Gagal memperbarui success metric")
	}
	return c.JSON(fiber.Map{
		"success":           true,
		"message":           "Success metric diperbarui",
		"data":              dto.MetricFromModel(m),
		"initiative_status": status,
	})
}

// DELETE /api/u/initiatives/:id/success-metrics/:metric_id
func (ic *InitiativeController) DeleteMetric(c *fiber.Ctx) error {
	orgID, id, err := orgAndID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	metricID, err := helper.ParseUUIDParam(c, "metric_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteMetric(c.UserContext(), ic.DB, orgID, id, metricID); err != nil {
		return helper.ServiceError(c, err, msgMetricNotFound, "Gagal menghapus success metric")
	}
	return helper.JsonDeleted(c, "Success metric dihapus", fiber.Map{"success_metric_id": metricID})
}
