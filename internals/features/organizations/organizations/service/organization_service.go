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
	"okrku_backend/internals/constants"
	billingModel "okrku_backend/internals/features/billing/model"
	"okrku_backend/internals/features/organizations/organizations/dto"
	"okrku_backend/internals/features/organizations/organizations/model"
	userModel "okrku_backend/internals/features/users/users/model"
	helper "okrku_backend/internals/helpers"
)

const defaultTrialDays = 14

var (
	ErrSeatLimit      = fiber.NewError(fiber.StatusPaymentRequired, "Kuota anggota paket langganan sudah penuh")
	ErrOwnerImmutable = fiber.NewError(fiber.StatusBadRequest, "Keanggotaan owner tidak bisa diubah atau dihapus")
	ErrAlreadyMember  = fiber.NewError(fiber.StatusConflict, "User sudah menjadi anggota organisasi")
	ErrUserNotFound   = fiber.NewError(fiber.StatusNotFound, "User dengan email tersebut belum terdaftar")
)

/* =========================================================
   CREATE
========================================================= */

// CreateOrganization: slug unik, owner jadi anggota pertama, trial paket default (kalau ada).
func CreateOrganization(ctx context.Context, db *gorm.DB, ownerID uuid.UUID, req dto.CreateOrganizationRequest, now time.Time) (*model.OrganizationModel, error) {
	base := req.Name
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		base = *req.Slug
	}
	slug, err := helper.EnsureUniqueSlugCI(ctx, db, "organizations", "organization_slug",
		helper.Slugify(base, 90, "org"), nil, 100)
	if err != nil {
		return nil, fmt.Errorf("generate slug: %w", err)
	}

	tz := configs.DefaultTimezone
	if req.Timezone != nil && strings.TrimSpace(*req.Timezone) != "" {
		tz = strings.TrimSpace(*req.Timezone)
	}
	trialDays := configs.GetEnvInt("TRIAL_DAYS", defaultTrialDays)
	trialEnd := now.UTC().AddDate(0, 0, trialDays)

	org := &model.OrganizationModel{
		OrganizationName:        req.Name,
		OrganizationSlug:        slug,
		OrganizationDescription: req.Description,
		OrganizationTimezone:    tz,
		OrganizationIndustry:    req.Industry,
		OrganizationOwnerUserID: ownerID,
		OrganizationIsActive:    true,
		OrganizationTrialEndsAt: &trialEnd,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.OrganizationMemberModel{
			OrganizationMemberOrganizationID: org.OrganizationID,
			OrganizationMemberUserID:         ownerID,
			OrganizationMemberRole:           constants.RoleOwner,
			OrganizationMemberIsActive:       true,
			OrganizationMemberJoinedAt:       now.UTC(),
		}).Error; err != nil {
			return err
		}
		return startTrial(tx, org.OrganizationID, now.UTC(), trialEnd)
	})
	if err != nil {
		return nil, err
	}
	configs.L().Infof("[INFO] Organisasi %s (%s) dibuat oleh %s", org.OrganizationSlug, org.OrganizationID, ownerID)
	return org, nil
}

func startTrial(tx *gorm.DB, orgID uuid.UUID, start, end time.Time) error {
	var plan billingModel.SubscriptionPlanModel
	err := tx.Where("subscription_plan_code = ? AND subscription_plan_is_active = ?",
		configs.GetEnv("TRIAL_PLAN_CODE", "free"), true).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		configs.L().Warn("[WARN] Paket trial belum di-seed, organisasi dibuat tanpa langganan")
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Create(&billingModel.OrganizationSubscriptionModel{
		OrgSubscriptionOrganizationID:     orgID,
		OrgSubscriptionPlanID:             plan.SubscriptionPlanID,
		OrgSubscriptionStatus:             billingModel.SubscriptionStatusTrial,
		OrgSubscriptionCurrentPeriodStart: start,
		OrgSubscriptionCurrentPeriodEnd:   end,
	}).Error
}

/* =========================================================
   MEMBERSHIP
========================================================= */

// SeatLimit: max_users paket aktif; nil = tanpa batas / belum berlangganan.
func SeatLimit(ctx context.Context, db *gorm.DB, orgID uuid.UUID) (*int, error) {
	var row struct {
		MaxUsers *int `gorm:"column:max_users"`
	}
	err := db.WithContext(ctx).Table("organization_subscriptions s").
		Select("p.subscription_plan_max_users AS max_users").
		Joins("JOIN subscription_plans p ON p.subscription_plan_id = s.org_subscription_plan_id").
		Where("s.org_subscription_organization_id = ?", orgID).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return row.MaxUsers, nil
}

func CountActiveMembers(ctx context.Context, db *gorm.DB, orgID uuid.UUID) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.OrganizationMemberModel{}).
		Where("organization_member_organization_id = ? AND organization_member_is_active = ?", orgID, true).
		Count(&n).Error
	return n, err
}

func ensureSeat(ctx context.Context, db *gorm.DB, orgID uuid.UUID) error {
	limit, err := SeatLimit(ctx, db, orgID)
	if err != nil || limit == nil {
		return err
	}
	n, err := CountActiveMembers(ctx, db, orgID)
	if err != nil {
		return err
	}
	if n >= int64(*limit) {
		return ErrSeatLimit
	}
	return nil
}

// AddMember menambahkan user terdaftar (by email). Anggota nonaktif diaktifkan lagi.
func AddMember(ctx context.Context, db *gorm.DB, orgID, inviterID uuid.UUID, req dto.AddMemberRequest, now time.Time) (*model.OrganizationMemberModel, error) {
	var user userModel.UserModel
	if err := db.WithContext(ctx).Select("id", "is_active").
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var existing model.OrganizationMemberModel
	err := db.WithContext(ctx).
		Where("organization_member_organization_id = ? AND organization_member_user_id = ?", orgID, user.ID).
		First(&existing).Error
	switch {
	case err == nil && existing.OrganizationMemberIsActive:
		return nil, ErrAlreadyMember
	case err == nil:
		if err := ensureSeat(ctx, db, orgID); err != nil {
			return nil, err
		}
		if err := db.WithContext(ctx).Model(&existing).Updates(map[string]any{
			"organization_member_is_active":  true,
			"organization_member_role":       req.Role,
			"organization_member_job_title":  req.JobTitle,
			"organization_member_invited_by": inviterID,
			"organization_member_joined_at":  now.UTC(),
		}).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if err := ensureSeat(ctx, db, orgID); err != nil {
		return nil, err
	}
	m := &model.OrganizationMemberModel{
		OrganizationMemberOrganizationID: orgID,
		OrganizationMemberUserID:         user.ID,
		OrganizationMemberRole:           req.Role,
		OrganizationMemberJobTitle:       req.JobTitle,
		OrganizationMemberIsActive:       true,
		OrganizationMemberJoinedAt:       now.UTC(),
		OrganizationMemberInvitedBy:      &inviterID,
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}
	return m, nil
}

func findMember(ctx context.Context, db *gorm.DB, orgID, memberID uuid.UUID) (*model.OrganizationMemberModel, error) {
	var m model.OrganizationMemberModel
	if err := db.WithContext(ctx).
		Where("organization_member_id = ? AND organization_member_organization_id = ?", memberID, orgID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func UpdateMember(ctx context.Context, db *gorm.DB, orgID, memberID uuid.UUID, req dto.UpdateMemberRequest) (*model.OrganizationMemberModel, error) {
	m, err := findMember(ctx, db, orgID, memberID)
	if err != nil {
		return nil, err
	}
	if m.OrganizationMemberRole == constants.RoleOwner {
		return nil, ErrOwnerImmutable
	}
	updates := req.ToUpdates()
	if len(updates) == 0 {
		return m, nil
	}
	if req.IsActive != nil && *req.IsActive && !m.OrganizationMemberIsActive {
		if err := ensureSeat(ctx, db, orgID); err != nil {
			return nil, err
		}
	}
	if err := db.WithContext(ctx).Model(m).Updates(updates).Error; err != nil {
		return nil, err
	}
	return findMember(ctx, db, orgID, memberID)
}

// RemoveMember menonaktifkan keanggotaan (histori OKR tetap utuh).
func RemoveMember(ctx context.Context, db *gorm.DB, orgID, memberID uuid.UUID) error {
	m, err := findMember(ctx, db, orgID, memberID)
	if err != nil {
		return err
	}
	if m.OrganizationMemberRole == constants.RoleOwner {
		return ErrOwnerImmutable
	}
	return db.WithContext(ctx).Model(m).Update("organization_member_is_active", false).Error
}

type MemberFilter struct {
	Q          string
	Role       string
	OnlyActive bool
}

func ListMembers(ctx context.Context, db *gorm.DB, orgID uuid.UUID, f MemberFilter, p helper.Paging) ([]dto.MemberResponse, int64, error) {
	q := db.WithContext(ctx).Table("organization_members m").
		Joins("JOIN users u ON u.id = m.organization_member_user_id AND u.deleted_at IS NULL").
		Where("m.organization_member_organization_id = ?", orgID)
	if f.OnlyActive {
		q = q.Where("m.organization_member_is_active = ?", true)
	}
	if f.Role != "" {
		q = q.Where("m.organization_member_role = ?", f.Role)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Q)); s != "" {
		like := "%" + s + "%"
		q = q.Where("(LOWER(u.user_name) LIKE ? OR LOWER(u.email) LIKE ? OR LOWER(COALESCE(u.full_name, '')) LIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := make([]dto.MemberResponse, 0, p.Limit)
	err := q.Select(`m.organization_member_id AS organization_member_id,
			u.id AS user_id, u.user_name AS user_name, u.full_name AS full_name,
			u.email AS email, u.avatar_url AS avatar_url,
			m.organization_member_role AS role, m.organization_member_job_title AS job_title,
			m.organization_member_is_active AS is_active, m.organization_member_joined_at AS joined_at,
			m.organization_member_invited_by AS invited_by`).
		Order("m.organization_member_joined_at ASC").
		Offset(p.Offset).Limit(p.Limit).
		Scan(&out).Error
	return out, total, err
}

// IsActiveMember dipakai fitur lain (assignee, PIC, team member) untuk validasi user.
func IsActiveMember(ctx context.Context, db *gorm.DB, orgID, userID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.OrganizationMemberModel{}).
		Where("organization_member_organization_id = ? AND organization_member_user_id = ? AND organization_member_is_active = ?", orgID, userID, true).
		Count(&n).Error
	return n > 0, err
}

// EnsureMember: nil aman (field opsional), selain itu wajib anggota aktif.
func EnsureMember(ctx context.Context, db *gorm.DB, orgID uuid.UUID, userID *uuid.UUID, field string) error {
	if userID == nil || *userID == uuid.Nil {
		return nil
	}
	ok, err := IsActiveMember(ctx, db, orgID, *userID)
	if err != nil {
		return err
	}
	if !ok {
		return fiber.NewError(fiber.StatusUnprocessableEntity, field+" bukan anggota aktif organisasi")
	}
	return nil
}
