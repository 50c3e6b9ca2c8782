package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	orgService "okrku_backend/internals/features/organizations/organizations/service"
	"okrku_backend/internals/features/organizations/teams/dto"
	"okrku_backend/internals/features/organizations/teams/model"
	helper "okrku_backend/internals/helpers"
)

var ErrTeamMemberExists = fiber.NewError(fiber.StatusConflict, "User sudah menjadi anggota tim")

func FindTeam(ctx context.Context, db *gorm.DB, orgID, teamID uuid.UUID) (*model.TeamModel, error) {
	var t model.TeamModel
	if err := db.WithContext(ctx).
		Where("team_id = ? AND team_organization_id = ?", teamID, orgID).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func CreateTeam(ctx context.Context, db *gorm.DB, orgID uuid.UUID, req dto.CreateTeamRequest) (*model.TeamModel, error) {
	if err := orgService.EnsureMember(ctx, db, orgID, req.LeadUserID, "team_lead_user_id"); err != nil {
		return nil, err
	}
	slug, err := helper.EnsureUniqueSlugCI(ctx, db, "teams", "team_slug", helper.Slugify(req.Name, 100, "team"),
		func(q *gorm.DB) *gorm.DB {
			return q.Where("team_organization_id = ? AND team_deleted_at IS NULL", orgID)
		}, 120)
	if err != nil {
		return nil, err
	}

	t := &model.TeamModel{
		TeamOrganizationID: orgID,
		TeamName:           strings.TrimSpace(req.Name),
		TeamSlug:           slug,
		TeamDescription:    req.Description,
		TeamLeadUserID:     req.LeadUserID,
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	if t.TeamLeadUserID != nil {
		if err := upsertTeamMember(ctx, db, t.TeamID, *t.TeamLeadUserID, model.TeamRoleLead); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func UpdateTeam(ctx context.Context, db *gorm.DB, orgID, teamID uuid.UUID, req dto.UpdateTeamRequest) (*model.TeamModel, error) {
	t, err := FindTeam(ctx, db, orgID, teamID)
	if err != nil {
		return nil, err
	}
	if req.LeadUserID != nil && *req.LeadUserID != uuid.Nil {
		if err := orgService.EnsureMember(ctx, db, orgID, req.LeadUserID, "team_lead_user_id"); err != nil {
			return nil, err
		}
	}
	updates := req.ToUpdates()
	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(t).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if req.LeadUserID != nil && *req.LeadUserID != uuid.Nil {
		if err := upsertTeamMember(ctx, db, teamID, *req.LeadUserID, model.TeamRoleLead); err != nil {
			return nil, err
		}
	}
	return FindTeam(ctx, db, orgID, teamID)
}

func DeleteTeam(ctx context.Context, db *gorm.DB, orgID, teamID uuid.UUID) error {
	t, err := FindTeam(ctx, db, orgID, teamID)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Where("team_member_team_id = ?", t.TeamID).Delete(&model.TeamMemberModel{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(t).Error
}

func upsertTeamMember(ctx context.Context, db *gorm.DB, teamID, userID uuid.UUID, role string) error {
	var m model.TeamMemberModel
	err := db.WithContext(ctx).Where("team_member_team_id = ? AND team_member_user_id = ?", teamID, userID).First(&m).Error
	switch {
	case err == nil:
		if m.TeamMemberRole == role {
			return nil
		}
		return db.WithContext(ctx).Model(&m).Update("team_member_role", role).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.WithContext(ctx).Create(&model.TeamMemberModel{
			TeamMemberTeamID: teamID,
			TeamMemberUserID: userID,
			TeamMemberRole:   role,
		}).Error
	default:
		return err
	}
}

func AddTeamMember(ctx context.Context, db *gorm.DB, orgID, teamID uuid.UUID, req dto.AddTeamMemberRequest) error {
	t, err := FindTeam(ctx, db, orgID, teamID)
	if err != nil {
		return err
	}
	if err := orgService.EnsureMember(ctx, db, orgID, &req.UserID, "user_id"); err != nil {
		return err
	}
	role := req.Role
	if role == "" {
		role = model.TeamRoleMember
	}

	var n int64
	if err := db.WithContext(ctx).Model(&model.TeamMemberModel{}).
		Where("team_member_team_id = ? AND team_member_user_id = ?", teamID, req.UserID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 && role == model.TeamRoleMember {
		return ErrTeamMemberExists
	}
	if err := upsertTeamMember(ctx, db, teamID, req.UserID, role); err != nil {
		return err
	}
	if role == model.TeamRoleLead {
		return db.WithContext(ctx).Model(t).Update("team_lead_user_id", req.UserID).Error
	}
	return nil
}

func RemoveTeamMember(ctx context.Context, db *gorm.DB, orgID, teamID, userID uuid.UUID) error {
	t, err := FindTeam(ctx, db, orgID, teamID)
	if err != nil {
		return err
	}
	res := db.WithContext(ctx).
		Where("team_member_team_id = ? AND team_member_user_id = ?", teamID, userID).
		Delete(&model.TeamMemberModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	if t.TeamLeadUserID != nil && *t.TeamLeadUserID == userID {
		return db.WithContext(ctx).Model(t).Update("team_lead_user_id", nil).Error
	}
	return nil
}

func ListTeamMembers(ctx context.Context, db *gorm.DB, teamID uuid.UUID) ([]dto.TeamMemberResponse, error) {
	out := make([]dto.TeamMemberResponse, 0)
	err := db.WithContext(ctx).Table("team_members tm").
		Select(`tm.team_member_id AS team_member_id, u.id AS user_id, u.user_name AS user_name,
			u.full_name AS full_name, u.avatar_url AS avatar_url, tm.team_member_role AS role`).
		Joins("JOIN users u ON u.id = tm.team_member_user_id").
		Where("tm.team_member_team_id = ?", teamID).
		Order("tm.team_member_role ASC, u.user_name ASC").
		Scan(&out).Error
	return out, err
}

// ListTeams + jumlah anggota per tim.
func ListTeams(ctx context.Context, db *gorm.DB, orgID uuid.UUID, q string, p helper.Paging) ([]dto.TeamResponse, int64, error) {
	base := db.WithContext(ctx).Model(&model.TeamModel{}).Where("team_organization_id = ?", orgID)
	if s := strings.ToLower(strings.TrimSpace(q)); s != "" {
		base = base.Where("LOWER(team_name) LIKE ?", "%"+s+"%")
	}
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var teams []model.TeamModel
	if err := base.Order("team_name ASC").Offset(p.Offset).Limit(p.Limit).Find(&teams).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.TeamID)
	}
	counts := map[uuid.UUID]int64{}
	if len(ids) > 0 {
		var rows []struct {
			TeamID uuid.UUID `gorm:"column:team_id"`
			N      int64     `gorm:"column:n"`
		}
		if err := db.WithContext(ctx).Model(&model.TeamMemberModel{}).
			Select("team_member_team_id AS team_id, COUNT(*) AS n").
			Where("team_member_team_id IN ?", ids).
			Group("team_member_team_id").
			Scan(&rows).Error; err != nil {
			return nil, 0, err
		}
		for _, r := range rows {
			counts[r.TeamID] = r.N
		}
	}

	out := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		r := dto.FromModel(&teams[i])
		r.MemberCount = counts[teams[i].TeamID]
		out = append(out, r)
	}
	return out, total, nil
}

// IsTeamMember: dipakai untuk otorisasi objective milik tim.
func IsTeamMember(ctx context.Context, db *gorm.DB, teamID, userID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.TeamMemberModel{}).
		Where("team_member_team_id = ? AND team_member_user_id = ?", teamID, userID).
		Count(&n).Error
	return n > 0, err
}
