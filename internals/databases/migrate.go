package database

import (
	"fmt"

	"gorm.io/gorm"

	billingModel "okrku_backend/internals/features/billing/model"
	gamificationModel "okrku_backend/internals/features/gamification/model"
	initiativeModel "okrku_backend/internals/features/initiatives/initiatives/model"
	taskModel "okrku_backend/internals/features/initiatives/tasks/model"
	checkInModel "okrku_backend/internals/features/okr/check_ins/model"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	keyResultModel "okrku_backend/internals/features/okr/key_results/model"
	objectiveModel "okrku_backend/internals/features/okr/objectives/model"
	orgModel "okrku_backend/internals/features/organizations/organizations/model"
	teamModel "okrku_backend/internals/features/organizations/teams/model"
	authModel "okrku_backend/internals/features/users/auth/model"
	userModel "okrku_backend/internals/features/users/users/model"
)

// Models: urutan tabel untuk AutoMigrate.
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&authModel.RefreshTokenModel{},
		&authModel.TokenBlacklistModel{},

		&orgModel.OrganizationModel{},
		&orgModel.OrganizationMemberModel{},
		&teamModel.TeamModel{},
		&teamModel.TeamMemberModel{},

		&cycleModel.CycleModel{},
		&objectiveModel.ObjectiveModel{},
		&keyResultModel.KeyResultModel{},
		&checkInModel.CheckInModel{},

		&initiativeModel.InitiativeModel{},
		&initiativeModel.SuccessMetricModel{},
		&taskModel.TaskModel{},

		&gamificationModel.UserStatsModel{},
		&gamificationModel.AchievementModel{},
		&gamificationModel.UserAchievementModel{},
		&gamificationModel.ActivityLogModel{},

		&billingModel.SubscriptionPlanModel{},
		&billingModel.OrganizationSubscriptionModel{},
		&billingModel.InvoiceModel{},
		&billingModel.PaymentGatewayEventModel{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}
