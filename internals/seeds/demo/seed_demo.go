// Package demo mengisi satu organisasi contoh lengkap dengan OKR, initiative, dan task.
package demo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
	"okrku_backend/internals/constants"
	gamService "okrku_backend/internals/features/gamification/service"
	iniDto "okrku_backend/internals/features/initiatives/initiatives/dto"
	iniService "okrku_backend/internals/features/initiatives/initiatives/service"
	taskDto "okrku_backend/internals/features/initiatives/tasks/dto"
	taskModel "okrku_backend/internals/features/initiatives/tasks/model"
	taskService "okrku_backend/internals/features/initiatives/tasks/service"
	checkInDto "okrku_backend/internals/features/okr/check_ins/dto"
	checkInService "okrku_backend/internals/features/okr/check_ins/service"
	cycleDto "okrku_backend/internals/features/okr/cycles/dto"
	cycleModel "okrku_backend/internals/features/okr/cycles/model"
	cycleService "okrku_backend/internals/features/okr/cycles/service"
	krDto "okrku_backend/internals/features/okr/key_results/dto"
	krService "okrku_backend/internals/features/okr/key_results/service"
	objDto "okrku_backend/internals/features/okr/objectives/dto"
	objService "okrku_backend/internals/features/okr/objectives/service"
	orgDto "okrku_backend/internals/features/organizations/organizations/dto"
	orgModel "okrku_backend/internals/features/organizations/organizations/model"
	orgService "okrku_backend/internals/features/organizations/organizations/service"
	teamDto "okrku_backend/internals/features/organizations/teams/dto"
	teamService "okrku_backend/internals/features/organizations/teams/service"
	authService "okrku_backend/internals/features/users/auth/service"
	userModel "okrku_backend/internals/features/users/users/model"
)

const Slug = "demo"

var ErrDemoExists = errors.New("organisasi demo sudah ada")

type Options struct {
	Members  int
	Password string
	Now      time.Time
	Awarder  gamService.Awarder
}

type Result struct {
	OrganizationID uuid.UUID
	OwnerEmail     string
	Members        []string
	Objectives     int
	KeyResults     int
	Tasks          int
}

type objectiveSeed struct {
	title string
	krs   []krDto.CreateKeyResultRequest
}

func f(v float64) *float64 { return &v }

var objectives = []objectiveSeed{
	{
		title: "Meningkatkan kepuasan pelanggan",
		krs: []krDto.CreateKeyResultRequest{
			{Title: "NPS naik dari 30 ke 50", Type: "increase_to", BaseValue: f(30), TargetValue: 50},
			{Title: "Waktu respon tiket turun ke 2 jam", Type: "decrease_to", BaseValue: f(8), TargetValue: 2},
		},
	},
	{
		title: "Mempercepat rilis produk",
		krs: []krDto.CreateKeyResultRequest{
			{Title: "Rilis 6 fitur utama", Type: "increase_to", TargetValue: 6},
			{Title: "Error rate tetap di bawah 1%", Type: "should_stay_below", TargetValue: 1, Unit: "percentage"},
		},
	},
}

// SeedDemo membuat organisasi "demo" beserta anggota acak. Data dibuat lewat service
// supaya cache progress, status initiative, dan poin gamifikasi ikut terisi.
func SeedDemo(ctx context.Context, db *gorm.DB, opt Options) (*Result, error) {
	if opt.Members <= 0 {
		opt.Members = 4
	}
	if opt.Password == "" {
		opt.Password = "demo12345"
	}
	if opt.Now.IsZero() {
		opt.Now = time.Now()
	}
	now := opt.Now.UTC()

	var n int64
	if err := db.WithContext(ctx).Model(&orgModel.OrganizationModel{}).
		Where("organization_slug = ?", Slug).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrDemoExists
	}

	hash, err := authService.HashPassword(opt.Password)
	if err != nil {
		return nil, err
	}
	owner, err := newUser(ctx, db, "demo_owner", "demo@okrku.local", hash)
	if err != nil {
		return nil, err
	}
	res := &Result{OwnerEmail: owner.Email}

	slug := Slug
	org, err := orgService.CreateOrganization(ctx, db, owner.ID, orgDto.CreateOrganizationRequest{
		Name: "Demo " + randomdata.SillyName(),
		Slug: &slug,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	res.OrganizationID = org.OrganizationID
	orgID := org.OrganizationID

	people := []userModel.UserModel{*owner}
	for i := 0; i < opt.Members; i++ {
		first := randomdata.FirstName(randomdata.RandomGender)
		uname := fmt.Sprintf("%s%d", strings.ToLower(first), randomdata.Number(1000, 9999))
		u, err := newUser(ctx, db, uname, uname+"@okrku.local", hash)
		if err != nil {
			return nil, err
		}
		full := first + " " + randomdata.LastName()
		if err := db.WithContext(ctx).Model(u).Update("full_name", full).Error; err != nil {
			return nil, err
		}
		if _, err := orgService.AddMember(ctx, db, orgID, owner.ID, orgDto.AddMemberRequest{
			Email: u.Email,
			Role:  constants.RoleMember,
		}, now); err != nil {
			if errors.Is(err, orgService.ErrSeatLimit) {
				configs.L().Warnf("[WARN] batas kursi tercapai, %d anggota saja", i)
				break
			}
			return nil, fmt.Errorf("add member: %w", err)
		}
		people = append(people, *u)
		res.Members = append(res.Members, u.Email)
	}

	team, err := teamService.CreateTeam(ctx, db, orgID, teamDto.CreateTeamRequest{
		Name:       "Tim " + randomdata.Noun(),
		LeadUserID: &owner.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	for _, p := range people[1:] {
		if err := teamService.AddTeamMember(ctx, db, orgID, team.TeamID, teamDto.AddTeamMemberRequest{UserID: p.ID}); err != nil {
			return nil, fmt.Errorf("add team member: %w", err)
		}
	}

	cy, err := cycleService.CreateCycle(ctx, db, orgID, currentQuarter(now))
	if err != nil {
		return nil, fmt.Errorf("create cycle: %w", err)
	}

	var firstKR *uuid.UUID
	for i, seed := range objectives {
		actor := people[i%len(people)]
		obj, err := objService.CreateObjective(ctx, db, orgID, actor.ID, objDto.CreateObjectiveRequest{
			CycleID: cy.CycleID,
			Title:   seed.title,
		}, now)
		if err != nil {
			return nil, fmt.Errorf("create objective: %w", err)
		}
		res.Objectives++

		for _, req := range seed.krs {
			assignee := people[randomdata.Number(len(people))].ID
			req.AssigneeID = &assignee
			kr, err := krService.CreateKeyResult(ctx, db, orgID, obj.ObjectiveID, actor.ID, req, now, opt.Awarder)
			if err != nil {
				return nil, fmt.Errorf("create key result: %w", err)
			}
			res.KeyResults++
			if firstKR == nil {
				id := kr.KeyResultID
				firstKR = &id
			}

			v := checkInValue(req)
			if _, _, err := checkInService.CreateCheckIn(ctx, db, orgID, kr.KeyResultID, assignee, checkInDto.CreateCheckInRequest{
				Value:      &v,
				Confidence: randomdata.Number(5, 10),
			}, now, opt.Awarder); err != nil {
				return nil, fmt.Errorf("create check-in: %w", err)
			}
		}
	}

	ini, err := iniService.CreateInitiative(ctx, db, orgID, owner.ID, iniDto.CreateInitiativeRequest{
		KeyResultID: firstKR,
		Title:       "Program survei pelanggan",
		PICID:       &people[len(people)-1].ID,
	}, opt.Awarder)
	if err != nil {
		return nil, fmt.Errorf("create initiative: %w", err)
	}
	for i, title := range []string{"Susun kuesioner", "Sebar survei", "Analisis hasil"} {
		req := taskDto.CreateTaskRequest{Title: title, AssigneeID: &people[i%len(people)].ID}
		if i == 0 {
			req.Status = taskModel.TaskStatusCompleted
		}
		if _, err := taskService.CreateTask(ctx, db, orgID, ini.InitiativeID, owner.ID, req, now, opt.Awarder); err != nil {
			return nil, fmt.Errorf("create task: %w", err)
		}
		res.Tasks++
	}

	configs.L().Infof("✅ Demo org %s: %d anggota, %d objective, %d KR, %d task",
		orgID, len(res.Members), res.Objectives, res.KeyResults, res.Tasks)
	return res, nil
}

func newUser(ctx context.Context, db *gorm.DB, name, email, hash string) (*userModel.UserModel, error) {
	u := &userModel.UserModel{UserName: name, Email: email, Password: hash, IsActive: true}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", name, err)
	}
	return u, nil
}

func currentQuarter(now time.Time) cycleDto.CreateCycleRequest {
	q := (int(now.Month()) - 1) / 3
	start := time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1)
	return cycleDto.CreateCycleRequest{
		Name:      fmt.Sprintf("Q%d %d", q+1, now.Year()),
		Type:      cycleModel.CycleTypeQuarterly,
		StartDate: start.Format(cycleDto.DateLayout),
		EndDate:   end.Format(cycleDto.DateLayout),
		Status:    cycleModel.CycleStatusActive,
	}
}

// checkInValue: nilai acak di antara base dan target.
func checkInValue(req krDto.CreateKeyResultRequest) float64 {
	base := 0.0
	if req.BaseValue != nil {
		base = *req.BaseValue
	}
	ratio := float64(randomdata.Number(20, 90)) / 100
	return base + (req.TargetValue-base)*ratio
}
