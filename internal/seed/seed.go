package seed

import (
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/planner"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/repository"
)

// demoMembers 是一个贴近真实团队的小型演示数据集
var demoMembers = []*domain.TeamMember{
	{
		Name:               "陈嘉明",
		Email:              "chenjiaming@example.com",
		CapacityPercentage: 100,
		Skills:             []domain.Skill{domain.SkillFrontend},
	},
	{
		Name:               "林晓彤",
		Email:              "linxiaotong@example.com",
		CapacityPercentage: 100,
		Skills:             []domain.Skill{domain.SkillBackend},
	},
	{
		Name:               "王志强",
		Email:              "wangzhiqiang@example.com",
		CapacityPercentage: 80,
		Skills:             []domain.Skill{domain.SkillFrontend, domain.SkillBackend},
	},
	{
		Name:               "赵雨欣",
		Email:              "zhaoyuxin@example.com",
		CapacityPercentage: 50,
		Skills:             []domain.Skill{domain.SkillBackend},
	},
}

var demoPublicHolidays = []*domain.PublicHoliday{
	{Date: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), Name: "元旦", ImpactPercentage: 100},
	{Date: time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC), Name: "清明节", ImpactPercentage: 100},
	{Date: time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC), Name: "劳动节", ImpactPercentage: 100},
}

// SeedDemoData 插入一套可以直接体验自动排期的演示数据：
// 团队成员、公共假期、一年的迭代序列以及带依赖关系的工作项
func SeedDemoData(r *repository.Repository, cfg *config.Config) {
	for _, member := range demoMembers {
		member.PersonalHolidays = []domain.PersonalHoliday{}
		if err := r.CreateTeamMember(member); err != nil {
			slog.Error("插入团队成员失败", "name", member.Name, "error", err)
			return
		}
	}

	for _, holiday := range demoPublicHolidays {
		if err := r.CreatePublicHoliday(holiday); err != nil {
			slog.Error("插入公共假期失败", "name", holiday.Name, "error", err)
			return
		}
	}

	sprintCfg := &domain.SprintConfig{
		FirstSprintStart:     time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		DurationDays:         cfg.Seed.SprintDurationDays,
		DefaultVelocity:      cfg.Seed.DefaultVelocity,
		StartingSprintNumber: cfg.Seed.StartingSprintNumber,
	}
	sprints := planner.GenerateSprints(sprintCfg)
	if err := r.CreateSprints(sprints); err != nil {
		slog.Error("插入迭代序列失败", "error", err)
		return
	}

	epic := &domain.WorkItem{
		Title:                  "订单中心改版",
		Description:            "订单中心整体改版，包含接口拆分和页面重构",
		Estimate:               30,
		RequiredCompletionDate: time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
		RequiredSkills:         []domain.Skill{domain.SkillFrontend, domain.SkillBackend},
		Dependencies:           []int64{},
		Status:                 domain.StatusNotStarted,
		IsEpic:                 true,
	}
	if err := r.CreateWorkItem(epic); err != nil {
		slog.Error("插入史诗失败", "error", err)
		return
	}

	backendItem := &domain.WorkItem{
		Title:                  "拆分订单查询接口",
		Description:            "把订单查询从单体服务中拆出来，提供独立的分页接口",
		Estimate:               8,
		RequiredCompletionDate: time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC),
		RequiredSkills:         []domain.Skill{domain.SkillBackend},
		Dependencies:           []int64{},
		Status:                 domain.StatusNotStarted,
		ParentID:               &epic.ID,
	}
	if err := r.CreateWorkItem(backendItem); err != nil {
		slog.Error("插入工作项失败", "error", err)
		return
	}

	frontendItem := &domain.WorkItem{
		Title:                  "重构订单列表页面",
		Description:            "基于新的查询接口重构订单列表页面",
		Estimate:               5,
		RequiredCompletionDate: time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC),
		RequiredSkills:         []domain.Skill{domain.SkillFrontend},
		Dependencies:           []int64{backendItem.ID},
		Status:                 domain.StatusNotStarted,
		ParentID:               &epic.ID,
	}
	if err := r.CreateWorkItem(frontendItem); err != nil {
		slog.Error("插入工作项失败", "error", err)
		return
	}

	standalone := &domain.WorkItem{
		Title:                  "修复看板页面样式错位",
		Description:            "看板页面在窄屏下卡片换行错位",
		Estimate:               2,
		RequiredCompletionDate: time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC),
		RequiredSkills:         []domain.Skill{domain.SkillFrontend},
		Dependencies:           []int64{},
		Status:                 domain.StatusNotStarted,
	}
	if err := r.CreateWorkItem(standalone); err != nil {
		slog.Error("插入工作项失败", "error", err)
		return
	}

	slog.Info("插入演示数据完成", "members", len(demoMembers), "sprints", len(sprints))
}
