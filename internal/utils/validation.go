package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

// ClampCapacityPercentage 把成员投入度收敛到 [0, 100]
func ClampCapacityPercentage(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func ValidateSprintInterval(sprint *domain.Sprint) error {
	if sprint.EndDate.Before(sprint.StartDate) {
		return errors.New("迭代的结束日期不能早于开始日期")
	}
	return nil
}

func ValidatePersonalHoliday(holiday *domain.PersonalHoliday) error {
	if holiday.EndDate.Before(holiday.StartDate) {
		return errors.New("休假的结束日期不能早于开始日期")
	}
	return nil
}

func ValidateSkills(skills []domain.Skill) error {
	for _, skill := range skills {
		if skill != domain.SkillFrontend && skill != domain.SkillBackend {
			return fmt.Errorf("不支持的技能类型 %s", skill)
		}
	}
	return nil
}

func ValidateWorkItem(item *domain.WorkItem) error {
	if item.Estimate <= 0 {
		return errors.New("工作项的估算点数必须大于 0")
	}
	if err := ValidateSkills(item.RequiredSkills); err != nil {
		return err
	}
	return nil
}

func ValidateWorkItemStatus(status domain.WorkItemStatus) error {
	switch status {
	case domain.StatusNotStarted, domain.StatusInProgress, domain.StatusCompleted:
		return nil
	default:
		return fmt.Errorf("不支持的工作项状态 %s", status)
	}
}

func ValidateSprintConfig(cfg *domain.SprintConfig) error {
	if cfg.DurationDays <= 0 {
		return errors.New("迭代时长必须大于 0 天")
	}
	if cfg.DefaultVelocity < 0 {
		return errors.New("默认速率不能为负数")
	}
	if cfg.StartingSprintNumber <= 0 {
		return errors.New("起始迭代编号必须大于 0")
	}
	return nil
}
