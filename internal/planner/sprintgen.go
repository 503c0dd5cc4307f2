package planner

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// GenerateSprints 根据配置确定性地生成从首个迭代开始一年内的所有迭代。
// 迭代按季度加季度内序号命名，序号从 StartingSprintNumber 开始，
// 进入新的季度后重置为 1。
// 这是迭代名称唯一的来源，迭代 ID 由存储层在持久化时分配
func GenerateSprints(cfg *domain.SprintConfig) []*domain.Sprint {
	if cfg.DurationDays <= 0 {
		return []*domain.Sprint{}
	}

	sprints := make([]*domain.Sprint, 0)

	start := truncateToDay(cfg.FirstSprintStart)
	limit := start.AddDate(1, 0, 0)

	number := cfg.StartingSprintNumber
	if number <= 0 {
		number = 1
	}
	year := start.Year()
	quarter := quarterOf(start)

	for start.Before(limit) {
		if start.Year() != year || quarterOf(start) != quarter {
			// 进入了新的季度，序号重新从 1 开始
			year = start.Year()
			quarter = quarterOf(start)
			number = 1
		}

		end := start.AddDate(0, 0, int(cfg.DurationDays)-1)

		sprints = append(sprints, &domain.Sprint{
			Name:            fmt.Sprintf("%dQ%d-Sprint%d", year, quarter, number),
			StartDate:       start,
			EndDate:         end,
			PlannedVelocity: cfg.DefaultVelocity,
			WorkItemIDs:     []int64{},
		})

		number++
		start = end.AddDate(0, 0, 1)
	}

	return sprints
}
