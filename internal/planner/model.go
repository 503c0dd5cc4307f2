package planner

import "github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"

// PlanResult 是一次排期的输出：全新的工作项集合和迭代集合，
// 以及这一轮没有排进任何迭代的工作项。
// 引擎从不修改调用方传入的集合
type PlanResult struct {
	Items    []*domain.WorkItem `json:"items"`
	Sprints  []*domain.Sprint   `json:"sprints"`
	Unplaced []*domain.WorkItem `json:"unplaced"`
}

// sprintLedger 是单个迭代在一次排期过程中的剩余容量账本。
// remaining 按技能分道记账，total 单独记聚合口径（= frontend + backend）
type sprintLedger struct {
	remaining map[domain.Skill]float64
	total     float64
}

// fits 判断工作项能否同时放进它需要的每一条技能道。
// 多技能工作项必须在所有技能道上都放得下，而不是放进最宽裕的那条；
// 不要求任何技能的工作项按聚合口径检查
func (l *sprintLedger) fits(item *domain.WorkItem) bool {
	if len(item.RequiredSkills) == 0 {
		return item.Estimate <= l.total
	}

	for _, skill := range item.RequiredSkills {
		if item.Estimate > l.remaining[skill] {
			return false
		}
	}
	return true
}

// deduct 从每条所需技能道和聚合账目中扣除估算点数
func (l *sprintLedger) deduct(item *domain.WorkItem) {
	for _, skill := range item.RequiredSkills {
		l.remaining[skill] -= item.Estimate
	}
	l.total -= item.Estimate
}
