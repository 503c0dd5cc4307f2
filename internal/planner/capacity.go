package planner

import (
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

// sprintInterval 取出迭代对应的闭区间
func sprintInterval(sprint *domain.Sprint) DateInterval {
	return DateInterval{Start: sprint.StartDate, End: sprint.EndDate}
}

// publicHolidayImpact 计算公共假期造成的总损失比例。
// 每个落在迭代区间内的假期按 (impactPercentage/100)/workingDays 计入，
// 多个假期在损失比例上相加，而不是分多轮相乘
func publicHolidayImpact(sprint *domain.Sprint, holidays []*domain.PublicHoliday, workingDays int) float64 {
	interval := sprintInterval(sprint)

	impact := 0.0
	for _, holiday := range holidays {
		if !ContainsDate(interval, holiday.Date) {
			continue
		}
		impact += float64(holiday.ImpactPercentage) / 100.0 / float64(workingDays)
	}

	return impact
}

// SprintCapacity 计算整个团队在某个迭代中的可用故事点（聚合口径）。
//  1. 以 plannedVelocity 为基数
//  2. 扣除公共假期损失
//  3. 扣除个人休假损失（按成员投入度加权，除以迭代工作日数归一化）
//  4. 结果不允许为负
//
// 注意：这个口径只用于汇总展示，排期决策一律使用按技能划分的口径，
// 两者对多技能成员的处理并不一致
func SprintCapacity(sprint *domain.Sprint, members []*domain.TeamMember, holidays []*domain.PublicHoliday) float64 {
	interval := sprintInterval(sprint)

	workingDays := WorkingDays(interval)
	if workingDays == 0 {
		// 迭代区间里一个工作日都没有，直接返回 0，避免除零
		return 0
	}

	capacity := sprint.PlannedVelocity
	capacity *= 1 - publicHolidayImpact(sprint, holidays, workingDays)

	// 个人休假损失：每个成员每段休假与迭代重叠的工作日数，按投入度加权求和
	lostDays := 0.0
	for _, member := range members {
		weight := float64(member.CapacityPercentage) / 100.0
		for _, holiday := range member.PersonalHolidays {
			overlap, ok := Overlap(interval, DateInterval{Start: holiday.StartDate, End: holiday.EndDate})
			if !ok {
				continue
			}
			lostDays += float64(WorkingDays(overlap)) * weight
		}
	}
	capacity *= 1 - lostDays/float64(workingDays)

	if capacity < 0 {
		return 0
	}

	return capacity
}

// SprintSkillCapacity 计算某个技能在迭代中的可用故事点。
// 结构与聚合口径相同，区别在于：
//  1. 基数先按该技能小组的投入度占全团队投入度的比例缩放
//  2. 个人休假只统计持有该技能的成员，且权重按小组总投入度归一化
//
// 团队或技能小组的总投入度为 0 时，该技能的容量定义为 0
func SprintSkillCapacity(sprint *domain.Sprint, members []*domain.TeamMember, holidays []*domain.PublicHoliday, skill domain.Skill) float64 {
	interval := sprintInterval(sprint)

	workingDays := WorkingDays(interval)
	if workingDays == 0 {
		return 0
	}

	teamTotal := 0.0
	skillTotal := 0.0
	for _, member := range members {
		teamTotal += float64(member.CapacityPercentage)
		if member.HasSkill(skill) {
			skillTotal += float64(member.CapacityPercentage)
		}
	}

	if teamTotal == 0 || skillTotal == 0 {
		return 0
	}

	capacity := sprint.PlannedVelocity * skillTotal / teamTotal
	capacity *= 1 - publicHolidayImpact(sprint, holidays, workingDays)

	// 只统计技能小组内的休假，权重按小组投入度归一化
	lostDays := 0.0
	for _, member := range members {
		if !member.HasSkill(skill) {
			continue
		}
		weight := float64(member.CapacityPercentage) / skillTotal
		for _, holiday := range member.PersonalHolidays {
			overlap, ok := Overlap(interval, DateInterval{Start: holiday.StartDate, End: holiday.EndDate})
			if !ok {
				continue
			}
			lostDays += float64(WorkingDays(overlap)) * weight
		}
	}
	capacity *= 1 - lostDays/float64(workingDays)

	if capacity < 0 {
		return 0
	}

	return capacity
}

// SprintTotalSkillCapacity 返回排期口径下的总容量，
// 约定 total = frontend + backend
func SprintTotalSkillCapacity(sprint *domain.Sprint, members []*domain.TeamMember, holidays []*domain.PublicHoliday) float64 {
	return SprintSkillCapacity(sprint, members, holidays, domain.SkillFrontend) +
		SprintSkillCapacity(sprint, members, holidays, domain.SkillBackend)
}
