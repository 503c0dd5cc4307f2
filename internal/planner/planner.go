package planner

import (
	"slices"
	"sort"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

func copyWorkItem(item *domain.WorkItem) *domain.WorkItem {
	clone := *item
	clone.RequiredSkills = slices.Clone(item.RequiredSkills)
	clone.Dependencies = slices.Clone(item.Dependencies)
	clone.AssignedSprints = slices.Clone(item.AssignedSprints)
	return &clone
}

func copySprint(sprint *domain.Sprint) *domain.Sprint {
	clone := *sprint
	clone.WorkItemIDs = slices.Clone(sprint.WorkItemIDs)
	return &clone
}

// isCandidate 判断工作项是否参与本轮排期。
// 史诗只是容器，不参与排期；已完成的工作项保留原有分配。
// 依赖未满足的工作项也会参与，由逐迭代的依赖检查来决定它能不能排进去，
// 排不进任何迭代时自然会落到 unplaced 里
func isCandidate(item *domain.WorkItem) bool {
	return !item.IsEpic && item.Status != domain.StatusCompleted
}

// AutoAssign 对所有待排期的工作项做一次完整的重排。
//  1. 清空候选工作项的已有分配（整轮重排，不是增量修补）
//  2. 候选工作项按截止日期升序排序，截止早的先抢占稀缺容量
//  3. 以按技能划分的容量减去存量分配作为每个迭代的剩余容量账本
//  4. 每个工作项放进满足截止日期、依赖和容量约束的最晚结束的迭代，
//     没有可行迭代时留在 unplaced 中，这不是错误
//
// 返回全新的工作项和迭代集合，调用方传入的集合不会被修改。
// 一轮排期过程中的账本不允许并发修改，调用方需要自行串行化
func AutoAssign(items []*domain.WorkItem, sprints []*domain.Sprint, members []*domain.TeamMember, holidays []*domain.PublicHoliday) *PlanResult {
	newItems := make([]*domain.WorkItem, 0, len(items))
	itemsByID := make(map[int64]*domain.WorkItem)
	for _, item := range items {
		clone := copyWorkItem(item)
		newItems = append(newItems, clone)
		itemsByID[clone.ID] = clone
	}

	newSprints := make([]*domain.Sprint, 0, len(sprints))
	sprintsByID := make(map[int64]*domain.Sprint)
	for _, sprint := range sprints {
		clone := copySprint(sprint)
		newSprints = append(newSprints, clone)
		sprintsByID[clone.ID] = clone
	}

	// 收集候选工作项并清空它们的已有分配
	candidates := make([]*domain.WorkItem, 0, len(newItems))
	for _, item := range newItems {
		if !isCandidate(item) {
			continue
		}
		candidates = append(candidates, item)
		item.AssignedSprints = []int64{}
	}
	candidateIDs := make(map[int64]bool, len(candidates))
	for _, item := range candidates {
		candidateIDs[item.ID] = true
	}
	for _, sprint := range newSprints {
		sprint.WorkItemIDs = slices.DeleteFunc(sprint.WorkItemIDs, func(id int64) bool {
			return candidateIDs[id]
		})
	}

	// 截止日期升序，相同时按 ID 保证可重现
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].RequiredCompletionDate.Equal(candidates[j].RequiredCompletionDate) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].RequiredCompletionDate.Before(candidates[j].RequiredCompletionDate)
	})

	// 建立剩余容量账本，扣掉重排后仍然保留的存量分配
	ledgers := make(map[int64]*sprintLedger, len(newSprints))
	for _, sprint := range newSprints {
		frontend := SprintSkillCapacity(sprint, members, holidays, domain.SkillFrontend)
		backend := SprintSkillCapacity(sprint, members, holidays, domain.SkillBackend)

		ledger := &sprintLedger{
			remaining: map[domain.Skill]float64{
				domain.SkillFrontend: frontend,
				domain.SkillBackend:  backend,
			},
			total: frontend + backend,
		}

		for _, itemID := range sprint.WorkItemIDs {
			if assigned, exists := itemsByID[itemID]; exists {
				ledger.deduct(assigned)
			}
		}

		ledgers[sprint.ID] = ledger
	}

	unplaced := make([]*domain.WorkItem, 0)

	for _, item := range candidates {
		// 在截止日期之前、依赖可行且容量放得下的迭代中，取结束最晚的那个，
		// 给更早的工作留出尽可能多的余地
		var best *domain.Sprint
		for _, sprint := range newSprints {
			if truncateToDay(sprint.EndDate).After(truncateToDay(item.RequiredCompletionDate)) {
				continue
			}
			if !CanScheduleInSprint(item, sprint, itemsByID, sprintsByID) {
				continue
			}
			if !ledgers[sprint.ID].fits(item) {
				continue
			}
			if best == nil || sprint.EndDate.After(best.EndDate) {
				best = sprint
			}
		}

		if best == nil {
			unplaced = append(unplaced, item)
			continue
		}

		item.AssignedSprints = []int64{best.ID}
		best.WorkItemIDs = append(best.WorkItemIDs, item.ID)
		ledgers[best.ID].deduct(item)
	}

	return &PlanResult{
		Items:    newItems,
		Sprints:  newSprints,
		Unplaced: unplaced,
	}
}

// AssignWorkItem 把单个工作项手动分配到目标迭代。
// 分配前按当前状态重新校验依赖约束和技能容量约束，
// 任何一个校验失败都不会产生部分修改
func AssignWorkItem(item *domain.WorkItem, sprint *domain.Sprint, items []*domain.WorkItem, sprints []*domain.Sprint, members []*domain.TeamMember, holidays []*domain.PublicHoliday) error {
	itemsByID := make(map[int64]*domain.WorkItem, len(items))
	for _, it := range items {
		itemsByID[it.ID] = it
	}
	sprintsByID := make(map[int64]*domain.Sprint, len(sprints))
	for _, sp := range sprints {
		sprintsByID[sp.ID] = sp
	}

	// 依赖校验：收集所有无法在目标迭代开始前完成的依赖
	unmetTitles := make([]string, 0)
	for _, depID := range item.Dependencies {
		dep, exists := itemsByID[depID]
		if !exists {
			continue
		}
		if dep.Status == domain.StatusCompleted {
			continue
		}

		finish, known := dependencyFinishDate(dep, sprintsByID)
		if !known || !truncateToDay(finish).Before(truncateToDay(sprint.StartDate)) {
			unmetTitles = append(unmetTitles, dep.Title)
		}
	}
	if len(unmetTitles) > 0 {
		return &DependencyShortfallError{Dependencies: unmetTitles}
	}

	// 容量校验：按当前状态计算每条所需技能道的剩余容量
	shortSkills := make([]domain.Skill, 0)
	checkSkills := item.RequiredSkills
	if len(checkSkills) == 0 {
		checkSkills = []domain.Skill{domain.SkillFrontend, domain.SkillBackend}
	}
	for _, skill := range checkSkills {
		remaining := SprintSkillCapacity(sprint, members, holidays, skill)
		for _, assignedID := range sprint.WorkItemIDs {
			if assignedID == item.ID {
				continue
			}
			assigned, exists := itemsByID[assignedID]
			if !exists || !assigned.RequiresSkill(skill) {
				continue
			}
			remaining -= assigned.Estimate
		}
		if item.Estimate > remaining {
			shortSkills = append(shortSkills, skill)
		}
	}
	if len(shortSkills) > 0 {
		return &CapacityShortfallError{SprintName: sprint.Name, Skills: shortSkills}
	}

	// 校验通过后才落到工作项和迭代两边
	item.AssignedSprints = []int64{sprint.ID}
	if !slices.Contains(sprint.WorkItemIDs, item.ID) {
		sprint.WorkItemIDs = append(sprint.WorkItemIDs, item.ID)
	}

	return nil
}

// ClearAssignments 清空所有工作项的迭代分配，返回全新的集合
func ClearAssignments(items []*domain.WorkItem, sprints []*domain.Sprint) *PlanResult {
	newItems := make([]*domain.WorkItem, 0, len(items))
	for _, item := range items {
		clone := copyWorkItem(item)
		clone.AssignedSprints = []int64{}
		newItems = append(newItems, clone)
	}

	newSprints := make([]*domain.Sprint, 0, len(sprints))
	for _, sprint := range sprints {
		clone := copySprint(sprint)
		clone.WorkItemIDs = []int64{}
		newSprints = append(newSprints, clone)
	}

	return &PlanResult{
		Items:    newItems,
		Sprints:  newSprints,
		Unplaced: []*domain.WorkItem{},
	}
}
