package planner

import (
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

// DependenciesSatisfied 判断一个工作项的所有依赖是否都已满足。
// 依赖的 id 在集合中不存在时视为已满足（悬空引用不应该卡死排期），
// 依赖已完成也视为满足，没有依赖的工作项天然就绪
func DependenciesSatisfied(item *domain.WorkItem, itemsByID map[int64]*domain.WorkItem) bool {
	for _, depID := range item.Dependencies {
		dep, exists := itemsByID[depID]
		if !exists {
			continue
		}
		if dep.Status != domain.StatusCompleted {
			return false
		}
	}
	return true
}

// UnmetDependencies 返回未满足的依赖项，供错误提示使用
func UnmetDependencies(item *domain.WorkItem, itemsByID map[int64]*domain.WorkItem) []*domain.WorkItem {
	unmet := make([]*domain.WorkItem, 0)
	for _, depID := range item.Dependencies {
		dep, exists := itemsByID[depID]
		if !exists {
			continue
		}
		if dep.Status != domain.StatusCompleted {
			unmet = append(unmet, dep)
		}
	}
	return unmet
}

// dependencyFinishDate 返回某个依赖项最晚结束的已分配迭代的结束日期。
// 依赖还没有任何可解析的迭代分配时，完成时间未知，返回 false
func dependencyFinishDate(dep *domain.WorkItem, sprintsByID map[int64]*domain.Sprint) (time.Time, bool) {
	var latest time.Time
	found := false

	for _, sprintID := range dep.AssignedSprints {
		sprint, exists := sprintsByID[sprintID]
		if !exists {
			continue
		}
		if !found || sprint.EndDate.After(latest) {
			latest = sprint.EndDate
			found = true
		}
	}

	return latest, found
}

// CanScheduleInSprint 判断工作项的依赖是否会在候选迭代开始之前完成。
// 对每个未完成的依赖：没有迭代分配则直接拒绝（完成时间未知）；
// 否则要求其最晚结束的迭代严格早于候选迭代的开始日期
func CanScheduleInSprint(item *domain.WorkItem, candidate *domain.Sprint, itemsByID map[int64]*domain.WorkItem, sprintsByID map[int64]*domain.Sprint) bool {
	for _, depID := range item.Dependencies {
		dep, exists := itemsByID[depID]
		if !exists {
			continue
		}
		if dep.Status == domain.StatusCompleted {
			continue
		}

		finish, known := dependencyFinishDate(dep, sprintsByID)
		if !known {
			return false
		}
		if !truncateToDay(finish).Before(truncateToDay(candidate.StartDate)) {
			return false
		}
	}

	return true
}

// PartitionBlocked 把工作项集合划分为受阻和就绪两部分。
// 受阻的定义是：未完成且存在至少一个未满足的依赖
func PartitionBlocked(items []*domain.WorkItem, itemsByID map[int64]*domain.WorkItem) (blocked []*domain.WorkItem, ready []*domain.WorkItem) {
	blocked = make([]*domain.WorkItem, 0)
	ready = make([]*domain.WorkItem, 0)

	for _, item := range items {
		if item.Status != domain.StatusCompleted && !DependenciesSatisfied(item, itemsByID) {
			blocked = append(blocked, item)
			continue
		}
		ready = append(ready, item)
	}

	return blocked, ready
}

// DependencyChain 展开某个工作项的依赖链，用于诊断展示。
// 通过 visited 集合在环上终止，依赖环是数据质量问题，这里只容忍不报错
func DependencyChain(item *domain.WorkItem, itemsByID map[int64]*domain.WorkItem) []*domain.WorkItem {
	visited := make(map[int64]bool)
	chain := make([]*domain.WorkItem, 0)

	var walk func(current *domain.WorkItem)
	walk = func(current *domain.WorkItem) {
		for _, depID := range current.Dependencies {
			if visited[depID] {
				continue
			}
			visited[depID] = true

			dep, exists := itemsByID[depID]
			if !exists {
				continue
			}

			chain = append(chain, dep)
			walk(dep)
		}
	}

	visited[item.ID] = true
	walk(item)

	return chain
}
