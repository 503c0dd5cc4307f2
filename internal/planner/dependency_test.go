package planner_test

import (
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/planner"
)

func newWorkItem(id int64, title string, estimate float64, deadline time.Time, skills []domain.Skill, deps []int64) *domain.WorkItem {
	return &domain.WorkItem{
		ID:                     id,
		Title:                  title,
		Estimate:               estimate,
		RequiredCompletionDate: deadline,
		RequiredSkills:         skills,
		Dependencies:           deps,
		Status:                 domain.StatusNotStarted,
		AssignedSprints:        []int64{},
	}
}

func itemsByID(items []*domain.WorkItem) map[int64]*domain.WorkItem {
	m := make(map[int64]*domain.WorkItem, len(items))
	for _, item := range items {
		m[item.ID] = item
	}
	return m
}

func sprintsByID(sprints []*domain.Sprint) map[int64]*domain.Sprint {
	m := make(map[int64]*domain.Sprint, len(sprints))
	for _, sprint := range sprints {
		m[sprint.ID] = sprint
	}
	return m
}

func TestDependenciesSatisfied(t *testing.T) {
	deadline := date(2025, time.March, 28)

	completed := newWorkItem(1, "已完成的依赖", 3, deadline, nil, nil)
	completed.Status = domain.StatusCompleted
	inProgress := newWorkItem(2, "进行中的依赖", 3, deadline, nil, nil)
	inProgress.Status = domain.StatusInProgress

	noDeps := newWorkItem(3, "没有依赖", 2, deadline, nil, nil)
	onCompleted := newWorkItem(4, "依赖已完成项", 2, deadline, nil, []int64{1})
	onInProgress := newWorkItem(5, "依赖进行中项", 2, deadline, nil, []int64{2})
	onMissing := newWorkItem(6, "依赖不存在项", 2, deadline, nil, []int64{999})

	all := []*domain.WorkItem{completed, inProgress, noDeps, onCompleted, onInProgress, onMissing}
	byID := itemsByID(all)

	if !planner.DependenciesSatisfied(noDeps, byID) {
		t.Fatalf("没有依赖的工作项应该天然就绪")
	}
	if !planner.DependenciesSatisfied(onCompleted, byID) {
		t.Fatalf("依赖已完成时应该就绪")
	}
	if planner.DependenciesSatisfied(onInProgress, byID) {
		t.Fatalf("依赖未完成时不应该就绪")
	}
	// 悬空引用视为已满足，避免排期死锁
	if !planner.DependenciesSatisfied(onMissing, byID) {
		t.Fatalf("悬空依赖应该视为已满足")
	}
}

func TestPartitionBlocked(t *testing.T) {
	deadline := date(2025, time.March, 28)

	dep := newWorkItem(1, "依赖项", 3, deadline, nil, nil)
	dep.Status = domain.StatusInProgress
	blockedItem := newWorkItem(2, "受阻项", 2, deadline, nil, []int64{1})
	readyItem := newWorkItem(3, "就绪项", 2, deadline, nil, nil)
	completedItem := newWorkItem(4, "已完成项", 2, deadline, nil, []int64{1})
	completedItem.Status = domain.StatusCompleted

	all := []*domain.WorkItem{dep, blockedItem, readyItem, completedItem}
	blocked, ready := planner.PartitionBlocked(all, itemsByID(all))

	if len(blocked) != 1 || blocked[0].ID != 2 {
		t.Fatalf("期望只有受阻项被划为 blocked，实际为 %+v", blocked)
	}
	// 已完成的工作项即使有未满足的依赖也不算受阻
	if len(ready) != 3 {
		t.Fatalf("期望 3 个就绪项，实际为 %d", len(ready))
	}
}

func TestCanScheduleInSprintUnassignedDependency(t *testing.T) {
	// 场景：Y 依赖 Z，Z 进行中且没有任何迭代分配，
	// 在 Z 获得分配之前 Y 在所有候选迭代中都受阻
	s1 := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	s2 := newSprint(2, date(2025, time.January, 20), date(2025, time.January, 31), 20)

	z := newWorkItem(1, "Z", 3, date(2025, time.January, 17), nil, nil)
	z.Status = domain.StatusInProgress
	y := newWorkItem(2, "Y", 2, date(2025, time.January, 31), nil, []int64{1})

	byID := itemsByID([]*domain.WorkItem{z, y})
	bysID := sprintsByID([]*domain.Sprint{s1, s2})

	if planner.CanScheduleInSprint(y, s1, byID, bysID) || planner.CanScheduleInSprint(y, s2, byID, bysID) {
		t.Fatalf("依赖未分配迭代时，任何候选迭代都应被拒绝")
	}

	// Z 分配到 S1 后，Y 可以排进 S2 但不能排进 S1
	z.AssignedSprints = []int64{1}
	if planner.CanScheduleInSprint(y, s1, byID, bysID) {
		t.Fatalf("依赖所在迭代结束日不早于候选迭代开始日时应被拒绝")
	}
	if !planner.CanScheduleInSprint(y, s2, byID, bysID) {
		t.Fatalf("依赖的迭代结束后，后续迭代应该可用")
	}
}

func TestCanScheduleInSprintStrictOrdering(t *testing.T) {
	// 依赖所在迭代的结束日必须严格早于候选迭代的开始日
	s1 := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	touching := newSprint(2, date(2025, time.January, 17), date(2025, time.January, 28), 20)

	dep := newWorkItem(1, "依赖项", 3, date(2025, time.January, 17), nil, nil)
	dep.Status = domain.StatusInProgress
	dep.AssignedSprints = []int64{1}
	item := newWorkItem(2, "待排期项", 2, date(2025, time.February, 28), nil, []int64{1})

	byID := itemsByID([]*domain.WorkItem{dep, item})
	bysID := sprintsByID([]*domain.Sprint{s1, touching})

	if planner.CanScheduleInSprint(item, touching, byID, bysID) {
		t.Fatalf("候选迭代开始日与依赖迭代结束日相同时应被拒绝")
	}
}

func TestCanScheduleInSprintDanglingAssignment(t *testing.T) {
	// 依赖的分配指向不存在的迭代时，完成时间未知，候选迭代被拒绝
	s1 := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)

	dep := newWorkItem(1, "依赖项", 3, date(2025, time.January, 17), nil, nil)
	dep.Status = domain.StatusInProgress
	dep.AssignedSprints = []int64{999}
	item := newWorkItem(2, "待排期项", 2, date(2025, time.February, 28), nil, []int64{1})

	byID := itemsByID([]*domain.WorkItem{dep, item})
	bysID := sprintsByID([]*domain.Sprint{s1})

	if planner.CanScheduleInSprint(item, s1, byID, bysID) {
		t.Fatalf("依赖分配无法解析时应被拒绝")
	}
}

func TestDependencyChainCycleSafety(t *testing.T) {
	// A -> B -> C -> A 的依赖环必须能终止
	deadline := date(2025, time.March, 28)
	a := newWorkItem(1, "A", 1, deadline, nil, []int64{2})
	b := newWorkItem(2, "B", 1, deadline, nil, []int64{3})
	c := newWorkItem(3, "C", 1, deadline, nil, []int64{1})

	byID := itemsByID([]*domain.WorkItem{a, b, c})

	chain := planner.DependencyChain(a, byID)
	if len(chain) != 2 {
		t.Fatalf("期望依赖链长度为 2（B、C），实际为 %d", len(chain))
	}
	for _, item := range chain {
		if item.ID == a.ID {
			t.Fatalf("依赖链不应该回到起点")
		}
	}
}
