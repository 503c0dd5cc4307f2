package planner_test

import (
	"errors"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/planner"
)

// 三个连续的两周迭代，2025-01-06 起，各 10 个工作日
func testSprints(velocity float64) []*domain.Sprint {
	return []*domain.Sprint{
		newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), velocity),
		newSprint(2, date(2025, time.January, 20), date(2025, time.January, 31), velocity),
		newSprint(3, date(2025, time.February, 3), date(2025, time.February, 14), velocity),
	}
}

// 前后端各一名全职成员，每个迭代每条技能道的容量为 velocity/2
func testMembers() []*domain.TeamMember {
	return []*domain.TeamMember{
		newMember(1, 100, domain.SkillFrontend),
		newMember(2, 100, domain.SkillBackend),
	}
}

func assignedSprint(t *testing.T, item *domain.WorkItem) int64 {
	t.Helper()
	if len(item.AssignedSprints) != 1 {
		t.Fatalf("工作项 %s 期望恰好一个迭代分配，实际为 %v", item.Title, item.AssignedSprints)
	}
	return item.AssignedSprints[0]
}

func findItem(t *testing.T, items []*domain.WorkItem, id int64) *domain.WorkItem {
	t.Helper()
	for _, item := range items {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("结果集合中找不到工作项 %d", id)
	return nil
}

func TestAutoAssignPrefersLatestFeasibleSprint(t *testing.T) {
	sprints := testSprints(20)
	members := testMembers()

	// 截止日期在第三个迭代结束日，应该排进第三个迭代而不是更早的
	item := newWorkItem(1, "前端任务", 3, date(2025, time.February, 14), []domain.Skill{domain.SkillFrontend}, nil)

	result := planner.AutoAssign([]*domain.WorkItem{item}, sprints, members, nil)

	if len(result.Unplaced) != 0 {
		t.Fatalf("期望没有未排期项，实际为 %d", len(result.Unplaced))
	}
	got := findItem(t, result.Items, 1)
	if assignedSprint(t, got) != 3 {
		t.Fatalf("期望排进迭代 3（最晚可行迭代），实际为 %d", assignedSprint(t, got))
	}

	// 引擎不允许修改调用方传入的集合
	if len(item.AssignedSprints) != 0 {
		t.Fatalf("输入集合不应被修改: %v", item.AssignedSprints)
	}
}

func TestAutoAssignRespectsDeadline(t *testing.T) {
	sprints := testSprints(20)
	members := testMembers()
	bysID := sprintsByID(sprints)

	items := []*domain.WorkItem{
		newWorkItem(1, "任务一", 3, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend}, nil),
		newWorkItem(2, "任务二", 3, date(2025, time.January, 31), []domain.Skill{domain.SkillBackend}, nil),
		newWorkItem(3, "任务三", 3, date(2025, time.February, 14), []domain.Skill{domain.SkillFrontend}, nil),
	}

	result := planner.AutoAssign(items, sprints, members, nil)

	for _, item := range result.Items {
		if len(item.AssignedSprints) == 0 {
			continue
		}
		sprint := bysID[item.AssignedSprints[0]]
		if sprint.EndDate.After(item.RequiredCompletionDate) {
			t.Fatalf("工作项 %s 被排进了截止日期之后的迭代", item.Title)
		}
	}
}

func TestAutoAssignDeadlineBeforeAnySprint(t *testing.T) {
	sprints := testSprints(20)
	members := testMembers()

	// 截止日期早于所有迭代的结束日，无处可排
	item := newWorkItem(1, "来不及的任务", 3, date(2025, time.January, 10), []domain.Skill{domain.SkillFrontend}, nil)

	result := planner.AutoAssign([]*domain.WorkItem{item}, sprints, members, nil)
	if len(result.Unplaced) != 1 || result.Unplaced[0].ID != 1 {
		t.Fatalf("期望工作项落入未排期集合，实际为 %+v", result.Unplaced)
	}
}

func TestAutoAssignMultiSkillMustFitAllLanes(t *testing.T) {
	// 场景：迭代剩余前端 6、后端 4，估算 5 的双技能工作项必须被拒绝
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 10)
	members := []*domain.TeamMember{
		newMember(1, 60, domain.SkillFrontend), // 前端容量 10 * 60/100 = 6
		newMember(2, 40, domain.SkillBackend),  // 后端容量 10 * 40/100 = 4
	}

	both := newWorkItem(1, "双技能任务", 5, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend, domain.SkillBackend}, nil)

	result := planner.AutoAssign([]*domain.WorkItem{both}, []*domain.Sprint{sprint}, members, nil)
	if len(result.Unplaced) != 1 {
		t.Fatalf("后端容量不足时双技能任务应该无法排期")
	}

	// 同样估算的纯前端任务可以排进去
	frontendOnly := newWorkItem(2, "纯前端任务", 5, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend}, nil)
	result = planner.AutoAssign([]*domain.WorkItem{frontendOnly}, []*domain.Sprint{sprint}, members, nil)
	if len(result.Unplaced) != 0 {
		t.Fatalf("前端容量足够时纯前端任务应该排期成功")
	}
}

func TestAutoAssignRespectsSkillCapacityAcrossItems(t *testing.T) {
	// 单迭代前端容量 10，三个 4 点的前端任务只能放下两个
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	members := testMembers()

	items := []*domain.WorkItem{
		newWorkItem(1, "前端一", 4, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend}, nil),
		newWorkItem(2, "前端二", 4, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend}, nil),
		newWorkItem(3, "前端三", 4, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend}, nil),
	}

	result := planner.AutoAssign(items, []*domain.Sprint{sprint}, members, nil)

	if len(result.Unplaced) != 1 {
		t.Fatalf("期望恰好一个任务放不下，实际为 %d", len(result.Unplaced))
	}

	placed := 0.0
	for _, item := range result.Items {
		if len(item.AssignedSprints) == 1 {
			placed += item.Estimate
		}
	}
	if placed > 10.0 {
		t.Fatalf("已排期估算总和 %v 超过了前端容量 10", placed)
	}
}

func TestAutoAssignDependencyOrdering(t *testing.T) {
	sprints := testSprints(20)
	members := testMembers()

	// B 依赖 A：A 截止于迭代 1，B 截止于迭代 2，
	// B 只能排在 A 所在迭代结束之后
	a := newWorkItem(1, "A", 3, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend}, nil)
	b := newWorkItem(2, "B", 3, date(2025, time.January, 31), []domain.Skill{domain.SkillBackend}, []int64{1})

	result := planner.AutoAssign([]*domain.WorkItem{a, b}, sprints, members, nil)

	if len(result.Unplaced) != 0 {
		t.Fatalf("期望两个任务都排期成功，实际未排期 %d 个", len(result.Unplaced))
	}
	if got := assignedSprint(t, findItem(t, result.Items, 1)); got != 1 {
		t.Fatalf("A 期望排进迭代 1，实际为 %d", got)
	}
	if got := assignedSprint(t, findItem(t, result.Items, 2)); got != 2 {
		t.Fatalf("B 期望排进迭代 2（A 结束之后），实际为 %d", got)
	}
}

func TestAutoAssignUnassignedDependencyLeavesItemUnplaced(t *testing.T) {
	sprints := testSprints(20)
	members := testMembers()

	// 依赖进行中且截止日期早于所有迭代，导致依赖自己也排不进去，
	// 下游任务的完成时间未知，只能落入未排期集合
	dep := newWorkItem(1, "进行中的依赖", 3, date(2025, time.January, 3), []domain.Skill{domain.SkillFrontend}, nil)
	dep.Status = domain.StatusInProgress
	item := newWorkItem(2, "下游任务", 3, date(2025, time.February, 14), []domain.Skill{domain.SkillBackend}, []int64{1})

	result := planner.AutoAssign([]*domain.WorkItem{dep, item}, sprints, members, nil)

	if len(result.Unplaced) != 2 {
		t.Fatalf("期望两个任务都未排期，实际为 %d", len(result.Unplaced))
	}
}

func TestAutoAssignSkipsEpicsAndKeepsCompleted(t *testing.T) {
	sprints := testSprints(20)
	members := testMembers()

	epic := newWorkItem(1, "史诗", 8, date(2025, time.February, 14), []domain.Skill{domain.SkillFrontend}, nil)
	epic.IsEpic = true

	completed := newWorkItem(2, "已完成项", 4, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend}, nil)
	completed.Status = domain.StatusCompleted
	completed.AssignedSprints = []int64{1}
	sprints[0].WorkItemIDs = []int64{2}

	// 已完成项占掉迭代 1 的 4 点前端容量后，8 点的前端任务放不进迭代 1
	big := newWorkItem(3, "大前端任务", 8, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend}, nil)

	result := planner.AutoAssign([]*domain.WorkItem{epic, completed, big}, sprints, members, nil)

	if len(findItem(t, result.Items, 1).AssignedSprints) != 0 {
		t.Fatalf("史诗不应参与排期")
	}
	if got := assignedSprint(t, findItem(t, result.Items, 2)); got != 1 {
		t.Fatalf("已完成项的分配应保持不变，实际为 %d", got)
	}
	if len(result.Unplaced) != 1 || result.Unplaced[0].ID != 3 {
		t.Fatalf("存量分配占用容量后大任务应该无法排进迭代 1: %+v", result.Unplaced)
	}
}

func TestAutoAssignIsFullReplan(t *testing.T) {
	sprints := testSprints(20)
	members := testMembers()

	// 候选工作项带着旧的分配进来，重排时会先被清空
	item := newWorkItem(1, "旧分配任务", 3, date(2025, time.February, 14), []domain.Skill{domain.SkillFrontend}, nil)
	item.AssignedSprints = []int64{1}
	sprints[0].WorkItemIDs = []int64{1}

	result := planner.AutoAssign([]*domain.WorkItem{item}, sprints, members, nil)

	if got := assignedSprint(t, findItem(t, result.Items, 1)); got != 3 {
		t.Fatalf("重排后期望排进迭代 3，实际为 %d", got)
	}
	for _, sprint := range result.Sprints {
		if sprint.ID == 1 && len(sprint.WorkItemIDs) != 0 {
			t.Fatalf("旧分配应该在重排时被清掉: %v", sprint.WorkItemIDs)
		}
	}
}

func TestAssignWorkItemCapacityShortfall(t *testing.T) {
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 10)
	members := []*domain.TeamMember{
		newMember(1, 60, domain.SkillFrontend), // 前端容量 6
		newMember(2, 40, domain.SkillBackend),  // 后端容量 4
	}

	item := newWorkItem(1, "双技能任务", 5, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend, domain.SkillBackend}, nil)

	err := planner.AssignWorkItem(item, sprint, []*domain.WorkItem{item}, []*domain.Sprint{sprint}, members, nil)

	var shortfall *planner.CapacityShortfallError
	if !errors.As(err, &shortfall) {
		t.Fatalf("期望容量不足错误，实际为 %v", err)
	}
	if len(shortfall.Skills) != 1 || shortfall.Skills[0] != domain.SkillBackend {
		t.Fatalf("期望只有后端容量不足，实际为 %v", shortfall.Skills)
	}

	// 拒绝时不允许产生部分修改
	if len(item.AssignedSprints) != 0 || len(sprint.WorkItemIDs) != 0 {
		t.Fatalf("分配被拒绝后状态不应被修改")
	}
}

func TestAssignWorkItemDependencyShortfall(t *testing.T) {
	sprints := testSprints(20)
	members := testMembers()

	dep := newWorkItem(1, "底层改造", 3, date(2025, time.January, 17), []domain.Skill{domain.SkillBackend}, nil)
	dep.Status = domain.StatusInProgress
	item := newWorkItem(2, "上层功能", 3, date(2025, time.January, 31), []domain.Skill{domain.SkillFrontend}, []int64{1})

	all := []*domain.WorkItem{dep, item}

	err := planner.AssignWorkItem(item, sprints[1], all, sprints, members, nil)

	var shortfall *planner.DependencyShortfallError
	if !errors.As(err, &shortfall) {
		t.Fatalf("期望依赖不满足错误，实际为 %v", err)
	}
	if len(shortfall.Dependencies) != 1 || shortfall.Dependencies[0] != "底层改造" {
		t.Fatalf("错误中应包含未满足依赖的名称，实际为 %v", shortfall.Dependencies)
	}

	// 依赖排进迭代 1 之后，手动分配到迭代 2 应该成功
	dep.AssignedSprints = []int64{1}
	sprints[0].WorkItemIDs = append(sprints[0].WorkItemIDs, dep.ID)

	if err := planner.AssignWorkItem(item, sprints[1], all, sprints, members, nil); err != nil {
		t.Fatalf("依赖满足后手动分配应该成功: %v", err)
	}
	if assignedSprint(t, item) != 2 {
		t.Fatalf("手动分配后期望迭代 2，实际为 %v", item.AssignedSprints)
	}
	if len(sprints[1].WorkItemIDs) != 1 || sprints[1].WorkItemIDs[0] != item.ID {
		t.Fatalf("迭代侧的分配记录错误: %v", sprints[1].WorkItemIDs)
	}
}

func TestClearAssignmentsIdempotentPartition(t *testing.T) {
	sprints := testSprints(20)
	members := testMembers()

	dep := newWorkItem(1, "依赖项", 3, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend}, nil)
	dep.Status = domain.StatusInProgress
	blockedItem := newWorkItem(2, "受阻项", 3, date(2025, time.January, 31), []domain.Skill{domain.SkillBackend}, []int64{1})
	readyItem := newWorkItem(3, "就绪项", 3, date(2025, time.February, 14), []domain.Skill{domain.SkillFrontend}, nil)

	items := []*domain.WorkItem{dep, blockedItem, readyItem}

	blockedBefore, readyBefore := planner.PartitionBlocked(items, itemsByID(items))

	// 排期再清空之后，受阻/就绪的划分必须和排期前完全一致
	result := planner.AutoAssign(items, sprints, members, nil)
	cleared := planner.ClearAssignments(result.Items, result.Sprints)

	for _, item := range cleared.Items {
		if len(item.AssignedSprints) != 0 {
			t.Fatalf("清空后工作项 %s 不应再有分配", item.Title)
		}
	}
	for _, sprint := range cleared.Sprints {
		if len(sprint.WorkItemIDs) != 0 {
			t.Fatalf("清空后迭代 %s 不应再有工作项", sprint.Name)
		}
	}

	blockedAfter, readyAfter := planner.PartitionBlocked(cleared.Items, itemsByID(cleared.Items))
	if len(blockedAfter) != len(blockedBefore) || len(readyAfter) != len(readyBefore) {
		t.Fatalf("清空分配后受阻/就绪划分发生了变化: %d/%d -> %d/%d",
			len(blockedBefore), len(readyBefore), len(blockedAfter), len(readyAfter))
	}
	for i := range blockedBefore {
		if blockedBefore[i].ID != blockedAfter[i].ID {
			t.Fatalf("受阻集合不一致")
		}
	}
}

func TestAutoAssignDeterministicOrdering(t *testing.T) {
	// 截止日期早的任务先抢占稀缺容量
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	members := testMembers()

	late := newWorkItem(1, "截止晚的任务", 8, date(2025, time.March, 31), []domain.Skill{domain.SkillFrontend}, nil)
	early := newWorkItem(2, "截止早的任务", 8, date(2025, time.January, 17), []domain.Skill{domain.SkillFrontend}, nil)

	result := planner.AutoAssign([]*domain.WorkItem{late, early}, []*domain.Sprint{sprint}, members, nil)

	if len(result.Unplaced) != 1 || result.Unplaced[0].ID != 1 {
		t.Fatalf("前端容量只够一个任务时，截止早的应该优先: %+v", result.Unplaced)
	}
	if got := assignedSprint(t, findItem(t, result.Items, 2)); got != 1 {
		t.Fatalf("截止早的任务期望排进迭代 1，实际为 %d", got)
	}
}
