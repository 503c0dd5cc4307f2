package planner_test

import (
	"math"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/planner"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newSprint(id int64, start, end time.Time, velocity float64) *domain.Sprint {
	return &domain.Sprint{
		ID:              id,
		Name:            "测试迭代",
		StartDate:       start,
		EndDate:         end,
		PlannedVelocity: velocity,
		WorkItemIDs:     []int64{},
	}
}

func newMember(id int64, capacity int32, skills ...domain.Skill) *domain.TeamMember {
	return &domain.TeamMember{
		ID:                 id,
		Name:               "测试成员",
		CapacityPercentage: capacity,
		Skills:             skills,
	}
}

func TestSprintCapacityWithPublicHoliday(t *testing.T) {
	// 10 个工作日、计划速率 20 的迭代中有一个公共假期，
	// 容量应为 20 * (1 - 1/10) = 18.0
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	members := []*domain.TeamMember{newMember(1, 100, domain.SkillFrontend, domain.SkillBackend)}
	holidays := []*domain.PublicHoliday{
		{ID: 1, Date: date(2025, time.January, 8), Name: "公共假期", ImpactPercentage: 100},
	}

	got := planner.SprintCapacity(sprint, members, holidays)
	if !almostEqual(got, 18.0) {
		t.Fatalf("期望容量 18.0，实际为 %v", got)
	}
}

func TestSprintCapacityMultipleHolidaysAdditive(t *testing.T) {
	// 两个公共假期在损失比例上相加：20 * (1 - 2/10) = 16.0
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	members := []*domain.TeamMember{newMember(1, 100, domain.SkillBackend)}
	holidays := []*domain.PublicHoliday{
		{ID: 1, Date: date(2025, time.January, 8), Name: "假期一", ImpactPercentage: 100},
		{ID: 2, Date: date(2025, time.January, 14), Name: "假期二", ImpactPercentage: 100},
	}

	got := planner.SprintCapacity(sprint, members, holidays)
	if !almostEqual(got, 16.0) {
		t.Fatalf("期望容量 16.0，实际为 %v", got)
	}
}

func TestSprintCapacityHalfImpactHoliday(t *testing.T) {
	// impactPercentage 为 50 的假期只损失半个工作日：20 * (1 - 0.5/10) = 19.0
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	members := []*domain.TeamMember{newMember(1, 100, domain.SkillFrontend)}
	holidays := []*domain.PublicHoliday{
		{ID: 1, Date: date(2025, time.January, 8), Name: "半天假期", ImpactPercentage: 50},
	}

	got := planner.SprintCapacity(sprint, members, holidays)
	if !almostEqual(got, 19.0) {
		t.Fatalf("期望容量 19.0，实际为 %v", got)
	}
}

func TestSprintCapacityPersonalHoliday(t *testing.T) {
	// 成员一请了一整周（5 个工作日）的假，投入度 100：
	// 20 * (1 - 5/10) = 10.0
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	member := newMember(1, 100, domain.SkillFrontend)
	member.PersonalHolidays = []domain.PersonalHoliday{
		{ID: 1, StartDate: date(2025, time.January, 6), EndDate: date(2025, time.January, 10), Description: "年假"},
	}

	got := planner.SprintCapacity(sprint, []*domain.TeamMember{member}, nil)
	if !almostEqual(got, 10.0) {
		t.Fatalf("期望容量 10.0，实际为 %v", got)
	}
}

func TestSprintCapacityNeverNegative(t *testing.T) {
	// 个人休假损失超过迭代总工作日时容量收敛到 0 而不是负数
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	members := []*domain.TeamMember{
		newMember(1, 100, domain.SkillFrontend),
		newMember(2, 100, domain.SkillBackend),
	}
	for _, member := range members {
		member.PersonalHolidays = []domain.PersonalHoliday{
			{StartDate: date(2025, time.January, 6), EndDate: date(2025, time.January, 17), Description: "长假"},
		}
	}

	if got := planner.SprintCapacity(sprint, members, nil); got != 0 {
		t.Fatalf("容量不允许为负，期望 0，实际为 %v", got)
	}
	if got := planner.SprintSkillCapacity(sprint, members, nil, domain.SkillFrontend); got != 0 {
		t.Fatalf("技能容量不允许为负，期望 0，实际为 %v", got)
	}
}

func TestSprintCapacityZeroWorkingDays(t *testing.T) {
	// 只覆盖周末的迭代没有任何工作日，容量必须为 0 且不能出现除零
	sprint := newSprint(1, date(2025, time.January, 4), date(2025, time.January, 5), 20)
	members := []*domain.TeamMember{newMember(1, 100, domain.SkillFrontend)}

	if got := planner.SprintCapacity(sprint, members, nil); got != 0 {
		t.Fatalf("没有工作日的迭代期望容量 0，实际为 %v", got)
	}
	if got := planner.SprintSkillCapacity(sprint, members, nil, domain.SkillBackend); got != 0 {
		t.Fatalf("没有工作日的迭代期望技能容量 0，实际为 %v", got)
	}
}

func TestSprintSkillCapacityPartition(t *testing.T) {
	// 成员 A 只会前端、成员 B 只会后端，各 100 投入度，速率 20：
	// 前端 = 后端 = 10.0，total = 20.0
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	members := []*domain.TeamMember{
		newMember(1, 100, domain.SkillFrontend),
		newMember(2, 100, domain.SkillBackend),
	}

	frontend := planner.SprintSkillCapacity(sprint, members, nil, domain.SkillFrontend)
	backend := planner.SprintSkillCapacity(sprint, members, nil, domain.SkillBackend)
	total := planner.SprintTotalSkillCapacity(sprint, members, nil)

	if !almostEqual(frontend, 10.0) {
		t.Fatalf("期望前端容量 10.0，实际为 %v", frontend)
	}
	if !almostEqual(backend, 10.0) {
		t.Fatalf("期望后端容量 10.0，实际为 %v", backend)
	}
	if !almostEqual(total, 20.0) {
		t.Fatalf("期望总容量 20.0，实际为 %v", total)
	}
}

func TestSprintSkillCapacityAdditivity(t *testing.T) {
	// 按约定 total = frontend + backend，对混合技能团队同样成立
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 30)
	members := []*domain.TeamMember{
		newMember(1, 100, domain.SkillFrontend, domain.SkillBackend),
		newMember(2, 80, domain.SkillBackend),
		newMember(3, 50, domain.SkillFrontend),
	}
	holidays := []*domain.PublicHoliday{
		{ID: 1, Date: date(2025, time.January, 9), Name: "假期", ImpactPercentage: 100},
	}

	frontend := planner.SprintSkillCapacity(sprint, members, holidays, domain.SkillFrontend)
	backend := planner.SprintSkillCapacity(sprint, members, holidays, domain.SkillBackend)
	total := planner.SprintTotalSkillCapacity(sprint, members, holidays)

	if !almostEqual(frontend+backend, total) {
		t.Fatalf("期望 frontend + backend == total，实际为 %v + %v != %v", frontend, backend, total)
	}
}

func TestSprintSkillCapacityZeroSubgroup(t *testing.T) {
	// 没有任何成员持有该技能时，技能容量定义为 0
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 20)
	members := []*domain.TeamMember{newMember(1, 100, domain.SkillBackend)}

	if got := planner.SprintSkillCapacity(sprint, members, nil, domain.SkillFrontend); got != 0 {
		t.Fatalf("空技能小组期望容量 0，实际为 %v", got)
	}

	// 团队整体投入度为 0 时同样返回 0
	zeroMembers := []*domain.TeamMember{newMember(1, 0, domain.SkillFrontend)}
	if got := planner.SprintSkillCapacity(sprint, zeroMembers, nil, domain.SkillFrontend); got != 0 {
		t.Fatalf("零投入度团队期望容量 0，实际为 %v", got)
	}
}

func TestSprintSkillCapacityPersonalHolidaySubgroupWeight(t *testing.T) {
	// 前端小组有两个成员（各 100 投入度），其中一个请满整个迭代：
	// 前端容量 = 20 * (100/300) * 2 * (1 - 10*(100/200)/10) = 按小组权重减半
	sprint := newSprint(1, date(2025, time.January, 6), date(2025, time.January, 17), 30)
	onHoliday := newMember(1, 100, domain.SkillFrontend)
	onHoliday.PersonalHolidays = []domain.PersonalHoliday{
		{StartDate: date(2025, time.January, 6), EndDate: date(2025, time.January, 17), Description: "长假"},
	}
	members := []*domain.TeamMember{
		onHoliday,
		newMember(2, 100, domain.SkillFrontend),
		newMember(3, 100, domain.SkillBackend),
	}

	// 基数 30 * 200/300 = 20，小组内权重 100/200 = 0.5，
	// 损失 10 个工作日 * 0.5 / 10 = 0.5，容量 = 20 * 0.5 = 10
	got := planner.SprintSkillCapacity(sprint, members, nil, domain.SkillFrontend)
	if !almostEqual(got, 10.0) {
		t.Fatalf("期望前端容量 10.0，实际为 %v", got)
	}
}
