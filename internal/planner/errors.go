package planner

import (
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

// CapacityShortfallError 表示手动分配时目标迭代的某些技能容量不足
type CapacityShortfallError struct {
	SprintName string
	Skills     []domain.Skill
}

func (e *CapacityShortfallError) Error() string {
	skills := make([]string, 0, len(e.Skills))
	for _, skill := range e.Skills {
		skills = append(skills, string(skill))
	}
	return fmt.Sprintf("迭代 %s 的 %s 剩余容量不足", e.SprintName, strings.Join(skills, "、"))
}

// DependencyShortfallError 表示手动分配违反了依赖约束
type DependencyShortfallError struct {
	Dependencies []string // 未满足的依赖项标题
}

func (e *DependencyShortfallError) Error() string {
	return fmt.Sprintf("依赖项 %s 无法在迭代开始前完成", strings.Join(e.Dependencies, "、"))
}
