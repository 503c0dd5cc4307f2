package domain

import "time"

type WorkItemStatus string

const (
	StatusNotStarted WorkItemStatus = "Not Started"
	StatusInProgress WorkItemStatus = "In Progress"
	StatusCompleted  WorkItemStatus = "Completed"
)

// WorkItem 表示一个待排期的工作项。
// 史诗（epic）通过 IsEpic 标记，子项通过 ParentID 指向史诗，
// 所有工作项都平铺在同一个集合中，史诗的分组只在展示层做
type WorkItem struct {
	ID                     int64          `json:"id"`
	Title                  string         `json:"title"`
	Description            string         `json:"description"`
	Estimate               float64        `json:"estimate"` // 故事点，必须大于 0
	RequiredCompletionDate time.Time      `json:"requiredCompletionDate"`
	RequiredSkills         []Skill        `json:"requiredSkills"`
	Dependencies           []int64        `json:"dependencies"`
	Status                 WorkItemStatus `json:"status"`
	AssignedSprints        []int64        `json:"assignedSprints"`
	IsEpic                 bool           `json:"isEpic"`
	ParentID               *int64         `json:"parentID"` // 为 nil 时表示不属于任何史诗
	CreatedAt              time.Time      `json:"createdAt"`
	Version                int32          `json:"-"`
}

// RequiresSkill 判断工作项是否需要某项技能
func (w *WorkItem) RequiresSkill(skill Skill) bool {
	for _, s := range w.RequiredSkills {
		if s == skill {
			return true
		}
	}
	return false
}
