package domain

import (
	"time"
)

type Skill string

const (
	SkillFrontend Skill = "frontend"
	SkillBackend  Skill = "backend"
)

// PersonalHoliday 表示某个成员的一段闭区间休假 [StartDate, EndDate]
type PersonalHoliday struct {
	ID          int64     `json:"id"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Description string    `json:"description"`
}

type TeamMember struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	Email              string            `json:"email"`
	CapacityPercentage int32             `json:"capacityPercentage"` // 0-100，表示全职投入度的百分比
	Skills             []Skill           `json:"skills"`
	PersonalHolidays   []PersonalHoliday `json:"personalHolidays"`
	CreatedAt          time.Time         `json:"createdAt"`
	Version            int32             `json:"-"`
}

// HasSkill 判断成员是否具有某项技能
func (m *TeamMember) HasSkill(skill Skill) bool {
	for _, s := range m.Skills {
		if s == skill {
			return true
		}
	}
	return false
}
