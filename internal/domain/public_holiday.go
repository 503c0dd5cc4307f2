package domain

import "time"

// PublicHoliday 表示对全体成员生效的公共假期
type PublicHoliday struct {
	ID               int64     `json:"id"`
	Date             time.Time `json:"date"`
	Name             string    `json:"name"`
	ImpactPercentage int32     `json:"impactPercentage"` // 0-100，表示当天损失的工作日比例
	CreatedAt        time.Time `json:"createdAt"`
	Version          int32     `json:"-"`
}
