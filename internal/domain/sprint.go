package domain

import "time"

type Sprint struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"` // 闭区间，EndDate 不得早于 StartDate
	PlannedVelocity float64   `json:"plannedVelocity"`
	WorkItemIDs     []int64   `json:"workItemIDs"`
	CreatedAt       time.Time `json:"createdAt"`
	Version         int32     `json:"-"`
}

// SprintConfig 用于确定性地生成一年的迭代序列，
// 迭代的标识和名称只会在生成器中产生
type SprintConfig struct {
	FirstSprintStart     time.Time `json:"firstSprintStart"`
	DurationDays         int32     `json:"durationDays"`
	DefaultVelocity      float64   `json:"defaultVelocity"`
	StartingSprintNumber int32     `json:"startingSprintNumber"` // 第一个季度内的起始编号
}
