package handler

type ContextKey string

var (
	TeamMemberCtx    ContextKey = "teamMember"
	PublicHolidayCtx ContextKey = "publicHoliday"
	SprintCtx        ContextKey = "sprint"
	WorkItemCtx      ContextKey = "workItem"
)
