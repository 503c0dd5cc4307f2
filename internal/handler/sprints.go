package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/planner"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/utils"
)

func (h *Handler) GetAllSprints(w http.ResponseWriter, r *http.Request) {
	sprints, err := h.repository.GetAllSprints()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有迭代成功", sprints)
}

func (h *Handler) CreateSprint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string  `json:"name" validate:"required"`
		StartDate       string  `json:"startDate" validate:"required"`
		EndDate         string  `json:"endDate" validate:"required"`
		PlannedVelocity float64 `json:"plannedVelocity" validate:"gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	sprint := &domain.Sprint{
		Name:            req.Name,
		StartDate:       startDate,
		EndDate:         endDate,
		PlannedVelocity: req.PlannedVelocity,
		WorkItemIDs:     []int64{},
	}
	if err := utils.ValidateSprintInterval(sprint); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateSprint(sprint); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "sprints_name_key":
				h.errorResponse(w, r, "迭代名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建迭代成功", sprint)
}

// GenerateSprints 根据配置生成未来一年的迭代序列并入库
func (h *Handler) GenerateSprints(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstSprintStart     string  `json:"firstSprintStart" validate:"required"`
		DurationDays         int32   `json:"durationDays" validate:"required,gte=1"`
		DefaultVelocity      float64 `json:"defaultVelocity" validate:"gt=0"`
		StartingSprintNumber int32   `json:"startingSprintNumber" validate:"omitempty,gte=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	firstStart, err := parseDate(req.FirstSprintStart)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 不指定起始编号时从 1 开始
	startingNumber := req.StartingSprintNumber
	if startingNumber == 0 {
		startingNumber = 1
	}

	cfg := &domain.SprintConfig{
		FirstSprintStart:     firstStart,
		DurationDays:         req.DurationDays,
		DefaultVelocity:      req.DefaultVelocity,
		StartingSprintNumber: startingNumber,
	}
	if err := utils.ValidateSprintConfig(cfg); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sprints := planner.GenerateSprints(cfg)
	if err := h.repository.CreateSprints(sprints); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "sprints_name_key":
				h.errorResponse(w, r, "存在同名迭代，请先清理旧的迭代序列")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "生成迭代序列成功", sprints)
}

func (h *Handler) GetSprint(w http.ResponseWriter, r *http.Request) {
	sprint := r.Context().Value(SprintCtx).(*domain.Sprint)

	h.successResponse(w, r, "获取迭代成功", sprint)
}

func (h *Handler) UpdateSprint(w http.ResponseWriter, r *http.Request) {
	sprint := r.Context().Value(SprintCtx).(*domain.Sprint)

	var req struct {
		Name            *string  `json:"name"`
		StartDate       *string  `json:"startDate"`
		EndDate         *string  `json:"endDate"`
		PlannedVelocity *float64 `json:"plannedVelocity" validate:"omitempty,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		sprint.Name = *req.Name
	}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		sprint.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		sprint.EndDate = endDate
	}
	if req.PlannedVelocity != nil {
		sprint.PlannedVelocity = *req.PlannedVelocity
	}

	if err := utils.ValidateSprintInterval(sprint); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateSprint(sprint); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "sprints_name_key":
				h.errorResponse(w, r, "迭代名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateCapacityCache(r)
	h.successResponse(w, r, "更新迭代成功", sprint)
}

func (h *Handler) DeleteSprint(w http.ResponseWriter, r *http.Request) {
	sprint := r.Context().Value(SprintCtx).(*domain.Sprint)

	if err := h.repository.DeleteSprint(sprint.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "work_item_assignments_sprint_id_fkey":
				h.errorResponse(w, r, "该迭代下仍有工作项分配，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateCapacityCache(r)
	h.successResponse(w, r, "删除迭代成功", nil)
}
