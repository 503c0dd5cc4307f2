package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/planner"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/utils"
)

func (h *Handler) GetAllWorkItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repository.GetAllWorkItems()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有工作项成功", items)
}

// GetBlockedWorkItems 返回依赖未满足的工作项，方便站会上排查阻塞
func (h *Handler) GetBlockedWorkItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repository.GetAllWorkItems()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	byID := make(map[int64]*domain.WorkItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	blocked, _ := planner.PartitionBlocked(items, byID)
	h.successResponse(w, r, "获取受阻工作项成功", blocked)
}

func (h *Handler) CreateWorkItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title                  string   `json:"title" validate:"required"`
		Description            string   `json:"description"`
		Estimate               float64  `json:"estimate" validate:"gt=0"`
		RequiredCompletionDate string   `json:"requiredCompletionDate" validate:"required"`
		RequiredSkills         []string `json:"requiredSkills" validate:"omitempty,dive,oneof=frontend backend"`
		Dependencies           []int64  `json:"dependencies"`
		IsEpic                 bool     `json:"isEpic"`
		ParentID               *int64   `json:"parentId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	deadline, err := parseDate(req.RequiredCompletionDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	item := &domain.WorkItem{
		Title:                  req.Title,
		Description:            req.Description,
		Estimate:               req.Estimate,
		RequiredCompletionDate: deadline,
		Dependencies:           req.Dependencies,
		Status:                 domain.StatusNotStarted,
		AssignedSprints:        []int64{},
		IsEpic:                 req.IsEpic,
		ParentID:               req.ParentID,
	}
	if item.Dependencies == nil {
		item.Dependencies = []int64{}
	}

	// 客户端没有指定技能时根据标题和描述推断
	if len(req.RequiredSkills) > 0 {
		item.RequiredSkills = make([]domain.Skill, 0, len(req.RequiredSkills))
		for _, skill := range req.RequiredSkills {
			item.RequiredSkills = append(item.RequiredSkills, domain.Skill(skill))
		}
	} else {
		item.RequiredSkills = utils.DetectSkills(req.Title, req.Description)
	}

	if err := utils.ValidateWorkItem(item); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateWorkItem(item); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "work_item_dependencies_depends_on_id_fkey":
				h.errorResponse(w, r, "依赖的工作项不存在")
			case "work_items_parent_id_fkey":
				h.errorResponse(w, r, "父级工作项不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建工作项成功", item)
}

func (h *Handler) GetWorkItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(WorkItemCtx).(*domain.WorkItem)

	h.successResponse(w, r, "获取工作项成功", item)
}

func (h *Handler) UpdateWorkItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(WorkItemCtx).(*domain.WorkItem)

	var req struct {
		Title                  *string   `json:"title"`
		Description            *string   `json:"description"`
		Estimate               *float64  `json:"estimate" validate:"omitempty,gt=0"`
		RequiredCompletionDate *string   `json:"requiredCompletionDate"`
		RequiredSkills         *[]string `json:"requiredSkills" validate:"omitempty,dive,oneof=frontend backend"`
		Dependencies           *[]int64  `json:"dependencies"`
		Status                 *string   `json:"status"`
		IsEpic                 *bool     `json:"isEpic"`
		ParentID               *int64    `json:"parentId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Estimate != nil {
		item.Estimate = *req.Estimate
	}
	if req.RequiredCompletionDate != nil {
		deadline, err := parseDate(*req.RequiredCompletionDate)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		item.RequiredCompletionDate = deadline
	}
	if req.RequiredSkills != nil {
		item.RequiredSkills = make([]domain.Skill, 0, len(*req.RequiredSkills))
		for _, skill := range *req.RequiredSkills {
			item.RequiredSkills = append(item.RequiredSkills, domain.Skill(skill))
		}
	}
	if req.Dependencies != nil {
		item.Dependencies = *req.Dependencies
	}
	if req.Status != nil {
		status := domain.WorkItemStatus(*req.Status)
		if err := utils.ValidateWorkItemStatus(status); err != nil {
			h.badRequest(w, r, err)
			return
		}
		item.Status = status
	}
	if req.IsEpic != nil {
		item.IsEpic = *req.IsEpic
	}
	if req.ParentID != nil {
		item.ParentID = req.ParentID
	}

	if err := utils.ValidateWorkItem(item); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateWorkItem(item); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "work_item_dependencies_depends_on_id_fkey":
				h.errorResponse(w, r, "依赖的工作项不存在")
			case "work_items_parent_id_fkey":
				h.errorResponse(w, r, "父级工作项不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新工作项成功", item)
}

func (h *Handler) DeleteWorkItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(WorkItemCtx).(*domain.WorkItem)

	if err := h.repository.DeleteWorkItem(item.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "work_item_dependencies_depends_on_id_fkey":
				h.errorResponse(w, r, "该工作项被其他工作项依赖，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除工作项成功", nil)
}

// GetWorkItemChildren 返回以该工作项为父级的所有子项（用于史诗下钻）
func (h *Handler) GetWorkItemChildren(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(WorkItemCtx).(*domain.WorkItem)

	items, err := h.repository.GetAllWorkItems()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	children := []*domain.WorkItem{}
	for _, candidate := range items {
		if candidate.ParentID != nil && *candidate.ParentID == item.ID {
			children = append(children, candidate)
		}
	}

	h.successResponse(w, r, "获取子工作项成功", children)
}

func (h *Handler) GetWorkItemDependencyChain(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(WorkItemCtx).(*domain.WorkItem)

	items, err := h.repository.GetAllWorkItems()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	byID := make(map[int64]*domain.WorkItem, len(items))
	for _, candidate := range items {
		byID[candidate.ID] = candidate
	}

	chain := planner.DependencyChain(item, byID)
	h.successResponse(w, r, "获取依赖链成功", chain)
}
