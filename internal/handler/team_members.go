package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/utils"
)

// parseDate 解析请求中的日期字段，统一使用 2006-01-02 格式
func parseDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errors.New("日期格式无效，应为 YYYY-MM-DD")
	}
	return date, nil
}

func (h *Handler) GetAllTeamMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.repository.GetAllTeamMembers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有成员成功", members)
}

func (h *Handler) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name               string   `json:"name" validate:"required"`
		Email              string   `json:"email" validate:"required,email"`
		CapacityPercentage int32    `json:"capacityPercentage"`
		Skills             []string `json:"skills" validate:"required,dive,oneof=frontend backend"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	member := &domain.TeamMember{
		Name:               req.Name,
		Email:              req.Email,
		CapacityPercentage: utils.ClampCapacityPercentage(req.CapacityPercentage),
		Skills:             make([]domain.Skill, 0, len(req.Skills)),
		PersonalHolidays:   []domain.PersonalHoliday{},
	}
	for _, skill := range req.Skills {
		member.Skills = append(member.Skills, domain.Skill(skill))
	}

	if err := utils.ValidateSkills(member.Skills); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateTeamMember(member); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "team_members_email_key":
				h.errorResponse(w, r, "邮箱已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateCapacityCache(r)
	h.successResponse(w, r, "创建成员成功", member)
}

func (h *Handler) GetTeamMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(TeamMemberCtx).(*domain.TeamMember)

	h.successResponse(w, r, "获取成员成功", member)
}

func (h *Handler) UpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(TeamMemberCtx).(*domain.TeamMember)

	var req struct {
		Name               *string   `json:"name"`
		Email              *string   `json:"email" validate:"omitempty,email"`
		CapacityPercentage *int32    `json:"capacityPercentage"`
		Skills             *[]string `json:"skills" validate:"omitempty,dive,oneof=frontend backend"`
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
		member.Name = *req.Name
	}
	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.CapacityPercentage != nil {
		member.CapacityPercentage = utils.ClampCapacityPercentage(*req.CapacityPercentage)
	}
	if req.Skills != nil {
		member.Skills = make([]domain.Skill, 0, len(*req.Skills))
		for _, skill := range *req.Skills {
			member.Skills = append(member.Skills, domain.Skill(skill))
		}
		if err := utils.ValidateSkills(member.Skills); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}

	if err := h.repository.UpdateTeamMember(member); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "team_members_email_key":
				h.errorResponse(w, r, "邮箱已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateCapacityCache(r)
	h.successResponse(w, r, "更新成员成功", member)
}

func (h *Handler) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(TeamMemberCtx).(*domain.TeamMember)

	if err := h.repository.DeleteTeamMember(member.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateCapacityCache(r)
	h.successResponse(w, r, "删除成员成功", nil)
}

func (h *Handler) AddPersonalHoliday(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(TeamMemberCtx).(*domain.TeamMember)

	var req struct {
		StartDate   string `json:"startDate" validate:"required"`
		EndDate     string `json:"endDate" validate:"required"`
		Description string `json:"description"`
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

	holiday := &domain.PersonalHoliday{
		StartDate:   startDate,
		EndDate:     endDate,
		Description: req.Description,
	}
	if err := utils.ValidatePersonalHoliday(holiday); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.AddPersonalHoliday(member.ID, holiday); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateCapacityCache(r)
	h.successResponse(w, r, "添加个人休假成功", holiday)
}

func (h *Handler) DeletePersonalHoliday(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(TeamMemberCtx).(*domain.TeamMember)

	holidayIDParam := chi.URLParam(r, "holidayID")
	holidayID, err := strconv.ParseInt(holidayIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "休假ID无效")
		return
	}

	if err := h.repository.DeletePersonalHoliday(member.ID, holidayID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateCapacityCache(r)
	h.successResponse(w, r, "删除个人休假成功", nil)
}
