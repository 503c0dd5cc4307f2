package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

func (h *Handler) GetAllPublicHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.repository.GetAllPublicHolidays()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有公共假期成功", holidays)
}

func (h *Handler) CreatePublicHoliday(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date             string `json:"date" validate:"required"`
		Name             string `json:"name" validate:"required"`
		ImpactPercentage int32  `json:"impactPercentage" validate:"gte=0,lte=100"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	holiday := &domain.PublicHoliday{
		Date:             date,
		Name:             req.Name,
		ImpactPercentage: req.ImpactPercentage,
	}

	if err := h.repository.CreatePublicHoliday(holiday); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "public_holidays_date_key":
				h.errorResponse(w, r, "该日期已存在公共假期")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateCapacityCache(r)
	h.successResponse(w, r, "创建公共假期成功", holiday)
}

func (h *Handler) GetPublicHoliday(w http.ResponseWriter, r *http.Request) {
	holiday := r.Context().Value(PublicHolidayCtx).(*domain.PublicHoliday)

	h.successResponse(w, r, "获取公共假期成功", holiday)
}

func (h *Handler) UpdatePublicHoliday(w http.ResponseWriter, r *http.Request) {
	holiday := r.Context().Value(PublicHolidayCtx).(*domain.PublicHoliday)

	var req struct {
		Date             *string `json:"date"`
		Name             *string `json:"name"`
		ImpactPercentage *int32  `json:"impactPercentage" validate:"omitempty,gte=0,lte=100"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		holiday.Date = date
	}
	if req.Name != nil {
		holiday.Name = *req.Name
	}
	if req.ImpactPercentage != nil {
		holiday.ImpactPercentage = *req.ImpactPercentage
	}

	if err := h.repository.UpdatePublicHoliday(holiday); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "public_holidays_date_key":
				h.errorResponse(w, r, "该日期已存在公共假期")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateCapacityCache(r)
	h.successResponse(w, r, "更新公共假期成功", holiday)
}

func (h *Handler) DeletePublicHoliday(w http.ResponseWriter, r *http.Request) {
	holiday := r.Context().Value(PublicHolidayCtx).(*domain.PublicHoliday)

	if err := h.repository.DeletePublicHoliday(holiday.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateCapacityCache(r)
	h.successResponse(w, r, "删除公共假期成功", nil)
}
