package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) teamMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		memberIDParam := chi.URLParam(r, "id")
		memberID, err := strconv.ParseInt(memberIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "成员ID无效")
			return
		}

		member, err := h.repository.GetTeamMemberByID(memberID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "成员不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), TeamMemberCtx, member)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) publicHoliday(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holidayIDParam := chi.URLParam(r, "id")
		holidayID, err := strconv.ParseInt(holidayIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "假期ID无效")
			return
		}

		holiday, err := h.repository.GetPublicHolidayByID(holidayID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "假期不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), PublicHolidayCtx, holiday)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) sprint(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sprintIDParam := chi.URLParam(r, "id")
		sprintID, err := strconv.ParseInt(sprintIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "迭代ID无效")
			return
		}

		sprint, err := h.repository.GetSprintByID(sprintID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "迭代不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), SprintCtx, sprint)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) workItem(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		itemIDParam := chi.URLParam(r, "id")
		itemID, err := strconv.ParseInt(itemIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "工作项ID无效")
			return
		}

		item, err := h.repository.GetWorkItemByID(itemID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "工作项不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), WorkItemCtx, item)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
