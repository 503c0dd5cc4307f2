package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/planner"
)

// CapacityReport 是单个迭代的容量报告
type CapacityReport struct {
	Aggregate float64 `json:"aggregate"`
	Frontend  float64 `json:"frontend"`
	Backend   float64 `json:"backend"`
	Total     float64 `json:"total"`
}

func capacityCacheKey(sprintID int64) string {
	return "capacity_" + strconv.FormatInt(sprintID, 10)
}

// invalidateCapacityCache 在成员、假期或迭代发生变化后清理容量缓存
func (h *Handler) invalidateCapacityCache(r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	keys, err := h.redisClient.Keys(ctx, "capacity_*").Result()
	if err != nil {
		slog.Error("清理容量缓存失败", "path", r.URL.Path, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := h.redisClient.Del(ctx, keys...).Err(); err != nil {
		slog.Error("清理容量缓存失败", "path", r.URL.Path, "error", err)
	}
}

// GetSprintCapacity 计算迭代的容量报告，结果在 redis 中缓存一段时间
func (h *Handler) GetSprintCapacity(w http.ResponseWriter, r *http.Request) {
	sprint := r.Context().Value(SprintCtx).(*domain.Sprint)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	cacheKey := capacityCacheKey(sprint.ID)
	cached, err := h.redisClient.Get(ctx, cacheKey).Result()
	if err == nil {
		var report CapacityReport
		if err := json.Unmarshal([]byte(cached), &report); err == nil {
			h.successResponse(w, r, "获取迭代容量成功", report)
			return
		}
	} else if !errors.Is(err, redis.Nil) {
		// 缓存不可用时退化为直接计算
		slog.Error("读取容量缓存失败", "sprintID", sprint.ID, "error", err)
	}

	members, err := h.repository.GetAllTeamMembers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	holidays, err := h.repository.GetAllPublicHolidays()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	report := CapacityReport{
		Aggregate: planner.SprintCapacity(sprint, members, holidays),
		Frontend:  planner.SprintSkillCapacity(sprint, members, holidays, domain.SkillFrontend),
		Backend:   planner.SprintSkillCapacity(sprint, members, holidays, domain.SkillBackend),
	}
	report.Total = report.Frontend + report.Backend

	if data, err := json.Marshal(report); err == nil {
		expiration := time.Duration(h.config.Capacity.CacheExpiration) * time.Second
		if err := h.redisClient.Set(ctx, cacheKey, data, expiration).Err(); err != nil {
			slog.Error("写入容量缓存失败", "sprintID", sprint.ID, "error", err)
		}
	}

	h.successResponse(w, r, "获取迭代容量成功", report)
}

func (h *Handler) loadPlanningInputs(w http.ResponseWriter, r *http.Request) ([]*domain.WorkItem, []*domain.Sprint, []*domain.TeamMember, []*domain.PublicHoliday, bool) {
	items, err := h.repository.GetAllWorkItems()
	if err != nil {
		h.internalServerError(w, r, err)
		return nil, nil, nil, nil, false
	}
	sprints, err := h.repository.GetAllSprints()
	if err != nil {
		h.internalServerError(w, r, err)
		return nil, nil, nil, nil, false
	}
	members, err := h.repository.GetAllTeamMembers()
	if err != nil {
		h.internalServerError(w, r, err)
		return nil, nil, nil, nil, false
	}
	holidays, err := h.repository.GetAllPublicHolidays()
	if err != nil {
		h.internalServerError(w, r, err)
		return nil, nil, nil, nil, false
	}
	return items, sprints, members, holidays, true
}

// AutoAssignWorkItems 对所有未完成的工作项做一次全量重排
func (h *Handler) AutoAssignWorkItems(w http.ResponseWriter, r *http.Request) {
	items, sprints, members, holidays, ok := h.loadPlanningInputs(w, r)
	if !ok {
		return
	}

	result := planner.AutoAssign(items, sprints, members, holidays)

	if err := h.repository.SaveAssignments(result.Items); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.invalidateCapacityCache(r)
	h.notifyPlanPublished(r, members, result)

	h.successResponse(w, r, "自动排期成功", result)
}

// AssignWorkItem 手工把一个工作项分配进指定迭代，依赖或容量不足时拒绝
func (h *Handler) AssignWorkItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(WorkItemCtx).(*domain.WorkItem)

	var req struct {
		SprintID int64 `json:"sprintId" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	items, sprints, members, holidays, ok := h.loadPlanningInputs(w, r)
	if !ok {
		return
	}

	var target *domain.Sprint
	for _, sprint := range sprints {
		if sprint.ID == req.SprintID {
			target = sprint
			break
		}
	}
	if target == nil {
		h.errorResponse(w, r, "迭代不存在")
		return
	}

	// 以全量数据中的实例为准，保证容量检查看到的分配是最新的
	var current *domain.WorkItem
	for _, candidate := range items {
		if candidate.ID == item.ID {
			current = candidate
			break
		}
	}
	if current == nil {
		h.errorResponse(w, r, "工作项不存在")
		return
	}

	if err := planner.AssignWorkItem(current, target, items, sprints, members, holidays); err != nil {
		var capacityErr *planner.CapacityShortfallError
		var dependencyErr *planner.DependencyShortfallError
		switch {
		case errors.As(err, &capacityErr), errors.As(err, &dependencyErr):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.AssignWorkItemToSprint(current.ID, target.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "分配工作项成功", current)
}

// ClearAssignments 清空所有工作项的迭代分配
func (h *Handler) ClearAssignments(w http.ResponseWriter, r *http.Request) {
	if err := h.repository.ClearAllAssignments(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "清空排期成功", nil)
}

// notifyPlanPublished 在全量重排后给每个成员发一封计划通知邮件
func (h *Handler) notifyPlanPublished(r *http.Request, members []*domain.TeamMember, result *planner.PlanResult) {
	unplacedTitles := make([]string, 0, len(result.Unplaced))
	for _, item := range result.Unplaced {
		unplacedTitles = append(unplacedTitles, item.Title)
	}

	for _, member := range members {
		mailMessage := domain.MailMessage{
			Type: "plan_published",
			To:   member.Email,
			Data: domain.PlanPublishedMailData{
				FullName:       member.Name,
				PlacedCount:    len(result.Items) - len(result.Unplaced),
				UnplacedCount:  len(result.Unplaced),
				UnplacedTitles: unplacedTitles,
			},
		}

		mailData, err := json.Marshal(mailMessage)
		if err != nil {
			slog.Error("序列化通知邮件失败", "email", member.Email, "error", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
		err = h.mailChannel.PublishWithContext(
			ctx,
			"",
			"notification_queue",
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        mailData,
			},
		)
		cancel()
		if err != nil {
			// 通知失败不影响排期结果
			slog.Error("发送通知邮件失败", "email", member.Email, "path", r.URL.Path, "error", err)
		}
	}
}
