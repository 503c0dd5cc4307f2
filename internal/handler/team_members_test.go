package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/handler"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var memberSchema = []string{
	`CREATE TABLE IF NOT EXISTS team_members (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		capacity_percentage INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		version INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS team_member_skills (
		member_id BIGINT NOT NULL REFERENCES team_members(id) ON DELETE CASCADE,
		skill TEXT NOT NULL,
		PRIMARY KEY (member_id, skill)
	)`,
	`CREATE TABLE IF NOT EXISTS personal_holidays (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		member_id BIGINT NOT NULL REFERENCES team_members(id) ON DELETE CASCADE,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
}

// newTestHandler 连接测试数据库和测试 redis 并组装 handler，
// 相关环境变量缺失时跳过用例
func newTestHandler(t *testing.T) (*handler.Handler, *sql.DB, *redis.Client) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("未设置 TEST_DATABASE_DSN，跳过集成测试")
	}
	redisAddr := os.Getenv("TEST_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("未设置 TEST_REDIS_ADDR，跳过集成测试")
	}

	dbpool, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("无法创建数据库连接池: %v", err)
	}
	t.Cleanup(func() {
		_ = dbpool.Close()
	})

	for _, stmt := range memberSchema {
		if _, err := dbpool.Exec(stmt); err != nil {
			t.Fatalf("无法准备表结构: %v", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 10
	cfg.Database.TransactionTimeout = 20
	cfg.Redis.ConnectTimeout = 10
	cfg.Capacity.CacheExpiration = 300

	repo := repository.NewRepository(cfg, dbpool)
	h, err := handler.NewHandler(cfg, repo, nil, rdb)
	if err != nil {
		t.Fatalf("无法创建 handler: %v", err)
	}
	h.RegisterRoutes()

	return h, dbpool, rdb
}

func doJSON(t *testing.T, h *handler.Handler, method, path, body string) handler.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("期望状态码 200，实际为 %d", rec.Code)
	}

	var resp handler.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("无法解析响应: %v", err)
	}
	return resp
}

func TestTeamMemberWritesInvalidateCapacityCache(t *testing.T) {
	h, dbpool, rdb := newTestHandler(t)
	ctx := context.Background()

	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("cache-test-%d@example.com", suffix)
	t.Cleanup(func() {
		_, _ = dbpool.Exec(`DELETE FROM team_members WHERE email = $1`, email)
	})

	cacheKey := fmt.Sprintf("capacity_%d", suffix)
	if err := rdb.Set(ctx, cacheKey, "stale", time.Minute).Err(); err != nil {
		t.Fatalf("无法写入缓存: %v", err)
	}

	// 新增成员会改变每个迭代的容量，缓存必须被清理
	body := fmt.Sprintf(`{"name":"缓存测试成员","email":%q,"capacityPercentage":80,"skills":["frontend"]}`, email)
	resp := doJSON(t, h, http.MethodPost, "/team-members", body)
	if !resp.Success {
		t.Fatalf("创建成员失败: %s", resp.Message)
	}
	if rdb.Exists(ctx, cacheKey).Val() != 0 {
		t.Fatalf("创建成员后容量缓存应被清理")
	}

	var memberID int64
	if err := dbpool.QueryRow(`SELECT id FROM team_members WHERE email = $1`, email).Scan(&memberID); err != nil {
		t.Fatalf("无法读取成员ID: %v", err)
	}

	// 修改成员投入度同样会改变容量
	if err := rdb.Set(ctx, cacheKey, "stale", time.Minute).Err(); err != nil {
		t.Fatalf("无法写入缓存: %v", err)
	}
	resp = doJSON(t, h, http.MethodPatch, fmt.Sprintf("/team-members/%d", memberID), `{"capacityPercentage":50}`)
	if !resp.Success {
		t.Fatalf("更新成员失败: %s", resp.Message)
	}
	if rdb.Exists(ctx, cacheKey).Val() != 0 {
		t.Fatalf("更新成员后容量缓存应被清理")
	}
}

func TestCreateTeamMemberClampsCapacityPercentage(t *testing.T) {
	h, dbpool, _ := newTestHandler(t)

	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("clamp-test-%d@example.com", suffix)
	t.Cleanup(func() {
		_, _ = dbpool.Exec(`DELETE FROM team_members WHERE email = $1`, email)
	})

	// 超出范围的投入度收敛到边界而不是被拒绝
	body := fmt.Sprintf(`{"name":"收敛测试成员","email":%q,"capacityPercentage":150,"skills":["backend"]}`, email)
	resp := doJSON(t, h, http.MethodPost, "/team-members", body)
	if !resp.Success {
		t.Fatalf("创建成员失败: %s", resp.Message)
	}

	var got int32
	if err := dbpool.QueryRow(`SELECT capacity_percentage FROM team_members WHERE email = $1`, email).Scan(&got); err != nil {
		t.Fatalf("无法读取成员投入度: %v", err)
	}
	if got != 100 {
		t.Fatalf("期望投入度收敛到 100，实际为 %d", got)
	}
}
