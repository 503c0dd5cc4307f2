package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/planner"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/seed"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var firstSprintStart string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机成员, 2: 插入随机公共假期, 3: 生成迭代序列, 4: 插入随机工作项, 5: 插入演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&firstSprintStart, "first-sprint-start", "", "迭代序列的起始日期 (YYYY-MM-DD)，默认为今天")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的成员数量")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			member := utils.GenerateRandomTeamMember(cfg.Seed.EmailDomain)
			if err := repo.CreateTeamMember(member); err != nil {
				slog.Error("无法插入成员", slog.String("error", err.Error()))
				continue
			}
			cnt--
		}

		slog.Info("插入成员成功", slog.Int("count", n-cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的假期数量")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			holiday := utils.GenerateRandomPublicHoliday()
			if err := repo.CreatePublicHoliday(holiday); err != nil {
				slog.Error("无法插入公共假期", slog.String("error", err.Error()))
				continue
			}
			cnt--
		}

		slog.Info("插入公共假期成功", slog.Int("count", n-cnt))
	case 3:
		start := time.Now()
		if firstSprintStart != "" {
			parsed, err := time.Parse("2006-01-02", firstSprintStart)
			if err != nil {
				slog.Error("起始日期格式无效", slog.String("value", firstSprintStart))
				return
			}
			start = parsed
		}

		sprintCfg := &domain.SprintConfig{
			FirstSprintStart:     start,
			DurationDays:         cfg.Seed.SprintDurationDays,
			DefaultVelocity:      cfg.Seed.DefaultVelocity,
			StartingSprintNumber: cfg.Seed.StartingSprintNumber,
		}
		if err := utils.ValidateSprintConfig(sprintCfg); err != nil {
			slog.Error("迭代配置非法", slog.String("error", err.Error()))
			return
		}

		sprints := planner.GenerateSprints(sprintCfg)
		if err := repo.CreateSprints(sprints); err != nil {
			slog.Error("无法插入迭代序列", slog.String("error", err.Error()))
			return
		}

		slog.Info("生成迭代序列成功", slog.Int("count", len(sprints)))
	case 4:
		if n <= 0 {
			slog.Error("请输入合法的工作项数量")
			return
		}

		existing, err := repo.GetAllWorkItems()
		if err != nil {
			slog.Error("无法获取已有的工作项", slog.String("error", err.Error()))
			return
		}
		existingIDs := make([]int64, 0, len(existing))
		for _, item := range existing {
			existingIDs = append(existingIDs, item.ID)
		}

		cnt := n
		for i := 0; i < n; i++ {
			item := utils.GenerateRandomWorkItem(existingIDs)
			if err := repo.CreateWorkItem(item); err != nil {
				slog.Error("无法插入工作项", slog.String("error", err.Error()))
				continue
			}
			existingIDs = append(existingIDs, item.ID)
			cnt--
		}

		slog.Info("插入工作项成功", slog.Int("count", n-cnt))
	case 5:
		seed.SeedDemoData(repo, cfg)
	default:
		slog.Error("指定的操作非法")
	}
}
