package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

// loadSprintWorkItems 把分配表中的记录挂到对应的迭代上
func (r *Repository) loadSprintWorkItems(ctx context.Context, sprintsByID map[int64]*domain.Sprint) error {
	query := `SELECT sprint_id, work_item_id FROM work_item_assignments ORDER BY sprint_id, work_item_id`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sprintID, workItemID int64
		if err := rows.Scan(&sprintID, &workItemID); err != nil {
			return err
		}
		if sprint, exists := sprintsByID[sprintID]; exists {
			sprint.WorkItemIDs = append(sprint.WorkItemIDs, workItemID)
		}
	}

	return rows.Err()
}

func (r *Repository) GetAllSprints() ([]*domain.Sprint, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, name, start_date, end_date, planned_velocity, created_at, version
		FROM sprints
		ORDER BY start_date
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sprints := []*domain.Sprint{}
	sprintsByID := make(map[int64]*domain.Sprint)

	for rows.Next() {
		var sprint domain.Sprint
		dst := []any{
			&sprint.ID,
			&sprint.Name,
			&sprint.StartDate,
			&sprint.EndDate,
			&sprint.PlannedVelocity,
			&sprint.CreatedAt,
			&sprint.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		sprint.WorkItemIDs = []int64{}
		sprints = append(sprints, &sprint)
		sprintsByID[sprint.ID] = &sprint
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadSprintWorkItems(ctx, sprintsByID); err != nil {
		return nil, err
	}

	return sprints, nil
}

func (r *Repository) GetSprintByID(id int64) (*domain.Sprint, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT name, start_date, end_date, planned_velocity, created_at, version
		FROM sprints
		WHERE id = $1
	`

	sprint := &domain.Sprint{ID: id, WorkItemIDs: []int64{}}
	dst := []any{
		&sprint.Name,
		&sprint.StartDate,
		&sprint.EndDate,
		&sprint.PlannedVelocity,
		&sprint.CreatedAt,
		&sprint.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := r.loadSprintWorkItems(ctx, map[int64]*domain.Sprint{id: sprint}); err != nil {
		return nil, err
	}

	return sprint, nil
}

func (r *Repository) CreateSprint(sprint *domain.Sprint) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO sprints (name, start_date, end_date, planned_velocity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	params := []any{sprint.Name, sprint.StartDate, sprint.EndDate, sprint.PlannedVelocity}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&sprint.ID, &sprint.CreatedAt, &sprint.Version); err != nil {
		return err
	}

	return nil
}

// CreateSprints 在一个事务里批量插入生成器产出的迭代序列
func (r *Repository) CreateSprints(sprints []*domain.Sprint) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO sprints (name, start_date, end_date, planned_velocity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	for _, sprint := range sprints {
		params := []any{sprint.Name, sprint.StartDate, sprint.EndDate, sprint.PlannedVelocity}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&sprint.ID, &sprint.CreatedAt, &sprint.Version); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) UpdateSprint(sprint *domain.Sprint) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE sprints
		SET
			name = $1,
			start_date = $2,
			end_date = $3,
			planned_velocity = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	params := []any{sprint.Name, sprint.StartDate, sprint.EndDate, sprint.PlannedVelocity, sprint.ID, sprint.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&sprint.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSprint(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `DELETE FROM sprints WHERE id = $1`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
