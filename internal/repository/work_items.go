package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

// loadWorkItemChildren 把技能、依赖和迭代分配挂到对应的工作项上
func (r *Repository) loadWorkItemChildren(ctx context.Context, itemsByID map[int64]*domain.WorkItem) error {
	rows, err := r.dbpool.QueryContext(ctx, `SELECT work_item_id, skill FROM work_item_skills ORDER BY work_item_id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var itemID int64
		var skill string
		if err := rows.Scan(&itemID, &skill); err != nil {
			return err
		}
		if item, exists := itemsByID[itemID]; exists {
			item.RequiredSkills = append(item.RequiredSkills, domain.Skill(skill))
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	depRows, err := r.dbpool.QueryContext(ctx, `SELECT work_item_id, depends_on_id FROM work_item_dependencies ORDER BY work_item_id, depends_on_id`)
	if err != nil {
		return err
	}
	defer depRows.Close()

	for depRows.Next() {
		var itemID, dependsOnID int64
		if err := depRows.Scan(&itemID, &dependsOnID); err != nil {
			return err
		}
		if item, exists := itemsByID[itemID]; exists {
			item.Dependencies = append(item.Dependencies, dependsOnID)
		}
	}
	if err := depRows.Err(); err != nil {
		return err
	}

	assignRows, err := r.dbpool.QueryContext(ctx, `SELECT work_item_id, sprint_id FROM work_item_assignments ORDER BY work_item_id, sprint_id`)
	if err != nil {
		return err
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var itemID, sprintID int64
		if err := assignRows.Scan(&itemID, &sprintID); err != nil {
			return err
		}
		if item, exists := itemsByID[itemID]; exists {
			item.AssignedSprints = append(item.AssignedSprints, sprintID)
		}
	}

	return assignRows.Err()
}

func scanWorkItem(item *domain.WorkItem) []any {
	return []any{
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Estimate,
		&item.RequiredCompletionDate,
		&item.Status,
		&item.IsEpic,
		&item.ParentID,
		&item.CreatedAt,
		&item.Version,
	}
}

func (r *Repository) GetAllWorkItems() ([]*domain.WorkItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, title, description, estimate, required_completion_date, status, is_epic, parent_id, created_at, version
		FROM work_items
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.WorkItem{}
	itemsByID := make(map[int64]*domain.WorkItem)

	for rows.Next() {
		var item domain.WorkItem
		if err := rows.Scan(scanWorkItem(&item)...); err != nil {
			return nil, err
		}

		item.RequiredSkills = []domain.Skill{}
		item.Dependencies = []int64{}
		item.AssignedSprints = []int64{}
		items = append(items, &item)
		itemsByID[item.ID] = &item
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadWorkItemChildren(ctx, itemsByID); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) GetWorkItemByID(id int64) (*domain.WorkItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, title, description, estimate, required_completion_date, status, is_epic, parent_id, created_at, version
		FROM work_items
		WHERE id = $1
	`

	item := &domain.WorkItem{
		RequiredSkills:  []domain.Skill{},
		Dependencies:    []int64{},
		AssignedSprints: []int64{},
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(scanWorkItem(item)...); err != nil {
		return nil, err
	}

	if err := r.loadWorkItemChildren(ctx, map[int64]*domain.WorkItem{id: item}); err != nil {
		return nil, err
	}

	return item, nil
}

func (r *Repository) CreateWorkItem(item *domain.WorkItem) error {
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
		INSERT INTO work_items (title, description, estimate, required_completion_date, status, is_epic, parent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`
	params := []any{item.Title, item.Description, item.Estimate, item.RequiredCompletionDate, string(item.Status), item.IsEpic, item.ParentID}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&item.ID, &item.CreatedAt, &item.Version); err != nil {
		return err
	}

	for _, skill := range item.RequiredSkills {
		if _, err := tx.ExecContext(ctx, `INSERT INTO work_item_skills (work_item_id, skill) VALUES ($1, $2)`, item.ID, string(skill)); err != nil {
			return err
		}
	}
	for _, dependsOnID := range item.Dependencies {
		if _, err := tx.ExecContext(ctx, `INSERT INTO work_item_dependencies (work_item_id, depends_on_id) VALUES ($1, $2)`, item.ID, dependsOnID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) UpdateWorkItem(item *domain.WorkItem) error {
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
		UPDATE work_items
		SET
			title = $1,
			description = $2,
			estimate = $3,
			required_completion_date = $4,
			status = $5,
			is_epic = $6,
			parent_id = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`
	params := []any{
		item.Title,
		item.Description,
		item.Estimate,
		item.RequiredCompletionDate,
		string(item.Status),
		item.IsEpic,
		item.ParentID,
		item.ID,
		item.Version,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&item.Version); err != nil {
		return err
	}

	// 技能与依赖集合整体替换
	if _, err := tx.ExecContext(ctx, `DELETE FROM work_item_skills WHERE work_item_id = $1`, item.ID); err != nil {
		return err
	}
	for _, skill := range item.RequiredSkills {
		if _, err := tx.ExecContext(ctx, `INSERT INTO work_item_skills (work_item_id, skill) VALUES ($1, $2)`, item.ID, string(skill)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM work_item_dependencies WHERE work_item_id = $1`, item.ID); err != nil {
		return err
	}
	for _, dependsOnID := range item.Dependencies {
		if _, err := tx.ExecContext(ctx, `INSERT INTO work_item_dependencies (work_item_id, depends_on_id) VALUES ($1, $2)`, item.ID, dependsOnID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) DeleteWorkItem(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `DELETE FROM work_items WHERE id = $1`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

// SaveAssignments 用一次自动排期的结果整体替换分配表
func (r *Repository) SaveAssignments(items []*domain.WorkItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM work_item_assignments`); err != nil {
		return err
	}

	query := `INSERT INTO work_item_assignments (work_item_id, sprint_id) VALUES ($1, $2)`
	for _, item := range items {
		for _, sprintID := range item.AssignedSprints {
			if _, err := tx.ExecContext(ctx, query, item.ID, sprintID); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// AssignWorkItemToSprint 手工把一个工作项分配进迭代。
// 一个工作项同一时刻最多属于一个迭代，旧的分配在同一个事务里先被移除
func (r *Repository) AssignWorkItemToSprint(itemID int64, sprintID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM work_item_assignments WHERE work_item_id = $1`, itemID); err != nil {
		return err
	}

	query := `INSERT INTO work_item_assignments (work_item_id, sprint_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, query, itemID, sprintID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) ClearAllAssignments() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, `DELETE FROM work_item_assignments`); err != nil {
		return err
	}

	return nil
}
