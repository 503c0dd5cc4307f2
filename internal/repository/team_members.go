package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

// loadMemberSkills 把技能表中的记录挂到对应的成员上
func (r *Repository) loadMemberSkills(ctx context.Context, membersByID map[int64]*domain.TeamMember) error {
	query := `SELECT member_id, skill FROM team_member_skills ORDER BY member_id`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var memberID int64
		var skill string
		if err := rows.Scan(&memberID, &skill); err != nil {
			return err
		}
		if member, exists := membersByID[memberID]; exists {
			member.Skills = append(member.Skills, domain.Skill(skill))
		}
	}

	return rows.Err()
}

// loadMemberHolidays 把个人休假表中的记录挂到对应的成员上
func (r *Repository) loadMemberHolidays(ctx context.Context, membersByID map[int64]*domain.TeamMember) error {
	query := `
		SELECT id, member_id, start_date, end_date, description
		FROM personal_holidays
		ORDER BY member_id, start_date
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var memberID int64
		var holiday domain.PersonalHoliday
		if err := rows.Scan(&holiday.ID, &memberID, &holiday.StartDate, &holiday.EndDate, &holiday.Description); err != nil {
			return err
		}
		if member, exists := membersByID[memberID]; exists {
			member.PersonalHolidays = append(member.PersonalHolidays, holiday)
		}
	}

	return rows.Err()
}

func (r *Repository) GetAllTeamMembers() ([]*domain.TeamMember, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, name, email, capacity_percentage, created_at, version
		FROM team_members
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*domain.TeamMember{}
	membersByID := make(map[int64]*domain.TeamMember)

	for rows.Next() {
		var member domain.TeamMember
		dst := []any{
			&member.ID,
			&member.Name,
			&member.Email,
			&member.CapacityPercentage,
			&member.CreatedAt,
			&member.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		member.Skills = []domain.Skill{}
		member.PersonalHolidays = []domain.PersonalHoliday{}
		members = append(members, &member)
		membersByID[member.ID] = &member
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadMemberSkills(ctx, membersByID); err != nil {
		return nil, err
	}
	if err := r.loadMemberHolidays(ctx, membersByID); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *Repository) GetTeamMemberByID(id int64) (*domain.TeamMember, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT name, email, capacity_percentage, created_at, version
		FROM team_members
		WHERE id = $1
	`

	member := &domain.TeamMember{
		ID:               id,
		Skills:           []domain.Skill{},
		PersonalHolidays: []domain.PersonalHoliday{},
	}

	dst := []any{
		&member.Name,
		&member.Email,
		&member.CapacityPercentage,
		&member.CreatedAt,
		&member.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	membersByID := map[int64]*domain.TeamMember{id: member}
	if err := r.loadMemberSkills(ctx, membersByID); err != nil {
		return nil, err
	}
	if err := r.loadMemberHolidays(ctx, membersByID); err != nil {
		return nil, err
	}

	return member, nil
}

func (r *Repository) CreateTeamMember(member *domain.TeamMember) error {
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
		INSERT INTO team_members (name, email, capacity_percentage)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`
	params := []any{member.Name, member.Email, member.CapacityPercentage}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&member.ID, &member.CreatedAt, &member.Version); err != nil {
		return err
	}

	for _, skill := range member.Skills {
		query = `INSERT INTO team_member_skills (member_id, skill) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, query, member.ID, string(skill)); err != nil {
			return err
		}
	}

	for i := range member.PersonalHolidays {
		query = `
			INSERT INTO personal_holidays (member_id, start_date, end_date, description)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		holiday := &member.PersonalHolidays[i]
		params = []any{member.ID, holiday.StartDate, holiday.EndDate, holiday.Description}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&holiday.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) UpdateTeamMember(member *domain.TeamMember) error {
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
		UPDATE team_members
		SET
			name = $1,
			email = $2,
			capacity_percentage = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`
	params := []any{member.Name, member.Email, member.CapacityPercentage, member.ID, member.Version}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&member.Version); err != nil {
		return err
	}

	// 技能集合整体替换，避免做细粒度的差量更新
	if _, err := tx.ExecContext(ctx, `DELETE FROM team_member_skills WHERE member_id = $1`, member.ID); err != nil {
		return err
	}
	for _, skill := range member.Skills {
		if _, err := tx.ExecContext(ctx, `INSERT INTO team_member_skills (member_id, skill) VALUES ($1, $2)`, member.ID, string(skill)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) DeleteTeamMember(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `DELETE FROM team_members WHERE id = $1`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) AddPersonalHoliday(memberID int64, holiday *domain.PersonalHoliday) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO personal_holidays (member_id, start_date, end_date, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	params := []any{memberID, holiday.StartDate, holiday.EndDate, holiday.Description}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&holiday.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePersonalHoliday(memberID int64, holidayID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `DELETE FROM personal_holidays WHERE id = $1 AND member_id = $2`

	if _, err := r.dbpool.ExecContext(ctx, query, holidayID, memberID); err != nil {
		return err
	}

	return nil
}
