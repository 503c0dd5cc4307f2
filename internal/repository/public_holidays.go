package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

func (r *Repository) GetAllPublicHolidays() ([]*domain.PublicHoliday, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, date, name, impact_percentage, created_at, version
		FROM public_holidays
		ORDER BY date
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := []*domain.PublicHoliday{}
	for rows.Next() {
		var holiday domain.PublicHoliday
		dst := []any{
			&holiday.ID,
			&holiday.Date,
			&holiday.Name,
			&holiday.ImpactPercentage,
			&holiday.CreatedAt,
			&holiday.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		holidays = append(holidays, &holiday)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}

func (r *Repository) GetPublicHolidayByID(id int64) (*domain.PublicHoliday, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT date, name, impact_percentage, created_at, version
		FROM public_holidays
		WHERE id = $1
	`

	holiday := &domain.PublicHoliday{ID: id}
	dst := []any{
		&holiday.Date,
		&holiday.Name,
		&holiday.ImpactPercentage,
		&holiday.CreatedAt,
		&holiday.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return holiday, nil
}

func (r *Repository) CreatePublicHoliday(holiday *domain.PublicHoliday) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO public_holidays (date, name, impact_percentage)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	params := []any{holiday.Date, holiday.Name, holiday.ImpactPercentage}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&holiday.ID, &holiday.CreatedAt, &holiday.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdatePublicHoliday(holiday *domain.PublicHoliday) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE public_holidays
		SET
			date = $1,
			name = $2,
			impact_percentage = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	params := []any{holiday.Date, holiday.Name, holiday.ImpactPercentage, holiday.ID, holiday.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&holiday.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePublicHoliday(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `DELETE FROM public_holidays WHERE id = $1`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
