package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danqs/tax-engine/internal/domain"
)

type ruleRepository struct {
	db *sqlx.DB
}

func NewRuleRepository(db *sqlx.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Create(ctx context.Context, rule *domain.TaxRule) error {
	query := `
		INSERT INTO tax_rules (id, category, type, year, fixed_amount, percentage_rate, brackets, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.Category,
		rule.Type,
		rule.Year,
		rule.FixedAmount,
		rule.PercentageRate,
		rule.Brackets,
		rule.Active,
		rule.CreatedAt,
		rule.UpdatedAt,
	)

	return err
}

func (r *ruleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxRule, error) {
	query := `
		SELECT id, category, type, year, fixed_amount, percentage_rate, brackets, active, created_at, updated_at
		FROM tax_rules
		WHERE id = $1
	`

	var rule domain.TaxRule
	err := r.db.GetContext(ctx, &rule, query, id)
	if err != nil {
		return nil, err
	}

	return &rule, nil
}

func (r *ruleRepository) GetActive(ctx context.Context, category string, year int) (*domain.TaxRule, error) {
	query := `
		SELECT id, category, type, year, fixed_amount, percentage_rate, brackets, active, created_at, updated_at
		FROM tax_rules
		WHERE LOWER(category) = LOWER($1) AND year = $2 AND active = true
	`

	var rule domain.TaxRule
	err := r.db.GetContext(ctx, &rule, query, category, year)
	if err != nil {
		return nil, err
	}

	return &rule, nil
}

func (r *ruleRepository) List(ctx context.Context) ([]*domain.TaxRule, error) {
	query := `
		SELECT id, category, type, year, fixed_amount, percentage_rate, brackets, active, created_at, updated_at
		FROM tax_rules
		ORDER BY year DESC, category
	`

	var rules []*domain.TaxRule
	err := r.db.SelectContext(ctx, &rules, query)
	if err != nil {
		return nil, err
	}

	return rules, nil
}

func (r *ruleRepository) Update(ctx context.Context, rule *domain.TaxRule) error {
	query := `
		UPDATE tax_rules
		SET type = $2, fixed_amount = $3, percentage_rate = $4, brackets = $5, active = $6, updated_at = $7
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.Type,
		rule.FixedAmount,
		rule.PercentageRate,
		rule.Brackets,
		rule.Active,
		time.Now(),
	)

	return err
}

func (r *ruleRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE tax_rules
		SET active = false, updated_at = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	return err
}
