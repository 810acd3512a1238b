package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

type MealRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewMealRepository(db *sql.DB, logger *slog.Logger) *MealRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MealRepository{db: db, logger: logger}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *MealRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS meals (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	day_id TEXT NOT NULL,
	category TEXT NOT NULL,
	photo_key TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	summary TEXT,
	raw_items JSONB NOT NULL DEFAULT '[]'::jsonb,
	calories DOUBLE PRECISION NOT NULL DEFAULT 0,
	protein DOUBLE PRECISION NOT NULL DEFAULT 0,
	carbs DOUBLE PRECISION NOT NULL DEFAULT 0,
	fat DOUBLE PRECISION NOT NULL DEFAULT 0,
	fiber DOUBLE PRECISION NOT NULL DEFAULT 0,
	sugar DOUBLE PRECISION NOT NULL DEFAULT 0,
	sodium DOUBLE PRECISION NOT NULL DEFAULT 0,
	confidence TEXT NOT NULL DEFAULT 'low',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS meal_items (
	id TEXT PRIMARY KEY,
	meal_id TEXT NOT NULL REFERENCES meals(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	quantity DOUBLE PRECISION NOT NULL DEFAULT 100,
	unit TEXT NOT NULL DEFAULT 'grams',
	calories DOUBLE PRECISION NOT NULL DEFAULT 0,
	protein DOUBLE PRECISION NOT NULL DEFAULT 0,
	carbs DOUBLE PRECISION NOT NULL DEFAULT 0,
	fat DOUBLE PRECISION NOT NULL DEFAULT 0,
	fiber DOUBLE PRECISION NOT NULL DEFAULT 0,
	sugar DOUBLE PRECISION NOT NULL DEFAULT 0,
	sodium DOUBLE PRECISION NOT NULL DEFAULT 0,
	source TEXT NOT NULL DEFAULT 'none',
	confidence TEXT NOT NULL DEFAULT 'low',
	needs_review BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_meals_user_day ON meals(user_id, day_id);
CREATE INDEX IF NOT EXISTS idx_meals_status ON meals(status);
CREATE INDEX IF NOT EXISTS idx_meal_items_meal_id ON meal_items(meal_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// CreateMealWithItems writes the parent and its children in one transaction.
// Each child insert runs inside its own savepoint so a failed child is
// rolled back and logged without aborting siblings or the parent; a failed
// parent insert rolls back everything and surfaces as ErrDatabase.
func (r *MealRepository) CreateMealWithItems(ctx context.Context, meal *domain.MealRecord, items []domain.MealItemRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapError(domain.ErrDatabase, "begin meal tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertMeal(ctx, tx, meal); err != nil {
		return domain.WrapError(domain.ErrDatabase, "insert meal", err)
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `SAVEPOINT meal_item_insert`); err != nil {
			return domain.WrapError(domain.ErrDatabase, "create item savepoint", err)
		}
		if err := insertMealItem(ctx, tx, item); err != nil {
			r.logger.Warn("meal_item_insert_failed", "meal_id", meal.ID, "item", item.Name, "error", err)
			if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT meal_item_insert`); rbErr != nil {
				return domain.WrapError(domain.ErrDatabase, "rollback item savepoint", rbErr)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, `RELEASE SAVEPOINT meal_item_insert`); err != nil {
			return domain.WrapError(domain.ErrDatabase, "release item savepoint", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(domain.ErrDatabase, "commit meal tx", err)
	}
	return nil
}

// CreateFailedMeal is the best-effort error-path write: a single parent
// record, no children.
func (r *MealRepository) CreateFailedMeal(ctx context.Context, meal *domain.MealRecord) error {
	if err := insertMeal(ctx, r.db, meal); err != nil {
		return domain.WrapError(domain.ErrDatabase, "insert failed meal", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMeal(ctx context.Context, ex execer, meal *domain.MealRecord) error {
	rawItems, err := json.Marshal(meal.RawItems)
	if err != nil {
		return fmt.Errorf("marshal raw items: %w", err)
	}
	_, err = ex.ExecContext(ctx, `
INSERT INTO meals (
	id, user_id, day_id, category, photo_key, status, error_message, summary, raw_items,
	calories, protein, carbs, fat, fiber, sugar, sodium, confidence, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
`,
		meal.ID, meal.UserID, meal.DayID, meal.Category, meal.PhotoKey, string(meal.Status),
		meal.ErrorMessage, meal.Summary, rawItems,
		meal.Totals.Calories, meal.Totals.Protein, meal.Totals.Carbs, meal.Totals.Fat,
		meal.Totals.Fiber, meal.Totals.Sugar, meal.Totals.Sodium,
		string(meal.Confidence), meal.CreatedAt, meal.UpdatedAt,
	)
	return err
}

func insertMealItem(ctx context.Context, ex execer, item domain.MealItemRecord) error {
	_, err := ex.ExecContext(ctx, `
INSERT INTO meal_items (
	id, meal_id, name, quantity, unit,
	calories, protein, carbs, fat, fiber, sugar, sodium,
	source, confidence, needs_review
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
`,
		item.ID, item.MealID, item.Name, item.Quantity, item.Unit,
		item.Facts.Calories, item.Facts.Protein, item.Facts.Carbs, item.Facts.Fat,
		item.Facts.Fiber, item.Facts.Sugar, item.Facts.Sodium,
		item.Source, string(item.Confidence), item.NeedsReview,
	)
	return err
}

func (r *MealRepository) GetByID(ctx context.Context, id string) (*domain.MealRecord, []domain.MealItemRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, day_id, category, photo_key, status, error_message, summary, raw_items,
	calories, protein, carbs, fat, fiber, sugar, sodium, confidence, created_at, updated_at
FROM meals
WHERE id = $1
`, id)

	meal, err := scanMeal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.WrapError(domain.ErrMealNotFound, "get meal", fmt.Errorf("id %s", id))
		}
		return nil, nil, fmt.Errorf("scan meal: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, meal_id, name, quantity, unit,
	calories, protein, carbs, fat, fiber, sugar, sodium,
	source, confidence, needs_review
FROM meal_items
WHERE meal_id = $1
ORDER BY name
`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query meal items: %w", err)
	}
	defer rows.Close()

	var items []domain.MealItemRecord
	for rows.Next() {
		var item domain.MealItemRecord
		var confidence string
		if err := rows.Scan(
			&item.ID, &item.MealID, &item.Name, &item.Quantity, &item.Unit,
			&item.Facts.Calories, &item.Facts.Protein, &item.Facts.Carbs, &item.Facts.Fat,
			&item.Facts.Fiber, &item.Facts.Sugar, &item.Facts.Sodium,
			&item.Source, &confidence, &item.NeedsReview,
		); err != nil {
			return nil, nil, fmt.Errorf("scan meal item: %w", err)
		}
		item.Confidence = domain.ConfidenceTier(confidence)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate meal items: %w", err)
	}
	return meal, items, nil
}

func (r *MealRepository) ListByDay(ctx context.Context, userID, dayID string) ([]domain.MealRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, day_id, category, photo_key, status, error_message, summary, raw_items,
	calories, protein, carbs, fat, fiber, sugar, sodium, confidence, created_at, updated_at
FROM meals
WHERE user_id = $1 AND day_id = $2
ORDER BY created_at
`, userID, dayID)
	if err != nil {
		return nil, fmt.Errorf("query meals by day: %w", err)
	}
	defer rows.Close()

	var meals []domain.MealRecord
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		meals = append(meals, *meal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meals: %w", err)
	}
	return meals, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(row rowScanner) (*domain.MealRecord, error) {
	var meal domain.MealRecord
	var rawItems []byte
	var status, confidence string
	var errorMessage, summary sql.NullString

	err := row.Scan(
		&meal.ID, &meal.UserID, &meal.DayID, &meal.Category, &meal.PhotoKey,
		&status, &errorMessage, &summary, &rawItems,
		&meal.Totals.Calories, &meal.Totals.Protein, &meal.Totals.Carbs, &meal.Totals.Fat,
		&meal.Totals.Fiber, &meal.Totals.Sugar, &meal.Totals.Sodium,
		&confidence, &meal.CreatedAt, &meal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawItems, &meal.RawItems); err != nil {
		return nil, fmt.Errorf("unmarshal raw items: %w", err)
	}
	meal.Status = domain.MealStatus(status)
	meal.Confidence = domain.ConfidenceTier(confidence)
	meal.ErrorMessage = errorMessage.String
	meal.Summary = summary.String
	return &meal, nil
}
