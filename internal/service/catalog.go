package service

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/validation"
)

const catalogNameMaxLength = 50

type (
	// Catalog manages a table of uniquely named rows that recipes link to through an
	// association table. Ingredients and allergies share this behaviour.
	Catalog[T any, PT interface {
		*T
		db.Named
	}] struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
		kind   catalogKind
	}

	catalogKind struct {
		label      string
		plural     string
		table      string
		linkTable  string
		linkColumn string
	}

	Ingredients = Catalog[db.Ingredient, *db.Ingredient]
	Allergies   = Catalog[db.Allergy, *db.Allergy]
)

var (
	ingredientKind = catalogKind{
		label:      "ingredient",
		plural:     "ingredients",
		table:      "ingredients",
		linkTable:  "recipe_ingredients",
		linkColumn: "ingredient_id",
	}
	allergyKind = catalogKind{
		label:      "allergy",
		plural:     "allergies",
		table:      "allergies",
		linkTable:  "recipe_allergies",
		linkColumn: "allergy_id",
	}
)

func NewIngredients(gdb *gorm.DB, l *zap.SugaredLogger) *Ingredients {
	return &Ingredients{db: gdb, logger: l.Named("ingredients"), kind: ingredientKind}
}

func NewAllergies(gdb *gorm.DB, l *zap.SugaredLogger) *Allergies {
	return &Allergies{db: gdb, logger: l.Named("allergies"), kind: allergyKind}
}

func catalogNameRule() validation.Rule {
	return validation.String(2, catalogNameMaxLength, validation.Alphanumeric)
}

// Create requires an authenticated subject.
func (s *Catalog[T, PT]) Create(ctx context.Context, subjectID uint64, name string) (PT, error) {
	tx := s.db.WithContext(ctx)
	if _, err := RequireUser(tx, subjectID); err != nil {
		return nil, err
	}
	if err := invalid(validation.NewSet().Check("name", name, catalogNameRule()).Err()); err != nil {
		return nil, err
	}

	row := PT(new(T))
	row.SetName(name)
	res := tx.Create(row)
	if res.Error != nil {
		if errors.Is(db.Classify(res.Error), db.ErrUniqueViolation) {
			return nil, conflict("%s '%s' already exists", s.kind.label, name)
		}
		return nil, errors.Wrapf(res.Error, "create %s", s.kind.label)
	}
	return row, nil
}

// Search lists every row when query is empty. A non-empty query matches names case-insensitively
// by substring and fails with NotFound when nothing matches.
func (s *Catalog[T, PT]) Search(ctx context.Context, query string) ([]T, error) {
	query = strings.TrimSpace(query)
	q := squirrel.Select("id", "name").From(s.kind.table).OrderBy("name")
	if query != "" {
		q = q.Where(containsFold("name", query))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	rows := make([]T, 0)
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "search %s", s.kind.plural)
	}
	if query != "" && len(rows) == 0 {
		return nil, notFound("no %s with the name '%s' found", s.kind.plural, query)
	}
	return rows, nil
}

// Update renames a row. Every recipe linked to it sees the new name, which is why only an
// administrator may do it.
func (s *Catalog[T, PT]) Update(ctx context.Context, subjectID, id uint64, name string) (PT, error) {
	var row PT
	err := unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := RequireAdmin(tx, subjectID); err != nil {
			return err
		}
		if err := invalid(validation.NewSet().Check("name", name, catalogNameRule()).Err()); err != nil {
			return err
		}

		var err error
		row, err = s.find(tx, id)
		if err != nil {
			return err
		}

		row.SetName(name)
		res := tx.Model(row).Update("name", name)
		if res.Error != nil {
			if errors.Is(db.Classify(res.Error), db.ErrUniqueViolation) {
				return conflict("%s '%s' already exists", s.kind.label, name)
			}
			return errors.Wrapf(res.Error, "update %s", s.kind.label)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteOrphans removes every row no recipe links to and reports how many went.
func (s *Catalog[T, PT]) DeleteOrphans(ctx context.Context, subjectID uint64) (int64, error) {
	var deleted int64
	err := unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := RequireAdmin(tx, subjectID); err != nil {
			return err
		}

		sql, args, err := squirrel.
			Delete(s.kind.table).
			Where("id NOT IN (SELECT DISTINCT " + s.kind.linkColumn + " FROM " + s.kind.linkTable + ")").
			ToSql()
		if err != nil {
			return errors.Wrap(err, "build sql")
		}

		res := tx.Exec(sql, args...)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "delete orphan %s", s.kind.plural)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Infow("orphans deleted", "count", deleted)
	return deleted, nil
}

// DeleteByID refuses to delete a row that is still linked to a recipe.
func (s *Catalog[T, PT]) DeleteByID(ctx context.Context, subjectID, id uint64) error {
	return unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := RequireAdmin(tx, subjectID); err != nil {
			return err
		}
		row, err := s.find(tx, id)
		if err != nil {
			return err
		}

		var links int64
		if err := tx.Table(s.kind.linkTable).Where(s.kind.linkColumn+" = ?", id).Count(&links).Error; err != nil {
			return errors.Wrap(err, "count relations")
		}
		if links > 0 {
			return conflict("couldn't delete %s with id %d as it has relations with 1 or more recipes", s.kind.label, id)
		}

		if err := tx.Delete(row).Error; err != nil {
			if errors.Is(db.Classify(err), db.ErrForeignKeyViolation) {
				return conflict("couldn't delete %s with id %d as it has relations with 1 or more recipes", s.kind.label, id)
			}
			return errors.Wrapf(err, "delete %s", s.kind.label)
		}
		return nil
	})
}

func (s *Catalog[T, PT]) find(tx *gorm.DB, id uint64) (PT, error) {
	row := PT(new(T))
	res := tx.Limit(1).Find(row, id)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "find %s", s.kind.label)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("%s with id %d not found", s.kind.label, id)
	}
	return row, nil
}

// findOrCreateByName returns the id of the row called name, inserting it when missing. The insert
// tolerates a concurrent writer creating the same name: the unique index turns the second insert
// into a no-op and the row is read back.
func findOrCreateByName[T any, PT interface {
	*T
	db.Named
}](tx *gorm.DB, name string) (uint64, error) {
	row := PT(new(T))
	row.SetName(name)
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "create %T", row)
	}
	if res.RowsAffected == 1 && row.GetID() != 0 {
		return row.GetID(), nil
	}

	existing := PT(new(T))
	if err := tx.Where("name = ?", name).First(existing).Error; err != nil {
		return 0, errors.Wrapf(err, "find %T", existing)
	}
	return existing.GetID(), nil
}
