package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/validation"
)

const (
	detailsMaxLength = 500

	RatingMin = 0
	RatingMax = 10
)

type (
	Reviews struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}

	ReviewInput struct {
		Details string
		Rating  *int
	}

	// ReviewPatch leaves a field unchanged when it is nil, empty or zero.
	ReviewPatch struct {
		Details *string
		Rating  *int
	}

	// ReviewOrder picks the sort of ListByRecipe. With both flags set reviews are ordered by rating
	// and ties go to the newest.
	ReviewOrder struct {
		Highest bool
		Newest  bool
	}
)

func NewReviews(gdb *gorm.DB, l *zap.SugaredLogger) *Reviews {
	return &Reviews{db: gdb, logger: l.Named("reviews")}
}

func (s *Reviews) Create(ctx context.Context, subjectID, recipeID uint64, in ReviewInput) (*db.Review, error) {
	var review *db.Review
	err := unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		author, err := RequireUser(tx, subjectID)
		if err != nil {
			return err
		}

		v := validation.NewSet()
		v.Check("details", in.Details, validation.Text(2, detailsMaxLength))
		if in.Rating == nil {
			v.Add("rating", "is required")
		} else {
			v.Check("rating", *in.Rating, validation.Int(RatingMin, RatingMax))
		}
		if err := invalid(v.Err()); err != nil {
			return err
		}

		recipe, err := findRecipe(tx, recipeID)
		if err != nil {
			return err
		}
		if recipe.UserID == author.ID {
			return badRequest("you can't review your own recipe")
		}

		model := db.Review{
			Details:  in.Details,
			Rating:   *in.Rating,
			UserID:   author.ID,
			RecipeID: recipe.ID,
		}
		if err := tx.Omit(clause.Associations).Create(&model).Error; err != nil {
			return errors.Wrap(err, "create review")
		}

		review, err = findReview(tx.Preload("User"), model.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *Reviews) List(ctx context.Context) ([]db.Review, error) {
	reviews := make([]db.Review, 0)
	if err := s.db.WithContext(ctx).Preload("User").Order("id").Find(&reviews).Error; err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}
	return reviews, nil
}

func (s *Reviews) ListByRecipe(ctx context.Context, recipeID uint64, order ReviewOrder) ([]db.Review, error) {
	tx := s.db.WithContext(ctx)
	if _, err := findRecipe(tx, recipeID); err != nil {
		return nil, err
	}

	q := tx.Preload("User").Where("recipe_id = ?", recipeID)
	switch {
	case order.Highest && order.Newest:
		q = q.Order("rating DESC").Order("created_at DESC").Order("id DESC")
	case order.Highest:
		q = q.Order("rating DESC").Order("id")
	case order.Newest:
		q = q.Order("created_at DESC").Order("id DESC")
	default:
		q = q.Order("id")
	}

	reviews := make([]db.Review, 0)
	if err := q.Find(&reviews).Error; err != nil {
		return nil, errors.Wrap(err, "list recipe reviews")
	}
	return reviews, nil
}

func (s *Reviews) Update(ctx context.Context, subjectID, id uint64, patch ReviewPatch) (*db.Review, error) {
	var review *db.Review
	err := unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		current, err := findReview(tx, id)
		if err != nil {
			return err
		}
		if _, err := RequireOwnerOrAdmin(tx, subjectID, current.UserID); err != nil {
			return err
		}

		v := validation.NewSet()
		updates := map[string]interface{}{}
		if present(patch.Details) {
			v.Check("details", *patch.Details, validation.Text(2, detailsMaxLength))
			updates["details"] = *patch.Details
		}
		if patch.Rating != nil && *patch.Rating != 0 {
			v.Check("rating", *patch.Rating, validation.Int(RatingMin, RatingMax))
			updates["rating"] = *patch.Rating
		}
		if err := invalid(v.Err()); err != nil {
			return err
		}

		if len(updates) != 0 {
			if err := tx.Model(current).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return errors.Wrap(err, "update review")
			}
		}

		review, err = findReview(tx.Preload("User"), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *Reviews) Delete(ctx context.Context, subjectID, id uint64) error {
	return unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		review, err := findReview(tx, id)
		if err != nil {
			return err
		}
		if _, err := RequireOwnerOrAdmin(tx, subjectID, review.UserID); err != nil {
			return err
		}
		if err := tx.Delete(review).Error; err != nil {
			return errors.Wrap(err, "delete review")
		}
		return nil
	})
}

func findReview(tx *gorm.DB, id uint64) (*db.Review, error) {
	review := db.Review{}
	res := tx.Limit(1).Find(&review, id)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find review")
	}
	if res.RowsAffected == 0 {
		return nil, notFound("review with id %d couldn't be found", id)
	}
	return &review, nil
}
