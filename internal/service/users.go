package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/auth"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/config"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/validation"
)

const (
	nameMaxLength  = 50
	emailMaxLength = 100
)

var errLoginFailed = unauthorized("invalid email or password")

type (
	Users struct {
		db     *gorm.DB
		tokens *auth.Tokens
		cost   int
		logger *zap.SugaredLogger
	}

	RegisterInput struct {
		Name     *string
		Email    string
		Password string
		IsAdmin  bool
	}

	// UserPatch leaves a field unchanged when it is nil or empty.
	UserPatch struct {
		Name     *string
		Email    *string
		Password *string
		IsAdmin  *bool
	}

	Session struct {
		User  *db.User
		Token string
	}
)

func NewUsers(gdb *gorm.DB, tokens *auth.Tokens, cfg *config.Config, l *zap.SugaredLogger) *Users {
	return &Users{
		db:     gdb,
		tokens: tokens,
		cost:   cfg.BcryptCost,
		logger: l.Named("users"),
	}
}

func (s *Users) Register(ctx context.Context, in RegisterInput) (*db.User, error) {
	v := validation.NewSet()
	if in.Name != nil && *in.Name != "" {
		v.Check("name", *in.Name, validation.String(2, nameMaxLength, validation.Letters))
	}
	v.Check("email", in.Email, validation.String(2, emailMaxLength, validation.Email))
	v.Check("password", in.Password, validation.Password())
	if err := invalid(v.Err()); err != nil {
		return nil, err
	}

	hash, err := bcryptGen(in.Password, s.cost)
	if err != nil {
		return nil, err
	}

	user := db.User{
		Name:     emptyToNil(in.Name),
		Email:    in.Email,
		Password: hash,
		IsAdmin:  in.IsAdmin,
	}
	res := s.db.WithContext(ctx).Create(&user)
	if res.Error != nil {
		if errors.Is(db.Classify(res.Error), db.ErrUniqueViolation) {
			return nil, conflict("email address already in use")
		}
		return nil, errors.Wrap(res.Error, "create user")
	}

	s.logger.Infow("user registered", "id", user.ID)
	return &user, nil
}

// Login never tells the caller which of email or password was wrong.
func (s *Users) Login(ctx context.Context, email, password string) (*Session, error) {
	user := db.User{}
	res := s.db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find user")
	}
	if res.RowsAffected == 0 {
		return nil, errLoginFailed
	}

	if err := bcryptCheck(user.Password, password); err != nil {
		return nil, errLoginFailed
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &Session{User: &user, Token: token}, nil
}

func (s *Users) List(ctx context.Context, subjectID uint64) ([]db.User, error) {
	tx := s.db.WithContext(ctx)
	if _, err := RequireAdmin(tx, subjectID); err != nil {
		return nil, err
	}

	users := make([]db.User, 0)
	if err := tx.Order("id").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

func (s *Users) Get(ctx context.Context, subjectID, id uint64) (*db.User, error) {
	tx := s.db.WithContext(ctx)
	if _, err := RequireOwnerOrAdmin(tx, subjectID, id); err != nil {
		return nil, err
	}
	return findUser(tx, id)
}

func (s *Users) Update(ctx context.Context, subjectID, id uint64, patch UserPatch) (*db.User, error) {
	var user *db.User
	err := unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		caller, err := RequireOwnerOrAdmin(tx, subjectID, id)
		if err != nil {
			return err
		}
		user, err = findUser(tx, id)
		if err != nil {
			return err
		}

		v := validation.NewSet()
		if present(patch.Name) {
			v.Check("name", *patch.Name, validation.String(2, nameMaxLength, validation.Letters))
		}
		if present(patch.Email) {
			v.Check("email", *patch.Email, validation.String(2, emailMaxLength, validation.Email))
		}
		if present(patch.Password) {
			v.Check("password", *patch.Password, validation.Password())
		}
		if err := invalid(v.Err()); err != nil {
			return err
		}
		if patch.IsAdmin != nil && *patch.IsAdmin != user.IsAdmin && !caller.IsAdmin {
			return forbidden("only an administrator can change the admin flag")
		}

		if present(patch.Name) {
			user.Name = patch.Name
		}
		if present(patch.Email) {
			user.Email = *patch.Email
		}
		if present(patch.Password) {
			hash, err := bcryptGen(*patch.Password, s.cost)
			if err != nil {
				return err
			}
			user.Password = hash
		}
		if patch.IsAdmin != nil {
			user.IsAdmin = *patch.IsAdmin
		}

		res := tx.Model(user).Select("name", "email", "password", "is_admin").Updates(user)
		if res.Error != nil {
			if errors.Is(db.Classify(res.Error), db.ErrUniqueViolation) {
				return conflict("email address already in use")
			}
			return errors.Wrap(res.Error, "update user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user, the recipes they own (with everything hanging off them) and the
// reviews they wrote.
func (s *Users) Delete(ctx context.Context, subjectID, id uint64) error {
	return unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := RequireOwnerOrAdmin(tx, subjectID, id); err != nil {
			return err
		}
		user, err := findUser(tx, id)
		if err != nil {
			return err
		}

		recipeIDs := make([]uint64, 0)
		if err := tx.Model(&db.Recipe{}).Where("user_id = ?", user.ID).Pluck("id", &recipeIDs).Error; err != nil {
			return errors.Wrap(err, "find owned recipes")
		}
		if err := deleteRecipes(tx, recipeIDs); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&db.Review{}).Error; err != nil {
			return errors.Wrap(err, "delete authored reviews")
		}
		if err := tx.Delete(user).Error; err != nil {
			return errors.Wrap(err, "delete user")
		}

		s.logger.Infow("user deleted", "id", user.ID, "recipes", len(recipeIDs))
		return nil
	})
}

func findUser(tx *gorm.DB, id uint64) (*db.User, error) {
	user := db.User{}
	res := tx.Limit(1).Find(&user, id)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find user")
	}
	if res.RowsAffected == 0 {
		return nil, notFound("user with id %d couldn't be found", id)
	}
	return &user, nil
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func emptyToNil(s *string) *string {
	if !present(s) {
		return nil
	}
	return s
}
