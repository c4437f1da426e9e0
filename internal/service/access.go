package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
)

const unresolvedSubjectMsg = "failed to authorize user, please check your token"

// RequireUser resolves the authenticated subject. A subject without a user row is an
// authentication failure rather than a missing resource.
func RequireUser(tx *gorm.DB, subjectID uint64) (*db.User, error) {
	user := db.User{}
	res := tx.Limit(1).Find(&user, subjectID)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find subject")
	}
	if res.RowsAffected == 0 {
		return nil, unauthorized(unresolvedSubjectMsg)
	}
	return &user, nil
}

func RequireAdmin(tx *gorm.DB, subjectID uint64) (*db.User, error) {
	user, err := RequireUser(tx, subjectID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, forbidden("not authorised to request this")
	}
	return user, nil
}

func RequireOwnerOrAdmin(tx *gorm.DB, subjectID, ownerID uint64) (*db.User, error) {
	user, err := RequireUser(tx, subjectID)
	if err != nil {
		return nil, err
	}
	if user.ID != ownerID && !user.IsAdmin {
		return nil, forbidden("not authorised to request this")
	}
	return user, nil
}
