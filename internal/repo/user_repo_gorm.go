package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"user-directory-api/internal/domain"
)

// UserRepo is the gorm-backed store adapter for directory records.
type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email, excludeID string) (*domain.User, error) {
	q := r.db.WithContext(ctx).Where("email = ?", email)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var u domain.User
	err := q.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.User, int64, error) {
	tx := searchScope(r.db.WithContext(ctx).Model(&domain.User{}), q.Search, false)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at DESC").Limit(q.Limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) FindAllForExport(ctx context.Context, search string) ([]domain.User, error) {
	tx := searchScope(r.db.WithContext(ctx).Model(&domain.User{}), search, true)

	var users []domain.User
	if err := tx.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// searchScope ORs a case-insensitive substring match across the searchable
// columns. LOWER(...) LIKE keeps it portable across postgres and mysql.
func searchScope(tx *gorm.DB, search string, includeMobile bool) *gorm.DB {
	s := strings.TrimSpace(search)
	if s == "" {
		return tx
	}
	like := "%" + strings.ToLower(s) + "%"
	cond := "LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(location) LIKE ?"
	args := []any{like, like, like, like}
	if includeMobile {
		cond += " OR mobile LIKE ?"
		args = append(args, like)
	}
	return tx.Where(cond, args...)
}

// isDupKey matches unique-violation messages without depending on
// gorm.ErrDuplicatedKey, which varies by driver version.
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
