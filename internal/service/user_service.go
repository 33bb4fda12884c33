package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"user-directory-api/internal/domain"
	"user-directory-api/internal/storage"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
)

// UserInput carries the fields of a create/update request. Nil means the
// field was absent from the form, which matters for partial updates.
type UserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Mobile    *string
	Gender    *string
	Status    *string
	Location  *string
}

type ListResult struct {
	Users []domain.User
	Total int64
	Page  int
	Pages int
	Limit int
}

// UserService orchestrates validation, duplicate-email detection, image
// storage and the store adapter for the CRUD operations.
type UserService struct {
	store  domain.UserStore
	images *storage.ImageStore
	log    *zap.Logger
}

func NewUserService(store domain.UserStore, images *storage.ImageStore, log *zap.Logger) *UserService {
	return &UserService{store: store, images: images, log: log}
}

func (s *UserService) List(ctx context.Context, page, limit int, search string) (*ListResult, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	users, total, err := s.store.List(ctx, domain.ListQuery{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Users: users,
		Total: total,
		Page:  page,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
		Limit: limit,
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// Create inserts a new record. A missing status defaults to Active before
// validation. The uniqueness pre-check gives the friendly error; the
// store's unique index stays the final authority under races.
func (s *UserService) Create(ctx context.Context, in UserInput, upload *storage.Upload) (*domain.User, error) {
	image, err := s.storeUpload(upload)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		FirstName:    trimmed(in.FirstName),
		LastName:     trimmed(in.LastName),
		Email:        strings.ToLower(trimmed(in.Email)),
		Mobile:       trimmed(in.Mobile),
		Gender:       domain.Gender(trimmed(in.Gender)),
		Status:       domain.Status(trimmed(in.Status)),
		Location:     trimmed(in.Location),
		ProfileImage: image,
	}
	if u.Status == "" {
		u.Status = domain.StatusActive
	}

	if errs := domain.PayloadFrom(u).Validate(); len(errs) > 0 {
		return nil, s.reject(image, &domain.ValidationError{Violations: errs})
	}

	other, err := s.store.FindByEmail(ctx, u.Email, "")
	if err != nil {
		return nil, s.reject(image, err)
	}
	if other != nil {
		return nil, s.reject(image, domain.ErrEmailTaken)
	}

	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			err = domain.ErrEmailTaken
		}
		return nil, s.reject(image, err)
	}
	return u, nil
}

// Update merges the provided fields onto the existing record and
// revalidates the merged result. A new upload replaces the stored image;
// the old file is removed best-effort after the record is persisted.
func (s *UserService) Update(ctx context.Context, id string, in UserInput, upload *storage.Upload) (*domain.User, error) {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	newImage, err := s.storeUpload(upload)
	if err != nil {
		return nil, err
	}

	merged := *existing
	applyTrimmed(&merged.FirstName, in.FirstName)
	applyTrimmed(&merged.LastName, in.LastName)
	if in.Email != nil {
		merged.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	applyTrimmed(&merged.Mobile, in.Mobile)
	if in.Gender != nil {
		merged.Gender = domain.Gender(strings.TrimSpace(*in.Gender))
	}
	if in.Status != nil {
		merged.Status = domain.Status(strings.TrimSpace(*in.Status))
	}
	applyTrimmed(&merged.Location, in.Location)

	oldImage := ""
	if newImage != "" {
		oldImage = existing.ProfileImage
		merged.ProfileImage = newImage
	}

	if errs := domain.PayloadFrom(&merged).Validate(); len(errs) > 0 {
		return nil, s.reject(newImage, &domain.ValidationError{Violations: errs})
	}

	if merged.Email != existing.Email {
		other, err := s.store.FindByEmail(ctx, merged.Email, id)
		if err != nil {
			return nil, s.reject(newImage, err)
		}
		if other != nil {
			return nil, s.reject(newImage, domain.ErrEmailTakenByOther)
		}
	}

	if err := s.store.Save(ctx, &merged); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			err = domain.ErrEmailTakenByOther
		}
		return nil, s.reject(newImage, err)
	}

	if oldImage != "" && oldImage != newImage {
		s.removeImageAsync(oldImage)
	}
	return &merged, nil
}

// Delete removes the record and its image file. Image removal is
// best-effort and never fails the operation.
func (s *UserService) Delete(ctx context.Context, id string) error {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return domain.ErrNotFound
	}

	if u.ProfileImage != "" {
		if err := s.images.Remove(u.ProfileImage); err != nil {
			s.log.Warn("delete profile image", zap.String("file", u.ProfileImage), zap.Error(err))
		}
	}
	return s.store.Delete(ctx, id)
}

func (s *UserService) storeUpload(upload *storage.Upload) (string, error) {
	if upload == nil {
		return "", nil
	}
	return s.images.Store(*upload)
}

// reject unwinds a just-stored upload when the operation fails afterwards,
// then passes the failure through.
func (s *UserService) reject(image string, err error) error {
	if image != "" {
		s.removeImageAsync(image)
	}
	return err
}

// removeImageAsync is the fire-and-forget cleanup path: errors are logged,
// never propagated, and the caller does not wait.
func (s *UserService) removeImageAsync(name string) {
	go func() {
		if err := s.images.Remove(name); err != nil {
			s.log.Warn("remove old profile image", zap.String("file", name), zap.Error(err))
		}
	}()
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func applyTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
