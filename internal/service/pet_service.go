package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"animalsquad/internal/auth"
	apperrors "animalsquad/internal/errors"
	"animalsquad/internal/metrics"
	"animalsquad/internal/model"
	"animalsquad/internal/repository"
	"animalsquad/internal/storage"
)

const (
	bcryptCost    = 10
	profileFolder = "profile"
)

// AdminRequest carries the secret a pet presents to become an admin.
type AdminRequest struct {
	AdminCode string `json:"adminCode" validate:"required"`
}

// PetServiceConfig holds the fixed values the service compares against.
type PetServiceConfig struct {
	DefaultDogImageURL string
	DefaultCatImageURL string
	AdminCode          string
}

// NewPetServiceConfig derives the default image URLs from the public image base.
func NewPetServiceConfig(publicImageURL, adminCode string) PetServiceConfig {
	return PetServiceConfig{
		DefaultDogImageURL: publicImageURL + "/" + profileFolder + "/default_dog.png",
		DefaultCatImageURL: publicImageURL + "/" + profileFolder + "/default_cat.png",
		AdminCode:          adminCode,
	}
}

// PetService implements the pet account lifecycle.
type PetService interface {
	CreatePet(ctx context.Context, pet *model.Pet, file *storage.File) (*model.Pet, error)
	UpdatePet(ctx context.Context, patch *model.PetPatch, petID uint, file *storage.File) (*model.Pet, error)
	CheckLoginID(ctx context.Context, loginID string) (bool, error)
	PetVerifiedToken(ctx context.Context, id, petID uint) (*model.Pet, error)
	FindPet(ctx context.Context, id uint) (*model.Pet, error)
	FindPost(ctx context.Context, page, size int, petID uint) (*model.Page[model.Post], error)
	DeletePet(ctx context.Context, id, petID uint) error
	VerifiedAdmin(ctx context.Context, id, petID uint, req AdminRequest) (*auth.TokenInfo, error)
}

type petService struct {
	uow        repository.UnitOfWork
	files      storage.FileStorage
	tokens     auth.TokenIssuer
	tokenStore auth.TokenStoreInterface
	metrics    metrics.Recorder
	cfg        PetServiceConfig
	logger     *zap.Logger
}

// NewPetService creates a new pet service.
func NewPetService(
	uow repository.UnitOfWork,
	files storage.FileStorage,
	tokens auth.TokenIssuer,
	tokenStore auth.TokenStoreInterface,
	recorder metrics.Recorder,
	cfg PetServiceConfig,
	logger *zap.Logger,
) PetService {
	return &petService{
		uow:        uow,
		files:      files,
		tokens:     tokens,
		tokenStore: tokenStore,
		metrics:    recorder,
		cfg:        cfg,
		logger:     logger,
	}
}

// CreatePet registers a new account.
func (s *petService) CreatePet(ctx context.Context, pet *model.Pet, file *storage.File) (created *model.Pet, err error) {
	defer func() { s.metrics.RecordPetOperation("create", err) }()

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := verifyExistsID(ctx, repos.Pets, pet.LoginID); err != nil {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(pet.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		pet.Password = string(hashed)
		pet.Roles = model.DefaultRoles()

		address, err := verifiedAddress(ctx, repos.Addresses, pet.Address.Code)
		if err != nil {
			return err
		}
		pet.Address = *address
		pet.AddressID = address.ID

		uploaded := ""
		switch {
		case file == nil && pet.Species == model.SpeciesDog:
			pet.ProfileImage = s.cfg.DefaultDogImageURL
		case file == nil && pet.Species == model.SpeciesCat:
			pet.ProfileImage = s.cfg.DefaultCatImageURL
		default:
			url, err := s.files.UploadImage(ctx, file, profileFolder)
			if err != nil {
				return fmt.Errorf("upload profile image: %w", err)
			}
			pet.ProfileImage = url
			uploaded = url
		}

		if err := repos.Pets.Create(ctx, pet); err != nil {
			s.discardUpload(ctx, uploaded)
			if errors.Is(err, repository.ErrDuplicateKey) {
				return apperrors.ErrPetExists
			}
			return fmt.Errorf("create pet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pet registered",
		zap.Uint("pet_id", pet.ID),
		zap.String("login_id", pet.LoginID),
	)
	return pet, nil
}

// UpdatePet applies the present fields of patch to the stored pet.
func (s *petService) UpdatePet(ctx context.Context, patch *model.PetPatch, petID uint, file *storage.File) (updated *model.Pet, err error) {
	defer func() { s.metrics.RecordPetOperation("update", err) }()

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		findPet, err := findVerifiedPet(ctx, repos.Pets, patch.ID)
		if err != nil {
			return err
		}
		if err := verifiedToken(findPet, petID); err != nil {
			return err
		}

		if patch.PetName != nil {
			findPet.PetName = *patch.PetName
		}
		if patch.Age != nil {
			findPet.Age = *patch.Age
		}
		if patch.Gender != nil {
			findPet.Gender = *patch.Gender
		}
		if patch.Species != nil {
			findPet.Species = *patch.Species
		}
		if patch.AddressCode != nil {
			address, err := verifiedAddress(ctx, repos.Addresses, *patch.AddressCode)
			if err != nil {
				return err
			}
			findPet.Address = *address
			findPet.AddressID = address.ID
		}

		if err := s.updateProfileImage(ctx, findPet, file); err != nil {
			return err
		}

		if err := repos.Pets.Save(ctx, findPet); err != nil {
			return fmt.Errorf("save pet: %w", err)
		}
		updated = findPet
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pet updated", zap.Uint("pet_id", updated.ID))
	return updated, nil
}

// updateProfileImage replaces or resets the profile image. A non-empty upload
// always deletes the previous object first, defaults included.
func (s *petService) updateProfileImage(ctx context.Context, pet *model.Pet, file *storage.File) error {
	isDefault := s.isDefaultImage(pet.ProfileImage)

	switch {
	case file != nil && !file.IsEmpty():
		if err := s.files.DeleteFile(ctx, pet.ProfileImage, profileFolder); err != nil {
			return fmt.Errorf("delete previous image: %w", err)
		}
		url, err := s.files.UploadImage(ctx, file, profileFolder)
		if err != nil {
			return fmt.Errorf("upload profile image: %w", err)
		}
		pet.ProfileImage = url
	case file != nil && isDefault:
		url, err := s.files.UploadImage(ctx, file, profileFolder)
		if err != nil {
			return fmt.Errorf("upload profile image: %w", err)
		}
		pet.ProfileImage = url
	case file == nil && isDefault && pet.Species == model.SpeciesDog:
		pet.ProfileImage = s.cfg.DefaultDogImageURL
	case file == nil && isDefault && pet.Species == model.SpeciesCat:
		pet.ProfileImage = s.cfg.DefaultCatImageURL
	}
	return nil
}

// CheckLoginID reports whether loginID is already taken.
func (s *petService) CheckLoginID(ctx context.Context, loginID string) (exists bool, err error) {
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		exists, err = repos.Pets.ExistsByLoginID(ctx, loginID)
		return err
	})
	return exists, err
}

// PetVerifiedToken returns the pet only to its owner.
func (s *petService) PetVerifiedToken(ctx context.Context, id, petID uint) (*model.Pet, error) {
	pet, err := s.FindPet(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := verifiedToken(pet, petID); err != nil {
		return nil, err
	}
	return pet, nil
}

func (s *petService) FindPet(ctx context.Context, id uint) (pet *model.Pet, err error) {
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		pet, err = findVerifiedPet(ctx, repos.Pets, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pet, nil
}

// FindPost lists the pet's posts, newest first. page is zero-based.
func (s *petService) FindPost(ctx context.Context, page, size int, petID uint) (posts *model.Page[model.Post], err error) {
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		posts, err = repos.Posts.FindAllByPetID(ctx, petID, page, size)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	return posts, nil
}

// DeletePet removes the account together with its cached refresh token and stored image.
func (s *petService) DeletePet(ctx context.Context, id, petID uint) (err error) {
	defer func() { s.metrics.RecordPetOperation("delete", err) }()

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		findPet, err := findVerifiedPet(ctx, repos.Pets, id)
		if err != nil {
			return err
		}
		if err := verifiedToken(findPet, petID); err != nil {
			return err
		}

		if err := s.tokenStore.DeleteRefreshToken(ctx, findPet.LoginID); err != nil {
			return fmt.Errorf("delete refresh token: %w", err)
		}

		if !s.isDefaultImage(findPet.ProfileImage) {
			if err := s.files.DeleteFile(ctx, findPet.ProfileImage, profileFolder); err != nil {
				return fmt.Errorf("delete profile image: %w", err)
			}
		}

		if err := repos.Pets.DeleteByID(ctx, id); err != nil {
			return fmt.Errorf("delete pet: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("pet deleted", zap.Uint("pet_id", id))
	return nil
}

// VerifiedAdmin grants the admin role and returns a token pair that carries it.
func (s *petService) VerifiedAdmin(ctx context.Context, id, petID uint, req AdminRequest) (info *auth.TokenInfo, err error) {
	defer func() { s.metrics.RecordPetOperation("grant_admin", err) }()

	var loginID string
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		findPet, err := findVerifiedPet(ctx, repos.Pets, id)
		if err != nil {
			return err
		}
		if err := verifiedToken(findPet, petID); err != nil {
			return err
		}

		if findPet.Roles.Contains(model.RoleAdmin) {
			return apperrors.ErrPetRoleExists
		}
		if req.AdminCode != s.cfg.AdminCode {
			return apperrors.ErrAdminCodeNotMatch
		}

		findPet.Roles = findPet.Roles.Add(model.RoleAdmin)
		if err := repos.Pets.Save(ctx, findPet); err != nil {
			return fmt.Errorf("save pet: %w", err)
		}

		info, err = s.tokens.DelegateToken(findPet)
		if err != nil {
			return fmt.Errorf("delegate token: %w", err)
		}
		if err := s.tokenStore.StoreRefreshToken(ctx, findPet.LoginID, info.RefreshToken, info.RefreshTokenTTL()); err != nil {
			return fmt.Errorf("store refresh token: %w", err)
		}
		loginID = findPet.LoginID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin role granted", zap.Uint("pet_id", id), zap.String("login_id", loginID))
	return info, nil
}

func (s *petService) isDefaultImage(url string) bool {
	return url == s.cfg.DefaultDogImageURL || url == s.cfg.DefaultCatImageURL
}

// discardUpload removes an image whose pet row was never written.
func (s *petService) discardUpload(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.files.DeleteFile(ctx, url, profileFolder); err != nil {
		s.logger.Warn("failed to discard uploaded image", zap.String("url", url), zap.Error(err))
	}
}

func verifiedToken(pet *model.Pet, petID uint) error {
	if pet.ID != petID {
		return apperrors.ErrTokenAndIDNotMatch
	}
	return nil
}

func verifiedAddress(ctx context.Context, repo repository.AddressRepository, code int) (*model.Address, error) {
	address, err := repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAddressNotFound
		}
		return nil, fmt.Errorf("find address %d: %w", code, err)
	}
	return address, nil
}

func verifyExistsID(ctx context.Context, repo repository.PetRepository, loginID string) error {
	_, err := repo.FindByLoginID(ctx, loginID)
	if err == nil {
		return apperrors.ErrPetExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check pet existence: %w", err)
	}
	return nil
}

func findVerifiedPet(ctx context.Context, repo repository.PetRepository, id uint) (*model.Pet, error) {
	pet, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPetNotFound
		}
		return nil, fmt.Errorf("find pet %d: %w", id, err)
	}
	return pet, nil
}
