package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "animalsquad/internal/errors"
	"animalsquad/internal/model"
	"animalsquad/internal/service"
	"animalsquad/internal/storage"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PetHandler handles pet account endpoints.
type PetHandler struct {
	petService     service.PetService
	maxUploadBytes int64
}

// NewPetHandler creates a new pet handler.
func NewPetHandler(petService service.PetService, maxUploadBytes int64) *PetHandler {
	return &PetHandler{petService: petService, maxUploadBytes: maxUploadBytes}
}

// SignupRequest is the multipart form of a new account.
type SignupRequest struct {
	LoginID  string `form:"loginId" validate:"required,min=4,max=50"`
	Password string `form:"password" validate:"required,min=8,max=72"`
	PetName  string `form:"petName" validate:"required,max=100"`
	Age      int    `form:"age" validate:"gte=0,lte=100"`
	Gender   string `form:"gender" validate:"required,oneof=MALE FEMALE"`
	Species  string `form:"species" validate:"required,oneof=DOG CAT"`
	Code     int    `form:"code" validate:"required"`
}

// CheckResponse reports login id availability.
type CheckResponse struct {
	LoginID string `json:"loginId"`
	Exists  bool   `json:"exists"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// Signup godoc
// @Summary Register a pet account
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Param loginId formData string true "Login id"
// @Param password formData string true "Password"
// @Param petName formData string true "Pet name"
// @Param age formData int false "Age"
// @Param gender formData string true "MALE or FEMALE"
// @Param species formData string true "DOG or CAT"
// @Param code formData int true "Address code"
// @Param file formData file false "Profile image"
// @Success 201 {object} model.Pet
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /pets/signup [post]
func (h *PetHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	file, err := h.readFile(c)
	if err != nil {
		return err
	}

	pet := &model.Pet{
		LoginID:  req.LoginID,
		Password: req.Password,
		PetName:  req.PetName,
		Age:      req.Age,
		Gender:   model.Gender(req.Gender),
		Species:  model.Species(req.Species),
		Address:  model.Address{Code: req.Code},
	}
	created, err := h.petService.CreatePet(c.Request().Context(), pet, file)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// CheckLoginID godoc
// @Summary Check whether a login id is taken
// @Tags pets
// @Produce json
// @Param loginId query string true "Login id"
// @Success 200 {object} CheckResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /pets/check [get]
func (h *PetHandler) CheckLoginID(c echo.Context) error {
	loginID := c.QueryParam("loginId")
	if loginID == "" {
		return badRequest("loginId is required", "VALIDATION_ERROR")
	}
	exists, err := h.petService.CheckLoginID(c.Request().Context(), loginID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, CheckResponse{LoginID: loginID, Exists: exists})
}

// GetPet godoc
// @Summary Get the caller's own account
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pet ID"
// @Success 200 {object} model.Pet
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /pets/{id} [get]
func (h *PetHandler) GetPet(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	caller, err := currentPetID(c)
	if err != nil {
		return err
	}
	pet, err := h.petService.PetVerifiedToken(c.Request().Context(), id, caller)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, pet)
}

// UpdatePet godoc
// @Summary Partially update the caller's account
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pet ID"
// @Param petName formData string false "Pet name"
// @Param age formData int false "Age"
// @Param gender formData string false "MALE or FEMALE"
// @Param species formData string false "DOG or CAT"
// @Param code formData int false "Address code"
// @Param file formData file false "Profile image"
// @Success 200 {object} model.Pet
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /pets/{id} [patch]
func (h *PetHandler) UpdatePet(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	caller, err := currentPetID(c)
	if err != nil {
		return err
	}

	patch, err := parsePatch(c, id)
	if err != nil {
		return err
	}
	file, err := h.readFile(c)
	if err != nil {
		return err
	}

	updated, err := h.petService.UpdatePet(c.Request().Context(), patch, caller, file)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeletePet godoc
// @Summary Delete the caller's account
// @Tags pets
// @Security BearerAuth
// @Param id path int true "Pet ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /pets/{id} [delete]
func (h *PetHandler) DeletePet(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	caller, err := currentPetID(c)
	if err != nil {
		return err
	}
	if err := h.petService.DeletePet(c.Request().Context(), id, caller); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GrantAdmin godoc
// @Summary Elevate the caller to admin
// @Description The new token pair is returned in the Authorization and Refresh headers.
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pet ID"
// @Param request body service.AdminRequest true "Admin code"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /pets/{id}/admin [post]
func (h *PetHandler) GrantAdmin(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	caller, err := currentPetID(c)
	if err != nil {
		return err
	}

	var req service.AdminRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	info, err := h.petService.VerifiedAdmin(c.Request().Context(), id, caller, req)
	if err != nil {
		return toHTTPError(err)
	}
	writeTokenHeaders(c, info)
	return c.JSON(http.StatusOK, MessageResponse{Message: "admin role granted"})
}

// ListPosts godoc
// @Summary List a pet's posts, newest first
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pet ID"
// @Param page query int false "Page number, starting at 1"
// @Param size query int false "Page size"
// @Success 200 {object} model.Page[model.Post]
// @Failure 400 {object} errors.ErrorResponse
// @Router /pets/{id}/posts [get]
func (h *PetHandler) ListPosts(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	page, size := 1, defaultPageSize
	if err := echo.QueryParamsBinder(c).Int("page", &page).Int("size", &size).BindError(); err != nil {
		return badRequest("invalid paging parameters", "INVALID_PAGE")
	}
	if page < 1 || size < 1 || size > maxPageSize {
		return badRequest("page must be >= 1 and size between 1 and 100", "INVALID_PAGE")
	}

	posts, err := h.petService.FindPost(c.Request().Context(), page-1, size, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// readFile returns the "file" part, or nil when the request carries none.
func (h *PetHandler) readFile(c echo.Context) (*storage.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, badRequest("invalid multipart body", "INVALID_REQUEST")
	}
	if header.Size > h.maxUploadBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, apperrors.ErrorResponse{
			Error: "profile image is too large",
			Code:  "FILE_TOO_LARGE",
		})
	}

	src, err := header.Open()
	if err != nil {
		return nil, badRequest("unreadable file part", "INVALID_REQUEST")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, badRequest("unreadable file part", "INVALID_REQUEST")
	}
	return &storage.File{
		Filename:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

// parsePatch keeps only the form fields that were actually sent.
func parsePatch(c echo.Context, id uint) (*model.PetPatch, error) {
	values, err := c.FormParams()
	if err != nil {
		return nil, badRequest("invalid request body", "INVALID_REQUEST")
	}

	patch := &model.PetPatch{ID: id}
	if values.Has("petName") {
		name := values.Get("petName")
		if name == "" {
			return nil, badRequest("petName must not be empty", "VALIDATION_ERROR")
		}
		patch.PetName = &name
	}
	if values.Has("age") {
		age, err := strconv.Atoi(values.Get("age"))
		if err != nil || age < 0 {
			return nil, badRequest("age must be a non-negative integer", "VALIDATION_ERROR")
		}
		patch.Age = &age
	}
	if values.Has("gender") {
		gender, err := model.ParseGender(values.Get("gender"))
		if err != nil {
			return nil, badRequest(err.Error(), "VALIDATION_ERROR")
		}
		patch.Gender = &gender
	}
	if values.Has("species") {
		species, err := model.ParseSpecies(values.Get("species"))
		if err != nil {
			return nil, badRequest(err.Error(), "VALIDATION_ERROR")
		}
		patch.Species = &species
	}
	if values.Has("code") {
		code, err := strconv.Atoi(values.Get("code"))
		if err != nil {
			return nil, badRequest("code must be an integer", "VALIDATION_ERROR")
		}
		patch.AddressCode = &code
	}
	return patch, nil
}
