package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/userhub/backend/internal/model"
	"github.com/userhub/backend/internal/service"
	"github.com/userhub/backend/internal/storage"
)

type ProfileHandler struct {
	svc     *service.UserService
	avatars *storage.AvatarStore
}

func NewProfileHandler(svc *service.UserService, avatars *storage.AvatarStore) *ProfileHandler {
	return &ProfileHandler{svc: svc, avatars: avatars}
}

// Me godoc
// @Summary Get own full profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/profile/me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	caller := GetAuthUser(c)
	user, err := h.svc.GetByID(c.Request.Context(), caller.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewUserResponse(user))
}

// UpdateMe godoc
// @Summary Update own profile
// @Description Applies only the fields present in the request body.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ProfileUpdate true "Fields to change"
// @Success 200 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/profile/me [put]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var upd model.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	caller := GetAuthUser(c)
	user, err := h.svc.UpdateProfile(c.Request.Context(), caller.ID, upd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewUserResponse(user))
}

// UpdatePrivacy godoc
// @Summary Update own visibility policy
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.PrivacyUpdate true "Fields to change"
// @Success 200 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/profile/me/privacy [put]
func (h *ProfileHandler) UpdatePrivacy(c *gin.Context) {
	var upd model.PrivacyUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	caller := GetAuthUser(c)
	user, err := h.svc.UpdatePrivacy(c.Request.Context(), caller.ID, upd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewUserResponse(user))
}

// UploadAvatar godoc
// @Summary Upload own avatar
// @Description Accepts jpg, jpeg, png, gif or webp up to 5MB.
// @Tags profile
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Avatar image"
// @Success 200 {object} model.AvatarResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Router /api/v1/profile/me/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
		return
	}
	defer file.Close()

	avatarURL, err := h.avatars.Save(fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large, maximum size is 5MB"})
		case errors.Is(err, storage.ErrInvalidType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type, allowed: jpg, jpeg, png, gif, webp"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		}
		return
	}

	caller := GetAuthUser(c)
	previous, err := h.svc.SetAvatar(c.Request.Context(), caller.ID, avatarURL)
	if err != nil {
		_ = h.avatars.Remove(avatarURL)
		writeServiceError(c, err)
		return
	}
	if previous != nil {
		_ = h.avatars.Remove(*previous)
	}

	c.JSON(http.StatusOK, model.AvatarResponse{
		Message:   "avatar uploaded",
		AvatarURL: avatarURL,
	})
}

// DeleteAvatar godoc
// @Summary Delete own avatar
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.StatusResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/profile/me/avatar [delete]
func (h *ProfileHandler) DeleteAvatar(c *gin.Context) {
	caller := GetAuthUser(c)
	previous, err := h.svc.ClearAvatar(c.Request.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no avatar found"})
			return
		}
		writeServiceError(c, err)
		return
	}

	_ = h.avatars.Remove(*previous)
	c.JSON(http.StatusOK, model.StatusResponse{Status: "avatar_deleted"})
}

// Get godoc
// @Summary Get a public profile by id
// @Description Visibility-filtered for the current viewer, anonymous allowed.
// @Tags profile
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} model.PublicProfile
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/profile/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.Project(user, GetAuthUser(c)))
}

// GetByUsername godoc
// @Summary Get a public profile by username
// @Tags profile
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} model.PublicProfile
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/profile/username/{username} [get]
func (h *ProfileHandler) GetByUsername(c *gin.Context) {
	user, err := h.svc.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.Project(user, GetAuthUser(c)))
}

// Search godoc
// @Summary Search public profiles
// @Description Matches username, name and company. Only public, active accounts appear.
// @Tags profile
// @Produce json
// @Param q query string false "Search term"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.PublicProfile
// @Router /api/v1/profile [get]
func (h *ProfileHandler) Search(c *gin.Context) {
	skip, limit := pageParams(c, 20)

	users, err := h.svc.Search(c.Request.Context(), c.Query("q"), skip, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	viewer := GetAuthUser(c)
	out := make([]model.PublicProfile, 0, len(users))
	for _, user := range users {
		out = append(out, service.Project(user, viewer))
	}
	c.JSON(http.StatusOK, out)
}

// Stats godoc
// @Summary Get own profile statistics
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ProfileStatsResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/profile/stats/me [get]
func (h *ProfileHandler) Stats(c *gin.Context) {
	caller := GetAuthUser(c)
	user, err := h.svc.GetByID(c.Request.Context(), caller.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ProfileStats(user, time.Now()))
}
