package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"beatshop/internal/models"
	"beatshop/internal/services"
)

// ContactHandler persists contact form submissions: database as the
// primary store, Redis backup and owner email notification best-effort.
type ContactHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
	email *services.EmailService
}

func NewContactHandler(db *gorm.DB, cache *services.RedisCache, email *services.EmailService) *ContactHandler {
	return &ContactHandler{db: db, cache: cache, email: email}
}

// SubmitContact accepts the contact form. All three fields are
// required.
func (h *ContactHandler) SubmitContact(c echo.Context) error {
	name := c.FormValue("name")
	email := c.FormValue("email")
	message := c.FormValue("message")

	if name == "" || email == "" || message == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "All fields are required",
		})
	}

	ctx := c.Request().Context()
	submission := models.ContactSubmission{Name: name, Email: email, Message: message}
	if err := h.db.WithContext(ctx).Create(&submission).Error; err != nil {
		c.Logger().Errorf("save contact submission: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Internal server error",
		})
	}

	// Backup write; the primary row is already saved
	backupKey := fmt.Sprintf("contact:%d", time.Now().UnixMilli())
	if err := h.cache.Set(ctx, backupKey, submission, 0); err != nil {
		c.Logger().Warnf("contact backup write failed: %v", err)
	}

	if h.email != nil {
		if err := h.email.NotifyContact(name, email, message); err != nil {
			c.Logger().Warnf("contact notification email failed: %v", err)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Contact form submitted successfully",
	})
}
