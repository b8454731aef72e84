package profile

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/domain"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/validators"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/views"
)

const (
	loadError        = "Failed to load profile"
	saveError        = "Failed to save profile"
	prefsSaveError   = "Failed to save preferences"
	profileSaved     = "Profile updated successfully!"
	preferencesSaved = "Preferences updated successfully!"

	profileFormID = "profile-form"
	prefsFormID   = "preferences-form"
)

// Handler renders the profile tab and accepts its two forms.
type Handler struct {
	*domain.BaseHandler
	service Service
}

func NewHandler(base *domain.BaseHandler, service Service) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

var _ tabs.Content = (*Handler)(nil)

func (h *Handler) Render(_ *gin.Context, sel models.Selection) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p, err := h.service.FetchProfile(ctx, sel.UserID)
		if err != nil {
			return views.Alert(views.SeverityError, loadError).Render(ctx, w)
		}
		return profileView(p).Render(ctx, w)
	})
}

// UpdateProfile handles POST /account/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "UpdateProfile"))
	sel, ok := selection(c)
	if !ok {
		h.RenderError(c, models.ErrBadRequest, saveError)
		return
	}

	var upd models.ProfileUpdate
	if err := c.ShouldBind(&upd); err != nil {
		fieldErrs := validators.FieldErrors(err)
		if fieldErrs == nil {
			l.Warn("Malformed profile form", zap.Error(err))
			h.RenderError(c, models.ErrBadRequest, saveError)
			return
		}
		h.RenderComponent(c, http.StatusUnprocessableEntity, profileForm(upd, fieldErrs, nil))
		return
	}
	upd = trimUpdate(upd)

	if err := h.service.UpdateProfile(c.Request.Context(), sel.UserID, upd); err != nil {
		if !errors.Is(err, models.ErrValidation) {
			l.Error("Profile update failed", zap.Int64("userID", sel.UserID), zap.Error(err))
		}
		h.RenderComponent(c, domain.StatusFor(err), profileForm(upd, nil, views.Alert(views.SeverityError, saveError)))
		return
	}
	h.RenderComponent(c, http.StatusOK, profileForm(upd, nil, views.Alert(views.SeveritySuccess, profileSaved)))
}

// UpdatePreferences handles POST /account/preferences.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	sel, ok := selection(c)
	if !ok {
		h.RenderError(c, models.ErrBadRequest, prefsSaveError)
		return
	}

	var prefs models.Preferences
	if err := c.ShouldBind(&prefs); err != nil {
		h.RenderError(c, errors.Join(models.ErrBadRequest, err), prefsSaveError)
		return
	}
	if err := h.service.UpdatePreferences(c.Request.Context(), sel.UserID, prefs); err != nil {
		h.RenderComponent(c, domain.StatusFor(err), preferencesForm(prefs, views.Alert(views.SeverityError, prefsSaveError)))
		return
	}
	h.RenderComponent(c, http.StatusOK, preferencesForm(prefs, views.Alert(views.SeveritySuccess, preferencesSaved)))
}

func selection(c *gin.Context) (models.Selection, bool) {
	ws, ok := session.FromContext(c)
	if !ok {
		return models.Selection{}, false
	}
	return ws.Selection(), true
}

func trimUpdate(u models.ProfileUpdate) models.ProfileUpdate {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Email = strings.TrimSpace(u.Email)
	u.Phone = strings.TrimSpace(u.Phone)
	u.Address = strings.TrimSpace(u.Address)
	return u
}

func profileView(p models.Profile) templ.Component {
	summary := views.Group(
		views.Avatar(p.Initials()),
		views.Paragraph("text-lg font-semibold", p.FullName()),
		views.Paragraph("member-since text-sm text-gray-500", "Member since "+views.FormatDate(p.DateCreated)),
		views.Chip(p.Role.String(), "primary"),
	)
	upd := models.ProfileUpdate{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Address:   p.Address,
	}
	return views.Group(
		views.Card("Profile", views.Group(summary, profileForm(upd, nil, nil))),
		views.Card("Contact Preferences", preferencesForm(p.Preferences, nil)),
	)
}

func profileForm(u models.ProfileUpdate, errs map[string]string, notice templ.Component) templ.Component {
	return views.Form(profileFormID, "/account/profile",
		notice,
		views.TextField("firstname", "First Name", "text", u.FirstName, errs["firstname"]),
		views.TextField("lastname", "Last Name", "text", u.LastName, errs["lastname"]),
		views.TextField("email", "Email", "email", u.Email, errs["email"]),
		views.TextField("phone", "Phone", "tel", u.Phone, errs["phone"]),
		views.TextField("address", "Address", "text", u.Address, errs["address"]),
		views.Submit("Save Changes"),
	)
}

func preferencesForm(p models.Preferences, notice templ.Component) templ.Component {
	return views.Form(prefsFormID, "/account/preferences",
		notice,
		views.Fieldset("Notification Methods",
			views.Switch("emailNotifications", "Email Notifications", p.EmailNotifications),
			views.Switch("smsNotifications", "SMS Notifications", p.SMSNotifications),
			views.Switch("mailNotifications", "Mail Notifications", p.MailNotifications),
		),
		views.Fieldset("Communication Preferences",
			views.Switch("marketingEmails", "Marketing Emails", p.MarketingEmails),
			views.Switch("eventReminders", "Event Reminders", p.EventReminders),
			views.Switch("newsletterSubscription", "Newsletter Subscription", p.NewsletterSubscription),
		),
		views.Submit("Save Preferences"),
	)
}
