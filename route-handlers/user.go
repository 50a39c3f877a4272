package routehandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/coreybb/mylist/auth"
	"github.com/coreybb/mylist/credentials"
	"github.com/coreybb/mylist/datastore"
	"github.com/coreybb/mylist/models"
	"github.com/coreybb/mylist/webutil"
)

const (
	tokenTypeBearer = "bearer"

	// Legacy value of update_notification_status that requests a toggle.
	legacyToggleValue = "Yes"
)

type UserHandler struct {
	Users      UserStore
	Tokens     *auth.TokenService
	BcryptCost int
	Logger     *zap.Logger
}

func NewUserHandler(users UserStore, tokens *auth.TokenService, bcryptCost int, logger *zap.Logger) *UserHandler {
	return &UserHandler{Users: users, Tokens: tokens, BcryptCost: bcryptCost, Logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	CurrentPassword          string `json:"current_password"`
	Email                    string `json:"email,omitempty"`
	NewPassword              string `json:"new_password,omitempty"`
	ToggleNotifications      bool   `json:"toggle_notifications,omitempty"`
	UpdateNotificationStatus string `json:"update_notification_status,omitempty"`
}

type deleteUserRequest struct {
	Password string `json:"password"`
}

type userResponse struct {
	ID            int64                     `json:"id"`
	Email         string                    `json:"email"`
	Notifications models.NotificationStatus `json:"notifications"`
	Links         webutil.Links             `json:"links"`
}

type tokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	Links       webutil.Links `json:"links"`
}

func newUserResponse(user *models.User, links webutil.Links) userResponse {
	return userResponse{
		ID:            user.ID,
		Email:         user.Email,
		Notifications: user.Notifications,
		Links:         links,
	}
}

func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) error {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	defer r.Body.Close()
	req.Email = strings.TrimSpace(req.Email)

	if _, err := h.Users.GetUserByEmail(r.Context(), req.Email); err == nil {
		return webutil.ErrConflict(webutil.CodeExistingUser, "Email already registered").
			WithDetails(map[string]any{"email": req.Email})
	} else if !errors.Is(err, datastore.ErrUserNotFound) {
		return fmt.Errorf("failed to check existing email: %w", err)
	}

	if !credentials.CheckEmailFormat(req.Email) || !credentials.CheckPasswordPolicy(req.Password) {
		return webutil.ErrBadRequest(webutil.CodeInvalidCredentials,
			"Email must be valid and the password must have at least 8 characters including "+
				"an uppercase letter, a lowercase letter, a digit and a special character").
			WithDetails(map[string]any{"email": req.Email})
	}

	hash, err := credentials.HashPasswordCost(req.Password, h.BcryptCost)
	if err != nil {
		if errors.Is(err, credentials.ErrPasswordTooLong) {
			return webutil.ErrBadRequestWrap(webutil.CodeInvalidCredentials, "Password is too long", err)
		}
		return err
	}

	newUser := models.User{
		Email:         req.Email,
		PasswordHash:  hash,
		Notifications: models.NotificationsEnabled,
	}
	if err := h.Users.CreateUser(r.Context(), &newUser); err != nil {
		if errors.Is(err, datastore.ErrEmailTaken) {
			return webutil.ErrConflict(webutil.CodeExistingUser, "Email already registered").
				WithDetails(map[string]any{"email": req.Email})
		}
		return fmt.Errorf("failed to create user %s: %w", req.Email, err)
	}

	h.Logger.Info("User registered", zap.Int64("user_id", newUser.ID))
	webutil.RespondWithJSON(w, http.StatusCreated, newUserResponse(&newUser, registerLinks()))
	return nil
}

func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	defer r.Body.Close()
	req.Email = strings.TrimSpace(req.Email)

	if !credentials.CheckEmailFormat(req.Email) || !credentials.CheckPasswordPolicy(req.Password) {
		return webutil.ErrUnauthorized(webutil.CodeInvalidCredentials, "Invalid email or password")
	}

	user, err := h.Users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, datastore.ErrUserNotFound) {
			return webutil.ErrNotFoundWrap(webutil.CodeUserNotFound, "User not found", err).
				WithDetails(map[string]any{"email": req.Email})
		}
		return fmt.Errorf("failed to load user for login: %w", err)
	}

	if !credentials.VerifyPassword(req.Password, user.PasswordHash) {
		return webutil.ErrUnauthorized(webutil.CodeInvalidCredentials, "Invalid email or password")
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue token for user %d: %w", user.ID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(h.Tokens.TTL().Seconds()),
		Links:       loginLinks(),
	})
	return nil
}

func (h *UserHandler) HandleGetCurrentUser(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, newUserResponse(user, currentUserLinks()))
	return nil
}

// HandleUpdateCurrentUser changes email, password and the notification flag
// in one write. Every new value is checked before anything is stored.
func (h *UserHandler) HandleUpdateCurrentUser(w http.ResponseWriter, r *http.Request) error {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	defer r.Body.Close()

	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	if req.CurrentPassword == "" {
		return webutil.ErrUnauthorized(webutil.CodeInvalidCredentials, "Current password is required")
	}
	if !credentials.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return webutil.ErrUnauthorized(webutil.CodeInvalidCredentials, "Current password is incorrect")
	}

	updated := *user
	newEmail := strings.TrimSpace(req.Email)
	if newEmail != "" {
		if !credentials.CheckEmailFormat(newEmail) {
			return webutil.ErrBadRequest(webutil.CodeInvalidEmail, "Email format is invalid").
				WithDetails(map[string]any{"email": newEmail})
		}
		updated.Email = newEmail
	}
	if req.NewPassword != "" {
		if !credentials.CheckPasswordPolicy(req.NewPassword) {
			return webutil.ErrBadRequest(webutil.CodeInvalidPassword,
				"Password must have at least 8 characters including an uppercase letter, "+
					"a lowercase letter, a digit and a special character")
		}
		hash, err := credentials.HashPasswordCost(req.NewPassword, h.BcryptCost)
		if err != nil {
			if errors.Is(err, credentials.ErrPasswordTooLong) {
				return webutil.ErrBadRequestWrap(webutil.CodeInvalidPassword, "Password is too long", err)
			}
			return err
		}
		updated.PasswordHash = hash
	}
	if req.ToggleNotifications || req.UpdateNotificationStatus == legacyToggleValue {
		updated.Notifications = updated.Notifications.Toggle()
	}

	if err := h.Users.UpdateUser(r.Context(), &updated); err != nil {
		switch {
		case errors.Is(err, datastore.ErrEmailTaken):
			return webutil.ErrConflict(webutil.CodeExistingUser, "Email already registered").
				WithDetails(map[string]any{"email": updated.Email})
		case errors.Is(err, datastore.ErrUserNotFound):
			return webutil.ErrNotFoundWrap(webutil.CodeUserNotFound, "User not found", err)
		}
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, newUserResponse(&updated, updatedUserLinks()))
	return nil
}

func (h *UserHandler) HandleDeleteCurrentUser(w http.ResponseWriter, r *http.Request) error {
	var req deleteUserRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	defer r.Body.Close()

	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	if req.Password == "" || !credentials.VerifyPassword(req.Password, user.PasswordHash) {
		return webutil.ErrBadRequest(webutil.CodeInvalidCredentials, "Password is incorrect")
	}

	if err := h.Users.DeleteUser(r.Context(), user.ID); err != nil {
		if errors.Is(err, datastore.ErrUserNotFound) {
			return webutil.ErrNotFoundWrap(webutil.CodeUserNotFound, "User not found", err)
		}
		return fmt.Errorf("failed to delete user %d: %w", user.ID, err)
	}

	h.Logger.Info("User deleted", zap.Int64("user_id", user.ID))
	webutil.RespondNoContent(w)
	return nil
}

func (h *UserHandler) currentUser(r *http.Request) (*models.User, error) {
	userID, err := callerID(r)
	if err != nil {
		return nil, err
	}
	user, err := h.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, datastore.ErrUserNotFound) {
			return nil, webutil.ErrNotFoundWrap(webutil.CodeUserNotFound, "User not found", err)
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return user, nil
}
