package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/auth"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/service"
)

// AccountService is the part of service.AuthService the user routes need.
type AccountService interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, login, password string) (*model.User, auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	Revoke(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	UpdateAccount(ctx context.Context, userID, fullName, email string) (*model.User, error)
	LoginWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*model.User, auth.TokenPair, error)
}

// ProfileMedia replaces a user's avatar or cover image.
type ProfileMedia interface {
	ChangeAvatar(ctx context.Context, user *model.User, path string) (*model.User, error)
	ChangeCoverImage(ctx context.Context, user *model.User, path string) (*model.User, error)
}

// OAuthProvider runs the GitHub authorization code flow.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// UserHandler serves /users: registration, sessions and account settings.
type UserHandler struct {
	responder
	accounts AccountService
	profile  ProfileMedia
	github   OAuthProvider // nil when GitHub login is not configured
	stager   Stager
	maxBytes int64
	cookies  cookieJar
}

// UserHandlerConfig bundles the dependencies of NewUserHandler.
type UserHandlerConfig struct {
	Accounts       AccountService
	Profile        ProfileMedia
	GitHub         OAuthProvider
	Stager         Stager
	MaxUploadBytes int64
	Cookies        CookieConfig
	Logger         *slog.Logger
}

func NewUserHandler(cfg UserHandlerConfig) *UserHandler {
	return &UserHandler{
		responder: responder{logger: cfg.Logger},
		accounts:  cfg.Accounts,
		profile:   cfg.Profile,
		github:    cfg.GitHub,
		stager:    cfg.Stager,
		maxBytes:  cfg.MaxUploadBytes,
		cookies:   cookieJar{cfg: cfg.Cookies},
	}
}

// loginResponse is the data of a successful login or GitHub callback.
type loginResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// HandleRegister creates an account from a multipart form.
//
// HTTP: POST /api/v1/users/register
// FORM: fullName, email, userName, password, avatar (file), coverImage (optional file)
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	form, err := parseUpload(w, r, h.stager, h.maxBytes, "avatar", "coverImage")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer form.cleanup()

	user, err := h.accounts.Register(r.Context(), service.RegisterInput{
		FullName:       form.value("fullName"),
		Email:          form.value("email"),
		UserName:       form.value("userName"),
		Password:       form.values["password"],
		AvatarPath:     form.file("avatar"),
		CoverImagePath: form.file("coverImage"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, user, "User registered successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	UserName string `json:"userName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin checks credentials and sets both session cookies.
//
// HTTP: POST /api/v1/users/login
// BODY: {"email" | "userName": "...", "password": "..."}
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	login := req.UserName
	if login == "" {
		login = req.Username
	}
	if login == "" {
		login = req.Email
	}

	user, pair, err := h.accounts.Login(r.Context(), login, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.setTokens(w, pair)
	writeOK(w, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged In Successfully")
}

// HandleLogout revokes the refresh token and clears the cookies.
//
// HTTP: POST /api/v1/users/logout (auth)
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.accounts.Revoke(r.Context(), user.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.cookies.clearTokens(w)
	writeOK(w, http.StatusOK, struct{}{}, "User logged Out")
}

// HandleRefresh rotates the token pair. The refresh token comes from the
// refreshToken cookie, else from the JSON body. On reuse detection the
// session is already revoked, so the cookies are cleared too.
//
// HTTP: PATCH /api/v1/users/tokens
func (h *UserHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(auth.RefreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			h.fail(w, r, err)
			return
		}
		token = body.RefreshToken
	}

	pair, err := h.accounts.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, apperror.ErrTokenReuse) {
			h.cookies.clearTokens(w)
		}
		h.fail(w, r, err)
		return
	}

	h.cookies.setTokens(w, pair)
	writeOK(w, http.StatusOK, pair, "Access token refreshed")
}

// HandleChangePassword
//
// HTTP: PATCH /api/v1/users/change-password (auth)
// BODY: {"oldPassword": "...", "newPassword": "..."}
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.accounts.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		h.fail(w, r, err)
		return
	}
	// The refresh token was revoked with the password change.
	h.cookies.clearTokens(w)
	writeOK(w, http.StatusOK, struct{}{}, "Password changed successfully")
}

// HandleCurrentUser returns the authenticated user.
//
// HTTP: GET /api/v1/users/current-user (auth)
func (h *UserHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, user, "User fetched successfully")
}

// HandleUpdateAccount
//
// HTTP: PATCH /api/v1/users/update-accountDetails (auth)
// BODY: {"fullName": "...", "email": "..."}
func (h *UserHandler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	updated, err := h.accounts.UpdateAccount(r.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, updated, "Account details updated successfully")
}

// HandleChangeAvatar replaces the avatar with the uploaded "avatar" file.
//
// HTTP: PATCH /api/v1/users/change-avatar (auth, multipart)
func (h *UserHandler) HandleChangeAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", h.profile.ChangeAvatar, "Avatar updated successfully")
}

// HandleChangeCoverImage replaces the cover image with the uploaded
// "coverImage" file.
//
// HTTP: PATCH /api/v1/users/change-coverImage (auth, multipart)
func (h *UserHandler) HandleChangeCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", h.profile.ChangeCoverImage, "Cover image updated successfully")
}

func (h *UserHandler) replaceImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	replace func(context.Context, *model.User, string) (*model.User, error),
	message string,
) {
	user, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form, err := parseUpload(w, r, h.stager, h.maxBytes, field)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer form.cleanup()

	path := form.file(field)
	if path == "" {
		h.fail(w, r, apperror.ValidationFailed(field, field+" file is missing"))
		return
	}
	updated, err := replace(r.Context(), user, path)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, updated, message)
}

// HandleGitHubLogin redirects to GitHub. A random state is stored in a
// short-lived cookie and checked on callback.
//
// HTTP: GET /api/v1/users/auth/github/login
func (h *UserHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		h.fail(w, r, apperror.NotFound("login provider", "github"))
		return
	}
	state := xid.New().String()
	h.cookies.setState(w, state)
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the GitHub flow: check state, exchange the
// code, link or create the account and set the session cookies.
//
// HTTP: GET /api/v1/users/auth/github/callback?code=...&state=...
func (h *UserHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		h.fail(w, r, apperror.NotFound("login provider", "github"))
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.fail(w, r, apperror.ValidationFailed("state", "Invalid OAuth state"))
		return
	}
	h.cookies.clearState(w)

	if denied := r.URL.Query().Get("error"); denied != "" {
		h.fail(w, r, apperror.Unauthenticated("GitHub authorization was denied"))
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		h.fail(w, r, apperror.ValidationFailed("code", "Missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("GitHub code exchange failed", slog.String("error", err.Error()))
		h.fail(w, r, apperror.Unauthenticated("GitHub authentication failed"))
		return
	}

	user, pair, err := h.accounts.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.setTokens(w, pair)
	writeOK(w, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged In Successfully")
}
