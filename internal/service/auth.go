// AuthService is the business logic layer for accounts and sessions. It sits
// between the HTTP handlers and the repository/auth utilities:
//
//	UserHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT)
//	                   ↘ MediaService (avatar/cover uploads)
//
// SESSION MODEL:
// A user has at most one live refresh token. Its SHA-256 hash sits on the
// user row; issuing a pair overwrites it, logout clears it. A refresh token
// that verifies but does not match the stored hash has either been rotated
// away or revoked. Presenting one ends the session for every holder.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/auth"
	"github.com/ganeswar07/WatchWonders-Backend/internal/media"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/repository"
)

const minPasswordLength = 8

// AuthService handles registration, login and the token lifecycle.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	media     *MediaService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	mediaSvc *MediaService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		media:     mediaSvc,
		logger:    logger,
	}
}

// RegisterInput is a parsed registration form. AvatarPath and
// CoverImagePath are staged temp files; CoverImagePath may be empty.
type RegisterInput struct {
	FullName       string
	Email          string
	UserName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// Register validates in, uploads the avatar (and cover image), and creates
// the user. If the insert fails the uploaded assets are destroyed again.
// Staged files are removed on every path.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.UserName = strings.ToLower(strings.TrimSpace(in.UserName))

	files := []StagedFile{{Kind: media.KindAvatar, Path: in.AvatarPath}}
	if in.CoverImagePath != "" {
		files = append(files, StagedFile{Kind: media.KindCoverImage, Path: in.CoverImagePath})
	}

	if err := s.validateRegistration(ctx, in); err != nil {
		for _, f := range files {
			s.media.removeTemp(f.Path)
		}
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		for _, f := range files {
			s.media.removeTemp(f.Path)
		}
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	batch, err := s.media.UploadSet(ctx, files...)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserName:     in.UserName,
		Email:        in.Email,
		FullName:     in.FullName,
		Avatar:       batch.URL(media.KindAvatar),
		CoverImage:   batch.URL(media.KindCoverImage),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		batch.Rollback(ctx)
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, apperror.Persistence("user", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("userName", user.UserName),
	)

	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) validateRegistration(ctx context.Context, in RegisterInput) error {
	for _, f := range []struct{ name, value string }{
		{"fullName", in.FullName},
		{"email", in.Email},
		{"userName", in.UserName},
		{"password", in.Password},
	} {
		if err := required(f.name, f.value); err != nil {
			return apperror.ValidationFailed(f.name, "All fields are required").WithDetails(err.Error())
		}
	}
	if !emailPattern.MatchString(in.Email) {
		return apperror.ValidationFailed("email", "Invalid email address")
	}
	if !userNamePattern.MatchString(in.UserName) {
		return apperror.ValidationFailed("userName", "userName may only contain lowercase letters, digits and underscores")
	}
	if err := validatePassword("password", in.Password); err != nil {
		return err
	}
	if in.AvatarPath == "" {
		return apperror.ValidationFailed("avatar", "Avatar file is required")
	}

	exists, err := s.users.ExistsByEmailOrUserName(ctx, in.Email, in.UserName)
	if err != nil {
		return fmt.Errorf("service/auth: checking existing user: %w", err)
	}
	if exists {
		return &apperror.AppError{Err: apperror.ErrConflict, Message: "User with email or username already exists"}
	}
	return nil
}

func validatePassword(field, password string) error {
	if len(password) < minPasswordLength {
		return apperror.ValidationFailed(field, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	return nil
}

// Login checks the credentials and issues a fresh token pair, ending any
// other session of the user. An unknown login is ErrNotFound and a wrong
// password is ErrUnauthenticated.
func (s *AuthService) Login(ctx context.Context, login, password string) (*model.User, auth.TokenPair, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return nil, auth.TokenPair{}, apperror.ValidationFailed("login", "userName or email and password are required")
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	if user.PasswordHash == "" {
		// GitHub-only account.
		return nil, auth.TokenPair{}, apperror.Unauthenticated("Invalid user credentials")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, auth.TokenPair{}, apperror.Unauthenticated("Invalid user credentials")
		}
		return nil, auth.TokenPair{}, fmt.Errorf("service/auth: verifying password of %s: %w", user.ID, err)
	}

	pair, err := s.IssueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	user.PasswordHash = ""
	user.RefreshTokenHash = ""
	return user, pair, nil
}

// IssueTokenPair signs a new pair for userID and stores the refresh token's
// hash, replacing any earlier one.
func (s *AuthService) IssueTokenPair(ctx context.Context, userID string) (auth.TokenPair, error) {
	pair, err := s.tokens.GeneratePair(userID)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("service/auth: generating tokens for %s: %w", userID, err)
	}
	if err := s.users.SetRefreshTokenHash(ctx, userID, auth.HashToken(pair.RefreshToken)); err != nil {
		return auth.TokenPair{}, apperror.Persistence("refresh token", err)
	}
	return pair, nil
}

// VerifyAccessToken returns the user id of a valid access token.
func (s *AuthService) VerifyAccessToken(token string) (string, error) {
	return s.tokens.ValidateAccess(token)
}

// Refresh rotates the session: the presented refresh token must be the one
// currently stored for its user. A valid-looking token that is not the
// stored one revokes the session and fails with ErrTokenReuse.
func (s *AuthService) Refresh(ctx context.Context, presented string) (auth.TokenPair, error) {
	if presented == "" {
		return auth.TokenPair{}, apperror.Unauthenticated("Unauthorized request")
	}

	userID, err := s.tokens.ValidateRefresh(presented)
	if err != nil {
		return auth.TokenPair{}, err
	}

	user, err := s.users.GetByIDWithSecrets(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return auth.TokenPair{}, apperror.Unauthenticated("Invalid refresh token")
		}
		return auth.TokenPair{}, fmt.Errorf("service/auth: loading user %s: %w", userID, err)
	}

	if !auth.MatchesHash(presented, user.RefreshTokenHash) {
		return auth.TokenPair{}, s.reuseDetected(ctx, userID)
	}

	pair, err := s.tokens.GeneratePair(userID)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("service/auth: generating tokens for %s: %w", userID, err)
	}

	// Compare-and-swap: of two concurrent refreshes with the same token only
	// one can move the stored hash forward.
	swapped, err := s.users.RotateRefreshTokenHash(ctx, userID, user.RefreshTokenHash, auth.HashToken(pair.RefreshToken))
	if err != nil {
		return auth.TokenPair{}, apperror.Persistence("refresh token", err)
	}
	if !swapped {
		return auth.TokenPair{}, s.reuseDetected(ctx, userID)
	}

	return pair, nil
}

func (s *AuthService) reuseDetected(ctx context.Context, userID string) error {
	s.logger.Warn("refresh token reuse detected, revoking session", slog.String("userID", userID))
	if err := s.Revoke(ctx, userID); err != nil {
		s.logger.Error("revoking session after token reuse failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
	}
	return apperror.TokenReuse()
}

// Revoke clears the stored refresh token. Revoking twice, or revoking an
// unknown user, succeeds.
func (s *AuthService) Revoke(ctx context.Context, userID string) error {
	if err := s.users.SetRefreshTokenHash(ctx, userID, ""); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return apperror.Persistence("session", err)
	}
	return nil
}

// ChangePassword verifies oldPassword, stores the new hash and revokes the
// refresh token so other sessions have to log in again.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperror.ValidationFailed("password", "oldPassword and newPassword are required")
	}
	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByIDWithSecrets(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" {
		return apperror.ValidationFailed("oldPassword", "Invalid old password")
	}
	if err := s.passwords.Verify(user.PasswordHash, oldPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperror.ValidationFailed("oldPassword", "Invalid old password")
		}
		return fmt.Errorf("service/auth: verifying password of %s: %w", userID, err)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.ValidationFailed("newPassword", err.Error())
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return apperror.Persistence("password", err)
	}

	s.logger.Info("password changed", slog.String("userID", userID))
	return s.Revoke(ctx, userID)
}

// CurrentUser returns the public projection of userID.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("Unauthorized request")
	}
	return s.users.GetByID(ctx, userID)
}

// UpdateAccount changes the full name and email of userID.
func (s *AuthService) UpdateAccount(ctx context.Context, userID, fullName, email string) (*model.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, apperror.ValidationFailed("fullName", "fullName and email are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "Invalid email address")
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(email, current.Email) {
		return nil, apperror.ValidationFailed("email", "New email should be different from the current email")
	}
	return s.users.UpdateAccount(ctx, userID, fullName, email)
}

// LoginWithGitHub links the GitHub account to an existing user (same GitHub
// id, else same email) or creates one, then issues a token pair.
func (s *AuthService) LoginWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*model.User, auth.TokenPair, error) {
	if gh == nil || gh.ID == 0 {
		return nil, auth.TokenPair{}, errors.New("service/auth: GitHub user must not be empty")
	}

	userName := githubUserName(gh.Login)
	email := strings.ToLower(strings.TrimSpace(gh.Email))
	if email == "" {
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", gh.ID, userName)
	}
	fullName := gh.Name
	if fullName == "" {
		fullName = gh.Login
	}

	user := &model.User{
		GitHubID: gh.ID,
		UserName: userName,
		Email:    email,
		FullName: fullName,
		Avatar:   gh.AvatarURL,
	}
	err := s.users.UpsertGitHub(ctx, user)
	if errors.Is(err, apperror.ErrConflict) {
		// The login is taken by a local account; disambiguate with the id.
		user.UserName = userName + "_" + strconv.FormatInt(gh.ID, 10)
		err = s.users.UpsertGitHub(ctx, user)
	}
	if err != nil {
		return nil, auth.TokenPair{}, fmt.Errorf("service/auth: upserting GitHub user %d: %w", gh.ID, err)
	}

	pair, err := s.IssueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", gh.Login),
	)
	return user, pair, nil
}

// githubUserName maps a GitHub login onto the local user name alphabet.
func githubUserName(login string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(login) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "github_user"
	}
	return b.String()
}
