package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"makazi/dto"
	"makazi/errors"
	"makazi/models"
	"makazi/services/logger"
	"makazi/types"
	"makazi/validator"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

// GoogleVerifier turns a Google ID token into the signed-in identity.
type GoogleVerifier interface {
	Verify(ctx context.Context, tokenID string) (*dto.GoogleUser, error)
}

type IDTokenVerifier struct {
	clientID string
}

func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, tokenID string) (*dto.GoogleUser, error) {
	payload, err := idtoken.Validate(ctx, tokenID, v.clientID)
	if err != nil {
		return nil, err
	}
	user := &dto.GoogleUser{}
	user.Name, _ = payload.Claims["name"].(string)
	user.Email, _ = payload.Claims["email"].(string)
	user.VerifiedEmail, _ = payload.Claims["email_verified"].(bool)
	user.Picture, _ = payload.Claims["picture"].(string)
	return user, nil
}

type AuthResult struct {
	User        models.User
	AccessToken string
	ExpiresAt   time.Time
}

type AuthServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
	Tokens *TokenService
	Google GoogleVerifier
}

type AuthService struct {
	db     *gorm.DB
	logger logger.Logger
	tokens *TokenService
	google GoogleVerifier
}

func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		db:     opts.DB,
		logger: opts.Logger,
		tokens: opts.Tokens,
		google: opts.Google,
	}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *AuthService) Register(ctx context.Context, in dto.RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" {
		return nil, errors.NewAppError(errors.ErrCodeRequiredField, "Name is required", nil)
	}
	if err := validator.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validator.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validator.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	role, err := validator.ValidateSignupRole(in.Role)
	if err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, name, username, email, in.Password, role, "")
	if err != nil {
		return nil, err
	}
	s.logger.Info("registered user %d (%s) as %s", user.ID, user.Username, user.Role)
	return s.issue(*user)
}

// CreateAdmin is used by the command line to bootstrap moderators.
func (s *AuthService) CreateAdmin(ctx context.Context, name, username, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validator.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validator.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validator.ValidatePassword(password); err != nil {
		return nil, err
	}
	return s.createUser(ctx, name, username, email, password, types.RoleAdmin, "")
}

func (s *AuthService) createUser(ctx context.Context, name, username, email, password string, role types.Role, avatar string) (*models.User, error) {
	db := s.db.WithContext(ctx)
	if taken, err := s.usernameTaken(db, username); err != nil {
		return nil, err
	} else if taken {
		return nil, errors.NewAppError(errors.ErrCodeUsernameTaken, "This username is already taken. Please choose another one.", nil)
	}
	if taken, err := s.emailTaken(db, email); err != nil {
		return nil, err
	} else if taken {
		return nil, errors.NewAppError(errors.ErrCodeEmailTaken, "An account with this email already exists", nil)
	}

	var hashed string
	if password != "" {
		var err error
		if hashed, err = HashPassword(password); err != nil {
			return nil, errors.NewAppError(errors.ErrCodeInternal, "Could not secure password", err)
		}
	}

	user := models.User{
		Name:     name,
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     role,
		Avatar:   avatar,
	}
	if err := db.Create(&user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateError(db, username)
		}
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not create account", err)
	}
	return &user, nil
}

// duplicateError tells which unique column lost a concurrent insert.
func (s *AuthService) duplicateError(db *gorm.DB, username string) error {
	if taken, _ := s.usernameTaken(db, username); taken {
		return errors.NewAppError(errors.ErrCodeUsernameTaken, "This username is already taken. Please choose another one.", nil)
	}
	return errors.NewAppError(errors.ErrCodeEmailTaken, "An account with this email already exists", nil)
}

func (s *AuthService) usernameTaken(db *gorm.DB, username string) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("LOWER(username) = ?", strings.ToLower(username)).Count(&count).Error; err != nil {
		return false, errors.NewAppError(errors.ErrCodeDBError, "Could not check username", err)
	}
	return count > 0, nil
}

func (s *AuthService) emailTaken(db *gorm.DB, email string) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, errors.NewAppError(errors.ErrCodeDBError, "Could not check email", err)
	}
	return count > 0, nil
}

func (s *AuthService) Login(ctx context.Context, in dto.LoginInput) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).First(&user).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewAppError(errors.ErrCodeInvalidPassword, "Invalid email or password", nil)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not sign in", err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, errors.NewAppError(errors.ErrCodeInvalidPassword, "Invalid email or password", errors.ErrInvalidPassword)
	}
	return s.issue(user)
}

// GoogleLogin signs in with a Google ID token, creating a tenant account on first use.
func (s *AuthService) GoogleLogin(ctx context.Context, tokenID string) (*AuthResult, error) {
	if s.google == nil {
		return nil, errors.NewAppError(errors.ErrCodeInvalidOperation, "Google sign-in is not configured", nil)
	}
	googleUser, err := s.google.Verify(ctx, tokenID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeInvalidToken, "Google token could not be verified", err)
	}
	if !googleUser.VerifiedEmail || googleUser.Email == "" {
		return nil, errors.NewAppError(errors.ErrCodeInvalidEmail, "Email has not been verified", nil)
	}

	email := strings.ToLower(googleUser.Email)
	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		username, err := s.availableUsername(ctx, email)
		if err != nil {
			return nil, err
		}
		name := googleUser.Name
		if name == "" {
			name = username
		}
		created, err := s.createUser(ctx, name, username, email, "", types.RoleTenant, googleUser.Picture)
		if err != nil {
			return nil, err
		}
		s.logger.Info("created tenant %d from Google sign-in", created.ID)
		return s.issue(*created)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not sign in", err)
	}
	return s.issue(user)
}

// availableUsername derives a free username from the email's local part.
func (s *AuthService) availableUsername(ctx context.Context, email string) (string, error) {
	base := strings.Split(email, "@")[0]
	base = strings.Trim(usernameDisallowed.ReplaceAllString(base, "_"), "_")
	if len(base) < 3 {
		base += "user"
	}
	if len(base) > 56 {
		base = base[:56]
	}
	if err := validator.ValidateUsername(base); err != nil {
		return "", err
	}
	db := s.db.WithContext(ctx)
	candidate := base
	for i := 1; i < 1000; i++ {
		taken, err := s.usernameTaken(db, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", errors.NewAppError(errors.ErrCodeUsernameTaken, "Could not pick a username", nil)
}

// usernameDisallowed matches runs of characters a username may not contain.
var usernameDisallowed = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func (s *AuthService) issue(user models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(UserInfo{UserId: user.ID, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	return s.tokens.RevokeToken(ctx, claims)
}

// Profile loads the signed-in user; a missing row ends the session.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewAppError(errors.ErrCodeUserNotFound, "Your profile could not be found, please sign in again", errors.ErrUserNotFound)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load profile", err)
	}
	return &user, nil
}

// DashboardRedirect returns where a page at path should send the visitor, or "" to stay.
// role is nil for anonymous visitors.
func DashboardRedirect(path string, role *types.Role) string {
	if role == nil {
		if strings.Contains(path, "dashboard") || strings.Contains(path, "pages") {
			return "login.html"
		}
		return ""
	}

	target := role.Dashboard()
	if target == "" {
		return "login.html"
	}
	if strings.Contains(path, "/dashboards/") && !strings.HasSuffix(path, target) {
		return "../" + target
	}
	if strings.HasSuffix(path, "/login.html") || strings.HasSuffix(path, "/register.html") || strings.HasSuffix(path, "/") {
		return target
	}
	return ""
}

// LogoutRedirect is the login page relative to path.
func LogoutRedirect(path string) string {
	if strings.Contains(path, "dashboards/") || strings.Contains(path, "pages/") {
		return "../login.html"
	}
	return "login.html"
}
