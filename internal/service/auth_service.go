package service

import (
	"context"
	"errors"
	"strings"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/model"
	"walldecor-admin/internal/repository"
	"walldecor-admin/pkg/jwt"
	"walldecor-admin/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionExpired     = errors.New("session expired (logged in on another device)")
)

type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*model.Employee, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	// Authenticate resolves a bearer token to the employee behind it, with the role as stored now
	Authenticate(ctx context.Context, token string) (*Actor, error)
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
	SeedAccounts(ctx context.Context, accounts []SeedAccount) error
}

type SignupRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Position string `json:"position" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token    string         `json:"token"`
	Employee model.Employee `json:"employee"`
}

// SeedAccount links a login to an existing employee
type SeedAccount struct {
	Email      string
	Password   string
	EmployeeID string
}

// DefaultAccounts are the logins of the seeded leadership employees
var DefaultAccounts = []SeedAccount{
	{Email: "ceo@walldecor.local", Password: "admin123", EmployeeID: "EMP-0001"},
	{Email: "cto@walldecor.local", Password: "admin123", EmployeeID: "EMP-0002"},
	{Email: "cmo@walldecor.local", Password: "admin123", EmployeeID: "EMP-0003"},
}

type authService struct {
	repo   repository.Repository
	creds  repository.CredentialRepository
	tokens *jwt.Manager
	log    *zap.Logger
}

func NewAuthService(repo repository.Repository, creds repository.CredentialRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	return &authService{repo: repo, creds: creds, tokens: tokens, log: log.Named("auth")}
}

var signupMessages = map[string]string{
	"name":     "name is required",
	"position": "position is required",
	"email":    "email is not valid",
	"password": "password must be at least 6 characters",
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*model.Employee, error) {
	// 1. Validasi input
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, composer.Invalid(errs[0].Field, signupMessages[errs[0].Field])
	}

	// 2. Cek email sudah terdaftar
	if _, err := s.creds.FindByEmail(ctx, req.Email); err == nil {
		return nil, repository.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 3. Reservasi email dulu supaya signup ganda tidak membuat employee yatim
	cred := &model.Credential{Email: req.Email, EmployeeID: "pending-" + uuid.NewString(), TokenVersion: uuid.NewString()}
	if err := cred.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		return nil, err
	}

	// 4. Buat employee dengan role PENDING sampai di-approve CEO
	e, err := s.repo.Employees().Create(ctx, composer.EmployeeInput{
		Name:     req.Name,
		Position: req.Position,
		Role:     model.RolePending,
	})
	if err != nil {
		s.release(ctx, cred.Email)
		return nil, err
	}

	// 5. Hubungkan credential ke employee
	if err := s.creds.LinkEmployee(ctx, cred.Email, e.ID); err != nil {
		s.log.Error("Credential not linked to employee", zap.String("employee_id", e.ID), zap.Error(err))
		s.release(ctx, cred.Email)
		return nil, err
	}

	s.log.Info("Signup", zap.String("employee_id", e.ID))
	return e, nil
}

// release drops a reserved credential after a failed signup
func (s *authService) release(ctx context.Context, email string) {
	if err := s.creds.Delete(ctx, email); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("Failed to release credential", zap.String("email", email), zap.Error(err))
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	// 1. Find credential by email
	cred, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// 2. Verify password
	if !cred.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 3. Employee record carries the current role
	e, err := s.findEmployee(ctx, cred.EmployeeID)
	if err != nil {
		return nil, err
	}

	// 4. Single Session: Generate New Token Version
	version := uuid.NewString()
	if err := s.creds.UpdateTokenVersion(ctx, cred.Email, version); err != nil {
		return nil, errors.New("failed to update session")
	}

	// 5. Generate JWT token with TokenVersion
	token, err := s.tokens.GenerateToken(e.ID, cred.Email, e.Name, string(e.Role), version)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	s.log.Info("Login", zap.String("employee_id", e.ID), zap.String("role", string(e.Role)))
	return &LoginResponse{Token: token, Employee: *e}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Actor, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	cred, err := s.creds.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if cred.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}

	e, err := s.findEmployee(ctx, claims.EmployeeID)
	if err != nil {
		return nil, err
	}
	return &Actor{EmployeeID: e.ID, Name: e.Name, Email: cred.Email, Role: e.Role}, nil
}

func (s *authService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	cred, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		return ErrUserNotFound
	}
	if !cred.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if len(newPassword) < 6 {
		return composer.Invalid("newPassword", "password must be at least 6 characters")
	}
	if err := cred.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	if err := s.creds.UpdatePassword(ctx, cred.Email, cred.Password); err != nil {
		return err
	}
	// log out every other session
	return s.creds.UpdateTokenVersion(ctx, cred.Email, uuid.NewString())
}

// SeedAccounts creates the missing logins; existing ones keep their password
func (s *authService) SeedAccounts(ctx context.Context, accounts []SeedAccount) error {
	for _, a := range accounts {
		if _, err := s.creds.FindByEmail(ctx, a.Email); err == nil {
			continue
		}
		cred := &model.Credential{Email: a.Email, EmployeeID: a.EmployeeID}
		if err := cred.SetPassword(a.Password); err != nil {
			return err
		}
		if err := s.creds.Create(ctx, cred); err != nil {
			return err
		}
		s.log.Info("Seeded account", zap.String("email", strings.ToLower(a.Email)), zap.String("employee_id", a.EmployeeID))
	}
	return nil
}

func (s *authService) findEmployee(ctx context.Context, id string) (*model.Employee, error) {
	employees, err := s.repo.Employees().List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range employees {
		if employees[i].ID == id {
			return &employees[i], nil
		}
	}
	return nil, ErrUserNotFound
}
