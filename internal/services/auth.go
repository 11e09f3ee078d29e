package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"med-field-force/internal/models"
	"med-field-force/internal/repository"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// DefaultTokenTTL is how long an issued token stays valid
const DefaultTokenTTL = 7 * 24 * time.Hour

// RegisterRequest carries the fields of a new account
type RegisterRequest struct {
	Name     string      `json:"name" validate:"required"`
	Phone    string      `json:"phone" validate:"required"`
	Email    string      `json:"email" validate:"omitempty,email"`
	Password string      `json:"password" validate:"required"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=SALESMAN MANAGER"`
}

// LoginResult is returned on a successful login
type LoginResult struct {
	Token string              `json:"token"`
	Staff *models.StaffMember `json:"staff"`
}

// AuthService registers accounts and issues tokens
type AuthService struct {
	accountRepo repository.AccountStore
	staffRepo   repository.StaffStore
	limiter     *LoginLimiter
	secret      []byte
	managers    map[string]bool
	tokenTTL    time.Duration
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(accountRepo repository.AccountStore, staffRepo repository.StaffStore, limiter *LoginLimiter, secret []byte) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		staffRepo:   staffRepo,
		limiter:     limiter,
		secret:      secret,
		managers:    make(map[string]bool),
		tokenTTL:    DefaultTokenTTL,
		now:         time.Now,
	}
}

// AllowManagerPhones lets these phones register as managers without a
// manager entry on the roster
func (s *AuthService) AllowManagerPhones(phones ...string) *AuthService {
	for _, p := range phones {
		if p = strings.TrimSpace(p); p != "" {
			s.managers[p] = true
		}
	}
	return s
}

// Register creates an account. A roster entry with the same phone is
// linked; otherwise a new staff member is added.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.StaffMember, error) {
	req.Phone = strings.TrimSpace(req.Phone)
	if !phonePattern.MatchString(req.Phone) {
		return nil, ErrInvalidPhone
	}
	if len(req.Password) < 4 {
		return nil, ErrWeakPassword
	}
	if req.Role == "" {
		req.Role = models.RoleSalesman
	}

	if _, err := s.accountRepo.FindByPhone(ctx, req.Phone); err == nil {
		return nil, repository.ErrAccountExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	staff, err := s.staffByPhone(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	// the roster decides the role; MANAGER is only granted to manager
	// entries or allowed phones
	if req.Role == models.RoleManager && !s.managers[req.Phone] && (staff == nil || staff.Role != models.RoleManager) {
		return nil, ErrManagerNotAllowed
	}
	if staff == nil {
		staff = &models.StaffMember{
			ID:            "S" + newID(),
			EmployeeID:    fmt.Sprintf("ELD-%s-%s", roleCode(req.Role), req.Phone[len(req.Phone)-4:]),
			Name:          strings.TrimSpace(req.Name),
			Role:          req.Role,
			Department:    "Pharma Sales",
			Phone:         req.Phone,
			Email:         req.Email,
			JoiningDate:   s.now().Format("2006-01-02"),
			PhotoSeed:     req.Phone,
			AssignedTasks: []models.Task{},
			Version:       1,
		}
		if staff.Role == models.RoleManager {
			staff.Department = "Operations"
		}
		if err := s.staffRepo.Save(ctx, staff); err != nil {
			return nil, fmt.Errorf("failed to add staff member: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	account := &models.Account{
		StaffID:      staff.ID,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         staff.Role,
		CreatedAt:    s.now(),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	log.Printf("👤 Registered %s (%s) as %s", staff.Name, staff.ID, staff.Role)
	return staff, nil
}

func roleCode(role models.Role) string {
	if role == models.RoleManager {
		return "MGR"
	}
	return "SLS"
}

func (s *AuthService) staffByPhone(ctx context.Context, phone string) (*models.StaffMember, error) {
	roster, err := s.staffRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range roster {
		if m.Phone == phone {
			return &m, nil
		}
	}
	return nil, nil
}

// Login checks the password and returns a signed token
func (s *AuthService) Login(ctx context.Context, phone, password string) (*LoginResult, error) {
	phone = strings.TrimSpace(phone)
	if locked, minutes := s.limiter.IsLocked(phone); locked {
		return nil, &LoginLockedError{Remaining: minutes}
	}

	account, err := s.accountRepo.FindByPhone(ctx, phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if account == nil || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		if locked, minutes := s.limiter.RecordFailure(phone); locked {
			log.Printf("🔒 Locked %s after repeated failed logins", phone)
			return nil, &LoginLockedError{Remaining: minutes}
		}
		return nil, ErrInvalidCredentials
	}
	s.limiter.Reset(phone)

	staff, err := s.staffRepo.Get(ctx, account.StaffID)
	if err != nil {
		return nil, err
	}
	token, err := s.IssueToken(staff.ID, staff.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Staff: staff}, nil
}

// IssueToken signs an HS256 token carrying the staff id and role
func (s *AuthService) IssueToken(staffID string, role models.Role) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"id":   staffID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
