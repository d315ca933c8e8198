// Package account registers customers and signs users in.
package account

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

const (
	minUsernameLength = 4
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
	minAge            = 1
	maxAge            = 120
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9]+([._%+-]?[A-Za-z0-9]+)*@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// errBadLogin is returned for every failed sign-in so callers cannot tell
// which field was wrong.
var errBadLogin = domain.Errorf(domain.KindValidation, "", "login information is incorrect")

// Admin is the configured administrator account. Password is plain text
// from configuration and is hashed when the service is built.
type Admin struct {
	Username string
	Password string
	Email    string
}

// RegisterInput carries the fields of a new customer.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Name     string
	Age      int
}

// Option configures the service.
type Option func(*Service)

// WithHashCost sets the bcrypt cost used for new password hashes.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// Service owns the customer list and the admin credentials.
type Service struct {
	mu        sync.RWMutex
	repo      domain.CustomerRepository
	admin     domain.Credentials
	customers []domain.Customer
	cost      int
	log       *logger.Logger
}

// New builds the service. Customers are not read until Load is called.
func New(repo domain.CustomerRepository, admin Admin, log *logger.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		repo: repo,
		cost: bcrypt.DefaultCost,
		log:  log,
	}
	for _, opt := range opts {
		opt(s)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	s.admin = domain.Credentials{Username: admin.Username, PasswordHash: string(hash), Email: admin.Email}
	return s, nil
}

// Load reads registered customers from the repository.
func (s *Service) Load(ctx context.Context) error {
	customers, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading customers: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = customers
	s.log.Debug("loaded %d customers", len(customers))
	return nil
}

// Register validates and stores a new customer.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.Customer, error) {
	if err := validate(in); err != nil {
		return domain.Customer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if domain.SameName(in.Username, s.admin.Username) {
		return domain.Customer{}, domain.Errorf(domain.KindDuplicate, in.Username, "this username already exists")
	}
	for _, c := range s.customers {
		if domain.SameName(c.Username, in.Username) {
			return domain.Customer{}, domain.Errorf(domain.KindDuplicate, in.Username, "this username already exists")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("hashing password: %w", err)
	}

	c := domain.Customer{
		Credentials: domain.Credentials{Username: in.Username, PasswordHash: string(hash), Email: in.Email},
		Name:        strings.TrimSpace(in.Name),
		Age:         in.Age,
	}
	next := append(append([]domain.Customer(nil), s.customers...), c)
	if err := s.repo.Save(ctx, next); err != nil {
		s.log.Error("saving customers: %v", err)
		return domain.Customer{}, fmt.Errorf("saving customers: %w", err)
	}
	s.customers = next
	s.log.Info("registered customer %q", c.Username)
	return c, nil
}

// SignIn checks credentials. The admin matches exactly; customers match
// username and email ignoring case.
func (s *Service) SignIn(ctx context.Context, username, password, email string) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if username == s.admin.Username && email == s.admin.Email && passwordMatches(s.admin.PasswordHash, password) {
		s.log.Info("admin signed in")
		return domain.Identity{Username: s.admin.Username, Role: domain.RoleAdmin}, nil
	}
	for _, c := range s.customers {
		if domain.SameName(c.Username, username) && domain.SameName(c.Email, email) && passwordMatches(c.PasswordHash, password) {
			s.log.Info("customer %q signed in", c.Username)
			return domain.Identity{Username: c.Username, Role: domain.RoleCustomer}, nil
		}
	}
	s.log.Debug("failed sign-in for %q", username)
	return domain.Identity{}, errBadLogin
}

// Customer returns the registered customer with the given username.
func (s *Service) Customer(username string) (domain.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if domain.SameName(c.Username, username) {
			return c, true
		}
	}
	return domain.Customer{}, false
}

// Count returns the number of registered customers.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers)
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validate(in RegisterInput) error {
	switch {
	case len(in.Username) < minUsernameLength:
		return domain.Errorf(domain.KindValidation, "username", "username must be at least %d characters", minUsernameLength)
	case !isAlphaNumeric(in.Username):
		return domain.Errorf(domain.KindValidation, "username", "username can only contain letters and numbers")
	case len(in.Password) < minPasswordLength:
		return domain.Errorf(domain.KindValidation, "password", "password must be at least %d characters", minPasswordLength)
	case len(in.Password) > maxPasswordLength:
		return domain.Errorf(domain.KindValidation, "password", "password must be at most %d characters", maxPasswordLength)
	case !emailPattern.MatchString(in.Email):
		return domain.Errorf(domain.KindValidation, "email", "invalid email format")
	case !isLettersOrSpaces(in.Name):
		return domain.Errorf(domain.KindValidation, "name", "name must contain only letters")
	case in.Age < minAge || in.Age > maxAge:
		return domain.Errorf(domain.KindValidation, "age", "age must be between %d-%d", minAge, maxAge)
	}
	return nil
}

func isAlphaNumeric(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func isLettersOrSpaces(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == ' ') {
			return false
		}
	}
	return true
}
