package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"walldecor-admin/internal/model"

	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email already registered")

// CredentialRepository stores login identities next to, not inside, the business data
type CredentialRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Credential, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*model.Credential, error)
	Create(ctx context.Context, cred *model.Credential) error
	UpdatePassword(ctx context.Context, email, hashedPassword string) error
	UpdateTokenVersion(ctx context.Context, email, version string) error
	LinkEmployee(ctx context.Context, email, employeeID string) error
	Delete(ctx context.Context, email string) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type credentialRepo struct {
	db *gorm.DB
}

func NewCredentialRepo(db *gorm.DB) CredentialRepository {
	return &credentialRepo{db}
}

func (r *credentialRepo) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var cred model.Credential
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepo) FindByEmployeeID(ctx context.Context, employeeID string) (*model.Credential, error) {
	var cred model.Credential
	err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepo) Create(ctx context.Context, cred *model.Credential) error {
	cred.Email = normalizeEmail(cred.Email)
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Credential{}).Where("email = ?", cred.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := r.db.WithContext(ctx).Create(cred).Error; err != nil {
		// concurrent signup won the primary key
		if taken, _ := r.FindByEmail(ctx, cred.Email); taken != nil {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *credentialRepo) UpdatePassword(ctx context.Context, email, hashedPassword string) error {
	return r.update(ctx, email, "password", hashedPassword)
}

func (r *credentialRepo) UpdateTokenVersion(ctx context.Context, email, version string) error {
	return r.update(ctx, email, "token_version", version)
}

func (r *credentialRepo) LinkEmployee(ctx context.Context, email, employeeID string) error {
	return r.update(ctx, email, "employee_id", employeeID)
}

func (r *credentialRepo) Delete(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Delete(&model.Credential{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *credentialRepo) update(ctx context.Context, email, column, value string) error {
	res := r.db.WithContext(ctx).Model(&model.Credential{}).Where("email = ?", normalizeEmail(email)).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// memoryCredentialRepo keeps credentials in a map. With a path it mirrors
// every change to a JSON file, written atomically like the local data file.
type memoryCredentialRepo struct {
	mu    sync.RWMutex
	creds map[string]model.Credential
	path  string
}

// credentialRecord is the on-disk shape; Credential hides its secrets from JSON
type credentialRecord struct {
	Email        string    `json:"email"`
	Password     string    `json:"password"`
	EmployeeID   string    `json:"employeeId"`
	TokenVersion string    `json:"tokenVersion"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewMemoryCredentialRepo() CredentialRepository {
	return &memoryCredentialRepo{creds: make(map[string]model.Credential)}
}

// OpenFileCredentialRepo loads path if it exists. The file is first written on the first change.
func OpenFileCredentialRepo(path string) (CredentialRepository, error) {
	r := &memoryCredentialRepo{creds: make(map[string]model.Credential), path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	var records []credentialRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	for _, rec := range records {
		email := normalizeEmail(rec.Email)
		r.creds[email] = model.Credential{
			Email:        email,
			Password:     rec.Password,
			EmployeeID:   rec.EmployeeID,
			TokenVersion: rec.TokenVersion,
			CreatedAt:    rec.CreatedAt,
		}
	}
	return r, nil
}

func (r *memoryCredentialRepo) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.creds[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &cred, nil
}

func (r *memoryCredentialRepo) FindByEmployeeID(ctx context.Context, employeeID string) (*model.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cred := range r.creds {
		if cred.EmployeeID == employeeID {
			c := cred
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryCredentialRepo) Create(ctx context.Context, cred *model.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred.Email = normalizeEmail(cred.Email)
	if _, ok := r.creds[cred.Email]; ok {
		return ErrEmailTaken
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now()
	}
	r.creds[cred.Email] = *cred
	if err := r.save(); err != nil {
		delete(r.creds, cred.Email)
		return err
	}
	return nil
}

func (r *memoryCredentialRepo) UpdatePassword(ctx context.Context, email, hashedPassword string) error {
	return r.modify(email, func(c *model.Credential) { c.Password = hashedPassword })
}

func (r *memoryCredentialRepo) UpdateTokenVersion(ctx context.Context, email, version string) error {
	return r.modify(email, func(c *model.Credential) { c.TokenVersion = version })
}

func (r *memoryCredentialRepo) LinkEmployee(ctx context.Context, email, employeeID string) error {
	return r.modify(email, func(c *model.Credential) { c.EmployeeID = employeeID })
}

func (r *memoryCredentialRepo) Delete(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeEmail(email)
	prev, ok := r.creds[key]
	if !ok {
		return ErrNotFound
	}
	delete(r.creds, key)
	if err := r.save(); err != nil {
		r.creds[key] = prev
		return err
	}
	return nil
}

func (r *memoryCredentialRepo) modify(email string, fn func(*model.Credential)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeEmail(email)
	prev, ok := r.creds[key]
	if !ok {
		return ErrNotFound
	}
	cred := prev
	fn(&cred)
	r.creds[key] = cred
	if err := r.save(); err != nil {
		r.creds[key] = prev
		return err
	}
	return nil
}

// save runs under r.mu
func (r *memoryCredentialRepo) save() error {
	if r.path == "" {
		return nil
	}
	records := make([]credentialRecord, 0, len(r.creds))
	for _, c := range r.creds {
		records = append(records, credentialRecord{
			Email:        c.Email,
			Password:     c.Password,
			EmployeeID:   c.EmployeeID,
			TokenVersion: c.TokenVersion,
			CreatedAt:    c.CreatedAt,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Email < records[j].Email })
	if err := writeFileAtomic(r.path, records); err != nil {
		return fmt.Errorf("save credentials file: %w", err)
	}
	return nil
}
