package service

import (
	"context"
	"errors"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/model"
	"walldecor-admin/internal/repository"

	"go.uber.org/zap"
)

var ErrForbidden = errors.New("forbidden")

// StaffService manages employees and meeting minutes
type StaffService interface {
	ListEmployees(ctx context.Context) ([]model.Employee, error)
	FindEmployee(ctx context.Context, id string) (*model.Employee, error)
	CreateEmployee(ctx context.Context, in composer.EmployeeInput, actor Actor) (*model.Employee, error)
	UpdateEmployee(ctx context.Context, id string, patch model.EmployeePatch, actor Actor) (*model.Employee, error)
	SetRole(ctx context.Context, id string, role model.EmployeeRole, actor Actor) (*model.Employee, error)

	ListMeetings(ctx context.Context) ([]model.Meeting, error)
	CreateMeeting(ctx context.Context, in composer.MeetingInput, actor Actor) (*model.Meeting, error)
	UpdateMeeting(ctx context.Context, id string, patch model.MeetingPatch, actor Actor) (*model.Meeting, error)
	RemoveMeeting(ctx context.Context, id string, actor Actor) error
}

type staffService struct {
	repo repository.Repository
	log  *zap.Logger
}

func NewStaffService(repo repository.Repository, log *zap.Logger) StaffService {
	return &staffService{repo: repo, log: log.Named("staff")}
}

func (s *staffService) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	return s.repo.Employees().List(ctx)
}

func (s *staffService) FindEmployee(ctx context.Context, id string) (*model.Employee, error) {
	employees, err := s.repo.Employees().List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range employees {
		if employees[i].ID == id {
			return &employees[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *staffService) CreateEmployee(ctx context.Context, in composer.EmployeeInput, actor Actor) (*model.Employee, error) {
	if in.Role != "" && in.Role != model.RolePending && actor.Role != model.RoleCEO {
		return nil, ErrForbidden
	}
	e, err := s.repo.Employees().Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("Employee created", append(actor.fields(), zap.String("employee_id", e.ID))...)
	return e, nil
}

// UpdateEmployee edits the profile; a role change inside the patch is held to the same rule as SetRole
func (s *staffService) UpdateEmployee(ctx context.Context, id string, patch model.EmployeePatch, actor Actor) (*model.Employee, error) {
	if patch.Role != nil && actor.Role != model.RoleCEO {
		return nil, ErrForbidden
	}
	e, err := s.repo.Employees().Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Info("Employee updated", append(actor.fields(), zap.String("employee_id", id))...)
	return e, nil
}

func (s *staffService) SetRole(ctx context.Context, id string, role model.EmployeeRole, actor Actor) (*model.Employee, error) {
	if actor.Role != model.RoleCEO {
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, composer.Invalid("role", "role must be CEO, CTO, CMO or PENDING")
	}
	e, err := s.repo.Employees().Update(ctx, id, model.EmployeePatch{Role: &role})
	if err != nil {
		return nil, err
	}
	s.log.Info("Employee role changed", append(actor.fields(),
		zap.String("employee_id", id),
		zap.String("role", string(role)))...)
	return e, nil
}

func (s *staffService) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	return s.repo.Meetings().List(ctx)
}

func (s *staffService) CreateMeeting(ctx context.Context, in composer.MeetingInput, actor Actor) (*model.Meeting, error) {
	m, err := s.repo.Meetings().Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("Meeting created", append(actor.fields(),
		zap.String("meeting_id", m.ID),
		zap.Int("attendees", len(m.Attendance)))...)
	return m, nil
}

func (s *staffService) UpdateMeeting(ctx context.Context, id string, patch model.MeetingPatch, actor Actor) (*model.Meeting, error) {
	m, err := s.repo.Meetings().Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Info("Meeting updated", append(actor.fields(), zap.String("meeting_id", id))...)
	return m, nil
}

func (s *staffService) RemoveMeeting(ctx context.Context, id string, actor Actor) error {
	if err := s.repo.Meetings().Remove(ctx, id); err != nil {
		return err
	}
	s.log.Info("Meeting removed", append(actor.fields(), zap.String("meeting_id", id))...)
	return nil
}
