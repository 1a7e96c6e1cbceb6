package composer

import (
	"strings"
	"time"

	"walldecor-admin/internal/model"
	"walldecor-admin/pkg/idgen"
)

type ProductInput struct {
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Kind     model.ProductKind `json:"kind,omitempty"`
}

func (c *Composer) NewProduct(in ProductInput) (*model.Product, error) {
	now := c.now()
	p := &model.Product{
		Name:       strings.TrimSpace(in.Name),
		Category:   strings.TrimSpace(in.Category),
		Kind:       in.Kind,
		Timestamps: model.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	p.Normalize()
	if err := check(p); err != nil {
		return nil, err
	}
	p.ID = c.ids.New(idgen.Product)
	return p, nil
}

// PatchProduct merges a patch; id and createdAt never change
func (c *Composer) PatchProduct(current model.Product, patch model.ProductPatch) (*model.Product, error) {
	next := current
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		next.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Kind != nil {
		next.Kind = *patch.Kind
	}
	next.Normalize()
	if err := check(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = c.now()
	return &next, nil
}

type EmployeeInput struct {
	Name     string             `json:"name"`
	Position string             `json:"position"`
	Role     model.EmployeeRole `json:"role,omitempty"`
}

func (c *Composer) NewEmployee(in EmployeeInput) (*model.Employee, error) {
	now := c.now()
	e := &model.Employee{
		Name:       strings.TrimSpace(in.Name),
		Position:   strings.TrimSpace(in.Position),
		Role:       in.Role,
		Timestamps: model.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := check(e); err != nil {
		return nil, err
	}
	e.ID = c.ids.New(idgen.Employee)
	return e, nil
}

func (c *Composer) PatchEmployee(current model.Employee, patch model.EmployeePatch) (*model.Employee, error) {
	next := current
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Position != nil {
		next.Position = strings.TrimSpace(*patch.Position)
	}
	if patch.Role != nil {
		next.Role = *patch.Role
	}
	if err := check(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = c.now()
	return &next, nil
}

type MeetingInput struct {
	Title      string                    `json:"title"`
	Activities string                    `json:"activities,omitempty"`
	StartAt    time.Time                 `json:"startAt"`
	EndAt      *time.Time                `json:"endAt,omitempty"`
	Location   string                    `json:"location"`
	Attendance []model.MeetingAttendance `json:"attendance"`
	Notes      string                    `json:"notes,omitempty"`
}

func (c *Composer) NewMeeting(in MeetingInput) (*model.Meeting, error) {
	now := c.now()
	m := &model.Meeting{
		Title:      strings.TrimSpace(in.Title),
		Activities: strings.TrimSpace(in.Activities),
		StartAt:    in.StartAt,
		EndAt:      in.EndAt,
		Location:   strings.TrimSpace(in.Location),
		Attendance: cleanAttendance(in.Attendance),
		Notes:      strings.TrimSpace(in.Notes),
		Timestamps: model.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := checkMeeting(m); err != nil {
		return nil, err
	}
	m.ID = c.ids.New(idgen.Meeting)
	return m, nil
}

// PatchMeeting replaces attendance only when the patch carries it
func (c *Composer) PatchMeeting(current model.Meeting, patch model.MeetingPatch) (*model.Meeting, error) {
	next := current
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Location != nil {
		next.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.StartAt != nil {
		next.StartAt = *patch.StartAt
	}
	if patch.EndAt != nil {
		next.EndAt = patch.EndAt
	}
	if patch.Activities != nil {
		next.Activities = strings.TrimSpace(*patch.Activities)
	}
	if patch.Attendance != nil {
		next.Attendance = cleanAttendance(*patch.Attendance)
	}
	if patch.Notes != nil {
		next.Notes = strings.TrimSpace(*patch.Notes)
	}
	if err := checkMeeting(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = c.now()
	return &next, nil
}

func checkMeeting(m *model.Meeting) error {
	if err := check(m); err != nil {
		return err
	}
	if m.EndAt != nil && m.EndAt.Before(m.StartAt) {
		return Invalid("endAt", "meeting cannot end before it starts")
	}
	return nil
}

// cleanAttendance trims names and drops blank rows
func cleanAttendance(in []model.MeetingAttendance) model.MeetingAttendances {
	out := model.MeetingAttendances{}
	for _, a := range in {
		a.Name = strings.TrimSpace(a.Name)
		if a.Name == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}
