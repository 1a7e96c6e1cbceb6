package service

import (
	"walldecor-admin/internal/model"

	"go.uber.org/zap"
)

// Actor is the signed-in employee performing an action
type Actor struct {
	EmployeeID string
	Name       string
	Email      string
	Role       model.EmployeeRole
}

func (a Actor) fields() []zap.Field {
	return []zap.Field{
		zap.String("actor_id", a.EmployeeID),
		zap.String("actor_role", string(a.Role)),
	}
}

// orSelf fills a blank responsible employee with the actor
func (a Actor) orSelf(id string) string {
	if id == "" {
		return a.EmployeeID
	}
	return id
}
