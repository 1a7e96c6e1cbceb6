package handler

import (
	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/middleware"
	"walldecor-admin/internal/model"
	"walldecor-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StaffHandler struct {
	service service.StaffService
}

func NewStaffHandler(s service.StaffService) *StaffHandler {
	return &StaffHandler{service: s}
}

type SetRoleRequest struct {
	Role model.EmployeeRole `json:"role"`
}

func (h *StaffHandler) GetEmployees(c *fiber.Ctx) error {
	employees, err := h.service.ListEmployees(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(employees)
}

func (h *StaffHandler) GetEmployee(c *fiber.Ctx) error {
	e, err := h.service.FindEmployee(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(e)
}

func (h *StaffHandler) CreateEmployee(c *fiber.Ctx) error {
	var in composer.EmployeeInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}

	e, err := h.service.CreateEmployee(c.UserContext(), in, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "Employee created", e)
}

func (h *StaffHandler) UpdateEmployee(c *fiber.Ctx) error {
	var patch model.EmployeePatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidJSON(c)
	}

	e, err := h.service.UpdateEmployee(c.UserContext(), c.Params("id"), patch, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Employee updated", "data": e})
}

// SetRole approves or changes a role
// PUT /api/v1/employees/:id/role
func (h *StaffHandler) SetRole(c *fiber.Ctx) error {
	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	e, err := h.service.SetRole(c.UserContext(), c.Params("id"), req.Role, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated", "data": e})
}

func (h *StaffHandler) GetMeetings(c *fiber.Ctx) error {
	meetings, err := h.service.ListMeetings(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(meetings)
}

func (h *StaffHandler) CreateMeeting(c *fiber.Ctx) error {
	var in composer.MeetingInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}

	m, err := h.service.CreateMeeting(c.UserContext(), in, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "Meeting created", m)
}

func (h *StaffHandler) UpdateMeeting(c *fiber.Ctx) error {
	var patch model.MeetingPatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidJSON(c)
	}

	m, err := h.service.UpdateMeeting(c.UserContext(), c.Params("id"), patch, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Meeting updated", "data": m})
}

func (h *StaffHandler) DeleteMeeting(c *fiber.Ctx) error {
	if err := h.service.RemoveMeeting(c.UserContext(), c.Params("id"), middleware.ActorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Meeting deleted"})
}
