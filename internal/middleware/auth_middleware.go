package middleware

import (
	"strings"

	"walldecor-admin/internal/model"
	"walldecor-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalEmployeeID = "employee_id"
	LocalName       = "employee_name"
	LocalEmail      = "employee_email"
	LocalRole       = "employee_role"
)

// RequireAuth validates the bearer token and sets the employee in context.
// The role comes from the repository, so a role change applies on the next request.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		actor, err := auth.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals(LocalEmployeeID, actor.EmployeeID)
		c.Locals(LocalName, actor.Name)
		c.Locals(LocalEmail, actor.Email)
		c.Locals(LocalRole, actor.Role)

		return c.Next()
	}
}

// RequireRole lets the request through when the employee holds one of roles
func RequireRole(roles ...model.EmployeeRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(model.EmployeeRole)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No role found"})
		}

		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}

		if role == model.RolePending {
			return c.Status(403).JSON(fiber.Map{"error": "Account is waiting for CEO approval"})
		}
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(names, ", ") + " roles",
		})
	}
}

// RequireStaff admits CEO, CTO and CMO
func RequireStaff() fiber.Handler {
	return RequireRole(model.StaffRoles...)
}

// ActorFrom reads the employee set by RequireAuth
func ActorFrom(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	actor.EmployeeID, _ = c.Locals(LocalEmployeeID).(string)
	actor.Name, _ = c.Locals(LocalName).(string)
	actor.Email, _ = c.Locals(LocalEmail).(string)
	actor.Role, _ = c.Locals(LocalRole).(model.EmployeeRole)
	return actor
}
