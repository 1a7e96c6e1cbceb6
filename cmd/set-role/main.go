package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"walldecor-admin/internal/app"
	"walldecor-admin/internal/config"
	"walldecor-admin/internal/model"
	"walldecor-admin/pkg/logger"
)

// set-role changes an employee's role straight through the configured backend,
// e.g. to approve the first CEO of a fresh database. With -password it also resets the login.
func main() {
	employeeID := flag.String("employee", "", "employee id, e.g. EMP-20250101-AB12CD")
	email := flag.String("email", "", "login email, used when -employee is empty")
	role := flag.String("role", "CEO", "CEO, CTO, CMO or PENDING")
	password := flag.String("password", "", "new password for the login (optional)")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 2. Open Backend
	zlog := logger.New(&logger.Config{Level: "warn", Format: "console", Output: "stderr"})
	defer zlog.Sync()

	backend, err := app.OpenBackend(ctx, cfg, nil, zlog)
	if err != nil {
		log.Fatalf("❌ Failed to open %s backend: %v", cfg.Backend.Kind, err)
	}
	defer backend.Close()

	// 3. Resolve employee
	id := strings.TrimSpace(*employeeID)
	var cred *model.Credential
	if *email != "" {
		cred, err = backend.Credentials.FindByEmail(ctx, *email)
		if err != nil {
			log.Fatalf("❌ Login %s not found: %v", *email, err)
		}
		if id == "" {
			id = cred.EmployeeID
		}
	}
	if id == "" {
		log.Fatal("❌ -employee or -email is required")
	}

	// 4. Update role
	r := model.EmployeeRole(strings.ToUpper(*role))
	if !r.Valid() {
		log.Fatalf("❌ Invalid role %q", *role)
	}
	e, err := backend.Repo.Employees().Update(ctx, id, model.EmployeePatch{Role: &r})
	if err != nil {
		log.Fatalf("❌ Failed to update employee %s: %v", id, err)
	}
	log.Printf("✅ %s (%s) is now %s", e.Name, e.ID, e.Role)

	// 5. Reset password (optional)
	if *password == "" {
		return
	}
	if cred == nil {
		cred, err = backend.Credentials.FindByEmployeeID(ctx, id)
		if err != nil {
			log.Fatalf("❌ No login for employee %s: %v", id, err)
		}
	}
	if err := cred.SetPassword(*password); err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	if err := backend.Credentials.UpdatePassword(ctx, cred.Email, cred.Password); err != nil {
		log.Fatalf("❌ Failed to update password: %v", err)
	}
	if err := backend.Credentials.UpdateTokenVersion(ctx, cred.Email, ""); err != nil {
		log.Fatalf("❌ Failed to end sessions: %v", err)
	}
	log.Printf("✅ Password for %s has been reset", cred.Email)
}
