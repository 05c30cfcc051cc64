// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev organization already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	attendancedomain "ble-attendance/backend/internal/attendance/domain"
	attendancerepo "ble-attendance/backend/internal/attendance/repository"
	attendanceservice "ble-attendance/backend/internal/attendance/service"
	"ble-attendance/backend/internal/audit"
	auditrepo "ble-attendance/backend/internal/audit/repository"
	"ble-attendance/backend/internal/config"
	"ble-attendance/backend/internal/db"
	orgdomain "ble-attendance/backend/internal/org/domain"
	orgrepo "ble-attendance/backend/internal/org/repository"
	sessionrepo "ble-attendance/backend/internal/session/repository"
	sessionservice "ble-attendance/backend/internal/session/service"
	"ble-attendance/backend/internal/token"
)

const (
	devOrgID   = "dev-org-001"
	devOrgName = "Dev University"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orgs := orgrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	auditor := audit.NewLogger(auditrepo.NewPostgresRepository(conn))

	existing, err := orgs.GetByID(ctx, devOrgID)
	if err != nil {
		log.Fatalf("seed: check org: %v", err)
	}
	if existing != nil {
		fmt.Println("seed: dev organization already exists, skipping")
		return
	}

	code, err := orgs.NextFreeCode(ctx)
	if err != nil {
		log.Fatalf("seed: allocate org code: %v", err)
	}
	org := &orgdomain.Org{
		ID:        devOrgID,
		Code:      code,
		Name:      devOrgName,
		Status:    orgdomain.OrgStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := orgs.Create(ctx, org); err != nil {
		log.Fatalf("seed: create org: %v", err)
	}

	gen, err := token.NewGenerator(cfg.TokenLength, cfg.TokenMinEntropyBits)
	if err != nil {
		log.Fatalf("seed: token generator: %v", err)
	}

	// Seed through the services, not raw inserts, so every row looks exactly
	// like one the app produced (audit entries included).
	svc := sessionservice.New(sessions, orgs, gen, auditor, cfg.DefaultTTL())
	created, err := svc.Create(ctx, sessionservice.CreateParams{
		OrgID:     devOrgID,
		Title:     "Demo lecture",
		CreatedBy: "seed",
	})
	if err != nil {
		log.Fatalf("seed: create session: %v", err)
	}
	s := created.Session

	records := attendancerepo.NewPostgresRepository(conn)
	recorder := attendanceservice.NewRecorder(records, sessions, orgs, auditor)
	res, err := recorder.Record(ctx, s.ID, "dev-subject-001", attendancedomain.MethodManual)
	if err != nil {
		log.Fatalf("seed: record attendance: %v", err)
	}

	roster, err := records.ListBySession(ctx, s.ID)
	if err != nil {
		log.Fatalf("seed: list attendance: %v", err)
	}

	fmt.Printf("seed: org %s (code %d), session %s token %s, attendance %s (%d record(s))\n",
		devOrgID, code, s.ID, s.Token, res.Outcome, len(roster))
}
