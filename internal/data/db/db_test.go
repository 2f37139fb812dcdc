package db

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/examsync-backend/internal/domain"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

func TestNewServiceSQLiteMigrates(t *testing.T) {
	svc, err := NewService(Config{Driver: DriverSQLite, DSN: ":memory:"}, logger.Nop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if svc.Driver() != "sqlite" {
		t.Fatalf("driver: %q", svc.Driver())
	}
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, m := range types.Models() {
		if !svc.DB().Migrator().HasTable(m) {
			t.Fatalf("missing table for %T", m)
		}
	}

	u := &types.User{DisplayName: "Ada"}
	if err := svc.DB().Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatalf("expected BeforeCreate to assign an id")
	}
}

func TestNewServiceRejectsUnknownDriver(t *testing.T) {
	if _, err := NewService(Config{Driver: "mysql"}, logger.Nop()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPostgresDSN(t *testing.T) {
	got := PostgresDSN("db", "5432", "app", "pw", "examsync", "")
	want := "postgres://app:pw@db:5432/examsync?sslmode=disable"
	if got != want {
		t.Fatalf("PostgresDSN() = %q, want %q", got, want)
	}
}
