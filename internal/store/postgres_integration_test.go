//go:build integration

package store

import (
	"context"
	"os"
	"testing"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	_, _ = s.pool.Exec(ctx, "TRUNCATE scorecard_profiles")

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE scorecard_profiles")
		s.Close()
	})

	return s
}

func TestPostgresStore(t *testing.T) {
	s := setupTestDB(t)
	storeContract(t, s)
}

func TestPostgresPrefixIsLiteral(t *testing.T) {
	prefixContract(t, setupTestDB(t))
}

func TestPostgresKeepsIntegerParameters(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	desc := exampleDescription()
	desc.Objectives[0].DesirabilityFunction.Name = "bell"
	desc.Objectives[0].DesirabilityFunction.Parameters = map[string]any{"width": 2, "slope": 3}

	p := &StoredProfile{Name: "ints", Description: desc}
	if err := s.CreateProfile(ctx, p); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	got, err := s.GetProfile(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected profile, got nil")
	}
	if got.Description.Objectives[0].DesirabilityFunction.Parameters["slope"] == nil {
		t.Error("expected slope parameter to survive the round-trip")
	}
}
