package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
)

// Seed holds the ids created by SeedPlace.
type Seed struct {
	BuildingID int64
	FloorID    int64
	PlaceID    int64
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, database *db.DB, name, email, role string) dbgen.User {
	t.Helper()

	user, err := database.Queries.CreateUser(context.Background(), dbgen.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceholderplacehol",
		Role:         role,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// SeedPlace creates an always-open UTC building with one floor and one place.
func SeedPlace(t *testing.T, database *db.DB) Seed {
	t.Helper()
	ctx := context.Background()

	building, err := database.Queries.CreateBuilding(ctx, dbgen.CreateBuildingParams{
		Name:     "Tower",
		Address:  "1 Main St",
		Timezone: "UTC",
	})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}
	floor, err := database.Queries.CreateFloor(ctx, dbgen.CreateFloorParams{
		BuildingID:  building.ID,
		Level:       1,
		ImageWidth:  1000,
		ImageHeight: 500,
	})
	if err != nil {
		t.Fatalf("create floor: %v", err)
	}
	place, err := database.Queries.CreatePlace(ctx, dbgen.CreatePlaceParams{
		FloorID:  floor.ID,
		Name:     "A-1",
		Features: "[]",
		X:        50,
		Y:        50,
		Size:     1,
	})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}
	return Seed{BuildingID: building.ID, FloorID: floor.ID, PlaceID: place.ID}
}

// CreateVisit inserts a visit directly, bypassing booking rules.
func CreateVisit(t *testing.T, database *db.DB, placeID, userID int64, start, end time.Time, status string) dbgen.Visit {
	t.Helper()

	visit, err := database.Queries.CreateVisit(context.Background(), dbgen.CreateVisitParams{
		PlaceID:     placeID,
		UserID:      userID,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		Status:      status,
		CheckinCode: uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	return visit
}
