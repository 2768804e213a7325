package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"attendly/internal/booking/models"
	"attendly/internal/common/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Reservation{}, &models.Room{}, &models.ParkingSpot{}))
	return db
}

func confirmedRoom(id, userID string, start, end int) *models.Reservation {
	return &models.Reservation{
		ID: id, ResourceID: "falcon", ResourceType: models.ResourceRoom,
		UserID: userID, Date: "2025-03-03",
		StartMinute: start, EndMinute: end,
		Status: models.StatusConfirmed,
	}
}

func TestCreateIfNoConflict_RoomOverlap(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	descriptor, err := store.CreateIfNoConflict(ctx, confirmedRoom("r-1", "u1", 600, 660))
	require.NoError(t, err)
	require.Nil(t, descriptor)

	descriptor, err = store.CreateIfNoConflict(ctx, confirmedRoom("r-2", "u2", 630, 690))
	require.NoError(t, err)
	require.NotNil(t, descriptor)
	assert.Equal(t, []string{"r-1"}, descriptor.IDs())

	// The rejected reservation must not be persisted.
	_, err = store.GetByID(ctx, "r-2")
	require.NotNil(t, err)
	assert.Equal(t, errors.CodeNotFound, err.(*errors.AppError).Code)
}

func TestCreateIfNoConflict_BackToBack(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	descriptor, err := store.CreateIfNoConflict(ctx, confirmedRoom("r-1", "u1", 600, 660))
	require.NoError(t, err)
	require.Nil(t, descriptor)

	descriptor, err = store.CreateIfNoConflict(ctx, confirmedRoom("r-2", "u2", 660, 720))
	require.NoError(t, err)
	assert.Nil(t, descriptor)
}

func TestCreateIfNoConflict_CancelledDoesNotBlock(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	blocked := confirmedRoom("r-1", "u1", 600, 660)
	blocked.Status = models.StatusCancelled
	require.NoError(t, db.Create(blocked).Error)

	descriptor, err := store.CreateIfNoConflict(ctx, confirmedRoom("r-2", "u2", 600, 660))
	require.NoError(t, err)
	assert.Nil(t, descriptor)
}

func TestCreateIfNoConflict_ParkingRules(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	parking := func(id, userID, spotID string) *models.Reservation {
		return &models.Reservation{
			ID: id, ResourceID: spotID, ResourceType: models.ResourceParking,
			UserID: userID, Date: "2025-03-03",
			StartMinute: 0, EndMinute: 24 * 60,
			Status: models.StatusConfirmed,
		}
	}

	descriptor, err := store.CreateIfNoConflict(ctx, parking("p-1", "u1", "spot-a"))
	require.NoError(t, err)
	require.Nil(t, descriptor)

	// Same spot, different user.
	descriptor, err = store.CreateIfNoConflict(ctx, parking("p-2", "u2", "spot-a"))
	require.NoError(t, err)
	assert.NotNil(t, descriptor)

	// Different spot, same user and date.
	descriptor, err = store.CreateIfNoConflict(ctx, parking("p-3", "u1", "spot-b"))
	require.NoError(t, err)
	assert.NotNil(t, descriptor)

	// Different user and spot is fine.
	descriptor, err = store.CreateIfNoConflict(ctx, parking("p-4", "u2", "spot-b"))
	require.NoError(t, err)
	assert.Nil(t, descriptor)
}

func TestTransitionStatus_Conditional(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	_, err := store.CreateIfNoConflict(ctx, confirmedRoom("r-1", "u1", 600, 660))
	require.NoError(t, err)

	ok, err := store.TransitionStatus(ctx, "r-1", models.StatusConfirmed, models.StatusPendingRelease)
	require.NoError(t, err)
	assert.True(t, ok)

	// The same transition again fails: the from-status no longer matches.
	ok, err = store.TransitionStatus(ctx, "r-1", models.StatusConfirmed, models.StatusPendingRelease)
	require.NoError(t, err)
	assert.False(t, ok)

	reservation, err := store.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingRelease, reservation.Status)
	assert.Equal(t, 1, reservation.Version)
}

func TestMarkCheckedIn(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	_, err := store.CreateIfNoConflict(ctx, confirmedRoom("r-1", "u1", 600, 660))
	require.NoError(t, err)

	require.NoError(t, store.MarkCheckedIn(ctx, "r-1"))

	reservation, err := store.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.NotNil(t, reservation.CheckedInAt)

	// A released reservation is not occupiable.
	ok, err := store.TransitionStatus(ctx, "r-1", models.StatusConfirmed, models.StatusReleased)
	require.NoError(t, err)
	require.True(t, ok)
	err = store.MarkCheckedIn(ctx, "r-1")
	require.NotNil(t, err)
	assert.Equal(t, errors.CodeConflict, err.(*errors.AppError).Code)
}

func TestListReleaseCandidates_Filters(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	_, err := store.CreateIfNoConflict(ctx, confirmedRoom("r-active", "u1", 540, 600))
	require.NoError(t, err)
	_, err = store.CreateIfNoConflict(ctx, confirmedRoom("r-occupied", "u2", 600, 660))
	require.NoError(t, err)
	require.NoError(t, store.MarkCheckedIn(ctx, "r-occupied"))

	cancelled := confirmedRoom("r-cancelled", "u3", 660, 720)
	cancelled.Status = models.StatusCancelled
	require.NoError(t, db.Create(cancelled).Error)

	otherDay := confirmedRoom("r-tomorrow", "u4", 540, 600)
	otherDay.Date = "2025-03-04"
	require.NoError(t, db.Create(otherDay).Error)

	candidates, err := store.ListReleaseCandidates(ctx, "2025-03-03")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "r-active", candidates[0].ID)
}

func TestCountConfirmedInWindow(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	_, err := store.CreateIfNoConflict(ctx, confirmedRoom("r-1", "u1", 540, 600))
	require.NoError(t, err)

	completed := confirmedRoom("r-2", "u2", 600, 660)
	completed.Date = "2025-03-04"
	completed.Status = models.StatusCompleted
	require.NoError(t, db.Create(completed).Error)

	released := confirmedRoom("r-3", "u3", 660, 720)
	released.Status = models.StatusReleased
	require.NoError(t, db.Create(released).Error)

	count, err := store.CountConfirmedInWindow(ctx, "falcon", []string{"2025-03-03", "2025-03-04"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "confirmed and completed count, released does not")
}
