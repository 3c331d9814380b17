package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/domain/interfaces"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/repository/firestore"
	"github.com/secmon-lab/quadrant/pkg/repository/memory"
	"github.com/secmon-lab/quadrant/pkg/repository/postgres"
)

type repoFactory func(t *testing.T) interfaces.Repository

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	// Test data isolation is achieved through random IDs in test data
	repo, err := firestore.New(context.Background(), projectID, databaseID)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	repo, err := postgres.New(ctx, dsn)
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Migrate(ctx)).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

// runAll runs suite against every backend. Remote backends skip unless their
// environment variables are set.
func runAll(t *testing.T, suite func(t *testing.T, newRepo repoFactory)) {
	t.Run("memory", func(t *testing.T) { suite(t, newMemoryRepository) })
	t.Run("firestore", func(t *testing.T) { suite(t, newFirestoreRepository) })
	t.Run("postgres", func(t *testing.T) { suite(t, newPostgresRepository) })
}

func uniq(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
}

func newUserID() types.UserID {
	return types.UserID(uniq("user-"))
}

func newSlackUserID() types.SlackUserID {
	return types.SlackUserID(uniq("U"))
}

func newTeamID() types.SlackTeamID {
	return types.SlackTeamID(uniq("T"))
}

// now returns a time truncated to microseconds, the precision every backend
// round-trips.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
