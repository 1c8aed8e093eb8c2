package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/testdb"
)

func TestCollectionRepository_Integration(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	seed := func(t *testing.T) (CollectionRepository, TrainerRepository) {
		t.Helper()
		testdb.Reset(t, db)

		trainers := NewTrainerRepository(db.BunDB())
		if err := trainers.Create(ctx, &models.Trainer{DiscordID: "alice", DisplayName: "alice"}); err != nil {
			t.Fatalf("failed to seed trainer: %v", err)
		}
		return NewCollectionRepository(db.BunDB()), trainers
	}

	t.Run("RemoveBulk caps at the owned count", func(t *testing.T) {
		collection, _ := seed(t)
		for i := 0; i < 3; i++ {
			if err := collection.Add(ctx, "alice", 25); err != nil {
				t.Fatalf("failed to add copy: %v", err)
			}
		}

		removed, err := collection.RemoveBulk(ctx, "alice", 25, 5, ReleaseRequest{})
		if err != nil {
			t.Fatalf("RemoveBulk() error = %v", err)
		}
		if removed != 3 {
			t.Errorf("RemoveBulk() removed = %d, want 3", removed)
		}

		left, err := collection.Count(ctx, "alice", 25)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if left != 0 {
			t.Errorf("Count() = %d, want 0", left)
		}
	})

	t.Run("RemoveBulk keeps favorited entries when asked", func(t *testing.T) {
		collection, _ := seed(t)
		if err := collection.Add(ctx, "alice", 25); err != nil {
			t.Fatalf("failed to add copy: %v", err)
		}
		if _, err := collection.ToggleFavorite(ctx, "alice", 25, 6); err != nil {
			t.Fatalf("ToggleFavorite() error = %v", err)
		}

		_, err := collection.RemoveBulk(ctx, "alice", 25, 1, ReleaseRequest{RespectFavorites: true})
		if !errors.Is(err, ErrProtectedFavorite) {
			t.Fatalf("RemoveBulk() error = %v, want ErrProtectedFavorite", err)
		}
	})

	t.Run("ToggleFavorite enforces the limit and toggles back off", func(t *testing.T) {
		collection, _ := seed(t)

		for _, id := range []int64{1, 2} {
			fav, err := collection.ToggleFavorite(ctx, "alice", id, 2)
			if err != nil {
				t.Fatalf("ToggleFavorite(%d) error = %v", id, err)
			}
			if !fav {
				t.Errorf("ToggleFavorite(%d) = false, want true", id)
			}
		}

		if _, err := collection.ToggleFavorite(ctx, "alice", 3, 2); !errors.Is(err, ErrFavoriteLimit) {
			t.Fatalf("ToggleFavorite(3) error = %v, want ErrFavoriteLimit", err)
		}

		fav, err := collection.ToggleFavorite(ctx, "alice", 1, 2)
		if err != nil {
			t.Fatalf("ToggleFavorite(1) error = %v", err)
		}
		if fav {
			t.Error("ToggleFavorite(1) = true, want false after unfavoriting")
		}

		fav, err = collection.ToggleFavorite(ctx, "alice", 3, 2)
		if err != nil {
			t.Fatalf("ToggleFavorite(3) error = %v", err)
		}
		if !fav {
			t.Error("ToggleFavorite(3) = false, want true with a slot freed")
		}
	})

	t.Run("concurrent toggles never exceed the limit", func(t *testing.T) {
		collection, _ := seed(t)
		const limit = 5

		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				if _, err := collection.ToggleFavorite(ctx, "alice", id, limit); err != nil {
					errs <- err
				}
			}(int64(100 + i))
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if !errors.Is(err, ErrFavoriteLimit) {
				t.Errorf("ToggleFavorite() unexpected error = %v", err)
			}
		}

		favorites, err := collection.GetFavorites(ctx, "alice")
		if err != nil {
			t.Fatalf("GetFavorites() error = %v", err)
		}
		if len(favorites) > limit {
			t.Errorf("favorites = %d, want at most %d", len(favorites), limit)
		}
	})
}
