package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
)

type fakePokemonRepo struct {
	entries map[int64]*models.Pokemon
}

func (f *fakePokemonRepo) GetByID(_ context.Context, id int64) (*models.Pokemon, error) {
	p, ok := f.entries[id]
	if !ok {
		return nil, repositories.ErrPokemonNotFound
	}
	return p, nil
}

func (f *fakePokemonRepo) GetByName(context.Context, string) (*models.Pokemon, error) {
	return nil, repositories.ErrPokemonNotFound
}

func (f *fakePokemonRepo) GetAll(context.Context) ([]*models.Pokemon, error) { return nil, nil }

func (f *fakePokemonRepo) RollOptions(context.Context, int, string) ([]*models.Pokemon, error) {
	return nil, nil
}

func (f *fakePokemonRepo) FeaturedByRarity(context.Context, int) ([]*models.Pokemon, error) {
	return nil, nil
}

func (f *fakePokemonRepo) BulkUpsert(context.Context, []*models.Pokemon) (int, error) { return 0, nil }

func TestSettlement_quoteFor(t *testing.T) {
	repo := &fakePokemonRepo{entries: map[int64]*models.Pokemon{
		1:   {ID: 1, Name: "bulbasaur", Rarity: 3},
		4:   {ID: 4, Name: "charmander", Rarity: 3},
		150: {ID: 150, Name: "mewtwo", Rarity: 7},
	}}
	s := &Settlement{pokemons: repo, cfg: Config{RatePerTier: 60, MinBalance: -100}}

	type args struct {
		entryA int64
		entryB int64
	}
	tests := []struct {
		name    string
		args    args
		want    *Quote
		wantErr error
	}{
		{
			name: "same tier quotes sixty per rarity",
			args: args{entryA: 1, entryB: 4},
			want: &Quote{Rarity: 3, Cost: 180},
		},
		{
			name:    "cross tier is rejected",
			args:    args{entryA: 1, entryB: 150},
			wantErr: ErrRarityMismatch,
		},
		{
			name:    "unknown entry is rejected",
			args:    args{entryA: 1, entryB: 9999},
			wantErr: repositories.ErrPokemonNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.quoteFor(context.Background(), tt.args.entryA, tt.args.entryB)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("quoteFor() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("quoteFor() error = %v", err)
			}
			if got.Rarity != tt.want.Rarity || got.Cost != tt.want.Cost {
				t.Errorf("quoteFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSettlement_selfTradeRejected(t *testing.T) {
	repo := &fakePokemonRepo{entries: map[int64]*models.Pokemon{
		1: {ID: 1, Name: "bulbasaur", Rarity: 3},
	}}
	s := &Settlement{pokemons: repo, cfg: Config{RatePerTier: 60, MinBalance: -100}}

	_, err := s.Validate(context.Background(), "42", 1, "42", 1)
	if !errors.Is(err, ErrSelfTrade) {
		t.Errorf("Validate() error = %v, want %v", err, ErrSelfTrade)
	}
}
