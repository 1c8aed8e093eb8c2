package services

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
)

// pokedexItems implements fuzzy.Source over catalog entries.
type pokedexItems []pokedexItem

type pokedexItem struct {
	Pokemon *models.Pokemon
	Name    string
}

func (items pokedexItems) Len() int {
	return len(items)
}

func (items pokedexItems) String(i int) string {
	return items[i].Name
}

// PokedexSearch resolves free-text queries against the catalog: exact name
// first, fuzzy match as fallback, best matches first.
type PokedexSearch struct {
	pokemons repositories.PokemonRepository
}

func NewPokedexSearch(pokemons repositories.PokemonRepository) *PokedexSearch {
	return &PokedexSearch{pokemons: pokemons}
}

// Search returns catalog entries ranked by match quality. An exact name match
// short-circuits the fuzzy pass.
func (s *PokedexSearch) Search(ctx context.Context, query string, limit int) ([]*models.Pokemon, error) {
	query = normalizeQuery(query)
	if query == "" {
		return nil, nil
	}

	if exact, err := s.pokemons.GetByName(ctx, query); err == nil {
		return []*models.Pokemon{exact}, nil
	}

	all, err := s.pokemons.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make(pokedexItems, len(all))
	for i, p := range all {
		items[i] = pokedexItem{Pokemon: p, Name: normalizeQuery(p.Name)}
	}

	matches := fuzzy.FindFrom(query, items)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]*models.Pokemon, len(matches))
	for i, match := range matches {
		results[i] = items[match.Index].Pokemon
	}
	return results, nil
}

func normalizeQuery(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	return strings.Join(strings.Fields(q), " ")
}
