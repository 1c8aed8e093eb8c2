package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
)

// CatalogSeeder loads catalog rows from an administrative CSV feed and bulk
// upserts them. Columns: id, name, rarity, power, featured, special, active.
// Region is derived from the id, never read from the feed.
type CatalogSeeder struct {
	pokemons repositories.PokemonRepository
}

func NewCatalogSeeder(pokemons repositories.PokemonRepository) *CatalogSeeder {
	return &CatalogSeeder{pokemons: pokemons}
}

// Seed parses the feed and upserts every row. A malformed row aborts the whole
// seed before anything is written.
func (s *CatalogSeeder) Seed(ctx context.Context, feed io.Reader) (int, error) {
	reader := csv.NewReader(feed)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return 0, err
	}

	var pokemons []*models.Pokemon
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return 0, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}

		pokemon, err := parseRow(record)
		if err != nil {
			return 0, fmt.Errorf("catalog line %d: %w", line, err)
		}
		pokemons = append(pokemons, pokemon)
	}

	count, err := s.pokemons.BulkUpsert(ctx, pokemons)
	if err != nil {
		return 0, err
	}

	slog.Info("Catalog seeded",
		slog.String("type", "db"),
		slog.Int("rows", len(pokemons)))
	return count, nil
}

var catalogColumns = []string{"id", "name", "rarity", "power", "featured", "special", "active"}

func checkHeader(header []string) error {
	if len(header) != len(catalogColumns) {
		return fmt.Errorf("catalog header has %d columns, want %d", len(header), len(catalogColumns))
	}
	for i, col := range catalogColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return fmt.Errorf("catalog header column %d is %q, want %q", i+1, header[i], col)
		}
	}
	return nil
}

func parseRow(record []string) (*models.Pokemon, error) {
	if len(record) != len(catalogColumns) {
		return nil, fmt.Errorf("row has %d columns, want %d", len(record), len(catalogColumns))
	}

	id, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", record[0], err)
	}
	name := strings.TrimSpace(record[1])
	if name == "" {
		return nil, fmt.Errorf("empty name for id %d", id)
	}

	rarity, err := strconv.Atoi(record[2])
	if err != nil {
		return nil, fmt.Errorf("invalid rarity %q: %w", record[2], err)
	}
	if rarity < models.RarityCommon || rarity > models.RarityEvent {
		return nil, fmt.Errorf("rarity %d out of range for id %d", rarity, id)
	}

	power, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid power %q: %w", record[3], err)
	}

	featured, err := parseBool(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid featured flag: %w", err)
	}
	special, err := parseBool(record[5])
	if err != nil {
		return nil, fmt.Errorf("invalid special flag: %w", err)
	}
	active, err := parseBool(record[6])
	if err != nil {
		return nil, fmt.Errorf("invalid active flag: %w", err)
	}

	if special != (id >= models.SpecialIDStart) {
		return nil, fmt.Errorf("special flag disagrees with id %d", id)
	}

	return &models.Pokemon{
		ID:       id,
		Name:     name,
		Rarity:   rarity,
		Power:    power,
		Featured: featured,
		Special:  special,
		Active:   active,
	}, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no", "":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized boolean %q", s)
	}
}
