package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
)

// SpriteService serves sprite URLs from a Spaces bucket and handles the
// administrative cleanup when catalog entries are retired.
type SpriteService struct {
	client     *s3.Client
	bucket     string
	region     string
	SpriteRoot string
}

func NewSpriteService(spacesKey, spacesSecret, region, bucket, spriteRoot string) (*SpriteService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load sprite storage config: %w", err)
	}

	return &SpriteService{
		client:     s3.NewFromConfig(cfg),
		bucket:     bucket,
		region:     region,
		SpriteRoot: strings.TrimPrefix(spriteRoot, "/"),
	}, nil
}

// SpriteURL is the public URL for a catalog entry's sprite. Shiny sprites
// live in their own subtree.
func (s *SpriteService) SpriteURL(pokemon *models.Pokemon) string {
	variant := "normal"
	if pokemon.Rarity == models.RarityShiny {
		variant = "shiny"
	}
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s/%s/%d.png",
		s.bucket, s.region, s.SpriteRoot, variant, pokemon.ID)
}

// DeleteSprite removes both sprite variants for a retired entry. Deleting an
// already-absent key is not an error.
func (s *SpriteService) DeleteSprite(ctx context.Context, pokemonID int64) error {
	var errs []string
	for _, variant := range []string{"normal", "shiny"} {
		key := fmt.Sprintf("%s/%s/%d.png", s.SpriteRoot, variant, pokemonID)
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: &s.bucket,
			Key:    &key,
		})
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) == 2 {
		return fmt.Errorf("failed to delete sprites: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s *SpriteService) GetBucket() string {
	return s.bucket
}

func (s *SpriteService) GetRegion() string {
	return s.region
}
