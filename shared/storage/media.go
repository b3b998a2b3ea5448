package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	storage_go "github.com/supabase-community/storage-go"
	supabase "github.com/supabase-community/supabase-go"

	"content-pipeline/internal/models"
	"content-pipeline/shared/config"
)

// MediaStore persists generated image bytes and returns a durable URL.
type MediaStore interface {
	Store(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// MediaKey builds the object path for one generated image:
// {projectID}/{artifactType}/{artifactID}_{unix}.png
func MediaKey(projectID string, artifactType models.ContentType, artifactID string) string {
	return fmt.Sprintf("%s/%s/%s_%d.png", projectID, artifactType, artifactID, time.Now().Unix())
}

// SupabaseMediaStore uploads media to a Supabase storage bucket.
type SupabaseMediaStore struct {
	sdk    *supabase.Client
	bucket string
}

func NewSupabaseMediaStore(cfg *config.StorageConfig) (*SupabaseMediaStore, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, fmt.Errorf("supabase URL and key are required for media storage")
	}

	sdk, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseMediaStore{sdk: sdk, bucket: cfg.MediaBucket}, nil
}

func (s *SupabaseMediaStore) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/png"
	}

	_, err := s.sdk.Storage.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	resp := s.sdk.Storage.GetPublicUrl(s.bucket, key)
	if resp.SignedURL == "" {
		return "", fmt.Errorf("no public URL for uploaded object %s", key)
	}

	log.Printf("Uploaded media %s (%d bytes)", key, len(data))
	return resp.SignedURL, nil
}
