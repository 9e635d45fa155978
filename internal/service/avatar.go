package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

const avatarMaxBytes = 5 << 20

// AvatarMirror copies a federated profile picture into object storage so the
// served avatar does not depend on the provider's CDN. Mirroring is best
// effort: on any failure the caller keeps the remote URL.
type AvatarMirror struct {
	storage   model.Storage
	client    *http.Client
	publicURL string
	logger    *logger.Logger
}

func NewAvatarMirror(storage model.Storage, publicURL string, logger *logger.Logger) *AvatarMirror {
	return &AvatarMirror{
		storage:   storage,
		client:    &http.Client{Timeout: 10 * time.Second},
		publicURL: publicURL,
		logger:    logger,
	}
}

// Mirror fetches sourceURL and stores it under an avatar key for the user,
// returning the mirrored URL.
func (m *AvatarMirror) Mirror(ctx context.Context, userID uuid.UUID, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build avatar request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("avatar fetch returned status %d", resp.StatusCode)
	}

	key := fmt.Sprintf("avatars/%s", userID)
	if err := m.storage.Upload(ctx, key, io.LimitReader(resp.Body, avatarMaxBytes)); err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	return fmt.Sprintf("%s/%s", m.publicURL, key), nil
}
