package handlers

import (
	"context"
	"fmt"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

type mockCatalogService struct {
	snapshot models.CatalogSnapshot
	listErr  error
}

func (m *mockCatalogService) List(ctx context.Context) (models.CatalogSnapshot, error) {
	return m.snapshot, m.listErr
}

func (m *mockCatalogService) GetBeer(ctx context.Context, id string) (*models.Beer, error) {
	if beer, ok := m.snapshot.FindByID(id); ok {
		return beer, nil
	}
	return nil, fmt.Errorf("%w: beer %q", apperrors.ErrNotFound, id)
}

func (m *mockCatalogService) GetBeerDetails(ctx context.Context, id string) (*models.BeerDetails, error) {
	beer, err := m.GetBeer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.BeerDetails{Beer: *beer, TastingNotes: beer.Description}, nil
}

func (m *mockCatalogService) Refresh(ctx context.Context) (models.CatalogSnapshot, error) {
	return m.snapshot, m.listErr
}

type mockChatService struct {
	reply     string
	sessionID string
	err       error

	gotSessionID string
	gotMessage   string
	endedID      string
}

func (m *mockChatService) Chat(ctx context.Context, sessionID, message string) (string, string, error) {
	m.gotSessionID = sessionID
	m.gotMessage = message
	if m.err != nil {
		return "", "", m.err
	}
	return m.reply, m.sessionID, nil
}

func (m *mockChatService) EndSession(ctx context.Context, sessionID string) error {
	m.endedID = sessionID
	return nil
}
