package auth

import (
	"context"
	"fmt"
)

type contextKey string

const viewerContextKey contextKey = "viewer"

// Viewer - персонаж, от имени которого выполняется запрос
type Viewer struct {
	CharacterID   int64
	CharacterName string
}

func WithViewer(ctx context.Context, viewer *Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey, viewer)
}

func GetViewer(ctx context.Context) (*Viewer, error) {
	viewer, ok := ctx.Value(viewerContextKey).(*Viewer)
	if !ok || viewer == nil {
		return nil, fmt.Errorf("viewer not found in context")
	}
	return viewer, nil
}

func GetCharacterID(ctx context.Context) (int64, error) {
	viewer, err := GetViewer(ctx)
	if err != nil {
		return 0, err
	}
	return viewer.CharacterID, nil
}
