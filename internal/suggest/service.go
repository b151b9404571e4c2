package suggest

import "context"

// AI is what Service needs from Client.
type AI interface {
	ColorFor(ctx context.Context, name string) (ColorSuggestion, error)
	Description(ctx context.Context, req DescriptionRequest) (string, error)
}

// Service debounces colour lookups per editing session. Description
// generation is an explicit action and goes straight through.
type Service struct {
	ai       AI
	debounce *Debouncer
}

func NewService(ai AI, debounce *Debouncer) *Service {
	return &Service{ai: ai, debounce: debounce}
}

// SuggestColor returns context.Canceled when a newer lookup for the same
// session replaces this one.
func (s *Service) SuggestColor(ctx context.Context, session, name string) (ColorSuggestion, error) {
	return Debounce(ctx, s.debounce, session, func(ctx context.Context) (ColorSuggestion, error) {
		return s.ai.ColorFor(ctx, name)
	})
}

func (s *Service) Describe(ctx context.Context, req DescriptionRequest) (string, error) {
	return s.ai.Description(ctx, req)
}
