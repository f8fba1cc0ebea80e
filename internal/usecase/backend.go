package usecase

import (
	"context"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
)

// ListingBackend is the external listings service the conversation talks to.
// Search may return an empty slice (no match) or an error (network failure); the two are distinct.
type ListingBackend interface {
	SearchListings(ctx context.Context, budget float64) ([]domain.Listing, error)
	SubmitInterest(ctx context.Context, req domain.InterestRequest) (domain.SubmitResult, error)
	BookVisit(ctx context.Context, req domain.VisitRequest) (domain.SubmitResult, error)
}
