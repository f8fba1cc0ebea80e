package usecase

import "github.com/dharmaRaavi/real-estate-chatbot/internal/domain"

// MessageHandle identifies a rendered message so it can be removed later.
type MessageHandle string

type FormKind string

const (
	FormInterest FormKind = "interest"
	FormBooking  FormKind = "booking"
)

// View is the presentation boundary a Conversation renders through.
type View interface {
	Say(text string)
	// ShowTransient renders a short-lived message (loading indicator) and returns its handle.
	ShowTransient(text string) MessageHandle
	Remove(h MessageHandle)
	ShowListings(intro string, listings []domain.Listing)
	ShowForm(kind FormKind, listingID domain.ListingID) MessageHandle
	// Alert shows an inline validation message next to the open form.
	Alert(text string)
}
