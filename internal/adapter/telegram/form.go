package telegram

import (
	"fmt"
	"strings"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

type formField struct {
	key    string
	prompt string
}

var (
	contactFields = []formField{
		{"name", "Your name?"},
		{"email", "Your email address?"},
		{"phone", "Your phone number?"},
	}
	bookingFields = append(append([]formField{}, contactFields...),
		formField{"date", "Preferred visit date? (e.g. 2026-10-20)"},
		formField{"time", "Preferred visit time? (e.g. 14:30)"},
	)
)

// form collects one field per chat message, then waits for Submit or Cancel.
type form struct {
	kind      usecase.FormKind
	listingID domain.ListingID
	fields    []formField
	values    map[string]string
	next      int
	handle    usecase.MessageHandle
	messages  []int
}

func newForm(kind usecase.FormKind, id domain.ListingID) *form {
	fields := contactFields
	if kind == usecase.FormBooking {
		fields = bookingFields
	}
	return &form{kind: kind, listingID: id, fields: fields, values: make(map[string]string)}
}

func (f *form) intro() string {
	if f.kind == usecase.FormBooking {
		return "Please provide your details and preferred visit time:"
	}
	return "Please provide your details so we can contact you about this property:"
}

func (f *form) collecting() bool { return f.next < len(f.fields) }

func (f *form) prompt() string { return f.fields[f.next].prompt }

// accept stores text as the current field and reports whether all fields are filled.
func (f *form) accept(text string) bool {
	f.values[f.fields[f.next].key] = strings.TrimSpace(text)
	f.next++
	return !f.collecting()
}

// reopen goes back to the first blank field.
func (f *form) reopen() {
	for i, fld := range f.fields {
		if strings.TrimSpace(f.values[fld.key]) == "" {
			f.next = i
			return
		}
	}
}

func (f *form) summary() string {
	var b strings.Builder
	b.WriteString("Please check your details:\n")
	for _, fld := range f.fields {
		fmt.Fprintf(&b, "%s: %s\n", fld.key, f.values[fld.key])
	}
	return b.String()
}

func (f *form) submitLabel() string {
	if f.kind == usecase.FormBooking {
		return "Book Visit"
	}
	return "Submit"
}

func (f *form) contact() usecase.ContactFields {
	return usecase.ContactFields{Name: f.values["name"], Email: f.values["email"], Phone: f.values["phone"]}
}

func (f *form) booking() usecase.BookingFields {
	return usecase.BookingFields{ContactFields: f.contact(), Date: f.values["date"], Time: f.values["time"]}
}
