package terminal

import (
	"context"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

// ErrFormAborted is returned by a FormFiller when the visitor walks away from the form.
var ErrFormAborted = errors.New("form aborted")

// FormFiller asks the visitor for the fields of a contact or booking form.
type FormFiller interface {
	Fill(ctx context.Context, kind usecase.FormKind, id domain.ListingID, prev usecase.BookingFields) (usecase.BookingFields, error)
}

// HuhFiller renders forms with huh.
type HuhFiller struct{}

func (HuhFiller) Fill(ctx context.Context, kind usecase.FormKind, id domain.ListingID, prev usecase.BookingFields) (usecase.BookingFields, error) {
	f := prev
	fields := []huh.Field{
		huh.NewInput().Title("Name").Value(&f.Name),
		huh.NewInput().Title("Email").Value(&f.Email),
		huh.NewInput().Title("Phone").Value(&f.Phone),
	}
	title := "Contact details for property " + id.String()
	if kind == usecase.FormBooking {
		title = "Book a visit to property " + id.String()
		fields = append(fields,
			huh.NewInput().Title("Date").Placeholder("2026-10-20").Value(&f.Date),
			huh.NewInput().Title("Time").Placeholder("14:30").Value(&f.Time),
		)
	}
	form := huh.NewForm(
		huh.NewGroup(fields...).Title(title),
	).WithTheme(huh.ThemeCharm())

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return prev, ErrFormAborted
		}
		return prev, errors.Wrap(err, "run form")
	}
	return f, nil
}
