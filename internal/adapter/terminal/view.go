package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

var (
	botStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	transStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	cardTitle    = lipgloss.NewStyle().Bold(true)
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
)

type openForm struct {
	kind   usecase.FormKind
	id     domain.ListingID
	handle usecase.MessageHandle
}

// View prints the conversation to a terminal. Printed lines cannot be taken back, so removing a
// transient message only retires its handle.
type View struct {
	out io.Writer

	mu   sync.Mutex
	live map[usecase.MessageHandle]string
	form *openForm
}

func NewView(out io.Writer) *View {
	return &View{out: out, live: make(map[usecase.MessageHandle]string)}
}

func (v *View) println(s string) {
	fmt.Fprintln(v.out, s)
}

func (v *View) Say(text string) {
	if text == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.println(botStyle.Render("bot> ") + text)
}

func (v *View) ShowTransient(text string) usecase.MessageHandle {
	h := usecase.MessageHandle(uuid.NewString())
	v.mu.Lock()
	defer v.mu.Unlock()
	v.live[h] = text
	v.println(transStyle.Render("… " + text))
	return h
}

func (v *View) Remove(h usecase.MessageHandle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.live, h)
	if v.form != nil && v.form.handle == h {
		v.form = nil
	}
}

func (v *View) ShowListings(intro string, listings []domain.Listing) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.println(botStyle.Render("bot> ") + intro)
	for _, l := range listings {
		v.println(renderCard(l))
	}
}

func renderCard(l domain.Listing) string {
	lines := []string{cardTitle.Render(l.Name), l.PriceText()}
	if l.Location != "" {
		lines = append(lines, l.Location)
	}
	if l.Image != "" {
		lines = append(lines, transStyle.Render("image: "+l.Image))
	}
	id := l.ID.String()
	lines = append(lines, commandStyle.Render("/interest "+id)+"  "+commandStyle.Render("/visit "+id))
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (v *View) ShowForm(kind usecase.FormKind, id domain.ListingID) usecase.MessageHandle {
	h := usecase.MessageHandle(uuid.NewString())
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form = &openForm{kind: kind, id: id, handle: h}
	v.live[h] = string(kind)
	title := "Your details for property " + id.String()
	if kind == usecase.FormBooking {
		title = "Book a visit to property " + id.String()
	}
	v.println(botStyle.Render("bot> ") + title)
	return h
}

func (v *View) Alert(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.println(alertStyle.Render("! " + text))
}

// OpenForm reports the form the conversation is waiting on, if any.
func (v *View) OpenForm() (usecase.FormKind, domain.ListingID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.form == nil {
		return "", "", false
	}
	return v.form.kind, v.form.id, true
}

// Live returns the number of transient messages and forms still on screen.
func (v *View) Live() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.live)
}

func (v *View) closeForm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.form != nil {
		delete(v.live, v.form.handle)
		v.form = nil
	}
}
