package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BroadcastPhase is where an admin is in composing an announcement.
type BroadcastPhase string

const (
	PhaseIdle    BroadcastPhase = "idle"
	PhaseCompose BroadcastPhase = "compose"
	PhaseConfirm BroadcastPhase = "confirm"
)

const (
	BroadcastSendBtn   = "Send"
	BroadcastCancelBtn = "Cancel"
)

var ErrEmptyBroadcast = errors.New("empty broadcast")

type BroadcastRepository interface {
	ListChatIDs() ([]int64, error)
}

type BroadcastSender interface {
	SendText(chatID int64, text string) error
	SendPhoto(chatID int64, fileID string, caption string) error
}

type BroadcastStat struct {
	Total     int
	Sent      int
	Failed    int
	CreatedAt time.Time
}

type BroadcastStatRepository interface {
	Save(stat BroadcastStat) error
	ListRecent(n int) ([]BroadcastStat, error)
}

// Draft is an announcement; with a photo, Text is its caption.
type Draft struct {
	Text        string
	PhotoFileID string
}

func (d Draft) empty() bool {
	return strings.TrimSpace(d.Text) == "" && d.PhotoFileID == ""
}

// BroadcastSession is one admin's announcement in progress.
type BroadcastSession struct {
	Phase BroadcastPhase
	Draft Draft
}

func (s *BroadcastSession) Active() bool {
	return s.Phase == PhaseCompose || s.Phase == PhaseConfirm
}

type BroadcastUsecase struct {
	repo    BroadcastRepository
	sender  BroadcastSender
	stat    BroadcastStatRepository
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewBroadcastUsecase fans announcements out at most perSecond sends per second (0 means unlimited).
func NewBroadcastUsecase(repo BroadcastRepository, sender BroadcastSender, stat BroadcastStatRepository, perSecond float64, logger *zap.Logger) *BroadcastUsecase {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BroadcastUsecase{
		repo:    repo,
		sender:  sender,
		stat:    stat,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (u *BroadcastUsecase) Start(s *BroadcastSession) string {
	*s = BroadcastSession{Phase: PhaseCompose}
	return "Send the announcement (for example this week's new listings). A photo with a caption works too."
}

// Compose stores the draft and asks for confirmation, naming the audience size.
func (u *BroadcastUsecase) Compose(s *BroadcastSession, d Draft) (string, []string, error) {
	if d.empty() {
		return "The announcement is empty. Send some text or a photo:", nil, ErrEmptyBroadcast
	}
	s.Draft = d
	s.Phase = PhaseConfirm

	audience := "all known chats"
	if ids, err := u.repo.ListChatIDs(); err == nil {
		audience = fmt.Sprintf("%d chats", len(ids))
	}
	what := "this announcement"
	if d.PhotoFileID != "" {
		what = "this photo announcement"
	}
	return fmt.Sprintf("Send %s to %s?", what, audience), []string{BroadcastSendBtn, BroadcastCancelBtn}, nil
}

// Confirm sends or discards the draft depending on choice.
func (u *BroadcastUsecase) Confirm(ctx context.Context, s *BroadcastSession, choice string) (string, error) {
	switch choice {
	case BroadcastCancelBtn:
		*s = BroadcastSession{Phase: PhaseIdle}
		return "Broadcast cancelled.", nil
	case BroadcastSendBtn:
	default:
		return "Choose " + BroadcastSendBtn + " or " + BroadcastCancelBtn + ".", nil
	}

	d := s.Draft
	*s = BroadcastSession{Phase: PhaseIdle}
	ids, err := u.repo.ListChatIDs()
	if err != nil {
		return "Could not load the recipient list.", errors.Wrap(err, "list chat ids")
	}

	stat := u.fanOut(ctx, ids, d)
	if err := u.stat.Save(stat); err != nil {
		u.logger.Warn("broadcast stat save failed", zap.Error(err))
	}
	u.logger.Info("broadcast done", zap.Int("total", stat.Total), zap.Int("sent", stat.Sent), zap.Int("failed", stat.Failed))
	return fmt.Sprintf("Broadcast sent: %d delivered, %d failed.", stat.Sent, stat.Failed), nil
}

// fanOut delivers d to every id under the rate limit. Recipients left when ctx ends count as failed.
func (u *BroadcastUsecase) fanOut(ctx context.Context, ids []int64, d Draft) BroadcastStat {
	stat := BroadcastStat{Total: len(ids), CreatedAt: time.Now()}
	for i, id := range ids {
		if err := u.limiter.Wait(ctx); err != nil {
			stat.Failed += len(ids) - i
			break
		}
		if err := u.deliver(id, d); err != nil {
			u.logger.Debug("broadcast send failed", zap.Int64("chat_id", id), zap.Error(err))
			stat.Failed++
			continue
		}
		stat.Sent++
	}
	return stat
}

func (u *BroadcastUsecase) deliver(chatID int64, d Draft) error {
	if d.PhotoFileID != "" {
		return u.sender.SendPhoto(chatID, d.PhotoFileID, d.Text)
	}
	return u.sender.SendText(chatID, d.Text)
}

func (u *BroadcastUsecase) StatsSummary(n int) string {
	stats, err := u.stat.ListRecent(n)
	if err != nil {
		u.logger.Error("broadcast stats failed", zap.Error(err))
		return "Broadcast statistics are unavailable."
	}
	if len(stats) == 0 {
		return "No broadcasts yet."
	}
	var b strings.Builder
	b.WriteString("Recent broadcasts:\n")
	for i, s := range stats {
		fmt.Fprintf(&b, "%d) %s  total %d, delivered %d, failed %d\n",
			i+1, s.CreatedAt.Format("2006-01-02 15:04"), s.Total, s.Sent, s.Failed)
	}
	return b.String()
}
