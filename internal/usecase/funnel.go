package usecase

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Stage is a funnel milestone: a conversation step or the lead_submitted terminal stage.
type Stage string

const StageLeadSubmitted Stage = "lead_submitted"

type FunnelRepository interface {
	Hit(stage Stage, chatID int64) error
	Counts() (map[Stage]int, error)
}

type FunnelUsecase struct {
	repo   FunnelRepository
	order  []Stage
	logger *zap.Logger
}

func NewFunnelUsecase(repo FunnelRepository, logger *zap.Logger) *FunnelUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FunnelUsecase{
		repo:   repo,
		logger: logger,
		order: []Stage{
			Stage(StepAskBudget),
			Stage(StepAskInterest),
			Stage(StepCollectInfo),
			Stage(StepBookVisit),
			StageLeadSubmitted,
			Stage(StepAskMoreProperties),
		},
	}
}

func (u *FunnelUsecase) Reach(chatID int64, stage Stage) {
	if stage == "" || stage == Stage(StepInitial) {
		return
	}
	if err := u.repo.Hit(stage, chatID); err != nil {
		u.logger.Warn("funnel hit failed", zap.Int64("chat_id", chatID), zap.String("stage", string(stage)), zap.Error(err))
	}
}

// Tracker adapts the funnel to a single chat's Conversation.
func (u *FunnelUsecase) Tracker(chatID int64) Observer {
	return funnelTracker{funnel: u, chatID: chatID}
}

type funnelTracker struct {
	funnel *FunnelUsecase
	chatID int64
}

func (t funnelTracker) StepReached(step Step)    { t.funnel.Reach(t.chatID, Stage(step)) }
func (t funnelTracker) LeadSubmitted(_ FormKind) { t.funnel.Reach(t.chatID, StageLeadSubmitted) }

// FunnelRow is one stage of the funnel report.
type FunnelRow struct {
	Stage  Stage  `json:"stage"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	OfBase int    `json:"of_base_pct"`
	OfPrev int    `json:"of_prev_pct"`
}

// Rows computes distinct-chat counts per stage with percentages of the first stage and the previous one.
func (u *FunnelUsecase) Rows() ([]FunnelRow, error) {
	counts, err := u.repo.Counts()
	if err != nil {
		return nil, err
	}
	var base int
	if len(u.order) > 0 {
		base = counts[u.order[0]]
	}
	if base == 0 {
		for _, s := range u.order {
			if counts[s] > base {
				base = counts[s]
			}
		}
	}
	rows := make([]FunnelRow, 0, len(u.order))
	var prev int
	for i, s := range u.order {
		c := counts[s]
		row := FunnelRow{Stage: s, Label: stageLabel(s), Count: c, OfBase: share(c, base)}
		if i == 0 {
			row.OfPrev = 100
		} else if prev > 0 {
			row.OfPrev = share(c, prev)
		}
		rows = append(rows, row)
		prev = c
	}
	return rows, nil
}

func (u *FunnelUsecase) Chart() string {
	rows, err := u.Rows()
	if err != nil {
		u.logger.Error("funnel counts failed", zap.Error(err))
		return "Funnel is unavailable"
	}
	total := 0
	base := 0
	for _, r := range rows {
		total += r.Count
		if r.Count > base {
			base = r.Count
		}
	}
	if total == 0 {
		return "No funnel data yet"
	}
	var b strings.Builder
	b.WriteString("Funnel by stage:\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s: %d | %3d%% of first | %3d%% of prev %s\n", r.Label, r.Count, r.OfBase, r.OfPrev, meter(r.Count, base))
	}
	return b.String()
}

// GraphData returns labels and values in stage order for the bar chart.
func (u *FunnelUsecase) GraphData() ([]string, []int, error) {
	rows, err := u.Rows()
	if err != nil {
		return nil, nil, err
	}
	labels := make([]string, 0, len(rows))
	values := make([]int, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Label)
		values = append(values, r.Count)
	}
	return labels, values, nil
}

// share is part as a whole percentage of whole, rounded down.
func share(part, whole int) int {
	if whole > 0 {
		return part * 100 / whole
	}
	return 0
}

const meterWidth = 20

// meter draws count against peak as a fixed-width text bar.
func meter(count, peak int) string {
	if peak <= 0 {
		return ""
	}
	n := min(max(count*meterWidth/peak, 0), meterWidth)
	return "[" + strings.Repeat("#", n) + strings.Repeat("-", meterWidth-n) + "]"
}

func stageLabel(s Stage) string {
	switch s {
	case Stage(StepAskBudget):
		return "Budget asked"
	case Stage(StepAskInterest):
		return "Listings shown"
	case Stage(StepCollectInfo):
		return "Interest form"
	case Stage(StepBookVisit):
		return "Visit form"
	case StageLeadSubmitted:
		return "Lead"
	case Stage(StepAskMoreProperties):
		return "Asked for more"
	default:
		return string(s)
	}
}
