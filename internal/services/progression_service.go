package services

import (
	"context"
	"fmt"
	"log"

	"zelia-app/internal/models"
)

type QuestionnaireRepository interface {
	HasResponse(ctx context.Context, userID, questionnaire string) (bool, error)
}

type LevelUpOptions struct {
	MinLevel *int
	XPReward *float64
}

type LevelUpResult struct {
	PreviousLevel   int      `json:"previous_level"`
	NewLevel        int      `json:"new_level"`
	XP              int      `json:"xp"`
	QuestsCompleted []string `json:"quests_completed"`
	PerksUnlocked   []string `json:"perks_unlocked"`
	Replay          bool     `json:"replay,omitempty"`
}

type ProgressionStatus struct {
	Progression       models.Progression   `json:"progression"`
	XPToNextLevel     int                  `json:"xp_to_next_level"`
	HasPaid           bool                 `json:"has_paid"`
	PaidGateLevel     int                  `json:"paid_gate_level"`
	NextPlayableLevel int                  `json:"next_playable_level"`
	AccessibleLevels  []int                `json:"accessible_levels"`
	Quests            []models.QuestStatus `json:"quests"`
	SuggestedQuests   []models.QuestStatus `json:"suggested_quests"`
}

type ProgressionService struct {
	store          *ProgressionStore
	access         *AccessService
	questionnaires QuestionnaireRepository
	notifier       Notifier
}

func NewProgressionService(store *ProgressionStore, access *AccessService, questionnaires QuestionnaireRepository, notifier Notifier) *ProgressionService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ProgressionService{
		store:          store,
		access:         access,
		questionnaires: questionnaires,
		notifier:       notifier,
	}
}

func (s *ProgressionService) Get(ctx context.Context, userID string) models.Progression {
	return s.store.Fetch(ctx, userID)
}

// Replace stores a whole progression record on behalf of another service.
// Level and xp are sanitized; quests and perks are only ever added to. A
// non-zero incoming revision must match the stored one.
func (s *ProgressionService) Replace(ctx context.Context, userID string, incoming models.Progression) (models.Progression, error) {
	current := s.store.Fetch(ctx, userID)
	if incoming.Revision != 0 && incoming.Revision != current.Revision {
		return models.Progression{}, models.ErrStaleRevision
	}

	next := incoming.Clone()
	if next.Level < current.Level {
		next.Level = current.Level
		next.XP = current.XP
	}
	next.XP = models.ClampXPForLevel(next.Level, float64(next.XP))
	next.Quests, _ = models.MergeIDs(current.Quests, incoming.Quests)
	next.Perks, _ = models.MergeIDs(current.Perks, incoming.Perks)
	next.Revision = current.Revision

	saved, err := s.store.Save(ctx, userID, next)
	if err != nil {
		return models.Progression{}, fmt.Errorf("save progression: %w", err)
	}
	return saved, nil
}

// LevelUp moves the user one level forward, or up to opts.MinLevel when that
// is further, and records the quests of every level passed on the way. It
// does not consult the access gate and is only reachable from other services.
func (s *ProgressionService) LevelUp(ctx context.Context, userID string, opts LevelUpOptions) (LevelUpResult, error) {
	current := s.store.Fetch(ctx, userID)
	return s.levelUpFrom(ctx, userID, current, opts)
}

func (s *ProgressionService) levelUpFrom(ctx context.Context, userID string, current models.Progression, opts LevelUpOptions) (LevelUpResult, error) {
	nextLevel := min(current.Level+1, models.MaxLevel)
	if opts.MinLevel != nil && nextLevel < *opts.MinLevel {
		nextLevel = min(*opts.MinLevel, models.MaxLevel)
	}

	reward := models.LevelUpReward(opts.XPReward)
	newXP := min((nextLevel-1)*models.XPPerLevel+reward, models.MaxXP)

	completed := models.TraversedQuests(current.Level, nextLevel)
	quests, _ := models.MergeIDs(current.Quests, completed)
	perks, unlocked := models.MergeIDs(current.Perks, models.PerkIDsForLevel(nextLevel))

	updated := current.Clone()
	updated.Level = nextLevel
	updated.XP = newXP
	updated.Quests = quests
	updated.Perks = perks

	if _, err := s.store.Save(ctx, userID, updated); err != nil {
		return LevelUpResult{}, fmt.Errorf("save progression: %w", err)
	}

	if nextLevel != current.Level {
		log.Printf("[PROGRESSION] User %s reached level %d (from %d)", userID, nextLevel, current.Level)
		s.notifier.LevelReached(ctx, userID, nextLevel, unlocked)
	}

	return LevelUpResult{
		PreviousLevel:   current.Level,
		NewLevel:        nextLevel,
		XP:              newXP,
		QuestsCompleted: completed,
		PerksUnlocked:   unlocked,
	}, nil
}

// CompleteLevel handles the end of a level's activity. Finishing the current
// or next level advances the user past it; finishing an older level is a
// replay that only makes sure its quest is recorded.
func (s *ProgressionService) CompleteLevel(ctx context.Context, userID, authHeader string, level int, xpReward *float64) (LevelUpResult, error) {
	current := s.store.Fetch(ctx, userID)
	hasPaid := s.access.HasPaid(ctx, userID, authHeader)
	return s.complete(ctx, userID, current, hasPaid, level, xpReward)
}

// AdvanceLevel completes the user's current level. A user parked past the
// paid gate without a subscription gets ErrLevelLocked.
func (s *ProgressionService) AdvanceLevel(ctx context.Context, userID, authHeader string, xpReward *float64) (LevelUpResult, error) {
	current := s.store.Fetch(ctx, userID)
	hasPaid := s.access.HasPaid(ctx, userID, authHeader)
	return s.complete(ctx, userID, current, hasPaid, current.Level, xpReward)
}

func (s *ProgressionService) complete(ctx context.Context, userID string, current models.Progression, hasPaid bool, level int, xpReward *float64) (LevelUpResult, error) {
	decision := s.access.Evaluate(current, level, hasPaid)
	if !decision.Accessible {
		return LevelUpResult{}, fmt.Errorf("%w: level %d", models.ErrLevelLocked, decision.TargetLevel)
	}

	target := decision.TargetLevel
	if target < current.Level {
		return s.replay(ctx, userID, current, target)
	}

	minLevel := target + 1
	return s.levelUpFrom(ctx, userID, current, LevelUpOptions{MinLevel: &minLevel, XPReward: xpReward})
}

func (s *ProgressionService) replay(ctx context.Context, userID string, current models.Progression, level int) (LevelUpResult, error) {
	result := LevelUpResult{
		PreviousLevel:   current.Level,
		NewLevel:        current.Level,
		XP:              current.XP,
		QuestsCompleted: []string{},
		PerksUnlocked:   []string{},
		Replay:          true,
	}

	id, _ := models.QuestIDForLevel(float64(level))
	quests, fresh := models.MergeIDs(current.Quests, []string{id})
	if len(fresh) == 0 {
		return result, nil
	}

	updated := current.Clone()
	updated.Quests = quests
	if _, err := s.store.Save(ctx, userID, updated); err != nil {
		return LevelUpResult{}, fmt.Errorf("save progression: %w", err)
	}
	result.QuestsCompleted = fresh
	return result, nil
}

// AwardXP credits XP earned in another service. The level follows the new
// total without consulting the access gate.
func (s *ProgressionService) AwardXP(ctx context.Context, userID string, amount int) (LevelUpResult, error) {
	current := s.store.Fetch(ctx, userID)
	return s.applyXP(ctx, userID, current, current.ApplyXPGain(amount))
}

// EarnXP credits XP the user scored while playing their current level. The
// current level has to be playable and the gain carries the user at most
// into the next level.
func (s *ProgressionService) EarnXP(ctx context.Context, userID, authHeader string, amount int) (LevelUpResult, error) {
	current := s.store.Fetch(ctx, userID)
	hasPaid := s.access.HasPaid(ctx, userID, authHeader)

	decision := s.access.Evaluate(current, current.Level, hasPaid)
	if !decision.Accessible {
		return LevelUpResult{}, fmt.Errorf("%w: level %d", models.ErrLevelLocked, decision.TargetLevel)
	}
	return s.applyXP(ctx, userID, current, current.ApplyXPGainUpTo(amount, current.Level+1))
}

func (s *ProgressionService) applyXP(ctx context.Context, userID string, current, updated models.Progression) (LevelUpResult, error) {
	_, completed := models.MergeIDs(current.Quests, updated.Quests)
	_, unlocked := models.MergeIDs(current.Perks, updated.Perks)

	if _, err := s.store.Save(ctx, userID, updated); err != nil {
		return LevelUpResult{}, fmt.Errorf("save progression: %w", err)
	}

	if updated.Level != current.Level {
		log.Printf("[PROGRESSION] User %s reached level %d through XP", userID, updated.Level)
		s.notifier.LevelReached(ctx, userID, updated.Level, unlocked)
	}

	return LevelUpResult{
		PreviousLevel:   current.Level,
		NewLevel:        updated.Level,
		XP:              updated.XP,
		QuestsCompleted: completed,
		PerksUnlocked:   unlocked,
	}, nil
}

// Status gathers everything a client needs to draw progression and
// navigation for the user.
func (s *ProgressionService) Status(ctx context.Context, userID, authHeader string) ProgressionStatus {
	p := s.store.Fetch(ctx, userID)
	hasPaid := s.access.HasPaid(ctx, userID, authHeader)

	answered := false
	if s.questionnaires != nil {
		ok, err := s.questionnaires.HasResponse(ctx, userID, models.InscriptionQuestionnaire)
		if err != nil {
			log.Printf("[PROGRESSION] Failed to check inscription questionnaire for user %s: %v", userID, err)
		}
		answered = ok
	}

	return ProgressionStatus{
		Progression:       p,
		XPToNextLevel:     models.XPToNextLevel(p.Level, p.XP),
		HasPaid:           hasPaid,
		PaidGateLevel:     s.access.PaidGateLevel(),
		NextPlayableLevel: s.access.NextPlayableLevel(p, hasPaid),
		AccessibleLevels:  s.access.AccessibleLevels(p, hasPaid),
		Quests:            models.QuestChecklist(p),
		SuggestedQuests:   models.SuggestedQuests(p, answered),
	}
}

// CheckAccess evaluates whether the user may open targetLevel.
func (s *ProgressionService) CheckAccess(ctx context.Context, userID, authHeader string, targetLevel int) models.AccessDecision {
	p := s.store.Fetch(ctx, userID)
	hasPaid := s.access.HasPaid(ctx, userID, authHeader)
	return s.access.Evaluate(p, targetLevel, hasPaid)
}

func (s *ProgressionService) NextPlayableLevel(ctx context.Context, userID, authHeader string) int {
	p := s.store.Fetch(ctx, userID)
	hasPaid := s.access.HasPaid(ctx, userID, authHeader)
	return s.access.NextPlayableLevel(p, hasPaid)
}
