package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// CompleteTestQuestID is the orientation test quest. It lives outside the
// per-level sequence.
const CompleteTestQuestID = "complete_test"

// InscriptionQuestionnaire is the questionnaire whose response retires the
// orientation test from the suggestions.
const InscriptionQuestionnaire = "inscription"

type QuestCatalogEntry struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

type questDef struct {
	id    string
	label string
}

var curatedQuests = []questDef{
	{"explore_interests", "Explorer tes centres d'intérêt"},
	{"watch_intro", "Regarder la vidéo d'introduction"},
	{"strengths_quiz", "Quiz sur tes forces"},
	{"personality_test", "Test de personnalité"},
	{"values_exploration", "Explorer tes valeurs"},
	{"job_research", "Rechercher des métiers"},
	{"salary_analysis", "Analyser les salaires"},
	{"job_videos", "Regarder des vidéos métiers"},
	{"schedule_meeting", "Planifier un rendez-vous"},
	{"prepare_questions", "Préparer tes questions"},
	{"company_visit", "Visiter une entreprise"},
	{"soft_skills_assessment", "Évaluer tes soft skills"},
	{"star_method", "Maîtriser la méthode STAR"},
	{"leadership_test", "Test de leadership"},
	{"cv_builder", "Construire ton CV"},
	{"cover_letter", "Rédiger ta lettre de motivation"},
	{"cv_review", "Faire relire ton CV"},
	{"projet_motive", "Écrire ton projet motivé"},
	{"voeux_strategy", "Définir ta stratégie de vœux"},
	{"calendar_planning", "Planifier ton calendrier"},
	{"pitch_practice", "T'entraîner au pitch"},
	{"interview_simulation", "Simuler un entretien"},
	{"confidence_building", "Prendre confiance en toi"},
	{"portfolio_review", "Revoir ton portfolio"},
	{"coherence_check", "Vérifier la cohérence de ton parcours"},
	{"final_polish", "Peaufiner ton dossier"},
	{"mentor_others", "Aider d'autres élèves"},
	{"success_story", "Raconter ta réussite"},
	{"expert_badge", "Obtenir le badge expert"},
}

var (
	questCatalog   = buildQuestCatalog()
	questLabels    = buildQuestLabels()
	levelQuestExpr = regexp.MustCompile(`^level_(\d+)$`)
)

func buildQuestCatalog() []QuestCatalogEntry {
	entries := make([]QuestCatalogEntry, 0, MaxLevel)
	for level := 1; level <= MaxLevel; level++ {
		if level <= len(curatedQuests) {
			def := curatedQuests[level-1]
			entries = append(entries, QuestCatalogEntry{Level: level, ID: def.id, Label: def.label})
			continue
		}
		entries = append(entries, QuestCatalogEntry{
			Level: level,
			ID:    fmt.Sprintf("level_%02d", level),
			Label: missionLabel(level),
		})
	}
	return entries
}

func buildQuestLabels() map[string]string {
	labels := map[string]string{CompleteTestQuestID: "Test d'orientation"}
	for _, def := range curatedQuests {
		labels[def.id] = def.label
	}
	return labels
}

func missionLabel(level int) string {
	return fmt.Sprintf("Mission Niveau %d", level)
}

// QuestCatalog returns a copy of the 50 per-level quests in level order.
func QuestCatalog() []QuestCatalogEntry {
	out := make([]QuestCatalogEntry, len(questCatalog))
	copy(out, questCatalog)
	return out
}

// QuestIDForLevel returns the quest attached to level, clamping the level
// into range. ok is false when level is not a finite number.
func QuestIDForLevel(level float64) (id string, ok bool) {
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return "", false
	}
	return questCatalog[NormalizeLevel(level)-1].ID, true
}

// QuestLabel returns the display label of a quest id. Generated level ids get
// a synthesized label and unknown ids are echoed back.
func QuestLabel(id string) string {
	if id == "" {
		return ""
	}
	if label, ok := questLabels[id]; ok {
		return label
	}
	if m := levelQuestExpr.FindStringSubmatch(id); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return missionLabel(n)
		}
	}
	return id
}

// TraversedQuests lists the quest ids of levels in [from, to).
func TraversedQuests(from, to int) []string {
	ids := []string{}
	for level := from; level < to; level++ {
		if id, ok := QuestIDForLevel(float64(level)); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// AllQuestIDs lists the orientation test followed by every level quest.
func AllQuestIDs() []string {
	ids := make([]string, 0, len(questCatalog)+1)
	ids = append(ids, CompleteTestQuestID)
	for _, entry := range questCatalog {
		ids = append(ids, entry.ID)
	}
	return ids
}

type QuestStatus struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

// QuestChecklist reports every known quest with its completion state.
func QuestChecklist(p Progression) []QuestStatus {
	done := p.QuestSet()
	ids := AllQuestIDs()
	out := make([]QuestStatus, 0, len(ids))
	for _, id := range ids {
		_, completed := done[id]
		out = append(out, QuestStatus{ID: id, Label: QuestLabel(id), Completed: completed})
	}
	return out
}

// SuggestedQuests returns the quests still open, in catalog order. The
// orientation test is dropped once the inscription questionnaire has been
// answered.
func SuggestedQuests(p Progression, hasInscriptionResponse bool) []QuestStatus {
	var out []QuestStatus
	for _, q := range QuestChecklist(p) {
		if q.Completed {
			continue
		}
		if q.ID == CompleteTestQuestID && hasInscriptionResponse {
			continue
		}
		out = append(out, q)
	}
	if out == nil {
		out = []QuestStatus{}
	}
	return out
}
