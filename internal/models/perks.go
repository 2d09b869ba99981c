package models

// PerkMilestoneStep is the level interval at which perks unlock.
const PerkMilestoneStep = 5

type PerkCatalogEntry struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

var perkCatalog = []PerkCatalogEntry{
	{Level: 5, ID: "badge_explorateur", Label: "Badge Explorateur"},
	{Level: 10, ID: "theme_personnalise", Label: "Thème personnalisé"},
	{Level: 15, ID: "accessoires_avatar", Label: "Accessoires d'avatar"},
	{Level: 20, ID: "conseiller_prioritaire", Label: "Conseiller prioritaire"},
	{Level: 25, ID: "badge_stratege", Label: "Badge Stratège"},
	{Level: 30, ID: "export_portfolio", Label: "Export du portfolio"},
	{Level: 35, ID: "cadre_or", Label: "Cadre d'avatar or"},
	{Level: 40, ID: "mode_mentor", Label: "Mode mentor"},
	{Level: 45, ID: "badge_expert", Label: "Badge Expert"},
	{Level: 50, ID: "legende_zelia", Label: "Légende Zélia"},
}

// PerkCatalog returns a copy of the perk milestone table.
func PerkCatalog() []PerkCatalogEntry {
	out := make([]PerkCatalogEntry, len(perkCatalog))
	copy(out, perkCatalog)
	return out
}

// PerkIDsForLevel lists every perk earned by reaching level.
func PerkIDsForLevel(level int) []string {
	ids := []string{}
	for _, perk := range perkCatalog {
		if perk.Level > level {
			break
		}
		ids = append(ids, perk.ID)
	}
	return ids
}

// PerkLabel returns the display label of a perk, or the id when unknown.
func PerkLabel(id string) string {
	for _, perk := range perkCatalog {
		if perk.ID == id {
			return perk.Label
		}
	}
	return id
}
