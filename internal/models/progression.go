package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	fieldLevel    = "level"
	fieldXP       = "xp"
	fieldQuests   = "quests"
	fieldPerks    = "perks"
	fieldRevision = "revision"
)

// Progression is the per-user leveling state. Fields the service does not
// know about are kept in Extra and written back untouched.
type Progression struct {
	Level    int
	XP       int
	Quests   []string
	Perks    []string
	Revision int64
	Extra    map[string]interface{}
}

// DefaultProgression returns a new level 1 progression. Every call builds a
// fresh value.
func DefaultProgression() Progression {
	return Progression{
		Level:  1,
		XP:     0,
		Quests: []string{},
		Perks:  []string{},
	}
}

// ProgressionFromRecord merges a loosely typed stored record over the
// defaults, sanitizing level and xp.
func ProgressionFromRecord(rec map[string]interface{}) Progression {
	p := DefaultProgression()
	if rec == nil {
		return p
	}

	p.Level = NormalizeLevel(numberFrom(rec[fieldLevel]))
	p.XP = ClampXPForLevel(p.Level, numberFrom(rec[fieldXP]))
	if quests, ok := rec[fieldQuests]; ok {
		p.Quests, _ = MergeIDs(nil, stringsFrom(quests))
	}
	if perks, ok := rec[fieldPerks]; ok {
		p.Perks, _ = MergeIDs(nil, stringsFrom(perks))
	}
	if rev := numberFrom(rec[fieldRevision]); !math.IsNaN(rev) && !math.IsInf(rev, 0) && rev > 0 {
		p.Revision = int64(rev)
	}

	for k, v := range rec {
		switch k {
		case fieldLevel, fieldXP, fieldQuests, fieldPerks, fieldRevision, "_id":
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]interface{})
		}
		p.Extra[k] = v
	}
	return p
}

// Record flattens the progression back into a single document.
func (p Progression) Record() map[string]interface{} {
	rec := make(map[string]interface{}, len(p.Extra)+5)
	for k, v := range p.Extra {
		rec[k] = v
	}
	rec[fieldLevel] = p.Level
	rec[fieldXP] = p.XP
	rec[fieldQuests] = nonNil(p.Quests)
	rec[fieldPerks] = nonNil(p.Perks)
	rec[fieldRevision] = p.Revision
	return rec
}

func (p Progression) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Record())
}

func (p *Progression) UnmarshalJSON(data []byte) error {
	var rec map[string]interface{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*p = ProgressionFromRecord(rec)
	return nil
}

// Clone returns a deep copy so callers never share slices or maps.
func (p Progression) Clone() Progression {
	out := p
	out.Quests = append([]string{}, p.Quests...)
	out.Perks = append([]string{}, p.Perks...)
	if p.Extra != nil {
		out.Extra = make(map[string]interface{}, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func (p Progression) QuestSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Quests))
	for _, id := range p.Quests {
		set[id] = struct{}{}
	}
	return set
}

// ApplyXPGain adds XP from a scored game event. The level is re-derived from
// the new total and never goes down; quests of the levels passed and perks
// follow the resulting level.
func (p Progression) ApplyXPGain(amount int) Progression {
	return p.ApplyXPGainUpTo(amount, MaxLevel)
}

// ApplyXPGainUpTo is ApplyXPGain with the derived level capped at maxLevel.
// XP past the cap stays at the top of the capped level's band.
func (p Progression) ApplyXPGainUpTo(amount, maxLevel int) Progression {
	out := p.Clone()
	if amount <= 0 {
		return out
	}

	if headroom := MaxXP - out.XP; amount > headroom {
		amount = max(headroom, 0)
	}
	xp := out.XP + amount
	level := min(LevelForXP(xp), maxLevel)
	if level < out.Level {
		level = out.Level
	}

	out.Quests, _ = MergeIDs(out.Quests, TraversedQuests(p.Level, level))
	out.Level = level
	out.XP = ClampXPForLevel(level, float64(xp))
	out.Perks, _ = MergeIDs(out.Perks, PerkIDsForLevel(level))
	return out
}

// MergeIDs returns the set union of existing and added, keeping first-seen
// order, along with the ids from added that were not present before.
func MergeIDs(existing, added []string) (merged, fresh []string) {
	seen := make(map[string]struct{}, len(existing)+len(added))
	merged = make([]string, 0, len(existing)+len(added))
	fresh = []string{}
	for _, id := range existing {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range added {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
		fresh = append(fresh, id)
	}
	return merged, fresh
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// numberFrom reads a numeric value out of a decoded document. Anything that
// is not a number comes back as NaN.
func numberFrom(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func stringsFrom(v interface{}) []string {
	var items []interface{}
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		items = list
	case primitive.A:
		items = list
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
