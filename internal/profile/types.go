package profile

import (
	"time"
)

// Sentiment of a brand mention, inferred from nearby cue words.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Range is a closed budget range in yuan. High may equal Low.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Decision records something the user has already settled on.
type Decision struct {
	Text string    `json:"text"`
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

// BrandMention records a brand the user brought up and the inferred
// attitude toward it.
type BrandMention struct {
	Brand     string    `json:"brand"`
	Sentiment Sentiment `json:"sentiment"`
	Context   string    `json:"context"`
	At        time.Time `json:"at"`
}

// Spending records an amount the user reported paying, either a total
// for a category or a unit price.
type Spending struct {
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	IsTotal  bool      `json:"is_total"`
	At       time.Time `json:"at"`
}

// PainPoint records a frustration the user expressed.
type PainPoint struct {
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Severity    float64 `json:"severity"`
}

// FamilyInfo holds household composition signals that drive safety and
// material recommendations.
type FamilyInfo struct {
	HasElderly  bool `json:"has_elderly"`
	HasChildren bool `json:"has_children"`
	HasPets     bool `json:"has_pets"`
}

// Snapshot is the per-user profile. Mutation goes through the builder
// methods below; the Store hands out copies so a snapshot held by a turn
// is stable for that turn.
type Snapshot struct {
	UserID          string             `json:"user_id"`
	HouseArea       *float64           `json:"house_area,omitempty"`
	BudgetRange     *Range             `json:"budget_range,omitempty"`
	PreferredStyles []string           `json:"preferred_styles,omitempty"`
	City            string             `json:"city,omitempty"`
	Stage           string             `json:"stage,omitempty"`
	Family          FamilyInfo         `json:"family"`
	Interests       map[string]float64 `json:"interests,omitempty"`
	PainPoints      []PainPoint        `json:"pain_points,omitempty"`
	BrandMentions   []BrandMention     `json:"brand_mentions,omitempty"`
	Spending        []Spending         `json:"spending,omitempty"`
	Decisions       []Decision         `json:"decisions,omitempty"`
	Extra           map[string]string  `json:"extra,omitempty"`
}

// NewSnapshot creates an empty profile for a user.
func NewSnapshot(userID string) *Snapshot {
	return &Snapshot{
		UserID:    userID,
		Interests: make(map[string]float64),
		Extra:     make(map[string]string),
	}
}

// SetHouseArea sets the house area in square meters.
func (s *Snapshot) SetHouseArea(area float64) *Snapshot {
	s.HouseArea = &area
	return s
}

// SetBudgetRange sets the budget range in yuan.
func (s *Snapshot) SetBudgetRange(low, high float64) *Snapshot {
	s.BudgetRange = &Range{Low: low, High: high}
	return s
}

// SetStyles replaces the preferred styles.
func (s *Snapshot) SetStyles(styles ...string) *Snapshot {
	s.PreferredStyles = append([]string(nil), styles...)
	return s
}

// SetStage sets the current renovation stage.
func (s *Snapshot) SetStage(stage string) *Snapshot {
	s.Stage = stage
	return s
}

// SetCity sets the user's city.
func (s *Snapshot) SetCity(city string) *Snapshot {
	s.City = city
	return s
}

// AddInterest bumps an interest weight.
func (s *Snapshot) AddInterest(topic string, weight float64) *Snapshot {
	if s.Interests == nil {
		s.Interests = make(map[string]float64)
	}
	s.Interests[topic] += weight
	return s
}

// RecordPainPoint appends a pain point.
func (s *Snapshot) RecordPainPoint(kind, description string, severity float64) *Snapshot {
	s.PainPoints = append(s.PainPoints, PainPoint{Kind: kind, Description: description, Severity: severity})
	return s
}

// RecordBrandMention appends a brand mention unless the brand was
// already recorded.
func (s *Snapshot) RecordBrandMention(m BrandMention) *Snapshot {
	for _, existing := range s.BrandMentions {
		if existing.Brand == m.Brand {
			return s
		}
	}
	s.BrandMentions = append(s.BrandMentions, m)
	return s
}

// RecordSpending appends a spending record unless the same category and
// amount were already recorded.
func (s *Snapshot) RecordSpending(sp Spending) *Snapshot {
	for _, existing := range s.Spending {
		if existing.Category == sp.Category && existing.Amount == sp.Amount && existing.IsTotal == sp.IsTotal {
			return s
		}
	}
	s.Spending = append(s.Spending, sp)
	return s
}

// RecordDecision appends a decision unless the same text was already
// recorded.
func (s *Snapshot) RecordDecision(d Decision) *Snapshot {
	for _, existing := range s.Decisions {
		if existing.Text == d.Text {
			return s
		}
	}
	s.Decisions = append(s.Decisions, d)
	return s
}

// Clone returns an independent copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	cp := *s
	if s.HouseArea != nil {
		area := *s.HouseArea
		cp.HouseArea = &area
	}
	if s.BudgetRange != nil {
		r := *s.BudgetRange
		cp.BudgetRange = &r
	}
	cp.PreferredStyles = append([]string(nil), s.PreferredStyles...)
	cp.PainPoints = append([]PainPoint(nil), s.PainPoints...)
	cp.BrandMentions = append([]BrandMention(nil), s.BrandMentions...)
	cp.Spending = append([]Spending(nil), s.Spending...)
	cp.Decisions = append([]Decision(nil), s.Decisions...)
	cp.Interests = make(map[string]float64, len(s.Interests))
	for k, v := range s.Interests {
		cp.Interests[k] = v
	}
	cp.Extra = make(map[string]string, len(s.Extra))
	for k, v := range s.Extra {
		cp.Extra[k] = v
	}
	return &cp
}

// NumericField resolves a named numeric field for decision-graph
// matching. Budget is reported in 万 (10,000 yuan units) because option
// labels embed numbers on that scale.
func (s *Snapshot) NumericField(name string) (float64, bool) {
	switch name {
	case "house_area":
		if s.HouseArea == nil {
			return 0, false
		}
		return *s.HouseArea, true
	case "budget_range":
		if s.BudgetRange == nil {
			return 0, false
		}
		high := s.BudgetRange.High
		if high == 0 {
			high = s.BudgetRange.Low
		}
		if high == 0 {
			return 0, false
		}
		return high / 10000, true
	}
	return 0, false
}

// ListField resolves a named list-of-strings field for decision-graph
// matching.
func (s *Snapshot) ListField(name string) ([]string, bool) {
	switch name {
	case "preferred_styles":
		if len(s.PreferredStyles) == 0 {
			return nil, false
		}
		return s.PreferredStyles, true
	}
	return nil, false
}
