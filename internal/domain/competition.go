package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// JudgeCode is the short uppercase code a judge signs marks with ("A", "BC").
type JudgeCode string

// Bib is a competitor's start number. Bibs are unique within a competition.
type Bib int

// Judge is one adjudicator on the panel.
type Judge struct {
	Code JudgeCode `json:"code" yaml:"code" validate:"required,judgecode"`
	Name string    `json:"name" yaml:"name" validate:"required"`
	Club *string   `json:"club,omitempty" yaml:"club,omitempty"`
}

// CommitteeMember is a non-judging official such as the chairperson.
type CommitteeMember struct {
	Name string  `json:"name" yaml:"name" validate:"required"`
	Club *string `json:"club,omitempty" yaml:"club,omitempty"`
}

// Officials lists everyone officiating a competition.
type Officials struct {
	ResponsiblePerson *CommitteeMember `json:"responsible_person,omitempty" yaml:"responsible_person,omitempty"`
	Assistant         *CommitteeMember `json:"assistant,omitempty" yaml:"assistant,omitempty"`
	Judges            []Judge          `json:"judges" yaml:"judges" validate:"unique=Code,dive"`
}

// JudgeCodes returns the roster's judge codes in panel order.
func (o Officials) JudgeCodes() []JudgeCode {
	codes := make([]JudgeCode, len(o.Judges))
	for i, j := range o.Judges {
		codes[i] = j.Code
	}
	return codes
}

// Participant is a solo dancer or a couple.
type Participant struct {
	Kind        IdentityKind `json:"identity_type" yaml:"identity_type" validate:"required,identity"`
	NameOne     string       `json:"name_one" yaml:"name_one" validate:"required"`
	NameTwo     *string      `json:"name_two,omitempty" yaml:"name_two,omitempty"`
	Bib         Bib          `json:"bib_number" yaml:"bib_number" validate:"gt=0"`
	Affiliation *string      `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
	// FinalRank is the published placing. Tied participants share a rank.
	FinalRank *int `json:"final_rank,omitempty" yaml:"final_rank,omitempty" validate:"omitempty,gt=0"`
}

// Round is one heat of a competition. Rounds are ordered earliest first.
type Round struct {
	Name   string    `validate:"required"`
	Order  int       `validate:"gte=0"`
	Dances []Dance   `validate:"dive,dance"`
	Data   RoundData `validate:"required"`
}

// Competition is a single contested category of an event, e.g. adult D Latin.
type Competition struct {
	Name         string        `json:"name" yaml:"name"`
	Date         *time.Time    `json:"date,omitempty" yaml:"date,omitempty"`
	Organizer    *string       `json:"organizer,omitempty" yaml:"organizer,omitempty"`
	HostingClub  *string       `json:"hosting_club,omitempty" yaml:"hosting_club,omitempty"`
	SourceURL    *string       `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Level        Level         `json:"level" yaml:"level" validate:"required,level"`
	AgeGroup     AgeGroup      `json:"age_group" yaml:"age_group" validate:"required,agegroup"`
	Style        Style         `json:"style" yaml:"style" validate:"required,style"`
	Dances       []Dance       `json:"dances" yaml:"dances" validate:"dive,dance"`
	MinDances    int           `json:"min_dances" yaml:"min_dances" validate:"gte=0"`
	Officials    Officials     `json:"officials" yaml:"officials"`
	Participants []Participant `json:"participants" yaml:"participants" validate:"unique=Bib,dive"`
	Rounds       []Round       `json:"rounds" yaml:"rounds" validate:"dive"`
}

// Key identifies the competition within its event as AgeGroup_Level_Style.
func (c *Competition) Key() string {
	return fmt.Sprintf("%s_%s_%s", c.AgeGroup, c.Level, c.Style)
}

// Participant looks up a participant by bib.
func (c *Competition) Participant(bib Bib) (Participant, bool) {
	for _, p := range c.Participants {
		if p.Bib == bib {
			return p, true
		}
	}
	return Participant{}, false
}

// ApplyPolicy recomputes MinDances for the effective date. A non-nil date
// replaces the competition's date first. An undated competition keeps the
// MinDances it was extracted with.
func (c *Competition) ApplyPolicy(date *time.Time) {
	if date != nil {
		d := *date
		c.Date = &d
	}
	if c.Date == nil {
		return
	}
	c.MinDances = MinimumDances(c.Level, *c.Date)
}

// LastRound returns the final round, or false when there are no rounds.
func (c *Competition) LastRound() (Round, bool) {
	if len(c.Rounds) == 0 {
		return Round{}, false
	}
	return c.Rounds[len(c.Rounds)-1], true
}

// Event groups the competitions published on one results index.
type Event struct {
	Name         string        `json:"name" yaml:"name" validate:"required"`
	Date         *time.Time    `json:"date,omitempty" yaml:"date,omitempty"`
	Organizer    *string       `json:"organizer,omitempty" yaml:"organizer,omitempty"`
	HostingClub  *string       `json:"hosting_club,omitempty" yaml:"hosting_club,omitempty"`
	Competitions []Competition `json:"competitions" yaml:"competitions" validate:"dive"`
}

// roundDocument is the persisted form of a Round: a kind tag plus exactly
// one payload field.
type roundDocument struct {
	Name    string      `json:"name" yaml:"name"`
	Order   int         `json:"order" yaml:"order"`
	Dances  []Dance     `json:"dances,omitempty" yaml:"dances,omitempty"`
	Kind    RoundKind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Marking MarkingData `json:"marking,omitempty" yaml:"marking,omitempty"`
	DTV     DTVData     `json:"dtv,omitempty" yaml:"dtv,omitempty"`
	WDSF    WDSFData    `json:"wdsf,omitempty" yaml:"wdsf,omitempty"`
}

func (r Round) document() roundDocument {
	doc := roundDocument{Name: r.Name, Order: r.Order, Dances: r.Dances}
	switch d := r.Data.(type) {
	case MarkingData:
		doc.Kind, doc.Marking = KindMarking, d
	case DTVData:
		doc.Kind, doc.DTV = KindDTV, d
	case WDSFData:
		doc.Kind, doc.WDSF = KindWDSF, d
	}
	return doc
}

func (r *Round) fromDocument(doc roundDocument) error {
	payloads := 0
	for _, present := range []bool{doc.Marking != nil, doc.DTV != nil, doc.WDSF != nil} {
		if present {
			payloads++
		}
	}
	if payloads > 1 {
		return fmt.Errorf("%w: round %q carries %d data shapes", ErrInvalidRound, doc.Name, payloads)
	}

	var data RoundData
	switch doc.Kind {
	case KindMarking:
		if doc.DTV != nil || doc.WDSF != nil {
			return fmt.Errorf("%w: round %q kind %s has foreign payload", ErrInvalidRound, doc.Name, doc.Kind)
		}
		if doc.Marking == nil {
			doc.Marking = MarkingData{}
		}
		data = doc.Marking
	case KindDTV:
		if doc.Marking != nil || doc.WDSF != nil {
			return fmt.Errorf("%w: round %q kind %s has foreign payload", ErrInvalidRound, doc.Name, doc.Kind)
		}
		if doc.DTV == nil {
			doc.DTV = DTVData{}
		}
		data = doc.DTV
	case KindWDSF:
		if doc.Marking != nil || doc.DTV != nil {
			return fmt.Errorf("%w: round %q kind %s has foreign payload", ErrInvalidRound, doc.Name, doc.Kind)
		}
		if doc.WDSF == nil {
			doc.WDSF = WDSFData{}
		}
		data = doc.WDSF
	case "":
		if payloads != 0 {
			return fmt.Errorf("%w: round %q has data but no kind", ErrInvalidRound, doc.Name)
		}
	default:
		return fmt.Errorf("%w: round %q has unknown kind %q", ErrInvalidRound, doc.Name, doc.Kind)
	}

	*r = Round{Name: doc.Name, Order: doc.Order, Dances: doc.Dances, Data: data}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Round) MarshalJSON() ([]byte, error) { return json.Marshal(r.document()) }

// UnmarshalJSON implements json.Unmarshaler.
func (r *Round) UnmarshalJSON(b []byte) error {
	var doc roundDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	return r.fromDocument(doc)
}

// MarshalYAML implements yaml.Marshaler.
func (r Round) MarshalYAML() (any, error) { return r.document(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Round) UnmarshalYAML(value *yaml.Node) error {
	var doc roundDocument
	if err := value.Decode(&doc); err != nil {
		return err
	}
	return r.fromDocument(doc)
}
