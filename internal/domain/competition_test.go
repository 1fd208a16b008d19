package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func ptr[T any](v T) *T { return &v }

func sampleCompetition() Competition {
	date := time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)
	return Competition{
		Name:      "Adult D Latin",
		Date:      &date,
		Organizer: ptr("TSC Blau-Gold"),
		Level:     LevelD,
		AgeGroup:  Adult,
		Style:     StyleLatin,
		Dances:    []Dance{Samba, ChaChaCha, Jive},
		MinDances: 3,
		Officials: Officials{
			ResponsiblePerson: &CommitteeMember{Name: "Chair"},
			Judges: []Judge{
				{Code: "A", Name: "Anna"},
				{Code: "B", Name: "Bernd", Club: ptr("TSC")},
				{Code: "C", Name: "Clara"},
			},
		},
		Participants: []Participant{
			{Kind: Couple, NameOne: "Max", NameTwo: ptr("Erika"), Bib: 101, FinalRank: ptr(1)},
			{Kind: Couple, NameOne: "Tom", NameTwo: ptr("Lisa"), Bib: 102, FinalRank: ptr(2)},
		},
		Rounds: []Round{
			{
				Name: "Vorrunde", Order: 0, Dances: []Dance{Samba, ChaChaCha, Jive},
				Data: MarkingData{"A": {101: {Samba: true, ChaChaCha: false, Jive: true}}},
			},
			{
				Name: "Finale", Order: 1, Dances: []Dance{Samba},
				Data: DTVData{"A": {101: {Samba: 1}, 102: {Samba: 2}}},
			},
			{
				Name: "WDSF Final", Order: 2,
				Data: WDSFData{"A": {101: {TechnicalQuality: 8.5, MovementToMusic: 8, PartneringSkills: 8.5, Choreography: 9, Total: 8.5}}},
			},
		},
	}
}

func TestCompetition_JSONRoundTrip(t *testing.T) {
	want := sampleCompetition()

	data, err := json.Marshal(want)
	require.NoError(t, err)

	var got Competition
	require.NoError(t, json.Unmarshal(data, &got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCompetition_YAMLRoundTrip(t *testing.T) {
	want := sampleCompetition()

	data, err := yaml.Marshal(want)
	require.NoError(t, err)

	var got Competition
	require.NoError(t, yaml.Unmarshal(data, &got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("YAML round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRound_TaggedDocument(t *testing.T) {
	r := Round{Name: "Finale", Data: DTVData{"A": {101: {Samba: 1}}}}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "dtv", m["kind"])
	assert.Contains(t, m, "dtv")
	assert.NotContains(t, m, "marking")
	assert.NotContains(t, m, "wdsf")
}

func TestRound_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RoundData
		wantErr bool
	}{
		{
			name:  "marking",
			input: `{"name":"R1","kind":"marking","marking":{"A":{"101":{"samba":true}}}}`,
			want:  MarkingData{"A": {101: {Samba: true}}},
		},
		{
			name:  "kind without payload is empty",
			input: `{"name":"R1","kind":"wdsf"}`,
			want:  WDSFData{},
		},
		{name: "no kind no data", input: `{"name":"R1"}`},
		{name: "unknown kind", input: `{"name":"R1","kind":"skating"}`, wantErr: true},
		{
			name:    "foreign payload",
			input:   `{"name":"R1","kind":"dtv","marking":{"A":{"101":{"samba":true}}}}`,
			wantErr: true,
		},
		{
			name:    "two payloads",
			input:   `{"name":"R1","kind":"dtv","dtv":{"A":{"101":{"samba":1}}},"marking":{"A":{"101":{"samba":true}}}}`,
			wantErr: true,
		},
		{
			name:    "payload without kind",
			input:   `{"name":"R1","dtv":{"A":{"101":{"samba":1}}}}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Round
			err := json.Unmarshal([]byte(tt.input), &r)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "R1", r.Name)
			assert.Equal(t, tt.want, r.Data)
		})
	}
}

func TestRound_UnmarshalYAMLRejectsForeignPayload(t *testing.T) {
	input := `
name: Finale
kind: wdsf
dtv:
  A:
    101:
      samba: 1
`
	var r Round
	err := yaml.Unmarshal([]byte(input), &r)
	require.ErrorIs(t, err, ErrInvalidRound)
}

func TestCompetition_Key(t *testing.T) {
	c := sampleCompetition()
	assert.Equal(t, "adult_D_lat", c.Key())
}

func TestCompetition_Participant(t *testing.T) {
	c := sampleCompetition()

	p, ok := c.Participant(102)
	require.True(t, ok)
	assert.Equal(t, "Tom", p.NameOne)

	_, ok = c.Participant(999)
	assert.False(t, ok)
}

func TestCompetition_ApplyPolicy(t *testing.T) {
	c := sampleCompetition()
	c.MinDances = 0

	c.ApplyPolicy(nil)
	assert.Equal(t, 3, c.MinDances, "D before 2026")

	later := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	c.ApplyPolicy(&later)
	assert.Equal(t, 4, c.MinDances, "D from 2026")
	require.NotNil(t, c.Date)
	assert.True(t, later.Equal(*c.Date))

	later = later.AddDate(1, 0, 0)
	assert.Equal(t, 2026, c.Date.Year(), "date is copied, not aliased")

	undated := sampleCompetition()
	undated.Date = nil
	undated.ApplyPolicy(nil)
	assert.Nil(t, undated.Date)
	assert.Equal(t, 3, undated.MinDances, "no date leaves MinDances alone")
}

func TestCompetition_LastRound(t *testing.T) {
	c := sampleCompetition()
	last, ok := c.LastRound()
	require.True(t, ok)
	assert.Equal(t, "WDSF Final", last.Name)

	_, ok = (&Competition{}).LastRound()
	assert.False(t, ok)
}

func TestCompetition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Competition)
		wantErr string
	}{
		{name: "valid", mutate: func(*Competition) {}},
		{
			name:    "duplicate bib",
			mutate:  func(c *Competition) { c.Participants[1].Bib = 101 },
			wantErr: "Participants",
		},
		{
			name:    "duplicate judge code",
			mutate:  func(c *Competition) { c.Officials.Judges[1].Code = "A" },
			wantErr: "Judges",
		},
		{
			name:    "lowercase judge code",
			mutate:  func(c *Competition) { c.Officials.Judges[0].Code = "a" },
			wantErr: "judgecode",
		},
		{
			name:    "unknown dance",
			mutate:  func(c *Competition) { c.Dances = append(c.Dances, "lindy_hop") },
			wantErr: "dance",
		},
		{
			name:    "unknown level",
			mutate:  func(c *Competition) { c.Level = "Z" },
			wantErr: "level",
		},
		{
			name:    "non-positive final rank",
			mutate:  func(c *Competition) { c.Participants[0].FinalRank = ptr(0) },
			wantErr: "FinalRank",
		},
		{
			name:    "round without data",
			mutate:  func(c *Competition) { c.Rounds[0].Data = nil },
			wantErr: "Data",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleCompetition()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Competition "+c.Key(), verr.Entity)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvent_Validate(t *testing.T) {
	ev := Event{Name: "Frühjahrsturnier", Competitions: []Competition{sampleCompetition()}}
	require.NoError(t, ev.Validate())

	ev.Name = ""
	ev.Competitions[0].Level = "Z"
	err := ev.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)
}
