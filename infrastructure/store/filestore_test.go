package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/ports"
)

func ptr[T any](v T) *T { return &v }

func sampleEvent() (*domain.Event, *domain.Competition) {
	date := time.Date(2025, time.October, 4, 0, 0, 0, 0, time.UTC)
	c := domain.Competition{
		Name:      "Jun 1 C Latein",
		Date:      &date,
		Level:     domain.LevelC,
		AgeGroup:  domain.Jun1,
		Style:     domain.StyleLatin,
		Dances:    []domain.Dance{domain.Samba, domain.ChaChaCha, domain.Rumba, domain.Jive},
		MinDances: 4,
		Officials: domain.Officials{Judges: []domain.Judge{{Code: "A", Name: "Anna", Club: ptr("TSC")}}},
		Participants: []domain.Participant{
			{Kind: domain.Couple, NameOne: "Max", NameTwo: ptr("Erika"), Bib: 12, FinalRank: ptr(1)},
		},
		Rounds: []domain.Round{
			{Name: "Vorrunde", Dances: []domain.Dance{domain.Samba}, Data: domain.MarkingData{"A": {12: {domain.Samba: true}}}},
			{Name: "Finale", Order: 1, Data: domain.DTVData{"A": {12: {domain.Samba: 1}}}},
		},
	}
	event := &domain.Event{Name: "Herbstball 2025 / Köln!", Competitions: []domain.Competition{c}}
	return event, &event.Competitions[0]
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Event Name!", "Event_Name_"},
		{"Köln-Pokal", "Köln-Pokal"},
		{"a/b\\c", "a_b_c"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}

	assert.Len(t, SanitizeName(strings.Repeat("A", 100)), 64)
	long := SanitizeName(strings.Repeat("ü", 40))
	assert.LessOrEqual(t, len(long), 64)
	assert.True(t, strings.HasPrefix(strings.Repeat("ü", 40), long), "truncation keeps whole runes")
}

func TestEventDir(t *testing.T) {
	event, c := sampleEvent()
	assert.Equal(t, "Herbstball_2025___Köln__2025", EventDir(event, c))

	c.Date = nil
	assert.Equal(t, "Herbstball_2025___Köln__unknown", EventDir(event, c))

	event.Date = ptr(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Herbstball_2025___Köln__2024", EventDir(event, c))
}

func TestFileStore_SaveRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			root := t.TempDir()
			s, err := NewFileStore(root, WithFormat(format))
			require.NoError(t, err)
			event, c := sampleEvent()

			path, err := s.Save(context.Background(), event, c)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, "Herbstball_2025___Köln__2025", "jun_1_C_lat."+string(format)), path)

			got, err := Load(path)
			require.NoError(t, err)
			if diff := cmp.Diff(c, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temporary files are left behind")
		})
	}
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	event, c := sampleEvent()

	_, err = s.Save(context.Background(), event, c)
	require.NoError(t, err)
	c.MinDances = 5
	path, err := s.Save(context.Background(), event, c)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, got.MinDances)
}

func TestFileStore_Quarantine(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)
	event, c := sampleEvent()
	verdict := domain.Reject(domain.Reason{Code: domain.ReasonScrutineeringMismatch, Bib: 12, Expected: 2, Actual: 1})

	path, err := s.Quarantine(context.Background(), event, c, verdict)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, filepath.Join(root, DefaultQuarantineDir)))
	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), "jun_1_C_lat.verdict.json"))
	require.NoError(t, err)
	var got domain.Verdict
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, verdict, got)

	manifest, err := s.Manifest()
	require.NoError(t, err)
	assert.Empty(t, manifest, "quarantined events are not published in the manifest")
}

func TestFileStore_Manifest(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	event, c := sampleEvent()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Save(context.Background(), event, c)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	manifest, err := s.Manifest()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{event.Name: "Herbstball_2025___Köln__2025"}, manifest)
}

func TestNewFileStore_InvalidFormat(t *testing.T) {
	_, err := NewFileStore(t.TempDir(), WithFormat("xml"))
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestFileStore_CanceledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	event, c := sampleEvent()

	_, err = s.Save(ctx, event, c)
	assert.ErrorIs(t, err, context.Canceled)
}
