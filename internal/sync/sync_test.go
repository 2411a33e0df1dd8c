package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumelabs/lume/internal/db"
	"github.com/lumelabs/lume/internal/spotify"
)

type fakeCatalog struct {
	playlists    []spotify.PlaylistSummary
	listErr      error
	tracks       map[string][]spotify.PlaylistTrack
	failTracksOn string
	tracksCalls  []string
}

func (f *fakeCatalog) ListPlaylists(_ context.Context, _ string) ([]spotify.PlaylistSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.playlists, nil
}

func (f *fakeCatalog) ListPlaylistTracks(_ context.Context, _ string, playlistID string) ([]spotify.PlaylistTrack, error) {
	f.tracksCalls = append(f.tracksCalls, playlistID)
	if playlistID == f.failTracksOn {
		return nil, &spotify.APIError{StatusCode: 500, Body: "boom"}
	}
	return f.tracks[playlistID], nil
}

type fakeEnsurer struct {
	calls int
	err   error
}

func (f *fakeEnsurer) EnsureValid(_ context.Context, user *db.User) (*db.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	user.AccessToken = "valid-token"
	return user, nil
}

// memPlaylistStore reproduces the repository's upsert contract in memory:
// keyed by remote playlist id, local counters and created_at survive updates.
type memPlaylistStore struct {
	rows    map[string]*db.Playlist
	order   []string
	upserts int
	err     error
}

func newMemPlaylistStore() *memPlaylistStore {
	return &memPlaylistStore{rows: make(map[string]*db.Playlist)}
}

func (m *memPlaylistStore) Upsert(_ context.Context, pl *db.Playlist) error {
	if m.err != nil {
		return m.err
	}
	m.upserts++
	if existing, ok := m.rows[pl.SpotifyPlaylistID]; ok {
		pl.ID = existing.ID
		pl.Likes = existing.Likes
		pl.CommentsCount = existing.CommentsCount
		pl.CreatedAt = existing.CreatedAt
	} else {
		pl.ID = uuid.New()
		pl.Likes = 0
		pl.CommentsCount = 0
		pl.CreatedAt = time.Now()
		m.order = append(m.order, pl.SpotifyPlaylistID)
	}
	stored := *pl
	m.rows[pl.SpotifyPlaylistID] = &stored
	return nil
}

func (m *memPlaylistStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]db.Playlist, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []db.Playlist
	for _, id := range m.order {
		if m.rows[id].OwnerID == ownerID {
			out = append(out, *m.rows[id])
		}
	}
	return out, nil
}

func summary(id, name string, imageURLs []string, total int, public bool) spotify.PlaylistSummary {
	s := spotify.PlaylistSummary{
		ID:     id,
		Name:   name,
		Public: public,
	}
	for _, u := range imageURLs {
		s.Images = append(s.Images, spotify.Image{URL: u})
	}
	s.Tracks.Total = total
	return s
}

func entry(id, name string, durationMs int, artists ...string) spotify.PlaylistTrack {
	track := &spotify.TrackObject{ID: id, Name: name, DurationMs: durationMs}
	for _, a := range artists {
		track.Artists = append(track.Artists, spotify.Artist{Name: a})
	}
	return spotify.PlaylistTrack{Track: track}
}

func importUser() *db.User {
	return &db.User{ID: uuid.New(), DisplayName: "Ada", RefreshToken: "refresh"}
}

func TestImportPlaylists(t *testing.T) {
	catalog := &fakeCatalog{
		playlists: []spotify.PlaylistSummary{
			summary("pl-1", "Morning Mix", []string{"https://img.example/1.jpg", "https://img.example/1-small.jpg"}, 3, true),
			summary("pl-2", "No Art", nil, 1, false),
		},
		tracks: map[string][]spotify.PlaylistTrack{
			"pl-1": {
				entry("t-1", "Song One", 61000, "A", "B"),
				{Track: nil}, // removed track, must be dropped
				entry("t-2", "Song Two", 5000, "C"),
			},
			"pl-2": {
				entry("t-3", "Song Three", 600000, "D"),
			},
		},
	}
	store := newMemPlaylistStore()
	svc := New(catalog, &fakeEnsurer{}, store, nil)

	user := importUser()
	imported, err := svc.ImportPlaylists(context.Background(), user)
	if err != nil {
		t.Fatalf("ImportPlaylists() error = %v", err)
	}

	if len(imported) != 2 {
		t.Fatalf("imported %d playlists, want 2", len(imported))
	}
	// Provider order preserved
	if imported[0].SpotifyPlaylistID != "pl-1" || imported[1].SpotifyPlaylistID != "pl-2" {
		t.Errorf("import order = %s, %s; want pl-1, pl-2", imported[0].SpotifyPlaylistID, imported[1].SpotifyPlaylistID)
	}

	first := imported[0]
	if first.CoverImage != "https://img.example/1.jpg" {
		t.Errorf("CoverImage = %q, want first image URL", first.CoverImage)
	}
	if first.OwnerID != user.ID || first.OwnerDisplayName != "Ada" {
		t.Errorf("owner snapshot = %v/%q, want importing user", first.OwnerID, first.OwnerDisplayName)
	}
	if first.TrackCount != 3 {
		t.Errorf("TrackCount = %d, want provider-reported 3", first.TrackCount)
	}

	// Removed track dropped, relative order kept, fields mapped
	if len(first.Tracks) != 2 {
		t.Fatalf("got %d tracks, want 2 after filtering", len(first.Tracks))
	}
	if first.Tracks[0].TrackID != "t-1" || first.Tracks[1].TrackID != "t-2" {
		t.Errorf("track order = %s, %s; want t-1, t-2", first.Tracks[0].TrackID, first.Tracks[1].TrackID)
	}
	if first.Tracks[0].Artist != "A, B" {
		t.Errorf("Artist = %q, want comma-joined names", first.Tracks[0].Artist)
	}
	if first.Tracks[0].Duration != "1:01" {
		t.Errorf("Duration = %q, want 1:01", first.Tracks[0].Duration)
	}

	second := imported[1]
	if second.CoverImage != "" {
		t.Errorf("CoverImage = %q, want empty for missing images", second.CoverImage)
	}
	if second.Description != "" {
		t.Errorf("Description = %q, want empty default", second.Description)
	}
}

func TestImportPlaylists_Idempotent(t *testing.T) {
	catalog := &fakeCatalog{
		playlists: []spotify.PlaylistSummary{summary("pl-1", "Mix", nil, 1, true)},
		tracks: map[string][]spotify.PlaylistTrack{
			"pl-1": {entry("t-1", "Song", 61000, "A")},
		},
	}
	store := newMemPlaylistStore()
	svc := New(catalog, &fakeEnsurer{}, store, nil)
	user := importUser()

	first, err := svc.ImportPlaylists(context.Background(), user)
	if err != nil {
		t.Fatalf("first import error = %v", err)
	}

	// Local activity between imports must survive the re-import.
	row := store.rows["pl-1"]
	row.Likes = 7
	row.CommentsCount = 2

	second, err := svc.ImportPlaylists(context.Background(), user)
	if err != nil {
		t.Fatalf("second import error = %v", err)
	}

	if len(store.rows) != 1 {
		t.Fatalf("store has %d rows, want 1", len(store.rows))
	}
	if second[0].ID != first[0].ID {
		t.Errorf("row ID changed across imports: %v -> %v", first[0].ID, second[0].ID)
	}
	if !second[0].CreatedAt.Equal(first[0].CreatedAt) {
		t.Errorf("CreatedAt changed across imports: %v -> %v", first[0].CreatedAt, second[0].CreatedAt)
	}
	if second[0].Likes != 7 || second[0].CommentsCount != 2 {
		t.Errorf("counters = %d/%d, want 7/2 untouched by import", second[0].Likes, second[0].CommentsCount)
	}
}

func TestImportPlaylists_AbortOnTrackFailure(t *testing.T) {
	catalog := &fakeCatalog{
		playlists: []spotify.PlaylistSummary{
			summary("pl-1", "First", nil, 1, true),
			summary("pl-2", "Second", nil, 1, true),
			summary("pl-3", "Third", nil, 1, true),
		},
		tracks: map[string][]spotify.PlaylistTrack{
			"pl-1": {entry("t-1", "Song", 5000, "A")},
			"pl-3": {entry("t-3", "Song", 5000, "C")},
		},
		failTracksOn: "pl-2",
	}
	store := newMemPlaylistStore()
	svc := New(catalog, &fakeEnsurer{}, store, nil)

	_, err := svc.ImportPlaylists(context.Background(), importUser())

	var apiErr *spotify.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ImportPlaylists() error = %T, want *spotify.APIError", err)
	}

	// First playlist stays committed, third is never attempted.
	if _, ok := store.rows["pl-1"]; !ok {
		t.Error("pl-1 upsert should remain committed after abort")
	}
	if store.upserts != 1 {
		t.Errorf("upserts = %d, want 1", store.upserts)
	}
	if len(catalog.tracksCalls) != 2 {
		t.Errorf("track listings attempted = %v, want [pl-1 pl-2]", catalog.tracksCalls)
	}
}

func TestImportPlaylists_AuthFailure(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := New(catalog, &fakeEnsurer{err: &spotify.AuthError{StatusCode: 400, Code: "invalid_grant"}}, newMemPlaylistStore(), nil)

	_, err := svc.ImportPlaylists(context.Background(), importUser())

	var authErr *spotify.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("ImportPlaylists() error = %T, want *spotify.AuthError", err)
	}
	if len(catalog.tracksCalls) != 0 {
		t.Error("no catalog calls should happen after a failed renewal")
	}
}

func TestImportPlaylists_ListFailure(t *testing.T) {
	catalog := &fakeCatalog{listErr: &spotify.APIError{StatusCode: 502, Body: "bad gateway"}}
	store := newMemPlaylistStore()
	svc := New(catalog, &fakeEnsurer{}, store, nil)

	_, err := svc.ImportPlaylists(context.Background(), importUser())
	if err == nil {
		t.Fatal("ImportPlaylists() error = nil, want listing failure")
	}
	if store.upserts != 0 {
		t.Errorf("upserts = %d, want 0", store.upserts)
	}
}
