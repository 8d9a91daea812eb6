package models

import (
	"fmt"
	"time"
)

// EntityKind names one logical syncable table.
type EntityKind string

const (
	KindFavorites       EntityKind = "favorites"
	KindPlaylists       EntityKind = "playlists"
	KindPlaylistSongs   EntityKind = "playlist_songs"
	KindPlayHistory     EntityKind = "play_history"
	KindPlayStatistics  EntityKind = "play_statistics"
	KindAppSettings     EntityKind = "app_settings"
	KindUserProfiles    EntityKind = "user_profiles"
	KindArtistPlayStats EntityKind = "artist_play_stats"
	KindDailyPlayStats  EntityKind = "daily_play_stats"
	KindDislikedSongs   EntityKind = "disliked_songs"
)

// FieldDef maps one payload field between its local name, its remote column
// name and its value type. The mapping is total: every persisted field of a
// kind appears here exactly once.
type FieldDef struct {
	Local    string
	Remote   string
	Kind     FieldKind
	Optional bool
}

// EntityDescriptor declares everything the generic sync engine, the record
// store and the remote adapter need to know about one entity kind.
type EntityDescriptor struct {
	Kind        EntityKind
	LocalTable  string
	RemoteTable string

	// OwnerScoped records whether rows belong to a single user. All currently
	// registered kinds are owner-scoped; global catalogs would clear it.
	OwnerScoped bool

	// AppendOnly kinds have no update-in-place semantics: downloads dedupe
	// against existing local rows instead of running conflict resolution,
	// and uploads use plain inserts instead of upserts.
	AppendOnly bool

	// KeyFields are the local names of the natural key, scoped by owner.
	// Empty means the owner id alone identifies the row (singleton kinds).
	KeyFields []string

	Fields []FieldDef

	// HasUpdatedAt is false for append-only kinds; their records carry only
	// a creation timestamp.
	HasUpdatedAt bool

	// DownloadLimit bounds how many remote rows one download fetches.
	// Zero means unbounded.
	DownloadLimit int

	// DedupeField and DedupeWindow configure append-only dedupe: a remote
	// row counts as already present when a local row matches the natural key
	// and its DedupeField timestamp lies within DedupeWindow of the remote
	// one. A zero window requires an exact key match only.
	DedupeField  string
	DedupeWindow time.Duration

	// Parent, when set, names a kind whose sync must complete before this
	// one starts, so children never reference a not-yet-synced parent.
	Parent EntityKind

	// SkipDeleted filters soft-deleted remote rows out of downloads.
	SkipDeleted bool
}

// Field returns the definition of the named local field.
func (d EntityDescriptor) Field(local string) (FieldDef, bool) {
	for _, f := range d.Fields {
		if f.Local == local {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Validate checks the descriptor's internal consistency: unique local and
// remote names, key and dedupe fields that exist, and a named parent only on
// kinds that declare one.
func (d EntityDescriptor) Validate() error {
	locals := make(map[string]struct{}, len(d.Fields))
	remotes := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if f.Local == "" || f.Remote == "" {
			return fmt.Errorf("%s: field with empty name", d.Kind)
		}
		if _, dup := locals[f.Local]; dup {
			return fmt.Errorf("%s: duplicate local field %q", d.Kind, f.Local)
		}
		if _, dup := remotes[f.Remote]; dup {
			return fmt.Errorf("%s: duplicate remote field %q", d.Kind, f.Remote)
		}
		locals[f.Local] = struct{}{}
		remotes[f.Remote] = struct{}{}
	}

	for _, key := range d.KeyFields {
		if _, ok := locals[key]; !ok {
			return fmt.Errorf("%s: key field %q is not declared", d.Kind, key)
		}
	}

	if d.AppendOnly {
		if d.HasUpdatedAt {
			return fmt.Errorf("%s: append-only kinds carry no updated_at", d.Kind)
		}
		if d.DedupeField != "" {
			if def, ok := d.Field(d.DedupeField); !ok || def.Kind != KindTime {
				return fmt.Errorf("%s: dedupe field %q must be a declared time field", d.Kind, d.DedupeField)
			}
		}
	}

	return nil
}

// Descriptors returns the full registry of synced entity kinds, parent kinds
// ordered before their children.
func Descriptors() []EntityDescriptor {
	return []EntityDescriptor{
		{
			Kind:         KindFavorites,
			LocalTable:   "favorites",
			RemoteTable:  "favorite_songs",
			OwnerScoped:  true,
			KeyFields:    []string{"songId"},
			HasUpdatedAt: true,
			Fields: []FieldDef{
				{Local: "songId", Remote: "song_id", Kind: KindString},
				{Local: "title", Remote: "song_name", Kind: KindString},
				{Local: "artist", Remote: "artist", Kind: KindString, Optional: true},
				{Local: "album", Remote: "album", Kind: KindString, Optional: true},
				{Local: "source", Remote: "source", Kind: KindString},
				{Local: "coverUrl", Remote: "cover_url", Kind: KindString, Optional: true},
			},
		},
		{
			Kind:         KindPlaylists,
			LocalTable:   "playlists",
			RemoteTable:  "playlists",
			OwnerScoped:  true,
			KeyFields:    []string{"name"},
			HasUpdatedAt: true,
			SkipDeleted:  true,
			Fields: []FieldDef{
				{Local: "name", Remote: "name", Kind: KindString},
				{Local: "description", Remote: "description", Kind: KindString, Optional: true},
				{Local: "coverUrl", Remote: "cover_url", Kind: KindString, Optional: true},
				{Local: "isPublic", Remote: "is_public", Kind: KindBool},
				{Local: "isDeleted", Remote: "is_deleted", Kind: KindBool},
				{Local: "songCount", Remote: "song_count", Kind: KindInt},
				{Local: "playCount", Remote: "play_count", Kind: KindInt},
				{Local: "likeCount", Remote: "like_count", Kind: KindInt},
				{Local: "commentCount", Remote: "comment_count", Kind: KindInt},
			},
		},
		{
			Kind:         KindPlaylistSongs,
			LocalTable:   "playlist_songs",
			RemoteTable:  "playlist_songs",
			OwnerScoped:  true,
			KeyFields:    []string{"playlistName", "songId"},
			HasUpdatedAt: true,
			Parent:       KindPlaylists,
			Fields: []FieldDef{
				{Local: "playlistName", Remote: "playlist_name", Kind: KindString},
				{Local: "songId", Remote: "song_id", Kind: KindString},
				{Local: "title", Remote: "song_name", Kind: KindString},
				{Local: "artist", Remote: "artist", Kind: KindString, Optional: true},
				{Local: "album", Remote: "album", Kind: KindString, Optional: true},
				{Local: "source", Remote: "source", Kind: KindString},
				{Local: "duration", Remote: "duration", Kind: KindInt, Optional: true},
				{Local: "coverUrl", Remote: "cover_url", Kind: KindString, Optional: true},
				{Local: "position", Remote: "position", Kind: KindInt},
			},
		},
		{
			Kind:          KindPlayHistory,
			LocalTable:    "play_history",
			RemoteTable:   "play_history",
			OwnerScoped:   true,
			AppendOnly:    true,
			KeyFields:     []string{"songId"},
			DownloadLimit: 1000,
			DedupeField:   "playedAt",
			DedupeWindow:  time.Minute,
			Fields: []FieldDef{
				{Local: "songId", Remote: "song_id", Kind: KindString},
				{Local: "title", Remote: "song_name", Kind: KindString},
				{Local: "artist", Remote: "artist", Kind: KindString, Optional: true},
				{Local: "album", Remote: "album", Kind: KindString, Optional: true},
				{Local: "source", Remote: "source", Kind: KindString},
				{Local: "playDuration", Remote: "play_duration", Kind: KindInt, Optional: true},
				{Local: "totalDuration", Remote: "total_duration", Kind: KindInt, Optional: true},
				{Local: "completed", Remote: "completed", Kind: KindBool},
				{Local: "playedAt", Remote: "played_at", Kind: KindTime},
			},
		},
		{
			Kind:         KindPlayStatistics,
			LocalTable:   "play_statistics",
			RemoteTable:  "play_statistics",
			OwnerScoped:  true,
			KeyFields:    []string{"songId"},
			HasUpdatedAt: true,
			Fields: []FieldDef{
				{Local: "songId", Remote: "song_id", Kind: KindString},
				{Local: "title", Remote: "song_name", Kind: KindString},
				{Local: "artist", Remote: "artist", Kind: KindString, Optional: true},
				{Local: "source", Remote: "source", Kind: KindString},
				{Local: "playCount", Remote: "play_count", Kind: KindInt},
				{Local: "totalDuration", Remote: "total_duration", Kind: KindInt},
				{Local: "lastPlayedAt", Remote: "last_played_at", Kind: KindTime, Optional: true},
			},
		},
		{
			Kind:         KindAppSettings,
			LocalTable:   "app_settings",
			RemoteTable:  "app_settings",
			OwnerScoped:  true,
			HasUpdatedAt: true,
			Fields: []FieldDef{
				{Local: "audioQuality", Remote: "audio_quality", Kind: KindString},
				{Local: "downloadQuality", Remote: "download_quality", Kind: KindString},
				{Local: "autoPlay", Remote: "auto_play", Kind: KindBool},
				{Local: "shuffleMode", Remote: "shuffle_mode", Kind: KindBool},
				{Local: "repeatMode", Remote: "repeat_mode", Kind: KindString},
				{Local: "wifiOnlyDownload", Remote: "wifi_only_download", Kind: KindBool},
				{Local: "wifiOnlyStream", Remote: "wifi_only_stream", Kind: KindBool},
				{Local: "enableNotifications", Remote: "enable_notifications", Kind: KindBool},
				{Local: "theme", Remote: "theme", Kind: KindString},
				{Local: "language", Remote: "language", Kind: KindString},
			},
		},
		{
			Kind:         KindUserProfiles,
			LocalTable:   "user_profiles",
			RemoteTable:  "user_profiles",
			OwnerScoped:  true,
			HasUpdatedAt: true,
			Fields: []FieldDef{
				{Local: "username", Remote: "username", Kind: KindString},
				{Local: "displayName", Remote: "display_name", Kind: KindString, Optional: true},
				{Local: "email", Remote: "email", Kind: KindString},
				{Local: "avatarUrl", Remote: "avatar_url", Kind: KindString, Optional: true},
				{Local: "bio", Remote: "bio", Kind: KindString, Optional: true},
				{Local: "totalPlayTime", Remote: "total_play_time", Kind: KindInt},
				{Local: "totalSongs", Remote: "total_songs", Kind: KindInt},
				{Local: "totalPlaylists", Remote: "total_playlists", Kind: KindInt},
				{Local: "followingCount", Remote: "following_count", Kind: KindInt},
				{Local: "followersCount", Remote: "followers_count", Kind: KindInt},
				{Local: "isPublic", Remote: "is_public", Kind: KindBool},
				{Local: "showPlayHistory", Remote: "show_play_history", Kind: KindBool},
				{Local: "showPlaylists", Remote: "show_playlists", Kind: KindBool},
			},
		},
		{
			Kind:         KindArtistPlayStats,
			LocalTable:   "artist_play_stats",
			RemoteTable:  "artist_play_stats",
			OwnerScoped:  true,
			KeyFields:    []string{"artist"},
			HasUpdatedAt: true,
			Fields: []FieldDef{
				{Local: "artist", Remote: "artist", Kind: KindString},
				{Local: "playCount", Remote: "play_count", Kind: KindInt},
				{Local: "totalDuration", Remote: "total_duration", Kind: KindInt},
				{Local: "lastPlayedAt", Remote: "last_played_at", Kind: KindTime, Optional: true},
			},
		},
		{
			Kind:         KindDailyPlayStats,
			LocalTable:   "daily_play_stats",
			RemoteTable:  "daily_play_stats",
			OwnerScoped:  true,
			KeyFields:    []string{"date"},
			HasUpdatedAt: true,
			Fields: []FieldDef{
				{Local: "date", Remote: "date", Kind: KindString},
				{Local: "totalPlays", Remote: "total_plays", Kind: KindInt},
				{Local: "totalDuration", Remote: "total_duration", Kind: KindInt},
				{Local: "uniqueSongs", Remote: "unique_songs", Kind: KindInt},
				{Local: "uniqueArtists", Remote: "unique_artists", Kind: KindInt},
			},
		},
		{
			Kind:        KindDislikedSongs,
			LocalTable:  "disliked_songs",
			RemoteTable: "disliked_songs",
			OwnerScoped: true,
			AppendOnly:  true,
			KeyFields:   []string{"songId"},
			Fields: []FieldDef{
				{Local: "songId", Remote: "song_id", Kind: KindString},
				{Local: "title", Remote: "song_name", Kind: KindString},
				{Local: "artist", Remote: "artist", Kind: KindString, Optional: true},
				{Local: "source", Remote: "source", Kind: KindString},
				{Local: "reason", Remote: "reason", Kind: KindString, Optional: true},
			},
		},
	}
}

// DescriptorFor looks a descriptor up by kind.
func DescriptorFor(kind EntityKind) (EntityDescriptor, bool) {
	for _, d := range Descriptors() {
		if d.Kind == kind {
			return d, true
		}
	}
	return EntityDescriptor{}, false
}
