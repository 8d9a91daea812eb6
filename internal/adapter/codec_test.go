package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/tune-keeper/models"
)

func TestEncodeRecord(t *testing.T) {
	d, ok := models.DescriptorFor(models.KindFavorites)
	require.True(t, ok)

	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	record := models.Record{
		ID:      "rec-1",
		OwnerID: "owner-1",
		Fields: map[string]models.Value{
			"songId": models.String("song-42"),
			"title":  models.String("Bohemian Rhapsody"),
			"source": models.String("streaming"),
		},
		CreatedAt: created,
		UpdatedAt: created,
	}

	row := encodeRecord(d, "owner-1", record)

	assert.Equal(t, "owner-1", row["user_id"])
	assert.Equal(t, "song-42", row["song_id"])
	// local "title" travels as the remote "song_name" column
	assert.Equal(t, "Bohemian Rhapsody", row["song_name"])
	assert.Equal(t, created.Format(time.RFC3339Nano), row["created_at"])

	// absent optional fields are explicit nulls, not omitted keys
	val, present := row["album"]
	assert.True(t, present)
	assert.Nil(t, val)

	// the local record id never travels to the remote
	_, present = row["id"]
	assert.False(t, present)
}

func TestEncodeRecord_AppendOnlySkipsUpdatedAt(t *testing.T) {
	d, ok := models.DescriptorFor(models.KindPlayHistory)
	require.True(t, ok)

	played := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	record := models.Record{
		OwnerID: "owner-1",
		Fields: map[string]models.Value{
			"songId":    models.String("song-42"),
			"completed": models.Bool(false),
			"playedAt":  models.Time(played),
		},
		CreatedAt: played,
	}

	row := encodeRecord(d, "owner-1", record)

	assert.Equal(t, played.Format(time.RFC3339Nano), row["played_at"])
	// false is a stored value and must survive encoding
	assert.Equal(t, false, row["completed"])
	_, present := row["updated_at"]
	assert.False(t, present)
}

func TestDecodeRow(t *testing.T) {
	d, ok := models.DescriptorFor(models.KindPlaylists)
	require.True(t, ok)

	row := map[string]any{
		"user_id":     "owner-1",
		"name":        "Road Trip",
		"description": nil,
		"is_public":   false,
		"is_deleted":  false,
		"song_count":  float64(12),
		"created_at":  "2026-03-14T12:00:00Z",
		"updated_at":  "2026-03-15T08:30:00Z",
	}

	record, err := decodeRow(d, row)
	require.NoError(t, err)

	assert.Equal(t, "owner-1", record.OwnerID)
	assert.Equal(t, "Road Trip", record.Field("name").Str())
	assert.Equal(t, int64(12), record.Field("songCount").Int())
	assert.Equal(t, time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC), record.UpdatedAt)

	// JSON null means absent, not empty string
	assert.False(t, record.Field("description").Valid())

	// boolean false is present and false, not missing
	isPublic := record.Field("isPublic")
	assert.True(t, isPublic.Valid())
	assert.False(t, isPublic.Bool())
}

func TestDecodeRow_TypeMismatch(t *testing.T) {
	d, ok := models.DescriptorFor(models.KindPlaylists)
	require.True(t, ok)

	_, err := decodeRow(d, map[string]any{
		"user_id":    "owner-1",
		"name":       "Road Trip",
		"song_count": "twelve",
	})
	assert.Error(t, err)
}

func TestDecodeRow_TimeWithoutZone(t *testing.T) {
	d, ok := models.DescriptorFor(models.KindPlayHistory)
	require.True(t, ok)

	record, err := decodeRow(d, map[string]any{
		"user_id":   "owner-1",
		"song_id":   "song-42",
		"played_at": "2026-03-14T12:00:00.123456",
	})
	require.NoError(t, err)

	played := record.Field("playedAt")
	require.True(t, played.Valid())
	assert.Equal(t, 2026, played.Time().Year())
	assert.Equal(t, time.UTC, played.Time().Location())
}

func TestEncodeDecode_RoundTripPreservesFalsyValues(t *testing.T) {
	d, ok := models.DescriptorFor(models.KindAppSettings)
	require.True(t, ok)

	record := models.Record{
		OwnerID: "owner-1",
		Fields: map[string]models.Value{
			"audioQuality": models.String(""),
			"autoPlay":     models.Bool(false),
			"theme":        models.String("dark"),
		},
		CreatedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	decoded, err := decodeRow(d, encodeRecord(d, "owner-1", record))
	require.NoError(t, err)

	// empty string and false round-trip as present values
	assert.True(t, decoded.Field("audioQuality").Valid())
	assert.Equal(t, "", decoded.Field("audioQuality").Str())
	assert.True(t, decoded.Field("autoPlay").Valid())
	assert.False(t, decoded.Field("autoPlay").Bool())

	// fields the record never carried stay absent
	assert.False(t, decoded.Field("language").Valid())
}
