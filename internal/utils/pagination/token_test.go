package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Standard date/time values
	cursor := Cursor{
		EntryDate: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 5, 15, 14, 30, 45, 123456789, time.UTC),
		ID:        "7d0c2f4e-1111-4c55-9f0a-3f1b2c3d4e5f",
	}

	token := EncodeToken(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")

	decoded, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, cursor, decoded)

	// Current time values
	now := time.Now().UTC()
	decoded, err = DecodeToken(EncodeToken(Cursor{EntryDate: now, CreatedAt: now, ID: "x"}))
	require.NoError(t, err)
	assert.True(t, now.Equal(decoded.EntryDate), "Entry date should match after decode")
	assert.True(t, now.Equal(decoded.CreatedAt), "Created at should match after decode")
}

func TestDecodeTokenError(t *testing.T) {
	_, err := DecodeToken("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	missingID := base64.URLEncoding.EncodeToString([]byte("2024-05-15T00:00:00Z|2024-05-15T00:00:00Z"))
	_, err = DecodeToken(missingID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.URLEncoding.EncodeToString([]byte("notadate|2024-05-15T00:00:00Z|id"))
	_, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entry date parse")

	badCreated := base64.URLEncoding.EncodeToString([]byte("2024-05-15T00:00:00Z|notadate|id"))
	_, err = DecodeToken(badCreated)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "created_at parse")
}

func TestCursorBefore(t *testing.T) {
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	created := day.Add(time.Hour)
	c := Cursor{EntryDate: day, CreatedAt: created, ID: "m"}

	assert.True(t, c.Before(day.AddDate(0, 0, -1), created, "z"), "older entry date is on the next page")
	assert.False(t, c.Before(day.AddDate(0, 0, 1), created, "a"), "newer entry date was on this page")
	assert.True(t, c.Before(day, created.Add(-time.Second), "z"))
	assert.True(t, c.Before(day, created, "a"))
	assert.False(t, c.Before(day, created, "m"), "the cursor item itself is not repeated")
}
