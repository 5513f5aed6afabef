package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2025, 11, 12, 9, 30, 0, 123, time.UTC), ID: uuid.New()}
	parsed, err := ParseCursor(EncodeCursor(c))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, parsed.CreatedAt.Equal(c.CreatedAt))
	assert.Equal(t, c.ID, parsed.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)
	_, err = ParseCursor(EncodeCursor(Cursor{})[:4])
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestTrim(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []Cursor{
		{CreatedAt: base.Add(3 * time.Hour), ID: uuid.New()},
		{CreatedAt: base.Add(2 * time.Hour), ID: uuid.New()},
		{CreatedAt: base.Add(time.Hour), ID: uuid.New()},
	}
	key := func(c Cursor) Cursor { return c }

	page, next := Trim(rows, 2, key)
	assert.Len(t, page, 2)
	require.NotNil(t, next)
	assert.Equal(t, rows[1].ID, next.ID, "cursor marks the last row served")

	page, next = Trim(rows, 5, key)
	assert.Len(t, page, 3)
	assert.Nil(t, next)
	assert.Equal(t, "", EncodeNext(next))
}

type pagedRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func TestKeysetWalksEveryRowOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&pagedRow{}))

	base := time.Date(2025, 11, 12, 9, 0, 0, 0, time.UTC)
	// two rows share a timestamp so the id tiebreak is exercised
	stamps := []time.Time{base, base.Add(time.Minute), base.Add(time.Minute), base.Add(2 * time.Minute), base.Add(3 * time.Minute)}
	for _, ts := range stamps {
		require.NoError(t, db.Create(&pagedRow{ID: uuid.New(), CreatedAt: ts}).Error)
	}

	seen := map[uuid.UUID]bool{}
	var cursor *Cursor
	pages := 0
	for {
		var rows []pagedRow
		require.NoError(t, db.Scopes(Keyset(cursor, 2)).Find(&rows).Error)
		page, next := Trim(rows, 2, func(r pagedRow) Cursor { return Cursor{CreatedAt: r.CreatedAt, ID: r.ID} })
		pages++
		for _, r := range page {
			assert.False(t, seen[r.ID], "row %s served twice", r.ID)
			seen[r.ID] = true
		}
		if next == nil {
			break
		}
		cursor, err = ParseCursor(EncodeNext(next))
		require.NoError(t, err)
	}
	assert.Len(t, seen, len(stamps))
	assert.Equal(t, 3, pages)
}
