package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func intPtr(v int) *int {
	return &v
}

func setupTestDB(t *testing.T) *DatabaseCtx {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every pooled connection would get its own in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Library{}, &Movie{}, &Show{}, &Season{}, &Episode{}, &SubtitleFile{}))

	require.NoError(t, db.Create(&Library{ID: 1, Path: "/srv/movies"}).Error)
	require.NoError(t, db.Create(&Library{ID: 2, Path: "/srv/shows"}).Error)
	require.NoError(t, db.Create(&Movie{ID: 10, LibraryID: 1, Directory: "Heat (1995)", File: "Heat.mkv"}).Error)
	require.NoError(t, db.Create(&Show{ID: 20, LibraryID: 2}).Error)
	require.NoError(t, db.Create(&Season{ID: 30, ShowID: 20}).Error)
	require.NoError(t, db.Create(&Episode{ID: 40, SeasonID: 30, Path: "Show/S01/E01.mkv"}).Error)
	require.NoError(t, db.Create(&SubtitleFile{ID: 1, Language: "eng", Path: "Heat (1995)/Heat.en.srt", MovieID: intPtr(10)}).Error)
	require.NoError(t, db.Create(&SubtitleFile{ID: 2, Language: "swe", Path: "Heat (1995)/Heat.sv.srt", MovieID: intPtr(10)}).Error)
	require.NoError(t, db.Create(&SubtitleFile{ID: 3, Language: "eng", Path: "Show/S01/E01.en.srt", EpisodeID: intPtr(40)}).Error)

	return NewDatabase(db)
}

func TestDatabase_ContentPath(t *testing.T) {
	catalog := setupTestDB(t)
	ctx := context.Background()

	path, err := catalog.ContentPath(ctx, KindMovie, 10)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/movies", "Heat (1995)", "Heat.mkv"), path)

	path, err = catalog.ContentPath(ctx, KindEpisode, 40)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/shows", "Show/S01/E01.mkv"), path)

	_, err = catalog.ContentPath(ctx, KindMovie, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = catalog.ContentPath(ctx, KindEpisode, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDatabase_Subtitles(t *testing.T) {
	catalog := setupTestDB(t)
	ctx := context.Background()

	subtitles, err := catalog.Subtitles(ctx, KindMovie, 10)
	require.NoError(t, err)
	assert.Equal(t, []Subtitle{{ID: 1, Language: "eng"}, {ID: 2, Language: "swe"}}, subtitles)

	subtitles, err = catalog.Subtitles(ctx, KindEpisode, 40)
	require.NoError(t, err)
	assert.Equal(t, []Subtitle{{ID: 3, Language: "eng"}}, subtitles)

	subtitles, err = catalog.Subtitles(ctx, KindMovie, 999)
	require.NoError(t, err)
	assert.Empty(t, subtitles)
}

func TestDatabase_SubtitlePath(t *testing.T) {
	catalog := setupTestDB(t)
	ctx := context.Background()

	path, err := catalog.SubtitlePath(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/movies", "Heat (1995)/Heat.sv.srt"), path)

	path, err = catalog.SubtitlePath(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/shows", "Show/S01/E01.en.srt"), path)

	_, err = catalog.SubtitlePath(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("episode")
	assert.NoError(t, err)
	assert.Equal(t, KindEpisode, kind)

	_, err = ParseKind("show")
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Library{}))
}
