package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Open connects to the catalog database of the media server.
func Open(config Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "postgres", "":
		dialector = postgres.Open(config.DSN)
	case "mysql":
		dialector = mysql.Open(config.DSN)
	case "sqlite":
		dialector = sqlite.Open(config.DSN)
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", config.Driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

type DatabaseCtx struct {
	logger zerolog.Logger
	db     *gorm.DB
}

func NewDatabase(db *gorm.DB) *DatabaseCtx {
	return &DatabaseCtx{
		logger: log.With().Str("module", "catalog").Logger(),
		db:     db,
	}
}

func (d *DatabaseCtx) ContentPath(ctx context.Context, kind Kind, id int) (string, error) {
	switch kind {
	case KindMovie:
		var movie Movie
		err := d.db.WithContext(ctx).Joins("Library").First(&movie, id).Error
		if err != nil {
			return "", d.wrap(err, "movie", id)
		}
		return filepath.Join(movie.Library.Path, movie.Directory, movie.File), nil

	case KindEpisode:
		var episode Episode
		err := d.db.WithContext(ctx).
			Preload("Season.Show.Library").
			First(&episode, id).Error
		if err != nil {
			return "", d.wrap(err, "episode", id)
		}
		return filepath.Join(episode.Season.Show.Library.Path, episode.Path), nil
	}

	return "", fmt.Errorf("unknown content type %q", kind)
}

func (d *DatabaseCtx) Subtitles(ctx context.Context, kind Kind, id int) ([]Subtitle, error) {
	column := "movie_id"
	if kind == KindEpisode {
		column = "episode_id"
	}

	var rows []SubtitleFile
	err := d.db.WithContext(ctx).
		Where(column+" = ?", id).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	subtitles := make([]Subtitle, 0, len(rows))
	for _, row := range rows {
		subtitles = append(subtitles, Subtitle{ID: row.ID, Language: row.Language})
	}
	return subtitles, nil
}

func (d *DatabaseCtx) SubtitlePath(ctx context.Context, subtitleID int) (string, error) {
	var subtitle SubtitleFile
	if err := d.db.WithContext(ctx).First(&subtitle, subtitleID).Error; err != nil {
		return "", d.wrap(err, "subtitle", subtitleID)
	}

	var libraryPath string
	switch {
	case subtitle.MovieID != nil:
		var movie Movie
		if err := d.db.WithContext(ctx).Joins("Library").First(&movie, *subtitle.MovieID).Error; err != nil {
			return "", d.wrap(err, "movie", *subtitle.MovieID)
		}
		libraryPath = movie.Library.Path

	case subtitle.EpisodeID != nil:
		var episode Episode
		if err := d.db.WithContext(ctx).Preload("Season.Show.Library").First(&episode, *subtitle.EpisodeID).Error; err != nil {
			return "", d.wrap(err, "episode", *subtitle.EpisodeID)
		}
		libraryPath = episode.Season.Show.Library.Path

	default:
		return "", fmt.Errorf("subtitle %d: owner %w", subtitleID, ErrNotFound)
	}

	return filepath.Join(libraryPath, subtitle.Path), nil
}

func (d *DatabaseCtx) wrap(err error, what string, id int) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}

	d.logger.Error().Err(err).Str("entity", what).Int("id", id).Msg("catalog query failed")
	return err
}
