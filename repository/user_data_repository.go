package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"astrobook/db"
	"astrobook/models"
)

// Display layouts used when turning stored answers into UserData
const (
	BirthDateLayout = "January 2, 2006"
	BirthTimeLayout = "3:04 PM"
)

// capitalizeWords title-cases each word and collapses runs of whitespace
func capitalizeWords(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

// UserDataRepository reads an authenticated user's quiz answers and chart
// interpretation and flattens them into UserData. It never writes.
type UserDataRepository struct {
	conn   *sql.DB
	driver string
	log    *zap.Logger
}

// NewUserDataRepository creates a new UserDataRepository
func NewUserDataRepository(conn *sql.DB, driver string, log *zap.Logger) *UserDataRepository {
	return &UserDataRepository{
		conn:   conn,
		driver: driver,
		log:    log,
	}
}

// Ensure UserDataRepository implements UserDataRepositoryInterface
var _ UserDataRepositoryInterface = (*UserDataRepository)(nil)

// GetByUserID returns the display-ready UserData of a user
func (r *UserDataRepository) GetByUserID(ctx context.Context, userID string) (models.UserData, error) {
	r.log.Debug("🔍 GetByUserID: fetching quiz answers", zap.String("userId", userID))

	query := db.Rebind(r.driver, `
		SELECT
			COALESCE(q.first_name, '') AS first_name,
			COALESCE(q.last_name, '') AS last_name,
			COALESCE(CAST(q.birth_date AS TEXT), '') AS birth_date,
			COALESCE(CAST(q.birth_time AS TEXT), '') AS birth_time,
			COALESCE(q.birth_place, '') AS birth_place,
			COALESCE(q.gender, '') AS gender,
			COALESCE(q.cover_color, '') AS cover_color,
			COALESCE(c.sun_sign, '') AS sun_sign,
			COALESCE(c.moon_sign, '') AS moon_sign,
			COALESCE(c.rising_sign, '') AS rising_sign
		FROM quiz_answers q
		LEFT JOIN chart_interpretations c ON c.user_id = q.user_id
		WHERE q.user_id = ?
	`)

	var firstName, lastName, birthDate, birthTime, birthPlace, gender, coverColor string
	var sunSign, moonSign, risingSign string
	err := r.conn.QueryRowContext(ctx, query, userID).Scan(
		&firstName,
		&lastName,
		&birthDate,
		&birthTime,
		&birthPlace,
		&gender,
		&coverColor,
		&sunSign,
		&moonSign,
		&risingSign,
	)
	if errors.Is(err, sql.ErrNoRows) {
		r.log.Info("⚠️  GetByUserID: no quiz answers", zap.String("userId", userID))
		return models.UserData{}, fmt.Errorf("user %s: %w", userID, models.ErrUserNotFound)
	}
	if err != nil {
		r.log.Error("❌ GetByUserID: query failed", zap.String("userId", userID), zap.Error(err))
		return models.UserData{}, fmt.Errorf("failed to query user data: %w", err)
	}

	user := models.UserData{
		FirstName:  capitalizeWords(firstName),
		LastName:   capitalizeWords(lastName),
		BirthDate:  formatBirthDate(birthDate),
		BirthTime:  formatBirthTime(birthTime),
		BirthPlace: strings.TrimSpace(birthPlace),
		Gender:     strings.ToLower(strings.TrimSpace(gender)),
		CoverColor: strings.ToLower(strings.TrimSpace(coverColor)),
		SunSign:    capitalizeWords(sunSign),
		MoonSign:   capitalizeWords(moonSign),
		RisingSign: capitalizeWords(risingSign),
	}
	user.Name = strings.TrimSpace(user.FirstName + " " + user.LastName)

	r.log.Debug("✓ GetByUserID: user data loaded", zap.String("userId", userID))
	return user, nil
}

// formatBirthDate turns a stored date (YYYY-MM-DD, optionally with a time part)
// into its display form. Unparseable values are returned trimmed as stored.
func formatBirthDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < len("2006-01-02") {
		return raw
	}
	t, err := time.Parse("2006-01-02", raw[:10])
	if err != nil {
		return raw
	}
	return t.Format(BirthDateLayout)
}

// formatBirthTime turns a stored time (HH:MM or HH:MM:SS) into its display form
func formatBirthTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(BirthTimeLayout)
		}
	}
	return raw
}
