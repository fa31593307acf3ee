package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"astrobook/db"
	"astrobook/models"
)

const testSchema = `
CREATE TABLE quiz_answers (
	user_id TEXT PRIMARY KEY,
	first_name TEXT,
	last_name TEXT,
	birth_date TEXT,
	birth_time TEXT,
	birth_place TEXT,
	gender TEXT,
	cover_color TEXT
);
CREATE TABLE chart_interpretations (
	user_id TEXT PRIMARY KEY,
	sun_sign TEXT,
	moon_sign TEXT,
	rising_sign TEXT
);
`

func newTestUserRepo(t *testing.T) (*UserDataRepository, *sql.DB) {
	t.Helper()
	log := zaptest.NewLogger(t)
	ctx := context.Background()

	conn, err := db.Open(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "users.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.ExecContext(ctx, testSchema)
	require.NoError(t, err)

	return NewUserDataRepository(conn, db.DriverSQLite, log), conn
}

func TestGetByUserIDFormatsAnswers(t *testing.T) {
	repo, conn := newTestUserRepo(t)
	ctx := context.Background()

	_, err := conn.ExecContext(ctx,
		`INSERT INTO quiz_answers VALUES ('u1', 'alex', 'RIVERA', '1994-03-05', '14:30:00', ' Lisbon, Portugal ', 'Female', 'Navy')`)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx,
		`INSERT INTO chart_interpretations VALUES ('u1', 'pisces', 'leo', 'virgo')`)
	require.NoError(t, err)

	user, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, models.UserData{
		Name:       "Alex Rivera",
		FirstName:  "Alex",
		LastName:   "Rivera",
		BirthDate:  "March 5, 1994",
		BirthTime:  "2:30 PM",
		BirthPlace: "Lisbon, Portugal",
		CoverColor: "navy",
		Gender:     "female",
		SunSign:    "Pisces",
		MoonSign:   "Leo",
		RisingSign: "Virgo",
	}, user)
}

func TestGetByUserIDWithoutChart(t *testing.T) {
	repo, conn := newTestUserRepo(t)
	ctx := context.Background()

	_, err := conn.ExecContext(ctx,
		`INSERT INTO quiz_answers (user_id, first_name) VALUES ('u2', 'Sam')`)
	require.NoError(t, err)

	user, err := repo.GetByUserID(ctx, "u2")
	require.NoError(t, err)

	assert.Equal(t, "Sam", user.FirstName)
	assert.Equal(t, "Sam", user.Name)
	assert.Empty(t, user.SunSign)
	assert.Empty(t, user.BirthDate)
}

func TestGetByUserIDNotFound(t *testing.T) {
	repo, _ := newTestUserRepo(t)

	_, err := repo.GetByUserID(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestFormatBirthValues(t *testing.T) {
	assert.Equal(t, "December 24, 1988", formatBirthDate("1988-12-24T00:00:00Z"))
	assert.Equal(t, "sometime in spring", formatBirthDate("sometime in spring"))
	assert.Equal(t, "9:05 AM", formatBirthTime("09:05"))
	assert.Equal(t, "", formatBirthTime("  "))
	assert.Equal(t, "dawn", formatBirthTime("dawn"))
}

func TestGetByUserIDKeepsAccentedNames(t *testing.T) {
	repo, conn := newTestUserRepo(t)
	ctx := context.Background()

	_, err := conn.ExecContext(ctx,
		`INSERT INTO quiz_answers (user_id, first_name, last_name) VALUES ('u3', 'ángela', 'ÑÚÑEZ  de   león')`)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx,
		`INSERT INTO chart_interpretations (user_id, sun_sign) VALUES ('u3', 'écrevisse')`)
	require.NoError(t, err)

	user, err := repo.GetByUserID(ctx, "u3")
	require.NoError(t, err)

	assert.Equal(t, "Ángela", user.FirstName)
	assert.Equal(t, "Ñúñez De León", user.LastName)
	assert.Equal(t, "Ángela Ñúñez De León", user.Name)
	assert.Equal(t, "Écrevisse", user.SunSign)
}

func TestCapitalizeWords(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"   ":          "",
		"alex":         "Alex",
		"RIVERA":       "Rivera",
		"ángela":       "Ángela",
		"óscar maría":  "Óscar María",
		"émile  zola ": "Émile Zola",
	}
	for in, want := range tests {
		got := capitalizeWords(in)
		assert.Equal(t, want, got, in)
		assert.True(t, utf8.ValidString(got), in)
	}
}
