package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-ordering/internal/domain"
)

const botToken = "123:secret"

func sign(fields map[string]string, token string) map[string]string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var lines []string
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}
	secret := sha256.Sum256([]byte(token))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(lines, "\n")))

	out := map[string]string{"hash": hex.EncodeToString(mac.Sum(nil))}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func loginFields(at time.Time) map[string]string {
	return map[string]string{
		"id":         "42",
		"first_name": "Ann",
		"username":   "ann",
		"auth_date":  strconv.FormatInt(at.Unix(), 10),
	}
}

func TestParseStartParam(t *testing.T) {
	tenant, table, err := ParseStartParam("cafe_t7")
	require.NoError(t, err)
	assert.Equal(t, "cafe", tenant)
	assert.Equal(t, 7, table)

	tenant, table, err = ParseStartParam("my_tea_house_t12")
	require.NoError(t, err)
	assert.Equal(t, "my_tea_house", tenant)
	assert.Equal(t, 12, table)

	for _, bad := range []string{"", "cafe", "_t3", "cafe_t0", "cafe_tx", "cafe_t-1"} {
		_, _, err := ParseStartParam(bad)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr, bad)
	}
}

func TestFromQuery(t *testing.T) {
	tenant, table, err := FromQuery("cafe", "3")
	require.NoError(t, err)
	assert.Equal(t, "cafe", tenant)
	assert.Equal(t, 3, table)

	_, _, err = FromQuery("", "")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"cafe", "table"}, verr.Required)

	_, _, err = FromQuery("cafe", "zero")
	assert.ErrorAs(t, err, &verr)
}

func TestVerifyTelegramLogin(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fields := sign(loginFields(now.Add(-time.Minute)), botToken)

	user, err := VerifyTelegramLogin(fields, botToken, time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "Ann", user.FirstName)
	assert.Equal(t, "ann", user.Username)
	assert.Equal(t, now.Add(-time.Minute).Unix(), user.AuthDate)
}

func TestVerifyTelegramLogin_Rejects(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tampered := sign(loginFields(now), botToken)
	tampered["username"] = "mallory"
	_, err := VerifyTelegramLogin(tampered, botToken, time.Hour, now)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	wrongBot := sign(loginFields(now), "other-token")
	_, err = VerifyTelegramLogin(wrongBot, botToken, time.Hour, now)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	stale := sign(loginFields(now.Add(-2*time.Hour)), botToken)
	_, err = VerifyTelegramLogin(stale, botToken, time.Hour, now)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	noHash := loginFields(now)
	_, err = VerifyTelegramLogin(noHash, botToken, time.Hour, now)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	badHex := sign(loginFields(now), botToken)
	badHex["hash"] = "zz"
	_, err = VerifyTelegramLogin(badHex, botToken, time.Hour, now)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
