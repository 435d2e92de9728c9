package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"cafe-ordering/internal/domain"
)

// ParseStartParam decodes a deep-link start parameter of the form "<tenantId>_t<table>".
func ParseStartParam(param string) (string, int, error) {
	i := strings.LastIndex(param, "_t")
	if i <= 0 {
		return "", 0, &domain.ValidationError{Message: fmt.Sprintf("Invalid start parameter %q", param)}
	}
	table, err := strconv.Atoi(param[i+2:])
	if err != nil || table < 1 {
		return "", 0, &domain.ValidationError{Message: fmt.Sprintf("Invalid table in start parameter %q", param)}
	}
	return param[:i], table, nil
}

// FromQuery reads the cafe/table pair of a plain URL (?cafe=...&table=...).
func FromQuery(cafe, table string) (string, int, error) {
	var missing []string
	if cafe == "" {
		missing = append(missing, "cafe")
	}
	if table == "" {
		missing = append(missing, "table")
	}
	if len(missing) > 0 {
		return "", 0, domain.Missing(missing...)
	}
	n, err := strconv.Atoi(table)
	if err != nil || n < 1 {
		return "", 0, &domain.ValidationError{Message: fmt.Sprintf("Invalid table %q", table)}
	}
	return cafe, n, nil
}

// VerifyTelegramLogin checks the login widget signature: HMAC-SHA256 over the sorted
// "key=value" lines keyed with SHA256(botToken), and auth_date no older than maxAge.
func VerifyTelegramLogin(fields map[string]string, botToken string, maxAge time.Duration, now time.Time) (*domain.TelegramUser, error) {
	hash := fields["hash"]
	if hash == "" || fields["auth_date"] == "" || fields["id"] == "" {
		return nil, fmt.Errorf("telegram login: hash, auth_date and id are required: %w", domain.ErrUnauthorized)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(lines, "\n")))
	got, err := hex.DecodeString(hash)
	if err != nil || !hmac.Equal(got, mac.Sum(nil)) {
		return nil, fmt.Errorf("telegram login: bad signature: %w", domain.ErrUnauthorized)
	}

	authDate, err := strconv.ParseInt(fields["auth_date"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram login: bad auth_date: %w", domain.ErrUnauthorized)
	}
	if maxAge > 0 && now.Sub(time.Unix(authDate, 0)) > maxAge {
		return nil, fmt.Errorf("telegram login expired: %w", domain.ErrUnauthorized)
	}
	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram login: bad id: %w", domain.ErrUnauthorized)
	}

	return &domain.TelegramUser{
		ID:        id,
		FirstName: fields["first_name"],
		LastName:  fields["last_name"],
		Username:  fields["username"],
		PhotoURL:  fields["photo_url"],
		AuthDate:  authDate,
	}, nil
}
