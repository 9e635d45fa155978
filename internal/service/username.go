package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dtroode/authkeeper/internal/model"
)

const (
	usernameMinLen  = 3
	usernameBaseMax = 45
	usernameMax     = 50
)

// GenerateUniqueUsername derives an unused username from the display name or,
// failing that, the email local-part. On collision it appends an incrementing
// numeric suffix, re-truncating the base so the result stays within the
// maximum length. The suffix strictly increases, so the loop terminates
// against any finite set of existing names.
func GenerateUniqueUsername(ctx context.Context, store model.UserStore, name, email string) (string, error) {
	base := sanitizeName(name)
	if base == "" {
		base = emailLocalPart(email)
	}
	base = strings.ToLower(base)
	base = keepAlphanumeric(base)

	if len(base) < usernameMinLen {
		base = "user" + base
	}
	if len(base) > usernameBaseMax {
		base = base[:usernameBaseMax]
	}

	candidate := base
	for counter := 1; ; counter++ {
		taken, err := usernameTaken(ctx, store, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}

		suffix := strconv.Itoa(counter)
		maxBase := usernameMax - len(suffix)
		if len(base) > maxBase {
			candidate = base[:maxBase] + suffix
		} else {
			candidate = base + suffix
		}
	}
}

func usernameTaken(ctx context.Context, store model.UserStore, username string) (bool, error) {
	_, err := store.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, " ", "")
	return keepAlphanumeric(name)
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at >= 0 {
		return email[:at]
	}
	return email
}

func keepAlphanumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
