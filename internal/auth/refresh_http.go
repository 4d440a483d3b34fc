package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"gorm.io/gorm"
)

const (
	RefreshTTL    = 30 * 24 * time.Hour
	RefreshCookie = "rt"
)

func genRaw() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashRaw(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// On localhost (plain http) the cookie must not be Secure; set
// COOKIE_SECURE=true in production.
func cookieSecure() bool {
	return os.Getenv("COOKIE_SECURE") == "true"
}

func setRTCookie(w http.ResponseWriter, raw string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    raw,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   cookieSecure(),
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func clearRTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   cookieSecure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// IssueTokensOnLogin is called by the login handler after the password check.
// It returns the access token and sets the refresh cookie.
func IssueTokensOnLogin(db *gorm.DB, w http.ResponseWriter, userID uint, role string) (string, error) {
	access, err := GenerateAccessToken(userID, role)
	if err != nil {
		return "", err
	}

	raw, err := genRaw()
	if err != nil {
		return "", err
	}

	rt := RefreshToken{
		UserID:    userID,
		FamilyID:  fmt.Sprintf("fam-%d", userID),
		Hash:      hashRaw(raw),
		Role:      role,
		ExpiresAt: time.Now().Add(RefreshTTL),
	}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	setRTCookie(w, raw, rt.ExpiresAt)
	return access, nil
}

// RefreshHTTPHandler handles POST /auth/refresh. Tokens rotate on every use;
// reuse of a revoked token revokes the whole family.
func RefreshHTTPHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(RefreshCookie)
		if err != nil || c.Value == "" {
			http.Error(w, "no refresh", http.StatusUnauthorized)
			return
		}
		h := hashRaw(c.Value)

		var cur RefreshToken
		if err := db.Where("hash = ?", h).First(&cur).Error; err != nil {
			clearRTCookie(w)
			http.Error(w, "invalid refresh", http.StatusUnauthorized)
			return
		}

		now := time.Now()
		if cur.RevokedAt != nil {
			// Reuse of a rotated token: revoke the family.
			db.Model(&RefreshToken{}).
				Where("family_id = ? AND revoked_at IS NULL", cur.FamilyID).
				Update("revoked_at", &now)
			clearRTCookie(w)
			http.Error(w, "refresh reuse detected", http.StatusUnauthorized)
			return
		}
		if now.After(cur.ExpiresAt) {
			clearRTCookie(w)
			http.Error(w, "refresh expired", http.StatusUnauthorized)
			return
		}

		raw, err := genRaw()
		if err != nil {
			http.Error(w, "could not rotate token", http.StatusInternalServerError)
			return
		}
		next := RefreshToken{
			UserID:    cur.UserID,
			FamilyID:  cur.FamilyID,
			Hash:      hashRaw(raw),
			Role:      cur.Role,
			ExpiresAt: now.Add(RefreshTTL),
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&RefreshToken{}).Where("id = ?", cur.ID).
				Update("revoked_at", &now).Error; err != nil {
				return err
			}
			return tx.Create(&next).Error
		})
		if err != nil {
			http.Error(w, "could not rotate token", http.StatusInternalServerError)
			return
		}

		access, err := GenerateAccessToken(cur.UserID, cur.Role)
		if err != nil {
			http.Error(w, "could not issue access token", http.StatusInternalServerError)
			return
		}
		setRTCookie(w, raw, next.ExpiresAt)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": access})
	}
}

// LogoutHTTPHandler handles POST /auth/logout.
func LogoutHTTPHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
			now := time.Now()
			db.Model(&RefreshToken{}).
				Where("hash = ?", hashRaw(c.Value)).
				Update("revoked_at", &now)
		}
		clearRTCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
