// Package auth issues confirmation codes and signed access tokens.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"kritika/internal/models"
)

// confirmationCodeLength bounds the hex code mailed to the user.
const confirmationCodeLength = 32

// stateHash digests the fields whose mutation must invalidate outstanding
// confirmation codes. UpdatedAt rotates on every write to the user row, so a
// code is single-purpose without being stored anywhere.
func stateHash(u *models.User) []byte {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"%d|%s|%s|%s|%d",
		u.ID,
		strings.ToLower(u.Username),
		strings.ToLower(u.Email),
		u.Role,
		u.UpdatedAt.Unix(),
	)))
	return sum[:]
}

// ConfirmationCode derives the code currently valid for the user.
func ConfirmationCode(secret string, u *models.User) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(stateHash(u))
	return hex.EncodeToString(mac.Sum(nil))[:confirmationCodeLength]
}

// CheckConfirmationCode reports whether code matches the user's current state.
func CheckConfirmationCode(secret string, u *models.User, code string) bool {
	return hmac.Equal([]byte(ConfirmationCode(secret, u)), []byte(code))
}
