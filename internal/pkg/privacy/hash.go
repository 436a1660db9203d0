package privacy

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashUserID returns a short stable pseudonym for a chat identity.
// Phone numbers and chat ids never reach the log files in clear text.
func HashUserID(userId string) string {
	if userId == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(userId))
	return hex.EncodeToString(sum[:8])
}
