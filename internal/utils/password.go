package utils

import "golang.org/x/crypto/bcrypt"

// bcrypt only looks at the first 72 bytes; longer input is rejected by
// GenerateFromPassword, so both sides cut it the same way.
const bcryptMaxBytes = 72

func clip(plain string) []byte {
	b := []byte(plain)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

// HashPassword hashes plain with bcrypt.  A cost outside bcrypt's range
// falls back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword(clip(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash.  A malformed hash never
// matches.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), clip(plain)) == nil
}
