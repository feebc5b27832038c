package v1

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// TokenLexicon is the default alphabet for session and reset tokens.
const TokenLexicon = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ExistsFunc reports whether a candidate token is already in use.
type ExistsFunc func(ctx context.Context, token string) (bool, error)

// GenerateToken produces a token of the given length with characters
// drawn independently and uniformly from lexicon, using crypto/rand.
// Candidates colliding with an existing token (per exists) are
// regenerated; there is no retry bound because the collision
// probability at realistic lengths is negligible.
//
// The pre-check is a round-trip saver, not the correctness mechanism:
// the backing store's unique constraint remains authoritative, and
// callers retry on domain.ErrDuplicate at insert time.
func GenerateToken(ctx context.Context, length int, lexicon string, exists ExistsFunc) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("token length %d: %w", length, ErrInvalidArgument)
	}
	if lexicon == "" {
		return "", fmt.Errorf("empty lexicon: %w", ErrInvalidArgument)
	}

	max := big.NewInt(int64(len(lexicon)))
	buf := make([]byte, length)

	for {
		for i := range buf {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", fmt.Errorf("read random: %w", err)
			}
			buf[i] = lexicon[n.Int64()]
		}
		candidate := string(buf)

		if exists == nil {
			return candidate, nil
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check token collision: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
}
