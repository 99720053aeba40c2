package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Shreenandbhattad/personal-finance-tracker/internal/core"
)

// formatCents renders cents as a plain decimal string, e.g. "12.34".
func formatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(whole, 10) + "." + fmt.Sprintf("%02d", rem)
	if neg {
		return "-" + s
	}
	return s
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNoUser) || errors.Is(err, core.ErrTransactionNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, core.ErrUserExists)
}

func isForbidden(err error) bool {
	return errors.Is(err, core.ErrNotOwner)
}
