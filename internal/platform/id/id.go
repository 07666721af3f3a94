package id

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

type RandomHex struct{}

func (RandomHex) New() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

const (
	base36Alphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	sessionSuffixN  = 9
	sessionIDPrefix = "session_"
)

// SessionID produces identifiers of the form session_<unix-ms>_<9 base36 chars>.
type SessionID struct {
	Now func() time.Time
}

func (g SessionID) New() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return sessionIDPrefix + strconv.FormatInt(now().UnixMilli(), 10) + "_" + randomBase36(sessionSuffixN)
}

// randomBase36 draws n characters without modulo bias: bytes >= 252 are rejected.
func randomBase36(n int) string {
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic("id: crypto/rand unavailable: " + err.Error())
		}
		for _, b := range buf {
			if b >= 252 {
				continue
			}
			out = append(out, base36Alphabet[b%36])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}
