package services

import (
	"crypto/rand"
	"fmt"
)

// Entry codes avoid characters that read ambiguously when shared out loud or
// scribbled on a receipt.
const entryCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	entryCodeLength = 6
	editCodeLength  = 4
)

func newEntryCode() (string, error) {
	buf := make([]byte, entryCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate entry code: %w", err)
	}
	for i, b := range buf {
		buf[i] = entryCodeAlphabet[int(b)%len(entryCodeAlphabet)]
	}
	return string(buf), nil
}

func newEditCode() (string, error) {
	buf := make([]byte, editCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate edit code: %w", err)
	}
	for i, b := range buf {
		buf[i] = '0' + b%10
	}
	return string(buf), nil
}
