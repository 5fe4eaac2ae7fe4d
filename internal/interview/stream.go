package interview

import (
	"context"
	"time"
)

// splitPreservingSpace breaks text into alternating runs of non-whitespace
// and whitespace, so that concatenating the chunks reproduces the input
// exactly.
func splitPreservingSpace(text string) []string {
	var chunks []string
	runes := []rune(text)
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || isSpace(runes[i]) != isSpace(runes[start]) {
			chunks = append(chunks, string(runes[start:i]))
			start = i
		}
	}
	return chunks
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// streamWords feeds text to onDelta word by word with a fixed delay between
// words. The delay is purely cosmetic pacing for the UI; the full reply is
// already final when streaming starts.
func streamWords(ctx context.Context, text string, delay time.Duration, onDelta DeltaFunc) error {
	if onDelta == nil {
		return nil
	}
	for i, chunk := range chunksOf(text) {
		if i > 0 && delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if err := onDelta(chunk); err != nil {
			return err
		}
	}
	return nil
}

func chunksOf(text string) []string {
	if text == "" {
		return nil
	}
	return splitPreservingSpace(text)
}
