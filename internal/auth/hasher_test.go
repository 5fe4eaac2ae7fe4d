package auth

import (
	"regexp"
	"testing"
)

func TestHash(t *testing.T) {
	hexDigest := regexp.MustCompile(`^[0-9a-f]{64}$`)

	h1 := Hash("hunter22")
	h2 := Hash("hunter22")
	if h1 != h2 {
		t.Fatalf("Hash is not deterministic: %q vs %q", h1, h2)
	}
	if !hexDigest.MatchString(h1) {
		t.Fatalf("Hash() = %q, want 64 lowercase hex characters", h1)
	}
	if Hash("hunter23") == h1 {
		t.Fatalf("distinct inputs produced the same digest")
	}

	// Known vector for the empty string.
	if got := Hash(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf(`Hash("") = %q`, got)
	}
}

func TestVerify(t *testing.T) {
	digest := Hash("hunter22")
	if !Verify("hunter22", digest) {
		t.Fatalf("Verify rejected the matching secret")
	}
	if Verify("hunter23", digest) {
		t.Fatalf("Verify accepted a wrong secret")
	}
	if Verify("hunter22", "") {
		t.Fatalf("Verify accepted an empty digest")
	}
}
