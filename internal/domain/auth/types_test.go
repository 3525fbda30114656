package auth

import "testing"

func TestTokenPair_IsZero(t *testing.T) {
	if !(TokenPair{}).IsZero() {
		t.Fatalf("expected zero pair")
	}
	if (TokenPair{Access: "a"}).IsZero() {
		t.Fatalf("did not expect zero pair")
	}
	if (TokenPair{Refresh: "r"}).IsZero() {
		t.Fatalf("did not expect zero pair")
	}
}
