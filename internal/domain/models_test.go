package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestAnswerJSONKeepsNumbersNumeric(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]Answer{Number(12), Symbol("<")}); err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `[12,"<"]` {
		t.Fatalf("unexpected encoding %s", got)
	}

	var decoded []Answer
	if err := json.Unmarshal([]byte(`[12,"12","="]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[0] != decoded[1] {
		t.Fatalf("expected 12 and \"12\" to compare equal, got %q and %q", decoded[0], decoded[1])
	}
	if decoded[2] != Symbol("=") {
		t.Fatalf("expected '=', got %q", decoded[2])
	}
}

func TestTimeoutIsNeverAValidAnswer(t *testing.T) {
	n, ok := Timeout.Int()
	if !ok || n >= 0 {
		t.Fatalf("timeout sentinel must be a negative number, got %q", Timeout)
	}
}

func TestProfileApplyRound(t *testing.T) {
	p := NewProfile()
	p.ApplyRound(RoundSummary{CoinsEarned: 130, CorrectAnswers: 10})
	p.ApplyRound(RoundSummary{CoinsEarned: 20, CorrectAnswers: 2})
	if p.TotalCoins != 150 || p.GamesPlayed != 2 || p.TotalCorrect != 12 {
		t.Fatalf("unexpected profile totals %+v", p)
	}
	if p.DisplayName() != "You" {
		t.Fatalf("expected default display name, got %q", p.DisplayName())
	}
}

func TestAnswerUnmarshalCollapsesIntegralNumbers(t *testing.T) {
	var decoded []Answer
	if err := json.Unmarshal([]byte(`[7.0, 7e0, 7, 2.5]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i := 0; i < 3; i++ {
		if decoded[i] != Number(7) {
			t.Fatalf("value %d: expected %q, got %q", i, Number(7), decoded[i])
		}
	}
	if decoded[3] != Answer("2.5") {
		t.Fatalf("expected fractional answer kept as 2.5, got %q", decoded[3])
	}
}
