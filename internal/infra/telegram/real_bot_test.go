//go:build !integration

package telegram

import (
	"testing"

	"telegram-promo-campaign/internal/usecase"
)

func TestIsAdmin(t *testing.T) {
	r := &RealTelegramBotAdapter{
		adminIDsMap: map[int64]struct{}{1111: {}, 2222: {}},
	}

	if !r.isAdmin(1111) {
		t.Fatalf("expected 1111 to be admin")
	}
	if r.isAdmin(3333) {
		t.Fatalf("expected 3333 to NOT be admin")
	}
}

func TestParseGenerateArgs(t *testing.T) {
	r := &RealTelegramBotAdapter{defaultPrefix: "VS"}

	t.Run("bare count uses the default prefix", func(t *testing.T) {
		reqs, err := r.parseGenerateArgs([]string{"5000"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []usecase.PrefixRequest{{Prefix: "VS", Count: 5000}}
		if len(reqs) != 1 || reqs[0] != want[0] {
			t.Errorf("expected %v, got %v", want, reqs)
		}
	})

	t.Run("prefix count pairs, uppercased", func(t *testing.T) {
		reqs, err := r.parseGenerateArgs([]string{"vs", "100", "AB", "20"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reqs) != 2 || reqs[0].Prefix != "VS" || reqs[0].Count != 100 || reqs[1].Prefix != "AB" || reqs[1].Count != 20 {
			t.Errorf("unexpected requests: %v", reqs)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		bad := [][]string{
			{},
			{"abc"},
			{"-5"},
			{"VS"},
			{"VS", "zero"},
			{"VS", "0"},
			{"VS", "10", "AB"},
		}
		for _, args := range bad {
			if _, err := r.parseGenerateArgs(args); err == nil {
				t.Errorf("expected error for args %v", args)
			}
		}
	})
}
