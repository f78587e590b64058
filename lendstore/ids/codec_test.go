package ids

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestEncodeKnownValues(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{MinID, "BAAAAAA"},
		{0x8C1F2A40, "RQPSUQA"},
		{0xFFFFFFFF, "777777Y"},
		{0, "AAAAAAA"},
	}

	for _, tt := range tests {
		if got := Encode(tt.id); got != tt.want {
			t.Errorf("Encode(%#x) = %q, want %q", uint32(tt.id), got, tt.want)
		}
		if got := tt.id.String(); got != tt.want {
			t.Errorf("ID(%#x).String() = %q, want %q", uint32(tt.id), got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Run("bounds", func(t *testing.T) {
		for _, id := range []ID{MinID, MinID + 1, 0xFFFFFFFE, 0xFFFFFFFF} {
			got, err := Parse(Encode(id))
			if err != nil {
				t.Fatalf("Parse(Encode(%#x)): %v", uint32(id), err)
			}
			if got != id {
				t.Errorf("round trip %#x -> %#x", uint32(id), uint32(got))
			}
		}
	})

	t.Run("random values", func(t *testing.T) {
		r := rand.New(rand.NewPCG(1, 2))
		for i := 0; i < 10000; i++ {
			id := ID(r.Uint32())
			if id < MinID {
				continue
			}
			encoded := Encode(id)
			if len(encoded) != EncodedLen {
				t.Fatalf("Encode(%#x) has length %d", uint32(id), len(encoded))
			}
			got, err := Parse(encoded)
			if err != nil {
				t.Fatalf("Parse(%q): %v", encoded, err)
			}
			if got != id {
				t.Fatalf("round trip %#x -> %#x", uint32(id), uint32(got))
			}
		}
	})

	t.Run("lower case input", func(t *testing.T) {
		got, err := Parse("rqpsuqa")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if got != 0x8C1F2A40 {
			t.Errorf("got %#x", uint32(got))
		}
	})
}

func TestParseRejectsInvalidText(t *testing.T) {
	inputs := []string{
		"",
		"BAAAAA",    // too short
		"BAAAAAAA",  // too long
		"BAAAAA1",   // '1' is outside the alphabet
		"BAAAAAB",   // trailing bits set
		"BAAAAAA=",  // padding is not accepted
		"Chess Basics",
		"BAA AAAA",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			if !errors.Is(err, ErrInvalidEncoding) {
				t.Fatalf("Parse(%q) error = %v, want ErrInvalidEncoding", in, err)
			}
			var resErr *ResolutionError
			if !errors.As(err, &resErr) || resErr.Input != in {
				t.Errorf("expected ResolutionError carrying the input, got %#v", err)
			}
		})
	}
}

func TestTextMarshalling(t *testing.T) {
	id := ID(0x8C1F2A40)
	text, err := id.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "RQPSUQA" {
		t.Errorf("MarshalText = %q", text)
	}

	var back ID
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != id {
		t.Errorf("UnmarshalText = %#x", uint32(back))
	}

	if err := back.UnmarshalText([]byte("nope")); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("UnmarshalText(nope) = %v", err)
	}
}
