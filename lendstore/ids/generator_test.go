package ids

import (
	"errors"
	"testing"
)

// scripted returns a Source that replays values and then repeats the last one.
func scripted(values ...uint32) Source {
	i := 0
	return func() uint32 {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func TestMintSkipsLowValues(t *testing.T) {
	gen := NewGenerator(scripted(0, 1, uint32(MinID)-1, uint32(MinID)))
	if got := gen.Mint(nil); got != MinID {
		t.Fatalf("Mint = %#x, want %#x", uint32(got), uint32(MinID))
	}
}

func TestMintSkipsTakenValues(t *testing.T) {
	taken := map[ID]bool{0x90000000: true, 0x90000001: true}
	gen := NewGenerator(scripted(0x90000000, 0x90000001, 0x90000000, 0x90000002))

	got := gen.Mint(func(id ID) bool { return taken[id] })
	if got != 0x90000002 {
		t.Fatalf("Mint = %#x, want 0x90000002", uint32(got))
	}
}

func TestMintNeverRepeatsLiveValues(t *testing.T) {
	gen := NewGenerator(nil)
	live := make(map[ID]bool)
	for i := 0; i < 5000; i++ {
		id := gen.Mint(func(id ID) bool { return live[id] })
		if id < MinID {
			t.Fatalf("minted %#x below MinID", uint32(id))
		}
		if live[id] {
			t.Fatalf("minted live id %s twice", id)
		}
		live[id] = true
	}
}

type mapClassifier map[ID]Class

func (m mapClassifier) Classify(id ID) (Class, bool) {
	c, ok := m[id]
	return c, ok
}

func TestDecodeAndExpect(t *testing.T) {
	book, user, checkout := ID(0x90000000), ID(0xA0000000), ID(0xB0000000)
	classifier := mapClassifier{book: ClassBook, user: ClassUser, checkout: ClassCheckout}

	t.Run("decode tags the class", func(t *testing.T) {
		for id, want := range classifier {
			gotID, gotClass, err := Decode(id.String(), classifier)
			if err != nil {
				t.Fatalf("Decode(%s): %v", id, err)
			}
			if gotID != id || gotClass != want {
				t.Errorf("Decode(%s) = (%s, %s), want (%s, %s)", id, gotID, gotClass, id, want)
			}
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, _, err := Decode(ID(0xC0000000).String(), classifier)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("invalid text", func(t *testing.T) {
		_, _, err := Decode("not-an-id", classifier)
		if !errors.Is(err, ErrInvalidEncoding) {
			t.Fatalf("err = %v, want ErrInvalidEncoding", err)
		}
	})

	t.Run("wrong class is a mismatch", func(t *testing.T) {
		_, err := Expect(user.String(), classifier, ClassBook)
		var mismatch *MismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("err = %v, want MismatchError", err)
		}
		if mismatch.Want != ClassBook || mismatch.Got != ClassUser {
			t.Errorf("mismatch = %+v", mismatch)
		}
		if !errors.Is(err, ErrMismatch) {
			t.Error("MismatchError should match ErrMismatch")
		}
		if errors.Is(err, ErrNotFound) {
			t.Error("a mismatch must not read as not found")
		}
	})

	t.Run("right class", func(t *testing.T) {
		got, err := Expect(checkout.String(), ClassifierFunc(classifier.Classify), ClassCheckout)
		if err != nil || got != checkout {
			t.Fatalf("Expect = (%s, %v)", got, err)
		}
	})
}
