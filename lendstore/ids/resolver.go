package ids

// Class tags which mapping an identifier lives in.
type Class int

const (
	ClassBook Class = iota + 1
	ClassUser
	ClassCheckout
)

func (c Class) String() string {
	switch c {
	case ClassBook:
		return "book"
	case ClassUser:
		return "user"
	case ClassCheckout:
		return "checkout"
	default:
		return "unknown"
	}
}

// Classifier reports which class currently holds an identifier.
type Classifier interface {
	Classify(id ID) (Class, bool)
}

// ClassifierFunc adapts a plain function to Classifier. The store uses it to classify while
// already holding its own lock.
type ClassifierFunc func(id ID) (Class, bool)

// Classify implements Classifier
func (f ClassifierFunc) Classify(id ID) (Class, bool) { return f(id) }

// Decode parses text and asks c which class holds the result.
func Decode(text string, c Classifier) (ID, Class, error) {
	id, err := Parse(text)
	if err != nil {
		return 0, 0, err
	}
	class, ok := c.Classify(id)
	if !ok {
		return 0, 0, &ResolutionError{Input: text, WrappedError: ErrNotFound}
	}
	return id, class, nil
}

// Expect decodes text and requires the identifier to belong to want.
func Expect(text string, c Classifier, want Class) (ID, error) {
	id, got, err := Decode(text, c)
	if err != nil {
		return 0, err
	}
	if got != want {
		return 0, &MismatchError{Input: text, Want: want, Got: got}
	}
	return id, nil
}
