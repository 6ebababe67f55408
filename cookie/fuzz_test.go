package cookie

import (
	"errors"
	"testing"
)

func FuzzDeserialize(f *testing.F) {
	f.Add("")
	f.Add("e30")
	f.Add("not base64!")
	if raw, err := Serialize(map[string]string{"socialId": "g-1"}); err == nil {
		f.Add(raw)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		var out map[string]any
		if err := Deserialize(raw, &out); err != nil && !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("unexpected error type for %q: %v", raw, err)
		}
	})
}
