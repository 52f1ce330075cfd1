package feed

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestBadRequestError(t *testing.T) {
	var req Request
	jsonErr := json.Unmarshal([]byte("{not json"), &req)
	if jsonErr == nil {
		t.Fatal("expected a JSON syntax error")
	}

	var err error = &badRequestError{err: jsonErr}

	var bad *badRequestError
	if !errors.As(err, &bad) {
		t.Fatal("errors.As should find *badRequestError")
	}
	var syntax *json.SyntaxError
	if !errors.As(err, &syntax) {
		t.Error("badRequestError should unwrap to the JSON error")
	}
	if !strings.HasPrefix(err.Error(), "bad request: ") {
		t.Errorf("Error() = %q, want bad request prefix", err)
	}
}
