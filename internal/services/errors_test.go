package services

import (
	"errors"
	"strings"
	"testing"
)

func TestStorageError_WrapsAndUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := storagef("invite create", cause)

	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StorageError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("unwrap chain should reach the cause")
	}
	if !strings.Contains(err.Error(), "invite create") {
		t.Fatalf("message should carry the op: %q", err.Error())
	}
}

func TestStoragef_NilPassthrough(t *testing.T) {
	if err := storagef("noop", nil); err != nil {
		t.Fatalf("nil cause must stay nil, got %v", err)
	}
}

func TestGatewayError_WrapsAndUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := &GatewayError{Op: "membership check", Err: cause}

	if !errors.Is(err, cause) {
		t.Fatal("unwrap chain should reach the cause")
	}
	if !strings.Contains(err.Error(), "membership check") {
		t.Fatalf("message should carry the op: %q", err.Error())
	}
}
