package keyring

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestConnectionStringRoundTrip(t *testing.T) {
	keyring.MockInit()

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() on empty keyring = %v, want ErrNotFound", err)
	}

	connStr := "postgres://alice@localhost:5432/daybook"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() error: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() error: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}

	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() error: %v", err)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConnectionString() = %v, want ErrNotFound", err)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	keyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should fail")
	}
}

func TestIsAvailable(t *testing.T) {
	keyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false with the mock keyring")
	}
}
