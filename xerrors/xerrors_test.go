package xerrors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	base := New("boom")
	wrapped := Wrap(base, "doing thing")

	if wrapped.Error() != "doing thing: boom" {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
	if !Is(wrapped, base) {
		t.Error("wrapped error should match base via Is")
	}
	if Wrap(nil, "noop") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapf(t *testing.T) {
	base := New("boom")
	wrapped := Wrapf(base, "attempt %d", 3)

	if wrapped.Error() != "attempt 3: boom" {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
	if Wrapf(nil, "noop %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestCodedError(t *testing.T) {
	base := New("bad capacity")
	coded := WithCode(base, CodeConfig)

	if GetCode(coded) != CodeConfig {
		t.Errorf("expected code %q, got %q", CodeConfig, GetCode(coded))
	}
	if !Is(coded, base) {
		t.Error("coded error should unwrap to base")
	}

	var ce *CodedError
	if !As(coded, &ce) {
		t.Fatal("As should extract CodedError")
	}
	if ce.Code != CodeConfig {
		t.Errorf("unexpected code: %s", ce.Code)
	}
}

func TestConfig(t *testing.T) {
	err := Config("max_size %d < min_size %d", 1, 5)
	if !IsConfig(err) {
		t.Error("Config error should be detected by IsConfig")
	}
	if GetCode(err) == "" {
		t.Error("Config error should carry a code")
	}
}

func TestGetCodeWithoutCode(t *testing.T) {
	if GetCode(New("plain")) != "" {
		t.Error("plain error should have empty code")
	}
	if IsConfig(errors.New("plain")) {
		t.Error("plain error should not be a config error")
	}
}

func TestCombine(t *testing.T) {
	e1 := New("first")
	e2 := New("second")

	if Combine() != nil {
		t.Error("Combine with no errors should return nil")
	}
	if Combine(nil, nil) != nil {
		t.Error("Combine with only nils should return nil")
	}
	if Combine(nil, e1) != e1 {
		t.Error("Combine with a single error should return it unchanged")
	}

	combined := Combine(e1, e2)
	if !Is(combined, e1) || !Is(combined, e2) {
		t.Error("combined error should match both members via Is")
	}

	var multi *MultiError
	if !As(combined, &multi) {
		t.Fatal("As should extract MultiError")
	}
	if len(multi.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(multi.Errors))
	}
}
