package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNebulaError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *NebulaError
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCapacityExceeded, CategoryMemory, "index arena is full"),
			want: "CAPACITY_EXCEEDED: index arena is full",
		},
		{
			name: "with cause",
			err:  Wrap(fmt.Errorf("disk full"), ErrSessionExportFailed, CategorySession, "cannot write transcript"),
			want: "SESSION_EXPORT_FAILED: cannot write transcript: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNebulaError_IsAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(cause, ErrConfigParseFailed, CategoryConfig, "bad yaml")
	wrapped := fmt.Errorf("loading: %w", err)

	if !stderrors.Is(wrapped, New(ErrConfigParseFailed, CategoryConfig, "")) {
		t.Error("expected errors.Is to match on code")
	}
	if stderrors.Is(wrapped, New(ErrConfigNotFound, CategoryConfig, "")) {
		t.Error("expected errors.Is to reject a different code")
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("expected errors.Is to reach the cause")
	}

	var ne *NebulaError
	if !stderrors.As(wrapped, &ne) {
		t.Fatal("expected errors.As to find NebulaError")
	}
	if ne.Category != CategoryConfig {
		t.Errorf("expected category %q, got %q", CategoryConfig, ne.Category)
	}
}

func TestIsCodeAndCategory(t *testing.T) {
	err := MemoryErrorf(ErrInvalidConfig, "capacity must be positive, got %d", -1)

	if !IsCode(err, ErrInvalidConfig) {
		t.Error("expected IsCode to match")
	}
	if !IsCategory(err, CategoryMemory) {
		t.Error("expected IsCategory to match")
	}
	if IsCode(fmt.Errorf("plain"), ErrInvalidConfig) {
		t.Error("plain errors never match a code")
	}
	if IsCode(nil, ErrInvalidConfig) {
		t.Error("nil never matches a code")
	}
}

func TestContextString_Sorted(t *testing.T) {
	err := New(ErrCapacityExceeded, CategoryMemory, "full").
		WithContext("word", "zebra").
		WithContext("capacity", "2")

	if got, want := err.ContextString(), `capacity="2", word="zebra"`; got != want {
		t.Errorf("ContextString() = %q, want %q", got, want)
	}
}

func TestFormatter_Plain(t *testing.T) {
	err := New(ErrConfigNotFound, CategoryConfig, "config file not found").
		WithContext("path", "/tmp/nebula.yaml").
		WithCause(fmt.Errorf("no such file")).
		WithSuggestions("Run 'nebula --init' to create one", "Or pass --config")

	out := Sprint(err)

	for _, want := range []string{
		"ERROR [CONFIG_NOT_FOUND]: config file not found",
		"  path: /tmp/nebula.yaml",
		"  cause: no such file",
		"  → Run 'nebula --init' to create one",
		"  → Or pass --config",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("plain output must not contain ANSI escapes")
	}
}

func TestFormatter_Color(t *testing.T) {
	f := &Formatter{UseColor: true, Indent: "  "}
	out := f.Format(New(ErrInvalidInput, CategoryValidation, "text is not valid UTF-8"))
	if !strings.Contains(out, colorRed) {
		t.Error("expected coloured header")
	}

	if got := f.Format(fmt.Errorf("boom")); !strings.HasSuffix(got, "boom") || !strings.Contains(got, "Error: ") {
		t.Errorf("unexpected standard error format: %q", got)
	}
	if f.Format(nil) != "" {
		t.Error("nil error formats to empty string")
	}
}
