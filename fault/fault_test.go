package fault

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestStageError_Is(t *testing.T) {
	err := New(ErrParse, StageLoad, "input.csv", errors.New("bad csv"))

	if !errors.Is(err, ErrParse) {
		t.Error("errors.Is(err, ErrParse) = false, want true")
	}
	if errors.Is(err, ErrInputNotFound) {
		t.Error("errors.Is(err, ErrInputNotFound) = true, want false")
	}
}

func TestStageError_Unwrap(t *testing.T) {
	inner := errors.New("underlying")
	err := New(ErrComputation, StageCompute, "", inner)

	if !errors.Is(err, inner) {
		t.Error("wrapped error should match underlying via errors.Is")
	}
}

func TestStageError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *StageError
		want []string
	}{
		{
			name: "with path",
			err:  New(ErrInputNotFound, StageLoad, "/data/in.csv", errors.New("no such file")),
			want: []string{"load", "/data/in.csv", "input not found", "no such file"},
		},
		{
			name: "without path",
			err:  New(ErrComputation, StageCompute, "", errors.New("window exceeds rows")),
			want: []string{"compute", "computation error", "window exceeds rows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, part := range tt.want {
				if !strings.Contains(msg, part) {
					t.Errorf("Error() = %q, missing %q", msg, part)
				}
			}
		})
	}
}

func TestWrapRead(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind error
	}{
		{
			name:     "not exist becomes input not found",
			err:      fmt.Errorf("open: %w", fs.ErrNotExist),
			wantKind: ErrInputNotFound,
		},
		{
			name:     "other read error becomes parse",
			err:      errors.New("permission denied"),
			wantKind: ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapRead(tt.err, "input.csv")
			if !errors.Is(wrapped, tt.wantKind) {
				t.Errorf("WrapRead kind = %v, want %v", wrapped, tt.wantKind)
			}
			if Stage(wrapped) != StageLoad {
				t.Errorf("Stage = %q, want %q", Stage(wrapped), StageLoad)
			}
		})
	}
}

func TestWrapRead_Nil(t *testing.T) {
	if WrapRead(nil, "x") != nil {
		t.Error("WrapRead(nil) should return nil")
	}
}

func TestStage_Unclassified(t *testing.T) {
	if got := Stage(errors.New("plain")); got != "" {
		t.Errorf("Stage(plain error) = %q, want empty", got)
	}
	if got := Stage(nil); got != "" {
		t.Errorf("Stage(nil) = %q, want empty", got)
	}
}

func TestStage_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrOutputWrite, StageReport, "out.json", errors.New("disk full")))
	if got := Stage(err); got != StageReport {
		t.Errorf("Stage = %q, want %q", got, StageReport)
	}
}
