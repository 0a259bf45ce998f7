package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/DeprecatedLuar/veil/internal/maskread"
	"github.com/DeprecatedLuar/veil/internal/termmode/termmodetest"
)

func TestPromptPasswordCustom_Interactive(t *testing.T) {
	term := termmodetest.New()
	before := term.State
	out := &bytes.Buffer{}

	p := NewPrompter(strings.NewReader("ab\x7fc\n"), out, Options{Mask: '*', Capacity: 10, Device: term})

	password, err := p.PromptPasswordCustom("Secret: ")
	if err != nil {
		t.Fatalf("PromptPasswordCustom failed: %v", err)
	}

	if password != "ac" {
		t.Errorf("password = %q, want %q", password, "ac")
	}
	if want := "Secret: **\b \b*\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if term.State != before {
		t.Errorf("terminal not restored: %+v", term.State)
	}
}

func TestPromptPasswordCustom_EchoSeparateFromPrompt(t *testing.T) {
	term := termmodetest.New()
	out := &bytes.Buffer{}
	echo := &bytes.Buffer{}

	p := NewPrompter(strings.NewReader("pw\n"), out, Options{Mask: '#', Device: term, Echo: echo})

	if _, err := p.PromptPassword(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "Password: \n" {
		t.Errorf("prompt output = %q", out.String())
	}
	if echo.String() != "##" {
		t.Errorf("echo output = %q", echo.String())
	}
}

func TestPromptPasswordCustom_Truncation(t *testing.T) {
	term := termmodetest.New()
	out := &bytes.Buffer{}

	p := NewPrompter(strings.NewReader("abcd\n"), out, Options{Mask: '*', Capacity: 3, Device: term})

	password, err := p.PromptPasswordCustom("P: ")
	if err != nil {
		t.Fatalf("truncation should not fail: %v", err)
	}
	if password != "ab" {
		t.Errorf("password = %q, want %q", password, "ab")
	}
	if !strings.Contains(out.String(), "Warning: input truncated after 2 characters") {
		t.Errorf("missing truncation warning in %q", out.String())
	}
	if strings.Contains(out.String(), "ab") {
		t.Errorf("output leaks the secret: %q", out.String())
	}
}

func TestPromptPasswordCustom_NonInteractive(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader("piped-secret\n"), out, Options{Mask: '*'})

	if p.Interactive() {
		t.Fatal("in-memory reader should not be interactive")
	}

	password, err := p.PromptPassword()
	if err != nil {
		t.Fatalf("PromptPassword failed: %v", err)
	}
	if password != "piped-secret" {
		t.Errorf("password = %q", password)
	}
	if out.Len() != 0 {
		t.Errorf("non-interactive prompt wrote %q", out.String())
	}
}

func TestPromptPasswordCustom_TerminalFailure(t *testing.T) {
	term := &termmodetest.Terminal{FailGet: true}
	p := NewPrompter(strings.NewReader("pw\n"), &bytes.Buffer{}, Options{Mask: '*', Device: term})

	if _, err := p.PromptPassword(); err == nil {
		t.Error("PromptPassword should fail when raw mode cannot be entered")
	}
}

func TestPromptPasswordCustom_Native(t *testing.T) {
	term := termmodetest.New()
	before := term.State
	out := &bytes.Buffer{}

	p := NewPrompter(strings.NewReader("native pw\r\n"), out, Options{Native: true, Device: term})

	password, err := p.PromptPassword()
	if err != nil {
		t.Fatalf("PromptPassword failed: %v", err)
	}
	if password != "native pw" {
		t.Errorf("password = %q", password)
	}

	// Echo off, canonical left on, then restored
	if len(term.History) != 2 {
		t.Fatalf("applied %d attribute sets, want 2", len(term.History))
	}
	if term.History[0].Echo || !term.History[0].Canonical {
		t.Errorf("native mode state = %+v, want echo off and canonical on", term.History[0])
	}
	if term.State != before {
		t.Errorf("terminal not restored: %+v", term.State)
	}
	if out.String() != "Password: \n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestPromptPasswordCustom_NativeIgnoresTerminalFailure(t *testing.T) {
	term := &termmodetest.Terminal{FailGet: true}
	p := NewPrompter(strings.NewReader("pw\n"), &bytes.Buffer{}, Options{Native: true, Device: term})

	password, err := p.PromptPassword()
	if err != nil {
		t.Fatalf("native prompt should not fail on terminal errors: %v", err)
	}
	if password != "pw" {
		t.Errorf("password = %q", password)
	}
}

func TestPromptPasswordWithConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "matching", input: "hunter2\nhunter2\n", want: "hunter2"},
		{name: "mismatch", input: "hunter2\nhunter3\n", wantErr: "passwords do not match"},
		{name: "empty", input: "\n\n", wantErr: "password cannot be empty"},
		{name: "missing confirmation", input: "hunter2\n", wantErr: "passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrompter(strings.NewReader(tt.input), &bytes.Buffer{}, Options{Mask: '*'})

			got, err := p.PromptPasswordWithConfirmation()
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Errorf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("password = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewPrompter_Defaults(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), &bytes.Buffer{}, Options{})

	if p.opts.Capacity != maskread.MaxCapacity {
		t.Errorf("capacity = %d, want %d", p.opts.Capacity, maskread.MaxCapacity)
	}
	if p.reader.Echo == nil {
		t.Error("echo should default to the prompt output")
	}
}

func TestPromptPasswordCustom_NativeTruncation(t *testing.T) {
	term := termmodetest.New()
	out := &bytes.Buffer{}
	in := strings.NewReader("abcd\nnext\n")

	p := NewPrompter(in, out, Options{Native: true, Capacity: 3, Device: term})

	password, err := p.PromptPassword()
	if err != nil {
		t.Fatalf("PromptPassword failed: %v", err)
	}
	if password != "ab" {
		t.Errorf("password = %q, want %q", password, "ab")
	}
	if !strings.Contains(out.String(), "Warning: input truncated after 2 characters") {
		t.Errorf("missing truncation warning in %q", out.String())
	}
	if in.Len() != len("next\n") {
		t.Errorf("rest of the line not drained, %d bytes left", in.Len())
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		input         string
		limit         int
		want          string
		wantTruncated bool
	}{
		{input: "abc\nrest", limit: 10, want: "abc"},
		{input: "abc", limit: 10, want: "abc"},
		{input: "abc\r\n", limit: 10, want: "abc"},
		{input: "", limit: 10, want: ""},
		{input: "\n", limit: 10, want: ""},
		{input: "abc\r\n", limit: 3, want: "abc"},
		{input: "abc\n", limit: 3, want: "abc"},
		{input: "abcd\n", limit: 2, want: "ab", wantTruncated: true},
		{input: "abcd", limit: 3, want: "abc", wantTruncated: true},
		{input: "abcd\r\n", limit: 3, want: "abc", wantTruncated: true},
		{input: "x\n", limit: 0, want: "", wantTruncated: true},
	}

	for _, tt := range tests {
		in := strings.NewReader(tt.input)
		got, truncated, err := readLine(in, tt.limit)
		if err != nil {
			t.Fatalf("readLine(%q) failed: %v", tt.input, err)
		}
		if string(got) != tt.want {
			t.Errorf("readLine(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
		}
		if truncated != tt.wantTruncated {
			t.Errorf("readLine(%q, %d) truncated = %v, want %v", tt.input, tt.limit, truncated, tt.wantTruncated)
		}
	}

	// Nothing past the newline is consumed, even when the line overflows
	for _, limit := range []int{maskread.MaxCapacity - 1, 2} {
		in := strings.NewReader("first\nsecond\n")
		_, _, _ = readLine(in, limit)
		if in.Len() != len("second\n") {
			t.Errorf("limit %d: readLine consumed past the newline, %d bytes left", limit, in.Len())
		}
	}
}
