package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/DeprecatedLuar/veil/internal/config"
	"github.com/DeprecatedLuar/veil/internal/crypto"
)

func pipedStreams(input string) (Streams, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return Streams{In: strings.NewReader(input), Out: out, Err: errOut}, out, errOut
}

func writePasswordFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write password file: %v", err)
	}
	return path
}

func TestHandleRead(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		passwordFile string
		want         string
	}{
		{name: "piped input", input: "s3cret\n", want: "s3cret\n"},
		{name: "backspace applies to piped input", input: "s3x\x7fcret\n", want: "s3cret\n"},
		{name: "password file", passwordFile: "from-file\r\n", want: "from-file\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out, errOut := pipedStreams(tt.input)

			path := ""
			if tt.passwordFile != "" {
				path = writePasswordFile(t, tt.passwordFile)
			}

			if err := HandleRead(config.Default(), s, path); err != nil {
				t.Fatalf("HandleRead failed: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("stdout = %q, want %q", out.String(), tt.want)
			}
			if errOut.Len() != 0 {
				t.Errorf("stderr = %q, want nothing for non-interactive input", errOut.String())
			}
		})
	}
}

func TestHandleRead_CapacityFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Capacity = 4
	s, out, errOut := pipedStreams("abcdef\n")

	if err := HandleRead(cfg, s, ""); err != nil {
		t.Fatalf("HandleRead failed: %v", err)
	}
	if out.String() != "abc\n" {
		t.Errorf("stdout = %q, want %q", out.String(), "abc\n")
	}
	if !strings.Contains(errOut.String(), "Warning: input truncated after 3 characters") {
		t.Errorf("stderr = %q, want truncation warning", errOut.String())
	}
}

func TestReadPasswordFile_Errors(t *testing.T) {
	if _, err := readPasswordFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := readPasswordFile(writePasswordFile(t, "\n")); err == nil {
		t.Error("empty file should fail")
	}
}

func TestHandleHash_ThenVerify(t *testing.T) {
	s, out, _ := pipedStreams("hunter2\nhunter2\n")

	if err := HandleHash(config.Default(), s, ""); err != nil {
		t.Fatalf("HandleHash failed: %v", err)
	}
	encoded := strings.TrimSpace(out.String())
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash output: %q", encoded)
	}

	s, _, errOut := pipedStreams("hunter2\n")
	if err := HandleVerify(config.Default(), s, []string{encoded}, ""); err != nil {
		t.Fatalf("HandleVerify failed: %v", err)
	}
	if !strings.Contains(errOut.String(), "Password verified") {
		t.Errorf("stderr = %q", errOut.String())
	}

	s, _, _ = pipedStreams("hunter3\n")
	if err := HandleVerify(config.Default(), s, []string{encoded}, ""); !errors.Is(err, crypto.ErrMismatch) {
		t.Errorf("HandleVerify with wrong password = %v, want ErrMismatch", err)
	}

	path := writePasswordFile(t, "hunter2\n")
	s, _, _ = pipedStreams("")
	if err := HandleVerify(config.Default(), s, []string{encoded}, path); err != nil {
		t.Errorf("HandleVerify from file failed: %v", err)
	}
}

func TestHandleHash_Mismatch(t *testing.T) {
	s, out, _ := pipedStreams("hunter2\nhunter3\n")

	err := HandleHash(config.Default(), s, "")
	if err == nil || !strings.Contains(err.Error(), "passwords do not match") {
		t.Errorf("HandleHash = %v, want mismatch error", err)
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", out.String())
	}
}

func TestHandleVerify_Usage(t *testing.T) {
	s, _, _ := pipedStreams("pw\n")

	if err := HandleVerify(config.Default(), s, nil, ""); err == nil {
		t.Error("HandleVerify without a hash should fail")
	}
}

func TestHandleConfig(t *testing.T) {
	s, out, _ := pipedStreams("")

	if err := HandleConfig(config.Default(), s, "/etc/veil.toml"); err != nil {
		t.Fatalf("HandleConfig failed: %v", err)
	}

	if !strings.HasPrefix(out.String(), "# /etc/veil.toml\n") {
		t.Errorf("output should start with the path comment: %q", out.String())
	}

	var decoded config.Config
	if _, err := toml.Decode(out.String(), &decoded); err != nil {
		t.Fatalf("output is not valid TOML: %v", err)
	}
	if decoded.Mask != "*" || decoded.Capacity != 200 || decoded.EchoTo != config.EchoStderr {
		t.Errorf("decoded = %+v", decoded)
	}
}
