package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"README.md":      FormatMarkdown,
		"notes.MARKDOWN": FormatMarkdown,
		"page.mdx":       FormatMarkdown,
		"policy.txt":     FormatText,
		"Makefile":       FormatText,
	}
	for name, want := range tests {
		if got := DetectFormat(name); got != want {
			t.Errorf("DetectFormat(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestConvert_Markdown(t *testing.T) {
	src := "# Refund policy\n\n" +
		"Refunds are issued within **14 days** of [purchase](https://example.com).\n\n" +
		"- first item\n- second item\n\n" +
		"```go\nfmt.Println(\"hi\")\n```\n\n" +
		"<div>ignored</div>\n\n" +
		"| a | b |\n|---|---|\n| 1 | 2 |\n"

	got, err := Convert(FormatMarkdown, []byte(src))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	for _, want := range []string{
		"Refund policy\n\n",
		"Refunds are issued within 14 days of purchase.",
		"first item\nsecond item",
		"fmt.Println(\"hi\")\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
	if flat := strings.Join(strings.Fields(got), " "); !strings.Contains(flat, "a | b 1 | 2") {
		t.Errorf("table rows not flattened: %q", flat)
	}
	for _, unwanted := range []string{"#", "**", "](", "```", "<div>", "|---"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("markup %q leaked into output:\n%s", unwanted, got)
		}
	}
}

func TestConvert_EmptyMarkdown(t *testing.T) {
	got, err := Convert(FormatMarkdown, []byte("<!-- only a comment -->\n"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestConvert_TextNormalizesLineEndings(t *testing.T) {
	got, err := Convert(FormatText, []byte("\xef\xbb\xbfline one\r\nline two\r\n"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != "line one\nline two\n" {
		t.Errorf("got %q", got)
	}
}

func TestConvert_RejectsBinary(t *testing.T) {
	_, err := Convert(FormatText, []byte{0xff, 0xfe, 0x00, 0x81})
	if !errors.Is(err, ErrNotText) {
		t.Fatalf("expected ErrNotText, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	if err := os.WriteFile(path, []byte("## Setup\n\nRun the *installer*.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got != "Setup\n\nRun the installer.\n" {
		t.Errorf("got %q", got)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
