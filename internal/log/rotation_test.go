package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingFile_WriteAndRotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	rf, err := NewRotatingFile(path, 64, 2)
	if err != nil {
		t.Fatalf("NewRotatingFile: %v", err)
	}
	defer rf.Close()

	line := bytes.Repeat([]byte("x"), 40)
	for i := 0; i < 4; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("current log missing: %v", err)
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("rotated log missing: %v", err)
	}
}

func TestRotatingFile_KeepsBackupLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	rf, err := NewRotatingFile(path, 8, 1)
	if err != nil {
		t.Fatalf("NewRotatingFile: %v", err)
	}
	defer rf.Close()

	for i := 0; i < 6; i++ {
		if _, err := rf.Write([]byte("0123456789")); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	if _, err := os.Stat(path + ".2"); err == nil {
		t.Error("backup beyond the limit exists")
	}
}

func TestRotatingFile_CloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rf, err := NewRotatingFile(path, 1024, 1)
	if err != nil {
		t.Fatalf("NewRotatingFile: %v", err)
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rf.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
