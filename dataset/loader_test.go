package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSample(t *testing.T) {
	frame, err := Load(filepath.Join("testdata", "student-sample.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Len() != 16 {
		t.Fatalf("expected 16 rows, got %d", frame.Len())
	}
	if len(frame.Columns) != len(Columns) {
		t.Fatalf("expected %d columns, got %d", len(Columns), len(frame.Columns))
	}
	row := frame.Row(0)
	if row.Cats["school"] != "GP" {
		t.Fatalf("unexpected school: %q", row.Cats["school"])
	}
	if row.Nums["G3"] != 11 {
		t.Fatalf("unexpected G3: %g", row.Nums["G3"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "does-not-exist.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMissingTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "school;sex;age\nGP;F;17\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing target column")
	}
}

func TestLoadRejectsBadNumber(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "student-sample.csv"))
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	lines := string(src)
	path := filepath.Join(t.TempDir(), "corrupt.csv")
	corrupt := lines + "GP;F;seventeen;U;GT3;T;1;1;at_home;other;course;mother;1;2;0;no;no;no;no;yes;yes;no;no;4;3;3;1;1;3;2;9;11;11\n"
	if err := os.WriteFile(path, []byte(corrupt), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-numeric age")
	}
}

func TestSplitTarget(t *testing.T) {
	frame, err := Load(filepath.Join("testdata", "student-sample.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	features, y, err := frame.SplitTarget(TargetColumn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(y) != frame.Len() {
		t.Fatalf("expected %d targets, got %d", frame.Len(), len(y))
	}
	if len(features.Columns) != len(Columns)-1 {
		t.Fatalf("expected %d feature columns, got %d", len(Columns)-1, len(features.Columns))
	}
	for _, col := range features.Columns {
		if col == TargetColumn {
			t.Fatal("target column leaked into features")
		}
	}
}
