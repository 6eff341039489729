package patch

import (
	"strings"
	"testing"
)

const sampleDiff = `--- a/internal/server/server.go
+++ b/internal/server/server.go
@@ -10,7 +10,7 @@
 func main() {
-	old line
+	new line
 }
--- a/cmd/app/main.go
+++ b/cmd/app/main.go
@@ -1,3 +1,4 @@
 package main
+import "fmt"
`

func TestInspect(t *testing.T) {
	s, err := Inspect(sampleDiff)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Files) != 2 {
		t.Fatalf("files = %v, want 2 entries", s.Files)
	}
	if s.Files[0] != "internal/server/server.go" {
		t.Errorf("first file = %s", s.Files[0])
	}
	if s.TotalChanged != 3 {
		t.Errorf("total changed = %d, want 3", s.TotalChanged)
	}
	if s.LinesPerFile["cmd/app/main.go"] != 1 {
		t.Errorf("per-file count = %d, want 1", s.LinesPerFile["cmd/app/main.go"])
	}
}

func TestInspectRejectsEmpty(t *testing.T) {
	if _, err := Inspect("   \n"); err == nil {
		t.Error("expected error for empty diff")
	}
	if _, err := Inspect("just prose, no headers"); err == nil {
		t.Error("expected error for diff naming no files")
	}
}

func TestCheckPath(t *testing.T) {
	tests := []struct {
		path   string
		wantOK bool
	}{
		{"internal/server/server.go", true},
		{"cmd/app/main.go", true},
		{".env", false},
		{".env.production", false},
		{"go.sum", false},
		{"/etc/passwd", false},
		{"../outside.go", false},
		{"vendor/dep/dep.go", false},
	}
	for _, tt := range tests {
		err := CheckPath(tt.path)
		if tt.wantOK && err != nil {
			t.Errorf("CheckPath(%q) = %v, want nil", tt.path, err)
		}
		if !tt.wantOK && err == nil {
			t.Errorf("CheckPath(%q) = nil, want error", tt.path)
		}
	}
}

func TestCheckWalksAllFiles(t *testing.T) {
	diff := strings.Replace(sampleDiff, "cmd/app/main.go", ".env", -1)
	if err := Check(diff); err == nil {
		t.Error("expected rejection of diff touching .env")
	}
	if err := Check(sampleDiff); err != nil {
		t.Errorf("clean diff rejected: %v", err)
	}
}
