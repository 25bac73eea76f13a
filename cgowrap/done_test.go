package cgowrap

import (
	"strings"
	"testing"
)

func TestReadDone(t *testing.T) {
	const src = `# hand-written
func DoMath(int32, int32) int32

func Greet(string)
`
	done, err := ReadDone(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadDone: %v", err)
	}
	if len(done) != 2 {
		t.Fatalf("got %d signatures, want 2: %v", len(done), done)
	}
	if _, ok := done["func Greet(string)"]; !ok {
		t.Errorf("missing Greet signature: %v", done)
	}
}

func TestEmitSkipsDone(t *testing.T) {
	done := map[string]struct{}{
		"func DoMath(int32, int32) int32": {},
		"func Greet(string)":              {},
	}
	got := Emit(sampleModel(), Options{Done: done})
	for _, s := range []string{"func DoMath(", "func Greet("} {
		if strings.Contains(got, s) {
			t.Errorf("done function %s was emitted:\n%s", s, got)
		}
	}
	for _, s := range []string{"func Scale(p *Point, f float32) {", "func Buf() *int8 {", `import "unsafe"`} {
		if !strings.Contains(got, s) {
			t.Errorf("output missing %q:\n%s", s, got)
		}
	}
}
