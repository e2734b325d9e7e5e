package cache_test

import (
	"strings"
	"testing"

	"github.com/Strob0t/AgentForge/internal/port/cache"
	"github.com/Strob0t/AgentForge/internal/port/cache/cachetest"
)

func TestKey(t *testing.T) {
	a := cache.Key("codegen", "ab", "c")
	b := cache.Key("codegen", "a", "bc")
	if a == b {
		t.Fatal("length-prefixing should separate part boundaries")
	}
	if a != cache.Key("codegen", "ab", "c") {
		t.Fatal("Key should be deterministic")
	}
	if !strings.HasPrefix(a, "codegen.") {
		t.Fatalf("missing namespace prefix: %s", a)
	}
	if len(a) != len("codegen.")+64 {
		t.Fatalf("unexpected key length %d", len(a))
	}
}

func TestMemoryCompliance(t *testing.T) {
	cachetest.RunComplianceTests(t, cachetest.NewMemory())
}
