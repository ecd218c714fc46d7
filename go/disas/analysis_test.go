package disas

import (
	"testing"

	"github.com/lunixbochs/readbin/go/loader/loadertest"
)

func TestCountsRanked(t *testing.T) {
	c := Counts{"mov": 3, "r10": 1, "r9": 1, "call": 3, "nop": 5}
	got := c.Ranked()
	want := []string{"nop", "call", "mov", "r9", "r10"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("ranked %v, want order %v", got, want)
		}
	}
}

func TestAnalyze(t *testing.T) {
	l := testImage(t,
		loadertest.Func("main", 0x401000, 9),
		loadertest.Func("tail", 0x401009, 2),
		loadertest.Func("empty", 0x401000, 0),
		loadertest.Func("far", 0x900000, 4),
	)
	r, err := Analyze(l, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Functions) != 2 || len(r.Skipped) != 2 {
		t.Fatalf("analyzed %d, skipped %d", len(r.Functions), len(r.Skipped))
	}
	for _, fn := range r.Skipped {
		if fn.Err == nil {
			t.Fatalf("skipped %s without an error", fn.Name)
		}
	}
	main := r.Functions[0]
	if main.Function.Name != "main" || main.Counts["call"] != 1 || main.Counts["pop"] != 0 {
		t.Fatalf("main = %+v", main.Counts)
	}
	if len(main.Calls) != 1 || main.Calls[0].Name != "tail" || main.Calls[0].Target != 0x401009 {
		t.Fatalf("calls = %+v", main.Calls)
	}
	if r.Overall["pop"] != 1 || r.Overall["ret"] != 1 || r.Overall["push"] != 1 {
		t.Fatalf("overall = %v", r.Overall)
	}
	if ranked := r.Overall.Ranked(); len(ranked) != 5 || ranked[0].Name != "call" {
		t.Fatalf("ranked = %v", ranked)
	}
}

func TestAnalyzeUnnamedCall(t *testing.T) {
	l := testImage(t, loadertest.Func("main", 0x401000, 9))
	r, err := Analyze(l, Options{Bits: 64})
	if err != nil {
		t.Fatal(err)
	}
	if calls := r.Functions[0].Calls; len(calls) != 1 || calls[0].Name != "0x401009" {
		t.Fatalf("calls = %+v", calls)
	}
}
