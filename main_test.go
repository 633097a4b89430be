package main

import (
	"flag"
	"testing"
)

func TestGUIFlagRegistered(t *testing.T) {
	f := flag.Lookup("gui")
	if f == nil {
		t.Fatal("gui flag not registered; flag.Parse rejects -gui")
	}
	if f.DefValue != "false" {
		t.Errorf("gui flag default = %q, want false", f.DefValue)
	}
}
