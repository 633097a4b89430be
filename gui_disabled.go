//go:build !gui

package main

func initGUI() {
	panic("murmur: built without GUI support (rebuild with -tags gui)")
}
