// Package bpfobjs holds the generated-style loaders for the three BPF
// object files under bpf/. In a normal cilium/ebpf checkout these files
// (tasksampler_bpfel.go, sctracker_bpfel.go, iorqtracker_bpfel.go, and their
// companion *_bpfel.o blobs) are produced by running
//
//	go run github.com/cilium/ebpf/cmd/bpf2go -target bpfel ...
//
// against the sources in bpf/, and committed as generated output alongside
// the hand-written program. That generator invocation is part of the build
// step SPEC_FULL.md §3 leaves out of scope, so the files here are written
// by hand in the exact shape bpf2go emits: a CollectionSpec loader built
// from an embedded ELF blob, plus Maps/Programs/Objects structs with
// `ebpf:"..."` struct tags matching the map and program names in the
// corresponding bpf/*.bpf.c file. The embedded *_bpfel.o files are
// placeholders, not compiled bytecode — this package is never loaded by a
// running process in this exercise.
package bpfobjs
