// Package benchmarks compares the replay decoding runtime with the
// MessagePack (tinylib/msgp) and CBOR (fxamacker/cbor) runtimes on
// equivalent integer, blob and struct workloads. It holds only benchmarks.
package benchmarks
