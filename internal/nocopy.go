package internal

// NoCopy is embedded (as a named field) in structs holding a running digest or
// shard locks. `go vet -copylocks` reports any copy of such a struct after first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527.
//
// It must be a named field rather than embedded, otherwise Lock and Unlock leak
// into the public method set.
type NoCopy struct{}

// Lock is only seen by the copylocks checker.
func (*NoCopy) Lock() {}

// Unlock is only seen by the copylocks checker.
func (*NoCopy) Unlock() {}
