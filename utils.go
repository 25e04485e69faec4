package jumpch

// assertValue panics with the given message if the condition is false.
// A failed assertion is a caller bug: zero slots, unsupported key type...
func assertValue(ok bool, msg string) {
	if !ok {
		panic(msg)
	}
}
