package config

import "os"

// Debug switches logging to level debug. Set DEBUG=true in the environment
// during local development.
var Debug = os.Getenv("DEBUG") == "true"

var Argon2id = struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLen     uint32
	SaltLength uint32
}{
	Time:       3,
	Memory:     1024 * 64,
	Threads:    1,
	KeyLen:     32,
	SaltLength: 16,
}
