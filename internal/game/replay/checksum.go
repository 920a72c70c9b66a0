package replay

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Checksum identifies an event stream.
type Checksum struct {
	Hash    string
	Version int
}

// Compute hashes the canonical form of a battle's event stream. Format
// and seed are part of the input so two formats that happen to log the
// same lines still differ.
func Compute(format string, seed uint64, log []string) Checksum {
	hash := sha256.Sum256([]byte(canonical(format, seed, log)))
	return Checksum{
		Hash:    hex.EncodeToString(hash[:]),
		Version: Version,
	}
}

// Equal reports whether c and other describe the same stream.
func (c Checksum) Equal(other Checksum) bool {
	return c.Version == other.Version && c.Hash == other.Hash
}

func (c Checksum) String() string {
	if len(c.Hash) < 12 {
		return c.Hash
	}
	return fmt.Sprintf("v%d:%s", c.Version, c.Hash[:12])
}

func canonical(format string, seed uint64, log []string) string {
	var buf strings.Builder
	buf.WriteString("FORMAT:")
	buf.WriteString(format)
	buf.WriteString("\nSEED:")
	buf.WriteString(strconv.FormatUint(seed, 10))
	buf.WriteString("\n")
	for _, line := range log {
		buf.WriteString("LOG:")
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	return buf.String()
}
