// Package digest computes the short, non-cryptographic task identifier
// used to name checkpoint and workflow-metadata files.
package digest

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Task hashes s with xxhash and renders the lower 32 bits of the sum as
// hex, unpadded, matching the original implementation's behavior.
func Task(s string) string {
	sum := xxhash.Sum64String(s)
	return fmt.Sprintf("%x", sum&0xFFFFFFFF)
}
