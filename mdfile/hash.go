package mdfile

import (
	"crypto/md5"
	"fmt"
)

// Hash computes the MD5 hex digest of a page body. It is recorded in the
// sourceHash front matter field of generated translations.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}
