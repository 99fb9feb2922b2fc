// Package checksum derives stable content-addressed names for rendered assets.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Short8 returns the first 8 hex characters of the MD5 digest of text.
// Collision resistance is not security-critical here; the hash only keys
// rendered output filenames.
func Short8(text string) string {
	h := md5.Sum([]byte(text))
	return hex.EncodeToString(h[:])[:8]
}

// AssetName builds the output filename for a rendered diagram:
// {name}-{hash}.png, with unsafe characters in name replaced by underscores.
func AssetName(name, hash string) string {
	name = safeNameRe.ReplaceAllString(strings.TrimSpace(name), "_")
	if name == "" {
		name = "diagram"
	}
	return name + "-" + hash + ".png"
}
