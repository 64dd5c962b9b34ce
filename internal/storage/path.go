package storage

import (
	"path"
	"strings"
)

// CharacterImageKey builds the store key for a character image upload.
// Layout: characters/<accountID>/<filename>. The filename is sanitized
// so a crafted name cannot escape the account's prefix.
func CharacterImageKey(accountID, filename string) string {
	return "characters/" + accountID + "/" + sanitizeFilename(filename)
}

// sanitizeFilename strips directory components and path traversal from
// an uploaded filename.
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = path.Base(path.Clean("/" + filename))
	if filename == "/" || filename == "." || filename == "" {
		return "upload"
	}
	return filename
}
