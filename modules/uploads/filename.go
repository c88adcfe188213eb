package uploads

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// allowedExtensions maps each accepted image extension to its content type.
var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ValidateImageName checks the client supplied filename of an upload.
func ValidateImageName(filename string) error {
	if filename == "" {
		return ErrNoSelectedFile
	}
	if _, ok := allowedExtensions[extension(filename)]; !ok {
		return ErrInvalidFileType
	}
	return nil
}

// ContentTypeFor returns the content type for an allowed image name, or
// application/octet-stream.
func ContentTypeFor(filename string) string {
	if ct, ok := allowedExtensions[extension(filename)]; ok {
		return ct
	}
	return defaultContentType
}

// SecureFilename reduces filename to ASCII letters, digits, '.', '_' and '-'.
// Accented letters are folded to their base letter, directory components are
// dropped and whitespace becomes '_'. A name that sanitizes to nothing falls
// back to "image". The lowercased extension is kept.
func SecureFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	ext := extension(filename)
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))

	base = strings.Join(strings.Fields(norm.NFKD.String(base)), "_")
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	clean := strings.Trim(b.String(), "._")
	if clean == "" {
		clean = "image"
	}
	return clean + ext
}

func extension(filename string) string {
	return strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
}
