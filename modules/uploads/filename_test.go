package uploads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateImageName(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantErr  error
	}{
		{name: "png", filename: "cat.png"},
		{name: "uppercase jpeg", filename: "CAT.JPEG"},
		{name: "webp", filename: "anim.webp"},
		{name: "empty", filename: "", wantErr: ErrNoSelectedFile},
		{name: "no extension", filename: "cat", wantErr: ErrInvalidFileType},
		{name: "svg", filename: "logo.svg", wantErr: ErrInvalidFileType},
		{name: "double extension", filename: "cat.png.exe", wantErr: ErrInvalidFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageName(tt.filename)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "cat.png", want: "cat.png"},
		{in: "my cat photo.JPG", want: "my_cat_photo.jpg"},
		{in: "../../etc/passwd.png", want: "passwd.png"},
		{in: `C:\Users\me\pic.gif`, want: "pic.gif"},
		{in: "日本.png", want: "image.png"},
		{in: "café menu.jpeg", want: "cafe_menu.jpeg"},
		{in: "ｆｕｌｌ.png", want: "full.png"},
		{in: "..png", want: "image.png"},
		{in: "a<b>c.webp", want: "abc.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/png", ContentTypeFor("a.png"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("a.JPG"))
	assert.Equal(t, "image/webp", ContentTypeFor("a.webp"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("a.txt"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "/uploads/abc/cat.png", PublicURL("abc", "cat.png"))
}
