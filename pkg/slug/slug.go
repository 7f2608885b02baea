package slug

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// transliteration of the Cyrillic alphabet, lowercase letters in order
const cyrillicAlphabet = "абвгдеёжзийклмнопрстуфхцчшщъыьэюя"

var latinSpelling = [...]string{
	"a", "b", "v", "g", "d", "e", "e", "zh", "z", "i", "y", "k", "l", "m", "n", "o", "p",
	"r", "s", "t", "u", "f", "h", "c", "ch", "sh", "sh", "", "y", "", "e", "iu", "ia",
}

var cyrillicToLatin = func() map[rune]string {
	m := make(map[rune]string, 2*len(latinSpelling))
	i := 0
	for _, r := range cyrillicAlphabet {
		m[r] = latinSpelling[i]
		m[unicode.ToUpper(r)] = latinSpelling[i]
		i++
	}
	return m
}()

var (
	nonAlnumRegex = regexp.MustCompile(`[^a-z0-9]+`)

	pictureExtensions = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	}
)

// foldAccents strips combining marks: "Conceição" -> "Conceicao"
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Make generates a URL-friendly slug.
// Example: "João da Silva" -> "joao-da-silva", "Иван Петров" -> "ivan-petrov"
func Make(name string) string {
	var b strings.Builder
	for _, r := range foldAccents(name) {
		if latin, ok := cyrillicToLatin[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Trim(nonAlnumRegex.ReplaceAllString(b.String(), "-"), "-")
}

// PictureKey builds the object key of a contact picture:
// pictures/{yyyy}/{mm}/{name-slug}-{random}{ext}
func PictureKey(name, fileName, contentType string, now time.Time) string {
	base := Make(name)
	if base == "" {
		base = "contact"
	}

	ext, ok := pictureExtensions[strings.ToLower(contentType)]
	if !ok {
		ext = strings.ToLower(path.Ext(fileName))
	}

	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("pictures/%04d/%02d/%s-%s%s", now.Year(), int(now.Month()), base, random, ext)
}
