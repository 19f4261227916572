package translation

import (
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

const domain = "default"

// Configure loads the catalog for lang from localesDir/<lang>/LC_MESSAGES/default.po.
// lang may be a POSIX locale such as "ar_SA.UTF-8"; it is reduced to its base language.
func Configure(localesDir, lang string) string {
	base := NormalizeLanguage(lang)
	gotext.Configure(localesDir, base, domain)
	return base
}

// NormalizeLanguage maps a locale string to a lower-case base language, "en" when unknown.
func NormalizeLanguage(lang string) string {
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil || tag == language.Und {
		return "en"
	}
	base, _ := tag.Base()
	return base.String()
}

func GetLanguage() string {
	lang := gotext.GetLanguage()

	if lang == "und" || lang == "" {
		return "en"
	}

	return lang
}

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
