package scheduler

import (
	"regexp"

	"github.com/brunte71/mymaintlog/internal/config"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// expand substitutes {name} placeholders from fields. A placeholder with
// no value renders as the empty string; rendering never fails.
func expand(s string, fields map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		return fields[m[1:len(m)-1]]
	})
}

func renderTemplate(t config.Template, fields map[string]string) (subject, body string) {
	return expand(t.Subject, fields), expand(t.Body, fields)
}
