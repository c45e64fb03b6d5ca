package templating

import (
	"regexp"

	"github.com/sirupsen/logrus"
)

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// MissingMarker is what an unknown placeholder is replaced with
func MissingMarker(name string) string {
	return "[MISSING:" + name + "]"
}

// Fill replaces every {{name}} placeholder with vars[name].
// Unknown names become [MISSING:name] so the gap stays visible in the sent message.
func Fill(template string, vars map[string]string) string {
	if template == "" {
		return ""
	}

	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		if value, ok := vars[name]; ok {
			return value
		}
		logrus.WithFields(logrus.Fields{
			"variable": name,
			"template": template,
		}).Warn("Campaign: Missing template variable")
		return MissingMarker(name)
	})
}

// Missing lists the placeholder names absent from vars, in order of first appearance
func Missing(template string, vars map[string]string) []string {
	missing := []string{}
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		name := m[1]
		if _, ok := vars[name]; ok || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	return missing
}
