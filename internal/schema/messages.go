package schema

import (
	"fmt"
	"strings"
)

// DefaultLocale is used when a locale has no catalogue of its own.
const DefaultLocale = "en"

// Locales lists every locale accepted for validation messages.
var Locales = []string{"en", "ar", "de", "it", "ko", "nl", "ru", "th", "zh", "zh-tw"}

// SupportedLocale reports whether locale (case-insensitive) is in Locales.
func SupportedLocale(locale string) bool {
	locale = strings.ToLower(strings.TrimSpace(locale))
	for _, l := range Locales {
		if l == locale {
			return true
		}
	}
	return false
}

var catalogue = map[string]map[string]string{
	"en": {
		"type":                 "should be %s",
		"required":             "should have required property '%s'",
		"additionalProperties": "should NOT have additional property '%s'",
		"minLength":            "should NOT be shorter than %d characters",
		"maxLength":            "should NOT be longer than %d characters",
		"pattern":              "should match pattern \"%s\"",
		"format":               "should match format \"%s\"",
		"minimum":              "should be >= %v",
		"maximum":              "should be <= %v",
		"enum":                 "should be equal to one of the allowed values",
		"anyOf":                "should match some schema in anyOf",
		"oneOf":                "should match exactly one schema in oneOf",
	},
	"de": {
		"type":                 "sollte sein: %s",
		"required":             "sollte das erforderliche Merkmal (property) %s enthalten",
		"additionalProperties": "darf keine zusätzlichen Attribute haben (%s)",
		"minLength":            "darf nicht kürzer als %d Zeichen sein",
		"maxLength":            "darf nicht länger als %d Zeichen sein",
		"pattern":              "muss dem Muster \"%s\" entsprechen",
		"format":               "muss diesem Format entsprechen: \"%s\"",
		"minimum":              "muss >= %v sein",
		"maximum":              "muss <= %v sein",
		"enum":                 "muss einem der vorgegebenen Werte entsprechen",
		"anyOf":                "muss einem der Schemata in anyOf entsprechen",
		"oneOf":                "muss genau einem der Schemata in oneOf entsprechen",
	},
}

func render(locale, rule string, params []any) string {
	messages, ok := catalogue[strings.ToLower(locale)]
	if !ok {
		messages = catalogue[DefaultLocale]
	}
	tmpl, ok := messages[rule]
	if !ok {
		tmpl, ok = catalogue[DefaultLocale][rule]
	}
	if !ok {
		return "should pass \"" + rule + "\" keyword validation"
	}
	if strings.Contains(tmpl, "%") {
		return fmt.Sprintf(tmpl, params...)
	}
	return tmpl
}
