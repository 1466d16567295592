// Package i18n holds the localized message catalog and locale negotiation.
package i18n

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	ru_translations "github.com/go-playground/validator/v10/translations/ru"
	"golang.org/x/text/language"
)

const DefaultLocale = "en"

var supportedTags = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supportedTags)

// Catalog translates message keys for the supported locales.
type Catalog struct {
	uni *ut.UniversalTranslator
}

// New loads every message into a universal translator.
func New() (*Catalog, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, ru.New())

	for locale, entries := range messages {
		trans, ok := uni.GetTranslator(locale)
		if !ok {
			return nil, fmt.Errorf("no translator for locale %q", locale)
		}
		for key, text := range entries {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("add %s/%s: %w", locale, key, err)
			}
		}
	}

	return &Catalog{uni: uni}, nil
}

// Supported lists the locales the catalog can render.
func (c *Catalog) Supported() []string {
	locales := make([]string, 0, len(supportedTags))
	for _, tag := range supportedTags {
		base, _ := tag.Base()
		locales = append(locales, base.String())
	}
	return locales
}

// Translator returns the translator for locale, falling back to English.
func (c *Catalog) Translator(locale string) ut.Translator {
	trans, _ := c.uni.FindTranslator(locale, DefaultLocale)
	return trans
}

// T renders key in locale. Unknown keys are returned as-is so a missing
// entry never hides the message entirely.
func (c *Catalog) T(locale, key string, params ...string) string {
	if len(params) == 0 {
		params = defaultParams[key]
	}
	msg, err := c.Translator(locale).T(key, params...)
	if err != nil || msg == "" {
		return key
	}
	return msg
}

// Fields localizes every key of a field error map.
func (c *Catalog) Fields(locale string, fields map[string][]string) map[string][]string {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(fields))
	for field, keys := range fields {
		msgs := make([]string, 0, len(keys))
		for _, key := range keys {
			msgs = append(msgs, c.T(locale, key))
		}
		out[field] = msgs
	}
	return out
}

// RegisterValidator installs the validator's built-in translations for every
// supported locale and reports field names by their json or form tag.
func (c *Catalog) RegisterValidator(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	enTrans, _ := c.uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, enTrans); err != nil {
		return fmt.Errorf("register en validator translations: %w", err)
	}
	ruTrans, _ := c.uni.GetTranslator("ru")
	if err := ru_translations.RegisterDefaultTranslations(v, ruTrans); err != nil {
		return fmt.Errorf("register ru validator translations: %w", err)
	}
	return nil
}

// ValidationFields converts binding errors into localized field errors.
// ok is false when err does not come from the validator.
func (c *Catalog) ValidationFields(locale string, err error) (map[string][]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	trans := c.Translator(locale)
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], fe.Translate(trans))
	}
	return fields, true
}

// Negotiate returns the first supported locale among candidates. Each
// candidate may be a plain tag ("ru") or an Accept-Language header value.
func Negotiate(candidates ...string) string {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(candidate)
		if err != nil || len(tags) == 0 {
			continue
		}
		tag, _, confidence := matcher.Match(tags...)
		if confidence == language.No {
			continue
		}
		base, _ := tag.Base()
		return base.String()
	}
	return DefaultLocale
}
