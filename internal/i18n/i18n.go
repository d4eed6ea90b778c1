package i18n

import (
	"embed"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Translator 持有消息包及支持的语言
type Translator struct {
	bundle    *i18n.Bundle
	matcher   language.Matcher
	languages []language.Tag
}

// New 加载内嵌的语言文件，defaultLang 为兜底语言
func New(defaultLang string) (*Translator, error) {
	def, err := language.Parse(defaultLang)
	if err != nil {
		return nil, err
	}

	bundle := i18n.NewBundle(def)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	// 默认语言排在首位，作为匹配失败时的结果
	tags := []language.Tag{def}
	for _, entry := range entries {
		file := path.Join("locales", entry.Name())
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, err
		}
		tag, err := language.Parse(strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
		if err != nil {
			return nil, err
		}
		if tag != def {
			tags = append(tags, tag)
		}
	}

	return &Translator{bundle: bundle, matcher: language.NewMatcher(tags), languages: tags}, nil
}

// Localizer 根据 Accept-Language 头返回本地化器
func (t *Translator) Localizer(acceptLanguage string) *i18n.Localizer {
	desired, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	_, idx, _ := t.matcher.Match(desired...)
	return i18n.NewLocalizer(t.bundle, t.languages[idx].String())
}

// Translate 翻译消息，找不到时返回 fallback
func Translate(localizer *i18n.Localizer, key, fallback string) string {
	if localizer == nil || key == "" {
		return fallback
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:      key,
		DefaultMessage: &i18n.Message{ID: key, Other: fallback},
	})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}
