package alert

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// Message ids.
const (
	msgDoorOpenedWhileArmed = "DoorOpenedWhileArmed"
)

// Messages renders alert texts in one language.
type Messages struct {
	localizer *i18n.Localizer
}

// NewMessages loads the embedded translations and picks locale, falling back to English.
func NewMessages(locale string) (*Messages, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	entries, err := fs.ReadDir(localeFiles, "locales")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}

	for _, entry := range entries {
		name := path.Join("locales", entry.Name())

		data, err := localeFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		if _, err = bundle.ParseMessageFileBytes(data, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}

	return &Messages{
		localizer: i18n.NewLocalizer(bundle, locale, language.English.String()),
	}, nil
}

// DoorOpenedWhileArmed is the intrusion alert text.
func (m *Messages) DoorOpenedWhileArmed() string {
	text, err := m.localizer.Localize(&i18n.LocalizeConfig{
		MessageID: msgDoorOpenedWhileArmed,
	})
	if err != nil {
		return "Door opened while alarm is ON!"
	}

	return text
}
