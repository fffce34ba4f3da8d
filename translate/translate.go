// Package translate formats user-visible messages for the current locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DEFAULT_LANGUAGE = "en-US" // Used when the host reports no locale.

var (
	lock    sync.RWMutex
	tag     language.Tag
	printer *message.Printer
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("chip8: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{DEFAULT_LANGUAGE}
	}

	SetLanguage(locales...)
}

// SetLanguage selects the best match of the requested BCP 47 tags.
func SetLanguage(tags ...string) {
	lock.Lock()
	defer lock.Unlock()

	tag = message.MatchLanguage(tags...)
	printer = message.NewPrinter(tag)
}

// Language returns the currently selected language tag.
func Language() string {
	lock.RLock()
	defer lock.RUnlock()

	return tag.String()
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	lock.RLock()
	defer lock.RUnlock()

	return printer.Sprintf(key, args...)
}
