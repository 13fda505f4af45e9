// Package util holds small stateless helpers shared by the client and the CLI.
package util

import (
	"time"

	"golang.org/x/text/language"
)

type layouts struct {
	dateTime string
	timeOnly string
}

// Layouts keyed by base language. Regional variants fall back to their base.
var localeLayouts = map[string]layouts{ //nolint:gochecknoglobals // read-only table
	"ru": {dateTime: "02.01.2006, 15:04", timeOnly: "15:04"},
	"de": {dateTime: "02.01.2006, 15:04", timeOnly: "15:04"},
	"en": {dateTime: "01/02/2006, 03:04 PM", timeOnly: "03:04 PM"},
}

var defaultLayouts = layouts{dateTime: "2006-01-02 15:04", timeOnly: "15:04"} //nolint:gochecknoglobals // read-only

func layoutsFor(tag language.Tag) layouts {
	base, _ := tag.Base()
	if l, ok := localeLayouts[base.String()]; ok {
		return l
	}
	return defaultLayouts
}

// FormatDate renders t as a two-digit date plus hours and minutes in the
// conventions of tag.
func FormatDate(t time.Time, tag language.Tag) string {
	return t.Format(layoutsFor(tag).dateTime)
}

// FormatTime renders the hours and minutes of t in the conventions of tag.
func FormatTime(t time.Time, tag language.Tag) string {
	return t.Format(layoutsFor(tag).timeOnly)
}
