package client

import (
	"strings"

	"github.com/mileusna/useragent"
	"github.com/rs/zerolog/log"
)

// AppSignature is the exact user agent sent by the companion app.
const AppSignature = "DoseApp/1.0"

// UserAgent holds the parsed hints used for profile resolution.
type UserAgent struct {
	Source string

	Desktop bool
	Mobile  bool
	Tablet  bool

	OS        string
	OSVersion Version

	Browser        string
	BrowserVersion Version
}

func ParseUserAgent(raw string) UserAgent {
	ua := useragent.Parse(raw)

	return UserAgent{
		Source:         raw,
		Desktop:        !ua.Mobile && !ua.Tablet,
		Mobile:         ua.Mobile,
		Tablet:         ua.Tablet,
		OS:             ua.OS,
		OSVersion:      ParseVersion(ua.OSVersion),
		Browser:        ua.Name,
		BrowserVersion: ParseVersion(ua.Version),
	}
}

func (ua UserAgent) IsAndroid() bool {
	return strings.EqualFold(ua.OS, "Android")
}

func (ua UserAgent) IsIOS() bool {
	return strings.EqualFold(ua.OS, "iOS")
}

var browsers = map[string]Family{
	"chrome":            FamilyChrome,
	"firefox":           FamilyFirefox,
	"edge":              FamilyEdge,
	"internet explorer": FamilyInternetExplorer,
	"opera":             FamilyOpera,
	"safari":            FamilySafari,
}

// Resolve maps user agent hints to a client profile.
func Resolve(ua UserAgent) *Profile {
	logger := log.With().Str("module", "client").Str("user-agent", ua.Source).Logger()

	switch {
	case ua.Source == AppSignature:
		return NewProfile(FamilyApp, Version{Major: 1})

	case ua.Desktop && !ua.IsAndroid() && ua.Source != "":
		family, ok := browsers[strings.ToLower(ua.Browser)]
		if !ok {
			logger.Debug().Str("browser", ua.Browser).Msg("browser not recognized, using unknown client")
			return NewProfile(FamilyUnknown, Version{})
		}
		if ua.BrowserVersion == (Version{}) {
			logger.Debug().Msg("no browser version found, defaulting to 0")
		}
		return NewProfile(family, ua.BrowserVersion)

	case ua.IsAndroid():
		if ua.Mobile {
			return NewProfile(FamilyUnknown, Version{})
		}
		return NewProfile(FamilyAndroidTV, ua.OSVersion)

	case ua.IsIOS():
		return NewProfile(FamilyIPhone, ua.OSVersion)
	}

	logger.Debug().Msg("user agent not recognized, using unknown client")
	return NewProfile(FamilyUnknown, Version{})
}
