package transcode

import "fmt"

type Resolution string

const (
	Resolution240p  Resolution = "240p"
	Resolution360p  Resolution = "360p"
	Resolution480p  Resolution = "480p"
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
	Resolution1440p Resolution = "1440p"
	Resolution4K    Resolution = "4k"
	Resolution8K    Resolution = "8k"
)

type ResolutionProfile struct {
	Name Resolution

	// advertised frame size
	Width  int
	Height int

	// encoder scale width, height keeps aspect ratio
	ScaleWidth int
	Bitrate    string

	// playlist hints
	Bandwidth        int
	AverageBandwidth int

	// smallest source width that is not upscaled
	MinSourceWidth int
}

// Resolutions is ordered from the lowest to the highest quality.
var Resolutions = []ResolutionProfile{
	{Resolution240p, 320, 240, 320, "1M", 300, 300, 426},
	{Resolution360p, 640, 360, 480, "1500k", 500, 400, 480},
	{Resolution480p, 854, 480, 854, "4M", 800, 600, 854},
	{Resolution720p, 1280, 720, 1280, "7500k", 1500, 1000, 1280},
	{Resolution1080p, 1920, 1080, 1920, "12M", 2500, 2000, 1920},
	{Resolution1440p, 2560, 1440, 2560, "24M", 3500, 3000, 2560},
	{Resolution4K, 3840, 2160, 3840, "60M", 6000, 5000, 3840},
	{Resolution8K, 7680, 4320, 7680, "120M", 10000, 8000, 7680},
}

func LookupResolution(name string) (ResolutionProfile, error) {
	for _, profile := range Resolutions {
		if string(profile.Name) == name {
			return profile, nil
		}
	}
	return ResolutionProfile{}, fmt.Errorf("%q: %w", name, ErrUnsupportedResolution)
}

// ResolutionsForWidth lists the resolutions a source of given width can be
// encoded to without upscaling.
func ResolutionsForWidth(width int) []ResolutionProfile {
	var out []ResolutionProfile
	for _, profile := range Resolutions {
		if width >= profile.MinSourceWidth {
			out = append(out, profile)
		}
	}
	return out
}
