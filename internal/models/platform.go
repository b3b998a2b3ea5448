package models

// Platform identifies a social platform the pipeline adapts content for.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
)

// AdaptationPlatforms is the fixed set of platforms the deep analysis produces
// adaptations for. Facebook shares instagram's limits but gets no dedicated
// adaptation section.
var AdaptationPlatforms = []Platform{
	PlatformInstagram,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformYouTube,
	PlatformTikTok,
}

// PlatformLimits bounds generated copy for one platform. Generated text is
// clamped to these after the fact; the model is never trusted to self-limit.
type PlatformLimits struct {
	MaxCaptionChars int
	MaxHashtags     int
}

var platformLimits = map[Platform]PlatformLimits{
	PlatformInstagram: {MaxCaptionChars: 2200, MaxHashtags: 30},
	PlatformTwitter:   {MaxCaptionChars: 280, MaxHashtags: 5},
	PlatformLinkedIn:  {MaxCaptionChars: 3000, MaxHashtags: 5},
	PlatformFacebook:  {MaxCaptionChars: 2200, MaxHashtags: 30},
	PlatformTikTok:    {MaxCaptionChars: 2200, MaxHashtags: 100},
}

// LimitsFor returns the copy limits for a platform. Unknown platforms get
// instagram's limits, the most permissive common denominator.
func LimitsFor(p Platform) PlatformLimits {
	if l, ok := platformLimits[p]; ok {
		return l
	}
	return platformLimits[PlatformInstagram]
}

// IsKnownPlatform reports whether p is a platform the pipeline can target:
// one with a copy-limits entry or a dedicated adaptation section.
func IsKnownPlatform(p Platform) bool {
	if _, ok := platformLimits[p]; ok {
		return true
	}
	for _, a := range AdaptationPlatforms {
		if a == p {
			return true
		}
	}
	return false
}

// AspectRatio is the fixed set of aspect ratios the image provider accepts.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "4:5"
	AspectLandscape AspectRatio = "16:9"
	AspectVertical  AspectRatio = "9:16"
	AspectLinkCard  AspectRatio = "1.91:1"
)

// DefaultAspectRatio returns the aspect ratio conventionally used for a
// platform's feed placement.
func DefaultAspectRatio(p Platform) AspectRatio {
	switch p {
	case PlatformTikTok, PlatformYouTube:
		return AspectVertical
	case PlatformTwitter, PlatformLinkedIn:
		return AspectLandscape
	default:
		return AspectPortrait
	}
}
