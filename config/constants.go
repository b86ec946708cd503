package config

import "time"

// Canvas Constants
const (
	// VideoWidth is the output video width (9:16 portrait)
	VideoWidth = 1080

	// VideoHeight is the output video height (9:16 portrait)
	VideoHeight = 1920

	// VideoFPS is the fixed output frame rate
	VideoFPS = 24

	// WorkingFrameHeight is the height every slide image is cropped or padded to
	// after scaling to VideoWidth, leaving room for vertical travel.
	WorkingFrameHeight = 3840
)

// Motion Constants
const (
	// SlideTravel is how far a slide-* animation moves over the slide's duration, in pixels
	SlideTravel = 100.0

	// ZoomEndScale is the scale reached by the zoom-in ("stop") animation at the end of the slide
	ZoomEndScale = 1.5
)

// Text Band Constants
const (
	TitleBandWidth  = 1080
	TitleBandHeight = 300
	TitleBandY      = 200

	CaptionBandWidth  = 1080
	CaptionBandHeight = 150
	CaptionBandY      = 1400

	// DefaultTitleFontSize applies when the request omits or garbles titleFontSize
	DefaultTitleFontSize = 80

	// DefaultCaptionFontSize applies when the request omits or garbles scriptFontSize
	DefaultCaptionFontSize = 50
)

// Timeline Constants
const (
	// DefaultSlideDuration is used when a slide's duration is missing or unparseable
	DefaultSlideDuration = 3.0

	// MusicVolume is the amplitude factor applied to background music
	MusicVolume = 0.3

	// NarrationLanguage is the language code sent to the speech synthesizer
	NarrationLanguage = "ko"
)

// Encoding Constants
const (
	VideoCodec   = "libx264"
	AudioCodec   = "aac"
	AudioBitrate = "192k"
	PixelFormat  = "yuv420p"

	// DefaultVideoPreset is the ffmpeg encoding speed preset
	DefaultVideoPreset = "fast"
)

// Directory Constants
const (
	// UploadsDir holds one sub-directory per render session
	UploadsDir = "sessions"

	// OutputDir holds finished videos that can be fetched by filename
	OutputDir = "output_videos"

	// DefaultFontDir holds the selectable TTF fonts
	DefaultFontDir = "custom_fonts"
)

// Service Constants
const (
	DefaultPort                 = "5000"
	DefaultMaxConcurrentRenders = 2
	DefaultOutputRetention      = 24 * time.Hour
	DefaultTTSCacheTTL          = 7 * 24 * time.Hour

	// JanitorSchedule is the cron spec for purging expired outputs
	JanitorSchedule = "@every 30m"

	// MaxUploadMemory bounds multipart parsing held in memory before spilling to disk
	MaxUploadMemory = 64 << 20
)

// FontFiles maps the selectable font names to file names inside the font directory.
var FontFiles = map[string]string{
	"NanumBarunpenB":  "NanumBarunpenB.ttf",
	"NanumBrush":      "NanumBrush.ttf",
	"NanumGothic":     "NanumGothic.ttf",
	"NanumGothicBold": "NanumGothicBold.ttf",
	"잘난체TTF":          "잘난체TTF.ttf",
}
