// Package release parses release names into structured quality attributes.
package release

// Resolution represents the video resolution of a release.
type Resolution int

const (
	ResolutionUnknown Resolution = iota
	Resolution480p
	Resolution720p
	Resolution1080p
	Resolution2160p
)

func (r Resolution) String() string {
	switch r {
	case Resolution480p:
		return "480p"
	case Resolution720p:
		return "720p"
	case Resolution1080p:
		return "1080p"
	case Resolution2160p:
		return "2160p"
	default:
		return ""
	}
}

// Source represents the media source type of a release.
type Source int

const (
	SourceUnknown Source = iota
	SourceBluRay
	SourceWEBDL
	SourceWEBRip
	SourceHDTV
	SourceDVD
	SourceCAM
	SourceTelesync
)

func (s Source) String() string {
	switch s {
	case SourceBluRay:
		return "BluRay"
	case SourceWEBDL:
		return "WEBDL"
	case SourceWEBRip:
		return "WEBRip"
	case SourceHDTV:
		return "HDTV"
	case SourceDVD:
		return "DVD"
	case SourceCAM:
		return "CAM"
	case SourceTelesync:
		return "TELESYNC"
	default:
		return ""
	}
}

// Codec represents the video codec used in a release.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecX264
	CodecX265
	CodecXvid
	CodecAV1
)

func (c Codec) String() string {
	switch c {
	case CodecX264:
		return "x264"
	case CodecX265:
		return "x265"
	case CodecXvid:
		return "XviD"
	case CodecAV1:
		return "AV1"
	default:
		return ""
	}
}

// HDRFormat represents HDR/Dolby Vision formats.
type HDRFormat int

const (
	HDRNone    HDRFormat = iota
	HDRGeneric           // "HDR" without specific version
	HDR10
	HDR10Plus
	DolbyVision
	HLG
)

func (h HDRFormat) String() string {
	switch h {
	case HDRGeneric:
		return "HDR"
	case HDR10:
		return "HDR10"
	case HDR10Plus:
		return "HDR10+"
	case DolbyVision:
		return "DV"
	case HLG:
		return "HLG"
	default:
		return ""
	}
}

// AudioCodec represents the audio format of a release.
type AudioCodec int

const (
	AudioUnknown AudioCodec = iota
	AudioAAC
	AudioAC3
	AudioEAC3
	AudioDTS
	AudioDTSHD
	AudioTrueHD
	AudioAtmos
	AudioFLAC
	AudioOpus
)

func (a AudioCodec) String() string {
	switch a {
	case AudioAAC:
		return "AAC"
	case AudioAC3:
		return "AC3"
	case AudioEAC3:
		return "EAC3"
	case AudioDTS:
		return "DTS"
	case AudioDTSHD:
		return "DTS-HD MA"
	case AudioTrueHD:
		return "TrueHD"
	case AudioAtmos:
		return "Atmos"
	case AudioFLAC:
		return "FLAC"
	case AudioOpus:
		return "Opus"
	default:
		return ""
	}
}

// Info contains parsed release information. Any attribute the parser
// could not identify is left at its zero value.
type Info struct {
	Title         string
	Year          int
	Season        int
	Episode       int
	Resolution    Resolution
	Source        Source
	Codec         Codec
	Audio         AudioCodec
	AudioChannels string // "5.1", "7.1", "2.0"
	HDR           HDRFormat
	BitDepth      string // "8bit", "10bit"
	Edition       string // "Directors Cut", "Extended", "IMAX", ...
	Group         string
	Proper        bool
	Repack        bool
	IsRemux       bool

	// Normalized title for matching
	CleanTitle string
}

// HasEpisode reports whether the release carries season/episode numbering.
func (i Info) HasEpisode() bool {
	return i.Season > 0 && i.Episode > 0
}
