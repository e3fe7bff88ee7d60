package audio

import (
	"sort"
	"strings"

	"mediaprobe/internal/language"
	"mediaprobe/internal/media"
)

// Selection describes the ranked audio streams of one container.
type Selection struct {
	// PrimaryIndex is the stream index of the best candidate, -1 when the
	// container has no audio.
	PrimaryIndex int
	// Ranked lists audio stream indices, best first.
	Ranked []int
}

// HasPrimary reports whether any audio stream was found.
func (s Selection) HasPrimary() bool {
	return s.PrimaryIndex >= 0
}

// IsPrimary reports whether index is the selected stream.
func (s Selection) IsPrimary(index int) bool {
	return s.HasPrimary() && s.PrimaryIndex == index
}

// Select ranks the audio streams. preferredLanguage may be any code the
// language package understands; empty means no preference.
func Select(streams []media.StreamInfo, preferredLanguage string) Selection {
	preferred := language.ToISO3(preferredLanguage)
	if strings.TrimSpace(preferredLanguage) == "" {
		preferred = ""
	}

	candidates := make([]candidate, 0, len(streams))
	for order, info := range streams {
		if info.CodecType != media.CodecTypeAudio {
			continue
		}
		candidates = append(candidates, newCandidate(info, order, preferred))
	}
	if len(candidates) == 0 {
		return Selection{PrimaryIndex: -1}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	sel := Selection{PrimaryIndex: candidates[0].index, Ranked: make([]int, 0, len(candidates))}
	for _, c := range candidates {
		sel.Ranked = append(sel.Ranked, c.index)
	}
	return sel
}

type candidate struct {
	index int
	score float64
}

func newCandidate(info media.StreamInfo, order int, preferred string) candidate {
	score := 0.0
	if preferred != "" && language.ToISO3(info.Language) == preferred {
		score += 10000
	}

	switch {
	case info.Channels >= 8:
		score += 1000
	case info.Channels >= 6:
		score += 800
	case info.Channels >= 4:
		score += 600
	case info.Channels >= 2:
		score += 400
	default:
		score += 200
	}

	if isLossless(info.CodecID) {
		score += 100
	} else {
		score += 50
	}

	score += float64(min(info.BitsPerSample, 64))
	score += float64(info.SampleRate) / 1e6
	score -= float64(order) * 0.001

	return candidate{index: info.Index, score: score}
}

func isLossless(codecID string) bool {
	name := strings.ToLower(strings.TrimSpace(codecID))
	if strings.HasPrefix(name, "pcm_") {
		// Companded PCM is lossy.
		return name != "pcm_alaw" && name != "pcm_mulaw"
	}
	switch name {
	case "flac", "alac", "truehd", "mlp", "wavpack", "ape", "tta":
		return true
	}
	return false
}
