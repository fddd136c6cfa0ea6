package transcribe

import (
	"math"

	"audio-vectorize/internal/media"
)

// SilenceConfig controls how audio is cut into utterances before recognition.
type SilenceConfig struct {
	MinSilenceMs    int
	KeepSilenceMs   int
	ThresholdOffset float64 // dB below the clip's average loudness
	SeekStepMs      int
}

func DefaultSilenceConfig() SilenceConfig {
	return SilenceConfig{
		MinSilenceMs:    1000,
		KeepSilenceMs:   500,
		ThresholdOffset: 14,
		SeekStepMs:      1,
	}
}

func (c SilenceConfig) withDefaults() SilenceConfig {
	def := DefaultSilenceConfig()
	if c.MinSilenceMs <= 0 {
		c.MinSilenceMs = def.MinSilenceMs
	}
	if c.KeepSilenceMs < 0 {
		c.KeepSilenceMs = 0
	}
	if c.SeekStepMs <= 0 {
		c.SeekStepMs = def.SeekStepMs
	}
	return c
}

type msRange struct{ start, end int }

// SplitOnSilence cuts p at every stretch of silence at least MinSilenceMs long.
// Each segment keeps KeepSilenceMs of padding on both sides; where the padding
// of two neighbours would overlap, the overlap is divided at its midpoint.
func SplitOnSilence(p *media.PCM, cfg SilenceConfig) []*media.PCM {
	if p == nil || len(p.Samples) == 0 || p.SampleRate <= 0 {
		return nil
	}
	cfg = cfg.withDefaults()

	voiced := detectNonsilent(p, cfg.MinSilenceMs, p.DBFS()-cfg.ThresholdOffset, cfg.SeekStepMs)
	if len(voiced) == 0 {
		return nil
	}

	out := make([]msRange, len(voiced))
	for i, r := range voiced {
		out[i] = msRange{r.start - cfg.KeepSilenceMs, r.end + cfg.KeepSilenceMs}
	}
	for i := 0; i+1 < len(out); i++ {
		if out[i+1].start < out[i].end {
			mid := (out[i].end + out[i+1].start) / 2
			out[i].end = mid
			out[i+1].start = mid
		}
	}

	segments := make([]*media.PCM, 0, len(out))
	for _, r := range out {
		seg := p.Slice(r.start, r.end)
		if len(seg.Samples) == 0 {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

func detectNonsilent(p *media.PCM, minSilenceMs int, threshDB float64, seekStep int) []msRange {
	length := p.DurationMs()
	silent := detectSilence(p, minSilenceMs, threshDB, seekStep)
	if len(silent) == 0 {
		return []msRange{{0, length}}
	}
	if silent[0].start == 0 && silent[0].end == length {
		return nil
	}

	var voiced []msRange
	prevEnd := 0
	for _, r := range silent {
		voiced = append(voiced, msRange{prevEnd, r.start})
		prevEnd = r.end
	}
	if prevEnd != length {
		voiced = append(voiced, msRange{prevEnd, length})
	}
	if len(voiced) > 0 && voiced[0].start == 0 && voiced[0].end == 0 {
		voiced = voiced[1:]
	}
	return voiced
}

// detectSilence returns the millisecond ranges whose sliding-window RMS stays
// at or under the threshold for at least minSilenceMs.
func detectSilence(p *media.PCM, minSilenceMs int, threshDB float64, seekStep int) []msRange {
	length := p.DurationMs()
	if length < minSilenceMs {
		return nil
	}
	thresh := media.DBFSToAmplitude(threshDB)

	prefix := make([]float64, len(p.Samples)+1)
	for i, s := range p.Samples {
		prefix[i+1] = prefix[i] + float64(s)*float64(s)
	}
	quiet := func(startMs int) bool {
		lo, hi := p.SampleIndex(startMs), p.SampleIndex(startMs+minSilenceMs)
		if hi <= lo {
			return true
		}
		return math.Sqrt((prefix[hi]-prefix[lo])/float64(hi-lo)) <= thresh
	}

	lastStart := length - minSilenceMs
	var starts []int
	for i := 0; i <= lastStart; i += seekStep {
		if quiet(i) {
			starts = append(starts, i)
		}
	}
	if lastStart%seekStep != 0 && quiet(lastStart) {
		starts = append(starts, lastStart)
	}
	if len(starts) == 0 {
		return nil
	}

	var ranges []msRange
	rangeStart, prev := starts[0], starts[0]
	for _, s := range starts {
		continuous := s == prev+seekStep
		gap := s > prev+minSilenceMs
		if !continuous && gap {
			ranges = append(ranges, msRange{rangeStart, prev + minSilenceMs})
			rangeStart = s
		}
		prev = s
	}
	return append(ranges, msRange{rangeStart, prev + minSilenceMs})
}
