package media

import (
	"bytes"
	"encoding/binary"
	"math"
)

const maxAmplitude = 32768.0

// PCM is mono signed 16-bit audio.
type PCM struct {
	Samples    []int16
	SampleRate int
}

func (p *PCM) samplesPerMs() float64 {
	return float64(p.SampleRate) / 1000
}

// DurationMs is the length of the audio in whole milliseconds.
func (p *PCM) DurationMs() int {
	if p.SampleRate <= 0 {
		return 0
	}
	return int(math.Round(float64(len(p.Samples)) / p.samplesPerMs()))
}

// Slice returns the audio between two millisecond offsets, clamped to the bounds.
func (p *PCM) Slice(startMs, endMs int) *PCM {
	start := p.SampleIndex(startMs)
	end := p.SampleIndex(endMs)
	if end < start {
		end = start
	}
	return &PCM{Samples: p.Samples[start:end], SampleRate: p.SampleRate}
}

// SampleIndex converts a millisecond offset to a sample index within bounds.
func (p *PCM) SampleIndex(ms int) int {
	i := int(math.Round(float64(ms) * p.samplesPerMs()))
	if i < 0 {
		return 0
	}
	if i > len(p.Samples) {
		return len(p.Samples)
	}
	return i
}

func (p *PCM) RMS() float64 {
	if len(p.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range p.Samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(p.Samples)))
}

// DBFS is the loudness relative to full scale; -Inf for digital silence.
func (p *PCM) DBFS() float64 {
	return AmplitudeToDBFS(p.RMS())
}

func AmplitudeToDBFS(rms float64) float64 {
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms/maxAmplitude)
}

func DBFSToAmplitude(db float64) float64 {
	return math.Pow(10, db/20) * maxAmplitude
}

// WAV encodes the samples as a canonical 44-byte-header RIFF/WAVE file.
func (p *PCM) WAV() []byte {
	const (
		bitsPerSample = 16
		channels      = 1
	)
	dataLen := uint32(len(p.Samples) * 2)
	byteRate := uint32(p.SampleRate * channels * bitsPerSample / 8)

	var buf bytes.Buffer
	buf.Grow(44 + int(dataLen))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(p.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, byteRate)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels*bitsPerSample/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataLen)
	_ = binary.Write(&buf, binary.LittleEndian, p.Samples)
	return buf.Bytes()
}
