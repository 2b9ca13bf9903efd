// This file is part of wipiemu.
//
// wipiemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// wipiemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with wipiemu.  If not, see <https://www.gnu.org/licenses/>.

// Package sound decodes the audio formats WIPI applications ship their
// clips in. MP3 decoding is handled by the go-mp3 package and WAV
// decoding by the go-audio packages.
package sound

import (
	"bytes"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/wipi-emu/wipiemu/curated"
)

// sentinel error patterns for the sound package.
const (
	UnknownFormat = "sound: unknown clip format"
	DecodeFailure = "sound: decode: %v"
)

// Decode converts clip data into 16-bit PCM samples and a sample rate.
// The clip format is detected from the data itself.
func Decode(data []byte) ([]int16, int, error) {
	if len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")) {
		return decodeWAV(data)
	}

	// MP3 frames start with an 11 bit sync word. ID3 tagged files start
	// with "ID3"
	if len(data) >= 3 && (bytes.Equal(data[0:3], []byte("ID3")) || (data[0] == 0xff && data[1]&0xe0 == 0xe0)) {
		return decodeMP3(data)
	}

	return nil, 0, curated.Errorf(UnknownFormat)
}

func decodeWAV(data []byte) ([]int16, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, curated.Errorf(DecodeFailure, err)
	}

	return pcmFromBuffer(buf), int(dec.SampleRate), nil
}

func pcmFromBuffer(buf *audio.IntBuffer) []int16 {
	pcm := make([]int16, len(buf.Data))

	// scale to 16 bit depth
	shift := 0
	if buf.SourceBitDepth > 16 {
		shift = buf.SourceBitDepth - 16
	}

	for i, s := range buf.Data {
		pcm[i] = int16(s >> shift)
	}
	return pcm
}

func decodeMP3(data []byte) ([]int16, int, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, curated.Errorf(DecodeFailure, err)
	}

	// the decoder produces stereo 16-bit little-endian samples
	var raw bytes.Buffer
	if _, err := raw.ReadFrom(dec); err != nil {
		return nil, 0, curated.Errorf(DecodeFailure, err)
	}

	b := raw.Bytes()
	pcm := make([]int16, len(b)/2)
	for i := range pcm {
		pcm[i] = int16(uint16(b[i*2]) | uint16(b[i*2+1])<<8)
	}

	return pcm, dec.SampleRate(), nil
}
